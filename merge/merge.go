// Package merge presents several media databases as one. Ids from the
// member databases are told apart by their top eight bits: id 0x120 of
// database 6 reads as 0x06000120. Only the browse root is really merged;
// every other query is answered by database 0 alone.
package merge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fulldump/steamdb/db"
	"github.com/fulldump/steamdb/mediadb"
)

const (
	// MaxDatabases keeps every tagged id below mediadb.MaxChildID, so
	// tagged ids survive the CHILDREN encoding.
	MaxDatabases = mediadb.MaxChildID >> idBits

	idBits = 24
	idMask = 1<<idBits - 1
)

var ErrNoSpace = errors.New("no free database slot")

type Database struct {
	mu        sync.RWMutex
	databases []db.Database // nil entries are free slots
}

func New() *Database {
	return &Database{}
}

// AddDatabase puts d in the first free slot and returns its number.
func (m *Database) AddDatabase(d db.Database) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.databases {
		if existing == nil {
			m.databases[i] = d
			return i, nil
		}
	}

	if len(m.databases) >= MaxDatabases {
		return 0, ErrNoSpace
	}

	m.databases = append(m.databases, d)
	return len(m.databases) - 1, nil
}

// RemoveDatabase frees the slot of d, if any. Other databases keep their
// numbers.
func (m *Database) RemoveDatabase(d db.Database) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.databases {
		if existing == d {
			m.databases[i] = nil
			return
		}
	}
}

func (m *Database) database(n int) db.Database {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n < 0 || n >= len(m.databases) {
		return nil
	}
	return m.databases[n]
}

func (m *Database) members() []db.Database {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]db.Database(nil), m.databases...)
}

// CreateRecordset reads and writes database 0, untagged.
func (m *Database) CreateRecordset() db.Recordset {
	d := m.database(0)
	if d == nil {
		return db.EmptyRecordset{}
	}
	return d.CreateRecordset()
}

func (m *Database) CreateQuery() db.Query {
	return &Query{
		QueryBase: db.NewQueryBase(),
		merge:     m,
	}
}

// Count is the number of records scans can reach, those of database 0. It
// is -1 when database 0 cannot tell.
func (m *Database) Count() int {
	d := m.database(0)
	if d == nil {
		return 0
	}
	if counter, ok := d.(interface{ Count() int }); ok {
		return counter.Count()
	}
	return -1
}

// AllocateID hands out ids from database 0.
func (m *Database) AllocateID() (uint32, error) {
	d := m.database(0)
	if d == nil {
		return 0, fmt.Errorf("%w: no database 0", db.ErrNotFound)
	}
	return mediadb.AllocateID(d)
}

// Query routes "ID = n" lookups to the database named by n and sends every
// other query to database 0.
type Query struct {
	*db.QueryBase
	merge *Database
}

func (q *Query) Execute() (db.Recordset, error) {

	first := q.merge.database(0)
	if first == nil {
		return db.EmptyRecordset{}, nil
	}

	if id, ok := q.idLookup(); ok {
		n := int(id >> idBits)
		target := q.merge.database(n)
		if target == nil {
			return nil, fmt.Errorf("%w: no database %d", db.ErrUnsupportedQuery, n)
		}

		if n != 0 || id == mediadb.BrowseRoot {
			sub := target.CreateQuery()
			sub.Where(sub.RestrictInteger(mediadb.ID, db.EQ, id&idMask))
			rs, err := sub.Execute()
			if err != nil {
				return nil, err
			}
			if id == mediadb.BrowseRoot {
				return &rootRecordset{Recordset: rs, merge: q.merge}, nil
			}
			return &wrapRecordset{Recordset: rs, n: uint32(n)}, nil
		}
	}

	sub := first.CreateQuery()
	err := db.Clone(sub, q)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	return sub.Execute()
}

func (q *Query) idLookup() (uint32, bool) {
	restrictions := q.Restrictions()
	if len(restrictions) != 1 {
		return 0, false
	}
	r := restrictions[0]
	if r.Which != mediadb.ID || r.Type != db.EQ {
		return 0, false
	}
	if r.IsString {
		return db.Coerce(r.Str), true
	}
	return r.Int, true
}

func tagged(field db.Field) bool {
	return field == mediadb.ID || field == mediadb.IDParent || field == mediadb.IDHigh
}

// wrapRecordset adds the database number to every id it reads and strips
// it from every id it writes.
type wrapRecordset struct {
	db.Recordset
	n uint32
}

func (rs *wrapRecordset) GetInteger(which db.Field) uint32 {
	v := rs.Recordset.GetInteger(which)
	if tagged(which) && v != 0 && v != mediadb.BrowseRoot {
		v |= rs.n << idBits
	}
	return v
}

func (rs *wrapRecordset) GetString(which db.Field) string {
	v := rs.Recordset.GetString(which)
	if tagged(which) && v != "" {
		return db.Decimal(rs.GetInteger(which))
	}
	if which != mediadb.Children || v == "" {
		return v
	}
	ids := mediadb.ChildrenToVector(v)
	for i := range ids {
		ids[i] |= rs.n << idBits
	}
	return mediadb.VectorToChildren(ids)
}

func (rs *wrapRecordset) SetInteger(which db.Field, v uint32) error {
	if tagged(which) {
		v &= idMask
	}
	return rs.Recordset.SetInteger(which, v)
}

func (rs *wrapRecordset) SetString(which db.Field, v string) error {
	if tagged(which) {
		return rs.SetInteger(which, db.Coerce(v))
	}
	if which != mediadb.Children || v == "" {
		return rs.Recordset.SetString(which, v)
	}
	ids := mediadb.ChildrenToVector(v)
	for i := range ids {
		ids[i] &= idMask
	}
	return rs.Recordset.SetString(which, mediadb.VectorToChildren(ids))
}

// rootRecordset is database 0's browse root, with the children of every
// member's root listed, tagged, as its own.
type rootRecordset struct {
	db.Recordset
	merge    *Database
	children string
	computed bool
}

func (rs *rootRecordset) GetString(which db.Field) string {
	if which != mediadb.Children || rs.IsEOF() {
		return rs.Recordset.GetString(which)
	}
	if !rs.computed {
		rs.children = rs.merge.rootChildren()
		rs.computed = true
	}
	return rs.children
}

// SetString on CHILDREN keeps only database 0's own entries.
func (rs *rootRecordset) SetString(which db.Field, v string) error {
	if which != mediadb.Children {
		return rs.Recordset.SetString(which, v)
	}
	ids := []uint32{}
	for _, id := range mediadb.ChildrenToVector(v) {
		if id <= idMask {
			ids = append(ids, id)
		}
	}
	rs.computed = false
	return rs.Recordset.SetString(which, mediadb.VectorToChildren(ids))
}

func (m *Database) rootChildren() string {
	children := []uint32{}
	for n, d := range m.members() {
		if d == nil {
			continue
		}
		q := d.CreateQuery()
		q.Where(q.RestrictInteger(mediadb.ID, db.EQ, mediadb.BrowseRoot))
		rs, err := q.Execute()
		if err != nil || rs.IsEOF() {
			continue
		}
		for _, id := range mediadb.ChildrenToVector(rs.GetString(mediadb.Children)) {
			children = append(children, id|uint32(n)<<idBits)
		}
	}
	return mediadb.VectorToChildren(children)
}
