// Package steam is an in-memory implementation of the db contract, done "by
// steam" with ordered trees: a record table keyed by record id plus one
// secondary index per indexed field. Nothing is persisted.
package steam

import (
	"fmt"
	"sync"

	"github.com/google/btree"

	"github.com/fulldump/steamdb/db"
)

type FieldType int

const (
	FieldString FieldType = iota // the default
	FieldInt
)

func (t FieldType) String() string {
	if t == FieldInt {
		return "int"
	}
	return "string"
}

// FieldSpec declares one field. Fields not declared are unindexed strings.
type FieldSpec struct {
	Field   db.Field
	Type    FieldType
	Indexed bool
}

type record struct {
	id     uint64
	values []value
}

// Database owns the records and keeps every secondary index consistent with
// them on each individual write. Commit is a no-op: writes are visible to
// every cursor as soon as the call returns.
//
// One lock guards the whole store and is taken for the duration of a single
// call, never across calls, so cursors are live views rather than snapshots.
type Database struct {
	mu      sync.RWMutex
	fields  []FieldSpec
	nextID  uint64
	records *btree.BTreeG[*record]
	indexes []fieldIndex // nil for unindexed fields
}

func NewDatabase(specs ...FieldSpec) *Database {

	nfields := 0
	for _, spec := range specs {
		if int(spec.Field) >= nfields {
			nfields = int(spec.Field) + 1
		}
	}

	d := &Database{
		fields: make([]FieldSpec, nfields),
		nextID: 1,
		records: btree.NewG(32, func(a, b *record) bool {
			return a.id < b.id
		}),
		indexes: make([]fieldIndex, nfields),
	}

	for i := range d.fields {
		d.fields[i].Field = db.Field(i)
	}

	for _, spec := range specs {
		d.fields[spec.Field] = spec
		if !spec.Indexed {
			continue
		}
		if spec.Type == FieldInt {
			d.indexes[spec.Field] = newIntIndex()
		} else {
			d.indexes[spec.Field] = newStringIndex()
		}
	}

	return d
}

// Fields describes every field, in field id order.
func (d *Database) Fields() []FieldSpec {
	result := make([]FieldSpec, len(d.fields))
	copy(result, d.fields)
	return result
}

func (d *Database) FieldSpec(which db.Field) (FieldSpec, bool) {
	if int(which) >= len(d.fields) {
		return FieldSpec{}, false
	}
	return d.fields[which], true
}

// Count returns the number of live records.
func (d *Database) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records.Len()
}

// Keys returns the number of distinct values currently indexed for a field,
// or 0 when the field is not indexed.
func (d *Database) Keys(which db.Field) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(which) >= len(d.indexes) || d.indexes[which] == nil {
		return 0
	}
	return d.indexes[which].len()
}

func (d *Database) CreateRecordset() db.Recordset {
	return newSimpleRecordset(d, nil)
}

func (d *Database) CreateQuery() db.Query {
	return &Query{
		QueryBase: db.NewQueryBase(),
		db:        d,
	}
}

// The methods below expect d.mu to be held by the caller.

func (d *Database) record(id uint64) *record {
	r, _ := d.records.Get(&record{id: id})
	return r
}

func (d *Database) firstRecord() *record {
	r, _ := d.records.Min()
	return r
}

// recordAfter returns the live record with the smallest id greater than id.
func (d *Database) recordAfter(id uint64) (found *record) {
	d.records.AscendGreaterOrEqual(&record{id: id + 1}, func(r *record) bool {
		found = r
		return false
	})
	return
}

func (d *Database) add() uint64 {
	r := &record{
		id:     d.nextID,
		values: make([]value, len(d.fields)),
	}
	d.nextID++
	d.records.ReplaceOrInsert(r)
	return r.id
}

func (d *Database) get(id uint64, which db.Field) value {
	r := d.record(id)
	if r == nil || int(which) >= len(r.values) {
		return value{}
	}
	return r.values[which]
}

// set stores v, moving the record between index buckets if needed. The
// value is coerced to the declared field type so that the cached
// representation is the one the index keys on.
func (d *Database) set(id uint64, which db.Field, v value) error {
	if int(which) >= len(d.fields) {
		return fmt.Errorf("%w: #%d", db.ErrUnknownField, which)
	}

	r := d.record(id)
	if r == nil {
		return db.ErrNotFound
	}

	switch {
	case d.fields[which].Type == FieldInt && v.kind == valueString:
		v = bothValue(db.Coerce(v.s), v.s)
	case d.fields[which].Type == FieldString && v.kind == valueInt:
		v = bothValue(v.i, db.Decimal(v.i))
	}

	old := r.values[which]
	if old == v {
		return nil
	}

	if idx := d.indexes[which]; idx != nil {
		if old.valid() {
			idx.remove(old, id)
		}
		idx.insert(v, id)
	}
	r.values[which] = v

	return nil
}

func (d *Database) delete(id uint64) error {
	r := d.record(id)
	if r == nil {
		return db.ErrNotFound
	}

	for i, idx := range d.indexes {
		if idx != nil && r.values[i].valid() {
			idx.remove(r.values[i], id)
		}
	}

	d.records.Delete(r)

	return nil
}
