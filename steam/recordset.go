package steam

import (
	"github.com/fulldump/steamdb/db"
)

// cursor holds the position shared by every row-returning recordset and
// implements field access and writes on the current record. Positioning is
// left to the embedding type.
type cursor struct {
	db  *Database
	id  uint64
	eof bool
}

func (c *cursor) IsEOF() bool {
	return c.eof
}

func (c *cursor) GetInteger(which db.Field) uint32 {
	if c.eof {
		return 0
	}
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()
	return c.db.get(c.id, which).integer()
}

func (c *cursor) GetString(which db.Field) string {
	if c.eof {
		return ""
	}
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()
	return c.db.get(c.id, which).str()
}

func (c *cursor) SetInteger(which db.Field, n uint32) error {
	if c.eof {
		return db.ErrNotFound
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	return c.db.set(c.id, which, intValue(n))
}

func (c *cursor) SetString(which db.Field, s string) error {
	if c.eof {
		return db.ErrNotFound
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	return c.db.set(c.id, which, stringValue(s))
}

// AddRecord appends an empty record and makes it current.
func (c *cursor) AddRecord() error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	c.id = c.db.add()
	c.eof = false
	return nil
}

func (c *cursor) Commit() error {
	return nil
}

func (c *cursor) remove() error {
	if c.eof {
		return db.ErrNotFound
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	return c.db.delete(c.id)
}

// simpleRecordset walks the record table in id order, skipping records the
// matcher rejects. Records added behind the cursor's back with a greater id
// are seen; deleted ones are just not found again.
type simpleRecordset struct {
	cursor
	match *matcher
}

func newSimpleRecordset(d *Database, m *matcher) *simpleRecordset {
	rs := &simpleRecordset{
		cursor: cursor{db: d},
		match:  m,
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	r := d.firstRecord()
	for r != nil && !rs.accepts(r) {
		r = d.recordAfter(r.id)
	}
	rs.settle(r)

	return rs
}

func (rs *simpleRecordset) accepts(r *record) bool {
	return rs.match == nil || rs.match.match(r)
}

func (rs *simpleRecordset) settle(r *record) {
	if r == nil {
		rs.eof = true
		return
	}
	rs.id = r.id
}

func (rs *simpleRecordset) MoveNext() {
	if rs.eof {
		return
	}

	rs.db.mu.RLock()
	defer rs.db.mu.RUnlock()

	r := rs.db.recordAfter(rs.id)
	for r != nil && !rs.accepts(r) {
		r = rs.db.recordAfter(r.id)
	}
	rs.settle(r)
}

func (rs *simpleRecordset) Delete() error {
	err := rs.remove()
	if err != nil {
		return err
	}
	rs.MoveNext()
	return nil
}
