package steam

import "cmp"

// indexedRecordset enumerates the members of one index bucket in record id
// order. A bucket that does not exist, or stops existing, means EOF.
type indexedRecordset[K cmp.Ordered] struct {
	cursor
	index *index[K]
	key   K
}

func newIndexedRecordset[K cmp.Ordered](d *Database, x *index[K], key K) *indexedRecordset[K] {
	rs := &indexedRecordset[K]{
		cursor: cursor{db: d},
		index:  x,
		key:    key,
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	b := x.get(key)
	if b == nil {
		rs.eof = true
		return rs
	}
	rs.id = b.first()

	return rs
}

func (rs *indexedRecordset[K]) MoveNext() {
	if rs.eof {
		return
	}

	rs.db.mu.RLock()
	defer rs.db.mu.RUnlock()

	b := rs.index.get(rs.key)
	if b == nil {
		rs.eof = true
		return
	}

	next, ok := b.after(rs.id)
	if !ok {
		rs.eof = true
		return
	}
	rs.id = next
}

func (rs *indexedRecordset[K]) Delete() error {
	err := rs.remove()
	if err != nil {
		return err
	}
	rs.MoveNext()
	return nil
}
