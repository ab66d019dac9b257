package steam

import "cmp"

// orderedRecordset walks an index in ascending key order and, within a key,
// in ascending record id order. Records without a value for the field are
// not in the index and so are never returned.
type orderedRecordset[K cmp.Ordered] struct {
	cursor
	index *index[K]
	key   K
}

func newOrderedRecordset[K cmp.Ordered](d *Database, x *index[K]) *orderedRecordset[K] {
	rs := &orderedRecordset[K]{
		cursor: cursor{db: d},
		index:  x,
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	rs.settle(x.first())

	return rs
}

func (rs *orderedRecordset[K]) settle(b *bucket[K]) {
	if b == nil {
		rs.eof = true
		return
	}
	rs.key = b.key
	rs.id = b.first()
}

func (rs *orderedRecordset[K]) MoveNext() {
	if rs.eof {
		return
	}

	rs.db.mu.RLock()
	defer rs.db.mu.RUnlock()

	b := rs.index.ceiling(rs.key)
	if b != nil && b.key == rs.key {
		if next, ok := b.after(rs.id); ok {
			rs.id = next
			return
		}
		b = rs.index.higher(rs.key)
	}
	rs.settle(b)
}

func (rs *orderedRecordset[K]) Delete() error {
	err := rs.remove()
	if err != nil {
		return err
	}
	rs.MoveNext()
	return nil
}
