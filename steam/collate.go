package steam

import (
	"cmp"

	"github.com/fulldump/steamdb/db"
)

// collateRecordset returns one row per distinct key of an index. With a
// matcher, a key only counts if at least one of its records matches. Every
// field reads as the key itself; the member records are never exposed.
type collateRecordset[K cmp.Ordered] struct {
	db    *Database
	index *index[K]
	match *matcher
	key   K
	eof   bool
}

func newCollateRecordset[K cmp.Ordered](d *Database, x *index[K], m *matcher) *collateRecordset[K] {
	rs := &collateRecordset[K]{
		db:    d,
		index: x,
		match: m,
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	rs.moveUntilValid(x.first())

	return rs
}

func (rs *collateRecordset[K]) moveUntilValid(b *bucket[K]) {
	for ; b != nil; b = rs.index.higher(b.key) {
		if rs.accepts(b) {
			rs.key = b.key
			return
		}
	}
	rs.eof = true
}

func (rs *collateRecordset[K]) accepts(b *bucket[K]) bool {
	if rs.match == nil {
		return true
	}

	found := false
	b.members.Ascend(func(id uint64) bool {
		r := rs.db.record(id)
		if r != nil && rs.match.match(r) {
			found = true
			return false
		}
		return true
	})

	return found
}

func (rs *collateRecordset[K]) IsEOF() bool {
	return rs.eof
}

func (rs *collateRecordset[K]) GetInteger(db.Field) uint32 {
	if rs.eof {
		return 0
	}
	return rs.index.valueOf(rs.key).integer()
}

func (rs *collateRecordset[K]) GetString(db.Field) string {
	if rs.eof {
		return ""
	}
	return rs.index.valueOf(rs.key).str()
}

func (rs *collateRecordset[K]) MoveNext() {
	if rs.eof {
		return
	}

	rs.db.mu.RLock()
	defer rs.db.mu.RUnlock()

	rs.moveUntilValid(rs.index.higher(rs.key))
}

func (rs *collateRecordset[K]) writeError() error {
	if rs.eof {
		return db.ErrNotFound
	}
	return db.ErrReadOnly
}

func (rs *collateRecordset[K]) SetInteger(db.Field, uint32) error {
	return rs.writeError()
}

func (rs *collateRecordset[K]) SetString(db.Field, string) error {
	return rs.writeError()
}

func (rs *collateRecordset[K]) AddRecord() error {
	return db.ErrReadOnly
}

func (rs *collateRecordset[K]) Commit() error {
	return nil
}

func (rs *collateRecordset[K]) Delete() error {
	return rs.writeError()
}
