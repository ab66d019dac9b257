package steam

import (
	"cmp"

	"github.com/google/btree"
)

// bucket is the set of records sharing one key of a secondary index. Empty
// buckets are never kept.
type bucket[K cmp.Ordered] struct {
	key     K
	members *btree.BTreeG[uint64]
}

func (b *bucket[K]) first() uint64 {
	id, _ := b.members.Min()
	return id
}

// after returns the smallest member greater than id.
func (b *bucket[K]) after(id uint64) (next uint64, found bool) {
	b.members.AscendGreaterOrEqual(id+1, func(member uint64) bool {
		next, found = member, true
		return false
	})
	return
}

// fieldIndex is what the record store needs to keep an index in step with
// writes, whatever its key type.
type fieldIndex interface {
	insert(v value, id uint64)
	remove(v value, id uint64)
	len() int
}

// index maps each distinct key to its bucket, in ascending key order. String
// keys compare byte-wise.
type index[K cmp.Ordered] struct {
	buckets *btree.BTreeG[*bucket[K]]
	keyOf   func(value) K
	valueOf func(K) value
}

func newIndex[K cmp.Ordered](keyOf func(value) K, valueOf func(K) value) *index[K] {
	return &index[K]{
		buckets: btree.NewG(32, func(a, b *bucket[K]) bool {
			return a.key < b.key
		}),
		keyOf:   keyOf,
		valueOf: valueOf,
	}
}

func newIntIndex() *index[uint32] {
	return newIndex(value.integer, intValue)
}

func newStringIndex() *index[string] {
	return newIndex(value.str, stringValue)
}

func (x *index[K]) insert(v value, id uint64) {
	key := x.keyOf(v)
	b, ok := x.buckets.Get(&bucket[K]{key: key})
	if !ok {
		b = &bucket[K]{
			key:     key,
			members: btree.NewOrderedG[uint64](16),
		}
		x.buckets.ReplaceOrInsert(b)
	}
	b.members.ReplaceOrInsert(id)
}

func (x *index[K]) remove(v value, id uint64) {
	key := x.keyOf(v)
	b, ok := x.buckets.Get(&bucket[K]{key: key})
	if !ok {
		return
	}
	b.members.Delete(id)
	if b.members.Len() == 0 {
		x.buckets.Delete(b)
	}
}

func (x *index[K]) len() int {
	return x.buckets.Len()
}

func (x *index[K]) get(key K) *bucket[K] {
	b, _ := x.buckets.Get(&bucket[K]{key: key})
	return b
}

func (x *index[K]) first() *bucket[K] {
	b, _ := x.buckets.Min()
	return b
}

// ceiling returns the first bucket whose key is >= key.
func (x *index[K]) ceiling(key K) (found *bucket[K]) {
	x.buckets.AscendGreaterOrEqual(&bucket[K]{key: key}, func(b *bucket[K]) bool {
		found = b
		return false
	})
	return
}

// higher returns the first bucket whose key is > key.
func (x *index[K]) higher(key K) *bucket[K] {
	var found *bucket[K]
	x.buckets.AscendGreaterOrEqual(&bucket[K]{key: key}, func(b *bucket[K]) bool {
		if b.key == key {
			return true
		}
		found = b
		return false
	})
	return found
}

// members lists the record ids filed under key, ascending.
func (x *index[K]) members(key K) []uint64 {
	b := x.get(key)
	if b == nil {
		return nil
	}
	ids := make([]uint64, 0, b.members.Len())
	b.members.Ascend(func(id uint64) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
