package mediadb

import (
	"fmt"

	"github.com/fulldump/steamdb/db"
)

// FirstFreeID is the lowest id handed out to ordinary items. Everything below
// is reserved for the well-known roots.
const FirstFreeID uint32 = 0x101

// AllocateID returns one more than the largest ID present in d, and never
// less than FirstFreeID. It needs d to support collating by ID.
func AllocateID(d db.Database) (uint32, error) {
	q := d.CreateQuery()
	err := q.CollateBy(ID)
	if err != nil {
		return 0, fmt.Errorf("collate by id: %w", err)
	}
	err = q.Where(q.RestrictInteger(ID, db.GE, FirstFreeID))
	if err != nil {
		return 0, fmt.Errorf("where: %w", err)
	}

	rs, err := q.Execute()
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}

	next := FirstFreeID
	for ; !rs.IsEOF(); rs.MoveNext() {
		if id := rs.GetInteger(ID); id >= next {
			next = id + 1
		}
	}
	return next, nil
}
