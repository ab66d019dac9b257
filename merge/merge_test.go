package merge

import (
	"errors"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/steamdb/db"
	"github.com/fulldump/steamdb/mediadb"
	"github.com/fulldump/steamdb/steam"
)

func newMember(rootTitle string, child uint32, childTitle string) *steam.Database {
	d := mediadb.New()

	rs := d.CreateRecordset()
	rs.AddRecord()
	rs.SetInteger(mediadb.ID, mediadb.BrowseRoot)
	rs.SetString(mediadb.Title, rootTitle)
	rs.SetString(mediadb.Children, mediadb.VectorToChildren([]uint32{child}))
	rs.Commit()

	rs.AddRecord()
	rs.SetInteger(mediadb.ID, child)
	rs.SetInteger(mediadb.IDParent, mediadb.BrowseRoot)
	rs.SetString(mediadb.Title, childTitle)
	rs.Commit()

	return d
}

func lookup(d db.Database, id uint32) (db.Recordset, error) {
	q := d.CreateQuery()
	q.Where(q.RestrictInteger(mediadb.ID, db.EQ, id))
	return q.Execute()
}

func TestMerge_NoDatabases(t *testing.T) {

	m := New()

	rs, err := lookup(m, mediadb.BrowseRoot)
	AssertNil(err)
	AssertTrue(rs.IsEOF())

	rs, err = lookup(m, 27)
	AssertNil(err)
	AssertTrue(rs.IsEOF())

	q := m.CreateQuery()
	q.CollateBy(mediadb.Artist)
	rs, err = q.Execute()
	AssertNil(err)
	AssertTrue(rs.IsEOF())

	AssertTrue(m.CreateRecordset().IsEOF())
	AssertEqual(m.CreateRecordset().AddRecord(), db.ErrReadOnly)

	_, err = m.AllocateID()
	AssertTrue(errors.Is(err, db.ErrNotFound))

	AssertEqual(m.Count(), 0)
}

func TestMerge(t *testing.T) {

	Alternative("Two databases", func(a *A) {

		db1 := newMember("root1", 0x120, "Artists")
		db2 := newMember("root2", 0x200, "Radio")

		m := New()

		n, err := m.AddDatabase(db1)
		AssertNil(err)
		AssertEqual(n, 0)

		rs, err := lookup(m, mediadb.BrowseRoot)
		AssertNil(err)
		AssertEqual(mediadb.ChildrenToVector(rs.GetString(mediadb.Children)), []uint32{0x120})

		n, _ = m.AddDatabase(db2)
		AssertEqual(n, 1)
		AssertEqual(m.Count(), db1.Count())

		a.Alternative("Merged root", func(a *A) {
			rs, err := lookup(m, mediadb.BrowseRoot)
			AssertNil(err)
			AssertEqual(rs.GetString(mediadb.Title), "root1")
			AssertEqual(mediadb.ChildrenToVector(rs.GetString(mediadb.Children)), []uint32{0x00000120, 0x01000200})

			children := []uint32{0x120, 0x01000200, 0x121}
			AssertNil(rs.SetString(mediadb.Children, mediadb.VectorToChildren(children)))
			rs.MoveNext()
			AssertTrue(rs.IsEOF())

			own, _ := lookup(db1, mediadb.BrowseRoot)
			AssertEqual(mediadb.ChildrenToVector(own.GetString(mediadb.Children)), []uint32{0x120, 0x121})
		})

		a.Alternative("Routed lookup", func(a *A) {
			rs, err := lookup(m, 0x01000200)
			AssertNil(err)
			AssertFalse(rs.IsEOF())
			AssertEqual(rs.GetInteger(mediadb.ID), uint32(0x01000200))
			AssertEqual(rs.GetString(mediadb.ID), "16777728")
			AssertEqual(rs.GetInteger(mediadb.IDParent), mediadb.BrowseRoot)
			AssertEqual(rs.GetString(mediadb.Title), "Radio")
			AssertEqual(rs.GetString(mediadb.IDHigh), "")
			AssertEqual(rs.GetInteger(mediadb.IDHigh), uint32(0))

			AssertNil(rs.SetInteger(mediadb.IDHigh, 0x01000333))
			inner, _ := lookup(db2, 0x200)
			AssertEqual(inner.GetInteger(mediadb.IDHigh), uint32(0x333))
		})

		a.Alternative("Routed children are tagged", func(a *A) {
			rs, _ := lookup(db2, 0x200)
			rs.SetString(mediadb.Children, mediadb.VectorToChildren([]uint32{0x201, 0x202}))

			rs, _ = lookup(m, 0x01000200)
			AssertEqual(mediadb.ChildrenToVector(rs.GetString(mediadb.Children)), []uint32{0x01000201, 0x01000202})

			AssertNil(rs.SetString(mediadb.Children, mediadb.VectorToChildren([]uint32{0x01000203})))
			inner, _ := lookup(db2, 0x200)
			AssertEqual(mediadb.ChildrenToVector(inner.GetString(mediadb.Children)), []uint32{0x203})
		})

		a.Alternative("Database 0 lookup is untagged", func(a *A) {
			rs, err := lookup(m, 0x120)
			AssertNil(err)
			AssertEqual(rs.GetInteger(mediadb.ID), uint32(0x120))
			AssertEqual(rs.GetString(mediadb.Title), "Artists")
		})

		a.Alternative("Other queries go to database 0", func(a *A) {
			q := m.CreateQuery()
			q.OrderBy(mediadb.Title)
			rs, err := q.Execute()
			AssertNil(err)

			titles := []string{}
			for ; !rs.IsEOF(); rs.MoveNext() {
				titles = append(titles, rs.GetString(mediadb.Title))
			}
			AssertEqual(titles, []string{"Artists", "root1"})

			q = m.CreateQuery()
			q.CollateBy(mediadb.Composer)
			rs, err = q.Execute()
			AssertNil(rs)
			AssertTrue(errors.Is(err, db.ErrUnsupportedQuery))
		})

		a.Alternative("Unknown database number", func(a *A) {
			rs, err := lookup(m, 0x07000120)
			AssertNil(rs)
			AssertTrue(errors.Is(err, db.ErrUnsupportedQuery))
		})

		a.Alternative("Removed database frees its slot", func(a *A) {
			m.RemoveDatabase(db2)

			rs, err := lookup(m, 0x01000200)
			AssertNil(rs)
			AssertTrue(errors.Is(err, db.ErrUnsupportedQuery))

			rs, _ = lookup(m, mediadb.BrowseRoot)
			AssertEqual(mediadb.ChildrenToVector(rs.GetString(mediadb.Children)), []uint32{0x120})

			n, _ := m.AddDatabase(db2)
			AssertEqual(n, 1)
		})

		a.Alternative("Writes and ids go to database 0", func(a *A) {
			rs := m.CreateRecordset()
			AssertNil(rs.AddRecord())
			AssertNil(rs.SetString(mediadb.Title, "new"))
			AssertEqual(db1.Count(), 3)

			id, err := m.AllocateID()
			AssertNil(err)
			AssertEqual(id, uint32(0x121))
		})
	})
}

func TestMerge_NoSpace(t *testing.T) {

	m := New()
	for i := 0; i < MaxDatabases; i++ {
		_, err := m.AddDatabase(mediadb.New())
		AssertNil(err)
	}

	_, err := m.AddDatabase(mediadb.New())
	AssertEqual(err, ErrNoSpace)
}

func TestMerge_LastSlotChildren(t *testing.T) {

	m := New()
	for i := 0; i < MaxDatabases; i++ {
		_, err := m.AddDatabase(newMember("root", 0x101, "item"))
		AssertNil(err)
	}

	rs, err := lookup(m, mediadb.BrowseRoot)
	AssertNil(err)

	children := mediadb.ChildrenToVector(rs.GetString(mediadb.Children))
	AssertEqual(len(children), MaxDatabases)
	AssertEqual(children[MaxDatabases-1], uint32(MaxDatabases-1)<<24|0x101)

	item, err := lookup(m, children[MaxDatabases-1])
	AssertNil(err)
	AssertEqual(item.GetString(mediadb.Title), "item")
}
