package mediadb

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/steamdb/db"
	"github.com/fulldump/steamdb/steam"
)

func TestChildren_RoundTrip(t *testing.T) {

	cases := [][]uint32{
		nil,
		{111, 9, 91},
		{130},
		{130, 10000, 100000, 1000000, 10000000, 0x400000, 0x4000000, 0x40000000},
		{0x01000200, 0x00000120},
	}

	for _, ids := range cases {
		AssertEqual(ChildrenToVector(VectorToChildren(ids)), ids)
	}
}

func TestChildren_OutOfRange(t *testing.T) {

	AssertEqual(ChildrenToVector(VectorToChildren([]uint32{0x80000101, 0x102})), []uint32{0x102})
	AssertEqual(ChildrenToVector(VectorToChildren([]uint32{0x7FFFFFFF, 0xFFFFFFFF, 0x120})), []uint32{0x7FFFFFFF, 0x120})
	AssertEqual(VectorToChildren([]uint32{MaxChildID}), "")
}

func TestChildren_Encoding(t *testing.T) {

	AssertEqual(VectorToChildren(nil), "")
	AssertEqual(VectorToChildren([]uint32{65, 66}), "\x02AB")
	AssertEqual(VectorToChildren([]uint32{0}), "\x01?")
	AssertEqual(ChildrenToVector("\x01?"), []uint32{63})
	AssertEqual(VectorToChildren([]uint32{0x120}), "\x01\xC4\xA0")

	// implausible counts
	AssertEqual(len(ChildrenToVector("?")), 63)
	AssertEqual(ChildrenToVector("\x80"), []uint32(nil))

	// truncated input pads with zero bits
	AssertEqual(ChildrenToVector("\x02A"), []uint32{65, 0})
}

func TestSchema(t *testing.T) {

	specs := Schema()
	AssertEqual(len(specs), int(FieldCount))
	AssertEqual(int(FieldCount), 30)

	AssertEqual(specs[ID], steam.FieldSpec{Field: ID, Type: steam.FieldInt, Indexed: true})
	AssertEqual(specs[Path], steam.FieldSpec{Field: Path, Type: steam.FieldString, Indexed: true})
	AssertEqual(specs[Year], steam.FieldSpec{Field: Year, Type: steam.FieldInt})
	AssertEqual(specs[Children], steam.FieldSpec{Field: Children, Type: steam.FieldString})

	AssertEqual(TagOf(AudioCodec), "codec")
	AssertEqual(TagOf(FieldCount), "")
	f, ok := FieldByTag("idparent")
	AssertTrue(ok)
	AssertEqual(f, IDParent)
	_, ok = FieldByTag("nope")
	AssertFalse(ok)

	for i, tag := range Tags() {
		AssertTrue(tag != "")
		f, _ := FieldByTag(tag)
		AssertEqual(f, db.Field(i))
	}
}

func addItem(d db.Database, id uint32, title string) {
	rs := d.CreateRecordset()
	rs.AddRecord()
	rs.SetInteger(ID, id)
	rs.SetString(Title, title)
	rs.Commit()
}

func TestAllocateID(t *testing.T) {

	d := New()

	id, err := AllocateID(d)
	AssertNil(err)
	AssertEqual(id, FirstFreeID)

	addItem(d, BrowseRoot, "root")
	id, _ = AllocateID(d)
	AssertEqual(id, FirstFreeID)

	addItem(d, 0x150, "one")
	addItem(d, 0x120, "two")
	id, _ = AllocateID(d)
	AssertEqual(id, uint32(0x151))
}

func TestDump_RoundTrip(t *testing.T) {

	d := New()
	addItem(d, BrowseRoot, "root")
	rs := d.CreateRecordset()
	rs.SetString(Children, VectorToChildren([]uint32{0x120, 0x121}))

	addItem(d, 0x120, "Bohemian Rhapsody")
	rs = d.CreateRecordset()
	rs.MoveNext()
	rs.SetString(Artist, "Queen")
	rs.SetInteger(Year, 1975)
	rs.SetString(Comment, "\"quoted\"\nand newline")

	buf := &bytes.Buffer{}
	err := WriteJSON(d, Tags(), buf)
	AssertNil(err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	AssertEqual(len(lines), 3)
	AssertTrue(strings.HasPrefix(lines[0], `{"dump":"`))
	AssertTrue(strings.HasSuffix(lines[0], `","schema":1}`))
	AssertEqual(lines[1], `{"id":"256","title":"root","children":[288,289]}`)

	reloaded := New()
	n, err := ReadJSON(reloaded, Tags(), bytes.NewReader(buf.Bytes()))
	AssertNil(err)
	AssertEqual(n, 2)

	q := reloaded.CreateQuery()
	q.Where(q.RestrictInteger(ID, db.EQ, 0x120))
	found, err := q.Execute()
	AssertNil(err)
	AssertEqual(found.GetString(Title), "Bohemian Rhapsody")
	AssertEqual(found.GetString(Artist), "Queen")
	AssertEqual(found.GetInteger(Year), uint32(1975))
	AssertEqual(found.GetString(Comment), "\"quoted\"\nand newline")

	q = reloaded.CreateQuery()
	q.Where(q.RestrictInteger(ID, db.EQ, BrowseRoot))
	found, _ = q.Execute()
	AssertEqual(ChildrenToVector(found.GetString(Children)), []uint32{0x120, 0x121})
}

func TestReadJSON_Errors(t *testing.T) {

	d := New()

	_, err := ReadJSON(d, Tags(), strings.NewReader(`{"dump":"x","schema":7}`))
	AssertNotNil(err)

	_, err = ReadJSON(d, Tags(), strings.NewReader(``))
	AssertNotNil(err)

	n, err := ReadJSON(d, Tags(), strings.NewReader(`{"dump":"x","schema":1}
{"id":"300","unknown":"ignored"}
{"id":`))
	AssertNotNil(err)
	AssertEqual(n, 1)
	AssertEqual(d.Count(), 1)
}

func writeFile(t *testing.T, filename string) {
	err := os.MkdirAll(filepath.Dir(filename), 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filename, []byte("not really audio"), 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func TestScanner(t *testing.T) {

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Queen", "Bohemian Rhapsody.mp3"))
	writeFile(t, filepath.Join(root, "Queen", "cover.jpg"))
	writeFile(t, filepath.Join(root, "Bach", "Toccata.FLAC"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	d := New()
	addItem(d, 0x200, "already there")

	s := NewScanner(d)
	added, err := s.Scan(context.Background(), root)
	AssertNil(err)
	AssertEqual(added, 2)
	AssertEqual(d.Count(), 3)

	q := d.CreateQuery()
	q.OrderBy(Title)
	rs, err := q.Execute()
	AssertNil(err)

	AssertEqual(rs.GetString(Title), "Bohemian Rhapsody")
	AssertEqual(rs.GetString(Path), filepath.Join(root, "Queen", "Bohemian Rhapsody.mp3"))
	AssertEqual(rs.GetInteger(AudioCodec), AudioCodecMP3)
	AssertEqual(rs.GetInteger(Type), TypeTune)
	AssertEqual(rs.GetInteger(SizeBytes), uint32(len("not really audio")))
	AssertTrue(rs.GetInteger(MTime) > 0)
	AssertEqual(rs.GetInteger(ID), uint32(0x202))

	rs.MoveNext()
	AssertEqual(rs.GetString(Title), "Toccata")
	AssertEqual(rs.GetInteger(AudioCodec), AudioCodecFLAC)
	AssertEqual(rs.GetInteger(ID), uint32(0x201))

	Alternative("Rescan adds nothing", func(a *A) {
		added, err := NewScanner(d).Scan(context.Background(), root)
		AssertNil(err)
		AssertEqual(added, 0)
		AssertEqual(d.Count(), 3)
	})
}

var errWrite = errors.New("write refused")

type refusingDatabase struct {
	*steam.Database
	refused db.Field
}

func (d refusingDatabase) CreateRecordset() db.Recordset {
	return refusingRecordset{Recordset: d.Database.CreateRecordset(), refused: d.refused}
}

type refusingRecordset struct {
	db.Recordset
	refused db.Field
}

func (rs refusingRecordset) SetString(which db.Field, value string) error {
	if which == rs.refused {
		return errWrite
	}
	return rs.Recordset.SetString(which, value)
}

func TestScanner_WriteError(t *testing.T) {

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp3"))

	d := refusingDatabase{Database: New(), refused: Path}
	added, err := NewScanner(d).Scan(context.Background(), root)
	AssertTrue(errors.Is(err, errWrite))
	AssertEqual(added, 0)
}

func TestScanner_Cancelled(t *testing.T) {

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp3"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New()
	added, err := NewScanner(d).Scan(ctx, root)
	AssertTrue(errors.Is(err, context.Canceled))
	AssertEqual(added, 0)
	AssertEqual(d.Count(), 0)
}
