package db

import (
	"math"
	"testing"

	. "github.com/fulldump/biff"
)

func TestCoerce(t *testing.T) {

	cases := map[string]uint32{
		"":            0,
		"37":          37,
		"  42abc":     42,
		"+7":          7,
		"beyoncé":     0,
		"-5":          0,
		"4294967295":  math.MaxUint32,
		"99999999999": math.MaxUint32,
	}

	for input, expected := range cases {
		AssertEqual(Coerce(input), expected)
	}

	AssertEqual(Decimal(0), "0")
	AssertEqual(Decimal(222222), "222222")
}

func TestFreeRecordset(t *testing.T) {

	rs := NewFreeRecordset()
	AssertFalse(rs.IsEOF())
	AssertEqual(rs.GetString(4), "")

	AssertNil(rs.SetInteger(3, 999))
	AssertNil(rs.SetString(1, "12 monkeys"))

	AssertEqual(rs.GetString(3), "999")
	AssertEqual(rs.GetInteger(1), uint32(12))
	AssertEqual(rs.Len(), 4)
	AssertEqual(rs.AddRecord(), ErrReadOnly)
	AssertNil(rs.Commit())

	rs.MoveNext()
	AssertTrue(rs.IsEOF())
}

func TestEmptyRecordset(t *testing.T) {

	rs := EmptyRecordset{}
	AssertTrue(rs.IsEOF())
	AssertEqual(rs.SetString(0, "x"), ErrNotFound)
	AssertEqual(rs.Delete(), ErrNotFound)
	AssertNil(rs.Commit())
}

func TestCopyRecord(t *testing.T) {

	src := NewFreeRecordset()
	src.SetString(0, "a")
	src.SetString(2, "c")

	dst := NewFreeRecordset()
	err := CopyRecord(dst, src, src.Len())

	AssertNil(err)
	AssertEqual(dst.GetString(0), "a")
	AssertEqual(dst.GetString(1), "")
	AssertEqual(dst.GetString(2), "c")
}
