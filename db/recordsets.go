package db

// EmptyRecordset is a Recordset with no rows.
type EmptyRecordset struct{}

func (EmptyRecordset) IsEOF() bool                    { return true }
func (EmptyRecordset) GetInteger(Field) uint32        { return 0 }
func (EmptyRecordset) GetString(Field) string         { return "" }
func (EmptyRecordset) SetInteger(Field, uint32) error { return ErrNotFound }
func (EmptyRecordset) SetString(Field, string) error  { return ErrNotFound }
func (EmptyRecordset) MoveNext()                      {}
func (EmptyRecordset) AddRecord() error               { return ErrReadOnly }
func (EmptyRecordset) Commit() error                  { return nil }
func (EmptyRecordset) Delete() error                  { return ErrNotFound }

// FreeRecordset is a single detached row not backed by any Database. It is
// handy as a scratch record: fill it from a parser, then copy it elsewhere.
type FreeRecordset struct {
	strings []string
	eof     bool
}

func NewFreeRecordset() *FreeRecordset {
	return &FreeRecordset{}
}

func (f *FreeRecordset) IsEOF() bool {
	return f.eof
}

func (f *FreeRecordset) GetInteger(which Field) uint32 {
	return Coerce(f.GetString(which))
}

func (f *FreeRecordset) GetString(which Field) string {
	if int(which) >= len(f.strings) {
		return ""
	}
	return f.strings[which]
}

func (f *FreeRecordset) SetInteger(which Field, value uint32) error {
	return f.SetString(which, Decimal(value))
}

func (f *FreeRecordset) SetString(which Field, value string) error {
	if int(which) >= len(f.strings) {
		grown := make([]string, which+1)
		copy(grown, f.strings)
		f.strings = grown
	}
	f.strings[which] = value
	return nil
}

// Len is one more than the highest field ever set.
func (f *FreeRecordset) Len() int {
	return len(f.strings)
}

func (f *FreeRecordset) MoveNext() {
	f.eof = true
}

func (f *FreeRecordset) AddRecord() error {
	return ErrReadOnly
}

func (f *FreeRecordset) Commit() error {
	return nil
}

func (f *FreeRecordset) Delete() error {
	f.eof = true
	return nil
}

// CopyRecord writes every non-empty field of src, up to nfields, into the
// current record of dst.
func CopyRecord(dst, src Recordset, nfields int) error {
	for i := 0; i < nfields; i++ {
		value := src.GetString(Field(i))
		if value == "" {
			continue
		}
		err := dst.SetString(Field(i), value)
		if err != nil {
			return err
		}
	}
	return nil
}
