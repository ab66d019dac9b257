package steam

import "github.com/fulldump/steamdb/db"

type valueKind uint8

const (
	valueNone valueKind = iota
	valueInt
	valueString
	valueBoth
)

// value is the stored content of one field of one record. Either
// representation can be derived from the other; valueBoth keeps both when
// the field type forced a coercion at write time.
type value struct {
	kind valueKind
	i    uint32
	s    string
}

func intValue(n uint32) value {
	return value{kind: valueInt, i: n}
}

func stringValue(s string) value {
	return value{kind: valueString, s: s}
}

func bothValue(n uint32, s string) value {
	return value{kind: valueBoth, i: n, s: s}
}

func (v value) valid() bool {
	return v.kind != valueNone
}

func (v value) integer() uint32 {
	switch v.kind {
	case valueInt, valueBoth:
		return v.i
	case valueString:
		return db.Coerce(v.s)
	}
	return 0
}

func (v value) str() string {
	switch v.kind {
	case valueString, valueBoth:
		return v.s
	case valueInt:
		return db.Decimal(v.i)
	}
	return ""
}
