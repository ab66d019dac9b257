// Package db defines the generic database contract shared by every backend:
// a Database hands out Recordsets (cursors) and Queries, a Query is built from
// restrictions combined with AND/OR and executed into a Recordset.
package db

import "errors"

// Field identifies a column. Ids are small dense integers assigned by the
// calling schema and are not interpreted beyond their declared type.
type Field uint

var (
	ErrNotFound         = errors.New("record not found")
	ErrReadOnly         = errors.New("recordset is read-only")
	ErrUnsupportedQuery = errors.New("unsupported query")
	ErrUnknownField     = errors.New("unknown field")
	ErrBadPattern       = errors.New("bad LIKE pattern")
)

// Database models a flat-file database. The only generic operations are
// creating a cursor roving the whole table and creating a query.
type Database interface {
	CreateRecordset() Recordset
	CreateQuery() Query
}

// Recordset is a cursor. There is no separate record type: fields are read
// and written through the cursor positioned on a record.
//
// Read accessors never fail, they return 0 or "" at EOF. Write accessors
// return ErrNotFound when there is no current record.
type Recordset interface {
	IsEOF() bool

	GetInteger(which Field) uint32
	GetString(which Field) string

	SetInteger(which Field, value uint32) error
	SetString(which Field, value string) error

	MoveNext()
	AddRecord() error
	Commit() error

	// Delete removes the current record, if any, and implicitly moves to the
	// next one.
	Delete() error
}
