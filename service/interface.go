package service

import (
	"errors"

	"github.com/fulldump/steamdb/db"
)

var (
	ErrorDatabaseNotFound      = errors.New("database not found")
	ErrorDatabaseAlreadyExists = errors.New("database already exists")
	ErrorBadSchema             = errors.New("bad schema")
	ErrorUnknownField          = errors.New("unknown field")
	ErrorBadCondition          = errors.New("bad condition")
	ErrorBadValue              = errors.New("bad value")
)

type Servicer interface {
	CreateDatabase(name string, fields []Field) (*Entry, error)
	MountDatabase(name string, fields []Field, d db.Database) (*Entry, error)
	GetDatabase(name string) (*Entry, error)
	ListDatabases() []*Entry
	DropDatabase(name string) error
}
