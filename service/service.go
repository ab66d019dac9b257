package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fulldump/steamdb/db"
	"github.com/fulldump/steamdb/steam"
)

// Service is the registry of named databases served over HTTP.
type Service struct {
	mu        sync.RWMutex
	databases map[string]*Entry
}

func NewService() *Service {
	return &Service{
		databases: map[string]*Entry{},
	}
}

// CreateDatabase registers a new empty in-memory database with the given
// fields.
func (s *Service) CreateDatabase(name string, fields []Field) (*Entry, error) {

	err := validate(name, fields)
	if err != nil {
		return nil, err
	}

	specs := make([]steam.FieldSpec, len(fields))
	for i, f := range fields {
		specs[i] = f.spec()
	}

	return s.MountDatabase(name, fields, steam.NewDatabase(specs...))
}

// MountDatabase registers an existing database under name. fields must
// describe it.
func (s *Service) MountDatabase(name string, fields []Field, d db.Database) (*Entry, error) {

	err := validate(name, fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.databases[name]
	if exists {
		return nil, ErrorDatabaseAlreadyExists
	}

	entry := newEntry(name, uuid.New().String(), fields, d)
	entry.CreationDate = time.Now()
	s.databases[name] = entry
	Databases.Set(float64(len(s.databases)))

	return entry, nil
}

func (s *Service) GetDatabase(name string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.databases[name]
	if !exists {
		return nil, ErrorDatabaseNotFound
	}
	return entry, nil
}

// ListDatabases returns every entry sorted by name.
func (s *Service) ListDatabases() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.databases))
	for _, entry := range s.databases {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func (s *Service) DropDatabase(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.databases[name]
	if !exists {
		return ErrorDatabaseNotFound
	}
	delete(s.databases, name)
	Databases.Set(float64(len(s.databases)))

	return nil
}

func validate(name string, fields []Field) error {
	if name == "" {
		return fmt.Errorf("%w: empty database name", ErrorBadSchema)
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrorBadSchema)
	}

	names := map[string]bool{}
	ids := map[db.Field]bool{}
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field #%d has no name", ErrorBadSchema, f.Id)
		}
		if names[f.Name] {
			return fmt.Errorf("%w: duplicated field name '%s'", ErrorBadSchema, f.Name)
		}
		if ids[f.Id] {
			return fmt.Errorf("%w: duplicated field id %d", ErrorBadSchema, f.Id)
		}
		if f.Type != "" && f.Type != steam.FieldInt.String() && f.Type != steam.FieldString.String() {
			return fmt.Errorf("%w: field '%s' has bad type '%s', must be [int|string]", ErrorBadSchema, f.Name, f.Type)
		}
		names[f.Name] = true
		ids[f.Id] = true
	}

	return nil
}
