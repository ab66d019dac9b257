package configuration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fulldump/steamdb/db"
	"github.com/fulldump/steamdb/service"
)

// SchemaFile describes a database to create at startup:
//
//	name: people
//	fields:
//	  - {id: 0, name: id, type: int, indexed: true}
//	  - {id: 1, name: name, indexed: true}
//	  - {id: 2, name: city}
type SchemaFile struct {
	Name   string        `yaml:"name"`
	Fields []SchemaField `yaml:"fields"`
}

type SchemaField struct {
	Id      db.Field `yaml:"id"`
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Indexed bool     `yaml:"indexed"`
}

func (s *SchemaFile) ServiceFields() []service.Field {
	fields := make([]service.Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, service.Field{
			Id:      f.Id,
			Name:    f.Name,
			Type:    f.Type,
			Indexed: f.Indexed,
		})
	}
	return fields
}

// LoadSchema reads a schema file. Unknown keys are rejected.
func LoadSchema(filename string) (*SchemaFile, error) {

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	schema := &SchemaFile{}
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	err = decoder.Decode(schema)
	if err != nil {
		return nil, fmt.Errorf("schema '%s': %w", filename, err)
	}

	if schema.Name == "" {
		return nil, fmt.Errorf("schema '%s': %w: missing name", filename, service.ErrorBadSchema)
	}

	return schema, nil
}
