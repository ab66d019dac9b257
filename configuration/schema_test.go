package configuration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/steamdb/service"
)

func writeSchema(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "schema.yaml")
	err := os.WriteFile(filename, []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestLoadSchema(t *testing.T) {

	filename := writeSchema(t, `
name: people
fields:
  - {id: 0, name: id, type: int, indexed: true}
  - {id: 1, name: name, indexed: true}
  - id: 2
    name: city
`)

	schema, err := LoadSchema(filename)
	AssertNil(err)
	AssertEqual(schema.Name, "people")
	AssertEqual(schema.ServiceFields(), []service.Field{
		{Id: 0, Name: "id", Type: "int", Indexed: true},
		{Id: 1, Name: "name", Indexed: true},
		{Id: 2, Name: "city"},
	})
}

func TestLoadSchema_UnknownKey(t *testing.T) {

	filename := writeSchema(t, `
name: people
fields:
  - {id: 0, name: id, kind: int}
`)

	_, err := LoadSchema(filename)
	AssertNotNil(err)
}

func TestLoadSchema_MissingName(t *testing.T) {

	filename := writeSchema(t, `
fields:
  - {id: 0, name: id}
`)

	_, err := LoadSchema(filename)
	AssertTrue(errors.Is(err, service.ErrorBadSchema))
}

func TestLoadSchema_MissingFile(t *testing.T) {

	_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.yaml"))
	AssertTrue(errors.Is(err, os.ErrNotExist))
}

func TestDefault(t *testing.T) {

	c := Default()
	AssertEqual(c.HttpAddr, "127.0.0.1:8080")
	AssertTrue(c.ShowBanner)
	AssertEqual(c.ApiKey, "")
}
