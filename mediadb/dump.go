package mediadb

import (
	"errors"
	"fmt"
	"io"

	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"

	"github.com/fulldump/steamdb/db"
)

// DumpSchema is the version written in the dump header.
const DumpSchema = 1

// childrenTag is dumped as an array of ids instead of its packed string.
const childrenTag = "children"

type dumpHeader struct {
	Dump   string `json:"dump"`
	Schema int    `json:"schema"`
}

// WriteJSON writes every record of d as JSON lines. The first line is a
// header carrying a fresh dump id; each following line is one record mapping
// names[field] to the field's string value. Fields with an empty name or an
// empty value are left out.
func WriteJSON(d db.Database, names []string, w io.Writer) error {

	enc := jsontext.NewEncoder(w, jsontext.AllowInvalidUTF8(true))

	err := json2.MarshalEncode(enc, dumpHeader{
		Dump:   uuid.New().String(),
		Schema: DumpSchema,
	})
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for rs := d.CreateRecordset(); !rs.IsEOF(); rs.MoveNext() {
		err := writeRecord(enc, rs, names)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeRecord(enc *jsontext.Encoder, rs db.Recordset, names []string) error {

	err := enc.WriteToken(jsontext.BeginObject)
	if err != nil {
		return err
	}

	for i, name := range names {
		if name == "" {
			continue
		}
		value := rs.GetString(db.Field(i))
		if value == "" {
			continue
		}

		err := enc.WriteToken(jsontext.String(name))
		if err != nil {
			return err
		}

		if name != childrenTag {
			err = enc.WriteToken(jsontext.String(value))
		} else {
			err = json2.MarshalEncode(enc, ChildrenToVector(value))
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return enc.WriteToken(jsontext.EndObject)
}

// ReadJSON adds one record to d per record line written by WriteJSON and
// returns how many were added. Names not present in names are ignored.
func ReadJSON(d db.Database, names []string, r io.Reader) (int, error) {

	dec := jsontext.NewDecoder(r, jsontext.AllowInvalidUTF8(true))

	header := dumpHeader{}
	err := json2.UnmarshalDecode(dec, &header)
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if header.Schema != DumpSchema {
		return 0, fmt.Errorf("unsupported dump schema %d", header.Schema)
	}

	fields := map[string]db.Field{}
	for i, name := range names {
		if name != "" {
			fields[name] = db.Field(i)
		}
	}

	n := 0
	for {
		raw, err := dec.ReadValue()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("record %d: %w", n+1, err)
		}

		free, err := decodeRecord(raw, fields)
		if err != nil {
			return n, fmt.Errorf("record %d: %w", n+1, err)
		}

		rs := d.CreateRecordset()
		err = rs.AddRecord()
		if err != nil {
			return n, fmt.Errorf("record %d: %w", n+1, err)
		}
		err = db.CopyRecord(rs, free, free.Len())
		if err != nil {
			return n, fmt.Errorf("record %d: %w", n+1, err)
		}
		err = rs.Commit()
		if err != nil {
			return n, fmt.Errorf("record %d: %w", n+1, err)
		}
		n++
	}
}

func decodeRecord(raw jsontext.Value, fields map[string]db.Field) (*db.FreeRecordset, error) {

	object := map[string]jsontext.Value{}
	err := json2.Unmarshal(raw, &object, jsontext.AllowInvalidUTF8(true))
	if err != nil {
		return nil, err
	}

	free := db.NewFreeRecordset()
	for name, value := range object {
		which, ok := fields[name]
		if !ok {
			continue
		}

		if name == childrenTag {
			ids := []uint32{}
			err := json2.Unmarshal(value, &ids)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			free.SetString(which, VectorToChildren(ids))
			continue
		}

		s := ""
		err := json2.Unmarshal(value, &s, jsontext.AllowInvalidUTF8(true))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		free.SetString(which, s)
	}

	return free, nil
}
