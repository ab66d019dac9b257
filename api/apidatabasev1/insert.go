package apidatabasev1

import (
	"context"
	"io"
	"net/http"

	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/steamdb/service"
)

// insert reads one JSON object per record and echoes every stored record.
func insert(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	entry, err := getEntry(ctx)
	if err != nil {
		return err
	}

	jsonReader := jsontext.NewDecoder(r.Body)
	jsonWriter := jsontext.NewEncoder(w)

	for i := 0; true; i++ {
		raw, err := jsonReader.ReadValue()
		if err == io.EOF {
			if i == 0 {
				w.WriteHeader(http.StatusNoContent)
			}
			return nil
		}
		if err != nil {
			return err
		}

		item := service.Row{}
		err = json2.Unmarshal(raw, &item)
		if err != nil {
			return err
		}

		err = entry.Insert(item)
		if err != nil {
			return err
		}

		if i == 0 {
			w.WriteHeader(http.StatusCreated)
		}
		json2.MarshalEncode(jsonWriter, item, json2.Deterministic(true))
	}

	return nil
}
