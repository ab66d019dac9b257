package apidatabasev1

import (
	"context"
	"net/http"

	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/steamdb/service"
)

func query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	entry, err := getEntry(ctx)
	if err != nil {
		return err
	}

	params, err := readTraverseParams(r.Body)
	if err != nil {
		return err
	}

	jsonWriter := jsontext.NewEncoder(w)
	return traverse(params, entry, func(row service.Row) error {
		return json2.MarshalEncode(jsonWriter, row, json2.Deterministic(true))
	})
}
