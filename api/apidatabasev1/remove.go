package apidatabasev1

import (
	"context"
	"net/http"

	"github.com/fulldump/steamdb/service"
)

type removeResponse struct {
	Deleted int `json:"deleted"`
}

func remove(ctx context.Context, r *http.Request) (*removeResponse, error) {

	entry, err := getEntry(ctx)
	if err != nil {
		return nil, err
	}

	params, err := readTraverseParams(r.Body)
	if err != nil {
		return nil, err
	}

	var matchErr error
	accept := params.accept(&matchErr)

	deleted, err := entry.Remove(params.QuerySpec, func(row service.Row) bool {
		accepted, _ := accept(row)
		return accepted
	})
	if err != nil {
		return nil, err
	}
	if matchErr != nil {
		return nil, matchErr
	}

	return &removeResponse{
		Deleted: deleted,
	}, nil
}
