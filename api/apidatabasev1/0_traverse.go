package apidatabasev1

import (
	"fmt"
	"io"

	"github.com/SierraSoftworks/connor"
	json2 "github.com/go-json-experiment/json"

	"github.com/fulldump/steamdb/service"
	"github.com/fulldump/steamdb/utils"
)

type traverseParams struct {
	service.QuerySpec `json:",inline"`

	// Filter is a connor expression applied to every row the query yields.
	Filter map[string]any `json:"filter"`
	Skip   int64          `json:"skip"`
	// Limit is the maximum number of rows, negative means no limit.
	Limit int64 `json:"limit"`
}

func readTraverseParams(r io.Reader) (*traverseParams, error) {

	params := &traverseParams{
		Limit: -1,
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return params, nil
	}

	err = json2.Unmarshal(body, params)
	if err != nil {
		return nil, err
	}

	return params, nil
}

// accept returns a row predicate that applies the filter, skip and limit.
// Match errors are kept in *errp and stop the traversal.
func (p *traverseParams) accept(errp *error) func(row service.Row) (accepted, more bool) {

	hasFilter := len(p.Filter) > 0
	skip := p.Skip
	limit := p.Limit

	return func(row service.Row) (bool, bool) {

		if limit == 0 {
			return false, false
		}

		if hasFilter {
			rowData := map[string]any{}
			err := utils.Remarshal(row, &rowData)
			if err != nil {
				*errp = err
				return false, false
			}

			match, err := connor.Match(p.Filter, rowData)
			if err != nil {
				*errp = fmt.Errorf("match: %w", err)
				return false, false
			}
			if !match {
				return false, true
			}
		}

		if skip > 0 {
			skip--
			return false, true
		}

		if limit > 0 {
			limit--
		}
		return true, limit != 0
	}
}

func traverse(params *traverseParams, entry *service.Entry, f func(row service.Row) error) error {

	var traverseErr error
	accept := params.accept(&traverseErr)

	err := entry.Query(params.QuerySpec, func(row service.Row) bool {
		accepted, more := accept(row)
		if accepted {
			traverseErr = f(row)
			if traverseErr != nil {
				return false
			}
		}
		return more
	})
	if err != nil {
		return err
	}

	return traverseErr
}
