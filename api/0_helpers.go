package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"
	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/steamdb/database"
	"github.com/fulldump/steamdb/db"
	"github.com/fulldump/steamdb/service"
)

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}{
			p.Message,
			p.Description,
		},
	})
}

func (p PrettyError) MarshalTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

var ErrUnavailable = errors.New("temporary unavailable")

func InterceptorUnavailable(library *database.Database) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := library.GetStatus()
			if status == database.StatusOpening {
				box.SetError(ctx, fmt.Errorf("%w: opening", ErrUnavailable))
				return
			}
			if status == database.StatusClosing {
				box.SetError(ctx, fmt.Errorf("%w: closing", ErrUnavailable))
				return
			}
			next(ctx)
		}
	}
}

type errorStatus struct {
	err         error
	status      int
	description string
}

var errorStatuses = []errorStatus{
	{ErrUnauthorized, http.StatusUnauthorized, "user is not authenticated"},
	{ErrUnavailable, http.StatusServiceUnavailable, "media library is not ready"},
	{service.ErrorDatabaseNotFound, http.StatusNotFound, "database not found"},
	{service.ErrorDatabaseAlreadyExists, http.StatusConflict, "database already exists"},
	{service.ErrorBadSchema, http.StatusBadRequest, "bad schema"},
	{service.ErrorUnknownField, http.StatusBadRequest, "unknown field"},
	{service.ErrorBadCondition, http.StatusBadRequest, "bad condition"},
	{service.ErrorBadValue, http.StatusBadRequest, "bad value"},
	{db.ErrUnknownField, http.StatusBadRequest, "unknown field"},
	{db.ErrNotFound, http.StatusNotFound, "record not found"},
	{db.ErrUnsupportedQuery, http.StatusBadRequest, "query not supported by this database"},
	{db.ErrBadPattern, http.StatusBadRequest, "bad LIKE pattern"},
	{db.ErrReadOnly, http.StatusBadRequest, "recordset is read only"},
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)

		writeError := func(status int, description string) {
			w.WriteHeader(status)
			PrettyError{
				Message:     err.Error(),
				Description: description,
			}.MarshalTo(w)
		}

		if err == box.ErrResourceNotFound {
			writeError(http.StatusNotFound, fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String()))
			return
		}

		if err == box.ErrMethodNotAllowed {
			writeError(http.StatusMethodNotAllowed, fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method))
			return
		}

		for _, s := range errorStatuses {
			if errors.Is(err, s.err) {
				writeError(s.status, s.description)
				return
			}
		}

		var syntaxError *json.SyntaxError
		var syntacticError *jsontext.SyntacticError
		var semanticError *json2.SemanticError
		if errors.As(err, &syntaxError) || errors.As(err, &syntacticError) || errors.As(err, &semanticError) || errors.Is(err, io.ErrUnexpectedEOF) {
			writeError(http.StatusBadRequest, "Malformed JSON")
			return
		}

		writeError(http.StatusInternalServerError, "Unexpected error")
	}
}
