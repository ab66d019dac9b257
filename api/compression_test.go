package api

import (
	"compress/gzip"
	"io"
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"

	"github.com/fulldump/steamdb/service"
)

func TestCompression(t *testing.T) {

	b := Build(service.NewService(), "test", "", "")
	b.WithInterceptors(
		Compression,
	)

	api := apitest.NewWithHandler(b)

	resp := api.Request("GET", "/release").
		WithHeader("Accept-Encoding", "gzip").
		Do()

	biff.AssertEqual(resp.StatusCode, 200)
	biff.AssertEqual(resp.Header.Get("Content-Encoding"), "gzip")

	gz, err := gzip.NewReader(resp.Body)
	biff.AssertNil(err)
	body, err := io.ReadAll(gz)
	biff.AssertNil(err)
	biff.AssertEqual(string(body), "\"test\"\n")
}
