package service

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/fulldump/apitest"
	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/steamdb/utils"
)

// Save renders an acceptance request and its response as a markdown API
// example. Nothing is written unless API_EXAMPLES_PATH is set.
func Save(response *apitest.Response, title, description string) {

	examplesPath := os.Getenv("API_EXAMPLES_PATH")
	if examplesPath == "" {
		return
	}

	request := response.Request
	requestBody := formatJSON(response.BodyRequestString())

	target := request.URL.Path
	if request.URL.RawQuery != "" {
		target += "?" + request.URL.RawQuery
	}

	md := &strings.Builder{}
	fmt.Fprintf(md, "# %s\n", title)
	fmt.Fprintln(md, cropIndentation(description))

	fmt.Fprint(md, "Curl example:\n\n```sh\ncurl ")
	if request.Method != http.MethodGet {
		fmt.Fprintf(md, "-X %s ", request.Method)
	}
	fmt.Fprintf(md, "\"https://example.com%s\"", target)
	for _, k := range utils.SortedKeys(request.Header) {
		for _, v := range request.Header[k] {
			fmt.Fprintf(md, " \\\n-H \"%s: %s\"", k, v)
		}
	}
	if requestBody != "" {
		fmt.Fprintf(md, " \\\n-d '%s'", requestBody)
	}
	fmt.Fprint(md, "\n```\n\n\n")

	fmt.Fprint(md, "HTTP request/response example:\n\n```http\n")
	fmt.Fprintf(md, "%s %s %s\nHost: example.com\n", request.Method, target, request.Proto)
	writeHeader(md, request.Header)
	fmt.Fprintf(md, "\n%s\n\n", requestBody)

	fmt.Fprintf(md, "%s %s\n", response.Proto, response.Status)
	writeHeader(md, response.Header)
	fmt.Fprintf(md, "\n%s\n```\n\n\n", formatJSON(response.BodyString()))

	filename := strings.ReplaceAll(strings.ToLower(title), " ", "_") + ".md"
	p := path.Join(examplesPath, path.Clean(filename))
	fmt.Println("Saving", p)
	err := os.WriteFile(p, []byte(md.String()), 0666)
	if err != nil {
		fmt.Println("Saving err:", err)
	}
}

func writeHeader(md *strings.Builder, header http.Header) {
	for _, k := range utils.SortedKeys(header) {
		if k == "Date" {
			fmt.Fprintln(md, "Date: Mon, 15 Aug 2022 02:08:13 GMT")
			continue
		}
		for _, v := range header[k] {
			fmt.Fprintf(md, "%s: %s\n", k, v)
		}
	}
}

// formatJSON indents a JSON body. Streams of values are indented one by one,
// anything else is returned untouched.
func formatJSON(body string) string {

	dec := jsontext.NewDecoder(strings.NewReader(body))
	values := []string{}
	for {
		value, err := dec.ReadValue()
		if err != nil {
			if len(values) == 0 {
				return body
			}
			return strings.Join(values, "\n")
		}

		var v any
		err = json2.Unmarshal(value, &v)
		if err != nil {
			return body
		}
		indented, err := json2.Marshal(v, jsontext.WithIndent("    "), json2.Deterministic(true))
		if err != nil {
			return body
		}
		values = append(values, string(indented))
	}
}

// cropIndentation removes the tabs shared by the lines of a description
// written inline in Go source.
func cropIndentation(d string) string {

	lines := strings.Split(d, "\n")

	inner := lines
	if len(lines) > 2 {
		inner = lines[1 : len(lines)-1]
	}

	minTabs := -1
	for _, line := range inner {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tabs := len(line) - len(strings.TrimLeft(line, "\t"))
		if minTabs < 0 || tabs < minTabs {
			minTabs = tabs
		}
	}

	if minTabs > 0 {
		prefix := strings.Repeat("\t", minTabs)
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(line, prefix)
		}
	}

	return strings.Join(lines, "\n")
}
