package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

// Acceptance drives the HTTP API end to end. apiRequest builds requests
// relative to the API version root.
func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	peopleFields := []JSON{
		{"id": 0, "name": "id", "type": "int", "indexed": true},
		{"id": 1, "name": "name", "type": "string", "indexed": true},
		{"id": 2, "name": "city"},
	}
	expectedFields := []JSON{
		{"id": 0, "name": "id", "type": "int", "indexed": true},
		{"id": 1, "name": "name", "type": "string", "indexed": true},
		{"id": 2, "name": "city", "type": "string", "indexed": false},
	}

	a.Alternative("Create database", func(a *biff.A) {
		resp := apiRequest("POST", "/databases").
			WithBodyJson(JSON{
				"name":   "people",
				"fields": peopleFields,
			}).Do()
		Save(resp, "Create database", `
			Fields are numbered by the client. Only int and string types exist,
			and only indexed fields can be used to order or collate.
		`)

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		assertDatabase(resp.BodyJson(), "people", 0, expectedFields)

		a.Alternative("Retrieve database", func(a *biff.A) {
			resp := apiRequest("GET", "/databases/people").Do()
			Save(resp, "Retrieve database", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			assertDatabase(resp.BodyJson(), "people", 0, expectedFields)
		})

		a.Alternative("List databases", func(a *biff.A) {
			resp := apiRequest("GET", "/databases").Do()
			Save(resp, "List databases", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			databases := resp.BodyJson().([]interface{})
			biff.AssertEqual(len(databases), 1)
			assertDatabase(databases[0], "people", 0, expectedFields)
		})

		a.Alternative("Create database twice", func(a *biff.A) {
			resp := apiRequest("POST", "/databases").
				WithBodyJson(JSON{
					"name":   "people",
					"fields": peopleFields,
				}).Do()
			Save(resp, "Create database - conflict", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"error": JSON{
					"message":     "database already exists",
					"description": "database already exists",
				},
			})
		})

		a.Alternative("Drop database", func(a *biff.A) {
			resp := apiRequest("POST", "/databases/people:drop").Do()
			Save(resp, "Drop database", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			a.Alternative("Get dropped database", func(a *biff.A) {
				resp := apiRequest("GET", "/databases/people").Do()
				Save(resp, "Get database - not found", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})
		})

		a.Alternative("Insert unknown field", func(a *biff.A) {
			resp := apiRequest("POST", "/databases/people:insert").
				WithBodyJson(JSON{"id": 1, "surname": "Pérez"}).Do()
			Save(resp, "Insert - unknown field", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"error": JSON{
					"message":     "unknown field 'surname'",
					"description": "unknown field",
				},
			})
		})

		a.Alternative("Insert many", func(a *biff.A) {

			people := []JSON{
				{"id": 1, "name": "Alfonso", "city": "Madrid"},
				{"id": 2, "name": "Gerardo", "city": "Sevilla"},
				{"id": 3, "name": "Alfonso", "city": "Sevilla"},
			}

			body := ""
			for _, person := range people {
				line, _ := json.Marshal(person)
				body += string(line) + "\n"
			}
			resp := apiRequest("POST", "/databases/people:insert").
				WithBodyString(body).Do()
			Save(resp, "Insert many", `
				The body is a stream of JSON objects, one per record. Every stored
				record is echoed back.
			`)

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(readRows(resp.BodyString()), people)

			a.Alternative("Retrieve total", func(a *biff.A) {
				resp := apiRequest("GET", "/databases/people").Do()

				assertDatabase(resp.BodyJson(), "people", 3, expectedFields)
			})

			a.Alternative("Query by indexed string", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"where": []JSON{
							{"field": "name", "op": "=", "value": "Alfonso"},
						},
					}).Do()
				Save(resp, "Query - by indexed field", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(readRows(resp.BodyString()), []JSON{people[0], people[2]})
			})

			a.Alternative("Query order by", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"orderBy": "name",
					}).Do()
				Save(resp, "Query - order by", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(readRows(resp.BodyString()), []JSON{people[0], people[2], people[1]})
			})

			a.Alternative("Query collate by", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"collateBy": "name",
					}).Do()
				Save(resp, "Query - collate by", `
					Collating yields one row per distinct value of the field, in order.
				`)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(readRows(resp.BodyString()), []JSON{
					{"name": "Alfonso"},
					{"name": "Gerardo"},
				})
			})

			a.Alternative("Query LIKE", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"where": []JSON{
							{"field": "city", "op": "like", "value": "se.*"},
						},
					}).Do()
				Save(resp, "Query - like", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(readRows(resp.BodyString()), []JSON{people[1], people[2]})
			})

			a.Alternative("Query with filter and limit", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"filter": JSON{
							"city": "Sevilla",
						},
						"limit": 1,
					}).Do()
				Save(resp, "Query - filter", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(readRows(resp.BodyString()), []JSON{people[1]})
			})

			a.Alternative("Query with skip", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"skip":  1,
						"limit": 1,
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(readRows(resp.BodyString()), []JSON{people[1]})
			})

			a.Alternative("Collate by unindexed field", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"collateBy": "city",
					}).Do()
				Save(resp, "Query - unsupported", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"error": JSON{
						"message":     "unsupported query: collate on unindexed field #2",
						"description": "query not supported by this database",
					},
				})
			})

			a.Alternative("Bad LIKE pattern", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"where": []JSON{
							{"field": "city", "op": "like", "value": "("},
						},
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Bad operator", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"where": []JSON{
							{"field": "city", "op": "~", "value": "Madrid"},
						},
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"error": JSON{
						"message":     "bad condition #0: bad op '~', must be [!=|<|<=|=|==|>|>=|?=|like]",
						"description": "bad condition",
					},
				})
			})

			a.Alternative("Query unknown field", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:query").
					WithBodyJson(JSON{
						"orderBy": "age",
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Remove", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:remove").
					WithBodyJson(JSON{
						"where": []JSON{
							{"field": "name", "op": "=", "value": "Alfonso"},
						},
					}).Do()
				Save(resp, "Remove", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{"deleted": 2})

				resp = apiRequest("POST", "/databases/people:query").Do()
				biff.AssertEqualJson(readRows(resp.BodyString()), []JSON{people[1]})
			})

			a.Alternative("Remove with filter", func(a *biff.A) {
				resp := apiRequest("POST", "/databases/people:remove").
					WithBodyJson(JSON{
						"filter": JSON{
							"city": "Sevilla",
						},
					}).Do()
				Save(resp, "Remove - filter", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{"deleted": 2})

				resp = apiRequest("POST", "/databases/people:query").Do()
				biff.AssertEqualJson(readRows(resp.BodyString()), []JSON{people[0]})
			})
		})
	})

	a.Alternative("Create database without fields", func(a *biff.A) {
		resp := apiRequest("POST", "/databases").
			WithBodyJson(JSON{
				"name": "empty",
			}).Do()
		Save(resp, "Create database - bad schema", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		biff.AssertEqualJson(resp.BodyJson(), JSON{
			"error": JSON{
				"message":     "bad schema: no fields",
				"description": "bad schema",
			},
		})
	})

	a.Alternative("Database not found", func(a *biff.A) {
		resp := apiRequest("POST", "/databases/invented:query").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
	})

	a.Alternative("Endpoint not implemented", func(a *biff.A) {
		resp := apiRequest("GET", "/invented").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotImplemented)
	})
}

func assertDatabase(body interface{}, name string, total int, fields []JSON) {
	database := body.(map[string]interface{})
	biff.AssertEqual(database["name"], name)
	biff.AssertEqualJson(database["total"], total)
	biff.AssertEqualJson(database["fields"], fields)
	biff.AssertNotEqual(database["id"], "")
}

// readRows decodes a stream of JSON values.
func readRows(body string) []interface{} {
	rows := []interface{}{}
	dec := json.NewDecoder(strings.NewReader(body))
	for {
		var row interface{}
		err := dec.Decode(&row)
		if err == io.EOF {
			return rows
		}
		if err != nil {
			panic(err)
		}
		rows = append(rows, row)
	}
}
