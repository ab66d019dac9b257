package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// TestQuery looks up every record by its indexed id.
func TestQuery(c Config) {

	if c.Base == "" {
		start, stop := CreateServer(&c)
		defer stop()
		go start()
	}

	database := CreateDatabase(c.Base)
	client := NewClient()

	fmt.Println("Preload records...")
	Preload(client, c.Base, database, c.N, c.Workers)

	queryURL := fmt.Sprintf("%s/v1/databases/%s:query", c.Base, database)

	next := int64(-1)
	misses := int64(0)
	t0 := time.Now()
	Parallel(c.Workers, func(worker int) {
		for {
			id := atomic.AddInt64(&next, 1)
			if id >= c.N {
				return
			}

			body := fmt.Sprintf(`{"where":[{"field":"id","op":"=","value":%d}]}`, id)
			resp, err := client.Post(queryURL, "application/json", strings.NewReader(body))
			if err != nil {
				fmt.Println("ERROR: do request:", err.Error())
				return
			}
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			if resp.StatusCode != http.StatusOK || len(data) == 0 {
				atomic.AddInt64(&misses, 1)
			}
		}
	})

	Report("queried", c.N, time.Since(t0))
	fmt.Println("misses:", misses)
}
