package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// TestRemove deletes every record, each worker removing its own share through
// the indexed worker field.
func TestRemove(c Config) {

	if c.Base == "" {
		start, stop := CreateServer(&c)
		defer stop()
		go start()
	}

	database := CreateDatabase(c.Base)
	client := NewClient()

	fmt.Println("Preload records...")
	Preload(client, c.Base, database, c.N, c.Workers)

	removeURL := fmt.Sprintf("%s/v1/databases/%s:remove", c.Base, database)

	removed := int64(0)
	t0 := time.Now()
	Parallel(c.Workers, func(worker int) {

		body := fmt.Sprintf(`{"where":[{"field":"worker","op":"=","value":%d}]}`, worker)
		resp, err := client.Post(removeURL, "application/json", strings.NewReader(body))
		if err != nil {
			fmt.Println("ERROR: do request:", err.Error())
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Println("ERROR: bad status:", resp.Status)
			return
		}

		result := struct {
			Deleted int64 `json:"deleted"`
		}{}
		json.NewDecoder(resp.Body).Decode(&result)
		atomic.AddInt64(&removed, result.Deleted)
	})

	Report("removed", removed, time.Since(t0))
}
