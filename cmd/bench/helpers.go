package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fulldump/steamdb/bootstrap"
	"github.com/fulldump/steamdb/configuration"
)

type JSON = map[string]any

func Parallel(workers int, f func(worker int)) {
	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			f(worker)
		}(i)
	}
	wg.Wait()
}

func TempDir() (string, func()) {
	dir, err := os.MkdirTemp("", "steamdb_bench_*")
	if err != nil {
		panic("Could not create temp directory: " + err.Error())
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

func NewClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     1024,
			MaxIdleConnsPerHost: 1024,
			MaxIdleConns:        1024,
		},
		Timeout: 60 * time.Second,
	}
}

// CreateDatabase creates a database with an indexed int id, an indexed int
// worker and an unindexed string payload.
func CreateDatabase(base string) string {

	WaitReady(base)

	name := "bench-" + strconv.FormatInt(time.Now().UnixNano(), 10)

	payload, _ := json.Marshal(JSON{
		"name": name,
		"fields": []JSON{
			{"id": 0, "name": "id", "type": "int", "indexed": true},
			{"id": 1, "name": "worker", "type": "int", "indexed": true},
			{"id": 2, "name": "payload"},
		},
	})

	resp, err := http.Post(base+"/v1/databases", "application/json", bytes.NewReader(payload))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		io.Copy(os.Stdout, resp.Body)
		panic("create database: " + resp.Status)
	}

	return name
}

// WaitReady polls the server until the media library has been loaded.
func WaitReady(base string) {
	for i := 0; i < 100; i++ {
		resp, err := http.Get(base + "/v1/databases")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	panic("server not ready at " + base)
}

// Preload inserts n records in one stream.
func Preload(client *http.Client, base, database string, n int64, workers int) {

	r, w := io.Pipe()

	go func() {
		encoder := json.NewEncoder(w)
		for i := int64(0); i < n; i++ {
			encoder.Encode(JSON{
				"id":      i,
				"worker":  i % int64(workers),
				"payload": fmt.Sprintf("record %d", i),
			})
		}
		w.Close()
	}()

	resp, err := client.Post(base+"/v1/databases/"+database+":insert", "application/json", r)
	if err != nil {
		fmt.Println("ERROR: do request:", err.Error())
		os.Exit(4)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func CreateServer(c *Config) (start, stop func()) {
	dir, cleanup := TempDir()
	cleanups = append(cleanups, cleanup)

	conf := configuration.Default()
	conf.Dump = filepath.Join(dir, "library.jsonl")
	c.Base = "http://" + conf.HttpAddr

	return bootstrap.Bootstrap(&conf)
}

func Report(verb string, n int64, took time.Duration) {
	fmt.Println(verb+":", n)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f rows/sec\n", float64(n)/took.Seconds())
}
