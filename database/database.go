// Package database owns the media library served by the process: it loads
// it from a dump and a music folder at startup and dumps it back on stop.
package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fulldump/steamdb/mediadb"
	"github.com/fulldump/steamdb/merge"
	"github.com/fulldump/steamdb/steam"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

type Config struct {
	Dump string // JSON lines dump, read at load and written at stop
	Scan string // music folder scanned at load
}

var ErrClosing = errors.New("media library is closing")

type Database struct {
	config *Config

	mu     sync.RWMutex
	status string
	loaded bool // Load finished without error, so the store may be dumped

	loading sync.WaitGroup

	// Local holds the records owned by this process.
	Local *steam.Database
	// View is what clients see: Local as database 0 of a merged view.
	View *merge.Database

	cancel context.CancelFunc
	exit   chan struct{}
}

func NewDatabase(config *Config) *Database {
	d := &Database{
		config: config,
		status: StatusOpening,
		Local:  mediadb.New(),
		View:   merge.New(),
		cancel: func() {},
		exit:   make(chan struct{}),
	}
	d.View.AddDatabase(d.Local)

	return d
}

func (d *Database) GetStatus() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Load fills the store from the dump and the music folder. A failed or
// interrupted load leaves the library closing and never dumped.
func (d *Database) Load() error {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.mu.Lock()
	if d.status == StatusClosing {
		d.mu.Unlock()
		return ErrClosing
	}
	d.cancel = cancel
	d.loading.Add(1)
	d.mu.Unlock()
	defer d.loading.Done()

	err := d.load(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.status = StatusClosing
		return err
	}
	if d.status == StatusClosing {
		return ErrClosing
	}

	d.status = StatusOperating
	d.loaded = true
	return nil
}

func (d *Database) load(ctx context.Context) error {

	if d.config.Dump != "" {
		fmt.Printf("Loading dump %s...\n", d.config.Dump)
		t0 := time.Now()
		n, err := d.readDump()
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Println("No dump found, starting empty")
		} else if err != nil {
			fmt.Printf("ERROR: read dump '%s': %s\n", d.config.Dump, err.Error())
			return err
		} else {
			fmt.Println(d.config.Dump, n, time.Since(t0))
		}
	}

	if d.config.Scan != "" {
		fmt.Printf("Scanning %s...\n", d.config.Scan)
		t0 := time.Now()
		n, err := mediadb.NewScanner(d.Local).Scan(ctx, d.config.Scan)
		if err != nil {
			fmt.Printf("ERROR: scan '%s': %s\n", d.config.Scan, err.Error())
			return err
		}
		fmt.Println(d.config.Scan, n, time.Since(t0))
	}

	return nil
}

func (d *Database) readDump() (int, error) {
	f, err := os.Open(d.config.Dump)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return mediadb.ReadJSON(d.Local, mediadb.Tags(), f)
}

// WriteDump replaces the dump file with the current records. The new dump
// is written aside and renamed over the old one.
func (d *Database) WriteDump() error {
	if d.config.Dump == "" {
		return nil
	}

	tmp := d.config.Dump + ".tmp"
	err := os.MkdirAll(filepath.Dir(tmp), 0755)
	if err != nil {
		return err
	}

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	err = mediadb.WriteJSON(d.Local, mediadb.Tags(), f)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	err = f.Close()
	if err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, d.config.Dump)
}

func (d *Database) Start() error {

	go func() {
		err := d.Load()
		if err != nil {
			fmt.Println("ERROR: load:", err.Error())
		}
	}()

	<-d.exit

	return nil
}

func (d *Database) Stop() error {

	defer close(d.exit)

	d.mu.Lock()
	d.status = StatusClosing
	d.cancel()
	d.mu.Unlock()

	d.loading.Wait()

	d.mu.RLock()
	loaded := d.loaded
	d.mu.RUnlock()
	if !loaded {
		fmt.Println("Library not loaded, dump left untouched")
		return nil
	}

	fmt.Printf("Writing dump '%s'...\n", d.config.Dump)
	err := d.WriteDump()
	if err != nil {
		fmt.Printf("ERROR: write dump '%s': %s\n", d.config.Dump, err.Error())
	}

	return err
}
