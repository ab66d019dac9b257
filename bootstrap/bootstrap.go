package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fulldump/box"

	"github.com/fulldump/steamdb/api"
	"github.com/fulldump/steamdb/configuration"
	"github.com/fulldump/steamdb/database"
	"github.com/fulldump/steamdb/mediadb"
	"github.com/fulldump/steamdb/service"
)

var VERSION = "dev"

// LibraryName is the name the media library is served under.
const LibraryName = "media"

func NewService(c *configuration.Configuration, library *database.Database) (*service.Service, error) {

	s := service.NewService()

	fields := service.FieldsFromSpecs(mediadb.Schema(), mediadb.Tags())
	_, err := s.MountDatabase(LibraryName, fields, library.View)
	if err != nil {
		return nil, fmt.Errorf("mount media library: %w", err)
	}

	if c.Schema != "" {
		schema, err := configuration.LoadSchema(c.Schema)
		if err != nil {
			return nil, err
		}
		_, err = s.CreateDatabase(schema.Name, schema.ServiceFields())
		if err != nil {
			return nil, fmt.Errorf("create database '%s': %w", schema.Name, err)
		}
	}

	return s, nil
}

func Bootstrap(c *configuration.Configuration) (start, stop func()) {

	library := database.NewDatabase(&database.Config{
		Dump: c.Dump,
		Scan: c.Scan,
	})

	s, err := NewService(c, library)
	if err != nil {
		log.Println("ERROR:", err.Error())
		os.Exit(-1)
	}

	b := api.Build(s, VERSION, c.ApiKey, c.ApiSecret)
	if c.EnableCompression {
		b.WithInterceptors(api.Compression)
	}
	b.WithInterceptors(
		api.AccessLog(log.New(os.Stdout, "ACCESS: ", log.Lshortfile)),
		api.PrettyErrorInterceptor,
		api.RecoverFromPanic,
		api.InterceptorUnavailable(library),
	)

	server := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		log.Println("ERROR:", err.Error())
		os.Exit(-1)
	}
	log.Println("listening on", c.HttpAddr)

	stopOnce := &sync.Once{}
	stop = func() {
		stopOnce.Do(func() {
			library.Stop()
			server.Shutdown(context.Background())
		})
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		for {
			sig := <-signalChan
			fmt.Println("Signal received", sig.String())
			stop()
		}
	}()

	start = func() {

		wg := &sync.WaitGroup{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := library.Start()
			if err != nil {
				fmt.Println(err.Error())
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := server.Serve(ln)
			if err != nil && err != http.ErrServerClosed {
				fmt.Println(err.Error())
			}
		}()

		wg.Wait()
	}

	return
}
