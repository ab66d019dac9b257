package service

import (
	"errors"
	"testing"

	. "github.com/fulldump/biff"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fulldump/steamdb/db"
	"github.com/fulldump/steamdb/mediadb"
	"github.com/fulldump/steamdb/merge"
	"github.com/fulldump/steamdb/steam"
)

var albumFields = []Field{
	{Id: 0, Name: "id", Type: "int", Indexed: true},
	{Id: 1, Name: "artist", Indexed: true},
	{Id: 2, Name: "title"},
	{Id: 3, Name: "year", Type: "int"},
}

func collect(e *Entry, spec QuerySpec) []Row {
	rows := []Row{}
	err := e.Query(spec, func(row Row) bool {
		rows = append(rows, row)
		return true
	})
	if err != nil {
		panic(err)
	}
	return rows
}

func TestService(t *testing.T) {

	Alternative("Albums", func(a *A) {

		s := NewService()
		albums, err := s.CreateDatabase("albums", albumFields)
		AssertNil(err)

		for _, row := range []Row{
			{"id": 1, "artist": "Queen", "title": "A Night at the Opera", "year": 1975},
			{"id": 2, "artist": "Bach", "title": "Mass in B minor"},
			{"id": 3, "artist": "Queen", "title": "Jazz", "year": 1978.0},
		} {
			AssertNil(albums.Insert(row))
		}
		AssertEqual(albums.Total(), 3)

		a.Alternative("Registry", func(a *A) {
			_, err := s.CreateDatabase("albums", albumFields)
			AssertEqual(err, ErrorDatabaseAlreadyExists)

			got, err := s.GetDatabase("albums")
			AssertNil(err)
			AssertEqual(got, albums)

			AssertEqual(len(s.ListDatabases()), 1)

			AssertNil(s.DropDatabase("albums"))
			_, err = s.GetDatabase("albums")
			AssertEqual(err, ErrorDatabaseNotFound)
			AssertEqual(s.DropDatabase("albums"), ErrorDatabaseNotFound)
		})

		a.Alternative("Fields", func(a *A) {
			fields := albums.Fields()
			AssertEqual(fields[1], Field{Id: 1, Name: "artist", Type: "string", Indexed: true})

			_, err := albums.Field("label")
			AssertTrue(errors.Is(err, ErrorUnknownField))
		})

		a.Alternative("Query indexed", func(a *A) {
			rows := collect(albums, QuerySpec{
				Where: []Condition{{Field: "artist", Op: "=", Value: "Queen"}},
			})
			AssertEqual(rows, []Row{
				{"id": uint32(1), "artist": "Queen", "title": "A Night at the Opera", "year": uint32(1975)},
				{"id": uint32(3), "artist": "Queen", "title": "Jazz", "year": uint32(1978)},
			})
		})

		a.Alternative("Empty fields are absent", func(a *A) {
			rows := collect(albums, QuerySpec{
				Where: []Condition{{Field: "id", Op: "==", Value: 2.0}},
			})
			AssertEqual(rows, []Row{
				{"id": uint32(2), "artist": "Bach", "title": "Mass in B minor"},
			})
		})

		a.Alternative("Order and collate", func(a *A) {
			rows := collect(albums, QuerySpec{OrderBy: "artist"})
			AssertEqual(len(rows), 3)
			AssertEqual(rows[0]["artist"], "Bach")

			rows = collect(albums, QuerySpec{CollateBy: "artist"})
			AssertEqual(rows, []Row{{"artist": "Bach"}, {"artist": "Queen"}})
		})

		a.Alternative("Stop early", func(a *A) {
			n := 0
			err := albums.Query(QuerySpec{}, func(row Row) bool {
				n++
				return false
			})
			AssertNil(err)
			AssertEqual(n, 1)
		})

		a.Alternative("Bad queries", func(a *A) {
			err := albums.Query(QuerySpec{
				Where: []Condition{{Field: "year", Op: "~", Value: 1}},
			}, nil)
			AssertTrue(errors.Is(err, ErrorBadCondition))

			err = albums.Query(QuerySpec{
				Where: []Condition{{Field: "year", Op: ">", Value: true}},
			}, nil)
			AssertTrue(errors.Is(err, ErrorBadCondition))

			err = albums.Query(QuerySpec{CollateBy: "title"}, nil)
			AssertTrue(errors.Is(err, db.ErrUnsupportedQuery))

			n := 0
			err = albums.Query(QuerySpec{OrderBy: "title"}, func(row Row) bool {
				n++
				return true
			})
			AssertNil(err)
			AssertEqual(n, 0)

			err = albums.Query(QuerySpec{
				Where: []Condition{{Field: "title", Op: "like", Value: "("}},
			}, nil)
			AssertTrue(errors.Is(err, db.ErrBadPattern))
		})

		a.Alternative("Bad insert", func(a *A) {
			err := albums.Insert(Row{"year": -1})
			AssertTrue(errors.Is(err, ErrorBadValue))

			err = albums.Insert(Row{"label": "EMI"})
			AssertTrue(errors.Is(err, ErrorUnknownField))
			AssertEqual(albums.Total(), 3)
		})

		a.Alternative("Remove", func(a *A) {
			before := testutil.ToFloat64(RecordsDeletedTotal.WithLabelValues("albums"))

			n, err := albums.Remove(QuerySpec{
				Where: []Condition{{Field: "artist", Op: "=", Value: "Queen"}},
			}, func(row Row) bool {
				return row["title"] == "Jazz"
			})
			AssertNil(err)
			AssertEqual(n, 1)
			AssertEqual(albums.Total(), 2)
			AssertEqual(testutil.ToFloat64(RecordsDeletedTotal.WithLabelValues("albums"))-before, 1.0)

			_, err = albums.Remove(QuerySpec{CollateBy: "artist"}, nil)
			AssertTrue(errors.Is(err, ErrorBadCondition))
		})

		a.Alternative("Metrics", func(a *A) {
			before := testutil.ToFloat64(QueriesTotal.WithLabelValues("albums", steam.StrategyIndexed.String()))
			collect(albums, QuerySpec{
				Where: []Condition{{Field: "artist", Op: "=", Value: "Bach"}},
			})
			after := testutil.ToFloat64(QueriesTotal.WithLabelValues("albums", steam.StrategyIndexed.String()))
			AssertEqual(after-before, 1.0)
		})
	})
}

func TestService_Validate(t *testing.T) {

	s := NewService()

	cases := map[string][]Field{
		"":        albumFields,
		"nofield": nil,
		"noname":  {{Id: 0}},
		"dupname": {{Id: 0, Name: "a"}, {Id: 1, Name: "a"}},
		"dupid":   {{Id: 0, Name: "a"}, {Id: 0, Name: "b"}},
		"badtype": {{Id: 0, Name: "a", Type: "float"}},
	}

	for name, fields := range cases {
		_, err := s.CreateDatabase(name, fields)
		AssertTrue(errors.Is(err, ErrorBadSchema))
	}
	AssertEqual(len(s.ListDatabases()), 0)
}

func TestService_MountMediaLibrary(t *testing.T) {

	library := mediadb.New()
	view := merge.New()
	view.AddDatabase(library)

	s := NewService()
	media, err := s.MountDatabase("media", FieldsFromSpecs(mediadb.Schema(), mediadb.Tags()), view)
	AssertNil(err)

	AssertNil(media.Insert(Row{"id": 0x101, "title": "Toccata", "type": float64(mediadb.TypeTune)}))
	AssertEqual(media.Total(), 1)

	rows := collect(media, QuerySpec{
		Where: []Condition{{Field: "id", Op: "=", Value: 0x101}},
	})
	AssertEqual(len(rows), 1)
	AssertEqual(rows[0]["title"], "Toccata")

	// Lookups by id go through the merge view, other queries hit the library.
	rows = collect(media, QuerySpec{
		Where: []Condition{{Field: "title", Op: "like", Value: "toc.*"}},
	})
	AssertEqual(len(rows), 1)
}
