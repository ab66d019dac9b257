package mediadb

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/fulldump/steamdb/db"
)

var audioCodecByExtension = map[string]uint32{
	".mp3":  AudioCodecMP3,
	".m4a":  AudioCodecAAC,
	".ogg":  AudioCodecVorbis,
	".oga":  AudioCodecVorbis,
	".flac": AudioCodecFLAC,
}

// Scanner adds audio files found on disk to a media database, one record
// per file, reading titles and the like from the file tags.
type Scanner struct {
	db     db.Database
	nextID uint32
}

func NewScanner(d db.Database) *Scanner {
	return &Scanner{
		db: d,
	}
}

// Scan walks root and adds every audio file whose PATH is not already in the
// database. It returns how many records were added.
func (s *Scanner) Scan(ctx context.Context, root string) (int, error) {

	next, err := AllocateID(s.db)
	if err != nil {
		return 0, fmt.Errorf("allocate id: %w", err)
	}
	s.nextID = next

	added := 0
	err = filepath.WalkDir(root, func(filename string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		codec, ok := audioCodecByExtension[strings.ToLower(filepath.Ext(filename))]
		if !ok {
			return nil
		}

		exists, err := s.exists(filename)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		err = s.add(filename, codec)
		if err != nil {
			return fmt.Errorf("add '%s': %w", filename, err)
		}
		added++

		return nil
	})

	return added, err
}

func (s *Scanner) exists(filename string) (bool, error) {
	q := s.db.CreateQuery()
	q.Where(q.RestrictString(Path, db.EQ, filename))
	rs, err := q.Execute()
	if err != nil {
		return false, err
	}
	return !rs.IsEOF(), nil
}

func (s *Scanner) add(filename string, codec uint32) error {

	info, err := os.Stat(filename)
	if err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var m tag.Metadata
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	m, err = tag.ReadFrom(f)
	f.Close()
	if err != nil {
		m = nil // untagged, titled after the file name
	}

	rs := s.db.CreateRecordset()
	err = rs.AddRecord()
	if err != nil {
		return err
	}

	w := &fieldWriter{rs: rs}
	w.setInteger(ID, s.nextID)
	s.nextID++
	w.setString(Path, filename)
	w.setInteger(Type, TypeTune)
	w.setInteger(AudioCodec, codec)
	w.setInteger(SizeBytes, uint32(min(info.Size(), int64(^uint32(0)))))
	w.setInteger(MTime, unixTime(info.ModTime()))

	if m != nil {
		if t := m.Title(); t != "" {
			title = t
		}
		artist := m.Artist()
		if artist == "" {
			artist = m.AlbumArtist()
		}
		w.setNonEmpty(Artist, artist)
		w.setNonEmpty(Album, m.Album())
		w.setNonEmpty(Genre, m.Genre())
		w.setNonEmpty(Composer, m.Composer())
		w.setNonEmpty(Comment, m.Comment())
		if track, _ := m.Track(); track > 0 {
			w.setInteger(TrackNumber, uint32(track))
		}
		if year := m.Year(); year > 0 {
			w.setInteger(Year, uint32(year))
		}
	}
	w.setString(Title, title)

	if w.err != nil {
		return w.err
	}
	return rs.Commit()
}

// fieldWriter writes fields of the current record and keeps the first
// error. Writes after an error are skipped.
type fieldWriter struct {
	rs  db.Recordset
	err error
}

func (w *fieldWriter) setInteger(which db.Field, value uint32) {
	if w.err == nil {
		w.err = w.rs.SetInteger(which, value)
	}
}

func (w *fieldWriter) setString(which db.Field, value string) {
	if w.err == nil {
		w.err = w.rs.SetString(which, value)
	}
}

func (w *fieldWriter) setNonEmpty(which db.Field, value string) {
	if value != "" {
		w.setString(which, value)
	}
}

func unixTime(t time.Time) uint32 {
	seconds := t.Unix()
	if seconds < 0 {
		return 0
	}
	return uint32(min(seconds, int64(^uint32(0))))
}
