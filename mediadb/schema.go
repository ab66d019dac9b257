// Package mediadb describes the media library schema on top of the db
// contract: field ids, enumerations, the CHILDREN list encoding, id
// allocation, a JSON dump format and a file scanner that fills a database
// from audio file tags.
package mediadb

import (
	"github.com/fulldump/steamdb/db"
	"github.com/fulldump/steamdb/steam"
)

const (
	ID db.Field = iota
	Title
	Artist
	Album
	TrackNumber
	Genre
	Comment
	Year
	DurationMS
	AudioCodec
	SizeBytes
	BitsPerSec
	SampleRate
	Channels
	Path
	MTime
	CTime
	Type
	Mood
	OriginalArtist
	Remixed
	Conductor
	Composer
	Ensemble
	Lyricist
	Children // list of child ids, see VectorToChildren
	IDHigh   // id of the high-quality version of this item
	IDParent
	VideoCodec
	Container

	FieldCount
)

// Values of the Type field.
const (
	TypeFile uint32 = iota
	TypeTune
	TypeTuneHigh
	TypeSpoken
	TypePlaylist
	TypeDir
	TypeImage
	TypeVideo
	TypeRadio
	TypeTV
	TypeQuery
	TypePending
)

// Values of the AudioCodec field.
const (
	AudioCodecNone uint32 = iota
	AudioCodecMP2
	AudioCodecMP3
	AudioCodecFLAC
	AudioCodecVorbis
	AudioCodecWAV
	AudioCodecPCM
	AudioCodecAAC
	AudioCodecWMA
)

// Values of the VideoCodec field.
const (
	VideoCodecNone uint32 = iota
	VideoCodecMPEG2
	VideoCodecMPEG4
	VideoCodecH264
	VideoCodecFLV
	VideoCodecWMV
	VideoCodecTheora
)

// Values of the Container field.
const (
	ContainerNone uint32 = iota
	ContainerOgg
	ContainerMatroska
	ContainerAVI
	ContainerMPEGPS
	ContainerMP4
	ContainerMOV
	ContainerJPEG
)

// Well-known ids.
const (
	TVRoot     uint32 = 0xd0
	EPGRoot    uint32 = 0xe0
	RadioRoot  uint32 = 0xf0
	BrowseRoot uint32 = 0x100
)

var tags = [FieldCount]string{
	ID:             "id",
	Title:          "title",
	Artist:         "artist",
	Album:          "album",
	TrackNumber:    "tracknumber",
	Genre:          "genre",
	Comment:        "comment",
	Year:           "year",
	DurationMS:     "durationms",
	AudioCodec:     "codec",
	SizeBytes:      "sizebytes",
	BitsPerSec:     "bitspersec",
	SampleRate:     "samplerate",
	Channels:       "channels",
	Path:           "path",
	MTime:          "mtime",
	CTime:          "ctime",
	Type:           "type",
	Mood:           "mood",
	OriginalArtist: "originalartist",
	Remixed:        "remixed",
	Conductor:      "conductor",
	Composer:       "composer",
	Ensemble:       "ensemble",
	Lyricist:       "lyricist",
	Children:       "children",
	IDHigh:         "idhigh",
	IDParent:       "idparent",
	VideoCodec:     "videocodec",
	Container:      "container",
}

// Tags returns the dump tag of every field, indexed by field id.
func Tags() []string {
	return append([]string(nil), tags[:]...)
}

func TagOf(which db.Field) string {
	if which >= FieldCount {
		return ""
	}
	return tags[which]
}

func FieldByTag(tag string) (db.Field, bool) {
	for i, t := range tags {
		if t == tag {
			return db.Field(i), true
		}
	}
	return 0, false
}

var intFields = map[db.Field]bool{
	ID: true, IDParent: true, IDHigh: true,
	TrackNumber: true, Year: true, DurationMS: true,
	SizeBytes: true, BitsPerSec: true, SampleRate: true, Channels: true,
	MTime: true, CTime: true, Type: true,
	AudioCodec: true, VideoCodec: true, Container: true,
}

var indexedFields = map[db.Field]bool{
	ID: true, Path: true, Title: true, Artist: true, Album: true, Genre: true,
}

// Schema declares every media field for the steam engine.
func Schema() []steam.FieldSpec {
	specs := make([]steam.FieldSpec, FieldCount)
	for i := range specs {
		f := db.Field(i)
		specs[i] = steam.FieldSpec{
			Field:   f,
			Type:    steam.FieldString,
			Indexed: indexedFields[f],
		}
		if intFields[f] {
			specs[i].Type = steam.FieldInt
		}
	}
	return specs
}

// New returns an empty in-memory media database.
func New() *steam.Database {
	return steam.NewDatabase(Schema()...)
}
