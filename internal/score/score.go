// Package score defines the tracks and notes sequenced by the player and
// loads them from YAML score files.
package score

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Note is a single playable event.
type Note struct {
	Name     string
	Velocity uint8
	Duration time.Duration
}

// Track pairs an instrument with an ordered sequence of notes.
type Track struct {
	Instrument string
	Notes      []Note
}

// Score is a titled set of tracks, played one after another.
type Score struct {
	Title  string
	Tracks []Track
}

// Duration returns the sum of the track's note durations.
func (t Track) Duration() time.Duration {
	var d time.Duration
	for _, n := range t.Notes {
		d += n.Duration
	}
	return d
}

// Total returns the virtual length of tracks played in sequence.
func Total(tracks []Track) time.Duration {
	var d time.Duration
	for _, t := range tracks {
		d += t.Duration()
	}
	return d
}

// Cursor addresses a note inside a list of tracks.
type Cursor struct {
	Track int
	Note  int
	Start time.Duration // virtual start of the note
}

// Index maps virtual time to notes using cumulative offsets.
type Index struct {
	cursors []Cursor
	ends    []time.Duration
}

// NewIndex precomputes the start offset of every note in tracks.
func NewIndex(tracks []Track) *Index {
	idx := &Index{}
	var at time.Duration
	for ti, t := range tracks {
		for ni, n := range t.Notes {
			idx.cursors = append(idx.cursors, Cursor{Track: ti, Note: ni, Start: at})
			at += n.Duration
			idx.ends = append(idx.ends, at)
		}
	}
	return idx
}

// Len returns the number of indexed notes.
func (idx *Index) Len() int {
	return len(idx.cursors)
}

// Locate returns the first note whose window ends at or after target, the
// same note a seek to target would sound first. It returns false when target
// lies beyond the last note.
func (idx *Index) Locate(target time.Duration) (Cursor, bool) {
	i := sort.Search(len(idx.ends), func(i int) bool {
		return idx.ends[i] >= target
	})
	if i == len(idx.ends) {
		return Cursor{}, false
	}
	return idx.cursors[i], true
}

// File layout of a YAML score.
type fileScore struct {
	Title  string      `yaml:"title"`
	Tracks []fileTrack `yaml:"tracks"`
}

type fileTrack struct {
	Instrument string     `yaml:"instrument"`
	Notes      []fileNote `yaml:"notes"`
}

type fileNote struct {
	Name     string `yaml:"name"`
	Velocity *int   `yaml:"velocity"`
	Duration int64  `yaml:"duration"` // milliseconds
}

// DefaultVelocity is used for notes that do not set one.
const DefaultVelocity = 100

// Parse decodes a YAML score.
func Parse(data []byte) (*Score, error) {
	var f fileScore
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse score: %w", err)
	}
	if len(f.Tracks) == 0 {
		return nil, errors.New("score has no tracks")
	}

	s := &Score{Title: f.Title, Tracks: make([]Track, 0, len(f.Tracks))}
	for ti, ft := range f.Tracks {
		if ft.Instrument == "" {
			return nil, fmt.Errorf("track %d: missing instrument", ti+1)
		}
		t := Track{Instrument: ft.Instrument, Notes: make([]Note, 0, len(ft.Notes))}
		for ni, fn := range ft.Notes {
			if fn.Duration < 0 {
				return nil, fmt.Errorf("track %d note %d: negative duration %d", ti+1, ni+1, fn.Duration)
			}
			vel := DefaultVelocity
			if fn.Velocity != nil {
				vel = *fn.Velocity
			}
			if vel < 0 || vel > 127 {
				return nil, fmt.Errorf("track %d note %d: velocity %d out of range 0-127", ti+1, ni+1, vel)
			}
			t.Notes = append(t.Notes, Note{
				Name:     fn.Name,
				Velocity: uint8(vel),
				Duration: time.Duration(fn.Duration) * time.Millisecond,
			})
		}
		s.Tracks = append(s.Tracks, t)
	}
	return s, nil
}

// Load reads and parses a YAML score file.
func Load(path string) (*Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
