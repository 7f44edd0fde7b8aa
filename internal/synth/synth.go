// Package synth defines the synthesizer boundary the sequencer drives and
// provides a MIDI-backed implementation.
package synth

import "errors"

// Synthesizer hands out one Channel per instrument.
type Synthesizer interface {
	Channel(instrument string) (Channel, error)
}

// Channel sounds one note at a time for a track.
type Channel interface {
	// PlayNote starts sounding a note. onCancel may be invoked by the
	// channel at any later point to ask the caller to abandon its wait on
	// the note (for example when the synthesizer is closed).
	PlayNote(name string, velocity uint8, onCancel func()) error
	// StopNote silences the current note. It is safe to call when nothing
	// is sounding.
	StopNote() error
	// DidSignalStop reports whether the channel was stopped externally.
	DidSignalStop() bool
}

// ErrClosed is returned by a closed synthesizer.
var ErrClosed = errors.New("synth: closed")
