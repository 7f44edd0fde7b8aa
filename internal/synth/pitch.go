package synth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Rest is the note name that keeps a channel silent for the note's duration.
const Rest = "rest"

var semitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// ParsePitch converts a note name such as "C4", "F#3", "Bb-1" or a raw key
// number such as "60" to a MIDI key. C4 is middle C (60).
func ParsePitch(name string) (uint8, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, errors.New("empty note name")
	}
	if k, err := strconv.Atoi(s); err == nil {
		if k < 0 || k > 127 {
			return 0, fmt.Errorf("key %d out of range 0-127", k)
		}
		return uint8(k), nil
	}

	semi, ok := semitones[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note name %q", name)
	}
	rest := s[1:]
accidentals:
	for len(rest) > 0 {
		switch rest[0] {
		case '#':
			semi++
		case 'b':
			semi--
		default:
			break accidentals
		}
		rest = rest[1:]
	}
	oct, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note name %q", name)
	}
	k := (oct+1)*12 + semi
	if k < 0 || k > 127 {
		return 0, fmt.Errorf("note %q out of MIDI range", name)
	}
	return uint8(k), nil
}

// IsRest reports whether name denotes a rest.
func IsRest(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), Rest)
}
