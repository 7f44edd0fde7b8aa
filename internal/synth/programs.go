package synth

import "strings"

// drumChannel is the General MIDI percussion channel (10, zero-based 9).
const drumChannel = 9

// General MIDI program numbers (zero-based) for common instrument names.
var gmPrograms = map[string]uint8{
	"piano":           0,
	"grand piano":     0,
	"bright piano":    1,
	"electric piano":  4,
	"harpsichord":     6,
	"celesta":         8,
	"glockenspiel":    9,
	"music box":       10,
	"vibraphone":      11,
	"marimba":         12,
	"xylophone":       13,
	"organ":           19,
	"accordion":       21,
	"harmonica":       22,
	"guitar":          24,
	"nylon guitar":    24,
	"steel guitar":    25,
	"electric guitar": 27,
	"bass":            32,
	"electric bass":   33,
	"violin":          40,
	"viola":           41,
	"cello":           42,
	"contrabass":      43,
	"harp":            46,
	"timpani":         47,
	"strings":         48,
	"choir":           52,
	"trumpet":         56,
	"trombone":        57,
	"tuba":            58,
	"horn":            60,
	"french horn":     60,
	"brass":           61,
	"saxophone":       65,
	"oboe":            68,
	"bassoon":         70,
	"clarinet":        71,
	"piccolo":         72,
	"flute":           73,
	"recorder":        74,
	"lead":            80,
	"pad":             88,
}

// Program returns the General MIDI program for an instrument name.
func Program(instrument string) (uint8, bool) {
	p, ok := gmPrograms[normalizeInstrument(instrument)]
	return p, ok
}

func isDrums(instrument string) bool {
	switch normalizeInstrument(instrument) {
	case "drums", "drum kit", "percussion":
		return true
	}
	return false
}

func normalizeInstrument(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), " ")
}
