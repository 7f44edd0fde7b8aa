// Package icons selects the glyphs used for playback status and tracks.
package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for one style.
type Icons struct {
	Play  string
	Seek  string
	Stop  string
	Track string // prefix for instrument names, empty for none
}

var (
	nerdIcons = Icons{
		Play:  "\uf04b",  // nf-fa-play
		Seek:  "\uf04e",  // nf-fa-forward
		Stop:  "\uf04d",  // nf-fa-stop
		Track: "\uf001 ", // nf-fa-music
	}

	unicodeIcons = Icons{
		Play:  "▶",
		Seek:  "»",
		Stop:  "■",
		Track: "♪ ",
	}

	noneIcons = Icons{
		Play:  ">",
		Seek:  "+",
		Stop:  "-",
		Track: "",
	}

	// current holds the active icon set
	current = unicodeIcons
)

// Init selects the icon set for style. Unknown styles fall back to unicode.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleNone:
		current = noneIcons
	default:
		current = unicodeIcons
	}
}

func Play() string { return current.Play }
func Seek() string { return current.Seek }
func Stop() string { return current.Stop }

// FormatTrack formats an instrument name with the track icon.
func FormatTrack(name string) string {
	return current.Track + name
}
