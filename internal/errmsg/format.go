// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Setup
	OpConfigLoad Op = "load configuration"
	OpLogSetup   Op = "set up logging"

	// Score
	OpScoreLoad Op = "load score"

	// MIDI output
	OpMIDIOpen  Op = "open MIDI output"
	OpMIDIClose Op = "close MIDI output"

	// Playback
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
