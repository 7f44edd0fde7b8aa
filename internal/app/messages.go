// internal/app/messages.go
package app

import "time"

// TickMsg refreshes the position readout while playing.
type TickMsg time.Time

// PlayDoneMsg is sent when a Play command returns.
type PlayDoneMsg struct {
	Err error
}
