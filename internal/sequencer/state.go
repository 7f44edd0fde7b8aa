package sequencer

// State represents the scheduler's playback state.
//
// Valid transitions:
//   - Idle    → Playing (via Play)
//   - Playing → Seeking (loop restarts after SkipTo)
//   - Seeking → Playing (target note reached)
//   - Playing → Idle    (Stop, channel stop, end of score, error)
//   - Seeking → Idle    (target beyond end of score, Stop, error)
//
// Seeking is a sub-mode of Playing: the loop has restarted from the top of
// the score and is fast-forwarding to the target without sounding notes.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateSeeking
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	case StateSeeking:
		return "Seeking"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is in progress (Playing or Seeking).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StateSeeking
}
