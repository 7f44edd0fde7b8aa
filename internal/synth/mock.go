package synth

import "sync"

// EventKind identifies a call recorded by Mock.
type EventKind int

const (
	EventPlay EventKind = iota
	EventStop
)

func (k EventKind) String() string {
	switch k {
	case EventPlay:
		return "play"
	case EventStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Event is a call recorded by Mock.
type Event struct {
	Kind       EventKind
	Instrument string
	Name       string
	Velocity   uint8
}

// Mock is a test double for Synthesizer. It is safe for concurrent use.
type Mock struct {
	mu         sync.Mutex
	events     []Event
	channels   map[string]*MockChannel
	acquired   []string
	channelErr map[string]error
	playErr    error
	stopOnPlay map[string]bool // note name -> signal stop when played
	onPlay     func(Event)
	onStop     func(Event)
	closed     bool
}

// NewMock creates a new mock synthesizer for testing.
func NewMock() *Mock {
	return &Mock{
		channels:   make(map[string]*MockChannel),
		channelErr: make(map[string]error),
		stopOnPlay: make(map[string]bool),
	}
}

// Channel returns the mock channel for instrument.
func (m *Mock) Channel(instrument string) (Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquired = append(m.acquired, instrument)
	if err := m.channelErr[instrument]; err != nil {
		return nil, err
	}
	ch, ok := m.channels[instrument]
	if !ok {
		ch = &MockChannel{mock: m, instrument: instrument, stopped: m.closed}
		m.channels[instrument] = ch
	}
	return ch, nil
}

// Close stops every channel and invokes their pending cancel callbacks.
func (m *Mock) Close() {
	m.mu.Lock()
	m.closed = true
	var callbacks []func()
	for _, ch := range m.channels {
		ch.stopped = true
		if ch.onCancel != nil {
			callbacks = append(callbacks, ch.onCancel)
		}
	}
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// Test helpers

func (m *Mock) SetChannelError(instrument string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelErr[instrument] = err
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// SignalStopOn makes the channel report a stop right after playing name.
func (m *Mock) SignalStopOn(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopOnPlay[name] = true
}

// OnPlay registers fn to run, outside the mock's lock, after each PlayNote.
func (m *Mock) OnPlay(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPlay = fn
}

// OnStop registers fn to run, outside the mock's lock, after each StopNote
// that silenced a note.
func (m *Mock) OnStop(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStop = fn
}

// Events returns a copy of the recorded calls.
func (m *Mock) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Played returns the names of the notes played, in order.
func (m *Mock) Played() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, e := range m.events {
		if e.Kind == EventPlay {
			names = append(names, e.Name)
		}
	}
	return names
}

// Acquired returns the instruments passed to Channel, in order.
func (m *Mock) Acquired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acquired...)
}

// MockChannel is the Channel handed out by Mock.
type MockChannel struct {
	mock       *Mock
	instrument string
	onCancel   func()
	sounding   bool
	stopped    bool
}

func (c *MockChannel) PlayNote(name string, velocity uint8, onCancel func()) error {
	m := c.mock
	m.mu.Lock()
	if m.playErr != nil {
		err := m.playErr
		m.mu.Unlock()
		return err
	}
	e := Event{Kind: EventPlay, Instrument: c.instrument, Name: name, Velocity: velocity}
	m.events = append(m.events, e)
	c.onCancel = onCancel
	c.sounding = true
	if m.stopOnPlay[name] {
		c.stopped = true
	}
	hook := m.onPlay
	m.mu.Unlock()

	if hook != nil {
		hook(e)
	}
	return nil
}

func (c *MockChannel) StopNote() error {
	m := c.mock
	m.mu.Lock()
	wasSounding := c.sounding
	e := Event{Kind: EventStop, Instrument: c.instrument}
	if wasSounding {
		m.events = append(m.events, e)
	}
	c.sounding = false
	c.onCancel = nil
	hook := m.onStop
	m.mu.Unlock()

	if wasSounding && hook != nil {
		hook(e)
	}
	return nil
}

func (c *MockChannel) DidSignalStop() bool {
	c.mock.mu.Lock()
	defer c.mock.mu.Unlock()
	return c.stopped
}

// Verify Mock implements Synthesizer at compile time.
var _ Synthesizer = (*Mock)(nil)
