package synth

import (
	"errors"
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ErrNoFreeChannel is returned when all sixteen MIDI channels are taken.
var ErrNoFreeChannel = errors.New("synth: no free MIDI channel")

// allNotesOff is the MIDI "All Notes Off" controller number.
const allNotesOff = 123

// Sender writes a MIDI message to an output.
type Sender func(msg gomidi.Message) error

// MIDI drives a MIDI output port. Each instrument gets its own MIDI channel,
// set to the matching General MIDI program when the name is known.
type MIDI struct {
	mu       sync.Mutex
	send     Sender
	closer   func() error
	channels map[string]*midiChannel
	next     uint8
	closed   bool
}

// OpenMIDI opens the first output port whose name contains portName.
// A MIDI driver must be registered by the caller (for example by importing
// gitlab.com/gomidi/midi/v2/drivers/rtmididrv).
func OpenMIDI(portName string) (*MIDI, error) {
	out, err := gomidi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("find MIDI output %q: %w", portName, err)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open MIDI output %q: %w", out.String(), err)
	}
	return NewMIDI(send, out.Close), nil
}

// OutPorts returns the names of the available MIDI output ports.
func OutPorts() []string {
	ports := gomidi.GetOutPorts()
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

// NewMIDI creates a synthesizer writing to send. closer, if non-nil, is
// called by Close.
func NewMIDI(send Sender, closer func() error) *MIDI {
	return &MIDI{
		send:     send,
		closer:   closer,
		channels: make(map[string]*midiChannel),
	}
}

// Channel returns the channel for instrument, allocating a MIDI channel and
// sending its program change the first time the instrument is seen.
func (m *MIDI) Channel(instrument string) (Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	key := normalizeInstrument(instrument)
	if ch, ok := m.channels[key]; ok {
		return ch, nil
	}

	var num uint8
	if isDrums(instrument) {
		num = drumChannel
	} else {
		if m.next == drumChannel {
			m.next++
		}
		if m.next > 15 {
			return nil, fmt.Errorf("%w for %q", ErrNoFreeChannel, instrument)
		}
		num = m.next
		m.next++
		if prog, ok := Program(instrument); ok {
			if err := m.send(gomidi.ProgramChange(num, prog)); err != nil {
				return nil, fmt.Errorf("program change for %q: %w", instrument, err)
			}
		}
	}

	ch := &midiChannel{synth: m, num: num}
	m.channels[key] = ch
	return ch, nil
}

// Close silences every channel, marks them stopped, invokes their pending
// cancel callbacks and closes the output.
func (m *MIDI) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true

	var errs []error
	var callbacks []func()
	for _, ch := range m.channels {
		ch.stopped = true
		if ch.sounding {
			errs = append(errs, m.send(gomidi.NoteOff(ch.num, ch.key)))
			ch.sounding = false
		}
		errs = append(errs, m.send(gomidi.ControlChange(ch.num, allNotesOff, 0)))
		if ch.onCancel != nil {
			callbacks = append(callbacks, ch.onCancel)
			ch.onCancel = nil
		}
	}
	if m.closer != nil {
		errs = append(errs, m.closer())
	}
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	return errors.Join(errs...)
}

type midiChannel struct {
	synth    *MIDI
	num      uint8
	key      uint8
	sounding bool
	stopped  bool
	onCancel func()
}

func (c *midiChannel) PlayNote(name string, velocity uint8, onCancel func()) error {
	m := c.synth
	m.mu.Lock()
	defer m.mu.Unlock()

	// A closed synthesizer reports the stop through DidSignalStop.
	if m.closed {
		return nil
	}
	c.onCancel = onCancel
	if c.sounding {
		if err := m.send(gomidi.NoteOff(c.num, c.key)); err != nil {
			return err
		}
		c.sounding = false
	}
	if IsRest(name) {
		return nil
	}
	key, err := ParsePitch(name)
	if err != nil {
		return err
	}
	if velocity > 127 {
		velocity = 127
	}
	if err := m.send(gomidi.NoteOn(c.num, key, velocity)); err != nil {
		return err
	}
	c.key = key
	c.sounding = true
	return nil
}

func (c *midiChannel) StopNote() error {
	m := c.synth
	m.mu.Lock()
	defer m.mu.Unlock()

	c.onCancel = nil
	if !c.sounding || m.closed {
		return nil
	}
	c.sounding = false
	return m.send(gomidi.NoteOff(c.num, c.key))
}

func (c *midiChannel) DidSignalStop() bool {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	return c.stopped
}

// Verify MIDI implements Synthesizer at compile time.
var _ Synthesizer = (*MIDI)(nil)
