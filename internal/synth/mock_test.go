package synth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_RecordsCalls(t *testing.T) {
	m := NewMock()
	ch, err := m.Channel("piano")
	require.NoError(t, err)

	require.NoError(t, ch.PlayNote("C4", 90, nil))
	require.NoError(t, ch.StopNote())
	require.NoError(t, ch.StopNote())

	assert.Equal(t, []Event{
		{Kind: EventPlay, Instrument: "piano", Name: "C4", Velocity: 90},
		{Kind: EventStop, Instrument: "piano"},
	}, m.Events())
	assert.Equal(t, []string{"C4"}, m.Played())
	assert.Equal(t, []string{"piano"}, m.Acquired())
}

func TestMock_SignalStopOn(t *testing.T) {
	m := NewMock()
	m.SignalStopOn("E4")
	ch, err := m.Channel("piano")
	require.NoError(t, err)

	require.NoError(t, ch.PlayNote("C4", 90, nil))
	assert.False(t, ch.DidSignalStop())
	require.NoError(t, ch.PlayNote("E4", 90, nil))
	assert.True(t, ch.DidSignalStop())
}

func TestMock_CloseInvokesPendingCallback(t *testing.T) {
	m := NewMock()
	ch, err := m.Channel("piano")
	require.NoError(t, err)

	called := false
	require.NoError(t, ch.PlayNote("C4", 90, func() { called = true }))
	m.Close()

	assert.True(t, called)
	assert.True(t, ch.DidSignalStop())
}

func TestMock_Errors(t *testing.T) {
	m := NewMock()
	boom := errors.New("boom")
	m.SetChannelError("organ", boom)
	_, err := m.Channel("organ")
	require.ErrorIs(t, err, boom)

	ch, err := m.Channel("piano")
	require.NoError(t, err)
	m.SetPlayError(boom)
	require.ErrorIs(t, ch.PlayNote("C4", 90, nil), boom)
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "play", EventPlay.String())
	assert.Equal(t, "stop", EventStop.String())
	assert.Equal(t, "unknown", EventKind(9).String())
}
