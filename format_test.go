package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/leafo/midimatrix/internal/routing"
)

func TestNoteToName(t *testing.T) {
	require.Equal(t, "C4", noteToName(60))
	require.Equal(t, "A4", noteToName(69))
	require.Equal(t, "C-1", noteToName(0))
	require.Equal(t, "G9", noteToName(127))
}

func TestFormatMessage(t *testing.T) {
	note := formatMessage(routing.Pack(midi.NoteOn(2, 60, 100)))
	require.Contains(t, note, "channel: 3")
	require.Contains(t, note, "note: C4 (60)")
	require.Contains(t, note, "velocity: 100")

	cc := formatMessage(routing.Pack(midi.ControlChange(0, 7, 100)))
	require.Contains(t, cc, "channel: 1, data: [7 100]")

	require.NotEmpty(t, formatMessage(routing.Pack([]byte{0xF8})))
	require.Equal(t, "0x00000000", formatMessage(0))
}

func TestFormatConnections(t *testing.T) {
	ins := []routing.Device{{Index: 0, Name: "Keys"}, {Index: 1, Name: "Pads"}}
	outs := []routing.Device{{Index: 0, Name: "Synth"}}

	text := formatConnections([]routing.Connection{{In: 1, Out: 0}}, ins, outs)
	require.Contains(t, text, "Input 1 -> Output 0")
	require.Contains(t, text, "Pads -> Synth")

	require.Contains(t, formatConnections(nil, ins, outs), "No active connections")
}

func TestFormatMatrix(t *testing.T) {
	ins := []routing.Device{{Index: 0}, {Index: 1}}
	outs := []routing.Device{{Index: 0}, {Index: 1}}

	text := formatMatrix([]routing.Connection{{In: 1, Out: 0}}, ins, outs)
	require.Contains(t, text, "in\\out")
	require.Contains(t, text, "x")
}

func TestFormatMask(t *testing.T) {
	mask := routing.AllChannels()
	mask[15] = false

	text := formatMask("Output 0", mask)
	require.Contains(t, text, "15")
	require.NotContains(t, text, "16")
	require.Contains(t, text, "-")
}

func TestFormatStats(t *testing.T) {
	text := formatStats(routing.Stats{Routed: 4, LastDriverError: "error on input 0 (Keys)"})
	require.Contains(t, text, "routed:        4")
	require.Contains(t, text, "error on input 0 (Keys)")
}
