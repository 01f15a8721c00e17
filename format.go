package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gitlab.com/gomidi/midi/v2"

	"github.com/leafo/midimatrix/internal/routing"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// noteToName converts a MIDI note number to note name
func noteToName(note uint8) string {
	noteNames := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	octave := int(note)/12 - 1
	noteName := noteNames[note%12]
	return fmt.Sprintf("%s%d", noteName, octave)
}

// hasChannelInfo checks if a message has channel information (channel messages)
func hasChannelInfo(msg midi.Message) bool {
	if len(msg) >= 1 {
		statusByte := msg[0]
		return statusByte >= 0x80 && statusByte <= 0xEF
	}
	return false
}

// formatMessage renders a short message for the route log. Channels are
// shown one-based.
func formatMessage(sm routing.ShortMessage) string {
	msg := midi.Message(sm.Bytes())
	if len(msg) == 0 {
		return sm.String()
	}
	messageType := msg.Type().String()

	if hasChannelInfo(msg) {
		channel := msg[0]&0x0F + 1

		var ch, key, velocity uint8
		if msg.GetNoteOn(&ch, &key, &velocity) || msg.GetNoteOff(&ch, &key, &velocity) {
			return fmt.Sprintf("%s channel: %d, note: %s (%d), velocity: %d", messageType, channel, noteToName(key), key, velocity)
		}
		if len(msg) > 1 {
			return fmt.Sprintf("%s channel: %d, data: %v", messageType, channel, []byte(msg[1:]))
		}
		return fmt.Sprintf("%s channel: %d", messageType, channel)
	}

	if len(msg) > 1 {
		return fmt.Sprintf("%s data: %v", messageType, []byte(msg[1:]))
	}
	return messageType
}

// formatRoute is the line printed for a routed message.
func formatRoute(outputName string, sm routing.ShortMessage) string {
	return fmt.Sprintf("[%s] %s", outputName, formatMessage(sm))
}

// formatDropped is the line printed when a message reached no output.
func formatDropped(inputName string, sm routing.ShortMessage) string {
	return dimStyle.Render(fmt.Sprintf("[DROPPED from %s] %s", inputName, formatMessage(sm)))
}

// formatDevices lists devices as "index: name" lines.
func formatDevices(title string, devices []routing.Device) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	if len(devices) == 0 {
		b.WriteString(dimStyle.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, d := range devices {
		fmt.Fprintf(&b, "  %d: %s\n", d.Index, d.Name)
	}
	return b.String()
}

// formatConnections lists connections in the "Input X -> Output Y" form.
func formatConnections(conns []routing.Connection, ins, outs []routing.Device) string {
	if len(conns) == 0 {
		return dimStyle.Render("No active connections") + "\n"
	}
	var b strings.Builder
	for _, c := range conns {
		fmt.Fprintf(&b, "Input %d -> Output %d  (%s -> %s)\n", c.In, c.Out, deviceName(ins, c.In), deviceName(outs, c.Out))
	}
	return b.String()
}

// formatMatrix draws inputs as rows and outputs as columns.
func formatMatrix(conns []routing.Connection, ins, outs []routing.Device) string {
	connected := make(map[routing.Connection]bool, len(conns))
	for _, c := range conns {
		connected[c] = true
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s", "in\\out")))
	for o := range outs {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%3d", o)))
	}
	b.WriteString("\n")
	for i := range ins {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-6d", i)))
		for o := range outs {
			if connected[routing.Connection{In: i, Out: o}] {
				b.WriteString(onStyle.Render(fmt.Sprintf("%3s", "x")))
			} else {
				b.WriteString(dimStyle.Render(fmt.Sprintf("%3s", ".")))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatMask shows channels 1-16 with enabled ones highlighted.
func formatMask(title string, mask routing.ChannelMask) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n ")
	for ch, on := range mask {
		label := fmt.Sprintf("%3d", ch+1)
		if on {
			b.WriteString(onStyle.Render(label))
		} else {
			b.WriteString(dimStyle.Render(fmt.Sprintf("%3s", "-")))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func formatStats(s routing.Stats) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Routing statistics"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  routed:        %d\n", s.Routed)
	fmt.Fprintf(&b, "  filtered:      %d\n", s.Filtered)
	fmt.Fprintf(&b, "  dropped:       %d\n", s.Dropped)
	fmt.Fprintf(&b, "  stale:         %d\n", s.Stale)
	fmt.Fprintf(&b, "  unsupported:   %d\n", s.Unsupported)
	fmt.Fprintf(&b, "  overflow:      %d\n", s.Overflow)
	fmt.Fprintf(&b, "  send errors:   %d\n", s.SendErrors)
	fmt.Fprintf(&b, "  driver errors: %d\n", s.DriverErrors)
	if s.LastDriverError != "" {
		fmt.Fprintf(&b, "  last error:    %s\n", warnStyle.Render(s.LastDriverError))
	}
	return b.String()
}

func deviceName(devices []routing.Device, idx int) string {
	if idx < 0 || idx >= len(devices) {
		return "?"
	}
	return devices[idx].Name
}
