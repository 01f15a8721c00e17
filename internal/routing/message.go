package routing

import "fmt"

// ShortMessage is a fixed-size MIDI message packed into 32 bits:
// status in the low byte, then data1 and data2.
type ShortMessage uint32

// Pack packs up to three bytes of a short message.
func Pack(msg []byte) ShortMessage {
	var packed ShortMessage
	for i := 0; i < len(msg) && i < 3; i++ {
		packed |= ShortMessage(msg[i]) << (8 * i)
	}
	return packed
}

func (m ShortMessage) Status() byte { return byte(m) }
func (m ShortMessage) Data1() byte  { return byte(m >> 8) }
func (m ShortMessage) Data2() byte  { return byte(m >> 16) }

// Len returns the number of bytes the status byte implies on the wire.
func (m ShortMessage) Len() int {
	status := m.Status()
	switch {
	case status < 0x80:
		return 0
	case status < 0xF0:
		switch status & 0xF0 {
		case 0xC0, 0xD0:
			return 2
		}
		return 3
	}
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	}
	return 1
}

// Bytes unpacks the message into the bytes that go on the wire.
func (m ShortMessage) Bytes() []byte {
	buf := []byte{m.Status(), m.Data1(), m.Data2()}
	return buf[:m.Len()]
}

// IsChannelVoice reports whether the channel filter applies to the message.
// Pitch bend (0xE0) is included; status 0xF0 and above always passes.
func (m ShortMessage) IsChannelVoice() bool {
	msgType := m.Status() & 0xF0
	return msgType >= 0x80 && msgType <= 0xE0
}

// Channel returns the zero-based channel nibble.
func (m ShortMessage) Channel() int {
	return int(m.Status() & 0x0F)
}

func (m ShortMessage) String() string {
	return fmt.Sprintf("0x%08X", uint32(m))
}
