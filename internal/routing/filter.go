package routing

import "fmt"

// NumChannels is the number of MIDI channels.
const NumChannels = 16

// ChannelMask enables or disables each zero-based MIDI channel.
type ChannelMask [NumChannels]bool

// AllChannels returns a mask with every channel enabled.
func AllChannels() ChannelMask {
	var m ChannelMask
	for i := range m {
		m[i] = true
	}
	return m
}

// Enabled lists the enabled zero-based channels.
func (m ChannelMask) Enabled() []int {
	var chans []int
	for ch, on := range m {
		if on {
			chans = append(chans, ch)
		}
	}
	return chans
}

// ChannelFilter keeps one mask per output.
type ChannelFilter struct {
	masks []ChannelMask
}

// NewChannelFilter returns a filter with all channels enabled on every output.
func NewChannelFilter(outs int) *ChannelFilter {
	masks := make([]ChannelMask, outs)
	for i := range masks {
		masks[i] = AllChannels()
	}
	return &ChannelFilter{masks: masks}
}

func (f *ChannelFilter) validOutput(out int) error {
	if out < 0 || out >= len(f.masks) {
		return fmt.Errorf("output %d: %w", out, ErrInvalidIndex)
	}
	return nil
}

func validChannel(ch int) error {
	if ch < 0 || ch >= NumChannels {
		return fmt.Errorf("channel %d: %w", ch, ErrInvalidChannel)
	}
	return nil
}

// SetChannelEnabled updates one channel of an output's mask.
func (f *ChannelFilter) SetChannelEnabled(out, ch int, enabled bool) error {
	if err := f.validOutput(out); err != nil {
		return err
	}
	if err := validChannel(ch); err != nil {
		return err
	}
	f.masks[out][ch] = enabled
	return nil
}

// IsChannelEnabled reports whether ch passes out. Invalid arguments report
// false.
func (f *ChannelFilter) IsChannelEnabled(out, ch int) bool {
	if f.validOutput(out) != nil || validChannel(ch) != nil {
		return false
	}
	return f.masks[out][ch]
}

// Mask returns a copy of an output's mask.
func (f *ChannelFilter) Mask(out int) (ChannelMask, error) {
	if err := f.validOutput(out); err != nil {
		return ChannelMask{}, err
	}
	return f.masks[out], nil
}

// SetMask replaces an output's mask.
func (f *ChannelFilter) SetMask(out int, mask ChannelMask) error {
	if err := f.validOutput(out); err != nil {
		return err
	}
	f.masks[out] = mask
	return nil
}

// ChannelEdit is caller-owned state for editing one output's mask. Nothing
// changes in the engine until the edit is applied.
type ChannelEdit struct {
	Output  int
	Pending ChannelMask
}

// EnableAll checks every channel.
func (e *ChannelEdit) EnableAll() { e.Pending = AllChannels() }

// DisableAll unchecks every channel.
func (e *ChannelEdit) DisableAll() { e.Pending = ChannelMask{} }

// Set changes one pending channel.
func (e *ChannelEdit) Set(ch int, enabled bool) error {
	if err := validChannel(ch); err != nil {
		return err
	}
	e.Pending[ch] = enabled
	return nil
}

// Toggle flips one pending channel.
func (e *ChannelEdit) Toggle(ch int) error {
	if err := validChannel(ch); err != nil {
		return err
	}
	e.Pending[ch] = !e.Pending[ch]
	return nil
}
