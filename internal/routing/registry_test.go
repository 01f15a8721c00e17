package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type brokenPlatform struct{ fakePlatform }

func (*brokenPlatform) Outputs() ([]string, error) { return nil, errors.New("no MIDI service") }

func TestEnumerateTruncates(t *testing.T) {
	reg, err := Enumerate(newFakePlatform(5, 1), 3)
	require.NoError(t, err)

	require.Equal(t, 3, reg.Count(Input))
	require.Equal(t, 1, reg.Count(Output))
	require.Equal(t, "In C", reg.Name(Input, 2))
	require.Equal(t, "", reg.Name(Input, 3))
	require.False(t, reg.Valid(Input, -1))
	require.True(t, reg.Valid(Output, 0))
}

func TestEnumerateDefaultCap(t *testing.T) {
	p := newFakePlatform(0, 0)
	for i := 0; i < DefaultMaxDevices+4; i++ {
		p.outNames = append(p.outNames, "port")
	}
	reg, err := Enumerate(p, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultMaxDevices, reg.Count(Output))
}

func TestEnumerateError(t *testing.T) {
	_, err := Enumerate(&brokenPlatform{}, 0)
	require.ErrorContains(t, err, "no MIDI service")
}

func TestDevicesReturnsCopy(t *testing.T) {
	reg, err := Enumerate(newFakePlatform(1, 0), 0)
	require.NoError(t, err)

	devs := reg.Devices(Input)
	devs[0].Name = "changed"
	require.Equal(t, "In A", reg.Name(Input, 0))
}

func TestMatrixScan(t *testing.T) {
	m := NewMatrix(2, 3)
	require.True(t, m.Set(1, 2, true))
	require.False(t, m.Set(1, 2, true))

	require.True(t, m.RowActive(1))
	require.False(t, m.RowActive(0))
	require.True(t, m.ColumnActive(2))
	require.False(t, m.ColumnActive(0))

	require.True(t, m.Set(1, 2, false))
	require.False(t, m.RowActive(1))
	require.Empty(t, m.Connections())
}
