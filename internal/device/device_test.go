// internal/device/device_test.go
package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildKnownTypes(t *testing.T) {
	d, err := Build("dio", Geometry{Inputs: 4, Outputs: 4})
	require.NoError(t, err)
	require.IsType(t, &DigitalIO{}, d)

	a, err := Build("ai", Geometry{Channels: 2})
	require.NoError(t, err)
	require.IsType(t, &AnalogIn{}, a)

	_, err = Build("servo", Geometry{})
	require.Error(t, err)
}

func TestDigitalIOChannels(t *testing.T) {
	d, err := NewDigitalIO(2, 3)
	require.NoError(t, err)

	chs := d.Channels()
	require.Len(t, chs, 5)
	require.Equal(t, uint16(0x6000), chs[0].Index)
	require.Equal(t, uint8(1), chs[0].Bits)
	require.Equal(t, uint16(0x7000), chs[2].Index)
	require.Equal(t, uint8(1), chs[2].Subindex) // outputs restart at subindex 1
}

func TestDigitalIODecodeEncode(t *testing.T) {
	d, err := NewDigitalIO(2, 2)
	require.NoError(t, err)

	// Word 0b0000_0010: bit 1 set.
	data := []byte{0x00, 0x02}
	d.ProcessData(0, data, 0)
	d.ProcessData(1, data, 1)
	require.False(t, d.Input(0))
	require.True(t, d.Input(1))

	// Outputs land at their bit positions without clobbering others.
	out := []byte{0x00, 0x02}
	d.SetOutput(0, true)
	d.ProcessData(2, out, 2)
	d.ProcessData(3, out, 3)
	require.Equal(t, []byte{0x00, 0x06}, out)

	d.SetOutput(0, false)
	d.ProcessData(2, out, 2)
	require.Equal(t, []byte{0x00, 0x02}, out)
}

func TestAnalogInDecodeAndScale(t *testing.T) {
	a, err := NewAnalogIn(2)
	require.NoError(t, err)

	// +32767 raw on channel 0, -1 raw on channel 1 (big-endian words).
	a.ProcessData(0, []byte{0x7F, 0xFF}, 0)
	a.ProcessData(1, []byte{0xFF, 0xFF}, 0)

	require.Equal(t, int16(32767), a.Raw(0))
	require.Equal(t, int16(-1), a.Raw(1))
	require.InDelta(t, 1.0, a.Value(0), 1e-9)

	// Full-scale arrives asynchronously over the mailbox.
	a.ProcessSDO(0x8010, 10)
	require.InDelta(t, 10.0, a.Value(0), 1e-3)

	// Unrelated objects leave the scale alone.
	a.ProcessSDO(0x9999, 77)
	require.InDelta(t, 10.0, a.Value(0), 1e-3)
}
