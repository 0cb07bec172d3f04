// internal/device/ai.go
package device

import (
	"errors"

	"github.com/tamzrod/ecat-master/internal/master"
)

// Analog input object indices.
const (
	aiValueIndex     uint16 = 0x6010
	aiFullScaleIndex uint16 = 0x8010
)

const aiRawFullScale = 32767.0

// AnalogIn is a k-channel signed 16-bit sampler. The full-scale range is a
// configuration object: an asynchronous SDO read delivers it through
// ProcessSDO and rescales every channel from then on.
type AnalogIn struct {
	raw   []int16
	scale float64
}

func NewAnalogIn(channels int) (*AnalogIn, error) {
	if channels <= 0 {
		return nil, errors.New("device: ai needs at least one channel")
	}
	return &AnalogIn{
		raw:   make([]int16, channels),
		scale: 1.0 / aiRawFullScale,
	}, nil
}

func (a *AnalogIn) Channels() []master.Channel {
	chs := make([]master.Channel, len(a.raw))
	for i := range chs {
		chs[i] = master.Channel{Index: aiValueIndex, Subindex: uint8(i + 1), Bits: 16}
	}
	return chs
}

func (a *AnalogIn) ProcessData(channel int, data []byte, bit uint8) {
	if channel < 0 || channel >= len(a.raw) {
		return
	}
	a.raw[channel] = int16(word(data))
}

func (a *AnalogIn) ProcessSDO(index uint16, value uint16) {
	if index == aiFullScaleIndex && value != 0 {
		a.scale = float64(value) / aiRawFullScale
	}
}

// Raw is the last sampled raw count of channel i.
func (a *AnalogIn) Raw(i int) int16 {
	if i < 0 || i >= len(a.raw) {
		return 0
	}
	return a.raw[i]
}

// Value is the scaled reading of channel i.
func (a *AnalogIn) Value(i int) float64 {
	return float64(a.Raw(i)) * a.scale
}
