// internal/device/dio.go
package device

import (
	"errors"

	"github.com/tamzrod/ecat-master/internal/master"
)

// Digital I/O object indices.
const (
	dioInputIndex  uint16 = 0x6000
	dioOutputIndex uint16 = 0x7000
)

// DigitalIO is an n-in / m-out bit terminal. Input channels come first in
// the channel order, then outputs; every channel is one bit wide and the
// master packs them into shared words.
//
// Inputs/SetOutput are only safe inside the cyclic callback window, where
// the engine guarantees exclusive access to the process image.
type DigitalIO struct {
	numIn  int
	numOut int

	in  []bool
	out []bool
}

func NewDigitalIO(inputs, outputs int) (*DigitalIO, error) {
	if inputs <= 0 && outputs <= 0 {
		return nil, errors.New("device: dio needs at least one channel")
	}
	return &DigitalIO{
		numIn:  inputs,
		numOut: outputs,
		in:     make([]bool, inputs),
		out:    make([]bool, outputs),
	}, nil
}

func (d *DigitalIO) Channels() []master.Channel {
	chs := make([]master.Channel, 0, d.numIn+d.numOut)
	for i := 0; i < d.numIn; i++ {
		chs = append(chs, master.Channel{Index: dioInputIndex, Subindex: uint8(i + 1), Bits: 1})
	}
	for i := 0; i < d.numOut; i++ {
		chs = append(chs, master.Channel{Index: dioOutputIndex, Subindex: uint8(i + 1), Bits: 1})
	}
	return chs
}

func (d *DigitalIO) ProcessData(channel int, data []byte, bit uint8) {
	if channel < d.numIn {
		d.in[channel] = word(data)>>bit&1 == 1
		return
	}

	o := channel - d.numIn
	if o >= d.numOut {
		return
	}
	w := word(data)
	if d.out[o] {
		w |= 1 << bit
	} else {
		w &^= 1 << bit
	}
	putWord(data, w)
}

func (d *DigitalIO) ProcessSDO(index uint16, value uint16) {
	// No configuration objects on a plain bit terminal.
}

// NumInputs is the configured input channel count.
func (d *DigitalIO) NumInputs() int { return d.numIn }

// NumOutputs is the configured output channel count.
func (d *DigitalIO) NumOutputs() int { return d.numOut }

// Input is the last sampled state of input channel i.
func (d *DigitalIO) Input(i int) bool {
	if i < 0 || i >= d.numIn {
		return false
	}
	return d.in[i]
}

// SetOutput latches output channel i for the next write phase.
func (d *DigitalIO) SetOutput(i int, v bool) {
	if i < 0 || i >= d.numOut {
		return
	}
	d.out[i] = v
}
