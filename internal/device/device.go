// internal/device/device.go

// Package device holds concrete slave capabilities: each type knows its
// own channel map and how to decode or encode bytes at the offsets the
// master assigns. The engine never learns payload semantics.
package device

import (
	"fmt"

	"github.com/tamzrod/ecat-master/internal/master"
)

// Geometry is the per-slave sizing taken from configuration.
type Geometry struct {
	Inputs   int
	Outputs  int
	Channels int
}

// Build maps a configured type name to a device.
func Build(typ string, g Geometry) (master.Slave, error) {
	switch typ {
	case "dio":
		return NewDigitalIO(g.Inputs, g.Outputs)
	case "ai":
		return NewAnalogIn(g.Channels)
	}
	return nil, fmt.Errorf("device: unknown type %q", typ)
}

// word reads the big-endian register word a channel view starts at.
func word(data []byte) uint16 {
	if len(data) < 2 {
		return 0
	}
	return uint16(data[0])<<8 | uint16(data[1])
}

func putWord(data []byte, v uint16) {
	if len(data) < 2 {
		return
	}
	data[0] = byte(v >> 8)
	data[1] = byte(v)
}
