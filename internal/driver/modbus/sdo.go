// internal/driver/modbus/sdo.go
package modbus

import (
	"errors"
	"sync/atomic"

	gomodbus "github.com/goburrow/modbus"

	"github.com/tamzrod/ecat-master/internal/master"
)

// Mailbox traffic must never block the cyclic hot path, so transfers are
// handed to one background worker that owns its turn on the serialized
// client. The handle's state flips atomically when the worker finishes.

// odAddress maps an object-dictionary entry onto the device's SDO register
// window: the index low byte selects an 8-register row, the subindex the
// column.
func odAddress(window, index uint16, subindex uint8) uint16 {
	return window + (index&0x00FF)*8 + uint16(subindex)
}

type sdoTransfer struct {
	handle *sdoHandle
}

type sdoHandle struct {
	drv      *Driver
	unitID   uint8
	index    uint16
	subindex uint8
	size     int

	state atomic.Int32
	// data is written by the worker strictly before state flips to
	// SDOSuccess; readers load state first.
	data []byte
}

func (h *sdoHandle) Read() {
	st := master.SDOState(h.state.Load())
	if st == master.SDOBusy {
		return
	}
	h.state.Store(int32(master.SDOBusy))

	select {
	case h.drv.sdoQueue <- sdoTransfer{handle: h}:
	default:
		// Queue full: fail the transfer instead of stalling the caller.
		h.state.Store(int32(master.SDOError))
	}
}

func (h *sdoHandle) State() master.SDOState {
	return master.SDOState(h.state.Load())
}

func (h *sdoHandle) Data() []byte {
	if h.State() != master.SDOSuccess {
		return nil
	}
	return h.data
}

// sdoWorker drains the transfer queue for the life of the driver.
func (d *Driver) sdoWorker() {
	for t := range d.sdoQueue {
		h := t.handle

		qty := uint16((h.size + 1) / 2)
		addr := odAddress(d.sdoWindow, h.index, h.subindex)

		raw, err := d.client.ReadBlock(h.unitID, addr, qty)
		if err != nil || len(raw) < h.size {
			h.state.Store(int32(master.SDOError))
			continue
		}

		// Register payload is big-endian; object values are delivered
		// little-endian like any other EtherCAT-class mailbox payload.
		buf := make([]byte, h.size)
		for i := 0; i < h.size; i++ {
			word := i / 2
			if i%2 == 0 {
				buf[i] = raw[2*word+1]
			} else {
				buf[i] = raw[2*word]
			}
		}

		h.data = buf
		h.state.Store(int32(master.SDOSuccess))
	}
}

// abortError converts a protocol-level exception into the typed abort the
// engine reports; transport failures pass through unchanged.
func abortError(index uint16, subindex uint8, err error) error {
	var mbErr *gomodbus.ModbusError
	if errors.As(err, &mbErr) {
		return &master.SDOAbortError{
			Index:    index,
			Subindex: subindex,
			Code:     uint32(mbErr.ExceptionCode),
		}
	}
	return err
}
