// internal/master/sdo.go
package master

import "encoding/binary"

// SDOState is the lifecycle of one asynchronous mailbox transfer.
type SDOState int

const (
	SDOUnused SDOState = iota
	SDOBusy
	SDOSuccess
	SDOError
)

func (s SDOState) String() string {
	switch s {
	case SDOUnused:
		return "unused"
	case SDOBusy:
		return "busy"
	case SDOSuccess:
		return "success"
	case SDOError:
		return "error"
	}
	return "invalid"
}

// SDORequest is one outstanding configuration-object read, exclusively
// owned by the master's request collection. Completion is delivered to the
// owning slave at most once per InitiateRead.
type SDORequest struct {
	handle   SDOHandle
	slave    Slave
	index    uint16
	subindex uint8
	size     int

	// delivered guards against handing the same completion to the slave
	// twice. Reset by InitiateRead.
	delivered bool
}

func newSDORequest(cfg SlaveConfig, slave Slave, index uint16, subindex uint8, size int) (*SDORequest, error) {
	h, err := cfg.CreateSDORequest(index, subindex, size)
	if err != nil {
		return nil, err
	}
	return &SDORequest{
		handle:   h,
		slave:    slave,
		index:    index,
		subindex: subindex,
		size:     size,
	}, nil
}

// InitiateRead starts a fresh transfer. It is the only state-transition
// trigger; completion is never automatically re-armed.
func (r *SDORequest) InitiateRead() {
	r.delivered = false
	r.handle.Read()
}

// IsComplete reports whether the last initiated transfer finished
// successfully. Non-blocking.
func (r *SDORequest) IsComplete() bool { return r.handle.State() == SDOSuccess }

// IsUnused reports whether no transfer was ever initiated. Non-blocking.
func (r *SDORequest) IsUnused() bool { return r.handle.State() == SDOUnused }

// State exposes the raw transfer state.
func (r *SDORequest) State() SDOState { return r.handle.State() }

// ProcessData copies the fixed-size payload out of a successful transfer
// and delivers it to the owning slave, keyed by object index. It is a
// no-op unless the state is SDOSuccess, and delivers at most once per
// InitiateRead.
func (r *SDORequest) ProcessData() {
	if r.delivered || r.handle.State() != SDOSuccess {
		return
	}

	data := r.handle.Data()
	if len(data) < r.size {
		return
	}

	var value uint16
	switch r.size {
	case 1:
		value = uint16(data[0])
	default:
		value = binary.LittleEndian.Uint16(data)
	}

	r.delivered = true
	r.slave.ProcessSDO(r.index, value)
}

// Index identifies the object this request polls.
func (r *SDORequest) Index() uint16 { return r.index }

// Subindex identifies the object entry this request polls.
func (r *SDORequest) Subindex() uint8 { return r.subindex }
