// internal/master/driver.go
package master

// Driver abstracts the underlying fieldbus master. The engine depends on
// this contract only; no wire-format logic lives above it.
type Driver interface {
	// Connect claims the identified master instance.
	Connect(masterID int) error
	Close() error

	// SlaveConfig claims a slave by (alias, position) addressing and
	// returns its configuration handle. Claiming the same pair twice is
	// an error.
	SlaveConfig(alias, position uint16) (SlaveConfig, error)

	// CreateDomain declares a process-data domain. Idempotent per id.
	CreateDomain(domainID uint32) error

	// RegisterPDOEntries appends entries to a domain's registration
	// table. Must not be called after Activate.
	RegisterPDOEntries(domainID uint32, regs []PDOEntryReg) error

	// Activate freezes all registration tables, reserves process-data
	// memory and returns the computed layout of every domain. Called
	// exactly once.
	Activate() (map[uint32]DomainLayout, error)

	// Cyclic hot path. Receive/Process refresh domain buffers from the
	// wire; Queue/Send flush them. None of these may block beyond the
	// frame exchange itself.
	Receive() error
	ProcessDomain(domainID uint32)
	QueueDomain(domainID uint32)
	Send() error

	// Health queries used by the periodic supervisor.
	MasterState() MasterState
	DomainState(domainID uint32) DomainState
}

// SlaveConfig is the driver-side configuration handle for one slave.
type SlaveConfig interface {
	// State reports the last observed connection state.
	State() SlaveState

	// WriteSDO downloads one object-dictionary value. Valid only before
	// activation. A protocol-level rejection is returned as an
	// SDOAbortError; transport failures carry no abort code.
	WriteSDO(index uint16, subindex uint8, value []byte) error

	// CreateSDORequest allocates an asynchronous mailbox read request of
	// fixed size.
	CreateSDORequest(index uint16, subindex uint8, size int) (SDOHandle, error)
}

// SDOHandle is the driver-side state of one asynchronous mailbox transfer.
type SDOHandle interface {
	// Read initiates a transfer. Non-blocking.
	Read()
	State() SDOState
	// Data is valid only while State is SDOSuccess.
	Data() []byte
}

// PDOEntryReg identifies one PDO channel to map into a domain.
type PDOEntryReg struct {
	Alias    uint16
	Position uint16
	Index    uint16
	Subindex uint8
	// Bits is the channel width in bits. 0 means 16.
	Bits uint8
}

// EntryOffset is the computed location of one mapped channel inside the
// domain's process image.
type EntryOffset struct {
	Byte uint32
	Bit  uint8
}

// DomainLayout is the activation result for one domain. Data is the live
// process image, owned by the driver; Offsets parallels the registration
// table order.
type DomainLayout struct {
	Data    []byte
	Offsets []EntryOffset
}

// MasterState is the driver-wide health sample.
type MasterState struct {
	LinkUp           bool
	SlavesResponding uint32
}

// DomainState reports per-domain exchange completeness.
type DomainState struct {
	// WorkingCounter is the number of expected responses observed in the
	// last exchange.
	WorkingCounter uint16
	Complete       bool
}

// SlaveState is the last observed per-slave connection state.
type SlaveState struct {
	Online      bool
	Operational bool
}
