// internal/master/slave.go
package master

// Channel is one PDO entry a device wants mapped into its domain.
type Channel struct {
	Index    uint16
	Subindex uint8
	// Bits is the channel width in bits. 0 means 16.
	Bits uint8
}

// Slave is the device capability the engine drives each cycle. The engine
// is agnostic to payload semantics: it hands the device a view of the
// process image at the channel's computed offset and lets the device
// decode inputs or encode outputs in place.
type Slave interface {
	// Channels declares the PDO entries this device needs, in a fixed
	// order. Called once, during AddSlave.
	Channels() []Channel

	// ProcessData is called once per channel per cycle. data is the
	// domain process image sliced at the channel's byte offset; bit is
	// the channel's bit position within data[0].
	ProcessData(channel int, data []byte, bit uint8)

	// ProcessSDO delivers a completed asynchronous configuration read,
	// keyed by object index.
	ProcessSDO(index uint16, value uint16)
}
