// internal/master/errors.go
package master

import "fmt"

// Construction-time failures are distinct kinds and non-recoverable: the
// caller must not proceed to Run after any of them.

// ConfigurationError reports a bad registration or setup call.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("master: configuration: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConnectionError reports a failure to claim the underlying master.
type ConnectionError struct {
	MasterID int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("master: connect id=%d: %v", e.MasterID, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ActivationError reports a failed transition to cyclic exchange.
type ActivationError struct {
	Err error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("master: activate: %v", e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }

// SDOAbortError is a protocol-level rejection of a configuration-object
// transfer. Transport failures are plain errors and carry no abort code.
type SDOAbortError struct {
	Index    uint16
	Subindex uint8
	Code     uint32
}

// AbortUnknownSlave is the abort code reported when a configuration
// transfer addresses a position that was never added.
const AbortUnknownSlave uint32 = 0x0000_0101

func (e *SDOAbortError) Error() string {
	return fmt.Sprintf("sdo %#04x:%d aborted: code=%#08x", e.Index, e.Subindex, e.Code)
}

// AbortCode exposes the rejection reason for errors.As probing.
func (e *SDOAbortError) AbortCode() uint32 { return e.Code }
