// internal/status/snapshot.go
package status

// Snapshot is exactly what the supervisor is allowed to publish. It
// contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health            uint16
	LinkUp            bool
	SlavesResponding  uint16
	SlavesOperational uint16
	DomainsIncomplete uint16
}
