// internal/status/encode.go
package status

// Encode converts a Snapshot into a full master status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerMaster)

	regs[SlotHealthCode] = s.Health
	if s.LinkUp {
		regs[SlotLinkUp] = 1
	}
	regs[SlotSlavesResponding] = s.SlavesResponding
	regs[SlotSlavesOperational] = s.SlavesOperational
	regs[SlotDomainsIncomplete] = s.DomainsIncomplete

	return regs
}
