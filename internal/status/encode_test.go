// internal/status/encode_test.go
package status

import "testing"

func TestEncodeBlock(t *testing.T) {
	regs := Encode(Snapshot{
		Health:            HealthDegraded,
		LinkUp:            true,
		SlavesResponding:  3,
		SlavesOperational: 2,
		DomainsIncomplete: 1,
	})

	if len(regs) != SlotsPerMaster {
		t.Fatalf("block length: got %d want %d", len(regs), SlotsPerMaster)
	}
	if regs[SlotHealthCode] != HealthDegraded {
		t.Fatalf("health slot: got %d", regs[SlotHealthCode])
	}
	if regs[SlotLinkUp] != 1 {
		t.Fatalf("link slot: got %d", regs[SlotLinkUp])
	}
	if regs[SlotSlavesResponding] != 3 || regs[SlotSlavesOperational] != 2 {
		t.Fatalf("slave slots: got %v", regs)
	}
	if regs[SlotDomainsIncomplete] != 1 {
		t.Fatalf("domain slot: got %d", regs[SlotDomainsIncomplete])
	}
}
