// internal/master/supervisor.go
package master

import (
	"log/slog"
	"sync"

	"github.com/tamzrod/ecat-master/internal/status"
)

// The supervisor runs every checkEvery cycles, off the per-cycle budget.
// All three checks are observational only: they emit warnings and refresh
// the published snapshot, never alter control flow. A disconnected slave's
// domain data simply goes stale and is read by the callback as-is.

type supervisorState struct {
	mu       sync.Mutex
	snapshot status.Snapshot

	lastMaster   MasterState
	lastDomains  map[uint32]DomainState
	masterSeeded bool
}

func defaultWarn(msg string, args ...any) { slog.Warn(msg, args...) }

func (m *Master) checkState() {
	snap := status.Snapshot{Health: status.HealthOK}

	m.checkMasterState(&snap)
	m.checkSlaveStates(&snap)
	for _, id := range m.domainIDs {
		m.checkDomainState(id, &snap)
	}

	m.sup.mu.Lock()
	m.sup.snapshot = snap
	m.sup.mu.Unlock()
}

// checkMasterState reports link transitions and responding-slave-count
// changes.
func (m *Master) checkMasterState(snap *status.Snapshot) {
	st := m.driver.MasterState()

	if m.sup.masterSeeded {
		if st.LinkUp != m.sup.lastMaster.LinkUp {
			m.warn("master link state changed", "up", st.LinkUp)
		}
		if st.SlavesResponding != m.sup.lastMaster.SlavesResponding {
			m.warn("responding slave count changed",
				"was", m.sup.lastMaster.SlavesResponding,
				"now", st.SlavesResponding,
				"configured", len(m.slaves))
		}
	}
	m.sup.lastMaster = st
	m.sup.masterSeeded = true

	snap.LinkUp = st.LinkUp
	snap.SlavesResponding = uint16(st.SlavesResponding)
	if !st.LinkUp {
		snap.Health = status.HealthDown
	} else if int(st.SlavesResponding) != len(m.slaves) {
		snap.Health = status.HealthDegraded
	}
}

// checkSlaveStates reports per-slave online/operational transitions,
// identified by (alias, position).
func (m *Master) checkSlaveStates(snap *status.Snapshot) {
	for i := range m.slaves {
		s := &m.slaves[i]
		st := s.config.State()

		if st.Online != s.last.Online {
			m.warn("slave online state changed",
				"alias", s.alias, "position", s.position, "online", st.Online)
		}
		if st.Operational != s.last.Operational {
			m.warn("slave operational state changed",
				"alias", s.alias, "position", s.position, "operational", st.Operational)
		}
		s.last = st

		if st.Operational {
			snap.SlavesOperational++
		} else if snap.Health == status.HealthOK {
			snap.Health = status.HealthDegraded
		}
	}
}

// checkDomainState reports working-counter and completeness changes for
// one domain. Partial exchange degrades health but never stops the loop.
func (m *Master) checkDomainState(domainID uint32, snap *status.Snapshot) {
	st := m.driver.DomainState(domainID)

	if m.sup.lastDomains == nil {
		m.sup.lastDomains = make(map[uint32]DomainState)
	}
	last, seen := m.sup.lastDomains[domainID]
	if seen {
		if st.WorkingCounter != last.WorkingCounter {
			m.warn("domain working counter changed",
				"domain", domainID, "was", last.WorkingCounter, "now", st.WorkingCounter)
		}
		if st.Complete != last.Complete {
			m.warn("domain exchange completeness changed",
				"domain", domainID, "complete", st.Complete)
		}
	}
	m.sup.lastDomains[domainID] = st

	if !st.Complete {
		snap.DomainsIncomplete++
		if snap.Health == status.HealthOK {
			snap.Health = status.HealthDegraded
		}
	}
}
