// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// MASTER
	// ------------------------------------------------------------

	if cfg.Master.FrequencyHz <= 0 {
		return fmt.Errorf("master: frequency_hz must be > 0, got %v", cfg.Master.FrequencyHz)
	}

	switch cfg.Master.Sched {
	case "", "none", "high", "realtime":
	default:
		return fmt.Errorf("master: unknown sched policy %q", cfg.Master.Sched)
	}

	// ------------------------------------------------------------
	// DRIVER
	// ------------------------------------------------------------

	switch cfg.Driver.Type {
	case "tcp":
		if cfg.Driver.Endpoint == "" {
			return fmt.Errorf("driver: tcp requires endpoint")
		}
	case "rtu":
		if cfg.Driver.Device == "" {
			return fmt.Errorf("driver: rtu requires device")
		}
	default:
		return fmt.Errorf("driver: unknown type %q", cfg.Driver.Type)
	}

	domainIDs := make(map[uint32]struct{})
	for _, d := range cfg.Driver.Domains {
		if _, dup := domainIDs[d.ID]; dup {
			return fmt.Errorf("driver: duplicate domain id %d", d.ID)
		}
		domainIDs[d.ID] = struct{}{}
	}

	// ------------------------------------------------------------
	// SLAVES
	// ------------------------------------------------------------

	if len(cfg.Slaves) == 0 {
		return fmt.Errorf("slaves: at least one slave required")
	}

	seen := make(map[[2]uint16]string)
	positions := make(map[uint16]struct{})

	for _, s := range cfg.Slaves {
		key := [2]uint16{s.Alias, s.Position}
		if prev, dup := seen[key]; dup {
			return fmt.Errorf(
				"slaves: duplicate address %d:%d (types %q and %q)",
				s.Alias, s.Position, prev, s.Type,
			)
		}
		seen[key] = s.Type
		positions[s.Position] = struct{}{}

		if s.Type == "" {
			return fmt.Errorf("slaves: %d:%d has no type", s.Alias, s.Position)
		}
		if _, ok := domainIDs[s.Domain]; !ok {
			return fmt.Errorf(
				"slaves: %d:%d references undeclared domain %d",
				s.Alias, s.Position, s.Domain,
			)
		}
	}

	// ------------------------------------------------------------
	// SDO PRESETS
	// ------------------------------------------------------------

	for _, e := range cfg.SDO {
		switch e.Size {
		case 1, 2, 4:
		default:
			return fmt.Errorf(
				"sdo: %#04x:%d size must be 1, 2 or 4, got %d",
				e.Index, e.Subindex, e.Size,
			)
		}
		if _, ok := positions[e.Position]; !ok {
			return fmt.Errorf(
				"sdo: %#04x:%d targets unconfigured position %d",
				e.Index, e.Subindex, e.Position,
			)
		}
	}

	return nil
}
