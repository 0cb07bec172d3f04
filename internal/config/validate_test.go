// internal/config/validate_test.go
package config

import "testing"

// helper to build a minimal valid config quickly
func base() *Config {
	return &Config{
		Master: MasterConfig{
			ID:          0,
			FrequencyHz: 1000,
		},
		Driver: DriverConfig{
			Type:     "tcp",
			Endpoint: "127.0.0.1:502",
			Domains: []DomainBlock{
				{ID: 0, UnitID: 1, Address: 0},
			},
		},
		Slaves: []SlaveConfig{
			{Alias: 0, Position: 1, Type: "dio", Domain: 0, Inputs: 8, Outputs: 8},
		},
	}
}

// ---- tests ----

func TestValidate_Minimal(t *testing.T) {
	if err := Validate(base()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ZeroFrequency(t *testing.T) {
	cfg := base()
	cfg.Master.FrequencyHz = 0

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for zero frequency")
	}
}

func TestValidate_DuplicateSlaveAddress(t *testing.T) {
	cfg := base()
	cfg.Slaves = append(cfg.Slaves, SlaveConfig{
		Alias: 0, Position: 1, Type: "ai", Domain: 0, Channels: 2,
	})

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for duplicate (alias, position)")
	}
}

func TestValidate_UndeclaredDomain(t *testing.T) {
	cfg := base()
	cfg.Slaves[0].Domain = 7

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for undeclared domain")
	}
}

func TestValidate_BadSDOSize(t *testing.T) {
	cfg := base()
	cfg.SDO = []SDOConfig{
		{Position: 1, Index: 0x8010, Subindex: 1, Value: 5000, Size: 3},
	}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for sdo size 3")
	}
}

func TestValidate_SDOUnknownPosition(t *testing.T) {
	cfg := base()
	cfg.SDO = []SDOConfig{
		{Position: 9, Index: 0x8010, Subindex: 1, Value: 5000, Size: 2},
	}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for sdo targeting unknown position")
	}
}

func TestValidate_BadSchedPolicy(t *testing.T) {
	cfg := base()
	cfg.Master.Sched = "fastest"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for unknown sched policy")
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := base()
	Normalize(cfg)

	if cfg.Master.CheckStateEvery != 10 {
		t.Fatalf("check_state_every default: got %d want 10", cfg.Master.CheckStateEvery)
	}
	if cfg.Master.Sched != "none" {
		t.Fatalf("sched default: got %q want none", cfg.Master.Sched)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level default: got %q want info", cfg.Log.Level)
	}
	if cfg.Driver.TimeoutMs != 500 {
		t.Fatalf("timeout default: got %d want 500", cfg.Driver.TimeoutMs)
	}
}
