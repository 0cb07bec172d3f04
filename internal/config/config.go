// internal/config/config.go
package config

type Config struct {
	Master MasterConfig  `yaml:"master"`
	Log    LogConfig     `yaml:"log"`
	Driver DriverConfig  `yaml:"driver"`
	Slaves []SlaveConfig `yaml:"slaves"`
	SDO    []SDOConfig   `yaml:"sdo"`
}

// ---- MASTER ----

type MasterConfig struct {
	ID              int     `yaml:"id"`
	FrequencyHz     float64 `yaml:"frequency_hz"`
	CheckStateEvery uint64  `yaml:"check_state_every"`
	Sched           string  `yaml:"sched"` // none | high | realtime
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
	File  string `yaml:"file"`  // empty or "-" means stdout
}

// ---- DRIVER ----

type DriverConfig struct {
	Type      string `yaml:"type"` // tcp | rtu
	Endpoint  string `yaml:"endpoint"`
	Device    string `yaml:"device"`
	BaudRate  int    `yaml:"baud_rate"`
	TimeoutMs int    `yaml:"timeout_ms"`

	Domains []DomainBlock `yaml:"domains"`

	// Object-dictionary register window used for SDO traffic.
	SDOWindow uint16 `yaml:"sdo_window"`

	// Master status block (optional, opt-in).
	Status *StatusBlock `yaml:"status"`
}

// DomainBlock maps one process-data domain onto a register block.
type DomainBlock struct {
	ID      uint32 `yaml:"id"`
	UnitID  uint8  `yaml:"unit_id"`
	Address uint16 `yaml:"address"`
}

// StatusBlock is where the supervisor snapshot is published.
type StatusBlock struct {
	UnitID  uint8  `yaml:"unit_id"`
	Address uint16 `yaml:"address"`
}

// ---- SLAVES ----

type SlaveConfig struct {
	Alias    uint16 `yaml:"alias"`
	Position uint16 `yaml:"position"`
	Type     string `yaml:"type"`
	Domain   uint32 `yaml:"domain"`

	// Device geometry; which fields matter depends on Type.
	Inputs   int `yaml:"inputs"`
	Outputs  int `yaml:"outputs"`
	Channels int `yaml:"channels"`
}

// ---- SDO PRESETS ----

// SDOConfig is one object-dictionary value written before activation.
type SDOConfig struct {
	Position uint16 `yaml:"position"`
	Index    uint16 `yaml:"index"`
	Subindex uint8  `yaml:"subindex"`
	Value    uint32 `yaml:"value"`
	Size     int    `yaml:"size"`
}
