// internal/config/normalize.go
package config

// Normalize applies post-validation defaulting.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Master.CheckStateEvery == 0 {
		cfg.Master.CheckStateEvery = 10
	}
	if cfg.Master.Sched == "" {
		cfg.Master.Sched = "none"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Driver.TimeoutMs == 0 {
		cfg.Driver.TimeoutMs = 500
	}
	if cfg.Driver.Type == "rtu" && cfg.Driver.BaudRate == 0 {
		cfg.Driver.BaudRate = 19200
	}
}
