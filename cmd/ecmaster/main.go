// cmd/ecmaster/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tamzrod/ecat-master/internal/config"
	"github.com/tamzrod/ecat-master/internal/device"
	mbdriver "github.com/tamzrod/ecat-master/internal/driver/modbus"
	"github.com/tamzrod/ecat-master/internal/master"
	"github.com/tamzrod/ecat-master/internal/sched"
)

func main() {
	// .env is optional; flags and the file win over it.
	_ = godotenv.Load()

	configFile := flag.String("config", os.Getenv("ECMASTER_CONFIG"), "Path to config file")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "usage: ecmaster -config <config.yaml>")
		os.Exit(2)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		os.Exit(1)
	}
	config.Normalize(cfg)

	setupLogger(cfg.Log)

	// --------------------
	// Driver + master
	// --------------------

	drv, err := mbdriver.New(driverConfig(cfg.Driver))
	if err != nil {
		slog.Error("driver build failed", "err", err)
		os.Exit(1)
	}

	m, err := master.New(drv, master.Options{
		Frequency:       cfg.Master.FrequencyHz,
		CheckStateEvery: cfg.Master.CheckStateEvery,
	})
	if err != nil {
		slog.Error("master build failed", "err", err)
		os.Exit(1)
	}

	if err := m.Connect(cfg.Master.ID); err != nil {
		slog.Error("master connect failed", "id", cfg.Master.ID, "err", err)
		os.Exit(1)
	}
	defer m.Close()

	// --------------------
	// Slaves + configuration objects
	// --------------------

	var dios []*device.DigitalIO

	for _, sc := range cfg.Slaves {
		dev, err := device.Build(sc.Type, device.Geometry{
			Inputs:   sc.Inputs,
			Outputs:  sc.Outputs,
			Channels: sc.Channels,
		})
		if err != nil {
			slog.Error("device build failed", "type", sc.Type, "err", err)
			os.Exit(1)
		}

		if err := m.AddSlave(sc.Alias, sc.Position, sc.Domain, dev); err != nil {
			slog.Error("add slave failed",
				"alias", sc.Alias, "position", sc.Position, "err", err)
			os.Exit(1)
		}
		slog.Info("slave registered",
			"alias", sc.Alias, "position", sc.Position, "type", sc.Type, "domain", sc.Domain)

		if d, ok := dev.(*device.DigitalIO); ok {
			dios = append(dios, d)
		}
	}

	for _, e := range cfg.SDO {
		err := m.ConfigSlaveSDO(e.Position, master.SDOConfig{
			Index:    e.Index,
			Subindex: e.Subindex,
			Value:    e.Value,
			Size:     e.Size,
		})
		if err != nil {
			var abort *master.SDOAbortError
			if errors.As(err, &abort) {
				slog.Error("sdo preset rejected",
					"position", e.Position, "index", fmt.Sprintf("%#04x", e.Index),
					"abort_code", fmt.Sprintf("%#08x", abort.Code))
			} else {
				slog.Error("sdo preset failed",
					"position", e.Position, "index", fmt.Sprintf("%#04x", e.Index), "err", err)
			}
			os.Exit(1)
		}
	}

	// --------------------
	// Scheduling + activation
	// --------------------

	policy, err := sched.Parse(cfg.Master.Sched)
	if err != nil {
		slog.Error("bad sched policy", "err", err)
		os.Exit(1)
	}
	if err := sched.Apply(policy); err != nil {
		// Degraded timing, not a fatal condition.
		slog.Warn("scheduling elevation failed", "policy", policy, "err", err)
	}

	if err := m.Activate(); err != nil {
		slog.Error("activation failed", "err", err)
		os.Exit(1)
	}
	slog.Info("master activated",
		"interval", m.Interval(), "frequency_hz", cfg.Master.FrequencyHz)

	// --------------------
	// Cancellation + status publishing
	// --------------------

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		slog.Info("signal received, stopping after current cycle", "signal", s)
		m.Stop()
	}()

	done := make(chan struct{})
	if cfg.Driver.Status != nil {
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := drv.WriteStatus(m.Status()); err != nil {
						slog.Warn("status publish failed", "err", err)
					}
				}
			}
		}()
	}

	// --------------------
	// Run loop (blocking)
	// --------------------

	err = m.Run(context.Background(), func() {
		// Loopback application: mirror each bit terminal's inputs back
		// to its outputs inside the callback window.
		for _, d := range dios {
			n := d.NumInputs()
			if d.NumOutputs() < n {
				n = d.NumOutputs()
			}
			for i := 0; i < n; i++ {
				d.SetOutput(i, d.Input(i))
			}
		}
	})
	close(done)

	if err != nil {
		slog.Error("run loop exited with error", "err", err)
	}
	slog.Info("run loop exited",
		"elapsed", m.ElapsedTime(), "cycles", m.ElapsedCycles())
}

func driverConfig(dc config.DriverConfig) mbdriver.Config {
	out := mbdriver.Config{
		Endpoint:  dc.Endpoint,
		Device:    dc.Device,
		BaudRate:  dc.BaudRate,
		Timeout:   time.Duration(dc.TimeoutMs) * time.Millisecond,
		SDOWindow: dc.SDOWindow,
	}
	if dc.Type == "tcp" {
		out.Device = ""
	} else {
		out.Endpoint = ""
	}
	for _, b := range dc.Domains {
		out.Domains = append(out.Domains, mbdriver.DomainBlock{
			ID: b.ID, UnitID: b.UnitID, Address: b.Address,
		})
	}
	if dc.Status != nil {
		out.Status = &mbdriver.StatusBlock{UnitID: dc.Status.UnitID, Address: dc.Status.Address}
	}
	return out
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
