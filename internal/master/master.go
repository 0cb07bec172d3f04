// internal/master/master.go
package master

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/tamzrod/ecat-master/internal/status"
)

// Options is the minimal runtime config the master needs.
type Options struct {
	// Frequency is the control-loop rate in Hz. Required, > 0.
	Frequency float64

	// CheckStateEvery is the number of cycles between supervision
	// passes. 0 means the default of 10.
	CheckStateEvery uint64

	// Warn receives recoverable per-cycle conditions. nil means slog.
	Warn WarnFunc
}

// WarnFunc is the supervisor's warning sink, slog-shaped.
type WarnFunc func(msg string, args ...any)

// SDOConfig is one object-dictionary value written before activation.
type SDOConfig struct {
	Index    uint16
	Subindex uint8
	Value    uint32
	Size     int // 1, 2 or 4 bytes
}

// Master owns the cyclic engine: domain registry, slave registry, mailbox
// request collection and the run loop. Exactly one per running system.
type Master struct {
	driver     Driver
	interval   time.Duration
	checkEvery uint64
	warn       WarnFunc

	// id-indexed registry of value-owned domains; iteration uses the
	// stable creation order, never map order.
	domains   map[uint32]*domainInfo
	domainIDs []uint32

	slaves   []slaveInfo
	requests []*SDORequest

	connected bool
	active    bool

	running atomic.Bool
	cycles  atomic.Uint64
	startT  time.Time
	stopT   time.Time

	sup supervisorState
}

// slaveInfo is one registered slave: addressing, configuration handle and
// last observed connection state.
type slaveInfo struct {
	alias    uint16
	position uint16
	slave    Slave
	config   SlaveConfig
	last     SlaveState
}

// New creates a master bound to a driver. The cycle interval is derived
// once as round(1e9/frequency) nanoseconds and is immutable afterwards.
func New(driver Driver, opts Options) (*Master, error) {
	if driver == nil {
		return nil, errors.New("master: driver required")
	}
	if opts.Frequency <= 0 {
		return nil, errors.New("master: frequency must be > 0")
	}

	checkEvery := opts.CheckStateEvery
	if checkEvery == 0 {
		checkEvery = 10
	}

	warn := opts.Warn
	if warn == nil {
		warn = defaultWarn
	}

	return &Master{
		driver:     driver,
		interval:   time.Duration(math.Round(1e9 / opts.Frequency)),
		checkEvery: checkEvery,
		warn:       warn,
		domains:    make(map[uint32]*domainInfo),
	}, nil
}

// Interval is the derived cycle period.
func (m *Master) Interval() time.Duration { return m.interval }

// Connect claims the identified master instance. Must precede AddSlave.
func (m *Master) Connect(masterID int) error {
	if m.connected {
		return &ConnectionError{MasterID: masterID, Err: errors.New("already connected")}
	}
	if err := m.driver.Connect(masterID); err != nil {
		return &ConnectionError{MasterID: masterID, Err: err}
	}
	m.connected = true
	return nil
}

// Close releases the master handle. Not safe while Run is blocking.
func (m *Master) Close() error {
	if !m.connected {
		return nil
	}
	m.connected = false
	return m.driver.Close()
}

// AddSlave registers a device at (alias, position), maps its declared
// channels into the given domain and tracks its connection state. Valid
// only between Connect and Activate.
func (m *Master) AddSlave(alias, position uint16, domainID uint32, slave Slave) error {
	if !m.connected {
		return &ConfigurationError{Op: "add slave", Err: errors.New("not connected")}
	}
	if m.active {
		return &ConfigurationError{Op: "add slave", Err: errors.New("master already activated")}
	}
	if slave == nil {
		return &ConfigurationError{Op: "add slave", Err: errors.New("nil slave")}
	}
	for _, s := range m.slaves {
		if s.alias == alias && s.position == position {
			return &ConfigurationError{
				Op:  "add slave",
				Err: fmt.Errorf("duplicate address %d:%d", alias, position),
			}
		}
	}

	cfg, err := m.driver.SlaveConfig(alias, position)
	if err != nil {
		return &ConfigurationError{Op: "add slave", Err: err}
	}

	d, ok := m.domains[domainID]
	if !ok {
		if err := m.driver.CreateDomain(domainID); err != nil {
			return &ConfigurationError{Op: "create domain", Err: err}
		}
		d = &domainInfo{id: domainID}
		m.domains[domainID] = d
		m.domainIDs = append(m.domainIDs, domainID)
	}

	channels := slave.Channels()
	start := len(d.regs)
	d.registerPDOs(alias, position, slave, channels)

	if err := m.driver.RegisterPDOEntries(domainID, d.regs[start:]); err != nil {
		return &ConfigurationError{Op: "register pdo entries", Err: err}
	}

	m.slaves = append(m.slaves, slaveInfo{
		alias:    alias,
		position: position,
		slave:    slave,
		config:   cfg,
	})
	return nil
}

// ConfigSlaveSDO writes one configuration-object value to a slave's object
// dictionary. Pre-activation only. A protocol-level rejection surfaces as
// an SDOAbortError; transport failures carry no abort code.
func (m *Master) ConfigSlaveSDO(position uint16, entry SDOConfig) error {
	if m.active {
		return &ConfigurationError{Op: "config sdo", Err: errors.New("master already activated")}
	}

	s := m.slaveAt(position)
	if s == nil {
		return &SDOAbortError{Index: entry.Index, Subindex: entry.Subindex, Code: AbortUnknownSlave}
	}

	buf, err := encodeSDOValue(entry.Value, entry.Size)
	if err != nil {
		return &ConfigurationError{Op: "config sdo", Err: err}
	}
	return s.config.WriteSDO(entry.Index, entry.Subindex, buf)
}

// AddSDORequest allocates an asynchronous mailbox read for one
// (slave, object) pair. The request joins the engine's collection and is
// polled by the application through its state machine.
func (m *Master) AddSDORequest(position uint16, index uint16, subindex uint8, size int) (*SDORequest, error) {
	s := m.slaveAt(position)
	if s == nil {
		return nil, &SDOAbortError{Index: index, Subindex: subindex, Code: AbortUnknownSlave}
	}

	r, err := newSDORequest(s.config, s.slave, index, subindex, size)
	if err != nil {
		return nil, &ConfigurationError{Op: "add sdo request", Err: err}
	}
	m.requests = append(m.requests, r)
	return r, nil
}

// Activate freezes every domain's registration table, reserves the
// process-data memory and transitions toward cyclic exchange. Exactly
// once, after all AddSlave/ConfigSlaveSDO calls.
func (m *Master) Activate() error {
	if !m.connected {
		return &ActivationError{Err: errors.New("not connected")}
	}
	if m.active {
		return &ActivationError{Err: errors.New("already activated")}
	}
	if len(m.domains) == 0 {
		return &ActivationError{Err: errors.New("no slaves registered")}
	}
	for _, id := range m.domainIDs {
		if len(m.domains[id].regs) == 0 {
			return &ActivationError{Err: fmt.Errorf("domain %d has no entries", id)}
		}
	}

	layouts, err := m.driver.Activate()
	if err != nil {
		return &ActivationError{Err: err}
	}

	for _, id := range m.domainIDs {
		layout, ok := layouts[id]
		if !ok {
			return &ActivationError{Err: fmt.Errorf("driver returned no layout for domain %d", id)}
		}
		d := m.domains[id]
		if len(layout.Offsets) != len(d.regs) {
			return &ActivationError{Err: fmt.Errorf(
				"domain %d layout mismatch: %d offsets for %d registrations",
				id, len(layout.Offsets), len(d.regs),
			)}
		}
		d.applyLayout(layout)
	}

	m.active = true
	return nil
}

// Run blocks in the calling goroutine, executing the cyclic exchange until
// Stop is called or ctx is cancelled. Cancellation is cooperative: the
// in-flight cycle always completes its write and frame exchange.
func (m *Master) Run(ctx context.Context, callback func()) error {
	if !m.active {
		return &ActivationError{Err: errors.New("run before activate")}
	}
	if !m.running.CompareAndSwap(false, true) {
		return errors.New("master: already running")
	}

	// The whole engine runs on one OS thread so scheduling elevation
	// applies to the loop and nothing else migrates onto it.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	m.cycles.Store(0)
	m.startT = time.Now()
	m.stopT = time.Time{}
	next := m.startT

	defer func() {
		m.stopT = time.Now()
		m.running.Store(false)
	}()

	for m.running.Load() {
		if err := ctx.Err(); err != nil {
			return err
		}

		// The only blocking wait on the hot path.
		next = next.Add(m.interval)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		} else {
			// Overrun: re-anchor instead of bursting to catch up.
			next = time.Now()
		}

		if err := m.driver.Receive(); err != nil {
			m.warn("frame receive failed", "err", err)
		}
		for _, id := range m.domainIDs {
			m.readData(m.domains[id])
		}

		callback()

		for _, id := range m.domainIDs {
			m.writeData(m.domains[id])
		}
		if err := m.driver.Send(); err != nil {
			m.warn("frame send failed", "err", err)
		}

		n := m.cycles.Add(1)
		if n%m.checkEvery == 0 {
			m.checkState()
		}
	}
	return nil
}

// Stop clears the run flag. Callable from inside the callback or from
// another goroutine; the current cycle runs to completion.
func (m *Master) Stop() { m.running.Store(false) }

// ElapsedCycles is the number of completed cycles since Run began.
func (m *Master) ElapsedCycles() uint64 { return m.cycles.Load() }

// ElapsedTime is the wall time since Run began; it freezes when the loop
// exits. Use ElapsedCycles()/frequency for discrete time.
func (m *Master) ElapsedTime() time.Duration {
	if m.startT.IsZero() {
		return 0
	}
	if !m.stopT.IsZero() {
		return m.stopT.Sub(m.startT)
	}
	return time.Since(m.startT)
}

// Status is the supervisor's latest health snapshot.
func (m *Master) Status() status.Snapshot {
	m.sup.mu.Lock()
	defer m.sup.mu.Unlock()
	return m.sup.snapshot
}

func (m *Master) slaveAt(position uint16) *slaveInfo {
	for i := range m.slaves {
		if m.slaves[i].position == position {
			return &m.slaves[i]
		}
	}
	return nil
}

func encodeSDOValue(value uint32, size int) ([]byte, error) {
	switch size {
	case 1:
		return []byte{byte(value)}, nil
	case 2:
		return []byte{byte(value), byte(value >> 8)}, nil
	case 4:
		return []byte{byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)}, nil
	default:
		return nil, fmt.Errorf("sdo value size %d not in {1,2,4}", size)
	}
}
