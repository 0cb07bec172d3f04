// internal/driver/modbus/driver.go

// Package modbus backs the cyclic engine with Modbus register blocks: each
// process-data domain maps onto a contiguous holding-register window on a
// bus coupler that exposes a shared process memory. It is the one concrete
// master.Driver in the tree; the engine stays wire-format agnostic.
package modbus

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tamzrod/ecat-master/internal/master"
	"github.com/tamzrod/ecat-master/internal/status"
)

// DomainBlock maps one domain id onto a register window.
type DomainBlock struct {
	ID      uint32
	UnitID  uint8
	Address uint16
}

// StatusBlock is where WriteStatus publishes the supervisor snapshot.
type StatusBlock struct {
	UnitID  uint8
	Address uint16
}

// Config describes the coupler connection and the register geometry.
type Config struct {
	Endpoint string // tcp, host:port
	Device   string // rtu, serial device
	BaudRate int
	Timeout  time.Duration

	Domains   []DomainBlock
	SDOWindow uint16
	Status    *StatusBlock
}

// Driver implements master.Driver over a single serialized client
// connection. All cyclic calls happen on the engine's thread; only the
// mailbox worker and WriteStatus take extra turns on the client.
type Driver struct {
	cfg    Config
	client *endpointClient

	connected bool
	active    bool

	domains   map[uint32]*domain
	domainIDs []uint32
	slaves    map[[2]uint16]*slaveCfg

	sdoWindow uint16
	sdoQueue  chan sdoTransfer

	linkUp bool
	unitOK map[uint8]bool
}

type domain struct {
	block DomainBlock
	regs  []master.PDOEntryReg

	words   uint16
	data    []byte // live process image handed to the engine
	staging []byte // last frame received
	outbox  []byte // queued for the next send

	rxOK, txOK bool
	wc         uint16
	complete   bool
}

// New builds an unconnected driver.
func New(cfg Config) (*Driver, error) {
	if len(cfg.Domains) == 0 {
		return nil, errors.New("driver: at least one domain block required")
	}

	client, err := newEndpointClient(transportConfig{
		Endpoint: cfg.Endpoint,
		Device:   cfg.Device,
		BaudRate: cfg.BaudRate,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &Driver{
		cfg:       cfg,
		client:    client,
		domains:   make(map[uint32]*domain),
		slaves:    make(map[[2]uint16]*slaveCfg),
		sdoWindow: cfg.SDOWindow,
		sdoQueue:  make(chan sdoTransfer, 16),
		unitOK:    make(map[uint8]bool),
	}, nil
}

// ---- master.Driver lifecycle ----

func (d *Driver) Connect(masterID int) error {
	if d.connected {
		return errors.New("driver: already claimed")
	}
	if masterID != 0 {
		return fmt.Errorf("driver: master id %d unavailable", masterID)
	}
	if err := d.client.Connect(); err != nil {
		return err
	}
	d.connected = true
	d.linkUp = true
	return nil
}

func (d *Driver) Close() error {
	if !d.connected {
		return nil
	}
	d.connected = false
	close(d.sdoQueue)
	return d.client.Close()
}

func (d *Driver) SlaveConfig(alias, position uint16) (master.SlaveConfig, error) {
	key := [2]uint16{alias, position}
	if _, dup := d.slaves[key]; dup {
		return nil, fmt.Errorf("driver: slave %d:%d already claimed", alias, position)
	}
	if position > 0xFF {
		return nil, fmt.Errorf("driver: position %d exceeds unit id space", position)
	}

	s := &slaveCfg{drv: d, alias: alias, position: position, unitID: uint8(position)}
	d.slaves[key] = s
	return s, nil
}

func (d *Driver) CreateDomain(domainID uint32) error {
	if d.active {
		return errors.New("driver: already activated")
	}
	if _, ok := d.domains[domainID]; ok {
		return nil
	}
	for _, b := range d.cfg.Domains {
		if b.ID == domainID {
			d.domains[domainID] = &domain{block: b}
			d.domainIDs = append(d.domainIDs, domainID)
			sort.Slice(d.domainIDs, func(i, j int) bool { return d.domainIDs[i] < d.domainIDs[j] })
			return nil
		}
	}
	return fmt.Errorf("driver: no register block configured for domain %d", domainID)
}

func (d *Driver) RegisterPDOEntries(domainID uint32, regs []master.PDOEntryReg) error {
	if d.active {
		return errors.New("driver: registration after activate")
	}
	dom, ok := d.domains[domainID]
	if !ok {
		return fmt.Errorf("driver: unknown domain %d", domainID)
	}
	dom.regs = append(dom.regs, regs...)
	return nil
}

func (d *Driver) Activate() (map[uint32]master.DomainLayout, error) {
	if !d.connected {
		return nil, errors.New("driver: not connected")
	}
	if d.active {
		return nil, errors.New("driver: already activated")
	}

	layouts := make(map[uint32]master.DomainLayout, len(d.domains))
	for _, id := range d.domainIDs {
		dom := d.domains[id]
		offsets, size := computeLayout(dom.regs)

		dom.words = uint16((size + 1) / 2)
		dom.data = make([]byte, dom.words*2)
		dom.staging = make([]byte, dom.words*2)
		dom.outbox = make([]byte, dom.words*2)

		layouts[id] = master.DomainLayout{Data: dom.data, Offsets: offsets}
	}

	d.active = true
	go d.sdoWorker()
	return layouts, nil
}

// ---- cyclic hot path ----

// Receive refreshes every domain's staging image from the coupler. A
// failed block read leaves the previous image in place; the domain goes
// incomplete instead of failing the cycle.
func (d *Driver) Receive() error {
	anyOK := false
	for _, id := range d.domainIDs {
		dom := d.domains[id]
		raw, err := d.client.ReadBlock(dom.block.UnitID, dom.block.Address, dom.words)
		if err != nil || len(raw) < len(dom.staging) {
			dom.rxOK = false
			d.unitOK[dom.block.UnitID] = false
			continue
		}
		copy(dom.staging, raw)
		dom.rxOK = true
		d.unitOK[dom.block.UnitID] = true
		anyOK = true
	}

	d.linkUp = anyOK
	if !anyOK {
		return errors.New("driver: no domain block answered")
	}
	return nil
}

func (d *Driver) ProcessDomain(domainID uint32) {
	dom, ok := d.domains[domainID]
	if !ok || !dom.rxOK {
		return
	}
	copy(dom.data, dom.staging)
}

func (d *Driver) QueueDomain(domainID uint32) {
	if dom, ok := d.domains[domainID]; ok {
		copy(dom.outbox, dom.data)
	}
}

func (d *Driver) Send() error {
	var firstErr error
	for _, id := range d.domainIDs {
		dom := d.domains[id]
		err := d.client.WriteBlock(dom.block.UnitID, dom.block.Address, dom.outbox)
		dom.txOK = err == nil
		if err != nil {
			d.unitOK[dom.block.UnitID] = false
			if firstErr == nil {
				firstErr = err
			}
		}

		dom.wc = 0
		if dom.rxOK {
			dom.wc++
		}
		if dom.txOK {
			dom.wc++
		}
		dom.complete = dom.wc == 2
	}
	return firstErr
}

// ---- health ----

func (d *Driver) MasterState() master.MasterState {
	responding := uint32(0)
	for _, ok := range d.unitOK {
		if ok {
			responding++
		}
	}
	return master.MasterState{LinkUp: d.linkUp, SlavesResponding: responding}
}

func (d *Driver) DomainState(domainID uint32) master.DomainState {
	dom, ok := d.domains[domainID]
	if !ok {
		return master.DomainState{}
	}
	return master.DomainState{WorkingCounter: dom.wc, Complete: dom.complete}
}

// WriteStatus publishes the supervisor snapshot to the configured status
// block. No-op when the block is not configured. Not for the hot path.
func (d *Driver) WriteStatus(snap status.Snapshot) error {
	if d.cfg.Status == nil {
		return nil
	}
	return d.client.WriteRegisters(d.cfg.Status.UnitID, d.cfg.Status.Address, status.Encode(snap))
}

// ---- slave configuration handle ----

type slaveCfg struct {
	drv      *Driver
	alias    uint16
	position uint16
	unitID   uint8
}

func (s *slaveCfg) State() master.SlaveState {
	online, seen := s.drv.unitOK[s.unitID]
	online = online && seen
	return master.SlaveState{
		Online:      online,
		Operational: online && s.drv.active,
	}
}

func (s *slaveCfg) WriteSDO(index uint16, subindex uint8, value []byte) error {
	regs := leBytesToRegs(value)
	addr := odAddress(s.drv.sdoWindow, index, subindex)
	if err := s.drv.client.WriteRegisters(s.unitID, addr, regs); err != nil {
		return abortError(index, subindex, err)
	}
	return nil
}

func (s *slaveCfg) CreateSDORequest(index uint16, subindex uint8, size int) (master.SDOHandle, error) {
	if size <= 0 || size > 4 {
		return nil, fmt.Errorf("driver: sdo request size %d out of range", size)
	}
	return &sdoHandle{
		drv:      s.drv,
		unitID:   s.unitID,
		index:    index,
		subindex: subindex,
		size:     size,
	}, nil
}

// leBytesToRegs packs a little-endian value into register words.
func leBytesToRegs(value []byte) []uint16 {
	regs := make([]uint16, (len(value)+1)/2)
	for i, b := range value {
		if i%2 == 0 {
			regs[i/2] |= uint16(b)
		} else {
			regs[i/2] |= uint16(b) << 8
		}
	}
	return regs
}
