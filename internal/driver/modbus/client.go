// internal/driver/modbus/client.go
package modbus

import (
	"errors"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// endpointClient is a single connection to the bus coupler. It serializes
// requests because it mutates the unit id per operation and the underlying
// transport carries one transaction at a time.
type endpointClient struct {
	mu      sync.Mutex
	connect func() error
	close   func() error
	setUnit func(uint8)
	client  modbus.Client
}

// transportConfig is minimal transport config.
type transportConfig struct {
	Endpoint string // tcp
	Device   string // rtu
	BaudRate int
	Timeout  time.Duration
}

func newEndpointClient(cfg transportConfig) (*endpointClient, error) {
	switch {
	case cfg.Endpoint != "":
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		return &endpointClient{
			connect: h.Connect,
			close:   h.Close,
			setUnit: func(u uint8) { h.SlaveId = u },
			client:  modbus.NewClient(h),
		}, nil

	case cfg.Device != "":
		h := modbus.NewRTUClientHandler(cfg.Device)
		h.BaudRate = cfg.BaudRate
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		h.Timeout = cfg.Timeout
		return &endpointClient{
			connect: h.Connect,
			close:   h.Close,
			setUnit: func(u uint8) { h.SlaveId = u },
			client:  modbus.NewClient(h),
		}, nil
	}
	return nil, errors.New("driver: endpoint or device required")
}

func (c *endpointClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connect()
}

func (c *endpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

// ReadBlock reads qty holding registers into raw big-endian bytes.
func (c *endpointClient) ReadBlock(unitID uint8, addr, qty uint16) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setUnit(unitID)
	return c.client.ReadHoldingRegisters(addr, qty)
}

// WriteBlock writes raw big-endian bytes as holding registers.
func (c *endpointClient) WriteBlock(unitID uint8, addr uint16, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(payload)%2 != 0 {
		return errors.New("driver: write payload must be whole registers")
	}
	c.setUnit(unitID)

	qty := uint16(len(payload) / 2)
	_, err := c.client.WriteMultipleRegisters(addr, qty, payload)
	return err
}

// WriteRegisters writes decoded register values.
func (c *endpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	return c.WriteBlock(unitID, addr, packRegisters(regs))
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
