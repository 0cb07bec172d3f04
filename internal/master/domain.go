// internal/master/domain.go
package master

// domainInfo owns one domain's registration table and, post-activation,
// its process image and entry layout. Domains are value-owned in an
// id-indexed registry; nothing holds raw pointers across activation.
type domainInfo struct {
	id uint32

	// regs is append-only. It must not change after Activate, or the
	// computed offsets become meaningless.
	regs []PDOEntryReg

	// Populated once by Activate, read-only thereafter.
	data    []byte
	entries []domainEntry
}

// domainEntry is one slave's mapped channels inside a domain. offsets and
// bits are parallel arrays sized exactly to the slave's channel count.
type domainEntry struct {
	slave   Slave
	offsets []uint32
	bits    []uint8
}

// registerPDOs appends one registration per channel and records the entry
// geometry for later offset assignment.
func (d *domainInfo) registerPDOs(alias, position uint16, slave Slave, channels []Channel) {
	for _, ch := range channels {
		d.regs = append(d.regs, PDOEntryReg{
			Alias:    alias,
			Position: position,
			Index:    ch.Index,
			Subindex: ch.Subindex,
			Bits:     ch.Bits,
		})
	}
	d.entries = append(d.entries, domainEntry{
		slave:   slave,
		offsets: make([]uint32, len(channels)),
		bits:    make([]uint8, len(channels)),
	})
}

// applyLayout distributes the driver-computed offsets across entries, in
// registration order.
func (d *domainInfo) applyLayout(layout DomainLayout) {
	d.data = layout.Data

	i := 0
	for e := range d.entries {
		entry := &d.entries[e]
		for c := range entry.offsets {
			if i >= len(layout.Offsets) {
				return
			}
			entry.offsets[c] = layout.Offsets[i].Byte
			entry.bits[c] = layout.Offsets[i].Bit
			i++
		}
	}
}

// process hands every mapped channel to its device. The same walk serves
// the read side (device decodes inputs) and the write side (device encodes
// outputs); direction is the device's own knowledge.
func (d *domainInfo) process() {
	for e := range d.entries {
		entry := &d.entries[e]
		for c := range entry.offsets {
			off := entry.offsets[c]
			if int(off) >= len(d.data) {
				continue
			}
			entry.slave.ProcessData(c, d.data[off:], entry.bits[c])
		}
	}
}

// readData refreshes the domain's process image from the wire and lets
// each device decode its inputs.
func (m *Master) readData(d *domainInfo) {
	m.driver.ProcessDomain(d.id)
	d.process()
}

// writeData lets each device encode its outputs and flushes the image to
// the wire.
func (m *Master) writeData(d *domainInfo) {
	d.process()
	m.driver.QueueDomain(d.id)
}
