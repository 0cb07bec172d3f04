// internal/driver/modbus/layout_test.go
package modbus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/ecat-master/internal/master"
)

func TestComputeLayoutWordChannels(t *testing.T) {
	regs := []master.PDOEntryReg{
		{Index: 0x6010, Subindex: 1, Bits: 16},
		{Index: 0x6010, Subindex: 2, Bits: 16},
		{Index: 0x6010, Subindex: 3}, // 0 means 16
	}

	offsets, size := computeLayout(regs)
	require.Equal(t, 6, size)

	// Ascending even offsets in registration order.
	require.Equal(t, master.EntryOffset{Byte: 0, Bit: 0}, offsets[0])
	require.Equal(t, master.EntryOffset{Byte: 2, Bit: 0}, offsets[1])
	require.Equal(t, master.EntryOffset{Byte: 4, Bit: 0}, offsets[2])
}

func TestComputeLayoutPacksBits(t *testing.T) {
	regs := []master.PDOEntryReg{
		{Index: 0x6000, Subindex: 1, Bits: 1},
		{Index: 0x6000, Subindex: 2, Bits: 1},
		{Index: 0x6000, Subindex: 3, Bits: 1},
		{Index: 0x6010, Subindex: 1, Bits: 16},
		{Index: 0x7000, Subindex: 1, Bits: 1},
	}

	offsets, size := computeLayout(regs)

	// Three bits share the first word.
	require.Equal(t, master.EntryOffset{Byte: 0, Bit: 0}, offsets[0])
	require.Equal(t, master.EntryOffset{Byte: 0, Bit: 1}, offsets[1])
	require.Equal(t, master.EntryOffset{Byte: 0, Bit: 2}, offsets[2])

	// The word channel starts on the next boundary.
	require.Equal(t, master.EntryOffset{Byte: 2, Bit: 0}, offsets[3])

	// A later bit opens a fresh word.
	require.Equal(t, master.EntryOffset{Byte: 4, Bit: 0}, offsets[4])

	require.Equal(t, 6, size)
}

func TestComputeLayoutFillsWord(t *testing.T) {
	regs := make([]master.PDOEntryReg, 17)
	for i := range regs {
		regs[i] = master.PDOEntryReg{Index: 0x6000, Subindex: uint8(i + 1), Bits: 1}
	}

	offsets, size := computeLayout(regs)

	require.Equal(t, master.EntryOffset{Byte: 0, Bit: 15}, offsets[15])
	require.Equal(t, master.EntryOffset{Byte: 2, Bit: 0}, offsets[16])
	require.Equal(t, 4, size)
}

func TestComputeLayoutWideChannel(t *testing.T) {
	regs := []master.PDOEntryReg{
		{Index: 0x6020, Subindex: 1, Bits: 32},
		{Index: 0x6000, Subindex: 1, Bits: 1},
	}

	offsets, size := computeLayout(regs)

	require.Equal(t, master.EntryOffset{Byte: 0, Bit: 0}, offsets[0])
	require.Equal(t, master.EntryOffset{Byte: 4, Bit: 0}, offsets[1])
	require.Equal(t, 6, size)
}

func TestODAddress(t *testing.T) {
	// Index low byte selects an 8-register row, subindex the column.
	require.Equal(t, uint16(3000+0x10*8+1), odAddress(3000, 0x8010, 1))
	require.Equal(t, uint16(3000), odAddress(3000, 0x8000, 0))
}

func TestLEBytesToRegs(t *testing.T) {
	require.Equal(t, []uint16{0x1388}, leBytesToRegs([]byte{0x88, 0x13}))
	require.Equal(t, []uint16{0x0001, 0x0002}, leBytesToRegs([]byte{0x01, 0x00, 0x02, 0x00}))
	require.Equal(t, []uint16{0x0005}, leBytesToRegs([]byte{0x05}))
}
