// internal/driver/modbus/layout.go
package modbus

import (
	"github.com/tamzrod/ecat-master/internal/master"
)

// computeLayout assigns process-image locations to a domain's registration
// table, in registration order. The image is the raw register block:
// big-endian 16-bit words, two bytes per word.
//
// Sub-register channels pack into the current word while it has room;
// word-sized and larger channels start on a word boundary. The table is
// frozen at activation, so the computed offsets stay valid for the life of
// the master.
func computeLayout(regs []master.PDOEntryReg) ([]master.EntryOffset, int) {
	offsets := make([]master.EntryOffset, len(regs))

	wordOff := 0 // byte offset of the current word
	bitCur := 0  // next free bit inside the current word

	for i, r := range regs {
		bits := int(r.Bits)
		if bits == 0 {
			bits = 16
		}

		if bits < 16 {
			if bitCur+bits > 16 {
				wordOff += 2
				bitCur = 0
			}
			offsets[i] = master.EntryOffset{Byte: uint32(wordOff), Bit: uint8(bitCur)}
			bitCur += bits
			if bitCur == 16 {
				wordOff += 2
				bitCur = 0
			}
			continue
		}

		if bitCur != 0 {
			wordOff += 2
			bitCur = 0
		}
		offsets[i] = master.EntryOffset{Byte: uint32(wordOff), Bit: 0}
		wordOff += 2 * ((bits + 15) / 16)
	}

	if bitCur != 0 {
		wordOff += 2
	}
	return offsets, wordOff
}
