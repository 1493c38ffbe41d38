package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// instruction is a fully decoded 16 bit instruction word. All operand fields
// are extracted once at decode time so the opcode handlers never repeat any
// bit fiddling.
type instruction struct {
	word uint16

	op   byte   // high nibble, selects the opcode family
	x    byte   // second nibble, first register index
	y    byte   // third nibble, second register index
	n    byte   // low nibble
	kk   byte   // low byte literal
	addr uint16 // low 12 bits address operand
}

// assembleWord concatenates two consecutive program bytes into one big-endian
// instruction word.
func assembleWord(high, low byte) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// decode splits an instruction word into its four nibbles and derived
// operands. Every 16 bit value decodes unambiguously, validity against the
// instruction set is checked separately by mnemonic.
func decode(word uint16) instruction {
	return instruction{
		word: word,
		op:   byte(word >> 12),
		x:    byte(word>>8) & 0x0F,
		y:    byte(word>>4) & 0x0F,
		n:    byte(word) & 0x0F,
		kk:   byte(word),
		addr: word & 0x0FFF,
	}
}

// mnemonic returns the instruction name for a word using the published
// CHIP-8 opcode tables, or an empty string if the bit pattern matches no
// known instruction.
func mnemonic(word uint16) string {
	for _, op := range chip8.Opcodes[int(word>>12)] {
		if op.Info.Mask&word == op.Info.Value {
			if op.Instruction == nil {
				return ""
			}
			return op.Instruction.Name
		}
	}
	return ""
}

// DecodeError is returned when an instruction word matches no known opcode
// pattern. It carries the previously executed word to help locating the
// offending code in the program.
type DecodeError struct {
	Word     uint16 // the unrecognized instruction word
	Previous uint16 // the instruction word executed before it
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown instruction encountered: 0x%04X, the previous instruction was: 0x%04X",
		e.Word, e.Previous)
}
