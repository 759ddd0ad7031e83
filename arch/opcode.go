// Package arch defines the system's instruction set along with
// some related helper functions.
package arch

import "strings"

// Opcode identifies a single instruction.
//
// Any byte value outside the constants below is an invalid opcode.
// Evolved programs are arbitrary bit patterns, so the machine treats
// invalid opcodes as an implicit HLT instead of faulting.
type Opcode byte

// Known opcodes.
const (
	NOP Opcode = 0x00 // No operation.
	LDA Opcode = 0x01 // Load accumulator from memory.
	STA Opcode = 0x02 // Store accumulator to memory.
	ADD Opcode = 0x03 // Add memory to accumulator.
	SUB Opcode = 0x04 // Subtract memory from accumulator.
	JMP Opcode = 0x05 // Jump to address.
	JZ  Opcode = 0x06 // Jump to address if accumulator is zero.
	INC Opcode = 0x07 // Increment accumulator.
	DEC Opcode = 0x08 // Decrement accumulator.
	SWP Opcode = 0x09 // Swap accumulator with memory.
	CMP Opcode = 0x0a // Compare accumulator with memory.
	HLT Opcode = 0xff // Halt.
)

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool {
	_, ok := Name(op)
	return ok
}

// String returns the mnemonic for op, or "???" if it is not recognized.
func (op Opcode) String() string {
	name, ok := Name(op)
	if !ok {
		return "???"
	}
	return name
}

// FromName returns the opcode for the given instruction name.
// Returns false if the name is not recognized.
func FromName(name string) (Opcode, bool) {
	switch strings.ToUpper(name) {
	case "NOP":
		return NOP, true
	case "LDA":
		return LDA, true
	case "STA":
		return STA, true
	case "ADD":
		return ADD, true
	case "SUB":
		return SUB, true
	case "JMP":
		return JMP, true
	case "JZ":
		return JZ, true
	case "INC":
		return INC, true
	case "DEC":
		return DEC, true
	case "SWP":
		return SWP, true
	case "CMP":
		return CMP, true
	case "HLT":
		return HLT, true
	}
	return 0, false
}

// Name returns the mnemonic for the given opcode.
// Returns false if the opcode is not recognized.
func Name(op Opcode) (string, bool) {
	switch op {
	case NOP:
		return "NOP", true
	case LDA:
		return "LDA", true
	case STA:
		return "STA", true
	case ADD:
		return "ADD", true
	case SUB:
		return "SUB", true
	case JMP:
		return "JMP", true
	case JZ:
		return "JZ", true
	case INC:
		return "INC", true
	case DEC:
		return "DEC", true
	case SWP:
		return "SWP", true
	case CMP:
		return "CMP", true
	case HLT:
		return "HLT", true
	}
	return "", false
}

// Width returns the encoded size of the given instruction in bytes:
// 2 for instructions carrying an address operand, 1 otherwise.
// Invalid opcodes report 1; they halt the machine and never advance.
func Width(op Opcode) int {
	switch op {
	case LDA, STA, ADD, SUB, JMP, JZ, SWP, CMP:
		return 2
	}
	return 1
}
