// Package vm implements the byte machine that executes evolved programs.
package vm

import (
	"fmt"
	"math/rand"

	"github.com/op/go-logging"

	"github.com/Wint3rmute/bacteria-vm/arch"
)

var log = logging.MustGetLogger("vm")

// TraceDepth is the number of recently executed instructions the machine
// remembers. The stall heuristic operates over this window.
const TraceDepth = 16

// stallLimit is the maximum number of distinct opcodes in a full trace
// window before the run is judged degenerate. The window size and limit
// are fixed; saved programs were selected under these exact numbers.
const stallLimit = 2

// Mutation bounds for PartialRandomize, in percent of the memory bank.
const (
	minMutationPct = 1
	maxMutationPct = 10
)

// TraceFunc represents a callback handler for debug trace output.
type TraceFunc func(line string)

// Machine is a single execution engine. It owns a 256-byte memory bank,
// a program counter, an accumulator and the bookkeeping needed to score
// a run: a step counter and a sliding window of executed opcodes.
//
// The genome is a snapshot of memory taken when a program is loaded or
// randomized. Execution never touches it; it is the unit of selection
// and mutation for the evolutionary driver.
//
// A Machine is not safe for concurrent use. Callers that inject sensor
// bytes or read actuator bytes must do so between Step calls.
type Machine struct {
	memory Memory
	genome Memory
	pc     int
	acc    byte
	halted bool
	steps  int

	window    [TraceDepth]arch.Opcode // Raw opcodes, newest overwrites oldest.
	windowPos int
	windowLen int

	trace   []string // Human-readable log of recent instructions.
	traceFn TraceFunc
}

// New creates a new machine with zeroed memory.
// Optionally with the given debug trace handler.
func New(trace TraceFunc) *Machine {
	if trace == nil {
		trace = func(string) { /* nop */ }
	}
	return &Machine{
		memory:  make(Memory, MemorySize),
		genome:  make(Memory, MemorySize),
		trace:   make([]string, 0, TraceDepth),
		traceFn: trace,
	}
}

// Memory returns the machine's memory bank. External collaborators use
// it to write sensor bytes before a step and read actuator bytes after.
func (m *Machine) Memory() Memory {
	return m.memory
}

// Genome returns a copy of the memory snapshot taken when the current
// program was loaded or randomized.
func (m *Machine) Genome() []byte {
	g := make([]byte, MemorySize)
	copy(g, m.genome)
	return g
}

// PC returns the current program counter.
func (m *Machine) PC() int {
	return m.pc
}

// Acc returns the current accumulator value.
func (m *Machine) Acc() byte {
	return m.acc
}

// Halted reports whether the machine has stopped executing.
func (m *Machine) Halted() bool {
	return m.halted
}

// Steps returns the number of instructions executed since the current
// program was loaded. A stalled run reports 0.
func (m *Machine) Steps() int {
	return m.steps
}

// Trace returns the formatted log of the most recently executed
// instructions, oldest first. At most TraceDepth entries.
func (m *Machine) Trace() []string {
	t := make([]string, len(m.trace))
	copy(t, m.trace)
	return t
}

// Step advances the machine by exactly one instruction cycle.
// On a halted machine, or with the program counter past the end of
// memory, it is a no-op apart from latching the halt flag.
func (m *Machine) Step() {
	if m.halted || m.pc >= MemorySize {
		m.halted = true
		return
	}
	m.steps++

	pc := m.pc
	op := arch.Opcode(m.memory[pc])

	// Direct addressing: the byte after the opcode is itself the target
	// address. Reading it past the end of memory yields 0.
	addr := int(m.memory.U8(pc + 1))

	var line string
	switch op {
	case arch.NOP:
		line = fmt.Sprintf("%04d: %s (0x%02X)", pc, op, byte(op))
		m.pc++
	case arch.LDA:
		m.acc = m.memory.U8(addr)
		line = fmt.Sprintf("%04d: %s (0x%02X) addr=%d -> acc=%d", pc, op, byte(op), addr, m.acc)
		m.pc += 2
	case arch.STA:
		line = fmt.Sprintf("%04d: %s (0x%02X) acc=%d -> addr=%d", pc, op, byte(op), m.acc, addr)
		m.memory.SetU8(addr, m.acc)
		m.pc += 2
	case arch.ADD:
		val := m.memory.U8(addr)
		line = fmt.Sprintf("%04d: %s (0x%02X) acc=%d + val=%d (addr=%d)", pc, op, byte(op), m.acc, val, addr)
		m.acc += val
		m.pc += 2
	case arch.SUB:
		val := m.memory.U8(addr)
		line = fmt.Sprintf("%04d: %s (0x%02X) acc=%d - val=%d (addr=%d)", pc, op, byte(op), m.acc, val, addr)
		m.acc -= val
		m.pc += 2
	case arch.JMP:
		line = fmt.Sprintf("%04d: %s (0x%02X) to addr=%d", pc, op, byte(op), addr)
		m.pc = addr
	case arch.JZ:
		line = fmt.Sprintf("%04d: %s (0x%02X) to addr=%d if acc==0 (acc=%d)", pc, op, byte(op), addr, m.acc)
		if m.acc == 0 {
			m.pc = addr
		} else {
			m.pc += 2
		}
	case arch.INC:
		line = fmt.Sprintf("%04d: %s (0x%02X) acc=%d -> %d", pc, op, byte(op), m.acc, m.acc+1)
		m.acc++
		m.pc++
	case arch.DEC:
		line = fmt.Sprintf("%04d: %s (0x%02X) acc=%d -> %d", pc, op, byte(op), m.acc, m.acc-1)
		m.acc--
		m.pc++
	case arch.SWP:
		val := m.memory.U8(addr)
		line = fmt.Sprintf("%04d: %s (0x%02X) acc=%d <-> addr=%d val=%d", pc, op, byte(op), m.acc, addr, val)
		m.memory.SetU8(addr, m.acc)
		m.acc = val
		m.pc += 2
	case arch.CMP:
		val := m.memory.U8(addr)
		line = fmt.Sprintf("%04d: %s (0x%02X) acc=%d addr=%d val=%d", pc, op, byte(op), m.acc, addr, val)
		m.pc += 2
	case arch.HLT:
		line = fmt.Sprintf("%04d: %s (0x%02X)", pc, op, byte(op))
		log.Debugf("halt at pc=%d after %d steps", pc, m.steps)
		m.halted = true
	default:
		// Invalid opcode: implicit halt.
		line = fmt.Sprintf("%04d: %s (0x%02X)", pc, op, byte(op))
		log.Debugf("invalid opcode 0x%02X at pc=%d, halting", byte(op), pc)
		m.halted = true
	}

	m.record(op, line)
}

// Run executes instructions until the machine halts.
func (m *Machine) Run() {
	for !m.halted {
		m.Step()
	}
}

// record appends the executed opcode to the stall window and the
// formatted line to the display trace, then applies the stall check.
func (m *Machine) record(op arch.Opcode, line string) {
	m.window[m.windowPos] = op
	m.windowPos = (m.windowPos + 1) % TraceDepth
	if m.windowLen < TraceDepth {
		m.windowLen++
	}

	if len(m.trace) >= TraceDepth {
		copy(m.trace, m.trace[1:])
		m.trace = m.trace[:TraceDepth-1]
	}
	m.trace = append(m.trace, line)
	m.traceFn(line)

	m.checkStall()
}

// checkStall halts the machine with a zeroed step count when the last
// TraceDepth instructions used at most stallLimit distinct opcodes.
// Such a run is stuck oscillating and scores zero fitness.
func (m *Machine) checkStall() {
	if m.windowLen < TraceDepth {
		return
	}

	distinct := 0
outer:
	for i, op := range m.window {
		for j := 0; j < i; j++ {
			if m.window[j] == op {
				continue outer
			}
		}
		distinct++
	}

	if distinct <= stallLimit {
		log.Debugf("stall at pc=%d: %d distinct opcodes in last %d instructions", m.pc, distinct, TraceDepth)
		m.halted = true
		m.steps = 0
	}
}

// reset returns the execution state to its initial values.
// Memory and genome are left alone.
func (m *Machine) reset() {
	m.pc = 0
	m.acc = 0
	m.halted = false
	m.steps = 0
	m.windowPos = 0
	m.windowLen = 0
	m.trace = m.trace[:0]
}

// Randomize fills the whole memory bank with uniformly random bytes,
// snapshots it into the genome and resets the execution state.
func (m *Machine) Randomize(rng *rand.Rand) {
	for i := range m.memory {
		v := byte(rng.Intn(256))
		m.memory[i] = v
		m.genome[i] = v
	}
	m.reset()
}

// PartialRandomize overwrites a random 1-10% of memory cells with random
// bytes, leaving the rest untouched, and resets the execution state.
// This is the mutation operator for evolutionary search. Both cell count
// and positions are rolled independently.
func (m *Machine) PartialRandomize(rng *rand.Rand) {
	pct := minMutationPct + rng.Intn(maxMutationPct-minMutationPct+1)
	count := MemorySize * pct / 100

	for i := 0; i < count; i++ {
		idx := rng.Intn(MemorySize)
		v := byte(rng.Intn(256))
		m.memory[idx] = v
		m.genome[idx] = v
	}
	m.reset()
}

// LoadProgram copies the given program image into memory and genome,
// truncated or zero-padded to the memory size, and resets the execution
// state.
func (m *Machine) LoadProgram(p []byte) {
	for i := range m.memory {
		m.memory[i] = 0
	}
	copy(m.memory, p)
	copy(m.genome, m.memory)
	m.reset()
}

// Restart clears the halt flag and rewinds the program counter without
// touching memory, the accumulator or the step counter. The agent layer
// uses it to keep a halted brain running inside a live creature.
func (m *Machine) Restart() {
	m.halted = false
	m.pc = 0
}
