package vm

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wint3rmute/bacteria-vm/arch"
)

func TestOperandOpsAdvanceByTwo(t *testing.T) {
	for _, op := range []arch.Opcode{arch.LDA, arch.STA, arch.ADD, arch.SUB, arch.SWP, arch.CMP} {
		m := New(nil)
		m.LoadProgram([]byte{byte(op), 10})
		m.Step()

		assert.Equal(t, 2, m.PC(), "%s", op)
		assert.False(t, m.Halted(), "%s", op)
	}
}

func TestSingleByteOpsAdvanceByOne(t *testing.T) {
	for _, op := range []arch.Opcode{arch.NOP, arch.INC, arch.DEC} {
		m := New(nil)
		m.LoadProgram([]byte{byte(op)})
		m.Step()

		assert.Equal(t, 1, m.PC(), "%s", op)
	}
}

func TestLDA(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.LDA), 3, 0, 42})
	m.Step()

	assert.Equal(t, byte(42), m.Acc())
}

func TestSTA(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.INC), byte(arch.STA), 10})
	m.Step()
	m.Step()

	assert.Equal(t, byte(1), m.Memory().U8(10))
	assert.Equal(t, 3, m.PC())
}

func TestADDWrapsAround(t *testing.T) {
	//  LDA 4
	//  ADD 4
	// cell 4 holds 200, so 200+200 wraps to 144.
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.LDA), 4, byte(arch.ADD), 4, 200})
	m.Step()
	m.Step()

	assert.Equal(t, byte(144), m.Acc())
}

func TestSUBWrapsAround(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.SUB), 2, 5})
	m.Step()

	assert.Equal(t, byte(251), m.Acc())
}

func TestINCWrapsAround(t *testing.T) {
	//  DEC        acc = 255
	//  INC        acc = 0
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.DEC), byte(arch.INC)})
	m.Step()
	assert.Equal(t, byte(255), m.Acc())

	m.Step()
	assert.Equal(t, byte(0), m.Acc())
}

func TestJMP(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.JMP), 100})
	m.Step()

	assert.Equal(t, 100, m.PC())
	assert.Equal(t, 1, m.Steps())
}

func TestJZTaken(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.JZ), 9})
	m.Step()

	assert.Equal(t, 9, m.PC())
}

func TestJZNotTaken(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.INC), byte(arch.JZ), 9})
	m.Step()
	m.Step()

	assert.Equal(t, 3, m.PC())
}

func TestSWP(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.SWP), 3, 0, 42})
	m.Step()

	assert.Equal(t, byte(42), m.Acc())
	assert.Equal(t, byte(0), m.Memory().U8(3))
}

func TestCMPDoesNotMutate(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.CMP), 3, 0, 9})
	m.Step()

	assert.Equal(t, byte(0), m.Acc())
	assert.Equal(t, byte(9), m.Memory().U8(3))
	assert.Equal(t, 2, m.PC())
}

func TestHLT(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.HLT)})
	m.Step()

	assert.True(t, m.Halted())
	assert.Equal(t, 0, m.PC())
	assert.Equal(t, 1, m.Steps())
}

func TestInvalidOpcodeHalts(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{0x42})
	m.Step()

	assert.True(t, m.Halted())
	assert.Equal(t, 1, m.Steps())
}

func TestStepOnHaltedMachineIsIdempotent(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.HLT)})
	m.Step()
	require.True(t, m.Halted())

	m.Step()
	m.Step()

	assert.Equal(t, 0, m.PC())
	assert.Equal(t, byte(0), m.Acc())
	assert.Equal(t, 1, m.Steps())
	assert.Len(t, m.Trace(), 1)
}

func TestRunningOffTheEndHalts(t *testing.T) {
	// Repeating INC,DEC,NOP: three distinct opcodes, so the stall check
	// never fires and the program counter walks off the end of memory.
	p := make([]byte, MemorySize)
	for i := range p {
		switch i % 3 {
		case 0:
			p[i] = byte(arch.INC)
		case 1:
			p[i] = byte(arch.DEC)
		case 2:
			p[i] = byte(arch.NOP)
		}
	}

	m := New(nil)
	m.LoadProgram(p)
	m.Run()

	assert.True(t, m.Halted())
	assert.Equal(t, MemorySize, m.PC())
	assert.Equal(t, MemorySize, m.Steps())
}

func TestStallDetection(t *testing.T) {
	// An INC/DEC loop never executes HLT, but oscillates between two
	// opcodes. Once the trace window fills it is force-halted with a
	// zeroed step count.
	p := make([]byte, MemorySize)
	for i := range p {
		if i%2 == 0 {
			p[i] = byte(arch.INC)
		} else {
			p[i] = byte(arch.DEC)
		}
	}

	m := New(nil)
	m.LoadProgram(p)

	for i := 0; i < TraceDepth; i++ {
		assert.False(t, m.Halted())
		m.Step()
	}

	assert.True(t, m.Halted())
	assert.Equal(t, 0, m.Steps())
}

func TestStallWindowSlides(t *testing.T) {
	// Sixteen distinct-enough instructions followed by an INC/DEC loop:
	// the stall only fires once the loop dominates the whole window.
	p := make([]byte, MemorySize)
	p[0] = byte(arch.LDA)
	p[1] = 0
	p[2] = byte(arch.STA)
	p[3] = 0
	p[4] = byte(arch.CMP)
	p[5] = 0
	for i := 6; i < MemorySize; i++ {
		if i%2 == 0 {
			p[i] = byte(arch.INC)
		} else {
			p[i] = byte(arch.DEC)
		}
	}

	m := New(nil)
	m.LoadProgram(p)
	m.Run()

	// 3 two-byte instructions, then INC/DEC until the window holds only
	// INC and DEC: 3 + 16 executed instructions in total.
	assert.True(t, m.Halted())
	assert.Equal(t, 0, m.Steps())
	assert.Equal(t, 6+TraceDepth, m.PC())
}

func TestOperandReadPastEndYieldsZero(t *testing.T) {
	//  JMP 255
	// cell 255 holds LDA; its operand byte sits past the end of memory
	// and reads as 0, so the accumulator is loaded from cell 0.
	p := make([]byte, MemorySize)
	p[0] = byte(arch.JMP)
	p[1] = 255
	p[255] = byte(arch.LDA)

	m := New(nil)
	m.LoadProgram(p)
	m.Step()
	require.Equal(t, 255, m.PC())

	m.Step()
	assert.Equal(t, byte(arch.JMP), m.Acc())
	assert.Equal(t, 2, m.Steps())

	m.Step()
	assert.True(t, m.Halted())
	assert.Equal(t, 2, m.Steps())
}

func TestEndToEnd(t *testing.T) {
	//  INC
	//  INC
	//  INC
	//  HLT
	m := New(nil)
	m.LoadProgram([]byte{0x07, 0x07, 0x07, 0xff})
	m.Run()

	assert.True(t, m.Halted())
	assert.Equal(t, byte(3), m.Acc())
	assert.Equal(t, 4, m.Steps())
}

func TestRandomizeResetsEverything(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{0x07, 0x07, 0x07, 0xff})
	m.Run()
	require.True(t, m.Halted())

	m.Randomize(rand.New(rand.NewSource(1)))

	assert.Equal(t, 0, m.PC())
	assert.Equal(t, byte(0), m.Acc())
	assert.False(t, m.Halted())
	assert.Equal(t, 0, m.Steps())
	assert.Empty(t, m.Trace())
	assert.Equal(t, []byte(m.memory), m.Genome())
}

func TestPartialRandomizeBounds(t *testing.T) {
	orig := make([]byte, MemorySize)
	for i := range orig {
		orig[i] = 0x55
	}

	m := New(nil)
	m.LoadProgram(orig)
	m.PartialRandomize(rand.New(rand.NewSource(1)))

	changed := 0
	for i := 0; i < MemorySize; i++ {
		if m.memory[i] != 0x55 {
			changed++
		}
		assert.Equal(t, m.genome[i], m.memory[i], "cell %d", i)
	}

	// 1-10% of 256 cells, minus any mutations that landed on the same
	// value or position twice.
	assert.GreaterOrEqual(t, changed, 1)
	assert.LessOrEqual(t, changed, MemorySize*10/100)

	assert.Equal(t, 0, m.PC())
	assert.False(t, m.Halted())
	assert.Equal(t, 0, m.Steps())
	assert.Empty(t, m.Trace())
}

func TestLoadProgramPadsAndTruncates(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{1, 2, 3})

	assert.Equal(t, byte(1), m.Memory().U8(0))
	assert.Equal(t, byte(3), m.Memory().U8(2))
	for i := 3; i < MemorySize; i++ {
		assert.Equal(t, byte(0), m.Memory().U8(i), "cell %d", i)
	}

	long := make([]byte, MemorySize+50)
	for i := range long {
		long[i] = 7
	}
	m.LoadProgram(long)
	assert.Equal(t, byte(7), m.Memory().U8(MemorySize-1))
	assert.Len(t, m.Genome(), MemorySize)
}

func TestRestartKeepsCounters(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{byte(arch.INC), byte(arch.HLT)})
	m.Run()
	require.True(t, m.Halted())
	require.Equal(t, 2, m.Steps())

	m.Restart()

	assert.False(t, m.Halted())
	assert.Equal(t, 0, m.PC())
	assert.Equal(t, 2, m.Steps())
	assert.Equal(t, byte(1), m.Acc())
}

func TestTraceFormat(t *testing.T) {
	var lines []string
	m := New(func(line string) { lines = append(lines, line) })
	m.LoadProgram([]byte{byte(arch.LDA), 5})
	m.Step()

	require.Len(t, lines, 1)
	assert.Equal(t, "0000: LDA (0x01) addr=5 -> acc=0", lines[0])
	assert.Equal(t, lines, m.Trace())
}

func TestTraceBounded(t *testing.T) {
	p := make([]byte, MemorySize)
	for i := range p {
		switch i % 3 {
		case 0:
			p[i] = byte(arch.INC)
		case 1:
			p[i] = byte(arch.DEC)
		case 2:
			p[i] = byte(arch.NOP)
		}
	}

	m := New(nil)
	m.LoadProgram(p)
	for i := 0; i < 100; i++ {
		m.Step()
	}

	trace := m.Trace()
	require.Len(t, trace, TraceDepth)
	assert.True(t, strings.HasPrefix(trace[TraceDepth-1], "0099:"), "last entry: %s", trace[TraceDepth-1])
}
