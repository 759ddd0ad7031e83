package vm

// MemorySize is the size of the machine's memory bank in bytes.
// One program image occupies the entire bank.
const MemorySize = 256

// Memory defines the machine's memory bank.
//
// Accessors clamp out-of-range addresses: reads past the end yield 0,
// writes past the end are dropped. Evolved programs routinely compute
// nonsense addresses and must never be able to fault the host.
type Memory []byte

// U8 returns the 8-bit value at the given address.
func (m Memory) U8(addr int) byte {
	if addr < 0 || addr >= len(m) {
		return 0
	}
	return m[addr]
}

// SetU8 sets the 8-bit value at the given address.
func (m Memory) SetU8(addr int, value byte) {
	if addr < 0 || addr >= len(m) {
		return
	}
	m[addr] = value
}

// Write writes len(p) bytes from p into memory, starting at the given address.
func (m Memory) Write(addr int, p []byte) {
	copy(m[addr:], p)
}

// Read reads len(p) bytes from memory into p, starting at the given address.
func (m Memory) Read(addr int, p []byte) {
	copy(p, m[addr:])
}
