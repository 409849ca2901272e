// Package memimage provides the byte-addressed instruction and data memory
// images used by both processor cores.
package memimage

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/archsim/rv32isim/internal/simlog"
)

// DefaultSize is the number of addressable bytes in an image when no
// override is given. Matches the assignment-scale memory used by the
// reference implementation this simulator is based on.
const DefaultSize = 1000

// Memory is a byte-addressed, 32-bit-word-accessible memory image.
//
// Reads of addresses outside the backing store return zero. Writes outside
// the backing store are logged and discarded.
type Memory struct {
	name  string
	bytes []byte
}

// New creates a zero-filled memory image of the given size.
func New(name string, size int) *Memory {
	return &Memory{name: name, bytes: make([]byte, size)}
}

// LoadText populates a memory image from a text file containing one
// 8-character ASCII binary string per line (e.g. "10110011"), one byte per
// line. Short files are zero-padded out to size.
func LoadText(name string, path string, size int) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open memory image %q: %w", name, path, err)
	}
	defer f.Close()

	m := New(name, size)

	scanner := bufio.NewScanner(f)
	i := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if i >= size {
			return nil, fmt.Errorf("%s: memory image %q has more than %d bytes", name, path, size)
		}
		v, err := strconv.ParseUint(line, 2, 8)
		if err != nil {
			return nil, fmt.Errorf("%s: malformed byte %q at line %d of %q: %w", name, line, i+1, path, err)
		}
		m.bytes[i] = byte(v)
		i++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to read memory image %q: %w", name, path, err)
	}

	return m, nil
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() int {
	return len(m.bytes)
}

// Read8 reads a single byte. Out-of-range addresses read as zero.
func (m *Memory) Read8(addr uint32) byte {
	if int(addr) >= len(m.bytes) {
		return 0
	}
	return m.bytes[addr]
}

// Write8 writes a single byte. Out-of-range addresses are logged and
// discarded.
func (m *Memory) Write8(addr uint32, v byte) {
	if int(addr) >= len(m.bytes) {
		simlog.Default().Warn("write out of range", "memory", m.name, "address", addr)
		return
	}
	m.bytes[addr] = v
}

// Read32 reads a big-endian 32-bit word starting at addr: the word at
// address A is (mem[A]<<24)|(mem[A+1]<<16)|(mem[A+2]<<8)|mem[A+3].
func (m *Memory) Read32(addr uint32) uint32 {
	b0 := uint32(m.Read8(addr))
	b1 := uint32(m.Read8(addr + 1))
	b2 := uint32(m.Read8(addr + 2))
	b3 := uint32(m.Read8(addr + 3))
	return b0<<24 | b1<<16 | b2<<8 | b3
}

// Write32 writes a big-endian 32-bit word starting at addr. A negative
// (out-of-range, per the int32 interpretation used by store address
// computation) or out-of-bounds address is logged and the whole write is
// discarded rather than partially applied.
func (m *Memory) Write32(addr uint32, v uint32) {
	if int32(addr) < 0 || int(addr)+4 > len(m.bytes) {
		simlog.Default().Warn("store address out of range", "memory", m.name, "address", int32(addr))
		return
	}
	m.Write8(addr, byte(v>>24))
	m.Write8(addr+1, byte(v>>16))
	m.Write8(addr+2, byte(v>>8))
	m.Write8(addr+3, byte(v))
}

// Bytes returns the backing byte slice, for dumping to a result file. The
// caller must not mutate it.
func (m *Memory) Bytes() []byte {
	return m.bytes
}
