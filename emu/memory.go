package emu

import "encoding/binary"

// Region classifies an address range for speculation and access-fault
// purposes (spec.md §6's region-index-of).
type Region int

// Known memory regions.
const (
	RegionRAM Region = iota
	RegionDCCM
	RegionIO
	RegionUnmapped
)

// Memory is the byte-addressable storage the hart reads and writes
// through. It is an external collaborator (spec.md §1/§6): the core
// depends only on this interface, never on a concrete implementation.
type Memory interface {
	ReadByte(addr uint64) (uint8, bool)
	ReadHalf(addr uint64) (uint16, bool)
	ReadWord(addr uint64) (uint32, bool)
	ReadDouble(addr uint64) (uint64, bool)

	WriteByte(addr uint64, v uint8) bool
	WriteHalf(addr uint64, v uint16) bool
	WriteWord(addr uint64, v uint32) bool
	WriteDouble(addr uint64, v uint64) bool

	// ReadInstHalf/ReadInstWord are the instruction-side fetch variants;
	// a memory implementation may serve them from a different path than
	// data reads (e.g. a separate instruction-closely-coupled region).
	ReadInstHalf(addr uint64) (uint16, bool)
	ReadInstWord(addr uint64) (uint32, bool)

	// CheckWrite reports whether a write of maskedValue to addr is
	// permitted (e.g. read-only memory-mapped registers reject it)
	// without performing the write.
	CheckWrite(addr uint64, maskedValue uint64) bool

	RegionIndexOf(addr uint64) Region
	IsAddrInDCCM(addr uint64) bool
	IsLastWriteToDCCM() bool
	PageSize() uint64

	// GetLastWriteOldNewValue reports the old/new bytes of the most
	// recent write that overlapped addr, sized to the access, for the
	// load/store speculation queues' rollback/replay logic.
	GetLastWriteOldNewValue(addr uint64, size uint8) (old, new uint64, ok bool)
}

const defaultPageSize = 4096

// page is a fixed-size chunk of flat memory, allocated lazily so large,
// sparsely-used address spaces don't require a single giant slice.
type page [defaultPageSize]byte

// DefaultMemory is a flat, sparse, byte-addressable RAM with one
// configurable DCCM window and no memory-mapped I/O regions of its own
// (console-in/out and tohost are handled by the hart directly via
// configured addresses, per spec.md §6).
type DefaultMemory struct {
	pages map[uint64]*page

	dccmBase, dccmSize uint64

	lastWriteAddr uint64
	lastWriteOld  [8]byte
	lastWriteNew  [8]byte
	lastWriteSize uint8
	hasLastWrite  bool
}

// NewDefaultMemory creates an empty flat memory with no DCCM window.
func NewDefaultMemory() *DefaultMemory {
	return &DefaultMemory{pages: make(map[uint64]*page)}
}

// SetDCCM configures the data closely-coupled memory window.
func (m *DefaultMemory) SetDCCM(base, size uint64) {
	m.dccmBase, m.dccmSize = base, size
}

func (m *DefaultMemory) pageFor(addr uint64, create bool) (*page, uint64) {
	base := addr &^ (defaultPageSize - 1)
	off := addr & (defaultPageSize - 1)
	p, ok := m.pages[base]
	if !ok {
		if !create {
			return nil, off
		}
		p = &page{}
		m.pages[base] = p
	}
	return p, off
}

func (m *DefaultMemory) readBytes(addr uint64, n int) ([]byte, bool) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		p, off := m.pageFor(addr+uint64(i), false)
		if p == nil {
			out[i] = 0
			continue
		}
		out[i] = p[off]
	}
	return out, true
}

func (m *DefaultMemory) writeBytes(addr uint64, data []byte) {
	var oldBuf [8]byte
	n := len(data)
	for i := 0; i < n && i < 8; i++ {
		p, off := m.pageFor(addr+uint64(i), false)
		if p != nil {
			oldBuf[i] = p[off]
		}
	}
	for i := 0; i < n; i++ {
		p, off := m.pageFor(addr+uint64(i), true)
		p[off] = data[i]
	}
	m.lastWriteAddr = addr
	m.lastWriteSize = uint8(n)
	copy(m.lastWriteOld[:], oldBuf[:n])
	copy(m.lastWriteNew[:], data)
	m.hasLastWrite = true
}

// ReadByte reads a single byte.
func (m *DefaultMemory) ReadByte(addr uint64) (uint8, bool) {
	b, _ := m.readBytes(addr, 1)
	return b[0], true
}

// ReadHalf reads a little-endian 16-bit half-word.
func (m *DefaultMemory) ReadHalf(addr uint64) (uint16, bool) {
	b, _ := m.readBytes(addr, 2)
	return binary.LittleEndian.Uint16(b), true
}

// ReadWord reads a little-endian 32-bit word.
func (m *DefaultMemory) ReadWord(addr uint64) (uint32, bool) {
	b, _ := m.readBytes(addr, 4)
	return binary.LittleEndian.Uint32(b), true
}

// ReadDouble reads a little-endian 64-bit double-word.
func (m *DefaultMemory) ReadDouble(addr uint64) (uint64, bool) {
	b, _ := m.readBytes(addr, 8)
	return binary.LittleEndian.Uint64(b), true
}

// ReadInstHalf serves an instruction-side half-word fetch identically to
// ReadHalf; a hosted simulator has no separate I-space.
func (m *DefaultMemory) ReadInstHalf(addr uint64) (uint16, bool) { return m.ReadHalf(addr) }

// ReadInstWord serves an instruction-side word fetch identically to ReadWord.
func (m *DefaultMemory) ReadInstWord(addr uint64) (uint32, bool) { return m.ReadWord(addr) }

// WriteByte writes a single byte.
func (m *DefaultMemory) WriteByte(addr uint64, v uint8) bool {
	m.writeBytes(addr, []byte{v})
	return true
}

// WriteHalf writes a little-endian 16-bit half-word.
func (m *DefaultMemory) WriteHalf(addr uint64, v uint16) bool {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	m.writeBytes(addr, b[:])
	return true
}

// WriteWord writes a little-endian 32-bit word.
func (m *DefaultMemory) WriteWord(addr uint64, v uint32) bool {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	m.writeBytes(addr, b[:])
	return true
}

// WriteDouble writes a little-endian 64-bit double-word.
func (m *DefaultMemory) WriteDouble(addr uint64, v uint64) bool {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	m.writeBytes(addr, b[:])
	return true
}

// CheckWrite always permits the write: DefaultMemory has no read-only
// memory-mapped registers of its own.
func (m *DefaultMemory) CheckWrite(addr uint64, maskedValue uint64) bool { return true }

// RegionIndexOf classifies addr as DCCM or plain RAM.
func (m *DefaultMemory) RegionIndexOf(addr uint64) Region {
	if m.IsAddrInDCCM(addr) {
		return RegionDCCM
	}
	return RegionRAM
}

// IsAddrInDCCM reports whether addr falls inside the configured DCCM window.
func (m *DefaultMemory) IsAddrInDCCM(addr uint64) bool {
	return m.dccmSize != 0 && addr >= m.dccmBase && addr < m.dccmBase+m.dccmSize
}

// IsLastWriteToDCCM reports whether the most recent write landed in DCCM.
func (m *DefaultMemory) IsLastWriteToDCCM() bool {
	return m.hasLastWrite && m.IsAddrInDCCM(m.lastWriteAddr)
}

// PageSize returns the page granularity DefaultMemory allocates in.
func (m *DefaultMemory) PageSize() uint64 { return defaultPageSize }

// GetLastWriteOldNewValue reports the old/new values of the most recent
// write if that write was made at exactly addr with the given size; a write
// that only partly overlaps addr is not reported.
func (m *DefaultMemory) GetLastWriteOldNewValue(addr uint64, size uint8) (old, new uint64, ok bool) {
	if !m.hasLastWrite || addr != m.lastWriteAddr || size != m.lastWriteSize {
		return 0, 0, false
	}
	var oldB, newB [8]byte
	copy(oldB[:], m.lastWriteOld[:size])
	copy(newB[:], m.lastWriteNew[:size])
	return binary.LittleEndian.Uint64(oldB[:]), binary.LittleEndian.Uint64(newB[:]), true
}

// LoadBytes writes a raw byte slice into memory starting at addr, used by
// the ELF/hex loaders to populate program segments.
func (m *DefaultMemory) LoadBytes(addr uint64, data []byte) {
	for i, b := range data {
		p, off := m.pageFor(addr+uint64(i), true)
		p[off] = b
	}
}
