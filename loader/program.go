// Package loader reads executable images (ELF32/ELF64, Intel-hex) into a
// Program ready for an emu.Hart to load into memory.
package loader

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackTop is the default initial stack pointer for a bare-metal
// RISC-V image that doesn't define its own stack via linker script symbols.
const DefaultStackTop = 0x80000000 - 0x1000

// DefaultStackSize is the default stack size (8MB), used only as a sizing
// hint by frontends that carve the stack out of the address space.
const DefaultStackSize = 8 * 1024 * 1024

// Segment is one loadable chunk of a program image.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may exceed len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program is a loaded executable image ready for placement into memory.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint64
	// Segments contains all loadable segments of the image.
	Segments []Segment
	// InitialSP is the initial stack pointer value.
	InitialSP uint64

	// HasToHostAddr/ToHostAddr and the symbols below come from the ELF
	// symbol table when present (spec.md §6's tohost/fromhost protocol and
	// debug conveniences); LoadHex never populates them since Intel-hex
	// carries no symbol table.
	HasToHostAddr bool
	ToHostAddr    uint64

	HasFromHostAddr bool
	FromHostAddr    uint64

	HasEndAddr bool
	EndAddr    uint64

	// ExitPoint is the address immediately past the last loaded byte of the
	// highest PT_LOAD segment, watched by the run loop as a runaway-
	// execution backstop alongside the tohost protocol.
	HasExitPoint bool
	ExitPoint    uint64

	HasGlobalPointer bool
	GlobalPointer    uint64

	HasConsoleIOAddr bool
	ConsoleIOAddr    uint64
}
