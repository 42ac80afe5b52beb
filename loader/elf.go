package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// LoadELF parses a RISC-V ELF32 or ELF64 binary and returns a Program ready
// for loading into a Hart's memory.
func LoadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 && f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("unsupported ELF class: %v", f.Class)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		EntryPoint: f.Entry,
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: phdr.Vaddr,
			Data:     data,
			MemSize:  phdr.Memsz,
			Flags:    flags,
		})

		end := phdr.Vaddr + phdr.Memsz
		if end > prog.ExitPoint {
			prog.ExitPoint = end
		}
	}
	prog.HasExitPoint = len(prog.Segments) > 0

	applySymbols(f, prog)

	return prog, nil
}

// applySymbols pulls the well-known symbols spec.md §6 names (tohost,
// fromhost, _end, __global_pointer$, __whisper_console_io) out of the ELF
// symbol table when the linker placed them. A riscv-tests-style image
// defines all of these; a plain -nostdlib binary may define none, so every
// field is optional.
func applySymbols(f *elf.File, prog *Program) {
	syms, err := f.Symbols()
	if err != nil {
		return
	}

	for _, sym := range syms {
		switch sym.Name {
		case "tohost":
			prog.HasToHostAddr = true
			prog.ToHostAddr = sym.Value
		case "fromhost":
			prog.HasFromHostAddr = true
			prog.FromHostAddr = sym.Value
		case "_end":
			prog.HasEndAddr = true
			prog.EndAddr = sym.Value
		case "__global_pointer$":
			prog.HasGlobalPointer = true
			prog.GlobalPointer = sym.Value
		case "__whisper_console_io":
			prog.HasConsoleIOAddr = true
			prog.ConsoleIOAddr = sym.Value
		}
	}
}
