package loader

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
)

const (
	hexRecData               = 0x00
	hexRecEndOfFile          = 0x01
	hexRecExtendedLinearAddr = 0x04
	hexRecStartLinearAddr    = 0x05
)

// LoadHex parses an Intel-hex file into a Program. Intel-hex carries no
// segment permissions or symbol table, so every byte lands in a
// read/write/execute segment (one per contiguous run of addresses) and the
// tohost/fromhost/_end/global-pointer
// fields are left unset; a frontend loading a hex image is expected to
// supply those out of band if it needs them.
func LoadHex(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hex file: %w", err)
	}
	defer func() { _ = f.Close() }()

	bytesByAddr := make(map[uint64]byte)
	var upperAddr uint64
	var entry uint64
	haveEntry := false

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] != ':' {
			return nil, fmt.Errorf("hex line %d: missing ':' marker", lineNo)
		}
		raw, err := hex.DecodeString(line[1:])
		if err != nil {
			return nil, fmt.Errorf("hex line %d: %w", lineNo, err)
		}
		if len(raw) < 5 {
			return nil, fmt.Errorf("hex line %d: record too short", lineNo)
		}

		count := int(raw[0])
		addr := uint64(raw[1])<<8 | uint64(raw[2])
		recType := raw[3]
		if len(raw) != count+5 {
			return nil, fmt.Errorf("hex line %d: byte count mismatch", lineNo)
		}
		data := raw[4 : 4+count]

		switch recType {
		case hexRecData:
			base := upperAddr + addr
			for i, b := range data {
				bytesByAddr[base+uint64(i)] = b
			}
		case hexRecEndOfFile:
		case hexRecExtendedLinearAddr:
			if count != 2 {
				return nil, fmt.Errorf("hex line %d: malformed extended linear address record", lineNo)
			}
			upperAddr = (uint64(data[0])<<8 | uint64(data[1])) << 16
		case hexRecStartLinearAddr:
			if count != 4 {
				return nil, fmt.Errorf("hex line %d: malformed start linear address record", lineNo)
			}
			entry = uint64(data[0])<<24 | uint64(data[1])<<16 | uint64(data[2])<<8 | uint64(data[3])
			haveEntry = true
		default:
			// Intel-hex also defines extended segment address (02) and
			// start segment address (03) records, used by 16-bit x86
			// tooling; a RISC-V image never emits them.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hex file: %w", err)
	}

	prog := &Program{InitialSP: DefaultStackTop}
	if haveEntry {
		prog.EntryPoint = entry
	}

	prog.Segments = coalesceBytes(bytesByAddr)
	for _, seg := range prog.Segments {
		end := seg.VirtAddr + seg.MemSize
		if end > prog.ExitPoint {
			prog.ExitPoint = end
		}
	}
	prog.HasExitPoint = len(prog.Segments) > 0

	return prog, nil
}

// coalesceBytes groups a sparse address->byte map into contiguous segments,
// since Intel-hex records may arrive out of order and with gaps.
func coalesceBytes(bytesByAddr map[uint64]byte) []Segment {
	if len(bytesByAddr) == 0 {
		return nil
	}

	addrs := make([]uint64, 0, len(bytesByAddr))
	for a := range bytesByAddr {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var segs []Segment
	start := addrs[0]
	data := []byte{bytesByAddr[start]}
	prev := start

	for _, a := range addrs[1:] {
		if a == prev+1 {
			data = append(data, bytesByAddr[a])
			prev = a
			continue
		}
		segs = append(segs, Segment{
			VirtAddr: start,
			Data:     data,
			MemSize:  uint64(len(data)),
			Flags:    SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		})
		start = a
		data = []byte{bytesByAddr[a]}
		prev = a
	}
	segs = append(segs, Segment{
		VirtAddr: start,
		Data:     data,
		MemSize:  uint64(len(data)),
		Flags:    SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
	})

	return segs
}
