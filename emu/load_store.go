package emu

import "github.com/sarchlab/rvcore/insts"

func loadStoreSize(op insts.Op) uint8 {
	switch op {
	case insts.OpLB, insts.OpLBU, insts.OpSB:
		return 1
	case insts.OpLH, insts.OpLHU, insts.OpSH:
		return 2
	case insts.OpLW, insts.OpLWU, insts.OpSW, insts.OpFLW, insts.OpFSW:
		return 4
	case insts.OpLD, insts.OpSD, insts.OpFLD, insts.OpFSD:
		return 8
	}
	return 0
}

// execLoad executes LB/LH/LW/LBU/LHU/LD/LWU. Misaligned accesses raise
// CauseLoadAddrMisaligned; the console-in address returns one byte from
// stdin instead of reaching memory (spec.md §6's console I/O protocol).
// When the load queue is enabled and the access falls outside DCCM, the
// load is recorded as an in-flight entry, per spec.md §4.4.2.
func (h *Hart) execLoad(inst *insts.Instruction) {
	addr := h.intRegs.Read(inst.Rs1) + uint64(inst.Imm)
	size := loadStoreSize(inst.Op)

	if size > 1 && addr%uint64(size) != 0 {
		h.raiseException(CauseLoadAddrMisaligned, addr)
		return
	}

	if h.hasConsoleIO && addr == h.consoleIOAddr {
		h.writeIntResult(inst.Rd, uint64(h.readConsoleByte()))
		return
	}

	prev := h.intRegs.Read(inst.Rd)

	var raw uint64
	var ok bool
	switch inst.Op {
	case insts.OpLB:
		var v uint8
		v, ok = h.mem.ReadByte(addr)
		raw = uint64(int64(int8(v)))
	case insts.OpLBU:
		var v uint8
		v, ok = h.mem.ReadByte(addr)
		raw = uint64(v)
	case insts.OpLH:
		var v uint16
		v, ok = h.mem.ReadHalf(addr)
		raw = uint64(int64(int16(v)))
	case insts.OpLHU:
		var v uint16
		v, ok = h.mem.ReadHalf(addr)
		raw = uint64(v)
	case insts.OpLW:
		var v uint32
		v, ok = h.mem.ReadWord(addr)
		raw = uint64(int64(int32(v)))
	case insts.OpLWU:
		var v uint32
		v, ok = h.mem.ReadWord(addr)
		raw = uint64(v)
	case insts.OpLD:
		raw, ok = h.mem.ReadDouble(addr)
	}

	if !ok {
		h.raiseException(CauseLoadAccessFault, addr)
		return
	}

	h.writeIntResult(inst.Rd, raw)

	if h.loadQueueEnabled && !h.mem.IsAddrInDCCM(addr) && inst.Rd != 0 {
		h.loadQueue.Push(LoadEntry{
			Size:      size,
			Addr:      addr,
			TargetReg: inst.Rd,
			PrevValue: prev,
			Valid:     true,
		})
	}
}

// execStore executes SB/SH/SW/SD. The console-out address writes one byte to
// stdout instead of reaching memory. A non-DCCM store is recorded in the
// store queue for possible bus-error rollback (spec.md §4.4.2).
func (h *Hart) execStore(inst *insts.Instruction) {
	addr := h.intRegs.Read(inst.Rs1) + uint64(inst.Imm)
	size := loadStoreSize(inst.Op)
	value := h.intRegs.Read(inst.Rs2)

	if size > 1 && addr%uint64(size) != 0 {
		h.raiseException(CauseStoreAddrMisaligned, addr)
		return
	}

	if h.hasConsoleIO && addr == h.consoleIOAddr {
		h.stdout.Write([]byte{byte(value)})
		return
	}

	if h.hasToHost && addr == h.toHostAddr && value != 0 {
		h.handleToHost(value)
		return
	}

	if !h.mem.CheckWrite(addr, value) {
		h.raiseException(CauseStoreAccessFault, addr)
		return
	}

	var old uint64
	if h.loadQueueEnabled || h.storeQueueEnabled {
		old, _ = h.readMemSized(addr, size)
	}

	h.writeMemSized(addr, size, value)

	if h.hasLR && rangesOverlap(addr, size, h.lrAddr, h.lrSize) {
		h.hasLR = false
	}

	if h.storeQueueEnabled && !h.mem.IsAddrInDCCM(addr) {
		h.storeQueue.Push(StoreEntry{
			Size:     size,
			Addr:     addr,
			NewValue: value,
			OldValue: old,
		})
	}
}

// rangesOverlap reports whether [a, a+aSize) and [b, b+bSize) intersect.
func rangesOverlap(a uint64, aSize uint8, b uint64, bSize uint8) bool {
	return a < b+uint64(bSize) && b < a+uint64(aSize)
}

func (h *Hart) readMemSized(addr uint64, size uint8) (uint64, bool) {
	switch size {
	case 1:
		v, ok := h.mem.ReadByte(addr)
		return uint64(v), ok
	case 2:
		v, ok := h.mem.ReadHalf(addr)
		return uint64(v), ok
	case 4:
		v, ok := h.mem.ReadWord(addr)
		return uint64(v), ok
	case 8:
		return h.mem.ReadDouble(addr)
	}
	return 0, false
}

func (h *Hart) readConsoleByte() uint8 {
	var b [1]byte
	n, err := h.stdin.Read(b[:])
	if err != nil || n == 0 {
		return 0
	}
	return b[0]
}

// handleToHost implements spec.md §6's exit protocol for a non-zero write to
// tohost: a value of 1 stops the run successfully; any other value stops it
// with a failure exit code of value>>1.
func (h *Hart) handleToHost(value uint64) {
	h.pendingStop = true
	if value == 1 {
		h.pendingStopSuccess = true
		h.pendingExitCode = 0
	} else {
		h.pendingStopSuccess = false
		h.pendingExitCode = int(value >> 1)
	}
}
