package emu

import "github.com/sarchlab/rvcore/insts"

func amoSize(op insts.Op) uint8 {
	switch op {
	case insts.OpLRW, insts.OpSCW, insts.OpAMOSWAPW, insts.OpAMOADDW, insts.OpAMOXORW,
		insts.OpAMOANDW, insts.OpAMOORW, insts.OpAMOMINW, insts.OpAMOMAXW,
		insts.OpAMOMINUW, insts.OpAMOMAXUW:
		return 4
	}
	return 8
}

// execAtomic executes LR/SC and the AMO read-modify-write ops. Atomics are
// serialized against the load/store queues: they complete synchronously and
// bypass speculation (spec.md §5's concurrency note -- a single hart gives
// atomics no actual concurrent hazard to model, so they simply perform the
// read-modify-write and, for non-DCCM addresses, still feed the store
// queue's rollback bookkeeping for the write half).
func (h *Hart) execAtomic(inst *insts.Instruction) {
	addr := h.intRegs.Read(inst.Rs1)
	size := amoSize(inst.Op)

	if addr%uint64(size) != 0 {
		h.raiseException(CauseStoreAddrMisaligned, addr)
		return
	}

	switch inst.Op {
	case insts.OpLRW, insts.OpLRD:
		old, _ := h.readMemSized(addr, size)
		h.writeIntResult(inst.Rd, uint64(signExtendLoaded(old, size)))
		h.hasLR = true
		h.lrAddr = addr
		h.lrSize = size
		return
	case insts.OpSCW, insts.OpSCD:
		if h.hasLR && h.lrAddr == addr && h.lrSize == size {
			val := h.intRegs.Read(inst.Rs2)
			h.storeAtomic(addr, size, val)
			h.writeIntResult(inst.Rd, 0)
		} else {
			h.writeIntResult(inst.Rd, 1)
		}
		h.hasLR = false
		return
	}

	h.hasLR = false

	old, _ := h.readMemSized(addr, size)
	oldSigned := signExtendLoaded(old, size)
	rs2 := h.intRegs.Read(inst.Rs2)

	var result uint64
	switch inst.Op {
	case insts.OpAMOSWAPW, insts.OpAMOSWAPD:
		result = rs2
	case insts.OpAMOADDW, insts.OpAMOADDD:
		result = old + rs2
	case insts.OpAMOXORW, insts.OpAMOXORD:
		result = old ^ rs2
	case insts.OpAMOANDW, insts.OpAMOANDD:
		result = old & rs2
	case insts.OpAMOORW, insts.OpAMOORD:
		result = old | rs2
	case insts.OpAMOMINW, insts.OpAMOMIND:
		result = uint64(minInt(oldSigned, signExtendLoaded(rs2, size)))
	case insts.OpAMOMAXW, insts.OpAMOMAXD:
		result = uint64(maxInt(oldSigned, signExtendLoaded(rs2, size)))
	case insts.OpAMOMINUW, insts.OpAMOMINUD:
		result = minUint(truncate(old, size), truncate(rs2, size))
	case insts.OpAMOMAXUW, insts.OpAMOMAXUD:
		result = maxUint(truncate(old, size), truncate(rs2, size))
	}

	h.storeAtomic(addr, size, result)
	h.writeIntResult(inst.Rd, uint64(signExtendLoaded(old, size)))
}

func (h *Hart) storeAtomic(addr uint64, size uint8, value uint64) {
	var old uint64
	if h.storeQueueEnabled {
		old, _ = h.readMemSized(addr, size)
	}
	h.writeMemSized(addr, size, value)
	if h.storeQueueEnabled && !h.mem.IsAddrInDCCM(addr) {
		h.storeQueue.Push(StoreEntry{Size: size, Addr: addr, NewValue: value, OldValue: old})
	}
}

func signExtendLoaded(v uint64, size uint8) int64 {
	if size == 4 {
		return int64(int32(uint32(v)))
	}
	return int64(v)
}

func truncate(v uint64, size uint8) uint64 {
	if size == 4 {
		return uint64(uint32(v))
	}
	return v
}
