package emu

import "github.com/sarchlab/rvcore/insts"

// This file exposes otherwise-unexported Hart methods to the emu_test
// black-box test package. It carries no behavior of its own.

func (h *Hart) ExecIntegerForTest(inst *insts.Instruction) { h.execInteger(inst) }

func (h *Hart) ExecBranchForTest(inst *insts.Instruction) (uint64, bool) { return h.execBranch(inst) }

func (h *Hart) ExecJALForTest(inst *insts.Instruction) uint64 { return h.execJAL(inst) }

func (h *Hart) ExecJALRForTest(inst *insts.Instruction) uint64 { return h.execJALR(inst) }

func (h *Hart) ExecLoadForTest(inst *insts.Instruction) { h.execLoad(inst) }

func (h *Hart) ExecStoreForTest(inst *insts.Instruction) { h.execStore(inst) }

func (h *Hart) ExecAtomicForTest(inst *insts.Instruction) { h.execAtomic(inst) }

func (h *Hart) ExecFPForTest(inst *insts.Instruction) { h.execFP(inst) }

func (h *Hart) ExecSystemForTest(inst *insts.Instruction) { h.execSystem(inst) }

func (h *Hart) SetCurrentPCForTest(pc uint64) { h.currentPC = pc }

func (h *Hart) ExceptionPendingForTest() (uint64, uint64, bool) {
	return h.exceptionCause, h.exceptionTval, h.exceptionPending
}

func (h *Hart) ClearExceptionForTest() { h.clearException() }
