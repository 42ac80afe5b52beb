package emu

import "github.com/sarchlab/rvcore/insts"

// execSystem executes the SYSTEM-opcode instructions: ECALL/EBREAK, the
// xRET family, WFI, FENCE/FENCE.I, and the six CSR instructions.
func (h *Hart) execSystem(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpECALL:
		h.raiseException(ecallCause(h.privilege), 0)
	case insts.OpEBREAK:
		h.raiseException(CauseBreakpoint, h.currentPC)
	case insts.OpMRET:
		h.execMRET()
	case insts.OpSRET:
		h.execSRET()
	case insts.OpURET:
		h.execURET()
	case insts.OpWFI:
		// A hosted, instruction-accurate core has no idle/low-power state
		// to model; WFI simply retires as a no-op.
	case insts.OpFENCEI:
		// No instruction cache is modeled, so FENCE.I is a no-op.
	case insts.OpFENCE:
		h.loadQueue.Clear()
		h.storeQueue.Clear()
		h.hasLR = false
	case insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC, insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
		h.execCSR(inst)
	}
}

func ecallCause(priv Privilege) uint64 {
	switch priv {
	case PrivMachine:
		return CauseECallFromM
	case PrivSupervisor:
		return CauseECallFromS
	default:
		return CauseECallFromU
	}
}

// execCSR implements the six CSRRx instructions per spec.md §4.4's CSR
// description: a read always occurs (observable even when Rd is x0, except
// that a same-cycle RS/RC with rs1==x0 or RSI/RCI with a zero immediate
// performs no write), followed by an optional read-modify-write.
func (h *Hart) execCSR(inst *insts.Instruction) {
	var writeVal uint64
	var doWrite bool

	var operand uint64
	switch inst.Op {
	case insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
		operand = uint64(inst.Rs1)
	default:
		operand = h.intRegs.Read(inst.Rs1)
	}

	old, ok := h.csrs.Read(inst.Csr, h.privilege, h.debugMode)
	if !ok {
		h.raiseException(CauseIllegalInstruction, uint64(inst.Raw))
		return
	}

	switch inst.Op {
	case insts.OpCSRRW, insts.OpCSRRWI:
		writeVal = operand
		doWrite = true
	case insts.OpCSRRS, insts.OpCSRRSI:
		if operand != 0 {
			writeVal = old | operand
			doWrite = true
		}
	case insts.OpCSRRC, insts.OpCSRRCI:
		if operand != 0 {
			writeVal = old &^ operand
			doWrite = true
		}
	}

	if doWrite {
		if !h.csrs.Write(inst.Csr, h.privilege, h.debugMode, writeVal) {
			h.raiseException(CauseIllegalInstruction, uint64(inst.Raw))
			return
		}
	}

	h.writeIntResult(inst.Rd, old)
}
