package emu

import "github.com/sarchlab/rvcore/insts"

// Step advances the hart by exactly one instruction (or takes one trap/NMI
// in its place), implementing spec.md §4.5's run-loop body:
//
//  1. an already-latched NMI takes priority over everything else;
//  2. absent an NMI, a pending maskable interrupt (gated by MSTATUS.MIE and
//     MIE & MIP, spec.md §4.4.1) is taken instead of fetching;
//  3. the debug trigger engine is polled against the fetch address;
//  4. the instruction is fetched (compressed or 32-bit) and decoded;
//  5. the decoded opcode's category dispatches to the matching executor,
//     which either commits architectural state or raises a synchronous
//     exception via raiseException;
//  6. any raised exception takes a trap; otherwise the instruction retires:
//     pc advances (to the executor's computed target for control-flow ops,
//     currentPC+size otherwise), the retired-instruction counter and
//     statistics update gated by the MGPMC delay line, the cycle counter
//     advances unconditionally, and a trace record is emitted.
func (h *Hart) Step() StepResult {
	if h.nmiPending {
		h.takeNMI(h.nmiCause)
		return StepResult{Trapped: true}
	}

	if cause, fire := h.pendingInterrupt(); fire && !h.debugMode {
		h.takeTrap(cause, true, 0, h.pc)
		if h.countersEnabled() {
			h.stats.RecordEvent(EventExternalInterrupt)
		}
		return StepResult{Trapped: true}
	}

	if fired, enterDebug := h.triggers.CheckAddress(h.pc); fired {
		if enterDebug {
			h.enterDebugMode()
			return StepResult{Stopped: false, Trapped: false}
		}
		h.takeTrap(CauseBreakpoint, false, h.pc, h.pc)
		return StepResult{Trapped: true}
	}

	h.currentPC = h.pc
	word, size := h.fetch(h.pc)
	if size == 0 {
		h.takeTrap(CauseInstAccessFault, false, h.pc, h.pc)
		return StepResult{Trapped: true}
	}

	if fired, enterDebug := h.triggers.CheckOpcode(word); fired {
		if enterDebug {
			h.enterDebugMode()
			return StepResult{}
		}
		h.takeTrap(CauseBreakpoint, false, h.pc, h.pc)
		return StepResult{Trapped: true}
	}

	inst := h.decoder.Decode(word, h.xlen, h.enabledExtensions)
	if !inst.IsLegal() {
		h.takeTrap(CauseIllegalInstruction, false, uint64(word), h.pc)
		if h.countersEnabled() {
			h.stats.RecordEvent(EventException)
		}
		h.consecutiveIllegal++
		return StepResult{Trapped: true}
	}
	h.consecutiveIllegal = 0

	h.retireSourceReads(inst)

	nextPC := h.currentPC + uint64(inst.Size)
	h.dispatch(inst, &nextPC)

	if (inst.Category == insts.CategoryBranch || inst.Category == insts.CategoryJump) && !h.exceptionPending {
		align := uint64(4)
		if h.enabledExtensions.Has(insts.ExtC) {
			align = 2
		}
		if nextPC%align != 0 {
			h.raiseException(CauseInstAddrMisaligned, nextPC)
		}
	}

	if h.exceptionPending {
		cause, tval := h.exceptionCause, h.exceptionTval
		h.clearException()
		h.takeTrap(cause, false, tval, h.currentPC)
		h.recordRetireStats(inst)
		if h.countersEnabled() {
			h.stats.RecordEvent(EventException)
		}
		h.clearTraceData()
		return StepResult{Trapped: true}
	}

	h.pc = nextPC

	if h.countersEnabled() {
		h.retiredInsts++
	}
	h.cycleCount++
	h.recordRetireStats(inst)
	h.advanceGPMC()

	if h.traceSink != nil {
		h.emitTrace(inst)
	}
	h.clearTraceData()

	if h.pendingStop {
		h.pendingStop = false
		return StepResult{Stopped: true, Success: h.pendingStopSuccess, ExitCode: h.pendingExitCode}
	}
	if h.hasExitPoint && h.pc == h.exitPoint {
		return StepResult{Exited: true, ExitCode: 0}
	}

	return StepResult{Success: true}
}

// enterDebugMode implements the trigger engine's "enter debug mode" action:
// control parks at DPC until an external debugger resumes it. Nothing else
// in this core drives debug-mode exit; it's left to the host tool.
func (h *Hart) enterDebugMode() {
	h.debugMode = true
	h.csrs.Poke(CSRDPC, h.pc)
}

func (h *Hart) retireSourceReads(inst *insts.Instruction) {
	if !h.loadQueueEnabled {
		return
	}
	switch inst.Format {
	case insts.FormatR, insts.FormatS, insts.FormatB, insts.FormatR4, insts.FormatAMO:
		if inst.Rs1 != 0 {
			h.loadQueue.RemoveYoungestMatchingReg(inst.Rs1)
		}
		if inst.Rs2 != 0 {
			h.loadQueue.RemoveYoungestMatchingReg(inst.Rs2)
		}
	case insts.FormatI, insts.FormatCSR:
		if inst.Rs1 != 0 {
			h.loadQueue.RemoveYoungestMatchingReg(inst.Rs1)
		}
	}
}

func (h *Hart) recordRetireStats(inst *insts.Instruction) {
	if !h.countersEnabled() {
		return
	}
	h.stats.RecordInstruction(inst)
	h.stats.RecordEvent(EventInstCommitted)
	if inst.Size == 2 {
		h.stats.RecordEvent(EventInst16Committed)
	} else {
		h.stats.RecordEvent(EventInst32Committed)
	}
	switch inst.Category {
	case insts.CategoryBranch:
		h.stats.RecordEvent(EventBranch)
		if h.lastBranchTaken {
			h.stats.RecordEvent(EventBranchTaken)
		}
	case insts.CategoryMultiply:
		h.stats.RecordEvent(EventMul)
	case insts.CategoryDivide:
		h.stats.RecordEvent(EventDiv)
	case insts.CategoryLoad:
		h.stats.RecordEvent(EventLoad)
	case insts.CategoryStore:
		h.stats.RecordEvent(EventStore)
	case insts.CategoryAtomic:
		switch inst.Op {
		case insts.OpLRW, insts.OpLRD:
			h.stats.RecordEvent(EventLr)
		case insts.OpSCW, insts.OpSCD:
			h.stats.RecordEvent(EventSc)
		default:
			h.stats.RecordEvent(EventAtomic)
		}
	case insts.CategoryCSR:
		switch inst.Op {
		case insts.OpCSRRW, insts.OpCSRRWI:
			h.stats.RecordEvent(EventCsrReadWrite)
		case insts.OpCSRRS, insts.OpCSRRSI:
			h.stats.RecordEvent(EventCsrRead)
		case insts.OpCSRRC, insts.OpCSRRCI:
			h.stats.RecordEvent(EventCsrRead)
		}
	case insts.CategoryFence:
		if inst.Op == insts.OpFENCEI {
			h.stats.RecordEvent(EventFencei)
		} else {
			h.stats.RecordEvent(EventFence)
		}
	case insts.CategorySystem:
		switch inst.Op {
		case insts.OpECALL:
			h.stats.RecordEvent(EventEcall)
		case insts.OpEBREAK:
			h.stats.RecordEvent(EventEbreak)
		case insts.OpMRET:
			h.stats.RecordEvent(EventMret)
		}
	default:
		h.stats.RecordEvent(EventAlu)
	}
}

// fetch reads one instruction word from pc, handling the compressed-or-32-bit
// decision by first reading a half-word and inspecting its low 2 bits.
func (h *Hart) fetch(pc uint64) (word uint32, size uint8) {
	lo, ok := h.mem.ReadInstHalf(pc)
	if !ok {
		return 0, 0
	}
	if lo&0x3 != 0x3 {
		return uint32(lo), 2
	}
	hi, ok := h.mem.ReadInstHalf(pc + 2)
	if !ok {
		return 0, 0
	}
	return uint32(lo) | uint32(hi)<<16, 4
}

// dispatch routes a decoded instruction to its category executor. Control-
// flow ops overwrite *nextPC with their computed target.
func (h *Hart) dispatch(inst *insts.Instruction, nextPC *uint64) {
	switch inst.Category {
	case insts.CategoryBranch:
		target, _ := h.execBranch(inst)
		*nextPC = target
	case insts.CategoryJump:
		if inst.Op == insts.OpJAL {
			*nextPC = h.execJAL(inst)
		} else {
			*nextPC = h.execJALR(inst)
		}
	case insts.CategoryLoad:
		h.execLoad(inst)
	case insts.CategoryStore:
		h.execStore(inst)
	case insts.CategoryAtomic:
		h.execAtomic(inst)
	case insts.CategoryFP:
		h.execFP(inst)
	case insts.CategorySystem, insts.CategoryCSR:
		h.execSystem(inst)
		if inst.Op == insts.OpMRET || inst.Op == insts.OpSRET || inst.Op == insts.OpURET {
			*nextPC = h.pc
		}
	case insts.CategoryFence:
		// execSystem: FENCE clears both speculation queues and the LR
		// reservation; FENCE.I is a no-op
		h.execSystem(inst)
	default:
		h.execInteger(inst)
	}
}

func (h *Hart) emitTrace(inst *insts.Instruction) {
	rec := h.buildTraceRecord(inst)
	h.traceSink.Emit(rec)
}

// clearTraceData resets every register file's and the CSR file's per-step
// dirty tracking, whether or not a trace sink consumed it this step.
func (h *Hart) clearTraceData() {
	h.intRegs.ClearTraceData()
	h.fpRegs.ClearTraceData()
	h.customRegs.ClearTraceData()
	h.csrs.ClearLastWritten()
}
