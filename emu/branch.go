package emu

import "github.com/sarchlab/rvcore/insts"

// execBranch executes BEQ/BNE/BLT/BGE/BLTU/BGEU: compares Rs1/Rs2 and, if
// taken, redirects pc to currentPC+imm. Misaligned branch targets (when C is
// disabled, 4-byte alignment is required) raise CauseInstAddrMisaligned via
// the caller's step loop, not here -- this only computes the target and
// whether the branch was taken.
func (h *Hart) execBranch(inst *insts.Instruction) (target uint64, taken bool) {
	rs1 := h.intRegs.Read(inst.Rs1)
	rs2 := h.intRegs.Read(inst.Rs2)

	switch inst.Op {
	case insts.OpBEQ:
		taken = rs1 == rs2
	case insts.OpBNE:
		taken = rs1 != rs2
	case insts.OpBLT:
		taken = signExtendXLen(rs1, h.xlen) < signExtendXLen(rs2, h.xlen)
	case insts.OpBGE:
		taken = signExtendXLen(rs1, h.xlen) >= signExtendXLen(rs2, h.xlen)
	case insts.OpBLTU:
		taken = maskXLen(rs1, h.xlen) < maskXLen(rs2, h.xlen)
	case insts.OpBGEU:
		taken = maskXLen(rs1, h.xlen) >= maskXLen(rs2, h.xlen)
	}

	h.lastBranchTaken = taken
	if taken {
		target = h.currentPC + uint64(inst.Imm)
	} else {
		target = h.currentPC + uint64(inst.Size)
	}
	return target, taken
}

// execJAL writes the link address into Rd and returns the jump target.
func (h *Hart) execJAL(inst *insts.Instruction) (target uint64) {
	h.writeIntResult(inst.Rd, h.currentPC+uint64(inst.Size))
	return h.currentPC + uint64(inst.Imm)
}

// execJALR writes the link address into Rd and returns the jump target, with
// bit 0 of the computed address cleared per the ISA's JALR semantics.
func (h *Hart) execJALR(inst *insts.Instruction) (target uint64) {
	base := h.intRegs.Read(inst.Rs1)
	linkPC := h.currentPC + uint64(inst.Size)
	target = (base + uint64(inst.Imm)) &^ 1
	h.writeIntResult(inst.Rd, linkPC)
	return target
}
