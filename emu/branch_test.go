package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvcore/emu"
	"github.com/sarchlab/rvcore/insts"
)

var _ = Describe("Branch/jump unit", func() {
	var h *emu.Hart

	BeforeEach(func() {
		h = emu.NewHart()
		h.SetCurrentPCForTest(0x1000)
	})

	It("takes BEQ when operands are equal", func() {
		h.IntRegs().Write(1, 5)
		h.IntRegs().Write(2, 5)
		target, taken := h.ExecBranchForTest(&insts.Instruction{
			Op: insts.OpBEQ, Format: insts.FormatB, Rs1: 1, Rs2: 2, Imm: 0x20, Size: 4,
		})
		Expect(taken).To(BeTrue())
		Expect(target).To(Equal(uint64(0x1020)))
	})

	It("does not take BEQ when operands differ, falling through by Size", func() {
		h.IntRegs().Write(1, 5)
		h.IntRegs().Write(2, 6)
		target, taken := h.ExecBranchForTest(&insts.Instruction{
			Op: insts.OpBEQ, Format: insts.FormatB, Rs1: 1, Rs2: 2, Imm: 0x20, Size: 4,
		})
		Expect(taken).To(BeFalse())
		Expect(target).To(Equal(uint64(0x1004)))
	})

	It("compares BLT as signed", func() {
		h.IntRegs().Write(1, uint64(int64(-1)))
		h.IntRegs().Write(2, 1)
		_, taken := h.ExecBranchForTest(&insts.Instruction{
			Op: insts.OpBLT, Format: insts.FormatB, Rs1: 1, Rs2: 2, Imm: 8, Size: 4,
		})
		Expect(taken).To(BeTrue())
	})

	It("compares BLTU as unsigned", func() {
		h.IntRegs().Write(1, uint64(int64(-1)))
		h.IntRegs().Write(2, 1)
		_, taken := h.ExecBranchForTest(&insts.Instruction{
			Op: insts.OpBLTU, Format: insts.FormatB, Rs1: 1, Rs2: 2, Imm: 8, Size: 4,
		})
		Expect(taken).To(BeFalse())
	})

	It("executes JAL, linking Rd and jumping to currentPC+imm", func() {
		target := h.ExecJALForTest(&insts.Instruction{
			Op: insts.OpJAL, Format: insts.FormatJ, Rd: 1, Imm: 0x100, Size: 4,
		})
		Expect(target).To(Equal(uint64(0x1100)))
		Expect(h.IntRegs().Read(1)).To(Equal(uint64(0x1004)))
	})

	It("executes JALR, clearing bit 0 of the computed target", func() {
		h.IntRegs().Write(2, 0x2001)
		target := h.ExecJALRForTest(&insts.Instruction{
			Op: insts.OpJALR, Format: insts.FormatI, Rd: 1, Rs1: 2, Imm: 4, Size: 4,
		})
		Expect(target).To(Equal(uint64(0x2004)))
		Expect(h.IntRegs().Read(1)).To(Equal(uint64(0x1004)))
	})
})
