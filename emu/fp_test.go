package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvcore/emu"
	"github.com/sarchlab/rvcore/insts"
)

var _ = Describe("Floating-point unit", func() {
	var h *emu.Hart

	BeforeEach(func() {
		h = emu.NewHart()
	})

	It("executes FADD.D at round-to-nearest-even", func() {
		h.FPRegs().WriteDouble(1, 1.5)
		h.FPRegs().WriteDouble(2, 2.25)
		h.ExecFPForTest(&insts.Instruction{
			Op: insts.OpFADDD, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2, RM: insts.RNE,
		})
		Expect(h.FPRegs().ReadDouble(3)).To(Equal(3.75))
	})

	It("executes FMUL.D", func() {
		h.FPRegs().WriteDouble(1, 3)
		h.FPRegs().WriteDouble(2, 4)
		h.ExecFPForTest(&insts.Instruction{
			Op: insts.OpFMULD, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2, RM: insts.RNE,
		})
		Expect(h.FPRegs().ReadDouble(3)).To(Equal(12.0))
	})

	It("executes FDIV.D", func() {
		h.FPRegs().WriteDouble(1, 10)
		h.FPRegs().WriteDouble(2, 4)
		h.ExecFPForTest(&insts.Instruction{
			Op: insts.OpFDIVD, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2, RM: insts.RNE,
		})
		Expect(h.FPRegs().ReadDouble(3)).To(Equal(2.5))
	})

	It("executes FSQRT.D", func() {
		h.FPRegs().WriteDouble(1, 16)
		h.ExecFPForTest(&insts.Instruction{
			Op: insts.OpFSQRTD, Format: insts.FormatR, Rd: 2, Rs1: 1, RM: insts.RNE,
		})
		Expect(h.FPRegs().ReadDouble(2)).To(Equal(4.0))
	})

	It("FEQ.D reports equality", func() {
		h.FPRegs().WriteDouble(1, 1.0)
		h.FPRegs().WriteDouble(2, 1.0)
		h.ExecFPForTest(&insts.Instruction{
			Op: insts.OpFEQD, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
		})
		Expect(h.IntRegs().Read(3)).To(Equal(uint64(1)))
	})

	It("FLT.D reports a strict less-than", func() {
		h.FPRegs().WriteDouble(1, 1.0)
		h.FPRegs().WriteDouble(2, 2.0)
		h.ExecFPForTest(&insts.Instruction{
			Op: insts.OpFLTD, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
		})
		Expect(h.IntRegs().Read(3)).To(Equal(uint64(1)))
	})

	It("FMIN.D/FMAX.D select the correct operand", func() {
		h.FPRegs().WriteDouble(1, -1.0)
		h.FPRegs().WriteDouble(2, 3.0)
		h.ExecFPForTest(&insts.Instruction{
			Op: insts.OpFMIND, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
		})
		Expect(h.FPRegs().ReadDouble(3)).To(Equal(-1.0))

		h.ExecFPForTest(&insts.Instruction{
			Op: insts.OpFMAXD, Format: insts.FormatR, Rd: 4, Rs1: 1, Rs2: 2,
		})
		Expect(h.FPRegs().ReadDouble(4)).To(Equal(3.0))
	})

	It("loads and stores doubles via FLD/FSD", func() {
		h.Memory().WriteDouble(0x6000, 0)
		h.FPRegs().WriteDouble(1, 42.5)
		h.IntRegs().Write(2, 0x6000)
		h.ExecFPForTest(&insts.Instruction{Op: insts.OpFSD, Format: insts.FormatS, Rs1: 2, Rs2: 1})

		h.ExecFPForTest(&insts.Instruction{Op: insts.OpFLD, Format: insts.FormatI, Rd: 3, Rs1: 2})
		Expect(h.FPRegs().ReadDouble(3)).To(Equal(42.5))
	})
})
