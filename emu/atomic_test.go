package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvcore/emu"
	"github.com/sarchlab/rvcore/insts"
)

var _ = Describe("Atomic unit", func() {
	var h *emu.Hart

	BeforeEach(func() {
		h = emu.NewHart()
	})

	It("LR.D loads and records a reservation", func() {
		h.Memory().WriteDouble(0x4000, 7)
		h.IntRegs().Write(1, 0x4000)
		h.ExecAtomicForTest(&insts.Instruction{Op: insts.OpLRD, Format: insts.FormatR, Rd: 2, Rs1: 1})
		Expect(h.IntRegs().Read(2)).To(Equal(uint64(7)))
	})

	It("SC.D succeeds against a matching reservation and clears it", func() {
		h.Memory().WriteDouble(0x4000, 7)
		h.IntRegs().Write(1, 0x4000)
		h.ExecAtomicForTest(&insts.Instruction{Op: insts.OpLRD, Format: insts.FormatR, Rd: 2, Rs1: 1})

		h.IntRegs().Write(3, 99)
		h.ExecAtomicForTest(&insts.Instruction{Op: insts.OpSCD, Format: insts.FormatR, Rd: 4, Rs1: 1, Rs2: 3})
		Expect(h.IntRegs().Read(4)).To(Equal(uint64(0)))

		v, _ := h.Memory().ReadDouble(0x4000)
		Expect(v).To(Equal(uint64(99)))
	})

	It("SC.D fails without a prior LR", func() {
		h.IntRegs().Write(1, 0x4000)
		h.IntRegs().Write(3, 99)
		h.ExecAtomicForTest(&insts.Instruction{Op: insts.OpSCD, Format: insts.FormatR, Rd: 4, Rs1: 1, Rs2: 3})
		Expect(h.IntRegs().Read(4)).To(Equal(uint64(1)))
	})

	It("AMOADD.D adds and returns the prior value", func() {
		h.Memory().WriteDouble(0x5000, 10)
		h.IntRegs().Write(1, 0x5000)
		h.IntRegs().Write(2, 5)
		h.ExecAtomicForTest(&insts.Instruction{Op: insts.OpAMOADDD, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2})
		Expect(h.IntRegs().Read(3)).To(Equal(uint64(10)))

		v, _ := h.Memory().ReadDouble(0x5000)
		Expect(v).To(Equal(uint64(15)))
	})

	It("raises a misaligned exception for an unaligned AMOSWAP.W", func() {
		h.IntRegs().Write(1, 0x5001)
		h.ExecAtomicForTest(&insts.Instruction{Op: insts.OpAMOSWAPW, Format: insts.FormatR, Rd: 2, Rs1: 1, Rs2: 3})
		cause, _, pending := h.ExceptionPendingForTest()
		Expect(pending).To(BeTrue())
		Expect(cause).To(Equal(uint64(emu.CauseStoreAddrMisaligned)))
	})
})
