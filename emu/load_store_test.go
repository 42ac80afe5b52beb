package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvcore/emu"
	"github.com/sarchlab/rvcore/insts"
)

var _ = Describe("Load/store unit", func() {
	var h *emu.Hart

	BeforeEach(func() {
		h = emu.NewHart()
	})

	It("sign-extends LB", func() {
		h.Memory().WriteByte(0x1000, 0xFF)
		h.IntRegs().Write(1, 0x1000)
		h.ExecLoadForTest(&insts.Instruction{Op: insts.OpLB, Format: insts.FormatI, Rd: 2, Rs1: 1})
		Expect(int64(h.IntRegs().Read(2))).To(Equal(int64(-1)))
	})

	It("zero-extends LBU", func() {
		h.Memory().WriteByte(0x1000, 0xFF)
		h.IntRegs().Write(1, 0x1000)
		h.ExecLoadForTest(&insts.Instruction{Op: insts.OpLBU, Format: insts.FormatI, Rd: 2, Rs1: 1})
		Expect(h.IntRegs().Read(2)).To(Equal(uint64(0xFF)))
	})

	It("loads a double word with LD", func() {
		h.Memory().WriteDouble(0x2000, 0x0102030405060708)
		h.IntRegs().Write(1, 0x2000)
		h.ExecLoadForTest(&insts.Instruction{Op: insts.OpLD, Format: insts.FormatI, Rd: 2, Rs1: 1})
		Expect(h.IntRegs().Read(2)).To(Equal(uint64(0x0102030405060708)))
	})

	It("raises a misaligned-load exception for an unaligned LW", func() {
		h.IntRegs().Write(1, 0x1001)
		h.ExecLoadForTest(&insts.Instruction{Op: insts.OpLW, Format: insts.FormatI, Rd: 2, Rs1: 1})
		cause, tval, pending := h.ExceptionPendingForTest()
		Expect(pending).To(BeTrue())
		Expect(cause).To(Equal(uint64(emu.CauseLoadAddrMisaligned)))
		Expect(tval).To(Equal(uint64(0x1001)))
	})

	It("stores and reloads a word with SW/LW", func() {
		h.IntRegs().Write(1, 0x3000)
		h.IntRegs().Write(2, 0xCAFEBABE)
		h.ExecStoreForTest(&insts.Instruction{Op: insts.OpSW, Format: insts.FormatS, Rs1: 1, Rs2: 2})

		h.IntRegs().Write(3, 0x3000)
		h.ExecLoadForTest(&insts.Instruction{Op: insts.OpLWU, Format: insts.FormatI, Rd: 4, Rs1: 3})
		Expect(h.IntRegs().Read(4)).To(Equal(uint64(0xCAFEBABE)))
	})

	It("raises a misaligned-store exception for an unaligned SD", func() {
		h.IntRegs().Write(1, 0x1004)
		h.ExecStoreForTest(&insts.Instruction{Op: insts.OpSD, Format: insts.FormatS, Rs1: 1, Rs2: 2})
		cause, _, pending := h.ExceptionPendingForTest()
		Expect(pending).To(BeTrue())
		Expect(cause).To(Equal(uint64(emu.CauseStoreAddrMisaligned)))
	})
})
