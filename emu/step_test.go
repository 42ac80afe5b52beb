package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvcore/emu"
	"github.com/sarchlab/rvcore/insts"
)

// encodeI builds an I-format instruction word: imm[11:0] rs1 funct3 rd opcode.
func encodeI(imm int32, rs1, funct3, rd uint8, opcode uint32) uint32 {
	return uint32(imm)<<20 | uint32(rs1)<<15 | uint32(funct3)<<12 | uint32(rd)<<7 | opcode
}

var _ = Describe("Step", func() {
	var h *emu.Hart

	BeforeEach(func() {
		h = emu.NewHart()
	})

	It("retires ADDI and advances pc by the instruction size", func() {
		addi := encodeI(5, 0, 0, 1, 0x13) // addi x1, x0, 5
		h.Memory().WriteWord(0, addi)
		h.SetPC(0)

		res := h.Step()
		Expect(res.Success).To(BeTrue())
		Expect(res.Trapped).To(BeFalse())
		Expect(h.IntRegs().Read(1)).To(Equal(uint64(5)))
		Expect(h.PC()).To(Equal(uint64(4)))
	})

	It("takes a trap to mtvec on ECALL and sets mcause/mepc", func() {
		// set mtvec to 0x8000 via CSRRWI
		h.ExecSystemForTest(&insts.Instruction{
			Op: insts.OpCSRRWI, Format: insts.FormatI, Rd: 0, Rs1: 16, Csr: emu.CSRMTVec,
		})

		ecall := encodeI(0, 0, 0, 0, 0x73)
		h.Memory().WriteWord(0x100, ecall)
		h.SetPC(0x100)

		res := h.Step()
		Expect(res.Trapped).To(BeTrue())
		Expect(h.PC()).To(Equal(uint64(16)))
	})

	It("reports Exited when pc reaches the configured exit point", func() {
		nop := encodeI(0, 0, 0, 0, 0x13) // addi x0, x0, 0
		h = emu.NewHart(emu.WithExitPoint(4))
		h.Memory().WriteWord(0, nop)
		h.SetPC(0)

		res := h.Step()
		Expect(res.Exited).To(BeTrue())
	})

	It("raises an illegal-instruction trap for an unrecognized word", func() {
		h.Memory().WriteWord(0, 0xFFFFFFFF)
		h.SetPC(0)

		res := h.Step()
		Expect(res.Trapped).To(BeTrue())
	})
})
