package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvcore/emu"
	"github.com/sarchlab/rvcore/insts"
)

var _ = Describe("Integer ALU", func() {
	var h *emu.Hart

	BeforeEach(func() {
		h = emu.NewHart()
	})

	It("executes ADD", func() {
		h.IntRegs().Write(1, 10)
		h.IntRegs().Write(2, 32)
		h.ExecIntegerForTest(&insts.Instruction{
			Op: insts.OpADD, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
		})
		Expect(h.IntRegs().Read(3)).To(Equal(uint64(42)))
	})

	It("executes ADDI with a negative immediate", func() {
		h.IntRegs().Write(1, 10)
		h.ExecIntegerForTest(&insts.Instruction{
			Op: insts.OpADDI, Format: insts.FormatI, Rd: 2, Rs1: 1, Imm: -3,
		})
		Expect(h.IntRegs().Read(2)).To(Equal(uint64(7)))
	})

	It("never writes to x0", func() {
		h.IntRegs().Write(1, 10)
		h.ExecIntegerForTest(&insts.Instruction{
			Op: insts.OpADDI, Format: insts.FormatI, Rd: 0, Rs1: 1, Imm: 5,
		})
		Expect(h.IntRegs().Read(0)).To(Equal(uint64(0)))
	})

	It("computes SLT as a signed comparison", func() {
		h.IntRegs().Write(1, ^uint64(0)) // -1
		h.IntRegs().Write(2, 1)
		h.ExecIntegerForTest(&insts.Instruction{
			Op: insts.OpSLT, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
		})
		Expect(h.IntRegs().Read(3)).To(Equal(uint64(1)))
	})

	It("computes SLTU as an unsigned comparison", func() {
		h.IntRegs().Write(1, ^uint64(0)) // huge unsigned
		h.IntRegs().Write(2, 1)
		h.ExecIntegerForTest(&insts.Instruction{
			Op: insts.OpSLTU, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
		})
		Expect(h.IntRegs().Read(3)).To(Equal(uint64(0)))
	})

	It("sign-extends SRA", func() {
		negEight := int64(-8)
		h.IntRegs().Write(1, uint64(negEight))
		h.ExecIntegerForTest(&insts.Instruction{
			Op: insts.OpSRAI, Format: insts.FormatI, Rd: 2, Rs1: 1, Shamt: 1,
		})
		Expect(int64(h.IntRegs().Read(2))).To(Equal(int64(-4)))
	})

	Describe("M extension", func() {
		It("computes MUL as the low xlen bits of the product", func() {
			h.IntRegs().Write(1, 6)
			h.IntRegs().Write(2, 7)
			h.ExecIntegerForTest(&insts.Instruction{
				Op: insts.OpMUL, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
			})
			Expect(h.IntRegs().Read(3)).To(Equal(uint64(42)))
		})

		It("DIV by zero returns all-bits-set", func() {
			h.IntRegs().Write(1, 42)
			h.IntRegs().Write(2, 0)
			h.ExecIntegerForTest(&insts.Instruction{
				Op: insts.OpDIV, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
			})
			Expect(h.IntRegs().Read(3)).To(Equal(^uint64(0)))
		})

		It("REM by zero returns the dividend", func() {
			h.IntRegs().Write(1, 42)
			h.IntRegs().Write(2, 0)
			h.ExecIntegerForTest(&insts.Instruction{
				Op: insts.OpREM, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
			})
			Expect(h.IntRegs().Read(3)).To(Equal(uint64(42)))
		})

		It("DIV of INT_MIN by -1 returns INT_MIN without trapping", func() {
			h.IntRegs().Write(1, uint64(int64(-1)<<63))
			h.IntRegs().Write(2, uint64(int64(-1)))
			h.ExecIntegerForTest(&insts.Instruction{
				Op: insts.OpDIV, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
			})
			Expect(h.IntRegs().Read(3)).To(Equal(uint64(int64(-1) << 63)))
		})
	})

	Describe("bit-manipulation subset", func() {
		It("computes CLZ", func() {
			h.IntRegs().Write(1, 1)
			h.ExecIntegerForTest(&insts.Instruction{
				Op: insts.OpCLZ, Format: insts.FormatI, Rd: 2, Rs1: 1,
			})
			Expect(h.IntRegs().Read(2)).To(Equal(uint64(63)))
		})

		It("computes ANDN", func() {
			h.IntRegs().Write(1, 0xFF)
			h.IntRegs().Write(2, 0x0F)
			h.ExecIntegerForTest(&insts.Instruction{
				Op: insts.OpANDN, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
			})
			Expect(h.IntRegs().Read(3)).To(Equal(uint64(0xF0)))
		})

		It("computes MAX/MIN", func() {
			h.IntRegs().Write(1, uint64(int64(-5)))
			h.IntRegs().Write(2, 3)
			h.ExecIntegerForTest(&insts.Instruction{
				Op: insts.OpMAX, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
			})
			Expect(int64(h.IntRegs().Read(3))).To(Equal(int64(3)))
		})
	})

	Describe("LUI/AUIPC", func() {
		It("LUI loads the immediate into the upper bits", func() {
			h.ExecIntegerForTest(&insts.Instruction{
				Op: insts.OpLUI, Format: insts.FormatU, Rd: 1, Imm: 0x12345000,
			})
			Expect(h.IntRegs().Read(1)).To(Equal(uint64(0x12345000)))
		})

		It("AUIPC adds the immediate to the current pc", func() {
			h.SetCurrentPCForTest(0x1000)
			h.ExecIntegerForTest(&insts.Instruction{
				Op: insts.OpAUIPC, Format: insts.FormatU, Rd: 1, Imm: 0x2000,
			})
			Expect(h.IntRegs().Read(1)).To(Equal(uint64(0x3000)))
		})
	})
})
