package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvcore/insts"
)

const rv32 = insts.ExtensionSet(insts.ExtM | insts.ExtA | insts.ExtF | insts.ExtD | insts.ExtC | insts.ExtB)
const rv64 = insts.ExtensionSet(insts.ExtM | insts.ExtA | insts.ExtF | insts.ExtD | insts.ExtC | insts.ExtB)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("OP-IMM", func() {
		// addi x1, x0, 42
		It("should decode ADDI", func() {
			inst := decoder.Decode(0x02A00093, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int64(42)))
			Expect(inst.Format).To(Equal(insts.FormatI))
		})

		// addi x1, x0, -1
		It("should sign-extend a negative immediate", func() {
			inst := decoder.Decode(0xFFF00093, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Imm).To(Equal(int64(-1)))
		})

		// slli x1, x1, 5 (rv64 shamt is 6 bits)
		It("should decode SLLI with a 6-bit shamt on rv64", func() {
			inst := decoder.Decode(0x00509093, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpSLLI))
			Expect(inst.Shamt).To(Equal(uint8(5)))
		})

		// srai x1, x1, 5
		It("should distinguish SRAI from SRLI via the top immediate bits", func() {
			inst := decoder.Decode(0x4050D093, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpSRAI))
			Expect(inst.Shamt).To(Equal(uint8(5)))
		})
	})

	Describe("OP", func() {
		// add x3, x1, x2
		It("should decode ADD", func() {
			inst := decoder.Decode(0x002081B3, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Format).To(Equal(insts.FormatR))
		})

		// sub x3, x1, x2
		It("should decode SUB", func() {
			inst := decoder.Decode(0x402081B3, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpSUB))
		})

		// mul x3, x1, x2 (M extension)
		It("should decode MUL when the M extension is enabled", func() {
			inst := decoder.Decode(0x022081B3, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpMUL))
			Expect(inst.Category).To(Equal(insts.CategoryMultiply))
		})

		It("should reject MUL when the M extension is disabled", func() {
			inst := decoder.Decode(0x022081B3, 64, insts.ExtensionSet(0))

			Expect(inst.Op).To(Equal(insts.OpIllegal))
		})

		// andn x3, x1, x2 (minor bit-manip)
		It("should decode ANDN when the bit-manip extension is enabled", func() {
			inst := decoder.Decode(0x4020F1B3, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpANDN))
		})
	})

	Describe("LOAD/STORE", func() {
		// lw x5, 8(x1)
		It("should decode LW", func() {
			inst := decoder.Decode(0x0080A283, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int64(8)))
		})

		// sw x2, 4(x1)
		It("should decode SW", func() {
			inst := decoder.Decode(0x0020A223, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int64(4)))
		})

		// ld x1, 0(x2) requires rv64
		It("should reject LD on rv32", func() {
			inst := decoder.Decode(0x00013083, 32, rv32)

			Expect(inst.Op).To(Equal(insts.OpIllegal))
		})
	})

	Describe("BRANCH", func() {
		// beq x1, x2, 8
		It("should decode BEQ with a correctly reconstructed immediate", func() {
			inst := decoder.Decode(0x00208463, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int64(8)))
		})
	})

	Describe("JAL/JALR", func() {
		// jal x1, 256
		It("should decode JAL", func() {
			inst := decoder.Decode(0x100000EF, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int64(256)))
		})

		// jalr x0, 0(x1)
		It("should decode JALR", func() {
			inst := decoder.Decode(0x00008067, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int64(0)))
		})
	})

	Describe("LUI/AUIPC", func() {
		It("should decode LUI with the immediate already shifted into place", func() {
			inst := decoder.Decode(0x123450B7, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int64(0x12345000)))
		})
	})

	Describe("SYSTEM", func() {
		It("should decode ECALL", func() {
			inst := decoder.Decode(0x00000073, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpECALL))
		})

		It("should decode EBREAK", func() {
			inst := decoder.Decode(0x00100073, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpEBREAK))
		})

		It("should decode MRET", func() {
			inst := decoder.Decode(0x30200073, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpMRET))
		})

		// csrrw x1, mstatus, x2
		It("should decode CSRRW with the csr field and operands", func() {
			inst := decoder.Decode(0x300110F3, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpCSRRW))
			Expect(inst.Csr).To(Equal(uint16(0x300)))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Format).To(Equal(insts.FormatCSR))
		})
	})

	Describe("AMO", func() {
		// amoadd.w x3, x2, (x1)
		It("should decode AMOADD.W", func() {
			inst := decoder.Decode(0x0020A1AF, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpAMOADDW))
			Expect(inst.Category).To(Equal(insts.CategoryAtomic))
		})

		It("should reject AMO when the A extension is disabled", func() {
			inst := decoder.Decode(0x0020A1AF, 64, insts.ExtensionSet(0))

			Expect(inst.Op).To(Equal(insts.OpIllegal))
		})
	})

	Describe("Unknown/illegal encodings", func() {
		It("should mark the all-zero word as illegal", func() {
			inst := decoder.Decode(0x00000000, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpIllegal))
		})
	})

	Describe("Compressed instructions", func() {
		It("should expand C.NOP into ADDI x0, x0, 0", func() {
			inst := decoder.Decode(0x0001, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Size).To(Equal(uint8(2)))
		})

		It("should expand C.LI into ADDI rd, x0, imm", func() {
			inst := decoder.Decode(0x4095, 64, rv64)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int64(5)))
		})

		It("should reject a compressed word when C is disabled", func() {
			inst := decoder.Decode(0x0001, 64, insts.ExtensionSet(0))

			Expect(inst.Op).To(Equal(insts.OpIllegal))
			Expect(inst.Size).To(Equal(uint8(2)))
		})
	})
})
