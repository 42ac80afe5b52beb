package insts

// Compressed (RVC) instructions decode into the same Instruction shape as
// their 32-bit equivalents; decodeCompressed is the only place that knows
// about the 16-bit encoding. Register fields in the compressed quadrants 0
// and 1 are 3 bits wide and address x8-x15 only; decodeCReg adds the bias.

func decodeCReg(field uint16) uint8 {
	return uint8(field&0x7) + 8
}

// decodeCompressed expands a 16-bit instruction word into its equivalent
// Instruction. xlen gates the RV64-only forms the same way decode32 does for
// their uncompressed counterparts; the compressed floating-point loads and
// stores are not decoded and come back illegal.
func (d *Decoder) decodeCompressed(word uint16, xlen int, ext ExtensionSet) *Instruction {
	quadrant := word & 0x3
	funct3 := (word >> 13) & 0x7

	inst := &Instruction{Raw: uint32(word), Size: 2}

	switch quadrant {
	case 0b00:
		if xlen != 64 && (funct3 == 0b011 || funct3 == 0b111) {
			return illegal(uint32(word), 2)
		}
		return d.decodeC0(word, funct3, inst)
	case 0b01:
		return d.decodeC1(word, funct3, xlen, inst)
	case 0b10:
		return d.decodeC2(word, funct3, xlen, ext, inst)
	default:
		if word == 0 {
			return illegal(uint32(word), 2)
		}
		return illegal(uint32(word), 2)
	}
}

func (d *Decoder) decodeC0(word uint16, funct3 uint16, inst *Instruction) *Instruction {
	rdPrime := decodeCReg(word >> 2)
	rs1Prime := decodeCReg(word >> 7)
	switch funct3 {
	case 0b000: // C.ADDI4SPN
		nzuimm := ((word >> 5) & 0x1 << 3) | ((word >> 6) & 0x1 << 2) |
			((word >> 7) & 0xF << 6) | ((word >> 11) & 0x3 << 4)
		if nzuimm == 0 {
			return illegal(uint32(word), 2)
		}
		inst.Op, inst.Format, inst.Category = OpADDI, FormatI, CategoryInteger
		inst.Rd, inst.Rs1, inst.Imm, inst.Is64Bit = rdPrime, 2, int64(nzuimm), true
		return inst
	case 0b010: // C.LW
		imm := ((word >> 6) & 0x1 << 2) | ((word >> 10) & 0x7 << 3) | ((word >> 5) & 0x1 << 6)
		inst.Op, inst.Format, inst.Category = OpLW, FormatI, CategoryLoad
		inst.Rd, inst.Rs1, inst.Imm = rdPrime, rs1Prime, int64(imm)
		return inst
	case 0b011: // C.LD (RV64) / C.FLW (RV32, not implemented)
		imm := ((word >> 10) & 0x7 << 3) | ((word >> 5) & 0x3 << 6)
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpLD, FormatI, CategoryLoad, true
		inst.Rd, inst.Rs1, inst.Imm = rdPrime, rs1Prime, int64(imm)
		return inst
	case 0b110: // C.SW
		imm := ((word >> 6) & 0x1 << 2) | ((word >> 10) & 0x7 << 3) | ((word >> 5) & 0x1 << 6)
		inst.Op, inst.Format, inst.Category = OpSW, FormatS, CategoryStore
		inst.Rs1, inst.Rs2, inst.Imm = rs1Prime, rdPrime, int64(imm)
		return inst
	case 0b111: // C.SD
		imm := ((word >> 10) & 0x7 << 3) | ((word >> 5) & 0x3 << 6)
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpSD, FormatS, CategoryStore, true
		inst.Rs1, inst.Rs2, inst.Imm = rs1Prime, rdPrime, int64(imm)
		return inst
	default:
		return illegal(uint32(word), 2)
	}
}

func (d *Decoder) decodeC1(word uint16, funct3 uint16, xlen int, inst *Instruction) *Instruction {
	rd := uint8((word >> 7) & 0x1F)
	nzimm6 := signExtend(uint32(((word>>12)&0x1)<<5|((word>>2)&0x1F)), 6)

	switch funct3 {
	case 0b000: // C.NOP / C.ADDI
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpADDI, FormatI, CategoryInteger, true
		inst.Rd, inst.Rs1, inst.Imm = rd, rd, nzimm6
		return inst
	case 0b001: // C.ADDIW (RV64); C.JAL on RV32 not modeled (RV32-only legacy form)
		if xlen != 64 || rd == 0 {
			return illegal(uint32(word), 2)
		}
		inst.Op, inst.Format, inst.Category = OpADDIW, FormatI, CategoryInteger
		inst.Rd, inst.Rs1, inst.Imm = rd, rd, nzimm6
		return inst
	case 0b010: // C.LI
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpADDI, FormatI, CategoryInteger, true
		inst.Rd, inst.Rs1, inst.Imm = rd, 0, nzimm6
		return inst
	case 0b011:
		if rd == 2 { // C.ADDI16SP
			imm := uint32(((word >> 12) & 0x1) << 9)
			imm |= uint32((word>>6)&0x1) << 4
			imm |= uint32((word>>5)&0x1) << 6
			imm |= uint32((word>>3)&0x3) << 7
			imm |= uint32((word>>2)&0x1) << 5
			signed := signExtend(imm, 10)
			if signed == 0 {
				return illegal(uint32(word), 2)
			}
			inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpADDI, FormatI, CategoryInteger, true
			inst.Rd, inst.Rs1, inst.Imm = 2, 2, signed
			return inst
		}
		// C.LUI
		if rd == 0 {
			return illegal(uint32(word), 2)
		}
		imm := uint32(((word>>12)&0x1)<<17 | ((word>>2)&0x1F)<<12)
		signed := signExtend(imm, 18)
		if signed == 0 {
			return illegal(uint32(word), 2)
		}
		inst.Op, inst.Format, inst.Category = OpLUI, FormatU, CategoryInteger
		inst.Rd, inst.Imm = rd, signed
		return inst
	case 0b100:
		return d.decodeC1Arith(word, rd, inst)
	case 0b101: // C.J
		imm := decodeCJImm(word)
		inst.Op, inst.Format, inst.Category = OpJAL, FormatJ, CategoryJump
		inst.Rd, inst.Imm = 0, imm
		return inst
	case 0b110: // C.BEQZ
		rs1Prime := decodeCReg(word >> 7)
		imm := decodeCBImm(word)
		inst.Op, inst.Format, inst.Category = OpBEQ, FormatB, CategoryBranch
		inst.Rs1, inst.Rs2, inst.Imm = rs1Prime, 0, imm
		return inst
	case 0b111: // C.BNEZ
		rs1Prime := decodeCReg(word >> 7)
		imm := decodeCBImm(word)
		inst.Op, inst.Format, inst.Category = OpBNE, FormatB, CategoryBranch
		inst.Rs1, inst.Rs2, inst.Imm = rs1Prime, 0, imm
		return inst
	default:
		return illegal(uint32(word), 2)
	}
}

func decodeCJImm(word uint16) int64 {
	imm := uint32(((word >> 12) & 0x1) << 11)
	imm |= uint32((word>>11)&0x1) << 4
	imm |= uint32((word>>9)&0x3) << 8
	imm |= uint32((word>>8)&0x1) << 10
	imm |= uint32((word>>7)&0x1) << 6
	imm |= uint32((word>>6)&0x1) << 7
	imm |= uint32((word>>3)&0x7) << 1
	imm |= uint32((word>>2)&0x1) << 5
	return signExtend(imm, 12)
}

func decodeCBImm(word uint16) int64 {
	imm := uint32(((word >> 12) & 0x1) << 8)
	imm |= uint32((word>>10)&0x3) << 3
	imm |= uint32((word>>5)&0x3) << 6
	imm |= uint32((word>>3)&0x3) << 1
	imm |= uint32((word>>2)&0x1) << 5
	return signExtend(imm, 9)
}

func (d *Decoder) decodeC1Arith(word uint16, rd uint8, inst *Instruction) *Instruction {
	rdPrime := decodeCReg(word >> 7)
	funct2 := (word >> 10) & 0x3
	switch funct2 {
	case 0b00: // C.SRLI
		shamt := ((word>>12)&0x1)<<5 | ((word >> 2) & 0x1F)
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpSRLI, FormatI, CategoryInteger, true
		inst.Rd, inst.Rs1, inst.Shamt = rdPrime, rdPrime, uint8(shamt)
		return inst
	case 0b01: // C.SRAI
		shamt := ((word>>12)&0x1)<<5 | ((word >> 2) & 0x1F)
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpSRAI, FormatI, CategoryInteger, true
		inst.Rd, inst.Rs1, inst.Shamt = rdPrime, rdPrime, uint8(shamt)
		return inst
	case 0b10: // C.ANDI
		imm := signExtend(uint32(((word>>12)&0x1)<<5|((word>>2)&0x1F)), 6)
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpANDI, FormatI, CategoryInteger, true
		inst.Rd, inst.Rs1, inst.Imm = rdPrime, rdPrime, imm
		return inst
	case 0b11:
		funct1 := (word >> 12) & 0x1
		funct2b := (word >> 5) & 0x3
		rs2Prime := decodeCReg(word >> 2)
		inst.Rd, inst.Rs1, inst.Rs2 = rdPrime, rdPrime, rs2Prime
		inst.Format, inst.Category, inst.Is64Bit = FormatR, CategoryInteger, true
		switch {
		case funct1 == 0 && funct2b == 0b00:
			inst.Op = OpSUB
		case funct1 == 0 && funct2b == 0b01:
			inst.Op = OpXOR
		case funct1 == 0 && funct2b == 0b10:
			inst.Op = OpOR
		case funct1 == 0 && funct2b == 0b11:
			inst.Op = OpAND
		case funct1 == 1 && funct2b == 0b00:
			inst.Op, inst.Is64Bit = OpSUBW, false
		case funct1 == 1 && funct2b == 0b01:
			inst.Op, inst.Is64Bit = OpADDW, false
		default:
			return illegal(uint32(word), 2)
		}
		return inst
	}
	return illegal(uint32(word), 2)
}

func (d *Decoder) decodeC2(word uint16, funct3 uint16, xlen int, ext ExtensionSet, inst *Instruction) *Instruction {
	rd := uint8((word >> 7) & 0x1F)
	rs2 := uint8((word >> 2) & 0x1F)

	switch funct3 {
	case 0b000: // C.SLLI
		if rd == 0 {
			return illegal(uint32(word), 2)
		}
		shamt := ((word>>12)&0x1)<<5 | ((word >> 2) & 0x1F)
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpSLLI, FormatI, CategoryInteger, true
		inst.Rd, inst.Rs1, inst.Shamt = rd, rd, uint8(shamt)
		return inst
	case 0b010: // C.LWSP
		if rd == 0 {
			return illegal(uint32(word), 2)
		}
		imm := uint32(((word>>12)&0x1)<<5 | ((word>>4)&0x7)<<2 | ((word>>2)&0x3)<<6)
		inst.Op, inst.Format, inst.Category = OpLW, FormatI, CategoryLoad
		inst.Rd, inst.Rs1, inst.Imm = rd, 2, int64(imm)
		return inst
	case 0b011: // C.LDSP (RV64)
		if xlen != 64 || rd == 0 {
			return illegal(uint32(word), 2)
		}
		imm := uint32(((word>>12)&0x1)<<5 | ((word>>5)&0x3)<<3 | ((word>>2)&0x7)<<6)
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpLD, FormatI, CategoryLoad, true
		inst.Rd, inst.Rs1, inst.Imm = rd, 2, int64(imm)
		return inst
	case 0b100:
		funct1 := (word >> 12) & 0x1
		if funct1 == 0 {
			if rs2 == 0 { // C.JR
				if rd == 0 {
					return illegal(uint32(word), 2)
				}
				inst.Op, inst.Format, inst.Category = OpJALR, FormatI, CategoryJump
				inst.Rd, inst.Rs1, inst.Imm = 0, rd, 0
				return inst
			}
			// C.MV
			inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpADD, FormatR, CategoryInteger, true
			inst.Rd, inst.Rs1, inst.Rs2 = rd, 0, rs2
			return inst
		}
		if rs2 == 0 {
			if rd == 0 { // C.EBREAK
				inst.Op, inst.Format, inst.Category = OpEBREAK, FormatI, CategorySystem
				return inst
			}
			// C.JALR
			inst.Op, inst.Format, inst.Category = OpJALR, FormatI, CategoryJump
			inst.Rd, inst.Rs1, inst.Imm = 1, rd, 0
			return inst
		}
		// C.ADD
		if rd == 0 {
			return illegal(uint32(word), 2)
		}
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpADD, FormatR, CategoryInteger, true
		inst.Rd, inst.Rs1, inst.Rs2 = rd, rd, rs2
		return inst
	case 0b110: // C.SWSP
		imm := uint32(((word>>9)&0xF)<<2 | ((word>>7)&0x3)<<6)
		inst.Op, inst.Format, inst.Category = OpSW, FormatS, CategoryStore
		inst.Rs1, inst.Rs2, inst.Imm = 2, rs2, int64(imm)
		return inst
	case 0b111: // C.SDSP (RV64)
		if xlen != 64 {
			return illegal(uint32(word), 2)
		}
		imm := uint32(((word>>10)&0x7)<<3 | ((word>>7)&0x7)<<6)
		inst.Op, inst.Format, inst.Category, inst.Is64Bit = OpSD, FormatS, CategoryStore, true
		inst.Rs1, inst.Rs2, inst.Imm = 2, rs2, int64(imm)
		return inst
	default:
		return illegal(uint32(word), 2)
	}
}
