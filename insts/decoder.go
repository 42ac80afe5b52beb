package insts

// Decoder decodes RISC-V machine code into Instructions. It is stateless;
// the xlen and enabled extension set are passed per call since a hart's
// width and feature set are fixed at construction but the decoder itself is
// process-wide and shared across harts (spec.md §9, "global/shared
// instruction-info table").
type Decoder struct{}

// NewDecoder creates a new RISC-V instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// illegal returns a stock illegal-instruction descriptor preserving the raw
// word so the trap unit can report it as MTVAL.
func illegal(word uint32, size uint8) *Instruction {
	return &Instruction{Op: OpIllegal, Format: FormatUnknown, Raw: word, Size: size}
}

// Decode decodes a 32-bit-aligned fetch. If the low two bits are not both
// set, word is treated as a compressed (16-bit) instruction occupying only
// the low 16 bits; otherwise it is a full 32-bit instruction. xlen is 32 or
// 64; ext is the hart's enabled extension set, used to reject extensions
// that are not implemented or not enabled (e.g. 64-bit-only opcodes on a
// 32-bit core, or any C-extension word when C is disabled).
func (d *Decoder) Decode(word uint32, xlen int, ext ExtensionSet) *Instruction {
	if word&0x3 != 0x3 {
		if !ext.Has(ExtC) {
			return illegal(word&0xFFFF, 2)
		}
		return d.decodeCompressed(uint16(word), xlen, ext)
	}
	return d.decode32(word, xlen, ext)
}

func signExtend(value uint32, bits uint) int64 {
	shift := 32 - bits
	return int64(int32(value<<shift)) >> shift
}

func (d *Decoder) decode32(word uint32, xlen int, ext ExtensionSet) *Instruction {
	opcode := word & 0x7F
	rd := uint8((word >> 7) & 0x1F)
	funct3 := uint8((word >> 12) & 0x7)
	rs1 := uint8((word >> 15) & 0x1F)
	rs2 := uint8((word >> 20) & 0x1F)
	funct7 := uint8((word >> 25) & 0x7F)

	inst := &Instruction{Raw: word, Size: 4, Rd: rd, Rs1: rs1, Rs2: rs2}

	switch opcode {
	case 0x37: // LUI
		inst.Op, inst.Format = OpLUI, FormatU
		inst.Imm = int64(int32(word & 0xFFFFF000))
		return inst

	case 0x17: // AUIPC
		inst.Op, inst.Format = OpAUIPC, FormatU
		inst.Imm = int64(int32(word & 0xFFFFF000))
		return inst

	case 0x6F: // JAL
		inst.Op, inst.Format, inst.Category = OpJAL, FormatJ, CategoryJump
		imm := ((word >> 31) & 0x1 << 20) | ((word >> 21) & 0x3FF << 1) |
			((word >> 20) & 0x1 << 11) | ((word >> 12) & 0xFF << 12)
		inst.Imm = signExtend(imm, 21)
		return inst

	case 0x67: // JALR
		if funct3 != 0 {
			return illegal(word, 4)
		}
		inst.Op, inst.Format, inst.Category = OpJALR, FormatI, CategoryJump
		inst.Imm = signExtend(word>>20, 12)
		return inst

	case 0x63: // BRANCH
		return d.decodeBranch(word, funct3, inst)

	case 0x03: // LOAD
		return d.decodeLoad(word, funct3, xlen, inst)

	case 0x23: // STORE
		return d.decodeStore(word, funct3, xlen, inst)

	case 0x13: // OP-IMM
		return d.decodeOpImm(word, funct3, funct7, xlen, ext, inst)

	case 0x1B: // OP-IMM-32 (RV64 only)
		return d.decodeOpImm32(word, funct3, funct7, xlen, inst)

	case 0x33: // OP
		return d.decodeOp(funct3, funct7, ext, inst)

	case 0x3B: // OP-32 (RV64 only)
		return d.decodeOp32(funct3, funct7, xlen, inst)

	case 0x0F: // MISC-MEM
		inst.Category = CategoryFence
		inst.Format = FormatFence
		switch funct3 {
		case 0:
			inst.Op = OpFENCE
		case 1:
			inst.Op = OpFENCEI
		default:
			return illegal(word, 4)
		}
		return inst

	case 0x73: // SYSTEM
		return d.decodeSystem(word, funct3, inst)

	case 0x2F: // AMO
		if !ext.Has(ExtA) {
			return illegal(word, 4)
		}
		return d.decodeAMO(word, funct3, funct7, xlen, inst)

	case 0x07: // LOAD-FP
		if !ext.Has(ExtF) {
			return illegal(word, 4)
		}
		return d.decodeLoadFP(funct3, inst)

	case 0x27: // STORE-FP
		if !ext.Has(ExtF) {
			return illegal(word, 4)
		}
		return d.decodeStoreFP(funct3, inst)

	case 0x43, 0x47, 0x4B, 0x4F: // FMADD/FMSUB/FNMSUB/FNMADD
		if !ext.Has(ExtF) {
			return illegal(word, 4)
		}
		return d.decodeFusedMA(word, byte(opcode), funct3, inst)

	case 0x53: // OP-FP
		if !ext.Has(ExtF) {
			return illegal(word, 4)
		}
		return d.decodeOpFP(word, funct3, funct7, ext, inst)

	default:
		return illegal(word, 4)
	}
}

func (d *Decoder) decodeBranch(word uint32, funct3 uint8, inst *Instruction) *Instruction {
	inst.Format, inst.Category = FormatB, CategoryBranch
	imm := ((word >> 31) & 0x1 << 12) | ((word >> 7) & 0x1 << 11) |
		((word >> 25) & 0x3F << 5) | ((word >> 8) & 0xF << 1)
	inst.Imm = signExtend(imm, 13)
	switch funct3 {
	case 0b000:
		inst.Op = OpBEQ
	case 0b001:
		inst.Op = OpBNE
	case 0b100:
		inst.Op = OpBLT
	case 0b101:
		inst.Op = OpBGE
	case 0b110:
		inst.Op = OpBLTU
	case 0b111:
		inst.Op = OpBGEU
	default:
		return illegal(word, 4)
	}
	return inst
}

func (d *Decoder) decodeLoad(word uint32, funct3 uint8, xlen int, inst *Instruction) *Instruction {
	inst.Format, inst.Category = FormatI, CategoryLoad
	inst.Imm = signExtend(word>>20, 12)
	switch funct3 {
	case 0b000:
		inst.Op = OpLB
	case 0b001:
		inst.Op = OpLH
	case 0b010:
		inst.Op = OpLW
	case 0b100:
		inst.Op = OpLBU
	case 0b101:
		inst.Op = OpLHU
	case 0b011:
		if xlen != 64 {
			return illegal(word, 4)
		}
		inst.Op, inst.Is64Bit = OpLD, true
	case 0b110:
		if xlen != 64 {
			return illegal(word, 4)
		}
		inst.Op, inst.Is64Bit = OpLWU, true
	default:
		return illegal(word, 4)
	}
	return inst
}

func (d *Decoder) decodeStore(word uint32, funct3 uint8, xlen int, inst *Instruction) *Instruction {
	inst.Format, inst.Category = FormatS, CategoryStore
	imm := ((word >> 25) & 0x7F << 5) | ((word >> 7) & 0x1F)
	inst.Imm = signExtend(imm, 12)
	switch funct3 {
	case 0b000:
		inst.Op = OpSB
	case 0b001:
		inst.Op = OpSH
	case 0b010:
		inst.Op = OpSW
	case 0b011:
		if xlen != 64 {
			return illegal(word, 4)
		}
		inst.Op, inst.Is64Bit = OpSD, true
	default:
		return illegal(word, 4)
	}
	return inst
}

func (d *Decoder) decodeOpImm(word uint32, funct3, funct7 uint8, xlen int, ext ExtensionSet, inst *Instruction) *Instruction {
	inst.Format, inst.Category = FormatI, CategoryInteger
	inst.Is64Bit = true
	switch funct3 {
	case 0b000:
		inst.Op = OpADDI
		inst.Imm = signExtend(word>>20, 12)
	case 0b010:
		inst.Op = OpSLTI
		inst.Imm = signExtend(word>>20, 12)
	case 0b011:
		inst.Op = OpSLTIU
		inst.Imm = signExtend(word>>20, 12)
	case 0b100:
		if ext.Has(ExtB) && funct7 == 0b0010100 && inst.Rs2 == 0b00111 {
			inst.Op = OpORCB
			return inst
		}
		inst.Op = OpXORI
		inst.Imm = signExtend(word>>20, 12)
	case 0b110:
		inst.Op = OpORI
		inst.Imm = signExtend(word>>20, 12)
	case 0b001:
		if ext.Has(ExtB) && funct7 == 0b0110000 {
			switch inst.Rs2 {
			case 0b00000:
				inst.Op = OpCLZ
				return inst
			case 0b00001:
				inst.Op = OpCTZ
				return inst
			case 0b00010:
				inst.Op = OpCPOP
				return inst
			case 0b00100:
				inst.Op = OpSEXTB
				return inst
			case 0b00101:
				inst.Op = OpSEXTH
				return inst
			}
		}
		shamtBits := uint(5)
		if xlen == 64 {
			shamtBits = 6
		}
		if funct7>>1 != 0 && (funct7>>1) != 0b000000 {
			// fall through to illegal below if top bits are not all zero
		}
		mask := uint32(1)<<shamtBits - 1
		shamt := (word >> 20) & mask
		if (word>>20)&^mask != 0 {
			return illegal(word, 4)
		}
		inst.Op = OpSLLI
		inst.Shamt = uint8(shamt)
	case 0b101:
		if ext.Has(ExtB) && funct7 == 0b0000101 {
			inst.Op = OpZEXTH
			return inst
		}
		shamtBits := uint(5)
		if xlen == 64 {
			shamtBits = 6
		}
		mask := uint32(1)<<shamtBits - 1
		shamt := (word >> 20) & mask
		top := (word >> 20) &^ mask
		switch {
		case top == 0:
			inst.Op = OpSRLI
		case top == (0b010000<<shamtBits)&0xFFF:
			inst.Op = OpSRAI
		case ext.Has(ExtB) && top == (0b010110<<shamtBits)&0xFFF:
			inst.Op = OpRORI
		default:
			return illegal(word, 4)
		}
		inst.Shamt = uint8(shamt)
	default:
		return illegal(word, 4)
	}
	return inst
}

func (d *Decoder) decodeOpImm32(word uint32, funct3, funct7 uint8, xlen int, inst *Instruction) *Instruction {
	if xlen != 64 {
		return illegal(word, 4)
	}
	inst.Format, inst.Category, inst.Is64Bit = FormatI, CategoryInteger, false
	switch funct3 {
	case 0b000:
		inst.Op = OpADDIW
		inst.Imm = signExtend(word>>20, 12)
	case 0b001:
		if funct7 != 0 {
			return illegal(word, 4)
		}
		inst.Op = OpSLLIW
		inst.Shamt = uint8((word >> 20) & 0x1F)
	case 0b101:
		shamt := (word >> 20) & 0x1F
		switch funct7 {
		case 0b0000000:
			inst.Op = OpSRLIW
		case 0b0100000:
			inst.Op = OpSRAIW
		default:
			return illegal(word, 4)
		}
		inst.Shamt = uint8(shamt)
	default:
		return illegal(word, 4)
	}
	return inst
}

func (d *Decoder) decodeOp(funct3, funct7 uint8, ext ExtensionSet, inst *Instruction) *Instruction {
	inst.Format, inst.Is64Bit = FormatR, true
	switch funct7 {
	case 0b0000000:
		inst.Category = CategoryInteger
		switch funct3 {
		case 0b000:
			inst.Op = OpADD
		case 0b001:
			inst.Op = OpSLL
		case 0b010:
			inst.Op = OpSLT
		case 0b011:
			inst.Op = OpSLTU
		case 0b100:
			inst.Op = OpXOR
		case 0b101:
			inst.Op = OpSRL
		case 0b110:
			inst.Op = OpOR
		case 0b111:
			inst.Op = OpAND
		default:
			return illegal(inst.Raw, 4)
		}
	case 0b0100000:
		inst.Category = CategoryInteger
		switch funct3 {
		case 0b000:
			inst.Op = OpSUB
		case 0b101:
			inst.Op = OpSRA
		case 0b111:
			if !ext.Has(ExtB) {
				return illegal(inst.Raw, 4)
			}
			inst.Op = OpANDN
		case 0b110:
			if !ext.Has(ExtB) {
				return illegal(inst.Raw, 4)
			}
			inst.Op = OpORN
		case 0b100:
			if !ext.Has(ExtB) {
				return illegal(inst.Raw, 4)
			}
			inst.Op = OpXNOR
		default:
			return illegal(inst.Raw, 4)
		}
	case 0b0000001:
		if !ext.Has(ExtM) {
			return illegal(inst.Raw, 4)
		}
		inst.Category = CategoryMultiply
		switch funct3 {
		case 0b000:
			inst.Op = OpMUL
		case 0b001:
			inst.Op = OpMULH
		case 0b010:
			inst.Op = OpMULHSU
		case 0b011:
			inst.Op = OpMULHU
		case 0b100:
			inst.Category, inst.Op = CategoryDivide, OpDIV
		case 0b101:
			inst.Category, inst.Op = CategoryDivide, OpDIVU
		case 0b110:
			inst.Category, inst.Op = CategoryDivide, OpREM
		case 0b111:
			inst.Category, inst.Op = CategoryDivide, OpREMU
		default:
			return illegal(inst.Raw, 4)
		}
	case 0b0110000:
		if !ext.Has(ExtB) {
			return illegal(inst.Raw, 4)
		}
		inst.Category = CategoryInteger
		switch funct3 {
		case 0b001:
			inst.Op = OpROL
		case 0b101:
			inst.Op = OpROR
		default:
			return illegal(inst.Raw, 4)
		}
	case 0b0000101:
		if !ext.Has(ExtB) {
			return illegal(inst.Raw, 4)
		}
		inst.Category = CategoryInteger
		switch funct3 {
		case 0b100:
			inst.Op = OpMIN
		case 0b101:
			inst.Op = OpMINU
		case 0b110:
			inst.Op = OpMAX
		case 0b111:
			inst.Op = OpMAXU
		default:
			return illegal(inst.Raw, 4)
		}
	case 0b0110100:
		if !ext.Has(ExtB) || funct3 != 0b101 || inst.Rs2 != 0b11000 {
			return illegal(inst.Raw, 4)
		}
		inst.Category = CategoryInteger
		inst.Op = OpREV8
	default:
		return illegal(inst.Raw, 4)
	}
	return inst
}

func (d *Decoder) decodeOp32(funct3, funct7 uint8, xlen int, inst *Instruction) *Instruction {
	if xlen != 64 {
		return illegal(inst.Raw, 4)
	}
	inst.Format, inst.Is64Bit = FormatR, false
	switch funct7 {
	case 0b0000000:
		inst.Category = CategoryInteger
		switch funct3 {
		case 0b000:
			inst.Op = OpADDW
		case 0b001:
			inst.Op = OpSLLW
		case 0b101:
			inst.Op = OpSRLW
		default:
			return illegal(inst.Raw, 4)
		}
	case 0b0100000:
		inst.Category = CategoryInteger
		switch funct3 {
		case 0b000:
			inst.Op = OpSUBW
		case 0b101:
			inst.Op = OpSRAW
		default:
			return illegal(inst.Raw, 4)
		}
	case 0b0000001:
		inst.Category = CategoryMultiply
		switch funct3 {
		case 0b000:
			inst.Op = OpMULW
		case 0b100:
			inst.Category, inst.Op = CategoryDivide, OpDIVW
		case 0b101:
			inst.Category, inst.Op = CategoryDivide, OpDIVUW
		case 0b110:
			inst.Category, inst.Op = CategoryDivide, OpREMW
		case 0b111:
			inst.Category, inst.Op = CategoryDivide, OpREMUW
		default:
			return illegal(inst.Raw, 4)
		}
	default:
		return illegal(inst.Raw, 4)
	}
	return inst
}

func (d *Decoder) decodeSystem(word uint32, funct3 uint8, inst *Instruction) *Instruction {
	inst.Category = CategorySystem
	if funct3 == 0 {
		inst.Format = FormatI
		imm12 := word >> 20
		rs2 := (word >> 20) & 0x1F
		funct7 := (word >> 25) & 0x7F
		switch {
		case imm12 == 0 && inst.Rs1 == 0 && inst.Rd == 0:
			inst.Op = OpECALL
		case imm12 == 1 && inst.Rs1 == 0 && inst.Rd == 0:
			inst.Op = OpEBREAK
		case funct7 == 0b0001000 && rs2 == 0b00010 && inst.Rs1 == 0 && inst.Rd == 0:
			inst.Op = OpSRET
		case funct7 == 0b0000000 && rs2 == 0b00010 && inst.Rs1 == 0 && inst.Rd == 0:
			inst.Op = OpURET
		case funct7 == 0b0011000 && rs2 == 0b00010 && inst.Rs1 == 0 && inst.Rd == 0:
			inst.Op = OpMRET
		case funct7 == 0b0001000 && rs2 == 0b00101 && inst.Rs1 == 0 && inst.Rd == 0:
			inst.Op = OpWFI
		default:
			return illegal(word, 4)
		}
		return inst
	}

	inst.Format = FormatCSR
	inst.Category = CategoryCSR
	inst.Csr = uint16(word >> 20)
	switch funct3 {
	case 0b001:
		inst.Op = OpCSRRW
	case 0b010:
		inst.Op = OpCSRRS
	case 0b011:
		inst.Op = OpCSRRC
	case 0b101:
		inst.Op = OpCSRRWI
		inst.Imm = int64(inst.Rs1)
	case 0b110:
		inst.Op = OpCSRRSI
		inst.Imm = int64(inst.Rs1)
	case 0b111:
		inst.Op = OpCSRRCI
		inst.Imm = int64(inst.Rs1)
	default:
		return illegal(word, 4)
	}
	return inst
}

func (d *Decoder) decodeAMO(word uint32, funct3, funct7 uint8, xlen int, inst *Instruction) *Instruction {
	inst.Format, inst.Category = FormatAMO, CategoryAtomic
	funct5 := funct7 >> 2
	is64 := funct3 == 0b011
	if funct3 != 0b010 && funct3 != 0b011 {
		return illegal(word, 4)
	}
	if is64 && xlen != 64 {
		return illegal(word, 4)
	}
	inst.Is64Bit = is64

	ops32 := map[uint8]Op{
		0b00010: OpLRW, 0b00011: OpSCW, 0b00001: OpAMOSWAPW, 0b00000: OpAMOADDW,
		0b00100: OpAMOXORW, 0b01100: OpAMOANDW, 0b01000: OpAMOORW,
		0b10000: OpAMOMINW, 0b10100: OpAMOMAXW, 0b11000: OpAMOMINUW, 0b11100: OpAMOMAXUW,
	}
	ops64 := map[uint8]Op{
		0b00010: OpLRD, 0b00011: OpSCD, 0b00001: OpAMOSWAPD, 0b00000: OpAMOADDD,
		0b00100: OpAMOXORD, 0b01100: OpAMOANDD, 0b01000: OpAMOORD,
		0b10000: OpAMOMIND, 0b10100: OpAMOMAXD, 0b11000: OpAMOMINUD, 0b11100: OpAMOMAXUD,
	}
	table := ops32
	if is64 {
		table = ops64
	}
	op, ok := table[funct5]
	if !ok {
		return illegal(word, 4)
	}
	inst.Op = op
	if op == OpLRW || op == OpLRD {
		inst.Rs2 = 0
	}
	return inst
}

func (d *Decoder) decodeLoadFP(funct3 uint8, inst *Instruction) *Instruction {
	inst.Format, inst.Category = FormatI, CategoryFP
	inst.Imm = signExtend(inst.Raw>>20, 12)
	switch funct3 {
	case 0b010:
		inst.Op = OpFLW
	case 0b011:
		inst.Op = OpFLD
	default:
		return illegal(inst.Raw, 4)
	}
	return inst
}

func (d *Decoder) decodeStoreFP(funct3 uint8, inst *Instruction) *Instruction {
	inst.Format, inst.Category = FormatS, CategoryFP
	imm := ((inst.Raw >> 25) & 0x7F << 5) | ((inst.Raw >> 7) & 0x1F)
	inst.Imm = signExtend(imm, 12)
	switch funct3 {
	case 0b010:
		inst.Op = OpFSW
	case 0b011:
		inst.Op = OpFSD
	default:
		return illegal(inst.Raw, 4)
	}
	return inst
}

func (d *Decoder) decodeFusedMA(word uint32, opcode byte, funct3 uint8, inst *Instruction) *Instruction {
	inst.Format, inst.Category = FormatR4, CategoryFP
	inst.Rs3 = uint8((word >> 27) & 0x1F)
	fmtBit := (word >> 25) & 0x3
	inst.RM = RoundingMode(funct3)
	if !ValidRoundingField(funct3) {
		return illegal(word, 4)
	}
	isDouble := fmtBit == 0b01
	switch opcode {
	case 0x43:
		if isDouble {
			inst.Op = OpFMADDD
		} else {
			inst.Op = OpFMADDS
		}
	case 0x47:
		if isDouble {
			inst.Op = OpFMSUBD
		} else {
			inst.Op = OpFMSUBS
		}
	case 0x4B:
		if isDouble {
			inst.Op = OpFNMSUBD
		} else {
			inst.Op = OpFNMSUBS
		}
	case 0x4F:
		if isDouble {
			inst.Op = OpFNMADDD
		} else {
			inst.Op = OpFNMADDS
		}
	}
	return inst
}

func (d *Decoder) decodeOpFP(word uint32, funct3, funct7 uint8, ext ExtensionSet, inst *Instruction) *Instruction {
	inst.Format, inst.Category = FormatR, CategoryFP
	isDouble := funct7&0x1 == 1
	inst.RM = RoundingMode(funct3)

	requireD := func() bool { return !isDouble || ext.Has(ExtD) }

	switch funct7 >> 2 {
	case 0b00000: // FADD
		if !requireD() {
			return illegal(word, 4)
		}
		if !ValidRoundingField(funct3) {
			return illegal(word, 4)
		}
		inst.Op = pick(isDouble, OpFADDD, OpFADDS)
	case 0b00001: // FSUB
		if !requireD() || !ValidRoundingField(funct3) {
			return illegal(word, 4)
		}
		inst.Op = pick(isDouble, OpFSUBD, OpFSUBS)
	case 0b00010: // FMUL
		if !requireD() || !ValidRoundingField(funct3) {
			return illegal(word, 4)
		}
		inst.Op = pick(isDouble, OpFMULD, OpFMULS)
	case 0b00011: // FDIV
		if !requireD() || !ValidRoundingField(funct3) {
			return illegal(word, 4)
		}
		inst.Op = pick(isDouble, OpFDIVD, OpFDIVS)
	case 0b01011: // FSQRT
		if !requireD() || inst.Rs2 != 0 || !ValidRoundingField(funct3) {
			return illegal(word, 4)
		}
		inst.Op = pick(isDouble, OpFSQRTD, OpFSQRTS)
	case 0b00100: // FSGNJ family
		if !requireD() {
			return illegal(word, 4)
		}
		switch funct3 {
		case 0b000:
			inst.Op = pick(isDouble, OpFSGNJD, OpFSGNJS)
		case 0b001:
			inst.Op = pick(isDouble, OpFSGNJND, OpFSGNJNS)
		case 0b010:
			inst.Op = pick(isDouble, OpFSGNJXD, OpFSGNJXS)
		default:
			return illegal(word, 4)
		}
	case 0b00101: // FMIN/FMAX
		if !requireD() {
			return illegal(word, 4)
		}
		switch funct3 {
		case 0b000:
			inst.Op = pick(isDouble, OpFMIND, OpFMINS)
		case 0b001:
			inst.Op = pick(isDouble, OpFMAXD, OpFMAXS)
		default:
			return illegal(word, 4)
		}
	case 0b10100: // FEQ/FLT/FLE
		if !requireD() {
			return illegal(word, 4)
		}
		switch funct3 {
		case 0b010:
			inst.Op = pick(isDouble, OpFEQD, OpFEQS)
		case 0b001:
			inst.Op = pick(isDouble, OpFLTD, OpFLTS)
		case 0b000:
			inst.Op = pick(isDouble, OpFLED, OpFLES)
		default:
			return illegal(word, 4)
		}
	case 0b11100: // FMV.X.W/D, FCLASS
		if inst.Rs2 != 0 {
			return illegal(word, 4)
		}
		switch funct3 {
		case 0b000:
			inst.Op = pick(isDouble, OpFMVXD, OpFMVXW)
		case 0b001:
			inst.Op = pick(isDouble, OpFCLASSD, OpFCLASSS)
		default:
			return illegal(word, 4)
		}
	case 0b11110: // FMV.W.X/D.X
		if inst.Rs2 != 0 || funct3 != 0 {
			return illegal(word, 4)
		}
		inst.Op = pick(isDouble, OpFMVDX, OpFMVWX)
	case 0b11000: // FCVT.W/WU/L/LU.fmt
		if !requireD() || !ValidRoundingField(funct3) {
			return illegal(word, 4)
		}
		switch inst.Rs2 {
		case 0b00000:
			inst.Op = pick(isDouble, OpFCVTWD, OpFCVTWS)
		case 0b00001:
			inst.Op = pick(isDouble, OpFCVTWUD, OpFCVTWUS)
		case 0b00010:
			inst.Op = pick(isDouble, OpFCVTLD, OpFCVTLS)
		case 0b00011:
			inst.Op = pick(isDouble, OpFCVTLUD, OpFCVTLUS)
		default:
			return illegal(word, 4)
		}
	case 0b11010: // FCVT.fmt.W/WU/L/LU
		if !requireD() || !ValidRoundingField(funct3) {
			return illegal(word, 4)
		}
		switch inst.Rs2 {
		case 0b00000:
			inst.Op = pick(isDouble, OpFCVTDW, OpFCVTSW)
		case 0b00001:
			inst.Op = pick(isDouble, OpFCVTDWU, OpFCVTSWU)
		case 0b00010:
			inst.Op = pick(isDouble, OpFCVTDL, OpFCVTSL)
		case 0b00011:
			inst.Op = pick(isDouble, OpFCVTDLU, OpFCVTSLU)
		default:
			return illegal(word, 4)
		}
	case 0b01000: // FCVT.S.D / FCVT.D.S
		if !ext.Has(ExtD) || !ValidRoundingField(funct3) {
			return illegal(word, 4)
		}
		switch inst.Rs2 {
		case 0b00001:
			inst.Op = OpFCVTSD
		case 0b00000:
			inst.Op = OpFCVTDS
		default:
			return illegal(word, 4)
		}
	default:
		return illegal(word, 4)
	}
	return inst
}

func pick(cond bool, ifTrue, ifFalse Op) Op {
	if cond {
		return ifTrue
	}
	return ifFalse
}
