package emu

import "github.com/sarchlab/rvcore/insts"

// execInteger executes the base-integer ALU ops (OP-IMM, OP, and their W-form
// counterparts) plus the M-extension multiply/divide ops and the minor
// bit-manipulation extension, per spec.md §4.4's integer-ALU description. It
// writes Rd through writeIntResult, which also invalidates load-queue entries
// targeting Rd.
func (h *Hart) execInteger(inst *insts.Instruction) {
	rs1 := h.intRegs.Read(inst.Rs1)
	rs2 := h.intRegs.Read(inst.Rs2)
	imm := uint64(inst.Imm)

	var result uint64

	switch inst.Op {
	case insts.OpADDI, insts.OpADD:
		result = rs1 + operand2(inst, rs2, imm)
	case insts.OpSUB:
		result = rs1 - rs2
	case insts.OpSLTI, insts.OpSLT:
		if int64(rs1) < int64(operand2(inst, rs2, imm)) {
			result = 1
		}
	case insts.OpSLTIU, insts.OpSLTU:
		if rs1 < operand2(inst, rs2, imm) {
			result = 1
		}
	case insts.OpXORI, insts.OpXOR:
		result = rs1 ^ operand2(inst, rs2, imm)
	case insts.OpORI, insts.OpOR:
		result = rs1 | operand2(inst, rs2, imm)
	case insts.OpANDI, insts.OpAND:
		result = rs1 & operand2(inst, rs2, imm)
	case insts.OpSLLI, insts.OpSLL:
		result = rs1 << shiftAmount(inst, rs2, h.xlen)
	case insts.OpSRLI, insts.OpSRL:
		result = maskXLen(rs1, h.xlen) >> shiftAmount(inst, rs2, h.xlen)
	case insts.OpSRAI, insts.OpSRA:
		result = uint64(signExtendXLen(rs1, h.xlen) >> shiftAmount(inst, rs2, h.xlen))

	case insts.OpADDIW, insts.OpADDW:
		result = signExtend32(uint32(rs1) + uint32(operand2(inst, rs2, imm)))
	case insts.OpSUBW:
		result = signExtend32(uint32(rs1) - uint32(rs2))
	case insts.OpSLLIW, insts.OpSLLW:
		result = signExtend32(uint32(rs1) << (shiftAmount(inst, rs2, h.xlen) & 0x1F))
	case insts.OpSRLIW, insts.OpSRLW:
		result = signExtend32(uint32(rs1) >> (shiftAmount(inst, rs2, h.xlen) & 0x1F))
	case insts.OpSRAIW, insts.OpSRAW:
		result = signExtend32(uint32(int32(uint32(rs1)) >> (shiftAmount(inst, rs2, h.xlen) & 0x1F)))

	case insts.OpMUL:
		result = rs1 * rs2
	case insts.OpMULH:
		result = uint64(mulHighSigned(int64(rs1), int64(rs2)))
	case insts.OpMULHSU:
		result = uint64(mulHighSignedUnsigned(int64(rs1), rs2))
	case insts.OpMULHU:
		result = mulHighUnsigned(rs1, rs2)
	case insts.OpDIV:
		result = uint64(divSigned(signExtendXLen(rs1, h.xlen), signExtendXLen(rs2, h.xlen)))
	case insts.OpDIVU:
		result = divUnsigned(maskXLen(rs1, h.xlen), maskXLen(rs2, h.xlen))
	case insts.OpREM:
		result = uint64(remSigned(signExtendXLen(rs1, h.xlen), signExtendXLen(rs2, h.xlen)))
	case insts.OpREMU:
		result = remUnsigned(maskXLen(rs1, h.xlen), maskXLen(rs2, h.xlen))
	case insts.OpMULW:
		result = signExtend32(uint32(rs1) * uint32(rs2))
	case insts.OpDIVW:
		result = signExtend32(uint32(divSigned(int64(int32(uint32(rs1))), int64(int32(uint32(rs2))))))
	case insts.OpDIVUW:
		result = signExtend32(uint32(divUnsigned(uint64(uint32(rs1)), uint64(uint32(rs2)))))
	case insts.OpREMW:
		result = signExtend32(uint32(remSigned(int64(int32(uint32(rs1))), int64(int32(uint32(rs2))))))
	case insts.OpREMUW:
		result = signExtend32(uint32(remUnsigned(uint64(uint32(rs1)), uint64(uint32(rs2)))))

	case insts.OpLUI:
		result = uint64(inst.Imm)
	case insts.OpAUIPC:
		result = h.currentPC + uint64(inst.Imm)

	case insts.OpANDN:
		result = rs1 &^ rs2
	case insts.OpORN:
		result = rs1 | ^rs2
	case insts.OpXNOR:
		result = ^(rs1 ^ rs2)
	case insts.OpCLZ:
		result = uint64(countLeadingZeros(rs1, h.xlen))
	case insts.OpCTZ:
		result = uint64(countTrailingZeros(rs1, h.xlen))
	case insts.OpCPOP:
		result = uint64(popCount(maskXLen(rs1, h.xlen)))
	case insts.OpMIN:
		result = uint64(minInt(int64(rs1), int64(rs2)))
	case insts.OpMAX:
		result = uint64(maxInt(int64(rs1), int64(rs2)))
	case insts.OpMINU:
		result = minUint(rs1, rs2)
	case insts.OpMAXU:
		result = maxUint(rs1, rs2)
	case insts.OpSEXTB:
		result = uint64(int64(int8(uint8(rs1))))
	case insts.OpSEXTH:
		result = uint64(int64(int16(uint16(rs1))))
	case insts.OpZEXTH:
		result = uint64(uint16(rs1))
	case insts.OpROL:
		result = rotateLeft(maskXLen(rs1, h.xlen), rs2, h.xlen)
	case insts.OpROR, insts.OpRORI:
		result = rotateRight(maskXLen(rs1, h.xlen), operand2(inst, rs2, imm), h.xlen)
	case insts.OpORCB:
		result = orEachByte(rs1, h.xlen)
	case insts.OpREV8:
		result = reverseBytes(rs1, h.xlen)
	}

	h.writeIntResult(inst.Rd, result)
}

// operand2 selects the immediate for OP-IMM forms and rs2 for OP forms; the
// decoder never populates both Imm and a meaningful Rs2 for the same op.
func operand2(inst *insts.Instruction, rs2, imm uint64) uint64 {
	if inst.Format == insts.FormatI {
		return imm
	}
	return rs2
}

func shiftAmount(inst *insts.Instruction, rs2 uint64, xlen int) uint64 {
	bits := uint64(5)
	if xlen == 64 {
		bits = 6
	}
	if inst.Format == insts.FormatI {
		return uint64(inst.Shamt) & (1<<bits - 1)
	}
	return rs2 & (1<<bits - 1)
}

func maskXLen(v uint64, xlen int) uint64 {
	if xlen == 32 {
		return v & 0xFFFFFFFF
	}
	return v
}

func signExtendXLen(v uint64, xlen int) int64 {
	if xlen == 32 {
		return int64(int32(uint32(v)))
	}
	return int64(v)
}

func signExtend32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

func mulHighSigned(a, b int64) int64 {
	hi, _ := bitsMulSigned(a, b)
	return hi
}

func mulHighSignedUnsigned(a int64, b uint64) int64 {
	neg := a < 0
	ua := uint64(a)
	if neg {
		ua = uint64(-a)
	}
	hi, lo := bitsMulUnsigned(ua, b)
	if !neg {
		return int64(hi)
	}
	lo = ^lo + 1
	hi = ^hi
	if lo == 0 {
		hi++
	}
	return int64(hi)
}

func mulHighUnsigned(a, b uint64) uint64 {
	hi, _ := bitsMulUnsigned(a, b)
	return hi
}

// bitsMulUnsigned returns the 128-bit product of a*b as (hi, lo).
func bitsMulUnsigned(a, b uint64) (hi, lo uint64) {
	const mask32 = 0xFFFFFFFF
	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	t0 := aLo * bLo
	t1 := aHi*bLo + t0>>32
	t2 := aLo*bHi + t1&mask32
	hi = aHi*bHi + t1>>32 + t2>>32
	lo = t2<<32 | t0&mask32
	return hi, lo
}

func bitsMulSigned(a, b int64) (hi, lo int64) {
	uhi, ulo := bitsMulUnsigned(uint64(a), uint64(b))
	result := int64(uhi)
	if a < 0 {
		result -= b
	}
	if b < 0 {
		result -= a
	}
	return result, int64(ulo)
}

func divSigned(a, b int64) int64 {
	if b == 0 {
		return -1
	}
	if a == minInt64() && b == -1 {
		return a
	}
	return a / b
}

func remSigned(a, b int64) int64 {
	if b == 0 {
		return a
	}
	if a == minInt64() && b == -1 {
		return 0
	}
	return a % b
}

func divUnsigned(a, b uint64) uint64 {
	if b == 0 {
		return allBits64
	}
	return a / b
}

func remUnsigned(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return a % b
}

func minInt64() int64 { return int64(-1) << 63 }

func minInt(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minUint(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func maxUint(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func countLeadingZeros(v uint64, xlen int) int {
	bits := xlen
	v = maskXLen(v, xlen)
	if v == 0 {
		return bits
	}
	n := 0
	for i := bits - 1; i >= 0; i-- {
		if v&(1<<uint(i)) != 0 {
			break
		}
		n++
	}
	return n
}

func countTrailingZeros(v uint64, xlen int) int {
	v = maskXLen(v, xlen)
	if v == 0 {
		return xlen
	}
	n := 0
	for v&1 == 0 {
		v >>= 1
		n++
	}
	return n
}

func popCount(v uint64) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

func rotateLeft(v, amt uint64, xlen int) uint64 {
	bits := uint64(xlen)
	amt %= bits
	if amt == 0 {
		return maskXLen(v, xlen)
	}
	return maskXLen((v<<amt)|(v>>(bits-amt)), xlen)
}

func rotateRight(v, amt uint64, xlen int) uint64 {
	bits := uint64(xlen)
	amt %= bits
	if amt == 0 {
		return maskXLen(v, xlen)
	}
	return maskXLen((v>>amt)|(v<<(bits-amt)), xlen)
}

func orEachByte(v uint64, xlen int) uint64 {
	var result uint64
	n := xlen / 8
	for i := 0; i < n; i++ {
		b := (v >> uint(i*8)) & 0xFF
		if b != 0 {
			result |= 0xFF << uint(i*8)
		}
	}
	return result
}

func reverseBytes(v uint64, xlen int) uint64 {
	n := xlen / 8
	var result uint64
	for i := 0; i < n; i++ {
		b := (v >> uint(i*8)) & 0xFF
		result |= b << uint((n-1-i)*8)
	}
	return result
}

// writeIntResult writes rd, masking to xlen width, and invalidates any
// in-flight load queue entry targeting the same register (spec.md §4.5 step
// 9: a register write retires the load that used to own it).
func (h *Hart) writeIntResult(rd uint8, v uint64) {
	h.intRegs.Write(rd, maskXLen(v, h.xlen))
	if h.loadQueueEnabled && rd != 0 {
		h.loadQueue.InvalidateOlderMatching(rd)
	}
}
