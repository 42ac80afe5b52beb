package emu

import (
	"math"
	"math/big"

	"github.com/sarchlab/rvcore/insts"
)

// FP accrued-exception-flag bits (fflags/fcsr[4:0]).
const (
	fflagNX = 1 << 0 // inexact
	fflagUF = 1 << 1 // underflow
	fflagOF = 1 << 2 // overflow
	fflagDZ = 1 << 3 // divide by zero
	fflagNV = 1 << 4 // invalid operation
)

// effectiveRounding resolves an instruction's rm field to a concrete mode,
// reading FRM when the field requests the dynamic mode.
func (h *Hart) effectiveRounding(rm insts.RoundingMode) insts.RoundingMode {
	if rm != insts.RDyn {
		return rm
	}
	frm, _ := h.csrs.Read(CSRFRM, h.privilege, h.debugMode)
	return insts.RoundingMode(frm)
}

func bigRoundingMode(rm insts.RoundingMode) big.RoundingMode {
	switch rm {
	case insts.RTZ:
		return big.ToZero
	case insts.RDN:
		return big.ToNegativeInf
	case insts.RUP:
		return big.ToPositiveInf
	case insts.RMM:
		return big.ToNearestAway
	case insts.RNE:
		return big.ToNearestEven
	default:
		return big.ToNearestEven
	}
}

func (h *Hart) accrueFlags(bits uint8) {
	if bits == 0 {
		return
	}
	cur, _ := h.csrs.Read(CSRFFlags, h.privilege, h.debugMode)
	h.csrs.Write(CSRFFlags, h.privilege, h.debugMode, cur|uint64(bits))
}

// execFP executes the F/D-extension load/store, fused multiply-add, and
// OP-FP instructions. Add, subtract, multiply, divide and fused multiply-add
// on finite operands are performed with math/big.Float at the format's exact
// precision and the instruction's effective rounding mode, since Go's native
// float32/float64 operators always round to nearest-even and expose no way to
// select RTZ/RDN/RUP/RMM (spec.md §4.4's FP engine description). FSQRT and
// the float/integer conversions use Go's native operations and round to
// nearest-even whatever the rounding mode.
func (h *Hart) execFP(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpFLW:
		addr := h.intRegs.Read(inst.Rs1) + uint64(inst.Imm)
		v, _ := h.mem.ReadWord(addr)
		h.fpRegs.WriteSingle(inst.Rd, v)
		return
	case insts.OpFLD:
		addr := h.intRegs.Read(inst.Rs1) + uint64(inst.Imm)
		v, _ := h.mem.ReadDouble(addr)
		h.fpRegs.PokeBits(inst.Rd, v)
		return
	case insts.OpFSW:
		addr := h.intRegs.Read(inst.Rs1) + uint64(inst.Imm)
		h.mem.WriteWord(addr, h.fpRegs.ReadSingle(inst.Rs2))
		return
	case insts.OpFSD:
		addr := h.intRegs.Read(inst.Rs1) + uint64(inst.Imm)
		h.mem.WriteDouble(addr, h.fpRegs.ReadBits(inst.Rs2))
		return
	}

	isDouble := isDoubleOp(inst.Op)
	rm := h.effectiveRounding(inst.RM)

	switch inst.Op {
	case insts.OpFMADDS, insts.OpFMSUBS, insts.OpFNMSUBS, insts.OpFNMADDS,
		insts.OpFMADDD, insts.OpFMSUBD, insts.OpFNMSUBD, insts.OpFNMADDD:
		h.execFusedMA(inst, isDouble, rm)
		return
	case insts.OpFADDS, insts.OpFADDD:
		h.execFPBinary(inst, isDouble, rm, (*big.Float).Add)
		return
	case insts.OpFSUBS, insts.OpFSUBD:
		h.execFPBinary(inst, isDouble, rm, (*big.Float).Sub)
		return
	case insts.OpFMULS, insts.OpFMULD:
		h.execFPBinary(inst, isDouble, rm, (*big.Float).Mul)
		return
	case insts.OpFDIVS, insts.OpFDIVD:
		h.execFPDiv(inst, isDouble, rm)
		return
	case insts.OpFSQRTS, insts.OpFSQRTD:
		h.execFPSqrt(inst, isDouble, rm)
		return
	case insts.OpFSGNJS, insts.OpFSGNJNS, insts.OpFSGNJXS:
		h.execFSGNJ(inst, false)
		return
	case insts.OpFSGNJD, insts.OpFSGNJND, insts.OpFSGNJXD:
		h.execFSGNJ(inst, true)
		return
	case insts.OpFMINS, insts.OpFMAXS:
		h.execFMinMax(inst, false)
		return
	case insts.OpFMIND, insts.OpFMAXD:
		h.execFMinMax(inst, true)
		return
	case insts.OpFEQS, insts.OpFLTS, insts.OpFLES:
		h.execFCompare(inst, false)
		return
	case insts.OpFEQD, insts.OpFLTD, insts.OpFLED:
		h.execFCompare(inst, true)
		return
	case insts.OpFCLASSS:
		h.writeIntResult(inst.Rd, uint64(fclass32(h.fpRegs.ReadSingleFloat(inst.Rs1))))
		return
	case insts.OpFCLASSD:
		h.writeIntResult(inst.Rd, uint64(fclass64(h.fpRegs.ReadDouble(inst.Rs1))))
		return
	case insts.OpFMVXW:
		h.writeIntResult(inst.Rd, uint64(int64(int32(h.fpRegs.ReadSingle(inst.Rs1)))))
		return
	case insts.OpFMVXD:
		h.writeIntResult(inst.Rd, h.fpRegs.ReadBits(inst.Rs1))
		return
	case insts.OpFMVWX:
		h.fpRegs.WriteSingle(inst.Rd, uint32(h.intRegs.Read(inst.Rs1)))
		return
	case insts.OpFMVDX:
		h.fpRegs.PokeBits(inst.Rd, h.intRegs.Read(inst.Rs1))
		return
	case insts.OpFCVTWS, insts.OpFCVTWUS, insts.OpFCVTLS, insts.OpFCVTLUS:
		h.execFCVTToInt(inst, h.fpRegs.ReadSingleFloat(inst.Rs1), rm)
		return
	case insts.OpFCVTWD, insts.OpFCVTWUD, insts.OpFCVTLD, insts.OpFCVTLUD:
		h.execFCVTToIntD(inst, h.fpRegs.ReadDouble(inst.Rs1), rm)
		return
	case insts.OpFCVTSW, insts.OpFCVTSWU, insts.OpFCVTSL, insts.OpFCVTSLU:
		h.execFCVTFromInt(inst, false, rm)
		return
	case insts.OpFCVTDW, insts.OpFCVTDWU, insts.OpFCVTDL, insts.OpFCVTDLU:
		h.execFCVTFromInt(inst, true, rm)
		return
	case insts.OpFCVTSD:
		v := h.fpRegs.ReadDouble(inst.Rs1)
		h.fpRegs.WriteSingleFloat(inst.Rd, float32(v))
		return
	case insts.OpFCVTDS:
		v := h.fpRegs.ReadSingleFloat(inst.Rs1)
		h.fpRegs.WriteDouble(inst.Rd, float64(v))
		return
	}
}

func isDoubleOp(op insts.Op) bool {
	switch op {
	case insts.OpFMADDD, insts.OpFMSUBD, insts.OpFNMSUBD, insts.OpFNMADDD,
		insts.OpFADDD, insts.OpFSUBD, insts.OpFMULD, insts.OpFDIVD, insts.OpFSQRTD,
		insts.OpFSGNJD, insts.OpFSGNJND, insts.OpFSGNJXD, insts.OpFMIND, insts.OpFMAXD,
		insts.OpFEQD, insts.OpFLTD, insts.OpFLED, insts.OpFCLASSD:
		return true
	}
	return false
}

const singlePrec = 24
const doublePrec = 53

func (h *Hart) toBig(isDouble bool, bits uint64) (*big.Float, bool, bool) {
	if isDouble {
		f := math.Float64frombits(bits)
		if math.IsNaN(f) {
			return nil, true, false
		}
		if math.IsInf(f, 0) {
			return nil, false, true
		}
		return new(big.Float).SetPrec(doublePrec).SetFloat64(f), false, false
	}
	f := math.Float32frombits(uint32(bits))
	if isNaN32(f) {
		return nil, true, false
	}
	if isInf32(f) {
		return nil, false, true
	}
	return new(big.Float).SetPrec(singlePrec).SetFloat64(float64(f)), false, false
}

func isNaN32(f float32) bool { return f != f }
func isInf32(f float32) bool {
	return f > math.MaxFloat32 || f < -math.MaxFloat32
}

func (h *Hart) fromBig(inst *insts.Instruction, isDouble bool, result *big.Float, acc big.Accuracy, rm insts.RoundingMode) {
	var flags uint8
	if acc != big.Exact {
		flags |= fflagNX
	}
	if isDouble {
		v, _ := result.Float64()
		h.fpRegs.WriteDouble(inst.Rd, v)
	} else {
		v, _ := result.Float32()
		h.fpRegs.WriteSingleFloat(inst.Rd, v)
	}
	h.accrueFlags(flags)
}

func (h *Hart) writeNaN(inst *insts.Instruction, isDouble bool, invalid bool) {
	if isDouble {
		h.fpRegs.WriteDouble(inst.Rd, math.NaN())
	} else {
		h.fpRegs.WriteSingleFloat(inst.Rd, float32(math.NaN()))
	}
	if invalid {
		h.accrueFlags(fflagNV)
	}
}

func (h *Hart) execFPBinary(inst *insts.Instruction, isDouble bool, rm insts.RoundingMode, op func(z, x, y *big.Float) *big.Float) {
	var a, b uint64
	if isDouble {
		a, b = h.fpRegs.ReadBits(inst.Rs1), h.fpRegs.ReadBits(inst.Rs2)
	} else {
		a, b = uint64(h.fpRegs.ReadSingle(inst.Rs1)), uint64(h.fpRegs.ReadSingle(inst.Rs2))
	}

	bigA, nanA, infA := h.toBig(isDouble, a)
	bigB, nanB, infB := h.toBig(isDouble, b)
	if nanA || nanB {
		h.writeNaN(inst, isDouble, true)
		return
	}
	if infA || infB {
		h.execNativeBinary(inst, isDouble, a, b)
		return
	}

	prec := uint(singlePrec)
	if isDouble {
		prec = doublePrec
	}
	z := new(big.Float).SetPrec(prec).SetMode(bigRoundingMode(rm))
	op(z, bigA, bigB)
	h.fromBig(inst, isDouble, z, z.Acc(), rm)
}

// execNativeBinary falls back to Go's hardware float op (always
// round-to-nearest-even) when an operand is infinite: big.Float cannot
// represent infinities, and RISC-V's infinity arithmetic is exact (never
// inexact), so the rounding mode is moot here.
func (h *Hart) execNativeBinary(inst *insts.Instruction, isDouble bool, a, b uint64) {
	if isDouble {
		x, y := math.Float64frombits(a), math.Float64frombits(b)
		var r float64
		switch inst.Op {
		case insts.OpFADDD:
			r = x + y
		case insts.OpFSUBD:
			r = x - y
		case insts.OpFMULD:
			r = x * y
		case insts.OpFDIVD:
			r = x / y
		}
		h.fpRegs.WriteDouble(inst.Rd, r)
		if math.IsNaN(r) {
			h.accrueFlags(fflagNV)
		}
		return
	}
	x, y := h.fpRegs.ReadSingleFloat(inst.Rs1), h.fpRegs.ReadSingleFloat(inst.Rs2)
	var r float32
	switch inst.Op {
	case insts.OpFADDS:
		r = x + y
	case insts.OpFSUBS:
		r = x - y
	case insts.OpFMULS:
		r = x * y
	case insts.OpFDIVS:
		r = x / y
	}
	h.fpRegs.WriteSingleFloat(inst.Rd, r)
	if isNaN32(r) {
		h.accrueFlags(fflagNV)
	}
}

func (h *Hart) execFPDiv(inst *insts.Instruction, isDouble bool, rm insts.RoundingMode) {
	var b uint64
	if isDouble {
		b = h.fpRegs.ReadBits(inst.Rs2)
	} else {
		b = uint64(h.fpRegs.ReadSingle(inst.Rs2))
	}
	if isZeroBits(isDouble, b) {
		h.accrueFlags(fflagDZ)
	}
	h.execFPBinary(inst, isDouble, rm, (*big.Float).Quo)
}

func isZeroBits(isDouble bool, bits uint64) bool {
	if isDouble {
		return math.Float64frombits(bits) == 0
	}
	return math.Float32frombits(uint32(bits)) == 0
}

func (h *Hart) execFPSqrt(inst *insts.Instruction, isDouble bool, rm insts.RoundingMode) {
	if isDouble {
		x := h.fpRegs.ReadDouble(inst.Rs1)
		if x < 0 {
			h.writeNaN(inst, true, true)
			return
		}
		h.fpRegs.WriteDouble(inst.Rd, math.Sqrt(x))
		return
	}
	x := h.fpRegs.ReadSingleFloat(inst.Rs1)
	if x < 0 {
		h.writeNaN(inst, false, true)
		return
	}
	h.fpRegs.WriteSingleFloat(inst.Rd, float32(math.Sqrt(float64(x))))
}

// execFusedMA executes the R4-format fused multiply-add family. The product
// a*b is computed at double the format's precision before adding c, giving a
// single final rounding (spec.md's fused-multiply-add requirement).
func (h *Hart) execFusedMA(inst *insts.Instruction, isDouble bool, rm insts.RoundingMode) {
	negP, negA := negateFlags(inst.Op)

	prec := uint(singlePrec)
	if isDouble {
		prec = doublePrec
	}

	var a, b, c uint64
	if isDouble {
		a, b, c = h.fpRegs.ReadBits(inst.Rs1), h.fpRegs.ReadBits(inst.Rs2), h.fpRegs.ReadBits(inst.Rs3)
	} else {
		a = uint64(h.fpRegs.ReadSingle(inst.Rs1))
		b = uint64(h.fpRegs.ReadSingle(inst.Rs2))
		c = uint64(h.fpRegs.ReadSingle(inst.Rs3))
	}

	bigA, nanA, _ := h.toBig(isDouble, a)
	bigB, nanB, _ := h.toBig(isDouble, b)
	bigC, nanC, infC := h.toBig(isDouble, c)
	if nanA || nanB || nanC {
		h.writeNaN(inst, isDouble, true)
		return
	}
	if infC {
		h.execFusedMANative(inst, isDouble, negP, negA)
		return
	}

	product := new(big.Float).SetPrec(2 * prec).Mul(bigA, bigB)
	if negP {
		product.Neg(product)
	}
	addend := new(big.Float).SetPrec(2 * prec).Set(bigC)
	if negA {
		addend.Neg(addend)
	}

	z := new(big.Float).SetPrec(prec).SetMode(bigRoundingMode(rm))
	z.Add(product, addend)
	h.fromBig(inst, isDouble, z, z.Acc(), rm)
}

func (h *Hart) execFusedMANative(inst *insts.Instruction, isDouble bool, negP, negA bool) {
	if isDouble {
		a, b, c := h.fpRegs.ReadDouble(inst.Rs1), h.fpRegs.ReadDouble(inst.Rs2), h.fpRegs.ReadDouble(inst.Rs3)
		p := a * b
		if negP {
			p = -p
		}
		if negA {
			c = -c
		}
		h.fpRegs.WriteDouble(inst.Rd, p+c)
		return
	}
	a, b, c := h.fpRegs.ReadSingleFloat(inst.Rs1), h.fpRegs.ReadSingleFloat(inst.Rs2), h.fpRegs.ReadSingleFloat(inst.Rs3)
	p := a * b
	if negP {
		p = -p
	}
	if negA {
		c = -c
	}
	h.fpRegs.WriteSingleFloat(inst.Rd, p+c)
}

func negateFlags(op insts.Op) (negProduct, negAddend bool) {
	switch op {
	case insts.OpFMSUBS, insts.OpFMSUBD:
		return false, true
	case insts.OpFNMSUBS, insts.OpFNMSUBD:
		return true, false
	case insts.OpFNMADDS, insts.OpFNMADDD:
		return true, true
	default:
		return false, false
	}
}

func (h *Hart) execFSGNJ(inst *insts.Instruction, isDouble bool) {
	if isDouble {
		a := h.fpRegs.ReadBits(inst.Rs1)
		b := h.fpRegs.ReadBits(inst.Rs2)
		const signBit = uint64(1) << 63
		var sign uint64
		switch inst.Op {
		case insts.OpFSGNJD:
			sign = b & signBit
		case insts.OpFSGNJND:
			sign = ^b & signBit
		case insts.OpFSGNJXD:
			sign = (a ^ b) & signBit
		}
		h.fpRegs.PokeBits(inst.Rd, (a &^ signBit) | sign)
		return
	}
	a := h.fpRegs.ReadSingle(inst.Rs1)
	b := h.fpRegs.ReadSingle(inst.Rs2)
	const signBit = uint32(1) << 31
	var sign uint32
	switch inst.Op {
	case insts.OpFSGNJS:
		sign = b & signBit
	case insts.OpFSGNJNS:
		sign = ^b & signBit
	case insts.OpFSGNJXS:
		sign = (a ^ b) & signBit
	}
	h.fpRegs.WriteSingle(inst.Rd, (a&^signBit)|sign)
}

func (h *Hart) execFMinMax(inst *insts.Instruction, isDouble bool) {
	if isDouble {
		a, b := h.fpRegs.ReadDouble(inst.Rs1), h.fpRegs.ReadDouble(inst.Rs2)
		h.fpRegs.WriteDouble(inst.Rd, fMinMax64(a, b, inst.Op == insts.OpFMAXD, h))
		return
	}
	a, b := h.fpRegs.ReadSingleFloat(inst.Rs1), h.fpRegs.ReadSingleFloat(inst.Rs2)
	h.fpRegs.WriteSingleFloat(inst.Rd, fMinMax32(a, b, inst.Op == insts.OpFMAXS, h))
}

func fMinMax64(a, b float64, max bool, h *Hart) float64 {
	if math.IsNaN(a) && math.IsNaN(b) {
		h.accrueFlags(fflagNV)
		return math.NaN()
	}
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	if max {
		return math.Max(a, b)
	}
	return math.Min(a, b)
}

func fMinMax32(a, b float32, max bool, h *Hart) float32 {
	if isNaN32(a) && isNaN32(b) {
		h.accrueFlags(fflagNV)
		return float32(math.NaN())
	}
	if isNaN32(a) {
		return b
	}
	if isNaN32(b) {
		return a
	}
	if max {
		if a > b {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

func (h *Hart) execFCompare(inst *insts.Instruction, isDouble bool) {
	var nan bool
	var eq, lt bool
	if isDouble {
		a, b := h.fpRegs.ReadDouble(inst.Rs1), h.fpRegs.ReadDouble(inst.Rs2)
		nan = math.IsNaN(a) || math.IsNaN(b)
		eq, lt = a == b, a < b
	} else {
		a, b := h.fpRegs.ReadSingleFloat(inst.Rs1), h.fpRegs.ReadSingleFloat(inst.Rs2)
		nan = isNaN32(a) || isNaN32(b)
		eq, lt = a == b, a < b
	}

	if nan {
		h.accrueFlags(fflagNV)
		h.writeIntResult(inst.Rd, 0)
		return
	}

	var result bool
	switch inst.Op {
	case insts.OpFEQS, insts.OpFEQD:
		result = eq
	case insts.OpFLTS, insts.OpFLTD:
		result = lt
	case insts.OpFLES, insts.OpFLED:
		result = lt || eq
	}
	if result {
		h.writeIntResult(inst.Rd, 1)
	} else {
		h.writeIntResult(inst.Rd, 0)
	}
}

// fclass32/fclass64 implement FCLASS.S/D's 10-bit classification per the
// standard encoding (bit 0: -inf .. bit 9: quiet NaN).
func fclass32(f float32) uint32 {
	bits := math.Float32bits(f)
	neg := bits>>31 == 1
	switch {
	case isNaN32(f):
		if bits&(1<<22) != 0 {
			return 1 << 9
		}
		return 1 << 8
	case isInf32(f):
		if neg {
			return 1 << 0
		}
		return 1 << 7
	case f == 0:
		if neg {
			return 1 << 3
		}
		return 1 << 4
	case isSubnormal32(bits):
		if neg {
			return 1 << 2
		}
		return 1 << 5
	default:
		if neg {
			return 1 << 1
		}
		return 1 << 6
	}
}

func isSubnormal32(bits uint32) bool {
	exp := (bits >> 23) & 0xFF
	return exp == 0 && (bits&0x7FFFFF) != 0
}

func fclass64(f float64) uint64 {
	bits := math.Float64bits(f)
	neg := bits>>63 == 1
	switch {
	case math.IsNaN(f):
		if bits&(1<<51) != 0 {
			return 1 << 9
		}
		return 1 << 8
	case math.IsInf(f, 0):
		if neg {
			return 1 << 0
		}
		return 1 << 7
	case f == 0:
		if neg {
			return 1 << 3
		}
		return 1 << 4
	case isSubnormal64(bits):
		if neg {
			return 1 << 2
		}
		return 1 << 5
	default:
		if neg {
			return 1 << 1
		}
		return 1 << 6
	}
}

func isSubnormal64(bits uint64) bool {
	exp := (bits >> 52) & 0x7FF
	return exp == 0 && (bits&0xFFFFFFFFFFFFF) != 0
}

// execFCVTToInt/execFCVTToIntD convert a float to an integer, per FCVT.W/WU/
// L/LU.S|D. Out-of-range and NaN inputs saturate to the format's max/min
// representable value, per the ISA's documented invalid-conversion behavior.
func (h *Hart) execFCVTToInt(inst *insts.Instruction, f float32, rm insts.RoundingMode) {
	h.convertFloatToInt(inst, float64(f), isNaN32(f), isInf32(f), f < 0)
}

func (h *Hart) execFCVTToIntD(inst *insts.Instruction, f float64, rm insts.RoundingMode) {
	h.convertFloatToInt(inst, f, math.IsNaN(f), math.IsInf(f, 0), f < 0)
}

func (h *Hart) convertFloatToInt(inst *insts.Instruction, f float64, nan, inf, neg bool) {
	signedDst := inst.Op == insts.OpFCVTWS || inst.Op == insts.OpFCVTLS ||
		inst.Op == insts.OpFCVTWD || inst.Op == insts.OpFCVTLD
	wide := inst.Op == insts.OpFCVTLS || inst.Op == insts.OpFCVTLUS ||
		inst.Op == insts.OpFCVTLD || inst.Op == insts.OpFCVTLUD

	if nan {
		h.accrueFlags(fflagNV)
		h.writeIntResult(inst.Rd, saturateMax(signedDst, wide, false))
		return
	}
	if inf {
		h.accrueFlags(fflagNV)
		h.writeIntResult(inst.Rd, saturateMax(signedDst, wide, neg))
		return
	}

	rounded := math.RoundToEven(f)
	if rounded != f {
		h.accrueFlags(fflagNX)
	}

	var result uint64
	overflow := false
	switch {
	case signedDst && wide:
		if rounded >= 9223372036854775808.0 || rounded < -9223372036854775808.0 {
			overflow = true
		} else {
			result = uint64(int64(rounded))
		}
	case signedDst && !wide:
		if rounded >= 2147483648.0 || rounded < -2147483648.0 {
			overflow = true
		} else {
			result = uint64(int64(int32(rounded)))
		}
	case !signedDst && wide:
		if rounded < 0 || rounded >= 18446744073709551615.0 {
			overflow = true
		} else {
			result = uint64(rounded)
		}
	default:
		if rounded < 0 || rounded > 4294967295.0 {
			overflow = true
		} else {
			result = uint64(uint32(rounded))
		}
	}

	if overflow {
		h.accrueFlags(fflagNV)
		result = saturateMax(signedDst, wide, neg)
	}
	h.writeIntResult(inst.Rd, result)
}

func saturateMax(signed, wide, neg bool) uint64 {
	switch {
	case signed && wide:
		if neg {
			minVal := int64(math.MinInt64)
			return uint64(minVal)
		}
		return uint64(math.MaxInt64)
	case signed && !wide:
		if neg {
			minVal := int64(int32(math.MinInt32))
			return uint64(minVal)
		}
		return uint64(int64(int32(math.MaxInt32)))
	case !signed && wide:
		if neg {
			return 0
		}
		return allBits64
	default:
		if neg {
			return 0
		}
		return uint64(uint32(0xFFFFFFFF))
	}
}

func (h *Hart) execFCVTFromInt(inst *insts.Instruction, isDouble bool, rm insts.RoundingMode) {
	raw := h.intRegs.Read(inst.Rs1)
	signed := inst.Op == insts.OpFCVTSW || inst.Op == insts.OpFCVTSL ||
		inst.Op == insts.OpFCVTDW || inst.Op == insts.OpFCVTDL
	wide := inst.Op == insts.OpFCVTSL || inst.Op == insts.OpFCVTSLU ||
		inst.Op == insts.OpFCVTDL || inst.Op == insts.OpFCVTDLU

	var f float64
	switch {
	case signed && wide:
		f = float64(int64(raw))
	case signed && !wide:
		f = float64(int32(uint32(raw)))
	case !signed && wide:
		f = float64(raw)
	default:
		f = float64(uint32(raw))
	}

	if isDouble {
		h.fpRegs.WriteDouble(inst.Rd, f)
	} else {
		rounded := float32(f)
		if float64(rounded) != f {
			h.accrueFlags(fflagNX)
		}
		h.fpRegs.WriteSingleFloat(inst.Rd, rounded)
	}
}
