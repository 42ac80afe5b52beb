// Package insts provides RISC-V instruction definitions and decoding.
//
// It supports the base RV32I/RV64I integer ISA plus the standard compressed
// (C), multiply/divide (M), atomic (A), single/double-precision floating
// point (F/D) and a minor bit-manipulation (Zbb-style) extension. Decoding
// maps a 16- or 32-bit instruction word directly to an Instruction
// descriptor; there is no intermediate microcode.
package insts

// Op identifies a decoded RISC-V operation.
type Op uint16

// RISC-V opcodes. Grouped roughly by instruction class; the numeric values
// themselves carry no meaning beyond identity.
const (
	OpUnknown Op = iota
	OpIllegal

	OpLUI
	OpAUIPC
	OpJAL
	OpJALR

	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	OpLB
	OpLH
	OpLW
	OpLD
	OpLBU
	OpLHU
	OpLWU

	OpSB
	OpSH
	OpSW
	OpSD

	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND

	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW

	OpFENCE
	OpFENCEI

	OpECALL
	OpEBREAK
	OpMRET
	OpSRET
	OpURET
	OpWFI

	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	// M extension.
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpMULW
	OpDIVW
	OpDIVUW
	OpREMW
	OpREMUW

	// A extension.
	OpLRW
	OpSCW
	OpAMOSWAPW
	OpAMOADDW
	OpAMOXORW
	OpAMOANDW
	OpAMOORW
	OpAMOMINW
	OpAMOMAXW
	OpAMOMINUW
	OpAMOMAXUW
	OpLRD
	OpSCD
	OpAMOSWAPD
	OpAMOADDD
	OpAMOXORD
	OpAMOANDD
	OpAMOORD
	OpAMOMIND
	OpAMOMAXD
	OpAMOMINUD
	OpAMOMAXUD

	// F/D extension.
	OpFLW
	OpFLD
	OpFSW
	OpFSD
	OpFMADDS
	OpFMSUBS
	OpFNMSUBS
	OpFNMADDS
	OpFMADDD
	OpFMSUBD
	OpFNMSUBD
	OpFNMADDD
	OpFADDS
	OpFSUBS
	OpFMULS
	OpFDIVS
	OpFSQRTS
	OpFSGNJS
	OpFSGNJNS
	OpFSGNJXS
	OpFMINS
	OpFMAXS
	OpFCVTWS
	OpFCVTWUS
	OpFCVTSW
	OpFCVTSWU
	OpFMVXW
	OpFMVWX
	OpFEQS
	OpFLTS
	OpFLES
	OpFCLASSS
	OpFCVTLS
	OpFCVTLUS
	OpFCVTSL
	OpFCVTSLU
	OpFADDD
	OpFSUBD
	OpFMULD
	OpFDIVD
	OpFSQRTD
	OpFSGNJD
	OpFSGNJND
	OpFSGNJXD
	OpFMIND
	OpFMAXD
	OpFCVTSD
	OpFCVTDS
	OpFEQD
	OpFLTD
	OpFLED
	OpFCLASSD
	OpFCVTWD
	OpFCVTWUD
	OpFCVTDW
	OpFCVTDWU
	OpFCVTLD
	OpFCVTLUD
	OpFCVTDL
	OpFCVTDLU
	OpFMVXD
	OpFMVDX

	// Minor bit-manipulation extension (Zbb-style subset).
	OpANDN
	OpORN
	OpXNOR
	OpCLZ
	OpCTZ
	OpCPOP
	OpMIN
	OpMAX
	OpMINU
	OpMAXU
	OpSEXTB
	OpSEXTH
	OpZEXTH
	OpROL
	OpROR
	OpRORI
	OpORCB
	OpREV8
)

// Format identifies an instruction encoding shape.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatCSR
	FormatAMO
	FormatR4 // fused multiply-add (rs1, rs2, rs3)
	FormatFence
)

// Category classifies an instruction for trap dispatch, statistics and
// performance-counter accounting (spec.md §6's MHPMEVENT list).
type Category uint8

// Instruction semantic categories.
const (
	CategoryInteger Category = iota
	CategoryLoad
	CategoryStore
	CategoryBranch
	CategoryJump
	CategoryMultiply
	CategoryDivide
	CategoryAtomic
	CategoryCSR
	CategoryFP
	CategorySystem
	CategoryFence
)

// RoundingMode is the effective FP rounding mode encoded in an instruction's
// rm field (or the dynamic mode sourced from FCSR.FRM).
type RoundingMode uint8

// Rounding modes. Values 5 and 6 are reserved and decode as illegal.
const (
	RNE     RoundingMode = 0
	RTZ     RoundingMode = 1
	RDN     RoundingMode = 2
	RUP     RoundingMode = 3
	RMM     RoundingMode = 4
	RDyn    RoundingMode = 7
	rmResv1 RoundingMode = 5
	rmResv2 RoundingMode = 6
)

// ValidRoundingField reports whether a raw 3-bit rm field value is legal.
func ValidRoundingField(rm uint8) bool {
	return rm != uint8(rmResv1) && rm != uint8(rmResv2)
}

// Extension identifies an optional ISA extension bit, indexed the same way
// MISA does (letter position A=0 .. Z=25).
type Extension uint32

// Extension bits used by this core. Values match MISA bit positions so
// enabled-extension sets can be derived directly from a MISA value.
const (
	ExtA Extension = 1 << 0
	ExtC Extension = 1 << 2
	ExtD Extension = 1 << 3
	ExtF Extension = 1 << 5
	ExtM Extension = 1 << 12
	ExtS Extension = 1 << 18
	ExtU Extension = 1 << 20
	// ExtB is the minor bit-manipulation extension; placed at bit 1 ('B'),
	// matching the MISA letter it would occupy.
	ExtB Extension = 1 << 1
)

// ExtensionSet is a bit set of enabled extensions, as produced by MISA at
// reset (spec.md §3's enabled_extensions).
type ExtensionSet uint32

// Has reports whether ext is present in the set.
func (s ExtensionSet) Has(ext Extension) bool { return s&ExtensionSet(ext) != 0 }

// Instruction is a decoded RISC-V instruction. Only the fields relevant to
// Format/Op are populated by the decoder; the executor reads operands by
// field name, not by position.
type Instruction struct {
	Op       Op
	Format   Format
	Category Category
	Raw      uint32 // the original 16- or 32-bit word
	Size     uint8  // 2 or 4, the number of bytes this instruction occupies

	Is64Bit bool // true when the opcode operates on the full xlen (vs. W-form 32-bit)

	Rd  uint8
	Rs1 uint8
	Rs2 uint8
	Rs3 uint8 // fused multiply-add only

	// Imm holds the decoded immediate, sign-extended into an int64 so
	// callers can reinterpret it as signed or unsigned per the operand's
	// Signed flag without re-deriving the sign bit.
	Imm    int64
	Signed bool

	Csr uint16

	Shamt uint8 // shift amount for immediate shifts

	RM RoundingMode // effective rounding-mode field for FP ops

	// FP fused multiply-add negation flags (FNMSUB/FNMADD).
	NegateProduct bool
	NegateAddend  bool
}

// IsLegal reports whether the decoder was able to classify the word.
func (i *Instruction) IsLegal() bool {
	return i.Op != OpUnknown && i.Op != OpIllegal
}
