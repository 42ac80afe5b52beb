package emu

// Standard RISC-V privileged CSR numbers used by this core.
const (
	CSRFFlags uint16 = 0x001
	CSRFRM    uint16 = 0x002
	CSRFCSR   uint16 = 0x003

	CSRCycle   uint16 = 0xC00
	CSRTime    uint16 = 0xC01
	CSRInstret uint16 = 0xC02

	CSRSStatus    uint16 = 0x100
	CSRSIE        uint16 = 0x104
	CSRSTVec      uint16 = 0x105
	CSRSCounteren uint16 = 0x106
	CSRSScratch   uint16 = 0x140
	CSRSEPC       uint16 = 0x141
	CSRSCause     uint16 = 0x142
	CSRSTVal      uint16 = 0x143
	CSRSIP        uint16 = 0x144
	CSRSATP       uint16 = 0x180

	CSRMVendorID uint16 = 0xF11
	CSRMArchID   uint16 = 0xF12
	CSRMImpID    uint16 = 0xF13
	CSRMHartID   uint16 = 0xF14

	CSRMStatus    uint16 = 0x300
	CSRMISA       uint16 = 0x301
	CSRMEDeleg    uint16 = 0x302
	CSRMIDeleg    uint16 = 0x303
	CSRMIE        uint16 = 0x304
	CSRMTVec      uint16 = 0x305
	CSRMCounteren uint16 = 0x306
	CSRMScratch   uint16 = 0x340
	CSRMEPC       uint16 = 0x341
	CSRMCause     uint16 = 0x342
	CSRMTVal      uint16 = 0x343
	CSRMIP        uint16 = 0x344

	CSRMCycle    uint16 = 0xB00
	CSRMInstret  uint16 = 0xB02
	CSRMCycleH   uint16 = 0xB80
	CSRMInstretH uint16 = 0xB82

	// MHPMCOUNTER3..31 and their high halves, and MHPMEVENT3..31, are
	// contiguous ranges; see hpmCounterNumber/hpmEventNumber.

	CSRTSelect uint16 = 0x7A0
	CSRTData1  uint16 = 0x7A1
	CSRTData2  uint16 = 0x7A2
	CSRTData3  uint16 = 0x7A3

	CSRDCSR      uint16 = 0x7B0
	CSRDPC       uint16 = 0x7B1
	CSRDScratch0 uint16 = 0x7B2
	CSRDScratch1 uint16 = 0x7B3

	// Implementation-defined CSRs (spec.md §6), placed in the custom
	// machine-mode space (0x7C0-0x7FF, 0xFC0-0xFFF).
	CSRMRAC   uint16 = 0x7C0 // region access control
	CSRMGPMC  uint16 = 0x7D0 // performance-counter global enable (1-instruction delay)
	CSRMDSEAC uint16 = 0xFC0 // latched store/load bus-error address
	CSRMEIHAP uint16 = 0xFC8 // external-interrupt claim-id / handler-address pointer
)

func hpmCounterNumber(n int) uint16  { return CSRMCycle + uint16(n) }     // n in [3,31] -> 0xB03..0xB1F
func hpmCounterHNumber(n int) uint16 { return CSRMCycleH + uint16(n) }    // 0xB83..0xB9F
func hpmEventNumber(n int) uint16    { return 0x323 + uint16(n-3) }       // 0x323..0x33F

// MIP/MIE bit positions. Positions 28 and 29 for the implementation-defined
// internal-timer interrupts are the core's own wiring choice; see
// DESIGN.md's resolution of the corresponding open question.
const (
	MIPMSIP  = 1 << 3
	MIPMTIP  = 1 << 7
	MIPMEIP  = 1 << 11
	MIPMLIP  = 1 << 16 // M-local interrupt, implementation-defined position
	MIPMITIP0 = 1 << 28
	MIPMITIP1 = 1 << 29
)

// MStatus field masks (xlen=64 layout; the 32-bit layout is a subset of the
// same bit positions, high bits simply unused).
const (
	MStatusMIE  = 1 << 3
	MStatusSIE  = 1 << 1
	MStatusUIE  = 1 << 0
	MStatusMPIE = 1 << 7
	MStatusSPIE = 1 << 5
	MStatusUPIE = 1 << 4
	MStatusSPP  = 1 << 8
	MStatusMPPShift = 11
	MStatusMPPMask  = 0x3 << MStatusMPPShift
)
