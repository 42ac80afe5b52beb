package emu

import "github.com/sarchlab/rvcore/insts"

const allBits64 = ^uint64(0)

func (h *Hart) define(num uint16, name string, priv Privilege, writeMask, pokeMask, reset uint64) {
	h.csrs.Define(&CSRDescriptor{
		Number:      num,
		Name:        name,
		Implemented: true,
		Privilege:   priv,
		WriteMask:   writeMask,
		PokeMask:    pokeMask,
		ResetValue:  reset,
	})
}

func (h *Hart) defineDebug(num uint16, name string, writeMask, pokeMask, reset uint64) {
	h.csrs.Define(&CSRDescriptor{
		Number:      num,
		Name:        name,
		Implemented: true,
		Privilege:   PrivMachine,
		DebugOnly:   true,
		WriteMask:   writeMask,
		PokeMask:    pokeMask,
		ResetValue:  reset,
	})
}

func (h *Hart) defineTied(num uint16, name string, priv Privilege, writeMask, pokeMask uint64, counter TiedCounter) {
	h.csrs.Define(&CSRDescriptor{
		Number:      num,
		Name:        name,
		Implemented: true,
		Privilege:   priv,
		WriteMask:   writeMask,
		PokeMask:    pokeMask,
		tied:        counter,
	})
}

// setupCSRs populates the hart's CSR file with the full machine/
// supervisor/user CSR set named in spec.md §6, including the
// implementation-defined MDSEAC/MEIHAP/MGPMC/MRAC/MHPMCOUNTER*/MHPMEVENT*
// registers.
func (h *Hart) setupCSRs() {
	misa := h.misaValue()

	h.define(CSRMStatus, "mstatus", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMISA, "misa", PrivMachine, 0, allBits64, misa) // read-only in this core: no extension toggling at runtime
	h.define(CSRMEDeleg, "medeleg", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMIDeleg, "mideleg", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMIE, "mie", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMTVec, "mtvec", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMCounteren, "mcounteren", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMScratch, "mscratch", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMEPC, "mepc", PrivMachine, ^uint64(1), ^uint64(1), 0)
	h.define(CSRMCause, "mcause", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMTVal, "mtval", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMIP, "mip", PrivMachine, allBits64, allBits64, 0)

	h.define(CSRMVendorID, "mvendorid", PrivMachine, 0, 0, 0)
	h.define(CSRMArchID, "marchid", PrivMachine, 0, 0, 0)
	h.define(CSRMImpID, "mimpid", PrivMachine, 0, 0, 0)
	h.define(CSRMHartID, "mhartid", PrivMachine, 0, 0, uint64(h.id))

	h.defineTied(CSRMCycle, "mcycle", PrivMachine, allBits64, allBits64, TieCounter(&h.cycleCount))
	h.defineTied(CSRMInstret, "minstret", PrivMachine, allBits64, allBits64, TieCounter(&h.retiredInsts))
	if h.xlen == 32 {
		h.define(CSRMCycleH, "mcycleh", PrivMachine, allBits64, allBits64, 0)
		h.define(CSRMInstretH, "minstreth", PrivMachine, allBits64, allBits64, 0)
	}

	for n := 3; n <= 31; n++ {
		h.define(hpmCounterNumber(n), "mhpmcounter", PrivMachine, allBits64, allBits64, 0)
		h.define(hpmEventNumber(n), "mhpmevent", PrivMachine, allBits64, allBits64, 0)
		if h.xlen == 32 {
			h.define(hpmCounterHNumber(n), "mhpmcounterh", PrivMachine, allBits64, allBits64, 0)
		}
	}

	if h.enabledExtensions.Has(insts.ExtS) {
		h.define(CSRSStatus, "sstatus", PrivSupervisor, 0x000de133, 0x000de133, 0)
		h.define(CSRSIE, "sie", PrivSupervisor, allBits64, allBits64, 0)
		h.define(CSRSTVec, "stvec", PrivSupervisor, allBits64, allBits64, 0)
		h.define(CSRSCounteren, "scounteren", PrivSupervisor, allBits64, allBits64, 0)
		h.define(CSRSScratch, "sscratch", PrivSupervisor, allBits64, allBits64, 0)
		h.define(CSRSEPC, "sepc", PrivSupervisor, ^uint64(1), ^uint64(1), 0)
		h.define(CSRSCause, "scause", PrivSupervisor, allBits64, allBits64, 0)
		h.define(CSRSTVal, "stval", PrivSupervisor, allBits64, allBits64, 0)
		h.define(CSRSIP, "sip", PrivSupervisor, allBits64, allBits64, 0)
		h.define(CSRSATP, "satp", PrivSupervisor, allBits64, allBits64, 0)
	}

	h.define(CSRFFlags, "fflags", PrivUser, 0x1F, 0x1F, 0)
	h.define(CSRFRM, "frm", PrivUser, 0x7, 0x7, 0)
	h.define(CSRFCSR, "fcsr", PrivUser, 0xFF, 0xFF, 0)

	h.define(CSRCycle, "cycle", PrivUser, 0, 0, 0)
	h.define(CSRTime, "time", PrivUser, 0, 0, 0)
	h.define(CSRInstret, "instret", PrivUser, 0, 0, 0)

	h.define(CSRTSelect, "tselect", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRTData1, "tdata1", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRTData2, "tdata2", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRTData3, "tdata3", PrivMachine, allBits64, allBits64, 0)

	h.defineDebug(CSRDCSR, "dcsr", allBits64, allBits64, 0x40000003)
	h.defineDebug(CSRDPC, "dpc", allBits64, allBits64, 0)
	h.defineDebug(CSRDScratch0, "dscratch0", allBits64, allBits64, 0)
	h.defineDebug(CSRDScratch1, "dscratch1", allBits64, allBits64, 0)

	h.define(CSRMRAC, "mrac", PrivMachine, allBits64, allBits64, 0)
	h.define(CSRMGPMC, "mgpmc", PrivMachine, 0x1, 0x1, 0x1)
	h.define(CSRMDSEAC, "mdseac", PrivMachine, 0, allBits64, 0)
	h.define(CSRMEIHAP, "meihap", PrivMachine, 0xFFFFFFFFFFFFFC00, 0x3FC, 0)

	h.csrs.MarkMDSEAC(CSRMDSEAC)
	h.csrs.SetPostWriteHook(h.onCSRWrite)
}

func (h *Hart) misaValue() uint64 {
	var misa uint64
	if h.xlen == 32 {
		misa |= 1 << 30
	} else {
		misa |= 1 << 62
	}
	misa |= 1 << ('i' - 'a') // base integer ISA always present
	addIf := func(letter byte, has bool) {
		if has {
			misa |= 1 << uint(letter-'a')
		}
	}
	addIf('m', h.enabledExtensions.Has(insts.ExtM))
	addIf('a', h.enabledExtensions.Has(insts.ExtA))
	addIf('f', h.enabledExtensions.Has(insts.ExtF))
	addIf('d', h.enabledExtensions.Has(insts.ExtD))
	addIf('c', h.enabledExtensions.Has(insts.ExtC))
	addIf('s', h.enabledExtensions.Has(insts.ExtS))
	addIf('u', h.enabledExtensions.Has(insts.ExtU))
	return misa
}
