package emu

// nmiHandlerAddr is the fixed address NMI entry jumps to. Implementation-
// defined; chosen to sit well above any typical program image.
const nmiHandlerAddr = 0xFFFFFFFFFFFFFFE0

// takeTrap implements spec.md §4.4.1's trap dispatch state machine for a
// synchronous exception or asynchronous interrupt (delegation to S/U is an
// unimplemented hook in the core's default configuration, per spec.md
// §4.4.1 step 2 -- every trap goes to Machine mode).
func (h *Hart) takeTrap(cause uint64, isInterrupt bool, tval uint64, pcToSave uint64) {
	origin := h.privilege
	h.privilege = PrivMachine

	mcause := cause
	if isInterrupt {
		mcause |= interruptBit(h.xlen)
	}

	h.csrs.Poke(CSRMEPC, pcToSave&^1)
	h.csrs.Poke(CSRMCause, mcause)
	h.csrs.Poke(CSRMTVal, tval)

	status, _ := h.csrs.Read(CSRMStatus, PrivMachine, true)
	mie := status&MStatusMIE != 0
	status &^= MStatusMPIE
	if mie {
		status |= MStatusMPIE
	}
	status &^= MStatusMIE
	status &^= MStatusMPPMask
	status |= uint64(origin) << MStatusMPPShift
	h.csrs.Poke(CSRMStatus, status)

	mtvec, _ := h.csrs.Read(CSRMTVec, PrivMachine, true)
	base := mtvec &^ 0x3
	mode := mtvec & 0x3
	if mode == 1 && isInterrupt {
		h.pc = (base + 4*cause) &^ 1
	} else {
		h.pc = base &^ 1
	}

	h.hasLR = false
}

func interruptBit(xlen int) uint64 {
	if xlen == 32 {
		return 1 << 31
	}
	return 1 << 63
}

// takeNMI implements spec.md §4.4.1's NMI entry: MCAUSE is overwritten
// unconditionally, MTVAL is cleared, and control jumps to the fixed NMI
// handler address. DCSR.nmip mirrors h.nmiPending.
func (h *Hart) takeNMI(cause uint64) {
	origin := h.privilege
	h.privilege = PrivMachine

	h.csrs.Poke(CSRMEPC, h.currentPC&^1)
	h.csrs.Poke(CSRMCause, cause)
	h.csrs.Poke(CSRMTVal, 0)

	status, _ := h.csrs.Read(CSRMStatus, PrivMachine, true)
	mie := status&MStatusMIE != 0
	status &^= MStatusMPIE
	if mie {
		status |= MStatusMPIE
	}
	status &^= MStatusMIE
	status &^= MStatusMPPMask
	status |= uint64(origin) << MStatusMPPShift
	h.csrs.Poke(CSRMStatus, status)

	h.pc = nmiHandlerAddr
	h.hasLR = false
}

// pendingInterrupt returns the highest-priority maskable interrupt ready
// to fire, in the order spec.md §4.5 step 1 names: M-external > M-local >
// M-software > M-timer > M-int-timer0 > M-int-timer1, each gated by
// MSTATUS.MIE and MIE & MIP.
func (h *Hart) pendingInterrupt() (cause uint64, fire bool) {
	status, _ := h.csrs.Read(CSRMStatus, PrivMachine, true)
	if status&MStatusMIE == 0 {
		return 0, false
	}
	mie, _ := h.csrs.Read(CSRMIE, PrivMachine, true)
	mip, _ := h.csrs.Read(CSRMIP, PrivMachine, true)
	pending := mie & mip

	ordered := []struct {
		bit   uint64
		cause uint64
	}{
		{MIPMEIP, InterruptMExternal},
		{MIPMLIP, 16},
		{MIPMSIP, InterruptMSoftware},
		{MIPMTIP, InterruptMTimer},
		{MIPMITIP0, InterruptMInternalTimer0},
		{MIPMITIP1, InterruptMInternalTimer1},
	}
	for _, o := range ordered {
		if pending&o.bit != 0 {
			return o.cause, true
		}
	}
	return 0, false
}

// execMRET/execSRET/execURET restore privilege/interrupt-enable state per
// spec.md §4.4's System description: xIE <- xPIE, xPIE <- 1, xPP <- the
// least-privileged mode, privilege <- saved xPP, pc <- xEPC & ~1.
func (h *Hart) execMRET() {
	status, _ := h.csrs.Read(CSRMStatus, PrivMachine, true)
	mpie := status&MStatusMPIE != 0
	mpp := Privilege((status & MStatusMPPMask) >> MStatusMPPShift)

	status &^= MStatusMIE
	if mpie {
		status |= MStatusMIE
	}
	status |= MStatusMPIE
	status &^= MStatusMPPMask
	status |= uint64(PrivUser) << MStatusMPPShift

	h.csrs.Poke(CSRMStatus, status)
	h.privilege = mpp

	mepc, _ := h.csrs.Read(CSRMEPC, PrivMachine, true)
	h.pc = mepc &^ 1
}

func (h *Hart) execSRET() {
	status, _ := h.csrs.Read(CSRSStatus, PrivSupervisor, true)
	spie := status&MStatusSPIE != 0
	var spp Privilege = PrivUser
	if status&MStatusSPP != 0 {
		spp = PrivSupervisor
	}

	status &^= MStatusSIE
	if spie {
		status |= MStatusSIE
	}
	status |= MStatusSPIE
	status &^= MStatusSPP

	h.csrs.Poke(CSRSStatus, status)
	h.privilege = spp

	sepc, _ := h.csrs.Read(CSRSEPC, PrivSupervisor, true)
	h.pc = sepc &^ 1
}

func (h *Hart) execURET() {
	// User-mode traps are not implemented by default (no UIE/UTVEC path is
	// set up in setupCSRs); URET still restores pc from a conventional
	// location for completeness, matching MRET's shape at User privilege.
	mepc, _ := h.csrs.Read(CSRMEPC, PrivMachine, true)
	h.pc = mepc &^ 1
	h.privilege = PrivUser
}
