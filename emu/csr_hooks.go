package emu

// onCSRWrite is the CSRFile's post-write hook (spec.md §4.3's "side
// effects... observed by the core via a post-write hook"). DCSR updates
// the step/step-IE caches immediately; MGPMC's counter-enable bit takes
// effect one instruction later (spec.md §9's "cyclic structure" note),
// modeled here as a pending value applied at the next step boundary
// instead of a callback graph.
func (h *Hart) onCSRWrite(num uint16, old, new uint64) {
	switch num {
	case CSRDCSR:
		h.dcsrStep = new&(1<<2) != 0
		h.dcsrStepIE = new&(1<<11) != 0
		h.dcsrEbreakM = new&(1<<15) != 0
	case CSRMGPMC:
		h.gpmcNextOn = new&0x1 != 0
		h.gpmcPending = true
	case CSRFFlags:
		frm, _ := h.csrs.Read(CSRFRM, PrivMachine, true)
		h.csrs.Poke(CSRFCSR, frm<<5|new&0x1F)
	case CSRFRM:
		fflags, _ := h.csrs.Read(CSRFFlags, PrivMachine, true)
		h.csrs.Poke(CSRFCSR, new<<5|fflags&0x1F)
	case CSRFCSR:
		h.csrs.Poke(CSRFFlags, new&0x1F)
		h.csrs.Poke(CSRFRM, new>>5&0x7)
	}
}

// advanceGPMC applies the one-instruction-delayed MGPMC enable transition:
// prev_counters_on is what the instruction just retired was accounted
// under, counters_on (taking effect now) is what the *next* instruction
// will be accounted under.
func (h *Hart) advanceGPMC() {
	if h.gpmcPending {
		h.gpmcPrevOn = h.gpmcNextOn
		h.gpmcPending = false
	}
}

// countersEnabled reports whether performance-counter accounting is
// currently active, per the MGPMC delay line.
func (h *Hart) countersEnabled() bool {
	return h.gpmcPrevOn
}
