package emu

import "github.com/sarchlab/rvcore/insts"

// Event identifies one of the MHPMEVENT-countable event classes (spec.md
// §6's event list). Each Hart.Step call increments every event class that
// applies to the instruction just retired; setupCSRs doesn't yet wire these
// into individual MHPMCOUNTERs (no event-to-counter assignment is mandated
// by the core's default configuration), but the raw per-event counts are
// available via Stats for a host tool to read.
type Event uint8

// Countable event classes.
const (
	EventEcall Event = iota
	EventEbreak
	EventFence
	EventFencei
	EventMret
	EventAlu
	EventMul
	EventDiv
	EventLoad
	EventMisalignLoad
	EventStore
	EventMisalignStore
	EventLr
	EventSc
	EventAtomic
	EventCsrRead
	EventCsrWrite
	EventCsrReadWrite
	EventBranch
	EventBranchTaken
	EventInstCommitted
	EventInst16Committed
	EventInst32Committed
	EventInstAligned
	EventException
	EventExternalInterrupt
	EventTimerInterrupt

	eventCount
)

// Stats collects per-opcode retirement counts, operand-value histograms and
// MHPMEVENT-class counts (spec.md §2 item 8). All counts are gated by the
// hart's MGPMC-derived counters-enabled state; the caller decides whether to
// record before calling into Stats, so Stats itself has no notion of that.
type Stats struct {
	opcodeCounts map[insts.Op]uint64
	eventCounts  [eventCount]uint64

	rdHistogram map[uint8]uint64
	immHistogram map[int64]uint64
}

// NewStats creates an empty statistics collector.
func NewStats() *Stats {
	return &Stats{
		opcodeCounts: make(map[insts.Op]uint64),
		rdHistogram:  make(map[uint8]uint64),
		immHistogram: make(map[int64]uint64),
	}
}

// RecordInstruction increments the opcode and operand histograms for one
// retired instruction.
func (s *Stats) RecordInstruction(inst *insts.Instruction) {
	s.opcodeCounts[inst.Op]++
	if inst.Rd != 0 {
		s.rdHistogram[inst.Rd]++
	}
	if inst.Format == insts.FormatI || inst.Format == insts.FormatS ||
		inst.Format == insts.FormatB || inst.Format == insts.FormatU || inst.Format == insts.FormatJ {
		s.immHistogram[inst.Imm]++
	}
}

// RecordEvent increments the count for one MHPMEVENT-countable event class.
func (s *Stats) RecordEvent(e Event) {
	s.eventCounts[e]++
}

// OpcodeCount returns the number of times op has retired.
func (s *Stats) OpcodeCount(op insts.Op) uint64 {
	return s.opcodeCounts[op]
}

// EventCount returns the number of times event class e has fired.
func (s *Stats) EventCount(e Event) uint64 {
	return s.eventCounts[e]
}

// RdHistogram returns the destination-register write-frequency histogram.
func (s *Stats) RdHistogram() map[uint8]uint64 {
	return s.rdHistogram
}

// ImmHistogram returns the immediate-value frequency histogram.
func (s *Stats) ImmHistogram() map[int64]uint64 {
	return s.immHistogram
}
