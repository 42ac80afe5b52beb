package emu

import (
	"io"
	"os"

	"github.com/sarchlab/rvcore/insts"
	"github.com/sarchlab/rvcore/trace"
)

// Exception causes, per the RISC-V privileged spec's mcause encoding for
// synchronous traps (interrupt bit clear).
const (
	CauseInstAddrMisaligned = 0
	CauseInstAccessFault    = 1
	CauseIllegalInstruction = 2
	CauseBreakpoint         = 3
	CauseLoadAddrMisaligned = 4
	CauseLoadAccessFault    = 5
	CauseStoreAddrMisaligned = 6
	CauseStoreAccessFault   = 7
	CauseECallFromU         = 8
	CauseECallFromS         = 9
	CauseECallFromM         = 11
)

// Interrupt causes (interrupt bit set separately in mcause by the trap
// dispatcher), in priority order highest-first.
const (
	InterruptMExternal = 11
	InterruptMSoftware = 3
	InterruptMTimer    = 7
	// InterruptMInternalTimer0/1 are implementation-defined, wired to
	// MIE/MIP bits 28/29 -- see DESIGN.md's open-question resolution.
	InterruptMInternalTimer0 = 28
	InterruptMInternalTimer1 = 29
)

// NMI causes, implementation-defined (not part of the standard mcause
// encoding): latched into MCAUSE unconditionally on NMI entry.
const (
	causeLoadBusError  = 0xF0000000
	causeStoreBusError = 0xF0000001
)

// StepResult is the explicit outcome of one Step call, replacing the
// unwind-based CoreException the original design used for Stop/Exit
// (spec.md §9, "Exceptions as control flow").
type StepResult struct {
	Trapped  bool
	Stopped  bool
	Exited   bool
	ExitCode int
	Success  bool // meaningful when Stopped: value==1 at the tohost write
	Err      error
}

// Hart is one RISC-V hardware thread: its architectural state and the
// executor that advances it one instruction at a time.
type Hart struct {
	id int

	xlen int
	pc        uint64
	currentPC uint64

	privilege     Privilege
	debugMode     bool
	debugStepMode bool

	retiredInsts uint64
	cycleCount   uint64

	enabledExtensions insts.ExtensionSet

	roundingModeForInst insts.RoundingMode
	rs3ForInst          uint8

	hasLR   bool
	lrAddr  uint64
	lrSize  uint8

	intRegs    *IntRegFile
	fpRegs     *FPRegFile
	customRegs *CustomRegFile
	csrs       *CSRFile

	mem     Memory
	decoder *insts.Decoder

	loadQueue         *LoadQueue
	storeQueue        *StoreQueue
	loadQueueEnabled  bool
	storeQueueEnabled bool

	stats *Stats

	traceSink trace.Sink

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	toHostAddr    uint64
	hasToHost     bool
	consoleIOAddr uint64
	hasConsoleIO  bool
	endAddr       uint64 // _end symbol, passed through for a frontend's brk emulation; the core never reads it
	exitPoint     uint64
	hasExitPoint  bool
	globalPointer uint64

	dcsrStep   bool
	dcsrStepIE bool
	dcsrEbreakM bool

	gpmcPrevOn bool
	gpmcNextOn bool
	gpmcPending bool

	nmiPending bool
	nmiCause   uint64
	nmiLatched bool

	consecutiveIllegal int

	lastBranchTaken bool

	triggers TriggerSource

	exceptionPending bool
	exceptionCause   uint64
	exceptionTval    uint64

	pendingStop        bool
	pendingStopSuccess bool
	pendingExitCode    int
}

// raiseException records a synchronous exception for the run loop to act on
// once the current instruction's partial effects (if any) have been decided.
func (h *Hart) raiseException(cause uint64, tval uint64) {
	if !h.exceptionPending {
		h.exceptionPending = true
		h.exceptionCause = cause
		h.exceptionTval = tval
	}
}

func (h *Hart) clearException() {
	h.exceptionPending = false
	h.exceptionCause = 0
	h.exceptionTval = 0
}

// TriggerSource is the narrow interface the run loop polls for the debug
// trigger engine's "hit" signal (spec.md §1: the trigger engine itself is
// an external collaborator; the core only consumes this).
type TriggerSource interface {
	// CheckAddress is called before fetch with the address about to be
	// fetched; CheckOpcode after decode with the raw instruction word.
	// Both report whether a trigger fired and, if so, whether it should
	// enter debug mode (vs. raising a breakpoint exception).
	CheckAddress(pc uint64) (fired bool, enterDebug bool)
	CheckOpcode(word uint32) (fired bool, enterDebug bool)
}

// noTriggers is the default TriggerSource: no triggers ever fire.
type noTriggers struct{}

func (noTriggers) CheckAddress(uint64) (bool, bool) { return false, false }
func (noTriggers) CheckOpcode(uint32) (bool, bool)  { return false, false }

// Option configures a Hart at construction time.
type Option func(*Hart)

// WithXLen sets the register width (32 or 64). Default 64.
func WithXLen(xlen int) Option {
	return func(h *Hart) { h.xlen = xlen }
}

// WithExtensions sets the enabled-extension bit set derived from MISA.
func WithExtensions(ext insts.ExtensionSet) Option {
	return func(h *Hart) { h.enabledExtensions = ext }
}

// WithMemory supplies the memory subsystem. If omitted, NewHart creates a
// DefaultMemory.
func WithMemory(m Memory) Option {
	return func(h *Hart) { h.mem = m }
}

// WithStdout sets the writer console-out bytes are emitted to.
func WithStdout(w io.Writer) Option {
	return func(h *Hart) { h.stdout = w }
}

// WithStderr sets the writer diagnostics are emitted to.
func WithStderr(w io.Writer) Option {
	return func(h *Hart) { h.stderr = w }
}

// WithStdin sets the reader console-in bytes are read from.
func WithStdin(r io.Reader) Option {
	return func(h *Hart) { h.stdin = r }
}

// WithTraceSink installs the sink that receives one Record per modified
// resource of each retired instruction.
func WithTraceSink(s trace.Sink) Option {
	return func(h *Hart) { h.traceSink = s }
}

// WithToHostAddr configures the tohost address; a non-zero store there
// stops the run (spec.md §6's exit protocol).
func WithToHostAddr(addr uint64) Option {
	return func(h *Hart) { h.toHostAddr, h.hasToHost = addr, true }
}

// WithConsoleIOAddr configures the __whisper_console_io address: loads
// read one byte from stdin, stores write one byte to stdout.
func WithConsoleIOAddr(addr uint64) Option {
	return func(h *Hart) { h.consoleIOAddr, h.hasConsoleIO = addr, true }
}

// WithEndAddr configures the _end symbol. The core never reads it itself;
// it's carried only so a frontend can implement brk emulation on top of
// Hart's memory.
func WithEndAddr(addr uint64) Option {
	return func(h *Hart) { h.endAddr = addr }
}

// EndAddr returns the _end symbol configured via WithEndAddr.
func (h *Hart) EndAddr() uint64 { return h.endAddr }

// WithExitPoint configures the program image's exit point: when pc reaches
// this address, the run loop reports Exited
// rather than continuing to execute past the end of the loaded program.
func WithExitPoint(addr uint64) Option {
	return func(h *Hart) { h.exitPoint, h.hasExitPoint = addr, true }
}

// WithGlobalPointer configures the __global_pointer$ symbol, written into
// gp (x3) at reset.
func WithGlobalPointer(addr uint64) Option {
	return func(h *Hart) { h.globalPointer = addr }
}

// WithLoadStoreQueues sets the capacities of the load/store speculation
// queues. Both are enabled at capacity 16 by default; a capacity of 0
// disables that queue.
func WithLoadStoreQueues(loadCap, storeCap int) Option {
	return func(h *Hart) {
		if loadCap > 0 {
			h.loadQueue = NewLoadQueue(loadCap)
			h.loadQueueEnabled = true
		} else {
			h.loadQueueEnabled = false
		}
		if storeCap > 0 {
			h.storeQueue = NewStoreQueue(storeCap)
			h.storeQueueEnabled = true
		} else {
			h.storeQueueEnabled = false
		}
	}
}

// WithTriggers installs a debug trigger source. Defaults to one that never
// fires.
func WithTriggers(t TriggerSource) Option {
	return func(h *Hart) { h.triggers = t }
}

// WithHartID sets MHARTID's constant value.
func WithHartID(id int) Option {
	return func(h *Hart) { h.id = id }
}

// NewHart constructs a Hart and applies opts, then resets it.
func NewHart(opts ...Option) *Hart {
	h := &Hart{
		xlen:              64,
		enabledExtensions: insts.ExtensionSet(insts.ExtM | insts.ExtA | insts.ExtF | insts.ExtD | insts.ExtC),
		decoder:           insts.NewDecoder(),
		stdout:            os.Stdout,
		stderr:            os.Stderr,
		stdin:             os.Stdin,
		triggers:          noTriggers{},
		stats:             NewStats(),
		loadQueue:         NewLoadQueue(16),
		storeQueue:        NewStoreQueue(16),
		loadQueueEnabled:  true,
		storeQueueEnabled: true,
	}
	for _, o := range opts {
		o(h)
	}
	if h.enabledExtensions.Has(insts.ExtD) {
		h.enabledExtensions |= insts.ExtensionSet(insts.ExtF)
	}
	if h.mem == nil {
		h.mem = NewDefaultMemory()
	}
	h.intRegs = NewIntRegFile(h.xlen)
	h.fpRegs = NewFPRegFile()
	h.customRegs = NewCustomRegFile()
	h.csrs = NewCSRFile()
	h.setupCSRs()
	h.Reset()
	return h
}

// XLen returns the hart's register width.
func (h *Hart) XLen() int { return h.xlen }

// PC returns the current program counter.
func (h *Hart) PC() uint64 { return h.pc }

// SetPC sets the program counter, used by the loader to set the initial
// entry point.
func (h *Hart) SetPC(pc uint64) { h.pc = pc }

// Privilege returns the current privilege level.
func (h *Hart) Privilege() Privilege { return h.privilege }

// IntRegs returns the integer register file.
func (h *Hart) IntRegs() *IntRegFile { return h.intRegs }

// FPRegs returns the floating-point register file.
func (h *Hart) FPRegs() *FPRegFile { return h.fpRegs }

// CustomRegs returns the custom register file.
func (h *Hart) CustomRegs() *CustomRegFile { return h.customRegs }

// CSRs returns the CSR file.
func (h *Hart) CSRs() *CSRFile { return h.csrs }

// Memory returns the memory subsystem.
func (h *Hart) Memory() Memory { return h.mem }

// PeekMemory reads one byte at addr for a debugger/front-end, without
// raising an architectural exception on failure. It tries the data-space
// path first and falls back to the instruction-space path, reporting
// ok=true only if one of the two actually produced a byte -- unlike a
// peek that reports success whenever either read was merely attempted,
// regardless of whether it found mapped storage.
func (h *Hart) PeekMemory(addr uint64) (uint64, bool) {
	if v, ok := h.mem.ReadByte(addr); ok {
		return uint64(v), true
	}
	if v, ok := h.mem.ReadInstHalf(addr &^ 1); ok {
		if addr&1 == 0 {
			return uint64(v & 0xFF), true
		}
		return uint64(v >> 8), true
	}
	return 0, false
}

// Stats returns the statistics collector.
func (h *Hart) Stats() *Stats { return h.stats }

// RetiredInstructions returns the number of instructions retired so far.
func (h *Hart) RetiredInstructions() uint64 { return h.retiredInsts }

// Reset restores the hart to its power-on state: privilege Machine, pc 0,
// all counters and CSRs at their reset values, gp loaded from the
// configured global pointer.
func (h *Hart) Reset() {
	h.privilege = PrivMachine
	h.debugMode = false
	h.debugStepMode = false
	h.pc = 0
	h.currentPC = 0
	h.retiredInsts = 0
	h.cycleCount = 0
	h.hasLR = false
	h.nmiPending = false
	h.nmiLatched = false
	h.consecutiveIllegal = 0
	h.pendingStop = false
	h.pendingStopSuccess = false
	h.pendingExitCode = 0
	h.clearException()
	h.gpmcPrevOn = true
	h.gpmcNextOn = true
	h.gpmcPending = false
	h.csrs.Reset()
	*h.intRegs = *NewIntRegFile(h.xlen)
	if h.globalPointer != 0 {
		h.intRegs.Poke(3, h.globalPointer)
	}
}

func (h *Hart) latchBusError(addr uint64, cause uint64) {
	if !h.csrs.MDSEACLocked() {
		h.csrs.Poke(CSRMDSEAC, addr)
	}
	h.csrs.Write(CSRMDSEAC, PrivMachine, true, addr)
	h.csrs.LockMDSEAC(true)
	h.raiseNMI(cause)
}

func (h *Hart) raiseNMI(cause uint64) {
	if !h.nmiLatched {
		h.nmiCause = cause
		h.nmiLatched = true
	}
	h.nmiPending = true
}

// AckNMI clears the pending NMI and unlocks MDSEAC, modeling the "NMI
// unlock event" spec.md §4.3 refers to.
func (h *Hart) AckNMI() {
	h.nmiPending = false
	h.nmiLatched = false
	h.csrs.LockMDSEAC(false)
}
