// Package main provides the entry point for rvsim, an instruction-accurate
// RISC-V simulator.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/sarchlab/rvcore/emu"
	"github.com/sarchlab/rvcore/loader"
	"github.com/sarchlab/rvcore/trace"
)

var (
	configPath  = flag.String("config", "", "Path to hart configuration JSON file")
	hexImage    = flag.Bool("hex", false, "Treat the program argument as an Intel-hex image instead of ELF")
	tracePath   = flag.String("trace", "", "Write a per-instruction trace to this file")
	stopAddr    = flag.String("stop-addr", "", "Stop execution when pc reaches this address (hex)")
	maxInstr    = flag.Uint64("max-instr", 0, "Maximum instructions to execute (0 = unlimited)")
	cpuProfile  = flag.String("cpuprofile", "", "Write a CPU profile to this file")
	noSigint    = flag.Bool("no-sigint", false, "Disable graceful stop on SIGINT")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvsim [options] <program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	var prog *loader.Program
	var err error
	if *hexImage {
		prog, err = loader.LoadHex(programPath)
	} else {
		prog, err = loader.LoadELF(programPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%x\n", prog.EntryPoint)
		fmt.Printf("Segments: %d\n", len(prog.Segments))
	}

	exitCode := run(prog, programPath)
	os.Exit(exitCode)
}

// run builds a Hart from the loaded program and configuration, runs it to
// completion, and returns the process exit code.
func run(prog *loader.Program, programPath string) int {
	cfg := emu.DefaultHartConfig()
	if *configPath != "" {
		var err error
		cfg, err = emu.LoadHartConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading hart config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid hart config: %v\n", err)
		os.Exit(1)
	}

	mem := emu.NewDefaultMemory()
	for _, seg := range prog.Segments {
		mem.LoadBytes(seg.VirtAddr, seg.Data)
	}

	opts := cfg.Options()
	opts = append(opts, emu.WithMemory(mem))
	if prog.HasToHostAddr {
		opts = append(opts, emu.WithToHostAddr(prog.ToHostAddr))
	}
	if prog.HasConsoleIOAddr {
		opts = append(opts, emu.WithConsoleIOAddr(prog.ConsoleIOAddr))
	}
	if prog.HasGlobalPointer {
		opts = append(opts, emu.WithGlobalPointer(prog.GlobalPointer))
	}
	if prog.HasEndAddr {
		opts = append(opts, emu.WithEndAddr(prog.EndAddr))
	}
	if prog.HasExitPoint {
		opts = append(opts, emu.WithExitPoint(prog.ExitPoint))
	}

	var traceFile *os.File
	if *tracePath != "" {
		var err error
		traceFile, err = os.Create(*tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = traceFile.Close() }()
		opts = append(opts, emu.WithTraceSink(trace.NewWriter(traceFile)))
	}

	h := emu.NewHart(opts...)
	h.SetPC(prog.EntryPoint)

	runOpts := emu.RunOptions{
		MaxInstructions:   *maxInstr,
		InterruptOnSIGINT: !*noSigint,
	}
	if *stopAddr != "" {
		addr, err := parseHexAddr(*stopAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -stop-addr: %v\n", err)
			os.Exit(1)
		}
		runOpts.StopAddr = addr
		runOpts.HasStopAddr = true
	}

	result := h.Run(runOpts)

	if *verbose {
		fmt.Printf("\nProgram: %s\n", programPath)
		fmt.Printf("Instructions retired: %d\n", h.RetiredInstructions())
		switch {
		case result.Interrupted:
			fmt.Printf("Stopped: interrupted by SIGINT\n")
		case result.HitStopAddr:
			fmt.Printf("Stopped: reached stop address\n")
		case result.HitLimit:
			fmt.Printf("Stopped: instruction limit reached\n")
		case result.Step.Exited:
			fmt.Printf("Exited: code %d\n", result.Step.ExitCode)
		case result.Step.Stopped:
			fmt.Printf("Stopped via tohost: success=%v code=%d\n", result.Step.Success, result.Step.ExitCode)
		}
	}

	switch {
	case result.Step.Exited:
		return result.Step.ExitCode
	case result.Step.Stopped:
		if result.Step.Success {
			return 0
		}
		return result.Step.ExitCode
	default:
		return 0
	}
}

func parseHexAddr(s string) (uint64, error) {
	var addr uint64
	_, err := fmt.Sscanf(s, "0x%x", &addr)
	if err != nil {
		_, err = fmt.Sscanf(s, "%x", &addr)
	}
	return addr, err
}
