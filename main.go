// Package main provides the entry point for rvcore, an instruction-accurate
// RISC-V simulator.
//
// For the full CLI, use: go run ./cmd/rvsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rvcore - instruction-accurate RISC-V simulator")
	fmt.Println("")
	fmt.Println("Usage: rvsim [options] <program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config      Path to hart configuration JSON file")
	fmt.Println("  -hex         Treat the program argument as an Intel-hex image")
	fmt.Println("  -trace       Write a per-instruction trace to this file")
	fmt.Println("  -stop-addr   Stop execution when pc reaches this address")
	fmt.Println("  -max-instr   Maximum instructions to execute")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: you provided arguments. Use 'go run ./cmd/rvsim' instead.")
	}
}
