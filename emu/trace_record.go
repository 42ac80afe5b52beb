package emu

import (
	"github.com/sarchlab/rvcore/insts"
	"github.com/sarchlab/rvcore/trace"
)

// buildTraceRecord assembles one trace.Record from whatever registers/CSRs
// the just-retired instruction modified, per spec.md §6's trace grammar.
func (h *Hart) buildTraceRecord(inst *insts.Instruction) trace.Record {
	rec := trace.Record{
		Tag:     trace.TagRetire,
		HartID:  h.id,
		PC:      h.currentPC,
		InstHex: uint64(inst.Raw),
		InstLen: inst.Size,
		Disasm:  disasm(inst),
	}

	if idx, ok := h.intRegs.LastWritten(); ok {
		rec.Mods = append(rec.Mods, trace.Mod{
			Resource: trace.ResourceInt,
			Addr:     uint64(idx),
			Value:    h.intRegs.Read(uint8(idx)),
		})
	}
	if idx, ok := h.fpRegs.LastWritten(); ok {
		rec.Mods = append(rec.Mods, trace.Mod{
			Resource: trace.ResourceFP,
			Addr:     uint64(idx),
			Value:    h.fpRegs.ReadBits(uint8(idx)),
		})
	}
	if idx, ok := h.customRegs.LastWritten(); ok {
		rec.Mods = append(rec.Mods, trace.Mod{
			Resource: trace.ResourceCustom,
			Addr:     uint64(idx),
			Value:    h.customRegs.Read(uint8(idx)),
		})
	}

	csrs, triggers := h.csrs.LastWrittenRegs()
	for _, num := range csrs {
		v, _ := h.csrs.Read(num, PrivMachine, true)
		rec.Mods = append(rec.Mods, trace.Mod{Resource: trace.ResourceCSR, Addr: uint64(num), Value: v})
	}
	for _, num := range triggers {
		v, _ := h.csrs.Read(num, PrivMachine, true)
		tselect, _ := h.csrs.Read(CSRTSelect, PrivMachine, true)
		rec.Mods = append(rec.Mods, trace.Mod{
			Resource: trace.ResourceTrig,
			Addr:     trace.TriggerAddr(uint16(tselect), num),
			Value:    v,
		})
	}

	return rec
}

// disasm renders a short mnemonic-only disassembly; the trace grammar's
// disasm field is documentation, not an architectural output, so this stays
// minimal rather than reconstructing assembler-exact operand syntax.
func disasm(inst *insts.Instruction) string {
	return opName(inst.Op)
}

func opName(op insts.Op) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

var opNames = map[insts.Op]string{
	insts.OpLUI: "lui", insts.OpAUIPC: "auipc", insts.OpJAL: "jal", insts.OpJALR: "jalr",
	insts.OpBEQ: "beq", insts.OpBNE: "bne", insts.OpBLT: "blt", insts.OpBGE: "bge",
	insts.OpBLTU: "bltu", insts.OpBGEU: "bgeu",
	insts.OpLB: "lb", insts.OpLH: "lh", insts.OpLW: "lw", insts.OpLD: "ld",
	insts.OpLBU: "lbu", insts.OpLHU: "lhu", insts.OpLWU: "lwu",
	insts.OpSB: "sb", insts.OpSH: "sh", insts.OpSW: "sw", insts.OpSD: "sd",
	insts.OpADDI: "addi", insts.OpSLTI: "slti", insts.OpSLTIU: "sltiu",
	insts.OpXORI: "xori", insts.OpORI: "ori", insts.OpANDI: "andi",
	insts.OpSLLI: "slli", insts.OpSRLI: "srli", insts.OpSRAI: "srai",
	insts.OpADD: "add", insts.OpSUB: "sub", insts.OpSLL: "sll", insts.OpSLT: "slt",
	insts.OpSLTU: "sltu", insts.OpXOR: "xor", insts.OpSRL: "srl", insts.OpSRA: "sra",
	insts.OpOR: "or", insts.OpAND: "and",
	insts.OpECALL: "ecall", insts.OpEBREAK: "ebreak", insts.OpMRET: "mret",
	insts.OpSRET: "sret", insts.OpURET: "uret", insts.OpWFI: "wfi",
	insts.OpFENCE: "fence", insts.OpFENCEI: "fence.i",
	insts.OpCSRRW: "csrrw", insts.OpCSRRS: "csrrs", insts.OpCSRRC: "csrrc",
	insts.OpCSRRWI: "csrrwi", insts.OpCSRRSI: "csrrsi", insts.OpCSRRCI: "csrrci",
	insts.OpMUL: "mul", insts.OpMULH: "mulh", insts.OpMULHSU: "mulhsu", insts.OpMULHU: "mulhu",
	insts.OpDIV: "div", insts.OpDIVU: "divu", insts.OpREM: "rem", insts.OpREMU: "remu",
	insts.OpLRW: "lr.w", insts.OpSCW: "sc.w", insts.OpLRD: "lr.d", insts.OpSCD: "sc.d",
	insts.OpAMOADDW: "amoadd.w", insts.OpAMOSWAPW: "amoswap.w",
	insts.OpFLW: "flw", insts.OpFLD: "fld", insts.OpFSW: "fsw", insts.OpFSD: "fsd",
	insts.OpFADDS: "fadd.s", insts.OpFADDD: "fadd.d",
}
