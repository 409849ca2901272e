// Package alu provides the combinational units shared by both cores: the
// main control unit, the ALU-control unit, the ALU itself, and the small
// adder/mux/gate primitives the reference design names explicitly.
package alu

import (
	"github.com/archsim/rv32isim/internal/simlog"
	"github.com/archsim/rv32isim/isa"
)

// Control holds the main control unit's output signals. Fields not
// mentioned for a given opcode are zero, matching spec.md's "unmentioned =
// 0" convention.
type Control struct {
	RegWrite bool
	ALUSrcB  bool // true selects the immediate as ALU input B
	MemRead  bool
	MemWrite bool
	MemToReg bool
	Branch   bool
	JAL      bool
	ALUOp    uint8 // 2-bit hint to the ALU-control unit
	Halt     bool
}

// MainControl maps an opcode to its control-signal bundle. An unsupported
// opcode is logged and treated as a no-op bundle (all signals zero) rather
// than halting the simulation, per spec.md §4.8/§7.
func MainControl(op isa.Opcode) Control {
	switch op {
	case isa.OpR:
		return Control{RegWrite: true, ALUOp: 0b10}
	case isa.OpIArith:
		return Control{RegWrite: true, ALUSrcB: true, ALUOp: 0b10}
	case isa.OpLoad:
		return Control{RegWrite: true, ALUSrcB: true, MemRead: true, MemToReg: true, ALUOp: 0b00}
	case isa.OpStore:
		return Control{MemWrite: true, ALUSrcB: true, ALUOp: 0b00}
	case isa.OpBranch:
		return Control{Branch: true, ALUOp: 0b01}
	case isa.OpJAL:
		return Control{JAL: true, RegWrite: true, ALUOp: 0b10}
	case isa.OpHalt:
		return Control{Halt: true}
	default:
		simlog.Default().Warn("unsupported opcode treated as bubble", "opcode", op)
		return Control{}
	}
}

// ALU 4-bit operation codes.
const (
	OpAND uint8 = 0b0000
	OpOR  uint8 = 0b0001
	OpADD uint8 = 0b0010
	OpSUB uint8 = 0b0110
	OpXOR uint8 = 0b0111
	OpNOR uint8 = 0b1100
)

// ALUControl combines the 2-bit ALUOp hint with the instruction's 4-bit
// (funct7bit<<3)|funct3 code to select the ALU's 4-bit operation.
//
// ALUOp 00 always selects ADD (load/store address computation); 01 always
// selects SUB (branch comparison); 10 defers to funcCode.
func ALUControl(aluOp uint8, funcCode uint8) uint8 {
	switch aluOp {
	case 0b00:
		return OpADD
	case 0b01:
		return OpSUB
	case 0b10:
		switch funcCode {
		case 0b0000:
			return OpADD
		case 0b1000:
			return OpSUB
		case 0b0111:
			return OpAND
		case 0b0110:
			return OpOR
		case 0b0100:
			return OpXOR
		default:
			simlog.Default().Warn("undefined ALU control func code", "func_code", funcCode)
			return OpADD
		}
	default:
		simlog.Default().Warn("undefined ALUOp", "alu_op", aluOp)
		return OpADD
	}
}

// Run executes the ALU. It returns the 32-bit wrapped result and whether
// that result is zero.
//
// Op 7 is redefined from the textbook's SLT to XOR, per spec.md §4.4/§9 —
// this simulator's ALU table is non-standard on that slot by design.
func Run(op uint8, a, b uint32) (result uint32, zero bool) {
	switch op {
	case OpAND:
		result = a & b
	case OpOR:
		result = a | b
	case OpADD:
		result = a + b
	case OpSUB:
		result = a - b
	case OpXOR:
		result = a ^ b
	case OpNOR:
		result = ^(a | b)
	default:
		simlog.Default().Warn("undefined ALU op", "op", op)
		result = 0
	}
	return result, result == 0
}

// Adder is the explicit PC/immediate adder the reference datapath names.
func Adder(a, b uint32) uint32 { return a + b }

// Mux32 selects b when sel is true, else a — the reference design's
// two-input multiplexer, named explicitly to mirror the datapath diagram.
func Mux32(sel bool, a, b uint32) uint32 {
	if sel {
		return b
	}
	return a
}
