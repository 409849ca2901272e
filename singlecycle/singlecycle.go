// Package singlecycle implements the non-pipelined reference RV32I core:
// one instruction fully executes IF, ID, EX, MEM and WB every tick.
package singlecycle

import (
	"github.com/archsim/rv32isim/alu"
	"github.com/archsim/rv32isim/isa"
	"github.com/archsim/rv32isim/memimage"
	"github.com/archsim/rv32isim/regfile"
)

// Stats reports the running totals for a single-cycle run. Every retired
// instruction costs exactly one cycle, and the halt-detecting tick adds one
// more cycle that retires nothing, so Cycles == Instructions+1 once halted.
type Stats struct {
	Cycles       uint64
	Instructions uint64
}

// Core is the single-cycle RV32I datapath.
type Core struct {
	regFile *regfile.File
	imem    *memimage.Memory
	dmem    *memimage.Memory

	pc     uint32
	halted bool
	stats  Stats

	lastPC    uint32
	lastInstr uint32
}

// New creates a single-cycle core with the program counter starting at 0.
func New(regFile *regfile.File, imem, dmem *memimage.Memory) *Core {
	return &Core{regFile: regFile, imem: imem, dmem: dmem}
}

// Halted reports whether the core has fetched the HALT sentinel.
func (c *Core) Halted() bool { return c.halted }

// Stats returns the running cycle/instruction counters.
func (c *Core) Stats() Stats { return c.stats }

// RegFile exposes the register file, for final-state dumps.
func (c *Core) RegFile() *regfile.File { return c.regFile }

// PC returns the current program counter.
func (c *Core) PC() uint32 { return c.pc }

// LastExecuted returns the PC and instruction word most recently fetched
// and retired, for the per-cycle state trace.
func (c *Core) LastExecuted() (pc, instr uint32) { return c.lastPC, c.lastInstr }

// Tick executes one full instruction: IF, ID, EX, MEM, WB in sequence,
// per spec.md §4.1. It is a no-op once Halted reports true.
func (c *Core) Tick() {
	if c.halted {
		return
	}
	c.stats.Cycles++

	// IF
	word := isa.Word(c.imem.Read32(c.pc))
	c.lastPC, c.lastInstr = c.pc, uint32(word)
	if word.IsHalt() {
		c.halted = true
		return
	}

	// ID
	op := word.Opcode()
	ctrl := alu.MainControl(op)
	rs1, rs2, rd := word.Rs1(), word.Rs2(), word.Rd()
	imm := isa.ImmGen(word)
	funcCode := word.AluControlFunc()

	readData1 := c.regFile.Read(rs1)
	readData2 := c.regFile.Read(rs2)

	// EX
	var aluInputA, aluInputB uint32
	var aluControl uint8
	if ctrl.JAL {
		// Bypass both operand selection and the ALU-control lookup: JAL's
		// funct3/funct7bit bits are immediate-field noise, and the link
		// address is always PC+4.
		aluInputA, aluInputB = c.pc, 4
		aluControl = alu.OpADD
	} else {
		aluInputA = readData1
		aluInputB = alu.Mux32(ctrl.ALUSrcB, readData2, uint32(imm))
		aluControl = alu.ALUControl(ctrl.ALUOp, funcCode)
	}
	aluResult, zero := alu.Run(aluControl, aluInputA, aluInputB)

	bneFunc := funcCode & 0x1
	branchTaken := alu.XorGate(zero, bneFunc == 1)
	pcSrc := alu.OrGate(ctrl.JAL, alu.AndGate(ctrl.Branch, branchTaken))

	// MEM
	var readMemData uint32
	if ctrl.MemWrite {
		c.dmem.Write32(aluResult, readData2)
	}
	if ctrl.MemRead {
		readMemData = c.dmem.Read32(aluResult)
	}

	// WB
	if ctrl.RegWrite {
		wrtData := alu.Mux32(ctrl.MemToReg, aluResult, readMemData)
		c.regFile.Write(rd, wrtData)
	}
	c.stats.Instructions++

	branchPC := alu.Adder(c.pc, uint32(imm))
	if pcSrc {
		c.pc = branchPC
	} else {
		c.pc = alu.Adder(c.pc, 4)
	}
}

// RunCycles ticks the core up to n times or until it halts, whichever
// comes first, guarding against a program that never fetches HALT.
func (c *Core) RunCycles(n uint64) uint64 {
	var executed uint64
	for executed = 0; executed < n && !c.halted; executed++ {
		c.Tick()
	}
	return executed
}
