package pipeline

import (
	"github.com/archsim/rv32isim/alu"
	"github.com/archsim/rv32isim/internal/simlog"
	"github.com/archsim/rv32isim/isa"
	"github.com/archsim/rv32isim/memimage"
	"github.com/archsim/rv32isim/regfile"
)

// doWriteback implements the WB stage: if the retiring instruction
// writes a register and its destination isn't x0, commit the value.
// Returns whether an instruction actually retired this tick (used for
// the instruction-count statistic).
func doWriteback(wb WBState, rf *regfile.File) (retired bool) {
	if wb.Nop {
		return false
	}
	if wb.WrtEnable {
		rf.Write(wb.WrtRegAddr, wb.WrtData)
	}
	return true
}

// doMemory implements the MEM stage, producing the next MEM/WB register.
func doMemory(mem MEMState, dmem *memimage.Memory) WBState {
	if mem.Nop {
		return WBState{Nop: true}
	}

	next := WBState{
		WrtEnable:  mem.WrtEnable,
		MemToReg:   mem.MemToReg,
		WrtRegAddr: mem.WrtRegAddr,
		ALUResult:  mem.ALUResult,
	}

	if mem.WrtMem {
		dmem.Write32(mem.ALUResult, mem.StoreData)
	}
	if mem.RdMem {
		next.ReadData = dmem.Read32(mem.ALUResult)
	}

	next.WrtData = alu.Mux32(next.MemToReg, next.ALUResult, next.ReadData)

	return next
}

// doExecute implements the EX stage. exmem/memwb are the *committed*
// EX/MEM and MEM/WB registers (the instructions currently in MEM and WB
// this tick) used as forwarding sources.
func doExecute(ex EXState, exmem MEMState, memwb WBState) MEMState {
	if ex.Nop {
		return MEMState{Nop: true}
	}

	next := MEMState{
		Rs:         ex.Rs,
		Rt:         ex.Rt,
		WrtRegAddr: ex.WrtRegAddr,
		RdMem:      ex.RdMem,
		WrtMem:     ex.WrtMem,
		WrtEnable:  ex.WrtEnable,
		MemToReg:   ex.MemToReg,
		Branch:     ex.Branch,
	}

	forwardA, forwardB := ForwardEX(ex, exmem, memwb)
	operandA := Select(forwardA, ex.ReadData1, exmem, memwb)
	operandB := Select(forwardB, ex.ReadData2, exmem, memwb)
	next.StoreData = operandB

	var aluInputA, aluInputB uint32
	var aluControl uint8
	if ex.JAL {
		// JAL's "operands" (and the funct3/funct7bit bits the ALU-control
		// table would otherwise read) are immediate-field noise, not real
		// register reads or a real func code: the link-address computation
		// always forces PC+4 via ADD, bypassing both forwarding and the
		// ALU-control lookup.
		aluInputA = ex.ReadData1
		aluInputB = ex.ReadData2
		aluControl = alu.OpADD
	} else {
		aluInputA = operandA
		aluInputB = alu.Mux32(ex.IsIType, operandB, uint32(ex.Imm))
		aluControl = alu.ALUControl(ex.AluOp, ex.AluControlFunc)
	}

	result, _ := alu.Run(aluControl, aluInputA, aluInputB)
	next.ALUResult = result

	return next
}

// decodeResult holds the pure decode of an instruction word, before
// hazard/forwarding/branch resolution are applied.
type decodeResult struct {
	opcode isa.Opcode
	ctrl   alu.Control
	rs1    uint8
	rs2    uint8
	rd     uint8
	imm    int32
	fcode  uint8
}

func decode(word isa.Word) decodeResult {
	op := word.Opcode()
	ctrl := alu.MainControl(op)

	rs1 := word.Rs1()
	rs2 := word.Rs2()
	// I-arith and LOAD have no rs2; JAL has neither rs1 nor rs2. Zeroing
	// these prevents their immediate-encoding bit noise from
	// false-matching as a register dependency in hazard detection or
	// forwarding.
	switch op {
	case isa.OpIArith, isa.OpLoad:
		rs2 = 0
	case isa.OpJAL:
		rs1, rs2 = 0, 0
	}

	return decodeResult{
		opcode: op,
		ctrl:   ctrl,
		rs1:    rs1,
		rs2:    rs2,
		rd:     word.Rd(),
		imm:    isa.ImmGen(word),
		fcode:  word.AluControlFunc(),
	}
}

// doDecode implements the ID stage: field extraction, immediate
// generation, control-signal lookup, register read, hazard detection,
// and branch resolution (this simulator resolves branches in ID, not EX,
// per spec.md §9). exmemShadow/memwbShadow are the EX/MEM and MEM/WB
// registers being written *this tick* by doExecute/doMemory — branch
// forwarding needs the freshest available values, since ID runs after EX
// and MEM in the per-tick stage order.
func doDecode(
	id IDState,
	committedEX EXState,
	rf *regfile.File,
	hazard *HazardUnit,
	exmemShadow MEMState,
	memwbShadow WBState,
) (nextEX EXState, ifUpdate IFState) {
	if id.Nop {
		return EXState{Nop: true}, IFState{PCWrite: true, IFIDWrite: true}
	}

	word := isa.Word(id.Instr)
	d := decode(word)

	stallDecision := hazard.Detect(committedEX, d.rs1, d.rs2)

	ex := EXState{
		Instr:          id.Instr,
		PC:             id.PC,
		Rs:             d.rs1,
		Rt:             d.rs2,
		WrtRegAddr:     d.rd,
		ReadData1:      rf.Read(d.rs1),
		ReadData2:      rf.Read(d.rs2),
		Imm:            d.imm,
		AluControlFunc: d.fcode,
	}

	if stallDecision.Stall {
		// The instruction in ID (whatever it is, including a branch) holds
		// in place this tick — a bubble enters EX instead — so it cannot
		// resolve its branch outcome yet either: the load it depends on
		// hasn't reached MEM, and exmemShadow/memwbShadow below would
		// otherwise forward the load's in-flight address rather than its
		// (not yet available) data. Defer entirely; IF/PC stay held.
		ex.Nop = true
		ex.ReadData1, ex.ReadData2 = 0, 0
		ex.Rs, ex.Rt, ex.WrtRegAddr = 0, 0, 0
		return ex, IFState{PCWrite: false, IFIDWrite: false}
	}

	ex.IsIType = d.ctrl.ALUSrcB
	ex.AluOp = d.ctrl.ALUOp
	ex.RdMem = d.ctrl.MemRead
	ex.WrtMem = d.ctrl.MemWrite
	ex.MemToReg = d.ctrl.MemToReg
	ex.WrtEnable = d.ctrl.RegWrite
	ex.Branch = d.ctrl.Branch
	ex.JAL = d.ctrl.JAL

	// BEQ/BNE never reach EX/MEM/WB (no result to write back); JAL does,
	// to retire its link-address writeback (spec.md §9 open question:
	// deliberately NOT nop'd, so the forced PC+4 ALU computation and its
	// writeback complete normally).
	if d.ctrl.Branch {
		ex.Nop = true
	}
	if d.ctrl.JAL {
		ex.ReadData1 = id.PC
		ex.ReadData2 = 4
	}

	branchPC := alu.Adder(id.PC, uint32(d.imm))

	forwardA, forwardB := ForwardBranch(d.rs1, d.rs2, exmemShadow, memwbShadow)
	operandA := Select(forwardA, ex.ReadData1, exmemShadow, memwbShadow)
	operandB := Select(forwardB, ex.ReadData2, exmemShadow, memwbShadow)

	diff := operandA - operandB
	bneFunc := d.fcode & 0x1
	branchTaken := alu.XorGate(diff == 0, bneFunc == 1)
	pcSrc := alu.OrGate(d.ctrl.JAL, alu.AndGate(d.ctrl.Branch, branchTaken))

	ifUpdate = IFState{
		PCWrite:   stallDecision.PCWrite,
		IFIDWrite: stallDecision.IFIDWrite,
		PCSrc:     pcSrc,
		BranchPC:  branchPC,
	}

	if pcSrc {
		simlog.Default().Debug("branch/JAL resolved in ID, flushing fetched instruction", "pc", id.PC, "target", branchPC)
	}

	return ex, ifUpdate
}
