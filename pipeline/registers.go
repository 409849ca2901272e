// Package pipeline implements the five-stage (IF, ID, EX, MEM, WB)
// pipelined RV32I core: the shadow-copy pipeline registers, the hazard
// and forwarding units, and the per-tick stage driver.
package pipeline

// IFState carries what the IF stage needs to produce the next IF/ID
// register and to know which PC to fetch from.
type IFState struct {
	PC uint32

	// PCWrite, when false, holds the PC constant (load-use stall).
	PCWrite bool
	// IFIDWrite, when false, holds the IF/ID register constant (load-use
	// stall).
	IFIDWrite bool
	// Flush, when true, squashes the instruction IF just fetched (taken
	// branch / JAL resolved in ID this tick).
	Flush bool
	// PCSrc selects the next PC: false = PC+4, true = BranchPC.
	PCSrc bool
	// BranchPC is the branch/JAL target computed by ID.
	BranchPC uint32

	Nop bool
}

// IDState carries the IF/ID pipeline register contents.
type IDState struct {
	Instr uint32
	PC    uint32
	Nop   bool
}

// EXState carries the ID/EX pipeline register contents.
type EXState struct {
	Instr uint32
	PC    uint32

	Rs         uint8 // rs1
	Rt         uint8 // rs2 (zeroed for I-type/LOAD so it can't false-match as a consumer)
	WrtRegAddr uint8

	ReadData1 uint32
	ReadData2 uint32
	Imm       int32

	IsIType        bool // ALUSrcB: true selects the immediate
	AluOp          uint8
	AluControlFunc uint8

	RdMem      bool
	WrtMem     bool
	WrtEnable  bool
	MemToReg   bool
	Branch     bool
	JAL        bool

	Nop bool
}

// MEMState carries the EX/MEM pipeline register contents.
type MEMState struct {
	ALUResult  uint32
	StoreData  uint32
	Rs         uint8
	Rt         uint8
	WrtRegAddr uint8

	RdMem     bool
	WrtMem    bool
	WrtEnable bool
	MemToReg  bool
	Branch    bool

	Nop bool
}

// WBState carries the MEM/WB pipeline register contents.
type WBState struct {
	ALUResult  uint32
	ReadData   uint32
	WrtData    uint32
	WrtRegAddr uint8
	WrtEnable  bool
	MemToReg   bool

	Nop bool
}

// Registers is the full pipeline-register record: one sub-record per
// stage boundary. At any tick exactly one shadow copy is being written
// (see Pipeline.Tick); the committed copy is the sole source of truth for
// the next tick.
type Registers struct {
	IF  IFState
	ID  IDState
	EX  EXState
	MEM MEMState
	WB  WBState
}

// initial returns the pipeline-register state for cycle 0: only IF is
// live (PC=0); ID, EX, MEM and WB start as bubbles, since nothing has
// reached them yet.
func initial() Registers {
	return Registers{
		ID:  IDState{Nop: true},
		EX:  EXState{Nop: true},
		MEM: MEMState{Nop: true},
		WB:  WBState{Nop: true},
	}
}
