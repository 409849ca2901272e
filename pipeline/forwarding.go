package pipeline

// ForwardSel is the 2-bit forwarding-mux select code.
type ForwardSel uint8

const (
	ForwardNone  ForwardSel = 0b00 // use the register-file / ID/EX value
	ForwardMEMWB ForwardSel = 0b01 // forward from MEM/WB
	ForwardEXMEM ForwardSel = 0b10 // forward from EX/MEM
)

// ForwardEX determines the EX-stage forwarding selects for the
// instruction latched in ID/EX (idex), against the committed EX/MEM
// (exmem) and MEM/WB (memwb) registers — i.e. the instructions presently
// in the MEM and WB stages. EX/MEM has priority over MEM/WB, per
// spec.md §4.6.
func ForwardEX(idex EXState, exmem MEMState, memwb WBState) (forwardA, forwardB ForwardSel) {
	forwardA = forwardSingle(idex.Rs, exmem, memwb)
	forwardB = forwardSingle(idex.Rt, exmem, memwb)
	return forwardA, forwardB
}

func forwardSingle(src uint8, exmem MEMState, memwb WBState) ForwardSel {
	if exmem.WrtEnable && exmem.WrtRegAddr != 0 && exmem.WrtRegAddr == src {
		return ForwardEXMEM
	}
	if memwb.WrtEnable && memwb.WrtRegAddr != 0 && memwb.WrtRegAddr == src {
		return ForwardMEMWB
	}
	return ForwardNone
}

// ForwardBranch determines the ID-stage forwarding selects used to
// resolve a branch comparison in ID, against the *in-flight* EX/MEM and
// MEM/WB registers being written this very tick (the instructions
// currently finishing EX and MEM stages this cycle) — since branches
// resolve in ID, they must see forwarded values as fresh as what EX would
// see, per spec.md §4.6/§9.
func ForwardBranch(rs1, rs2 uint8, exmem MEMState, memwb WBState) (forwardA, forwardB ForwardSel) {
	forwardA = forwardSingle(rs1, exmem, memwb)
	forwardB = forwardSingle(rs2, exmem, memwb)
	return forwardA, forwardB
}

// Select applies a forwarding decision, choosing among the original
// value, the MEM/WB writeback value, and the EX/MEM ALU result.
func Select(sel ForwardSel, original uint32, exmem MEMState, memwb WBState) uint32 {
	switch sel {
	case ForwardEXMEM:
		return exmem.ALUResult
	case ForwardMEMWB:
		return memwb.WrtData
	default:
		return original
	}
}
