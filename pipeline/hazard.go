package pipeline

// HazardUnit detects load-use hazards that forwarding alone cannot
// resolve: the loaded value isn't available until after the MEM stage, so
// an immediately-following consumer must stall one cycle.
type HazardUnit struct{}

// NewHazardUnit creates a hazard detection unit.
func NewHazardUnit() *HazardUnit { return &HazardUnit{} }

// StallDecision is the hazard unit's verdict for the current tick.
type StallDecision struct {
	PCWrite   bool
	IFIDWrite bool
	Stall     bool
}

// Detect implements spec.md §4.5: the instruction already latched into
// ID/EX (idex, from the previous tick's decode) stalls the pipeline if it
// is a load whose destination matches either source register of the
// instruction currently in ID (rs1, rs2).
func (h *HazardUnit) Detect(idex EXState, rs1, rs2 uint8) StallDecision {
	stall := idex.RdMem && idex.WrtRegAddr != 0 &&
		(idex.WrtRegAddr == rs1 || idex.WrtRegAddr == rs2)

	return StallDecision{
		PCWrite:   !stall,
		IFIDWrite: !stall,
		Stall:     stall,
	}
}
