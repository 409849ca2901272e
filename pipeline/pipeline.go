package pipeline

import (
	"github.com/archsim/rv32isim/isa"
	"github.com/archsim/rv32isim/memimage"
	"github.com/archsim/rv32isim/regfile"
)

// Stats reports the running totals a finished or in-progress run has
// accumulated, per spec.md §8's cycle-accounting rules.
type Stats struct {
	Cycles       uint64
	Instructions uint64
	Stalls       uint64
	Flushes      uint64
	Branches     uint64
}

// CPI returns Cycles/Instructions, or 0 if no instruction has retired yet.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Pipeline is the five-stage scalar RV32I core. Each Tick executes the
// five stages in WB, MEM, EX, ID, IF order against the committed
// Registers, producing a shadow copy that becomes committed at the end
// of the tick — mirroring the teacher's Pipeline.Tick (doWriteback,
// doMemory, doExecute, doDecode, doFetch) and the reference simulator's
// state/next_state discipline.
type Pipeline struct {
	regFile *regfile.File
	imem    *memimage.Memory
	dmem    *memimage.Memory
	hazard  *HazardUnit

	state Registers

	halted      bool
	haltLatched bool // HALT fetched; pipeline is draining

	stats Stats
}

// New creates a pipeline with the program counter starting at 0.
func New(regFile *regfile.File, imem, dmem *memimage.Memory) *Pipeline {
	return &Pipeline{
		regFile: regFile,
		imem:    imem,
		dmem:    dmem,
		hazard:  NewHazardUnit(),
		state:   initial(),
	}
}

// Halted reports whether the pipeline has fully drained after fetching
// the HALT sentinel.
func (p *Pipeline) Halted() bool { return p.halted }

// Stats returns the running cycle/instruction/stall/flush counters.
func (p *Pipeline) Stats() Stats { return p.stats }

// Registers exposes the committed pipeline-register record, for state
// dumps taken between ticks.
func (p *Pipeline) Registers() Registers { return p.state }

// RegFile exposes the register file, for final-state dumps.
func (p *Pipeline) RegFile() *regfile.File { return p.regFile }

// Tick advances the pipeline by one cycle. It is a no-op once Halted
// reports true.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}

	// Mirror the reference core's set_init_nop_state/step ordering: the
	// drain check runs against the registers committed by the *previous*
	// tick, before this tick's stages touch anything. A tick that trips
	// it still runs to completion — it's the last one, not a skipped one.
	if p.haltLatched && p.state.ID.Nop && p.state.EX.Nop && p.state.MEM.Nop && p.state.WB.Nop {
		p.halted = true
	}

	p.stats.Cycles++

	wb := doWriteback(p.state.WB, p.regFile)
	if wb {
		p.stats.Instructions++
	}

	nextWB := doMemory(p.state.MEM, p.dmem)
	nextMEM := doExecute(p.state.EX, p.state.MEM, p.state.WB)

	nextEX, ifUpdate := doDecode(
		p.state.ID,
		p.state.EX,
		p.regFile,
		p.hazard,
		nextMEM,
		nextWB,
	)

	if !ifUpdate.PCWrite {
		p.stats.Stalls++
	}
	if ifUpdate.PCSrc {
		p.stats.Flushes++
	}
	if nextEX.Branch {
		// A BEQ/BNE completes in ID and never reaches WB, so it is counted
		// as an executed instruction here rather than by doWriteback.
		p.stats.Branches++
		p.stats.Instructions++
	}

	nextIF, nextID, haltFetched := p.doFetch(ifUpdate)

	p.state = Registers{
		IF:  nextIF,
		ID:  nextID,
		EX:  nextEX,
		MEM: nextMEM,
		WB:  nextWB,
	}

	if haltFetched {
		p.haltLatched = true
	}
}

// doFetch implements the IF stage's PC/IF-ID update, honoring the
// hazard unit's PCWrite/IFIDWrite holds and a taken branch/JAL flush
// resolved by ID this tick.
func (p *Pipeline) doFetch(ifUpdate IFState) (nextIF IFState, nextID IDState, haltFetched bool) {
	if p.haltLatched {
		// Nothing upstream of HALT is still being fetched; keep feeding
		// bubbles while the tail drains.
		return p.state.IF, IDState{Nop: true}, false
	}

	if ifUpdate.PCSrc {
		// Taken branch/JAL: the instruction IF fetched this tick (if any)
		// is squashed, and fetch resumes at the resolved target next tick.
		return IFState{PC: ifUpdate.BranchPC}, IDState{Nop: true}, false
	}

	if !ifUpdate.IFIDWrite {
		// Load-use stall: hold the IF/ID register and the PC, discarding
		// whatever IF/ID would otherwise have captured.
		return p.state.IF, p.state.ID, false
	}

	word := p.imem.Read32(p.state.IF.PC)
	if isa.Word(word).IsHalt() {
		return IFState{PC: p.state.IF.PC}, IDState{Nop: true}, true
	}

	nextID = IDState{Instr: word, PC: p.state.IF.PC}

	nextPC := p.state.IF.PC
	if ifUpdate.PCWrite {
		nextPC = p.state.IF.PC + 4
	}

	return IFState{PC: nextPC}, nextID, false
}

// RunCycles ticks the pipeline up to n times or until it halts,
// whichever comes first. It returns the number of ticks actually
// executed, guarding against runaway programs that never fetch HALT.
func (p *Pipeline) RunCycles(n uint64) uint64 {
	var executed uint64
	for executed = 0; executed < n && !p.halted; executed++ {
		p.Tick()
	}
	return executed
}
