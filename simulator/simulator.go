// Package simulator drives the single-cycle and pipelined cores over a
// shared program image, writes the run's output files, and reports
// whether the two cores reached equivalent final architectural state.
package simulator

import (
	"fmt"
	"path/filepath"

	"github.com/google/go-cmp/cmp"

	"github.com/archsim/rv32isim/dump"
	"github.com/archsim/rv32isim/internal/simlog"
	"github.com/archsim/rv32isim/memimage"
	"github.com/archsim/rv32isim/pipeline"
	"github.com/archsim/rv32isim/regfile"
	"github.com/archsim/rv32isim/singlecycle"
)

// Result is the outcome of running both cores to completion.
type Result struct {
	SingleCycle singlecycle.Stats
	Pipelined   pipeline.Stats

	// Equivalent reports whether the two cores' final register files and
	// data memories matched bit-for-bit.
	Equivalent bool
	// Diff is a go-cmp diff of the two final states, empty when Equivalent.
	Diff string
}

// Run loads imem.txt/dmem.txt from iodir, runs both cores to completion
// (or cfg.MaxCycles, 0 meaning unbounded), writes the dump files into
// iodir, and returns the comparison result.
func Run(iodir string, cfg Config) (Result, error) {
	imem, err := memimage.LoadText("imem", filepath.Join(iodir, "imem.txt"), cfg.MemorySize)
	if err != nil {
		return Result{}, fmt.Errorf("simulator: load imem: %w", err)
	}

	// Mirrors original_source's main.py: SS and FS each get their own
	// data-memory image, loaded independently from the same file, so
	// neither core's writes can leak into the other's.
	dmemSS, err := memimage.LoadText("dmem_ss", filepath.Join(iodir, "dmem.txt"), cfg.MemorySize)
	if err != nil {
		return Result{}, fmt.Errorf("simulator: load dmem (single-cycle): %w", err)
	}
	dmemFS, err := memimage.LoadText("dmem_fs", filepath.Join(iodir, "dmem.txt"), cfg.MemorySize)
	if err != nil {
		return Result{}, fmt.Errorf("simulator: load dmem (pipelined): %w", err)
	}

	rfSS := &regfile.File{}
	rfFS := &regfile.File{}

	ss := singlecycle.New(rfSS, imem, dmemSS)
	fs := pipeline.New(rfFS, imem, dmemFS)

	ssState, err := dump.NewStateWriter(iodir, cfg.OutputNames.SSState)
	if err != nil {
		return Result{}, err
	}
	defer ssState.Close()

	fsState, err := dump.NewStateWriter(iodir, cfg.OutputNames.FSState)
	if err != nil {
		return Result{}, err
	}
	defer fsState.Close()

	ssRF, err := dump.NewRFWriter(iodir, cfg.OutputNames.SSRF)
	if err != nil {
		return Result{}, err
	}
	defer ssRF.Close()

	fsRF, err := dump.NewRFWriter(iodir, cfg.OutputNames.FSRF)
	if err != nil {
		return Result{}, err
	}
	defer fsRF.Close()

	runCore := func(halted func() bool, tick func(), trace func(cycle uint64)) {
		cycles := uint64(0)
		for !halted() {
			if cfg.MaxCycles != 0 && cycles >= cfg.MaxCycles {
				simlog.Default().Warn("max-cycles safety bound reached", "max_cycles", cfg.MaxCycles)
				break
			}
			tick()
			trace(cycles)
			cycles++
		}
	}

	runCore(ss.Halted, ss.Tick, func(cycle uint64) {
		pc, instr := ss.LastExecuted()
		ssState.WriteCycle(cycle, dump.SingleCycleLines(pc, instr, ss.Halted()))
		ssRF.WriteCycle(cycle, ss.RegFile().Snapshot())
	})
	runCore(fs.Halted, fs.Tick, func(cycle uint64) {
		fsState.WriteCycle(cycle, dump.PipelineLines(fs.Registers()))
		fsRF.WriteCycle(cycle, fs.RegFile().Snapshot())
	})

	if err := dump.WriteDataMemory(iodir, cfg.OutputNames.SSDMEM, dmemSS.Bytes()); err != nil {
		return Result{}, err
	}
	if err := dump.WriteDataMemory(iodir, cfg.OutputNames.FSDMEM, dmemFS.Bytes()); err != nil {
		return Result{}, err
	}

	if err := dump.WriteMetrics(iodir, cfg.OutputNames.Metrics,
		dump.Metrics{Title: "Single Stage", Cycles: ss.Stats().Cycles, Instructions: ss.Stats().Instructions},
		dump.Metrics{Title: "Five Stage", Cycles: fs.Stats().Cycles, Instructions: fs.Stats().Instructions},
	); err != nil {
		return Result{}, err
	}

	diff := cmp.Diff(rfSS.Snapshot(), rfFS.Snapshot())
	dmemDiff := cmp.Diff(dmemSS.Bytes(), dmemFS.Bytes())
	if dmemDiff != "" {
		if diff != "" {
			diff += "\n"
		}
		diff += dmemDiff
	}

	if diff != "" {
		simlog.Default().Warn("single-cycle and pipelined cores diverged", "diff", diff)
	}

	return Result{
		SingleCycle: ss.Stats(),
		Pipelined:   fs.Stats(),
		Equivalent:  diff == "",
		Diff:        diff,
	}, nil
}
