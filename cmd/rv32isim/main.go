// Command rv32isim runs a single-cycle and a five-stage pipelined RV32I
// core over the same program image and reports whether they agree.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/archsim/rv32isim/internal/simlog"
	"github.com/archsim/rv32isim/simulator"
)

var (
	iodir     = flag.String("iodir", "", "directory containing imem.txt/dmem.txt (required)")
	maxCycles = flag.Uint64("max-cycles", 0, "safety bound on cycles per core, 0 = unbounded")
	config    = flag.String("config", "", "optional YAML run configuration")
	verbose   = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()

	if *verbose {
		simlog.SetVerbose(true)
	}

	if *iodir == "" {
		fmt.Fprintln(os.Stderr, "rv32isim: -iodir is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg := simulator.DefaultConfig()
	if *config != "" {
		loaded, err := simulator.LoadConfig(*config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rv32isim: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *maxCycles != 0 {
		cfg.MaxCycles = *maxCycles
	}

	result, err := simulator.Run(*iodir, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32isim: %v\n", err)
		os.Exit(1)
	}

	simlog.Default().Info("run complete",
		"ss_cycles", result.SingleCycle.Cycles,
		"ss_instructions", result.SingleCycle.Instructions,
		"fs_cycles", result.Pipelined.Cycles,
		"fs_instructions", result.Pipelined.Instructions,
		"equivalent", result.Equivalent,
	)

	if !result.Equivalent {
		fmt.Fprintln(os.Stderr, "rv32isim: single-cycle and pipelined cores produced different final state")
		fmt.Fprintln(os.Stderr, result.Diff)
	}

	os.Exit(0)
}
