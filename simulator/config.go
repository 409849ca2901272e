package simulator

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/archsim/rv32isim/memimage"
)

// Config is the optional run configuration, loaded from YAML. Absent
// --config, DefaultConfig is used, following teacher's
// DefaultTimingConfig/LoadConfig/Validate trio.
type Config struct {
	MemorySize int    `yaml:"memory_size"`
	MaxCycles  uint64 `yaml:"max_cycles"`

	OutputNames OutputNames `yaml:"output_names"`
}

// OutputNames lets a run config override the default output file names,
// matching original_source's fixed but spec-documented file set.
type OutputNames struct {
	SSDMEM  string `yaml:"ss_dmem"`
	FSDMEM  string `yaml:"fs_dmem"`
	SSRF    string `yaml:"ss_rf"`
	FSRF    string `yaml:"fs_rf"`
	SSState string `yaml:"ss_state"`
	FSState string `yaml:"fs_state"`
	Metrics string `yaml:"metrics"`
}

// DefaultConfig returns the configuration used when no --config is given.
func DefaultConfig() Config {
	return Config{
		MemorySize: memimage.DefaultSize,
		MaxCycles:  0, // unbounded: Run ticks each core until it halts
		OutputNames: OutputNames{
			SSDMEM:  "SS_DMEMResult.txt",
			FSDMEM:  "FS_DMEMResult.txt",
			SSRF:    "SS_RFResult.txt",
			FSRF:    "FS_RFResult.txt",
			SSState: "StateResult_SS.txt",
			FSState: "StateResult_FS.txt",
			Metrics: "PerformanceMetrics_Result.txt",
		},
	}
}

// LoadConfig reads a YAML run config from path, defaulting any field left
// unset in the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("simulator: read config %s: %w", path, err)
	}

	// Decode onto a copy seeded with defaults so a config file that omits
	// a field keeps the default rather than zeroing it.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("simulator: parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("simulator: invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects a config with a non-positive memory size.
func (c Config) Validate() error {
	if c.MemorySize <= 0 {
		return fmt.Errorf("memory_size must be positive, got %d", c.MemorySize)
	}
	return nil
}
