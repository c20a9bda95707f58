package upgma

import (
	"fmt"
	"runtime"
)

// Strategy selects the row-minima scan implementation.
type Strategy string

const (
	// StrategyAuto picks StrategyBlocked on CPUs with wide vector units
	// (AVX2 or NEON) and StrategyScalar otherwise.
	StrategyAuto Strategy = "auto"
	// StrategyScalar scans each row with a single running minimum.
	StrategyScalar Strategy = "scalar"
	// StrategyBlocked scans each row in fixed-width lanes that the compiler
	// can vectorize. Selection among exactly-tied distances may differ from
	// the scalar path; the chosen pair is equally minimal either way.
	StrategyBlocked Strategy = "blocked"
)

// Config controls a UPGMA run. The zero value is usable; start with
// [DefaultConfig] and override the fields you need. A Config is copied on
// entry and never mutated by the run.
type Config struct {
	// Rooted selects a rooted result: clustering continues until two
	// clusters remain and the root is their two-way join. When false the
	// loop stops at three clusters and the root is an unrooted three-way
	// join. Default: false.
	Rooted bool

	// SubtreeOnly is passed through to the Newick renderer: the tree text
	// is written without the terminating semicolon, suitable for splicing
	// into a larger tree description. The clustering algorithm ignores it.
	// Default: false.
	SubtreeOnly bool

	// Silent suppresses the informational log line about pre-clustered
	// duplicate taxa. Progress reporting is separate: pass a nil Progress
	// to disable it. Default: false.
	Silent bool

	// Workers is the number of goroutines used for the parallel row scans
	// (row minima and row hashing). 0 means runtime.NumCPU(); 1 forces
	// sequential execution. Default: 0 (auto).
	Workers int

	// Strategy selects the row-minima scan implementation.
	// Default: StrategyAuto.
	Strategy Strategy

	// Progress, when non-nil, receives fractional progress of the
	// O(n²)-unit clustering workload. Default: nil (no reporting).
	Progress ProgressReporter
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Strategy: StrategyAuto,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyAuto
	}
	if cfg.Progress == nil {
		cfg.Progress = nopProgress{}
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// error if not.
func validateConfig(cfg *Config) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("upgma: Workers must be >= 0, got %d", cfg.Workers)
	}
	switch cfg.Strategy {
	case StrategyAuto, StrategyScalar, StrategyBlocked:
		// valid
	default:
		return fmt.Errorf("upgma: invalid Strategy %q", cfg.Strategy)
	}
	return nil
}
