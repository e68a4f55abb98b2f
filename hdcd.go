package hdcd

import (
	"fmt"
	"runtime"
)

// Mode selects how split significance is decided.
type Mode string

const (
	// ModeAsymptotic tests the W statistic against a closed-form normal
	// approximation of its null distribution. Deterministic.
	ModeAsymptotic Mode = "asymptotic"

	// ModePermutation tests the T statistic against an empirical null built
	// by resampling. Reproducible for a fixed Config.Seed.
	ModePermutation Mode = "permutation"
)

// Config controls change-point detection behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Dissimilarity builds the n×n dissimilarity matrix from the data.
	// Must return a symmetric matrix with zero diagonal. Set to nil to use
	// ComputeDissimilarity (the profile-referenced measure);
	// EuclideanDissimilarity is the built-in alternative.
	Dissimilarity DissimilarityFunc

	// Selector chooses the split candidate from the dissimilarity matrix.
	// Default: ShiftSelector (adjacent-column shift scan). A wild binary
	// segmentation selector can be plugged in here.
	Selector SplitSelector

	// Mode selects the significance test. Default: ModeAsymptotic.
	Mode Mode

	// Permutations is the number of resamples in ModePermutation.
	// Must be >= 1. Default: 200.
	Permutations int

	// Alpha is the significance level. Must be in (0, 1). Default: 0.05.
	Alpha float64

	// MinSegment is the smallest segment length the segmenter will still
	// try to split. Must be >= 3. Default: 10.
	MinSegment int

	// Seed seeds the permutation resampler. Runs with the same seed and
	// data are bit-identical regardless of Workers. Default: 0.
	Seed uint64

	// Workers is the number of goroutines used for row accumulation,
	// permutation trials, and segmentation branches. Set to 1 to force
	// sequential execution. Default: runtime.NumCPU().
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Mode:         ModeAsymptotic,
		Permutations: 200,
		Alpha:        0.05,
		MinSegment:   10,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Selector == nil {
		cfg.Selector = ShiftSelector{}
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAsymptotic
	}
	if cfg.Permutations == 0 {
		cfg.Permutations = 200
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = 0.05
	}
	if cfg.MinSegment == 0 {
		cfg.MinSegment = 10
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// validateConfig checks that cfg fields are valid after defaulting.
func validateConfig(cfg *Config) error {
	if cfg.Mode != ModeAsymptotic && cfg.Mode != ModePermutation {
		return fmt.Errorf("%w: Mode must be %q or %q, got %q",
			ErrInvalidInput, ModeAsymptotic, ModePermutation, cfg.Mode)
	}
	if cfg.Permutations < 1 {
		return fmt.Errorf("%w: Permutations must be >= 1, got %d", ErrInvalidInput, cfg.Permutations)
	}
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return fmt.Errorf("%w: Alpha must be in (0, 1), got %v", ErrInvalidInput, cfg.Alpha)
	}
	if cfg.MinSegment < 3 {
		return fmt.Errorf("%w: MinSegment must be >= 3, got %d", ErrInvalidInput, cfg.MinSegment)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: Workers must be >= 0, got %d", ErrInvalidInput, cfg.Workers)
	}
	return nil
}

// dissimilarity applies cfg.Dissimilarity, defaulting to the parallel
// profile-referenced measure.
func (cfg *Config) dissimilarity(data [][]float64) ([]float64, error) {
	if cfg.Dissimilarity == nil {
		return ComputeDissimilarityParallel(data, cfg.Workers)
	}
	return cfg.Dissimilarity(data)
}
