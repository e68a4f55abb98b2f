package hdcd

import (
	"errors"
	"math"
	"testing"
)

func TestEdgeCase_MinimalSequence(t *testing.T) {
	data := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	cfg := DefaultConfig()
	cfg.MinSegment = 3
	points, err := DetectChangePoints(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no change points for 3 rows, got %v", points)
	}
}

func TestEdgeCase_TooFewRows(t *testing.T) {
	data := [][]float64{{1, 2}, {3, 4}}
	_, err := DetectChangePoints(data, DefaultConfig())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEdgeCase_NonRectangular(t *testing.T) {
	data := [][]float64{{1, 2, 3}, {4, 5}, {6, 7, 8}, {9, 10, 11}}
	_, err := DetectChangePoints(data, DefaultConfig())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEdgeCase_AllIdenticalRows(t *testing.T) {
	// Identical rows give an all-zero dissimilarity matrix; the scan lands
	// on an edge candidate and the outcome is a clean no-split.
	data := make([][]float64, 15)
	for i := range data {
		data[i] = []float64{5, 5, 5, 5}
	}
	dec, err := TestChangePoint(data, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Significant {
		t.Errorf("identical rows must not yield a significant split")
	}
	if dec.Point.Found {
		t.Errorf("identical rows must not yield a change point, got %d", dec.Point.Index)
	}
}

func TestEdgeCase_NoNaNStatistics(t *testing.T) {
	data := homogeneousData(16, 3, 71)
	s, err := SplitStatistic(data, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(s.T) || math.IsInf(s.T, 0) {
		t.Errorf("T is not finite: %v", s.T)
	}
	if math.IsNaN(s.W) || math.IsInf(s.W, 0) {
		t.Errorf("W is not finite: %v", s.W)
	}
}

func TestEdgeCase_SingleCoordinateAsymptotic(t *testing.T) {
	// p=1 leaves no within-row spread to estimate the null from.
	data := make([][]float64, 12)
	for i := range data {
		data[i] = []float64{float64(i * i)}
	}
	cfg := DefaultConfig()
	cfg.Selector = fixedSelector{k: 6}
	_, err := TestChangePoint(data, cfg)
	if !errors.Is(err, ErrInvalidInput) && !errors.Is(err, ErrNumericDegeneracy) {
		t.Fatalf("expected an input or degeneracy error for p=1, got %v", err)
	}
}

func TestEdgeCase_InvalidConfig(t *testing.T) {
	data := homogeneousData(20, 5, 72)

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "bootstrap" }},
		{"alpha too large", func(c *Config) { c.Alpha = 1.5 }},
		{"alpha negative", func(c *Config) { c.Alpha = -0.05 }},
		{"negative permutations", func(c *Config) { c.Permutations = -1 }},
		{"minsegment too small", func(c *Config) { c.MinSegment = 2 }},
		{"negative workers", func(c *Config) { c.Workers = -3 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if _, err := DetectChangePoints(data, cfg); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestEdgeCase_DissimilarityErrorPropagates(t *testing.T) {
	data := homogeneousData(20, 5, 73)
	boom := errors.New("matrix backend unavailable")
	cfg := DefaultConfig()
	cfg.Dissimilarity = func([][]float64) ([]float64, error) { return nil, boom }

	if _, err := DetectChangePoints(data, cfg); !errors.Is(err, boom) {
		t.Fatalf("expected custom dissimilarity error to propagate, got %v", err)
	}
}
