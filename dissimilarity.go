package hdcd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// DissimilarityFunc computes a flat row-major n×n dissimilarity matrix from
// an n×p data matrix. Implementations must return a symmetric matrix with a
// zero diagonal and non-negative entries.
type DissimilarityFunc func(data [][]float64) ([]float64, error)

// Profile is the 2-D summary of one observation: the mean and population
// standard deviation of its p coordinates. All profile-space distances are
// Euclidean distances between these pairs.
type Profile struct {
	Mean float64
	Std  float64
}

// rowProfiles computes the per-observation (mean, std) profiles.
func rowProfiles(data [][]float64) []Profile {
	profiles := make([]Profile, len(data))
	for i, row := range data {
		profiles[i] = Profile{
			Mean: stat.Mean(row, nil),
			Std:  stat.PopStdDev(row, nil),
		}
	}
	return profiles
}

func profileDistance(a, b Profile) float64 {
	return math.Hypot(a.Mean-b.Mean, a.Std-b.Std)
}

// validateData checks that data is rectangular with at least 3 rows and at
// least one column.
func validateData(data [][]float64) error {
	n := len(data)
	if n < 3 {
		return fmt.Errorf("%w: need at least 3 observations, got %d", ErrInvalidInput, n)
	}
	p := len(data[0])
	if p == 0 {
		return fmt.Errorf("%w: observations must have at least 1 coordinate", ErrInvalidInput)
	}
	for i, row := range data {
		if len(row) != p {
			return fmt.Errorf("%w: data is not rectangular: row 0 has %d coordinates, row %d has %d",
				ErrInvalidInput, p, i, len(row))
		}
	}
	return nil
}

// ComputeDissimilarity computes the third-party-referenced dissimilarity
// matrix: entry (i,j) is the average disagreement in how i and j relate to
// every other observation,
//
//	d(i,j) = 1/(n-2) · Σ_{k∉{i,j}} |e(i,k) - e(j,k)|,
//
// where e is the Euclidean distance between (mean, std) profiles. Two
// observations are similar when they sit in the same position relative to
// the rest of the sample, not when they are close to each other directly.
//
// The result is a flat row-major n×n matrix, symmetric with zero diagonal
// and non-negative entries. Requires n >= 3.
func ComputeDissimilarity(data [][]float64) ([]float64, error) {
	return ComputeDissimilarityParallel(data, 1)
}

// ComputeDissimilarityParallel is ComputeDissimilarity using numWorkers
// goroutines for the pair accumulation. The result is bitwise identical to
// the sequential computation.
func ComputeDissimilarityParallel(data [][]float64, numWorkers int) ([]float64, error) {
	if err := validateData(data); err != nil {
		return nil, err
	}
	n := len(data)
	profiles := rowProfiles(data)

	// Pairwise profile distances, reused n times by the accumulation below.
	e := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := profileDistance(profiles[i], profiles[j])
			e[i*n+j] = d
			e[j*n+i] = d
		}
	}

	result := make([]float64, n*n)
	inv := 1.0 / float64(n-2)
	forEachChunk(n, numWorkers, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i + 1; j < n; j++ {
				var sum float64
				for k := 0; k < n; k++ {
					if k == i || k == j {
						continue
					}
					sum += math.Abs(e[i*n+k] - e[j*n+k])
				}
				d := sum * inv
				result[i*n+j] = d
				result[j*n+i] = d
			}
		}
	})

	return result, nil
}

// EuclideanDissimilarity is the plain alternative measure: entry (i,j) is
// the Euclidean distance between full rows i and j divided by √p. It is a
// drop-in replacement for ComputeDissimilarity wherever a DissimilarityFunc
// is accepted.
func EuclideanDissimilarity(data [][]float64) ([]float64, error) {
	if err := validateData(data); err != nil {
		return nil, err
	}
	n := len(data)
	norm := math.Sqrt(float64(len(data[0])))
	result := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var sum float64
			for c := range data[i] {
				d := data[i][c] - data[j][c]
				sum += d * d
			}
			d := math.Sqrt(sum) / norm
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}
	return result, nil
}
