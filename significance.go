package hdcd

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Candidate is an optional change-point index. The zero value means "not
// found". Arithmetic on positions goes through Shift, which leaves missing
// candidates untouched, so an offset can never be applied to a value that
// is not there.
type Candidate struct {
	Index int
	Found bool
}

// FoundAt returns a found Candidate at index.
func FoundAt(index int) Candidate { return Candidate{Index: index, Found: true} }

// Shift re-expresses the candidate in a parent index space offset positions
// to the right. Not-found candidates are returned unchanged.
func (c Candidate) Shift(offset int) Candidate {
	if !c.Found {
		return c
	}
	return Candidate{Index: c.Index + offset, Found: true}
}

// Decision is the outcome of a single change-point significance test.
// Point is the not-found zero value whenever Significant is false.
type Decision struct {
	Point       Candidate
	Significant bool
}

// TestChangePoint locates the best split candidate of data and tests it for
// statistical significance under cfg.Mode.
//
// Candidates at the sequence edges admit no split: they yield a
// non-significant Decision, except in ModePermutation when the candidate
// has no before-rows to resample, which fails with ErrUnsupportedSplit.
// ModeAsymptotic fails with ErrNumericDegeneracy when a zero-variance row
// makes the null moments undefined.
func TestChangePoint(data [][]float64, cfg Config) (Decision, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return Decision{}, err
	}
	if err := validateData(data); err != nil {
		return Decision{}, err
	}
	return testChangePoint(data, &cfg)
}

func testChangePoint(data [][]float64, cfg *Config) (Decision, error) {
	obs, err := splitStatistic(data, cfg)
	if err != nil {
		return Decision{}, err
	}

	n := len(data)
	switch {
	case obs.Candidate >= n-1:
		return Decision{}, nil
	case obs.Candidate <= 1:
		if cfg.Mode == ModePermutation {
			return Decision{}, fmt.Errorf("%w: candidate %d leaves no rows before the anchor to resample",
				ErrUnsupportedSplit, obs.Candidate)
		}
		return Decision{}, nil
	}

	if cfg.Mode == ModePermutation {
		return permutationDecision(data, obs, cfg)
	}
	return asymptoticDecision(data, obs, cfg)
}

// permutationDecision compares the observed T against an empirical null:
// each resample shuffles the rows strictly before and strictly after the
// candidate independently while the anchor row stays at the candidate
// position, then re-runs the full statistic scan. The candidate is
// significant when the observed T exceeds the (1-alpha) percentile of the
// resampled values.
//
// Trials are independent and run in parallel chunks; each trial draws from
// its own PCG stream keyed by (Seed, trial), so the null is identical for
// any worker count.
func permutationDecision(data [][]float64, obs Split, cfg *Config) (Decision, error) {
	n := len(data)
	k := obs.Candidate

	trialCfg := *cfg
	trialCfg.Workers = 1

	null := make([]float64, cfg.Permutations)
	errs := make([]error, cfg.Permutations)
	forEachChunk(cfg.Permutations, cfg.Workers, func(start, end int) {
		resampled := make([][]float64, n)
		for trial := start; trial < end; trial++ {
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(trial)+1))
			copy(resampled, data)
			// Shuffle [0, k) and [k+1, n); the anchor row k is fixed.
			rng.Shuffle(k, func(a, b int) {
				resampled[a], resampled[b] = resampled[b], resampled[a]
			})
			after := resampled[k+1:]
			rng.Shuffle(len(after), func(a, b int) {
				after[a], after[b] = after[b], after[a]
			})

			s, err := splitStatistic(resampled, &trialCfg)
			if err != nil {
				errs[trial] = err
				continue
			}
			null[trial] = s.T
		}
	})
	for _, err := range errs {
		if err != nil {
			return Decision{}, fmt.Errorf("hdcd: permutation resample: %w", err)
		}
	}

	cut, err := stats.Percentile(null, 100*(1-cfg.Alpha))
	if err != nil {
		return Decision{}, fmt.Errorf("hdcd: permutation quantile: %w", err)
	}
	if obs.T > cut {
		return Decision{Point: FoundAt(k), Significant: true}, nil
	}
	return Decision{}, nil
}

// asymptoticMoments computes, for each row, the variance proxies entering
// the null distribution of W: v is the variance of the row's sample mean,
// vStar the approximate variance of the row's standard deviation (a
// fourth-moment term). Rows with zero variance make both undefined.
func asymptoticMoments(data [][]float64) (v, vStar []float64, err error) {
	p := float64(len(data[0]))
	v = make([]float64, len(data))
	vStar = make([]float64, len(data))

	var degenerate []int
	for i, row := range data {
		popVar := (p - 1) / p * stat.Variance(row, nil)
		if popVar == 0 || math.IsNaN(popVar) {
			degenerate = append(degenerate, i)
			continue
		}
		v[i] = popVar / p
		m4 := stat.Moment(4, row, nil) // Σ(x-mean)⁴ / p
		vStar[i] = (m4 / p) / (4 * popVar)
	}
	if len(degenerate) > 0 {
		return nil, nil, fmt.Errorf("%w: zero-variance rows %v", ErrNumericDegeneracy, degenerate)
	}
	return v, vStar, nil
}

// asymptoticDecision standardizes the scaled statistic S = n·|B|·|A|·W
// against its null mean and variance and applies a two-sided standard
// normal test at level alpha.
//
// S decomposes as Σ_{i<j} c(i,j)·g(i,j), where g(i,j) is the squared
// profile difference of rows i and j and c(i,j) counts how often the pair
// appears in the before/after double loop: 2·|A| when both rows are before
// the split, 2·|B| when both are after, n when they straddle it. Null mean
// and variance then reduce to sums over pairs and over single shared
// indices; quadruples with no shared index contribute nothing. This is the
// O(n²) restatement of the covariance enumeration over index quadruples.
func asymptoticDecision(data [][]float64, obs Split, cfg *Config) (Decision, error) {
	if len(data[0]) < 2 {
		return Decision{}, fmt.Errorf("%w: asymptotic mode needs at least 2 coordinates per observation",
			ErrInvalidInput)
	}
	v, vStar, err := asymptoticMoments(data)
	if err != nil {
		return Decision{}, err
	}

	n := len(data)
	k := obs.Candidate
	nBefore := float64(k)
	nAfter := float64(n - k)

	var mean, variance float64
	coefSum := make([]float64, n)
	coefSq := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var c float64
			switch {
			case i < k && j < k:
				c = 2 * nAfter
			case i >= k && j >= k:
				c = 2 * nBefore
			default:
				c = nBefore + nAfter
			}

			dv := v[i] + v[j]
			ds := vStar[i] + vStar[j]
			mean += c * (dv + ds)
			variance += c * c * 2 * (dv*dv + ds*ds)

			coefSum[i] += c
			coefSum[j] += c
			coefSq[i] += c * c
			coefSq[j] += c * c
		}
	}
	// Covariance of pair terms sharing exactly one row.
	for i := 0; i < n; i++ {
		cross := coefSum[i]*coefSum[i] - coefSq[i]
		variance += cross * 2 * (v[i]*v[i] + vStar[i]*vStar[i])
	}
	if variance <= 0 {
		return Decision{}, fmt.Errorf("%w: null variance is not positive", ErrNumericDegeneracy)
	}

	scaled := float64(n) * nBefore * nAfter * obs.W
	z := (scaled - mean) / math.Sqrt(variance)
	critical := distuv.UnitNormal.Quantile(1 - cfg.Alpha/2)
	if math.Abs(z) >= critical {
		return Decision{Point: FoundAt(k), Significant: true}, nil
	}
	return Decision{}, nil
}

// deriveSeed maps the caller seed and a global interval to the seed used
// for that interval's permutation trials. Splitmix-style finalizer: nearby
// intervals get unrelated streams, and the mapping is independent of the
// order intervals are processed in.
func deriveSeed(seed uint64, start, end int) uint64 {
	z := seed ^ (uint64(start)<<32 | uint64(uint32(end)))
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	return z ^ (z >> 31)
}
