package hdcd

import "math"

// Split is the outcome of the test-statistic stage: the best split
// candidate together with the two contrast statistics at that split.
// Candidate is the index of the first observation of the proposed second
// segment. A candidate at the sequence edges (Candidate <= 1 or
// Candidate == n-1) admits no testable split and carries zero statistics.
type Split struct {
	Candidate int
	// T contrasts dissimilarity values across the split: the mean over rows
	// of the average squared difference between each row's dissimilarity to
	// the before-columns and to the after-columns.
	T float64
	// W contrasts (mean, std) profiles across the split the same way.
	W float64
}

// SplitSelector chooses a candidate split index from a flat n×n
// dissimilarity matrix. ShiftSelector is the default; a wild binary
// segmentation strategy with the same contract can be substituted through
// Config.Selector.
type SplitSelector interface {
	SelectSplit(dist []float64, n int) int
}

// ShiftSelector selects the column whose dissimilarity pattern departs most
// abruptly from its immediate predecessor: argmax over k in [1, n) of the
// shift profile, taking the first index on ties.
type ShiftSelector struct{}

func (ShiftSelector) SelectSplit(dist []float64, n int) int {
	shift := ShiftProfile(dist, n)
	best := 1
	for k := 2; k < n; k++ {
		if shift[k] > shift[best] {
			best = k
		}
	}
	return best
}

// ShiftProfile returns the column-shift vector scanned by ShiftSelector:
// entry k (k >= 1) is the mean over rows i of |D[i][k] - D[i][k-1]|, a
// large value flagging an abrupt change in the dissimilarity pattern
// between adjacent positions. Entry 0 is always zero. Exposed for
// diagnostics and for building alternative selectors.
func ShiftProfile(dist []float64, n int) []float64 {
	shift := make([]float64, n)
	for k := 1; k < n; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += math.Abs(dist[i*n+k] - dist[i*n+k-1])
		}
		shift[k] = sum / float64(n)
	}
	return shift
}

// SplitStatistic locates the best split candidate for data and computes the
// T and W contrast statistics there.
func SplitStatistic(data [][]float64, cfg Config) (Split, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return Split{}, err
	}
	if err := validateData(data); err != nil {
		return Split{}, err
	}
	return splitStatistic(data, &cfg)
}

// splitStatistic is SplitStatistic after validation and defaulting.
func splitStatistic(data [][]float64, cfg *Config) (Split, error) {
	dist, err := cfg.dissimilarity(data)
	if err != nil {
		return Split{}, err
	}
	n := len(data)
	k := cfg.Selector.SelectSplit(dist, n)
	return splitStatisticAt(dist, rowProfiles(data), n, k, cfg.Workers), nil
}

// splitStatisticAt computes T and W for the split at candidate k. Rows are
// independent and are accumulated in parallel chunks.
func splitStatisticAt(dist []float64, profiles []Profile, n, k, numWorkers int) Split {
	if k <= 1 || k >= n-1 {
		return Split{Candidate: k}
	}

	norm := float64(k) * float64(n-k)
	rowT := make([]float64, n)
	rowW := make([]float64, n)

	forEachChunk(n, numWorkers, func(start, end int) {
		for i := start; i < end; i++ {
			pi := profiles[i]
			var sumT, sumW float64
			for j := 0; j < k; j++ {
				dm := pi.Mean - profiles[j].Mean
				ds := pi.Std - profiles[j].Std
				gBefore := dm*dm + ds*ds
				dij := dist[i*n+j]
				for jj := k; jj < n; jj++ {
					dm = pi.Mean - profiles[jj].Mean
					ds = pi.Std - profiles[jj].Std
					dd := dij - dist[i*n+jj]
					sumT += dd * dd
					sumW += gBefore + dm*dm + ds*ds
				}
			}
			rowT[i] = sumT / norm
			rowW[i] = sumW / norm
		}
	})

	var t, w float64
	for i := 0; i < n; i++ {
		t += rowT[i]
		w += rowW[i]
	}
	return Split{Candidate: k, T: t / float64(n), W: w / float64(n)}
}
