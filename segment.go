package hdcd

import (
	"errors"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Interval is one node of the segmentation tree: a half-open range
// [Start, End) of global row indices, the accepted change point inside it
// (not-found when the interval was left unsplit), and the two child
// intervals an accepted split produced.
type Interval struct {
	Start, End int
	Point      Candidate
	Before     *Interval
	After      *Interval
}

// Len returns the number of observations the interval covers.
func (iv *Interval) Len() int { return iv.End - iv.Start }

// Segmentation is the result of recursive change-point detection: the
// sorted, deduplicated global change-point indices, plus the interval tree
// they were found in for callers that want the split structure.
type Segmentation struct {
	Points []int
	Root   *Interval
}

// DetectChangePoints runs recursive binary segmentation over data and
// returns the sorted set of significant change-point indices, each the
// global position of the first observation of a new segment. The result is
// empty (and the statistic engine never runs) when
// len(data) <= cfg.MinSegment.
func DetectChangePoints(data [][]float64, cfg Config) ([]int, error) {
	seg, err := Segment(data, cfg)
	if err != nil {
		return nil, err
	}
	return seg.Points, nil
}

// Segment is DetectChangePoints returning the interval tree alongside the
// flat index list.
//
// Segmentation works over an explicit stack of intervals rather than raw
// recursion: each interval is tested, and an accepted split records a
// global change point and enqueues both halves. A branch stops when its
// interval is at most MinSegment long, when its candidate is not
// significant, when the candidate sits too close to either end to leave
// room for recursion, or when the candidate cannot anchor the permutation
// scheme. The two halves of a split are independent and are processed
// concurrently up to cfg.Workers; results are merged by a final sort and
// dedup, so the output does not depend on scheduling.
func Segment(data [][]float64, cfg Config) (*Segmentation, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := validateData(data); err != nil {
		return nil, err
	}

	root := &Interval{Start: 0, End: len(data)}
	points := []int{}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(cfg.Workers)

	var process func(iv *Interval) error
	process = func(iv *Interval) error {
		if iv.Len() <= cfg.MinSegment {
			return nil
		}

		local := cfg
		local.Seed = deriveSeed(cfg.Seed, iv.Start, iv.End)
		dec, err := testChangePoint(data[iv.Start:iv.End], &local)
		if err != nil {
			// A candidate that cannot anchor the resampling scheme makes
			// this branch unsplittable, not the whole run a failure.
			if errors.Is(err, ErrUnsupportedSplit) {
				return nil
			}
			return err
		}
		if !dec.Significant || !dec.Point.Found {
			return nil
		}
		// The split must be strictly interior with room on both sides.
		if k := dec.Point.Index; k < 2 || k > iv.Len()-4 {
			return nil
		}

		global := dec.Point.Shift(iv.Start)
		iv.Point = global
		iv.Before = &Interval{Start: iv.Start, End: global.Index}
		iv.After = &Interval{Start: global.Index, End: iv.End}

		mu.Lock()
		points = append(points, global.Index)
		mu.Unlock()

		// Hand one half to a spare worker if there is one; TryGo never
		// blocks, so recursive submission cannot deadlock on the limit.
		before, after := iv.Before, iv.After
		if g.TryGo(func() error { return process(before) }) {
			return process(after)
		}
		if err := process(before); err != nil {
			return err
		}
		return process(after)
	}

	g.Go(func() error { return process(root) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.Sort(points)
	points = slices.Compact(points)
	return &Segmentation{Points: points, Root: root}, nil
}
