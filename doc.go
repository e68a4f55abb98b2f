// Package hdcd implements change-point detection for high-dimensional
// sequences via dissimilarity-based binary segmentation.
//
// Each observation (row) is summarized by the mean and standard deviation
// of its p coordinates, and observations are compared by how differently
// they relate to the rest of the sample rather than by direct pairwise
// distance. A scan statistic locates the best split of the sequence, a
// significance test (permutation or closed-form asymptotic) decides whether
// the split is real, and binary segmentation recurses into both halves
// until segments become too short or no further split is significant.
//
// Basic usage:
//
//	cfg := hdcd.DefaultConfig()
//	points, err := hdcd.DetectChangePoints(data, cfg)
//	// points are the sorted global indices where a new segment begins
//
// For a single test at the best candidate split:
//
//	dec, err := hdcd.TestChangePoint(data, cfg)
//	// dec.Significant reports whether the candidate is a change point;
//	// dec.Point carries its index when found
//
// Indices are zero-based throughout: a change point is the index of the
// first observation of the segment that starts there.
//
// # Significance modes
//
// ModeAsymptotic (the default) standardizes the profile-contrast statistic
// W against a closed-form normal approximation of its null distribution and
// is fully deterministic. ModePermutation builds the null of the distance
// statistic T empirically by reshuffling the rows on either side of the
// candidate; it is reproducible for a fixed Config.Seed regardless of
// worker count.
package hdcd
