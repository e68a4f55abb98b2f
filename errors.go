package hdcd

import "errors"

// Error kinds returned by the package. Returned errors wrap these sentinels
// with detail; test for them with errors.Is.
var (
	// ErrInvalidInput reports malformed data or nonsensical parameters:
	// non-rectangular data, fewer than 3 observations, or a Config field
	// outside its valid range.
	ErrInvalidInput = errors.New("hdcd: invalid input")

	// ErrNumericDegeneracy reports that the asymptotic null distribution is
	// undefined for the given data, such as observations with zero variance
	// across their coordinates. The error message names the offending rows.
	ErrNumericDegeneracy = errors.New("hdcd: numeric degeneracy")

	// ErrUnsupportedSplit reports a candidate position at which the
	// permutation resampling scheme is undefined: there are no rows before
	// the anchor to shuffle.
	ErrUnsupportedSplit = errors.New("hdcd: unsupported split position")
)
