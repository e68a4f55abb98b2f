package hdcd

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// gaussianRows draws n rows of p iid N(mu, 1) coordinates from a fixed PCG
// stream, appending to dst.
func gaussianRows(dst [][]float64, n, p int, mu float64, src rand.Source) [][]float64 {
	norm := distuv.Normal{Mu: mu, Sigma: 1, Src: src}
	for r := 0; r < n; r++ {
		row := make([]float64, p)
		for c := range row {
			row[c] = norm.Rand()
		}
		dst = append(dst, row)
	}
	return dst
}

// homogeneousData is n iid standard normal rows of dimension p.
func homogeneousData(n, p int, seed uint64) [][]float64 {
	return gaussianRows(nil, n, p, 0, rand.NewPCG(seed, 1))
}

// shiftedData has one mean shift: rows [0, at) are N(0,1) and rows [at, n)
// are N(shift, 1) coordinate-wise.
func shiftedData(n, p, at int, shift float64, seed uint64) [][]float64 {
	src := rand.NewPCG(seed, 1)
	data := gaussianRows(nil, at, p, 0, src)
	return gaussianRows(data, n-at, p, shift, src)
}

// twoShiftData has mean shifts at rows at1 and at2 (at1 < at2), stepping
// the coordinate mean from 0 to shift to 2·shift.
func twoShiftData(n, p, at1, at2 int, shift float64, seed uint64) [][]float64 {
	src := rand.NewPCG(seed, 1)
	data := gaussianRows(nil, at1, p, 0, src)
	data = gaussianRows(data, at2-at1, p, shift, src)
	return gaussianRows(data, n-at2, p, 2*shift, src)
}
