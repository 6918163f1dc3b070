package kinematics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// HannWindow returns the symmetric Hann window of length n.
// For n=5 this is [0, 0.5, 1, 0.5, 0].
func HannWindow(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1}
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// SmoothingKernel is the fixed 5-point Hann kernel normalised to sum 1,
// i.e. [0, 0.25, 0.5, 0.25, 0].
func SmoothingKernel() []float64 {
	w := HannWindow(5)
	floats.Scale(1/floats.Sum(w), w)
	return w
}

// ConvolveSame convolves x with kernel and returns the central len(x)
// samples of the full convolution. Values outside x are treated as zero, so
// the first and last outputs only see part of the kernel.
func ConvolveSame(x, kernel []float64) []float64 {
	n, m := len(x), len(kernel)
	out := make([]float64, n)
	if n == 0 || m == 0 {
		return out
	}
	start := (m - 1) / 2
	for i := 0; i < n; i++ {
		j := i + start // index into the full convolution
		var acc float64
		for k := 0; k < m; k++ {
			idx := j - k
			if idx < 0 || idx >= n {
				continue
			}
			acc += x[idx] * kernel[k]
		}
		out[i] = acc
	}
	return out
}

// Gradient returns df/dt for samples f taken at (possibly uneven) points t.
// Interior points use second-order central differences; the two endpoints
// use first-order one-sided differences. len(f) must equal len(t) and be at
// least 2.
func Gradient(f, t []float64) []float64 {
	n := len(f)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = (f[1] - f[0]) / (t[1] - t[0])
	out[n-1] = (f[n-1] - f[n-2]) / (t[n-1] - t[n-2])
	for i := 1; i < n-1; i++ {
		hs := t[i] - t[i-1]
		hd := t[i+1] - t[i]
		a := -hd / (hs * (hd + hs))
		b := (hd - hs) / (hd * hs)
		c := hs / (hd * (hd + hs))
		out[i] = a*f[i-1] + b*f[i] + c*f[i+1]
	}
	return out
}

// FindPeaks returns the indices of local maxima in x whose value is at least
// minHeight. A flat-topped peak is reported once, at the middle of the
// plateau (rounded down). The first and last samples are never peaks.
func FindPeaks(x []float64, minHeight float64) []int {
	var peaks []int
	n := len(x)
	i := 1
	last := n - 1
	for i < last {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < last && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				mid := (i + ahead - 1) / 2
				if x[mid] >= minHeight {
					peaks = append(peaks, mid)
				}
				i = ahead
			}
		}
		i++
	}
	return peaks
}

// CountSignChanges counts adjacent pairs whose sign bits differ. Zero counts
// as positive and negative zero as negative.
func CountSignChanges(x []float64) int {
	count := 0
	for i := 1; i < len(x); i++ {
		if math.Signbit(x[i]) != math.Signbit(x[i-1]) {
			count++
		}
	}
	return count
}
