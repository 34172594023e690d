package cluster

import (
	"math"
	"sort"
)

// Scaler standardizes features to zero mean and unit variance using the
// population standard deviation. Features with zero variance get scale 1, so
// they standardize to 0.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes the per-feature mean and scale of x.
func FitScaler(x [][]float64) Scaler {
	if len(x) == 0 {
		return Scaler{}
	}
	d := len(x[0])
	s := Scaler{Mean: make([]float64, d), Scale: make([]float64, d)}
	n := float64(len(x))
	for _, row := range x {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}
	for _, row := range x {
		for j, v := range row {
			dv := v - s.Mean[j]
			s.Scale[j] += dv * dv
		}
	}
	for j := range s.Scale {
		sd := math.Sqrt(s.Scale[j] / n)
		if sd == 0 {
			sd = 1
		}
		s.Scale[j] = sd
	}
	return s
}

// Transform returns a standardized copy of x.
func (s Scaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		z := make([]float64, len(row))
		for j, v := range row {
			z[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = z
	}
	return out
}

// Standardize fits a scaler on x and transforms it.
func Standardize(x [][]float64) ([][]float64, Scaler) {
	s := FitScaler(x)
	return s.Transform(x), s
}

// Quantile returns the q-quantile of values with linear interpolation between
// the closest ranks. values is not modified.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	q = math.Min(math.Max(q, 0), 1)
	v := append([]float64(nil), values...)
	sort.Float64s(v)
	pos := q * float64(len(v)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return v[lo] + (v[hi]-v[lo])*(pos-float64(lo))
}

func sqDist(a, b []float64) float64 {
	var s float64
	for j := range a {
		d := a[j] - b[j]
		s += d * d
	}
	return s
}
