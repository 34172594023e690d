package cluster

import (
	"math"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
)

// Silhouette returns the mean silhouette coefficient of a labeling under the
// Euclidean distance. Rows alone in their cluster score 0. It is undefined
// unless there are at least two clusters and fewer clusters than rows.
func Silhouette(x [][]float64, labels []int) model.NullFloat {
	n := len(x)
	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}
	if len(sizes) < 2 || len(sizes) >= n {
		return model.NullFloat{}
	}

	var total float64
	for i := range x {
		if sizes[labels[i]] == 1 {
			continue
		}
		sums := make(map[int]float64, len(sizes))
		for j := range x {
			if i != j {
				sums[labels[j]] += math.Sqrt(sqDist(x[i], x[j]))
			}
		}
		a := sums[labels[i]] / float64(sizes[labels[i]]-1)
		b := math.Inf(1)
		for c, s := range sums {
			if c == labels[i] {
				continue
			}
			b = math.Min(b, s/float64(sizes[c]))
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return model.Float(total / float64(n))
}
