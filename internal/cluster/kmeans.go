package cluster

import (
	"math"
	"math/rand/v2"

	"github.com/rotisserie/eris"
)

// Partition is the output of a Partitioner: one cluster id in [0, k) per
// input row.
type Partition struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
}

// Partitioner splits standardized feature rows into k groups. The labeling
// rules only read the resulting groups, so any algorithm can be plugged in.
type Partitioner interface {
	Partition(x [][]float64, k int) (Partition, error)
}

// KMeans is Lloyd's algorithm with k-means++ seeding. Restarts runs are made
// from one seeded generator and the lowest-inertia run wins, so equal inputs
// and settings always give the same partition and the same ids.
type KMeans struct {
	Restarts  int
	Seed      uint64
	MaxIter   int
	Tolerance float64 // relative to the mean feature variance
}

// DefaultKMeans returns the reference settings (10 restarts, seed 42).
func DefaultKMeans() KMeans {
	return KMeans{Restarts: 10, Seed: 42, MaxIter: 300, Tolerance: 1e-4}
}

// Partition implements Partitioner.
func (km KMeans) Partition(x [][]float64, k int) (Partition, error) {
	if k <= 0 {
		return Partition{}, eris.Errorf("cluster: invalid k %d", k)
	}
	if len(x) < k {
		return Partition{}, eris.Errorf("cluster: %d rows for k=%d", len(x), k)
	}
	restarts := max(km.Restarts, 1)
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}
	tol := km.Tolerance * meanVariance(x)

	rng := rand.New(rand.NewPCG(km.Seed, km.Seed))
	var best Partition
	for run := 0; run < restarts; run++ {
		p := lloyd(x, seed(rng, x, k), maxIter, tol)
		if run == 0 || p.Inertia < best.Inertia {
			best = p
		}
	}
	return best, nil
}

// seed picks k initial centroids: the first uniformly, each next with
// probability proportional to its squared distance to the nearest chosen one.
func seed(rng *rand.Rand, x [][]float64, k int) [][]float64 {
	n := len(x)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(x[rng.IntN(n)]))

	d := make([]float64, n)
	for i := range x {
		d[i] = sqDist(x[i], centroids[0])
	}
	for len(centroids) < k {
		var total float64
		for _, v := range d {
			total += v
		}
		next := n - 1
		if total == 0 {
			next = rng.IntN(n)
		} else {
			r := rng.Float64() * total
			var acc float64
			for i, v := range d {
				acc += v
				if r < acc {
					next = i
					break
				}
			}
		}
		c := clone(x[next])
		centroids = append(centroids, c)
		for i := range x {
			d[i] = math.Min(d[i], sqDist(x[i], c))
		}
	}
	return centroids
}

func lloyd(x [][]float64, centroids [][]float64, maxIter int, tol float64) Partition {
	k := len(centroids)
	labels := make([]int, len(x))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := assign(x, centroids, labels)
		next := means(x, labels, k)
		relocateEmpty(x, labels, next)

		var shift float64
		for c := range centroids {
			shift += sqDist(centroids[c], next[c])
		}
		centroids = next
		if !changed || shift <= tol {
			break
		}
	}
	assign(x, centroids, labels)

	var inertia float64
	for i, row := range x {
		inertia += sqDist(row, centroids[labels[i]])
	}
	return Partition{Labels: labels, Centroids: centroids, Inertia: inertia}
}

// assign moves every row to its nearest centroid, lowest id on ties.
func assign(x [][]float64, centroids [][]float64, labels []int) bool {
	changed := false
	for i, row := range x {
		best, bestD := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := sqDist(row, centroid); d < bestD {
				best, bestD = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// means returns the centroid of each cluster; empty clusters get nil.
func means(x [][]float64, labels []int, k int) [][]float64 {
	sums := make([][]float64, k)
	counts := make([]int, k)
	for i, row := range x {
		c := labels[i]
		if sums[c] == nil {
			sums[c] = make([]float64, len(row))
		}
		for j, v := range row {
			sums[c][j] += v
		}
		counts[c]++
	}
	for c := range sums {
		for j := range sums[c] {
			sums[c][j] /= float64(counts[c])
		}
	}
	return sums
}

// relocateEmpty gives each empty cluster the row farthest from its centroid
// among clusters with more than one member.
func relocateEmpty(x [][]float64, labels []int, centroids [][]float64) {
	for c := range centroids {
		if centroids[c] != nil {
			continue
		}
		sizes := make([]int, len(centroids))
		for _, l := range labels {
			sizes[l]++
		}
		far, farD := -1, -1.0
		for i, row := range x {
			l := labels[i]
			if sizes[l] < 2 || centroids[l] == nil {
				continue
			}
			if d := sqDist(row, centroids[l]); d > farD {
				far, farD = i, d
			}
		}
		if far < 0 {
			centroids[c] = make([]float64, len(x[0]))
			continue
		}
		labels[far] = c
		centroids[c] = clone(x[far])
	}
}

func meanVariance(x [][]float64) float64 {
	if len(x) == 0 {
		return 0
	}
	s := FitScaler(x)
	var v float64
	for j := range s.Scale {
		var acc float64
		for _, row := range x {
			d := row[j] - s.Mean[j]
			acc += d * d
		}
		v += acc / float64(len(x))
	}
	return v / float64(len(s.Scale))
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
