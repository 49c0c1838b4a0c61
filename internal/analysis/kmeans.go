package analysis

import (
	"context"
	"errors"
	"math"
	"math/rand"
)

// ErrTooFewPoints is returned when there are fewer points than clusters.
var ErrTooFewPoints = errors.New("fewer points than clusters")

// KMeansOptions configures Lloyd's algorithm with k-means++ seeding.
type KMeansOptions struct {
	// K is the number of clusters.
	K int

	// Restarts is how many seeded runs to try; the lowest inertia wins.
	Restarts int

	// MaxIter caps Lloyd iterations per run.
	MaxIter int

	// Tol is the convergence tolerance, relative to the mean feature variance.
	Tol float64

	// Seed fixes the random source so results are reproducible.
	Seed int64
}

// DefaultKMeansOptions returns 10 restarts, 300 iterations, tol 1e-4, seed 42.
func DefaultKMeansOptions(k int) KMeansOptions {
	return KMeansOptions{K: k, Restarts: 10, MaxIter: 300, Tol: 1e-4, Seed: 42}
}

// Clustering is the result of a k-means fit.
type Clustering struct {
	// Labels[i] is the cluster of point i.
	Labels []int

	// Centroids[c] is the mean of cluster c.
	Centroids [][]float64

	// Inertia is the sum of squared distances to the nearest centroid.
	Inertia float64
}

// KMeans partitions points into opts.K clusters. The context is checked
// between iterations so callers can bound the run time.
func KMeans(ctx context.Context, points [][]float64, opts KMeansOptions) (*Clustering, error) {
	if opts.K < 1 || len(points) < opts.K {
		return nil, ErrTooFewPoints
	}
	if opts.Restarts < 1 {
		opts.Restarts = 1
	}
	if opts.MaxIter < 1 {
		opts.MaxIter = 300
	}

	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // reproducibility, not security
	tol := opts.Tol * meanVariance(points)

	var best *Clustering
	for run := 0; run < opts.Restarts; run++ {
		result, err := lloyd(ctx, points, seedCentroids(points, opts.K, rng), opts.MaxIter, tol)
		if err != nil {
			return nil, err
		}
		if best == nil || result.Inertia < best.Inertia {
			best = result
		}
	}
	return best, nil
}

func lloyd(ctx context.Context, points, centroids [][]float64, maxIter int, tol float64) (*Clustering, error) {
	k := len(centroids)
	dims := len(points[0])
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		for i, p := range points {
			c, _ := nearest(p, centroids)
			if c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		next := make([][]float64, k)
		sizes := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dims)
		}
		for i, p := range points {
			c := labels[i]
			sizes[c]++
			for j, v := range p {
				next[c][j] += v
			}
		}

		var shift float64
		for c := range next {
			if sizes[c] == 0 {
				// Empty clusters keep their previous centre.
				next[c] = centroids[c]
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(sizes[c])
			}
			shift += squaredDistance(next[c], centroids[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	var inertia float64
	for i, p := range points {
		c, d := nearest(p, centroids)
		labels[i] = c
		inertia += d
	}

	return &Clustering{Labels: labels, Centroids: centroids, Inertia: inertia}, nil
}

// seedCentroids picks k initial centres using k-means++ weighting.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := rng.Intn(len(points))
	centroids = append(centroids, clone(points[first]))

	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = squaredDistance(p, centroids[0])
	}

	for len(centroids) < k {
		var sum float64
		for _, d := range dist {
			sum += d
		}

		pick := 0
		if sum > 0 {
			target := rng.Float64() * sum
			for i, d := range dist {
				target -= d
				if target <= 0 && d > 0 {
					pick = i
					break
				}
				pick = i
			}
		} else {
			pick = rng.Intn(len(points))
		}

		centroids = append(centroids, clone(points[pick]))
		for i, p := range points {
			if d := squaredDistance(p, centroids[len(centroids)-1]); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

// nearest returns the closest centroid index and squared distance.
// Ties go to the lowest index.
func nearest(p []float64, centroids [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(p, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func meanVariance(points [][]float64) float64 {
	dims := len(points[0])
	if dims == 0 {
		return 0
	}
	n := float64(len(points))
	var total float64
	for j := 0; j < dims; j++ {
		var mean, sq float64
		for _, p := range points {
			mean += p[j]
		}
		mean /= n
		for _, p := range points {
			d := p[j] - mean
			sq += d * d
		}
		total += sq / n
	}
	return total / float64(dims)
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
