// Package kmeans implements Lloyd's k-means over dense row vectors, with
// random, k-means++ and warm-started initialization.
package kmeans

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/deskcluster/pkg/deskcluster/distance"
	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
)

const (
	// DefaultMaxIterations caps the Lloyd loop.
	DefaultMaxIterations = 100
	// DefaultTolerance is the minimum distortion improvement that keeps the
	// loop running.
	DefaultTolerance = 1e-4
	// DefaultSeed seeds centroid initialization.
	DefaultSeed int64 = 42
)

// Init selects how centroids are seeded when no warm start is given.
type Init string

const (
	InitRandom   Init = "random"
	InitPlusPlus Init = "kmeans++"
)

// ParseInit resolves a configured initialization name.
func ParseInit(s string) (Init, error) {
	switch Init(strings.ToLower(strings.TrimSpace(s))) {
	case "", InitPlusPlus:
		return InitPlusPlus, nil
	case InitRandom:
		return InitRandom, nil
	}
	return "", fmt.Errorf("unknown kmeans init %q: %w", s, internalerr.ErrInvalidConfig)
}

// Options tunes a fit. Zero fields take the package defaults.
type Options struct {
	MaxIterations int
	Tolerance     float64
	Metric        distance.Metric
	Init          Init
	Seed          int64
	Logger        zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Metric == nil {
		o.Metric = distance.Default
	}
	if o.Init == "" {
		o.Init = InitPlusPlus
	}
	return o
}

// Model is a fitted clustering. It is not modified after Fit returns.
type Model struct {
	K          int
	Centroids  *mat.Dense
	Labels     []int
	Distortion float64
	Iterations int

	metric distance.Metric
	rows   [][]float64
}

// Fit clusters the rows of data into k groups. k larger than the number of
// rows is reduced to the number of rows.
func Fit(ctx context.Context, data *mat.Dense, k int, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	n, _ := data.Dims()
	if n == 0 {
		return nil, fmt.Errorf("kmeans fit: no rows: %w", internalerr.ErrEmptyCorpus)
	}
	if k < 1 {
		return nil, fmt.Errorf("kmeans fit: k=%d: %w", k, internalerr.ErrInvalidInput)
	}
	k = min(k, n)

	rng := rand.New(rand.NewSource(opts.Seed))
	var seeds *mat.Dense
	switch opts.Init {
	case InitRandom:
		seeds = initRandom(data, k, rng)
	default:
		seeds = initPlusPlus(data, k, rng, opts.Metric)
	}
	return lloyd(ctx, data, seeds, opts)
}

// FitWarm runs the Lloyd loop starting from the given centroids, so that
// cluster i of the result corresponds to seed row i.
func FitWarm(ctx context.Context, data *mat.Dense, seeds *mat.Dense, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	n, d := data.Dims()
	if n == 0 {
		return nil, fmt.Errorf("kmeans warm fit: no rows: %w", internalerr.ErrEmptyCorpus)
	}
	k, sd := seeds.Dims()
	if sd != d {
		return nil, fmt.Errorf("kmeans warm fit: seed dimension %d, data dimension %d: %w", sd, d, internalerr.ErrInvalidInput)
	}
	if k < 1 {
		return nil, fmt.Errorf("kmeans warm fit: no seed centroids: %w", internalerr.ErrInvalidInput)
	}
	return lloyd(ctx, data, mat.DenseCopyOf(seeds), opts)
}

func lloyd(ctx context.Context, data, centroids *mat.Dense, opts Options) (*Model, error) {
	n, _ := data.Dims()
	k, _ := centroids.Dims()

	m := &Model{K: k, Centroids: centroids, Labels: make([]int, n), metric: opts.Metric}
	m.rows = rowViews(centroids)
	m.Distortion = m.assign(data)

	for m.Iterations = 1; m.Iterations <= opts.MaxIterations; m.Iterations++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.update(data)
		prev := m.Distortion
		m.Distortion = m.assign(data)
		if prev-m.Distortion < opts.Tolerance {
			break
		}
	}
	m.Iterations = min(m.Iterations, opts.MaxIterations)

	opts.Logger.Debug().
		Int("k", k).
		Int("rows", n).
		Int("iterations", m.Iterations).
		Float64("distortion", m.Distortion).
		Msg("kmeans fit")
	return m, nil
}

// assign labels every row with its nearest centroid and returns the
// distortion.
func (m *Model) assign(data *mat.Dense) float64 {
	n, _ := data.Dims()
	total := 0.0
	for i := range n {
		c, d := distance.Nearest(m.metric, data.RawRowView(i), m.rows)
		m.Labels[i] = c
		total += d * d
	}
	return total
}

// update moves every non-empty cluster's centroid to the mean of its members.
func (m *Model) update(data *mat.Dense) {
	_, d := data.Dims()
	sums := mat.NewDense(m.K, d, nil)
	counts := make([]int, m.K)
	for i, c := range m.Labels {
		floats.Add(sums.RawRowView(c), data.RawRowView(i))
		counts[c]++
	}
	for c := range m.K {
		if counts[c] == 0 {
			continue
		}
		row := sums.RawRowView(c)
		floats.Scale(1/float64(counts[c]), row)
		m.Centroids.SetRow(c, row)
	}
}

// Predict returns the nearest centroid to x, ties to the lowest id.
func (m *Model) Predict(x []float64) int {
	c, _ := distance.Nearest(m.metric, x, m.rows)
	return c
}

// DistanceTo measures x against centroid c with the model's metric.
func (m *Model) DistanceTo(x []float64, c int) float64 {
	return m.metric.Distance(x, m.rows[c])
}

// Centroid returns a copy of centroid c.
func (m *Model) Centroid(c int) []float64 {
	return mat.Row(nil, c, m.Centroids)
}

// Metric reports the distance used for assignment.
func (m *Model) Metric() distance.Metric {
	return m.metric
}

// Sizes returns the number of training rows per cluster.
func (m *Model) Sizes() []int {
	sizes := make([]int, m.K)
	for _, c := range m.Labels {
		sizes[c]++
	}
	return sizes
}

func rowViews(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range r {
		rows[i] = m.RawRowView(i)
	}
	return rows
}

// initRandom picks k distinct rows as the initial centroids.
func initRandom(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)
	for c, idx := range rng.Perm(n)[:k] {
		centroids.SetRow(c, data.RawRowView(idx))
	}
	return centroids
}

// initPlusPlus seeds centroids with probability proportional to the
// squared distance from the nearest centroid chosen so far.
func initPlusPlus(data *mat.Dense, k int, rng *rand.Rand, metric distance.Metric) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)
	centroids.SetRow(0, data.RawRowView(rng.Intn(n)))

	minDist := make([]float64, n)
	for i := range minDist {
		minDist[i] = math.Inf(1)
	}
	for c := 1; c < k; c++ {
		last := centroids.RawRowView(c - 1)
		total := 0.0
		for i := range n {
			dist := metric.Distance(data.RawRowView(i), last)
			minDist[i] = math.Min(minDist[i], dist*dist)
			total += minDist[i]
		}

		if total == 0 {
			centroids.SetRow(c, data.RawRowView(rng.Intn(n)))
			continue
		}
		target := rng.Float64() * total
		chosen := n - 1
		cum := 0.0
		for i, w := range minDist {
			cum += w
			if cum >= target {
				chosen = i
				break
			}
		}
		centroids.SetRow(c, data.RawRowView(chosen))
	}
	return centroids
}
