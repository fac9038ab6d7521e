// Package distance provides the vector metric shared by clustering,
// classification and quality evaluation.
package distance

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
)

// Metric measures the distance between two equal-length vectors.
type Metric interface {
	Name() string
	Distance(a, b []float64) float64
}

// Euclidean is the L2 distance.
type Euclidean struct{}

func (Euclidean) Name() string { return "euclidean" }

func (Euclidean) Distance(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// Manhattan is the L1 distance.
type Manhattan struct{}

func (Manhattan) Name() string { return "manhattan" }

func (Manhattan) Distance(a, b []float64) float64 { return floats.Distance(a, b, 1) }

// Default is the metric used when none is configured.
var Default Metric = Euclidean{}

// ByName resolves a configured metric name. The empty name is Euclidean.
func ByName(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "euclidean", "l2":
		return Euclidean{}, nil
	case "manhattan", "l1":
		return Manhattan{}, nil
	}
	return nil, fmt.Errorf("unknown distance metric %q: %w", name, internalerr.ErrInvalidConfig)
}

// Squared returns m(a, b)^2.
func Squared(m Metric, a, b []float64) float64 {
	d := m.Distance(a, b)
	return d * d
}

// Nearest returns the index of the centroid closest to x and its distance.
// Ties go to the lowest index. It returns -1 when centroids is empty.
func Nearest(m Metric, x []float64, centroids [][]float64) (int, float64) {
	best, bestDist := -1, 0.0
	for i, c := range centroids {
		d := m.Distance(x, c)
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}
