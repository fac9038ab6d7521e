// Package quality scores a clustering: separation (silhouette, BCSS/WCSS,
// Calinski-Harabasz, Davies-Bouldin) and balance (balance index, Gini).
// Every distance goes through a single distance.Metric.
package quality

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/deskcluster/pkg/deskcluster/distance"
	"github.com/cognicore/deskcluster/pkg/deskcluster/kmeans"
)

// Quality is the full metric set of one clustering.
type Quality struct {
	Silhouette       float64 `json:"silhouetteScore"`
	CalinskiHarabasz float64 `json:"calinskiHarabasz"`
	DaviesBouldin    float64 `json:"daviesBouldin"`
	WCSS             float64 `json:"wcss"`
	BCSS             float64 `json:"bcss"`
	Clusters         int     `json:"numberOfClusters"`
	Samples          int     `json:"numberOfSamples"`
	BalanceIndex     float64 `json:"balanceIndex"`
	Gini             float64 `json:"giniCoefficient"`
	ClusterSizes     []int   `json:"clusterSizes"`
}

// Clustering is the input of Evaluate: row vectors, their labels in
// [0, len(centroids)), the centroids and the within-cluster sum of squares.
type Clustering struct {
	Data      *mat.Dense
	Labels    []int
	Centroids *mat.Dense
	WCSS      float64
	Metric    distance.Metric
}

// FromModel pairs a fitted model with the rows it was trained on.
func FromModel(data *mat.Dense, m *kmeans.Model) Clustering {
	return Clustering{
		Data:      data,
		Labels:    m.Labels,
		Centroids: m.Centroids,
		WCSS:      m.Distortion,
		Metric:    m.Metric(),
	}
}

func (c Clustering) metric() distance.Metric {
	if c.Metric == nil {
		return distance.Default
	}
	return c.Metric
}

func (c Clustering) k() int {
	k, _ := c.Centroids.Dims()
	return k
}

func (c Clustering) sizes() []int {
	sizes := make([]int, c.k())
	for _, l := range c.Labels {
		sizes[l]++
	}
	return sizes
}

// Evaluate computes every metric.
func Evaluate(c Clustering) Quality {
	n := len(c.Labels)
	k := c.k()
	sizes := c.sizes()
	bcss := BCSS(c)
	return Quality{
		Silhouette:       Silhouette(c),
		CalinskiHarabasz: CalinskiHarabasz(bcss, c.WCSS, k, n),
		DaviesBouldin:    DaviesBouldin(c),
		WCSS:             c.WCSS,
		BCSS:             bcss,
		Clusters:         k,
		Samples:          n,
		BalanceIndex:     BalanceIndex(sizes),
		Gini:             Gini(sizes),
		ClusterSizes:     sizes,
	}
}

// BCSS is sum over clusters of size * d(centroid, global mean)^2.
func BCSS(c Clustering) float64 {
	n, d := c.Data.Dims()
	if n == 0 {
		return 0
	}
	global := make([]float64, d)
	for i := range n {
		floats.Add(global, c.Data.RawRowView(i))
	}
	floats.Scale(1/float64(n), global)

	m := c.metric()
	total := 0.0
	for id, size := range c.sizes() {
		if size == 0 {
			continue
		}
		total += float64(size) * distance.Squared(m, c.Centroids.RawRowView(id), global)
	}
	return total
}

// CalinskiHarabasz is (BCSS/(k-1)) / (WCSS/(n-k)). It is 0 when undefined:
// n <= k, k <= 1 or WCSS == 0.
func CalinskiHarabasz(bcss, wcss float64, k, n int) float64 {
	if n <= k || k <= 1 || wcss == 0 {
		return 0
	}
	return (bcss / float64(k-1)) / (wcss / float64(n-k))
}

// DaviesBouldin averages, over non-empty clusters, the worst ratio
// (s_i + s_j) / d(c_i, c_j) against any other non-empty cluster, where s is
// the mean member-to-centroid distance. Coincident centroids are skipped.
func DaviesBouldin(c Clustering) float64 {
	k := c.k()
	m := c.metric()
	sizes := c.sizes()

	dispersion := make([]float64, k)
	for i, l := range c.Labels {
		dispersion[l] += m.Distance(c.Data.RawRowView(i), c.Centroids.RawRowView(l))
	}
	var active []int
	for id, size := range sizes {
		if size > 0 {
			dispersion[id] /= float64(size)
			active = append(active, id)
		}
	}
	if len(active) <= 1 {
		return 0
	}

	total := 0.0
	for _, i := range active {
		worst := 0.0
		for _, j := range active {
			if i == j {
				continue
			}
			sep := m.Distance(c.Centroids.RawRowView(i), c.Centroids.RawRowView(j))
			if sep == 0 {
				continue
			}
			worst = max(worst, (dispersion[i]+dispersion[j])/sep)
		}
		total += worst
	}
	return total / float64(len(active))
}

// BalanceIndex is sum |size - n/k| / (2 (n - n/k)): 0 for equal sizes, 1
// when every point sits in one cluster.
func BalanceIndex(sizes []int) float64 {
	n, k := sum(sizes), len(sizes)
	if n == 0 || k <= 1 {
		return 0
	}
	ideal := float64(n) / float64(k)
	imbalance := 0.0
	for _, s := range sizes {
		imbalance += math.Abs(float64(s) - ideal)
	}
	return imbalance / (2 * (float64(n) - ideal))
}

// Gini is the Gini coefficient of the cluster sizes.
func Gini(sizes []int) float64 {
	n, k := sum(sizes), len(sizes)
	if n == 0 || k <= 1 {
		return 0
	}
	sorted := slices.Clone(sizes)
	slices.Sort(sorted)
	g := 0.0
	for i, s := range sorted {
		g += float64(2*(i+1)-k-1) * float64(s)
	}
	return g / float64(k*n)
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
