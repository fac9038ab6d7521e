package quality

import (
	"fmt"
	"math"
)

// meanDistances returns, for row i, the mean distance to the members of
// every cluster (row i itself excluded) and the member count used for each
// mean. Clusters with no counted members have mean 0 and count 0.
func (c Clustering) meanDistances(i int) ([]float64, []int) {
	k := c.k()
	m := c.metric()
	sums := make([]float64, k)
	counts := make([]int, k)
	x := c.Data.RawRowView(i)
	for j, l := range c.Labels {
		if j == i {
			continue
		}
		sums[l] += m.Distance(x, c.Data.RawRowView(j))
		counts[l]++
	}
	for id := range sums {
		if counts[id] > 0 {
			sums[id] /= float64(counts[id])
		}
	}
	return sums, counts
}

// separation returns a(i), the mean distance to the rest of i's cluster,
// and b(i), the smallest mean distance to another non-empty cluster. Either
// is 0 when it has no members to average over.
func (c Clustering) separation(i int) (a, b float64) {
	means, counts := c.meanDistances(i)
	own := c.Labels[i]
	a = means[own]
	b = math.Inf(1)
	for id, mean := range means {
		if id != own && counts[id] > 0 && mean < b {
			b = mean
		}
	}
	if math.IsInf(b, 1) {
		b = 0
	}
	return a, b
}

// Silhouette is the mean of (b-a)/max(a,b) over points where max(a,b) > 0.
// It is 0 when fewer than two clusters have members or when every point is
// skipped.
func Silhouette(c Clustering) float64 {
	n := len(c.Labels)
	if n <= 1 || nonEmpty(c.sizes()) < 2 {
		return 0
	}
	total, counted := 0.0, 0
	for i := range n {
		a, b := c.separation(i)
		if m := max(a, b); m > 0 {
			total += (b - a) / m
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// SimilarityMatrix holds pairwise cluster similarities in [0, 1].
type SimilarityMatrix struct {
	Values [][]float64 `json:"matrix"`
	Labels []string    `json:"labels"`
}

// Size returns the number of clusters.
func (s SimilarityMatrix) Size() int {
	return len(s.Values)
}

// Min returns the smallest entry, 0 for an empty matrix.
func (s SimilarityMatrix) Min() float64 {
	return s.fold(math.Min)
}

// Max returns the largest entry, 0 for an empty matrix.
func (s SimilarityMatrix) Max() float64 {
	return s.fold(math.Max)
}

func (s SimilarityMatrix) fold(f func(a, b float64) float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	acc := s.Values[0][0]
	for _, row := range s.Values {
		for _, v := range row {
			acc = f(acc, v)
		}
	}
	return acc
}

// Similarity scores how close every pair of clusters is. Entry (A, B) is the
// mean of ((b-a)/max(a,b) + 1) / 2 over points of A with a > 0 and b > 0,
// where a is the point's mean distance to the rest of A and b its mean
// distance to B. The diagonal is 1; pairs without qualifying points are 0.
func Similarity(c Clustering) SimilarityMatrix {
	k := c.k()
	values := make([][]float64, k)
	labels := make([]string, k)
	totals := make([][]float64, k)
	counts := make([][]int, k)
	for i := range k {
		values[i] = make([]float64, k)
		totals[i] = make([]float64, k)
		counts[i] = make([]int, k)
		labels[i] = fmt.Sprintf("Cl.%d", i)
	}

	for i, own := range c.Labels {
		means, members := c.meanDistances(i)
		a := means[own]
		if a <= 0 {
			continue
		}
		for other, b := range means {
			if other == own || members[other] == 0 || b <= 0 {
				continue
			}
			totals[own][other] += ((b-a)/max(a, b) + 1) / 2
			counts[own][other]++
		}
	}

	for i := range k {
		for j := range k {
			switch {
			case i == j:
				values[i][j] = 1
			case counts[i][j] > 0:
				values[i][j] = totals[i][j] / float64(counts[i][j])
			}
		}
	}
	return SimilarityMatrix{Values: values, Labels: labels}
}

func nonEmpty(sizes []int) int {
	n := 0
	for _, s := range sizes {
		if s > 0 {
			n++
		}
	}
	return n
}
