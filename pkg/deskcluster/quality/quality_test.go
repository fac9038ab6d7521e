package quality

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/deskcluster/pkg/deskcluster/distance"
	"github.com/cognicore/deskcluster/pkg/deskcluster/kmeans"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func pairs() *mat.Dense {
	return mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		10, 0,
		10, 1,
	})
}

func twoClusters() Clustering {
	return Clustering{
		Data:      pairs(),
		Labels:    []int{0, 0, 1, 1},
		Centroids: mat.NewDense(2, 2, []float64{0, 0.5, 10, 0.5}),
		WCSS:      1,
	}
}

func TestSingleClusterIsZero(t *testing.T) {
	c := Clustering{
		Data:      pairs(),
		Labels:    []int{0, 0, 0, 0},
		Centroids: mat.NewDense(1, 2, []float64{5, 0.5}),
		WCSS:      101,
	}
	q := Evaluate(c)
	if q.Silhouette != 0 {
		t.Errorf("silhouette = %v, want 0", q.Silhouette)
	}
	if !near(q.BCSS, 0) {
		t.Errorf("bcss = %v, want 0", q.BCSS)
	}
	if q.CalinskiHarabasz != 0 || q.DaviesBouldin != 0 || q.BalanceIndex != 0 || q.Gini != 0 {
		t.Errorf("degenerate metrics should be 0: %+v", q)
	}
}

func TestEvaluateTwoClusters(t *testing.T) {
	q := Evaluate(twoClusters())

	// Per point: a = 1, b = (10 + sqrt(101)) / 2.
	b := (10 + math.Sqrt(101)) / 2
	want := (b - 1) / b
	if !near(q.Silhouette, want) {
		t.Errorf("silhouette = %v, want %v", q.Silhouette, want)
	}
	// Each centroid sits 5 from the global mean (5, 0.5): 2*25 + 2*25.
	if !near(q.BCSS, 100) {
		t.Errorf("bcss = %v, want 100", q.BCSS)
	}
	// (100/1) / (1/2)
	if !near(q.CalinskiHarabasz, 200) {
		t.Errorf("calinski-harabasz = %v, want 200", q.CalinskiHarabasz)
	}
	// dispersion 0.5 each, centroid distance 10.
	if !near(q.DaviesBouldin, 0.1) {
		t.Errorf("davies-bouldin = %v, want 0.1", q.DaviesBouldin)
	}
	if q.Clusters != 2 || q.Samples != 4 || q.ClusterSizes[0] != 2 || q.ClusterSizes[1] != 2 {
		t.Errorf("counts = %+v", q)
	}
	if q.BalanceIndex != 0 || q.Gini != 0 {
		t.Errorf("balanced clusters: balance=%v gini=%v", q.BalanceIndex, q.Gini)
	}
	if q.Silhouette < -1 || q.Silhouette > 1 {
		t.Errorf("silhouette out of range: %v", q.Silhouette)
	}
}

func TestManhattanMetricApplies(t *testing.T) {
	c := twoClusters()
	c.Metric = distance.Manhattan{}
	q := Evaluate(c)

	// a = 1, b = (10 + 11) / 2.
	want := (10.5 - 1) / 10.5
	if !near(q.Silhouette, want) {
		t.Errorf("manhattan silhouette = %v, want %v", q.Silhouette, want)
	}
}

func TestSingletonClusterSkipped(t *testing.T) {
	c := Clustering{
		Data:      mat.NewDense(3, 1, []float64{0, 1, 10}),
		Labels:    []int{0, 0, 1},
		Centroids: mat.NewDense(2, 1, []float64{0.5, 10}),
	}
	// The singleton has a = 0, b = 9.5, silhouette 1; still counted.
	got := Silhouette(c)
	s0 := (10 - 1) / 10.0
	s1 := (9 - 1) / 9.0
	want := (s0 + s1 + 1) / 3
	if !near(got, want) {
		t.Errorf("silhouette = %v, want %v", got, want)
	}
}

func TestBalanceAndGini(t *testing.T) {
	tests := []struct {
		sizes       []int
		wantBalance float64
		wantGini    float64
	}{
		{[]int{5, 5}, 0, 0},
		{[]int{10, 0}, 1, 0.5},
		{[]int{6, 2, 4}, 4.0 / 16.0, 8.0 / 36.0},
		{[]int{7}, 0, 0},
		{[]int{0, 0}, 0, 0},
	}
	for _, tt := range tests {
		if got := BalanceIndex(tt.sizes); !near(got, tt.wantBalance) {
			t.Errorf("BalanceIndex(%v) = %v, want %v", tt.sizes, got, tt.wantBalance)
		}
		if got := Gini(tt.sizes); !near(got, tt.wantGini) {
			t.Errorf("Gini(%v) = %v, want %v", tt.sizes, got, tt.wantGini)
		}
	}
}

func TestCalinskiHarabaszUndefined(t *testing.T) {
	if CalinskiHarabasz(10, 5, 3, 3) != 0 {
		t.Error("n <= k should be 0")
	}
	if CalinskiHarabasz(10, 5, 1, 10) != 0 {
		t.Error("k <= 1 should be 0")
	}
	if CalinskiHarabasz(10, 0, 2, 10) != 0 {
		t.Error("wcss == 0 should be 0")
	}
}

func TestFromModel(t *testing.T) {
	data := pairs()
	seeds := mat.NewDense(2, 2, []float64{0, 0, 10, 0})
	m, err := kmeans.FitWarm(context.Background(), data, seeds, kmeans.Options{})
	if err != nil {
		t.Fatalf("FitWarm: %v", err)
	}
	q := Evaluate(FromModel(data, m))
	if !near(q.WCSS, m.Distortion) || q.Clusters != 2 {
		t.Errorf("quality = %+v", q)
	}
}

func TestSimilarity(t *testing.T) {
	s := Similarity(twoClusters())
	if s.Size() != 2 || s.Labels[1] != "Cl.1" {
		t.Fatalf("matrix = %+v", s)
	}
	if s.Values[0][0] != 1 || s.Values[1][1] != 1 {
		t.Errorf("diagonal = %v, %v", s.Values[0][0], s.Values[1][1])
	}
	b := (10 + math.Sqrt(101)) / 2
	want := ((b-1)/b + 1) / 2
	if !near(s.Values[0][1], want) || !near(s.Values[1][0], want) {
		t.Errorf("off diagonal = %v, want %v", s.Values[0][1], want)
	}
	if !near(s.Min(), want) || s.Max() != 1 {
		t.Errorf("min=%v max=%v", s.Min(), s.Max())
	}
}

func TestSimilaritySingletonsAreZero(t *testing.T) {
	c := Clustering{
		Data:      mat.NewDense(2, 1, []float64{0, 10}),
		Labels:    []int{0, 1},
		Centroids: mat.NewDense(2, 1, []float64{0, 10}),
	}
	s := Similarity(c)
	if s.Values[0][1] != 0 || s.Values[1][0] != 0 {
		t.Errorf("singleton clusters have a = 0, want 0 similarity: %v", s.Values)
	}
}

func TestAssessAndReport(t *testing.T) {
	q := Quality{Silhouette: 0.6, WCSS: 10, BCSS: 40, BalanceIndex: 0.35, Gini: 0.1, Clusters: 3, Samples: 30}
	a := q.Assess()
	if a.Silhouette != "good" || a.Separation != "high separability" || a.Balance != "moderate imbalance" || a.Gini != "high uniformity" {
		t.Errorf("Assess = %+v", a)
	}
	if (Quality{}).Ratio() != 0 {
		t.Error("ratio with zero wcss should be 0")
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, q); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Silhouette score:", "0.6000", "BCSS/WCSS ratio:", "4.00", "moderate imbalance"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
