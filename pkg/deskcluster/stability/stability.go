// Package stability measures whether clusters survive resampling: a model
// is refit on part of the data, warm-started from the original centroids,
// and both models label the held-out part.
package stability

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/kmeans"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vectorize"
)

const (
	// DefaultTestRatio is the share of each cluster held out.
	DefaultTestRatio = 0.25
	// DefaultSeed seeds the stratified shuffle.
	DefaultSeed int64 = 42
)

// Options configures an evaluation.
type Options struct {
	TestRatio float64
	Seed      int64
	Fit       kmeans.Options
	Logger    zerolog.Logger
}

// ClusterStats is the held-out outcome of one original cluster.
type ClusterStats struct {
	ClusterID int     `json:"clusterId"`
	Correct   int     `json:"correct"`
	Wrong     int     `json:"wrong"`
	Total     int     `json:"total"`
	Accuracy  float64 `json:"accuracy"`
}

// Result aggregates an evaluation. Mapping[orig][new] counts held-out
// samples the original model put in orig and the refit model put in new.
type Result struct {
	TotalTestSamples int                 `json:"totalTestSamples"`
	Correct          int                 `json:"correctAssignments"`
	Wrong            int                 `json:"wrongAssignments"`
	Accuracy         float64             `json:"accuracy"`
	Mapping          map[int]map[int]int `json:"-"`
	Clusters         []ClusterStats      `json:"clusterStats"`
}

// Evaluator runs stability checks against one fitted model.
type Evaluator struct {
	vec   *vectorize.Vectorizer
	model *kmeans.Model
	opts  Options
}

// New creates an evaluator for model, which was trained on vectors produced
// by vec.
func New(vec *vectorize.Vectorizer, model *kmeans.Model, opts Options) *Evaluator {
	if opts.TestRatio <= 0 || opts.TestRatio >= 1 {
		opts.TestRatio = DefaultTestRatio
	}
	if opts.Fit.Metric == nil {
		opts.Fit.Metric = model.Metric()
	}
	return &Evaluator{vec: vec, model: model, opts: opts}
}

// Evaluate splits docs stratified by the model's training labels and scores
// the held-out part. docs must line up with the training samples.
func (e *Evaluator) Evaluate(ctx context.Context, docs []string) (Result, error) {
	if err := e.checkSize(docs); err != nil {
		return Result{}, err
	}
	return e.EvaluateSplit(ctx, docs, SplitStratified(e.model.Labels, e.opts.TestRatio, e.opts.Seed))
}

// EvaluateSplit scores an explicit split of docs.
func (e *Evaluator) EvaluateSplit(ctx context.Context, docs []string, split Split) (Result, error) {
	if err := e.checkSize(docs); err != nil {
		return Result{}, err
	}
	if len(split.Train) == 0 {
		return Result{}, fmt.Errorf("stability: empty retraining set: %w", internalerr.ErrInvalidInput)
	}

	train, _, err := e.vec.Corpus(pick(docs, split.Train))
	if err != nil {
		return Result{}, fmt.Errorf("stability: vectorize retraining set: %w", err)
	}
	refit, err := kmeans.FitWarm(ctx, train, e.model.Centroids, e.opts.Fit)
	if err != nil {
		return Result{}, fmt.Errorf("stability: refit: %w", err)
	}

	res := Result{Mapping: make(map[int]map[int]int)}
	if len(split.Test) > 0 {
		test, _, err := e.vec.Corpus(pick(docs, split.Test))
		if err != nil {
			return Result{}, fmt.Errorf("stability: vectorize test set: %w", err)
		}
		for i := range len(split.Test) {
			x := test.RawRowView(i)
			res.add(e.model.Predict(x), refit.Predict(x))
		}
	}
	res.finish()

	e.opts.Logger.Info().
		Int("train", len(split.Train)).
		Int("test", res.TotalTestSamples).
		Float64("accuracy", res.Accuracy).
		Msg("stability evaluated")
	return res, nil
}

func (e *Evaluator) checkSize(docs []string) error {
	if want := len(e.model.Labels); len(docs) != want {
		return &internalerr.SampleMismatchError{Got: len(docs), Want: want}
	}
	return nil
}

func (r *Result) add(orig, refit int) {
	r.TotalTestSamples++
	if orig == refit {
		r.Correct++
	} else {
		r.Wrong++
	}
	if r.Mapping[orig] == nil {
		r.Mapping[orig] = make(map[int]int)
	}
	r.Mapping[orig][refit]++
}

func (r *Result) finish() {
	if r.TotalTestSamples > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.TotalTestSamples) * 100
	}
	ids := make([]int, 0, len(r.Mapping))
	for id := range r.Mapping {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	r.Clusters = make([]ClusterStats, 0, len(ids))
	for _, id := range ids {
		s := ClusterStats{ClusterID: id, Correct: r.Mapping[id][id]}
		for _, n := range r.Mapping[id] {
			s.Total += n
		}
		s.Wrong = s.Total - s.Correct
		if s.Total > 0 {
			s.Accuracy = float64(s.Correct) / float64(s.Total) * 100
		}
		r.Clusters = append(r.Clusters, s)
	}
}

// Histogram renders the result in the keyed layout used by reports:
// accuracy rounded to two decimals and a "Cluster_i" -> "To_Cluster_j"
// distribution.
func (r Result) Histogram() map[string]any {
	dist := make(map[string]any, len(r.Mapping))
	for orig, targets := range r.Mapping {
		to := make(map[string]int, len(targets))
		for id, n := range targets {
			to[fmt.Sprintf("To_Cluster_%d", id)] = n
		}
		dist[fmt.Sprintf("Cluster_%d", orig)] = to
	}
	return map[string]any{
		"totalTestSamples":    r.TotalTestSamples,
		"correctAssignments":  r.Correct,
		"wrongAssignments":    r.Wrong,
		"accuracy":            math.Round(r.Accuracy*100) / 100,
		"clusterDistribution": dist,
		"clusterStats":        r.Clusters,
	}
}

func pick(docs []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = docs[j]
	}
	return out
}
