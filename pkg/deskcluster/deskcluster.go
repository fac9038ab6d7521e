package deskcluster

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/deskcluster/pkg/deskcluster/classify"
	"github.com/cognicore/deskcluster/pkg/deskcluster/config"
	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/kmeans"
	"github.com/cognicore/deskcluster/pkg/deskcluster/profile"
	"github.com/cognicore/deskcluster/pkg/deskcluster/quality"
	"github.com/cognicore/deskcluster/pkg/deskcluster/stability"
	"github.com/cognicore/deskcluster/pkg/deskcluster/store"
	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vectorize"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vocabulary"
)

// Engine is the ticket clustering facade. Fit builds a Snapshot and
// publishes it atomically; every read works against one published snapshot.
type Engine struct {
	cfg    *config.Config
	comp   *config.Components
	store  store.Store
	logger zerolog.Logger
	now    func() time.Time

	current atomic.Pointer[Snapshot]
}

// Options configures an Engine.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	// Store, when set, receives every classification.
	Store  store.Store
	Logger zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// New validates the configuration and builds the runtime components.
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	comp, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cfg:    cfg,
		comp:   comp,
		store:  opts.Store,
		logger: opts.Logger,
		now:    now,
	}, nil
}

// Close releases the store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Fit runs the full pipeline over tickets and publishes the resulting
// snapshot. The previous snapshot stays live if Fit fails.
func (e *Engine) Fit(ctx context.Context, tickets []ticket.Ticket) (*Snapshot, error) {
	if len(tickets) == 0 {
		return nil, fmt.Errorf("fit: no tickets: %w", internalerr.ErrEmptyCorpus)
	}
	start := e.now()
	docs := ticket.Issues(tickets)
	pre := e.comp.Preprocessor

	vocab, err := vocabulary.Build(docs, e.cfg.Vocabulary.Cap, pre)
	if err != nil {
		return nil, fmt.Errorf("fit: build vocabulary: %w", err)
	}
	vec := vectorize.New(vocab, pre, e.comp.FeatureSpace)
	features, idf, err := vec.Corpus(docs)
	if err != nil {
		return nil, fmt.Errorf("fit: vectorize: %w", err)
	}
	vec = vec.WithIDF(idf)

	fitOpts := e.cfg.FitOptions(e.comp, e.logger)
	k, err := kmeans.ChooseK(ctx, features, e.cfg.Clustering.K, fitOpts)
	if err != nil {
		return nil, fmt.Errorf("fit: choose k: %w", err)
	}
	model, err := kmeans.Fit(ctx, features, k, fitOpts)
	if err != nil {
		return nil, fmt.Errorf("fit: kmeans: %w", err)
	}
	profiles, err := profile.Build(tickets, model.Labels, pre)
	if err != nil {
		return nil, fmt.Errorf("fit: profiles: %w", err)
	}

	snap := &Snapshot{
		ID:         ulid.MustNew(ulid.Timestamp(start), ulid.DefaultEntropy()),
		CreatedAt:  start,
		Vocabulary: vocab,
		Vectorizer: vec,
		Model:      model,
		Profiles:   profiles,
		Features:   features,
		Tickets:    append([]ticket.Ticket(nil), tickets...),
	}
	snap.classifier = classify.New(vec, model, profiles)
	e.current.Store(snap)

	e.logger.Info().
		Str("snapshot", snap.ID.String()).
		Int("tickets", len(tickets)).
		Int("vocabulary", vocab.Size()).
		Int("k", model.K).
		Float64("distortion", model.Distortion).
		Dur("took", e.now().Sub(start)).
		Msg("model fitted")
	return snap, nil
}

// Snapshot returns the published snapshot or ErrNotReady before the first
// successful Fit.
func (e *Engine) Snapshot() (*Snapshot, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("no fitted model: %w", internalerr.ErrNotReady)
	}
	return snap, nil
}

// Classify assigns text to a cluster. With a store configured the result is
// recorded; a failed write is returned alongside the valid response.
func (e *Engine) Classify(ctx context.Context, text string) (classify.Response, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return classify.Response{}, err
	}
	resp := snap.classifier.Classify(text)
	if e.store == nil {
		return resp, nil
	}

	at := e.now()
	rec := store.Classification{
		ID:         ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		SnapshotID: snap.ID.String(),
		Text:       text,
		ClusterID:  resp.ClusterID,
		Category:   resp.Category,
		Confidence: resp.Confidence,
		CreatedAt:  at,
	}
	if err := e.store.RecordClassification(ctx, rec); err != nil {
		return resp, fmt.Errorf("record classification: %w", err)
	}
	return resp, nil
}

// Quality evaluates the published model on its training features.
func (e *Engine) Quality() (quality.Quality, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return quality.Quality{}, err
	}
	return quality.Evaluate(quality.FromModel(snap.Features, snap.Model)), nil
}

// Similarity returns the k×k silhouette-based cluster similarity matrix.
func (e *Engine) Similarity() (quality.SimilarityMatrix, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return quality.SimilarityMatrix{}, err
	}
	return quality.Similarity(quality.FromModel(snap.Features, snap.Model)), nil
}

// Stability refits on a stratified part of tickets and scores the held-out
// rest. tickets must have as many entries as the training corpus; nil uses
// the training tickets themselves.
func (e *Engine) Stability(ctx context.Context, tickets []ticket.Ticket) (stability.Result, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return stability.Result{}, err
	}
	if tickets == nil {
		tickets = snap.Tickets
	}
	ev := stability.New(snap.Vectorizer, snap.Model, e.cfg.StabilityOptions(e.comp, e.logger))
	return ev.Evaluate(ctx, ticket.Issues(tickets))
}

// Report bundles quality and stability of the published model.
type Report struct {
	Snapshot   string              `json:"snapshot"`
	Quality    quality.Quality     `json:"quality"`
	Assessment quality.Assessment  `json:"assessment"`
	Stability  stability.Result    `json:"stability"`
	Clusters   ClusterInfoResponse `json:"clusters"`
}

// Report computes quality and stability concurrently against the same
// snapshot.
func (e *Engine) Report(ctx context.Context, tickets []ticket.Ticket) (Report, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return Report{}, err
	}
	if tickets == nil {
		tickets = snap.Tickets
	}

	rep := Report{Snapshot: snap.ID.String(), Clusters: snap.ClusterInfo()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rep.Quality = quality.Evaluate(quality.FromModel(snap.Features, snap.Model))
		rep.Assessment = rep.Quality.Assess()
		return nil
	})
	g.Go(func() error {
		ev := stability.New(snap.Vectorizer, snap.Model, e.cfg.StabilityOptions(e.comp, e.logger))
		res, err := ev.Evaluate(gctx, ticket.Issues(tickets))
		if err != nil {
			return err
		}
		rep.Stability = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("report: %w", err)
	}
	return rep, nil
}

// ClusterInfo returns the overview of the published model.
func (e *Engine) ClusterInfo() (ClusterInfoResponse, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return ClusterInfoResponse{}, err
	}
	return snap.ClusterInfo(), nil
}

// Cluster returns one cluster with its full keyword list.
func (e *Engine) Cluster(id int) (ClusterDetails, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return ClusterDetails{}, err
	}
	return snap.Cluster(id)
}

// VocabularyInfo summarizes the published vocabulary.
func (e *Engine) VocabularyInfo() (vocabulary.Info, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return vocabulary.Info{}, err
	}
	return snap.Vocabulary.Info(), nil
}
