package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cognicore/deskcluster/pkg/deskcluster/distance"
	"github.com/cognicore/deskcluster/pkg/deskcluster/kmeans"
	"github.com/cognicore/deskcluster/pkg/deskcluster/preprocess"
	"github.com/cognicore/deskcluster/pkg/deskcluster/stability"
	"github.com/cognicore/deskcluster/pkg/deskcluster/stoplist"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vectorize"
)

// Components holds the runtime pieces built from a Config.
type Components struct {
	StopWords    *stoplist.Set
	Stemmer      preprocess.Stemmer
	Preprocessor *preprocess.Preprocessor
	Metric       distance.Metric
	Init         kmeans.Init
	FeatureSpace vectorize.FeatureSpace
}

// Build resolves every named setting and loads the stoplist.
func (c *Config) Build() (*Components, error) {
	comp := &Components{}

	if c.StoplistPath != "" {
		set, err := stoplist.Load(c.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		set.FilterShorter(c.Morphology.MinWordLength)
		comp.StopWords = set
	} else {
		comp.StopWords = stoplist.New(nil)
	}

	stemmer, err := preprocess.StemmerByName(c.Morphology.Stemmer)
	if err != nil {
		return nil, err
	}
	comp.Stemmer = stemmer

	comp.Preprocessor = preprocess.New(preprocess.Options{
		Stemming:         c.Morphology.Stemming,
		Stemmer:          stemmer,
		StopwordsEnabled: c.Morphology.Stopwords,
		StopWords:        comp.StopWords,
		MinWordLength:    c.Morphology.MinWordLength,
		StripHTML:        c.Morphology.StripHTML,
	})

	if comp.Metric, err = distance.ByName(c.Clustering.Distance); err != nil {
		return nil, err
	}
	if comp.Init, err = kmeans.ParseInit(c.Clustering.Init); err != nil {
		return nil, err
	}
	if comp.FeatureSpace, err = vectorize.ParseFeatureSpace(c.Clustering.FeatureSpace); err != nil {
		return nil, err
	}
	return comp, nil
}

// FitOptions returns the k-means options for these components.
func (c *Config) FitOptions(comp *Components, logger zerolog.Logger) kmeans.Options {
	return kmeans.Options{
		MaxIterations: c.Clustering.MaxIterations,
		Tolerance:     c.Clustering.Tolerance,
		Metric:        comp.Metric,
		Init:          comp.Init,
		Seed:          c.Clustering.Seed,
		Logger:        logger,
	}
}

// StabilityOptions returns the resampling options for these components.
func (c *Config) StabilityOptions(comp *Components, logger zerolog.Logger) stability.Options {
	return stability.Options{
		TestRatio: c.Stability.TestRatio,
		Seed:      c.Stability.Seed,
		Fit:       c.FitOptions(comp, logger),
		Logger:    logger,
	}
}
