package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/kmeans"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vectorize"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Vocabulary.Cap != 1000 {
		t.Errorf("cap = %d, want 1000", cfg.Vocabulary.Cap)
	}
	if cfg.Clustering.Seed != 42 || cfg.Clustering.MaxIterations != 100 {
		t.Errorf("clustering defaults = %+v", cfg.Clustering)
	}
	if cfg.Clustering.FeatureSpace != string(vectorize.LegacyRawTF) {
		t.Errorf("feature space = %q", cfg.Clustering.FeatureSpace)
	}
	if cfg.Morphology.Stemmer != "identity" {
		t.Errorf("stemmer = %q, want identity when stemming is off", cfg.Morphology.Stemmer)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "deskcluster.yaml", `
morphology:
  stemming: true
  min_word_length: 3
vocabulary:
  cap: 50
clustering:
  k: 4
  init: random
  distance: manhattan
  feature_space: training_parity
stability:
  test_ratio: 0.3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Morphology.Stemming || cfg.Morphology.Stemmer != "russian" {
		t.Errorf("morphology = %+v", cfg.Morphology)
	}
	if cfg.Vocabulary.Cap != 50 || cfg.Clustering.K != 4 {
		t.Errorf("cap/k = %d/%d", cfg.Vocabulary.Cap, cfg.Clustering.K)
	}
	if cfg.Stability.TestRatio != 0.3 {
		t.Errorf("test ratio = %v", cfg.Stability.TestRatio)
	}

	comp, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if comp.Metric.Name() != "manhattan" {
		t.Errorf("metric = %s", comp.Metric.Name())
	}
	if comp.Init != kmeans.InitRandom {
		t.Errorf("init = %s", comp.Init)
	}
	if comp.FeatureSpace != vectorize.TrainingParity {
		t.Errorf("feature space = %s", comp.FeatureSpace)
	}
	if got := comp.Preprocessor.Preprocess("подключение подключения"); len(got) != 2 || got[0] != got[1] {
		t.Errorf("stemmed tokens = %v, want two equal stems", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "deskcluster.yaml", "clustering:\n  k: 4\n")
	t.Setenv("DESKCLUSTER_K", "7")
	t.Setenv("DESKCLUSTER_VOCABULARY_CAP", "20")
	t.Setenv("DESKCLUSTER_STRIP_HTML", "true")
	t.Setenv("DESKCLUSTER_TOLERANCE", "0.01")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Clustering.K != 7 || cfg.Vocabulary.Cap != 20 {
		t.Errorf("k/cap = %d/%d, want 7/20", cfg.Clustering.K, cfg.Vocabulary.Cap)
	}
	if !cfg.Morphology.StripHTML || cfg.Clustering.Tolerance != 0.01 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("DESKCLUSTER_K", "many")
	_, err := Load("")
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative cap", func(c *Config) { c.Vocabulary.Cap = -1 }},
		{"negative k", func(c *Config) { c.Clustering.K = -2 }},
		{"ratio one", func(c *Config) { c.Stability.TestRatio = 1 }},
		{"unknown metric", func(c *Config) { c.Clustering.Distance = "cosine" }},
		{"unknown init", func(c *Config) { c.Clustering.Init = "forgy" }},
		{"unknown stemmer", func(c *Config) { c.Morphology.Stemmer = "klingon" }},
		{"unknown feature space", func(c *Config) { c.Clustering.FeatureSpace = "bm25" }},
		{"stopwords without list", func(c *Config) { c.Morphology.Stopwords = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildStoplist(t *testing.T) {
	stop := writeFile(t, "stop.txt", "и\nне\nошибка\n")
	cfg := Default()
	cfg.StoplistPath = stop
	cfg.Morphology.Stopwords = true
	cfg.Morphology.MinWordLength = 2

	comp, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if comp.StopWords.Contains("и") {
		t.Error("single-rune stopword should be filtered by min length")
	}
	if !comp.StopWords.Contains("ошибка") {
		t.Error("stoplist missing ошибка")
	}
	got := comp.Preprocessor.Preprocess("ошибка не сеть")
	if len(got) != 1 || got[0] != "сеть" {
		t.Errorf("tokens = %v, want [сеть]", got)
	}
}
