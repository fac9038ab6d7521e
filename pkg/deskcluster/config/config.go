package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/deskcluster/pkg/deskcluster/distance"
	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/kmeans"
	"github.com/cognicore/deskcluster/pkg/deskcluster/preprocess"
	"github.com/cognicore/deskcluster/pkg/deskcluster/stability"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vectorize"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vocabulary"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DESKCLUSTER_"

// Config is the full runtime configuration.
type Config struct {
	Morphology   Morphology `yaml:"morphology"`
	Vocabulary   Vocabulary `yaml:"vocabulary"`
	Clustering   Clustering `yaml:"clustering"`
	Stability    Stability  `yaml:"stability"`
	StoplistPath string     `yaml:"stoplist_path"`
	DBPath       string     `yaml:"db_path"`
}

// Morphology controls text preprocessing.
type Morphology struct {
	Stemming      bool   `yaml:"stemming"`
	Stemmer       string `yaml:"stemmer"`
	Stopwords     bool   `yaml:"stopwords"`
	MinWordLength int    `yaml:"min_word_length"`
	StripHTML     bool   `yaml:"strip_html"`
}

// Vocabulary bounds the feature space.
type Vocabulary struct {
	Cap int `yaml:"cap"`
}

// Clustering tunes the k-means engine. K = 0 selects k with the elbow
// heuristic.
type Clustering struct {
	K             int     `yaml:"k"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
	Seed          int64   `yaml:"seed"`
	Init          string  `yaml:"init"`
	Distance      string  `yaml:"distance"`
	FeatureSpace  string  `yaml:"feature_space"`
}

// Stability tunes the resampling check.
type Stability struct {
	TestRatio float64 `yaml:"test_ratio"`
	Seed      int64   `yaml:"seed"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path (skipped when empty), applies DESKCLUSTER_* environment
// overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	envBool(&c.Morphology.Stemming, "STEMMING", &errs)
	envString(&c.Morphology.Stemmer, "STEMMER")
	envBool(&c.Morphology.Stopwords, "STOPWORDS", &errs)
	envInt(&c.Morphology.MinWordLength, "MIN_WORD_LENGTH", &errs)
	envBool(&c.Morphology.StripHTML, "STRIP_HTML", &errs)
	envInt(&c.Vocabulary.Cap, "VOCABULARY_CAP", &errs)
	envInt(&c.Clustering.K, "K", &errs)
	envInt(&c.Clustering.MaxIterations, "MAX_ITERATIONS", &errs)
	envFloat(&c.Clustering.Tolerance, "TOLERANCE", &errs)
	envInt64(&c.Clustering.Seed, "SEED", &errs)
	envString(&c.Clustering.Init, "INIT")
	envString(&c.Clustering.Distance, "DISTANCE")
	envString(&c.Clustering.FeatureSpace, "FEATURE_SPACE")
	envFloat(&c.Stability.TestRatio, "STABILITY_TEST_RATIO", &errs)
	envInt64(&c.Stability.Seed, "STABILITY_SEED", &errs)
	envString(&c.StoplistPath, "STOPLIST_PATH")
	envString(&c.DBPath, "DB_PATH")
	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	if c.Morphology.Stemmer == "" {
		if c.Morphology.Stemming {
			c.Morphology.Stemmer = "russian"
		} else {
			c.Morphology.Stemmer = "identity"
		}
	}
	if c.Vocabulary.Cap == 0 {
		c.Vocabulary.Cap = vocabulary.DefaultCap
	}
	if c.Clustering.MaxIterations == 0 {
		c.Clustering.MaxIterations = kmeans.DefaultMaxIterations
	}
	if c.Clustering.Tolerance == 0 {
		c.Clustering.Tolerance = kmeans.DefaultTolerance
	}
	if c.Clustering.Seed == 0 {
		c.Clustering.Seed = kmeans.DefaultSeed
	}
	if c.Clustering.Init == "" {
		c.Clustering.Init = string(kmeans.InitPlusPlus)
	}
	if c.Clustering.Distance == "" {
		c.Clustering.Distance = distance.Euclidean{}.Name()
	}
	if c.Clustering.FeatureSpace == "" {
		c.Clustering.FeatureSpace = string(vectorize.LegacyRawTF)
	}
	if c.Stability.TestRatio == 0 {
		c.Stability.TestRatio = stability.DefaultTestRatio
	}
	if c.Stability.Seed == 0 {
		c.Stability.Seed = stability.DefaultSeed
	}
	if c.DBPath == "" {
		c.DBPath = "./deskcluster.db"
	}
}

// Validate reports every invalid setting, each wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format+": %w", append(args, internalerr.ErrInvalidConfig)...))
	}

	if c.Morphology.MinWordLength < 0 {
		invalid("invalid min_word_length %d: must be >= 0", c.Morphology.MinWordLength)
	}
	if c.Vocabulary.Cap < 1 {
		invalid("invalid vocabulary cap %d: must be >= 1", c.Vocabulary.Cap)
	}
	if c.Clustering.K < 0 {
		invalid("invalid k %d: must be >= 0", c.Clustering.K)
	}
	if c.Clustering.MaxIterations < 1 {
		invalid("invalid max_iterations %d: must be >= 1", c.Clustering.MaxIterations)
	}
	if c.Clustering.Tolerance < 0 {
		invalid("invalid tolerance %g: must be >= 0", c.Clustering.Tolerance)
	}
	if r := c.Stability.TestRatio; r <= 0 || r >= 1 {
		invalid("invalid stability test_ratio %g: must be between 0 and 1", r)
	}
	for _, check := range []func() error{
		func() error { _, err := preprocess.StemmerByName(c.Morphology.Stemmer); return err },
		func() error { _, err := kmeans.ParseInit(c.Clustering.Init); return err },
		func() error { _, err := distance.ByName(c.Clustering.Distance); return err },
		func() error { _, err := vectorize.ParseFeatureSpace(c.Clustering.FeatureSpace); return err },
	} {
		if err := check(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Morphology.Stopwords && c.StoplistPath == "" {
		invalid("stopwords enabled without stoplist_path")
	}
	return errors.Join(errs...)
}

func envString(field *string, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*field = val
	}
}

func envBool(field *bool, key string, errs *[]error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, val, internalerr.ErrInvalidConfig))
		return
	}
	*field = parsed
}

func envInt(field *int, key string, errs *[]error) {
	val := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	if val == "" {
		return
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, val, internalerr.ErrInvalidConfig))
		return
	}
	*field = parsed
}

func envInt64(field *int64, key string, errs *[]error) {
	val := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	if val == "" {
		return
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, val, internalerr.ErrInvalidConfig))
		return
	}
	*field = parsed
}

func envFloat(field *float64, key string, errs *[]error) {
	val := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	if val == "" {
		return
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, val, internalerr.ErrInvalidConfig))
		return
	}
	*field = parsed
}
