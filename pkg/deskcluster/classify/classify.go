// Package classify assigns new ticket text to the nearest cluster and
// answers with that cluster's profile.
package classify

import (
	"github.com/cognicore/deskcluster/pkg/deskcluster/kmeans"
	"github.com/cognicore/deskcluster/pkg/deskcluster/profile"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vectorize"
)

// Response is the classification of one ticket.
type Response struct {
	ClusterID              int      `json:"clusterId"`
	Category               string   `json:"category"`
	RecommendedSolutions   []string `json:"recommendedSolutions"`
	ExpectedResolutionTime int      `json:"expectedResolutionTime"`
	Confidence             float64  `json:"confidence"`
}

// Classifier is safe for concurrent use; it only reads its inputs.
type Classifier struct {
	vec      *vectorize.Vectorizer
	model    *kmeans.Model
	profiles *profile.Set
}

// New creates a classifier over a fitted model.
func New(vec *vectorize.Vectorizer, model *kmeans.Model, profiles *profile.Set) *Classifier {
	return &Classifier{vec: vec, model: model, profiles: profiles}
}

// Classify vectorizes text with the single-document feature space, picks the
// nearest centroid and returns its profile. Unknown or empty clusters get
// the default profile.
func (c *Classifier) Classify(text string) Response {
	x := c.vec.One(text)
	id := c.model.Predict(x)
	p := c.profiles.Get(id)
	return Response{
		ClusterID:              id,
		Category:               p.Category,
		RecommendedSolutions:   p.Solutions,
		ExpectedResolutionTime: p.AvgResolutionMinutes,
		Confidence:             Confidence(c.model.DistanceTo(x, id)),
	}
}

// Confidence maps a centroid distance to max(0, 1 - d). It is a heuristic
// score, not a probability.
func Confidence(d float64) float64 {
	return max(0, 1-d)
}
