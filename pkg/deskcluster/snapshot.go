package deskcluster

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/deskcluster/pkg/deskcluster/classify"
	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/kmeans"
	"github.com/cognicore/deskcluster/pkg/deskcluster/profile"
	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vectorize"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vocabulary"
)

// OverviewKeywords bounds the keywords listed per cluster in ClusterInfo.
const OverviewKeywords = 5

// Snapshot is one fitted model with everything derived from it. It is never
// modified after publication.
type Snapshot struct {
	ID         ulid.ULID
	CreatedAt  time.Time
	Vocabulary *vocabulary.Vocabulary
	Vectorizer *vectorize.Vectorizer
	Model      *kmeans.Model
	Profiles   *profile.Set
	Features   *mat.Dense
	Tickets    []ticket.Ticket

	classifier *classify.Classifier
}

// ClusterDetails describes one cluster.
type ClusterDetails struct {
	ClusterID            int      `json:"clusterId"`
	Category             string   `json:"categoryName"`
	TicketCount          int      `json:"ticketCount"`
	Percentage           float64  `json:"percentage"`
	AvgResolutionTime    int      `json:"avgResolutionTime"`
	Keywords             []string `json:"topKeywords"`
	RecommendedSolutions []string `json:"recommendedSolutions"`
}

// ClusterInfoResponse is the overview of every cluster, largest first.
type ClusterInfoResponse struct {
	TotalClusters int              `json:"totalClusters"`
	TotalTickets  int              `json:"totalTickets"`
	WCSS          float64          `json:"wcss"`
	Clusters      []ClusterDetails `json:"clusters"`
	Statistics    map[string]any   `json:"statistics"`
}

// ClusterInfo lists all k clusters sorted by descending size; equal sizes
// keep id order.
func (s *Snapshot) ClusterInfo() ClusterInfoResponse {
	sizes := s.Model.Sizes()
	total := len(s.Model.Labels)

	clusters := make([]ClusterDetails, 0, s.Model.K)
	for id := range s.Model.K {
		d := s.details(id, sizes, total)
		if len(d.Keywords) > OverviewKeywords {
			d.Keywords = d.Keywords[:OverviewKeywords]
		}
		clusters = append(clusters, d)
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].TicketCount > clusters[j].TicketCount
	})

	_, dim := s.Features.Dims()
	return ClusterInfoResponse{
		TotalClusters: s.Model.K,
		TotalTickets:  total,
		WCSS:          s.Model.Distortion,
		Clusters:      clusters,
		Statistics: map[string]any{
			"avgClusterSize":    round2(float64(total) / float64(s.Model.K)),
			"vocabularySize":    s.Vocabulary.Size(),
			"featuresDimension": dim,
		},
	}
}

// Cluster returns cluster id with its full keyword list, or ErrNotFound when
// id is outside [0, k).
func (s *Snapshot) Cluster(id int) (ClusterDetails, error) {
	if id < 0 || id >= s.Model.K {
		return ClusterDetails{}, fmt.Errorf("cluster %d of %d: %w", id, s.Model.K, internalerr.ErrNotFound)
	}
	return s.details(id, s.Model.Sizes(), len(s.Model.Labels)), nil
}

func (s *Snapshot) details(id int, sizes []int, total int) ClusterDetails {
	p := s.Profiles.Get(id)
	var pct float64
	if total > 0 {
		pct = round2(float64(sizes[id]) / float64(total) * 100)
	}
	return ClusterDetails{
		ClusterID:            id,
		Category:             p.Category,
		TicketCount:          sizes[id],
		Percentage:           pct,
		AvgResolutionTime:    p.AvgResolutionMinutes,
		Keywords:             p.Keywords,
		RecommendedSolutions: p.Solutions,
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
