package kmeans

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

const (
	// MinK is the smallest cluster count the elbow search considers.
	MinK = 2
	// RowsPerCandidate bounds the search: k ranges over 2..max(2, n/RowsPerCandidate).
	RowsPerCandidate = 50
)

// ChooseK returns explicitK when it is positive, otherwise the elbow of the
// distortion curve over k = 2..max(2, n/50).
func ChooseK(ctx context.Context, data *mat.Dense, explicitK int, opts Options) (int, error) {
	if explicitK > 0 {
		return explicitK, nil
	}
	opts = opts.withDefaults()
	n, _ := data.Dims()
	maxK := max(MinK, n/RowsPerCandidate)

	distortions := make([]float64, 0, maxK-MinK+1)
	for k := MinK; k <= maxK; k++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		m, err := Fit(ctx, data, k, opts)
		if err != nil {
			return 0, err
		}
		distortions = append(distortions, m.Distortion)
		opts.Logger.Debug().Int("k", k).Float64("distortion", m.Distortion).Msg("elbow candidate")
	}

	k := Elbow(distortions)
	opts.Logger.Info().Int("k", k).Int("candidates", len(distortions)).Msg("elbow chosen")
	return k, nil
}

// Elbow picks the k whose drop ratio (d[k-1]-d[k]) / (d[k]-d[k+1]) is the
// largest positive value among interior candidates. distortions[i] belongs
// to k = MinK+i. It returns MinK when no interior ratio is positive.
func Elbow(distortions []float64) int {
	best, bestRatio := MinK, 0.0
	for i := 1; i < len(distortions)-1; i++ {
		prevDrop := distortions[i-1] - distortions[i]
		nextDrop := distortions[i] - distortions[i+1]
		ratio := prevDrop / nextDrop
		if ratio > bestRatio {
			best, bestRatio = MinK+i, ratio
		}
	}
	return best
}
