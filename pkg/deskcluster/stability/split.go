package stability

import (
	"math/rand"
	"slices"
)

// Split partitions sample indices into a retraining set and a held-out set.
type Split struct {
	Train []int
	Test  []int
}

// SplitStratified shuffles the members of every cluster with a generator
// seeded by seed and moves floor(size*ratio) of them into the test set, so
// each cluster is represented on both sides. Clusters are visited in
// ascending id order, which makes the split reproducible.
func SplitStratified(labels []int, ratio float64, seed int64) Split {
	byCluster := make(map[int][]int)
	for i, l := range labels {
		byCluster[l] = append(byCluster[l], i)
	}
	ids := make([]int, 0, len(byCluster))
	for id := range byCluster {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	rng := rand.New(rand.NewSource(seed))
	var s Split
	for _, id := range ids {
		members := byCluster[id]
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		n := int(float64(len(members)) * ratio)
		s.Test = append(s.Test, members[:n]...)
		s.Train = append(s.Train, members[n:]...)
	}
	return s
}

// SplitIdentity uses every sample for both retraining and testing.
func SplitIdentity(n int) Split {
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return Split{Train: all, Test: slices.Clone(all)}
}
