package recommend

import (
	"cmp"
	"slices"

	"dishmatch/catalog"
)

// ByQuality orders items by descending rating average, then descending
// rating count. It is the only ordering used by the pipeline.
func ByQuality(a, b catalog.Item) int {
	if c := cmp.Compare(b.Rating.Average, a.Rating.Average); c != 0 {
		return c
	}
	return cmp.Compare(b.Rating.Count, a.Rating.Count)
}

// SortByQuality sorts items in place with ByQuality, keeping the prior
// relative order of ties.
func SortByQuality(items []catalog.Item) {
	slices.SortStableFunc(items, ByQuality)
}

// rankRecommendations returns a ranked copy of recs holding at most n entries.
func rankRecommendations(recs []Recommendation, n int) []Recommendation {
	out := slices.Clone(recs)
	slices.SortStableFunc(out, func(a, b Recommendation) int {
		return ByQuality(a.Item, b.Item)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
