package recommend

import (
	"slices"

	"dishmatch/catalog"
)

// Limits bounds the size of every list the pipeline produces.
type Limits struct {
	// FilteredCap is the candidate cap applied after constraint filtering.
	FilteredCap int
	// UnfilteredCap is the number of most recent items offered when the
	// request carried no constraints.
	UnfilteredCap int
	// MaxResults is the maximum number of recommendations returned.
	MaxResults int
	// FallbackCount is the number of filtered candidates synthesized into
	// recommendations when the oracle answer could not be used.
	FallbackCount int
}

func DefaultLimits() Limits {
	return Limits{
		FilteredCap:   50,
		UnfilteredCap: 30,
		MaxResults:    6,
		FallbackCount: 5,
	}
}

// Filter narrows a newest-first catalog snapshot to the candidates offered
// to the oracle. Caps are applied in recency order, then the result is
// sorted by quality. A filtered request may yield an empty list; callers
// must treat that as no match.
func Filter(items []catalog.Item, c Constraints, lim Limits) []catalog.Item {
	var out []catalog.Item
	if !c.WasFiltered {
		out = slices.Clone(items[:min(len(items), lim.UnfilteredCap)])
	} else {
		for _, it := range items {
			if !c.Matches(it) {
				continue
			}
			out = append(out, it)
			if len(out) == lim.FilteredCap {
				break
			}
		}
	}
	SortByQuality(out)
	return out
}
