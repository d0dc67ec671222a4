package recommend

import (
	"fmt"
	"strings"

	"dishmatch/catalog"
)

// Recommendation is a catalog item enriched with the oracle's judgement.
type Recommendation struct {
	catalog.Item
	AIReason      string     `json:"aiReason"`
	MatchScore    MatchScore `json:"matchScore"`
	RatingDisplay string     `json:"ratingDisplay"`
}

func newRecommendation(it catalog.Item, reason string, score MatchScore) Recommendation {
	if score == "" {
		score = MatchMedium
	}
	return Recommendation{
		Item:          it,
		AIReason:      reason,
		MatchScore:    score,
		RatingDisplay: ratingDisplay(it.Rating),
	}
}

func ratingDisplay(r catalog.Rating) string {
	if r.Count == 0 {
		return "No ratings yet"
	}
	return fmt.Sprintf("%.1f stars (%d reviews)", r.Average, r.Count)
}

// Reconcile maps each answer to a candidate the oracle was shown. For every
// answer the first rule that hits wins: exact title, title containment in
// either direction, then vendor name when the answer names one. Answers that
// match nothing are dropped, and a candidate is used at most once.
func Reconcile(answers []Answer, candidates []catalog.Item) []Recommendation {
	used := make([]bool, len(candidates))
	out := make([]Recommendation, 0, len(answers))
	for _, a := range answers {
		i := matchCandidate(a, candidates, used)
		if i < 0 {
			continue
		}
		used[i] = true
		out = append(out, newRecommendation(candidates[i], a.Reason, a.MatchScore))
	}
	return out
}

func matchCandidate(a Answer, candidates []catalog.Item, used []bool) int {
	title := normalizeText(a.Title)
	vendor := normalizeText(a.VendorName)

	find := func(hit func(catalog.Item) bool) int {
		for i, it := range candidates {
			if !used[i] && hit(it) {
				return i
			}
		}
		return -1
	}

	if title != "" {
		if i := find(func(it catalog.Item) bool {
			return normalizeText(it.Title) == title
		}); i >= 0 {
			return i
		}
		if i := find(func(it catalog.Item) bool {
			t := normalizeText(it.Title)
			return t != "" && (strings.Contains(t, title) || strings.Contains(title, t))
		}); i >= 0 {
			return i
		}
	}
	if vendor != "" {
		return find(func(it catalog.Item) bool {
			v := normalizeText(it.VendorName)
			return v != "" && (v == vendor || strings.Contains(v, vendor) || strings.Contains(vendor, v))
		})
	}
	return -1
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate keeps the recommendations that still satisfy every constraint.
// The oracle may ignore the rules it was given; this is the final gate.
func Validate(recs []Recommendation, c Constraints) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if c.Matches(r.Item) {
			out = append(out, r)
		}
	}
	return out
}
