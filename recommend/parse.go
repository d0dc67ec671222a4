package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MatchScore is the oracle's confidence in a pick.
type MatchScore string

const (
	MatchHigh   MatchScore = "High"
	MatchMedium MatchScore = "Medium"
	MatchLow    MatchScore = "Low"
)

// ParseMatchScore reads a score case-insensitively. Unknown values yield "".
func ParseMatchScore(s string) MatchScore {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return MatchHigh
	case "medium":
		return MatchMedium
	case "low":
		return MatchLow
	default:
		return ""
	}
}

// Answer is one untrusted entry of the oracle's output. Malformed fields are
// left empty.
type Answer struct {
	Title      string     `json:"title"`
	VendorName string     `json:"vendorName,omitempty"`
	City       string     `json:"city,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Price      string     `json:"price,omitempty"`
	Rating     string     `json:"rating,omitempty"`
	MatchScore MatchScore `json:"matchScore,omitempty"`
}

var (
	ErrNoAnswerArray  = errors.New("no JSON array in oracle output")
	ErrAnswerNotArray = errors.New("oracle output is not a JSON array")
)

// ParseAnswers extracts the answer list from raw oracle text. Code fences and
// prose around the array are tolerated. On failure it returns an empty slice
// together with the reason, which callers treat as recoverable.
func ParseAnswers(raw string) ([]Answer, error) {
	text := stripFences(raw)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return []Answer{}, ErrNoAnswerArray
	}

	var doc any
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil {
		return []Answer{}, fmt.Errorf("decode oracle output: %w", err)
	}
	entries, ok := doc.([]any)
	if !ok {
		return []Answer{}, ErrAnswerNotArray
	}

	answers := make([]Answer, 0, len(entries))
	for _, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		a := Answer{
			Title:      field(obj, "title", "name"),
			VendorName: field(obj, "vendorName", "vendor"),
			City:       field(obj, "city"),
			Reason:     field(obj, "reason"),
			Price:      field(obj, "price"),
			Rating:     field(obj, "rating"),
			MatchScore: ParseMatchScore(field(obj, "matchScore", "match_score")),
		}
		if a.Title == "" && a.VendorName == "" {
			continue
		}
		answers = append(answers, a)
	}
	return answers, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// field returns the first key present as text. Strings are trimmed and
// numbers are formatted; any other type counts as absent.
func field(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
