package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"dishmatch/recommend"
)

const defaultPicks = 3

// Oracle is a deterministic stand-in for a real model. It answers with the
// first candidates listed in the instruction, which the engine has already
// ranked. Real models may not be so kind :)
type Oracle struct {
	picks int
}

func NewOracle(picks int) *Oracle {
	if picks <= 0 {
		picks = defaultPicks
	}
	return &Oracle{picks: picks}
}

type candidate struct {
	Title  string `json:"title"`
	Vendor string `json:"vendor"`
	City   string `json:"city"`
}

func (o *Oracle) Generate(ctx context.Context, instruction string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	slog.Info("ORACLE: Mock invoked", "instruction_len", len(instruction))

	start := strings.Index(instruction, recommend.CandidatesBegin)
	end := strings.Index(instruction, recommend.CandidatesEnd)
	if start < 0 || end < start {
		return "[]", nil
	}

	var candidates []candidate
	block := instruction[start+len(recommend.CandidatesBegin) : end]
	if err := json.Unmarshal([]byte(block), &candidates); err != nil {
		return "", fmt.Errorf("mock oracle: decode candidates: %w", err)
	}

	answers := make([]recommend.Answer, 0, o.picks)
	for i, c := range candidates {
		if i == o.picks {
			break
		}
		answers = append(answers, recommend.Answer{
			Title:      c.Title,
			VendorName: c.Vendor,
			City:       c.City,
			Reason:     fmt.Sprintf("Highly rated pick from %s.", vendorOrDefault(c.Vendor)),
			MatchScore: scoreFor(i),
		})
	}

	b, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("mock oracle: encode answers: %w", err)
	}
	slog.Info("ORACLE: Mock returning answers", "answers", len(answers))
	return "```json\n" + string(b) + "\n```", nil
}

func vendorOrDefault(v string) string {
	if v == "" {
		return "a local kitchen"
	}
	return v
}

func scoreFor(rank int) recommend.MatchScore {
	switch {
	case rank == 0:
		return recommend.MatchHigh
	case rank < 3:
		return recommend.MatchMedium
	default:
		return recommend.MatchLow
	}
}
