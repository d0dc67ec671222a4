package recommend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"dishmatch/catalog"
)

// Markers delimiting the serialized candidate list inside an instruction.
const (
	CandidatesBegin = "CANDIDATES_JSON_BEGIN"
	CandidatesEnd   = "CANDIDATES_JSON_END"
)

const maxPromptTags = 10

// promptCandidate is the shape of a catalog item shown to the oracle.
type promptCandidate struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Cuisine     string             `json:"cuisine,omitempty"`
	Vendor      string             `json:"vendor,omitempty"`
	City        string             `json:"city,omitempty"`
	Address     string             `json:"address,omitempty"`
	Price       *float64           `json:"price,omitempty"`
	PriceRange  catalog.PriceRange `json:"priceRange,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	Dietary     catalog.Dietary    `json:"dietary"`
	Nutrition   *catalog.Nutrition `json:"nutrition,omitempty"`
	Rating      catalog.Rating     `json:"rating"`
}

func newPromptCandidate(it catalog.Item) promptCandidate {
	tags := it.Tags
	if len(tags) > maxPromptTags {
		tags = tags[:maxPromptTags]
	}
	return promptCandidate{
		Title:       it.Title,
		Description: it.Description,
		Cuisine:     it.CuisineType,
		Vendor:      it.VendorName,
		City:        it.City,
		Address:     it.Address,
		Price:       it.Price,
		PriceRange:  it.PriceRange,
		Tags:        tags,
		Dietary:     it.Dietary,
		Nutrition:   it.Nutrition,
		Rating:      it.Rating,
	}
}

// AnswerSchema describes the array the oracle is asked to produce.
func AnswerSchema() *jsonschema.Schema {
	text := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "string", Description: desc}
	}
	return &jsonschema.Schema{
		Type: "array",
		Items: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"title":      text("exact title of a candidate"),
				"vendorName": text("vendor of that candidate"),
				"city":       text("city of that candidate"),
				"reason":     text("one or two sentences on why it fits the request"),
				"price":      text("price as listed"),
				"rating":     text("rating as listed"),
				"matchScore": {
					Type: "string",
					Enum: []any{string(MatchHigh), string(MatchMedium), string(MatchLow)},
				},
			},
			Required: []string{"title", "reason", "matchScore"},
		},
	}
}

// ComposeInstruction builds the single instruction sent to the oracle for a
// request and its ordered candidates.
func ComposeInstruction(request string, candidates []catalog.Item, maxResults int) (string, error) {
	shown := make([]promptCandidate, 0, len(candidates))
	for _, it := range candidates {
		shown = append(shown, newPromptCandidate(it))
	}
	candidatesJSON, err := json.MarshalIndent(shown, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}
	schemaJSON, err := json.MarshalIndent(AnswerSchema(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal answer schema: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, instructionHeader, maxResults)
	b.WriteString("\nANSWER JSON SCHEMA:\n")
	b.Write(schemaJSON)
	b.WriteString("\n\nUSER REQUEST:\n")
	b.WriteString(strings.TrimSpace(request))
	b.WriteString("\n\nCANDIDATES:\n")
	b.WriteString(CandidatesBegin + "\n")
	b.Write(candidatesJSON)
	b.WriteString("\n" + CandidatesEnd + "\n")
	return b.String(), nil
}

const instructionHeader = `You are a food recommendation assistant.

GOAL:
Pick the dishes from CANDIDATES that best fit the USER REQUEST.

RULES:
- Every constraint stated in the request (city, cuisine, dietary needs, budget) is mandatory. Never pick a candidate that violates one.
- Among the candidates that match, prefer higher rated ones.
- Return at most %d entries.
- Only pick from CANDIDATES and copy each title exactly. You need no outside knowledge.
- If nothing matches, return an empty array []. Never return unrelated items to fill the list.

OUTPUT FORMAT:
Respond with a single JSON array that follows the schema below and nothing else.
No explanations, no markdown, no code fences. Start with [ and end with ].
`
