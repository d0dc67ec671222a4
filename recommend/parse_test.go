package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Answer
		wantErr error
	}{
		{
			name: "plain array",
			raw:  `[{"title":"Masala Dosa","reason":"Crisp and cheap","matchScore":"High"}]`,
			want: []Answer{{Title: "Masala Dosa", Reason: "Crisp and cheap", MatchScore: MatchHigh}},
		},
		{
			name: "code fences",
			raw:  "```json\n[{\"title\":\"Masala Dosa\",\"vendorName\":\"Udupi Cafe\",\"matchScore\":\"low\"}]\n```",
			want: []Answer{{Title: "Masala Dosa", VendorName: "Udupi Cafe", MatchScore: MatchLow}},
		},
		{
			name: "prose around the array",
			raw:  "Sure! Here are my picks:\n[{\"title\":\"Veg Thali\"}]\nEnjoy your meal.",
			want: []Answer{{Title: "Veg Thali"}},
		},
		{
			name: "numbers become text",
			raw:  `[{"title":"Veg Thali","price":249.5,"rating":4,"city":"Pune"}]`,
			want: []Answer{{Title: "Veg Thali", Price: "249.5", Rating: "4", City: "Pune"}},
		},
		{
			name: "wrong typed fields are absent",
			raw:  `[{"title":{"name":"x"},"vendor":"Spice Hub","reason":["a"],"matchScore":"excellent"}]`,
			want: []Answer{{VendorName: "Spice Hub"}},
		},
		{
			name: "entries without title or vendor are skipped",
			raw:  `[{"reason":"nothing to match"}, "Veg Thali", 3, {"name":"Paneer Roll"}]`,
			want: []Answer{{Title: "Paneer Roll"}},
		},
		{
			name: "empty array",
			raw:  "[]",
			want: []Answer{},
		},
		{
			name:    "not json",
			raw:     "I could not find anything suitable.",
			want:    []Answer{},
			wantErr: ErrNoAnswerArray,
		},
		{
			name:    "unterminated array",
			raw:     `[{"title":"Veg Thali"`,
			want:    []Answer{},
			wantErr: ErrNoAnswerArray,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnswers(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnswers_InvalidJSON(t *testing.T) {
	got, err := ParseAnswers(`[{"title": "Veg Thali",}]`)
	assert.Error(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseMatchScore(t *testing.T) {
	assert.Equal(t, MatchHigh, ParseMatchScore(" HIGH "))
	assert.Equal(t, MatchMedium, ParseMatchScore("medium"))
	assert.Equal(t, MatchLow, ParseMatchScore("Low"))
	assert.Equal(t, MatchScore(""), ParseMatchScore("great"))
}
