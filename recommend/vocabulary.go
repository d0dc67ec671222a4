package recommend

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Vocabulary is the closed keyword set used by the extractor. Lists are
// ordered and the first hit wins.
type Vocabulary struct {
	Cities   []string        `yaml:"cities" validate:"required,dive,required"`
	Cuisines []string        `yaml:"cuisines" validate:"required,dive,required"`
	Dietary  DietaryKeywords `yaml:"dietary"`

	cities   []keyword
	cuisines []keyword
	diet     map[dietFlag][]keyword
	negation []keyword
}

type DietaryKeywords struct {
	Vegetarian          []string `yaml:"vegetarian"`
	VegetarianNegations []string `yaml:"vegetarian_negations"`
	Vegan               []string `yaml:"vegan"`
	GlutenFree          []string `yaml:"gluten_free"`
	Halal               []string `yaml:"halal"`
}

type dietFlag int

const (
	dietVegetarian dietFlag = iota
	dietVegan
	dietGlutenFree
	dietHalal
)

type keyword struct {
	word string
	re   *regexp.Regexp
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabularyYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return v
}

// LoadVocabulary reads a YAML vocabulary file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(b)
}

// ParseVocabulary decodes and compiles a YAML vocabulary.
func ParseVocabulary(b []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if err := structValidator().Struct(v); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}

	v.cities = compileKeywords(v.Cities)
	v.cuisines = compileKeywords(v.Cuisines)
	v.negation = compileKeywords(v.Dietary.VegetarianNegations)
	v.diet = map[dietFlag][]keyword{
		dietVegetarian: compileKeywords(v.Dietary.Vegetarian),
		dietVegan:      compileKeywords(v.Dietary.Vegan),
		dietGlutenFree: compileKeywords(v.Dietary.GlutenFree),
		dietHalal:      compileKeywords(v.Dietary.Halal),
	}
	return &v, nil
}

// compileKeywords builds case-insensitive matchers bounded by non-alphanumerics
// so that "goa" does not fire inside "goan".
func compileKeywords(words []string) []keyword {
	out := make([]keyword, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		out = append(out, keyword{
			word: w,
			re:   regexp.MustCompile(`(?:^|[^\pL\pN])` + regexp.QuoteMeta(w) + `(?:$|[^\pL\pN])`),
		})
	}
	return out
}

// firstHit returns the first keyword, in vocabulary order, present in text.
func firstHit(text string, kws []keyword) string {
	for _, kw := range kws {
		if kw.re.MatchString(text) {
			return kw.word
		}
	}
	return ""
}

func anyHit(text string, kws []keyword) bool {
	return firstHit(text, kws) != ""
}
