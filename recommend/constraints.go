package recommend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dishmatch/catalog"
)

// Constraints are the filters mechanically extracted from a request. Every
// present field is a hard requirement.
type Constraints struct {
	City        string `json:"city,omitempty"`
	Cuisine     string `json:"cuisine,omitempty"`
	Vegetarian  bool   `json:"vegetarian,omitempty"`
	Vegan       bool   `json:"vegan,omitempty"`
	GlutenFree  bool   `json:"glutenFree,omitempty"`
	Halal       bool   `json:"halal,omitempty"`
	BudgetMin   *int   `json:"budgetMin,omitempty"`
	BudgetMax   *int   `json:"budgetMax,omitempty"`
	WasFiltered bool   `json:"wasFiltered"`
}

const (
	currency = `(?:(?:rs\.?|inr|₹)\s*)?`
	// amount accepts grouped digits in both western (1,000) and Indian
	// (1,50,000) notation.
	amount = `(\d{1,3}(?:,\d{2,3})+|\d+)`
)

var (
	underPattern   = regexp.MustCompile(`\b(?:under|below|less than|up ?to)\s*` + currency + amount)
	overPattern    = regexp.MustCompile(`\b(?:over|above|more than)\s*` + currency + amount)
	betweenPattern = regexp.MustCompile(`\bbetween\s*` + currency + amount + `\s*and\s*` + currency + amount)
	rangePattern   = regexp.MustCompile(amount + `\s*(?:-|to)\s*` + currency + amount)
)

// Extract derives the constraint set from free text. It assumes the text is
// non-empty and never fails; unknown text yields an empty set.
func Extract(text string, v *Vocabulary) Constraints {
	lower := strings.ToLower(text)

	c := Constraints{
		City:    firstHit(lower, v.cities),
		Cuisine: firstHit(lower, v.cuisines),
	}

	c.Vegetarian = anyHit(lower, v.diet[dietVegetarian]) && !anyHit(lower, v.negation)
	c.Vegan = anyHit(lower, v.diet[dietVegan])
	c.GlutenFree = anyHit(lower, v.diet[dietGlutenFree])
	c.Halal = anyHit(lower, v.diet[dietHalal])

	c.BudgetMax = firstInt(underPattern, lower)
	c.BudgetMin = firstInt(overPattern, lower)
	if c.BudgetMax == nil && c.BudgetMin == nil {
		// Bounds are taken in the order written, even when reversed.
		if m := betweenPattern.FindStringSubmatch(lower); m != nil {
			c.BudgetMin, c.BudgetMax = atoi(m[1]), atoi(m[2])
		} else if m := rangePattern.FindStringSubmatch(lower); m != nil {
			c.BudgetMin, c.BudgetMax = atoi(m[1]), atoi(m[2])
		}
	}

	c.WasFiltered = c.City != "" || c.Cuisine != "" ||
		c.Vegetarian || c.Vegan || c.GlutenFree || c.Halal ||
		c.BudgetMin != nil || c.BudgetMax != nil
	return c
}

func firstInt(re *regexp.Regexp, s string) *int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return atoi(m[1])
}

func atoi(s string) *int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil
	}
	return &n
}

// Matches reports whether an item satisfies every present constraint. The
// filter and the post-validator share this predicate.
func (c Constraints) Matches(it catalog.Item) bool {
	if c.City != "" && !matchesCity(c.City, it) {
		return false
	}
	if c.Cuisine != "" && !matchesCuisine(c.Cuisine, it.CuisineType) {
		return false
	}
	if c.Vegetarian && !it.Dietary.Vegetarian {
		return false
	}
	if c.Vegan && !it.Dietary.Vegan {
		return false
	}
	if c.GlutenFree && !it.Dietary.GlutenFree {
		return false
	}
	if c.Halal && !it.Dietary.Halal {
		return false
	}
	return c.withinBudget(it)
}

func matchesCity(city string, it catalog.Item) bool {
	itemCity := strings.ToLower(strings.TrimSpace(it.City))
	if strings.Contains(strings.ToLower(it.Address), city) {
		return true
	}
	if itemCity == "" {
		return false
	}
	if strings.Contains(itemCity, city) || strings.Contains(city, itemCity) {
		return true
	}
	for _, tok := range strings.Fields(itemCity) {
		if strings.Contains(tok, city) {
			return true
		}
	}
	return false
}

func matchesCuisine(cuisine, cuisineType string) bool {
	ct := strings.ToLower(strings.TrimSpace(cuisineType))
	if ct == "" {
		return false
	}
	if strings.Contains(ct, cuisine) || strings.Contains(cuisine, ct) {
		return true
	}
	tokens := strings.FieldsFunc(ct, func(r rune) bool {
		return r == ' ' || r == ',' || r == '/' || r == '|' || r == '&'
	})
	for _, tok := range tokens {
		if strings.Contains(tok, cuisine) {
			return true
		}
	}
	return false
}

// withinBudget checks the numeric price when present. Without one it
// approximates from the price tier against BudgetMax and keeps the item
// whenever exclusion cannot be determined.
func (c Constraints) withinBudget(it catalog.Item) bool {
	if c.BudgetMin == nil && c.BudgetMax == nil {
		return true
	}

	if it.Price != nil {
		p := *it.Price
		if c.BudgetMin != nil && p < float64(*c.BudgetMin) {
			return false
		}
		if c.BudgetMax != nil && p > float64(*c.BudgetMax) {
			return false
		}
		return true
	}

	tier := it.PriceRange.Tier()
	if c.BudgetMax == nil || tier == 0 {
		return true
	}
	switch limit := *c.BudgetMax; {
	case limit < 500:
		return tier <= 1
	case limit < 1000:
		return tier <= 2
	case limit < 2000:
		return tier <= 3
	default:
		return true
	}
}

// Summary renders the present constraints for user-facing messages.
func (c Constraints) Summary() string {
	var parts []string
	if c.Vegetarian {
		parts = append(parts, "vegetarian")
	}
	if c.Vegan {
		parts = append(parts, "vegan")
	}
	if c.GlutenFree {
		parts = append(parts, "gluten-free")
	}
	if c.Halal {
		parts = append(parts, "halal")
	}
	if c.Cuisine != "" {
		parts = append(parts, c.Cuisine)
	}
	if c.City != "" {
		parts = append(parts, "in "+c.City)
	}
	switch {
	case c.BudgetMin != nil && c.BudgetMax != nil:
		parts = append(parts, fmt.Sprintf("priced %d-%d", *c.BudgetMin, *c.BudgetMax))
	case c.BudgetMax != nil:
		parts = append(parts, fmt.Sprintf("up to %d", *c.BudgetMax))
	case c.BudgetMin != nil:
		parts = append(parts, fmt.Sprintf("from %d", *c.BudgetMin))
	}
	return strings.Join(parts, ", ")
}
