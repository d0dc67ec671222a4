package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// PriceRange is the coarse price tier used when an item has no numeric price.
type PriceRange string

const (
	PriceBudget    PriceRange = "$"
	PriceModerate  PriceRange = "$$"
	PriceExpensive PriceRange = "$$$"
	PriceLuxury    PriceRange = "$$$$"
)

// Tier returns the 1-based position of the range (1 = lowest), or 0 when unknown.
func (p PriceRange) Tier() int {
	switch p {
	case PriceBudget:
		return 1
	case PriceModerate:
		return 2
	case PriceExpensive:
		return 3
	case PriceLuxury:
		return 4
	default:
		return 0
	}
}

type Dietary struct {
	Vegetarian bool `json:"vegetarian"`
	Vegan      bool `json:"vegan"`
	GlutenFree bool `json:"glutenFree"`
	Halal      bool `json:"halal"`
	Kosher     bool `json:"kosher"`
}

type Nutrition struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
}

type Rating struct {
	Average float64 `json:"average" validate:"gte=0,lte=5"`
	Count   int     `json:"count" validate:"gte=0"`
}

// Item is a single listed food offering. Titles are not unique.
type Item struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title" validate:"notblank"`
	Description string     `json:"description,omitempty"`
	VendorName  string     `json:"vendorName,omitempty"`
	City        string     `json:"city,omitempty"`
	Address     string     `json:"address,omitempty"`
	CuisineType string     `json:"cuisineType,omitempty"`
	Price       *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	PriceRange  PriceRange `json:"priceRange,omitempty" validate:"omitempty,oneof=$ $$ $$$ $$$$"`
	Dietary     Dietary    `json:"dietary"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`
	Rating      Rating     `json:"rating"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func itemValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(fmt.Sprintf("register notblank validation: %v", err))
		}
	})
	return validate
}

// Validate reports whether the item satisfies the catalog invariants.
func (it Item) Validate() error {
	if err := itemValidator().Struct(it); err != nil {
		return fmt.Errorf("invalid catalog item %q: %w", it.Title, err)
	}
	return nil
}

// Decode parses a catalog snapshot. Both a bare JSON array and an object of
// the form {"items": [...]} are accepted.
func Decode(b []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(b, &items); err != nil {
		var wrapped struct {
			Items []Item `json:"items"`
		}
		if werr := json.Unmarshal(b, &wrapped); werr != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		items = wrapped.Items
	}
	return normalize(items), nil
}

// normalize drops records that break the catalog invariants and orders the
// rest newest first. Records without a timestamp keep their relative order.
func normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			slog.Warn("CATALOG: Skipping invalid item", "error", err)
			continue
		}
		out = append(out, it)
	}
	slices.SortStableFunc(out, func(a, b Item) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
