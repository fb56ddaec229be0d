package domain

import "strings"

// Product represents a single catalog product as supplied by the pricing/
// catalog layer. Every field beyond the name is optional: catalog data is
// sparse and the engine degrades to neutral defaults instead of erroring.
type Product struct {
	ID              string   `json:"id"`
	Code            string   `json:"code,omitempty"` // external catalog barcode
	Name            string   `json:"name"`
	Brand           string   `json:"brand,omitempty"`
	Category        string   `json:"category,omitempty"` // free text, comma-joined
	CategoryTags    []string `json:"categoryTags,omitempty"`
	Price           *float64 `json:"price,omitempty"` // currency-normalized before entering the engine
	Currency        string   `json:"currency,omitempty"`
	Quantity        int      `json:"quantity,omitempty"`
	CarbonFootprint *float64 `json:"carbonFootprint,omitempty"` // kg CO2e
	EcoGrade        string   `json:"ecoGrade,omitempty"`        // a-e
	NutritionGrade  string   `json:"nutritionGrade,omitempty"`  // a-e
	Packaging       string   `json:"packaging,omitempty"`
	Origin          string   `json:"origin,omitempty"`
	LabelTags       []string `json:"labelTags,omitempty"`
	IngredientsText string   `json:"ingredientsText,omitempty"`
	Additives       []string `json:"additives,omitempty"`

	Score *SustainabilityScore `json:"sustainabilityScore,omitempty"`
}

// PriceOrZero returns the product price, or 0 when no price is known.
func (p *Product) PriceOrZero() float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// QuantityOrOne returns the requested quantity, defaulting to 1.
func (p *Product) QuantityOrOne() int {
	if p.Quantity <= 0 {
		return 1
	}
	return p.Quantity
}

// Cost returns price times quantity, 0 when the price is unknown.
func (p *Product) Cost() float64 {
	return p.PriceOrZero() * float64(p.QuantityOrOne())
}

// CarbonOrZero returns the carbon footprint, or 0 when not estimated.
func (p *Product) CarbonOrZero() float64 {
	if p.CarbonFootprint == nil {
		return 0
	}
	return *p.CarbonFootprint * float64(p.QuantityOrOne())
}

// ScoreTotal returns the computed total score and whether one is present.
func (p *Product) ScoreTotal() (float64, bool) {
	if p.Score == nil {
		return 0, false
	}
	return p.Score.Total, true
}

// HasPrice reports whether the product carries a usable positive price.
func (p *Product) HasPrice() bool {
	return p.Price != nil && *p.Price > 0
}

// LabelText returns the joined, lowercased label tags for marker matching.
func (p *Product) LabelText() string {
	return strings.ToLower(strings.Join(p.LabelTags, ","))
}
