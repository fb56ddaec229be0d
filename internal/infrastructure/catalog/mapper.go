package catalog

import (
	"strings"

	"github.com/greenbasket/backend/internal/domain"
)

// searchResponse is the catalog search payload
type searchResponse struct {
	Products []catalogProduct `json:"products"`
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// productResponse is the single-product payload
type productResponse struct {
	Status  int            `json:"status"`
	Code    string         `json:"code"`
	Product catalogProduct `json:"product"`
}

// catalogProduct mirrors the subset of the Open Food Facts product document
// the engine consumes.
type catalogProduct struct {
	Code            string     `json:"code"`
	ProductName     string     `json:"product_name"`
	Brands          string     `json:"brands"`
	Categories      string     `json:"categories"`
	CategoriesTags  []string   `json:"categories_tags"`
	LabelsTags      []string   `json:"labels_tags"`
	EcoscoreGrade   string     `json:"ecoscore_grade"`
	NutriscoreGrade string     `json:"nutriscore_grade"`
	Packaging       string     `json:"packaging"`
	Origins         string     `json:"origins"`
	IngredientsText string     `json:"ingredients_text"`
	AdditivesTags   []string   `json:"additives_tags"`
	Nutriments      nutriments `json:"nutriments"`
}

// nutriments carries the carbon footprint estimate when present
type nutriments struct {
	CarbonFootprint100g *float64 `json:"carbon-footprint_100g"`
}

// Eco-score grades the catalog emits for products it cannot grade.
var unknownGrades = map[string]bool{
	"unknown":        true,
	"not-applicable": true,
}

// mapToProduct converts a catalog document to the domain Product shape.
// Prices stay absent here; the catalog knows products, not shelves.
func mapToProduct(cp *catalogProduct) domain.Product {
	return domain.Product{
		ID:              cp.Code,
		Code:            cp.Code,
		Name:            cp.ProductName,
		Brand:           cp.Brands,
		Category:        cp.Categories,
		CategoryTags:    cp.CategoriesTags,
		CarbonFootprint: cp.Nutriments.CarbonFootprint100g,
		EcoGrade:        normalizeGrade(cp.EcoscoreGrade),
		NutritionGrade:  normalizeGrade(cp.NutriscoreGrade),
		Packaging:       cp.Packaging,
		Origin:          cp.Origins,
		LabelTags:       cp.LabelsTags,
		IngredientsText: cp.IngredientsText,
		Additives:       stripTagPrefixes(cp.AdditivesTags),
	}
}

// normalizeGrade lowercases a grade and drops the catalog's unknown markers
// so the scorer falls back to its neutral default.
func normalizeGrade(grade string) string {
	grade = strings.ToLower(strings.TrimSpace(grade))
	if unknownGrades[grade] {
		return ""
	}
	return grade
}

// stripTagPrefixes removes locale prefixes from tags ("en:e330" -> "e330").
func stripTagPrefixes(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	stripped := make([]string, 0, len(tags))
	for _, tag := range tags {
		if len(tag) > 3 && tag[2] == ':' {
			tag = tag[3:]
		}
		stripped = append(stripped, tag)
	}
	return stripped
}
