package usecase

import (
	"strings"

	"github.com/greenbasket/backend/internal/domain"
)

// Relevance strength between two products' categories. The reject decision
// and the bonus computation both consume this single result instead of
// re-running the matching at each call site.
type matchStrength int

const (
	noMatch     matchStrength = iota // no signal at all
	weakMatch                        // only product names share a word prefix
	strongMatch                      // a category-level signal fired
)

// categoryMatch is the outcome of comparing two products' categories.
type categoryMatch struct {
	strength          matchStrength
	sharedSignificant int // shared non-generic category keywords, drives the bonus
}

// maxCategoryBonus caps the relevance reward added to a candidate's score
// before the improvement comparison.
const maxCategoryBonus = 0.25

// namePrefixMinLen is the minimum shared word prefix between product names
// counted as a (weak) relevance signal.
const namePrefixMinLen = 4

// genericCategoryLabels are too broad to signal a shared purpose on their
// own. English and Croatian, matching catalog locales.
var genericCategoryLabels = map[string]bool{
	"food": true, "foods": true, "product": true, "products": true,
	"groceries": true, "beverages": true, "drinks": true, "snacks": true,
	"hrana": true, "proizvodi": true, "namirnice": true, "pica": true, "pića": true,
}

// incompatibleCategoryGroups vetoes substitutions across category families
// that share keywords but serve different purposes (butter is not a
// healthier milk). Checked both ways.
var incompatibleCategoryGroups = [][2][]string{
	{{"milk", "mlijeko", "mleko"}, {"cream", "cheese", "butter", "yogurt", "vrhnje", "sir", "maslac", "jogurt"}},
	{{"juice", "sok"}, {"soda", "cola", "energy drink", "gazirano"}},
	{{"bread", "kruh"}, {"cake", "biscuit", "cookie", "kolač", "keks"}},
	{{"oil", "ulje"}, {"vinegar", "ocat"}},
	{{"coffee", "kava"}, {"tea", "čaj", "caj"}},
}

// compareCategories computes the four relevance signals between a product
// and a candidate:
//  1. raw category substring overlap
//  2. single-word keyword overlap from category strings
//  3. keyword overlap after dropping generic labels
//  4. shared multi-character name-word prefixes
//
// Any of 1-3 is a strong signal; 4 alone is weak. All negative means no match.
func compareCategories(product, candidate domain.Product) categoryMatch {
	prodCats := categorySet(product)
	candCats := categorySet(candidate)

	rawOverlap := categorySubstringOverlap(prodCats, candCats)

	prodWords := categoryKeywords(prodCats)
	candWords := categoryKeywords(candCats)
	keywordOverlap := countShared(prodWords, candWords)

	significant := countShared(dropGeneric(prodWords), dropGeneric(candWords))

	prefixShared := sharedNamePrefixes(product.Name, candidate.Name)

	match := categoryMatch{sharedSignificant: significant}
	switch {
	case rawOverlap || keywordOverlap > 0 || significant > 0:
		match.strength = strongMatch
	case prefixShared:
		match.strength = weakMatch
	default:
		match.strength = noMatch
	}
	return match
}

// bonus converts relevance strength into the score reward applied before
// the improvement comparison: 0.1 per shared significant category capped at
// 0.25, or a token 0.05 for name-prefix-only relevance.
func (m categoryMatch) bonus() float64 {
	switch m.strength {
	case strongMatch:
		b := 0.1 * float64(m.sharedSignificant)
		if b < 0.05 {
			b = 0.05
		}
		if b > maxCategoryBonus {
			b = maxCategoryBonus
		}
		return b
	case weakMatch:
		return 0.05
	default:
		return 0
	}
}

// categoriesIncompatible reports whether the two products fall into mutually
// exclusive category groups.
func categoriesIncompatible(product, candidate domain.Product) bool {
	prodText := categoryText(product)
	candText := categoryText(candidate)

	for _, group := range incompatibleCategoryGroups {
		if (matchesGroup(prodText, group[0]) && matchesGroup(candText, group[1])) ||
			(matchesGroup(prodText, group[1]) && matchesGroup(candText, group[0])) {
			return true
		}
	}
	return false
}

// matchesGroup checks whether the joined category text contains any of the
// group's keywords.
func matchesGroup(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// categoryText joins name and categories for group membership checks.
func categoryText(p domain.Product) string {
	parts := append([]string{strings.ToLower(p.Name)}, categorySet(p)...)
	return strings.Join(parts, ",")
}

// categorySet extracts normalized category labels from the comma-joined
// category field and the structured tag list. Locale prefixes like "en:" or
// "hr:" are stripped from tags.
func categorySet(p domain.Product) []string {
	seen := make(map[string]bool)
	var cats []string

	add := func(c string) {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}

	for _, c := range strings.Split(p.Category, ",") {
		add(c)
	}
	for _, tag := range p.CategoryTags {
		add(stripLocalePrefix(tag))
	}
	return cats
}

// stripLocalePrefix removes a leading two-letter locale prefix ("en:dairy").
func stripLocalePrefix(tag string) string {
	if len(tag) > 3 && tag[2] == ':' {
		return tag[3:]
	}
	return tag
}

// categorySubstringOverlap checks raw containment between category labels
// in either direction.
func categorySubstringOverlap(a, b []string) bool {
	for _, ca := range a {
		for _, cb := range b {
			if strings.Contains(ca, cb) || strings.Contains(cb, ca) {
				return true
			}
		}
	}
	return false
}

// categoryKeywords splits category labels into single-word keywords.
func categoryKeywords(cats []string) map[string]bool {
	words := make(map[string]bool)
	for _, c := range cats {
		for _, w := range strings.FieldsFunc(c, func(r rune) bool {
			return r == ' ' || r == '-' || r == '_'
		}) {
			if len(w) > 1 {
				words[w] = true
			}
		}
	}
	return words
}

// dropGeneric removes overly broad category labels from a keyword set.
func dropGeneric(words map[string]bool) map[string]bool {
	kept := make(map[string]bool)
	for w := range words {
		if !genericCategoryLabels[w] {
			kept[w] = true
		}
	}
	return kept
}

// countShared counts keywords present in both sets.
func countShared(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

// sharedNamePrefixes reports whether the two product names share any word
// with a common prefix of at least namePrefixMinLen characters.
func sharedNamePrefixes(nameA, nameB string) bool {
	wordsA := strings.Fields(strings.ToLower(nameA))
	wordsB := strings.Fields(strings.ToLower(nameB))

	for _, wa := range wordsA {
		if len(wa) < namePrefixMinLen {
			continue
		}
		for _, wb := range wordsB {
			if len(wb) < namePrefixMinLen {
				continue
			}
			if wa[:namePrefixMinLen] == wb[:namePrefixMinLen] {
				return true
			}
		}
	}
	return false
}
