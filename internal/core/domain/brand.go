package domain

import "strings"

type Brand string

const (
	BrandMidea   Brand = "MIDEA"
	BrandElgin   Brand = "ELGIN"
	BrandSamsung Brand = "SAMSUNG"
	BrandHitachi Brand = "HITACHI"
	BrandUnknown Brand = "UNKNOWN"
)

// Display renders an unknown brand as NotDetermined.
func (b Brand) Display() string {
	if b == "" || b == BrandUnknown {
		return NotDetermined
	}
	return string(b)
}

// BrandPattern maps a case-insensitive substring to a brand label.
type BrandPattern struct {
	Pattern string `yaml:"pattern"`
	Brand   Brand  `yaml:"brand"`
}

// BrandVocabulary is evaluated in order; the first pattern found wins.
type BrandVocabulary []BrandPattern

// DefaultBrandVocabulary includes the SANSUNG misspelling seen in visit reports.
func DefaultBrandVocabulary() BrandVocabulary {
	return BrandVocabulary{
		{Pattern: "MIDEA", Brand: BrandMidea},
		{Pattern: "ELGIN", Brand: BrandElgin},
		{Pattern: "SAMSUNG", Brand: BrandSamsung},
		{Pattern: "SANSUNG", Brand: BrandSamsung},
		{Pattern: "HITACHI", Brand: BrandHitachi},
	}
}

func (v BrandVocabulary) Match(line string) Brand {
	upper := strings.ToUpper(line)
	for _, p := range v {
		pattern := strings.ToUpper(strings.TrimSpace(p.Pattern))
		if pattern == "" {
			continue
		}
		if strings.Contains(upper, pattern) {
			return p.Brand
		}
	}
	return BrandUnknown
}
