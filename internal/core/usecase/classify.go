package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ambiclean/apenso/internal/core/domain"
)

const (
	locationMarker = "MARCA"
	locationTokens = 3
)

var btuPattern = regexp.MustCompile(`(?i)btus`)

// Classifier turns extracted lines into technical and cost records.
// Lines that qualify but miss an expected token still produce a record
// with the corresponding fields absent.
type Classifier struct {
	vocabulary domain.BrandVocabulary
}

func NewClassifier(vocabulary domain.BrandVocabulary) *Classifier {
	if len(vocabulary) == 0 {
		vocabulary = domain.DefaultBrandVocabulary()
	}
	return &Classifier{vocabulary: vocabulary}
}

func (c *Classifier) ClassifyTechnical(lines []string) []domain.TechnicalItem {
	items := make([]domain.TechnicalItem, 0)
	for i, line := range lines {
		if !isTechnicalLine(line) {
			continue
		}
		items = append(items, c.technicalItem(i+1, line))
	}
	return items
}

func (c *Classifier) ClassifyCosts(lines []string) []domain.CostItem {
	items := make([]domain.CostItem, 0)
	for i, line := range lines {
		before, after, found := strings.Cut(line, domain.CurrencyMarker)
		if !found {
			continue
		}
		items = append(items, costItem(i+1, before, after))
	}
	return items
}

func isTechnicalLine(line string) bool {
	return strings.IndexFunc(line, unicode.IsDigit) >= 0 && btuPattern.MatchString(line)
}

func (c *Classifier) technicalItem(lineNo int, line string) domain.TechnicalItem {
	tokens := strings.Fields(line)
	return domain.TechnicalItem{
		Line:        lineNo,
		AssetTag:    assetTag(tokens),
		Brand:       c.vocabulary.Match(line),
		CapacityBTU: capacity(tokens),
		Location:    location(line),
	}
}

func assetTag(tokens []string) domain.Field {
	for _, tok := range tokens {
		if strings.Contains(tok, "-") || isAllDigits(tok) {
			return domain.Known(tok)
		}
	}
	return domain.Missing()
}

func capacity(tokens []string) domain.Field {
	for i, tok := range tokens {
		if !btuPattern.MatchString(tok) {
			continue
		}
		value := stripCapacity(tok)
		// "12000 BTUS": the unit stands alone, the number precedes it.
		if value == "" && i > 0 && strings.IndexFunc(tokens[i-1], unicode.IsDigit) >= 0 {
			value = stripCapacity(tokens[i-1])
		}
		return domain.FieldOf(value)
	}
	return domain.Missing()
}

func stripCapacity(tok string) string {
	v := btuPattern.ReplaceAllString(tok, "")
	v = strings.ReplaceAll(v, ",", "")
	return strings.TrimSpace(v)
}

// location keeps the trailing tokens after the first MARCA label, or of the
// whole line when the label is absent.
func location(line string) domain.Field {
	tail := line
	if idx := strings.Index(line, locationMarker); idx >= 0 {
		tail = line[idx+len(locationMarker):]
	}
	tokens := strings.Fields(tail)
	if len(tokens) > locationTokens {
		tokens = tokens[len(tokens)-locationTokens:]
	}
	return domain.FieldOf(strings.Join(tokens, " "))
}

func costItem(lineNo int, before, after string) domain.CostItem {
	description := strings.TrimSpace(before)

	amount := domain.Missing()
	if fields := strings.Fields(after); len(fields) > 0 {
		amount = domain.Known(domain.CurrencyMarker + " " + fields[0])
	}

	section := description
	if idx := strings.LastIndex(description, "-"); idx >= 0 {
		section = strings.TrimSpace(description[idx+1:])
	}

	return domain.CostItem{
		Line:        lineNo,
		Description: domain.FieldOf(description),
		Amount:      amount,
		Section:     section,
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
