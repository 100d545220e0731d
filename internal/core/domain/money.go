package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const CurrencyMarker = "R$"

// ParseBRL reads amounts such as "R$ 1.250,00" or "450,00".
func ParseBRL(amount string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(amount)
	s = strings.TrimSpace(strings.TrimPrefix(s, CurrencyMarker))
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatBRL renders d as "R$ 1.250,00".
func FormatBRL(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return CurrencyMarker + " " + sign + b.String() + "," + frac
}
