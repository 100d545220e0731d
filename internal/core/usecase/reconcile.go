package usecase

import (
	"strings"

	"github.com/ambiclean/apenso/internal/core/domain"
)

// Reconcile pairs every technical item with the first cost item whose section
// is contained in the item's location. Cost items may be reused; items without
// a match keep absent description and amount.
func Reconcile(items []domain.TechnicalItem, costs []domain.CostItem) []domain.ReconciledEntry {
	entries := make([]domain.ReconciledEntry, 0, len(items))
	for i, item := range items {
		entry := domain.ReconciledEntry{
			Seq:         i + 1,
			Item:        item,
			Description: domain.Missing(),
			Amount:      domain.Missing(),
		}
		location, _ := item.Location.Value()
		if cost, ok := firstMatch(location, costs); ok {
			entry.Description = cost.Description
			entry.Amount = cost.Amount
			entry.Matched = true
		}
		entries = append(entries, entry)
	}
	return entries
}

func firstMatch(location string, costs []domain.CostItem) (domain.CostItem, bool) {
	key := normalizeKey(location)
	for _, cost := range costs {
		if strings.Contains(key, normalizeKey(cost.Section)) {
			return cost, true
		}
	}
	return domain.CostItem{}, false
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
