package screening

import (
	"sort"

	"hiringdesk/hiring-assistant/internal/models"
)

type SortKey string

const SortKeyMatchScore SortKey = "matchScore"

type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// SortConfig selects the presentation order of the screening table.
type SortConfig struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

func DefaultSortConfig() SortConfig {
	return SortConfig{Key: SortKeyMatchScore, Direction: SortDescending}
}

// Toggle flips the direction when re-selecting the current key and resets to
// descending when switching to a different key.
func (c SortConfig) Toggle(key SortKey) SortConfig {
	direction := SortDescending
	if c.Key == key && c.Direction == SortDescending {
		direction = SortAscending
	}
	return SortConfig{Key: key, Direction: direction}
}

// Project returns the items sorted per the config. Items without a verdict do
// not participate in the comparison: any pair with a missing verdict compares
// equal, so unscored items hold a position driven only by their relation to
// other unscored items. The sort is stable here, but that is an
// implementation detail callers must not rely on.
func Project(items []models.ScreeningItem, cfg SortConfig) []models.ScreeningItem {
	sorted := make([]models.ScreeningItem, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Verdict, sorted[j].Verdict
		if a == nil || b == nil {
			return false
		}
		if cfg.Direction == SortAscending {
			return a.MatchScore < b.MatchScore
		}
		return a.MatchScore > b.MatchScore
	})

	return sorted
}
