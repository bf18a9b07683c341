// Package storage persists the full analysis list as one JSON document under
// a single storage key, so the core pipeline has no dependency on a specific
// persistence mechanism.
package storage

import "hiringdesk/hiring-assistant/internal/models"

// StorageKey is the key the analysis snapshot is stored under.
const StorageKey = "hiringAnalyses"

// Store loads and saves the complete analysis list. Load returns an empty
// list, not an error, when nothing has been saved yet or the stored snapshot
// cannot be read.
type Store interface {
	Load() ([]*models.Analysis, error)
	Save(analyses []*models.Analysis) error
}
