package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"hiringdesk/hiring-assistant/internal/models"
)

type fileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore persists the snapshot as <dataPath>/<StorageKey>.json.
func NewFileStore(dataPath string, logger *zap.Logger) (Store, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileStore{
		path:   filepath.Join(dataPath, StorageKey+".json"),
		logger: logger,
	}, nil
}

// Load implements Store.
func (s *fileStore) Load() ([]*models.Analysis, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read analyses snapshot", zap.String("path", s.path), zap.Error(err))
		}
		return []*models.Analysis{}, nil
	}

	var analyses []*models.Analysis
	if err := json.Unmarshal(data, &analyses); err != nil {
		s.logger.Warn("failed to parse analyses snapshot", zap.String("path", s.path), zap.Error(err))
		return []*models.Analysis{}, nil
	}
	if analyses == nil {
		analyses = []*models.Analysis{}
	}

	return analyses, nil
}

// Save implements Store. The snapshot is written to a temp file first so a
// crash mid-write never corrupts the previous snapshot.
func (s *fileStore) Save(analyses []*models.Analysis) error {
	data, err := json.MarshalIndent(analyses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analyses: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}
