package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hiringdesk/hiring-assistant/internal/models"
)

// analysisSnapshot is the single-row persistence record: the whole analysis
// list serialized as one JSON document, keyed by the storage key.
type analysisSnapshot struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Data      []byte    `gorm:"type:jsonb"`
	UpdatedAt time.Time `gorm:"type:timestamp;default:now()"`
}

func (analysisSnapshot) TableName() string {
	return "analysis_snapshots"
}

type postgresStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPostgresStore opens the database, migrates the snapshot table, and
// returns a Store backed by it.
func NewPostgresStore(dsn string, verbose bool, logger *zap.Logger) (Store, error) {
	logLevel := gormlogger.Silent
	if verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&analysisSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresStore{db: db, logger: logger}, nil
}

// Load implements Store.
func (s *postgresStore) Load() ([]*models.Analysis, error) {
	var snapshot analysisSnapshot
	if err := s.db.Where("key = ?", StorageKey).First(&snapshot).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to read analyses snapshot", zap.Error(err))
		}
		return []*models.Analysis{}, nil
	}

	var analyses []*models.Analysis
	if err := json.Unmarshal(snapshot.Data, &analyses); err != nil {
		s.logger.Warn("failed to parse analyses snapshot", zap.Error(err))
		return []*models.Analysis{}, nil
	}
	if analyses == nil {
		analyses = []*models.Analysis{}
	}

	return analyses, nil
}

// Save implements Store.
func (s *postgresStore) Save(analyses []*models.Analysis) error {
	data, err := json.Marshal(analyses)
	if err != nil {
		return fmt.Errorf("failed to marshal analyses: %w", err)
	}

	snapshot := analysisSnapshot{
		Key:       StorageKey,
		Data:      data,
		UpdatedAt: time.Now(),
	}
	if err := s.db.Save(&snapshot).Error; err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}
