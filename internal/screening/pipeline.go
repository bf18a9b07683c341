package screening

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hiringdesk/hiring-assistant/internal/models"
)

// Failure messages are fixed per failure category; the cause is logged, not
// surfaced on the item.
const (
	FailureParse  = "Failed to parse document"
	FailureScreen = "Screening failed"
)

var ErrNoRequirements = errors.New("role requirements are required for screening")

// TextExtractor converts raw PDF bytes into page-ordered text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// VerdictScorer sends extracted text plus the role requirements to the
// external classifier and returns a fully populated verdict or an error.
type VerdictScorer interface {
	Score(ctx context.Context, requirements *models.RoleRequirements, resumeText string) (*models.ScreeningVerdict, error)
}

// Pipeline drives screening items through two sequential asynchronous stages:
// base64 decode + text extraction, then external scoring. Failures are always
// scoped to the single item; nothing retries and nothing aborts siblings.
type Pipeline struct {
	store     *Store
	extractor TextExtractor
	scorer    VerdictScorer
	sem       chan struct{}
	logger    *zap.Logger

	wg        sync.WaitGroup
	screening atomic.Int32
}

func NewPipeline(store *Store, extractor TextExtractor, scorer VerdictScorer, concurrency int, logger *zap.Logger) *Pipeline {
	if concurrency <= 0 {
		concurrency = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		store:     store,
		extractor: extractor,
		scorer:    scorer,
		sem:       make(chan struct{}, concurrency),
		logger:    logger,
	}
}

// Ingest creates one item per file in parsing state synchronously, then
// decodes and extracts each document asynchronously. Callers are expected to
// have filtered out non-PDF files already. Returns the new item ids in
// arrival order.
func (p *Pipeline) Ingest(files []models.ResumeFile) ([]uuid.UUID, error) {
	if len(files) == 0 {
		return nil, nil
	}

	items := make([]*models.ScreeningItem, len(files))
	ids := make([]uuid.UUID, len(files))
	for i, file := range files {
		items[i] = &models.ScreeningItem{
			ID:     uuid.New(),
			File:   file,
			Status: models.StatusParsing,
		}
		ids[i] = items[i].ID
	}

	if err := p.store.Add(items...); err != nil {
		return nil, err
	}

	for _, item := range items {
		p.wg.Add(1)
		go p.extract(item.ID, item.File.Content)
	}

	return ids, nil
}

func (p *Pipeline) extract(id uuid.UUID, content string) {
	defer p.wg.Done()
	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		p.logger.Warn("resume decode failed", zap.String("id", id.String()), zap.Error(err))
		p.fail(id, FailureParse)
		return
	}

	text, err := p.extractor.Extract(data)
	if err != nil {
		p.logger.Warn("resume extraction failed", zap.String("id", id.String()), zap.Error(err))
		p.fail(id, FailureParse)
		return
	}

	if !p.store.Update(id, func(item *models.ScreeningItem) {
		item.Text = text
		item.Status = models.StatusReady
	}) {
		p.logger.Debug("dropping extraction result for removed item", zap.String("id", id.String()))
	}
}

// ScreenAll scores every ready item with extracted text against the given
// requirements. Selected items are marked screening synchronously, before any
// external call starts, so a caller cannot re-trigger screening on the same
// item. One scoring request is dispatched per item through the bounded pool;
// the call returns only after every dispatched request has resolved.
//
// The only batch-level failure is a missing rubric. Once dispatched, per-item
// failures land on the item and never fail the batch.
func (p *Pipeline) ScreenAll(ctx context.Context, requirements *models.RoleRequirements) (int, error) {
	if requirements == nil {
		return 0, ErrNoRequirements
	}

	selected := p.store.MarkScreening()
	if len(selected) == 0 {
		return 0, nil
	}

	p.screening.Add(1)
	defer p.screening.Add(-1)

	var wg sync.WaitGroup
	for _, candidate := range selected {
		wg.Add(1)
		p.wg.Add(1)
		go func(id uuid.UUID, text string) {
			defer wg.Done()
			defer p.wg.Done()
			p.score(ctx, requirements, id, text)
		}(candidate.ID, candidate.Text)
	}
	wg.Wait()

	return len(selected), nil
}

func (p *Pipeline) score(ctx context.Context, requirements *models.RoleRequirements, id uuid.UUID, text string) {
	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	verdict, err := p.scorer.Score(ctx, requirements, text)
	if err != nil {
		p.logger.Warn("resume screening failed", zap.String("id", id.String()), zap.Error(err))
		p.fail(id, FailureScreen)
		return
	}

	if !p.store.Update(id, func(item *models.ScreeningItem) {
		item.Verdict = verdict
		item.FailureReason = ""
		item.Status = models.StatusCompleted
	}) {
		p.logger.Debug("dropping verdict for removed item", zap.String("id", id.String()))
	}
}

func (p *Pipeline) fail(id uuid.UUID, reason string) {
	p.store.Update(id, func(item *models.ScreeningItem) {
		item.Status = models.StatusFailed
		item.FailureReason = reason
		item.Verdict = nil
	})
}

// Screening reports whether a screen batch is currently in flight.
func (p *Pipeline) Screening() bool {
	return p.screening.Load() > 0
}

// Wait blocks until all in-flight extraction and scoring work has resolved.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
