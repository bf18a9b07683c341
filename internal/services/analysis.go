package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hiringdesk/hiring-assistant/internal/models"
	"hiringdesk/hiring-assistant/internal/screening"
	"hiringdesk/hiring-assistant/internal/storage"
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrResumeNotFound   = errors.New("resume not found")
	ErrNoRoleAnalysis   = errors.New("role analysis has not been run yet")
)

// AnalysisService owns the list of hiring analyses: CRUD, the AI steps, and
// one screening store + pipeline per analysis. The full list is loaded from
// the storage port at startup and saved back on every change.
type AnalysisService interface {
	List() []models.AnalysisSummary
	Create(roleTitle, roleDescription string) (*models.Analysis, error)
	Get(id uuid.UUID) (*models.Analysis, error)
	Delete(id uuid.UUID) error

	AnalyzeRole(ctx context.Context, id uuid.UUID) (*models.RoleRequirements, error)
	GenerateQuestions(ctx context.Context, id uuid.UUID) (*models.InterviewQuestions, error)

	IngestResumes(id uuid.UUID, files []models.ResumeFile) ([]uuid.UUID, error)
	ScreenAll(ctx context.Context, id uuid.UUID) (int, error)
	Resumes(id uuid.UUID, cfg screening.SortConfig) ([]models.ScreeningItem, bool, error)
	RemoveResume(id, resumeID uuid.UUID) error
	ClearResumes(id uuid.UUID) error
	Export(id uuid.UUID, cfg screening.SortConfig) ([]screening.ExportRow, error)

	Wait()
}

type session struct {
	analysis *models.Analysis
	store    *screening.Store
	pipeline *screening.Pipeline
}

type analysisService struct {
	mu       sync.RWMutex
	sessions []*session
	index    map[uuid.UUID]*session

	storage     storage.Store
	assistant   Assistant
	extractor   screening.TextExtractor
	concurrency int
	logger      *zap.Logger
}

func NewAnalysisService(
	store storage.Store,
	assistant Assistant,
	extractor screening.TextExtractor,
	concurrency int,
	logger *zap.Logger,
) (AnalysisService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	svc := &analysisService{
		index:       make(map[uuid.UUID]*session),
		storage:     store,
		assistant:   assistant,
		extractor:   extractor,
		concurrency: concurrency,
		logger:      logger,
	}

	analyses, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load analyses: %w", err)
	}
	for _, analysis := range analyses {
		svc.attach(analysis)
	}
	logger.Info("analyses loaded", zap.Int("count", len(analyses)))

	return svc, nil
}

// attach builds the runtime session for an analysis, seeding the screening
// store from the persisted items. Caller must not hold the service lock.
func (s *analysisService) attach(analysis *models.Analysis) *session {
	store := screening.NewStore()
	if len(analysis.ScreenedResumes) > 0 {
		if err := store.Add(analysis.ScreenedResumes...); err != nil {
			s.logger.Warn("skipping persisted resumes with duplicate ids",
				zap.String("analysis", analysis.ID.String()), zap.Error(err))
		}
	}

	sess := &session{
		analysis: analysis,
		store:    store,
		pipeline: screening.NewPipeline(store, s.extractor, assistantScorer{s.assistant}, s.concurrency, s.logger),
	}

	store.OnChange(s.persist)

	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	s.index[analysis.ID] = sess
	s.mu.Unlock()

	return sess
}

// List implements AnalysisService.
func (s *analysisService) List() []models.AnalysisSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]models.AnalysisSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		summaries = append(summaries, models.AnalysisSummary{
			ID:        sess.analysis.ID,
			RoleTitle: sess.analysis.RoleTitle,
			CreatedAt: sess.analysis.CreatedAt.Format(time.RFC3339),
			Resumes:   sess.store.Len(),
		})
	}
	return summaries
}

// Create implements AnalysisService.
func (s *analysisService) Create(roleTitle, roleDescription string) (*models.Analysis, error) {
	analysis := &models.Analysis{
		ID:              uuid.New(),
		RoleTitle:       roleTitle,
		CreatedAt:       time.Now().UTC(),
		RoleDescription: roleDescription,
	}

	sess := s.attach(analysis)
	s.persist()

	return s.copyAnalysis(sess), nil
}

// Get implements AnalysisService.
func (s *analysisService) Get(id uuid.UUID) (*models.Analysis, error) {
	s.mu.RLock()
	sess, ok := s.index[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	return s.copyAnalysis(sess), nil
}

// Delete implements AnalysisService.
func (s *analysisService) Delete(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.index[id]
	if ok {
		delete(s.index, id)
		for i, candidate := range s.sessions {
			if candidate == sess {
				s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return ErrAnalysisNotFound
	}

	// Detach the hook so late stage resolutions no longer trigger saves.
	sess.store.OnChange(nil)
	s.persist()
	return nil
}

// AnalyzeRole implements AnalysisService.
func (s *analysisService) AnalyzeRole(ctx context.Context, id uuid.UUID) (*models.RoleRequirements, error) {
	s.mu.RLock()
	sess, ok := s.index[id]
	var description string
	if ok {
		description = sess.analysis.RoleDescription
	}
	s.mu.RUnlock()
	if !ok {
		return nil, ErrAnalysisNotFound
	}

	requirements, err := s.assistant.AnalyzeRole(ctx, description)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess.analysis.RoleAnalysis = requirements
	s.mu.Unlock()
	s.persist()

	return requirements, nil
}

// GenerateQuestions implements AnalysisService.
func (s *analysisService) GenerateQuestions(ctx context.Context, id uuid.UUID) (*models.InterviewQuestions, error) {
	s.mu.RLock()
	sess, ok := s.index[id]
	var requirements *models.RoleRequirements
	if ok {
		requirements = sess.analysis.RoleAnalysis
	}
	s.mu.RUnlock()
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	if requirements == nil {
		return nil, ErrNoRoleAnalysis
	}

	questions, err := s.assistant.GenerateQuestions(ctx, requirements)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess.analysis.InterviewQuestions = questions
	s.mu.Unlock()
	s.persist()

	return questions, nil
}

// IngestResumes implements AnalysisService.
func (s *analysisService) IngestResumes(id uuid.UUID, files []models.ResumeFile) ([]uuid.UUID, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return sess.pipeline.Ingest(files)
}

// ScreenAll implements AnalysisService. Blocks until every dispatched scoring
// request has resolved.
func (s *analysisService) ScreenAll(ctx context.Context, id uuid.UUID) (int, error) {
	sess, err := s.session(id)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	requirements := sess.analysis.RoleAnalysis
	s.mu.RUnlock()
	if requirements == nil {
		return 0, ErrNoRoleAnalysis
	}

	return sess.pipeline.ScreenAll(ctx, requirements)
}

// Resumes implements AnalysisService. Returns the sorted view plus whether a
// screening batch is in flight.
func (s *analysisService) Resumes(id uuid.UUID, cfg screening.SortConfig) ([]models.ScreeningItem, bool, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, false, err
	}
	return screening.Project(sess.store.Items(), cfg), sess.pipeline.Screening(), nil
}

// RemoveResume implements AnalysisService.
func (s *analysisService) RemoveResume(id, resumeID uuid.UUID) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	if !sess.store.Remove(resumeID) {
		return ErrResumeNotFound
	}
	return nil
}

// ClearResumes implements AnalysisService.
func (s *analysisService) ClearResumes(id uuid.UUID) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.store.RemoveAll()
	return nil
}

// Export implements AnalysisService.
func (s *analysisService) Export(id uuid.UUID, cfg screening.SortConfig) ([]screening.ExportRow, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return screening.ExportRows(screening.Project(sess.store.Items(), cfg)), nil
}

// Wait implements AnalysisService. Blocks until every pipeline has drained
// its in-flight work; used during shutdown.
func (s *analysisService) Wait() {
	s.mu.RLock()
	pipelines := make([]*screening.Pipeline, 0, len(s.sessions))
	for _, sess := range s.sessions {
		pipelines = append(pipelines, sess.pipeline)
	}
	s.mu.RUnlock()

	for _, pipeline := range pipelines {
		pipeline.Wait()
	}
}

func (s *analysisService) session(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	sess, ok := s.index[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	return sess, nil
}

// copyAnalysis returns the analysis with the current store snapshot attached,
// leaving the stored record untouched.
func (s *analysisService) copyAnalysis(sess *session) *models.Analysis {
	s.mu.RLock()
	analysis := *sess.analysis
	s.mu.RUnlock()

	items := sess.store.Items()
	resumes := make([]*models.ScreeningItem, len(items))
	for i := range items {
		item := items[i]
		resumes[i] = &item
	}
	analysis.ScreenedResumes = resumes
	return &analysis
}

func (s *analysisService) snapshot() []*models.Analysis {
	s.mu.RLock()
	sessions := make([]*session, len(s.sessions))
	copy(sessions, s.sessions)
	s.mu.RUnlock()

	analyses := make([]*models.Analysis, 0, len(sessions))
	for _, sess := range sessions {
		analyses = append(analyses, s.copyAnalysis(sess))
	}
	return analyses
}

func (s *analysisService) persist() {
	if err := s.storage.Save(s.snapshot()); err != nil {
		s.logger.Error("failed to save analyses", zap.Error(err))
	}
}

// assistantScorer adapts the Assistant to the pipeline's scorer port.
type assistantScorer struct {
	assistant Assistant
}

func (a assistantScorer) Score(ctx context.Context, requirements *models.RoleRequirements, resumeText string) (*models.ScreeningVerdict, error) {
	return a.assistant.ScreenResume(ctx, requirements, resumeText)
}
