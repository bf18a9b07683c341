package services

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiringdesk/hiring-assistant/internal/models"
	"hiringdesk/hiring-assistant/internal/screening"
)

type memStorage struct {
	mu    sync.Mutex
	seed  []*models.Analysis
	saves [][]*models.Analysis
}

// Load implements storage.Store.
func (m *memStorage) Load() ([]*models.Analysis, error) {
	return m.seed, nil
}

// Save implements storage.Store.
func (m *memStorage) Save(analyses []*models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, analyses)
	return nil
}

func (m *memStorage) last() []*models.Analysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil
	}
	return m.saves[len(m.saves)-1]
}

func (m *memStorage) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

type fakeAssistant struct {
	requirements *models.RoleRequirements
	questions    *models.InterviewQuestions
	verdict      *models.ScreeningVerdict
	screenErr    error
}

// AnalyzeRole implements Assistant.
func (f *fakeAssistant) AnalyzeRole(_ context.Context, _ string) (*models.RoleRequirements, error) {
	return f.requirements, nil
}

// GenerateQuestions implements Assistant.
func (f *fakeAssistant) GenerateQuestions(_ context.Context, _ *models.RoleRequirements) (*models.InterviewQuestions, error) {
	return f.questions, nil
}

// ScreenResume implements Assistant.
func (f *fakeAssistant) ScreenResume(_ context.Context, _ *models.RoleRequirements, _ string) (*models.ScreeningVerdict, error) {
	if f.screenErr != nil {
		return nil, f.screenErr
	}
	verdict := *f.verdict
	return &verdict, nil
}

type textExtractor struct{}

// Extract implements screening.TextExtractor.
func (textExtractor) Extract(data []byte) (string, error) {
	return string(data), nil
}

func defaultAssistant() *fakeAssistant {
	return &fakeAssistant{
		requirements: &models.RoleRequirements{
			KeyResponsibilities: []string{"Ship services"},
			TechnicalSkills:     []string{"Go", "PostgreSQL"},
			SoftSkills:          []string{"Communication"},
		},
		questions: &models.InterviewQuestions{
			QuestionCategories: []models.QuestionCategory{
				{Category: models.CategoryBehavioral, Questions: []string{"Tell me about a conflict."}},
			},
		},
		verdict: &models.ScreeningVerdict{
			Summary:        "Solid backend background",
			Strengths:      []string{"Go"},
			MatchingSkills: []string{"Go"},
			MatchScore:     82,
			Recommendation: models.RecommendInterview,
		},
	}
}

func newTestService(t *testing.T, store *memStorage) AnalysisService {
	t.Helper()
	svc, err := NewAnalysisService(store, defaultAssistant(), textExtractor{}, 2, nil)
	require.NoError(t, err)
	return svc
}

func resumeUpload(name, text string) models.ResumeFile {
	return models.ResumeFile{
		Name:      name,
		MediaType: "application/pdf",
		Content:   base64.StdEncoding.EncodeToString([]byte(text)),
	}
}

func TestAnalysisCreateAndList(t *testing.T) {
	store := &memStorage{}
	svc := newTestService(t, store)

	created, err := svc.Create("Backend Engineer", "Build Go services")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Backend Engineer", created.RoleTitle)
	assert.False(t, created.CreatedAt.IsZero())

	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Zero(t, list[0].Resumes)

	// Creation is persisted immediately.
	saved := store.last()
	require.Len(t, saved, 1)
	assert.Equal(t, created.ID, saved[0].ID)
}

func TestAnalysisGetUnknownID(t *testing.T) {
	svc := newTestService(t, &memStorage{})

	_, err := svc.Get(uuid.New())
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestAnalysisDelete(t *testing.T) {
	store := &memStorage{}
	svc := newTestService(t, store)

	created, err := svc.Create("Role", "desc")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(created.ID))
	assert.ErrorIs(t, svc.Delete(created.ID), ErrAnalysisNotFound)
	assert.Empty(t, svc.List())
	assert.Empty(t, store.last())
}

func TestAnalyzeRoleStoresRequirements(t *testing.T) {
	store := &memStorage{}
	svc := newTestService(t, store)
	created, err := svc.Create("Role", "desc")
	require.NoError(t, err)

	requirements, err := svc.AnalyzeRole(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, requirements.TechnicalSkills)

	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RoleAnalysis)
	assert.Equal(t, requirements, got.RoleAnalysis)
}

func TestGenerateQuestionsRequiresRoleAnalysis(t *testing.T) {
	svc := newTestService(t, &memStorage{})
	created, err := svc.Create("Role", "desc")
	require.NoError(t, err)

	_, err = svc.GenerateQuestions(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNoRoleAnalysis)

	_, err = svc.AnalyzeRole(context.Background(), created.ID)
	require.NoError(t, err)

	questions, err := svc.GenerateQuestions(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, questions.QuestionCategories, 1)
	assert.Equal(t, models.CategoryBehavioral, questions.QuestionCategories[0].Category)
}

func TestScreenAllEndToEnd(t *testing.T) {
	store := &memStorage{}
	svc := newTestService(t, store)
	created, err := svc.Create("Role", "desc")
	require.NoError(t, err)

	ids, err := svc.IngestResumes(created.ID, []models.ResumeFile{
		resumeUpload("alice.pdf", "alice resume text"),
		resumeUpload("bob.pdf", "bob resume text"),
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	svc.Wait()

	// Screening before role analysis is rejected.
	_, err = svc.ScreenAll(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNoRoleAnalysis)

	_, err = svc.AnalyzeRole(context.Background(), created.ID)
	require.NoError(t, err)

	n, err := svc.ScreenAll(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, screeningNow, err := svc.Resumes(created.ID, screening.DefaultSortConfig())
	require.NoError(t, err)
	assert.False(t, screeningNow)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, models.StatusCompleted, item.Status)
		require.NotNil(t, item.Verdict)
		assert.Equal(t, 82, item.Verdict.MatchScore)
	}

	// Terminal states are persisted with the analysis.
	saved := store.last()
	require.Len(t, saved, 1)
	require.Len(t, saved[0].ScreenedResumes, 2)
	assert.Equal(t, models.StatusCompleted, saved[0].ScreenedResumes[0].Status)
}

func TestRemoveAndClearResumes(t *testing.T) {
	svc := newTestService(t, &memStorage{})
	created, err := svc.Create("Role", "desc")
	require.NoError(t, err)

	ids, err := svc.IngestResumes(created.ID, []models.ResumeFile{
		resumeUpload("a.pdf", "a"),
		resumeUpload("b.pdf", "b"),
	})
	require.NoError(t, err)
	svc.Wait()

	require.NoError(t, svc.RemoveResume(created.ID, ids[0]))
	assert.ErrorIs(t, svc.RemoveResume(created.ID, ids[0]), ErrResumeNotFound)

	items, _, err := svc.Resumes(created.ID, screening.DefaultSortConfig())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, ids[1], items[0].ID)

	require.NoError(t, svc.ClearResumes(created.ID))
	items, _, err = svc.Resumes(created.ID, screening.DefaultSortConfig())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExportReturnsOnlyCompleted(t *testing.T) {
	svc := newTestService(t, &memStorage{})
	created, err := svc.Create("Role", "desc")
	require.NoError(t, err)

	rows, err := svc.Export(created.ID, screening.DefaultSortConfig())
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = svc.IngestResumes(created.ID, []models.ResumeFile{resumeUpload("a.pdf", "text")})
	require.NoError(t, err)
	svc.Wait()
	_, err = svc.AnalyzeRole(context.Background(), created.ID)
	require.NoError(t, err)
	_, err = svc.ScreenAll(context.Background(), created.ID)
	require.NoError(t, err)

	rows, err = svc.Export(created.ID, screening.DefaultSortConfig())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a.pdf", rows[0].FileName)
	assert.Equal(t, 82, rows[0].MatchScore)
}

func TestServiceLoadsPersistedAnalyses(t *testing.T) {
	analysisID := uuid.New()
	resume := &models.ScreeningItem{
		ID:     uuid.New(),
		File:   models.ResumeFile{Name: "kept.pdf", MediaType: "application/pdf"},
		Text:   "kept text",
		Status: models.StatusReady,
	}
	store := &memStorage{seed: []*models.Analysis{{
		ID:              analysisID,
		RoleTitle:       "Restored Role",
		RoleDescription: "desc",
		ScreenedResumes: []*models.ScreeningItem{resume},
	}}}

	svc := newTestService(t, store)

	got, err := svc.Get(analysisID)
	require.NoError(t, err)
	assert.Equal(t, "Restored Role", got.RoleTitle)
	require.Len(t, got.ScreenedResumes, 1)
	assert.Equal(t, resume.ID, got.ScreenedResumes[0].ID)
	assert.Equal(t, models.StatusReady, got.ScreenedResumes[0].Status)
}

func TestDeleteDetachesPersistenceHook(t *testing.T) {
	store := &memStorage{}
	svc := newTestService(t, store)
	created, err := svc.Create("Role", "desc")
	require.NoError(t, err)

	_, err = svc.IngestResumes(created.ID, []models.ResumeFile{resumeUpload("a.pdf", "text")})
	require.NoError(t, err)
	svc.Wait()

	require.NoError(t, svc.Delete(created.ID))
	saves := store.saveCount()

	// A stale late mutation after delete must not trigger another save.
	svc.Wait()
	assert.Equal(t, saves, store.saveCount())
}
