package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hiringdesk/hiring-assistant/internal/models"
	"hiringdesk/hiring-assistant/internal/screening"
	"hiringdesk/hiring-assistant/internal/services"
)

const mimePDF = "application/pdf"

type ScreeningHandler struct {
	svc         services.AnalysisService
	maxFileSize int64
	logger      *zap.Logger
}

func NewScreeningHandler(svc services.AnalysisService, maxFileSize int64, logger *zap.Logger) *ScreeningHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreeningHandler{
		svc:         svc,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// HandleUploadResumes handles POST /analyses/:id/resumes. Only PDF files are
// accepted; anything else is filtered out before ingestion and reported back
// in the response.
func (h *ScreeningHandler) HandleUploadResumes(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	uploads := form.File["resumes"]
	if len(uploads) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files uploaded. Please upload one or more 'resumes' as PDF files.",
		})
	}

	var files []models.ResumeFile
	var skipped []string
	for _, upload := range uploads {
		if !isPDF(upload.Filename, upload.Header.Get("Content-Type")) {
			skipped = append(skipped, upload.Filename)
			continue
		}
		if upload.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("File %s too large. Max size: %d bytes", upload.Filename, h.maxFileSize),
			})
		}

		src, err := upload.Open()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to open uploaded file %s: %v", upload.Filename, err),
			})
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to read uploaded file %s: %v", upload.Filename, err),
			})
		}

		files = append(files, models.ResumeFile{
			Name:      upload.Filename,
			MediaType: mimePDF,
			Content:   base64.StdEncoding.EncodeToString(data),
		})
	}

	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No valid PDF files uploaded",
		})
	}

	ids, err := h.svc.IngestResumes(id, files)
	if err != nil {
		return analysisError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResumesResponse{
		Ingested: len(ids),
		Skipped:  skipped,
		IDs:      ids,
	})
}

// HandleListResumes handles GET /analyses/:id/resumes
func (h *ScreeningHandler) HandleListResumes(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	resumes, inFlight, err := h.svc.Resumes(id, sortConfigFromQuery(c))
	if err != nil {
		return analysisError(c, err)
	}

	return c.JSON(models.ResumeListResponse{
		Screening: inFlight,
		Resumes:   resumes,
	})
}

// HandleScreen handles POST /analyses/:id/resumes/screen. The precondition is
// checked synchronously; the batch itself runs in the background and the
// resume list exposes per-item progress.
func (h *ScreeningHandler) HandleScreen(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	analysis, err := h.svc.Get(id)
	if err != nil {
		return analysisError(c, err)
	}
	if analysis.RoleAnalysis == nil {
		return analysisError(c, services.ErrNoRoleAnalysis)
	}

	ready := 0
	for _, resume := range analysis.ScreenedResumes {
		if resume.Status == models.StatusReady && resume.Text != "" {
			ready++
		}
	}

	go func() {
		if _, err := h.svc.ScreenAll(context.Background(), id); err != nil {
			h.logger.Error("screening batch failed to start", zap.String("analysis", id.String()), zap.Error(err))
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(models.ScreenResponse{
		Status:   "screening",
		Selected: ready,
	})
}

// HandleRemoveResume handles DELETE /analyses/:id/resumes/:resumeID
func (h *ScreeningHandler) HandleRemoveResume(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	resumeID, err := uuid.Parse(c.Params("resumeID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid resume ID format")
	}

	if err := h.svc.RemoveResume(id, resumeID); err != nil {
		return analysisError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleClearResumes handles DELETE /analyses/:id/resumes
func (h *ScreeningHandler) HandleClearResumes(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	if err := h.svc.ClearResumes(id); err != nil {
		return analysisError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func isPDF(filename, contentType string) bool {
	if strings.ToLower(filepath.Ext(filename)) == ".pdf" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(contentType), mimePDF)
}

func sortConfigFromQuery(c *fiber.Ctx) screening.SortConfig {
	cfg := screening.DefaultSortConfig()
	if key := c.Query("sort"); key != "" {
		cfg.Key = screening.SortKey(key)
	}
	if direction := c.Query("direction"); direction == string(screening.SortAscending) {
		cfg.Direction = screening.SortAscending
	}
	return cfg
}
