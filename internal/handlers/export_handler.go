package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"hiringdesk/hiring-assistant/internal/screening"
	"hiringdesk/hiring-assistant/internal/services"
)

type ExportHandler struct {
	svc services.AnalysisService
}

func NewExportHandler(svc services.AnalysisService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// HandleExport handles GET /analyses/:id/export?format=csv|json|xlsx.
// With zero completed screenings there is nothing to export and the handler
// answers 204.
func (h *ExportHandler) HandleExport(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	rows, err := h.svc.Export(id, sortConfigFromQuery(c))
	if err != nil {
		return analysisError(c, err)
	}
	if len(rows) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}

	var buf bytes.Buffer
	switch c.Query("format", "csv") {
	case "csv":
		if err := screening.WriteCSV(&buf, rows); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="resume_screening_export.csv"`)
	case "json":
		if err := screening.WriteJSON(&buf, rows); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="resume_screening_export.json"`)
	case "xlsx":
		if err := screening.WriteXLSX(&buf, rows); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="resume_screening_export.xlsx"`)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "Unsupported export format")
	}

	return c.Send(buf.Bytes())
}
