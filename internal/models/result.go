package models

import "github.com/google/uuid"

type CreateAnalysisRequest struct {
	RoleTitle       string `json:"role_title"`
	RoleDescription string `json:"role_description"`
}

type AnalysisSummary struct {
	ID        uuid.UUID `json:"id"`
	RoleTitle string    `json:"roleTitle"`
	CreatedAt string    `json:"createdAt"`
	Resumes   int       `json:"resumes"`
}

type UploadResumesResponse struct {
	Ingested int         `json:"ingested"`
	Skipped  []string    `json:"skipped,omitempty"`
	IDs      []uuid.UUID `json:"ids"`
}

type ScreenResponse struct {
	Status   string `json:"status"`
	Selected int    `json:"selected"`
}

type ResumeListResponse struct {
	Screening bool            `json:"screening"`
	Resumes   []ScreeningItem `json:"resumes"`
}
