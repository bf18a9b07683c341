package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleRequirements is the rubric extracted from a job description. It is
// consumed read-only by question generation and resume screening.
type RoleRequirements struct {
	KeyResponsibilities []string `json:"keyResponsibilities"`
	TechnicalSkills     []string `json:"technicalSkills"`
	SoftSkills          []string `json:"softSkills"`
}

type QuestionCategoryName string

const (
	CategoryBehavioral  QuestionCategoryName = "Behavioral"
	CategoryTechnical   QuestionCategoryName = "Technical"
	CategorySituational QuestionCategoryName = "Situational"
)

type QuestionCategory struct {
	Category  QuestionCategoryName `json:"category"`
	Questions []string             `json:"questions"`
}

type InterviewQuestions struct {
	QuestionCategories []QuestionCategory `json:"questionCategories"`
}

// Analysis is one hiring workflow: a role description, its extracted
// requirements, generated interview questions, and the screened resumes.
type Analysis struct {
	ID                 uuid.UUID           `json:"id"`
	RoleTitle          string              `json:"roleTitle"`
	CreatedAt          time.Time           `json:"createdAt"`
	RoleDescription    string              `json:"roleDescription"`
	RoleAnalysis       *RoleRequirements   `json:"roleAnalysis"`
	InterviewQuestions *InterviewQuestions `json:"interviewQuestions"`
	ScreenedResumes    []*ScreeningItem    `json:"screenedResumes"`
}
