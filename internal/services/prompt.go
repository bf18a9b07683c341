package services

import (
	"fmt"
	"strings"

	"hiringdesk/hiring-assistant/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildRoleAnalysisPrompt creates the prompt for extracting requirements from
// a job description.
func (pb *PromptBuilder) BuildRoleAnalysisPrompt(description string) string {
	return fmt.Sprintf(`You are an expert HR analyst. Analyze the following job description. Extract the key responsibilities, required technical skills, and required soft skills.

Job Description:
%s`, description)
}

// BuildQuestionsPrompt creates the prompt for generating interview questions
// from a role analysis.
func (pb *PromptBuilder) BuildQuestionsPrompt(requirements *models.RoleRequirements) string {
	return fmt.Sprintf(`Based on the following role analysis, generate a list of 12-15 interview questions. Categorize them into 'Behavioral', 'Technical', and 'Situational'.

Role Requirements:
- Key Responsibilities: %s
- Technical Skills: %s
- Soft Skills: %s`,
		strings.Join(requirements.KeyResponsibilities, ", "),
		strings.Join(requirements.TechnicalSkills, ", "),
		strings.Join(requirements.SoftSkills, ", "))
}

// BuildScreeningPrompt creates the prompt for screening one resume against
// the role requirements.
func (pb *PromptBuilder) BuildScreeningPrompt(requirements *models.RoleRequirements, resumeText string) string {
	return fmt.Sprintf(`You are an expert technical recruiter. Screen the following resume against the provided job requirements.

**Job Requirements:**
- Key Responsibilities: %s
- Required Technical Skills: %s
- Required Soft Skills: %s

**Candidate's Resume:**
%s

Provide a detailed analysis in the specified JSON format. The matchScore should be a numerical value from 0 to 100 based on how well the candidate's experience and skills align with the job requirements.`,
		strings.Join(requirements.KeyResponsibilities, ", "),
		strings.Join(requirements.TechnicalSkills, ", "),
		strings.Join(requirements.SoftSkills, ", "),
		resumeText)
}
