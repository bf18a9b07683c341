package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"hiringdesk/hiring-assistant/internal/models"
)

// Assistant is the AI collaborator behind role analysis, question generation,
// and resume screening. Each call returns a fully populated result or an
// error; partial responses are rejected.
type Assistant interface {
	AnalyzeRole(ctx context.Context, description string) (*models.RoleRequirements, error)
	GenerateQuestions(ctx context.Context, requirements *models.RoleRequirements) (*models.InterviewQuestions, error)
	ScreenResume(ctx context.Context, requirements *models.RoleRequirements, resumeText string) (*models.ScreeningVerdict, error)
}

type geminiService struct {
	client        *genai.Client
	modelName     string
	promptBuilder *PromptBuilder
	logger        *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (Assistant, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:        client,
		modelName:     modelName,
		promptBuilder: NewPromptBuilder(),
		logger:        logger,
	}, nil
}

var roleAnalysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"keyResponsibilities": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "List of key responsibilities for the role.",
		},
		"technicalSkills": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "List of essential technical skills (e.g., programming languages, frameworks, tools).",
		},
		"softSkills": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "List of important soft skills (e.g., communication, teamwork, problem-solving).",
		},
	},
	Required: []string{"keyResponsibilities", "technicalSkills", "softSkills"},
}

var interviewQuestionsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"questionCategories": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category": {
						Type:        genai.TypeString,
						Enum:        []string{"Behavioral", "Technical", "Situational"},
						Description: "The category of the interview questions.",
					},
					"questions": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "A list of questions for this category.",
					},
				},
				Required: []string{"category", "questions"},
			},
		},
	},
	Required: []string{"questionCategories"},
}

var screeningSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {
			Type:        genai.TypeString,
			Description: "A brief two-sentence summary of the candidate's profile.",
		},
		"strengths": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of key strengths that align with the job requirements.",
		},
		"weaknesses": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of potential gaps or areas where the candidate lacks experience based on the requirements.",
		},
		"matchingSkills": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of required skills the candidate demonstrably has.",
		},
		"matchScore": {
			Type:        genai.TypeInteger,
			Description: "A score from 0 to 100 representing how well the resume matches the job description.",
		},
		"recommendation": {
			Type: genai.TypeString,
			Enum: []string{
				string(models.RecommendStrongInterview),
				string(models.RecommendInterview),
				string(models.RecommendReservations),
				string(models.RecommendNotFit),
			},
			Description: "A final recommendation for the candidate.",
		},
	},
	Required: []string{"summary", "strengths", "weaknesses", "matchingSkills", "matchScore", "recommendation"},
}

// AnalyzeRole implements Assistant.
func (g *geminiService) AnalyzeRole(ctx context.Context, description string) (*models.RoleRequirements, error) {
	prompt := g.promptBuilder.BuildRoleAnalysisPrompt(description)

	var requirements models.RoleRequirements
	if err := g.generateJSON(ctx, prompt, roleAnalysisSchema, &requirements); err != nil {
		return nil, fmt.Errorf("failed to analyze role description: %w", err)
	}

	return &requirements, nil
}

// GenerateQuestions implements Assistant.
func (g *geminiService) GenerateQuestions(ctx context.Context, requirements *models.RoleRequirements) (*models.InterviewQuestions, error) {
	prompt := g.promptBuilder.BuildQuestionsPrompt(requirements)

	var questions models.InterviewQuestions
	if err := g.generateJSON(ctx, prompt, interviewQuestionsSchema, &questions); err != nil {
		return nil, fmt.Errorf("failed to generate interview questions: %w", err)
	}

	return &questions, nil
}

// ScreenResume implements Assistant.
func (g *geminiService) ScreenResume(ctx context.Context, requirements *models.RoleRequirements, resumeText string) (*models.ScreeningVerdict, error) {
	prompt := g.promptBuilder.BuildScreeningPrompt(requirements, resumeText)

	var verdict models.ScreeningVerdict
	if err := g.generateJSON(ctx, prompt, screeningSchema, &verdict); err != nil {
		return nil, fmt.Errorf("failed to screen resume: %w", err)
	}

	if err := verdict.Validate(); err != nil {
		return nil, fmt.Errorf("malformed screening verdict: %w", err)
	}
	if verdict.MatchingSkills == nil {
		verdict.MatchingSkills = []string{}
	}

	return &verdict, nil
}

func (g *geminiService) generateJSON(ctx context.Context, prompt string, schema *genai.Schema, target interface{}) error {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("no response generated")
	}

	text := resp.Text()
	if text == "" {
		// Fall back to assembling candidate parts directly.
		text = collectCandidateText(resp)
	}
	if text == "" {
		g.logger.Warn("gemini returned empty response", zap.String("model", g.modelName))
		return fmt.Errorf("no text content in response")
	}

	if err := json.Unmarshal([]byte(extractJSON(text)), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON response: %w", err)
	}

	return nil
}

func collectCandidateText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(strings.TrimSpace(part.Text))
		}
	}
	return builder.String()
}

// extractJSON tries to extract JSON from text that might contain markdown or
// other formatting.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
