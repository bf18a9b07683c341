package models

import (
	"fmt"

	"github.com/google/uuid"
)

type ScreeningStatus string

const (
	StatusParsing   ScreeningStatus = "parsing"
	StatusReady     ScreeningStatus = "ready"
	StatusScreening ScreeningStatus = "screening"
	StatusCompleted ScreeningStatus = "completed"
	StatusFailed    ScreeningStatus = "failed"
)

type Recommendation string

const (
	RecommendStrongInterview Recommendation = "Strongly Recommend Interview"
	RecommendInterview       Recommendation = "Recommend Interview"
	RecommendReservations    Recommendation = "Consider with Reservations"
	RecommendNotFit          Recommendation = "Not a good fit"
)

// Rank orders recommendations by strength, strongest first.
func (r Recommendation) Rank() int {
	switch r {
	case RecommendStrongInterview:
		return 0
	case RecommendInterview:
		return 1
	case RecommendReservations:
		return 2
	case RecommendNotFit:
		return 3
	default:
		return 4
	}
}

func (r Recommendation) Valid() bool {
	return r.Rank() < 4
}

// ResumeFile is the uploaded document as ingested. Content is the base64
// encoded payload and is never mutated after ingestion.
type ResumeFile struct {
	Name      string `json:"name"`
	MediaType string `json:"type"`
	Content   string `json:"content"`
}

// ScreeningVerdict is the structured output of the scoring service for one
// resume. It is produced atomically, never partially populated.
type ScreeningVerdict struct {
	Summary        string         `json:"summary"`
	Strengths      []string       `json:"strengths"`
	Weaknesses     []string       `json:"weaknesses"`
	MatchingSkills []string       `json:"matchingSkills"`
	MatchScore     int            `json:"matchScore"`
	Recommendation Recommendation `json:"recommendation"`
}

func (v *ScreeningVerdict) Validate() error {
	if v.MatchScore < 0 || v.MatchScore > 100 {
		return fmt.Errorf("match score %d out of range 0-100", v.MatchScore)
	}
	if !v.Recommendation.Valid() {
		return fmt.Errorf("unknown recommendation %q", v.Recommendation)
	}
	return nil
}

// ScreeningItem tracks one candidate document end to end.
//
// Exactly one of verdict/failure reason is set, and only in the matching
// terminal status: Verdict != nil iff status is completed, FailureReason != ""
// iff status is failed. Text is set once extraction succeeds.
type ScreeningItem struct {
	ID            uuid.UUID         `json:"id"`
	File          ResumeFile        `json:"file"`
	Text          string            `json:"text,omitempty"`
	Status        ScreeningStatus   `json:"status"`
	Verdict       *ScreeningVerdict `json:"result,omitempty"`
	FailureReason string            `json:"error,omitempty"`
}
