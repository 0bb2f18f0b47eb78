package ai

import (
	"context"
	"errors"

	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
)

// ErrMalformedOutput is returned when generated text cannot be decoded into
// the expected shape, even after stripping wrapping such as code fences.
var ErrMalformedOutput = errors.New("malformed model output")

// Collaborator is the text generation service the interview core consumes.
// Every call blocks until the model answers or the call times out.
type Collaborator interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error)
	EvaluateAnswer(ctx context.Context, req EvaluationRequest) (*Evaluation, error)
	Summarize(ctx context.Context, req SummaryRequest) (*Summary, error)
	Recommend(ctx context.Context, req RecommendationRequest) (map[string]string, error)
}

type QuestionRequest struct {
	JobRole    string
	Difficulty models.Difficulty
	Count      int
	Mix        models.QuestionMix
}

// GeneratedQuestion is one question as the model produced it. Type is empty
// when the model returned no type or one we do not recognise.
type GeneratedQuestion struct {
	Text           string
	Type           models.QuestionType
	SkillCategory  string
	Difficulty     string
	ExpectedPoints []string
}

type EvaluationRequest struct {
	Question       string
	Answer         string
	ExpectedPoints []string
	JobRole        string
	Difficulty     models.Difficulty
}

type Evaluation struct {
	Score        float64
	Feedback     string
	Strengths    []string
	Improvements []string
	Keywords     []string
}

// QuestionResult is the condensed view of an answered question sent for summarization.
type QuestionResult struct {
	Question     string   `json:"question"`
	Score        *float64 `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

type SummaryRequest struct {
	JobRole      string
	Difficulty   models.Difficulty
	OverallScore float64
	Results      []QuestionResult
}

type Summary struct {
	OverallSummary  string   `json:"overall_summary"`
	TopStrengths    []string `json:"top_strengths"`
	TopImprovements []string `json:"top_improvements"`
}

type SkillScore struct {
	Skill string                  `json:"skill"`
	Score float64                 `json:"score"`
	Level models.ProficiencyLevel `json:"level"`
}

type RecommendationRequest struct {
	JobRole string
	Skills  []SkillScore
}
