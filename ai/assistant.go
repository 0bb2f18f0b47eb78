package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SRIDEV20/AI-powered-interview-simulator/logger"
	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"go.uber.org/zap"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultMaxLogLength = 300
)

// Prompt is a single generation request.
type Prompt struct {
	System          string
	User            string
	Temperature     float32
	MaxOutputTokens int32
}

// TextGenerator turns a prompt into raw model text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Model() string
}

// Assistant implements Collaborator on top of a TextGenerator. It owns the
// prompts and the decoding of the model's JSON replies.
type Assistant struct {
	generator TextGenerator
	timeout   time.Duration
	logger    *zap.Logger
	maxLogLen int
}

func NewAssistant(generator TextGenerator, timeout time.Duration, log *zap.Logger) *Assistant {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{
		generator: generator,
		timeout:   timeout,
		logger:    log.With(zap.String("ai_model", generator.Model())),
		maxLogLen: defaultMaxLogLength,
	}
}

func (a *Assistant) generate(ctx context.Context, call string, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	raw, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error("Failed to generate content", zap.String("call", call), zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return "", fmt.Errorf("%s: %w", call, err)
	}

	a.logger.Debug("generate content response",
		zap.String("call", call),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)
	return raw, nil
}

type generatedQuestionPayload struct {
	Question       string     `json:"question"`
	QuestionText   string     `json:"question_text"`
	Type           string     `json:"type"`
	SkillCategory  string     `json:"skill_category"`
	Difficulty     string     `json:"difficulty"`
	ExpectedPoints stringList `json:"expected_points"`
}

// GenerateQuestions asks for req.Count questions. The model may return fewer;
// the caller receives whatever came back.
func (a *Assistant) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error) {
	raw, err := a.generate(ctx, "generate_questions", questionPrompt(req))
	if err != nil {
		return nil, err
	}

	var payload []generatedQuestionPayload
	if err := decode(raw, &payload); err != nil {
		// some models wrap the array as {"questions": [...]}
		var wrapped struct {
			Questions []generatedQuestionPayload `json:"questions"`
		}
		if werr := decode(raw, &wrapped); werr != nil || wrapped.Questions == nil {
			return nil, err
		}
		payload = wrapped.Questions
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: no questions returned", ErrMalformedOutput)
	}

	questions := make([]GeneratedQuestion, 0, len(payload))
	for i, p := range payload {
		text := strings.TrimSpace(p.Question)
		if text == "" {
			text = strings.TrimSpace(p.QuestionText)
		}
		if text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrMalformedOutput, i+1)
		}

		qt, err := models.ParseQuestionType(p.Type)
		if err != nil {
			qt = ""
		}

		questions = append(questions, GeneratedQuestion{
			Text:           text,
			Type:           qt,
			SkillCategory:  strings.TrimSpace(p.SkillCategory),
			Difficulty:     strings.ToLower(strings.TrimSpace(p.Difficulty)),
			ExpectedPoints: []string(p.ExpectedPoints),
		})
	}

	a.logger.Info("Questions generated",
		zap.String("job_role", req.JobRole),
		zap.Int("requested", req.Count),
		zap.Int("returned", len(questions)),
	)
	return questions, nil
}

type evaluationPayload struct {
	Score             *json.Number `json:"score"`
	Feedback          string       `json:"feedback"`
	Strengths         stringList   `json:"strengths"`
	Improvements      stringList   `json:"improvements"`
	KeywordsMentioned stringList   `json:"keywords_mentioned"`
	Keywords          stringList   `json:"keywords"`
}

// EvaluateAnswer scores one answer. A missing or out of range score is
// treated as malformed output.
func (a *Assistant) EvaluateAnswer(ctx context.Context, req EvaluationRequest) (*Evaluation, error) {
	raw, err := a.generate(ctx, "evaluate_answer", evaluationPrompt(req))
	if err != nil {
		return nil, err
	}

	var payload evaluationPayload
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}
	if payload.Score == nil {
		return nil, fmt.Errorf("%w: evaluation has no score", ErrMalformedOutput)
	}
	score, err := payload.Score.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: score %q is not a number", ErrMalformedOutput, payload.Score.String())
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: score %v out of range", ErrMalformedOutput, score)
	}

	keywords := payload.KeywordsMentioned
	if len(keywords) == 0 {
		keywords = payload.Keywords
	}

	return &Evaluation{
		Score:        models.RoundScore(score),
		Feedback:     strings.TrimSpace(payload.Feedback),
		Strengths:    nonNilStrings(payload.Strengths),
		Improvements: nonNilStrings(payload.Improvements),
		Keywords:     nonNilStrings(keywords),
	}, nil
}

func (a *Assistant) Summarize(ctx context.Context, req SummaryRequest) (*Summary, error) {
	prompt, err := summaryPrompt(req)
	if err != nil {
		return nil, err
	}
	raw, err := a.generate(ctx, "summarize", prompt)
	if err != nil {
		return nil, err
	}

	var payload struct {
		OverallSummary  string     `json:"overall_summary"`
		TopStrengths    stringList `json:"top_strengths"`
		TopImprovements stringList `json:"top_improvements"`
	}
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}
	summary := strings.TrimSpace(payload.OverallSummary)
	if summary == "" {
		return nil, fmt.Errorf("%w: summary is empty", ErrMalformedOutput)
	}

	return &Summary{
		OverallSummary:  summary,
		TopStrengths:    nonNilStrings(payload.TopStrengths),
		TopImprovements: nonNilStrings(payload.TopImprovements),
	}, nil
}

// Recommend returns recommendation text keyed by skill name. Skills the model
// skipped are simply absent from the map.
func (a *Assistant) Recommend(ctx context.Context, req RecommendationRequest) (map[string]string, error) {
	prompt, err := recommendationPrompt(req)
	if err != nil {
		return nil, err
	}
	raw, err := a.generate(ctx, "recommend", prompt)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Recommendations map[string]string `json:"recommendations"`
	}
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(payload.Recommendations))
	for skill, text := range payload.Recommendations {
		skill = strings.TrimSpace(skill)
		text = strings.TrimSpace(text)
		if skill == "" || text == "" {
			continue
		}
		out[skill] = text
	}
	return out, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
