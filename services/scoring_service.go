package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/SRIDEV20/AI-powered-interview-simulator/ai"
	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	"go.uber.org/zap"
)

const (
	summaryQuestionRunes = 100
	summaryTopItems      = 2
)

type ScoringService struct {
	repo   *repository.GORMRepository
	ai     ai.Collaborator
	events events.Publisher
	logger *zap.Logger
}

func NewScoringService(repo *repository.GORMRepository, collaborator ai.Collaborator, publisher events.Publisher, logger *zap.Logger) *ScoringService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{
		repo:   repo,
		ai:     collaborator,
		events: publisher,
		logger: logger.Named("scoring"),
	}
}

type Performance struct {
	Level   models.PerformanceLevel `json:"level"`
	Label   string                  `json:"label"`
	Message string                  `json:"message"`
	Color   string                  `json:"color"`
}

type CategoryScore struct {
	Category       models.QuestionType `json:"category"`
	AverageScore   float64             `json:"average_score"`
	TotalQuestions int                 `json:"total_questions"`
	Answered       int                 `json:"answered"`
}

type QuestionScore struct {
	QuestionID   string              `json:"question_id"`
	QuestionText string              `json:"question_text"`
	QuestionType models.QuestionType `json:"question_type"`
	OrderIndex   int                 `json:"order_index"`
	Score        *float64            `json:"score"`
	Feedback     *string             `json:"feedback"`
	Strengths    []string            `json:"strengths"`
	Improvements []string            `json:"improvements"`
	Answered     bool                `json:"answered"`
}

type ScoreReport struct {
	InterviewID     string               `json:"interview_id"`
	JobRole         string               `json:"job_role"`
	Difficulty      models.Difficulty    `json:"difficulty"`
	Status          models.SessionStatus `json:"status"`
	OverallScore    *float64             `json:"overall_score"`
	Performance     *Performance         `json:"performance,omitempty"`
	TotalQuestions  int                  `json:"total_questions"`
	Answered        int                  `json:"answered"`
	Skipped         int                  `json:"skipped"`
	CompletionRate  float64              `json:"completion_rate"`
	CategoryScores  []CategoryScore      `json:"category_scores"`
	QuestionScores  []QuestionScore      `json:"question_scores"`
	OverallSummary  *string              `json:"overall_summary"`
	TopStrengths    []string             `json:"top_strengths"`
	TopImprovements []string             `json:"top_improvements"`
	CreatedAt       time.Time            `json:"created_at"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
}

var performanceLevels = map[models.PerformanceLevel]Performance{
	models.PerformanceExcellent: {
		Level:   models.PerformanceExcellent,
		Label:   "Excellent! 🌟",
		Message: "Outstanding performance! You demonstrated strong knowledge and clear communication.",
		Color:   "green",
	},
	models.PerformanceGood: {
		Level:   models.PerformanceGood,
		Label:   "Good 👍",
		Message: "Good performance! You showed solid understanding with some areas to improve.",
		Color:   "blue",
	},
	models.PerformanceAverage: {
		Level:   models.PerformanceAverage,
		Label:   "Average 📈",
		Message: "Average performance. Focus on the improvement areas to boost your score.",
		Color:   "yellow",
	},
	models.PerformancePoor: {
		Level:   models.PerformancePoor,
		Label:   "Needs Work 💪",
		Message: "Keep practicing! Review the key concepts and try again.",
		Color:   "red",
	},
}

// PerformanceFor maps an overall score onto its rating.
func PerformanceFor(score float64) Performance {
	return performanceLevels[models.ClassifyPerformance(score)]
}

// CompletionRate is answered/total as a percentage with two decimals.
func CompletionRate(answered, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(answered)/float64(total)*100*100) / 100
}

// Compute recomputes and stores the overall score, then derives the full
// breakdown. A failed summary call falls back to a templated summary.
func (s *ScoringService) Compute(ctx context.Context, p Principal, sessionID string, includeSummary bool) (*ScoreReport, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	if _, err := loadSession(ctx, s.repo, p, sessionID); err != nil {
		return nil, err
	}

	var (
		session   *models.InterviewSession
		questions []models.Question
		responses []models.Response
	)
	err := s.repo.Transaction(ctx, func(tx *repository.GORMRepository) error {
		var err error
		session, err = tx.LockInterviewSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to lock interview: %w", err)
		}
		if session == nil {
			return notFound("interview %s not found", sessionID)
		}
		if session.OverallScore, err = tx.UpdateOverallScore(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to update overall score: %w", err)
		}
		if questions, err = tx.GetQuestions(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to get questions: %w", err)
		}
		if responses, err = tx.GetResponses(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to get responses: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := buildScoreReport(session, questions, responses)

	if includeSummary && report.Answered > 0 {
		s.attachSummary(ctx, session, report)
	}

	s.logger.Info("Score computed",
		zap.String("session_id", session.ID),
		zap.Int("answered", report.Answered),
		zap.Int("total", report.TotalQuestions),
	)
	events.Emit(ctx, s.events, s.logger, events.New(events.ScoreComputed, p.ID, session.ID, map[string]interface{}{
		"overall_score":   report.OverallScore,
		"completion_rate": report.CompletionRate,
	}))
	return report, nil
}

func buildScoreReport(session *models.InterviewSession, questions []models.Question, responses []models.Response) *ScoreReport {
	byQuestion := responsesByQuestion(responses)

	report := &ScoreReport{
		InterviewID:     session.ID,
		JobRole:         session.JobRole,
		Difficulty:      session.Difficulty,
		Status:          session.Status,
		OverallScore:    session.OverallScore,
		TotalQuestions:  len(questions),
		CategoryScores:  []CategoryScore{},
		QuestionScores:  make([]QuestionScore, 0, len(questions)),
		TopStrengths:    []string{},
		TopImprovements: []string{},
		CreatedAt:       session.CreatedAt,
		CompletedAt:     session.CompletedAt,
	}

	type bucket struct {
		sum      float64
		total    int
		answered int
	}
	var order []models.QuestionType
	buckets := make(map[models.QuestionType]*bucket)

	for _, q := range questions {
		b, ok := buckets[q.Type]
		if !ok {
			b = &bucket{}
			buckets[q.Type] = b
			order = append(order, q.Type)
		}
		b.total++

		item := QuestionScore{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			QuestionType: q.Type,
			OrderIndex:   q.OrderIndex,
			Strengths:    []string{},
			Improvements: []string{},
		}
		if r, ok := byQuestion[q.ID]; ok {
			report.Answered++
			item.Answered = true
			item.Score = r.Score
			feedback := r.Feedback
			item.Feedback = &feedback
			item.Strengths = r.Strengths
			item.Improvements = r.Improvements
			if r.Score != nil {
				b.sum += *r.Score
				b.answered++
			}
		}
		report.QuestionScores = append(report.QuestionScores, item)
	}

	for _, t := range order {
		b := buckets[t]
		avg := 0.0
		if b.answered > 0 {
			avg = models.RoundScore(b.sum / float64(b.answered))
		}
		report.CategoryScores = append(report.CategoryScores, CategoryScore{
			Category:       t,
			AverageScore:   avg,
			TotalQuestions: b.total,
			Answered:       b.answered,
		})
	}

	report.Skipped = report.TotalQuestions - report.Answered
	report.CompletionRate = CompletionRate(report.Answered, report.TotalQuestions)
	if report.OverallScore != nil {
		perf := PerformanceFor(*report.OverallScore)
		report.Performance = &perf
	}
	return report
}

func (s *ScoringService) attachSummary(ctx context.Context, session *models.InterviewSession, report *ScoreReport) {
	overall := 0.0
	if report.OverallScore != nil {
		overall = *report.OverallScore
	}

	req := ai.SummaryRequest{
		JobRole:      session.JobRole,
		Difficulty:   session.Difficulty,
		OverallScore: overall,
		Results:      condenseResults(report.QuestionScores),
	}
	summary, err := s.ai.Summarize(ctx, req)
	if err != nil {
		s.logger.Warn("Failed to generate summary, using template", zap.String("session_id", session.ID), zap.Error(err))
		summary = fallbackSummary(overall)
	}

	text := summary.OverallSummary
	report.OverallSummary = &text
	report.TopStrengths = cleanList(summary.TopStrengths)
	report.TopImprovements = cleanList(summary.TopImprovements)
}

func condenseResults(scores []QuestionScore) []ai.QuestionResult {
	out := make([]ai.QuestionResult, 0, len(scores))
	for _, q := range scores {
		if !q.Answered {
			continue
		}
		out = append(out, ai.QuestionResult{
			Question:     truncateRunes(q.QuestionText, summaryQuestionRunes),
			Score:        q.Score,
			Strengths:    firstN(q.Strengths, summaryTopItems),
			Improvements: firstN(q.Improvements, summaryTopItems),
		})
	}
	return out
}

func fallbackSummary(overall float64) *ai.Summary {
	return &ai.Summary{
		OverallSummary:  fmt.Sprintf("Interview completed with an overall score of %.1f/100.", overall),
		TopStrengths:    []string{"Completed the interview"},
		TopImprovements: []string{"Review answers for improvement areas"},
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func firstN(in []string, n int) []string {
	if len(in) <= n {
		return append([]string{}, in...)
	}
	return append([]string{}, in[:n]...)
}
