package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SRIDEV20/AI-powered-interview-simulator/ai"
	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	"go.uber.org/zap"
)

const maxAnswerLength = 5000

// EvaluationService scores answers and keeps the session's overall score in
// step with its responses.
type EvaluationService struct {
	repo   *repository.GORMRepository
	ai     ai.Collaborator
	events events.Publisher
	logger *zap.Logger
}

func NewEvaluationService(repo *repository.GORMRepository, collaborator ai.Collaborator, publisher events.Publisher, logger *zap.Logger) *EvaluationService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{
		repo:   repo,
		ai:     collaborator,
		events: publisher,
		logger: logger.Named("evaluation"),
	}
}

type SubmitAnswerInput struct {
	Answer    string
	TimeTaken *int // seconds
}

type AnswerResult struct {
	ResponseID   string    `json:"response_id"`
	InterviewID  string    `json:"interview_id"`
	QuestionID   string    `json:"question_id"`
	QuestionText string    `json:"question_text"`
	UserAnswer   string    `json:"user_answer"`
	Score        float64   `json:"score"`
	Feedback     string    `json:"feedback"`
	Strengths    []string  `json:"strengths"`
	Improvements []string  `json:"improvements"`
	Keywords     []string  `json:"keywords_mentioned"`
	TimeTaken    *int      `json:"time_taken_seconds,omitempty"`
	AnsweredAt   time.Time `json:"answered_at"`
	OverallScore *float64  `json:"overall_score"`
}

type QuestionResult struct {
	QuestionID    string              `json:"question_id"`
	QuestionText  string              `json:"question_text"`
	QuestionType  models.QuestionType `json:"question_type"`
	SkillCategory string              `json:"skill_category"`
	OrderIndex    int                 `json:"order_index"`
	Answered      bool                `json:"answered"`
	Response      *models.Response    `json:"response,omitempty"`
}

type InterviewResults struct {
	InterviewID    string               `json:"interview_id"`
	JobRole        string               `json:"job_role"`
	Difficulty     models.Difficulty    `json:"difficulty"`
	Status         models.SessionStatus `json:"status"`
	OverallScore   *float64             `json:"overall_score"`
	TotalQuestions int                  `json:"total_questions"`
	Answered       int                  `json:"answered"`
	Questions      []QuestionResult     `json:"questions"`
	CreatedAt      time.Time            `json:"created_at"`
	CompletedAt    *time.Time           `json:"completed_at,omitempty"`
}

func (in SubmitAnswerInput) validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(in.Answer))
	if n == 0 {
		return invalid("answer must not be empty")
	}
	if n > maxAnswerLength {
		return invalid("answer must be at most %d characters", maxAnswerLength)
	}
	if in.TimeTaken != nil && *in.TimeTaken < 0 {
		return invalid("time_taken must not be negative")
	}
	return nil
}

// Submit evaluates an answer and stores it as the question's only response.
// The model call happens before any lock is taken; the insert and the overall
// score update share one transaction behind the session row lock.
func (s *EvaluationService) Submit(ctx context.Context, p Principal, sessionID, questionID string, in SubmitAnswerInput) (*AnswerResult, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	session, err := loadSession(ctx, s.repo, p, sessionID)
	if err != nil {
		return nil, err
	}
	if err := validateID(questionID, "question"); err != nil {
		return nil, err
	}
	question, err := s.repo.GetQuestion(ctx, session.ID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, notFound("question %s not found in interview %s", questionID, sessionID)
	}

	if err := in.validate(); err != nil {
		return nil, err
	}
	answer := strings.TrimSpace(in.Answer)

	exists, err := s.repo.ResponseExists(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing response: %w", err)
	}
	if exists {
		return nil, conflict("question %s already answered", question.ID)
	}

	evaluation, err := s.ai.EvaluateAnswer(ctx, ai.EvaluationRequest{
		Question:       question.Text,
		Answer:         answer,
		ExpectedPoints: question.ExpectedKeyPoints,
		JobRole:        session.JobRole,
		Difficulty:     session.Difficulty,
	})
	if err != nil {
		return nil, collaboratorFailure("failed to evaluate answer", err)
	}
	if evaluation.Score < 0 || evaluation.Score > 100 {
		return nil, collaboratorFailure("failed to evaluate answer",
			fmt.Errorf("%w: score %v out of range", ai.ErrMalformedOutput, evaluation.Score))
	}

	score := models.RoundScore(evaluation.Score)
	response := &models.Response{
		QuestionID:   question.ID,
		SessionID:    session.ID,
		AnswerText:   answer,
		Score:        &score,
		Feedback:     evaluation.Feedback,
		Strengths:    evaluation.Strengths,
		Improvements: evaluation.Improvements,
		Keywords:     evaluation.Keywords,
		TimeTaken:    in.TimeTaken,
		AnsweredAt:   time.Now(),
	}

	var overall *float64
	err = s.repo.Transaction(ctx, func(tx *repository.GORMRepository) error {
		locked, err := tx.LockInterviewSession(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to lock interview: %w", err)
		}
		if locked == nil {
			return notFound("interview %s not found", sessionID)
		}
		if err := tx.CreateResponse(ctx, response); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("question %s already answered", question.ID)
			}
			return fmt.Errorf("failed to store response: %w", err)
		}
		overall, err = tx.UpdateOverallScore(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to update overall score: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Answer evaluated",
		zap.String("session_id", session.ID),
		zap.String("question_id", question.ID),
		zap.Float64("score", score),
	)
	events.Emit(ctx, s.events, s.logger, events.New(events.AnswerEvaluated, p.ID, session.ID, map[string]interface{}{
		"question_id":   question.ID,
		"score":         score,
		"overall_score": overall,
	}))

	return &AnswerResult{
		ResponseID:   response.ID,
		InterviewID:  session.ID,
		QuestionID:   question.ID,
		QuestionText: question.Text,
		UserAnswer:   response.AnswerText,
		Score:        score,
		Feedback:     response.Feedback,
		Strengths:    response.Strengths,
		Improvements: response.Improvements,
		Keywords:     response.Keywords,
		TimeTaken:    response.TimeTaken,
		AnsweredAt:   response.AnsweredAt,
		OverallScore: overall,
	}, nil
}

// Results lists every question in order with its response, if any.
func (s *EvaluationService) Results(ctx context.Context, p Principal, sessionID string) (*InterviewResults, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	session, err := loadSession(ctx, s.repo, p, sessionID)
	if err != nil {
		return nil, err
	}
	questions, err := s.repo.GetQuestions(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	responses, err := s.repo.GetResponses(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	byQuestion := responsesByQuestion(responses)

	results := &InterviewResults{
		InterviewID:    session.ID,
		JobRole:        session.JobRole,
		Difficulty:     session.Difficulty,
		Status:         session.Status,
		OverallScore:   session.OverallScore,
		TotalQuestions: len(questions),
		Questions:      make([]QuestionResult, 0, len(questions)),
		CreatedAt:      session.CreatedAt,
		CompletedAt:    session.CompletedAt,
	}
	for _, q := range questions {
		item := QuestionResult{
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			QuestionType:  q.Type,
			SkillCategory: q.SkillCategory,
			OrderIndex:    q.OrderIndex,
		}
		if r, ok := byQuestion[q.ID]; ok {
			item.Answered = true
			item.Response = r
			results.Answered++
		}
		results.Questions = append(results.Questions, item)
	}
	return results, nil
}

func responsesByQuestion(responses []models.Response) map[string]*models.Response {
	out := make(map[string]*models.Response, len(responses))
	for i := range responses {
		out[responses[i].QuestionID] = &responses[i]
	}
	return out
}
