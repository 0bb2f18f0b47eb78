package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SRIDEV20/AI-powered-interview-simulator/ai"
	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultQuestionCount = 5
	MaxQuestionCount     = 10
	minJobRoleLength     = 2
	maxJobRoleLength     = 100
)

// InterviewService owns session creation, retrieval, listing and completion.
type InterviewService struct {
	repo   *repository.GORMRepository
	ai     ai.Collaborator
	events events.Publisher
	logger *zap.Logger
}

func NewInterviewService(repo *repository.GORMRepository, collaborator ai.Collaborator, publisher events.Publisher, logger *zap.Logger) *InterviewService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewService{
		repo:   repo,
		ai:     collaborator,
		events: publisher,
		logger: logger.Named("interviews"),
	}
}

type CreateInterviewInput struct {
	JobRole      string
	Difficulty   models.Difficulty
	NumQuestions int
	QuestionType models.QuestionMix
}

type InterviewDetail struct {
	*models.InterviewSession
	TotalQuestions int `json:"total_questions"`
}

type InterviewSummary struct {
	ID             string               `json:"interview_id"`
	JobRole        string               `json:"job_role"`
	Difficulty     models.Difficulty    `json:"difficulty"`
	QuestionType   models.QuestionMix   `json:"question_type"`
	Status         models.SessionStatus `json:"status"`
	TotalQuestions int                  `json:"total_questions"`
	OverallScore   *float64             `json:"overall_score"`
	CreatedAt      time.Time            `json:"created_at"`
	CompletedAt    *time.Time           `json:"completed_at,omitempty"`
}

type InterviewList struct {
	Total      int                `json:"total"`
	Interviews []InterviewSummary `json:"interviews"`
}

type CompletionResult struct {
	InterviewID string               `json:"interview_id"`
	Status      models.SessionStatus `json:"status"`
	Message     string               `json:"message"`
	CompletedAt time.Time            `json:"completed_at"`
}

func (in CreateInterviewInput) validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(in.JobRole))
	if n < minJobRoleLength || n > maxJobRoleLength {
		return invalid("job_role must be between %d and %d characters", minJobRoleLength, maxJobRoleLength)
	}
	if !in.Difficulty.Valid() {
		return invalid("difficulty must be one of beginner, intermediate, advanced")
	}
	if in.NumQuestions < 1 || in.NumQuestions > MaxQuestionCount {
		return invalid("num_questions must be between 1 and %d", MaxQuestionCount)
	}
	if !in.QuestionType.Valid() {
		return invalid("question_type must be one of technical, behavioral, coding, system_design, mixed")
	}
	return nil
}

// Create generates questions and stores them with a new active session.
// Nothing is stored when generation fails.
func (s *InterviewService) Create(ctx context.Context, p Principal, in CreateInterviewInput) (*InterviewDetail, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	in.JobRole = strings.TrimSpace(in.JobRole)
	if err := in.validate(); err != nil {
		return nil, err
	}

	generated, err := s.ai.GenerateQuestions(ctx, ai.QuestionRequest{
		JobRole:    in.JobRole,
		Difficulty: in.Difficulty,
		Count:      in.NumQuestions,
		Mix:        in.QuestionType,
	})
	if err != nil {
		return nil, collaboratorFailure("failed to generate questions", err)
	}
	if len(generated) == 0 {
		return nil, collaboratorFailure("failed to generate questions", fmt.Errorf("%w: no questions returned", ai.ErrMalformedOutput))
	}

	questions := make([]models.Question, 0, len(generated))
	for i, g := range generated {
		text := strings.TrimSpace(g.Text)
		if text == "" {
			return nil, collaboratorFailure("failed to generate questions", fmt.Errorf("%w: question %d has no text", ai.ErrMalformedOutput, i+1))
		}
		questions = append(questions, s.buildQuestion(in, g, text, i+1))
	}

	session := &models.InterviewSession{
		UserID:      p.ID,
		JobRole:     in.JobRole,
		Difficulty:  in.Difficulty,
		QuestionMix: in.QuestionType,
		Status:      models.StatusActive,
	}
	if err := s.repo.CreateInterviewSession(ctx, session, questions); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	if len(questions) != in.NumQuestions {
		s.logger.Warn("Generated question count differs from requested",
			zap.String("session_id", session.ID),
			zap.Int("requested", in.NumQuestions),
			zap.Int("generated", len(questions)),
		)
	}

	events.Emit(ctx, s.events, s.logger, events.New(events.InterviewCreated, p.ID, session.ID, map[string]interface{}{
		"job_role":        session.JobRole,
		"difficulty":      session.Difficulty,
		"total_questions": len(questions),
	}))

	return &InterviewDetail{InterviewSession: session, TotalQuestions: len(questions)}, nil
}

func (s *InterviewService) buildQuestion(in CreateInterviewInput, g ai.GeneratedQuestion, text string, order int) models.Question {
	qType := g.Type
	if !qType.Valid() {
		qType = in.QuestionType.Fallback()
	}
	category := strings.TrimSpace(g.SkillCategory)
	if category == "" {
		category = in.JobRole
	}
	difficulty := in.Difficulty
	if d, err := models.ParseDifficulty(g.Difficulty); err == nil {
		difficulty = d
	}
	return models.Question{
		Text:              text,
		Type:              qType,
		SkillCategory:     category,
		ExpectedKeyPoints: cleanList(g.ExpectedPoints),
		OrderIndex:        order,
		Difficulty:        string(difficulty),
	}
}

// Get returns the session with its questions in order.
func (s *InterviewService) Get(ctx context.Context, p Principal, sessionID string) (*InterviewDetail, error) {
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
	session.Questions = questions
	return &InterviewDetail{InterviewSession: session, TotalQuestions: len(questions)}, nil
}

// List returns the principal's sessions, newest first.
func (s *InterviewService) List(ctx context.Context, p Principal) (*InterviewList, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListInterviewSessions(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}

	ids := make([]string, len(sessions))
	for i, session := range sessions {
		ids[i] = session.ID
	}
	counts, err := s.repo.CountQuestions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	list := &InterviewList{Total: len(sessions), Interviews: make([]InterviewSummary, 0, len(sessions))}
	for _, session := range sessions {
		list.Interviews = append(list.Interviews, InterviewSummary{
			ID:             session.ID,
			JobRole:        session.JobRole,
			Difficulty:     session.Difficulty,
			QuestionType:   session.QuestionMix,
			Status:         session.Status,
			TotalQuestions: counts[session.ID],
			OverallScore:   session.OverallScore,
			CreatedAt:      session.CreatedAt,
			CompletedAt:    session.CompletedAt,
		})
	}
	return list, nil
}

// Complete marks the session completed. Completing it again moves
// completed_at forward; unanswered questions do not block completion.
func (s *InterviewService) Complete(ctx context.Context, p Principal, sessionID string) (*CompletionResult, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	if err := validateID(sessionID, "interview"); err != nil {
		return nil, err
	}

	now := time.Now()
	ok, err := s.repo.CompleteInterviewSession(ctx, sessionID, p.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete interview: %w", err)
	}
	if !ok {
		return nil, notFound("interview %s not found", sessionID)
	}

	s.logger.Info("Interview completed", zap.String("session_id", sessionID), zap.String("user_id", p.ID))
	events.Emit(ctx, s.events, s.logger, events.New(events.InterviewCompleted, p.ID, sessionID, nil))

	return &CompletionResult{
		InterviewID: sessionID,
		Status:      models.StatusCompleted,
		Message:     "Interview completed successfully",
		CompletedAt: now,
	}, nil
}

// Delete removes the session with its questions, responses and skill gaps.
func (s *InterviewService) Delete(ctx context.Context, p Principal, sessionID string) error {
	if err := authorize(p); err != nil {
		return err
	}
	if err := validateID(sessionID, "interview"); err != nil {
		return err
	}

	ok, err := s.repo.DeleteInterviewSession(ctx, sessionID, p.ID)
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}
	if !ok {
		return notFound("interview %s not found", sessionID)
	}

	events.Emit(ctx, s.events, s.logger, events.New(events.InterviewDeleted, p.ID, sessionID, nil))
	return nil
}

// loadSession returns the principal's session or a NotFound error. Sessions
// owned by someone else are reported as missing.
func loadSession(ctx context.Context, repo *repository.GORMRepository, p Principal, sessionID string) (*models.InterviewSession, error) {
	if err := validateID(sessionID, "interview"); err != nil {
		return nil, err
	}
	session, err := repo.GetInterviewSession(ctx, sessionID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	if session == nil {
		return nil, notFound("interview %s not found", sessionID)
	}
	return session, nil
}

// validateID reports a malformed id as NotFound; no such row can exist.
func validateID(id, kind string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound("%s %s not found", kind, id)
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
