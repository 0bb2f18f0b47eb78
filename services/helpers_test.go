package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/SRIDEV20/AI-powered-interview-simulator/ai"
	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var errStub = errors.New("model unavailable")

func newTestRepository(t *testing.T) *repository.GORMRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := repository.NewGORMRepository(db, zap.NewNop())
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return repo
}

// stubCollaborator answers every model call from canned data and counts calls.
type stubCollaborator struct {
	mu sync.Mutex

	questions    []ai.GeneratedQuestion
	questionsErr error

	scores      map[string]float64 // by answer text, default 70
	evaluateErr error
	barrier     *sync.WaitGroup // when set, EvaluateAnswer waits for every caller to arrive

	summary     *ai.Summary
	summaryErr  error
	lastSummary ai.SummaryRequest

	recommendations map[string]string
	recommendErr    error
	lastRecommend   ai.RecommendationRequest

	calls map[string]int
}

func (s *stubCollaborator) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[call]++
}

func (s *stubCollaborator) count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[call]
}

func (s *stubCollaborator) GenerateQuestions(_ context.Context, req ai.QuestionRequest) ([]ai.GeneratedQuestion, error) {
	s.record("generate")
	if s.questionsErr != nil {
		return nil, s.questionsErr
	}
	if s.questions != nil {
		return s.questions, nil
	}
	out := make([]ai.GeneratedQuestion, req.Count)
	for i := range out {
		out[i] = ai.GeneratedQuestion{
			Text:           fmt.Sprintf("Question %d about %s?", i+1, req.JobRole),
			Type:           models.QuestionTechnical,
			SkillCategory:  "Go",
			ExpectedPoints: []string{"point"},
		}
	}
	return out, nil
}

func (s *stubCollaborator) EvaluateAnswer(_ context.Context, req ai.EvaluationRequest) (*ai.Evaluation, error) {
	s.record("evaluate")
	if s.barrier != nil {
		s.barrier.Done()
		s.barrier.Wait()
	}
	if s.evaluateErr != nil {
		return nil, s.evaluateErr
	}
	score := 70.0
	s.mu.Lock()
	if v, ok := s.scores[req.Answer]; ok {
		score = v
	}
	s.mu.Unlock()
	return &ai.Evaluation{
		Score:        score,
		Feedback:     "Solid answer.",
		Strengths:    []string{"clear", "concise", "accurate"},
		Improvements: []string{"add examples"},
		Keywords:     []string{"goroutine"},
	}, nil
}

func (s *stubCollaborator) Summarize(_ context.Context, req ai.SummaryRequest) (*ai.Summary, error) {
	s.record("summarize")
	s.mu.Lock()
	s.lastSummary = req
	s.mu.Unlock()
	if s.summaryErr != nil {
		return nil, s.summaryErr
	}
	if s.summary != nil {
		return s.summary, nil
	}
	return &ai.Summary{OverallSummary: "Well done.", TopStrengths: []string{"clarity"}, TopImprovements: []string{"depth"}}, nil
}

func (s *stubCollaborator) Recommend(_ context.Context, req ai.RecommendationRequest) (map[string]string, error) {
	s.record("recommend")
	s.mu.Lock()
	s.lastRecommend = req
	s.mu.Unlock()
	if s.recommendErr != nil {
		return nil, s.recommendErr
	}
	return s.recommendations, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	repo       *repository.GORMRepository
	ai         *stubCollaborator
	events     *recordingPublisher
	interviews *InterviewService
	evaluation *EvaluationService
	scoring    *ScoringService
	skillGaps  *SkillGapService
	users      *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newTestRepository(t)
	stub := &stubCollaborator{}
	pub := &recordingPublisher{}
	return &testEnv{
		repo:       repo,
		ai:         stub,
		events:     pub,
		interviews: NewInterviewService(repo, stub, pub, zap.NewNop()),
		evaluation: NewEvaluationService(repo, stub, pub, zap.NewNop()),
		scoring:    NewScoringService(repo, stub, pub, zap.NewNop()),
		skillGaps:  NewSkillGapService(repo, stub, pub, zap.NewNop()),
		users:      NewUserService(repo, zap.NewNop()),
	}
}

// newPrincipal stores an active user and returns it as a principal.
func (e *testEnv) newPrincipal(t *testing.T, email string) Principal {
	t.Helper()
	user := &models.User{Email: email, Password: "x", FullName: "Test", Role: "user", IsActive: true}
	if err := e.repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return PrincipalFromUser(user)
}

func (e *testEnv) createInterview(t *testing.T, p Principal, role string, n int) *InterviewDetail {
	t.Helper()
	detail, err := e.interviews.Create(context.Background(), p, CreateInterviewInput{
		JobRole:      role,
		Difficulty:   models.DifficultyIntermediate,
		NumQuestions: n,
		QuestionType: models.MixMixed,
	})
	if err != nil {
		t.Fatalf("failed to create interview: %v", err)
	}
	return detail
}

func (e *testEnv) answer(t *testing.T, p Principal, sessionID, questionID, text string) *AnswerResult {
	t.Helper()
	result, err := e.evaluation.Submit(context.Background(), p, sessionID, questionID, SubmitAnswerInput{Answer: text})
	if err != nil {
		t.Fatalf("failed to submit answer: %v", err)
	}
	return result
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func floatPtr(v float64) *float64 { return &v }
