package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/SRIDEV20/AI-powered-interview-simulator/ai"
	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// backendInterview creates the three question session used across the
// scoring tests: a technical, a behavioral and a second technical question.
func backendInterview(t *testing.T, env *testEnv, p Principal) *InterviewDetail {
	t.Helper()
	env.ai.questions = []ai.GeneratedQuestion{
		{Text: "How does the Go scheduler work?", Type: models.QuestionTechnical, SkillCategory: "Go"},
		{Text: "Tell me about a hard deadline.", Type: models.QuestionBehavioral, SkillCategory: "Communication"},
		{Text: "How would you index this query?", Type: models.QuestionTechnical, SkillCategory: "SQL"},
	}
	env.ai.scores = map[string]float64{
		"goroutines are multiplexed": 90,
		"we shipped on time":         60,
	}
	return env.createInterview(t, p, "Backend Engineer", 3)
}

func TestSubmitAnswer(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "submit@example.com")
	detail := backendInterview(t, env, p)
	q1, q2 := detail.Questions[0], detail.Questions[1]

	taken := 42
	first, err := env.evaluation.Submit(context.Background(), p, detail.ID, q1.ID, SubmitAnswerInput{
		Answer:    "  goroutines are multiplexed  ",
		TimeTaken: &taken,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Score != 90 {
		t.Errorf("expected score 90, got %v", first.Score)
	}
	if first.UserAnswer != "goroutines are multiplexed" {
		t.Errorf("expected trimmed answer, got %q", first.UserAnswer)
	}
	if first.QuestionText != q1.Text || first.InterviewID != detail.ID {
		t.Errorf("unexpected result: %+v", first)
	}
	if first.TimeTaken == nil || *first.TimeTaken != 42 {
		t.Errorf("expected time taken 42, got %v", first.TimeTaken)
	}
	if first.OverallScore == nil || *first.OverallScore != 90 {
		t.Errorf("expected overall 90, got %v", first.OverallScore)
	}
	if len(first.Strengths) != 3 || first.Feedback == "" {
		t.Errorf("expected evaluation details, got %+v", first)
	}

	second := env.answer(t, p, detail.ID, q2.ID, "we shipped on time")
	if second.OverallScore == nil || *second.OverallScore != 75 {
		t.Errorf("expected overall 75, got %v", second.OverallScore)
	}

	stored, err := env.interviews.Get(context.Background(), p, detail.ID)
	if err != nil {
		t.Fatalf("failed to get interview: %v", err)
	}
	if stored.OverallScore == nil || *stored.OverallScore != 75 {
		t.Errorf("expected stored overall 75, got %v", stored.OverallScore)
	}

	var evaluated int
	for _, typ := range env.events.types() {
		if typ == events.AnswerEvaluated {
			evaluated++
		}
	}
	if evaluated != 2 {
		t.Errorf("expected 2 answer events, got %d", evaluated)
	}
}

func TestSubmitAnswerRoundsScore(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "round@example.com")
	detail := env.createInterview(t, p, "Backend Engineer", 2)
	env.ai.scores = map[string]float64{"first": 80.337, "second": 70}

	r := env.answer(t, p, detail.ID, detail.Questions[0].ID, "first")
	if r.Score != 80.34 {
		t.Errorf("expected 80.34, got %v", r.Score)
	}
	r = env.answer(t, p, detail.ID, detail.Questions[1].ID, "second")
	if r.OverallScore == nil || *r.OverallScore != 75.17 {
		t.Errorf("expected overall 75.17, got %v", r.OverallScore)
	}
}

func TestSubmitAnswerDuplicate(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "duplicate@example.com")
	detail := env.createInterview(t, p, "Backend Engineer", 1)
	qid := detail.Questions[0].ID

	env.answer(t, p, detail.ID, qid, "first answer")

	_, err := env.evaluation.Submit(context.Background(), p, detail.ID, qid, SubmitAnswerInput{Answer: "second answer"})
	assertKind(t, err, ErrConflict)

	if n := env.ai.count("evaluate"); n != 1 {
		t.Errorf("expected a single evaluation call, got %d", n)
	}

	results, err := env.evaluation.Results(context.Background(), p, detail.ID)
	if err != nil {
		t.Fatalf("failed to get results: %v", err)
	}
	if r := results.Questions[0].Response; r == nil || r.AnswerText != "first answer" {
		t.Errorf("expected first answer to be kept, got %+v", r)
	}
}

func TestSubmitAnswerConcurrentDuplicate(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "race@example.com")
	detail := env.createInterview(t, p, "Backend Engineer", 1)
	qid := detail.Questions[0].ID

	// both submissions pass the existence check before either is stored
	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	env.ai.barrier = barrier

	var (
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	g, ctx := errgroup.WithContext(context.Background())
	for _, answer := range []string{"answer one", "answer two"} {
		g.Go(func() error {
			_, err := env.evaluation.Submit(ctx, p, detail.ID, qid, SubmitAnswerInput{Answer: answer})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if succeeded != 1 || conflicts != 1 {
		t.Errorf("expected one success and one conflict, got %d and %d", succeeded, conflicts)
	}

	responses, err := env.repo.GetResponses(context.Background(), detail.ID)
	if err != nil {
		t.Fatalf("failed to get responses: %v", err)
	}
	if len(responses) != 1 {
		t.Errorf("expected 1 stored response, got %d", len(responses))
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	negative := -1
	tests := []struct {
		name string
		in   SubmitAnswerInput
	}{
		{"empty", SubmitAnswerInput{Answer: ""}},
		{"whitespace", SubmitAnswerInput{Answer: " \n\t "}},
		{"too long", SubmitAnswerInput{Answer: strings.Repeat("a", maxAnswerLength+1)}},
		{"negative time", SubmitAnswerInput{Answer: "fine", TimeTaken: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			p := env.newPrincipal(t, "invalid@example.com")
			detail := env.createInterview(t, p, "Backend Engineer", 1)

			_, err := env.evaluation.Submit(context.Background(), p, detail.ID, detail.Questions[0].ID, tt.in)
			assertKind(t, err, ErrValidation)
			if env.ai.count("evaluate") != 0 {
				t.Error("expected no model call for invalid input")
			}
		})
	}
}

func TestSubmitAnswerAcceptsMaxLength(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "maxlen@example.com")
	detail := env.createInterview(t, p, "Backend Engineer", 1)

	answer := strings.Repeat("é", maxAnswerLength)
	if _, err := env.evaluation.Submit(context.Background(), p, detail.ID, detail.Questions[0].ID, SubmitAnswerInput{Answer: answer}); err != nil {
		t.Fatalf("expected %d characters to be accepted, got %v", maxAnswerLength, err)
	}
}

func TestSubmitAnswerNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.newPrincipal(t, "owner@example.com")
	other := env.newPrincipal(t, "other@example.com")
	detail := env.createInterview(t, owner, "Backend Engineer", 1)
	otherDetail := env.createInterview(t, other, "Designer", 1)

	tests := []struct {
		name       string
		p          Principal
		sessionID  string
		questionID string
	}{
		{"unknown session", owner, uuid.NewString(), detail.Questions[0].ID},
		{"foreign session", other, detail.ID, detail.Questions[0].ID},
		{"unknown question", owner, detail.ID, uuid.NewString()},
		{"malformed question", owner, detail.ID, "42"},
		{"question from another session", owner, detail.ID, otherDetail.Questions[0].ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.evaluation.Submit(context.Background(), tt.p, tt.sessionID, tt.questionID, SubmitAnswerInput{Answer: "answer"})
			assertKind(t, err, ErrNotFound)
		})
	}
}

func TestSubmitAnswerCollaboratorFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*stubCollaborator)
	}{
		{"model error", func(s *stubCollaborator) { s.evaluateErr = errStub }},
		{"score above range", func(s *stubCollaborator) { s.scores = map[string]float64{"answer": 101} }},
		{"negative score", func(s *stubCollaborator) { s.scores = map[string]float64{"answer": -5} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			p := env.newPrincipal(t, "broken@example.com")
			detail := env.createInterview(t, p, "Backend Engineer", 1)
			tt.setup(env.ai)

			_, err := env.evaluation.Submit(context.Background(), p, detail.ID, detail.Questions[0].ID, SubmitAnswerInput{Answer: "answer"})
			assertKind(t, err, ErrCollaborator)

			exists, err := env.repo.ResponseExists(context.Background(), detail.Questions[0].ID)
			if err != nil {
				t.Fatalf("failed to check response: %v", err)
			}
			if exists {
				t.Error("expected nothing stored after a failed evaluation")
			}

			stored, err := env.interviews.Get(context.Background(), p, detail.ID)
			if err != nil {
				t.Fatalf("failed to get interview: %v", err)
			}
			if stored.OverallScore != nil {
				t.Errorf("expected no overall score, got %v", *stored.OverallScore)
			}
		})
	}
}

func TestResults(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "results@example.com")
	detail := backendInterview(t, env, p)

	env.answer(t, p, detail.ID, detail.Questions[1].ID, "we shipped on time")

	results, err := env.evaluation.Results(context.Background(), p, detail.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.TotalQuestions != 3 || results.Answered != 1 {
		t.Errorf("expected 1 of 3 answered, got %d of %d", results.Answered, results.TotalQuestions)
	}
	for i, q := range results.Questions {
		if q.OrderIndex != i+1 {
			t.Errorf("expected order %d, got %d", i+1, q.OrderIndex)
		}
		if q.Answered != (i == 1) {
			t.Errorf("question %d answered=%v", i+1, q.Answered)
		}
		if q.Answered != (q.Response != nil) {
			t.Errorf("question %d answered flag disagrees with response", i+1)
		}
	}
	if results.OverallScore == nil || *results.OverallScore != 60 {
		t.Errorf("expected overall 60, got %v", results.OverallScore)
	}

	_, err = env.evaluation.Results(context.Background(), env.newPrincipal(t, "nosy@example.com"), detail.ID)
	assertKind(t, err, ErrNotFound)
}
