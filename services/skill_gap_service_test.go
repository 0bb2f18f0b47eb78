package services

import (
	"context"
	"testing"

	"github.com/SRIDEV20/AI-powered-interview-simulator/ai"
	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
)

// skillInterview creates a session with two SQL questions, a Go question and
// an unanswered Communication question, and answers the first three.
func skillInterview(t *testing.T, env *testEnv, p Principal) *InterviewDetail {
	t.Helper()
	env.ai.questions = []ai.GeneratedQuestion{
		{Text: "What is an index?", Type: models.QuestionTechnical, SkillCategory: "SQL"},
		{Text: "Explain a join.", Type: models.QuestionTechnical, SkillCategory: "SQL"},
		{Text: "What is a goroutine?", Type: models.QuestionTechnical, SkillCategory: "Go"},
		{Text: "Describe a disagreement.", Type: models.QuestionBehavioral, SkillCategory: "Communication"},
	}
	env.ai.scores = map[string]float64{"sql one": 80, "sql two": 40, "go one": 90}

	detail := env.createInterview(t, p, "Backend Engineer", 4)
	env.answer(t, p, detail.ID, detail.Questions[0].ID, "sql one")
	env.answer(t, p, detail.ID, detail.Questions[1].ID, "sql two")
	env.answer(t, p, detail.ID, detail.Questions[2].ID, "go one")
	return detail
}

func TestAnalyzeSkillGaps(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "gaps@example.com")
	detail := skillInterview(t, env, p)
	env.ai.recommendations = map[string]string{"sql": "  Study query plans.  "}

	report, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Cached || report.AnalyzedAt == nil {
		t.Errorf("expected a fresh analysis, got cached=%v", report.Cached)
	}
	if report.TotalSkills != 3 || report.WeakSkills != 1 || report.ModerateSkills != 1 || report.StrongSkills != 1 {
		t.Errorf("unexpected counts: %+v", report)
	}

	want := []struct {
		name  string
		score float64
		level models.ProficiencyLevel
		rec   string
	}{
		{"Communication", 0, models.ProficiencyWeak, "Practice Communication skills regularly."},
		{"SQL", 60, models.ProficiencyModerate, "Study query plans."},
		{"Go", 90, models.ProficiencyStrong, "Practice Go skills regularly."},
	}
	for i, w := range want {
		g := report.SkillGaps[i]
		if g.SkillName != w.name || g.GapScore != w.score || g.ProficiencyLevel != w.level || g.Recommendation != w.rec {
			t.Errorf("gap %d: expected %+v, got %+v", i, w, g)
		}
		if g.UserID != p.ID || g.SessionID != detail.ID {
			t.Errorf("gap %d has wrong owner: %+v", i, g)
		}
	}

	req := env.ai.lastRecommend
	if req.JobRole != "Backend Engineer" || len(req.Skills) != 3 {
		t.Errorf("unexpected recommendation request: %+v", req)
	}
	if req.Skills[0].Skill != "SQL" || req.Skills[0].Score != 60 {
		t.Errorf("expected skills in question order, got %+v", req.Skills)
	}

	found := false
	for _, typ := range env.events.types() {
		if typ == events.SkillGapsAnalyzed {
			found = true
		}
	}
	if !found {
		t.Error("expected a skill_gaps.analyzed event")
	}
}

func TestAnalyzeSkillGapsIsCached(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "cached@example.com")
	detail := skillInterview(t, env, p)

	first, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.ai.recommendErr = errStub
	second, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, false)
	if err != nil {
		t.Fatalf("expected cached result, got %v", err)
	}
	if !second.Cached {
		t.Error("expected cached report")
	}
	if n := env.ai.count("recommend"); n != 1 {
		t.Errorf("expected a single recommend call, got %d", n)
	}
	if second.TotalSkills != first.TotalSkills {
		t.Errorf("expected %d skills, got %d", first.TotalSkills, second.TotalSkills)
	}
	for i := range first.SkillGaps {
		if first.SkillGaps[i].ID != second.SkillGaps[i].ID {
			t.Errorf("gap %d was rewritten", i)
		}
	}
}

func TestAnalyzeSkillGapsForceReplaces(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "force@example.com")
	detail := skillInterview(t, env, p)

	first, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.ai.scores["late answer"] = 100
	env.answer(t, p, detail.ID, detail.Questions[3].ID, "late answer")
	env.ai.recommendations = map[string]string{"Communication": "Keep it up."}

	second, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Cached {
		t.Error("expected a fresh report")
	}
	if second.TotalSkills != 3 || second.WeakSkills != 0 || second.StrongSkills != 2 {
		t.Errorf("unexpected counts: %+v", second)
	}

	stored, err := env.skillGaps.ForSession(context.Background(), p, detail.ID)
	if err != nil {
		t.Fatalf("failed to get session gaps: %v", err)
	}
	if stored.TotalSkills != 3 {
		t.Fatalf("expected the set to be replaced, got %d rows", stored.TotalSkills)
	}
	old := map[string]bool{}
	for _, g := range first.SkillGaps {
		old[g.ID] = true
	}
	for _, g := range stored.SkillGaps {
		if old[g.ID] {
			t.Errorf("gap %s survived a forced analysis", g.SkillName)
		}
		if g.SkillName == "Communication" && (g.GapScore != 100 || g.Recommendation != "Keep it up.") {
			t.Errorf("unexpected communication gap: %+v", g)
		}
	}
}

func TestAnalyzeSkillGapsWithoutAnswers(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "noanswers@example.com")
	detail := env.createInterview(t, p, "Backend Engineer", 2)

	_, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, false)
	assertKind(t, err, ErrValidation)
	if env.ai.count("recommend") != 0 {
		t.Error("expected no recommend call")
	}
}

func TestAnalyzeSkillGapsCollaboratorFailure(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "recfail@example.com")
	detail := skillInterview(t, env, p)
	env.ai.recommendErr = errStub

	_, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, false)
	assertKind(t, err, ErrCollaborator)

	stored, err := env.skillGaps.ForSession(context.Background(), p, detail.ID)
	if err != nil {
		t.Fatalf("failed to get session gaps: %v", err)
	}
	if stored.TotalSkills != 0 {
		t.Errorf("expected nothing stored, got %d rows", stored.TotalSkills)
	}
}

func TestAnalyzeSkillGapsForcedFailureKeepsPreviousSet(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "keep@example.com")
	detail := skillInterview(t, env, p)

	if _, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.ai.recommendErr = errStub

	_, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, true)
	assertKind(t, err, ErrCollaborator)

	stored, err := env.skillGaps.ForSession(context.Background(), p, detail.ID)
	if err != nil {
		t.Fatalf("failed to get session gaps: %v", err)
	}
	if stored.TotalSkills != 3 {
		t.Errorf("expected previous set to remain, got %d rows", stored.TotalSkills)
	}
}

func TestSkillGapsForSessionCachedFlag(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "flag@example.com")
	detail := skillInterview(t, env, p)

	before, err := env.skillGaps.ForSession(context.Background(), p, detail.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before.Cached || before.TotalSkills != 0 || before.AnalyzedAt != nil {
		t.Errorf("expected an unanalyzed report, got %+v", before)
	}

	if _, err := env.skillGaps.Analyze(context.Background(), p, detail.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := env.skillGaps.ForSession(context.Background(), p, detail.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !after.Cached || after.TotalSkills != 3 {
		t.Errorf("expected the stored analysis, got %+v", after)
	}
}

func TestSkillGapsForUser(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "user@example.com")
	other := env.newPrincipal(t, "other@example.com")

	first := skillInterview(t, env, p)
	env.ai.questions = nil
	env.ai.scores = map[string]float64{"rust answer": 30}
	second := env.createInterview(t, p, "Systems Engineer", 1)
	env.answer(t, p, second.ID, second.Questions[0].ID, "rust answer")

	for _, id := range []string{first.ID, second.ID} {
		if _, err := env.skillGaps.Analyze(context.Background(), p, id, false); err != nil {
			t.Fatalf("failed to analyze %s: %v", id, err)
		}
	}

	report, err := env.skillGaps.ForUser(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.UserID != p.ID || report.TotalSkills != 4 || report.WeakSkills != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
	for i := 1; i < len(report.SkillGaps); i++ {
		if report.SkillGaps[i-1].GapScore > report.SkillGaps[i].GapScore {
			t.Errorf("gaps not ordered weakest first: %+v", report.SkillGaps)
		}
	}

	empty, err := env.skillGaps.ForUser(context.Background(), other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.TotalSkills != 0 || empty.SkillGaps == nil {
		t.Errorf("expected an empty list, got %+v", empty)
	}

	_, err = env.skillGaps.ForSession(context.Background(), other, first.ID)
	assertKind(t, err, ErrNotFound)
}

func TestScoreSkills(t *testing.T) {
	s80, s40 := 80.0, 40.0
	questions := []models.Question{
		{ID: "q1", SkillCategory: "SQL"},
		{ID: "q2", SkillCategory: " "},
		{ID: "q3", SkillCategory: "SQL"},
	}
	responses := map[string]*models.Response{
		"q1": {QuestionID: "q1", Score: &s80},
		"q3": {QuestionID: "q3", Score: &s40},
	}

	got := scoreSkills(questions, responses)
	if len(got) != 2 {
		t.Fatalf("expected 2 skills, got %+v", got)
	}
	if got[0].Skill != "SQL" || got[0].Score != 60 || got[0].Level != models.ProficiencyModerate {
		t.Errorf("unexpected SQL score: %+v", got[0])
	}
	if got[1].Skill != defaultSkillCategory || got[1].Score != 0 || got[1].Level != models.ProficiencyWeak {
		t.Errorf("unexpected default skill: %+v", got[1])
	}
}

func TestLookupRecommendation(t *testing.T) {
	recs := map[string]string{
		"SQL":            "exact",
		"system design ": "folded",
		"Go":             "   ",
	}
	tests := []struct {
		skill string
		want  string
	}{
		{"SQL", "exact"},
		{"System Design", "folded"},
		{"Go", DefaultRecommendation("Go")},
		{"Kubernetes", "Practice Kubernetes skills regularly."},
	}
	for _, tt := range tests {
		if got := lookupRecommendation(recs, tt.skill); got != tt.want {
			t.Errorf("lookupRecommendation(%q) = %q, want %q", tt.skill, got, tt.want)
		}
	}
}
