package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SRIDEV20/AI-powered-interview-simulator/ai"
	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	"go.uber.org/zap"
)

const defaultSkillCategory = "General"

// SkillGapService derives per-skill proficiency from scored responses and
// caches the result per session until a forced re-analysis.
type SkillGapService struct {
	repo   *repository.GORMRepository
	ai     ai.Collaborator
	events events.Publisher
	logger *zap.Logger
}

func NewSkillGapService(repo *repository.GORMRepository, collaborator ai.Collaborator, publisher events.Publisher, logger *zap.Logger) *SkillGapService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SkillGapService{
		repo:   repo,
		ai:     collaborator,
		events: publisher,
		logger: logger.Named("skill_gaps"),
	}
}

type SkillGapReport struct {
	UserID         string            `json:"user_id,omitempty"`
	InterviewID    string            `json:"interview_id,omitempty"`
	JobRole        string            `json:"job_role,omitempty"`
	OverallScore   *float64          `json:"overall_score,omitempty"`
	TotalSkills    int               `json:"total_skills"`
	WeakSkills     int               `json:"weak_skills"`
	ModerateSkills int               `json:"moderate_skills"`
	StrongSkills   int               `json:"strong_skills"`
	SkillGaps      []models.SkillGap `json:"skill_gaps"`
	Cached         bool              `json:"cached"`
	AnalyzedAt     *time.Time        `json:"analyzed_at,omitempty"`
}

// DefaultRecommendation is used for skills the model gave no advice for.
func DefaultRecommendation(skill string) string {
	return fmt.Sprintf("Practice %s skills regularly.", skill)
}

// Analyze returns the session's skill gaps, computing them when none are
// stored or when force is set. A forced run replaces the previous set.
func (s *SkillGapService) Analyze(ctx context.Context, p Principal, sessionID string, force bool) (*SkillGapReport, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	session, err := loadSession(ctx, s.repo, p, sessionID)
	if err != nil {
		return nil, err
	}

	if !force {
		existing, err := s.repo.GetSkillGapsBySession(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get skill gaps: %w", err)
		}
		if len(existing) > 0 {
			return sessionReport(session, existing, true), nil
		}
	}

	questions, err := s.repo.GetQuestions(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	responses, err := s.repo.GetResponses(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	if len(responses) == 0 {
		return nil, invalid("no answers yet: answer at least one question before analyzing skill gaps")
	}

	skills := scoreSkills(questions, responsesByQuestion(responses))
	recommendations, err := s.ai.Recommend(ctx, ai.RecommendationRequest{
		JobRole: session.JobRole,
		Skills:  skills,
	})
	if err != nil {
		return nil, collaboratorFailure("failed to generate recommendations", err)
	}

	now := time.Now()
	gaps := make([]models.SkillGap, 0, len(skills))
	for _, skill := range skills {
		gaps = append(gaps, models.SkillGap{
			UserID:           p.ID,
			SessionID:        session.ID,
			SkillName:        skill.Skill,
			ProficiencyLevel: skill.Level,
			GapScore:         skill.Score,
			Recommendation:   lookupRecommendation(recommendations, skill.Skill),
			IdentifiedAt:     now,
		})
	}

	cached := false
	err = s.repo.Transaction(ctx, func(tx *repository.GORMRepository) error {
		locked, err := tx.LockInterviewSession(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to lock interview: %w", err)
		}
		if locked == nil {
			return notFound("interview %s not found", sessionID)
		}
		if !force {
			// another request may have stored a set while we waited on the model
			existing, err := tx.GetSkillGapsBySession(ctx, session.ID)
			if err != nil {
				return fmt.Errorf("failed to get skill gaps: %w", err)
			}
			if len(existing) > 0 {
				gaps = existing
				cached = true
				return nil
			}
		}
		if err := tx.ReplaceSkillGaps(ctx, session.ID, gaps); err != nil {
			return fmt.Errorf("failed to store skill gaps: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortGaps(gaps)
	report := sessionReport(session, gaps, cached)
	if !cached {
		report.AnalyzedAt = &now
		s.logger.Info("Skill gaps analyzed",
			zap.String("session_id", session.ID),
			zap.Int("skills", report.TotalSkills),
			zap.Bool("forced", force),
		)
		events.Emit(ctx, s.events, s.logger, events.New(events.SkillGapsAnalyzed, p.ID, session.ID, map[string]interface{}{
			"total_skills": report.TotalSkills,
			"weak_skills":  report.WeakSkills,
		}))
	}
	return report, nil
}

// ForUser returns every stored gap of the principal, weakest first.
func (s *SkillGapService) ForUser(ctx context.Context, p Principal) (*SkillGapReport, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	gaps, err := s.repo.GetSkillGapsByUser(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill gaps: %w", err)
	}
	report := newSkillGapReport(gaps)
	report.UserID = p.ID
	return report, nil
}

// ForSession returns the stored gaps of one session, weakest first.
func (s *SkillGapService) ForSession(ctx context.Context, p Principal, sessionID string) (*SkillGapReport, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	session, err := loadSession(ctx, s.repo, p, sessionID)
	if err != nil {
		return nil, err
	}
	gaps, err := s.repo.GetSkillGapsBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill gaps: %w", err)
	}
	return sessionReport(session, gaps, len(gaps) > 0), nil
}

// scoreSkills groups questions by skill category, in order of first
// appearance, and averages the scored responses of each group.
func scoreSkills(questions []models.Question, responses map[string]*models.Response) []ai.SkillScore {
	type bucket struct {
		sum    float64
		scored int
	}
	var order []string
	buckets := make(map[string]*bucket)

	for _, q := range questions {
		name := strings.TrimSpace(q.SkillCategory)
		if name == "" {
			name = defaultSkillCategory
		}
		b, ok := buckets[name]
		if !ok {
			b = &bucket{}
			buckets[name] = b
			order = append(order, name)
		}
		if r, ok := responses[q.ID]; ok && r.Score != nil {
			b.sum += *r.Score
			b.scored++
		}
	}

	skills := make([]ai.SkillScore, 0, len(order))
	for _, name := range order {
		b := buckets[name]
		score := 0.0
		if b.scored > 0 {
			score = models.RoundScore(b.sum / float64(b.scored))
		}
		skills = append(skills, ai.SkillScore{
			Skill: name,
			Score: score,
			Level: models.ClassifyProficiency(score),
		})
	}
	return skills
}

func lookupRecommendation(recommendations map[string]string, skill string) string {
	if text, ok := recommendations[skill]; ok && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}
	for name, text := range recommendations {
		if strings.EqualFold(strings.TrimSpace(name), skill) && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return DefaultRecommendation(skill)
}

func sortGaps(gaps []models.SkillGap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].GapScore != gaps[j].GapScore {
			return gaps[i].GapScore < gaps[j].GapScore
		}
		return gaps[i].SkillName < gaps[j].SkillName
	})
}

func newSkillGapReport(gaps []models.SkillGap) *SkillGapReport {
	if gaps == nil {
		gaps = []models.SkillGap{}
	}
	report := &SkillGapReport{TotalSkills: len(gaps), SkillGaps: gaps}
	for _, g := range gaps {
		switch g.ProficiencyLevel {
		case models.ProficiencyWeak:
			report.WeakSkills++
		case models.ProficiencyModerate:
			report.ModerateSkills++
		case models.ProficiencyStrong:
			report.StrongSkills++
		}
	}
	return report
}

func sessionReport(session *models.InterviewSession, gaps []models.SkillGap, cached bool) *SkillGapReport {
	report := newSkillGapReport(gaps)
	report.InterviewID = session.ID
	report.JobRole = session.JobRole
	report.OverallScore = session.OverallScore
	report.Cached = cached
	return report
}
