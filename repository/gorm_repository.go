package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GORMRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGORMRepository(db *gorm.DB, logger *zap.Logger) *GORMRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GORMRepository{db: db, logger: logger}
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(models.All()...)
}

// Transaction runs fn against a repository bound to a single transaction.
// Everything fn does commits or rolls back together.
func (r *GORMRepository) Transaction(ctx context.Context, fn func(tx *GORMRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMRepository{db: tx, logger: r.logger})
	})
}

// Ping checks the underlying connection.
func (r *GORMRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		r.logger.Error("Failed to create user", zap.Error(err))
		return err
	}
	r.logger.Info("User created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by email", zap.Error(err), zap.String("email", email))
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by ID", zap.Error(err), zap.String("user_id", id))
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) UpdateUser(ctx context.Context, userID string, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		r.logger.Error("Failed to update user", zap.Error(err), zap.String("user_id", userID))
		return err
	}
	return nil
}

// Token operations
func (r *GORMRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		r.logger.Error("Failed to create refresh token", zap.Error(err))
		return err
	}
	return nil
}

func (r *GORMRepository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, time.Now()).First(&refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get refresh token", zap.Error(err))
		return nil, err
	}
	return &refreshToken, nil
}

func (r *GORMRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		r.logger.Error("Failed to delete user refresh tokens", zap.Error(err), zap.String("user_id", userID))
		return err
	}
	return nil
}

// Interview session operations

// CreateInterviewSession inserts the session and its questions in one transaction.
func (r *GORMRepository) CreateInterviewSession(ctx context.Context, session *models.InterviewSession, questions []models.Question) error {
	err := r.Transaction(ctx, func(tx *GORMRepository) error {
		if err := tx.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		for i := range questions {
			questions[i].SessionID = session.ID
		}
		if len(questions) > 0 {
			if err := tx.db.WithContext(ctx).Omit(clause.Associations).Create(&questions).Error; err != nil {
				return fmt.Errorf("failed to create questions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create interview session", zap.Error(err), zap.String("user_id", session.UserID))
		return err
	}
	session.Questions = questions
	r.logger.Info("Interview session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.Int("questions", len(questions)),
	)
	return nil
}

// GetInterviewSession returns the session if it exists and belongs to userID.
func (r *GORMRepository) GetInterviewSession(ctx context.Context, sessionID, userID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get interview session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}
	return &session, nil
}

// LockInterviewSession reads the session row with FOR UPDATE. Only meaningful
// on a repository returned by Transaction.
func (r *GORMRepository) LockInterviewSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", sessionID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to lock interview session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}
	return &session, nil
}

// ListInterviewSessions returns the user's sessions, most recent first.
func (r *GORMRepository) ListInterviewSessions(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		r.logger.Error("Failed to list interview sessions", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}
	return sessions, nil
}

// CountQuestions returns the number of questions per session id.
func (r *GORMRepository) CountQuestions(ctx context.Context, sessionIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		SessionID string
		Total     int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("session_id, COUNT(*) AS total").
		Where("session_id IN ?", sessionIDs).
		Group("session_id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("Failed to count questions", zap.Error(err))
		return nil, err
	}
	for _, row := range rows {
		counts[row.SessionID] = row.Total
	}
	return counts, nil
}

// CompleteInterviewSession marks the session completed at the given time.
// It returns false when no such session exists.
func (r *GORMRepository) CompleteInterviewSession(ctx context.Context, sessionID, userID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(map[string]interface{}{
			"status":       models.StatusCompleted,
			"completed_at": at,
		})
	if result.Error != nil {
		r.logger.Error("Failed to complete interview session", zap.Error(result.Error), zap.String("session_id", sessionID))
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteInterviewSession removes a session together with its questions,
// responses and skill gaps.
func (r *GORMRepository) DeleteInterviewSession(ctx context.Context, sessionID, userID string) (bool, error) {
	var deleted bool
	err := r.Transaction(ctx, func(tx *GORMRepository) error {
		db := tx.db.WithContext(ctx)
		if err := db.Where("session_id = ?", sessionID).Delete(&models.SkillGap{}).Error; err != nil {
			return err
		}
		if err := db.Where("session_id = ?", sessionID).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		if err := db.Where("session_id = ?", sessionID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		result := db.Where("id = ? AND user_id = ?", sessionID, userID).Delete(&models.InterviewSession{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// roll back the child deletes, the session was never ours
			return gorm.ErrRecordNotFound
		}
		deleted = true
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to delete interview session", zap.Error(err), zap.String("session_id", sessionID))
		return false, err
	}
	r.logger.Info("Interview session deleted", zap.String("session_id", sessionID), zap.String("user_id", userID))
	return deleted, nil
}

// UpdateOverallScore recomputes the session's overall score from every scored
// response and stores it. The score is set to NULL when nothing is scored.
func (r *GORMRepository) UpdateOverallScore(ctx context.Context, sessionID string) (*float64, error) {
	var scores []float64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("session_id = ? AND score IS NOT NULL", sessionID).
		Pluck("score", &scores).Error
	if err != nil {
		r.logger.Error("Failed to load response scores", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}

	var overall *float64
	if len(scores) > 0 {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		avg := models.RoundScore(sum / float64(len(scores)))
		overall = &avg
	}

	err = r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("id = ?", sessionID).
		Update("overall_score", overall).Error
	if err != nil {
		r.logger.Error("Failed to update overall score", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}
	return overall, nil
}

// Question operations
func (r *GORMRepository) GetQuestions(ctx context.Context, sessionID string) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("order_index").
		Find(&questions).Error
	if err != nil {
		r.logger.Error("Failed to get questions", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}
	return questions, nil
}

func (r *GORMRepository) GetQuestion(ctx context.Context, sessionID, questionID string) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Where("id = ? AND session_id = ?", questionID, sessionID).
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get question", zap.Error(err), zap.String("question_id", questionID))
		return nil, err
	}
	return &question, nil
}

// Response operations
func (r *GORMRepository) ResponseExists(ctx context.Context, questionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	if err != nil {
		r.logger.Error("Failed to check response", zap.Error(err), zap.String("question_id", questionID))
		return false, err
	}
	return count > 0, nil
}

// CreateResponse inserts a response. A second response for the same question
// fails with ErrDuplicate.
func (r *GORMRepository) CreateResponse(ctx context.Context, response *models.Response) error {
	if err := r.db.WithContext(ctx).Create(response).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("response for question %s: %w", response.QuestionID, ErrDuplicate)
		}
		r.logger.Error("Failed to create response", zap.Error(err), zap.String("question_id", response.QuestionID))
		return err
	}
	r.logger.Info("Response created",
		zap.String("response_id", response.ID),
		zap.String("question_id", response.QuestionID),
		zap.String("session_id", response.SessionID),
	)
	return nil
}

func (r *GORMRepository) GetResponses(ctx context.Context, sessionID string) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("answered_at").
		Find(&responses).Error
	if err != nil {
		r.logger.Error("Failed to get responses", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}
	return responses, nil
}

// Skill gap operations
func (r *GORMRepository) GetSkillGapsBySession(ctx context.Context, sessionID string) ([]models.SkillGap, error) {
	var gaps []models.SkillGap
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("gap_score ASC, skill_name ASC").
		Find(&gaps).Error
	if err != nil {
		r.logger.Error("Failed to get skill gaps", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}
	return gaps, nil
}

func (r *GORMRepository) GetSkillGapsByUser(ctx context.Context, userID string) ([]models.SkillGap, error) {
	var gaps []models.SkillGap
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("gap_score ASC, skill_name ASC").
		Find(&gaps).Error
	if err != nil {
		r.logger.Error("Failed to get user skill gaps", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}
	return gaps, nil
}

// ReplaceSkillGaps deletes every gap stored for the session and inserts gaps.
// Call it inside Transaction so the swap is atomic.
func (r *GORMRepository) ReplaceSkillGaps(ctx context.Context, sessionID string, gaps []models.SkillGap) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("session_id = ?", sessionID).Delete(&models.SkillGap{}).Error; err != nil {
		r.logger.Error("Failed to delete skill gaps", zap.Error(err), zap.String("session_id", sessionID))
		return err
	}
	if len(gaps) == 0 {
		return nil
	}
	if err := db.Create(&gaps).Error; err != nil {
		r.logger.Error("Failed to create skill gaps", zap.Error(err), zap.String("session_id", sessionID))
		return err
	}
	r.logger.Info("Skill gaps stored", zap.String("session_id", sessionID), zap.Int("skills", len(gaps)))
	return nil
}

// Stats
func (r *GORMRepository) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	stats := &models.UserStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.InterviewSession{}).Where("user_id = ?", userID).Count(&stats.TotalInterviews).Error; err != nil {
		r.logger.Error("Failed to count interviews", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}
	if err := db.Model(&models.InterviewSession{}).
		Where("user_id = ? AND status = ?", userID, models.StatusCompleted).
		Count(&stats.CompletedInterviews).Error; err != nil {
		r.logger.Error("Failed to count completed interviews", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}

	var responses []models.Response
	err := db.Model(&models.Response{}).
		Joins("JOIN interview_sessions ON interview_sessions.id = responses.session_id").
		Where("interview_sessions.user_id = ?", userID).
		Select("responses.score", "responses.answered_at").
		Find(&responses).Error
	if err != nil {
		r.logger.Error("Failed to load user responses", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}

	stats.TotalQuestionsAnswered = int64(len(responses))
	var sum float64
	var scored int
	for i := range responses {
		resp := responses[i]
		if stats.LastActivity == nil || resp.AnsweredAt.After(*stats.LastActivity) {
			at := resp.AnsweredAt
			stats.LastActivity = &at
		}
		if resp.Score == nil {
			continue
		}
		sum += *resp.Score
		scored++
		if *resp.Score > stats.BestScore {
			stats.BestScore = *resp.Score
		}
	}
	if scored > 0 {
		stats.AverageScore = models.RoundScore(sum / float64(scored))
	}
	stats.BestScore = models.RoundScore(stats.BestScore)

	return stats, nil
}
