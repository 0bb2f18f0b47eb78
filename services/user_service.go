package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	"go.uber.org/zap"
)

const (
	maxFullNameLength  = 255
	maxAvatarURLLength = 500
)

type UserService struct {
	repo   *repository.GORMRepository
	logger *zap.Logger
}

func NewUserService(repo *repository.GORMRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger.Named("users")}
}

type UpdateProfileInput struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// Stats aggregates the principal's sessions and scored answers.
func (s *UserService) Stats(ctx context.Context, p Principal) (*models.UserStats, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	stats, err := s.repo.GetUserStats(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}

func (s *UserService) Profile(ctx context.Context, p Principal) (*models.User, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	user, err := s.repo.GetUserByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, notFound("user %s not found", p.ID)
	}
	return user, nil
}

// UpdateProfile changes the fields present in the input and returns the
// stored user.
func (s *UserService) UpdateProfile(ctx context.Context, p Principal, in UpdateProfileInput) (*models.User, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if utf8.RuneCountInString(name) > maxFullNameLength {
			return nil, invalid("full_name must be at most %d characters", maxFullNameLength)
		}
		updates["full_name"] = name
	}
	if in.AvatarURL != nil {
		avatar := strings.TrimSpace(*in.AvatarURL)
		if len(avatar) > maxAvatarURLLength {
			return nil, invalid("avatar_url must be at most %d characters", maxAvatarURLLength)
		}
		if avatar != "" {
			u, err := url.Parse(avatar)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, invalid("avatar_url must be an http or https URL")
			}
		}
		updates["avatar_url"] = avatar
	}
	if len(updates) == 0 {
		return nil, invalid("nothing to update")
	}

	if err := s.repo.UpdateUser(ctx, p.ID, updates); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.logger.Info("Profile updated", zap.String("user_id", p.ID))
	return s.Profile(ctx, p)
}
