package services

import (
	"context"
	"fmt"

	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	repo   *repository.GORMRepository
	logger *zap.Logger
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(repo *repository.GORMRepository, logger *zap.Logger) *DatabaseSeeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatabaseSeeder{repo: repo, logger: logger}
}

// SeedDatabase creates the demo accounts. Existing accounts are left alone,
// so running it twice is harmless.
func (s *DatabaseSeeder) SeedDatabase(ctx context.Context) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// no admin users
	users := []models.User{
		{
			Email:    "test@example.com",
			Password: string(hashedPassword),
			FullName: "Test User",
			Role:     "user",
			IsActive: true,
		},
		{
			Email:    "demo@example.com",
			Password: string(hashedPassword),
			FullName: "Demo User",
			Role:     "user",
			IsActive: true,
		},
	}

	created := 0
	for _, user := range users {
		ok, err := s.seedUser(ctx, user)
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}

	s.logger.Info("Database seeding completed", zap.Int("created", created))
	return nil
}

// seedUser seeds a single user (idempotent)
func (s *DatabaseSeeder) seedUser(ctx context.Context, user models.User) (bool, error) {
	existingUser, err := s.repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return false, fmt.Errorf("error checking user %s: %w", user.Email, err)
	}
	if existingUser != nil {
		s.logger.Debug("User already exists, skipping", zap.String("email", user.Email))
		return false, nil
	}

	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return false, fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	s.logger.Info("Created user", zap.String("email", user.Email))
	return true, nil
}
