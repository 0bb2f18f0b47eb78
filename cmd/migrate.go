package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	"github.com/SRIDEV20/AI-powered-interview-simulator/services"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return migrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("seed", false, "create the demo users after migrating")
	viper.BindPFlag("database.seed", migrateCmd.Flags().Lookup("seed"))
}

func migrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	config, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if config.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	db, pool, err := repository.Connect(ctx, connectOptions(config))
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := repository.NewGORMRepository(db, logger.Named("repository"))
	return prepareDatabase(ctx, config, repo, logger, true)
}

func connectOptions(config *services.Config) repository.ConnectOptions {
	return repository.ConnectOptions{
		URL:          config.Database.URL,
		LogLevel:     config.Database.LogLevel,
		MaxIdleConns: config.Database.MaxIdleConns,
		MaxOpenConns: config.Database.MaxOpenConns,
	}
}

// prepareDatabase migrates when asked to and seeds when configured.
func prepareDatabase(ctx context.Context, config *services.Config, repo *repository.GORMRepository, logger *zap.Logger, migrate bool) error {
	if migrate {
		if err := repo.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Database migration completed")
	}
	if config.Database.Seed {
		if err := services.NewDatabaseSeeder(repo, logger.Named("seeder")).SeedDatabase(ctx); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}
	return nil
}
