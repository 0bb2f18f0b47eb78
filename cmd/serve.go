package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/SRIDEV20/AI-powered-interview-simulator/ai"
	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	"github.com/SRIDEV20/AI-powered-interview-simulator/services"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "port to listen on (default 8080)")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := config.Validate(); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return err
	}

	db, pool, err := repository.Connect(ctx, connectOptions(config))
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer pool.Close()
	logger.Info("Connected to database")

	repo := repository.NewGORMRepository(db, logger.Named("repository"))
	if err := prepareDatabase(ctx, config, repo, logger, config.Database.AutoMigrate); err != nil {
		return err
	}

	generator, err := ai.NewGeminiGenerator(ctx, config.AI.GeminiAPIKey, config.AI.Model)
	if err != nil {
		logger.Error("Failed to create Gemini client", zap.Error(err))
		return err
	}
	assistant := ai.NewAssistant(generator, config.AI.Timeout, logger.Named("ai"))
	logger.Info("Gemini assistant initialized", zap.String("model", generator.Model()))

	var publisher events.Publisher
	if config.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(config.AMQP.URL, config.AMQP.Exchange, logger.Named("amqp"))
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", zap.Error(err))
			return err
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	server := services.NewServer(config, services.Dependencies{
		Repo:         repo,
		Pool:         pool,
		Collaborator: assistant,
		Publisher:    publisher,
		Logger:       logger,
	})
	return server.Start(ctx)
}
