package cmd

import (
	"fmt"
	"log"

	"github.com/SRIDEV20/AI-powered-interview-simulator/logger"
	"github.com/SRIDEV20/AI-powered-interview-simulator/services"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const app = "interview-simulator"

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "AI powered mock interview backend",
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(services.SetConfigDefaults)

	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	if err := viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json")); err != nil {
		log.Fatalf("binding json flag: %v", err)
	}
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Fatalf("binding log-level flag: %v", err)
	}
}

// setup reads the configuration and builds the logger shared by every command.
func setup() (*services.Config, *zap.Logger, error) {
	bootstrap, err := logger.New(viper.GetBool("log.json"), viper.GetString("log.level"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	services.ReadConfigFile(bootstrap)

	config := services.LoadConfig()
	l, err := logger.New(config.Log.JSON, config.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return config, l.With(zap.String("app", app)), nil
}
