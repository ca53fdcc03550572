package cli

import (
	"os"

	"github.com/spf13/cobra"

	"fintrex-quiz/internal/logger"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	logger.Init()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	if envPort == "" {
		envPort = "4000"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "fintrex-quiz",
		Short: "Fintrex Quiz backend: timed quiz sessions and one-attempt player records",
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
