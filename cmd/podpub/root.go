package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/castforge/podpub/pkg/podpub/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "podpub",
		Short:         "Publish podcast feeds and episodes to object storage",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Credentials usually live in .env during local use; absence is
			// fine, the environment may carry them already.
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "podpub.yaml", "Configuration file path")

	rootCmd.AddCommand(newCreateFeedCommand(&configFlag))
	rootCmd.AddCommand(newAddEpisodeCommand(&configFlag))
	rootCmd.AddCommand(newRenderCommand(&configFlag))
	rootCmd.AddCommand(newServeCommand(&configFlag))

	return rootCmd
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadEnv()
	}
	return config.Load(path)
}
