package main

import (
	"github.com/spf13/cobra"

	"github.com/castforge/podpub/pkg/podpub/config"
	"github.com/castforge/podpub/pkg/podpub/httpapi"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve published feeds and audio over HTTP",
		Long: "Serve published objects straight from the configured storage backend.\n" +
			"Intended for the fs backend, which has no public endpoint of its own.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger()
			engine, err := config.BuildEngine(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer engine.Close()

			server := httpapi.New(engine.Store, logger)
			return server.ListenAndServe(cfg.Server.Addr)
		},
	}
}
