package main

import (
	"github.com/aretw0/funnel/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reference HTTP service",
	Long: `Serves the public funnel API (definitions, analytics, leads), hosted
playback sessions and Prometheus metrics. Definitions are seeded from the
catalog directory into the configured storage (memory or redis).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("storage") {
			cfg.Storage, _ = cmd.Flags().GetString("storage")
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		sigCtx, stop := cli.WithShutdownSignals(cmd.Context(), logger)
		defer stop()
		return cli.Serve(sigCtx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides FUNNEL_ADDR)")
	serveCmd.Flags().String("storage", "memory", "Storage backend: memory or redis (overrides FUNNEL_STORAGE)")
}
