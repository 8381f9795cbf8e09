package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/funnel/internal/cli"
	"github.com/aretw0/funnel/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Funnel plays marketing funnels page by page",
	Long: `Funnel loads funnel definitions (from a local catalog or a remote API),
plays them in the terminal, checks them for broken navigation and serves them
over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file read before the environment")
	rootCmd.PersistentFlags().String("catalog", "", "Directory of funnel definitions (overrides FUNNEL_CATALOG_DIR)")
	rootCmd.PersistentFlags().String("api-url", "", "Remote funnel API (overrides FUNNEL_API_URL)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log lifecycle events at debug level")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogDir, _ = cmd.Flags().GetString("catalog")
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL, _ = cmd.Flags().GetString("api-url")
	}
	return cfg, nil
}

// setup loads configuration and the logger every command needs.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
