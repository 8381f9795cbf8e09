package main

import (
	"fmt"

	"github.com/aretw0/funnel/internal/cli"
	"github.com/aretw0/funnel/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <funnel-uuid>",
	Short: "Export the funnel navigation as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the funnel's pages and navigation
rules. With --session, pages visited by a saved play session are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		source, _ := cli.NewSource(cfg, logger)
		f, err := source.Fetch(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			state, err := getStore(cmd).Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("loading session '%s': %w", sessionID, err)
			}
			overlay = graph.OverlayFromState(f, state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(f, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the path of a saved session")
}
