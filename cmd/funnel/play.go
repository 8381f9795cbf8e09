package main

import (
	"github.com/aretw0/funnel/internal/cli"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <funnel-uuid>",
	Short: "Play a funnel in the terminal",
	Long: `Fetches the funnel and walks through it page by page.
Each input is asked in turn; then Enter advances (or submits on contact
pages), 'b' goes back and 'q' quits.

With --session the progress is saved and resumed on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		headless, _ := cmd.Flags().GetBool("headless")
		debug, _ := cmd.Flags().GetBool("debug")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")

		sigCtx, stop := cli.WithShutdownSignals(cmd.Context(), logger)
		defer stop()

		source, reporter := cli.NewSource(cfg, logger)
		return cli.Play(sigCtx, source, reporter, logger, cli.PlayOptions{
			UUID:        args[0],
			Headless:    headless,
			Debug:       debug,
			SessionID:   sessionID,
			SessionsDir: sessionsDir(cmd),
			Fresh:       fresh,
			Input:       cmd.InOrStdin(),
			Output:      cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("headless", false, "Run in headless mode (no prompts, strict IO)")
	playCmd.Flags().StringP("session", "s", "", "Persist progress under this session id")
	playCmd.Flags().Bool("fresh", false, "Discard saved progress for --session before playing")
}
