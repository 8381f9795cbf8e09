package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/funnel/internal/cli"
	"github.com/aretw0/funnel/internal/validator"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file-or-uuid...]",
	Short: "Check funnels for broken navigation",
	Long: `Parses each definition and reports dangling navigation targets, duplicate
ids and pages no path reaches. Arguments are definition files or funnel uuids;
without arguments every funnel in the catalog is checked.

Warnings do not fail the command; use --strict to fail on them too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		funnels, err := collectFunnels(cmd, args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, f := range funnels {
			report := validator.Lint(f)
			printReport(out, f, report)
			if report.HasErrors() || (strict && len(report.Issues) > 0) {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("validation failed for %d of %d funnels", failed, len(funnels))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat warnings as failures")
}

func printReport(out io.Writer, f *domain.Funnel, report *validator.Report) {
	if len(report.Issues) == 0 {
		fmt.Fprintf(out, "%s: valid ✅\n", f.UUID)
		return
	}
	fmt.Fprintf(out, "%s:\n", f.UUID)
	for _, issue := range report.Issues {
		fmt.Fprintf(out, "  %s\n", issue)
	}
}

// collectFunnels resolves arguments to definitions: existing paths are
// parsed directly, anything else is fetched by uuid.
func collectFunnels(cmd *cobra.Command, args []string) ([]*domain.Funnel, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	source, _ := cli.NewSource(cfg, logger)

	if len(args) == 0 {
		catalog, ok := source.(interface {
			Funnels(ctx context.Context) ([]*domain.Funnel, error)
		})
		if !ok {
			return nil, fmt.Errorf("pass funnel uuids to validate against %s", cfg.APIURL)
		}
		funnels, err := catalog.Funnels(ctx)
		if err != nil {
			return nil, err
		}
		if len(funnels) == 0 {
			return nil, fmt.Errorf("no funnels found in %s", cfg.CatalogDir)
		}
		return funnels, nil
	}

	var funnels []*domain.Funnel
	for _, arg := range args {
		if data, err := os.ReadFile(arg); err == nil {
			f, err := domain.ParseFunnel(data, domain.FormatFromPath(arg))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", arg, err)
			}
			if f.UUID == "" {
				f.UUID = arg
			}
			funnels = append(funnels, f)
			continue
		}
		f, err := source.Fetch(ctx, arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		funnels = append(funnels, f)
	}
	return funnels, nil
}
