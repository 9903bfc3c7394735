package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartlabel/smartlabel/internal/analyze"
	"github.com/smartlabel/smartlabel/internal/config"
	"github.com/smartlabel/smartlabel/internal/gmail"
	"github.com/smartlabel/smartlabel/internal/taxonomy"
)

func newAnalyzeCmd() *cobra.Command {
	var sample int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the inbox and generate a fresh category taxonomy",
		Long: `Sample recent inbox messages, collect sender, subject and content
patterns, and generate a new set of categories from them.

Any previously generated taxonomy is replaced, and the category labels
under the Smart/ parent are deleted so the next labeling run starts
clean. The parent label itself is kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}
			if sample > 0 {
				cfg.SampleSize = sample
			}

			logger := newLogger()
			ctx := cmd.Context()

			provider, err := newProvider(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize instrumentation: %w", err)
			}
			defer func() { _ = provider.Shutdown(ctx) }()

			client, err := newGmailClient(ctx, cfg, provider.Metrics())
			if err != nil {
				return fmt.Errorf("failed to create Gmail client: %w", err)
			}

			// A prior taxonomy means prior category labels; drop them
			// before regenerating so stale categories don't linger.
			// Deletion runs under the parent the old taxonomy recorded,
			// which may differ from the currently configured one.
			if taxonomy.Exists(cfg.TaxonomyPath()) {
				labels := gmail.NewLabelManager(client, parentLabel(cfg))
				deleted, err := labels.DeleteCategoryLabels(ctx)
				if err != nil {
					return fmt.Errorf("failed to delete existing category labels: %w", err)
				}
				fmt.Printf("Deleted %d existing category labels\n", deleted)
			}

			analyzer := analyze.NewAnalyzer(client, int64(cfg.PageSize), logger)
			report, err := analyzer.Run(ctx, cfg.SampleSize)
			if err != nil {
				return fmt.Errorf("inbox analysis failed: %w", err)
			}
			fmt.Printf("Analyzed %d of %d messages (%d errors)\n",
				report.Analyzed, report.TotalEmails, report.Errors)

			generator := analyze.NewGenerator(newCompleter(cfg, provider.Metrics()), logger)
			tax, err := generator.Generate(ctx, report, cfg.ParentLabel)
			if err != nil {
				return err
			}

			if err := taxonomy.Save(cfg.TaxonomyPath(), tax); err != nil {
				return err
			}

			fmt.Printf("\nGenerated %d categories:\n", len(tax.Categories))
			for _, name := range tax.Names() {
				cat := tax.Categories[name]
				fmt.Printf("  %s (%s): %s\n", name, cat.Priority, cat.Description)
			}
			fmt.Printf("\nSaved to %s\n", cfg.TaxonomyPath())
			fmt.Println(`Run "smartlabel setup" to review, then "smartlabel label" to apply.`)
			return nil
		},
	}

	cmd.Flags().IntVar(&sample, "sample", 0, "Number of recent inbox messages to sample (default from SMARTLABEL_SAMPLE_SIZE)")
	return cmd
}
