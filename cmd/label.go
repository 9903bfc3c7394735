package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/smartlabel/smartlabel/internal/classify"
	"github.com/smartlabel/smartlabel/internal/config"
	"github.com/smartlabel/smartlabel/internal/gmail"
	"github.com/smartlabel/smartlabel/internal/labeler"
	"github.com/smartlabel/smartlabel/internal/taxonomy"
)

func newLabelCmd() *cobra.Command {
	var (
		dryRun          bool
		maxMessages     int
		workers         int
		archiveCategory string
	)

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Classify and label unprocessed inbox messages",
		Long: `Enumerate the inbox, skip messages that already carry a category
label, classify the remainder and file each one under exactly one label
in the Smart/ hierarchy.

Failures on individual messages are counted and skipped; the run keeps
going. Run statistics are written to stats.yaml in the config directory
after every run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}

			tax, err := taxonomy.Load(cfg.TaxonomyPath())
			if err != nil {
				return err
			}
			parent := tax.ParentLabel
			if parent == "" {
				parent = cfg.ParentLabel
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

			if workers <= 0 {
				workers = cfg.Workers
			}

			classifier := classify.New(newCompleter(cfg, provider.Metrics()), tax, logger)
			labels := gmail.NewLabelManager(client, parent)
			run := labeler.New(client, labels, classifier, tax, provider.Metrics(), logger)

			if dryRun {
				fmt.Println("Dry run: messages will be classified but nothing will change")
			}

			snapshot, runErr := run.Run(ctx, labeler.Options{
				DryRun:          dryRun,
				MaxMessages:     maxMessages,
				Workers:         workers,
				ArchiveCategory: archiveCategory,
			})

			// Counts are reported even when the run was cut short.
			if err := snapshot.Save(cfg.StatsPath()); err != nil {
				logger.Warn("failed to persist run statistics", "error", err)
			}
			printSnapshot(snapshot)

			if runErr != nil {
				return fmt.Errorf("labeling run aborted: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify messages without applying any change")
	cmd.Flags().IntVar(&maxMessages, "max-messages", 0, "Maximum number of messages to process (0 = all)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent workers (default from SMARTLABEL_WORKERS)")
	cmd.Flags().StringVar(&archiveCategory, "archive-category", "", "Also remove messages in this category from the inbox")
	return cmd
}

func printSnapshot(s labeler.Snapshot) {
	fmt.Println("\nRun summary:")
	fmt.Printf("  Processed: %d\n", s.Processed)
	fmt.Printf("  Labeled:   %d\n", s.Labeled)
	if s.Archived > 0 {
		fmt.Printf("  Archived:  %d\n", s.Archived)
	}
	fmt.Printf("  Errors:    %d\n", s.Errors)

	if len(s.CategoryCounts) > 0 {
		names := make([]string, 0, len(s.CategoryCounts))
		for name := range s.CategoryCounts {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nCategory distribution:")
		for _, name := range names {
			fmt.Printf("  %s: %d\n", name, s.CategoryCounts[name])
		}
	}
}
