package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/smartlabel/smartlabel/internal/config"
	"github.com/smartlabel/smartlabel/internal/gmail"
	"github.com/smartlabel/smartlabel/internal/labeler"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Audit the label hierarchy for inconsistencies",
		Long: `Read-only audit of the Smart/ label hierarchy: per-label message
counts, messages carrying more than one category label, inbox messages
with no category label, and labeled messages no longer in the inbox.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := newGmailClient(ctx, cfg, nil)
			if err != nil {
				return fmt.Errorf("failed to create Gmail client: %w", err)
			}

			verifier := labeler.NewVerifier(client, gmail.NewLabelManager(client, parentLabel(cfg)), newLogger())
			report, err := verifier.Run(ctx)
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			fmt.Printf("Inbox messages:         %d\n", report.InboxTotal)
			fmt.Printf("Labeled messages:       %d (%d unique)\n", report.LabeledTotal, report.UniqueLabeled)
			fmt.Printf("Unlabeled in inbox:     %d\n", report.Unlabeled)
			fmt.Printf("Labeled, not in inbox:  %d\n", report.NotInInbox)

			if len(report.Labels) > 0 {
				fmt.Println("\nPer-label counts:")
				for _, audit := range report.Labels {
					fmt.Printf("  %s: %d total, %d in inbox\n", audit.Name, audit.Total, audit.InInbox)
				}
			}

			if len(report.MultiLabeled) > 0 {
				ids := make([]string, 0, len(report.MultiLabeled))
				for id := range report.MultiLabeled {
					ids = append(ids, id)
				}
				sort.Strings(ids)

				fmt.Printf("\nMessages with multiple category labels (%d):\n", len(ids))
				for _, id := range ids {
					fmt.Printf("  %s: %v\n", id, report.MultiLabeled[id])
				}
				return fmt.Errorf("found %d messages with more than one category label", len(ids))
			}

			fmt.Println("\nNo inconsistencies found")
			return nil
		},
	}
}
