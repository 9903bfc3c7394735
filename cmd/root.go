package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartlabel/smartlabel/internal/config"
	"github.com/smartlabel/smartlabel/internal/gmail"
	"github.com/smartlabel/smartlabel/internal/instrumentation"
	"github.com/smartlabel/smartlabel/internal/llm"
	"github.com/smartlabel/smartlabel/internal/logging"
	"github.com/smartlabel/smartlabel/internal/retry"
	"github.com/smartlabel/smartlabel/internal/taxonomy"
)

// rootCmd represents the base command for the smartlabel application
var rootCmd = &cobra.Command{
	Use:   "smartlabel",
	Short: "Organizes a Gmail inbox with generated smart labels",
	Long: `smartlabel analyzes your Gmail inbox, generates a set of mutually
exclusive categories for it, and files every inbox message under a
matching label in the Smart/ hierarchy.

Typical workflow:
  smartlabel analyze   # sample the inbox and generate categories
  smartlabel setup     # review and edit the generated categories
  smartlabel label     # classify and label unprocessed inbox messages
  smartlabel verify    # audit the label hierarchy for drift`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "smartlabel version %s\n" .Version}}`)

	// If no subcommand is provided, run the label command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "label")
	}

	// Interrupts cancel the run; in-flight messages finish, no new
	// work starts.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newLabelCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// newLogger builds the application logger from the environment.
func newLogger() *slog.Logger {
	return logging.New()
}

// newProvider initializes metrics export for one command run.
func newProvider(ctx context.Context) (*instrumentation.Provider, error) {
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	return instrumentation.NewProvider(ctx, instrConfig)
}

// newGmailClient opens the mailbox client using the cached OAuth token.
func newGmailClient(ctx context.Context, cfg *config.Config, metrics *instrumentation.Metrics) (*gmail.Client, error) {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.MaxAttempts

	return gmail.NewClient(ctx, cfg.TokenPath(),
		gmail.WithRetryPolicy(policy),
		gmail.WithCallTimeout(cfg.RequestTimeout),
		gmail.WithMetrics(metrics))
}

// newCompleter builds the generation-service client from configuration.
func newCompleter(cfg *config.Config, metrics *instrumentation.Metrics) *llm.Client {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.MaxAttempts

	return llm.NewClient(cfg.CompletionsURL, cfg.APIKey, cfg.Model,
		llm.WithRateLimit(cfg.GenerationRate),
		llm.WithRetryPolicy(policy),
		llm.WithMetrics(metrics))
}

// parentLabel returns the parent recorded in the persisted taxonomy,
// falling back to the configured default. Category labels always live
// under the parent the taxonomy was generated for, even when the
// configured name has changed since.
func parentLabel(cfg *config.Config) string {
	if tax, err := taxonomy.Load(cfg.TaxonomyPath()); err == nil && tax.ParentLabel != "" {
		return tax.ParentLabel
	}
	return cfg.ParentLabel
}
