package analyze

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smartlabel/smartlabel/internal/gmail"
	"github.com/smartlabel/smartlabel/internal/logging"
)

// inboxLabelID is the system label for inbox messages.
const inboxLabelID = "INBOX"

// Analyzer samples recent inbox messages and collects the frequency
// patterns that seed taxonomy generation.
type Analyzer struct {
	api    gmail.API
	enum   *gmail.Enumerator
	logger *slog.Logger
}

func NewAnalyzer(api gmail.API, pageSize int64, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		api:    api,
		enum:   gmail.NewEnumerator(api, pageSize),
		logger: logger,
	}
}

// Run samples up to sampleSize inbox messages and returns the pattern
// report. A message that cannot be fetched is counted as an error and
// skipped; only a failing list call aborts the run.
func (a *Analyzer) Run(ctx context.Context, sampleSize int) (*Report, error) {
	a.logger.Info("analyzing inbox sample",
		logging.Operation("analyze"),
		slog.Int("sample_size", sampleSize))

	ids, err := a.enum.ListMessageIDs(ctx, []string{inboxLabelID}, sampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no messages found in inbox")
	}

	collector := NewCollector()
	for id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		email, err := a.api.GetMessage(ctx, id)
		if err != nil {
			a.logger.Warn("skipping unreadable message",
				logging.Operation("analyze"),
				logging.MessageID(id),
				logging.Err(err))
			collector.AddError()
			continue
		}
		collector.Add(email)
	}

	report := collector.Report(len(ids))
	a.logger.Info("inbox analysis complete",
		logging.Operation("analyze"),
		slog.Int("analyzed", report.Analyzed),
		slog.Int("errors", report.Errors))
	return report, nil
}
