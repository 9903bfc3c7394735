package labeler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/smartlabel/smartlabel/internal/gmail"
	"github.com/smartlabel/smartlabel/internal/logging"
)

// LabelAudit is the per-label section of a verification report.
type LabelAudit struct {
	Name       string `yaml:"name"`
	Total      int    `yaml:"total"`
	InInbox    int    `yaml:"in_inbox"`
	NotInInbox int    `yaml:"not_in_inbox"`
}

// VerifyReport summarizes the consistency of the label hierarchy
// against the inbox.
type VerifyReport struct {
	InboxTotal    int          `yaml:"inbox_total"`
	LabeledTotal  int          `yaml:"labeled_total"`
	UniqueLabeled int          `yaml:"unique_labeled"`
	Unlabeled     int          `yaml:"unlabeled"`
	NotInInbox    int          `yaml:"not_in_inbox"`
	Labels        []LabelAudit `yaml:"labels"`

	// MultiLabeled maps message IDs carrying more than one category
	// label to the label names involved.
	MultiLabeled map[string][]string `yaml:"multi_labeled,omitempty"`
}

// Clean reports whether the audit found no inconsistencies. Unlabeled
// inbox messages are expected between runs; multi-labeled messages are
// not.
func (r *VerifyReport) Clean() bool {
	return len(r.MultiLabeled) == 0
}

// Verifier audits the label hierarchy for consistency: messages with
// more than one category label, inbox messages with none, and labeled
// messages no longer in the inbox.
type Verifier struct {
	enum   *gmail.Enumerator
	labels *gmail.LabelManager
	logger *slog.Logger
}

func NewVerifier(api gmail.API, labels *gmail.LabelManager, logger *slog.Logger) *Verifier {
	return &Verifier{
		enum:   gmail.NewEnumerator(api, gmail.MaxPageSize),
		labels: labels,
		logger: logger,
	}
}

// Run performs the audit.
func (v *Verifier) Run(ctx context.Context) (*VerifyReport, error) {
	categoryLabels, err := v.labels.CategoryLabels(ctx)
	if err != nil {
		return nil, err
	}

	inbox, err := v.enum.ListMessageIDs(ctx, []string{inboxLabelID}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}

	report := &VerifyReport{
		InboxTotal:   len(inbox),
		MultiLabeled: make(map[string][]string),
	}

	// message ID -> category label names it carries.
	messageLabels := make(map[string][]string)

	sort.Slice(categoryLabels, func(i, j int) bool {
		return categoryLabels[i].Name < categoryLabels[j].Name
	})

	for _, label := range categoryLabels {
		ids, err := v.enum.ListMessageIDs(ctx, []string{label.ID}, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list messages for label %s: %w", label.Name, err)
		}

		audit := LabelAudit{Name: label.Name, Total: len(ids)}
		for id := range ids {
			messageLabels[id] = append(messageLabels[id], label.Name)
			if inbox.Contains(id) {
				audit.InInbox++
			} else {
				audit.NotInInbox++
			}
		}
		report.LabeledTotal += len(ids)
		report.Labels = append(report.Labels, audit)
	}

	report.UniqueLabeled = len(messageLabels)
	for id, names := range messageLabels {
		if len(names) > 1 {
			sort.Strings(names)
			report.MultiLabeled[id] = names
		}
		if !inbox.Contains(id) {
			report.NotInInbox++
		}
	}

	for id := range inbox {
		if _, ok := messageLabels[id]; !ok {
			report.Unlabeled++
		}
	}

	v.logger.Info("label audit complete",
		logging.Operation("verify"),
		slog.Int("inbox_total", report.InboxTotal),
		slog.Int("unique_labeled", report.UniqueLabeled),
		slog.Int("multi_labeled", len(report.MultiLabeled)),
		slog.Int("unlabeled", report.Unlabeled))
	return report, nil
}
