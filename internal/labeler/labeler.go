package labeler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/smartlabel/smartlabel/internal/classify"
	"github.com/smartlabel/smartlabel/internal/gmail"
	"github.com/smartlabel/smartlabel/internal/instrumentation"
	"github.com/smartlabel/smartlabel/internal/logging"
	"github.com/smartlabel/smartlabel/internal/taxonomy"
)

// inboxLabelID is the system label for inbox messages.
const inboxLabelID = "INBOX"

// Classifier assigns one category (or classify.ResultNone) to a
// message.
type Classifier interface {
	Classify(ctx context.Context, email *gmail.Email) (string, error)
}

// Options control a labeling run.
type Options struct {
	// DryRun classifies messages but applies no mailbox mutation.
	DryRun bool

	// MaxMessages caps how many unlabeled messages are processed.
	// Zero means no cap.
	MaxMessages int

	// Workers is the number of concurrent per-message workers.
	Workers int

	// ArchiveCategory, when non-empty, removes messages classified
	// into it from the inbox.
	ArchiveCategory string
}

// Labeler runs the batch labeling pipeline: enumerate the inbox,
// subtract already-classified messages, classify the remainder and
// apply labels. Failures on individual messages are absorbed into the
// run counters; only enumeration or label-setup failures abort a run.
type Labeler struct {
	api        gmail.API
	enum       *gmail.Enumerator
	labels     *gmail.LabelManager
	classifier Classifier
	tax        *taxonomy.Taxonomy
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

func New(api gmail.API, labels *gmail.LabelManager, classifier Classifier, tax *taxonomy.Taxonomy, metrics *instrumentation.Metrics, logger *slog.Logger) *Labeler {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Labeler{
		api:        api,
		enum:       gmail.NewEnumerator(api, gmail.MaxPageSize),
		labels:     labels,
		classifier: classifier,
		tax:        tax,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run executes one labeling pass and returns the run counters. The
// returned error is non-nil only for failures that abort the whole
// run; per-message failures are counted, logged and skipped.
func (l *Labeler) Run(ctx context.Context, opts Options) (Snapshot, error) {
	stats := NewStats()

	if !opts.DryRun {
		if err := l.ensureLabels(ctx); err != nil {
			return stats.Snapshot(), err
		}
	}

	unlabeled, categoryIDs, err := l.findUnlabeled(ctx)
	if err != nil {
		return stats.Snapshot(), err
	}

	if opts.MaxMessages > 0 && len(unlabeled) > opts.MaxMessages {
		unlabeled = unlabeled[:opts.MaxMessages]
	}

	l.logger.Info("starting labeling run",
		logging.Operation("label"),
		slog.Int("unlabeled", len(unlabeled)),
		slog.Bool("dry_run", opts.DryRun))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, id := range unlabeled {
		if gctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l.processMessage(gctx, id, categoryIDs, opts, stats)
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	snapshot := stats.Snapshot()
	l.logger.Info("labeling run finished",
		logging.Operation("label"),
		slog.Int("processed", snapshot.Processed),
		slog.Int("labeled", snapshot.Labeled),
		slog.Int("archived", snapshot.Archived),
		slog.Int("errors", snapshot.Errors))
	return snapshot, err
}

// ensureLabels creates the parent label and one child per category.
// Safe to call repeatedly.
func (l *Labeler) ensureLabels(ctx context.Context) error {
	if _, err := l.labels.EnsureParent(ctx); err != nil {
		return fmt.Errorf("failed to ensure parent label: %w", err)
	}
	for _, name := range l.tax.Names() {
		if _, err := l.labels.GetOrCreate(ctx, name); err != nil {
			return fmt.Errorf("failed to ensure label for category %s: %w", name, err)
		}
	}
	return nil
}

// findUnlabeled returns the inbox messages carrying no category label,
// in sorted order, plus the set of category label IDs.
func (l *Labeler) findUnlabeled(ctx context.Context) ([]string, map[string]string, error) {
	categoryLabels, err := l.labels.CategoryLabels(ctx)
	if err != nil {
		return nil, nil, err
	}

	// label ID -> label name, for sibling removal.
	categoryIDs := make(map[string]string, len(categoryLabels))
	for _, label := range categoryLabels {
		categoryIDs[label.ID] = label.Name
	}

	inbox, err := l.enum.ListMessageIDs(ctx, []string{inboxLabelID}, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}

	classified, err := l.enum.ListClassified(ctx, categoryLabels)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list classified messages: %w", err)
	}

	unlabeled := inbox.Difference(classified)
	ids := make([]string, 0, len(unlabeled))
	for id := range unlabeled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, categoryIDs, nil
}

// processMessage classifies and labels a single message. Every failure
// is absorbed into the run counters.
func (l *Labeler) processMessage(ctx context.Context, id string, categoryIDs map[string]string, opts Options, stats *Stats) {
	email, err := l.api.GetMessage(ctx, id)
	if err != nil {
		l.recordError(ctx, id, "failed to fetch message", err, stats)
		return
	}

	category, err := l.classifier.Classify(ctx, email)
	if err != nil {
		l.recordError(ctx, id, "failed to classify message", err, stats)
		return
	}

	stats.RecordProcessed(category)
	l.metrics.RecordMessageProcessed(ctx, category)

	// A message that fits no category is skipped and counted as an
	// error, so runs surface how much of the inbox the taxonomy misses.
	if category == classify.ResultNone {
		stats.RecordError()
		l.metrics.RecordMessageError(ctx)
		l.logger.Debug("message fits no category",
			logging.Operation("label"),
			logging.MessageID(id))
		return
	}

	if opts.DryRun {
		l.logger.Info("would label message",
			logging.Operation("label"),
			logging.MessageID(id),
			logging.Category(category))
		return
	}

	label, err := l.labels.GetOrCreate(ctx, category)
	if err != nil {
		l.recordError(ctx, id, "failed to resolve label", err, stats)
		return
	}

	// Remove any sibling category labels so each message carries at
	// most one.
	var removes []string
	for _, labelID := range email.LabelIDs {
		if _, ok := categoryIDs[labelID]; ok && labelID != label.ID {
			removes = append(removes, labelID)
		}
	}

	archive := opts.ArchiveCategory != "" && category == opts.ArchiveCategory
	if archive {
		removes = append(removes, inboxLabelID)
	}

	if err := l.api.ModifyMessageLabels(ctx, id, []string{label.ID}, removes); err != nil {
		l.recordError(ctx, id, "failed to apply label", err, stats)
		return
	}

	stats.RecordLabeled()
	l.metrics.RecordMessageLabeled(ctx, category)
	if archive {
		stats.RecordArchived()
		l.metrics.RecordMessageArchived(ctx)
	}

	l.logger.Debug("labeled message",
		logging.Operation("label"),
		logging.MessageID(id),
		logging.Category(category),
		logging.Label(label.Name))
}

func (l *Labeler) recordError(ctx context.Context, id, msg string, err error, stats *Stats) {
	stats.RecordError()
	l.metrics.RecordMessageError(ctx)
	l.logger.Warn(msg,
		logging.Operation("label"),
		logging.MessageID(id),
		logging.Err(err))
}
