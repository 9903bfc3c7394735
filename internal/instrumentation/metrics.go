package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrOperation = "operation"
	attrStatus    = "status"
	attrCategory  = "category"
)

// Metrics provides methods for recording observability metrics. The
// zero value is a no-op recorder.
type Metrics struct {
	// Mailbox API metrics
	mailboxOperationsTotal   metric.Int64Counter
	mailboxOperationDuration metric.Float64Histogram

	// Generation service metrics
	generationRequestsTotal   metric.Int64Counter
	generationRequestDuration metric.Float64Histogram

	// Labeling run metrics
	messagesProcessedTotal metric.Int64Counter
	messagesLabeledTotal   metric.Int64Counter
	messagesArchivedTotal  metric.Int64Counter
	messageErrorsTotal     metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments
// initialized on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.mailboxOperationsTotal, err = meter.Int64Counter(
		"mailbox_operations_total",
		metric.WithDescription("Total number of mailbox API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailbox_operations_total counter: %w", err)
	}

	m.mailboxOperationDuration, err = meter.Float64Histogram(
		"mailbox_operation_duration_seconds",
		metric.WithDescription("Mailbox API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailbox_operation_duration_seconds histogram: %w", err)
	}

	m.generationRequestsTotal, err = meter.Int64Counter(
		"generation_requests_total",
		metric.WithDescription("Total number of text-generation requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation_requests_total counter: %w", err)
	}

	m.generationRequestDuration, err = meter.Float64Histogram(
		"generation_request_duration_seconds",
		metric.WithDescription("Text-generation request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation_request_duration_seconds histogram: %w", err)
	}

	m.messagesProcessedTotal, err = meter.Int64Counter(
		"messages_processed_total",
		metric.WithDescription("Total number of messages classified"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_processed_total counter: %w", err)
	}

	m.messagesLabeledTotal, err = meter.Int64Counter(
		"messages_labeled_total",
		metric.WithDescription("Total number of messages that received a label"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_labeled_total counter: %w", err)
	}

	m.messagesArchivedTotal, err = meter.Int64Counter(
		"messages_archived_total",
		metric.WithDescription("Total number of messages removed from the inbox"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_archived_total counter: %w", err)
	}

	m.messageErrorsTotal, err = meter.Int64Counter(
		"message_errors_total",
		metric.WithDescription("Total number of per-message processing failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message_errors_total counter: %w", err)
	}

	return m, nil
}

// RecordMailboxOperation records one mailbox API operation.
func (m *Metrics) RecordMailboxOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.mailboxOperationsTotal == nil || m.mailboxOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.mailboxOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.mailboxOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGenerationRequest records one text-generation request.
// Operation is "generate" or "classify".
func (m *Metrics) RecordGenerationRequest(ctx context.Context, operation, status string, duration time.Duration) {
	if m.generationRequestsTotal == nil || m.generationRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.generationRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.generationRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordMessageProcessed counts one classified message. Category
// cardinality is bounded by the taxonomy size.
func (m *Metrics) RecordMessageProcessed(ctx context.Context, category string) {
	if m.messagesProcessedTotal == nil {
		return
	}
	m.messagesProcessedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrCategory, category)))
}

// RecordMessageLabeled counts one labeled message.
func (m *Metrics) RecordMessageLabeled(ctx context.Context, category string) {
	if m.messagesLabeledTotal == nil {
		return
	}
	m.messagesLabeledTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrCategory, category)))
}

// RecordMessageArchived counts one message removed from the inbox.
func (m *Metrics) RecordMessageArchived(ctx context.Context) {
	if m.messagesArchivedTotal == nil {
		return
	}
	m.messagesArchivedTotal.Add(ctx, 1)
}

// RecordMessageError counts one per-message processing failure.
func (m *Metrics) RecordMessageError(ctx context.Context) {
	if m.messageErrorsTotal == nil {
		return
	}
	m.messageErrorsTotal.Add(ctx, 1)
}
