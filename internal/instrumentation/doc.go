// Package instrumentation provides OpenTelemetry metrics for the
// labeling pipeline: mailbox API operations, text-generation requests
// and per-run message counters.
//
// Metrics are off by default. Set SMARTLABEL_METRICS=true to export
// them through the stdout exporter; the zero-value Metrics recorder is
// a no-op, so callers never have to check whether instrumentation is
// active.
package instrumentation
