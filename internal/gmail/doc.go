// Package gmail provides the mailbox side of the labeling pipeline:
// a thin client over the Gmail API, paginated deduplicating message
// enumeration, and idempotent management of the hierarchical label
// structure under one parent label.
//
// All higher-level logic is written against the API interface so tests
// can run against an in-memory fake instead of the real service. The
// concrete Client bounds every remote call with a per-call timeout and
// the shared retry policy.
//
// Body-extraction policy: the first text/plain part wins, then the
// first text/html part, then an explicit empty-content sentinel.
// Extraction never returns an error.
package gmail
