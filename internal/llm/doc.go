// Package llm is a minimal client for an OpenAI-compatible
// chat-completions endpoint. It is used in two shapes: taxonomy
// discovery (larger token budget, strict JSON output) and per-message
// classification (tiny token budget, a single bare category token).
// Requests are rate limited and retried under the shared retry policy.
package llm
