package gmail

import (
	"context"
)

// API defines the interface for mailbox operations.
// This interface enables mocking for tests without hitting the real API.
type API interface {
	// ListMessages returns one page of message IDs, optionally filtered
	// by label IDs. Use pageToken for pagination.
	ListMessages(ctx context.Context, labelIDs []string, pageToken string, pageSize int64) (*MessagePage, error)

	// GetMessage fetches a single message and extracts its headers and
	// body according to the body-extraction policy.
	GetMessage(ctx context.Context, messageID string) (*Email, error)

	// ListLabels returns all labels for the account.
	ListLabels(ctx context.Context) ([]*Label, error)

	// CreateLabel creates a label with the given fully-qualified name.
	CreateLabel(ctx context.Context, name string) (*Label, error)

	// DeleteLabel deletes a label by ID.
	DeleteLabel(ctx context.Context, labelID string) error

	// ModifyMessageLabels adds and removes labels on a message.
	ModifyMessageLabels(ctx context.Context, messageID string, addLabelIDs, removeLabelIDs []string) error
}

// Label represents a mailbox label.
type Label struct {
	ID   string
	Name string
}

// MessagePage contains one page of message IDs.
type MessagePage struct {
	IDs           []string
	NextPageToken string
}

// Email holds the lazily fetched fields of one message. Immutable
// within a run.
type Email struct {
	ID       string
	From     string
	Subject  string
	Body     string
	LabelIDs []string
}
