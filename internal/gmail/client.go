package gmail

import (
	"context"
	"fmt"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/smartlabel/smartlabel/internal/google"
	"github.com/smartlabel/smartlabel/internal/instrumentation"
	"github.com/smartlabel/smartlabel/internal/retry"
)

// Client wraps the Gmail Users service. Every call is bounded by a
// per-call timeout, retried under the shared retry policy and recorded
// as one mailbox operation.
type Client struct {
	svc     *gmail.UsersService
	policy  retry.Policy
	timeout time.Duration
	metrics *instrumentation.Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetryPolicy overrides the retry policy for mailbox calls.
func WithRetryPolicy(p retry.Policy) ClientOption {
	return func(c *Client) { c.policy = p }
}

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithMetrics records every mailbox call on the given recorder.
func WithMetrics(m *instrumentation.Metrics) ClientOption {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient creates a Gmail client with OAuth2 authentication using the
// token cached at tokenPath.
func NewClient(ctx context.Context, tokenPath string, opts ...ClientOption) (*Client, error) {
	httpClient, err := google.GetHTTPClient(ctx, tokenPath)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	c := &Client{
		svc:     svc.Users,
		policy:  retry.DefaultPolicy(),
		timeout: 30 * time.Second,
		metrics: &instrumentation.Metrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// observe records one logical mailbox operation, retries included.
func (c *Client) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordMailboxOperation(ctx, operation, status, time.Since(start))
}

// ListMessages returns one page of message IDs, optionally filtered by
// label IDs.
func (c *Client) ListMessages(ctx context.Context, labelIDs []string, pageToken string, pageSize int64) (*MessagePage, error) {
	start := time.Now()
	page, err := retry.Do(ctx, c.policy, func() (*MessagePage, error) {
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()

		req := c.svc.Messages.List("me").MaxResults(pageSize).Context(callCtx)
		if len(labelIDs) > 0 {
			req = req.LabelIds(labelIDs...)
		}
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		page := &MessagePage{NextPageToken: res.NextPageToken}
		for _, m := range res.Messages {
			page.IDs = append(page.IDs, m.Id)
		}
		return page, nil
	})
	c.observe(ctx, "list_messages", start, err)
	return page, err
}

// GetMessage fetches a message and extracts headers and body.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Email, error) {
	start := time.Now()
	email, err := retry.Do(ctx, c.policy, func() (*Email, error) {
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()

		msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(callCtx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
		}
		return extractEmail(msg), nil
	})
	c.observe(ctx, "get_message", start, err)
	return email, err
}

// ListLabels lists all labels for the account.
func (c *Client) ListLabels(ctx context.Context) ([]*Label, error) {
	start := time.Now()
	labels, err := retry.Do(ctx, c.policy, func() ([]*Label, error) {
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()

		res, err := c.svc.Labels.List("me").Context(callCtx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}

		labels := make([]*Label, 0, len(res.Labels))
		for _, l := range res.Labels {
			labels = append(labels, &Label{ID: l.Id, Name: l.Name})
		}
		return labels, nil
	})
	c.observe(ctx, "list_labels", start, err)
	return labels, err
}

// CreateLabel creates a label with the given fully-qualified name.
func (c *Client) CreateLabel(ctx context.Context, name string) (*Label, error) {
	start := time.Now()
	label, err := retry.Do(ctx, c.policy, func() (*Label, error) {
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()

		created, err := c.svc.Labels.Create("me", &gmail.Label{
			Name:                  name,
			LabelListVisibility:   "labelShow",
			MessageListVisibility: "show",
		}).Context(callCtx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to create label %s: %w", name, err)
		}
		return &Label{ID: created.Id, Name: created.Name}, nil
	})
	c.observe(ctx, "create_label", start, err)
	return label, err
}

// DeleteLabel deletes a label by ID.
func (c *Client) DeleteLabel(ctx context.Context, labelID string) error {
	start := time.Now()
	_, err := retry.Do(ctx, c.policy, func() (struct{}, error) {
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()

		if err := c.svc.Labels.Delete("me", labelID).Context(callCtx).Do(); err != nil {
			return struct{}{}, fmt.Errorf("failed to delete label %s: %w", labelID, err)
		}
		return struct{}{}, nil
	})
	c.observe(ctx, "delete_label", start, err)
	return err
}

// ModifyMessageLabels adds and removes labels on a message.
func (c *Client) ModifyMessageLabels(ctx context.Context, messageID string, addLabelIDs, removeLabelIDs []string) error {
	start := time.Now()
	_, err := retry.Do(ctx, c.policy, func() (struct{}, error) {
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()

		_, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
			AddLabelIds:    addLabelIDs,
			RemoveLabelIds: removeLabelIDs,
		}).Context(callCtx).Do()
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to modify labels on message %s: %w", messageID, err)
		}
		return struct{}{}, nil
	})
	c.observe(ctx, "modify_message", start, err)
	return err
}
