package gmail

import (
	"context"
	"fmt"
)

// MaxPageSize is the largest page the Gmail list API serves.
const MaxPageSize = 500

// IDSet is a set of message identifiers.
type IDSet map[string]struct{}

// Add inserts id into the set.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Union adds every element of other to the set.
func (s IDSet) Union(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Difference returns the elements of s not present in other.
func (s IDSet) Difference(other IDSet) IDSet {
	out := make(IDSet)
	for id := range s {
		if !other.Contains(id) {
			out.Add(id)
		}
	}
	return out
}

// Enumerator accumulates message IDs across list pages with
// deduplication.
type Enumerator struct {
	api      API
	pageSize int64
}

// NewEnumerator creates an Enumerator. pageSize is clamped to the API
// maximum of 500.
func NewEnumerator(api API, pageSize int64) *Enumerator {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Enumerator{api: api, pageSize: pageSize}
}

// ListMessageIDs pages through the mailbox, deduplicating IDs into a
// set, until the cursor is exhausted or max IDs have been collected.
// A max of zero means unbounded. When the cap is hit the result holds
// exactly max elements; membership among the truncated tail is
// unspecified.
func (e *Enumerator) ListMessageIDs(ctx context.Context, labelIDs []string, max int) (IDSet, error) {
	ids := make(IDSet)
	pageToken := ""

	for {
		pageSize := e.pageSize
		if max > 0 {
			if remaining := int64(max - len(ids)); remaining < pageSize {
				pageSize = remaining
			}
		}

		page, err := e.api.ListMessages(ctx, labelIDs, pageToken, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate messages: %w", err)
		}

		for _, id := range page.IDs {
			ids.Add(id)
			if max > 0 && len(ids) >= max {
				return ids, nil
			}
		}

		if page.NextPageToken == "" {
			return ids, nil
		}
		pageToken = page.NextPageToken
	}
}

// ListClassified returns the union of message IDs carrying any of the
// given labels.
func (e *Enumerator) ListClassified(ctx context.Context, labels []*Label) (IDSet, error) {
	classified := make(IDSet)
	for _, label := range labels {
		ids, err := e.ListMessageIDs(ctx, []string{label.ID}, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate messages under %s: %w", label.Name, err)
		}
		classified.Union(ids)
	}
	return classified, nil
}
