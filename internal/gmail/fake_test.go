package gmail

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// fakeAPI is an in-memory mailbox used by tests.
type fakeAPI struct {
	mu sync.Mutex

	labels      []*Label
	nextLabelID int

	// messageOrder keeps a stable enumeration order for paging.
	messageOrder []string
	messages     map[string]*Email

	createLabelCalls int
	listLabelCalls   int
	listMsgCalls     int

	// createConflict makes CreateLabel fail with a conflict while the
	// label appears in subsequent lists, simulating a concurrent
	// creation by another client.
	createConflict bool

	failGetMessage map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		messages:       make(map[string]*Email),
		failGetMessage: make(map[string]error),
	}
}

func (f *fakeAPI) addMessage(email *Email) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageOrder = append(f.messageOrder, email.ID)
	f.messages[email.ID] = email
}

func (f *fakeAPI) addLabel(name string) *Label {
	f.nextLabelID++
	label := &Label{ID: fmt.Sprintf("Label_%d", f.nextLabelID), Name: name}
	f.labels = append(f.labels, label)
	return label
}

func (f *fakeAPI) hasLabel(msg *Email, labelID string) bool {
	for _, id := range msg.LabelIDs {
		if id == labelID {
			return true
		}
	}
	return false
}

func (f *fakeAPI) ListMessages(ctx context.Context, labelIDs []string, pageToken string, pageSize int64) (*MessagePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listMsgCalls++

	var matching []string
	for _, id := range f.messageOrder {
		msg := f.messages[id]
		match := true
		for _, labelID := range labelIDs {
			if !f.hasLabel(msg, labelID) {
				match = false
				break
			}
		}
		if match {
			matching = append(matching, id)
		}
	}

	start := 0
	if pageToken != "" {
		start, _ = strconv.Atoi(pageToken)
	}
	end := start + int(pageSize)
	if end > len(matching) {
		end = len(matching)
	}

	page := &MessagePage{IDs: matching[start:end]}
	if end < len(matching) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeAPI) GetMessage(ctx context.Context, messageID string) (*Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failGetMessage[messageID]; ok {
		return nil, err
	}
	msg, ok := f.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("message %s not found", messageID)
	}
	copied := *msg
	return &copied, nil
}

func (f *fakeAPI) ListLabels(ctx context.Context) ([]*Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listLabelCalls++

	out := make([]*Label, len(f.labels))
	copy(out, f.labels)
	return out, nil
}

func (f *fakeAPI) CreateLabel(ctx context.Context, name string) (*Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createLabelCalls++

	for _, label := range f.labels {
		if label.Name == name {
			return nil, fmt.Errorf("label name exists or conflicts: %s", name)
		}
	}

	if f.createConflict {
		// Another client wins the race: the label exists on re-list
		// but this create reports a conflict.
		f.addLabel(name)
		return nil, fmt.Errorf("label name exists or conflicts: %s", name)
	}

	return f.addLabel(name), nil
}

func (f *fakeAPI) DeleteLabel(ctx context.Context, labelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, label := range f.labels {
		if label.ID == labelID {
			f.labels = append(f.labels[:i], f.labels[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("label %s not found", labelID)
}

func (f *fakeAPI) ModifyMessageLabels(ctx context.Context, messageID string, addLabelIDs, removeLabelIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.messages[messageID]
	if !ok {
		return fmt.Errorf("message %s not found", messageID)
	}

	for _, remove := range removeLabelIDs {
		for i, id := range msg.LabelIDs {
			if id == remove {
				msg.LabelIDs = append(msg.LabelIDs[:i], msg.LabelIDs[i+1:]...)
				break
			}
		}
	}
	for _, add := range addLabelIDs {
		if !f.hasLabel(msg, add) {
			msg.LabelIDs = append(msg.LabelIDs, add)
		}
	}
	return nil
}
