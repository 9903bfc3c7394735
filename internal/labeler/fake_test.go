package labeler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/smartlabel/smartlabel/internal/gmail"
)

// fakeAPI is an in-memory mailbox for orchestration tests.
type fakeAPI struct {
	mu sync.Mutex

	labels      []*gmail.Label
	nextLabelID int

	messageOrder []string
	messages     map[string]*gmail.Email

	failGetMessage map[string]error
	failModify     map[string]error

	modifyCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		messages:       make(map[string]*gmail.Email),
		failGetMessage: make(map[string]error),
		failModify:     make(map[string]error),
	}
}

func (f *fakeAPI) addMessage(email *gmail.Email) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageOrder = append(f.messageOrder, email.ID)
	f.messages[email.ID] = email
}

func (f *fakeAPI) addLabel(name string) *gmail.Label {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLabelLocked(name)
}

func (f *fakeAPI) addLabelLocked(name string) *gmail.Label {
	f.nextLabelID++
	label := &gmail.Label{ID: fmt.Sprintf("Label_%d", f.nextLabelID), Name: name}
	f.labels = append(f.labels, label)
	return label
}

func (f *fakeAPI) labelByName(name string) *gmail.Label {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, label := range f.labels {
		if label.Name == name {
			return label
		}
	}
	return nil
}

func (f *fakeAPI) messageLabels(id string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[id]
	if !ok {
		return nil
	}
	out := make([]string, len(msg.LabelIDs))
	copy(out, msg.LabelIDs)
	return out
}

func hasID(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func (f *fakeAPI) ListMessages(ctx context.Context, labelIDs []string, pageToken string, pageSize int64) (*gmail.MessagePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matching []string
	for _, id := range f.messageOrder {
		msg := f.messages[id]
		match := true
		for _, labelID := range labelIDs {
			if !hasID(msg.LabelIDs, labelID) {
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

	page := &gmail.MessagePage{IDs: matching[start:end]}
	if end < len(matching) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeAPI) GetMessage(ctx context.Context, messageID string) (*gmail.Email, error) {
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
	copied.LabelIDs = append([]string(nil), msg.LabelIDs...)
	return &copied, nil
}

func (f *fakeAPI) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*gmail.Label, len(f.labels))
	copy(out, f.labels)
	return out, nil
}

func (f *fakeAPI) CreateLabel(ctx context.Context, name string) (*gmail.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, label := range f.labels {
		if label.Name == name {
			return nil, fmt.Errorf("label name exists or conflicts: %s", name)
		}
	}
	return f.addLabelLocked(name), nil
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
	f.modifyCalls++

	if err, ok := f.failModify[messageID]; ok {
		return err
	}

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
		if !hasID(msg.LabelIDs, add) {
			msg.LabelIDs = append(msg.LabelIDs, add)
		}
	}
	return nil
}

// fakeClassifier maps message IDs to fixed categories.
type fakeClassifier struct {
	mu         sync.Mutex
	categories map[string]string
	errs       map[string]error
	calls      int
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{
		categories: make(map[string]string),
		errs:       make(map[string]error),
	}
}

func (c *fakeClassifier) Classify(ctx context.Context, email *gmail.Email) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if err, ok := c.errs[email.ID]; ok {
		return "", err
	}
	if category, ok := c.categories[email.ID]; ok {
		return category, nil
	}
	return "none", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
