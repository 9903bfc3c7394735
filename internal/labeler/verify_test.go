package labeler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartlabel/smartlabel/internal/gmail"
)

func newTestVerifier(f *fakeAPI) *Verifier {
	return NewVerifier(f, gmail.NewLabelManager(f, "Smart"), testLogger())
}

func TestVerify_CleanMailbox(t *testing.T) {
	f := newFakeAPI()
	orders := f.addLabel("Smart/Orders")
	marketing := f.addLabel("Smart/Marketing")

	f.addMessage(&gmail.Email{ID: "m1", LabelIDs: []string{"INBOX", orders.ID}})
	f.addMessage(&gmail.Email{ID: "m2", LabelIDs: []string{"INBOX", marketing.ID}})

	report, err := newTestVerifier(f).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Clean())
	assert.Equal(t, 2, report.InboxTotal)
	assert.Equal(t, 2, report.LabeledTotal)
	assert.Equal(t, 2, report.UniqueLabeled)
	assert.Zero(t, report.Unlabeled)
	assert.Zero(t, report.NotInInbox)

	require.Len(t, report.Labels, 2)
	assert.Equal(t, "Smart/Marketing", report.Labels[0].Name)
	assert.Equal(t, 1, report.Labels[0].Total)
}

func TestVerify_MultiLabeledMessages(t *testing.T) {
	f := newFakeAPI()
	orders := f.addLabel("Smart/Orders")
	marketing := f.addLabel("Smart/Marketing")

	f.addMessage(&gmail.Email{ID: "m1", LabelIDs: []string{"INBOX", orders.ID, marketing.ID}})

	report, err := newTestVerifier(f).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Clean())
	assert.Equal(t, []string{"Smart/Marketing", "Smart/Orders"}, report.MultiLabeled["m1"])
	assert.Equal(t, 2, report.LabeledTotal)
	assert.Equal(t, 1, report.UniqueLabeled)
}

func TestVerify_UnlabeledAndNotInInbox(t *testing.T) {
	f := newFakeAPI()
	orders := f.addLabel("Smart/Orders")

	f.addMessage(&gmail.Email{ID: "m1", LabelIDs: []string{"INBOX"}})
	f.addMessage(&gmail.Email{ID: "m2", LabelIDs: []string{orders.ID}})

	report, err := newTestVerifier(f).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Unlabeled)
	assert.Equal(t, 1, report.NotInInbox)
	assert.Equal(t, 1, report.InboxTotal)
	assert.True(t, report.Clean())
}

func TestVerify_IgnoresForeignLabels(t *testing.T) {
	f := newFakeAPI()
	work := f.addLabel("Work")
	f.addMessage(&gmail.Email{ID: "m1", LabelIDs: []string{"INBOX", work.ID}})

	report, err := newTestVerifier(f).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.LabeledTotal)
	assert.Equal(t, 1, report.Unlabeled)
}
