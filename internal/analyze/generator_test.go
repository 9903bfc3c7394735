package analyze

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartlabel/smartlabel/internal/llm"
)

type fakeCompleter struct {
	response string
	err      error
	requests []llm.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleReport() *Report {
	return &Report{
		TotalEmails: 120,
		Analyzed:    118,
		Errors:      2,
		TopSenders:  []PatternCount{{Name: "shop.example", Count: 40}},
		TopSubjects: []PatternCount{{Name: "order", Count: 25}},
		ContentTypes: []PatternCount{
			{Name: "transaction", Count: 30},
			{Name: "newsletter", Count: 12},
		},
	}
}

const validGeneration = `{
  "categories": {
    "Orders": {
      "description": "Purchase confirmations and shipping updates",
      "examples": ["Your order shipped"],
      "priority": "High",
      "rules": ["Mentions an order number"]
    },
    "Marketing": {
      "description": "Promotional mail and newsletters",
      "priority": "low"
    }
  }
}`

func TestGenerate(t *testing.T) {
	completer := &fakeCompleter{response: validGeneration}
	g := NewGenerator(completer, discardLogger())

	tax, err := g.Generate(context.Background(), sampleReport(), "Smart")
	require.NoError(t, err)

	assert.Equal(t, "Smart", tax.ParentLabel)
	assert.Equal(t, []string{"Marketing", "Orders"}, tax.Names())
	assert.Equal(t, "high", tax.Categories["Orders"].Priority)

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.Equal(t, generationSystemPrompt, req.System)
	assert.InDelta(t, 0.5, req.Temperature, 0.001)
	assert.Contains(t, req.User, "120 emails")
	assert.Contains(t, req.User, "shop.example: 40")
	assert.Contains(t, req.User, "order: 25")
	assert.Contains(t, req.User, "transaction: 30")
	assert.Contains(t, req.User, "'Smart' label")
}

func TestGenerate_ToleratesCodeFence(t *testing.T) {
	completer := &fakeCompleter{response: "```json\n" + validGeneration + "\n```"}
	g := NewGenerator(completer, discardLogger())

	tax, err := g.Generate(context.Background(), sampleReport(), "Smart")
	require.NoError(t, err)
	assert.True(t, tax.Has("Orders"))
}

func TestGenerate_InvalidJSONAborts(t *testing.T) {
	completer := &fakeCompleter{response: "Here are some categories: Orders, Marketing"}
	g := NewGenerator(completer, discardLogger())

	tax, err := g.Generate(context.Background(), sampleReport(), "Smart")
	assert.Error(t, err)
	assert.Nil(t, tax)
	assert.True(t, strings.Contains(err.Error(), "not valid JSON"))
}

func TestGenerate_SchemaViolationAborts(t *testing.T) {
	completer := &fakeCompleter{response: `{"categories": {"Orders": {"priority": "high"}}}`}
	g := NewGenerator(completer, discardLogger())

	_, err := g.Generate(context.Background(), sampleReport(), "Smart")
	assert.Error(t, err)
}

func TestGenerate_CompletionErrorPropagates(t *testing.T) {
	completer := &fakeCompleter{err: fmt.Errorf("service unavailable")}
	g := NewGenerator(completer, discardLogger())

	_, err := g.Generate(context.Background(), sampleReport(), "Smart")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category generation failed")
}
