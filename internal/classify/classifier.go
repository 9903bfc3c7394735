package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/smartlabel/smartlabel/internal/gmail"
	"github.com/smartlabel/smartlabel/internal/llm"
	"github.com/smartlabel/smartlabel/internal/logging"
	"github.com/smartlabel/smartlabel/internal/taxonomy"
)

// ResultNone is returned when a message fits no category. It is never a
// category name and never becomes a label.
const ResultNone = "none"

// excerptLength caps the body excerpt embedded in the classification
// prompt.
const excerptLength = 300

const classifierSystemPrompt = "You are an email classifier. Return only the category name."

// Classifier assigns exactly one category from a fixed taxonomy to each
// message. Safe for concurrent use.
type Classifier struct {
	completer  llm.Completer
	tax        *taxonomy.Taxonomy
	categories string
	logger     *slog.Logger
}

func New(completer llm.Completer, tax *taxonomy.Taxonomy, logger *slog.Logger) *Classifier {
	return &Classifier{
		completer:  completer,
		tax:        tax,
		categories: tax.Render(),
		logger:     logger,
	}
}

// Classify returns the category for one message. Output is trimmed of
// surrounding whitespace and must exactly match a category name; any
// other output maps deterministically to ResultNone. The error is
// non-nil only when the generation request itself failed.
func (c *Classifier) Classify(ctx context.Context, email *gmail.Email) (string, error) {
	raw, err := c.completer.Complete(ctx, llm.Request{
		System:      classifierSystemPrompt,
		User:        c.buildPrompt(email),
		Temperature: 0.0,
		MaxTokens:   10,
		Operation:   "classify",
	})
	if err != nil {
		return "", fmt.Errorf("classification request failed: %w", err)
	}

	category := strings.TrimSpace(raw)
	if category == ResultNone {
		return ResultNone, nil
	}
	if !c.tax.Has(category) {
		c.logger.Debug("classifier returned unknown category",
			logging.Operation("classify"),
			logging.MessageID(email.ID),
			logging.Category(category))
		return ResultNone, nil
	}
	return category, nil
}

func (c *Classifier) buildPrompt(email *gmail.Email) string {
	body := email.Body
	if len(body) > excerptLength {
		// Back up to a rune boundary so the excerpt stays valid UTF-8.
		cut := excerptLength
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}

	return fmt.Sprintf(`Categorize this email into EXACTLY ONE of these categories:
%s

Rules:
1. Choose exactly one category
2. When in doubt, choose the higher priority category
3. Be decisive - no explanations needed
4. If no category fits, return "none"

Email:
From: %s
Subject: %s
Body excerpt: %s

Return ONLY the category name, nothing else.`,
		c.categories, email.From, email.Subject, body)
}
