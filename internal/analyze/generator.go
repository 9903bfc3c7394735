package analyze

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smartlabel/smartlabel/internal/llm"
	"github.com/smartlabel/smartlabel/internal/logging"
	"github.com/smartlabel/smartlabel/internal/taxonomy"
)

const generationSystemPrompt = "You are an email organization expert. Suggest clear, practical categories."

const generationFormat = `{
    "categories": {
        "CategoryName": {
            "description": "Clear description",
            "examples": ["Example 1", "Example 2", "Example 3"],
            "priority": "high/medium/low",
            "rules": ["Rule 1", "Rule 2"]
        }
    }
}`

// Generator turns a pattern report into a validated taxonomy through
// one generation request.
type Generator struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewGenerator(completer llm.Completer, logger *slog.Logger) *Generator {
	return &Generator{completer: completer, logger: logger}
}

// Generate requests a category set for the observed patterns and parses
// it into a taxonomy nested under parentLabel. Output that is not valid
// JSON or violates the category schema fails the whole generation; no
// partial taxonomy is returned.
func (g *Generator) Generate(ctx context.Context, report *Report, parentLabel string) (*taxonomy.Taxonomy, error) {
	prompt := buildGenerationPrompt(report, parentLabel)

	raw, err := g.completer.Complete(ctx, llm.Request{
		System:      generationSystemPrompt,
		User:        prompt,
		Temperature: 0.5,
		Operation:   "generate",
	})
	if err != nil {
		return nil, fmt.Errorf("category generation failed: %w", err)
	}

	t, err := taxonomy.Parse(raw, parentLabel)
	if err != nil {
		return nil, err
	}

	g.logger.Info("taxonomy generated",
		logging.Operation("generate"),
		slog.Int("categories", len(t.Categories)))
	return t, nil
}

func buildGenerationPrompt(report *Report, parentLabel string) string {
	return fmt.Sprintf(`Analyze these email patterns from %d emails and suggest
6-10 clear, distinct categories for organizing emails under a '%s' label.

Patterns found:
Top Sender Domains:
%s

Common Subject Patterns:
%s

Content Types:
%s

Create categories that:
1. Cover all major types of emails
2. Are clearly distinct from each other
3. Make email management practical and efficient
4. Consider both frequency and importance
5. Are simple and intuitive to understand

For each category provide:
- Clear description of what belongs
- 3-5 specific examples
- Priority level (high/medium/low)
- Clear rules for classification

Return as JSON in this format:
%s`,
		report.TotalEmails,
		parentLabel,
		renderCounts(report.TopSenders),
		renderCounts(report.TopSubjects),
		renderCounts(report.ContentTypes),
		generationFormat,
	)
}
