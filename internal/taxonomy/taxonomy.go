package taxonomy

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Priority levels a category may carry.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Category is one mutually exclusive mailbox category.
type Category struct {
	Description string   `yaml:"description" json:"description"`
	Priority    string   `yaml:"priority" json:"priority"`
	Examples    []string `yaml:"examples,omitempty" json:"examples,omitempty"`
	Rules       []string `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Taxonomy is the live set of category definitions plus the parent
// label they nest under. Exactly one taxonomy is live at a time;
// regeneration fully replaces it.
type Taxonomy struct {
	ParentLabel string              `yaml:"label_prefix" json:"label_prefix"`
	Categories  map[string]Category `yaml:"categories" json:"categories"`
}

// Names returns the category names in sorted order.
func (t *Taxonomy) Names() []string {
	names := make([]string, 0, len(t.Categories))
	for name := range t.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is a known category.
func (t *Taxonomy) Has(name string) bool {
	_, ok := t.Categories[name]
	return ok
}

// Render returns the taxonomy as "name: description" lines in sorted
// order, the form embedded in classification prompts.
func (t *Taxonomy) Render() string {
	var b strings.Builder
	for _, name := range t.Names() {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(t.Categories[name].Description)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Validate checks the taxonomy against the category schema. A taxonomy
// that fails validation is never persisted.
func (t *Taxonomy) Validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("taxonomy has no categories")
	}
	for name, cat := range t.Categories {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("taxonomy contains a category with an empty name")
		}
		if strings.Contains(name, "/") {
			return fmt.Errorf("category name %q must not contain '/'", name)
		}
		if strings.TrimSpace(cat.Description) == "" {
			return fmt.Errorf("category %q has no description", name)
		}
		switch cat.Priority {
		case PriorityHigh, PriorityMedium, PriorityLow:
		default:
			return fmt.Errorf("category %q has invalid priority %q", name, cat.Priority)
		}
	}
	return nil
}

// StripCodeFence removes an optional markdown code-fence wrapper from
// generation output. Models occasionally wrap JSON in ```json fences
// despite instructions not to.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	// Drop the opening fence (and its optional language tag) and the
	// closing fence if present.
	lines = lines[1:]
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Parse decodes generation output into a validated taxonomy. The input
// must be a JSON document with a top-level "categories" object; a code
// fence wrapper is tolerated. Priorities are normalized to lower case
// before validation. Any schema violation fails the whole parse; no
// partial taxonomy is ever returned.
func Parse(raw string, parentLabel string) (*Taxonomy, error) {
	cleaned := StripCodeFence(raw)

	var doc struct {
		Categories map[string]Category `json:"categories"`
	}
	dec := json.NewDecoder(strings.NewReader(cleaned))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("generation output is not valid JSON: %w", err)
	}

	t := &Taxonomy{
		ParentLabel: parentLabel,
		Categories:  make(map[string]Category, len(doc.Categories)),
	}
	for name, cat := range doc.Categories {
		cat.Priority = strings.ToLower(strings.TrimSpace(cat.Priority))
		t.Categories[strings.TrimSpace(name)] = cat
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("generation output failed schema validation: %w", err)
	}
	return t, nil
}
