package analyze

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/smartlabel/smartlabel/internal/gmail"
)

// subjectKeywords are the subject-line terms counted during pattern
// collection.
var subjectKeywords = []string{
	"order", "invoice", "receipt", "confirm", "alert",
	"security", "update", "newsletter", "subscription",
	"payment", "account", "login", "important", "urgent",
	"report", "meeting", "reminder", "invitation",
}

// contentClasses map a coarse content type to the body pattern that
// signals it.
var contentClasses = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"notification", regexp.MustCompile(`notify|alert|warning`)},
	{"newsletter", regexp.MustCompile(`newsletter|subscribe|unsubscribe`)},
	{"transaction", regexp.MustCompile(`order|payment|invoice|receipt`)},
	{"authentication", regexp.MustCompile(`login|password|security|verify`)},
	{"social", regexp.MustCompile(`friend|connect|follow|share`)},
	{"calendar", regexp.MustCompile(`meeting|appointment|schedule`)},
}

// topPatterns caps each frequency table in the report.
const topPatterns = 10

// PatternCount is one entry of a frequency table.
type PatternCount struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Report summarizes the patterns observed across a mailbox sample.
type Report struct {
	TotalEmails  int            `yaml:"total_emails"`
	Analyzed     int            `yaml:"analyzed"`
	Errors       int            `yaml:"errors"`
	TopSenders   []PatternCount `yaml:"top_senders"`
	TopSubjects  []PatternCount `yaml:"top_subjects"`
	ContentTypes []PatternCount `yaml:"content_types"`
}

// Collector accumulates sender-domain, subject-keyword and content-type
// frequencies over a stream of messages. Not safe for concurrent use.
type Collector struct {
	senders  map[string]int
	subjects map[string]int
	content  map[string]int

	// firstSeen breaks frequency ties so reports are deterministic.
	firstSeen map[string]int
	seq       int

	analyzed int
	errors   int
}

func NewCollector() *Collector {
	return &Collector{
		senders:   make(map[string]int),
		subjects:  make(map[string]int),
		content:   make(map[string]int),
		firstSeen: make(map[string]int),
	}
}

// Add folds one message into the frequency tables.
func (c *Collector) Add(email *gmail.Email) {
	c.analyzed++

	sender := strings.ToLower(email.From)
	if at := strings.LastIndex(sender, "@"); at >= 0 && at < len(sender)-1 {
		domain := strings.Trim(sender[at+1:], "<> ")
		c.bump(c.senders, "s:"+domain, domain)
	}

	subject := strings.ToLower(email.Subject)
	for _, keyword := range subjectKeywords {
		if strings.Contains(subject, keyword) {
			c.bump(c.subjects, "k:"+keyword, keyword)
		}
	}

	body := strings.ToLower(email.Body)
	for _, class := range contentClasses {
		if class.pattern.MatchString(body) {
			c.bump(c.content, "c:"+class.name, class.name)
		}
	}
}

// AddError records a message that could not be fetched or parsed.
func (c *Collector) AddError() { c.errors++ }

func (c *Collector) bump(table map[string]int, key, name string) {
	if _, ok := c.firstSeen[key]; !ok {
		c.firstSeen[key] = c.seq
		c.seq++
	}
	table[name]++
}

// Report finalizes the tables into a Report with each table sorted by
// descending count, truncated to the top entries.
func (c *Collector) Report(total int) *Report {
	return &Report{
		TotalEmails:  total,
		Analyzed:     c.analyzed,
		Errors:       c.errors,
		TopSenders:   c.top(c.senders, "s:", topPatterns),
		TopSubjects:  c.top(c.subjects, "k:", topPatterns),
		ContentTypes: c.top(c.content, "c:", len(contentClasses)),
	}
}

func (c *Collector) top(table map[string]int, prefix string, n int) []PatternCount {
	out := make([]PatternCount, 0, len(table))
	for name, count := range table {
		out = append(out, PatternCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return c.firstSeen[prefix+out[i].Name] < c.firstSeen[prefix+out[j].Name]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// renderCounts formats one frequency table for prompt embedding.
func renderCounts(counts []PatternCount) string {
	if len(counts) == 0 {
		return "  (none)"
	}
	var b strings.Builder
	for i, pc := range counts {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %s: %d", pc.Name, pc.Count)
	}
	return b.String()
}
