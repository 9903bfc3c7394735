package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartlabel/smartlabel/internal/gmail"
)

func TestCollector_SenderDomains(t *testing.T) {
	c := NewCollector()
	c.Add(&gmail.Email{From: "Shop <orders@shop.example>"})
	c.Add(&gmail.Email{From: "news@shop.example"})
	c.Add(&gmail.Email{From: "alice@other.example"})
	c.Add(&gmail.Email{From: "No Sender"})

	report := c.Report(4)
	assert.Equal(t, []PatternCount{
		{Name: "shop.example", Count: 2},
		{Name: "other.example", Count: 1},
	}, report.TopSenders)
}

func TestCollector_SubjectKeywords(t *testing.T) {
	c := NewCollector()
	c.Add(&gmail.Email{Subject: "Your Order confirmation"})
	c.Add(&gmail.Email{Subject: "ORDER shipped"})
	c.Add(&gmail.Email{Subject: "Security alert: new login"})

	report := c.Report(3)

	counts := map[string]int{}
	for _, pc := range report.TopSubjects {
		counts[pc.Name] = pc.Count
	}
	assert.Equal(t, 2, counts["order"])
	assert.Equal(t, 1, counts["confirm"])
	assert.Equal(t, 1, counts["security"])
	assert.Equal(t, 1, counts["alert"])
	assert.Equal(t, 1, counts["login"])
}

func TestCollector_ContentTypes(t *testing.T) {
	c := NewCollector()
	c.Add(&gmail.Email{Body: "Thanks for your payment, the invoice is attached."})
	c.Add(&gmail.Email{Body: "Click to unsubscribe from this newsletter."})
	c.Add(&gmail.Email{Body: "Please verify your password."})

	report := c.Report(3)

	counts := map[string]int{}
	for _, pc := range report.ContentTypes {
		counts[pc.Name] = pc.Count
	}
	assert.Equal(t, 1, counts["transaction"])
	assert.Equal(t, 1, counts["newsletter"])
	assert.Equal(t, 1, counts["authentication"])
	assert.Zero(t, counts["social"])
}

func TestCollector_TopTenTruncation(t *testing.T) {
	c := NewCollector()
	for i := 0; i < 15; i++ {
		domain := string(rune('a'+i)) + ".example"
		// Descending counts so the first 10 domains survive.
		for j := 0; j < 15-i; j++ {
			c.Add(&gmail.Email{From: "x@" + domain})
		}
	}

	report := c.Report(0)
	assert.Len(t, report.TopSenders, 10)
	assert.Equal(t, "a.example", report.TopSenders[0].Name)
	assert.Equal(t, 15, report.TopSenders[0].Count)
	assert.Equal(t, "j.example", report.TopSenders[9].Name)
}

func TestCollector_TieBreakIsFirstSeen(t *testing.T) {
	c := NewCollector()
	c.Add(&gmail.Email{From: "x@zzz.example"})
	c.Add(&gmail.Email{From: "x@aaa.example"})

	report := c.Report(2)
	assert.Equal(t, "zzz.example", report.TopSenders[0].Name)
	assert.Equal(t, "aaa.example", report.TopSenders[1].Name)
}

func TestCollector_ErrorsCounted(t *testing.T) {
	c := NewCollector()
	c.Add(&gmail.Email{From: "a@b.example"})
	c.AddError()
	c.AddError()

	report := c.Report(3)
	assert.Equal(t, 3, report.TotalEmails)
	assert.Equal(t, 1, report.Analyzed)
	assert.Equal(t, 2, report.Errors)
}

func TestRenderCounts(t *testing.T) {
	assert.Equal(t, "  (none)", renderCounts(nil))
	assert.Equal(t, "  a.example: 3\n  b.example: 1", renderCounts([]PatternCount{
		{Name: "a.example", Count: 3},
		{Name: "b.example", Count: 1},
	}))
}
