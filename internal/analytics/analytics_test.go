package analytics

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trackerNow = time.Date(2026, time.August, 28, 15, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr := NewTracker(t.TempDir(), "test-salt", slog.Default())
	tr.Now = func() time.Time { return trackerNow }
	return tr
}

func TestVisitorIDStableAndSalted(t *testing.T) {
	tr := newTestTracker(t)

	a := tr.VisitorID("1.2.3.4", "Mozilla/5.0")
	assert.Equal(t, a, tr.VisitorID("1.2.3.4", "Mozilla/5.0"))
	assert.NotEqual(t, a, tr.VisitorID("1.2.3.5", "Mozilla/5.0"))
	assert.Len(t, a, 16)
	assert.NotContains(t, a, "1.2.3.4")

	other := NewTracker(t.TempDir(), "other-salt", slog.Default())
	assert.NotEqual(t, a, other.VisitorID("1.2.3.4", "Mozilla/5.0"))
}

func TestRecordAndLoadRecent(t *testing.T) {
	tr := newTestTracker(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, tr.Record(Visit{Page: "/events", Method: "GET"}))
	}

	visits, err := tr.LoadRecent(7)
	require.NoError(t, err)
	require.Len(t, visits, 3)
	assert.Equal(t, "/events", visits[0].Page)
	assert.Equal(t, trackerNow.Format("2006-01-02"),
		visits[0].Timestamp.Format("2006-01-02"))
}

func TestLoadRecentSkipsMalformedLines(t *testing.T) {
	tr := newTestTracker(t)
	require.NoError(t, tr.Record(Visit{Page: "/ok"}))

	// Corrupt the log with garbage between valid lines.
	path := filepath.Join(tr.dir, "visits_2026-08-28.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{truncated\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, tr.Record(Visit{Page: "/also-ok"}))

	visits, err := tr.LoadRecent(1)
	require.NoError(t, err)
	require.Len(t, visits, 2)
	assert.Equal(t, "/ok", visits[0].Page)
	assert.Equal(t, "/also-ok", visits[1].Page)
}

func TestLoadRecentMissingDaysAreSkipped(t *testing.T) {
	tr := newTestTracker(t)
	visits, err := tr.LoadRecent(30)
	require.NoError(t, err)
	assert.Empty(t, visits)
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		mobile  bool
		tablet  bool
		desktop bool
		browser string
	}{
		{"iphone safari", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari/604.1", true, false, false, "Safari"},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) Safari/604.1", false, true, false, "Safari"},
		{"windows chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/126.0 Safari/537.36", false, false, true, "Chrome"},
		{"linux firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:126.0) Gecko/20100101 Firefox/126.0", false, false, true, "Firefox"},
		{"edge", "Mozilla/5.0 (Windows NT 10.0) Chrome/126.0 Safari/537.36 Edg/126.0", false, false, true, "Edge"},
		{"empty", "", false, false, true, "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseUserAgent(tt.ua)
			assert.Equal(t, tt.mobile, d.Mobile)
			assert.Equal(t, tt.tablet, d.Tablet)
			assert.Equal(t, tt.desktop, d.Desktop)
			assert.Equal(t, tt.browser, d.Browser)
		})
	}
}

func TestClassifyReferrer(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"", "Direct"},
		{"   ", "Direct"},
		{"https://www.google.com/search?q=ahoy", "Google"},
		{"https://m.facebook.com/", "Facebook"},
		{"https://l.instagram.com/", "Instagram"},
		{"https://TWITTER.com/status", "Twitter"},
		{"https://news.example.org/article", "Other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyReferrer(tt.ref), "referrer %q", tt.ref)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	s := Analyze(nil)

	assert.Zero(t, s.TotalVisits)
	assert.Zero(t, s.UniqueVisitors)
	assert.Empty(t, s.TopPages)
	assert.Empty(t, s.TopBrowsers)
	assert.Empty(t, s.DailyVisits)
	// Maps come back initialized so callers can range without checks.
	assert.NotNil(t, s.Devices)
	assert.NotNil(t, s.HourlyVisits)
	assert.NotNil(t, s.Referrers)
}

func TestAnalyzeCountsAndRankings(t *testing.T) {
	day1 := time.Date(2026, time.August, 27, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, time.August, 28, 21, 0, 0, 0, time.UTC)

	visits := []Visit{
		{Timestamp: day1, VisitorID: "v1", Page: "/events", Device: Device{Desktop: true, Browser: "Chrome"}, Referrer: "https://google.com"},
		{Timestamp: day1, VisitorID: "v1", Page: "/events", Device: Device{Desktop: true, Browser: "Chrome"}},
		{Timestamp: day2, VisitorID: "v2", Page: "/events", Device: Device{Mobile: true, Browser: "Safari"}, Referrer: "https://instagram.com"},
		{Timestamp: day2, VisitorID: "v3", Page: "/", Device: Device{Tablet: true, Browser: "Safari"}},
	}
	s := Analyze(visits)

	assert.Equal(t, 4, s.TotalVisits)
	assert.Equal(t, 3, s.UniqueVisitors)

	require.NotEmpty(t, s.TopPages)
	assert.Equal(t, PageCount{Page: "/events", Count: 3}, s.TopPages[0])

	assert.Equal(t, 1, s.Devices["mobile"])
	assert.Equal(t, 1, s.Devices["tablet"])
	assert.Equal(t, 2, s.Devices["desktop"])

	require.Len(t, s.TopBrowsers, 2)
	assert.Equal(t, NameCount{Name: "Chrome", Count: 2}, s.TopBrowsers[0])

	assert.Equal(t, 2, s.HourlyVisits[9])
	assert.Equal(t, 2, s.HourlyVisits[21])

	require.Len(t, s.DailyVisits, 2)
	assert.Equal(t, DayCount{Date: "2026-08-27", Count: 2}, s.DailyVisits[0])
	assert.Equal(t, DayCount{Date: "2026-08-28", Count: 2}, s.DailyVisits[1])

	assert.Equal(t, 1, s.Referrers["Google"])
	assert.Equal(t, 1, s.Referrers["Instagram"])
	assert.Equal(t, 2, s.Referrers["Direct"])
}

func TestAnalyzeTopPagesCapAtTen(t *testing.T) {
	var visits []Visit
	for i := 0; i < 15; i++ {
		visits = append(visits, Visit{
			Timestamp: trackerNow,
			VisitorID: "v",
			Page:      string(rune('a' + i)),
		})
	}
	s := Analyze(visits)
	assert.Len(t, s.TopPages, 10)
}
