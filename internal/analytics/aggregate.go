package analytics

import (
	"sort"
	"strings"
)

// PageCount is one entry in the top-pages ranking.
type PageCount struct {
	Page  string `json:"page"`
	Count int    `json:"count"`
}

// NameCount is a generic ranked label/count pair.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DayCount is one day in the visit time series.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary is the aggregated view of a set of visits. All maps and
// slices are initialized even for zero visits, so callers can range
// without nil checks but must not assume any particular key exists.
type Summary struct {
	TotalVisits    int            `json:"total_visits"`
	UniqueVisitors int            `json:"unique_visitors"`
	TopPages       []PageCount    `json:"top_pages"`
	Devices        map[string]int `json:"devices"`
	TopBrowsers    []NameCount    `json:"top_browsers"`
	HourlyVisits   map[int]int    `json:"hourly_visits"`
	DailyVisits    []DayCount     `json:"daily_visits"`
	Referrers      map[string]int `json:"referrers"`
}

const (
	topPagesLimit    = 10
	topBrowsersLimit = 5
)

// referrerBuckets, checked in order against the lowercased referrer.
var referrerBuckets = []struct {
	needle string
	bucket string
}{
	{"google", "Google"},
	{"facebook", "Facebook"},
	{"instagram", "Instagram"},
	{"twitter", "Twitter"},
}

// ClassifyReferrer buckets a referrer string by case-insensitive
// substring match. Empty referrers are direct traffic.
func ClassifyReferrer(ref string) string {
	if strings.TrimSpace(ref) == "" {
		return "Direct"
	}
	lower := strings.ToLower(ref)
	for _, b := range referrerBuckets {
		if strings.Contains(lower, b.needle) {
			return b.bucket
		}
	}
	return "Other"
}

// Analyze computes the dashboard summary over the supplied visits.
// Zero visits yields a zeroed structure, not an error.
func Analyze(visits []Visit) Summary {
	s := Summary{
		TopPages:     []PageCount{},
		Devices:      map[string]int{"mobile": 0, "tablet": 0, "desktop": 0},
		TopBrowsers:  []NameCount{},
		HourlyVisits: map[int]int{},
		DailyVisits:  []DayCount{},
		Referrers:    map[string]int{},
	}

	seen := map[string]bool{}
	pages := map[string]int{}
	browsers := map[string]int{}
	daily := map[string]int{}

	for _, v := range visits {
		s.TotalVisits++
		if !seen[v.VisitorID] {
			seen[v.VisitorID] = true
			s.UniqueVisitors++
		}
		pages[v.Page]++
		browsers[v.Device.Browser]++
		switch {
		case v.Device.Mobile:
			s.Devices["mobile"]++
		case v.Device.Tablet:
			s.Devices["tablet"]++
		default:
			s.Devices["desktop"]++
		}
		s.HourlyVisits[v.Timestamp.Hour()]++
		daily[v.Timestamp.Format("2006-01-02")]++
		s.Referrers[ClassifyReferrer(v.Referrer)]++
	}

	s.TopPages = topPages(pages, topPagesLimit)
	s.TopBrowsers = topNames(browsers, topBrowsersLimit)

	for date, count := range daily {
		s.DailyVisits = append(s.DailyVisits, DayCount{Date: date, Count: count})
	}
	sort.Slice(s.DailyVisits, func(i, j int) bool {
		return s.DailyVisits[i].Date < s.DailyVisits[j].Date
	})

	return s
}

func topPages(counts map[string]int, limit int) []PageCount {
	ranked := make([]PageCount, 0, len(counts))
	for page, count := range counts {
		ranked = append(ranked, PageCount{Page: page, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Page < ranked[j].Page
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func topNames(counts map[string]int, limit int) []NameCount {
	ranked := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, NameCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
