package service

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/ahoyindiemedia/community-events/internal/repository"
)

const (
	maxEmailLength = 254
	maxFieldLength = 500
)

// performanceTypes is the fixed whitelist for artist submissions.
var performanceTypes = map[string]bool{
	"music":   true,
	"poetry":  true,
	"cabaret": true,
	"comedy":  true,
	"dance":   true,
	"theater": true,
	"other":   true,
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// urlPattern catches links dropped into free-text fields.
var urlPattern = regexp.MustCompile(`(?i)https?://|www\.`)

// spamKeywords are the phrases that get a submission rejected outright.
// Matching is case-insensitive substring.
var spamKeywords = []string{
	"viagra", "cialis", "casino", "lottery", "jackpot",
	"bitcoin", "crypto", "forex", "payday loan",
	"seo service", "backlink", "link building",
	"click here", "buy now", "limited offer", "act now",
	"free money", "make money fast", "work from home",
	"winner", "congratulations you",
}

var nonWordRun = regexp.MustCompile(`[^\w\s]{5,}`)

// validateEmail checks the address against the signup pattern.
func validateEmail(email string) error {
	if len(email) > maxEmailLength || !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: %q", repository.ErrInvalidEmail, email)
	}
	return nil
}

// validatePerformanceType checks membership in the fixed whitelist.
func validatePerformanceType(t string) error {
	if !performanceTypes[t] {
		return fmt.Errorf("%w: unknown performance type %q", repository.ErrInvalidInput, t)
	}
	return nil
}

// validateLink accepts an empty value or a well-formed http(s) URL.
func validateLink(link string) error {
	if link == "" {
		return nil
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: links must be a valid http(s) url", repository.ErrInvalidInput)
	}
	return nil
}

// checkSuspicious rejects spam-shaped text: embedded URLs, known spam
// phrases, or long runs of symbol characters.
func checkSuspicious(fields ...string) error {
	for _, field := range fields {
		lower := strings.ToLower(field)
		if urlPattern.MatchString(field) {
			return fmt.Errorf("%w: links are not allowed here", repository.ErrSuspiciousContent)
		}
		for _, kw := range spamKeywords {
			if strings.Contains(lower, kw) {
				return repository.ErrSuspiciousContent
			}
		}
		if nonWordRun.MatchString(field) {
			return repository.ErrSuspiciousContent
		}
	}
	return nil
}

// sanitize trims, strips angle-bracket and quote characters, HTML-escapes
// what remains, and truncates to the field limit.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'':
			return -1
		}
		return r
	}, s)
	s = html.EscapeString(s)
	if len(s) > maxFieldLength {
		s = s[:maxFieldLength]
	}
	return s
}

// truncate caps s at n bytes.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
