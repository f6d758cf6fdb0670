// Package analytics records per-request visit logs and summarizes them
// for the admin dashboard. Visits are appended to one JSON-lines file
// per calendar day and are never mutated or deleted.
package analytics

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Visit is one logged request.
type Visit struct {
	Timestamp   time.Time         `json:"timestamp"`
	VisitorID   string            `json:"visitor_id"`
	Page        string            `json:"page"`
	Method      string            `json:"method"`
	Referrer    string            `json:"referrer"`
	Device      Device            `json:"device"`
	QueryParams map[string]string `json:"query_params,omitempty"`
}

// Device is the coarse client classification stored with each visit.
type Device struct {
	Mobile  bool   `json:"mobile"`
	Tablet  bool   `json:"tablet"`
	Desktop bool   `json:"desktop"`
	Browser string `json:"browser"`
	OS      string `json:"os"`
}

// Tracker appends visits to the per-day log files. Appends are
// serialized through a mutex so concurrent requests never interleave
// partial lines.
type Tracker struct {
	dir    string
	salt   string
	logger *slog.Logger
	mu     sync.Mutex

	// Now is swappable for tests.
	Now func() time.Time
}

// NewTracker constructs a Tracker writing under dir. salt feeds the
// visitor-id hash so raw IPs never reach disk.
func NewTracker(dir, salt string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{dir: dir, salt: salt, logger: logger, Now: time.Now}
}

// VisitorID derives the pseudonymous visitor identifier from the
// client IP and user agent.
func (t *Tracker) VisitorID(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(t.salt + "|" + ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])[:16]
}

func (t *Tracker) dayFile(day time.Time) string {
	return filepath.Join(t.dir, fmt.Sprintf("visits_%s.jsonl", day.Format("2006-01-02")))
}

// Record appends one visit to today's log file.
func (t *Tracker) Record(v Visit) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = t.Now()
	}
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode visit: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("create analytics dir: %w", err)
	}
	f, err := os.OpenFile(t.dayFile(v.Timestamp), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open visit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append visit: %w", err)
	}
	return nil
}

// LoadRecent reads the visit logs for the last days calendar days,
// today included. Missing day files are skipped; malformed lines are
// logged and dropped, never fatal.
func (t *Tracker) LoadRecent(days int) ([]Visit, error) {
	var visits []Visit
	today := t.Now()
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		loaded, err := t.loadDay(day)
		if err != nil {
			return nil, err
		}
		visits = append(visits, loaded...)
	}
	return visits, nil
}

func (t *Tracker) loadDay(day time.Time) ([]Visit, error) {
	f, err := os.Open(t.dayFile(day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open visit log: %w", err)
	}
	defer f.Close()

	var visits []Visit
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var v Visit
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			t.logger.Warn("skipping malformed visit line",
				slog.String("file", t.dayFile(day)),
				slog.String("error", err.Error()))
			continue
		}
		visits = append(visits, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan visit log: %w", err)
	}
	return visits, nil
}

// ParseUserAgent classifies a user-agent string into the device flags
// and browser/OS families the visit record stores. It is a substring
// heuristic, which is all the dashboard needs.
func ParseUserAgent(ua string) Device {
	lower := strings.ToLower(ua)

	d := Device{}
	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		d.Tablet = true
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "android") || strings.Contains(lower, "iphone"):
		d.Mobile = true
	default:
		d.Desktop = true
	}

	switch {
	case strings.Contains(lower, "edg"):
		d.Browser = "Edge"
	case strings.Contains(lower, "opr") || strings.Contains(lower, "opera"):
		d.Browser = "Opera"
	case strings.Contains(lower, "chrome"):
		d.Browser = "Chrome"
	case strings.Contains(lower, "safari"):
		d.Browser = "Safari"
	case strings.Contains(lower, "firefox"):
		d.Browser = "Firefox"
	default:
		d.Browser = "Other"
	}

	switch {
	case strings.Contains(lower, "windows"):
		d.OS = "Windows"
	case strings.Contains(lower, "android"):
		d.OS = "Android"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") || strings.Contains(lower, "ios"):
		d.OS = "iOS"
	case strings.Contains(lower, "mac os") || strings.Contains(lower, "macintosh"):
		d.OS = "macOS"
	case strings.Contains(lower, "linux"):
		d.OS = "Linux"
	default:
		d.OS = "Other"
	}
	return d
}
