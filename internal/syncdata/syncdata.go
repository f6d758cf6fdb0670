// Package syncdata pulls exported collections from a live deployment
// into the local data directory, so a development copy can work with
// real content.
package syncdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client syncs data from a running site.
type Client struct {
	// BaseURL of the live site, e.g. "https://ahoynewhaven.org".
	BaseURL string
	// Password for the admin login.
	Password string
	// DataDir receives the downloaded documents.
	DataDir string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New constructs a Client with a sane default HTTP client.
func New(baseURL, password, dataDir string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Password:   password,
		DataDir:    dataDir,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

// SyncAll logs in and downloads the newsletter, artist submission and
// event collections into the local data directory. Each collection is
// synced independently; the first failure aborts.
func (c *Client) SyncAll(ctx context.Context) error {
	token, err := c.login(ctx)
	if err != nil {
		return fmt.Errorf("admin login: %w", err)
	}

	if err := c.syncCollection(ctx, token, "/admin/export/newsletter", "newsletter.json", "subscribers"); err != nil {
		return fmt.Errorf("sync newsletter: %w", err)
	}
	if err := c.syncCollection(ctx, token, "/admin/export/artist-submissions", "artist_submissions.json", "submissions"); err != nil {
		return fmt.Errorf("sync artist submissions: %w", err)
	}
	if err := c.syncEvents(ctx, token); err != nil {
		return fmt.Errorf("sync events: %w", err)
	}
	return nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	form := url.Values{"password": {c.Password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/admin/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return body.Token, nil
}

func (c *Client) fetch(ctx context.Context, token, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?format=json", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) syncCollection(ctx context.Context, token, path, filename, key string) error {
	data, err := c.fetch(ctx, token, path)
	if err != nil {
		return err
	}
	count, err := c.write(filename, data, key)
	if err != nil {
		return err
	}
	c.Logger.Info("synced collection",
		slog.String("file", filename),
		slog.Int("records", count))
	return nil
}

// syncEvents pulls the all-data export and keeps its events document.
func (c *Client) syncEvents(ctx context.Context, token string) error {
	data, err := c.fetch(ctx, token, "/admin/export/all-data")
	if err != nil {
		return err
	}
	var all struct {
		Events json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("decode all-data export: %w", err)
	}
	if len(all.Events) == 0 {
		return fmt.Errorf("all-data export carried no events")
	}
	count, err := c.write("events.json", all.Events, "events")
	if err != nil {
		return err
	}
	c.Logger.Info("synced collection",
		slog.String("file", "events.json"),
		slog.Int("records", count))
	return nil
}

// write re-indents the payload and writes it into the data directory,
// returning how many records the named key holds.
func (c *Client) write(filename string, data []byte, key string) (int, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filename, err)
	}
	var records []json.RawMessage
	_ = json.Unmarshal(doc[key], &records)

	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return 0, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(c.DataDir, filename)
	if err := os.WriteFile(path, append(pretty, '\n'), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", filename, err)
	}
	return len(records), nil
}
