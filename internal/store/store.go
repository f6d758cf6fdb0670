// Package store provides load/save of the site's named JSON documents.
//
// Every collection lives in its own document under the data directory.
// A missing or corrupt document loads as the zero value of the target
// struct: the site favors availability over strict durability, so a
// mangled file means "empty collection", never a crash.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Store reads and writes whole JSON documents in a single directory.
//
// Store itself does not serialize read-modify-write cycles; each
// repository guards its own document with a mutex. Concurrent writers
// in separate processes remain last-writer-wins, which the design
// accepts for this traffic level.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New constructs a Store rooted at dir. A nil logger falls back to
// slog.Default.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the data directory the store writes under.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk path for a named document.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Load parses the named document into v. When the file does not exist
// or does not parse, v is left at its zero value and Load returns nil;
// only genuine I/O failures are reported.
func (s *Store) Load(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("corrupt document treated as empty",
			slog.String("document", name),
			slog.String("error", err.Error()))
		return nil
	}
	return nil
}

// Save writes the full document back, overwriting whatever is there.
// Output is indented so the files stay hand-editable, matching how the
// site's data has always been kept.
func (s *Store) Save(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
