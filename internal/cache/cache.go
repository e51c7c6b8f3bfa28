// Package cache persists generated reviews in a flat keyed file store.
// Keys are derived purely from content, so re-running the tool against
// an unchanged PR short-circuits the model call. Entries are never
// evicted; clearing the cache is a manual operation.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Entry is one cached review. Entries are written once per key and
// stored as human-inspectable JSON for debugging.
type Entry struct {
	Key       string    `json:"key"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a file-based cache with one JSON file per key.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the cache directory if needed and returns a Store.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Key derives a deterministic cache key from the repository identity,
// the model identifier, and the diff text. Identical inputs always
// produce the same key; wall-clock time and PR state play no part.
func Key(repoFullName, model, diff string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", repoFullName, model)
	h.Write([]byte(diff))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the stored entry for key, or (nil, false) on a miss.
// A miss is a valid outcome, never an error: unreadable or corrupt
// entries are treated as misses too.
func (s *Store) Get(key string) (*Entry, bool) {
	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("discarding corrupt cache entry", "key", key, "error", err)
		return nil, false
	}
	return &entry, true
}

// Put persists a review under key, silently overwriting any existing
// entry. Writing the same key and text twice is a no-op in effect.
// A returned error means unrecoverable storage failure; callers treat
// it as non-fatal because the in-memory review is still usable.
func (s *Store) Put(key, review string) error {
	entry := Entry{
		Key:       key,
		Review:    review,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	if err := os.WriteFile(s.entryPath(key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries and reports how many were deleted.
func (s *Store) Clear() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}

	var removed int
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats describes the current cache contents.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"total_bytes"`
}

// GetStats returns information about the cache directory.
func (s *Store) GetStats() (Stats, error) {
	stats := Stats{Dir: s.dir}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}

	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}
