package assetcache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	cache "github.com/patrickmn/go-cache"
)

const (
	// MaxHistoryEntries - hard cap on the persisted list
	MaxHistoryEntries = 10

	maxRefLen    = 120
	maxPromptLen = 400
)

// HistoryStore - append-bounded, most-recent-first log of generated assets,
// persisted as a single JSON array in one file slot.
//
// Single-writer assumption: at most one active screen appends at a time, so
// the read-modify-write cycle is not locked against concurrent processes.
// Last write wins if that assumption is ever violated.
type HistoryStore struct {
	path string

	// guard - recently appended file paths; re-running an insertion effect
	// (screen re-render) must not duplicate the entry
	guard *cache.Cache
}

// NewHistoryStore - store persisting into the given file slot
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{
		path:  path,
		guard: cache.New(10*time.Minute, 30*time.Minute),
	}
}

// List - entries newest first, at most MaxHistoryEntries.
// Corrupt or missing stored data reads as an empty list, never an error.
func (s *HistoryStore) List() []HistoryEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []HistoryEntry{}
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("⚠️  [History] Corrupt history slot, starting empty: %v", err)
		return []HistoryEntry{}
	}

	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}
	return entries
}

// Append - insert at the head and truncate the tail beyond the cap.
// Appending a file path that was already recorded is a silent no-op.
func (s *HistoryStore) Append(entry HistoryEntry) error {
	if entry.URI == "" {
		return fmt.Errorf("history entry requires a uri")
	}

	if _, seen := s.guard.Get(entry.URI); seen {
		log.Printf("🔍 [History] Skipping duplicate append for %s", filepath.Base(entry.URI))
		return nil
	}

	entries := s.List()
	for _, existing := range entries {
		if existing.URI == entry.URI {
			s.guard.SetDefault(entry.URI, struct{}{})
			return nil
		}
	}

	if entry.Ts == 0 {
		entry.Ts = time.Now().UnixMilli()
	}
	// keep ts usable as an identity key under rapid successive appends
	for hasTs(entries, entry.Ts) {
		entry.Ts++
	}

	entry.Ref = truncate(entry.Ref, maxRefLen)
	entry.Prompt = truncate(entry.Prompt, maxPromptLen)

	next := append([]HistoryEntry{entry}, entries...)
	if len(next) > MaxHistoryEntries {
		next = next[:MaxHistoryEntries]
	}

	if err := s.save(next); err != nil {
		return err
	}

	s.guard.SetDefault(entry.URI, struct{}{})
	log.Printf("✅ [History] Recorded %s (entries: %d)", filepath.Base(entry.URI), len(next))
	return nil
}

// Remove - drop the entry with the given ts; missing ts is a no-op.
// The underlying file is left alone (storage reclamation is out of scope).
func (s *HistoryStore) Remove(ts int64) error {
	entries := s.List()
	next := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.Ts != ts {
			next = append(next, e)
		}
	}
	if len(next) == len(entries) {
		return nil
	}
	return s.save(next)
}

// Clear - empty the list
func (s *HistoryStore) Clear() error {
	s.guard.Flush()
	return s.save([]HistoryEntry{})
}

// save - atomic replace of the slot so a crash never leaves a torn file
func (s *HistoryStore) save(entries []HistoryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to serialize history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace history slot: %w", err)
	}
	return nil
}

func hasTs(entries []HistoryEntry, ts int64) bool {
	for _, e := range entries {
		if e.Ts == ts {
			return true
		}
	}
	return false
}

// truncate - cut on a rune boundary so multibyte refs survive JSON round-trips
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
