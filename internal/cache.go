package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache is the in-memory session store backed by a full-snapshot file.
// All methods are safe for concurrent use; internally every mutation is
// serialized behind one mutex, which closes the unsynchronized-event
// race of the original design.
type Cache struct {
	mu sync.Mutex

	path        string
	sessions    map[string]*Session
	stats       map[string]*CategoryInfo
	lastUpdated int64
	now         func() time.Time
}

// NewCache creates an empty cache whose snapshot lives at path. Call
// Load to restore the previous snapshot before first use.
func NewCache(path string) *Cache {
	c := &Cache{
		path:     path,
		sessions: make(map[string]*Session),
		stats:    make(map[string]*CategoryInfo),
		now:      time.Now,
	}
	c.resetStats()
	return c
}

func (c *Cache) resetStats() {
	for _, rule := range categoryRules {
		c.stats[rule.Label] = &CategoryInfo{
			Name:     rule.Label,
			Keywords: rule.Keywords,
			Color:    rule.Color,
		}
	}
}

type snapshot struct {
	Sessions    map[string]*Session      `json:"sessions"`
	Categories  map[string]*CategoryInfo `json:"categoryStats"`
	LastUpdated int64                    `json:"lastUpdated"`
}

// Load restores the last persisted snapshot. A missing snapshot file is
// not an error; the cache simply starts empty.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if snap.Sessions != nil {
		c.sessions = snap.Sessions
	}
	c.lastUpdated = snap.LastUpdated
	c.recountStatsLocked()
	return nil
}

// Flush rewrites the snapshot file in full. The in-memory state stays
// authoritative whether or not the write succeeds; callers log failures
// and carry on.
func (c *Cache) Flush() error {
	c.mu.Lock()
	snap := snapshot{
		Sessions:    c.sessions,
		Categories:  c.stats,
		LastUpdated: c.lastUpdated,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Path returns the snapshot file location.
func (c *Cache) Path() string {
	return c.path
}

// Put inserts a session and reports whether it was added. An existing
// session with the same id wins; duplicates are skipped, never updated
// in place. Ids are content-derived, so a changed source produces a new
// id rather than a conflicting one.
func (c *Cache) Put(s *Session) bool {
	if s == nil || len(s.Messages) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sessions[s.ID]; exists {
		return false
	}
	c.sessions[s.ID] = s
	c.touchLocked()
	return true
}

func (c *Cache) Get(id string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (c *Cache) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[id]; !ok {
		return false
	}
	delete(c.sessions, id)
	c.touchLocked()
	return true
}

// All returns sessions ordered by importance desc, then last activity
// desc, then id for determinism. Sample sessions are excluded unless
// includeSamples is set.
func (c *Cache) All(includeSamples bool) []*Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessions := make([]*Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		if !includeSamples && IsSample(s.ID) {
			continue
		}
		sessions = append(sessions, s)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Importance != sessions[j].Importance {
			return sessions[i].Importance > sessions[j].Importance
		}
		if sessions[i].LastActivity != sessions[j].LastActivity {
			return sessions[i].LastActivity > sessions[j].LastActivity
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions
}

func (c *Cache) ByCategory(label string, includeSamples bool) []*Session {
	var matched []*Session
	for _, s := range c.All(includeSamples) {
		if s.Category == label {
			matched = append(matched, s)
		}
	}
	return matched
}

func (c *Cache) ByTag(name string, includeSamples bool) []*Session {
	var matched []*Session
	for _, s := range c.All(includeSamples) {
		if s.HasTag(name) {
			matched = append(matched, s)
		}
	}
	return matched
}

// Search matches sessions whose title+summary contains any of the
// whitespace-separated query terms, case-insensitive.
func (c *Cache) Search(query string, includeSamples bool) []*Session {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	var matched []*Session
	for _, s := range c.All(includeSamples) {
		text := strings.ToLower(s.Title + " " + s.Summary)
		for _, term := range terms {
			if strings.Contains(text, term) {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched
}

// CategoryStats returns a copy of the per-category counters.
func (c *Cache) CategoryStats() map[string]CategoryInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]CategoryInfo, len(c.stats))
	for label, info := range c.stats {
		out[label] = *info
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *Cache) LastUpdated() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.UnixMilli(c.lastUpdated)
}

func (c *Cache) touchLocked() {
	c.lastUpdated = c.now().UnixMilli()
	c.recountStatsLocked()
}

func (c *Cache) recountStatsLocked() {
	c.resetStats()
	for _, s := range c.sessions {
		info, ok := c.stats[s.Category]
		if !ok {
			// Sessions restored from an older snapshot may carry a
			// label no longer in the rule table; fold them into other.
			info = c.stats[CategoryOther]
		}
		info.Count++
	}
}
