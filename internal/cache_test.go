package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func testSession(id, title, summary string, importance float64, lastActivity int64) *Session {
	category := DetectCategory(title + " " + summary)
	return &Session{
		ID:           id,
		Title:        title,
		Messages:     []Message{{Role: RoleUser, Content: title, TimestampMillis: lastActivity}},
		Summary:      summary,
		Category:     category,
		Tags:         []Tag{{Name: category, Origin: TagOriginMain, Confidence: 1.0}},
		Importance:   importance,
		LastActivity: lastActivity,
	}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return NewCache(filepath.Join(t.TempDir(), "cache.json"))
}

func TestPutSkipsDuplicates(t *testing.T) {
	c := newTestCache(t)

	s := testSession("ws1-aaa", "fix the bug", "solution found", 0.7, 100)
	if !c.Put(s) {
		t.Fatal("first put should add")
	}
	if c.Put(testSession("ws1-aaa", "different title", "other", 0.9, 200)) {
		t.Error("second put with same id must be skipped")
	}

	got, err := c.Get("ws1-aaa")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "fix the bug" {
		t.Error("existing session must win over the duplicate")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 session, got %d", c.Len())
	}
}

func TestPutRejectsEmpty(t *testing.T) {
	c := newTestCache(t)

	if c.Put(nil) {
		t.Error("nil session must be rejected")
	}
	if c.Put(&Session{ID: "x"}) {
		t.Error("session without messages must be rejected")
	}
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(t)

	if _, err := c.Get("nope"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)
	c.Put(testSession("a", "t", "s", 0.5, 1))

	if !c.Delete("a") {
		t.Error("delete of existing session should report true")
	}
	if c.Delete("a") {
		t.Error("delete of missing session should report false")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestAllOrdering(t *testing.T) {
	c := newTestCache(t)
	c.Put(testSession("low", "low importance", "s", 0.5, 300))
	c.Put(testSession("high", "high importance", "s", 0.9, 100))
	c.Put(testSession("mid-old", "same importance older", "s", 0.7, 100))
	c.Put(testSession("mid-new", "same importance newer", "s", 0.7, 200))

	all := c.All(true)
	want := []string{"high", "mid-new", "mid-old", "low"}
	if len(all) != len(want) {
		t.Fatalf("expected %d sessions, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}
}

func TestAllExcludesSamples(t *testing.T) {
	c := newTestCache(t)
	c.Put(testSession("sample-abc", "sample", "s", 0.9, 1))
	c.Put(testSession("real-abc", "real", "s", 0.5, 1))

	if got := len(c.All(false)); got != 1 {
		t.Errorf("expected samples excluded, got %d sessions", got)
	}
	if got := len(c.All(true)); got != 2 {
		t.Errorf("expected samples included, got %d sessions", got)
	}
}

func TestSearch(t *testing.T) {
	c := newTestCache(t)
	c.Put(testSession("a", "Fix cache invalidation", "clear the cache on write", 0.7, 1))
	c.Put(testSession("b", "Set up docker", "compose file layout", 0.6, 1))

	hits := c.Search("CACHE", false)
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Fatalf("expected session a, got %v", hits)
	}

	hits = c.Search("docker cache", false)
	if len(hits) != 2 {
		t.Errorf("any-term match should find both, got %d", len(hits))
	}

	if hits := c.Search("   ", false); hits != nil {
		t.Error("blank query should match nothing")
	}
}

func TestByCategoryAndTag(t *testing.T) {
	c := newTestCache(t)
	c.Put(testSession("a", "fix this error now", "debug notes", 0.7, 1))
	c.Put(testSession("b", "make it faster", "optimize the cache", 0.6, 1))

	if got := c.ByCategory("troubleshooting", false); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected a in troubleshooting, got %v", got)
	}
	if got := c.ByTag("performance", false); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("expected b tagged performance, got %v", got)
	}
}

func TestFlushAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	c := NewCache(path)
	c.Put(testSession("a", "fix the error", "solution: restart", 0.7, 123))
	if err := c.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	restored := NewCache(path)
	if err := restored.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := restored.Get("a")
	if err != nil {
		t.Fatalf("get after load: %v", err)
	}
	if got.Summary != "solution: restart" || got.LastActivity != 123 {
		t.Errorf("restored session differs: %+v", got)
	}

	stats := restored.CategoryStats()
	if stats["troubleshooting"].Count != 1 {
		t.Errorf("stats should be recounted on load: %+v", stats["troubleshooting"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "absent.json"))
	if err := c.Load(); err != nil {
		t.Errorf("missing snapshot is not an error: %v", err)
	}
	if c.Len() != 0 {
		t.Error("cache should start empty")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := NewCache(path)
	if err := c.Load(); err == nil {
		t.Error("corrupt snapshot should return an error")
	}
}

func TestCategoryStatsFoldUnknownLabels(t *testing.T) {
	c := newTestCache(t)
	s := testSession("a", "t", "s", 0.5, 1)
	s.Category = "retired-label"
	c.Put(s)

	stats := c.CategoryStats()
	if stats[CategoryOther].Count != 1 {
		t.Errorf("unknown labels should fold into other: %+v", stats[CategoryOther])
	}
}
