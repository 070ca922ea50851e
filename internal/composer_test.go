package internal

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func newComposerCache(t *testing.T, sessions ...*Session) *Cache {
	t.Helper()
	c := newTestCache(t)
	for _, s := range sessions {
		if !c.Put(s) {
			t.Fatalf("put %s failed", s.ID)
		}
	}
	return c
}

func TestRenderEmpty(t *testing.T) {
	comp := NewComposer(DefaultLimits())
	if got := comp.Render(nil, "anything", "/tmp/cache.json"); got != NoResultsSentinel {
		t.Errorf("expected sentinel, got %q", got)
	}
}

func TestRenderStructure(t *testing.T) {
	comp := NewComposer(DefaultLimits())
	sessions := []*Session{
		testSession("a", "fix the cache error", "solution: flush on write", 0.8, time.Now().UnixMilli()),
		testSession("b", "docker setup", "compose layout", 0.6, time.Now().UnixMilli()),
	}

	out := comp.Render(sessions, "Recent sessions", "/tmp/cache.json")

	if !strings.HasPrefix(out, "💡 **Recent sessions** (2 sessions)") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "**1. fix the cache error**") || !strings.Contains(out, "**2. docker setup**") {
		t.Errorf("missing session blocks: %q", out)
	}
	if !strings.Contains(out, "📊 context usage: ~") {
		t.Errorf("missing trailer: %q", out)
	}
	if !strings.Contains(out, "(2/2 sessions)") {
		t.Errorf("trailer should report accepted/offered: %q", out)
	}
	if !strings.Contains(out, "source: recall") {
		t.Errorf("trailer should carry the source tag: %q", out)
	}
}

func TestRenderBudgetStopsGreedily(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxTotalTokens = 120
	limits.TokenBuffer = 0
	comp := NewComposer(limits)

	long := strings.Repeat("an unreasonably detailed summary of everything that happened ", 5)
	var sessions []*Session
	for i := 0; i < 5; i++ {
		sessions = append(sessions, testSession(fmt.Sprintf("s%d", i), "session title", long, 0.8, 1))
	}

	out := comp.Render(sessions, "Budgeted", "/tmp/cache.json")

	if strings.Contains(out, "**5.") {
		t.Error("budget should have cut acceptance before the last session")
	}
	if !strings.Contains(out, "/5 sessions)") {
		t.Errorf("trailer should still report all offered sessions: %q", out)
	}

	// Accepted content respects the budget; only the fixed trailer sits
	// on top of it.
	trailerStart := strings.LastIndex(out, "---\n")
	if trailerStart < 0 {
		t.Fatalf("missing trailer: %q", out)
	}
	if got := EstimateTokens(out[:trailerStart]); got > limits.MaxTotalTokens {
		t.Errorf("body exceeds budget: %d > %d", got, limits.MaxTotalTokens)
	}
}

func TestRenderTruncatesBeforeCosting(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxTitleLen = 10
	limits.MaxSummaryLen = 12
	comp := NewComposer(limits)

	s := testSession("a", "a very long title that keeps going", "a very long summary that keeps going", 0.8, 1)
	out := comp.Render([]*Session{s}, "T", "/tmp/cache.json")

	if strings.Contains(out, "a very long title that keeps going") {
		t.Error("title should be truncated in the output")
	}
	if !strings.Contains(out, "a very ...") {
		t.Errorf("expected truncated title: %q", out)
	}
}

func TestByTemplateUnknown(t *testing.T) {
	comp := NewComposer(DefaultLimits())
	cache := newComposerCache(t)

	if _, err := comp.ByTemplate(cache, "no-such-template", ""); err != ErrTemplateNotFound {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestByTemplateRecent(t *testing.T) {
	cache := newComposerCache(t,
		testSession("a", "fix the cache error", "solution: flush", 0.8, time.Now().UnixMilli()),
		testSession("b", "low importance chatter", "nothing much", 0.5, time.Now().UnixMilli()),
	)
	// The recent template's importance floor is 0.3, so both qualify.
	comp := NewComposer(DefaultLimits())

	out, err := comp.ByTemplate(cache, "recent", "")
	if err != nil {
		t.Fatalf("by template: %v", err)
	}
	if !strings.Contains(out, "(2 sessions)") {
		t.Errorf("expected both sessions offered: %q", out)
	}
}

func TestByTemplateCategoryFilter(t *testing.T) {
	cache := newComposerCache(t,
		testSession("bug", "fix the error in prod", "debug notes", 0.8, time.Now().UnixMilli()),
		testSession("perf", "optimize the cache", "profiling notes", 0.8, time.Now().UnixMilli()),
	)
	comp := NewComposer(DefaultLimits())

	out, err := comp.ByTemplate(cache, "problem-solving", "")
	if err != nil {
		t.Fatalf("by template: %v", err)
	}
	if !strings.Contains(out, "fix the error in prod") {
		t.Errorf("troubleshooting session missing: %q", out)
	}
	if strings.Contains(out, "optimize the cache") {
		t.Errorf("performance session should be filtered out: %q", out)
	}
}

func TestByTemplateTopicMatch(t *testing.T) {
	// A month of decay pushes the unrelated session below the score
	// floor while the topical one stays comfortably above it.
	ts := time.Now().AddDate(0, 0, -30).UnixMilli()
	cache := newComposerCache(t,
		testSession("caching", "optimize cache performance", "cache tuning paid off", 0.8, ts),
		testSession("other", "weekend reading list", "some novels", 0.8, ts),
	)
	comp := NewComposer(DefaultLimits())

	out, err := comp.ByTemplate(cache, "current-topic", "cache performance work")
	if err != nil {
		t.Fatalf("by template: %v", err)
	}
	if !strings.Contains(out, "optimize cache performance") {
		t.Errorf("topic match missing: %q", out)
	}
	if strings.Contains(out, "weekend reading list") {
		t.Errorf("unrelated session should not be selected: %q", out)
	}
}

func TestCustomSkipsUnknownIDs(t *testing.T) {
	cache := newComposerCache(t,
		testSession("known", "fix the error", "solution", 0.8, 1),
	)
	comp := NewComposer(DefaultLimits())

	out := comp.Custom(cache, []string{"missing", "known"}, "Picked")
	if !strings.Contains(out, "(1 sessions)") {
		t.Errorf("unknown ids should be skipped silently: %q", out)
	}
	if !strings.Contains(out, "fix the error") {
		t.Errorf("known session missing: %q", out)
	}
}

func TestCustomAllUnknown(t *testing.T) {
	cache := newComposerCache(t)
	comp := NewComposer(DefaultLimits())

	if out := comp.Custom(cache, []string{"a", "b"}, ""); out != NoResultsSentinel {
		t.Errorf("expected sentinel, got %q", out)
	}
}

func TestLightweight(t *testing.T) {
	now := time.Now().UnixMilli()
	cache := newComposerCache(t,
		testSession("a", "fix the error", strings.Repeat("long summary ", 30), 0.9, now),
		testSession("b", "optimize the cache", strings.Repeat("long summary ", 30), 0.8, now),
		testSession("c", "docker setup", strings.Repeat("long summary ", 30), 0.7, now),
		testSession("d", "low priority", "meh", 0.4, now),
	)
	comp := NewComposer(DefaultLimits())

	out := comp.Lightweight(cache, 5000)
	if strings.Contains(out, "low priority") {
		t.Errorf("sessions under the importance bar should be excluded: %q", out)
	}
	if !strings.Contains(out, "(3 sessions)") {
		t.Errorf("expected the top three important sessions: %q", out)
	}
}

func TestTemplateMatchCount(t *testing.T) {
	now := time.Now().UnixMilli()
	cache := newComposerCache(t,
		testSession("bug", "fix the prod error", "debug notes", 0.8, now),
		testSession("perf", "optimize the cache", "profiling", 0.8, now),
	)
	comp := NewComposer(DefaultLimits())

	tpl, err := comp.Template("problem-solving")
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if got := comp.TemplateMatchCount(cache, tpl); got != 1 {
		t.Errorf("expected 1 match, got %d", got)
	}
}

func TestTemplatesAreCopies(t *testing.T) {
	comp := NewComposer(DefaultLimits())
	templates := comp.Templates()
	templates[0].ID = "mutated"

	if again, _ := comp.Template(builtinTemplates[0].ID); again.ID == "mutated" {
		t.Error("Templates must return a copy")
	}
}
