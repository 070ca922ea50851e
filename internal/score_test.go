package internal

import (
	"testing"
	"time"
)

func TestScoreKeywordOverlap(t *testing.T) {
	now := time.UnixMilli(1000)
	matching := testSession("a", "cache invalidation strategies", "clear cache entries on write", 0.5, 1000)
	unrelated := testSession("b", "dinner plans", "pasta again", 0.5, 1000)

	q := "cache invalidation"
	if Score(matching, q, now) <= Score(unrelated, q, now) {
		t.Error("keyword overlap must raise the score")
	}
}

func TestScoreRecencyDecay(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000)
	fresh := testSession("a", "cache tuning", "optimize the cache", 0.5, base.UnixMilli())
	stale := testSession("b", "cache tuning", "optimize the cache", 0.5, base.AddDate(0, 0, -60).UnixMilli())

	q := "cache tuning"
	if Score(fresh, q, base) <= Score(stale, q, base) {
		t.Error("older sessions must decay")
	}
}

func TestScoreFutureTimestampNotBoosted(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	s := testSession("a", "cache tuning", "optimize", 0.5, now.UnixMilli())
	future := testSession("b", "cache tuning", "optimize", 0.5, now.AddDate(0, 0, 5).UnixMilli())

	q := "cache tuning"
	if Score(future, q, now) > Score(s, q, now) {
		t.Error("timestamps in the future must not amplify the score")
	}
}

func TestRecommendFiltersAndRanks(t *testing.T) {
	// A query about caching against one matching and one unrelated
	// session, evaluated a month after the fact: the match survives the
	// floor, the unrelated one decays below it.
	ts := time.UnixMilli(1_700_000_000_000)
	now := ts.AddDate(0, 0, 30)

	match := testSession("match", "optimize cache performance", "cache tuning paid off", 0.7, ts.UnixMilli())
	misc := testSession("misc", "weekend reading list", "some novels", 0.6, ts.UnixMilli())

	got := Recommend([]*Session{misc, match}, "cache performance", 5, now)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 recommendation, got %d", len(got))
	}
	if got[0].ID != "match" {
		t.Errorf("expected match first, got %s", got[0].ID)
	}
}

func TestRecommendDeterministicTieBreak(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	a := testSession("a", "optimize the cache", "cache notes", 0.5, now.UnixMilli())
	b := testSession("b", "optimize the cache", "cache notes", 0.5, now.UnixMilli())

	first := Recommend([]*Session{a, b}, "optimize cache", 5, now)
	second := Recommend([]*Session{a, b}, "optimize cache", 5, now)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected both sessions recommended")
	}
	if first[0].ID != "a" || second[0].ID != "a" {
		t.Error("equal scores must preserve candidate order")
	}
}

func TestRecommendRespectsMax(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	var sessions []*Session
	for _, id := range []string{"a", "b", "c", "d"} {
		sessions = append(sessions, testSession(id, "optimize the cache layer", "cache work", 0.8, now.UnixMilli()))
	}

	if got := Recommend(sessions, "optimize cache", 2, now); len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
	if got := Recommend(sessions, "optimize cache", 0, now); len(got) != 4 {
		t.Errorf("max 0 means no cap, got %d", len(got))
	}
}

func TestExtractKeywords(t *testing.T) {
	got := extractKeywords("Fix the Cache, fix it now!")
	want := map[string]bool{"fix": true, "the": true, "cache": true, "now": true}

	if len(got) != len(want) {
		t.Fatalf("expected %d keywords, got %v", len(want), got)
	}
	for _, w := range got {
		if !want[w] {
			t.Errorf("unexpected keyword %q", w)
		}
	}
}
