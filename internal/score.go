package internal

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	scoreKeywordWeight    = 0.3
	scoreCategoryWeight   = 0.4
	scoreImportanceWeight = 0.2
	scoreRecencyHalfLife  = 30.0 // days
	// ScoreFloor is the threshold below which (inclusive) a session is
	// dropped from recommendation results.
	ScoreFloor = 0.1
)

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// Score rates how relevant a session is to free-text input. It is a
// pure function of its arguments: keyword overlap, category match and
// importance, damped by recency decay against now. Both ad-hoc
// recommendation and topic-matching templates use it unchanged.
func Score(s *Session, query string, now time.Time) float64 {
	queryKeywords := extractKeywords(query)
	sessionKeywords := keywordSet(extractKeywords(s.Title + " " + s.Summary))

	var overlap int
	for _, kw := range queryKeywords {
		if sessionKeywords[kw] {
			overlap++
		}
	}

	score := scoreKeywordWeight * float64(overlap)
	if DetectCategory(query) == s.Category {
		score += scoreCategoryWeight
	}
	score += scoreImportanceWeight * s.Importance

	days := now.Sub(s.lastActivityTime()).Hours() / 24
	if days > 0 {
		score *= math.Exp(-days / scoreRecencyHalfLife)
	}
	return score
}

// Recommend ranks sessions by Score in non-increasing order, breaking
// ties by original candidate order, and drops anything at or below
// ScoreFloor. At most max sessions are returned; max <= 0 means no cap.
func Recommend(sessions []*Session, query string, max int, now time.Time) []*Session {
	type scored struct {
		session *Session
		score   float64
	}

	ranked := make([]scored, 0, len(sessions))
	for _, s := range sessions {
		sc := Score(s, query, now)
		if sc <= ScoreFloor {
			continue
		}
		ranked = append(ranked, scored{s, sc})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}

	out := make([]*Session, len(ranked))
	for i, r := range ranked {
		out[i] = r.session
	}
	return out
}

// extractKeywords lower-cases, strips punctuation and keeps distinct
// words longer than two characters, preserving first-seen order.
func extractKeywords(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

func keywordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
