package internal

import (
	"math"
	"unicode"
)

// TokenWeights holds the per-character-class costs used by
// EstimateTokens. The values are empirical; they exist for budgeting,
// not for matching any real tokenizer, and are exported so callers and
// tests can treat them as a tunable table.
var TokenWeights = struct {
	CJKRune   float64
	LatinWord float64
	OtherRune float64
}{
	CJKRune:   1.5,
	LatinWord: 1.3,
	OtherRune: 0.5,
}

// EstimateTokens approximates the token cost of text with a closed-form
// weighted character-class count: CJK runes cost more than latin words,
// which cost more than everything else. It is deliberately cheap and
// deterministic; do not expect agreement with a model tokenizer.
func EstimateTokens(text string) int {
	var cjk, latinWords, other int
	inWord := false

	for _, r := range text {
		switch {
		case isCJK(r):
			cjk++
			inWord = false
		case isLatinLetter(r):
			if !inWord {
				latinWords++
				inWord = true
			}
		default:
			other++
			inWord = false
		}
	}

	cost := TokenWeights.CJKRune*float64(cjk) +
		TokenWeights.LatinWord*float64(latinWords) +
		TokenWeights.OtherRune*float64(other)
	return int(math.Ceil(cost))
}

// isCJK covers Han plus kana only. Hangul intentionally falls into the
// other-rune class; widening the set is not worth retuning the weights.
func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) || (r >= 0x3040 && r <= 0x30ff)
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
