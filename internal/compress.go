package internal

import (
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var decorativeLinePattern = regexp.MustCompile(`^[=\-_]{3,}$`)

// compressMessages produces the lossy compact form of a message set.
// User messages pass through untouched; assistant messages keep only
// structurally significant or keyword-bearing lines and truncate the
// rest. The caller is responsible for retaining the originals.
func compressMessages(messages []Message) []Message {
	compressed := make([]Message, len(messages))
	for i, m := range messages {
		compressed[i] = m
		if m.Role == RoleAssistant {
			compressed[i].Content = compressAssistantContent(m.Content)
		}
	}
	return compressed
}

func compressAssistantContent(content string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || decorativeLinePattern.MatchString(trimmed):
			// dropped
		case isStructuralLine(trimmed), strings.Contains(trimmed, "```"), lineHasKeepKeyword(trimmed):
			kept = append(kept, line)
		case len([]rune(trimmed)) > compressedLineHead:
			kept = append(kept, truncateRunes(trimmed, compressedLineHead+3))
		default:
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

func lineHasKeepKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range compressionKeepKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CompressionAudit compares a session's compressed content against its
// retained originals.
type CompressionAudit struct {
	Ratio              float64
	OriginalTokens     int
	CompressedTokens   int
	PreservedKeyPoints []string
	DroppedKeyPoints   []string
	Diff               string
}

// AuditCompression reports what compression kept and lost for a session.
// Returns nil for sessions that were never compressed.
func AuditCompression(s *Session) *CompressionAudit {
	if !s.Compressed() {
		return nil
	}

	original := joinContents(s.RawMessages)
	compressed := joinContents(s.Messages)

	originalPoints := extractKeyPoints(original)
	compressedPoints := extractKeyPoints(compressed)

	var preserved, dropped []string
	for _, p := range originalPoints {
		if containsPoint(compressedPoints, p) {
			preserved = append(preserved, p)
		} else {
			dropped = append(dropped, p)
		}
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, compressed, false)
	dmp.DiffCleanupSemantic(diffs)

	return &CompressionAudit{
		Ratio:              s.CompressionRatio,
		OriginalTokens:     EstimateTokens(original),
		CompressedTokens:   EstimateTokens(compressed),
		PreservedKeyPoints: preserved,
		DroppedKeyPoints:   dropped,
		Diff:               dmp.DiffPrettyText(diffs),
	}
}

func joinContents(messages []Message) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.Content
	}
	return strings.Join(parts, "\n\n")
}

func extractKeyPoints(content string) []string {
	var points []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !isStructuralLine(trimmed) {
			continue
		}
		point := strings.TrimSpace(strings.Trim(trimmed, "#*- "))
		if point != "" {
			points = append(points, point)
		}
	}
	return points
}

func containsPoint(points []string, target string) bool {
	for _, p := range points {
		if strings.Contains(p, target) || strings.Contains(target, p) {
			return true
		}
	}
	return false
}
