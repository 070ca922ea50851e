package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultCompressionThreshold is the estimated token count above
	// which a session's assistant messages are compressed.
	DefaultCompressionThreshold = 15000

	maxTitleRunes      = 50
	summaryHeadRunes   = 100
	maxSummaryPoints   = 3
	compressedLineHead = 50
)

var sourceMarkerPattern = regexp.MustCompile(`[@#]\S+`)

// Builder turns raw records or session files into normalized Sessions.
// Zero value is not usable; construct with NewBuilder.
type Builder struct {
	compressionThreshold int
	now                  func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{
		compressionThreshold: DefaultCompressionThreshold,
		now:                  time.Now,
	}
}

// WithCompressionThreshold overrides the token count that triggers
// compression. Zero or negative disables compression entirely.
func (b *Builder) WithCompressionThreshold(tokens int) *Builder {
	b.compressionThreshold = tokens
	return b
}

// FromPair builds one Session from a prompt and its positionally paired
// reply. The reply may be the zero RawRecord when the source had no
// matching generation; the session then carries the question alone.
func (b *Builder) FromPair(prompt, reply RawRecord) *Session {
	records := []RawRecord{prompt}
	if strings.TrimSpace(reply.Text) != "" {
		records = append(records, reply)
	}
	return b.FromRecords(prompt.SourceID, "", records)
}

// FromRecords builds one Session from an ordered batch of records
// belonging to a single extraction unit. Returns nil when the batch
// yields no messages; such units are discarded, never cached.
func (b *Builder) FromRecords(sourceID, title string, records []RawRecord) *Session {
	var messages []Message
	for _, rec := range records {
		text := strings.TrimSpace(rec.Text)
		if text == "" {
			continue
		}
		role := RoleUser
		if rec.Role == RoleAssistant {
			role = RoleAssistant
		}
		ts := rec.TimestampMillis
		if ts == 0 {
			ts = b.now().UnixMilli()
		}
		messages = append(messages, Message{Role: role, Content: text, TimestampMillis: ts})
	}
	if len(messages) == 0 {
		return nil
	}

	if title == "" {
		title = deriveTitle(messages)
	}
	summary := deriveSummary(messages)
	category := DetectCategory(title + " " + summary)
	tags := buildTags(summary, category)
	importance := scoreImportance(messages, summary)

	session := &Session{
		ID:           sessionID(sourceID, messages),
		Title:        title,
		Messages:     messages,
		Summary:      summary,
		Category:     category,
		Tags:         tags,
		Importance:   importance,
		LastActivity: lastTimestamp(messages),
	}

	rawTokens := messagesTokens(messages)
	session.TokenCount = rawTokens
	if b.compressionThreshold > 0 && rawTokens > b.compressionThreshold {
		compressed := compressMessages(messages)
		compressedTokens := messagesTokens(compressed)
		// Truncating a short unmarked line appends an ellipsis that can
		// cost more tokens than it saves. Keep the originals unless
		// compression actually shrinks the estimate.
		if compressedTokens < rawTokens {
			session.RawMessages = messages
			session.Messages = compressed
			session.TokenCount = compressedTokens
			session.CompressionRatio = float64(compressedTokens) / float64(rawTokens)
		}
	}

	return session
}

// sessionFile is the on-disk shape of one session file in the chat
// directory.
type sessionFile struct {
	Title    string `json:"title"`
	Messages []struct {
		Role      string `json:"role"`
		Content   string `json:"content"`
		Timestamp int64  `json:"timestamp"`
	} `json:"messages"`
}

// FromFile builds one Session from a session file. The file stem scopes
// the id, so rewriting a file with identical content is a no-op upsert.
func (b *Builder) FromFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	records := make([]RawRecord, 0, len(f.Messages))
	for _, m := range f.Messages {
		role := RoleUser
		if m.Role == string(RoleAssistant) {
			role = RoleAssistant
		}
		records = append(records, RawRecord{
			Text:            m.Content,
			TimestampMillis: m.Timestamp,
			Role:            role,
			SourceID:        stem,
		})
	}

	session := b.FromRecords("file-"+stem, strings.TrimSpace(f.Title), records)
	if session == nil {
		return nil, nil
	}
	return session, nil
}

// sessionID hashes (index, content) tuples plus the source scope so that
// identical input always maps to the same id.
func sessionID(sourceID string, messages []Message) string {
	h := sha256.New()
	for i, m := range messages {
		fmt.Fprintf(h, "%d:%s\n", i, strings.TrimSpace(m.Content))
	}
	digest := hex.EncodeToString(h.Sum(nil))[:12]
	if sourceID == "" {
		return digest
	}
	return sourceID + "-" + digest
}

func deriveTitle(messages []Message) string {
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		clean := sourceMarkerPattern.ReplaceAllString(m.Content, "")
		clean = strings.Join(strings.Fields(clean), " ")
		if clean == "" {
			continue
		}
		return truncateRunes(clean, maxTitleRunes)
	}
	return "untitled session"
}

// deriveSummary extracts up to three structural lines from the last
// assistant message, falling back to its first 100 characters. Sessions
// without assistant messages summarize the first user message instead.
func deriveSummary(messages []Message) string {
	var last *Message
	for i := range messages {
		if messages[i].Role == RoleAssistant {
			last = &messages[i]
		}
	}
	if last == nil {
		return truncateRunes(messages[0].Content, summaryHeadRunes)
	}

	var points []string
	for _, line := range strings.Split(last.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !isStructuralLine(trimmed) {
			continue
		}
		point := strings.TrimSpace(strings.Trim(trimmed, "#*- "))
		if point == "" {
			continue
		}
		points = append(points, point)
		if len(points) == maxSummaryPoints {
			break
		}
	}
	if len(points) > 0 {
		return strings.Join(points, " | ")
	}
	return truncateRunes(last.Content, summaryHeadRunes)
}

func isStructuralLine(line string) bool {
	switch {
	case strings.HasPrefix(line, "#"),
		strings.HasPrefix(line, "**"),
		strings.HasPrefix(line, "- "),
		strings.HasPrefix(line, "* "):
		return true
	}
	return numberedItemPattern.MatchString(line)
}

var numberedItemPattern = regexp.MustCompile(`^\d+\.\s`)

func buildTags(summary, category string) []Tag {
	tags := []Tag{{
		Name:       category,
		Origin:     TagOriginMain,
		Confidence: 1.0,
		Color:      CategoryColor(category),
	}}

	lower := strings.ToLower(summary)
	for _, rule := range specialTagRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, Tag{
					Name:       rule.Name,
					Origin:     TagOriginSpecial,
					Confidence: 0.8,
					Color:      rule.Color,
				})
				break
			}
		}
	}
	return tags
}

// scoreImportance is monotonic in message count, content length and the
// number of matched importance keywords, clamped to [0.5, 1.0].
func scoreImportance(messages []Message, summary string) float64 {
	score := 0.5

	score += min(0.05*float64(len(messages)), 0.2)

	var totalChars int
	for _, m := range messages {
		totalChars += len(m.Content)
	}
	score += min(0.1*float64(totalChars)/1000, 0.2)

	lower := strings.ToLower(summary)
	for _, kw := range importanceKeywords {
		if strings.Contains(lower, kw) {
			score += 0.1
		}
	}

	return min(score, 1.0)
}

func lastTimestamp(messages []Message) int64 {
	var last int64
	for _, m := range messages {
		if m.TimestampMillis > last {
			last = m.TimestampMillis
		}
	}
	return last
}

func messagesTokens(messages []Message) int {
	var total int
	for _, m := range messages {
		total += EstimateTokens(m.Content)
	}
	return total
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
