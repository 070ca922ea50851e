package internal

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrTemplateNotFound = errors.New("template not found")
)

// SamplePrefix marks synthetic seed sessions. Read operations exclude
// them unless explicitly asked to include samples.
const SamplePrefix = "sample-"

func IsSample(id string) bool {
	return strings.HasPrefix(id, SamplePrefix)
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RawRecord is one conversational fragment as read from a source,
// before pairing and normalization. Consumed immediately by the Builder.
type RawRecord struct {
	Text            string
	TimestampMillis int64
	Role            Role
	SourceID        string
}

type Message struct {
	Role            Role   `json:"role"`
	Content         string `json:"content"`
	TimestampMillis int64  `json:"timestamp"`
}

type TagOrigin string

const (
	TagOriginMain    TagOrigin = "main"
	TagOriginSpecial TagOrigin = "special"
)

type Tag struct {
	Name       string    `json:"name"`
	Origin     TagOrigin `json:"origin"`
	Confidence float64   `json:"confidence"`
	Color      string    `json:"color,omitempty"`
}

// Session is the durable unit: one normalized conversational exchange.
//
// The ID is derived from ordered message content plus source scope, so
// re-ingesting unchanged input always yields the same ID. RawMessages is
// populated only when compression ran; Messages then holds the compressed
// form and CompressionRatio the compressed/original token ratio.
type Session struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Messages         []Message `json:"messages"`
	RawMessages      []Message `json:"rawMessages,omitempty"`
	Summary          string    `json:"summary"`
	Category         string    `json:"category"`
	Tags             []Tag     `json:"tags"`
	Importance       float64   `json:"importance"`
	CompressionRatio float64   `json:"compressionRatio,omitempty"`
	LastActivity     int64     `json:"lastActivity"`
	TokenCount       int       `json:"tokenCount,omitempty"`
}

func (s *Session) HasTag(name string) bool {
	for _, t := range s.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Compressed reports whether lossy compression was applied at build time.
func (s *Session) Compressed() bool {
	return len(s.RawMessages) > 0
}

func (s *Session) lastActivityTime() time.Time {
	return time.UnixMilli(s.LastActivity)
}

type CategoryInfo struct {
	Name     string   `json:"name"`
	Count    int      `json:"count"`
	Keywords []string `json:"keywords"`
	Color    string   `json:"color"`
}

// ReferenceTemplate is a named, immutable filter over the cache used to
// select candidate sessions for a reference.
type ReferenceTemplate struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Categories     []string `json:"categories,omitempty"`
	TagNames       []string `json:"tags,omitempty"`
	MaxSessions    int      `json:"maxSessions"`
	TimeRangeHours int      `json:"timeRangeHours,omitempty"`
	MinImportance  float64  `json:"minImportance,omitempty"`
	// TopicMatch makes the template rank its candidates against the
	// caller's input text instead of taking them in cache order.
	TopicMatch bool `json:"topicMatch,omitempty"`
}
