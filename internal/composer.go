package internal

import (
	"fmt"
	"strings"
	"time"
)

// Limits bound the rendered size of a reference. All values are in
// estimated tokens except the rune-based truncation lengths.
type Limits struct {
	MaxTotalTokens         int
	TokenBuffer            int
	MaxSessionsPerTemplate int
	MaxTitleLen            int
	MaxSummaryLen          int
}

func DefaultLimits() Limits {
	return Limits{
		MaxTotalTokens:         80000,
		TokenBuffer:            20000,
		MaxSessionsPerTemplate: 50,
		MaxTitleLen:            100,
		MaxSummaryLen:          800,
	}
}

// lightweightLimits tighten truncation for context-sensitive callers.
func lightweightLimits(maxTokens int) Limits {
	return Limits{
		MaxTotalTokens:         maxTokens,
		TokenBuffer:            0,
		MaxSessionsPerTemplate: 3,
		MaxTitleLen:            30,
		MaxSummaryLen:          100,
	}
}

// NoResultsSentinel is returned instead of an empty reference when no
// candidate survives filtering.
const NoResultsSentinel = "📭 no matching sessions found"

var builtinTemplates = []ReferenceTemplate{
	{
		ID:          "recent",
		Name:        "Recent sessions",
		Description: "The most recent important sessions",
		MaxSessions: 15, MinImportance: 0.3,
	},
	{
		ID:          "current-topic",
		Name:        "Current topic",
		Description: "Sessions relevant to the text being worked on",
		MaxSessions: 20, MinImportance: 0.4, TopicMatch: true,
	},
	{
		ID:          "problem-solving",
		Name:        "Problem solving",
		Description: "Past troubleshooting experience",
		Categories:  []string{"troubleshooting"}, MaxSessions: 15,
	},
	{
		ID:          "optimization",
		Name:        "Optimization",
		Description: "Performance tuning experience",
		Categories:  []string{"performance"}, MaxSessions: 12,
	},
	{
		ID:          "all-important",
		Name:        "High importance",
		Description: "Every session above the importance bar",
		MaxSessions: 30, MinImportance: 0.7,
	},
}

// Composer renders token-budgeted references from ranked candidates.
type Composer struct {
	limits    Limits
	templates []ReferenceTemplate
	now       func() time.Time
}

func NewComposer(limits Limits) *Composer {
	return &Composer{
		limits:    limits,
		templates: builtinTemplates,
		now:       time.Now,
	}
}

func (c *Composer) Templates() []ReferenceTemplate {
	out := make([]ReferenceTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

func (c *Composer) Template(id string) (ReferenceTemplate, error) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return ReferenceTemplate{}, ErrTemplateNotFound
}

// TemplateMatchCount reports how many cached sessions a template would
// offer before budgeting, capped at its MaxSessions.
func (c *Composer) TemplateMatchCount(cache *Cache, t ReferenceTemplate) int {
	matched := len(c.filter(cache.All(false), t))
	if t.MaxSessions > 0 && matched > t.MaxSessions {
		return t.MaxSessions
	}
	return matched
}

// ByTemplate resolves a template's candidates and renders them. Input
// text feeds topic matching for templates that request it and is
// ignored otherwise.
func (c *Composer) ByTemplate(cache *Cache, templateID, input string) (string, error) {
	t, err := c.Template(templateID)
	if err != nil {
		return "", err
	}

	sessions := c.filter(cache.All(false), t)

	maxSessions := t.MaxSessions
	if maxSessions <= 0 || maxSessions > c.limits.MaxSessionsPerTemplate {
		maxSessions = c.limits.MaxSessionsPerTemplate
	}

	if t.TopicMatch && input != "" {
		sessions = Recommend(sessions, input, maxSessions, c.now())
	} else if len(sessions) > maxSessions {
		sessions = sessions[:maxSessions]
	}

	return c.Render(sessions, t.Name, cache.Path()), nil
}

// Custom renders a reference from caller-chosen session ids. Unknown
// ids are skipped rather than failing the whole reference.
func (c *Composer) Custom(cache *Cache, ids []string, title string) string {
	var sessions []*Session
	for _, id := range ids {
		if s, err := cache.Get(id); err == nil {
			sessions = append(sessions, s)
		}
	}
	if title == "" {
		title = "Custom reference"
	}
	return c.Render(sessions, title, cache.Path())
}

// Lightweight renders a compact reference for context-sensitive
// callers: only important sessions, short truncation, explicit budget.
func (c *Composer) Lightweight(cache *Cache, maxTokens int) string {
	var sessions []*Session
	for _, s := range cache.All(false) {
		if s.Importance >= 0.5 {
			sessions = append(sessions, s)
		}
		if len(sessions) == 3 {
			break
		}
	}

	light := *c
	light.limits = lightweightLimits(maxTokens)
	return light.Render(sessions, "Compact reference", cache.Path())
}

func (c *Composer) filter(sessions []*Session, t ReferenceTemplate) []*Session {
	var cutoff int64
	if t.TimeRangeHours > 0 {
		cutoff = c.now().Add(-time.Duration(t.TimeRangeHours) * time.Hour).UnixMilli()
	}

	var out []*Session
	for _, s := range sessions {
		if len(t.Categories) > 0 && !containsString(t.Categories, s.Category) {
			continue
		}
		if len(t.TagNames) > 0 && !hasAnyTag(s, t.TagNames) {
			continue
		}
		if s.Importance < t.MinImportance {
			continue
		}
		if cutoff > 0 && s.LastActivity < cutoff {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Render assembles header, greedily budgeted session blocks, and a
// trailer with the true token count. Candidates are consumed in rank
// order; the first block that would overflow the budget stops
// acceptance, and the remainder is reported as skipped in the trailer.
func (c *Composer) Render(sessions []*Session, title, origin string) string {
	if len(sessions) == 0 {
		return NoResultsSentinel
	}

	header := fmt.Sprintf("💡 **%s** (%d sessions)\nsource: recall cache (%s)\n\n", title, len(sessions), origin)
	budget := c.limits.MaxTotalTokens - c.limits.TokenBuffer
	running := EstimateTokens(header)

	var accepted []*Session
	for _, s := range sessions {
		block := c.renderSession(s, len(accepted)+1)
		cost := EstimateTokens(block)
		if running+cost > budget {
			break
		}
		accepted = append(accepted, s)
		running += cost
	}

	var b strings.Builder
	b.WriteString(header)
	for i, s := range accepted {
		b.WriteString(c.renderSession(s, i+1))
	}

	body := b.String()
	b.WriteString("---\n")
	fmt.Fprintf(&b, "📊 context usage: ~%d tokens (%d/%d sessions) | source: recall\n",
		EstimateTokens(body), len(accepted), len(sessions))
	return b.String()
}

func (c *Composer) renderSession(s *Session, ordinal int) string {
	tagNames := make([]string, len(s.Tags))
	for i, t := range s.Tags {
		tagNames[i] = "#" + t.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d. %s** [%s] (importance %.2f)\n",
		ordinal, truncateRunes(s.Title, c.limits.MaxTitleLen), s.Category, s.Importance)
	fmt.Fprintf(&b, "%s\n", strings.Join(tagNames, " "))
	fmt.Fprintf(&b, "📝 %s\n", truncateRunes(s.Summary, c.limits.MaxSummaryLen))
	fmt.Fprintf(&b, "id: %s | %s\n\n", s.ID, s.lastActivityTime().UTC().Format(time.RFC3339))
	return b.String()
}

func containsString(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

func hasAnyTag(s *Session, names []string) bool {
	for _, name := range names {
		if s.HasTag(name) {
			return true
		}
	}
	return false
}
