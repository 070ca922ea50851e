package v1

import (
	"fmt"

	"github.com/4thel00z/recall/internal"
)

// Client provides programmatic access to the reference engine.
type Client struct {
	svc *internal.Service
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	resolver := internal.NewScopeResolver()
	scope := resolver.Resolve(cfg.scope)

	conf, err := internal.LoadConfig(scope)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	svc, err := internal.NewService(scope, conf, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// Sessions lists cached sessions, most important first.
func (c *Client) Sessions() []Session {
	return toSessions(c.svc.ListSessions(false))
}

// Search returns sessions whose title or summary matches the query.
func (c *Client) Search(query string) []Session {
	return toSessions(c.svc.Search(query, false))
}

// Recommend ranks sessions against free-text input.
func (c *Client) Recommend(input string, max int) []Session {
	return toSessions(c.svc.Recommend(input, max))
}

// Reference renders a token-budgeted reference for a template.
func (c *Client) Reference(templateID, input string) (string, error) {
	return c.svc.ReferenceByTemplate(templateID, input)
}

// CustomReference renders a reference from explicit session ids.
func (c *Client) CustomReference(ids []string, title string) string {
	return c.svc.CustomReference(ids, title)
}

// LightweightReference renders a compact reference under maxTokens.
func (c *Client) LightweightReference(maxTokens int) string {
	return c.svc.LightweightReference(maxTokens)
}

// Templates lists the built-in templates with their match counts.
func (c *Client) Templates() []Template {
	summaries := c.svc.Templates()
	templates := make([]Template, 0, len(summaries))
	for _, s := range summaries {
		templates = append(templates, Template{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			MatchCount:  s.MatchCount,
		})
	}
	return templates
}

// Rescan pulls every configured source and reports how many sessions
// were added.
func (c *Client) Rescan() (int, error) {
	return c.svc.Rescan()
}

// Delete removes a session from the cache.
func (c *Client) Delete(id string) error {
	if err := c.svc.DeleteSession(id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

func toSessions(sessions []*internal.Session) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		tags := make([]string, 0, len(s.Tags))
		for _, t := range s.Tags {
			tags = append(tags, t.Name)
		}
		out = append(out, Session{
			ID:           s.ID,
			Title:        s.Title,
			Summary:      s.Summary,
			Category:     s.Category,
			Tags:         tags,
			Importance:   s.Importance,
			LastActivity: s.LastActivity,
		})
	}
	return out
}
