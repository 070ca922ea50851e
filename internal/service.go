package internal

import (
	"fmt"
	"log/slog"
	"time"
)

// Service wires the extractor, builder, cache and composer together
// behind the surface the CLI and programmatic clients use. Reads come
// straight from the cache; every mutating operation flushes the
// snapshot and, when history is enabled, records it.
type Service struct {
	scope    Scope
	cfg      *Config
	builder  *Builder
	cache    *Cache
	composer *Composer
	chats    *ChatDir
	store    *StateStore
	history  *History
	logger   *slog.Logger
}

func NewService(scope Scope, cfg *Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	builder := NewBuilder().WithCompressionThreshold(cfg.CompressionThreshold)

	cache := NewCache(scope.CachePath())
	if err := cache.Load(); err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}

	chatDir := cfg.Sources.ChatDir
	if chatDir == "" {
		chatDir = scope.ChatPath()
	}

	s := &Service{
		scope:    scope,
		cfg:      cfg,
		builder:  builder,
		cache:    cache,
		composer: NewComposer(cfg.Limits()),
		chats:    NewChatDir(chatDir, builder, logger),
		logger:   logger,
	}

	if cfg.Sources.WorkspaceStorage != "" {
		s.store = NewStateStore(cfg.Sources.WorkspaceStorage, builder, logger)
	}

	if cfg.History {
		history, err := OpenHistory(scope)
		if err != nil {
			// History is best-effort; a broken repository must not take
			// the whole engine down.
			logger.Warn("history disabled", "error", err)
		} else {
			s.history = history
		}
	}

	return s, nil
}

func (s *Service) Scope() Scope    { return s.scope }
func (s *Service) Config() *Config { return s.cfg }

// Ingest adds sessions to the cache, skipping known ids, and persists
// when anything changed. Returns how many sessions were added.
func (s *Service) Ingest(sessions []*Session) int {
	var added int
	for _, session := range sessions {
		if session == nil {
			continue
		}
		if s.cache.Put(session) {
			added++
			s.logger.Debug("session added", "id", session.ID, "category", session.Category)
		}
	}
	if added > 0 {
		s.persist(fmt.Sprintf("ingest: %d session(s)", added))
	}
	return added
}

// Rescan pulls every configured source and ingests the result.
func (s *Service) Rescan() (int, error) {
	var sessions []*Session

	fromChats, err := s.chats.Scan()
	if err != nil {
		return 0, err
	}
	sessions = append(sessions, fromChats...)

	if s.store != nil {
		fromStore, err := s.store.Scan()
		if err != nil {
			return 0, err
		}
		sessions = append(sessions, fromStore...)
	}

	added := s.Ingest(sessions)
	s.logger.Info("rescan complete", "scanned", len(sessions), "added", added)
	return added, nil
}

// IngestFile extracts and ingests a single session file. Malformed
// files are logged and skipped, matching scan behavior.
func (s *Service) IngestFile(path string) {
	session, err := s.chats.Extract(path)
	if err != nil {
		s.logger.Warn("skipping session file", "file", path, "error", err)
		return
	}
	if session != nil {
		s.Ingest([]*Session{session})
	}
}

// Watcher returns a watcher over the chat directory that feeds changed
// files through IngestFile and flushes once on stop.
func (s *Service) Watcher() *Watcher {
	return NewWatcher(s.chats.Dir(), s.cfg.Watch.Debounce, s.IngestFile, func() {
		s.persist("watch: final flush")
	}, s.logger)
}

func (s *Service) ListSessions(includeSamples bool) []*Session {
	return s.cache.All(includeSamples)
}

func (s *Service) GetSession(id string) (*Session, error) {
	return s.cache.Get(id)
}

func (s *Service) Search(query string, includeSamples bool) []*Session {
	return s.cache.Search(query, includeSamples)
}

func (s *Service) Recommend(query string, max int) []*Session {
	return Recommend(s.cache.All(false), query, max, time.Now())
}

func (s *Service) DeleteSession(id string) error {
	if !s.cache.Delete(id) {
		return ErrSessionNotFound
	}
	s.persist("delete: " + id)
	return nil
}

func (s *Service) ReferenceByTemplate(templateID, input string) (string, error) {
	return s.composer.ByTemplate(s.cache, templateID, input)
}

func (s *Service) CustomReference(ids []string, title string) string {
	return s.composer.Custom(s.cache, ids, title)
}

func (s *Service) LightweightReference(maxTokens int) string {
	return s.composer.Lightweight(s.cache, maxTokens)
}

// TemplateSummary pairs a template with how many cached sessions it
// currently matches.
type TemplateSummary struct {
	ReferenceTemplate
	MatchCount int `json:"matchCount"`
}

func (s *Service) Templates() []TemplateSummary {
	templates := s.composer.Templates()
	out := make([]TemplateSummary, len(templates))
	for i, t := range templates {
		out[i] = TemplateSummary{
			ReferenceTemplate: t,
			MatchCount:        s.composer.TemplateMatchCount(s.cache, t),
		}
	}
	return out
}

func (s *Service) CategoryStats() map[string]CategoryInfo {
	return s.cache.CategoryStats()
}

// Status describes the engine's current state for the status command.
type Status struct {
	Scope       ScopeType `json:"scope"`
	CachePath   string    `json:"cachePath"`
	ChatDir     string    `json:"chatDir"`
	Sessions    int       `json:"sessions"`
	LastUpdated time.Time `json:"lastUpdated"`
	History     bool      `json:"history"`
}

func (s *Service) Status() Status {
	return Status{
		Scope:       s.scope.Type,
		CachePath:   s.cache.Path(),
		ChatDir:     s.chats.Dir(),
		Sessions:    s.cache.Len(),
		LastUpdated: s.cache.LastUpdated(),
		History:     s.history != nil,
	}
}

func (s *Service) HistoryLog(limit int) ([]HistoryEntry, error) {
	if s.history == nil {
		return nil, fmt.Errorf("history not enabled")
	}
	return s.history.Log(limit)
}

// SeedSamples ingests a small set of synthetic sessions so a fresh
// install has something to render. Their ids carry the sample prefix
// and stay out of references unless explicitly included.
func (s *Service) SeedSamples() int {
	return s.Ingest(sampleSessions(s.builder))
}

// persist flushes the snapshot and records history. Failures are logged
// and swallowed; the in-memory cache stays authoritative.
func (s *Service) persist(message string) {
	if err := s.cache.Flush(); err != nil {
		s.logger.Error("flush failed", "error", err)
		return
	}
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(message); err != nil {
		s.logger.Warn("history record failed", "error", err)
	}
}
