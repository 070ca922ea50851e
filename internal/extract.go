package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// StateDBName is the editor's per-workspace key/value store.
	StateDBName = "state.vscdb"

	promptsKey     = "aiService.prompts"
	generationsKey = "aiService.generations"
)

// StateStore extracts raw Q/A records from the editor's workspace
// storage: a directory of per-workspace subdirectories, each holding a
// state.vscdb SQLite file with an ItemTable key/value table.
type StateStore struct {
	root    string
	builder *Builder
	logger  *slog.Logger
}

func NewStateStore(root string, builder *Builder, logger *slog.Logger) *StateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{root: root, builder: builder, logger: logger}
}

// Scan walks every workspace under the root and builds one session per
// prompt/generation pair. A missing root or workspaces without a state
// database yield zero sessions; corrupt databases and malformed rows
// are skipped with a warning, never failing the whole scan.
func (s *StateStore) Scan() ([]*Session, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace storage: %w", err)
	}

	var sessions []*Session
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dbPath := filepath.Join(s.root, entry.Name(), StateDBName)
		if _, err := os.Stat(dbPath); err != nil {
			continue
		}

		built, err := s.scanWorkspace(entry.Name(), dbPath)
		if err != nil {
			s.logger.Warn("skipping workspace", "workspace", entry.Name(), "error", err)
			continue
		}
		sessions = append(sessions, built...)
	}
	return sessions, nil
}

func (s *StateStore) scanWorkspace(workspace, dbPath string) ([]*Session, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()

	prompts, err := s.readPrompts(db)
	if err != nil {
		return nil, err
	}
	generations, err := s.readGenerations(db)
	if err != nil {
		return nil, err
	}

	var sessions []*Session
	for i, p := range prompts {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		prompt := RawRecord{
			Text:     text,
			Role:     RoleUser,
			SourceID: workspace,
		}
		var reply RawRecord
		if i < len(generations) {
			g := generations[i]
			prompt.TimestampMillis = g.timestamp()
			reply = RawRecord{
				Text:            g.TextDescription,
				TimestampMillis: g.timestamp(),
				Role:            RoleAssistant,
				SourceID:        workspace,
			}
		}
		if built := s.builder.FromPair(prompt, reply); built != nil {
			sessions = append(sessions, built)
		}
	}
	return sessions, nil
}

type storedPrompt struct {
	Text        string `json:"text"`
	CommandType int    `json:"commandType"`
}

type storedGeneration struct {
	UnixMs          int64  `json:"unixMs"`
	CreatedAt       int64  `json:"createdAt"`
	Timestamp       int64  `json:"timestamp"`
	Type            string `json:"type"`
	TextDescription string `json:"textDescription"`
}

// timestamp tolerates the three field names observed across editor
// versions, preferring the most specific.
func (g storedGeneration) timestamp() int64 {
	switch {
	case g.UnixMs > 0:
		return g.UnixMs
	case g.CreatedAt > 0:
		return g.CreatedAt
	default:
		return g.Timestamp
	}
}

// readPrompts decodes the prompts row. Malformed JSON degrades to an
// empty array so the other row can still produce sessions.
func (s *StateStore) readPrompts(db *sql.DB) ([]storedPrompt, error) {
	value, err := readItem(db, promptsKey)
	if err != nil || value == "" {
		return nil, err
	}
	var prompts []storedPrompt
	if err := json.Unmarshal([]byte(value), &prompts); err != nil {
		s.logger.Warn("malformed row, treating as empty", "key", promptsKey, "error", err)
		return nil, nil
	}
	return prompts, nil
}

func (s *StateStore) readGenerations(db *sql.DB) ([]storedGeneration, error) {
	value, err := readItem(db, generationsKey)
	if err != nil || value == "" {
		return nil, err
	}
	var generations []storedGeneration
	if err := json.Unmarshal([]byte(value), &generations); err != nil {
		s.logger.Warn("malformed row, treating as empty", "key", generationsKey, "error", err)
		return nil, nil
	}
	return generations, nil
}

// readItem fetches one ItemTable value. An absent key is not an error.
func readItem(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM ItemTable WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query %s: %w", key, err)
	}
	return value, nil
}

// ChatDir extracts sessions from a directory of JSON session files, the
// watcher's source. Files are visited in name order for determinism.
type ChatDir struct {
	dir     string
	builder *Builder
	logger  *slog.Logger
}

func NewChatDir(dir string, builder *Builder, logger *slog.Logger) *ChatDir {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatDir{dir: dir, builder: builder, logger: logger}
}

func (d *ChatDir) Dir() string {
	return d.dir
}

// Scan builds one session per parseable .json file. Missing directory
// means zero sessions; malformed files are skipped with a warning.
func (d *ChatDir) Scan() ([]*Session, error) {
	entries, err := os.ReadDir(d.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chat directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var sessions []*Session
	for _, name := range names {
		session, err := d.Extract(filepath.Join(d.dir, name))
		if err != nil {
			d.logger.Warn("skipping session file", "file", name, "error", err)
			continue
		}
		if session != nil {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

// Extract builds the session for a single file path.
func (d *ChatDir) Extract(path string) (*Session, error) {
	return d.builder.FromFile(path)
}
