package internal

import (
	"os"
	"path/filepath"
)

type ScopeType string

const (
	ScopeGlobal  ScopeType = "global"
	ScopeProject ScopeType = "project"
)

// Scope is where recall keeps its state: a .recall directory either in
// the nearest enclosing project or under the user's home.
type Scope struct {
	Type       ScopeType
	Path       string // working directory root
	RecallPath string // .recall directory path
}

func (s Scope) CachePath() string {
	return filepath.Join(s.RecallPath, "cache.json")
}

func (s Scope) ConfigPath() string {
	return filepath.Join(s.RecallPath, "config.yaml")
}

func (s Scope) ChatPath() string {
	return filepath.Join(s.RecallPath, "chats")
}

type ScopeResolver struct {
	homeDir string
}

func NewScopeResolver() *ScopeResolver {
	home, _ := os.UserHomeDir()
	return &ScopeResolver{homeDir: home}
}

func (r *ScopeResolver) Global() Scope {
	recallPath := filepath.Join(r.homeDir, ".recall")
	return Scope{
		Type:       ScopeGlobal,
		Path:       r.homeDir,
		RecallPath: recallPath,
	}
}

func (r *ScopeResolver) Project() (Scope, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return Scope{}, false
	}
	return r.findProjectScope(cwd)
}

func (r *ScopeResolver) findProjectScope(dir string) (Scope, bool) {
	for {
		recallPath := filepath.Join(dir, ".recall")
		info, err := os.Stat(recallPath)
		if err == nil && info.IsDir() {
			return Scope{Type: ScopeProject, Path: dir, RecallPath: recallPath}, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Scope{}, false
		}
		dir = parent
	}
}

// Resolve picks the project scope when one exists, unless the caller
// asked for global explicitly.
func (r *ScopeResolver) Resolve(explicit string) Scope {
	if explicit == "global" {
		return r.Global()
	}
	if scope, ok := r.Project(); ok {
		return scope
	}
	return r.Global()
}
