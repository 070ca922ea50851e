package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	historyBranch = "main"
	historyAuthor = "recall"
	historyEmail  = "recall@local"
)

// History versions the cache snapshot with an embedded git repository.
// The object store lives under .recall/history; the worktree is the
// .recall directory itself, tracking only cache.json.
type History struct {
	repo     *git.Repository
	worktree *git.Worktree
	scope    Scope
}

func historyPath(scope Scope) string {
	return filepath.Join(scope.RecallPath, "history")
}

// OpenHistory opens the snapshot repository, initializing it on first
// use.
func OpenHistory(scope Scope) (*History, error) {
	gitDir := historyPath(scope)

	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		if err := initHistory(scope); err != nil {
			return nil, err
		}
	}

	fs := osfs.New(gitDir)
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(scope.RecallPath)

	repo, err := git.Open(storage, wt)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &History{repo: repo, worktree: worktree, scope: scope}, nil
}

func initHistory(scope Scope) error {
	gitDir := historyPath(scope)
	if err := os.MkdirAll(gitDir, 0755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	fs := osfs.New(gitDir)
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(scope.RecallPath)

	repo, err := git.Init(storage, wt)
	if err != nil {
		return fmt.Errorf("init history: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}
	cfg.Init.DefaultBranch = historyBranch
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("set config: %w", err)
	}

	return nil
}

// Record stages the current cache snapshot and commits it. Recording an
// unchanged snapshot is a no-op and returns an empty hash.
func (h *History) Record(message string) (string, error) {
	name := filepath.Base(h.scope.CachePath())
	if _, err := h.worktree.Add(name); err != nil {
		return "", fmt.Errorf("stage snapshot: %w", err)
	}

	status, err := h.worktree.Status()
	if err != nil {
		return "", fmt.Errorf("get status: %w", err)
	}
	if clean := status.File(name).Staging == git.Unmodified; clean {
		return "", nil
	}

	hash, err := h.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  historyAuthor,
			Email: historyEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}
	return hash.String(), nil
}

// HistoryEntry is one recorded snapshot.
type HistoryEntry struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Log returns recorded snapshots, newest first. An empty repository
// yields an empty log, not an error.
func (h *History) Log(limit int) ([]HistoryEntry, error) {
	iter, err := h.repo.Log(&git.LogOptions{})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var entries []HistoryEntry
	count := 0

	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && count >= limit {
			return io.EOF
		}
		entries = append(entries, HistoryEntry{
			Hash:      c.Hash.String(),
			Message:   strings.TrimSpace(c.Message),
			Timestamp: c.Author.When,
		})
		count++
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return entries, nil
}
