package gitrepo

import (
	"context"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/agencyos/meeting-scribe/pkg/config"
)

// Repository stages and commits document-tree changes. Commit and push are
// best-effort: the engine reports their failure but file writes stay in place.
type Repository struct {
	path   string
	cfg    *config.GitConfig
	logger *zap.Logger
}

// New creates a Repository rooted at the knowledge-base path
func New(path string, cfg *config.GitConfig, logger *zap.Logger) *Repository {
	return &Repository{path: path, cfg: cfg, logger: logger}
}

// CommitPaths stages the given tree-relative paths and commits them with the
// configured author
func (r *Repository) CommitPaths(relPaths []string, message string) error {
	repo, err := git.PlainOpen(r.path)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}

	for _, p := range relPaths {
		if _, err := worktree.Add(p); err != nil {
			return fmt.Errorf("stage %s: %w", p, err)
		}
	}

	commit, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  r.cfg.AuthorName,
			Email: r.cfg.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if r.logger != nil {
		r.logger.Info("knowledge base committed",
			zap.String("commit", commit.String()),
			zap.Int("files", len(relPaths)),
		)
	}
	return nil
}

// Push pushes the current branch to the default remote
func (r *Repository) Push(ctx context.Context) error {
	repo, err := git.PlainOpen(r.path)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	err = repo.PushContext(ctx, &git.PushOptions{})
	if err == git.NoErrAlreadyUpToDate {
		return nil
	}
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}
