package mutation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/agencyos/meeting-scribe/errors"
	"github.com/agencyos/meeting-scribe/internal/domain/entities"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/gitrepo"
	"github.com/agencyos/meeting-scribe/pkg/config"
)

// pathPattern is the conservative character set mutation paths may use
var pathPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_/.]+$`)

// CommitMeta carries the delivery details used to build the commit message
type CommitMeta struct {
	Title       string
	MeetingType string
	ActionItems int
}

// Engine applies declarative file mutations to the document tree and commits
// the resulting change set. Batches are serialized by a per-tree write lock so
// two deliveries naming the same file cannot interleave.
type Engine struct {
	root   string
	repo   *gitrepo.Repository
	cfg    *config.GitConfig
	logger *zap.Logger
	mu     sync.Mutex
}

// NewEngine creates a mutation engine rooted at the knowledge-base path.
// repo may be nil, in which case no commit phase runs.
func NewEngine(root string, repo *gitrepo.Repository, cfg *config.GitConfig, logger *zap.Logger) *Engine {
	return &Engine{root: root, repo: repo, cfg: cfg, logger: logger}
}

// Apply runs the mutations strictly in input order. A failure at index i
// aborts the batch with mutations 0..i-1 left applied and reported; this is a
// partial-success outcome, not a rollback. When all writes succeed the changed
// paths are staged and committed (best-effort).
func (e *Engine) Apply(ctx context.Context, mutations []entities.FileMutation, meta CommitMeta) (*entities.BatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	batch := &entities.BatchResult{Results: make([]entities.MutationResult, 0, len(mutations))}
	changed := make([]string, 0, len(mutations))

	for i, m := range mutations {
		if err := ctx.Err(); err != nil {
			return batch, apperrors.ErrMutationFailed(i, err)
		}

		relPath, err := e.resolvePath(m.Path)
		if err == nil {
			err = e.applyOne(m, relPath)
		}

		result := entities.MutationResult{Index: i, Action: m.Action, Path: m.Path, Applied: err == nil}
		if err != nil {
			result.Error = err.Error()
			batch.Results = append(batch.Results, result)
			if e.logger != nil {
				e.logger.Error("mutation failed",
					zap.Int("index", i),
					zap.String("action", m.Action),
					zap.String("path", m.Path),
					zap.Error(err),
				)
			}
			return batch, apperrors.ErrMutationFailed(i, err)
		}

		batch.Results = append(batch.Results, result)
		changed = append(changed, relPath)
	}

	e.commitBatch(ctx, batch, changed, meta)
	return batch, nil
}

// commitBatch stages and commits the changed paths. Failures are recorded on
// the batch but never unwind the file writes.
func (e *Engine) commitBatch(ctx context.Context, batch *entities.BatchResult, changed []string, meta CommitMeta) {
	if e.repo == nil || e.cfg == nil || !e.cfg.AutoCommit || len(changed) == 0 {
		return
	}

	message := fmt.Sprintf(
		"Add meeting notes: %s\n\nType: %s\nFiles updated: %d\nAction items: %d",
		meta.Title, meta.MeetingType, len(changed), meta.ActionItems,
	)

	if err := e.repo.CommitPaths(changed, message); err != nil {
		batch.CommitErr = err.Error()
		if e.logger != nil {
			e.logger.Error("commit failed, file writes left in place", zap.Error(err))
		}
		return
	}
	batch.Committed = true

	if e.cfg.AutoPush {
		if err := e.repo.Push(ctx); err != nil {
			if e.logger != nil {
				e.logger.Warn("push failed", zap.Error(err))
			}
			return
		}
		batch.Pushed = true
	}
}

// applyOne dispatches a single mutation by action
func (e *Engine) applyOne(m entities.FileMutation, relPath string) error {
	target := filepath.Join(e.root, relPath)

	switch m.Action {
	case entities.ActionCreate:
		return e.create(target, m.Content)
	case entities.ActionAppend:
		return e.append(target, m.Content)
	case entities.ActionUpdateSection:
		if strings.TrimSpace(m.Section) == "" {
			return fmt.Errorf("update_section requires a section name")
		}
		return e.updateSection(target, m.Section, m.Content)
	default:
		return fmt.Errorf("unknown action %q", m.Action)
	}
}

// create writes content, overwriting any existing file
func (e *Engine) create(target, content string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent directories: %w", err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// append adds content after the trimmed existing content; absent files are
// created. Each append always adds content, so replays are not idempotent.
func (e *Engine) append(target, content string) error {
	existing, err := os.ReadFile(target)
	if os.IsNotExist(err) {
		return e.create(target, content)
	}
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	merged := strings.TrimRight(string(existing), " \t\r\n") + "\n" + content
	if err := os.WriteFile(target, []byte(merged), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// updateSection replaces the named section's body wholesale, appending a new
// section when the heading is missing, creating the file when absent. The
// whole-body replace makes replays idempotent.
func (e *Engine) updateSection(target, section, content string) error {
	existing, err := os.ReadFile(target)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read file: %w", err)
	}

	doc := parseDoc(string(existing))
	doc.upsertSection(section, content)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent directories: %w", err)
	}
	if err := os.WriteFile(target, []byte(doc.render()), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// resolvePath validates an untrusted mutation path and returns it relative to
// the tree root. Rejects anything without the root marker, outside the
// conservative character set, or escaping the root.
func (e *Engine) resolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, entities.PathPrefix) {
		return "", fmt.Errorf("path %q lacks the %q prefix", path, entities.PathPrefix)
	}
	if !pathPattern.MatchString(path) {
		return "", fmt.Errorf("path %q contains invalid characters", path)
	}

	rel := strings.TrimPrefix(path, entities.PathPrefix)
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q does not name a file under the tree root", path)
	}

	cleaned := filepath.Clean(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the tree root", path)
	}

	// Containment check on the joined absolute path as well
	full := filepath.Join(e.root, cleaned)
	rootClean := filepath.Clean(e.root)
	if full != rootClean && !strings.HasPrefix(full, rootClean+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the tree root", path)
	}

	return cleaned, nil
}
