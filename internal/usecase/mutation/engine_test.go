package mutation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/agencyos/meeting-scribe/errors"
	"github.com/agencyos/meeting-scribe/internal/domain/entities"
	"github.com/agencyos/meeting-scribe/pkg/config"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	return NewEngine(root, nil, &config.GitConfig{AutoCommit: false}, nil), root
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestApply_Create(t *testing.T) {
	engine, root := newTestEngine(t)

	batch, err := engine.Apply(context.Background(), []entities.FileMutation{
		{Action: entities.ActionCreate, Path: "knowledge-base/meetings/2026-01-15-sync.md", Content: "# Sync\n"},
	}, CommitMeta{Title: "Sync"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.AppliedCount() != 1 {
		t.Fatalf("expected 1 applied, got %d", batch.AppliedCount())
	}
	if got := readFile(t, root, "meetings/2026-01-15-sync.md"); got != "# Sync\n" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestApply_CreateOverwrites(t *testing.T) {
	engine, root := newTestEngine(t)
	ctx := context.Background()

	for _, content := range []string{"first\n", "second\n"} {
		if _, err := engine.Apply(ctx, []entities.FileMutation{
			{Action: entities.ActionCreate, Path: "knowledge-base/notes.md", Content: content},
		}, CommitMeta{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := readFile(t, root, "notes.md"); got != "second\n" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestApply_AppendSeparatesWithSingleBlankBoundary(t *testing.T) {
	engine, root := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Apply(ctx, []entities.FileMutation{
		{Action: entities.ActionCreate, Path: "knowledge-base/log.md", Content: "first entry\n\n\n"},
		{Action: entities.ActionAppend, Path: "knowledge-base/log.md", Content: "second entry\n"},
	}, CommitMeta{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := readFile(t, root, "log.md"); got != "first entry\nsecond entry\n" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestApply_AppendCreatesMissingFile(t *testing.T) {
	engine, root := newTestEngine(t)

	if _, err := engine.Apply(context.Background(), []entities.FileMutation{
		{Action: entities.ActionAppend, Path: "knowledge-base/new.md", Content: "entry\n"},
	}, CommitMeta{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := readFile(t, root, "new.md"); got != "entry\n" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestApply_UpdateSection(t *testing.T) {
	engine, root := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Apply(ctx, []entities.FileMutation{
		{Action: entities.ActionCreate, Path: "knowledge-base/project.md", Content: "## Status\nold\n## Team\nunchanged\n"},
		{Action: entities.ActionUpdateSection, Path: "knowledge-base/project.md", Section: "Status", Content: "new status"},
	}, CommitMeta{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "## Status\nnew status\n## Team\nunchanged\n"
	if got := readFile(t, root, "project.md"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestApply_UpdateSectionRequiresSectionName(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Apply(context.Background(), []entities.FileMutation{
		{Action: entities.ActionUpdateSection, Path: "knowledge-base/x.md", Content: "body"},
	}, CommitMeta{})
	if err == nil {
		t.Fatal("expected error for update_section without section")
	}
}

func TestApply_RejectsForeignPaths(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	bad := []string{
		"notes.md",                        // missing prefix
		"knowledge-base/../escape.md",     // escapes root
		"knowledge-base/has space.md",     // invalid character
		"knowledge-base/",                 // no file
		"/etc/passwd",                     // absolute, no prefix
		"knowledge-base/a/../../break.md", // escapes after clean
	}

	for _, path := range bad {
		batch, err := engine.Apply(ctx, []entities.FileMutation{
			{Action: entities.ActionCreate, Path: path, Content: "x"},
		}, CommitMeta{})
		if err == nil {
			t.Fatalf("expected rejection for path %q", path)
		}
		if batch.AppliedCount() != 0 {
			t.Fatalf("path %q: nothing should be applied", path)
		}
	}
}

// A failure mid-batch leaves earlier writes in place and reports the failing
// index; later mutations never run.
func TestApply_PartialFailureKeepsEarlierWrites(t *testing.T) {
	engine, root := newTestEngine(t)

	batch, err := engine.Apply(context.Background(), []entities.FileMutation{
		{Action: entities.ActionCreate, Path: "knowledge-base/ok.md", Content: "written\n"},
		{Action: entities.ActionCreate, Path: "outside/bad.md", Content: "never"},
		{Action: entities.ActionCreate, Path: "knowledge-base/after.md", Content: "never"},
	}, CommitMeta{})
	if err == nil {
		t.Fatal("expected batch error")
	}

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Details["mutation_index"] != "1" {
		t.Fatalf("expected failing index 1, got %q", appErr.Details["mutation_index"])
	}

	if got := readFile(t, root, "ok.md"); got != "written\n" {
		t.Fatal("earlier write should remain in place")
	}
	if _, err := os.Stat(filepath.Join(root, "after.md")); !os.IsNotExist(err) {
		t.Fatal("mutation after the failure should not run")
	}
	if len(batch.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(batch.Results))
	}
	if !batch.Results[0].Applied || batch.Results[1].Applied {
		t.Fatal("expected first applied, second failed")
	}
}

func TestApply_UpdateSectionReplayIdempotent(t *testing.T) {
	engine, root := newTestEngine(t)
	ctx := context.Background()

	mutations := []entities.FileMutation{
		{Action: entities.ActionCreate, Path: "knowledge-base/doc.md", Content: "## Foo\nold\n"},
		{Action: entities.ActionUpdateSection, Path: "knowledge-base/doc.md", Section: "Foo", Content: "new"},
	}
	if _, err := engine.Apply(ctx, mutations, CommitMeta{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := readFile(t, root, "doc.md")

	if _, err := engine.Apply(ctx, mutations[1:], CommitMeta{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readFile(t, root, "doc.md"); got != first {
		t.Fatalf("replay changed the file: %q vs %q", first, got)
	}
}
