package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docx2md/internal/config"
)

const manualMD = "# 1. Общие сведения\n\nТекст.\n\n# 2. Установка\n\nШаг.\n"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestJob(filename, content string, rules config.Rules) *Job {
	now := time.Now()
	job := &Job{
		ID:        NewJobID(),
		Status:    StatusQueued,
		Filename:  filename,
		Rules:     rules,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData([]byte(content))
	return job
}

func TestWorker_ProcessSplit(t *testing.T) {
	dir := t.TempDir()
	stats := NewConversionStats(time.Hour)
	w := NewWorker(testLogger(), stats, false, dir, 2)

	job := newTestJob("manual.md", manualMD, config.Rules{Split: true})
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Chapters != 2 {
		t.Errorf("expected 2 chapters, got %d", snap.Progress.Chapters)
	}

	res := job.Result()
	if res.Chapters[0].Filename != "1.common.md" || res.Chapters[1].Filename != "2.installation.md" {
		t.Errorf("unexpected filenames %q, %q", res.Chapters[0].Filename, res.Chapters[1].Filename)
	}
	data, err := os.ReadFile(filepath.Join(dir, job.ID, "2.installation.md"))
	if err != nil {
		t.Fatalf("expected chapter file on disk: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Установка\n") {
		t.Errorf("unexpected chapter content %q", data)
	}
	if stats.Snapshot().Count != 1 {
		t.Errorf("expected one recorded conversion, got %d", stats.Snapshot().Count)
	}
}

func TestWorker_ProcessSingle(t *testing.T) {
	w := NewWorker(testLogger(), nil, false, "", 0)
	job := newTestJob("notes.txt", "Первый абзац.\n\nВторой абзац.\n", config.Rules{})
	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", job.Snapshot().Status)
	}
	want := "Первый абзац.\n\nВторой абзац.\n"
	if got := job.Result().Markdown; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWorker_UnsupportedFormat(t *testing.T) {
	stats := NewConversionStats(time.Hour)
	w := NewWorker(testLogger(), stats, false, "", 0)
	job := newTestJob("legacy.doc", "binary", config.Rules{})
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if snap.Phase != "parsing" {
		t.Errorf("expected failure in phase %q, got %q", "parsing", snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 || !strings.Contains(snap.Progress.Errors[0], "unsupported") {
		t.Errorf("unexpected errors %v", snap.Progress.Errors)
	}
	if job.Result() != nil {
		t.Error("expected no result for a failed job")
	}
	if stats.Snapshot().Failed != 1 {
		t.Errorf("expected one failed conversion, got %d", stats.Snapshot().Failed)
	}
}

func TestWorker_BadRules(t *testing.T) {
	w := NewWorker(testLogger(), nil, false, "", 0)
	job := newTestJob("manual.md", manualMD, config.Rules{Split: true, Excluded: []string{"("}})
	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected failed job, got %q", job.Snapshot().Status)
	}
}

func TestWorker_CancelledContext(t *testing.T) {
	w := NewWorker(testLogger(), nil, false, "", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := newTestJob("manual.md", manualMD, config.Rules{})
	w.Process(ctx, job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed job, got %q", snap.Status)
	}
	if !strings.Contains(snap.Progress.Errors[0], context.Canceled.Error()) {
		t.Errorf("expected cancellation error, got %v", snap.Progress.Errors)
	}
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Error("expected cancelled context")
	}
}
