package output

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgallion1/docx2md/internal/convert"
)

// DefaultConcurrency bounds parallel chapter writes when none is given.
const DefaultConcurrency = 4

// WriteChapters writes each chapter to dir/Filename with at most concurrency
// writes in flight. It waits for every started write and returns the first
// error; files written before a failure stay on disk.
func WriteChapters(ctx context.Context, dir string, chapters []convert.Rendered, concurrency int, log *slog.Logger) error {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	sem := make(chan struct{}, concurrency)
	for _, ch := range chapters {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if err := ctx.Err(); err != nil {
			setErr(err)
			break
		}
		wg.Add(1)
		go func(ch convert.Rendered) {
			defer wg.Done()
			defer func() { <-sem }()
			path := filepath.Join(dir, ch.Filename)
			if err := os.WriteFile(path, []byte(ch.Markdown), 0o644); err != nil {
				setErr(fmt.Errorf("write %s: %w", ch.Filename, err))
				return
			}
			if log != nil {
				log.Debug("wrote chapter", "path", path, "bytes", len(ch.Markdown))
			}
		}(ch)
	}
	wg.Wait()
	return firstErr
}

// WriteFile writes a single Markdown document, creating parent directories.
func WriteFile(path, md string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
