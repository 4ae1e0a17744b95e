package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/docx2md/internal/convert"
	"github.com/dgallion1/docx2md/internal/output"
)

// Worker converts one queued document at a time.
type Worker struct {
	log         *slog.Logger
	stats       *ConversionStats
	pdfFallback bool

	outputDir           string
	maxConcurrentWrites int
}

func NewWorker(log *slog.Logger, stats *ConversionStats, pdfFallback bool, outputDir string, maxWrites int) *Worker {
	return &Worker{
		log:                 log,
		stats:               stats,
		pdfFallback:         pdfFallback,
		outputDir:           outputDir,
		maxConcurrentWrites: maxWrites,
	}
}

// Process runs parse, convert and the optional file write for a job. The
// outcome is recorded on the job; Process itself never fails.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	res, err := w.run(ctx, job, log)
	if w.stats != nil {
		chapters := 0
		if res != nil {
			chapters = len(res.Chapters)
		}
		w.stats.Record(time.Since(start), chapters, err != nil)
	}
	if err != nil {
		log.Error("conversion failed", "phase", job.Snapshot().Phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Snapshot().Phase)
		return
	}

	job.SetResult(res)
	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion complete",
		"chapters", len(res.Chapters),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (w *Worker) run(ctx context.Context, job *Job, log *slog.Logger) (*convert.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conv, err := convert.New(convert.Options{
		Rules:                job.Rules,
		PDFFallbackPdftotext: w.pdfFallback,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := conv.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return nil, err
	}
	job.SetBlocks(len(doc.Body))
	log.Info("parsed document", "title", doc.Title, "blocks", len(doc.Body))

	// Phase 2: Convert
	job.SetStatus(StatusConverting, "converting")
	res := &convert.Result{Title: doc.Title}
	if job.Rules.Split {
		res.Chapters, err = conv.Chapters(doc)
	} else {
		res.Markdown, err = conv.Convert(doc)
	}
	if err != nil {
		return nil, err
	}

	// Phase 3: Write
	if w.outputDir != "" {
		job.SetStatus(StatusConverting, "writing")
		dir := filepath.Join(w.outputDir, job.ID)
		if job.Rules.Split {
			err = output.WriteChapters(ctx, dir, res.Chapters, w.maxConcurrentWrites, log)
		} else {
			err = output.WriteFile(filepath.Join(dir, "index.md"), res.Markdown)
		}
		if err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
	}
	return res, nil
}
