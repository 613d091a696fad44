package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/parser"
)

// Worker processes one document job at a time.
type Worker struct {
	proc *Processor
	log  *slog.Logger
}

func NewWorker(proc *Processor, log *slog.Logger) *Worker {
	return &Worker{proc: proc, log: log}
}

// Process outlines the job's document. Failures are recorded on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusParsing, "parsing")
	out, err := w.proc.Process(ctx, job.Filename, job.FileData())
	if err != nil {
		category := parser.Categorize(err)
		log.Error("outline failed", "error", err, "category", category)
		job.Fail("parsing", category, err)
		return
	}

	job.Finish(out)
	log.Info("outline complete",
		"title", out.Result.Title,
		"entries", len(out.Result.Outline),
		"cached", out.Cached,
		"duration_ms", out.Duration.Milliseconds(),
	)
}
