package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/stats"
	"github.com/dgallion1/docoutline/internal/store"
)

// Outcome is the result of processing one document.
type Outcome struct {
	Result      doctree.Result
	ContentHash string
	Cached      bool
	Duration    time.Duration
}

// Processor turns one source document into an outline. It consults the
// outline cache first and records timing for every document it handles.
// Cache and Stats are optional.
type Processor struct {
	opts        parser.Options
	fingerprint string
	cache       *store.OutlineStore
	stats       *stats.Tracker
	log         *slog.Logger
}

func NewProcessor(opts parser.Options, cache *store.OutlineStore, st *stats.Tracker, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		opts:        opts,
		fingerprint: opts.Fingerprint(),
		cache:       cache,
		stats:       st,
		log:         log,
	}
}

// Stats returns the tracker the processor records into, or nil.
func (p *Processor) Stats() *stats.Tracker {
	return p.stats
}

// Process extracts the outline of data, named filename.
func (p *Processor) Process(ctx context.Context, filename string, data []byte) (Outcome, error) {
	start := time.Now()
	out, err := p.process(ctx, filename, data)
	out.Duration = time.Since(start)

	if p.stats != nil {
		switch {
		case err != nil:
			p.stats.RecordFailure(parser.Categorize(err), out.Duration)
		case out.Cached:
			p.stats.Record(stats.OutcomeCached, out.Duration)
		default:
			p.stats.Record(stats.OutcomeCompleted, out.Duration)
		}
	}
	return out, err
}

func (p *Processor) process(ctx context.Context, filename string, data []byte) (Outcome, error) {
	out := Outcome{ContentHash: store.ContentHash(data)}
	log := p.log.With("filename", filename, "content_hash", out.ContentHash)

	prs, err := parser.ForFile(filename, p.opts)
	if err != nil {
		return out, err
	}

	if p.cache != nil {
		rec, found, err := p.cache.Get(out.ContentHash, p.fingerprint)
		if err != nil {
			log.Warn("cache lookup failed, parsing", "error", err)
		} else if found {
			out.Result = rec.Result
			out.Cached = true
			return out, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}

	res, err := prs.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return out, err
	}
	out.Result = res

	if p.cache != nil {
		rec := store.Record{Result: res, Filename: filename}
		if err := p.cache.Put(out.ContentHash, p.fingerprint, rec); err != nil {
			log.Warn("cache write failed", "error", err)
		}
	}
	return out, nil
}

// Trace runs the PDF stages uncached and returns their intermediate
// output alongside the result.
func (p *Processor) Trace(filename string, data []byte) (doctree.Result, outline.Trace, error) {
	if !parser.IsPDF(filename) {
		return doctree.Result{}, outline.Trace{}, fmt.Errorf("%w: trace is only available for PDF sources", parser.ErrUnsupportedFormat)
	}
	return parser.NewPDFParser(p.opts).ParseTrace(bytes.NewReader(data), filename)
}
