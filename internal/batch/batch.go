// Package batch outlines every source document in a directory and writes
// one JSON file per source.
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// Options selects what a Run reads and where it writes.
type Options struct {
	InputDir  string
	OutputDir string

	// Workers bounds how many sources are processed at once.
	Workers int

	// AllFormats includes every supported extension, not just .pdf.
	AllFormats bool
}

// FileResult reports one source.
type FileResult struct {
	Filename   string `json:"filename"`
	Output     string `json:"output,omitempty"`
	Title      string `json:"title,omitempty"`
	Entries    int    `json:"entries"`
	Cached     bool   `json:"cached,omitempty"`
	Error      string `json:"error,omitempty"`
	Category   string `json:"category,omitempty"`
	DurationMs int64  `json:"duration_ms"`

	result doctree.Result
}

// Result returns the outline written for the source, if it succeeded.
func (f FileResult) Result() doctree.Result {
	return f.result
}

// Summary is the outcome of a Run. Results are sorted by filename.
type Summary struct {
	Processed int          `json:"processed"`
	Failed    int          `json:"failed"`
	Cached    int          `json:"cached"`
	Results   []FileResult `json:"results"`
}

// Runner processes directories of sources.
type Runner struct {
	proc *pipeline.Processor
	log  *slog.Logger
}

func NewRunner(proc *pipeline.Processor, log *slog.Logger) *Runner {
	return &Runner{proc: proc, log: log}
}

// Run outlines every source in opts.InputDir. A source that fails is
// logged and skipped, leaving no output file. Only an unreadable input
// directory or an output directory that cannot be created fail the run.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output dir %s: %w", opts.OutputDir, err)
	}

	sources, err := ListSources(opts.InputDir, opts.AllFormats)
	if err != nil {
		return Summary{}, err
	}
	if len(sources) == 0 {
		r.log.Warn("no sources found", "input_dir", opts.InputDir, "all_formats", opts.AllFormats)
		return Summary{Results: []FileResult{}}, nil
	}
	r.log.Info("batch starting", "input_dir", opts.InputDir, "sources", len(sources))

	names := outputNames(sources)
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]FileResult, 0, len(sources))
	)
	for _, name := range sources {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Canceled: the sources not yet started are reported as failed.
			mu.Lock()
			results = append(results, FileResult{Filename: name, Error: err.Error(), Category: parser.Categorize(err)})
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer sem.Release(1)
			fr := r.processOne(ctx, opts, name, names[name])
			mu.Lock()
			results = append(results, fr)
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Filename < results[j].Filename })
	sum := Summary{Results: results}
	for _, fr := range results {
		switch {
		case fr.Error != "":
			sum.Failed++
		case fr.Cached:
			sum.Cached++
			sum.Processed++
		default:
			sum.Processed++
		}
	}
	r.log.Info("batch complete", "processed", sum.Processed, "failed", sum.Failed, "cached", sum.Cached)
	return sum, nil
}

func (r *Runner) processOne(ctx context.Context, opts Options, name, outName string) FileResult {
	log := r.log.With("filename", name)
	fr := FileResult{Filename: name}
	fail := func(err error) FileResult {
		fr.Error = err.Error()
		fr.Category = parser.Categorize(err)
		log.Error("source failed", "error", err, "category", fr.Category)
		return fr
	}

	log.Info("processing")
	data, err := os.ReadFile(filepath.Join(opts.InputDir, name))
	if err != nil {
		return fail(err)
	}

	out, err := r.proc.Process(ctx, name, data)
	fr.DurationMs = out.Duration.Milliseconds()
	if err != nil {
		return fail(err)
	}

	outPath := filepath.Join(opts.OutputDir, outName)
	if err := WriteResult(outPath, out.Result); err != nil {
		return fail(err)
	}

	fr.Output = outPath
	fr.Title = out.Result.Title
	fr.Entries = len(out.Result.Outline)
	fr.Cached = out.Cached
	fr.result = out.Result
	log.Info("saved outline", "output", outPath, "entries", fr.Entries, "cached", fr.Cached)
	return fr
}

// ListSources returns the supported regular files directly inside dir,
// sorted. Without allFormats only .pdf files, in any case, qualify.
func ListSources(dir string, allFormats bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if parser.IsPDF(name) || (allFormats && parser.IsSupportedExtension(name)) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// outputNames maps each source to "<stem>.json". Sources sharing a stem,
// such as guide.md and guide.pdf, keep their extension instead.
func outputNames(sources []string) map[string]string {
	stem := func(name string) string { return strings.TrimSuffix(name, filepath.Ext(name)) }
	counts := make(map[string]int, len(sources))
	for _, s := range sources {
		counts[strings.ToLower(stem(s))]++
	}
	names := make(map[string]string, len(sources))
	for _, s := range sources {
		if counts[strings.ToLower(stem(s))] > 1 {
			names[s] = s + ".json"
		} else {
			names[s] = stem(s) + ".json"
		}
	}
	return names
}

// EncodeResult writes res as UTF-8 JSON indented by two spaces. Non-ASCII
// text and HTML characters are written as is.
func EncodeResult(w io.Writer, res doctree.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteResult writes res to path through a temporary file in the same
// directory, so readers never see a partial file.
func WriteResult(path string, res doctree.Result) error {
	var buf bytes.Buffer
	if err := EncodeResult(&buf, res); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".outline-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
