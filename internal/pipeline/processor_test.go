package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/stats"
	"github.com/dgallion1/docoutline/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProcessor(t *testing.T) (*Processor, *store.OutlineStore, *stats.Tracker) {
	t.Helper()
	cache, err := store.OpenInMemory(testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	st := stats.NewTracker(0)
	return NewProcessor(parser.DefaultOptions(), cache, st, testLogger()), cache, st
}

const guideMD = "# Guide\n\nIntro.\n\n## Install\n\n## Usage\n"

func TestProcessor_ParsesThenCaches(t *testing.T) {
	p, cache, st := newTestProcessor(t)
	ctx := context.Background()

	first, err := p.Process(ctx, "guide.md", []byte(guideMD))
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Guide", first.Result.Title)
	assert.Len(t, first.Result.Outline, 2)
	assert.Equal(t, store.ContentHash([]byte(guideMD)), first.ContentHash)

	n, err := cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Same bytes under another name hit the cache.
	second, err := p.Process(ctx, "copy.md", []byte(guideMD))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Result, second.Result)

	snap := st.Snapshot()
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 1, snap.Cached)
}

func TestProcessor_ConfigChangeMissesCache(t *testing.T) {
	cache, err := store.OpenInMemory(testLogger())
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	p1 := NewProcessor(parser.DefaultOptions(), cache, nil, testLogger())
	_, err = p1.Process(ctx, "g.md", []byte(guideMD))
	require.NoError(t, err)

	opts := parser.DefaultOptions()
	opts.Outline.LineYTolerance = 4
	p2 := NewProcessor(opts, cache, nil, testLogger())
	out, err := p2.Process(ctx, "g.md", []byte(guideMD))
	require.NoError(t, err)
	assert.False(t, out.Cached)
}

func TestProcessor_UnsupportedFormat(t *testing.T) {
	p, _, st := newTestProcessor(t)
	_, err := p.Process(context.Background(), "data.csv", []byte("a,b"))
	assert.ErrorIs(t, err, parser.ErrUnsupportedFormat)

	snap := st.Snapshot()
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.Failures["unsupported_format"])
}

func TestProcessor_Canceled(t *testing.T) {
	p, _, _ := newTestProcessor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Process(ctx, "g.md", []byte(guideMD))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestProcessor_WithoutCache(t *testing.T) {
	p := NewProcessor(parser.DefaultOptions(), nil, nil, nil)
	for range 2 {
		out, err := p.Process(context.Background(), "g.md", []byte(guideMD))
		require.NoError(t, err)
		assert.False(t, out.Cached)
	}
}

func TestProcessor_TraceRejectsNonPDF(t *testing.T) {
	p, _, _ := newTestProcessor(t)
	_, _, err := p.Trace("g.md", []byte(guideMD))
	assert.ErrorIs(t, err, parser.ErrUnsupportedFormat)
}
