package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(filepath.Join(in, "guide.md"), []byte("# Guide\n\n## Install\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.pdf"), []byte("garbage"), 0o644))

	code := run([]string{"-input", in, "-output", out, "-all-formats", "-loglevel", "error"})
	assert.Equal(t, 0, code, "per-file failures do not fail the run")
	assert.FileExists(t, filepath.Join(out, "guide.json"))
	assert.NoFileExists(t, filepath.Join(out, "bad.json"))
}

func TestRunBadFlags(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-loglevel", "loud"}))
	assert.Equal(t, 2, run([]string{"-nope"}))
}

func TestRunMissingInput(t *testing.T) {
	code := run([]string{"-input", filepath.Join(t.TempDir(), "missing"), "-output", t.TempDir(), "-loglevel", "error"})
	assert.Equal(t, 1, code)
}

func TestRunMissingConfig(t *testing.T) {
	code := run([]string{"-config", filepath.Join(t.TempDir(), "none.yaml"), "-loglevel", "error"})
	assert.Equal(t, 1, code)
}
