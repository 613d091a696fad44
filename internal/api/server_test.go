package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/stats"
	"github.com/dgallion1/docoutline/internal/store"
)

const testKey = "test-key"

const guideMD = "# Guide\n\n## Install\n\n### Linux & Mac\n\n## Usage\n"

func newTestServer(t *testing.T) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Defaults()
	cfg.APIKey = testKey

	cache, err := store.OpenInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	proc := pipeline.NewProcessor(cfg.ParserOptions(), cache, stats.NewTracker(time.Hour), log)
	orch := pipeline.NewOrchestrator(pipeline.Options{Workers: 1, QueueSize: 4}, proc, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return NewServer(orch, cache, log, cfg), orch
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, s *Server, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOutlineSync(t *testing.T) {
	s, _ := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string]string{"guide.md": guideMD})

	rec := do(t, s, http.MethodPost, "/api/outline", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Linux & Mac")

	var res doctree.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Guide", res.Title)
	assert.Len(t, res.Outline, 3)
	assert.Equal(t, "false", rec.Header().Get("X-Outline-Cached"))
}

func TestOutlineSyncTreeView(t *testing.T) {
	s, _ := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string]string{"guide.md": guideMD})

	rec := do(t, s, http.MethodPost, "/api/outline?view=tree", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tree doctree.DocTree
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "Install", tree.Children[0].Text)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "Linux & Mac", tree.Children[0].Children[0].Text)
}

func TestOutlineSyncErrors(t *testing.T) {
	s, _ := newTestServer(t)

	body, ct := multipartBody(t, "file", map[string]string{"sheet.csv": "a,b"})
	rec := do(t, s, http.MethodPost, "/api/outline", body, ct)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	body, ct = multipartBody(t, "file", map[string]string{"broken.pdf": "not a pdf"})
	rec = do(t, s, http.MethodPost, "/api/outline", body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body, ct = multipartBody(t, "other", map[string]string{"guide.md": guideMD})
	rec = do(t, s, http.MethodPost, "/api/outline", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func waitForJob(t *testing.T, s *Server, id string) pipeline.JobSnapshot {
	t.Helper()
	var snap pipeline.JobSnapshot
	require.Eventually(t, func() bool {
		rec := do(t, s, http.MethodGet, "/api/jobs/"+id, nil, "")
		if rec.Code != http.StatusOK {
			return false
		}
		snap = pipeline.JobSnapshot{}
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			return false
		}
		return snap.Status.Done()
	}, 5*time.Second, 10*time.Millisecond)
	return snap
}

func TestJobLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string]string{"guide.md": guideMD})

	rec := do(t, s, http.MethodPost, "/api/jobs", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var submitted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.Equal(t, "/api/jobs/"+submitted.JobID, submitted.PollURL)

	snap := waitForJob(t, s, submitted.JobID)
	assert.Equal(t, pipeline.StatusCompleted, snap.Status)
	assert.Equal(t, "Guide", snap.Title)
	assert.Equal(t, 3, snap.Entries)

	rec = do(t, s, http.MethodGet, "/api/jobs/"+submitted.JobID+"/outline", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res doctree.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Guide", res.Title)
}

func TestJobOutlineConflictWhenFailed(t *testing.T) {
	s, _ := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string]string{"broken.pdf": "nope"})

	rec := do(t, s, http.MethodPost, "/api/jobs", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var submitted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))

	snap := waitForJob(t, s, submitted.JobID)
	assert.Equal(t, pipeline.StatusFailed, snap.Status)
	assert.Equal(t, "extraction", snap.ErrorCategory)

	rec = do(t, s, http.MethodGet, "/api/jobs/"+submitted.JobID+"/outline", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestJobNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/jobs/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/jobs/missing/outline", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchSubmit(t *testing.T) {
	s, _ := newTestServer(t)
	body, ct := multipartBody(t, "files", map[string]string{
		"guide.md":  guideMD,
		"sheet.csv": "a,b",
	})

	rec := do(t, s, http.MethodPost, "/api/jobs/batch", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 2)

	var queued, rejected int
	for _, j := range resp.Jobs {
		if _, ok := j["job_id"]; ok {
			queued++
		}
		if _, ok := j["error"]; ok {
			rejected++
		}
	}
	assert.Equal(t, 1, queued)
	assert.Equal(t, 1, rejected)
}

func TestStats(t *testing.T) {
	s, _ := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string]string{"guide.md": guideMD})
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/outline", body, ct).Code)

	rec := do(t, s, http.MethodGet, "/api/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Processing     stats.Snapshot `json:"processing"`
		CachedOutlines int            `json:"cached_outlines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Processing.Completed)
	assert.Equal(t, 1, resp.CachedOutlines)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "unnamed", sanitizeFilename(""))
	assert.Equal(t, "a_b.pdf", sanitizeFilename("a..b.pdf"))
}
