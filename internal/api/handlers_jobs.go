package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docoutline/internal/pipeline"
)

// maxBatchFiles caps the number of files in one batch submission.
const maxBatchFiles = 10

func pollURL(id string) string {
	return fmt.Sprintf("/api/jobs/%s", id)
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r, 1) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	file.Close()
	up, code, err := s.readUpload(header)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	job := pipeline.NewJob(up.filename, up.data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": pollURL(job.ID),
	})
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r, maxBatchFiles) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > maxBatchFiles {
		jsonError(w, fmt.Sprintf("at most %d files per batch", maxBatchFiles), http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		up, _, err := s.readUpload(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": sanitizeFilename(fh.Filename),
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(up.filename, up.data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": up.filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": up.filename,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": pollURL(job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobOutline(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	res, ok := job.Result()
	if !ok {
		snap := job.Snapshot()
		if snap.Status == pipeline.StatusFailed {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":          "job failed",
				"status":         snap.Status,
				"error_category": snap.ErrorCategory,
				"errors":         snap.Errors,
			})
			return
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job not finished",
			"status": snap.Status,
		})
		return
	}

	if r.URL.Query().Get("view") == "tree" {
		writeJSON(w, http.StatusOK, res.Tree())
		return
	}
	writeJSON(w, http.StatusOK, res)
}
