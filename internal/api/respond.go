package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/parser"
)

// writeJSON encodes v without HTML escaping so heading text comes back as
// it appears in the document.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// errorStatus maps a processing error to an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, parser.ErrExtraction):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// upload is one file received in a multipart form.
type upload struct {
	filename string
	data     []byte
}

// readUpload reads and validates a multipart file header.
func (s *Server) readUpload(fh *multipart.FileHeader) (upload, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return upload{}, http.StatusUnsupportedMediaType, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	f, err := fh.Open()
	if err != nil {
		return upload{}, http.StatusBadRequest, fmt.Errorf("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return upload{}, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return upload{}, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return upload{filename: filename, data: data}, 0, nil
}

// parseForm limits the request body to maxFiles uploads and parses it.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, maxFiles int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*maxFiles+1024*1024) // extra 1MB for form overhead
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
