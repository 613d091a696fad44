package api

import (
	"net/http"

	"github.com/dgallion1/docoutline/internal/parser"
)

// handleOutline outlines one uploaded file synchronously. ?view=tree nests
// the entries; ?debug=true adds the PDF stage trace.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
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

	log := s.log.With("filename", up.filename)
	proc := s.orchestrator.Processor()

	if r.URL.Query().Get("debug") == "true" && parser.IsPDF(up.filename) {
		res, trace, err := proc.Trace(up.filename, up.data)
		if err != nil {
			log.Error("outline trace failed", "error", err)
			jsonError(w, err.Error(), errorStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": res, "trace": trace})
		return
	}

	out, err := proc.Process(r.Context(), up.filename, up.data)
	if err != nil {
		log.Error("outline failed", "error", err, "category", parser.Categorize(err))
		jsonError(w, err.Error(), errorStatus(err))
		return
	}

	w.Header().Set("X-Outline-Cached", boolString(out.Cached))
	if r.URL.Query().Get("view") == "tree" {
		writeJSON(w, http.StatusOK, out.Result.Tree())
		return
	}
	writeJSON(w, http.StatusOK, out.Result)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
