package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	tracker := s.orchestrator.Processor().Stats()
	if tracker == nil {
		jsonError(w, "processing stats unavailable", http.StatusServiceUnavailable)
		return
	}

	body := map[string]any{
		"processing":  tracker.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	}
	if s.cache != nil {
		if n, err := s.cache.Count(); err == nil {
			body["cached_outlines"] = n
		} else {
			s.log.Warn("cache count failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, body)
}
