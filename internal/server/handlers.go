package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"tikrip/internal/history"
	"tikrip/internal/media"
)

// extractRequest is the POST body shape.
type extractRequest struct {
	URL string `json:"url"`
}

// handleExtract serves GET /api/extract?url=... and POST /api/extract
// with a JSON body. Input validation happens here, before the core runs.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var rawURL string
	switch r.Method {
	case http.MethodGet:
		rawURL = r.URL.Query().Get("url")
	case http.MethodPost:
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, media.Failure("Request body must be JSON with a \"url\" field"))
			return
		}
		rawURL = req.URL
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		writeJSON(w, http.StatusBadRequest, media.Failure("Missing required parameter: url"))
		return
	}
	if !strings.Contains(rawURL, "tiktok.com") {
		writeJSON(w, http.StatusBadRequest, media.Failure("URL must be a TikTok link"))
		return
	}

	result := s.scraper.Extract(r.Context(), rawURL)
	if result.Status != media.StatusSuccess {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	if s.store != nil {
		err := s.store.Record(history.Entry{
			PostID:      result.Data.ID,
			URL:         rawURL,
			Type:        result.Data.Type,
			Author:      result.Data.Author.Username,
			Description: result.Data.Desc,
		})
		if err != nil {
			s.logger.Warn("recording extraction failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, media.Failure("Method not allowed"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
