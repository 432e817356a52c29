package api

import (
	"encoding/json"
	"net/http"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driving"
)

type mirrorRequest struct {
	Handle     string `json:"handle"`
	ForceFresh bool   `json:"force_fresh,omitempty"`
}

type mirrorResponse struct {
	Status         string `json:"status"`
	DestinationURL string `json:"destination_url,omitempty"`
	DestinationID  string `json:"destination_id,omitempty"`
	FileName       string `json:"file_name,omitempty"`
	SizeBytes      int64  `json:"size_bytes,omitempty"`
	MatchKind      string `json:"match_kind,omitempty"`
	Error          string `json:"error,omitempty"`
}

type healthResponse struct {
	CredentialLoaded bool    `json:"credential_loaded"`
	IndexEntries     int     `json:"index_entries"`
	IndexAgeSeconds  float64 `json:"index_age_seconds"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleMirror runs one mirror operation. Terminal relay failures are still
// HTTP 200: the outcome body carries the failure, the transport does not.
func (s *Server) handleMirror(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req mirrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Handle == "" {
		writeError(w, http.StatusBadRequest, "handle is required")
		return
	}

	outcome := s.relayer.Mirror(r.Context(), driving.MirrorRequest{
		Handle:     domain.FileHandle(req.Handle),
		ForceFresh: req.ForceFresh,
	})

	writeJSON(w, http.StatusOK, mirrorResponse{
		Status:         string(outcome.Status),
		DestinationURL: outcome.DestinationURL,
		DestinationID:  outcome.DestinationID,
		FileName:       outcome.FileName,
		SizeBytes:      outcome.SizeBytes,
		MatchKind:      string(outcome.MatchKind),
		Error:          outcome.ErrorMessage,
	})
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.relayer.InvalidateIndex()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	report := s.health.Check(r.Context())
	writeJSON(w, http.StatusOK, healthResponse{
		CredentialLoaded: report.CredentialLoaded,
		IndexEntries:     report.IndexEntries,
		IndexAgeSeconds:  report.IndexAge.Seconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
