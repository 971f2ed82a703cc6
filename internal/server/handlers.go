package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// SourceRequest is the payload for POST /source-candidates.
type SourceRequest struct {
	JobDescription string   `json:"job_description"`
	CandidateNames []string `json:"candidate_names"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "sourcer",
		"version":     s.version,
		"description": "recruitment sourcing pipeline: search, score and draft outreach",
		"endpoints": map[string]string{
			"POST /source-candidates": "source and score candidates",
			"GET /health":             "health check",
		},
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "sourcer",
		"version": s.version,
	})
}

func (s *Server) sourceCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "use POST")
		return
	}

	var req SourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.JobDescription) == "" {
		writeError(w, http.StatusBadRequest, "job description cannot be empty", "")
		return
	}

	names := make([]string, 0, len(req.CandidateNames))
	for _, name := range req.CandidateNames {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		writeError(w, http.StatusBadRequest, "at least one candidate name is required", "")
		return
	}

	s.logger.Info("sourcing request",
		zap.Int("candidates", len(names)),
		zap.String("client", r.RemoteAddr),
	)

	result, err := s.runner.Run(r.Context(), req.JobDescription, names)
	if err != nil {
		s.logger.Error("pipeline execution failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "pipeline execution failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, errorResponse{Error: message, Detail: detail})
}
