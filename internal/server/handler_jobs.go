package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/omicron/internal/condor"
	"github.com/me/omicron/pkg/model"
)

type jobStatusResponse struct {
	ClusterID int64  `json:"cluster_id"`
	Status    int    `json:"status"`
	Name      string `json:"name"`
	Terminal  bool   `json:"terminal"`
}

type dagResponse struct {
	Path    string `json:"path"`
	Running *bool  `json:"running,omitempty"`
	Rescue  string `json:"rescue,omitempty"`
}

func (s *Server) requireJobs(w http.ResponseWriter, reqID string) bool {
	if s.jobs == nil {
		respondError(w, reqID, http.StatusServiceUnavailable,
			&model.APIError{Code: model.ErrScheduler, Message: "no scheduler configured"})
		return false
	}
	return true
}

// handleFindJobs treats every query parameter as an attribute equality
// filter. Integer-looking values are compared as numbers.
func (s *Server) handleFindJobs(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireJobs(w, reqID) {
		return
	}

	filters := condor.Filters{}
	for k, vs := range r.URL.Query() {
		if len(vs) == 0 {
			continue
		}
		if n, err := strconv.ParseInt(vs[0], 10, 64); err == nil {
			filters[k] = n
		} else {
			filters[k] = vs[0]
		}
	}

	jobs, err := s.jobs.FindJobs(r.Context(), filters)
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, jobs)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireJobs(w, reqID) {
		return
	}

	raw := chi.URLParam(r, "clusterID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid cluster id %q", raw))
		return
	}

	status, err := s.jobs.JobStatus(r.Context(), condor.ClusterID(id))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, jobStatusResponse{
		ClusterID: id,
		Status:    int(status),
		Name:      status.String(),
		Terminal:  status.IsTerminal(),
	})
}

func (s *Server) handleDAGRunning(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireJobs(w, reqID) {
		return
	}
	path, ok := dagPathParam(w, r, reqID)
	if !ok {
		return
	}
	running := s.jobs.DAGIsRunning(path)
	respondOK(w, reqID, dagResponse{Path: path, Running: &running})
}

func (s *Server) handleRescueDAG(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	path, ok := dagPathParam(w, r, reqID)
	if !ok {
		return
	}
	rescue, err := s.findRescue(path)
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, dagResponse{Path: path, Rescue: rescue})
}

func dagPathParam(w http.ResponseWriter, r *http.Request, reqID string) (string, bool) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("query parameter \"path\" is required"))
		return "", false
	}
	return path, true
}
