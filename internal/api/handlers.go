package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/httputil"
	"github.com/pitchlab/tactics.report/internal/jobs"
)

type enqueueRequest struct {
	Kind    jobs.Kind      `json:"kind"`
	Payload map[string]any `json:"payload"`
}

type enqueueResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type statusResponse struct {
	JobID    string         `json:"job_id"`
	State    string         `json:"state"`
	Progress int            `json:"progress,omitempty"`
	Message  string         `json:"message,omitempty"`
	Result   map[string]any `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// apiState maps internal job statuses to the wire vocabulary.
func apiState(s jobs.Status) string {
	switch s {
	case jobs.StatusPending:
		return "queued"
	case jobs.StatusRunning:
		return "processing"
	default:
		return string(s)
	}
}

func writeFault(w http.ResponseWriter, err error) {
	switch fault.KindOf(err) {
	case fault.BadInput:
		httputil.BadRequest(w, err.Error())
	case fault.NotFound:
		httputil.NotFound(w, err.Error())
	case fault.UpstreamUnavailable:
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, err.Error())
	default:
		httputil.InternalServerError(w, err.Error())
	}
}

// handleEnqueue accepts POST /api/jobs. Re-posting the same payload before
// the earlier job finished returns that job instead of a new one.
func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid json body: "+err.Error())
		return
	}

	job, err := s.dispatcher.Dispatch(req.Kind, req.Payload)
	if err != nil {
		writeFault(w, err)
		return
	}

	message := "job accepted"
	if job.Status != jobs.StatusPending {
		message = "existing job for this payload"
	}
	httputil.WriteJSON(w, http.StatusAccepted, enqueueResponse{
		JobID:   job.JobID,
		Status:  apiState(job.Status),
		Message: message,
	})
}

// handleJobByID routes GET /api/jobs/{id} and POST /api/jobs/{id}/cancel.
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if rest == "" {
		httputil.NotFound(w, "missing job id")
		return
	}

	if jobID, ok := strings.CutSuffix(rest, "/cancel"); ok {
		s.handleCancel(w, r, jobID)
		return
	}
	if strings.Contains(rest, "/") {
		httputil.NotFound(w, "unknown job route")
		return
	}
	s.handleStatus(w, r, rest)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	job, err := s.dispatcher.Status(jobID)
	if err != nil {
		writeFault(w, err)
		return
	}
	httputil.WriteJSONOK(w, statusResponse{
		JobID:    job.JobID,
		State:    apiState(job.Status),
		Progress: job.Progress,
		Result:   job.Result,
		Error:    job.Error,
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	job, err := s.dispatcher.Cancel(jobID)
	if err != nil {
		writeFault(w, err)
		return
	}
	httputil.WriteJSONOK(w, statusResponse{
		JobID: job.JobID,
		State: apiState(job.Status),
	})
}
