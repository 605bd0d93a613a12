package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/yatharthk2/EmailDemo-sub001/internal/db"
	"github.com/yatharthk2/EmailDemo-sub001/internal/ingest"
	"github.com/yatharthk2/EmailDemo-sub001/internal/pipeline"
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// ListDocumentsResponse represents the response for listing processed documents
type ListDocumentsResponse struct {
	Documents []types.ProcessedFileView `json:"documents"`
	Count     int                       `json:"count"`
	Limit     int                       `json:"limit"`
	Offset    int                       `json:"offset"`
}

// handleListDocuments lists processed-document views with optional status
// filter and pagination
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 100)
	offset := parseQueryInt(r, "offset", 0, 0)

	var status types.ProcessingStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status = types.ProcessingStatus(statusStr)
		switch status {
		case types.StatusCompleted, types.StatusClassifiedOnly, types.StatusNotReceipt, types.StatusUnknown:
		default:
			s.errorResponse(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	// Status is derived per view, so a filtered listing scans a wider window
	// and pages over the filtered result.
	scan := limit + offset
	if status != "" {
		scan = 500
	}

	views, err := s.store.ListViews(r.Context(), scan)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	if status != "" {
		filtered := make([]types.ProcessedFileView, 0, len(views))
		for _, view := range views {
			if view.ProcessingStatus == status {
				filtered = append(filtered, view)
			}
		}
		views = filtered
	}

	total := len(views)
	if offset > len(views) {
		views = nil
	} else {
		views = views[offset:]
	}
	if len(views) > limit {
		views = views[:limit]
	}
	if views == nil {
		views = []types.ProcessedFileView{}
	}

	s.jsonResponse(w, http.StatusOK, ListDocumentsResponse{
		Documents: views,
		Count:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

// handleGetDocument retrieves the latest processing view for one document
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	emailID := r.PathValue("email_id")
	filename := r.PathValue("filename")
	if emailID == "" || filename == "" {
		s.errorResponse(w, http.StatusBadRequest, "email_id and filename are required")
		return
	}

	view, err := s.store.LatestView(r.Context(), emailID, filename)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if view == nil {
		s.errorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, view)
}

// handleDocumentLogs returns the full stage-log history for one document,
// oldest row first
func (s *Server) handleDocumentLogs(w http.ResponseWriter, r *http.Request) {
	emailID := r.PathValue("email_id")
	filename := r.PathValue("filename")
	if emailID == "" || filename == "" {
		s.errorResponse(w, http.StatusBadRequest, "email_id and filename are required")
		return
	}

	logs, err := s.store.StageLogHistory(r.Context(), emailID, filename)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if len(logs) == 0 {
		s.errorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"logs":  logs,
		"count": len(logs),
	})
}

// ListStageLogsResponse represents the response for listing stage logs
type ListStageLogsResponse struct {
	Logs   []types.StageLog `json:"logs"`
	Count  int              `json:"count"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// handleListStageLogs lists stage-log rows with optional filters and pagination
func (s *Server) handleListStageLogs(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 200)
	offset := parseQueryInt(r, "offset", 0, 0)

	opts := db.ListStageLogsOptions{
		EmailID:  r.URL.Query().Get("email_id"),
		Filename: r.URL.Query().Get("filename"),
		Limit:    limit,
		Offset:   offset,
	}

	if stageStr := r.URL.Query().Get("stage"); stageStr != "" {
		stage := types.Stage(stageStr)
		if !stage.Valid() {
			s.errorResponse(w, http.StatusBadRequest, "Invalid stage filter")
			return
		}
		opts.Stage = stage
	}

	if successStr := r.URL.Query().Get("success"); successStr != "" {
		success, err := strconv.ParseBool(successStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid success filter")
			return
		}
		opts.Success = &success
	}

	logs, total, err := s.store.ListStageLogs(r.Context(), opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if logs == nil {
		logs = []types.StageLog{}
	}

	s.jsonResponse(w, http.StatusOK, ListStageLogsResponse{
		Logs:   logs,
		Count:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// ProcessDocumentsResponse represents the response for a processing request
type ProcessDocumentsResponse struct {
	Summary      *pipeline.BatchSummary `json:"summary"`
	Missing      []types.DocumentRef    `json:"missing,omitempty"`
	IngestErrors []string               `json:"ingest_errors,omitempty"`
}

// handleProcessDocuments runs the referenced inbox documents through the
// pipeline. Completed documents are skipped unless force_reprocess is set.
func (s *Server) handleProcessDocuments(w http.ResponseWriter, r *http.Request) {
	var req types.ProcessDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	ctx := r.Context()
	jobs, ingestErrs := ingest.CollectJobs(ctx, s.source)

	byFingerprint := make(map[string]types.DocumentJob, len(jobs))
	for _, job := range jobs {
		byFingerprint[job.Fingerprint()] = job
	}

	var batch []types.DocumentJob
	var missing []types.DocumentRef
	for _, ref := range req.Documents {
		job, ok := byFingerprint[ref.EmailID+":"+ref.Filename]
		if !ok {
			missing = append(missing, ref)
			continue
		}
		batch = append(batch, job)
	}

	if len(batch) == 0 {
		s.errorResponse(w, http.StatusNotFound, "No requested documents found in the inbox")
		return
	}

	summary, err := s.engine.ProcessBatch(ctx, batch, pipeline.Options{Force: req.ForceReprocess})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Processing failed: "+err.Error())
		return
	}

	var errStrings []string
	for _, ingestErr := range ingestErrs {
		errStrings = append(errStrings, ingestErr.Error())
	}

	s.jsonResponse(w, http.StatusOK, ProcessDocumentsResponse{
		Summary:      summary,
		Missing:      missing,
		IngestErrors: errStrings,
	})
}
