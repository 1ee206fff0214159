package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yairfalse/vakta/ingest"
	"github.com/yairfalse/vakta/storage"
	"github.com/yairfalse/vakta/telemetry"
	"github.com/yairfalse/vakta/types"
)

type handlers struct {
	ing    *ingest.Ingestor
	store  storage.Storage
	logger *telemetry.Logger
}

// activityResponse is the POST /v1/activity reply
type activityResponse struct {
	Status         string `json:"status"`
	RiskScore      int    `json:"risk_score"`
	AlertGenerated bool   `json:"alert_generated"`
}

// riskResponse is the GET /v1/subjects/{id}/risk reply. Level reports
// the most recent alert, or NONE when the subject has never alerted.
type riskResponse struct {
	SubjectID     string     `json:"subject_id"`
	Role          string     `json:"role"`
	RiskScore     float64    `json:"current_risk_score"`
	RiskLevel     string     `json:"risk_level"`
	LastAlertTime *time.Time `json:"last_alert_time,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) logActivity(w http.ResponseWriter, r *http.Request) {
	var event types.ActivityEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.ing.Process(r.Context(), event)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, activityResponse{
		Status:         "processed",
		RiskScore:      result.Verdict.Score,
		AlertGenerated: result.Alert != nil,
	})
}

func (h *handlers) getAlerts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAlertFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := h.store.QueryAlerts(*filter)
	if err != nil {
		h.logger.LogStorageError(r.Context(), "query_alerts", err)
		writeError(w, http.StatusInternalServerError, "alert query failed")
		return
	}

	if alerts == nil {
		alerts = []types.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *handlers) getSubjectRisk(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "id")

	user, err := h.store.GetUser(subjectID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "subject "+subjectID+" not found")
		return
	}
	if err != nil {
		h.logger.LogStorageError(r.Context(), "get_user", err)
		writeError(w, http.StatusInternalServerError, "subject lookup failed")
		return
	}

	roleName := "unknown"
	if role, err := h.store.GetRole(user.RoleID); err == nil {
		roleName = role.Name
	}

	resp := riskResponse{
		SubjectID: subjectID,
		Role:      roleName,
		RiskLevel: string(types.LevelNone),
	}

	latest, err := h.store.LatestAlertForSubject(subjectID)
	if err != nil {
		h.logger.LogStorageError(r.Context(), "latest_alert", err)
		writeError(w, http.StatusInternalServerError, "alert lookup failed")
		return
	}
	if latest != nil {
		resp.RiskScore = latest.Score
		resp.RiskLevel = string(latest.Level)
		resp.LastAlertTime = &latest.GeneratedAt
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	activity, alerts, seq := h.store.Stats()
	telemetry.RecordStorageStats(r.Context(), activity, seq)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"activity_count": activity,
		"alert_count":    alerts,
	})
}

// parseAlertFilter reads the optional query parameters of GET /v1/alerts
func parseAlertFilter(r *http.Request) (*types.AlertFilter, error) {
	filter := &types.AlertFilter{
		SubjectID: r.URL.Query().Get("subject_id"),
	}

	if raw := r.URL.Query().Get("level"); raw != "" {
		level, err := types.ParseAlertLevel(raw)
		if err != nil {
			return nil, err
		}
		filter.Level = level
	}

	var err error
	if filter.From, err = parseTimeParam(r, "from"); err != nil {
		return nil, err
	}
	if filter.To, err = parseTimeParam(r, "to"); err != nil {
		return nil, err
	}
	return filter, nil
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be RFC 3339, got " + raw)
	}
	return t, nil
}

// statusFor maps ingestion errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ingest.ErrMalformedEvent):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrUnknownSubject):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrSubjectInactive):
		return http.StatusForbidden
	case errors.Is(err, ingest.ErrRoleNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
