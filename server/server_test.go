package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/vakta/config"
	"github.com/yairfalse/vakta/ingest"
	"github.com/yairfalse/vakta/storage"
	"github.com/yairfalse/vakta/telemetry"
	"github.com/yairfalse/vakta/types"
)

func newTestRouter(t *testing.T) (chi.Router, *storage.Store) {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, storage.Seed(store))

	ing := ingest.New(store, config.Default().Detection)
	logger := telemetry.NewLogger("server-test")
	h := &handlers{ing: ing, store: store, logger: logger}

	router := chi.NewRouter()
	router.Post("/v1/activity", h.logActivity)
	router.Get("/v1/alerts", h.getAlerts)
	router.Get("/v1/subjects/{id}/risk", h.getSubjectRisk)
	router.Get("/healthz", h.health)
	return router, store
}

func postActivity(t *testing.T, router http.Handler, event types.ActivityEvent) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/activity", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLogActivity(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postActivity(t, router, types.ActivityEvent{
		SubjectID:   "staff001",
		Action:      types.ActionRead,
		Resource:    "Finance_Reports",
		RecordCount: 5200,
		Timestamp:   time.Date(2026, 2, 2, 22, 14, 0, 0, time.UTC),
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp activityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "processed", resp.Status)
	assert.Equal(t, 85, resp.RiskScore)
	assert.True(t, resp.AlertGenerated)
}

func TestLogActivity_Preconditions(t *testing.T) {
	router, store := newTestRouter(t)
	require.NoError(t, store.PutUser(types.User{
		ID: "suspended001", RoleID: "staff", Status: types.StatusSuspended,
	}))

	now := time.Date(2026, 2, 2, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		event      types.ActivityEvent
		wantStatus int
	}{
		{
			name: "unknown subject",
			event: types.ActivityEvent{
				SubjectID: "ghost001", Action: types.ActionRead,
				Resource: "General_Documents", Timestamp: now,
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "inactive subject",
			event: types.ActivityEvent{
				SubjectID: "suspended001", Action: types.ActionRead,
				Resource: "General_Documents", Timestamp: now,
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "malformed event",
			event: types.ActivityEvent{
				SubjectID: "staff001", Action: "SHRED",
				Resource: "General_Documents", Timestamp: now,
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postActivity(t, router, tt.event)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestLogActivity_BadBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/activity", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAlerts(t *testing.T) {
	router, _ := newTestRouter(t)

	// Two alerting events for staff001, one clean event
	for _, hour := range []int{22, 23} {
		rec := postActivity(t, router, types.ActivityEvent{
			SubjectID:   "staff001",
			Action:      types.ActionRead,
			Resource:    "Finance_Reports",
			RecordCount: 5200,
			Timestamp:   time.Date(2026, 2, 2, hour, 0, 0, 0, time.UTC),
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/alerts?subject_id=staff001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var alerts []types.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	assert.Len(t, alerts, 2)

	// Level filter
	req = httptest.NewRequest(http.MethodGet, "/v1/alerts?level=MEDIUM", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	assert.Len(t, alerts, 2)

	// Invalid level is rejected
	req = httptest.NewRequest(http.MethodGet, "/v1/alerts?level=SEVERE", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Invalid timestamp is rejected
	req = httptest.NewRequest(http.MethodGet, "/v1/alerts?from=yesterday", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAlerts_EmptyResult(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/alerts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetSubjectRisk(t *testing.T) {
	router, _ := newTestRouter(t)

	// Before any alert: zero posture
	req := httptest.NewRequest(http.MethodGet, "/v1/subjects/staff001/risk", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp riskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "staff", resp.Role)
	assert.Equal(t, 0.0, resp.RiskScore)
	assert.Equal(t, "NONE", resp.RiskLevel)
	assert.Nil(t, resp.LastAlertTime)

	// After an alerting event the posture reflects the latest alert
	postActivity(t, router, types.ActivityEvent{
		SubjectID:   "staff001",
		Action:      types.ActionRead,
		Resource:    "Finance_Reports",
		RecordCount: 5200,
		Timestamp:   time.Date(2026, 2, 2, 22, 0, 0, 0, time.UTC),
	})

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/subjects/staff001/risk", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 85.0, resp.RiskScore)
	assert.Equal(t, "MEDIUM", resp.RiskLevel)
	assert.NotNil(t, resp.LastAlertTime)

	// Unknown subject
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/subjects/ghost001/risk", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestStatusFor_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("disk on fire")))
}
