// Package ingest owns everything the detection engine delegates to
// its caller: event validation, subject preconditions, scoring context
// resolution, per-subject serialization, and persistence of activity
// and alerts.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/vakta/config"
	"github.com/yairfalse/vakta/detect"
	"github.com/yairfalse/vakta/storage"
	"github.com/yairfalse/vakta/telemetry"
	"github.com/yairfalse/vakta/types"
)

// Precondition failures. These surface distinctly from a zero-risk
// verdict: a rejected event is never silently scored as risk-free.
var (
	ErrMalformedEvent  = errors.New("malformed event")
	ErrUnknownSubject  = errors.New("unknown subject")
	ErrSubjectInactive = errors.New("subject is not active")
	ErrRoleNotFound    = errors.New("subject role not found")
)

// Result is the outcome of processing one event
type Result struct {
	Verdict types.Verdict `json:"verdict"`
	Seq     int64         `json:"seq"`
	// Alert is set when the verdict crossed the alert threshold and
	// an alert record was persisted
	Alert *types.Alert `json:"alert,omitempty"`
}

// Ingestor resolves scoring context, drives the detector, and persists
// the outcome
type Ingestor struct {
	store    storage.Storage
	detector *detect.Detector
	window   time.Duration
	logger   *telemetry.Logger
	locks    *subjectLocks

	// now is swappable for tests
	now func() time.Time
}

// New creates an ingestor over the given store and detection config
func New(store storage.Storage, cfg config.Detection) *Ingestor {
	return &Ingestor{
		store:    store,
		detector: detect.New(cfg),
		window:   cfg.FrequencyWindow,
		logger:   telemetry.NewLogger("ingest"),
		locks:    newSubjectLocks(),
		now:      time.Now,
	}
}

// Process validates, scores, and persists one activity event. The
// returned error distinguishes precondition failures from storage
// failures; a nil error means the event was scored and recorded.
func (i *Ingestor) Process(ctx context.Context, event types.ActivityEvent) (*Result, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "vakta.ingest.process",
		trace.WithAttributes(
			attribute.String("subject_id", event.SubjectID),
			attribute.String("action", event.Action),
		),
	)
	defer span.End()

	start := i.now()

	result, err := i.process(ctx, event)
	if err != nil {
		span.RecordError(err)
		telemetry.RecordEventRejected(ctx, rejectionReason(err))
		i.logger.LogEventRejected(ctx, event.SubjectID, err)
		return nil, err
	}

	telemetry.RecordScoringDuration(ctx, i.now().Sub(start).Seconds())
	telemetry.RecordEventProcessed(ctx, string(result.Verdict.Level))
	i.logger.LogEventScored(ctx, event.SubjectID, result.Verdict)

	return result, nil
}

func (i *Ingestor) process(ctx context.Context, event types.ActivityEvent) (*Result, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	in, err := i.resolve(event)
	if err != nil {
		return nil, err
	}

	// Critical section: trailing-count read and activity append must
	// not interleave for the same subject
	unlock := i.locks.lock(event.SubjectID)
	defer unlock()

	in.TrailingCount, err = i.store.CountActivityBetween(
		event.SubjectID, event.Timestamp.Add(-i.window), event.Timestamp)
	if err != nil {
		i.logger.LogStorageError(ctx, "count_activity", err)
		return nil, fmt.Errorf("counting trailing activity: %w", err)
	}

	verdict := i.detector.Evaluate(*in)

	seq, err := i.store.AppendActivity(event)
	if err != nil {
		i.logger.LogStorageError(ctx, "append_activity", err)
		return nil, fmt.Errorf("recording activity: %w", err)
	}

	result := &Result{Verdict: verdict, Seq: seq}

	if verdict.Alertable() {
		alert := types.NewAlert(uuid.NewString(), event.SubjectID, verdict, i.now().UTC())
		if err := i.store.AppendAlert(alert); err != nil {
			i.logger.LogStorageError(ctx, "append_alert", err)
			return nil, fmt.Errorf("recording alert: %w", err)
		}
		result.Alert = &alert

		telemetry.RecordAlertGenerated(ctx, string(alert.Level))
		i.logger.LogAlertGenerated(ctx, alert)
	}

	return result, nil
}

// resolve builds the detector input from stored reference data
func (i *Ingestor) resolve(event types.ActivityEvent) (*detect.Input, error) {
	user, err := i.store.GetUser(event.SubjectID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, event.SubjectID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving subject %s: %w", event.SubjectID, err)
	}

	if !user.IsActive() {
		return nil, fmt.Errorf("%w: %s has status %s", ErrSubjectInactive, user.ID, user.Status)
	}

	role, err := i.store.GetRole(user.RoleID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, user.RoleID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving role %s: %w", user.RoleID, err)
	}

	policies, err := i.store.PoliciesForRole(role.ID)
	if err != nil {
		return nil, fmt.Errorf("loading policies for role %s: %w", role.ID, err)
	}

	baseline, err := i.store.BaselineForRole(role.ID)
	if err != nil {
		return nil, fmt.Errorf("loading baseline for role %s: %w", role.ID, err)
	}

	return &detect.Input{
		Event:    event,
		Role:     *role,
		Policies: policies,
		Baseline: baseline,
	}, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedEvent):
		return "malformed"
	case errors.Is(err, ErrUnknownSubject):
		return "unknown_subject"
	case errors.Is(err, ErrSubjectInactive):
		return "inactive_subject"
	case errors.Is(err, ErrRoleNotFound):
		return "role_not_found"
	default:
		return "storage_error"
	}
}
