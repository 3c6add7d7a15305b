package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Sessions serves the stateful calculator: one engine state per session,
// driven by events or key names.
type Sessions struct {
	svc *session.Service
}

// NewSessions returns session handlers backed by svc.
func NewSessions(svc *session.Service) *Sessions {
	return &Sessions{svc: svc}
}

// TrackExisting seeds the active sessions instrument with sessions that
// survived a restart in a persistent store.
func (h *Sessions) TrackExisting(ctx context.Context) error {
	n, err := h.svc.Count(ctx)
	if err != nil {
		return fmt.Errorf("count sessions: %w", err)
	}
	activeSessions.Add(ctx, int64(n))
	return nil
}

// Create handles POST /calculator/sessions
func (h *Sessions) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "session.create", "")
	defer span.End()

	sess, err := h.svc.Create(ctx)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.create", "could not create session", err, http.StatusInternalServerError, w)
		return
	}

	activeSessions.Add(ctx, 1)
	span.SetAttributes(attribute.String("session.id", sess.ID))
	span.SetStatus(codes.Ok, "")
	logger.Info("session created", zap.String("session_id", sess.ID))

	handlers.WriteJSON(w, http.StatusCreated, toResponse(sess))
}

// Get handles GET /calculator/sessions/{id}
func (h *Sessions) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span, logger := h.start(r, "session.get", id)
	defer span.End()

	sess, err := h.svc.Get(ctx, id)
	if err != nil {
		h.fail(ctx, span, logger, "session.get", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, toResponse(sess))
}

// Delete handles DELETE /calculator/sessions/{id}
func (h *Sessions) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span, logger := h.start(r, "session.delete", id)
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		h.fail(ctx, span, logger, "session.delete", err, w)
		return
	}

	activeSessions.Add(ctx, -1)
	span.SetStatus(codes.Ok, "")
	logger.Info("session deleted", zap.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Events handles POST /calculator/sessions/{id}/events. The whole batch is
// validated before anything is applied.
func (h *Sessions) Events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span, logger := h.start(r, "session.events", id)
	defer span.End()

	var req EventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.events", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	events := make([]engine.Event, 0, len(req.Events))
	for i, er := range req.Events {
		e, err := er.toEvent()
		if err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "session.events", fmt.Sprintf("event %d: %v", i, err), err, http.StatusBadRequest, w)
			return
		}
		events = append(events, e)
	}

	h.apply(ctx, span, logger, id, "session.events", events, 0, w)
}

// Keys handles POST /calculator/sessions/{id}/keys. Keys without a mapping
// are skipped, the way a keypad ignores keys it has no button for.
func (h *Sessions) Keys(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span, logger := h.start(r, "session.keys", id)
	defer span.End()

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.keys", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	events := make([]engine.Event, 0, len(req.Keys))
	ignored := 0
	for _, key := range req.Keys {
		e, ok := engine.KeyEvent(key)
		if !ok {
			ignored++
			continue
		}
		events = append(events, e)
	}
	span.SetAttributes(attribute.Int("session.keys.ignored", ignored))

	h.apply(ctx, span, logger, id, "session.keys", events, ignored, w)
}

func (h *Sessions) apply(ctx context.Context, span trace.Span, logger *zap.Logger, id, opName string, events []engine.Event, ignored int, w http.ResponseWriter) {
	span.SetAttributes(attribute.Int("session.events.count", len(events)))

	sess, err := h.svc.Apply(ctx, id, events)
	if err != nil {
		h.fail(ctx, span, logger, opName, err, w)
		return
	}

	for _, e := range events {
		eventsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", e.Kind.String())))
	}
	if sess.State.Display == engine.ErrorDisplay {
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", opName)))
		span.AddEvent("display.error")
	}

	span.SetAttributes(
		attribute.String("session.display", sess.State.Display),
		attribute.Int64("session.version", sess.Version),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("session events applied",
		zap.String("session_id", id),
		zap.Int("events", len(events)),
		zap.Int("ignored_keys", ignored),
		zap.String("display", sess.State.Display),
		zap.String("history", sess.State.History),
		zap.Int64("version", sess.Version),
	)

	resp := toResponse(sess)
	resp.IgnoredKeys = ignored
	handlers.WriteJSON(w, http.StatusOK, resp)
}

func (h *Sessions) start(r *http.Request, opName, id string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	if id != "" {
		span.SetAttributes(attribute.String("session.id", id))
	}

	logger := observability.LoggerWithTrace(ctx).With(zap.String("request_id", requestID))
	return ctx, span, logger
}

// fail maps session errors onto HTTP statuses.
func (h *Sessions) fail(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
	case errors.Is(err, session.ErrVersionConflict):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session was modified concurrently, retry", err, http.StatusConflict, w)
	case errors.Is(err, engine.ErrInvalidDigit), errors.Is(err, engine.ErrUnknownOperator), errors.Is(err, engine.ErrUnknownEvent):
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusBadRequest, w)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "request cancelled", err, http.StatusServiceUnavailable, w)
	default:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "internal error", err, http.StatusInternalServerError, w)
	}
}

func (er EventRequest) toEvent() (engine.Event, error) {
	kind, err := engine.ParseKind(er.Type)
	if err != nil {
		return engine.Event{}, err
	}

	e := engine.Event{Kind: kind}
	switch kind {
	case engine.KindDigit:
		if len(er.Digit) != 1 {
			return engine.Event{}, fmt.Errorf("%w: %q", engine.ErrInvalidDigit, er.Digit)
		}
		e.Digit = er.Digit[0]
	case engine.KindChooseOperator:
		op, err := engine.ParseOperator(er.Operator)
		if err != nil {
			return engine.Event{}, err
		}
		e.Operator = op
	}
	return e, e.Validate()
}

func toResponse(sess session.Session) SessionResponse {
	return SessionResponse{
		ID:                    sess.ID,
		Display:               sess.State.Display,
		History:               sess.State.History,
		Operator:              string(sess.State.Operator),
		EnteringSecondOperand: sess.State.EnteringSecondOperand,
		JustEvaluated:         sess.State.JustEvaluated,
		Version:               sess.Version,
	}
}
