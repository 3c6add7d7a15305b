package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Add handles POST /calculator/add
func Add(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, engine.Add)
}

// Subtract handles POST /calculator/subtract
func Subtract(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, engine.Subtract)
}

// Multiply handles POST /calculator/multiply
func Multiply(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, engine.Multiply)
}

// Divide handles POST /calculator/divide. Division by zero answers 200 with
// an "Error" display, the same way the keypad shows it.
func Divide(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, engine.Divide)
}

// handleBinaryOp runs one engine.Apply inside a child span, records the
// operation metrics and writes the formatted result.
func handleBinaryOp(w http.ResponseWriter, r *http.Request, op engine.Operator) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	opName := op.Name()

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.Float64("calculator.operand.a", req.A),
		attribute.Float64("calculator.operand.b", req.B),
	)

	start := time.Now()
	result := engine.Apply(req.A, req.B, op)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	display := engine.Format(result)
	recordResult(ctx, span, opName, result, elapsed)

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Float64("a", req.A),
		zap.Float64("b", req.B),
		zap.String("display", display),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, CalcResponse{
		Operation: opName,
		A:         req.A,
		B:         req.B,
		Result:    finiteOrNil(result),
		Display:   display,
	})
}

// recordResult counts a computed value. Non-finite values are counted as
// errors and marked on the span but are not request failures.
func recordResult(ctx context.Context, span trace.Span, opName string, result, elapsedMS float64) {
	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsedMS, attrs)

	if !isFinite(result) {
		errorCounter.Add(ctx, 1, attrs)
		span.AddEvent("computation.non_finite")
		span.SetAttributes(attribute.String("calculator.display", engine.ErrorDisplay))
		span.SetStatus(codes.Ok, "")
		return
	}

	resultGauge.Record(ctx, result, attrs)
	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Float64("duration_ms", elapsedMS),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")
}

// Chain handles POST /calculator/chain: it folds a list of operations over a
// running total with a child span per step. A non-finite intermediate result
// carries through the remaining steps and the final display reads "Error".
func Chain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.chain",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req ChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "chain", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if len(req.Steps) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "chain", "no steps provided", fmt.Errorf("steps array is empty"), http.StatusBadRequest, w)
		return
	}

	// Resolve every operator up front so a bad step fails before any work.
	ops := make([]engine.Operator, len(req.Steps))
	for i, step := range req.Steps {
		op, err := engine.ParseOperator(step.Op)
		if err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "chain", fmt.Sprintf("step %d: %v", i, err), err, http.StatusBadRequest, w)
			return
		}
		ops[i] = op
	}

	span.SetAttributes(
		attribute.Float64("chain.initial", req.Initial),
		attribute.Int("chain.steps_count", len(req.Steps)),
	)

	logger.Info("starting chained calculation",
		zap.Float64("initial", req.Initial),
		zap.Int("steps", len(req.Steps)),
		zap.String("request_id", requestID),
	)

	running := req.Initial
	results := make([]ChainResult, 0, len(req.Steps))

	for i, step := range req.Steps {
		op := ops[i]
		stepCtx, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.chain.step.%d.%s", i, op.Name()),
			trace.WithAttributes(
				attribute.Int("chain.step.index", i),
				attribute.String("chain.step.operation", op.Name()),
				attribute.String("chain.step.input", engine.Format(running)),
				attribute.Float64("chain.step.value", step.Value),
			),
		)

		stepStart := time.Now()
		prev := running
		running = engine.Apply(running, step.Value, op)
		stepElapsed := float64(time.Since(stepStart).Microseconds()) / 1000.0

		recordResult(stepCtx, stepSpan, op.Name(), running, stepElapsed)
		stepSpan.End()

		logger.Debug("chain step completed",
			zap.Int("step", i),
			zap.String("operation", op.Name()),
			zap.String("input", engine.Format(prev)),
			zap.Float64("value", step.Value),
			zap.String("display", engine.Format(running)),
			zap.Float64("duration_ms", stepElapsed),
		)

		results = append(results, ChainResult{
			Op:      op.Name(),
			Value:   step.Value,
			Display: engine.Format(running),
		})
	}

	display := engine.Format(running)
	span.AddEvent("chain.complete", trace.WithAttributes(
		attribute.String("final_display", display),
		attribute.Int("total_steps", len(req.Steps)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("chained calculation completed",
		zap.Float64("initial", req.Initial),
		zap.String("display", display),
		zap.Int("steps", len(req.Steps)),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, ChainResponse{
		Initial: req.Initial,
		Steps:   results,
		Result:  finiteOrNil(running),
		Display: display,
	})
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrNil(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}
