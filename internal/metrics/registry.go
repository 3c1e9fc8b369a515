package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds all domain-specific metrics for the triage service. A nil
// *Registry is a valid no-op, so callers never need to guard recording.
type Registry struct {
	meter metric.Meter

	// Triage pipeline metrics
	PolicyDecisionCounter metric.Int64Counter
	FinalDecisionCounter  metric.Int64Counter
	JudgeVerdictCounter   metric.Int64Counter
	JudgeLatency          metric.Float64Histogram
	AuditFailureCounter   metric.Int64Counter

	// System metrics
	APIRequestDuration metric.Float64Histogram
	APIRequestCounter  metric.Int64Counter
}

// NewRegistry creates a new metrics registry with all triage metrics.
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{meter: meter}

	if err := r.initTriageMetrics(); err != nil {
		return nil, err
	}
	if err := r.initSystemMetrics(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) initTriageMetrics() error {
	var err error

	r.PolicyDecisionCounter, err = r.meter.Int64Counter(
		"phishguard.policy.decision_total",
		metric.WithDescription("Total threshold-policy band decisions"),
	)
	if err != nil {
		return err
	}

	r.FinalDecisionCounter, err = r.meter.Int64Counter(
		"phishguard.triage.final_decision_total",
		metric.WithDescription("Total final triage decisions"),
	)
	if err != nil {
		return err
	}

	r.JudgeVerdictCounter, err = r.meter.Int64Counter(
		"phishguard.judge.verdict_total",
		metric.WithDescription("Total judge verdicts by label and backend"),
	)
	if err != nil {
		return err
	}

	r.JudgeLatency, err = r.meter.Float64Histogram(
		"phishguard.judge.latency",
		metric.WithDescription("Judge invocation latency in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000, 15000),
	)
	if err != nil {
		return err
	}

	r.AuditFailureCounter, err = r.meter.Int64Counter(
		"phishguard.audit.write_failure_total",
		metric.WithDescription("Total swallowed audit sink write failures"),
	)

	return err
}

func (r *Registry) initSystemMetrics() error {
	var err error

	r.APIRequestDuration, err = r.meter.Float64Histogram(
		"phishguard.api.request_duration",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.APIRequestCounter, err = r.meter.Int64Counter(
		"phishguard.api.request_total",
		metric.WithDescription("Total number of API requests"),
	)

	return err
}

// Helper methods for recording metrics with common attribute patterns

// RecordPolicyDecision records a threshold-policy band decision.
func (r *Registry) RecordPolicyDecision(ctx context.Context, decision string) {
	if r == nil {
		return
	}
	r.PolicyDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", decision),
	))
}

// RecordFinalDecision records a final decision with its reason tag.
func (r *Registry) RecordFinalDecision(ctx context.Context, decision, reason string) {
	if r == nil {
		return
	}
	r.FinalDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", decision),
		attribute.String("reason", reason),
	))
}

// RecordJudge records a judge verdict and its latency.
func (r *Registry) RecordJudge(ctx context.Context, verdict, backend string, latencyMS float64) {
	if r == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("verdict", verdict),
		attribute.String("backend", backend),
	}
	r.JudgeVerdictCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	r.JudgeLatency.Record(ctx, latencyMS, metric.WithAttributes(attrs...))
}

// RecordAuditFailure records a swallowed audit write failure.
func (r *Registry) RecordAuditFailure(ctx context.Context, recordKind string) {
	if r == nil {
		return
	}
	r.AuditFailureCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("record", recordKind),
	))
}

// RecordAPIRequest records API request metrics.
func (r *Registry) RecordAPIRequest(ctx context.Context, durationMS float64, method, path string, statusCode int) {
	if r == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status_code", statusCode),
	}
	r.APIRequestDuration.Record(ctx, durationMS, metric.WithAttributes(attrs...))
	r.APIRequestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
