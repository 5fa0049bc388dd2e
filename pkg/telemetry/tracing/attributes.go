package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans.
// They use semantic conventions where applicable and ensure consistent attribute
// naming across the codebase.
//
// # Attribute Keys
//
// Standard attribute keys follow OpenTelemetry semantic conventions:
//   - http.*: HTTP-related attributes
//   - rpc.*: RPC-related attributes
//   - db.*: Database-related attributes
//
// Custom attribute keys use the "wingspan.*" namespace:
//   - wingspan.wing_id: correlation rule being evaluated
//   - wingspan.feather_id: artifact database being scanned
//   - wingspan.engine: selected correlation engine
//   - wingspan.match.*: per-match score and evidence counts

// Common attribute keys used throughout the system.
const (
	// Pipeline attributes
	AttrPipelineName = "wingspan.pipeline_name"
	AttrExecutionID  = "wingspan.execution_id"
	AttrEngine       = "wingspan.engine"

	// Wing attributes
	AttrWingID     = "wingspan.wing_id"
	AttrWingName   = "wingspan.wing_name"
	AttrTimeWindow = "wingspan.time_window_seconds"

	// Feather attributes
	AttrFeatherID    = "wingspan.feather_id"
	AttrFeatherCount = "wingspan.feather_count"

	// Identity and anchor attributes
	AttrIdentityType = "wingspan.identity_type"
	AttrAnchorID     = "wingspan.anchor_id"

	// Match attributes
	AttrMatchScore        = "wingspan.match.score"
	AttrMatchFeatherCount = "wingspan.match.feather_count"
	AttrTotalMatches      = "wingspan.total_matches"

	// Throughput attributes
	AttrRecordsScanned      = "wingspan.records_scanned"
	AttrDuplicatesPrevented = "wingspan.duplicates_prevented"
	AttrStreamingMode       = "wingspan.streaming_mode"

	// Error attributes
	AttrErrorType    = "wingspan.error.type"
	AttrErrorMessage = "error.message"
	AttrErrorStack   = "error.stack"

	// Performance attributes
	AttrDuration   = "wingspan.duration_ms"
	AttrRetryCount = "wingspan.retry_count"
)

// SetPipelineAttributes sets pipeline-identifying attributes on a span.
//
// Example:
//
//	SetPipelineAttributes(span, "nightly-sweep", "exec-001", "identity_based")
func SetPipelineAttributes(span trace.Span, pipelineName, executionID, engine string) {
	span.SetAttributes(
		attribute.String(AttrPipelineName, pipelineName),
		attribute.String(AttrExecutionID, executionID),
		attribute.String(AttrEngine, engine),
	)
}

// SetWingAttributes sets wing-related attributes on a span.
//
// Example:
//
//	SetWingAttributes(span, "wing-01", "lateral-movement", 30)
func SetWingAttributes(span trace.Span, wingID, wingName string, timeWindowSeconds float64) {
	span.SetAttributes(
		attribute.String(AttrWingID, wingID),
		attribute.String(AttrWingName, wingName),
		attribute.Float64(AttrTimeWindow, timeWindowSeconds),
	)
}

// SetFeatherAttributes sets attributes describing the feather databases
// participating in a wing's evaluation.
//
// Example:
//
//	SetFeatherAttributes(span, "prefetch", 4)
func SetFeatherAttributes(span trace.Span, featherID string, featherCount int) {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrFeatherCount, featherCount),
	}
	if featherID != "" {
		attrs = append(attrs, attribute.String(AttrFeatherID, featherID))
	}
	span.SetAttributes(attrs...)
}

// SetAnchorAttributes sets identity/anchor attributes on a span.
//
// Example:
//
//	SetAnchorAttributes(span, "hash", "anchor-7f3a")
func SetAnchorAttributes(span trace.Span, identityType, anchorID string) {
	span.SetAttributes(
		attribute.String(AttrIdentityType, identityType),
		attribute.String(AttrAnchorID, anchorID),
	)
}

// SetMatchAttributes sets match score and feather-count attributes on a span.
//
// Example:
//
//	SetMatchAttributes(span, 0.82, 3)
func SetMatchAttributes(span trace.Span, score float64, featherCount int) {
	span.SetAttributes(
		attribute.Float64(AttrMatchScore, score),
		attribute.Int(AttrMatchFeatherCount, featherCount),
	)
}

// SetThroughputAttributes sets scan/dedup counters on a span at execution end.
//
// Example:
//
//	SetThroughputAttributes(span, 120000, 48, true)
func SetThroughputAttributes(span trace.Span, recordsScanned int64, duplicatesPrevented int64, streaming bool) {
	span.SetAttributes(
		attribute.Int64(AttrRecordsScanned, recordsScanned),
		attribute.Int64(AttrDuplicatesPrevented, duplicatesPrevented),
		attribute.Bool(AttrStreamingMode, streaming),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "storage_backoff")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span.
// Duration is recorded in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// SetRetryAttribute sets the retry count attribute on a span.
//
// Example:
//
//	SetRetryAttribute(span, 2)
func SetRetryAttribute(span trace.Span, retryCount int) {
	span.SetAttributes(attribute.Int(AttrRetryCount, retryCount))
}

// AddEvent adds a named event to the span with optional attributes.
// Events represent interesting points in the span's lifetime.
//
// Example:
//
//	AddEvent(span, "engine_selected",
//	    attribute.String("engine", "time_window_scanning"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordException records an exception event on the span.
// This is a convenience wrapper around span.RecordError.
//
// Example:
//
//	RecordException(span, err)
func RecordException(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithPipeline adds pipeline-identifying attributes.
func (ab *AttributeBuilder) WithPipeline(pipelineName, executionID, engine string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrPipelineName, pipelineName),
		attribute.String(AttrExecutionID, executionID),
		attribute.String(AttrEngine, engine),
	)
	return ab
}

// WithWing adds wing-related attributes.
func (ab *AttributeBuilder) WithWing(wingID, wingName string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrWingID, wingID),
		attribute.String(AttrWingName, wingName),
	)
	return ab
}

// WithFeathers adds feather-count attributes.
func (ab *AttributeBuilder) WithFeathers(featherCount int) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.Int(AttrFeatherCount, featherCount))
	return ab
}

// WithMatch adds match score attributes.
func (ab *AttributeBuilder) WithMatch(score float64, featherCount int) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Float64(AttrMatchScore, score),
		attribute.Int(AttrMatchFeatherCount, featherCount),
	)
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
