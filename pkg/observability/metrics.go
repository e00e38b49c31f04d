package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "tsedit.requests.total"
	metricRequestDuration  = "tsedit.request.duration.seconds"
	metricErrorsTotal      = "tsedit.errors.total"
	metricInflightRequests = "tsedit.inflight.requests"

	metricImportsTotal = "tsedit.imports.total"
	metricFilesChanged = "tsedit.files.changed.total"
	metricEditDuration = "tsedit.edit.duration.seconds"

	attrOp      = "op"
	attrStatus  = "status"
	attrOutcome = "outcome"

	statusError = "error"
)

// Import outcomes recorded by EditMetrics.
const (
	OutcomeInserted = "inserted"
	OutcomeNoop     = "noop"
	OutcomeError    = "error"
)

// durationBucketBoundaries covers 1ms to 60s: single-file edits are fast,
// whole-tree plans are not.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// REDMetrics holds the OTel instruments for Rate, Error, Duration metrics.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	reqTotal, err := mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	reqDuration, err := mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Number of in-flight requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRequests, err)
	}

	return &REDMetrics{
		requestsTotal:    reqTotal,
		requestDuration:  reqDuration,
		errorsTotal:      errTotal,
		inflightRequests: inflight,
	}, nil
}

// RecordRequest records a completed request with its operation, status, and duration.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == statusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// EditMetrics holds the instruments for import edits.
type EditMetrics struct {
	importsTotal metric.Int64Counter
	filesChanged metric.Int64Counter
	editDuration metric.Float64Histogram
}

// NewEditMetrics creates edit instruments from the given meter.
func NewEditMetrics(mt metric.Meter) (*EditMetrics, error) {
	imports, err := mt.Int64Counter(metricImportsTotal,
		metric.WithDescription("Import requests by outcome"),
		metric.WithUnit("{import}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricImportsTotal, err)
	}

	files, err := mt.Int64Counter(metricFilesChanged,
		metric.WithDescription("Files whose text changed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesChanged, err)
	}

	duration, err := mt.Float64Histogram(metricEditDuration,
		metric.WithDescription("Time spent editing one file"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEditDuration, err)
	}

	return &EditMetrics{
		importsTotal: imports,
		filesChanged: files,
		editDuration: duration,
	}, nil
}

// RecordImport counts one import request with its outcome.
func (em *EditMetrics) RecordImport(ctx context.Context, outcome string) {
	em.importsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}

// RecordFile records the edit duration of one file and counts it when its
// text changed.
func (em *EditMetrics) RecordFile(ctx context.Context, changed bool, duration time.Duration) {
	em.editDuration.Record(ctx, duration.Seconds())

	if changed {
		em.filesChanged.Add(ctx, 1)
	}
}
