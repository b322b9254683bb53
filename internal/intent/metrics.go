package intent

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/MeghanaMH1/rag-edi-assistant/internal/intent"

// Metrics holds classifier-related metrics.
type Metrics struct {
	meter           metric.Meter
	logger          *zap.Logger
	classifications metric.Int64Counter
	cacheHits       metric.Int64Counter
	duration        metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance for the classifier.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.classifications, err = m.meter.Int64Counter(
		"edi_assistant.intent.classifications_total",
		metric.WithDescription("Total classifications by resulting intent"),
		metric.WithUnit("{classification}"),
	)
	if err != nil {
		m.logger.Warn("failed to create classifications counter", zap.Error(err))
	}

	m.cacheHits, err = m.meter.Int64Counter(
		"edi_assistant.intent.cache_lookups_total",
		metric.WithDescription("Classification cache lookups by outcome (hit, miss)"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		m.logger.Warn("failed to create cache lookups counter", zap.Error(err))
	}

	m.duration, err = m.meter.Float64Histogram(
		"edi_assistant.intent.classification_duration_seconds",
		metric.WithDescription("End-to-end classification duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}
}

// RecordClassification records one classification outcome.
func (m *Metrics) RecordClassification(ctx context.Context, result Intent, cached bool, duration time.Duration) {
	if m.classifications != nil {
		m.classifications.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", string(result))))
	}
	if m.cacheHits != nil {
		outcome := "miss"
		if cached {
			outcome = "hit"
		}
		m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds())
	}
}
