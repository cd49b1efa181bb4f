package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/talentstream/talentstream"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Stream metrics
	ActiveStreams     metric.Int64UpDownCounter
	EventsEmitted     metric.Int64Counter
	HeartbeatsEmitted metric.Int64Counter
	StreamOutcomes    metric.Int64Counter
	StreamDuration    metric.Float64Histogram

	// Search metrics
	SearchesStarted metric.Int64Counter
	AnalyzerCalls   metric.Int64Counter
	AnalyzerErrors  metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.ActiveStreams, _ = meter.Int64UpDownCounter(
		"talentstream.streams.active",
		metric.WithDescription("Number of streaming sessions currently open"),
		metric.WithUnit("{stream}"),
	)

	m.EventsEmitted, _ = meter.Int64Counter(
		"talentstream.streams.events.total",
		metric.WithDescription("Total job messages written to response streams"),
		metric.WithUnit("{event}"),
	)

	m.HeartbeatsEmitted, _ = meter.Int64Counter(
		"talentstream.streams.heartbeats.total",
		metric.WithDescription("Total ping events written to response streams"),
		metric.WithUnit("{event}"),
	)

	m.StreamOutcomes, _ = meter.Int64Counter(
		"talentstream.streams.outcomes.total",
		metric.WithDescription("Streaming session terminal outcomes by kind"),
		metric.WithUnit("{stream}"),
	)

	m.StreamDuration, _ = meter.Float64Histogram(
		"talentstream.streams.duration",
		metric.WithDescription("Duration of streaming sessions"),
		metric.WithUnit("ms"),
	)

	m.SearchesStarted, _ = meter.Int64Counter(
		"talentstream.searches.started.total",
		metric.WithDescription("Search jobs started by search type"),
		metric.WithUnit("{search}"),
	)

	m.AnalyzerCalls, _ = meter.Int64Counter(
		"talentstream.analyzer.calls.total",
		metric.WithDescription("Profile analyzer model invocations"),
		metric.WithUnit("{call}"),
	)

	m.AnalyzerErrors, _ = meter.Int64Counter(
		"talentstream.analyzer.errors.total",
		metric.WithDescription("Profile analyzer model invocation failures"),
		metric.WithUnit("{error}"),
	)

	return m
}
