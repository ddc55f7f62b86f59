package observability

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// SetupTracing initializes OpenTelemetry tracing with a stdout exporter.
func SetupTracing(serviceName string) func() {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatalf("failed to initialize stdouttrace exporter: %v", err)
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	provider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return func() { _ = provider.Shutdown(context.Background()) }
}

// SetupPrometheusMetrics initializes the Prometheus exporter and serves
// /metrics on the given address.
func SetupPrometheusMetrics(addr string) *metric.MeterProvider {
	exp, err := prometheus.New()
	if err != nil {
		log.Fatalf("failed to initialize prometheus exporter: %v", err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exp))
	otel.SetMeterProvider(mp)
	if addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			_ = http.ListenAndServe(addr, mux)
		}()
	}
	return mp
}

var (
	instrumentsOnce  sync.Once
	creationCounter  otelmetric.Int64Counter
	publishCounter   otelmetric.Int64Counter
	voteCounter      otelmetric.Int64Counter
	upstreamFailures otelmetric.Int64Counter
)

// instruments are created against the global meter provider on first use, so
// recording works (as a no-op) even before SetupPrometheusMetrics runs.
func instruments() {
	instrumentsOnce.Do(func() {
		meter := otel.Meter("waifuhub/backend")
		creationCounter, _ = meter.Int64Counter("waifu_creations_total",
			otelmetric.WithDescription("Characters generated"))
		publishCounter, _ = meter.Int64Counter("waifu_publishes_total",
			otelmetric.WithDescription("Characters published to the community feed"))
		voteCounter, _ = meter.Int64Counter("waifu_votes_total",
			otelmetric.WithDescription("Votes cast"))
		upstreamFailures, _ = meter.Int64Counter("upstream_failures_total",
			otelmetric.WithDescription("Failed generation or chat upstream calls"))
	})
}

// RecordCreation counts a successful character generation.
func RecordCreation(ctx context.Context) {
	instruments()
	creationCounter.Add(ctx, 1)
}

// RecordPublish counts a publish action.
func RecordPublish(ctx context.Context) {
	instruments()
	publishCounter.Add(ctx, 1)
}

// RecordVote counts a cast vote by kind.
func RecordVote(ctx context.Context, voteType string) {
	instruments()
	voteCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("vote_type", voteType)))
}

// RecordUpstreamFailure counts a failed upstream call by collaborator.
func RecordUpstreamFailure(ctx context.Context, upstream string) {
	instruments()
	upstreamFailures.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("upstream", upstream)))
}
