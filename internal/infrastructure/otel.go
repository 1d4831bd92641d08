package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"consolidator/internal/config"
)

// InstrumentationName names the tracer and meter of this module.
const InstrumentationName = "consolidator"

// Telemetry holds the OpenTelemetry providers used by the application.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// PrometheusHTTP serves the metrics registry; nil unless the
	// prometheus exporter is enabled.
	PrometheusHTTP http.Handler
	logger         *slog.Logger
}

// NoopTelemetry returns providers that record nothing.
func NoopTelemetry() *Telemetry {
	return &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
		logger: slog.Default(),
	}
}

// InitializeTelemetry sets up tracing and metrics according to cfg.
// Each call uses its own Prometheus registry so it is safe to call more than
// once in a process.
func InitializeTelemetry(cfg config.TelemetryConfig, version string, logger *slog.Logger) (*Telemetry, error) {
	ctx := context.Background()
	t := NoopTelemetry()
	t.logger = logger

	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
			semconv.DeploymentEnvironmentName(cfg.Environment),
			attribute.String("service.instance.id", generateInstanceID()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		)
		t.TracerProvider = tp
		t.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(version))
		otel.SetTracerProvider(tp)
	case "none", "":
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	switch cfg.MetricExporter {
	case "prometheus":
		registry := promclient.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		t.MeterProvider = mp
		t.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(version))
		t.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		otel.SetMeterProvider(mp)
	case "none", "":
	default:
		return nil, fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	return t, nil
}

// Shutdown flushes and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ConsolidationMetrics are the business metrics of the consolidation service.
// A nil *ConsolidationMetrics records nothing.
type ConsolidationMetrics struct {
	runs       metric.Int64Counter
	files      metric.Int64Counter
	inputBytes metric.Int64Counter
	outputRows metric.Int64Histogram
	duration   metric.Float64Histogram
}

// NewConsolidationMetrics registers the consolidation instruments on meter.
func NewConsolidationMetrics(meter metric.Meter) (*ConsolidationMetrics, error) {
	runs, err := meter.Int64Counter(
		"consolidation_runs_total",
		metric.WithDescription("Total number of consolidation runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	files, err := meter.Int64Counter(
		"consolidation_files_total",
		metric.WithDescription("Total number of uploaded CSV files by status"),
	)
	if err != nil {
		return nil, err
	}

	inputBytes, err := meter.Int64Counter(
		"consolidation_input_bytes_total",
		metric.WithDescription("Total bytes of CSV content received"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	outputRows, err := meter.Int64Histogram(
		"consolidation_output_rows",
		metric.WithDescription("Number of calendar rows in consolidated tables"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"consolidation_duration_seconds",
		metric.WithDescription("Consolidation run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ConsolidationMetrics{
		runs:       runs,
		files:      files,
		inputBytes: inputBytes,
		outputRows: outputRows,
		duration:   duration,
	}, nil
}

// RecordRun records the outcome of one consolidation.
func (m *ConsolidationMetrics) RecordRun(ctx context.Context, outcome string, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if rows > 0 {
		m.outputRows.Record(ctx, int64(rows))
	}
}

// RecordFile records one uploaded file.
func (m *ConsolidationMetrics) RecordFile(ctx context.Context, status, encoding string, size int) {
	if m == nil {
		return
	}
	m.files.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("encoding", encoding),
	))
	m.inputBytes.Add(ctx, int64(size))
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
