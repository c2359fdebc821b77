package observability

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsCollector manages all metrics for imgd
type MetricsCollector struct {
	meter metric.Meter

	// HTTP server metrics
	httpRequests     metric.Int64Counter
	httpLatency      metric.Float64Histogram
	httpResponseSize metric.Int64Histogram

	// Image pipeline metrics
	imagesProcessed metric.Int64Counter
	processDuration metric.Float64Histogram
	uploadSize      metric.Int64Histogram
	detections      metric.Int64Counter
	avatarsProduced metric.Int64Counter

	// Server for Prometheus scraping
	prometheusServer *http.Server

	// Optional callbacks used by tests to assert instrumentation behavior
	testHooks MetricsTestHooks
}

// MetricsTestHooks exposes callbacks that integration tests can use to assert
// instrumentation without spinning up a full OTel stack.
type MetricsTestHooks struct {
	HTTPServerRequest func(method, route string, status int, duration time.Duration, responseBytes int64)
	ImageProcessed    func(operation, format, status string, duration time.Duration)
	AvatarProduced    func(size int, animated bool)
}

// SetTestHooks registers callbacks that are invoked whenever the matching
// metric is recorded. This is primarily used in unit tests so we can assert
// instrumentation without exporting real metrics.
func (m *MetricsCollector) SetTestHooks(hooks MetricsTestHooks) {
	if m == nil {
		return
	}
	m.testHooks = hooks
}

// MetricsConfig configures the metrics collector
type MetricsConfig struct {
	Enabled        bool `yaml:"enabled"`
	PrometheusPort int  `yaml:"prometheus_port"`
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(config MetricsConfig) (*MetricsCollector, error) {
	if !config.Enabled {
		return &MetricsCollector{}, nil
	}

	// Create Prometheus exporter
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	// Create meter provider
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	// Get meter
	meter := provider.Meter("imgd")

	// Create metrics
	httpRequests, err := meter.Int64Counter(
		"imgd.http.requests.total",
		metric.WithDescription("Total HTTP requests handled by the server"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests counter: %w", err)
	}

	httpLatency, err := meter.Float64Histogram(
		"imgd.http.request.duration",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_latency histogram: %w", err)
	}

	httpResponseSize, err := meter.Int64Histogram(
		"imgd.http.response.size",
		metric.WithDescription("HTTP response payload sizes in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_response_size histogram: %w", err)
	}

	imagesProcessed, err := meter.Int64Counter(
		"imgd.images.processed.total",
		metric.WithDescription("Total images run through a pipeline operation"),
		metric.WithUnit("{image}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create images_processed counter: %w", err)
	}

	processDuration, err := meter.Float64Histogram(
		"imgd.images.process.duration",
		metric.WithDescription("Image pipeline operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create process_duration histogram: %w", err)
	}

	uploadSize, err := meter.Int64Histogram(
		"imgd.upload.size",
		metric.WithDescription("Uploaded image payload sizes in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload_size histogram: %w", err)
	}

	detections, err := meter.Int64Counter(
		"imgd.detect.total",
		metric.WithDescription("Format detection outcomes by detected format"),
		metric.WithUnit("{image}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create detections counter: %w", err)
	}

	avatarsProduced, err := meter.Int64Counter(
		"imgd.avatars.produced.total",
		metric.WithDescription("Total avatar renditions produced"),
		metric.WithUnit("{avatar}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create avatars_produced counter: %w", err)
	}

	collector := &MetricsCollector{
		meter:            meter,
		httpRequests:     httpRequests,
		httpLatency:      httpLatency,
		httpResponseSize: httpResponseSize,
		imagesProcessed:  imagesProcessed,
		processDuration:  processDuration,
		uploadSize:       uploadSize,
		detections:       detections,
		avatarsProduced:  avatarsProduced,
	}

	// Start Prometheus HTTP server
	if config.PrometheusPort > 0 {
		if err := collector.StartPrometheusServer(config.PrometheusPort); err != nil {
			return nil, fmt.Errorf("failed to start prometheus server: %w", err)
		}
	}

	return collector, nil
}

// StartPrometheusServer starts the Prometheus metrics server
func (m *MetricsCollector) StartPrometheusServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promclient.Handler())

	m.prometheusServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		log.Printf("Prometheus metrics server listening on :%d", port)
		if err := m.prometheusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Prometheus server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the metrics collector
func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	if m.prometheusServer != nil {
		return m.prometheusServer.Shutdown(ctx)
	}
	return nil
}

// RecordHTTPServerRequest records metrics for an HTTP request lifecycle
func (m *MetricsCollector) RecordHTTPServerRequest(ctx context.Context, method, route string, status int, duration time.Duration, responseBytes int64) {
	if m == nil {
		return
	}
	if hook := m.testHooks.HTTPServerRequest; hook != nil {
		hook(method, route, status, duration, responseBytes)
	}
	if m.httpRequests == nil || m.httpLatency == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	}
	m.httpRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
	))
	if m.httpResponseSize != nil && responseBytes >= 0 {
		m.httpResponseSize.Record(ctx, responseBytes, metric.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
		))
	}
}

// RecordImageProcessed records the outcome of one pipeline operation
func (m *MetricsCollector) RecordImageProcessed(ctx context.Context, operation, format, status string, duration time.Duration) {
	if m == nil {
		return
	}
	if hook := m.testHooks.ImageProcessed; hook != nil {
		hook(operation, format, status, duration)
	}
	if m.imagesProcessed == nil || m.processDuration == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("format", format),
		attribute.String("status", status),
	}
	m.imagesProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.processDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordUploadSize records the size of an accepted upload
func (m *MetricsCollector) RecordUploadSize(ctx context.Context, operation string, sizeBytes int64) {
	if m == nil || m.uploadSize == nil {
		return
	}
	if sizeBytes < 0 {
		return
	}
	m.uploadSize.Record(ctx, sizeBytes, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordDetection records a successful format detection
func (m *MetricsCollector) RecordDetection(ctx context.Context, format string) {
	if m == nil || m.detections == nil {
		return
	}
	m.detections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
	))
}

// RecordAvatarProduced records one avatar rendition
func (m *MetricsCollector) RecordAvatarProduced(ctx context.Context, size int, animated bool) {
	if m == nil {
		return
	}
	if hook := m.testHooks.AvatarProduced; hook != nil {
		hook(size, animated)
	}
	if m.avatarsProduced == nil {
		return
	}
	m.avatarsProduced.Add(ctx, 1, metric.WithAttributes(
		attribute.String("size", strconv.Itoa(size)),
		attribute.Bool("animated", animated),
	))
}
