package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/prohmpiriya/tenant-service/pkg/config"
)

const (
	metricExportInterval = 15 * time.Second
	serviceNamespace     = "tenancy"
	operationKey         = attribute.Key("tenant.operation")
)

// Config selects the OTLP collector and the share of traces kept
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	CollectorAddr  string
	// SampleRatio in (0,1) samples root spans; anything else keeps every trace
	SampleRatio float64
}

// FromConfig builds a telemetry Config from application settings
func FromConfig(app *config.AppConfig, otelCfg *config.OTelConfig) *Config {
	name := otelCfg.ServiceName
	if name == "" {
		name = app.Name
	}
	return &Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    name,
		ServiceVersion: app.Version,
		Environment:    app.Environment,
		CollectorAddr:  otelCfg.CollectorAddr,
		SampleRatio:    otelCfg.SampleRatio,
	}
}

// Telemetry owns the SDK providers exporting tenant service spans and metrics.
// Both providers are nil when export is disabled.
type Telemetry struct {
	traces  *sdktrace.TracerProvider
	metrics *sdkmetric.MeterProvider
	tracer  trace.Tracer
	meter   metric.Meter
}

var current *Telemetry

// Init installs the process-wide providers. A nil or disabled config falls
// back to the global no-op providers.
func Init(ctx context.Context, cfg *Config) (*Telemetry, error) {
	if cfg == nil || !cfg.Enabled {
		name := "tenant-service"
		if cfg != nil && cfg.ServiceName != "" {
			name = cfg.ServiceName
		}
		current = &Telemetry{tracer: otel.Tracer(name), meter: otel.Meter(name)}
		return current, nil
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.CollectorAddr),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.CollectorAddr),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	res := serviceResource(cfg)
	traces := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)
	metrics := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(metricExportInterval),
		)),
	)

	otel.SetTracerProvider(traces)
	otel.SetMeterProvider(metrics)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	current = &Telemetry{
		traces:  traces,
		metrics: metrics,
		tracer:  traces.Tracer(cfg.ServiceName),
		meter:   metrics.Meter(cfg.ServiceName),
	}
	return current, nil
}

// serviceResource is not merged with resource.Default(), whose schema URL
// differs from semconv v1.27.0.
func serviceResource(cfg *Config) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.ServiceNamespace(serviceNamespace),
		semconv.DeploymentEnvironmentNameKey.String(cfg.Environment),
	)
}

// sampler keeps the caller's decision for propagated traces
func sampler(ratio float64) sdktrace.Sampler {
	if ratio > 0 && ratio < 1 {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
	return sdktrace.ParentBased(sdktrace.AlwaysSample())
}

// Shutdown flushes and stops the providers installed by Init
func Shutdown(ctx context.Context) error {
	if current == nil {
		return nil
	}
	var errs []error
	if current.traces != nil {
		if err := current.traces.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if current.metrics != nil {
		if err := current.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// GetMeter returns the meter tenant metrics are registered on
func GetMeter() metric.Meter {
	if current == nil || current.meter == nil {
		return otel.Meter("noop")
	}
	return current.meter
}

// StartSpan opens a span on the installed tracer. Before Init it returns the
// span already in ctx.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if current == nil || current.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return current.tracer.Start(ctx, name, opts...)
}

// StartOperation opens the span of one tenant service operation, named
// "tenant.<op>".
func StartOperation(ctx context.Context, op string) (context.Context, trace.Span) {
	return StartSpan(ctx, "tenant."+op, trace.WithAttributes(operationKey.String(op)))
}

// TagTenant records which tenant the active operation works on
func TagTenant(ctx context.Context, tenantID int64) {
	trace.SpanFromContext(ctx).SetAttributes(TenantIDAttr(tenantID))
}

// RecordSettingChange adds a setting.changed event to the active span
func RecordSettingChange(ctx context.Context, setting string) {
	trace.SpanFromContext(ctx).AddEvent("setting.changed", trace.WithAttributes(SettingAttr(setting)))
}

// FailOperation marks the active span failed with err
func FailOperation(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the hex trace id in ctx, or "" when there is none
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
