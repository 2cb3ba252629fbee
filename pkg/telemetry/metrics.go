package telemetry

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricOpts holds options for creating metrics
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter wraps an OTel counter for easier use
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new counter metric on the global meter
func NewCounter(opts MetricOpts) (*Counter, error) {
	return newCounter(GetMeter(), opts)
}

func newCounter(meter metric.Meter, opts MetricOpts) (*Counter, error) {
	counter, err := meter.Int64Counter(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter}, nil
}

// Add increments the counter by the given value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram wraps an OTel histogram for easier use
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a new histogram metric on the global meter
func NewHistogram(opts MetricOpts) (*Histogram, error) {
	return newHistogram(GetMeter(), opts)
}

func newHistogram(meter metric.Meter, opts MetricOpts) (*Histogram, error) {
	histogram, err := meter.Float64Histogram(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// Record records a value in the histogram
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// TenantMetrics groups the instruments recorded by the tenant workflows
type TenantMetrics struct {
	Created         *Counter
	Updated         *Counter
	SettingsChanged *Counter
	AccessDenied    *Counter
	Resolved        *Counter
	RequestDuration *Histogram
}

// NewTenantMetrics registers tenant instruments on the given meter.
// A nil meter falls back to the global one.
func NewTenantMetrics(meter metric.Meter) (*TenantMetrics, error) {
	if meter == nil {
		meter = GetMeter()
	}

	var (
		m   TenantMetrics
		err error
	)
	if m.Created, err = newCounter(meter, MetricOpts{
		Name:        "tenant.created",
		Description: "Number of tenants created",
		Unit:        "{tenant}",
	}); err != nil {
		return nil, err
	}
	if m.Updated, err = newCounter(meter, MetricOpts{
		Name:        "tenant.updated",
		Description: "Number of tenant updates persisted",
		Unit:        "{tenant}",
	}); err != nil {
		return nil, err
	}
	if m.SettingsChanged, err = newCounter(meter, MetricOpts{
		Name:        "tenant.settings.changed",
		Description: "Number of feature flags flipped by updates",
		Unit:        "{setting}",
	}); err != nil {
		return nil, err
	}
	if m.AccessDenied, err = newCounter(meter, MetricOpts{
		Name:        "tenant.access.denied",
		Description: "Number of tenant operations rejected by authorization",
		Unit:        "{request}",
	}); err != nil {
		return nil, err
	}
	if m.Resolved, err = newCounter(meter, MetricOpts{
		Name:        "tenant.resolution",
		Description: "Tenant resolution outcomes by strategy",
		Unit:        "{request}",
	}); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = newHistogram(meter, MetricOpts{
		Name:        "http.server.request.duration",
		Description: "Duration of HTTP requests",
		Unit:        "s",
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// Common metric attribute keys
const (
	AttrMethod          = "http.method"
	AttrRoute           = "http.route"
	AttrStatusCode      = "http.status_code"
	AttrErrorType       = "error.type"
	AttrTenantID        = "tenant.id"
	AttrSetting         = "tenant.setting"
	AttrResolveStrategy = "tenant.resolve.strategy"
)

func MethodAttr(method string) attribute.KeyValue {
	return attribute.String(AttrMethod, method)
}

func RouteAttr(route string) attribute.KeyValue {
	return attribute.String(AttrRoute, route)
}

func StatusCodeAttr(code int) attribute.KeyValue {
	return attribute.Int(AttrStatusCode, code)
}

func ErrorTypeAttr(errType string) attribute.KeyValue {
	return attribute.String(AttrErrorType, errType)
}

func TenantIDAttr(tenantID int64) attribute.KeyValue {
	return attribute.String(AttrTenantID, strconv.FormatInt(tenantID, 10))
}

func SettingAttr(setting string) attribute.KeyValue {
	return attribute.String(AttrSetting, setting)
}

func ResolveStrategyAttr(strategy string) attribute.KeyValue {
	return attribute.String(AttrResolveStrategy, strategy)
}
