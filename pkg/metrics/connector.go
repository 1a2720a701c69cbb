// Package metrics decorates a records.Connector with Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	records "github.com/goliatone/go-records"
)

// Option configures the decorator.
type Option func(*config)

type config struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the metric namespace, "records" by default.
func WithNamespace(namespace string) Option {
	return func(cfg *config) {
		if namespace != "" {
			cfg.namespace = namespace
		}
	}
}

// WithBuckets overrides the latency histogram buckets.
func WithBuckets(buckets ...float64) Option {
	return func(cfg *config) {
		if len(buckets) > 0 {
			cfg.buckets = buckets
		}
	}
}

// Connector forwards every call to the wrapped connector and records
// operation counts, latency and affected rows per table.
type Connector struct {
	next records.Connector

	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	rows       *prometheus.CounterVec
}

var _ records.Connector = (*Connector)(nil)

// NewConnector registers the metrics with reg and wraps next. A nil reg
// uses prometheus.DefaultRegisterer.
func NewConnector(next records.Connector, reg prometheus.Registerer, opts ...Option) *Connector {
	cfg := config{
		namespace: "records",
		buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Connector{
		next: next,
		// Labels: table, operation, status (ok, not_found, error)
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "connector",
			Name:      "operations_total",
			Help:      "Connector operations by table, operation and status",
		}, []string{"table", "operation", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Subsystem: "connector",
			Name:      "operation_duration_seconds",
			Help:      "Connector operation latency in seconds",
			Buckets:   cfg.buckets,
		}, []string{"table", "operation"}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "connector",
			Name:      "rows_total",
			Help:      "Records returned or affected by connector operations",
		}, []string{"table", "operation"}),
	}
}

func (c *Connector) observe(table, operation string, start time.Time, rows int, err error) {
	c.latency.WithLabelValues(table, operation).Observe(time.Since(start).Seconds())
	c.operations.WithLabelValues(table, operation, status(err)).Inc()
	if err == nil && rows > 0 {
		c.rows.WithLabelValues(table, operation).Add(float64(rows))
	}
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, records.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (c *Connector) Query(ctx context.Context, scope records.Scope) ([]records.Record, error) {
	start := time.Now()
	out, err := c.next.Query(ctx, scope)
	c.observe(scope.TableName, "query", start, len(out), err)
	return out, err
}

func (c *Connector) Count(ctx context.Context, scope records.Scope) (int, error) {
	start := time.Now()
	count, err := c.next.Count(ctx, scope)
	c.observe(scope.TableName, "count", start, 0, err)
	return count, err
}

func (c *Connector) Select(ctx context.Context, scope records.Scope, keys ...string) ([][]any, error) {
	start := time.Now()
	out, err := c.next.Select(ctx, scope, keys...)
	c.observe(scope.TableName, "select", start, len(out), err)
	return out, err
}

func (c *Connector) UpdateAll(ctx context.Context, scope records.Scope, attrs records.Record) (int, error) {
	start := time.Now()
	count, err := c.next.UpdateAll(ctx, scope, attrs)
	c.observe(scope.TableName, "update_all", start, count, err)
	return count, err
}

func (c *Connector) DeleteAll(ctx context.Context, scope records.Scope) (int, error) {
	start := time.Now()
	count, err := c.next.DeleteAll(ctx, scope)
	c.observe(scope.TableName, "delete_all", start, count, err)
	return count, err
}

func (c *Connector) Create(ctx context.Context, instance *records.Instance) (*records.Instance, error) {
	start := time.Now()
	out, err := c.next.Create(ctx, instance)
	c.observe(instance.Model().TableName(), "create", start, 1, err)
	return out, err
}

func (c *Connector) Update(ctx context.Context, instance *records.Instance) (*records.Instance, error) {
	start := time.Now()
	out, err := c.next.Update(ctx, instance)
	c.observe(instance.Model().TableName(), "update", start, 1, err)
	return out, err
}

func (c *Connector) Delete(ctx context.Context, instance *records.Instance) (*records.Instance, error) {
	start := time.Now()
	out, err := c.next.Delete(ctx, instance)
	c.observe(instance.Model().TableName(), "delete", start, 1, err)
	return out, err
}

// Execute is recorded under the empty table label.
func (c *Connector) Execute(ctx context.Context, query string, bindings ...any) ([]records.Record, error) {
	start := time.Now()
	out, err := c.next.Execute(ctx, query, bindings...)
	c.observe("", "execute", start, len(out), err)
	return out, err
}

// Operations exposes the operation counter, labelled table, operation and
// status.
func (c *Connector) Operations() *prometheus.CounterVec { return c.operations }

// Rows exposes the row counter, labelled table and operation.
func (c *Connector) Rows() *prometheus.CounterVec { return c.rows }
