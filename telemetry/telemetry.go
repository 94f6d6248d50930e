// Package telemetry provides the parallel executor's observability
// surface: a counter of node executions by outcome, a histogram of node
// execution duration, a counter of items emitted or dropped-absent per
// edge, and a gauge of current queue depth per edge. Metrics are exported
// via an OpenTelemetry meter backed by a Prometheus registry.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace"

	promclient "github.com/prometheus/client_golang/prometheus"
)

const serviceName = "dflow"

// Provider owns the meter used by every node/queue metric the parallel
// executor records.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	tracer        trace.Tracer

	nodeExecutions metric.Int64Counter
	nodeDuration   metric.Float64Histogram
	edgeItems      metric.Int64Counter
	queueDepth     metric.Int64UpDownCounter
}

// Config configures a Provider.
type Config struct {
	// Registerer is the Prometheus registry metrics are exported to. If
	// nil, promclient.DefaultRegisterer is used.
	Registerer promclient.Registerer
}

// NewProvider builds a Provider backed by a Prometheus exporter and
// registers the four instruments this runtime records against.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", serviceName)))
	if err != nil {
		return nil, fmt.Errorf("telemetry: building resource: %w", err)
	}

	exporterOpts := []prometheus.Option{}
	if cfg.Registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(cfg.Registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: building prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	meter := meterProvider.Meter(serviceName)

	p := &Provider{
		meterProvider: meterProvider,
		meter:         meter,
		tracer:        trace.NewNoopTracerProvider().Tracer(serviceName),
	}

	if p.nodeExecutions, err = meter.Int64Counter("dflow.node.executions",
		metric.WithDescription("node executions, tagged by outcome")); err != nil {
		return nil, err
	}
	if p.nodeDuration, err = meter.Float64Histogram("dflow.node.duration_ms",
		metric.WithDescription("node execution duration in milliseconds")); err != nil {
		return nil, err
	}
	if p.edgeItems, err = meter.Int64Counter("dflow.edge.items",
		metric.WithDescription("items observed per edge, tagged emitted/dropped-absent")); err != nil {
		return nil, err
	}
	if p.queueDepth, err = meter.Int64UpDownCounter("dflow.edge.queue_depth",
		metric.WithDescription("current depth of a per-edge bounded queue")); err != nil {
		return nil, err
	}

	return p, nil
}

// Tracer returns the provider's tracer, for call sites that want a span
// around a node execution.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// RecordNodeExecution records one node execution outcome and its duration.
func (p *Provider) RecordNodeExecution(ctx context.Context, nodeName string, durationMS float64, outcome string) {
	attrs := metric.WithAttributes(
		attribute.String("node", nodeName),
		attribute.String("outcome", outcome),
	)
	p.nodeExecutions.Add(ctx, 1, attrs)
	p.nodeDuration.Record(ctx, durationMS, attrs)
}

// RecordEdgeItem records one item crossing (or being dropped-absent at) an
// edge.
func (p *Provider) RecordEdgeItem(ctx context.Context, producer, consumer string, dropped bool) {
	outcome := "emitted"
	if dropped {
		outcome = "dropped_absent"
	}
	p.edgeItems.Add(ctx, 1, metric.WithAttributes(
		attribute.String("producer", producer),
		attribute.String("consumer", consumer),
		attribute.String("outcome", outcome),
	))
}

// SetQueueDepth reports the current depth of the (producer, consumer)
// edge's queue. delta is the signed change since the last report (positive
// on Put, negative on Get), matching the Int64UpDownCounter's API.
func (p *Provider) SetQueueDepth(ctx context.Context, producer, consumer string, delta int64) {
	p.queueDepth.Add(ctx, delta, metric.WithAttributes(
		attribute.String("producer", producer),
		attribute.String("consumer", consumer),
	))
}

// Shutdown flushes and releases the provider's meter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
