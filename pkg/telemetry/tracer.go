package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer records one span per pipeline step. Spans go to a local file (or
// stderr), which is enough to reconstruct where a slow or failed install
// spent its time; there is no collector on an appliance.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	config   TracingConfig
}

// NewTracer creates a new tracer with the given configuration.
func NewTracer(cfg TracingConfig, serviceName, serviceVersion string) (*Tracer, error) {
	if !cfg.Enabled {
		return &Tracer{
			provider: sdktrace.NewTracerProvider(),
			tracer:   otel.Tracer(serviceName),
			config:   cfg,
		}, nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	out := os.Stderr
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace output: %w", err)
		}
		out = f
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)

	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer(serviceName),
		config:   cfg,
	}, nil
}

// StepSpan records a completed pipeline step as a span. Steps are
// observed after the fact, so the span start is backdated by the
// measured duration.
func (t *Tracer) StepSpan(ctx context.Context, name string, ordinal int, outcome string, took time.Duration) {
	start := time.Now().Add(-took)
	_, span := t.tracer.Start(ctx, "step."+name,
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.Int("step.ordinal", ordinal),
			attribute.String("step.outcome", outcome),
		),
	)
	if outcome == "failed" {
		span.SetStatus(codes.Error, "step failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// RunSpan records the whole provisioning run as a span.
func (t *Tracer) RunSpan(ctx context.Context, status string, took time.Duration) {
	start := time.Now().Add(-took)
	_, span := t.tracer.Start(ctx, "run",
		trace.WithTimestamp(start),
		trace.WithAttributes(attribute.String("run.status", status)),
	)
	if status == "failed" {
		span.SetStatus(codes.Error, "run failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Shutdown flushes and stops the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}
