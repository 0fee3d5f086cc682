// Package telemetry provides the observability instrumentation for the
// Quadify provisioner: structured logging (zerolog), step metrics
// (Prometheus, exported in node-exporter textfile format), and
// span-per-step tracing (OpenTelemetry with a stdout exporter).
//
// The logger's primary sink is the install transcript file; every external
// command's output and every step outcome lands there. The operator-facing
// progress lines are not telemetry and live in pkg/ui.
package telemetry
