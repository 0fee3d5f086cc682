package telemetry

// Config contains the telemetry configuration for one provisioning run.
type Config struct {
	// ServiceName identifies the binary in traces and metrics.
	ServiceName string

	// ServiceVersion is the build version.
	ServiceVersion string

	// Logging contains logging configuration.
	Logging LoggingConfig

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig

	// Tracing contains tracing configuration.
	Tracing TracingConfig
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format specifies the log format (console, json).
	Format string

	// Output specifies where logs are written (stdout, stderr, file path).
	Output string

	// Truncate recreates a file sink empty at open time. The install
	// transcript is per-run, not appended across runs.
	Truncate bool
}

// MetricsConfig configures Prometheus metrics collection.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected at all.
	Enabled bool

	// Namespace is the metric name prefix.
	Namespace string

	// TextfilePath, when set, receives the final metric snapshot in
	// node-exporter textfile-collector format.
	TextfilePath string
}

// TracingConfig configures tracing.
type TracingConfig struct {
	// Enabled controls whether spans are recorded.
	Enabled bool

	// Output is the file that receives exported spans; empty means
	// stderr.
	Output string
}

// DefaultConfig returns the configuration used by a normal install run.
func DefaultConfig() Config {
	return Config{
		ServiceName: "quadify-setup",
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "/var/log/quadify/install.log",
			Truncate: true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "quadify_setup",
		},
	}
}
