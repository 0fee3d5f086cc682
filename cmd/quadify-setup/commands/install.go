package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/quadify/quadify-setup/pkg/engine"
	"github.com/quadify/quadify-setup/pkg/steps"
	"github.com/quadify/quadify-setup/pkg/stores"
	"github.com/quadify/quadify-setup/pkg/sysops"
	"github.com/quadify/quadify-setup/pkg/telemetry"
	"github.com/quadify/quadify-setup/pkg/ui"
)

// euid is swapped in tests.
var euid = os.Geteuid

// transcriptOutput returns the logging sink for an install run. Without
// root the transcript path under /var/log is not writable; logging goes
// to stderr so the pipeline still starts and the privilege step itself
// reports the missing-superuser failure.
func transcriptOutput(logPath string) string {
	if euid() != 0 {
		return "stderr"
	}
	return logPath
}

func newInstallCommand(version string) *cobra.Command {
	var (
		traceFile string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Run the full provisioning pipeline",
		Long: `Run the full provisioning pipeline against this host.

The pipeline is idempotent: a re-run after a failure (or on an already
provisioned host) skips work that is already done and converges to the
same end state. Command output goes to the transcript log, not the
terminal; the terminal shows one progress line per step.`,
		Example: `  # Full install with built-in defaults
  sudo quadify-setup install

  # Install with a profile override
  sudo quadify-setup install --profile /etc/quadify/profile.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}

			cfg := telemetry.DefaultConfig()
			cfg.ServiceVersion = version
			cfg.Logging.Output = transcriptOutput(p.LogPath)
			cfg.Metrics.TextfilePath = p.MetricsTextfile
			if verbose {
				cfg.Logging.Level = "debug"
			}
			if traceFile != "" {
				cfg.Tracing = telemetry.TracingConfig{Enabled: true, Output: traceFile}
			}

			logger, err := telemetry.NewLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to open transcript log: %w", err)
			}
			runID := uuid.NewString()
			log := logger.WithRunID(runID)

			metrics := telemetry.NewMetrics(cfg.Metrics)
			tracer, err := telemetry.NewTracer(cfg.Tracing, cfg.ServiceName, version)
			if err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}

			ec := &engine.Context{
				User:        p.User,
				InstallRoot: p.InstallRoot,
				Log:         log,
				LogPath:     p.LogPath,
				CmdOutput:   logger.Sink(),
				Stdin:       os.Stdin,
				Stdout:      os.Stdout,
			}

			ctx := cmd.Context()
			recorder, closeStore := openHistory(ctx, p.StateDB, runID, ec, log, noHistory)
			defer closeStore()

			reporter := ui.NewReporter(os.Stdout)
			reporter.Banner(version, p.User, p.LogPath)

			runner := sysops.NewRunner(log, ec.CmdOutput)
			o := engine.New(steps.Build(p, runner), ec,
				engine.WithReporter(reporter),
				engine.WithRecorder(recorder),
				engine.WithObserver(&telemetryObserver{metrics: metrics, tracer: tracer}),
			)
			code := o.Run(ctx)

			if err := metrics.WriteTextfile(); err != nil {
				log.WithError(err).Warn("failed to write metrics textfile")
			}
			if err := tracer.Shutdown(context.WithoutCancel(ctx)); err != nil {
				log.WithError(err).Warn("failed to flush traces")
			}

			if code != 0 {
				return fmt.Errorf("installation failed; transcript at %s", p.LogPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&traceFile, "trace-file", "", "write step spans to this file")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip run-history recording")

	return cmd
}

// openHistory opens the run-history store and registers the run row.
// History is an audit convenience: any failure here degrades to a no-op
// recorder with a warning, never to a failed install.
func openHistory(ctx context.Context, dbPath, runID string, ec *engine.Context, log *telemetry.Logger, disabled bool) (engine.Recorder, func()) {
	if disabled {
		return engine.NopRecorder{}, func() {}
	}

	store, err := stores.NewSQLiteStore(dbPath)
	if err != nil {
		log.WithError(err).Warn("run history unavailable")
		return engine.NopRecorder{}, func() {}
	}
	if err := store.Init(ctx); err != nil {
		log.WithError(err).Warn("run history unavailable")
		return engine.NopRecorder{}, func() {}
	}
	if err := store.Migrate(ctx); err != nil {
		log.WithError(err).Warn("run history unavailable")
		store.Close()
		return engine.NopRecorder{}, func() {}
	}
	run := &stores.Run{
		ID:          runID,
		ProfileUser: ec.User,
		InstallRoot: ec.InstallRoot,
		Status:      string(engine.RunStatusRunning),
		StartedAt:   time.Now().UTC(),
	}
	if err := store.CreateRun(ctx, run); err != nil {
		log.WithError(err).Warn("run history unavailable")
		store.Close()
		return engine.NopRecorder{}, func() {}
	}
	rec := &storeRecorder{store: store, runID: runID, ec: ec, log: log}
	return rec, func() { store.Close() }
}

// storeRecorder persists step events and the run result to the local
// database. Store failures are logged and swallowed.
type storeRecorder struct {
	store *stores.SQLiteStore
	runID string
	ec    *engine.Context
	log   *telemetry.Logger
}

func (r *storeRecorder) StepFinished(ctx context.Context, name string, ordinal int, outcome engine.StepOutcome, detail string, took time.Duration) {
	ev := &stores.StepEvent{
		RunID:      r.runID,
		Ordinal:    ordinal,
		Name:       name,
		Outcome:    string(outcome),
		DurationMS: took.Milliseconds(),
	}
	if detail != "" {
		ev.Detail = &detail
	}
	if err := r.store.AppendStepEvent(ctx, ev); err != nil {
		r.log.WithError(err).Warnf("failed to record step %q", name)
	}
}

func (r *storeRecorder) RunFinished(ctx context.Context, status engine.RunStatus, failedStep string) {
	if err := r.store.FinishRun(ctx, r.runID, string(status), failedStep, r.ec.DetectedAddr); err != nil {
		r.log.WithError(err).Warn("failed to record run result")
	}
}

// telemetryObserver forwards step timings to metrics and tracing.
type telemetryObserver struct {
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
	ordinal int
}

func (t *telemetryObserver) ObserveStep(ctx context.Context, name string, outcome engine.StepOutcome, took time.Duration) {
	t.ordinal++
	t.metrics.StepExecuted(name, string(outcome), took)
	t.tracer.StepSpan(ctx, name, t.ordinal, string(outcome), took)
}

func (t *telemetryObserver) ObserveRun(ctx context.Context, status engine.RunStatus, took time.Duration) {
	t.metrics.RunCompleted(string(status), took)
	t.tracer.RunSpan(ctx, string(status), took)
}
