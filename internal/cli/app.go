package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/clinicdesk/internal/config"
	"github.com/roach88/clinicdesk/internal/desk"
	"github.com/roach88/clinicdesk/internal/kv"
	"github.com/roach88/clinicdesk/internal/kv/postgres"
	"github.com/roach88/clinicdesk/internal/kv/sqlite"
	"github.com/roach88/clinicdesk/internal/metrics"
)

// app is the per-invocation state shared by desk commands.
type app struct {
	cfg     config.Config
	desk    *desk.Desk
	out     *OutputFormatter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// resolveConfig loads the environment and applies flag overrides.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.DSN != "" {
		cfg.PostgresDSN = opts.DSN
	}
	if opts.MetricsFile != "" {
		cfg.MetricsFile = opts.MetricsFile
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openBackend opens the backing store cfg selects.
func openBackend(cfg config.Config) (kv.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		st, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendPostgres:
		st, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendMemory:
		return kv.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func newLogger(cfg config.Config, w io.Writer, traceID string) *slog.Logger {
	level, _ := cfg.SlogLevel()
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("trace_id", traceID)
}

// newApp opens the desk for one command invocation.
func newApp(cmd *cobra.Command, opts *RootOptions) (*app, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	traceID := newTraceID()
	logger := newLogger(cfg, cmd.ErrOrStderr(), traceID)
	m := metrics.New()

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open backing store", err)
	}
	logger.Debug("backing store open", "backend", cfg.Backend)

	d, err := desk.Open(commandContext(cmd), desk.Options{
		Backend: backend,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		backend.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load desk", err)
	}

	return &app{
		cfg:  cfg,
		desk: d,
		out: &OutputFormatter{
			Format:  opts.Format,
			Writer:  cmd.OutOrStdout(),
			Verbose: opts.Verbose,
			TraceID: traceID,
		},
		logger:  logger,
		metrics: m,
	}, nil
}

// close writes metrics, if requested, and releases the desk.
func (a *app) close() {
	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.logger.Error("failed to write metrics", "path", a.cfg.MetricsFile, "error", err)
		}
	}
	if err := a.desk.Close(); err != nil {
		a.logger.Error("error closing backing store", "error", err)
	}
}

// fail reports err and returns the matching exit error. Rejections by the
// desk exit 1; anything else exits 2.
func (a *app) fail(err error) error {
	code := desk.Code(err)
	if desk.Rejected(err) {
		if outErr := a.out.Error(code, err.Error(), nil); outErr != nil {
			return WrapExitError(ExitCommandError, "failed to write output", outErr)
		}
		return reported(WrapExitError(ExitFailure, "rejected", err))
	}
	a.logger.Error("command failed", "code", code, "error", err)
	var details any
	if a.out.Verbose {
		details = err.Error()
	}
	if outErr := a.out.Error(code, "the operation could not be completed", details); outErr != nil {
		return WrapExitError(ExitCommandError, "failed to write output", outErr)
	}
	return reported(WrapExitError(ExitCommandError, "operation failed", err))
}

// newTraceID returns a time-ordered UUIDv7, falling back to v4.
func newTraceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// deskRunE adapts fn to a cobra RunE that opens the desk first and closes
// it afterwards.
func deskRunE(rootOpts *RootOptions, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, rootOpts)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(commandContext(cmd), a, args)
	}
}
