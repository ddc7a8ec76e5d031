package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/clinicdesk/internal/kv"
	"github.com/roach88/clinicdesk/internal/kv/sqlite"
	"github.com/roach88/clinicdesk/internal/metrics"
	"github.com/roach88/clinicdesk/internal/scenario"
)

// ScenarioOptions holds flags for the scenario command.
type ScenarioOptions struct {
	*RootOptions
	Filter string // scenario name glob
	Trace  bool   // print the trace of every scenario
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string           `json:"name"`
	Pass   bool             `json:"pass"`
	Errors []string         `json:"errors,omitempty"`
	Trace  []scenario.Event `json:"trace,omitempty"`
}

// ScenarioSummary holds the overall result.
type ScenarioSummary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenarioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenario <file-or-dir>",
		Short: "Replay scripted desk sessions",
		Long: `Replay scripted desk sessions from YAML files.

Each scenario runs against its own fresh backing store with deterministic
record ids. By default that store is in memory; with --backend sqlite each
scenario gets a temporary database file instead. The configured database
is never touched.

Exit codes:
  0 - all scenarios passed
  1 - one or more scenarios failed
  2 - command error (unreadable path, malformed scenario)`,
		Example: `  clinicdesk scenario ./scenarios
  clinicdesk scenario ./scenarios/staff_booking.yaml --trace --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name matches this glob")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "include each scenario's trace in the output")

	return cmd
}

func runScenarios(cmd *cobra.Command, opts *ScenarioOptions, path string) error {
	files, err := findScenarioFiles(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	var tmpDir string
	switch opts.Backend {
	case "", "memory":
	case "sqlite":
		tmpDir, err = os.MkdirTemp("", "clinicdesk-scenario-")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create temp dir", err)
		}
		defer os.RemoveAll(tmpDir)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios run on memory or sqlite, not %q", opts.Backend))
	}

	traceID := newTraceID()
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).With("trace_id", traceID)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose, TraceID: traceID}
	m := metrics.New()

	summary := ScenarioSummary{Scenarios: []ScenarioResult{}}
	for _, file := range files {
		s, err := scenario.Load(file)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", file), err)
		}
		if opts.Filter != "" {
			ok, err := filepath.Match(opts.Filter, s.Name)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid filter pattern", err)
			}
			if !ok {
				continue
			}
		}

		runOpts := scenario.Options{Logger: logger.With("scenario", s.Name), Metrics: m}
		if tmpDir != "" {
			dbPath := filepath.Join(tmpDir, s.Name+".db")
			runOpts.Open = func() (kv.Backend, error) {
				st, err := sqlite.Open(dbPath)
				if err != nil {
					return nil, err
				}
				return st, nil
			}
		}

		result, err := scenario.Run(commandContext(cmd), s, runOpts)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s", s.Name), err)
		}
		sr := ScenarioResult{Name: s.Name, Pass: result.Passed(), Errors: result.Failures}
		if opts.Trace {
			sr.Trace = result.Trace
		}
		summary.Scenarios = append(summary.Scenarios, sr)
		summary.Total++
		if sr.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	if opts.MetricsFile != "" {
		if err := m.WriteTextfile(opts.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "path", opts.MetricsFile, "error", err)
		}
	}

	if err := out.Success(summary, func(w io.Writer) { writeSummary(w, summary, opts.Trace) }); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if summary.Failed > 0 {
		return reported(NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", summary.Failed, summary.Total)))
	}
	return nil
}

func writeSummary(w io.Writer, summary ScenarioSummary, withTrace bool) {
	if summary.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, sr := range summary.Scenarios {
		status := "PASS"
		if !sr.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s %s\n", status, sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
		if withTrace {
			for _, ev := range sr.Trace {
				line := fmt.Sprintf("    #%d %s %s", ev.Seq, ev.Op, ev.Outcome)
				if ev.Code != "" {
					line += " " + ev.Code
				}
				fmt.Fprintln(w, line)
			}
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)
}

// findScenarioFiles returns path itself, or every .yaml/.yml file in it.
func findScenarioFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
