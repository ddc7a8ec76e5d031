package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands. Empty backend settings
// fall back to the CLINICDESK_* environment.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	Backend     string
	DBPath      string
	DSN         string
	MetricsFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the clinicdesk CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "clinicdesk",
		Short: "clinicdesk - hospital front desk records",
		Long: `Manage patients, doctors and appointments for a hospital front desk.

The logged-in identity persists between invocations in the same backing
store as the records, so "clinicdesk login" followed by other commands
behaves like one session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "backing store (sqlite|postgres|memory)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "Postgres connection string")
	cmd.PersistentFlags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewSignupCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewDepartmentsCommand(opts))
	cmd.AddCommand(NewPatientsCommand(opts))
	cmd.AddCommand(NewDoctorsCommand(opts))
	cmd.AddCommand(NewAppointmentsCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}
