package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/clinicdesk/internal/desk"
	"github.com/roach88/clinicdesk/internal/domain"
)

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show record counts and the access level of the current role",
		Args:  cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(_ context.Context, a *app, _ []string) error {
			dash, err := a.desk.Dashboard()
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(dash, func(w io.Writer) {
				fmt.Fprintf(w, "Welcome, %s (%s)\n", dash.Username, dash.Role.Title())
				fmt.Fprintf(w, "Patients: %d  Doctors: %d  Appointments: %d\n", dash.Patients, dash.Doctors, dash.Appointments)
				fmt.Fprintln(w, dash.Banner)
			})
		}),
	}
}

// NewDepartmentsCommand creates the departments command.
func NewDepartmentsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List the hospital departments",
		Args:  cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(_ context.Context, a *app, _ []string) error {
			deps := a.desk.Departments()
			return a.out.Success(deps, func(w io.Writer) {
				for _, d := range deps {
					fmt.Fprintln(w, d)
				}
			})
		}),
	}
}

// NewPatientsCommand creates the patients command group.
func NewPatientsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "List and manage patients",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List patients",
		Args:  cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(_ context.Context, a *app, _ []string) error {
			list, err := a.desk.Patients()
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(list, func(w io.Writer) {
				rows := make([][]string, 0, len(list))
				for _, p := range list {
					rows = append(rows, []string{p.ID.String(), p.Name, strconv.Itoa(p.Age), p.Department, p.Contact})
				}
				writeTable(w, []string{"ID", "NAME", "AGE", "DEPARTMENT", "CONTACT"}, rows)
			})
		}),
	})

	var form desk.PatientForm
	add := &cobra.Command{
		Use:     "add",
		Short:   "Register a patient",
		Example: `  clinicdesk patients add --name "Sam Lee" --age 52 --department Orthopedics --contact 555-0199`,
		Args:    cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			p, err := a.desk.RegisterPatient(ctx, form)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(p, func(w io.Writer) {
				fmt.Fprintf(w, "Registered patient %s (%s).\n", p.Name, p.ID)
			})
		}),
	}
	patientFlags(add.Flags(), &form, "")
	cmd.AddCommand(add)

	var edit desk.PatientEdit
	var editForm desk.PatientForm
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a patient's details (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, args []string) error {
			p, err := a.desk.EditPatient(ctx, args[0], edit)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(p, func(w io.Writer) {
				fmt.Fprintf(w, "Updated patient %s (%s).\n", p.Name, p.ID)
			})
		}),
	}
	patientFlags(editCmd.Flags(), &editForm, "")
	editCmd.PreRun = func(cmd *cobra.Command, _ []string) {
		flags := cmd.Flags()
		edit = desk.PatientEdit{
			Name:       changed(flags, "name", editForm.Name),
			Age:        changed(flags, "age", editForm.Age),
			Department: changed(flags, "department", editForm.Department),
			Contact:    changed(flags, "contact", editForm.Contact),
		}
	}
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, args []string) error {
			if err := a.desk.DeletePatient(ctx, args[0]); err != nil {
				return a.fail(err)
			}
			return a.out.Success(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted patient %s.\n", args[0])
			})
		}),
	})

	return cmd
}

// NewDoctorsCommand creates the doctors command group.
func NewDoctorsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "List and manage doctors",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List doctors",
		Args:  cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(_ context.Context, a *app, _ []string) error {
			list, err := a.desk.Doctors()
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(list, func(w io.Writer) {
				rows := make([][]string, 0, len(list))
				for _, d := range list {
					rows = append(rows, []string{d.ID.String(), d.Name, d.Specialty, d.Department, d.Contact})
				}
				writeTable(w, []string{"ID", "NAME", "SPECIALTY", "DEPARTMENT", "CONTACT"}, rows)
			})
		}),
	})

	var form desk.DoctorForm
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a doctor (admin only)",
		Args:  cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			d, err := a.desk.AddDoctor(ctx, form)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(d, func(w io.Writer) {
				fmt.Fprintf(w, "Added doctor %s (%s).\n", d.Name, d.ID)
			})
		}),
	}
	doctorFlags(add.Flags(), &form)
	cmd.AddCommand(add)

	var edit desk.DoctorEdit
	var editForm desk.DoctorForm
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a doctor's details (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, args []string) error {
			d, err := a.desk.EditDoctor(ctx, args[0], edit)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(d, func(w io.Writer) {
				fmt.Fprintf(w, "Updated doctor %s (%s).\n", d.Name, d.ID)
			})
		}),
	}
	doctorFlags(editCmd.Flags(), &editForm)
	editCmd.PreRun = func(cmd *cobra.Command, _ []string) {
		flags := cmd.Flags()
		edit = desk.DoctorEdit{
			Name:       changed(flags, "name", editForm.Name),
			Specialty:  changed(flags, "specialty", editForm.Specialty),
			Department: changed(flags, "department", editForm.Department),
			Contact:    changed(flags, "contact", editForm.Contact),
		}
	}
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a doctor (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, args []string) error {
			if err := a.desk.DeleteDoctor(ctx, args[0]); err != nil {
				return a.fail(err)
			}
			return a.out.Success(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted doctor %s.\n", args[0])
			})
		}),
	})

	return cmd
}

// NewAppointmentsCommand creates the appointments command group.
func NewAppointmentsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List and manage appointments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List appointments with patient and doctor names",
		Args:  cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(_ context.Context, a *app, _ []string) error {
			list, err := a.desk.Appointments()
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(list, func(w io.Writer) {
				rows := make([][]string, 0, len(list))
				for _, r := range list {
					rows = append(rows, []string{r.ID.String(), r.PatientName, r.DoctorName, r.Date, r.Time, string(r.Status)})
				}
				writeTable(w, []string{"ID", "PATIENT", "DOCTOR", "DATE", "TIME", "STATUS"}, rows)
			})
		}),
	})

	var bookForm desk.AppointmentForm
	var bookNew desk.PatientForm
	book := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment, optionally registering a new patient",
		Example: `  clinicdesk appointments book --patient 1 --doctor 2 --date 2023-11-01 --time "9:00 AM"
  clinicdesk appointments book --doctor 1 --date 2023-11-01 --time 09:00 \
    --new-patient-name "New P" --new-patient-age 40 \
    --new-patient-department Pediatrics --new-patient-contact 555`,
		Args: cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			b, err := a.desk.BookAppointment(ctx, bookForm)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(b, func(w io.Writer) {
				if b.Patient != nil {
					fmt.Fprintf(w, "Registered patient %s (%s).\n", b.Patient.Name, b.Patient.ID)
				}
				fmt.Fprintf(w, "Booked appointment %s.\n", b.Appointment.ID)
			})
		}),
	}
	appointmentFlags(book, &bookForm, &bookNew)
	cmd.AddCommand(book)

	var editForm desk.AppointmentForm
	var editNew desk.PatientForm
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace an appointment's details through the booking form",
		Args:  cobra.ExactArgs(1),
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, args []string) error {
			b, err := a.desk.EditAppointment(ctx, args[0], editForm)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(b, func(w io.Writer) {
				if b.Patient != nil {
					fmt.Fprintf(w, "Registered patient %s (%s).\n", b.Patient.Name, b.Patient.ID)
				}
				fmt.Fprintf(w, "Updated appointment %s.\n", b.Appointment.ID)
			})
		}),
	}
	appointmentFlags(edit, &editForm, &editNew)
	cmd.AddCommand(edit)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an appointment (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, args []string) error {
			if err := a.desk.DeleteAppointment(ctx, args[0]); err != nil {
				return a.fail(err)
			}
			return a.out.Success(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted appointment %s.\n", args[0])
			})
		}),
	})

	return cmd
}

func patientFlags(flags *pflag.FlagSet, form *desk.PatientForm, prefix string) {
	flags.StringVar(&form.Name, prefix+"name", "", "patient name")
	flags.StringVar(&form.Age, prefix+"age", "", "patient age in years")
	flags.StringVar(&form.Department, prefix+"department", "", "department ("+departmentList()+")")
	flags.StringVar(&form.Contact, prefix+"contact", "", "contact number")
}

func doctorFlags(flags *pflag.FlagSet, form *desk.DoctorForm) {
	flags.StringVar(&form.Name, "name", "", "doctor name")
	flags.StringVar(&form.Specialty, "specialty", "", "specialty")
	flags.StringVar(&form.Department, "department", "", "department ("+departmentList()+")")
	flags.StringVar(&form.Contact, "contact", "", "contact number")
}

// appointmentFlags binds the booking form. Setting any --new-patient-*
// flag books for a new patient instead of --patient.
func appointmentFlags(cmd *cobra.Command, form *desk.AppointmentForm, newPatient *desk.PatientForm) {
	flags := cmd.Flags()
	flags.StringVar(&form.PatientID, "patient", "", "existing patient id")
	flags.StringVar(&form.DoctorID, "doctor", "", "doctor id")
	flags.StringVar(&form.Date, "date", "", "date (YYYY-MM-DD)")
	flags.StringVar(&form.Time, "time", "", "time")
	flags.StringVar(&form.Status, "status", "", "status ("+statusList()+"); booking defaults to "+string(domain.StatusScheduled)+", edit keeps the stored one")
	patientFlags(flags, newPatient, "new-patient-")

	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		form.NewPatient = nil
		for _, name := range []string{"new-patient-name", "new-patient-age", "new-patient-department", "new-patient-contact"} {
			if cmd.Flags().Changed(name) {
				form.NewPatient = newPatient
				return
			}
		}
	}
}

// changed returns &value when the flag was set on the command line.
func changed(flags *pflag.FlagSet, name, value string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}

func departmentList() string {
	return strings.Join(domain.Departments(), ", ")
}

func statusList() string {
	names := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, "|")
}
