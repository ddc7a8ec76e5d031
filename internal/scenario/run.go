package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/clinicdesk/internal/access"
	"github.com/roach88/clinicdesk/internal/desk"
	"github.com/roach88/clinicdesk/internal/domain"
	"github.com/roach88/clinicdesk/internal/kv"
	"github.com/roach88/clinicdesk/internal/metrics"
	"github.com/roach88/clinicdesk/internal/records"
	"github.com/roach88/clinicdesk/internal/testutil"
)

// Options configures Run.
type Options struct {
	// Open returns the backend to run against. It is called once at start
	// and again after every restart step, and must reach the same data each
	// time. Nil runs against a fresh in-memory backend.
	Open    func() (kv.Backend, error)
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Counts is the size of each collection.
type Counts struct {
	Patients     int `json:"patients" yaml:"patients"`
	Doctors      int `json:"doctors" yaml:"doctors"`
	Appointments int `json:"appointments" yaml:"appointments"`
}

// Event is the trace entry for one step.
type Event struct {
	Seq      int       `json:"seq"`
	Op       string    `json:"op"`
	Outcome  string    `json:"outcome"`
	Code     string    `json:"code,omitempty"`
	Message  string    `json:"message,omitempty"`
	ID       domain.ID `json:"id,omitempty"`
	Route    string    `json:"route,omitempty"`
	Identity string    `json:"identity,omitempty"`
	Counts   Counts    `json:"counts"`
}

// Result is the outcome of a run.
type Result struct {
	Scenario string
	Trace    []Event
	Failures []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

type runner struct {
	opts    Options
	ids     *testutil.Sequence
	backend *testutil.FailingBackend
	desk    *desk.Desk
	refs    map[string]domain.ID
}

// Run executes s step by step. Record ids come from a deterministic sequence,
// so a scenario always produces the same trace.
//
// Expectation mismatches are collected in Result.Failures. The returned
// error is reserved for problems with the run itself, such as an unbound
// reference or a backend that cannot be opened.
func Run(ctx context.Context, s *Scenario, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Open == nil {
		mem := kv.NewMemory()
		opts.Open = func() (kv.Backend, error) { return mem, nil }
	}

	r := &runner{
		opts: opts,
		ids:  testutil.NewSequence(),
		refs: make(map[string]domain.ID),
	}
	if err := r.open(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if r.desk != nil {
			r.desk.Close()
		}
	}()

	result := &Result{Scenario: s.Name}
	for i, st := range s.Steps {
		seq := i + 1
		ev, err := r.step(ctx, seq, st)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", seq, st.Op, err)
		}
		result.Trace = append(result.Trace, ev)
		if st.Expect != nil {
			result.Failures = append(result.Failures, checkExpect(ev, *st.Expect)...)
		}
	}

	if s.Final != nil {
		got := r.counts()
		if got != *s.Final {
			result.Failures = append(result.Failures,
				fmt.Sprintf("final counts %+v, want %+v", got, *s.Final))
		}
	}
	return result, nil
}

func (r *runner) open(ctx context.Context) error {
	inner, err := r.opts.Open()
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	r.backend = testutil.NewFailingBackend(inner)
	d, err := desk.Open(ctx, desk.Options{
		Backend: r.backend,
		IDs:     r.ids,
		Logger:  r.opts.Logger,
		Metrics: r.opts.Metrics,
	})
	if err != nil {
		inner.Close()
		return fmt.Errorf("open desk: %w", err)
	}
	r.desk = d
	return nil
}

// restart closes the desk and opens a new one over the same data.
// Injected write failures do not survive a restart.
func (r *runner) restart(ctx context.Context) error {
	if err := r.desk.Close(); err != nil {
		return fmt.Errorf("close desk: %w", err)
	}
	r.desk = nil
	return r.open(ctx)
}

func (r *runner) step(ctx context.Context, seq int, st Step) (Event, error) {
	ev := Event{Seq: seq, Op: st.Op}

	id, route, err := r.apply(ctx, st)
	var refErr *refError
	if errors.As(err, &refErr) || (st.Op == OpRestart && err != nil) {
		return Event{}, err
	}

	switch {
	case err == nil:
		ev.Outcome = OutcomeOK
		ev.ID = id
		ev.Route = route
	case desk.Rejected(err):
		ev.Outcome = OutcomeRejected
		ev.Code = desk.Code(err)
		ev.Message = err.Error()
	default:
		ev.Outcome = OutcomeError
		ev.Code = desk.Code(err)
		r.opts.Logger.Warn("scenario step failed", "seq", seq, "op", st.Op, "error", err)
	}

	if who := r.desk.Identity(); who != nil {
		ev.Identity = who.Username + ":" + string(who.Role)
	}
	ev.Counts = r.counts()
	return ev, nil
}

func (r *runner) apply(ctx context.Context, st Step) (domain.ID, string, error) {
	d := r.desk
	switch st.Op {
	case OpLogin:
		_, err := d.Login(ctx, st.Username, st.Password)
		return 0, "", err
	case OpSignup:
		_, err := d.Signup(ctx, st.Username, st.Password, st.Role)
		return 0, "", err
	case OpLogout:
		return 0, "", d.Logout(ctx)
	case OpNavigate:
		to, err := d.Navigate(access.Route(st.Route))
		return 0, string(to), err
	case OpDashboard:
		_, err := d.Dashboard()
		return 0, "", err
	case OpListPatients:
		_, err := d.Patients()
		return 0, "", err
	case OpListDoctors:
		_, err := d.Doctors()
		return 0, "", err
	case OpListAppointments:
		_, err := d.Appointments()
		return 0, "", err

	case OpRegisterPatient:
		p, err := d.RegisterPatient(ctx, *st.Patient)
		if err != nil {
			return 0, "", err
		}
		r.bind(st.As, p.ID)
		return p.ID, "", nil
	case OpEditPatient:
		ref, err := r.resolve(st.Ref)
		if err != nil {
			return 0, "", err
		}
		p, err := d.EditPatient(ctx, ref, *st.PatientEdit)
		return p.ID, "", err
	case OpDeletePatient:
		ref, err := r.resolve(st.Ref)
		if err != nil {
			return 0, "", err
		}
		return 0, "", d.DeletePatient(ctx, ref)

	case OpAddDoctor:
		doc, err := d.AddDoctor(ctx, *st.Doctor)
		if err != nil {
			return 0, "", err
		}
		r.bind(st.As, doc.ID)
		return doc.ID, "", nil
	case OpEditDoctor:
		ref, err := r.resolve(st.Ref)
		if err != nil {
			return 0, "", err
		}
		doc, err := d.EditDoctor(ctx, ref, *st.DoctorEdit)
		return doc.ID, "", err
	case OpDeleteDoctor:
		ref, err := r.resolve(st.Ref)
		if err != nil {
			return 0, "", err
		}
		return 0, "", d.DeleteDoctor(ctx, ref)

	case OpBookAppointment, OpEditAppointment:
		form, err := r.resolveForm(*st.Appointment)
		if err != nil {
			return 0, "", err
		}
		var b records.Booking
		if st.Op == OpBookAppointment {
			b, err = d.BookAppointment(ctx, form)
		} else {
			ref, rerr := r.resolve(st.Ref)
			if rerr != nil {
				return 0, "", rerr
			}
			b, err = d.EditAppointment(ctx, ref, form)
		}
		if b.Patient != nil {
			r.bind(st.AsPatient, b.Patient.ID)
		}
		if err != nil {
			return 0, "", err
		}
		r.bind(st.As, b.Appointment.ID)
		return b.Appointment.ID, "", nil
	case OpDeleteAppointment:
		ref, err := r.resolve(st.Ref)
		if err != nil {
			return 0, "", err
		}
		return 0, "", d.DeleteAppointment(ctx, ref)

	case OpRestart:
		return 0, "", r.restart(ctx)
	case OpFailWrites:
		r.backend.FailSet(st.Key)
		return 0, "", nil
	case OpHeal:
		r.backend.Heal()
		return 0, "", nil
	}
	return 0, "", fmt.Errorf("unknown op %q", st.Op)
}

type refError struct {
	name string
}

func (e *refError) Error() string {
	return fmt.Sprintf("reference %q is not bound", e.name)
}

func (r *runner) bind(name string, id domain.ID) {
	if name != "" {
		r.refs[name] = id
	}
}

// resolve turns "$name" into the bound id. Other values pass through.
func (r *runner) resolve(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, "$")
	if !ok {
		return ref, nil
	}
	id, ok := r.refs[name]
	if !ok {
		return "", &refError{name: name}
	}
	return id.String(), nil
}

func (r *runner) resolveForm(f desk.AppointmentForm) (desk.AppointmentForm, error) {
	var err error
	if f.PatientID, err = r.resolve(f.PatientID); err != nil {
		return f, err
	}
	if f.DoctorID, err = r.resolve(f.DoctorID); err != nil {
		return f, err
	}
	return f, nil
}

func (r *runner) counts() Counts {
	recs := r.desk.Records()
	return Counts{
		Patients:     recs.Patients.Len(),
		Doctors:      recs.Doctors.Len(),
		Appointments: recs.Appointments.Len(),
	}
}

func checkExpect(ev Event, want Expect) []string {
	var failures []string
	if want.Outcome != ev.Outcome {
		failures = append(failures, fmt.Sprintf("step %d (%s): outcome %q, want %q", ev.Seq, ev.Op, ev.Outcome, want.Outcome))
	}
	if want.Code != "" && want.Code != ev.Code {
		failures = append(failures, fmt.Sprintf("step %d (%s): code %q, want %q", ev.Seq, ev.Op, ev.Code, want.Code))
	}
	if want.Message != "" && want.Message != ev.Message {
		failures = append(failures, fmt.Sprintf("step %d (%s): message %q, want %q", ev.Seq, ev.Op, ev.Message, want.Message))
	}
	return failures
}
