// Package scenario replays scripted desk sessions and records a trace of
// every step, for regression tests against golden files.
//
// A scenario is a YAML list of steps. Each step names one desk operation
// and its input. Records created by a step can be bound with "as" and
// referenced by later steps as "$name", so scripts never hard-code ids.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/clinicdesk/internal/desk"
	"github.com/roach88/clinicdesk/internal/kv"
)

// Scenario is one scripted session.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Steps       []Step  `yaml:"steps"`
	Final       *Counts `yaml:"final,omitempty"`
}

// Step is a single operation.
type Step struct {
	Op string `yaml:"op"`

	// As binds the id of the record the step creates.
	As string `yaml:"as,omitempty"`
	// AsPatient binds the id of a patient registered during a booking.
	AsPatient string `yaml:"as_patient,omitempty"`
	// Ref selects an existing record, either a literal id or "$name".
	Ref string `yaml:"ref,omitempty"`

	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Role     string `yaml:"role,omitempty"`
	Route    string `yaml:"route,omitempty"`
	Key      string `yaml:"key,omitempty"`

	Patient     *desk.PatientForm     `yaml:"patient,omitempty"`
	PatientEdit *desk.PatientEdit     `yaml:"patient_edit,omitempty"`
	Doctor      *desk.DoctorForm      `yaml:"doctor,omitempty"`
	DoctorEdit  *desk.DoctorEdit      `yaml:"doctor_edit,omitempty"`
	Appointment *desk.AppointmentForm `yaml:"appointment,omitempty"`
	Expect      *Expect               `yaml:"expect,omitempty"`
}

// Expect checks a step's outcome. Empty fields are not checked.
type Expect struct {
	Outcome string `yaml:"outcome"`
	Code    string `yaml:"code,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// Step operations.
const (
	OpLogin             = "login"
	OpSignup            = "signup"
	OpLogout            = "logout"
	OpNavigate          = "navigate"
	OpDashboard         = "dashboard"
	OpListPatients      = "list_patients"
	OpRegisterPatient   = "register_patient"
	OpEditPatient       = "edit_patient"
	OpDeletePatient     = "delete_patient"
	OpListDoctors       = "list_doctors"
	OpAddDoctor         = "add_doctor"
	OpEditDoctor        = "edit_doctor"
	OpDeleteDoctor      = "delete_doctor"
	OpListAppointments  = "list_appointments"
	OpBookAppointment   = "book_appointment"
	OpEditAppointment   = "edit_appointment"
	OpDeleteAppointment = "delete_appointment"
	OpRestart           = "restart"
	OpFailWrites        = "fail_writes"
	OpHeal              = "heal"
)

// Outcomes recorded in the trace.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var validKeys = []string{kv.KeyUser, kv.KeyPatients, kv.KeyDoctors, kv.KeyAppointments}

// Load reads a scenario file. Unknown fields are an error.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, st := range s.Steps {
		if err := validateStep(st); err != nil {
			return fmt.Errorf("steps[%d] (%s): %w", i, st.Op, err)
		}
	}
	return nil
}

func validateStep(st Step) error {
	switch st.Op {
	case OpLogin, OpSignup, OpLogout, OpDashboard, OpListPatients, OpListDoctors,
		OpListAppointments, OpRestart, OpHeal:
	case OpNavigate:
		// An empty route is the root.
	case OpRegisterPatient:
		if st.Patient == nil {
			return fmt.Errorf("patient is required")
		}
	case OpEditPatient:
		if st.Ref == "" || st.PatientEdit == nil {
			return fmt.Errorf("ref and patient_edit are required")
		}
	case OpAddDoctor:
		if st.Doctor == nil {
			return fmt.Errorf("doctor is required")
		}
	case OpEditDoctor:
		if st.Ref == "" || st.DoctorEdit == nil {
			return fmt.Errorf("ref and doctor_edit are required")
		}
	case OpBookAppointment:
		if st.Appointment == nil {
			return fmt.Errorf("appointment is required")
		}
	case OpEditAppointment:
		if st.Ref == "" || st.Appointment == nil {
			return fmt.Errorf("ref and appointment are required")
		}
	case OpDeletePatient, OpDeleteDoctor, OpDeleteAppointment:
		if st.Ref == "" {
			return fmt.Errorf("ref is required")
		}
	case OpFailWrites:
		if !slices.Contains(validKeys, st.Key) {
			return fmt.Errorf("key must be one of %s", strings.Join(validKeys, ", "))
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op")
	}
	if st.Expect != nil {
		switch st.Expect.Outcome {
		case OutcomeOK, OutcomeRejected, OutcomeError:
		default:
			return fmt.Errorf("expect.outcome must be ok, rejected or error")
		}
	}
	return nil
}
