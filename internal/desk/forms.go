package desk

import (
	"strconv"
	"strings"

	"github.com/roach88/clinicdesk/internal/domain"
)

// PatientForm is the raw input of the patient form.
type PatientForm struct {
	Name       string `json:"name" yaml:"name"`
	Age        string `json:"age" yaml:"age"`
	Department string `json:"department" yaml:"department"`
	Contact    string `json:"contact" yaml:"contact"`
}

func (f PatientForm) blank() bool {
	return isBlank(f.Name) || isBlank(f.Age) || isBlank(f.Department) || isBlank(f.Contact)
}

// fields validates f. missing is the message for an incomplete form.
func (f PatientForm) fields(missing string) (domain.PatientFields, error) {
	if f.blank() {
		return domain.PatientFields{}, required(missing)
	}
	age, err := parseAge(f.Age)
	if err != nil {
		return domain.PatientFields{}, err
	}
	return domain.PatientFields{
		Name:       strings.TrimSpace(f.Name),
		Age:        age,
		Department: strings.TrimSpace(f.Department),
		Contact:    strings.TrimSpace(f.Contact),
	}, nil
}

// PatientEdit carries the fields to change. Nil fields are kept.
type PatientEdit struct {
	Name       *string `json:"name,omitempty" yaml:"name"`
	Age        *string `json:"age,omitempty" yaml:"age"`
	Department *string `json:"department,omitempty" yaml:"department"`
	Contact    *string `json:"contact,omitempty" yaml:"contact"`
}

func (e PatientEdit) patch() (domain.PatientPatch, error) {
	var p domain.PatientPatch
	var err error
	if p.Name, err = keep(e.Name); err != nil {
		return p, err
	}
	if e.Age != nil {
		if isBlank(*e.Age) {
			return p, required(MsgAllFieldsRequired)
		}
		age, err := parseAge(*e.Age)
		if err != nil {
			return p, err
		}
		p.Age = &age
	}
	if p.Department, err = keep(e.Department); err != nil {
		return p, err
	}
	if p.Contact, err = keep(e.Contact); err != nil {
		return p, err
	}
	return p, nil
}

// DoctorForm is the raw input of the doctor form.
type DoctorForm struct {
	Name       string `json:"name" yaml:"name"`
	Specialty  string `json:"specialty" yaml:"specialty"`
	Department string `json:"department" yaml:"department"`
	Contact    string `json:"contact" yaml:"contact"`
}

func (f DoctorForm) fields() (domain.DoctorFields, error) {
	if isBlank(f.Name) || isBlank(f.Specialty) || isBlank(f.Department) || isBlank(f.Contact) {
		return domain.DoctorFields{}, required(MsgAllFieldsRequired)
	}
	return domain.DoctorFields{
		Name:       strings.TrimSpace(f.Name),
		Specialty:  strings.TrimSpace(f.Specialty),
		Department: strings.TrimSpace(f.Department),
		Contact:    strings.TrimSpace(f.Contact),
	}, nil
}

// DoctorEdit carries the fields to change. Nil fields are kept.
type DoctorEdit struct {
	Name       *string `json:"name,omitempty" yaml:"name"`
	Specialty  *string `json:"specialty,omitempty" yaml:"specialty"`
	Department *string `json:"department,omitempty" yaml:"department"`
	Contact    *string `json:"contact,omitempty" yaml:"contact"`
}

func (e DoctorEdit) patch() (domain.DoctorPatch, error) {
	var p domain.DoctorPatch
	var err error
	if p.Name, err = keep(e.Name); err != nil {
		return p, err
	}
	if p.Specialty, err = keep(e.Specialty); err != nil {
		return p, err
	}
	if p.Department, err = keep(e.Department); err != nil {
		return p, err
	}
	if p.Contact, err = keep(e.Contact); err != nil {
		return p, err
	}
	return p, nil
}

// AppointmentForm is the raw input of the booking form. When NewPatient is
// set the patient is registered first and PatientID is ignored.
type AppointmentForm struct {
	PatientID  string       `json:"patientId" yaml:"patientId"`
	DoctorID   string       `json:"doctorId" yaml:"doctorId"`
	Date       string       `json:"date" yaml:"date"`
	Time       string       `json:"time" yaml:"time"`
	Status     string       `json:"status" yaml:"status"`
	NewPatient *PatientForm `json:"newPatient,omitempty" yaml:"newPatient"`
}

// fields validates f. A blank status is left empty for the caller to
// default or keep.
func (f AppointmentForm) fields() (domain.AppointmentFields, *domain.PatientFields, error) {
	if isBlank(f.DoctorID) || isBlank(f.Date) || isBlank(f.Time) {
		return domain.AppointmentFields{}, nil, required(MsgFillRequiredFields)
	}
	if f.NewPatient == nil && isBlank(f.PatientID) {
		return domain.AppointmentFields{}, nil, required(MsgFillRequiredFields)
	}

	var newPatient *domain.PatientFields
	if f.NewPatient != nil {
		np, err := f.NewPatient.fields(MsgFillNewPatientDetails)
		if err != nil {
			return domain.AppointmentFields{}, nil, err
		}
		newPatient = &np
	}

	var appt domain.AppointmentFields
	if newPatient == nil {
		id, err := domain.ParseID(strings.TrimSpace(f.PatientID))
		if err != nil {
			return domain.AppointmentFields{}, nil, invalid("Invalid patient id %q.", f.PatientID)
		}
		appt.PatientID = id
	}
	doctor, err := domain.ParseID(strings.TrimSpace(f.DoctorID))
	if err != nil {
		return domain.AppointmentFields{}, nil, invalid("Invalid doctor id %q.", f.DoctorID)
	}
	appt.DoctorID = doctor

	if !isBlank(f.Status) {
		st, err := domain.ParseStatus(strings.TrimSpace(f.Status))
		if err != nil {
			return domain.AppointmentFields{}, nil, invalid("Unknown status %q.", f.Status)
		}
		appt.Status = st
	}
	appt.Date = strings.TrimSpace(f.Date)
	appt.Time = strings.TrimSpace(f.Time)
	return appt, newPatient, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// keep returns the trimmed value of s, rejecting a blank replacement.
func keep(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	if isBlank(*s) {
		return nil, required(MsgAllFieldsRequired)
	}
	v := strings.TrimSpace(*s)
	return &v, nil
}

func parseAge(s string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || age < 0 {
		return 0, invalid("Age must be a whole number.")
	}
	return age, nil
}

func parseRef(kind, ref string) (domain.ID, error) {
	id, err := domain.ParseID(strings.TrimSpace(ref))
	if err != nil {
		return 0, invalid("Invalid %s id %q.", kind, ref)
	}
	return id, nil
}
