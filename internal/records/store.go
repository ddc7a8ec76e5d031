// Package records holds the patient, doctor and appointment collections.
//
// Each collection is loaded once from the backing store, or from the seed
// dataset when its key is absent, and written through as a whole after
// every mutation. Appointments reference patients and doctors by id
// without enforcement; lookups of dangling ids resolve to UnknownName.
package records

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/clinicdesk/internal/domain"
	"github.com/roach88/clinicdesk/internal/kv"
	"github.com/roach88/clinicdesk/internal/metrics"
)

// UnknownName is shown for a patient or doctor id that no longer resolves.
const UnknownName = "Unknown"

type (
	// Patients is the patient collection.
	Patients = Collection[domain.Patient, domain.PatientFields, domain.PatientPatch]
	// Doctors is the doctor collection.
	Doctors = Collection[domain.Doctor, domain.DoctorFields, domain.DoctorPatch]
	// Appointments is the appointment collection.
	Appointments = Collection[domain.Appointment, domain.AppointmentFields, domain.AppointmentPatch]
)

// Options configures Open. IDs and Schema are required.
type Options struct {
	IDs     IDSource
	Schema  *domain.Schema
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

type options struct {
	backend kv.Backend
	ids     IDSource
	schema  *domain.Schema
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Store owns the three collections.
type Store struct {
	Patients     *Patients
	Doctors      *Doctors
	Appointments *Appointments

	logger *slog.Logger
}

// Open loads every collection from backend.
func Open(ctx context.Context, backend kv.Backend, opts Options) (*Store, error) {
	if opts.IDs == nil {
		return nil, fmt.Errorf("records: id source is required")
	}
	if opts.Schema == nil {
		return nil, fmt.Errorf("records: schema is required")
	}
	o := &options{
		backend: backend,
		ids:     opts.IDs,
		schema:  opts.Schema,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	seed, err := domain.LoadSeed()
	if err != nil {
		return nil, err
	}

	patients, err := loadCollection[domain.Patient, domain.PatientFields, domain.PatientPatch](
		ctx, kv.KeyPatients, domain.DefPatients, seed.Patients, o)
	if err != nil {
		return nil, err
	}
	doctors, err := loadCollection[domain.Doctor, domain.DoctorFields, domain.DoctorPatch](
		ctx, kv.KeyDoctors, domain.DefDoctors, seed.Doctors, o)
	if err != nil {
		return nil, err
	}
	appointments, err := loadCollection[domain.Appointment, domain.AppointmentFields, domain.AppointmentPatch](
		ctx, kv.KeyAppointments, domain.DefAppointments, seed.Appointments, o)
	if err != nil {
		return nil, err
	}

	return &Store{
		Patients:     patients,
		Doctors:      doctors,
		Appointments: appointments,
		logger:       o.logger,
	}, nil
}

// Departments returns the fixed department list.
func (s *Store) Departments() []string {
	return domain.Departments()
}

// PatientName resolves a patient id to a name, or UnknownName.
func (s *Store) PatientName(id domain.ID) string {
	if p, ok := s.Patients.Get(id); ok {
		return p.Name
	}
	return UnknownName
}

// DoctorName resolves a doctor id to a name, or UnknownName.
func (s *Store) DoctorName(id domain.ID) string {
	if d, ok := s.Doctors.Get(id); ok {
		return d.Name
	}
	return UnknownName
}
