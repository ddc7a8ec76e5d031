package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/clinicdesk/internal/domain"
)

// Phase names a step of a booking.
type Phase string

const (
	PhasePatient     Phase = "patient"
	PhaseAppointment Phase = "appointment"
)

// ErrNotFound is returned when an operation names a record that does not
// exist and has no no-op meaning.
var ErrNotFound = errors.New("record not found")

// Booking is the outcome of a successful booking.
// Patient is set only when a new patient was registered.
type Booking struct {
	Patient     *domain.Patient
	Appointment domain.Appointment
}

// BookingError reports which phase of a booking failed.
//
// When Phase is PhaseAppointment and Patient is non-nil, the patient was
// registered and persisted but no appointment references it. Nothing is
// rolled back; the caller decides whether to remove it.
type BookingError struct {
	Phase   Phase
	Patient *domain.Patient
	Err     error
}

func (e *BookingError) Error() string {
	if e.Patient != nil {
		return fmt.Sprintf("booking failed in %s phase (patient %d already registered): %v", e.Phase, e.Patient.ID, e.Err)
	}
	return fmt.Sprintf("booking failed in %s phase: %v", e.Phase, e.Err)
}

func (e *BookingError) Unwrap() error { return e.Err }

// BookAppointment creates an appointment. When newPatient is non-nil the
// patient is registered first and the appointment references its id.
//
// The two writes are independent: a failure in the second leaves the new
// patient in place and is reported as a BookingError.
func (s *Store) BookAppointment(ctx context.Context, appt domain.AppointmentFields, newPatient *domain.PatientFields) (Booking, error) {
	var booking Booking
	if newPatient != nil {
		p, err := s.registerForBooking(ctx, *newPatient)
		if err != nil {
			return Booking{}, err
		}
		booking.Patient = &p
		appt.PatientID = p.ID
	}

	a, err := s.Appointments.Add(ctx, appt)
	if err != nil {
		return booking, &BookingError{Phase: PhaseAppointment, Patient: booking.Patient, Err: err}
	}
	booking.Appointment = a
	return booking, nil
}

// RebookAppointment merges patch over the appointment with id, optionally
// registering a new patient first, with the same phase semantics as
// BookAppointment. Nil patch fields keep their stored values. An absent id
// fails with ErrNotFound before anything is written.
func (s *Store) RebookAppointment(ctx context.Context, id domain.ID, patch domain.AppointmentPatch, newPatient *domain.PatientFields) (Booking, error) {
	if _, ok := s.Appointments.Get(id); !ok {
		return Booking{}, fmt.Errorf("rebook appointment %d: %w", id, ErrNotFound)
	}

	var booking Booking
	if newPatient != nil {
		p, err := s.registerForBooking(ctx, *newPatient)
		if err != nil {
			return Booking{}, err
		}
		booking.Patient = &p
		patch.PatientID = &p.ID
	}

	if err := s.Appointments.Update(ctx, id, patch); err != nil {
		return booking, &BookingError{Phase: PhaseAppointment, Patient: booking.Patient, Err: err}
	}
	a, ok := s.Appointments.Get(id)
	if !ok {
		return booking, &BookingError{Phase: PhaseAppointment, Patient: booking.Patient, Err: fmt.Errorf("appointment %d: %w", id, ErrNotFound)}
	}
	booking.Appointment = a
	return booking, nil
}

func (s *Store) registerForBooking(ctx context.Context, fields domain.PatientFields) (domain.Patient, error) {
	p, err := s.Patients.Add(ctx, fields)
	if err != nil {
		return domain.Patient{}, &BookingError{Phase: PhasePatient, Err: err}
	}
	s.logger.Debug("patient registered for booking", "patient_id", p.ID)
	return p, nil
}
