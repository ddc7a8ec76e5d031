package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clinicdesk/internal/domain"
	"github.com/roach88/clinicdesk/internal/kv"
	"github.com/roach88/clinicdesk/internal/testutil"
)

func TestBookAppointment_WithNewPatient(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, kv.NewMemory())
	patients, appointments := s.Patients.Len(), s.Appointments.Len()

	booking, err := s.BookAppointment(ctx,
		domain.AppointmentFields{DoctorID: 1, Date: "2023-11-01", Time: "09:00", Status: domain.StatusScheduled},
		&domain.PatientFields{Name: "New P", Age: 40, Department: "Pediatrics", Contact: "555"},
	)
	require.NoError(t, err)

	require.NotNil(t, booking.Patient)
	assert.Equal(t, patients+1, s.Patients.Len())
	assert.Equal(t, appointments+1, s.Appointments.Len())
	assert.Equal(t, booking.Patient.ID, booking.Appointment.PatientID)
	assert.Equal(t, "New P", s.PatientName(booking.Appointment.PatientID))
	assert.NotEqual(t, booking.Patient.ID, booking.Appointment.ID)
}

func TestBookAppointment_ExistingPatient(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, kv.NewMemory())

	booking, err := s.BookAppointment(ctx,
		domain.AppointmentFields{PatientID: 2, DoctorID: 1, Date: "2023-12-01", Time: "11:00", Status: domain.StatusScheduled},
		nil,
	)
	require.NoError(t, err)

	assert.Nil(t, booking.Patient)
	assert.Equal(t, 2, s.Patients.Len())
	assert.Equal(t, domain.ID(2), booking.Appointment.PatientID)
	assert.Equal(t, 3, s.Appointments.Len())
}

func TestBookAppointment_PatientPhaseFailure(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewFailingBackend(kv.NewMemory())
	s := openTestStore(t, backend)
	backend.FailSet(kv.KeyPatients)

	_, err := s.BookAppointment(ctx,
		domain.AppointmentFields{DoctorID: 1, Date: "2023-11-01", Time: "09:00", Status: domain.StatusScheduled},
		&domain.PatientFields{Name: "New P", Age: 40, Department: "Pediatrics", Contact: "555"},
	)

	var be *BookingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, PhasePatient, be.Phase)
	assert.Nil(t, be.Patient)
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, 2, s.Patients.Len())
	assert.Equal(t, 2, s.Appointments.Len())
}

func TestBookAppointment_AppointmentPhaseFailureLeavesPatient(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewFailingBackend(kv.NewMemory())
	s := openTestStore(t, backend)
	backend.FailSet(kv.KeyAppointments)

	_, err := s.BookAppointment(ctx,
		domain.AppointmentFields{DoctorID: 1, Date: "2023-11-01", Time: "09:00", Status: domain.StatusScheduled},
		&domain.PatientFields{Name: "Orphan", Age: 40, Department: "Pediatrics", Contact: "555"},
	)

	var be *BookingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, PhaseAppointment, be.Phase)
	require.NotNil(t, be.Patient)
	assert.Contains(t, err.Error(), "already registered")

	// Not rolled back.
	orphan, ok := s.Patients.Get(be.Patient.ID)
	require.True(t, ok)
	assert.Equal(t, "Orphan", orphan.Name)
	assert.Equal(t, 3, s.Patients.Len())
	assert.Equal(t, 2, s.Appointments.Len())
}

func TestRebookAppointment(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, kv.NewMemory())

	booking, err := s.RebookAppointment(ctx, 1,
		domain.AppointmentFields{PatientID: 2, DoctorID: 2, Date: "2023-10-05", Time: "3:00 PM", Status: domain.StatusCompleted}.Patch(),
		nil,
	)
	require.NoError(t, err)

	want := domain.Appointment{ID: 1, PatientID: 2, DoctorID: 2, Date: "2023-10-05", Time: "3:00 PM", Status: domain.StatusCompleted}
	assert.Equal(t, want, booking.Appointment)
	got, _ := s.Appointments.Get(1)
	assert.Equal(t, want, got)
	assert.Equal(t, 2, s.Appointments.Len())
}

func TestRebookAppointment_WithNewPatient(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, kv.NewMemory())

	booking, err := s.RebookAppointment(ctx, 2,
		domain.AppointmentFields{DoctorID: 1, Date: "2023-10-06", Time: "10:00", Status: domain.StatusScheduled}.Patch(),
		&domain.PatientFields{Name: "Walk In", Age: 22, Department: "Neurology", Contact: "777"},
	)
	require.NoError(t, err)

	require.NotNil(t, booking.Patient)
	assert.Equal(t, booking.Patient.ID, booking.Appointment.PatientID)
	assert.Equal(t, 3, s.Patients.Len())
	assert.Equal(t, 2, s.Appointments.Len())
}

func TestRebookAppointment_KeepsUnpatchedFields(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, kv.NewMemory())
	before, ok := s.Appointments.Get(2)
	require.True(t, ok)

	date := "2023-10-09"
	booking, err := s.RebookAppointment(ctx, 2, domain.AppointmentPatch{Date: &date}, nil)
	require.NoError(t, err)

	want := before
	want.Date = date
	assert.Equal(t, want, booking.Appointment)
}

func TestRebookAppointment_MissingIDWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, kv.NewMemory())
	patients, appointments := s.Patients.List(), s.Appointments.List()

	booking, err := s.RebookAppointment(ctx, 99,
		domain.AppointmentFields{DoctorID: 1, Date: "2023-10-06", Time: "10:00", Status: domain.StatusScheduled}.Patch(),
		&domain.PatientFields{Name: "Walk In", Age: 22, Department: "Neurology", Contact: "777"},
	)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, Booking{}, booking)
	assert.Equal(t, patients, s.Patients.List())
	assert.Equal(t, appointments, s.Appointments.List())
}
