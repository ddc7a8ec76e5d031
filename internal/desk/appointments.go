package desk

import (
	"context"

	"github.com/roach88/clinicdesk/internal/access"
	"github.com/roach88/clinicdesk/internal/domain"
	"github.com/roach88/clinicdesk/internal/records"
)

// AppointmentRow is an appointment joined with display names.
type AppointmentRow struct {
	domain.Appointment
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName"`
}

// Appointments lists every appointment with resolved names. Dangling
// references resolve to records.UnknownName.
func (d *Desk) Appointments() ([]AppointmentRow, error) {
	if _, err := d.enter(access.RouteAppointments); err != nil {
		return nil, err
	}
	list := d.records.Appointments.List()
	rows := make([]AppointmentRow, 0, len(list))
	for _, a := range list {
		rows = append(rows, AppointmentRow{
			Appointment: a,
			PatientName: d.records.PatientName(a.PatientID),
			DoctorName:  d.records.DoctorName(a.DoctorID),
		})
	}
	return rows, nil
}

// BookAppointment books from the form, registering a new patient first
// when the form carries one.
func (d *Desk) BookAppointment(ctx context.Context, form AppointmentForm) (records.Booking, error) {
	if _, err := d.authorize(access.RouteAppointments, access.BookAppointment); err != nil {
		return records.Booking{}, err
	}
	if form.NewPatient != nil {
		if _, err := d.authorize(access.RouteAppointments, access.AddPatient); err != nil {
			return records.Booking{}, err
		}
	}
	appt, newPatient, err := form.fields()
	if err != nil {
		return records.Booking{}, err
	}
	if appt.Status == "" {
		appt.Status = domain.StatusScheduled
	}
	b, err := d.records.BookAppointment(ctx, appt, newPatient)
	if err != nil {
		d.logBookingFailure(err)
		return b, err
	}
	d.logger.Info("appointment booked", "appointment_id", b.Appointment.ID, "patient_id", b.Appointment.PatientID)
	return b, nil
}

// EditAppointment replaces the appointment ref with the form, through the
// same form rules as booking. A blank status keeps the stored one.
func (d *Desk) EditAppointment(ctx context.Context, ref string, form AppointmentForm) (records.Booking, error) {
	if _, err := d.authorize(access.RouteAppointments, access.EditAppointment); err != nil {
		return records.Booking{}, err
	}
	if form.NewPatient != nil {
		if _, err := d.authorize(access.RouteAppointments, access.AddPatient); err != nil {
			return records.Booking{}, err
		}
	}
	id, err := d.existingAppointment(ref)
	if err != nil {
		return records.Booking{}, err
	}
	appt, newPatient, err := form.fields()
	if err != nil {
		return records.Booking{}, err
	}
	patch := appt.Patch()
	if appt.Status == "" {
		patch.Status = nil
	}
	b, err := d.records.RebookAppointment(ctx, id, patch, newPatient)
	if err != nil {
		d.logBookingFailure(err)
		return b, err
	}
	return b, nil
}

// DeleteAppointment removes the appointment ref. Admin only.
func (d *Desk) DeleteAppointment(ctx context.Context, ref string) error {
	if _, err := d.authorize(access.RouteAppointments, access.DeleteAppointment); err != nil {
		return err
	}
	id, err := d.existingAppointment(ref)
	if err != nil {
		return err
	}
	if err := d.records.Appointments.Remove(ctx, id); err != nil {
		return err
	}
	d.logger.Info("appointment deleted", "appointment_id", id)
	return nil
}

func (d *Desk) existingAppointment(ref string) (domain.ID, error) {
	id, err := parseRef("appointment", ref)
	if err != nil {
		return 0, err
	}
	if _, ok := d.records.Appointments.Get(id); !ok {
		return 0, notFound("appointment", ref)
	}
	return id, nil
}

func (d *Desk) logBookingFailure(err error) {
	be, ok := err.(*records.BookingError)
	if !ok {
		d.logger.Error("booking failed", "error", err)
		return
	}
	if be.Patient != nil {
		d.logger.Error("booking failed after patient registration", "phase", be.Phase, "patient_id", be.Patient.ID, "error", be.Err)
		return
	}
	d.logger.Error("booking failed", "phase", be.Phase, "error", be.Err)
}
