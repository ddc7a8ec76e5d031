package domain

import "fmt"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists every appointment status in display order.
var Statuses = []Status{StatusScheduled, StatusCompleted, StatusCancelled}

// ParseStatus returns the status named by s.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// Appointment books a patient with a doctor.
// PatientID and DoctorID are not checked against their collections;
// a deleted patient or doctor leaves the reference dangling.
type Appointment struct {
	ID        ID     `json:"id" yaml:"id"`
	PatientID ID     `json:"patientId" yaml:"patientId"`
	DoctorID  ID     `json:"doctorId" yaml:"doctorId"`
	Date      string `json:"date" yaml:"date"`
	Time      string `json:"time" yaml:"time"`
	Status    Status `json:"status" yaml:"status"`
}

// RecordID implements the record constraint used by collections.
func (a Appointment) RecordID() ID { return a.ID }

// AppointmentFields is an appointment without its id.
type AppointmentFields struct {
	PatientID ID     `json:"patientId" yaml:"patientId"`
	DoctorID  ID     `json:"doctorId" yaml:"doctorId"`
	Date      string `json:"date" yaml:"date"`
	Time      string `json:"time" yaml:"time"`
	Status    Status `json:"status" yaml:"status"`
}

// WithID builds the full record.
func (f AppointmentFields) WithID(id ID) Appointment {
	return Appointment{ID: id, PatientID: f.PatientID, DoctorID: f.DoctorID, Date: f.Date, Time: f.Time, Status: f.Status}
}

// AppointmentPatch names the fields to overwrite; nil fields are preserved.
type AppointmentPatch struct {
	PatientID *ID
	DoctorID  *ID
	Date      *string
	Time      *string
	Status    *Status
}

// Apply merges the patch over a.
func (ap AppointmentPatch) Apply(a Appointment) Appointment {
	if ap.PatientID != nil {
		a.PatientID = *ap.PatientID
	}
	if ap.DoctorID != nil {
		a.DoctorID = *ap.DoctorID
	}
	if ap.Date != nil {
		a.Date = *ap.Date
	}
	if ap.Time != nil {
		a.Time = *ap.Time
	}
	if ap.Status != nil {
		a.Status = *ap.Status
	}
	return a
}

// Patch returns a patch that overwrites every field with f.
func (f AppointmentFields) Patch() AppointmentPatch {
	return AppointmentPatch{
		PatientID: &f.PatientID,
		DoctorID:  &f.DoctorID,
		Date:      &f.Date,
		Time:      &f.Time,
		Status:    &f.Status,
	}
}
