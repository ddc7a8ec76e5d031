package desk

import (
	"context"

	"github.com/roach88/clinicdesk/internal/access"
	"github.com/roach88/clinicdesk/internal/domain"
)

// Patients lists every patient.
func (d *Desk) Patients() ([]domain.Patient, error) {
	if _, err := d.enter(access.RoutePatients); err != nil {
		return nil, err
	}
	return d.records.Patients.List(), nil
}

// RegisterPatient adds a patient from the form.
func (d *Desk) RegisterPatient(ctx context.Context, form PatientForm) (domain.Patient, error) {
	if _, err := d.authorize(access.RoutePatients, access.AddPatient); err != nil {
		return domain.Patient{}, err
	}
	fields, err := form.fields(MsgAllFieldsRequired)
	if err != nil {
		return domain.Patient{}, err
	}
	p, err := d.records.Patients.Add(ctx, fields)
	if err != nil {
		return domain.Patient{}, err
	}
	d.logger.Info("patient registered", "patient_id", p.ID)
	return p, nil
}

// EditPatient overwrites the named fields of the patient ref.
func (d *Desk) EditPatient(ctx context.Context, ref string, edit PatientEdit) (domain.Patient, error) {
	if _, err := d.authorize(access.RoutePatients, access.EditPatient); err != nil {
		return domain.Patient{}, err
	}
	id, err := d.existingPatient(ref)
	if err != nil {
		return domain.Patient{}, err
	}
	patch, err := edit.patch()
	if err != nil {
		return domain.Patient{}, err
	}
	if err := d.records.Patients.Update(ctx, id, patch); err != nil {
		return domain.Patient{}, err
	}
	p, _ := d.records.Patients.Get(id)
	return p, nil
}

// DeletePatient removes the patient ref. Appointments that reference it
// are kept and show the patient as Unknown.
func (d *Desk) DeletePatient(ctx context.Context, ref string) error {
	if _, err := d.authorize(access.RoutePatients, access.DeletePatient); err != nil {
		return err
	}
	id, err := d.existingPatient(ref)
	if err != nil {
		return err
	}
	if err := d.records.Patients.Remove(ctx, id); err != nil {
		return err
	}
	d.logger.Info("patient deleted", "patient_id", id)
	return nil
}

func (d *Desk) existingPatient(ref string) (domain.ID, error) {
	id, err := parseRef("patient", ref)
	if err != nil {
		return 0, err
	}
	if _, ok := d.records.Patients.Get(id); !ok {
		return 0, notFound("patient", ref)
	}
	return id, nil
}
