package desk

import (
	"context"

	"github.com/roach88/clinicdesk/internal/access"
	"github.com/roach88/clinicdesk/internal/domain"
)

// Doctors lists every doctor.
func (d *Desk) Doctors() ([]domain.Doctor, error) {
	if _, err := d.enter(access.RouteDoctors); err != nil {
		return nil, err
	}
	return d.records.Doctors.List(), nil
}

// AddDoctor adds a doctor from the form. Admin only.
func (d *Desk) AddDoctor(ctx context.Context, form DoctorForm) (domain.Doctor, error) {
	if _, err := d.authorize(access.RouteDoctors, access.AddDoctor); err != nil {
		return domain.Doctor{}, err
	}
	fields, err := form.fields()
	if err != nil {
		return domain.Doctor{}, err
	}
	doc, err := d.records.Doctors.Add(ctx, fields)
	if err != nil {
		return domain.Doctor{}, err
	}
	d.logger.Info("doctor added", "doctor_id", doc.ID)
	return doc, nil
}

// EditDoctor overwrites the named fields of the doctor ref. Admin only.
func (d *Desk) EditDoctor(ctx context.Context, ref string, edit DoctorEdit) (domain.Doctor, error) {
	if _, err := d.authorize(access.RouteDoctors, access.EditDoctor); err != nil {
		return domain.Doctor{}, err
	}
	id, err := d.existingDoctor(ref)
	if err != nil {
		return domain.Doctor{}, err
	}
	patch, err := edit.patch()
	if err != nil {
		return domain.Doctor{}, err
	}
	if err := d.records.Doctors.Update(ctx, id, patch); err != nil {
		return domain.Doctor{}, err
	}
	doc, _ := d.records.Doctors.Get(id)
	return doc, nil
}

// DeleteDoctor removes the doctor ref. Admin only.
func (d *Desk) DeleteDoctor(ctx context.Context, ref string) error {
	if _, err := d.authorize(access.RouteDoctors, access.DeleteDoctor); err != nil {
		return err
	}
	id, err := d.existingDoctor(ref)
	if err != nil {
		return err
	}
	if err := d.records.Doctors.Remove(ctx, id); err != nil {
		return err
	}
	d.logger.Info("doctor deleted", "doctor_id", id)
	return nil
}

func (d *Desk) existingDoctor(ref string) (domain.ID, error) {
	id, err := parseRef("doctor", ref)
	if err != nil {
		return 0, err
	}
	if _, ok := d.records.Doctors.Get(id); !ok {
		return 0, notFound("doctor", ref)
	}
	return id, nil
}
