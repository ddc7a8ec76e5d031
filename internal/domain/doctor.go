package domain

// Doctor is a member of the medical staff.
type Doctor struct {
	ID         ID     `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Specialty  string `json:"specialty" yaml:"specialty"`
	Department string `json:"department" yaml:"department"`
	Contact    string `json:"contact" yaml:"contact"`
}

// RecordID implements the record constraint used by collections.
func (d Doctor) RecordID() ID { return d.ID }

// DoctorFields is a doctor without its id.
type DoctorFields struct {
	Name       string `json:"name" yaml:"name"`
	Specialty  string `json:"specialty" yaml:"specialty"`
	Department string `json:"department" yaml:"department"`
	Contact    string `json:"contact" yaml:"contact"`
}

// WithID builds the full record.
func (f DoctorFields) WithID(id ID) Doctor {
	return Doctor{ID: id, Name: f.Name, Specialty: f.Specialty, Department: f.Department, Contact: f.Contact}
}

// DoctorPatch names the fields to overwrite; nil fields are preserved.
type DoctorPatch struct {
	Name       *string
	Specialty  *string
	Department *string
	Contact    *string
}

// Apply merges the patch over d.
func (dp DoctorPatch) Apply(d Doctor) Doctor {
	if dp.Name != nil {
		d.Name = *dp.Name
	}
	if dp.Specialty != nil {
		d.Specialty = *dp.Specialty
	}
	if dp.Department != nil {
		d.Department = *dp.Department
	}
	if dp.Contact != nil {
		d.Contact = *dp.Contact
	}
	return d
}
