package domain

import (
	"encoding/json"
	"fmt"
)

// Patient is a registered patient.
type Patient struct {
	ID         ID     `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Age        int    `json:"age" yaml:"age"`
	Department string `json:"department" yaml:"department"`
	Contact    string `json:"contact" yaml:"contact"`
}

// RecordID implements the record constraint used by collections.
func (p Patient) RecordID() ID { return p.ID }

// UnmarshalJSON decodes a persisted patient, accepting ages stored as
// numeric strings.
func (p *Patient) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         ID              `json:"id"`
		Name       string          `json:"name"`
		Age        json.RawMessage `json:"age"`
		Department string          `json:"department"`
		Contact    string          `json:"contact"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	age, err := decodeLooseInt(raw.Age)
	if err != nil {
		return fmt.Errorf("patient %d age: %w", raw.ID, err)
	}
	*p = Patient{
		ID:         raw.ID,
		Name:       raw.Name,
		Age:        int(age),
		Department: raw.Department,
		Contact:    raw.Contact,
	}
	return nil
}

// PatientFields is a patient without its id.
type PatientFields struct {
	Name       string `json:"name" yaml:"name"`
	Age        int    `json:"age" yaml:"age"`
	Department string `json:"department" yaml:"department"`
	Contact    string `json:"contact" yaml:"contact"`
}

// WithID builds the full record.
func (f PatientFields) WithID(id ID) Patient {
	return Patient{ID: id, Name: f.Name, Age: f.Age, Department: f.Department, Contact: f.Contact}
}

// PatientPatch names the fields to overwrite; nil fields are preserved.
type PatientPatch struct {
	Name       *string
	Age        *int
	Department *string
	Contact    *string
}

// Apply merges the patch over p.
func (pp PatientPatch) Apply(p Patient) Patient {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Age != nil {
		p.Age = *pp.Age
	}
	if pp.Department != nil {
		p.Department = *pp.Department
	}
	if pp.Contact != nil {
		p.Contact = *pp.Contact
	}
	return p
}
