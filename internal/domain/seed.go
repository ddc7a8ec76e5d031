package domain

import (
	"bytes"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// departments is never persisted.
var departments = []string{"Cardiology", "Neurology", "Pediatrics", "Orthopedics"}

// Departments returns the fixed department list in display order.
// The returned slice is a copy.
func Departments() []string {
	return append([]string(nil), departments...)
}

// Seed is the dataset used for collections absent from the backing store.
type Seed struct {
	Patients     []Patient     `yaml:"patients"`
	Doctors      []Doctor      `yaml:"doctors"`
	Appointments []Appointment `yaml:"appointments"`
}

// LoadSeed decodes the embedded seed dataset.
// Each call returns fresh slices.
func LoadSeed() (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(seedYAML))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return seed, nil
}
