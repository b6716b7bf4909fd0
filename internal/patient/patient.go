// Package patient loads the read-only patient records handed to the monitor
// and the report generator.
package patient

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("patient not found")

// Patient is an immutable demographic and clinical snapshot.
type Patient struct {
	ID              int      `yaml:"id"`
	Name            string   `yaml:"name"`
	Age             int      `yaml:"age"`
	Gender          string   `yaml:"gender"`
	Email           string   `yaml:"email"`
	Phone           string   `yaml:"phone"`
	Address         string   `yaml:"address"`
	MedicalHistory  string   `yaml:"medical_history"`
	LastSession     string   `yaml:"last_session"`
	NextAppointment string   `yaml:"next_appointment"`
	Status          string   `yaml:"status"`
	WheezingLevel   int      `yaml:"wheezing_level"`
	RespiratoryRate int      `yaml:"respiratory_rate"`
	OxygenLevel     int      `yaml:"oxygen_level"`
	Medications     []string `yaml:"medications"`
	Notes           string   `yaml:"notes"`
}

// With returns a copy carrying the given live readings.
func (p Patient) With(wheezingLevel int, lastSession string) Patient {
	p.Medications = append([]string(nil), p.Medications...)
	p.WheezingLevel = wheezingLevel
	if lastSession != "" {
		p.LastSession = lastSession
	}
	return p
}

// MedicationList joins the medications for display.
func (p Patient) MedicationList() string {
	return strings.Join(p.Medications, ", ")
}

type fixture struct {
	Patients []Patient `yaml:"patients"`
}

// Load reads a YAML fixture file with a top-level "patients" list.
func Load(path string) ([]Patient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading patients: %w", err)
	}

	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing patients: %w", err)
	}
	return f.Patients, nil
}

// Find returns the patient with the given id.
func Find(patients []Patient, id int) (Patient, error) {
	for _, p := range patients {
		if p.ID == id {
			return p, nil
		}
	}
	return Patient{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
}

// Demo is the built-in patient used when no fixture is configured.
func Demo() Patient {
	return Patient{
		ID:              1,
		Name:            "John Doe",
		Age:             45,
		Gender:          "Male",
		Email:           "john.doe@example.com",
		Phone:           "(555) 123-4567",
		Address:         "123 Main St, Anytown, USA",
		MedicalHistory:  "Asthma, Hypertension",
		NextAppointment: "Jun 15, 2024",
		Status:          "Stable",
		RespiratoryRate: 16,
		OxygenLevel:     98,
		Medications:     []string{"Albuterol", "Lisinopril"},
		Notes:           "Patient showing improvement after medication adjustment",
	}
}
