package patient

import (
	"errors"
	"testing"
)

func TestLoad(t *testing.T) {
	patients, err := Load("testdata/patients.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(patients) != 2 {
		t.Fatalf("loaded %d patients, want 2", len(patients))
	}

	p, err := Find(patients, 2)
	if err != nil {
		t.Fatalf("Find(2) failed: %v", err)
	}
	if p.Name != "Maria Garcia Lopez" || p.OxygenLevel != 96 || p.MedicationList() != "Fluticasone" {
		t.Errorf("patient 2 = %+v", p)
	}

	if _, err := Find(patients, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(9) error = %v, want ErrNotFound", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/missing.yaml"); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

func TestWithCopies(t *testing.T) {
	demo := Demo()
	snap := demo.With(42, "2026-03-02 09:00")
	snap.Medications[0] = "changed"

	if demo.Medications[0] != "Albuterol" {
		t.Error("With shares the medications slice with the original")
	}
	if snap.WheezingLevel != 42 || snap.LastSession != "2026-03-02 09:00" {
		t.Errorf("snapshot = %+v", snap)
	}
	if demo.WheezingLevel != 0 {
		t.Error("With mutated the original")
	}
	if got := demo.MedicationList(); got != "Albuterol, Lisinopril" {
		t.Errorf("MedicationList() = %q", got)
	}
}
