package patient

import (
	"testing"
	"time"
)

func TestPatient_Age(t *testing.T) {
	p := &Patient{BirthDate: time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC)}

	cases := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC), 36}, // birthday today
		{time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), 35}, // day before birthday
		{time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), 36},
		{time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(1989, 1, 1, 0, 0, 0, 0, time.UTC), 0}, // before birth clamps to 0
	}

	for _, tc := range cases {
		if got := p.Age(tc.at); got != tc.want {
			t.Errorf("Age at %v = %d, want %d", tc.at, got, tc.want)
		}
	}
}

func TestPatient_HasAllergyAlert(t *testing.T) {
	cases := []struct {
		allergies string
		want      bool
	}{
		{"", false},
		{"   ", false},
		{"Aucune", false},
		{"aucune", false},
		{"AUCUNE", false},
		{"None", false},
		{"none", false},
		{"Pénicilline", true},
		{"Arachides, latex", true},
	}

	for _, tc := range cases {
		p := &Patient{Allergies: tc.allergies}
		if got := p.HasAllergyAlert(); got != tc.want {
			t.Errorf("HasAllergyAlert(%q) = %v, want %v", tc.allergies, got, tc.want)
		}
	}
}

func TestPatient_DisplayGating(t *testing.T) {
	p := &Patient{}
	if p.HasEmergencyContact() {
		t.Error("no contact name, no display")
	}
	if p.HasInsuranceInfo() {
		t.Error("no provider, no display")
	}

	p.EmergencyContact = EmergencyContact{Name: "Moussa Diop", Phone: "+221770000000"}
	p.Insurance = InsuranceSummary{Provider: "IPRES"}

	if !p.HasEmergencyContact() {
		t.Error("expected emergency contact display")
	}
	if !p.HasInsuranceInfo() {
		t.Error("expected insurance display")
	}
}

func TestValidateDraft_ReportsAllFields(t *testing.T) {
	_, verr := validateDraft(Draft{BirthDate: "not-a-date", Gender: "M"}, nil)
	if verr == nil {
		t.Fatal("expected validation error")
	}

	found := map[string]bool{}
	for _, f := range verr.Fields {
		found[f] = true
	}
	for _, f := range []string{"first_name", "last_name", "birth_date", "phone", "email"} {
		if !found[f] {
			t.Errorf("expected field %s to be reported", f)
		}
	}
	if found["gender"] {
		t.Error("gender M is valid and must not be reported")
	}
}

func TestValidateDraft_ParsesBirthDate(t *testing.T) {
	birthDate, verr := validateDraft(Draft{
		FirstName: "Awa",
		LastName:  "Diop",
		BirthDate: "1990-05-12",
		Gender:    "F",
		Phone:     "+221771234567",
		Email:     "awa@example.sn",
	}, nil)
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	want := time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC)
	if !birthDate.Equal(want) {
		t.Errorf("expected %v, got %v", want, birthDate)
	}
}
