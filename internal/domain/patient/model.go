package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AllergySentinel is the free-text value meaning "no allergies". It must be
// excluded from allergy-alert displays (compared case-insensitively, and the
// English "None" counts too).
const AllergySentinel = "Aucune"

// EmergencyContact is the optional contact sub-record embedded in a patient.
// Presence of Name gates display.
type EmergencyContact struct {
	Name         string `db:"emergency_name" json:"name,omitempty"`
	Phone        string `db:"emergency_phone" json:"phone,omitempty"`
	Relationship string `db:"emergency_relationship" json:"relationship,omitempty"`
}

// InsuranceSummary is the denormalized insurance display cache embedded in a
// patient. It can diverge from the structured enrollment after creation; the
// enrollment is the authoritative record when both exist. Presence of
// Provider gates display.
type InsuranceSummary struct {
	Provider     string     `db:"insurance_provider" json:"provider,omitempty"`
	PolicyNumber string     `db:"insurance_number" json:"policy_number,omitempty"`
	CoveragePct  *int       `db:"insurance_coverage_pct" json:"coverage_pct,omitempty"`
	ExpiryDate   *time.Time `db:"insurance_expiry" json:"expiry_date,omitempty"`
	PolicyType   string     `db:"insurance_policy_type" json:"policy_type,omitempty"`
}

// Patient maps to the patient table.
type Patient struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	BirthDate  time.Time `db:"birth_date" json:"birth_date"`
	Gender     string    `db:"gender" json:"gender"`
	Phone      string    `db:"phone" json:"phone"`
	Email      string    `db:"email" json:"email"`
	Address    string    `db:"address" json:"address,omitempty"`
	BloodGroup string    `db:"blood_group" json:"blood_group,omitempty"`
	Allergies  string    `db:"allergies" json:"allergies,omitempty"`

	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Insurance        InsuranceSummary `json:"insurance"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Age returns the patient's age in full years at the given instant.
func (p *Patient) Age(at time.Time) int {
	years := at.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// HasAllergyAlert reports whether the allergy text should raise an alert.
// Empty text and the "Aucune"/"None" sentinel do not.
func (p *Patient) HasAllergyAlert() bool {
	a := strings.TrimSpace(p.Allergies)
	if a == "" {
		return false
	}
	if strings.EqualFold(a, AllergySentinel) || strings.EqualFold(a, "None") {
		return false
	}
	return true
}

// HasEmergencyContact reports whether the emergency-contact block should be
// displayed.
func (p *Patient) HasEmergencyContact() bool {
	return p.EmergencyContact.Name != ""
}

// HasInsuranceInfo reports whether the insurance summary block should be
// displayed.
func (p *Patient) HasInsuranceInfo() bool {
	return p.Insurance.Provider != ""
}

// Draft is the unsaved, user-entered form of a patient before the
// authoritative id is assigned by persistence.
type Draft struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	BirthDate  string `json:"birth_date"` // YYYY-MM-DD
	Gender     string `json:"gender"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	BloodGroup string `json:"blood_group"`
	Allergies  string `json:"allergies"`

	EmergencyContact EmergencyContact `json:"emergency_contact"`

	InsuranceProvider    string     `json:"insurance_provider"`
	InsuranceNumber      string     `json:"insurance_number"`
	InsuranceCoveragePct *int       `json:"insurance_coverage_pct"`
	InsuranceExpiry      *time.Time `json:"insurance_expiry"`
	InsurancePolicyType  string     `json:"insurance_policy_type"`
}

// CareSelection is one service × quantity pair selected at creation time.
type CareSelection struct {
	ServiceID uuid.UUID `json:"service_id"`
	Quantity  int       `json:"quantity"`
}
