package insurance

import (
	"time"

	"github.com/google/uuid"
)

// Provider maps to the insurance_provider table. The name is the natural
// key used for free-text matching.
type Provider struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Email     string    `db:"email" json:"email,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Policy maps to the insurance_policy table. Each policy belongs to exactly
// one provider. AnnualLimit is in minor currency units.
type Policy struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProviderID  uuid.UUID `db:"provider_id" json:"provider_id"`
	Name        string    `db:"name" json:"name"`
	CoveragePct int       `db:"coverage_pct" json:"coverage_pct"`
	AnnualLimit int64     `db:"annual_limit" json:"annual_limit"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// PatientInsurance links a patient to a provider and policy. It is created
// opportunistically at patient creation when the matcher finds a catalog
// entry. UsedAmount is owned by the billing/claims process after creation.
type PatientInsurance struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	ProviderID   uuid.UUID `json:"provider_id"`
	PolicyID     uuid.UUID `json:"policy_id"`
	PolicyNumber string    `json:"policy_number"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Status       string    `json:"status"`
	CoveragePct  int       `json:"coverage_pct"`
	AnnualLimit  int64     `json:"annual_limit"`
	UsedAmount   int64     `json:"used_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// EnrollmentStatusActive is the default status for a new enrollment.
const EnrollmentStatusActive = "active"
