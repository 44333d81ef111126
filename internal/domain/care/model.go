package care

import (
	"time"

	"github.com/google/uuid"
)

// CareRecord statuses. A record enters the system as planned and moves
// forward only; transitions are validated by the service.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// CareService maps to the care_service table. Catalog reference data for
// pricing; unit prices are in minor currency units.
type CareService struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Category          string    `db:"category" json:"category"`
	UnitPrice         int64     `db:"unit_price" json:"unit_price"`
	DurationMinutes   int       `db:"duration_minutes" json:"duration_minutes"`
	RequiresPhysician bool      `db:"requires_physician" json:"requires_physician"`
	Active            bool      `db:"active" json:"active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// CareItem is one priced line (service × quantity) within a care record.
// UnitPrice is copied from the catalog at creation time; a later price
// change to the CareService must not alter historical items.
type CareItem struct {
	ID          uuid.UUID `json:"id"`
	ServiceID   uuid.UUID `json:"service_id"`
	ServiceName string    `json:"service_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	TotalPrice  int64     `json:"total_price"`
}

// CareRecord groups the priced items delivered to one patient on one date.
// TotalCost is derived: it always equals the sum of TotalPrice over Items.
type CareRecord struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patient_id"`
	Status    string     `json:"status"`
	CareDate  time.Time  `json:"care_date"`
	Notes     string     `json:"notes,omitempty"`
	Items     []CareItem `json:"items"`
	TotalCost int64      `json:"total_cost"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// nextStatus maps each record status to its single allowed successor.
var nextStatus = map[string]string{
	StatusPlanned:    StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// CanTransition reports whether a care record may move from one status to
// another. Only the forward planned → in-progress → completed steps are
// allowed.
func CanTransition(from, to string) bool {
	return nextStatus[from] == to
}
