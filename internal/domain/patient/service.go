package patient

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cliniq/cliniq/internal/domain/care"
	"github.com/cliniq/cliniq/internal/domain/insurance"
)

// Store is the slice of the in-memory snapshot the lifecycle controller
// needs. Every local commit goes through these named actions.
type Store interface {
	UpsertPatient(p Patient)
	RemovePatientCascade(id uuid.UUID)
	Patients() []Patient
	PatientByID(id uuid.UUID) (Patient, bool)
	CareServiceByID(id uuid.UUID) (care.CareService, bool)
	AddCareRecord(r care.CareRecord)
	InsuranceCatalog() insurance.Catalog
	AddEnrollment(e insurance.PatientInsurance)
	CareRecordsByPatient(patientID uuid.UUID) []care.CareRecord
	EnrollmentsByPatient(patientID uuid.UUID) []insurance.PatientInsurance
}

// Service orchestrates the multi-entity write triggered by patient creation:
// the durable patient, an optional care record priced from the catalog, and
// an optional insurance enrollment resolved by the matcher.
type Service struct {
	repo  Repository
	store Store
	log   zerolog.Logger

	// submitMu serializes submissions so a second intent cannot interleave
	// with one still in flight.
	submitMu sync.Mutex

	now func() time.Time
}

func NewService(repo Repository, store Store, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func validGender(g string) bool { return g == "M" || g == "F" }

// validateDraft checks the required fields and returns the parsed birth date.
// Every missing or malformed field is reported, not just the first.
func validateDraft(draft Draft, selections []CareSelection) (time.Time, *ValidationError) {
	var fields []string
	var birthDate time.Time

	if strings.TrimSpace(draft.FirstName) == "" {
		fields = append(fields, "first_name")
	}
	if strings.TrimSpace(draft.LastName) == "" {
		fields = append(fields, "last_name")
	}
	if draft.BirthDate == "" {
		fields = append(fields, "birth_date")
	} else {
		t, err := time.Parse("2006-01-02", draft.BirthDate)
		if err != nil {
			fields = append(fields, "birth_date")
		} else {
			birthDate = t
		}
	}
	if !validGender(draft.Gender) {
		fields = append(fields, "gender")
	}
	if strings.TrimSpace(draft.Phone) == "" {
		fields = append(fields, "phone")
	}
	if strings.TrimSpace(draft.Email) == "" {
		fields = append(fields, "email")
	}
	for _, sel := range selections {
		if sel.Quantity < 1 {
			fields = append(fields, "selections.quantity")
			break
		}
	}

	if len(fields) > 0 {
		return time.Time{}, &ValidationError{Fields: fields}
	}
	return birthDate, nil
}

func patientFromDraft(draft Draft, birthDate time.Time) Patient {
	return Patient{
		FirstName:        strings.TrimSpace(draft.FirstName),
		LastName:         strings.TrimSpace(draft.LastName),
		BirthDate:        birthDate,
		Gender:           draft.Gender,
		Phone:            strings.TrimSpace(draft.Phone),
		Email:            strings.TrimSpace(draft.Email),
		Address:          draft.Address,
		BloodGroup:       draft.BloodGroup,
		Allergies:        draft.Allergies,
		EmergencyContact: draft.EmergencyContact,
		Insurance: InsuranceSummary{
			Provider:     draft.InsuranceProvider,
			PolicyNumber: draft.InsuranceNumber,
			CoveragePct:  draft.InsuranceCoveragePct,
			ExpiryDate:   draft.InsuranceExpiry,
			PolicyType:   draft.InsurancePolicyType,
		},
	}
}

// CreatePatient runs the coordinated create. The durable write is mandatory;
// the care record and enrollment are best-effort side records committed only
// after it succeeds. A persistence failure leaves the snapshot untouched.
func (s *Service) CreatePatient(ctx context.Context, draft Draft, selections []CareSelection) (*Patient, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	birthDate, verr := validateDraft(draft, selections)
	if verr != nil {
		return nil, verr
	}

	p := patientFromDraft(draft, birthDate)
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, &PersistenceError{Op: "create patient", Err: err}
	}

	if len(selections) > 0 {
		record := s.buildCareRecord(p.ID, selections)
		s.store.AddCareRecord(record)
	}

	if draft.InsuranceProvider != "" && draft.InsuranceNumber != "" {
		if enrollment, ok := s.buildEnrollment(p.ID, draft); ok {
			s.store.AddEnrollment(enrollment)
		}
	}

	s.store.UpsertPatient(p)
	s.log.Info().Str("patient_id", p.ID.String()).Int("selections", len(selections)).Msg("patient created")
	return &p, nil
}

// buildCareRecord prices each selection against the snapshot catalog. An
// unresolved service id degrades to a zero-value line; it never aborts the
// create.
func (s *Service) buildCareRecord(patientID uuid.UUID, selections []CareSelection) care.CareRecord {
	now := s.now().UTC()
	items := make([]care.CareItem, 0, len(selections))

	for _, sel := range selections {
		item := care.CareItem{
			ID:        uuid.New(),
			ServiceID: sel.ServiceID,
			Quantity:  sel.Quantity,
		}
		if svc, ok := s.store.CareServiceByID(sel.ServiceID); ok {
			if pricing, err := care.PriceLine(svc, sel.Quantity); err == nil {
				item.ServiceName = svc.Name
				item.UnitPrice = pricing.UnitPrice
				item.TotalPrice = pricing.TotalPrice
			} else {
				s.log.Warn().Str("service_id", sel.ServiceID.String()).Err(err).Msg("care line degraded to zero value")
			}
		} else {
			s.log.Warn().Str("service_id", sel.ServiceID.String()).Msg("unresolved care service, zero-value line")
		}
		items = append(items, item)
	}

	return care.CareRecord{
		ID:        uuid.New(),
		PatientID: patientID,
		Status:    care.StatusPlanned,
		CareDate:  now.Truncate(24 * time.Hour),
		Items:     items,
		TotalCost: care.TotalRecordCost(items),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// buildEnrollment runs the matcher against the snapshot catalog. No match is
// a silent soft-fail so free-text provider entries never block creation.
func (s *Service) buildEnrollment(patientID uuid.UUID, draft Draft) (insurance.PatientInsurance, bool) {
	match, ok := insurance.FindMatch(s.store.InsuranceCatalog(), draft.InsuranceProvider, draft.InsurancePolicyType)
	if !ok {
		s.log.Debug().Str("provider", draft.InsuranceProvider).Msg("no insurance match, enrollment skipped")
		return insurance.PatientInsurance{}, false
	}

	now := s.now().UTC()
	coverage := match.Policy.CoveragePct
	if draft.InsuranceCoveragePct != nil {
		coverage = *draft.InsuranceCoveragePct
	}
	endDate := now.AddDate(1, 0, 0)
	if draft.InsuranceExpiry != nil {
		endDate = *draft.InsuranceExpiry
	}

	return insurance.PatientInsurance{
		ID:           uuid.New(),
		PatientID:    patientID,
		ProviderID:   match.Provider.ID,
		PolicyID:     match.Policy.ID,
		PolicyNumber: draft.InsuranceNumber,
		StartDate:    now,
		EndDate:      endDate,
		Status:       insurance.EnrollmentStatusActive,
		CoveragePct:  coverage,
		AnnualLimit:  match.Policy.AnnualLimit,
		UsedAmount:   0,
		CreatedAt:    now,
	}, true
}

// UpdatePatient validates and submits an edit, then replaces the snapshot
// entry. Edits never create care records or enrollments.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, draft Draft) (*Patient, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	birthDate, verr := validateDraft(draft, nil)
	if verr != nil {
		return nil, verr
	}

	p := patientFromDraft(draft, birthDate)
	p.ID = id
	if err := s.repo.Update(ctx, &p); err != nil {
		return nil, &PersistenceError{Op: "update patient", Err: err}
	}

	s.store.UpsertPatient(p)
	return &p, nil
}

// DeletePatient deletes durably, then removes the patient and its care
// records and enrollments from the snapshot in one compound action.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return &PersistenceError{Op: "delete patient", Err: err}
	}

	s.store.RemovePatientCascade(id)
	return nil
}

// -- Snapshot reads --

func (s *Service) ListPatients() []Patient {
	return s.store.Patients()
}

func (s *Service) GetPatient(id uuid.UUID) (Patient, bool) {
	return s.store.PatientByID(id)
}

func (s *Service) CareRecordsForPatient(id uuid.UUID) []care.CareRecord {
	return s.store.CareRecordsByPatient(id)
}

func (s *Service) EnrollmentsForPatient(id uuid.UUID) []insurance.PatientInsurance {
	return s.store.EnrollmentsByPatient(id)
}

// SearchPatients queries the durable store directly; filtered listings are
// not served from the snapshot.
func (s *Service) SearchPatients(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, params, sort, limit, offset)
}
