package patient_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cliniq/cliniq/internal/domain/care"
	"github.com/cliniq/cliniq/internal/domain/insurance"
	"github.com/cliniq/cliniq/internal/domain/patient"
	"github.com/cliniq/cliniq/internal/store"
)

// fakeRepo is a map-backed stand-in for the persistence collaborator.
type fakeRepo struct {
	patients map[uuid.UUID]*patient.Patient
	fail     bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (r *fakeRepo) Create(ctx context.Context, p *patient.Patient) error {
	if r.fail {
		return fmt.Errorf("connection refused")
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, p *patient.Patient) error {
	if r.fail {
		return fmt.Errorf("connection refused")
	}
	if _, ok := r.patients[p.ID]; !ok {
		return fmt.Errorf("patient not found")
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.fail {
		return fmt.Errorf("connection refused")
	}
	delete(r.patients, id)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient not found")
	}
	return p, nil
}

func (r *fakeRepo) Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*patient.Patient, int, error) {
	var out []*patient.Patient
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListAll(ctx context.Context) ([]*patient.Patient, error) {
	var out []*patient.Patient
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, nil
}

func validDraft() patient.Draft {
	return patient.Draft{
		FirstName: "Awa",
		LastName:  "Diop",
		BirthDate: "1990-05-12",
		Gender:    "F",
		Phone:     "+221771234567",
		Email:     "awa.diop@example.sn",
	}
}

func newService(t *testing.T) (*patient.Service, *fakeRepo, *store.Store) {
	t.Helper()
	repo := newFakeRepo()
	st := store.New()
	svc := patient.NewService(repo, st, zerolog.Nop())
	return svc, repo, st
}

func seedCatalog(st *store.Store) (svcID uuid.UUID) {
	svcID = uuid.New()
	st.UpsertCareService(care.CareService{ID: svcID, Name: "Consultation générale", UnitPrice: 5000, Active: true})

	providerID := uuid.New()
	st.UpsertProvider(insurance.Provider{ID: providerID, Name: "IPRES", Active: true})
	st.UpsertPolicy(insurance.Policy{ID: uuid.New(), ProviderID: providerID, Name: "Standard", CoveragePct: 70, AnnualLimit: 500_000})
	st.UpsertPolicy(insurance.Policy{ID: uuid.New(), ProviderID: providerID, Name: "Premium", CoveragePct: 90, AnnualLimit: 2_000_000})
	return svcID
}

func TestCreatePatient_NoSideRecords(t *testing.T) {
	svc, _, st := newService(t)

	p, err := svc.CreatePatient(context.Background(), validDraft(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected an assigned id")
	}

	snap := st.Snapshot()
	if len(snap.Patients) != 1 {
		t.Errorf("expected exactly one patient, got %d", len(snap.Patients))
	}
	if len(snap.CareRecords) != 0 {
		t.Errorf("expected zero care records, got %d", len(snap.CareRecords))
	}
	if len(snap.Enrollments) != 0 {
		t.Errorf("expected zero enrollments, got %d", len(snap.Enrollments))
	}
}

func TestCreatePatient_WithCareSelections(t *testing.T) {
	svc, _, st := newService(t)
	svcID := seedCatalog(st)

	p, err := svc.CreatePatient(context.Background(), validDraft(), []patient.CareSelection{
		{ServiceID: svcID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := st.CareRecordsByPatient(p.ID)
	if len(records) != 1 {
		t.Fatalf("expected one care record, got %d", len(records))
	}
	record := records[0]
	if record.Status != care.StatusPlanned {
		t.Errorf("expected planned status, got %s", record.Status)
	}
	if len(record.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(record.Items))
	}
	item := record.Items[0]
	if item.UnitPrice != 5000 {
		t.Errorf("expected unit price 5000, got %d", item.UnitPrice)
	}
	if item.TotalPrice != 10000 {
		t.Errorf("expected total price 10000, got %d", item.TotalPrice)
	}
	if record.TotalCost != 10000 {
		t.Errorf("expected total cost 10000, got %d", record.TotalCost)
	}
}

func TestCreatePatient_TotalCostInvariant(t *testing.T) {
	svc, _, st := newService(t)
	svcID := seedCatalog(st)
	otherID := uuid.New()
	st.UpsertCareService(care.CareService{ID: otherID, Name: "Pansement", UnitPrice: 1500, Active: true})

	p, err := svc.CreatePatient(context.Background(), validDraft(), []patient.CareSelection{
		{ServiceID: svcID, Quantity: 3},
		{ServiceID: otherID, Quantity: 2},
		{ServiceID: uuid.New(), Quantity: 1}, // unresolved, zero-value line
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := st.CareRecordsByPatient(p.ID)[0]
	if len(record.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(record.Items))
	}
	var sum int64
	for _, item := range record.Items {
		if item.TotalPrice != item.UnitPrice*int64(item.Quantity) {
			t.Errorf("item arithmetic broken: %+v", item)
		}
		sum += item.TotalPrice
	}
	if record.TotalCost != sum {
		t.Errorf("total cost %d does not equal item sum %d", record.TotalCost, sum)
	}
	if record.TotalCost != 18000 {
		t.Errorf("expected 18000, got %d", record.TotalCost)
	}
}

func TestCreatePatient_UnresolvedServiceDegrades(t *testing.T) {
	svc, _, st := newService(t)

	p, err := svc.CreatePatient(context.Background(), validDraft(), []patient.CareSelection{
		{ServiceID: uuid.New(), Quantity: 2},
	})
	if err != nil {
		t.Fatalf("unresolved service must not fail the create: %v", err)
	}

	record := st.CareRecordsByPatient(p.ID)[0]
	item := record.Items[0]
	if item.UnitPrice != 0 || item.TotalPrice != 0 {
		t.Errorf("expected zero-value line, got %+v", item)
	}
	if item.Quantity != 2 {
		t.Errorf("expected quantity preserved, got %d", item.Quantity)
	}
	if record.TotalCost != 0 {
		t.Errorf("expected zero total cost, got %d", record.TotalCost)
	}
}

func TestCreatePatient_WithInsuranceMatch(t *testing.T) {
	svc, _, st := newService(t)
	seedCatalog(st)

	draft := validDraft()
	draft.InsuranceProvider = "ipres"
	draft.InsuranceNumber = "AB123"
	draft.InsurancePolicyType = "premium"

	p, err := svc.CreatePatient(context.Background(), draft, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	enrollments := st.EnrollmentsByPatient(p.ID)
	if len(enrollments) != 1 {
		t.Fatalf("expected one enrollment, got %d", len(enrollments))
	}
	e := enrollments[0]
	if e.PolicyNumber != "AB123" {
		t.Errorf("expected policy number AB123, got %s", e.PolicyNumber)
	}
	if e.CoveragePct != 90 {
		t.Errorf("expected policy default coverage 90, got %d", e.CoveragePct)
	}
	if e.AnnualLimit != 2_000_000 {
		t.Errorf("expected annual limit copied, got %d", e.AnnualLimit)
	}
	if e.UsedAmount != 0 {
		t.Errorf("expected used amount 0, got %d", e.UsedAmount)
	}
	if e.Status != insurance.EnrollmentStatusActive {
		t.Errorf("expected active status, got %s", e.Status)
	}
	// Default end date is one year out.
	wantEnd := e.StartDate.AddDate(1, 0, 0)
	if !e.EndDate.Equal(wantEnd) {
		t.Errorf("expected end date %v, got %v", wantEnd, e.EndDate)
	}
}

func TestCreatePatient_CoverageOverride(t *testing.T) {
	svc, _, st := newService(t)
	seedCatalog(st)

	override := 50
	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	draft := validDraft()
	draft.InsuranceProvider = "IPRES"
	draft.InsuranceNumber = "XY987"
	draft.InsuranceCoveragePct = &override
	draft.InsuranceExpiry = &expiry

	p, err := svc.CreatePatient(context.Background(), draft, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := st.EnrollmentsByPatient(p.ID)[0]
	if e.CoveragePct != 50 {
		t.Errorf("expected override coverage 50, got %d", e.CoveragePct)
	}
	if !e.EndDate.Equal(expiry) {
		t.Errorf("expected caller expiry %v, got %v", expiry, e.EndDate)
	}
	// Without a hint the first catalog policy wins.
	catalog := st.InsuranceCatalog()
	if e.PolicyID != catalog.Policies[0].ID {
		t.Error("expected first policy in catalog order")
	}
}

func TestCreatePatient_NoMatchIsSilent(t *testing.T) {
	svc, _, st := newService(t)
	seedCatalog(st)

	draft := validDraft()
	draft.InsuranceProvider = "Unknown Co"
	draft.InsuranceNumber = "AB123"

	p, err := svc.CreatePatient(context.Background(), draft, nil)
	if err != nil {
		t.Fatalf("no catalog match must not be an error: %v", err)
	}

	if got := st.EnrollmentsByPatient(p.ID); len(got) != 0 {
		t.Errorf("expected no enrollment, got %d", len(got))
	}
	// The summary remains on the patient even without a match.
	stored, _ := st.PatientByID(p.ID)
	if stored.Insurance.Provider != "Unknown Co" {
		t.Errorf("expected insurance summary kept, got %+v", stored.Insurance)
	}
}

func TestCreatePatient_ValidationNamesEveryField(t *testing.T) {
	svc, _, st := newService(t)

	_, err := svc.CreatePatient(context.Background(), patient.Draft{Gender: "X"}, nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *patient.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	want := []string{"first_name", "last_name", "birth_date", "gender", "phone", "email"}
	if !reflect.DeepEqual(verr.Fields, want) {
		t.Errorf("expected fields %v, got %v", want, verr.Fields)
	}
	if len(st.Snapshot().Patients) != 0 {
		t.Error("validation failure must not commit anything")
	}
}

func TestCreatePatient_RejectsInvalidSelectionQuantity(t *testing.T) {
	svc, _, st := newService(t)
	svcID := seedCatalog(st)

	_, err := svc.CreatePatient(context.Background(), validDraft(), []patient.CareSelection{
		{ServiceID: svcID, Quantity: 0},
	})
	var verr *patient.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(st.Snapshot().Patients) != 0 {
		t.Error("nothing may be committed on validation failure")
	}
}

func TestCreatePatient_PersistenceFailureCommitsNothing(t *testing.T) {
	svc, repo, st := newService(t)
	svcID := seedCatalog(st)
	repo.fail = true

	before := st.Snapshot()

	draft := validDraft()
	draft.InsuranceProvider = "IPRES"
	draft.InsuranceNumber = "AB123"

	_, err := svc.CreatePatient(context.Background(), draft, []patient.CareSelection{
		{ServiceID: svcID, Quantity: 2},
	})
	if err == nil {
		t.Fatal("expected persistence error")
	}
	var perr *patient.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %T", err)
	}

	after := st.Snapshot()
	if after.Version != before.Version {
		t.Errorf("snapshot changed after failed create: %d -> %d", before.Version, after.Version)
	}
	if !reflect.DeepEqual(before.Patients, after.Patients) ||
		!reflect.DeepEqual(before.CareRecords, after.CareRecords) ||
		!reflect.DeepEqual(before.Enrollments, after.Enrollments) {
		t.Error("expected patient, care record and enrollment collections unchanged")
	}
}

func TestUpdatePatient_NeverCreatesSideRecords(t *testing.T) {
	svc, _, st := newService(t)
	seedCatalog(st)

	p, err := svc.CreatePatient(context.Background(), validDraft(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft := validDraft()
	draft.FirstName = "Binta"
	draft.InsuranceProvider = "IPRES"
	draft.InsuranceNumber = "ZZ999"

	updated, err := svc.UpdatePatient(context.Background(), p.ID, draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.FirstName != "Binta" {
		t.Errorf("expected updated name, got %s", updated.FirstName)
	}

	snap := st.Snapshot()
	if len(snap.Patients) != 1 {
		t.Errorf("update must replace, not add: %d patients", len(snap.Patients))
	}
	if len(snap.CareRecords) != 0 || len(snap.Enrollments) != 0 {
		t.Error("update must never create care records or enrollments")
	}
}

func TestDeletePatient_Cascades(t *testing.T) {
	svc, _, st := newService(t)
	svcID := seedCatalog(st)

	draft := validDraft()
	draft.InsuranceProvider = "IPRES"
	draft.InsuranceNumber = "AB123"

	p, err := svc.CreatePatient(context.Background(), draft, []patient.CareSelection{
		{ServiceID: svcID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeletePatient(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := st.Snapshot()
	if len(snap.Patients) != 0 || len(snap.CareRecords) != 0 || len(snap.Enrollments) != 0 {
		t.Errorf("expected cascade removal, got %d/%d/%d",
			len(snap.Patients), len(snap.CareRecords), len(snap.Enrollments))
	}
}

func TestDeletePatient_PersistenceFailureKeepsSnapshot(t *testing.T) {
	svc, repo, st := newService(t)

	p, err := svc.CreatePatient(context.Background(), validDraft(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.fail = true
	if err := svc.DeletePatient(context.Background(), p.ID); err == nil {
		t.Fatal("expected persistence error")
	}
	if _, ok := st.PatientByID(p.ID); !ok {
		t.Error("patient must remain in snapshot after failed delete")
	}
}
