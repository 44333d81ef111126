package care

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store is the slice of the in-memory snapshot this package needs: the
// mirrored service catalog and the session-local care records.
type Store interface {
	UpsertCareService(s CareService)
	RemoveCareService(id uuid.UUID)
	CareRecords() []CareRecord
	CareRecordByID(id uuid.UUID) (CareRecord, bool)
	CareRecordsByPatient(patientID uuid.UUID) []CareRecord
	UpdateCareRecord(r CareRecord)
}

type Service struct {
	repo  ServiceRepository
	store Store
}

func NewService(repo ServiceRepository, store Store) *Service {
	return &Service{repo: repo, store: store}
}

// -- CareService catalog --

func (s *Service) CreateService(ctx context.Context, svc *CareService) error {
	if svc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if svc.UnitPrice < 0 {
		return fmt.Errorf("unit_price must not be negative")
	}
	if svc.DurationMinutes < 0 {
		return fmt.Errorf("duration_minutes must not be negative")
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return err
	}
	created, err := s.repo.GetByID(ctx, svc.ID)
	if err != nil {
		return err
	}
	*svc = *created
	s.store.UpsertCareService(*created)
	return nil
}

func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*CareService, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateService(ctx context.Context, svc *CareService) error {
	if svc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if svc.UnitPrice < 0 {
		return fmt.Errorf("unit_price must not be negative")
	}
	if err := s.repo.Update(ctx, svc); err != nil {
		return err
	}
	updated, err := s.repo.GetByID(ctx, svc.ID)
	if err != nil {
		return err
	}
	*svc = *updated
	s.store.UpsertCareService(*updated)
	return nil
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.store.RemoveCareService(id)
	return nil
}

func (s *Service) ListServices(ctx context.Context, limit, offset int) ([]*CareService, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) SearchServices(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*CareService, int, error) {
	return s.repo.Search(ctx, params, sort, limit, offset)
}

// -- CareRecords (session-local, read from the snapshot) --

func (s *Service) ListCareRecords() []CareRecord {
	return s.store.CareRecords()
}

func (s *Service) GetCareRecord(id uuid.UUID) (CareRecord, bool) {
	return s.store.CareRecordByID(id)
}

func (s *Service) CareRecordsForPatient(patientID uuid.UUID) []CareRecord {
	return s.store.CareRecordsByPatient(patientID)
}

// TransitionCareRecord moves a care record to the given status. Only the
// forward planned → in-progress → completed steps are accepted.
func (s *Service) TransitionCareRecord(id uuid.UUID, to string) (CareRecord, error) {
	record, ok := s.store.CareRecordByID(id)
	if !ok {
		return CareRecord{}, fmt.Errorf("care record %s not found", id)
	}
	if !CanTransition(record.Status, to) {
		return CareRecord{}, fmt.Errorf("invalid status transition %s -> %s", record.Status, to)
	}

	record.Status = to
	record.UpdatedAt = time.Now().UTC()
	s.store.UpdateCareRecord(record)
	return record, nil
}
