package insurance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Store is the slice of the in-memory snapshot this package needs: the
// mirrored provider/policy catalog and the session-local enrollments.
type Store interface {
	UpsertProvider(p Provider)
	RemoveProvider(id uuid.UUID)
	UpsertPolicy(p Policy)
	RemovePolicy(id uuid.UUID)
	InsuranceCatalog() Catalog
	EnrollmentsByPatient(patientID uuid.UUID) []PatientInsurance
}

type Service struct {
	providers ProviderRepository
	policies  PolicyRepository
	store     Store
}

func NewService(providers ProviderRepository, policies PolicyRepository, store Store) *Service {
	return &Service{providers: providers, policies: policies, store: store}
}

// -- Provider catalog --

func (s *Service) CreateProvider(ctx context.Context, p *Provider) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.providers.Create(ctx, p); err != nil {
		return err
	}
	created, err := s.providers.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *created
	s.store.UpsertProvider(*created)
	return nil
}

func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) UpdateProvider(ctx context.Context, p *Provider) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.providers.Update(ctx, p); err != nil {
		return err
	}
	updated, err := s.providers.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *updated
	s.store.UpsertProvider(*updated)
	return nil
}

func (s *Service) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	if err := s.providers.Delete(ctx, id); err != nil {
		return err
	}
	s.store.RemoveProvider(id)
	return nil
}

func (s *Service) ListProviders(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, limit, offset)
}

func (s *Service) SearchProviders(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Provider, int, error) {
	return s.providers.Search(ctx, params, sort, limit, offset)
}

// -- Policies --

func (s *Service) CreatePolicy(ctx context.Context, p *Policy) error {
	if p.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.CoveragePct < 0 || p.CoveragePct > 100 {
		return fmt.Errorf("coverage_pct must be between 0 and 100")
	}
	if _, err := s.providers.GetByID(ctx, p.ProviderID); err != nil {
		return fmt.Errorf("provider %s not found", p.ProviderID)
	}
	if err := s.policies.Create(ctx, p); err != nil {
		return err
	}
	created, err := s.policies.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *created
	s.store.UpsertPolicy(*created)
	return nil
}

func (s *Service) GetPolicy(ctx context.Context, id uuid.UUID) (*Policy, error) {
	return s.policies.GetByID(ctx, id)
}

func (s *Service) UpdatePolicy(ctx context.Context, p *Policy) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.CoveragePct < 0 || p.CoveragePct > 100 {
		return fmt.Errorf("coverage_pct must be between 0 and 100")
	}
	if err := s.policies.Update(ctx, p); err != nil {
		return err
	}
	updated, err := s.policies.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *updated
	s.store.UpsertPolicy(*updated)
	return nil
}

func (s *Service) DeletePolicy(ctx context.Context, id uuid.UUID) error {
	if err := s.policies.Delete(ctx, id); err != nil {
		return err
	}
	s.store.RemovePolicy(id)
	return nil
}

func (s *Service) ListPoliciesByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Policy, int, error) {
	return s.policies.ListByProvider(ctx, providerID, limit, offset)
}

// -- Enrollments (session-local, read from the snapshot) --

func (s *Service) EnrollmentsForPatient(patientID uuid.UUID) []PatientInsurance {
	return s.store.EnrollmentsByPatient(patientID)
}

// Catalog returns the current snapshot catalog, in matcher order.
func (s *Service) Catalog() Catalog {
	return s.store.InsuranceCatalog()
}
