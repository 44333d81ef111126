package care

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository persists the care service catalog.
type ServiceRepository interface {
	Create(ctx context.Context, s *CareService) error
	GetByID(ctx context.Context, id uuid.UUID) (*CareService, error)
	Update(ctx context.Context, s *CareService) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*CareService, int, error)
	Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*CareService, int, error)
	ListAll(ctx context.Context) ([]*CareService, error)
}
