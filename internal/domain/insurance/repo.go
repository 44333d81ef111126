package insurance

import (
	"context"

	"github.com/google/uuid"
)

// ProviderRepository persists the insurance provider catalog.
type ProviderRepository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Provider, int, error)
	Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Provider, int, error)
	ListAll(ctx context.Context) ([]*Provider, error)
}

// PolicyRepository persists insurance policies.
type PolicyRepository interface {
	Create(ctx context.Context, p *Policy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Policy, error)
	Update(ctx context.Context, p *Policy) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Policy, int, error)
	ListAll(ctx context.Context) ([]*Policy, error)
}
