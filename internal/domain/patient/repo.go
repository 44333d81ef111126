package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence collaborator for patients. It is the only
// durable store the lifecycle controller talks to; everything else lives in
// the in-memory snapshot.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Patient, int, error)
	ListAll(ctx context.Context) ([]*Patient, error)
}
