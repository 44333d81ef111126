package care

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliniq/cliniq/internal/platform/search"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository { return &serviceRepoPG{pool: pool} }

func (r *serviceRepoPG) conn() queryable { return r.pool }

const serviceCols = `id, name, category, unit_price, duration_minutes,
	requires_physician, active, created_at, updated_at`

// searchParams maps query parameters to care_service columns.
var serviceSearchParams = map[string]search.ParamConfig{
	"name":     {Type: search.ParamString, Column: "name"},
	"category": {Type: search.ParamToken, Column: "category"},
	"active":   {Type: search.ParamToken, Column: "active"},
	"price":    {Type: search.ParamNumber, Column: "unit_price"},
}

func (r *serviceRepoPG) scanService(row pgx.Row) (*CareService, error) {
	var s CareService
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.UnitPrice, &s.DurationMinutes,
		&s.RequiresPhysician, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *serviceRepoPG) scanServiceRows(rows pgx.Rows) ([]*CareService, error) {
	defer rows.Close()
	var items []*CareService
	for rows.Next() {
		s, err := r.scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *serviceRepoPG) Create(ctx context.Context, s *CareService) error {
	s.ID = uuid.New()
	_, err := r.conn().Exec(ctx, `
		INSERT INTO care_service (id, name, category, unit_price, duration_minutes, requires_physician, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.Name, s.Category, s.UnitPrice, s.DurationMinutes, s.RequiresPhysician, s.Active)
	return err
}

func (r *serviceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CareService, error) {
	return r.scanService(r.conn().QueryRow(ctx, `SELECT `+serviceCols+` FROM care_service WHERE id = $1`, id))
}

func (r *serviceRepoPG) Update(ctx context.Context, s *CareService) error {
	_, err := r.conn().Exec(ctx, `
		UPDATE care_service SET name=$2, category=$3, unit_price=$4, duration_minutes=$5,
			requires_physician=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Category, s.UnitPrice, s.DurationMinutes, s.RequiresPhysician, s.Active)
	return err
}

func (r *serviceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn().Exec(ctx, `DELETE FROM care_service WHERE id = $1`, id)
	return err
}

func (r *serviceRepoPG) List(ctx context.Context, limit, offset int) ([]*CareService, int, error) {
	var total int
	if err := r.conn().QueryRow(ctx, `SELECT COUNT(*) FROM care_service`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn().Query(ctx,
		`SELECT `+serviceCols+` FROM care_service ORDER BY created_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanServiceRows(rows)
	return items, total, err
}

func (r *serviceRepoPG) Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*CareService, int, error) {
	q := search.NewQuery("care_service", serviceCols)
	q.ApplyParams(params, serviceSearchParams)
	q.ApplySort(sort, "created_at ASC", serviceSearchParams)

	var total int
	if err := r.conn().QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn().Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanServiceRows(rows)
	return items, total, err
}

// ListAll returns the full catalog in insertion order, for seeding the
// in-memory snapshot at startup.
func (r *serviceRepoPG) ListAll(ctx context.Context) ([]*CareService, error) {
	rows, err := r.conn().Query(ctx, `SELECT `+serviceCols+` FROM care_service ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return r.scanServiceRows(rows)
}
