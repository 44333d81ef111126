package insurance

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

// =========== Provider Repository ===========

type providerRepoPG struct{ pool *pgxpool.Pool }

func NewProviderRepoPG(pool *pgxpool.Pool) ProviderRepository { return &providerRepoPG{pool: pool} }

const providerCols = `id, name, phone, email, active, created_at, updated_at`

var providerSearchParams = map[string]search.ParamConfig{
	"name":   {Type: search.ParamString, Column: "name"},
	"active": {Type: search.ParamToken, Column: "active"},
}

func (r *providerRepoPG) scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *providerRepoPG) scanProviderRows(rows pgx.Rows) ([]*Provider, error) {
	defer rows.Close()
	var items []*Provider
	for rows.Next() {
		p, err := r.scanProvider(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *providerRepoPG) Create(ctx context.Context, p *Provider) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO insurance_provider (id, name, phone, email, active)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.Name, p.Phone, p.Email, p.Active)
	return err
}

func (r *providerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return r.scanProvider(r.pool.QueryRow(ctx, `SELECT `+providerCols+` FROM insurance_provider WHERE id = $1`, id))
}

func (r *providerRepoPG) Update(ctx context.Context, p *Provider) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE insurance_provider SET name=$2, phone=$3, email=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Phone, p.Email, p.Active)
	return err
}

func (r *providerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM insurance_provider WHERE id = $1`, id)
	return err
}

func (r *providerRepoPG) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM insurance_provider`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+providerCols+` FROM insurance_provider ORDER BY created_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanProviderRows(rows)
	return items, total, err
}

func (r *providerRepoPG) Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Provider, int, error) {
	q := search.NewQuery("insurance_provider", providerCols)
	q.ApplyParams(params, providerSearchParams)
	q.ApplySort(sort, "created_at ASC", providerSearchParams)

	var total int
	if err := r.pool.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanProviderRows(rows)
	return items, total, err
}

// ListAll returns every provider in insertion order for the snapshot seed.
// Matching is order-dependent, so the ORDER BY here is load-bearing.
func (r *providerRepoPG) ListAll(ctx context.Context) ([]*Provider, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+providerCols+` FROM insurance_provider ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return r.scanProviderRows(rows)
}

// =========== Policy Repository ===========

type policyRepoPG struct{ pool *pgxpool.Pool }

func NewPolicyRepoPG(pool *pgxpool.Pool) PolicyRepository { return &policyRepoPG{pool: pool} }

const policyCols = `id, provider_id, name, coverage_pct, annual_limit, created_at, updated_at`

func (r *policyRepoPG) scanPolicy(row pgx.Row) (*Policy, error) {
	var p Policy
	err := row.Scan(&p.ID, &p.ProviderID, &p.Name, &p.CoveragePct, &p.AnnualLimit, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *policyRepoPG) scanPolicyRows(rows pgx.Rows) ([]*Policy, error) {
	defer rows.Close()
	var items []*Policy
	for rows.Next() {
		p, err := r.scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *policyRepoPG) Create(ctx context.Context, p *Policy) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO insurance_policy (id, provider_id, name, coverage_pct, annual_limit)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.ProviderID, p.Name, p.CoveragePct, p.AnnualLimit)
	return err
}

func (r *policyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Policy, error) {
	return r.scanPolicy(r.pool.QueryRow(ctx, `SELECT `+policyCols+` FROM insurance_policy WHERE id = $1`, id))
}

func (r *policyRepoPG) Update(ctx context.Context, p *Policy) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE insurance_policy SET name=$2, coverage_pct=$3, annual_limit=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.CoveragePct, p.AnnualLimit)
	return err
}

func (r *policyRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM insurance_policy WHERE id = $1`, id)
	return err
}

func (r *policyRepoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Policy, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM insurance_policy WHERE provider_id = $1`, providerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+policyCols+` FROM insurance_policy WHERE provider_id = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanPolicyRows(rows)
	return items, total, err
}

// ListAll returns every policy in insertion order for the snapshot seed.
func (r *policyRepoPG) ListAll(ctx context.Context) ([]*Policy, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+policyCols+` FROM insurance_policy ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return r.scanPolicyRows(rows)
}
