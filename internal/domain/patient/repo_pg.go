package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliniq/cliniq/internal/platform/search"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, first_name, last_name, birth_date, gender, phone, email,
	address, blood_group, allergies,
	emergency_name, emergency_phone, emergency_relationship,
	insurance_provider, insurance_number, insurance_coverage_pct, insurance_expiry, insurance_policy_type,
	created_at, updated_at`

var patientSearchParams = map[string]search.ParamConfig{
	"first_name": {Type: search.ParamString, Column: "first_name"},
	"last_name":  {Type: search.ParamString, Column: "last_name"},
	"gender":     {Type: search.ParamToken, Column: "gender"},
	"phone":      {Type: search.ParamString, Column: "phone"},
	"email":      {Type: search.ParamString, Column: "email"},
	"birth_date": {Type: search.ParamDate, Column: "birth_date"},
}

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Gender, &p.Phone, &p.Email,
		&p.Address, &p.BloodGroup, &p.Allergies,
		&p.EmergencyContact.Name, &p.EmergencyContact.Phone, &p.EmergencyContact.Relationship,
		&p.Insurance.Provider, &p.Insurance.PolicyNumber, &p.Insurance.CoveragePct,
		&p.Insurance.ExpiryDate, &p.Insurance.PolicyType,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) scanPatientRows(rows pgx.Rows) ([]*Patient, error) {
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patient (id, first_name, last_name, birth_date, gender, phone, email,
			address, blood_group, allergies,
			emergency_name, emergency_phone, emergency_relationship,
			insurance_provider, insurance_number, insurance_coverage_pct, insurance_expiry, insurance_policy_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING `+patientCols,
		p.ID, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Phone, p.Email,
		p.Address, p.BloodGroup, p.Allergies,
		p.EmergencyContact.Name, p.EmergencyContact.Phone, p.EmergencyContact.Relationship,
		p.Insurance.Provider, p.Insurance.PolicyNumber, p.Insurance.CoveragePct,
		p.Insurance.ExpiryDate, p.Insurance.PolicyType)

	created, err := r.scanPatient(row)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, birth_date=$4, gender=$5, phone=$6, email=$7,
			address=$8, blood_group=$9, allergies=$10,
			emergency_name=$11, emergency_phone=$12, emergency_relationship=$13,
			insurance_provider=$14, insurance_number=$15, insurance_coverage_pct=$16,
			insurance_expiry=$17, insurance_policy_type=$18,
			updated_at=NOW()
		WHERE id = $1
		RETURNING `+patientCols,
		p.ID, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Phone, p.Email,
		p.Address, p.BloodGroup, p.Allergies,
		p.EmergencyContact.Name, p.EmergencyContact.Phone, p.EmergencyContact.Relationship,
		p.Insurance.Provider, p.Insurance.PolicyNumber, p.Insurance.CoveragePct,
		p.Insurance.ExpiryDate, p.Insurance.PolicyType)

	updated, err := r.scanPatient(row)
	if err != nil {
		return err
	}
	*p = *updated
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Patient, int, error) {
	q := search.NewQuery("patient", patientCols)
	q.ApplyParams(params, patientSearchParams)
	q.ApplySort(sort, "created_at DESC", patientSearchParams)

	var total int
	if err := r.pool.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanPatientRows(rows)
	return items, total, err
}

// ListAll returns every patient for the snapshot seed at startup.
func (r *repoPG) ListAll(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return r.scanPatientRows(rows)
}
