package scheduling

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliniq/cliniq/internal/platform/search"
)

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `id, patient_id, practitioner, start_time, end_time, reason, status, created_at, updated_at`

var apptSearchParams = map[string]search.ParamConfig{
	"patient_id":   {Type: search.ParamToken, Column: "patient_id"},
	"practitioner": {Type: search.ParamString, Column: "practitioner"},
	"status":       {Type: search.ParamToken, Column: "status"},
	"start":        {Type: search.ParamDate, Column: "start_time"},
}

func (r *appointmentRepoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.Practitioner, &a.StartTime, &a.EndTime,
		&a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) scanAppointmentRows(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, patient_id, practitioner, start_time, end_time, reason, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.Practitioner, a.StartTime, a.EndTime, a.Reason, a.Status)
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointment SET practitioner=$2, start_time=$3, end_time=$4, reason=$5, status=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Practitioner, a.StartTime, a.EndTime, a.Reason, a.Status)
	return err
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	return err
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE patient_id = $1 ORDER BY start_time ASC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanAppointmentRows(rows)
	return items, total, err
}

func (r *appointmentRepoPG) Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Appointment, int, error) {
	q := search.NewQuery("appointment", apptCols)
	q.ApplyParams(params, apptSearchParams)
	q.ApplySort(sort, "start_time ASC", apptSearchParams)

	var total int
	if err := r.pool.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanAppointmentRows(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListAll(ctx context.Context) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return r.scanAppointmentRows(rows)
}

// =========== Consultation Repository ===========

type consultationRepoPG struct{ pool *pgxpool.Pool }

func NewConsultationRepoPG(pool *pgxpool.Pool) ConsultationRepository {
	return &consultationRepoPG{pool: pool}
}

const consultCols = `id, patient_id, appointment_id, consult_date, practitioner, diagnosis, notes, created_at, updated_at`

func (r *consultationRepoPG) scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(&c.ID, &c.PatientID, &c.AppointmentID, &c.Date, &c.Practitioner,
		&c.Diagnosis, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *consultationRepoPG) scanConsultationRows(rows pgx.Rows) ([]*Consultation, error) {
	defer rows.Close()
	var items []*Consultation
	for rows.Next() {
		c, err := r.scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *consultationRepoPG) Create(ctx context.Context, c *Consultation) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO consultation (id, patient_id, appointment_id, consult_date, practitioner, diagnosis, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.PatientID, c.AppointmentID, c.Date, c.Practitioner, c.Diagnosis, c.Notes)
	return err
}

func (r *consultationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return r.scanConsultation(r.pool.QueryRow(ctx, `SELECT `+consultCols+` FROM consultation WHERE id = $1`, id))
}

func (r *consultationRepoPG) Update(ctx context.Context, c *Consultation) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE consultation SET consult_date=$2, practitioner=$3, diagnosis=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Date, c.Practitioner, c.Diagnosis, c.Notes)
	return err
}

func (r *consultationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM consultation WHERE id = $1`, id)
	return err
}

func (r *consultationRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM consultation WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+consultCols+` FROM consultation WHERE patient_id = $1 ORDER BY consult_date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanConsultationRows(rows)
	return items, total, err
}

func (r *consultationRepoPG) ListAll(ctx context.Context) ([]*Consultation, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+consultCols+` FROM consultation ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return r.scanConsultationRows(rows)
}
