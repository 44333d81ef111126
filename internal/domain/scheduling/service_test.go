package scheduling_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/domain/scheduling"
	"github.com/cliniq/cliniq/internal/store"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*scheduling.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*scheduling.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, a *scheduling.Appointment) error {
	a.ID = uuid.New()
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment not found")
	}
	return a, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, a *scheduling.Appointment) error {
	if _, ok := r.appointments[a.ID]; !ok {
		return fmt.Errorf("appointment not found")
	}
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*scheduling.Appointment, int, error) {
	var out []*scheduling.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (r *fakeAppointmentRepo) Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*scheduling.Appointment, int, error) {
	var out []*scheduling.Appointment
	for _, a := range r.appointments {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (r *fakeAppointmentRepo) ListAll(ctx context.Context) ([]*scheduling.Appointment, error) {
	out, _, _ := r.Search(ctx, nil, "", 0, 0)
	return out, nil
}

type fakeConsultationRepo struct {
	consultations map[uuid.UUID]*scheduling.Consultation
}

func newFakeConsultationRepo() *fakeConsultationRepo {
	return &fakeConsultationRepo{consultations: make(map[uuid.UUID]*scheduling.Consultation)}
}

func (r *fakeConsultationRepo) Create(ctx context.Context, c *scheduling.Consultation) error {
	c.ID = uuid.New()
	cp := *c
	r.consultations[c.ID] = &cp
	return nil
}

func (r *fakeConsultationRepo) GetByID(ctx context.Context, id uuid.UUID) (*scheduling.Consultation, error) {
	c, ok := r.consultations[id]
	if !ok {
		return nil, fmt.Errorf("consultation not found")
	}
	return c, nil
}

func (r *fakeConsultationRepo) Update(ctx context.Context, c *scheduling.Consultation) error {
	if _, ok := r.consultations[c.ID]; !ok {
		return fmt.Errorf("consultation not found")
	}
	cp := *c
	r.consultations[c.ID] = &cp
	return nil
}

func (r *fakeConsultationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.consultations, id)
	return nil
}

func (r *fakeConsultationRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*scheduling.Consultation, int, error) {
	var out []*scheduling.Consultation
	for _, c := range r.consultations {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (r *fakeConsultationRepo) ListAll(ctx context.Context) ([]*scheduling.Consultation, error) {
	var out []*scheduling.Consultation
	for _, c := range r.consultations {
		out = append(out, c)
	}
	return out, nil
}

func newSchedulingService(t *testing.T) (*scheduling.Service, *store.Store) {
	t.Helper()
	st := store.New()
	return scheduling.NewService(newFakeAppointmentRepo(), newFakeConsultationRepo(), st), st
}

func TestCreateAppointment_Validates(t *testing.T) {
	svc, _ := newSchedulingService(t)
	now := time.Now()

	cases := []scheduling.Appointment{
		{StartTime: now, EndTime: now.Add(time.Hour)},                                    // no patient
		{PatientID: uuid.New(), EndTime: now.Add(time.Hour)},                             // no start
		{PatientID: uuid.New(), StartTime: now},                                          // no end
		{PatientID: uuid.New(), StartTime: now.Add(time.Hour), EndTime: now},              // end before start
		{PatientID: uuid.New(), StartTime: now, EndTime: now.Add(time.Hour), Status: "x"}, // bad status
	}
	for i := range cases {
		if err := svc.CreateAppointment(context.Background(), &cases[i]); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCreateAppointment_DefaultsAndMirrors(t *testing.T) {
	svc, st := newSchedulingService(t)
	now := time.Now()

	a := scheduling.Appointment{
		PatientID: uuid.New(),
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
	}
	if err := svc.CreateAppointment(context.Background(), &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != scheduling.AppointmentScheduled {
		t.Errorf("expected default status scheduled, got %s", a.Status)
	}
	if len(st.Appointments()) != 1 {
		t.Error("expected appointment mirrored into snapshot")
	}
}

func TestUpcomingAppointments_FromSnapshot(t *testing.T) {
	svc, st := newSchedulingService(t)
	patientID := uuid.New()

	st.UpsertAppointment(scheduling.Appointment{
		ID: uuid.New(), PatientID: patientID,
		StartTime: time.Now().Add(time.Hour), Status: scheduling.AppointmentScheduled,
	})
	st.UpsertAppointment(scheduling.Appointment{
		ID: uuid.New(), PatientID: uuid.New(),
		StartTime: time.Now().Add(time.Hour), Status: scheduling.AppointmentScheduled,
	})

	if got := svc.UpcomingAppointments(nil); len(got) != 2 {
		t.Errorf("expected 2 upcoming, got %d", len(got))
	}
	if got := svc.UpcomingAppointments(&patientID); len(got) != 1 {
		t.Errorf("expected 1 upcoming for patient, got %d", len(got))
	}
}

func TestDeleteAppointment_RemovesFromSnapshot(t *testing.T) {
	svc, st := newSchedulingService(t)
	now := time.Now()

	a := scheduling.Appointment{PatientID: uuid.New(), StartTime: now, EndTime: now.Add(time.Hour)}
	if err := svc.CreateAppointment(context.Background(), &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteAppointment(context.Background(), a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Appointments()) != 0 {
		t.Error("expected appointment removed from snapshot")
	}
}

func TestCreateConsultation(t *testing.T) {
	svc, st := newSchedulingService(t)

	c := scheduling.Consultation{PatientID: uuid.New(), Date: time.Now(), Diagnosis: "Paludisme"}
	if err := svc.CreateConsultation(context.Background(), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Snapshot().Consultations) != 1 {
		t.Error("expected consultation mirrored into snapshot")
	}

	if err := svc.CreateConsultation(context.Background(), &scheduling.Consultation{Date: time.Now()}); err == nil {
		t.Error("expected error for missing patient_id")
	}
	if err := svc.CreateConsultation(context.Background(), &scheduling.Consultation{PatientID: uuid.New()}); err == nil {
		t.Error("expected error for missing date")
	}
}
