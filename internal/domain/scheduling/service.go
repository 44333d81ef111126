package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store is the slice of the in-memory snapshot this package needs: mirrored
// appointments and consultations for the derived views.
type Store interface {
	UpsertAppointment(a Appointment)
	RemoveAppointment(id uuid.UUID)
	Appointments() []Appointment
	UpsertConsultation(c Consultation)
	RemoveConsultation(id uuid.UUID)
}

type Service struct {
	appointments  AppointmentRepository
	consultations ConsultationRepository
	store         Store

	now func() time.Time
}

func NewService(appointments AppointmentRepository, consultations ConsultationRepository, store Store) *Service {
	return &Service{
		appointments:  appointments,
		consultations: consultations,
		store:         store,
		now:           time.Now,
	}
}

var validAppointmentStatuses = map[string]bool{
	AppointmentScheduled: true,
	AppointmentConfirmed: true,
	AppointmentCompleted: true,
	AppointmentCancelled: true,
	AppointmentNoShow:    true,
}

// -- Appointments --

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.StartTime.IsZero() {
		return fmt.Errorf("start_time is required")
	}
	if a.EndTime.IsZero() {
		return fmt.Errorf("end_time is required")
	}
	if !a.EndTime.After(a.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if a.Status == "" {
		a.Status = AppointmentScheduled
	}
	if !validAppointmentStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	created, err := s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *created
	s.store.UpsertAppointment(*created)
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	if a.Status != "" && !validAppointmentStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return err
	}
	updated, err := s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *updated
	s.store.UpsertAppointment(*updated)
	return nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	s.store.RemoveAppointment(id)
	return nil
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) SearchAppointments(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.Search(ctx, params, sort, limit, offset)
}

// UpcomingAppointments returns the live future appointments from the
// snapshot, soonest first, optionally filtered to one patient.
func (s *Service) UpcomingAppointments(patientID *uuid.UUID) []Appointment {
	appts := s.store.Appointments()
	if patientID != nil {
		appts = ForPatient(appts, *patientID)
	}
	return Upcoming(appts, s.now())
}

// -- Consultations --

func (s *Service) CreateConsultation(ctx context.Context, c *Consultation) error {
	if c.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if c.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if err := s.consultations.Create(ctx, c); err != nil {
		return err
	}
	created, err := s.consultations.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *created
	s.store.UpsertConsultation(*created)
	return nil
}

func (s *Service) GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.consultations.GetByID(ctx, id)
}

func (s *Service) UpdateConsultation(ctx context.Context, c *Consultation) error {
	if err := s.consultations.Update(ctx, c); err != nil {
		return err
	}
	updated, err := s.consultations.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *updated
	s.store.UpsertConsultation(*updated)
	return nil
}

func (s *Service) DeleteConsultation(ctx context.Context, id uuid.UUID) error {
	if err := s.consultations.Delete(ctx, id); err != nil {
		return err
	}
	s.store.RemoveConsultation(id)
	return nil
}

func (s *Service) ListConsultationsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	return s.consultations.ListByPatient(ctx, patientID, limit, offset)
}
