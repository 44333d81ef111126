package store

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/domain/care"
	"github.com/cliniq/cliniq/internal/domain/insurance"
	"github.com/cliniq/cliniq/internal/domain/patient"
	"github.com/cliniq/cliniq/internal/domain/scheduling"
)

// Snapshot is one immutable view of every entity collection. Collections are
// ordered slices; catalog order is insertion order and the insurance matcher
// depends on it. A snapshot is never mutated after publication.
type Snapshot struct {
	Version uint64

	Patients      []patient.Patient
	CareRecords   []care.CareRecord
	CareServices  []care.CareService
	Providers     []insurance.Provider
	Policies      []insurance.Policy
	Enrollments   []insurance.PatientInsurance
	Appointments  []scheduling.Appointment
	Consultations []scheduling.Consultation
}

// Store is the process-wide holder of the current snapshot. Readers load the
// pointer atomically and never block; writers serialize on the mutex, build
// a replacement snapshot and swap it in whole.
type Store struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

func New() *Store {
	s := &Store{}
	s.snap.Store(&Snapshot{})
	return s
}

// Snapshot returns the current consistent view. The returned value and its
// collections must be treated as read-only.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Version returns the current snapshot version. It increases by one per
// applied action.
func (s *Store) Version() uint64 {
	return s.snap.Load().Version
}

// Seed carries the startup state loaded from persistence.
type Seed struct {
	Patients      []patient.Patient
	CareServices  []care.CareService
	Providers     []insurance.Provider
	Policies      []insurance.Policy
	Appointments  []scheduling.Appointment
	Consultations []scheduling.Consultation
}

// Init replaces the whole snapshot with the seeded collections. CareRecords
// and Enrollments start empty: they are session-local state created by the
// patient lifecycle, not loaded from persistence.
func (s *Store) Init(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &Snapshot{
		Version:       s.snap.Load().Version + 1,
		Patients:      append([]patient.Patient(nil), seed.Patients...),
		CareServices:  append([]care.CareService(nil), seed.CareServices...),
		Providers:     append([]insurance.Provider(nil), seed.Providers...),
		Policies:      append([]insurance.Policy(nil), seed.Policies...),
		Appointments:  append([]scheduling.Appointment(nil), seed.Appointments...),
		Consultations: append([]scheduling.Consultation(nil), seed.Consultations...),
	}
	s.snap.Store(next)
}

// apply builds the successor snapshot under the writer lock. mutate receives
// a shallow copy it may rewrite; collection slices it touches must be fresh.
func (s *Store) apply(mutate func(next *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := *cur
	next.Version = cur.Version + 1
	mutate(&next)
	s.snap.Store(&next)
}

// upsert replaces the element matching eq or appends v, always returning a
// fresh slice so published snapshots stay immutable.
func upsert[T any](in []T, eq func(T) bool, v T) []T {
	out := append([]T(nil), in...)
	for i := range out {
		if eq(out[i]) {
			out[i] = v
			return out
		}
	}
	return append(out, v)
}

// removeIf returns a fresh slice without the elements matching eq.
func removeIf[T any](in []T, eq func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !eq(v) {
			out = append(out, v)
		}
	}
	return out
}

// -- Patients --

func (s *Store) UpsertPatient(p patient.Patient) {
	s.apply(func(next *Snapshot) {
		next.Patients = upsert(next.Patients, func(x patient.Patient) bool { return x.ID == p.ID }, p)
	})
}

// RemovePatientCascade removes the patient together with its care records
// and enrollments in one swap, so readers never observe orphans.
func (s *Store) RemovePatientCascade(id uuid.UUID) {
	s.apply(func(next *Snapshot) {
		next.Patients = removeIf(next.Patients, func(x patient.Patient) bool { return x.ID == id })
		next.CareRecords = removeIf(next.CareRecords, func(x care.CareRecord) bool { return x.PatientID == id })
		next.Enrollments = removeIf(next.Enrollments, func(x insurance.PatientInsurance) bool { return x.PatientID == id })
	})
}

func (s *Store) Patients() []patient.Patient {
	return s.Snapshot().Patients
}

func (s *Store) PatientByID(id uuid.UUID) (patient.Patient, bool) {
	for _, p := range s.Snapshot().Patients {
		if p.ID == id {
			return p, true
		}
	}
	return patient.Patient{}, false
}

// -- Care services --

func (s *Store) UpsertCareService(svc care.CareService) {
	s.apply(func(next *Snapshot) {
		next.CareServices = upsert(next.CareServices, func(x care.CareService) bool { return x.ID == svc.ID }, svc)
	})
}

func (s *Store) RemoveCareService(id uuid.UUID) {
	s.apply(func(next *Snapshot) {
		next.CareServices = removeIf(next.CareServices, func(x care.CareService) bool { return x.ID == id })
	})
}

func (s *Store) CareServices() []care.CareService {
	return s.Snapshot().CareServices
}

func (s *Store) CareServiceByID(id uuid.UUID) (care.CareService, bool) {
	for _, svc := range s.Snapshot().CareServices {
		if svc.ID == id {
			return svc, true
		}
	}
	return care.CareService{}, false
}

// -- Care records --

func (s *Store) AddCareRecord(r care.CareRecord) {
	s.apply(func(next *Snapshot) {
		next.CareRecords = append(append([]care.CareRecord(nil), next.CareRecords...), r)
	})
}

func (s *Store) UpdateCareRecord(r care.CareRecord) {
	s.apply(func(next *Snapshot) {
		next.CareRecords = upsert(next.CareRecords, func(x care.CareRecord) bool { return x.ID == r.ID }, r)
	})
}

func (s *Store) CareRecords() []care.CareRecord {
	return s.Snapshot().CareRecords
}

func (s *Store) CareRecordByID(id uuid.UUID) (care.CareRecord, bool) {
	for _, r := range s.Snapshot().CareRecords {
		if r.ID == id {
			return r, true
		}
	}
	return care.CareRecord{}, false
}

func (s *Store) CareRecordsByPatient(patientID uuid.UUID) []care.CareRecord {
	var out []care.CareRecord
	for _, r := range s.Snapshot().CareRecords {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out
}

// -- Insurance catalog --

func (s *Store) UpsertProvider(p insurance.Provider) {
	s.apply(func(next *Snapshot) {
		next.Providers = upsert(next.Providers, func(x insurance.Provider) bool { return x.ID == p.ID }, p)
	})
}

// RemoveProvider removes a provider and its policies together.
func (s *Store) RemoveProvider(id uuid.UUID) {
	s.apply(func(next *Snapshot) {
		next.Providers = removeIf(next.Providers, func(x insurance.Provider) bool { return x.ID == id })
		next.Policies = removeIf(next.Policies, func(x insurance.Policy) bool { return x.ProviderID == id })
	})
}

func (s *Store) UpsertPolicy(p insurance.Policy) {
	s.apply(func(next *Snapshot) {
		next.Policies = upsert(next.Policies, func(x insurance.Policy) bool { return x.ID == p.ID }, p)
	})
}

func (s *Store) RemovePolicy(id uuid.UUID) {
	s.apply(func(next *Snapshot) {
		next.Policies = removeIf(next.Policies, func(x insurance.Policy) bool { return x.ID == id })
	})
}

// InsuranceCatalog returns the provider/policy catalog view the matcher runs
// against, in snapshot order.
func (s *Store) InsuranceCatalog() insurance.Catalog {
	snap := s.Snapshot()
	return insurance.Catalog{Providers: snap.Providers, Policies: snap.Policies}
}

// -- Enrollments --

func (s *Store) AddEnrollment(e insurance.PatientInsurance) {
	s.apply(func(next *Snapshot) {
		next.Enrollments = append(append([]insurance.PatientInsurance(nil), next.Enrollments...), e)
	})
}

func (s *Store) EnrollmentsByPatient(patientID uuid.UUID) []insurance.PatientInsurance {
	var out []insurance.PatientInsurance
	for _, e := range s.Snapshot().Enrollments {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out
}

// -- Appointments and consultations --

func (s *Store) UpsertAppointment(a scheduling.Appointment) {
	s.apply(func(next *Snapshot) {
		next.Appointments = upsert(next.Appointments, func(x scheduling.Appointment) bool { return x.ID == a.ID }, a)
	})
}

func (s *Store) RemoveAppointment(id uuid.UUID) {
	s.apply(func(next *Snapshot) {
		next.Appointments = removeIf(next.Appointments, func(x scheduling.Appointment) bool { return x.ID == id })
	})
}

func (s *Store) Appointments() []scheduling.Appointment {
	return s.Snapshot().Appointments
}

func (s *Store) UpsertConsultation(c scheduling.Consultation) {
	s.apply(func(next *Snapshot) {
		next.Consultations = upsert(next.Consultations, func(x scheduling.Consultation) bool { return x.ID == c.ID }, c)
	})
}

func (s *Store) RemoveConsultation(id uuid.UUID) {
	s.apply(func(next *Snapshot) {
		next.Consultations = removeIf(next.Consultations, func(x scheduling.Consultation) bool { return x.ID == id })
	})
}
