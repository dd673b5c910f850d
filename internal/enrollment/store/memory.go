package store

import (
	"context"
	"sync"

	"inscricao/internal/enrollment/models"
)

// Memory keeps everything in maps. It intentionally favors clarity over
// performance; it backs unit tests and local runs without a database.
type Memory struct {
	txMu         sync.Mutex
	mu           sync.RWMutex
	persons      map[string]*models.Person // keyed by normalized CPF
	cursilhistas map[string]*models.Cursilhista
	enrollments  map[string]*models.Enrollment
}

func NewMemory() *Memory {
	return &Memory{
		persons:      make(map[string]*models.Person),
		cursilhistas: make(map[string]*models.Cursilhista),
		enrollments:  make(map[string]*models.Enrollment),
	}
}

func (s *Memory) FindPersonByCPF(_ context.Context, cpfNormalizado string) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.persons[cpfNormalizado]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *Memory) CreatePerson(_ context.Context, person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[person.CPFNormalizado]; ok {
		return ErrParticipationExists
	}
	copied := *person
	s.persons[person.CPFNormalizado] = &copied
	return nil
}

func (s *Memory) UpdatePerson(_ context.Context, person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[person.CPFNormalizado]; !ok {
		return ErrNotFound
	}
	copied := *person
	s.persons[person.CPFNormalizado] = &copied
	return nil
}

func (s *Memory) ListEnrollmentsByPerson(_ context.Context, personID string) ([]models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Enrollment
	for _, e := range s.enrollments {
		if e.PersonID == personID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *Memory) CreateCursilhista(_ context.Context, profile *models.Cursilhista) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	s.cursilhistas[profile.ID] = &copied
	return nil
}

func (s *Memory) CreateEnrollment(_ context.Context, enrollment *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if models.ParticipatedStatuses[enrollment.Status] && s.hasParticipationLocked(enrollment.PersonID, enrollment.ID) {
		return ErrParticipationExists
	}
	copied := *enrollment
	s.enrollments[enrollment.ID] = &copied
	return nil
}

func (s *Memory) UpdateEnrollmentStatus(_ context.Context, enrollmentID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return ErrNotFound
	}
	if models.ParticipatedStatuses[status] && s.hasParticipationLocked(e.PersonID, enrollmentID) {
		return ErrParticipationExists
	}
	e.Status = status
	return nil
}

// hasParticipationLocked mirrors the partial unique index on PostgreSQL:
// at most one confirmed/attended enrollment per person.
func (s *Memory) hasParticipationLocked(personID, excludeID string) bool {
	for _, e := range s.enrollments {
		if e.ID != excludeID && e.PersonID == personID && models.ParticipatedStatuses[e.Status] {
			return true
		}
	}
	return false
}

// RunInTx serializes submissions with a coarse lock. There is no rollback;
// the in-memory store exists for tests and local runs where a failed step
// fails the test anyway.
func (s *Memory) RunInTx(_ context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}
