// Package store persists persons, cursilhista profiles, and enrollments.
// Stores are interface-driven so services stay testable against the in-memory
// implementation while production runs on PostgreSQL.
package store

import (
	"context"

	"inscricao/internal/enrollment/models"
	dErrors "inscricao/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-level 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

	// ErrParticipationExists is returned when a write would give a person a
	// second confirmed/attended enrollment. PostgreSQL enforces this with a
	// partial unique index; the in-memory store checks explicitly.
	ErrParticipationExists = dErrors.New(dErrors.CodeConflict, "person already has a qualifying enrollment")
)

// Store is pure I/O. Merge rules, eligibility decisions, and amount fixing
// live in the services.
type Store interface {
	FindPersonByCPF(ctx context.Context, cpfNormalizado string) (*models.Person, error)
	CreatePerson(ctx context.Context, person *models.Person) error
	UpdatePerson(ctx context.Context, person *models.Person) error

	ListEnrollmentsByPerson(ctx context.Context, personID string) ([]models.Enrollment, error)
	CreateCursilhista(ctx context.Context, profile *models.Cursilhista) error
	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	UpdateEnrollmentStatus(ctx context.Context, enrollmentID, status string) error
}

// TxStore runs a function against the store inside a single transaction.
// Submission writes (person upsert + profile + enrollment) must not be
// partially visible, so they always go through RunInTx.
type TxStore interface {
	Store
	RunInTx(ctx context.Context, fn func(Store) error) error
}
