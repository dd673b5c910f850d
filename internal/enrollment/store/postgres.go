package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"inscricao/internal/enrollment/models"
)

//go:embed schema.sql
var schemaDDL string

// Postgres persists the enrollment entities in PostgreSQL. This store is
// pure I/O; merge rules and eligibility decisions belong to the services.
type Postgres struct {
	db   querier
	root *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx so the same methods serve
// transactional and non-transactional callers.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, root: db}
}

// EnsureSchema applies the embedded DDL. Statements are idempotent.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.root.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Postgres) FindPersonByCPF(ctx context.Context, cpfNormalizado string) (*models.Person, error) {
	query := `
		SELECT id, nome, COALESCE(documento, ''), cpf_normalizado,
		       COALESCE(whatsapp, ''), COALESCE(email, ''), COALESCE(cidade, ''),
		       COALESCE(igreja, ''), COALESCE(observacoes, ''), created_at
		FROM persons
		WHERE cpf_normalizado = $1
	`
	var p models.Person
	err := s.db.QueryRowContext(ctx, query, cpfNormalizado).Scan(
		&p.ID, &p.Nome, &p.Documento, &p.CPFNormalizado,
		&p.Whatsapp, &p.Email, &p.Cidade,
		&p.Igreja, &p.Observacoes, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find person: %w", err)
	}
	return &p, nil
}

func (s *Postgres) CreatePerson(ctx context.Context, person *models.Person) error {
	query := `
		INSERT INTO persons (id, nome, documento, cpf_normalizado, whatsapp, email, cidade, igreja, observacoes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		person.ID, person.Nome, person.Documento, person.CPFNormalizado,
		person.Whatsapp, person.Email, person.Cidade, person.Igreja,
		person.Observacoes, person.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrParticipationExists
		}
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func (s *Postgres) UpdatePerson(ctx context.Context, person *models.Person) error {
	query := `
		UPDATE persons
		SET nome = $2, whatsapp = $3, email = $4, cidade = $5, igreja = $6, observacoes = $7
		WHERE cpf_normalizado = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		person.CPFNormalizado, person.Nome, person.Whatsapp, person.Email,
		person.Cidade, person.Igreja, person.Observacoes,
	)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) ListEnrollmentsByPerson(ctx context.Context, personID string) ([]models.Enrollment, error) {
	query := `
		SELECT id, person_id, cursilhista_id, event_key, status, amount, payment_method, created_at
		FROM enrollments
		WHERE person_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var out []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.PersonID, &e.CursilhistaID, &e.EventKey,
			&e.Status, &e.Amount, &e.PaymentMethod, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return out, nil
}

func (s *Postgres) CreateCursilhista(ctx context.Context, profile *models.Cursilhista) error {
	query := `
		INSERT INTO cursilhistas (id, person_id, camiseta, restricao_alimentar, restricao_medica, responsavel_financeiro, aceita_termos, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.ID, profile.PersonID, profile.Camiseta, profile.RestricaoAlimentar,
		profile.RestricaoMedica, profile.ResponsavelFinanceiro, profile.AceitaTermos,
		profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create cursilhista: %w", err)
	}
	return nil
}

func (s *Postgres) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, person_id, cursilhista_id, event_key, status, amount, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		enrollment.ID, enrollment.PersonID, enrollment.CursilhistaID, enrollment.EventKey,
		enrollment.Status, enrollment.Amount, enrollment.PaymentMethod, enrollment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrParticipationExists
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateEnrollmentStatus(ctx context.Context, enrollmentID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE enrollments SET status = $2 WHERE id = $1`, enrollmentID, status)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrParticipationExists
		}
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// RunInTx executes fn against a transaction-scoped store. Any error rolls the
// whole submission back so partial records are never visible.
func (s *Postgres) RunInTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.root.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Postgres{db: tx, root: s.root}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isUniqueViolation detects PostgreSQL error 23505, raised both by the CPF
// uniqueness on persons and by the one-participation partial index.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
