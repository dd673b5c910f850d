// Package eligibility answers one question: may this CPF enroll as a
// cursilhista? It joins the person lookup with the person's enrollment
// statuses. Read-only; verdicts are recomputed per query, never stored.
package eligibility

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"inscricao/internal/enrollment/models"
	"inscricao/internal/platform/metrics"
	"inscricao/pkg/cpf"
	dErrors "inscricao/pkg/domain-errors"
)

var tracer trace.Tracer = otel.Tracer("inscricao/eligibility")

// Verdict is the exists/participated pair for a CPF.
type Verdict struct {
	Exists       bool
	Person       *models.PersonSummary
	Participated bool
}

// Reader is the read-only slice of the store this service needs.
type Reader interface {
	FindPersonByCPF(ctx context.Context, cpfNormalizado string) (*models.Person, error)
	ListEnrollmentsByPerson(ctx context.Context, personID string) ([]models.Enrollment, error)
}

type Service struct {
	store   Reader
	metrics *metrics.Metrics
	group   singleflight.Group
}

func NewService(reader Reader, m *metrics.Metrics) *Service {
	return &Service{store: reader, metrics: m}
}

// Check looks up a person by normalized CPF and inspects their enrollments.
// Unknown CPFs yield a zero Verdict, not an error; only transport/storage
// faults error out. Concurrent checks for the same CPF collapse into one
// lookup; the wizard's debounced checker can stack requests when typing
// pauses line up with slow responses.
func (s *Service) Check(ctx context.Context, rawCPF string) (Verdict, error) {
	ctx, span := tracer.Start(ctx, "eligibility.Check")
	defer span.End()

	normalized := cpf.Normalize(rawCPF)
	if len(normalized) != 11 {
		return Verdict{}, dErrors.New(dErrors.CodeBadRequest, "cpf invalid")
	}

	// The collapsed lookup serves every caller that piled onto this key, so
	// it must not die with whichever request happened to arrive first.
	lookupCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(normalized, func() (any, error) {
		return s.lookup(lookupCtx, normalized)
	})
	if err != nil {
		s.metrics.RecordCheck("error")
		return Verdict{}, err
	}
	verdict := v.(Verdict)
	switch {
	case verdict.Participated:
		s.metrics.RecordCheck("participated")
	case verdict.Exists:
		s.metrics.RecordCheck("exists")
	default:
		s.metrics.RecordCheck("free")
	}
	return verdict, nil
}

func (s *Service) lookup(ctx context.Context, normalized string) (Verdict, error) {
	person, err := s.store.FindPersonByCPF(ctx, normalized)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			return Verdict{}, nil
		}
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "lookup failed")
	}

	enrollments, err := s.store.ListEnrollmentsByPerson(ctx, person.ID)
	if err != nil {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "lookup failed")
	}

	summary := person.Summary()
	verdict := Verdict{Exists: true, Person: &summary}
	for _, e := range enrollments {
		if models.ParticipatedStatuses[e.Status] {
			verdict.Participated = true
			break
		}
	}
	return verdict, nil
}
