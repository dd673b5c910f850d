// Package service owns the authoritative submission path. It re-validates
// everything the wizard already checked: the client-side verdict is advisory
// UX, this code is what keeps the data correct.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"inscricao/internal/audit"
	"inscricao/internal/enrollment/models"
	"inscricao/internal/enrollment/store"
	"inscricao/internal/platform/metrics"
	"inscricao/pkg/cpf"
	dErrors "inscricao/pkg/domain-errors"
)

var tracer trace.Tracer = otel.Tracer("inscricao/enrollment")

type Service struct {
	store    store.TxStore
	validate *validator.Validate
	metrics  *metrics.Metrics
	audit    *audit.Publisher
	eventKey string
	now      func() time.Time
}

func NewService(txStore store.TxStore, m *metrics.Metrics, publisher *audit.Publisher, eventKey string) *Service {
	if eventKey == "" {
		eventKey = models.DefaultEventKey
	}
	return &Service{
		store:    txStore,
		validate: models.NewValidator(),
		metrics:  m,
		audit:    publisher,
		eventKey: eventKey,
		now:      time.Now,
	}
}

// Submit runs the full server-side pipeline: re-validate the CPF and payload,
// upsert the person, create the profile and the pending enrollment. All
// writes happen in one transaction; any failure leaves nothing behind.
//
// Duplicate participation is checked here with a read, but the read is racy
// by nature; the partial unique index in the store is the real guarantee.
func (s *Service) Submit(ctx context.Context, req *models.SubmissionRequest) (*models.Enrollment, error) {
	ctx, span := tracer.Start(ctx, "enrollment.Submit")
	defer span.End()

	normalized := cpf.Normalize(req.CPF)
	if !cpf.Valid(normalized) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cpf invalid")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, validationMessage(err))
	}

	eventKey := req.EventKey
	if eventKey == "" {
		eventKey = s.eventKey
	}
	now := s.now()

	var created *models.Enrollment
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		person, err := tx.FindPersonByCPF(ctx, normalized)
		switch {
		case err == nil:
			if participated, perr := s.hasParticipated(ctx, tx, person.ID); perr != nil {
				return perr
			} else if participated {
				s.metrics.IncDuplicates()
				s.audit.Emit(ctx, audit.Event{
					Action:   audit.ActionDuplicateRejected,
					PersonID: person.ID,
					EventKey: eventKey,
					Reason:   "cpf already participated",
				})
				return dErrors.New(dErrors.CodeConflict, "cpf already participated")
			}
			mergePerson(person, req)
			if err := tx.UpdatePerson(ctx, person); err != nil {
				return err
			}
		case dErrors.Is(err, dErrors.CodeNotFound):
			person = newPerson(normalized, req, now)
			if err := tx.CreatePerson(ctx, person); err != nil {
				return err
			}
		default:
			return err
		}

		profile := newCursilhista(person.ID, req, now)
		if err := tx.CreateCursilhista(ctx, profile); err != nil {
			return err
		}

		enrollment := &models.Enrollment{
			ID:            uuid.NewString(),
			PersonID:      person.ID,
			CursilhistaID: profile.ID,
			EventKey:      eventKey,
			Status:        models.StatusPending,
			Amount:        models.AmountFor(req.Financeiro.Metodo),
			PaymentMethod: paymentMethod(req.Financeiro.Metodo),
			CreatedAt:     now,
		}
		if err := tx.CreateEnrollment(ctx, enrollment); err != nil {
			return err
		}
		created = enrollment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncEnrollments()
	s.audit.Emit(ctx, audit.Event{
		Action:       audit.ActionEnrollmentCreated,
		PersonID:     created.PersonID,
		EnrollmentID: created.ID,
		EventKey:     created.EventKey,
		Method:       created.PaymentMethod,
		Amount:       created.Amount,
	})
	return created, nil
}

func (s *Service) hasParticipated(ctx context.Context, tx store.Store, personID string) (bool, error) {
	enrollments, err := tx.ListEnrollmentsByPerson(ctx, personID)
	if err != nil {
		return false, err
	}
	for _, e := range enrollments {
		if models.ParticipatedStatuses[e.Status] {
			return true, nil
		}
	}
	return false, nil
}

func newPerson(normalized string, req *models.SubmissionRequest, now time.Time) *models.Person {
	return &models.Person{
		ID:             uuid.NewString(),
		Nome:           req.DadosPessoais.Nome,
		Documento:      req.CPF,
		CPFNormalizado: normalized,
		Whatsapp:       req.DadosPessoais.Whatsapp,
		Email:          firstNonEmpty(req.Email, req.DadosPessoais.Email),
		Cidade:         req.DadosPessoais.Cidade,
		Igreja:         req.DadosPessoais.Igreja,
		Observacoes:    req.Observacoes,
		CreatedAt:      now,
	}
}

// mergePerson overwrites only the fields the new submission actually filled;
// absent values never null out what is already stored.
func mergePerson(person *models.Person, req *models.SubmissionRequest) {
	if req.DadosPessoais.Nome != "" {
		person.Nome = req.DadosPessoais.Nome
	}
	if req.DadosPessoais.Whatsapp != "" {
		person.Whatsapp = req.DadosPessoais.Whatsapp
	}
	if email := firstNonEmpty(req.Email, req.DadosPessoais.Email); email != "" {
		person.Email = email
	}
	if req.DadosPessoais.Cidade != "" {
		person.Cidade = req.DadosPessoais.Cidade
	}
	if req.DadosPessoais.Igreja != "" {
		person.Igreja = req.DadosPessoais.Igreja
	}
	if req.Observacoes != "" {
		person.Observacoes = req.Observacoes
	}
}

func newCursilhista(personID string, req *models.SubmissionRequest, now time.Time) *models.Cursilhista {
	return &models.Cursilhista{
		ID:                    uuid.NewString(),
		PersonID:              personID,
		Camiseta:              req.DadosPessoais.Camiseta,
		RestricaoAlimentar:    req.DadosPessoais.RestricaoAlimentar,
		RestricaoMedica:       firstNonEmpty(req.DadosPessoais.RestricaoMedica, req.Saude),
		ResponsavelFinanceiro: responsavelJSON(req),
		AceitaTermos:          req.Termos.Aceite,
		CreatedAt:             now,
	}
}

// responsavelJSON serializes the payer block. When the registrant pays for
// themselves the column stays empty, matching the legacy rows.
func responsavelJSON(req *models.SubmissionRequest) string {
	if req.Financeiro.ResponsavelProprio {
		return ""
	}
	resp := req.ResponsavelFinanceiro
	if resp == nil {
		resp = &models.RespFinanceiro{
			Nome:     req.Financeiro.RespNome,
			Relacao:  req.Financeiro.RespRelacao,
			Whatsapp: req.Financeiro.RespWhatsapp,
		}
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return ""
	}
	return string(raw)
}

func paymentMethod(metodo string) string {
	if metodo == "" {
		return models.MethodPix
	}
	return metodo
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// validationMessage flattens the first field error into a user-safe message.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return "invalid field: " + fieldErrs[0].Field()
	}
	return "invalid submission"
}
