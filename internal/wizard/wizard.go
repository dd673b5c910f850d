package wizard

import (
	"context"
	"sync"
	"time"

	"inscricao/internal/enrollment/models"
	dErrors "inscricao/pkg/domain-errors"
)

// Submitter sends the assembled payload to the backend.
type Submitter interface {
	Submit(ctx context.Context, payload *models.SubmissionRequest) (*models.Enrollment, error)
}

// Wizard binds the pure reducer to the checker and the submitter. The
// rendering layer dispatches actions and reads State; everything effectful
// comes back in as an action.
type Wizard struct {
	mu        sync.Mutex
	state     State
	checker   *DebouncedChecker
	submitter Submitter
	onChange  func(State)
}

// Option configures the Wizard.
type Option func(*Wizard)

// WithDebounce overrides the checker's quiet period (tests use a short one).
func WithDebounce(window time.Duration) Option {
	return func(w *Wizard) { w.checker.window = window }
}

// WithObserver registers a callback invoked after every state change.
func WithObserver(fn func(State)) Option {
	return func(w *Wizard) { w.onChange = fn }
}

// New creates a wizard over a remote checker and a submitter.
func New(remote RemoteChecker, submitter Submitter, opts ...Option) *Wizard {
	w := &Wizard{state: NewState(), submitter: submitter}
	w.checker = NewDebouncedChecker(remote, 0, func(v Verdict) {
		w.Dispatch(ActionVerdict{Verdict: v})
	})
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns a snapshot of the current wizard state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Dispatch runs one action through the reducer. ActionSetCPF additionally
// feeds the checker, outside the lock so verdict callbacks cannot deadlock.
func (w *Wizard) Dispatch(action Action) State {
	w.mu.Lock()
	w.state = Reduce(w.state, action)
	next := w.state
	onChange := w.onChange
	w.mu.Unlock()

	if set, ok := action.(ActionSetCPF); ok {
		w.checker.Input(set.Value)
	}
	if onChange != nil {
		onChange(next)
	}
	return next
}

// Next and Back are dispatch shorthands for the navigation buttons.
func (w *Wizard) Next() State { return w.Dispatch(ActionNext{}) }
func (w *Wizard) Back() State { return w.Dispatch(ActionBack{}) }

// Submit fires the assembled payload from the review step. It requires the
// confirmation modal to be open; the review step re-validates through it.
// On failure the wizard stays on Review; the server re-checks duplication,
// so a retry with the same payload is safe.
func (w *Wizard) Submit(ctx context.Context) State {
	w.mu.Lock()
	if w.state.Step != StepReview || !w.state.ConfirmOpen || w.state.Loading {
		state := w.state
		w.mu.Unlock()
		return state
	}
	payload := buildPayload(w.state)
	w.mu.Unlock()

	w.Dispatch(ActionSubmitStarted{})
	enrollment, err := w.submitter.Submit(ctx, payload)
	if err != nil {
		return w.Dispatch(ActionSubmitFailed{Message: dErrors.Message(err)})
	}
	return w.Dispatch(ActionSubmitSucceeded{Result: enrollment})
}

// Close tears the wizard down; in-flight checker resolutions become no-ops.
func (w *Wizard) Close() {
	w.checker.Close()
}

// buildPayload merges every collected field group into the submission body.
// When the registrant pays for themselves the financial-responsible block is
// filled from their own data, relation "Próprio".
func buildPayload(s State) *models.SubmissionRequest {
	resp := &models.RespFinanceiro{
		Nome:     s.Finance.RespNome,
		Relacao:  s.Finance.RespRelacao,
		Whatsapp: s.Finance.RespWhatsapp,
	}
	if s.Finance.ResponsavelProprio {
		resp = &models.RespFinanceiro{
			Nome:     s.Personal.Nome,
			Relacao:  "Próprio",
			Whatsapp: s.Personal.Whatsapp,
		}
	}
	return &models.SubmissionRequest{
		CPF:           s.CPF,
		Email:         s.Personal.Email,
		Termos:        models.Termos{Aceite: s.Agreement},
		DadosPessoais: s.Personal,
		Contato: models.Contato{
			Whatsapp:      s.Personal.Whatsapp,
			ContatoAltern: s.Personal.ContatoAltern,
		},
		Saude:                 s.Saude,
		Financeiro:            s.Finance,
		ResponsavelFinanceiro: resp,
	}
}
