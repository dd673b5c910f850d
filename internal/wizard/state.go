// Package wizard implements the registration wizard: a reducer-style state
// machine over the form steps, a debounced CPF checker with a staleness
// guard, and the HTTP clients that talk to the registration endpoints. The
// reducer is pure so every transition is testable without a UI harness.
package wizard

import (
	"time"

	"inscricao/internal/enrollment/models"
	"inscricao/pkg/cpf"
)

// Step indexes the wizard's strictly linear flow.
type Step int

const (
	StepTerms Step = iota
	StepIDEntry
	StepPersonalInfo
	StepFinancialResponsible
	StepPaymentMethod
	StepReview
	StepSuccess
)

// VerdictState is the CPF checker's visible state.
type VerdictState string

const (
	VerdictEmpty      VerdictState = "empty"
	VerdictIncomplete VerdictState = "incomplete"
	VerdictInvalid    VerdictState = "invalid"
	VerdictChecking   VerdictState = "checking"
	VerdictValid      VerdictState = "valid"
	VerdictDuplicate  VerdictState = "duplicate"
	VerdictError      VerdictState = "error"
)

// Verdict pairs the checker state with an optional user-facing message.
type Verdict struct {
	State   VerdictState
	Message string
}

// State is the whole wizard, owned by the caller and threaded through Reduce.
// ScrollToTop is a cosmetic hint for the rendering layer, set on every step
// change and cleared by ActionScrolled.
type State struct {
	Step        Step
	Agreement   bool
	CPF         string
	CPFVerdict  Verdict
	Personal    models.DadosPessoais
	Saude       string
	Finance     models.Financeiro
	ConfirmOpen bool
	Loading     bool
	ErrMsg      string
	Result      *models.Enrollment
	ScrollToTop bool
}

// NewState returns the initial wizard state: terms step, pix preselected at
// its fixed price.
func NewState() State {
	return State{
		Step:       StepTerms,
		CPFVerdict: Verdict{State: VerdictEmpty},
		Finance: models.Financeiro{
			ResponsavelProprio: true,
			Metodo:             models.MethodPix,
			Amount:             models.AmountPix,
		},
	}
}

// Action mutates the state through Reduce.
type Action interface{ isAction() }

type ActionSetAgreement struct{ Agreed bool }
type ActionSetCPF struct{ Value string }
type ActionVerdict struct{ Verdict Verdict }
type ActionSetPersonal struct{ Personal models.DadosPessoais }
type ActionSetSaude struct{ Value string }
type ActionSetPayer struct {
	Proprio  bool
	Nome     string
	Relacao  string
	Whatsapp string
}
type ActionSelectMethod struct{ Metodo string }
type ActionNext struct{}
type ActionBack struct{}
type ActionOpenConfirm struct{}
type ActionCloseConfirm struct{}
type ActionSubmitStarted struct{}
type ActionSubmitSucceeded struct{ Result *models.Enrollment }
type ActionSubmitFailed struct{ Message string }
type ActionScrolled struct{}

func (ActionSetAgreement) isAction()    {}
func (ActionSetCPF) isAction()          {}
func (ActionVerdict) isAction()         {}
func (ActionSetPersonal) isAction()     {}
func (ActionSetSaude) isAction()        {}
func (ActionSetPayer) isAction()        {}
func (ActionSelectMethod) isAction()    {}
func (ActionNext) isAction()            {}
func (ActionBack) isAction()            {}
func (ActionOpenConfirm) isAction()     {}
func (ActionCloseConfirm) isAction()    {}
func (ActionSubmitStarted) isAction()   {}
func (ActionSubmitSucceeded) isAction() {}
func (ActionSubmitFailed) isAction()    {}
func (ActionScrolled) isAction()        {}

// Reduce applies one action and returns the next state. It never performs
// I/O; the checker and submitter feed their outcomes back in as actions.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case ActionSetAgreement:
		s.Agreement = a.Agreed
		s.ErrMsg = ""

	case ActionSetCPF:
		s.CPF = a.Value
		s.ErrMsg = ""
		// Any edit resets the verdict to a neutral state; the checker will
		// follow up once the input has been quiet long enough.
		s.CPFVerdict = neutralVerdict(a.Value)

	case ActionVerdict:
		s.CPFVerdict = a.Verdict
		if a.Verdict.State == VerdictDuplicate || a.Verdict.State == VerdictError {
			s.ErrMsg = a.Verdict.Message
		} else {
			s.ErrMsg = ""
		}

	case ActionSetPersonal:
		s.Personal = a.Personal
		s.ErrMsg = ""

	case ActionSetSaude:
		s.Saude = a.Value

	case ActionSetPayer:
		s.Finance.ResponsavelProprio = a.Proprio
		s.Finance.RespNome = a.Nome
		s.Finance.RespRelacao = a.Relacao
		s.Finance.RespWhatsapp = a.Whatsapp
		s.ErrMsg = ""

	case ActionSelectMethod:
		// Selecting a method fixes the amount; it is never derived.
		s.Finance.Metodo = a.Metodo
		s.Finance.Amount = models.AmountFor(a.Metodo)

	case ActionNext:
		if msg, ok := advanceGuard(s); !ok {
			s.ErrMsg = msg
			return s
		}
		if s.Step < StepReview {
			s.Step++
			s.ErrMsg = ""
			s.ScrollToTop = true
		}

	case ActionBack:
		if s.Step > StepTerms && s.Step < StepSuccess {
			s.Step--
			s.ErrMsg = ""
			s.ConfirmOpen = false
			s.ScrollToTop = true
		}

	case ActionOpenConfirm:
		if s.Step == StepReview {
			s.ConfirmOpen = true
		}

	case ActionCloseConfirm:
		s.ConfirmOpen = false

	case ActionSubmitStarted:
		s.Loading = true
		s.ErrMsg = ""

	case ActionSubmitSucceeded:
		s.Loading = false
		s.ConfirmOpen = false
		s.Result = a.Result
		s.Step = StepSuccess
		s.ScrollToTop = true

	case ActionSubmitFailed:
		// Stay on Review; the server re-checks duplication, so retrying the
		// same submission is safe.
		s.Loading = false
		s.ConfirmOpen = false
		s.ErrMsg = a.Message

	case ActionScrolled:
		s.ScrollToTop = false
	}
	return s
}

// advanceGuard returns whether the current step may advance, with the
// message to show when it may not.
func advanceGuard(s State) (string, bool) {
	switch s.Step {
	case StepTerms:
		if !s.Agreement {
			return "você precisa concordar com os termos", false
		}
	case StepIDEntry:
		if s.CPFVerdict.State != VerdictValid {
			switch s.CPFVerdict.State {
			case VerdictDuplicate:
				return "cpf já participou como cursilhista", false
			case VerdictChecking:
				return "aguarde a verificação do cpf", false
			default:
				return "cpf inválido", false
			}
		}
	case StepPersonalInfo:
		if !models.ValidName(s.Personal.Nome) || !models.ValidPhone(s.Personal.Whatsapp) {
			return "preencha nome e whatsapp corretamente", false
		}
		if s.Personal.Nascimento != "" && !validBirth(s.Personal.Nascimento) {
			return "data de nascimento inválida", false
		}
	case StepFinancialResponsible:
		if !s.Finance.ResponsavelProprio && (s.Finance.RespNome == "" || s.Finance.RespWhatsapp == "") {
			return "preencha os dados do responsável financeiro", false
		}
	case StepPaymentMethod:
		if s.Finance.Metodo == "" {
			return "selecione a forma de pagamento", false
		}
	case StepReview, StepSuccess:
		// Review advances only through Submit; Success is terminal.
		return "", false
	}
	return "", true
}

func validBirth(formatted string) bool {
	return models.ValidBirthDate(formatted, time.Now())
}

func neutralVerdict(raw string) Verdict {
	switch n := len(cpf.Normalize(raw)); {
	case n == 0:
		return Verdict{State: VerdictEmpty}
	case n < 11:
		return Verdict{State: VerdictIncomplete}
	case n == 11:
		// A full candidate is "checking" from the user's point of view even
		// while the debounce window is still open.
		return Verdict{State: VerdictChecking}
	default:
		return Verdict{State: VerdictInvalid}
	}
}
