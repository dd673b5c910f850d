package models

// SubmissionRequest is the body of POST /submit-inscricao and POST /enroll.
// Validation tags cover structure only; CPF digits, phone lengths and birth
// dates go through the custom rules registered in NewValidator.
type SubmissionRequest struct {
	CPF                   string          `json:"cpf" validate:"required,cpfdigits"`
	Email                 string          `json:"email,omitempty" validate:"omitempty,email"`
	Termos                Termos          `json:"termos"`
	DadosPessoais         DadosPessoais   `json:"dadosPessoais"`
	Contato               Contato         `json:"contato"`
	Saude                 string          `json:"saude,omitempty"`
	Financeiro            Financeiro      `json:"financeiro"`
	ResponsavelFinanceiro *RespFinanceiro `json:"responsavelFinanceiro,omitempty"`
	Observacoes           string          `json:"observacoes,omitempty"`
	EventKey              string          `json:"event_key,omitempty"`
}

type Termos struct {
	Aceite bool `json:"aceite"`
}

type DadosPessoais struct {
	Nome               string `json:"nome" validate:"required,fullname"`
	Whatsapp           string `json:"whatsapp" validate:"required,brphone"`
	Nascimento         string `json:"nascimento,omitempty" validate:"omitempty,birthdate"`
	ContatoAltern      string `json:"contatoAltern,omitempty" validate:"omitempty,brphone"`
	Cidade             string `json:"cidade,omitempty"`
	UF                 string `json:"uf,omitempty" validate:"omitempty,len=2"`
	Igreja             string `json:"igreja,omitempty"`
	Email              string `json:"email,omitempty" validate:"omitempty,email"`
	Camiseta           string `json:"camiseta,omitempty"`
	RestricaoAlimentar string `json:"restricaoAlimentar,omitempty"`
	RestricaoMedica    string `json:"restricaoMedica,omitempty"`
}

type Contato struct {
	Whatsapp      string `json:"whatsapp,omitempty"`
	ContatoAltern string `json:"contatoAltern,omitempty"`
}

type Financeiro struct {
	ResponsavelProprio bool    `json:"responsavelProrio"`
	RespNome           string  `json:"respNome,omitempty"`
	RespRelacao        string  `json:"respRelacao,omitempty"`
	RespWhatsapp       string  `json:"respWhatsapp,omitempty"`
	Metodo             string  `json:"metodo" validate:"required,oneof=pix cartao"`
	Amount             float64 `json:"amount,omitempty"`
}

type RespFinanceiro struct {
	Nome     string `json:"nome,omitempty"`
	Relacao  string `json:"relacao,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
}

// LegacyEnrollRequest is the envelope the original POST /enroll accepted:
// flat cpf plus personal/finance/terms groups. The route still decodes it so
// older clients keep working; ToSubmission maps it onto the current shape
// before the pipeline runs.
type LegacyEnrollRequest struct {
	CPF      string         `json:"cpf"`
	Personal LegacyPersonal `json:"personal"`
	Finance  LegacyFinance  `json:"finance"`
	Terms    LegacyTerms    `json:"terms"`
	EventKey string         `json:"event_key,omitempty"`
}

type LegacyPersonal struct {
	Nome               string `json:"nome"`
	Whatsapp           string `json:"whatsapp"`
	Email              string `json:"email,omitempty"`
	Cidade             string `json:"cidade,omitempty"`
	Igreja             string `json:"igreja,omitempty"`
	Observacoes        string `json:"observacoes,omitempty"`
	Camiseta           string `json:"camiseta,omitempty"`
	RestricaoAlimentar string `json:"restricaoAlimentar,omitempty"`
	RestricaoMedica    string `json:"restricaoMedica,omitempty"`
}

type LegacyFinance struct {
	ResponsavelProprio bool            `json:"responsavelProrio"`
	Responsavel        *RespFinanceiro `json:"responsavel,omitempty"`
	Metodo             string          `json:"metodo,omitempty"`
}

type LegacyTerms struct {
	AceitaTermos bool `json:"aceitaTermos"`
}

// ToSubmission maps the legacy envelope onto SubmissionRequest. An absent
// metodo keeps the original pix fallback; the responsavel block only carries
// over when the person is not their own payer.
func (r *LegacyEnrollRequest) ToSubmission() *SubmissionRequest {
	metodo := r.Finance.Metodo
	if metodo == "" {
		metodo = MethodPix
	}
	req := &SubmissionRequest{
		CPF:    r.CPF,
		Email:  r.Personal.Email,
		Termos: Termos{Aceite: r.Terms.AceitaTermos},
		DadosPessoais: DadosPessoais{
			Nome:               r.Personal.Nome,
			Whatsapp:           r.Personal.Whatsapp,
			Cidade:             r.Personal.Cidade,
			Igreja:             r.Personal.Igreja,
			Email:              r.Personal.Email,
			Camiseta:           r.Personal.Camiseta,
			RestricaoAlimentar: r.Personal.RestricaoAlimentar,
			RestricaoMedica:    r.Personal.RestricaoMedica,
		},
		Financeiro: Financeiro{
			ResponsavelProprio: r.Finance.ResponsavelProprio,
			Metodo:             metodo,
		},
		Observacoes: r.Personal.Observacoes,
		EventKey:    r.EventKey,
	}
	if !r.Finance.ResponsavelProprio && r.Finance.Responsavel != nil {
		resp := *r.Finance.Responsavel
		req.ResponsavelFinanceiro = &resp
	}
	return req
}

// CheckResponse is the body of GET /check-cpf.
type CheckResponse struct {
	Exists       bool           `json:"exists"`
	Person       *PersonSummary `json:"person,omitempty"`
	Participated bool           `json:"participated"`
}

// SubmitResponse is the 201 body of POST /submit-inscricao.
type SubmitResponse struct {
	OK   bool        `json:"ok"`
	Data *Enrollment `json:"data"`
}

// EnrollResponse is the 201 body of the legacy POST /enroll endpoint.
type EnrollResponse struct {
	Success    bool        `json:"success"`
	Enrollment *Enrollment `json:"enrollment"`
}

// ErrorResponse is the uniform error envelope of every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
