// Package models holds the enrollment domain entities and the wire shapes of
// the public endpoints. Field names on the wire follow the original form
// payload (Portuguese keys) so existing clients keep working.
package models

import "time"

// Enrollment lifecycle statuses. Transitions past "pending" are owned by the
// administrative flow, not by this service.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusAttended  = "attended"
	StatusCancelled = "cancelled"
)

// Payment methods and their fixed prices. Amounts are constants, never
// derived; selecting a method fixes the price.
const (
	MethodPix    = "pix"
	MethodCartao = "cartao"

	AmountPix    = 700.08
	AmountCartao = 750.08
)

// DefaultEventKey identifies the current event edition when a submission does
// not name one.
const DefaultEventKey = "14-cursilho-2026"

// ParticipatedStatuses are the enrollment statuses that make a person
// ineligible for another cursilhista enrollment. Kept to exactly these two;
// widening the set is a product decision, not a code one.
var ParticipatedStatuses = map[string]bool{
	StatusConfirmed: true,
	StatusAttended:  true,
}

// AmountFor returns the fixed price for a payment method.
func AmountFor(method string) float64 {
	if method == MethodCartao {
		return AmountCartao
	}
	return AmountPix
}

// Person is the identity record, keyed by normalized CPF. Created on the
// first accepted submission and merge-updated on later ones.
type Person struct {
	ID             string    `json:"id"`
	Nome           string    `json:"nome"`
	Documento      string    `json:"documento"`
	CPFNormalizado string    `json:"cpf_normalizado"`
	Whatsapp       string    `json:"whatsapp"`
	Email          string    `json:"email"`
	Cidade         string    `json:"cidade"`
	Igreja         string    `json:"igreja"`
	Observacoes    string    `json:"observacoes"`
	CreatedAt      time.Time `json:"created_at"`
}

// Cursilhista is the per-event profile attached to a Person.
type Cursilhista struct {
	ID                    string    `json:"id"`
	PersonID              string    `json:"person_id"`
	Camiseta              string    `json:"camiseta"`
	RestricaoAlimentar    string    `json:"restricao_alimentar"`
	RestricaoMedica       string    `json:"restricao_medica"`
	ResponsavelFinanceiro string    `json:"responsavel_financeiro"`
	AceitaTermos          bool      `json:"aceita_termos"`
	CreatedAt             time.Time `json:"created_at"`
}

// Enrollment links a Person and a Cursilhista profile to an event edition.
type Enrollment struct {
	ID            string    `json:"id"`
	PersonID      string    `json:"person_id"`
	CursilhistaID string    `json:"cursilhista_id"`
	EventKey      string    `json:"event_key"`
	Status        string    `json:"status"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// PersonSummary is the subset of Person exposed by the CPF check endpoint.
type PersonSummary struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (p Person) Summary() PersonSummary {
	return PersonSummary{ID: p.ID, Nome: p.Nome, Whatsapp: p.Whatsapp, Email: p.Email}
}
