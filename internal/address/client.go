// Package address looks up Brazilian postal codes (CEP) for form autofill.
// Strictly best-effort: a miss or an outage returns ErrNotFound-style
// results and never blocks a submission.
package address

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	dErrors "inscricao/pkg/domain-errors"
)

// Address is the structured result for a CEP.
type Address struct {
	Street string `json:"logradouro"`
	City   string `json:"localidade"`
	UF     string `json:"uf"`
}

// viaCEPResponse adds the lookup-miss marker the upstream API uses.
type viaCEPResponse struct {
	Address
	Erro bool `json:"erro"`
}

// Client queries a ViaCEP-compatible endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Lookup resolves an 8-digit CEP. Unknown codes return a not_found coded
// error; transport faults return unavailable. Callers treat both as "skip
// the autofill".
func (c *Client) Lookup(ctx context.Context, rawCEP string) (Address, error) {
	digits := onlyDigits(rawCEP)
	if len(digits) != 8 {
		return Address{}, dErrors.New(dErrors.CodeInvalidInput, "cep inválido")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+digits+"/json/", nil)
	if err != nil {
		return Address{}, dErrors.Wrap(err, dErrors.CodeInternal, "falha na consulta de cep")
	}
	res, err := c.http.Do(req)
	if err != nil {
		return Address{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "falha na consulta de cep")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Address{}, dErrors.New(dErrors.CodeUnavailable, "falha na consulta de cep")
	}
	var out viaCEPResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Address{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "falha na consulta de cep")
	}
	if out.Erro {
		return Address{}, dErrors.New(dErrors.CodeNotFound, "cep não encontrado")
	}
	return out.Address, nil
}

func onlyDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
