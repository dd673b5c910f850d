package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"inscricao/internal/address"
	"inscricao/internal/eligibility"
	"inscricao/internal/enrollment/handler"
	"inscricao/internal/enrollment/handler/mocks"
	"inscricao/internal/enrollment/models"
	dErrors "inscricao/pkg/domain-errors"
)

const validCPF = "11144477735"

func newTestServer(t *testing.T) (*mocks.MockCheckService, *mocks.MockSubmitService, *httptest.Server) {
	t.Helper()
	ctrl := gomock.NewController(t)
	check := mocks.NewMockCheckService(ctrl)
	submit := mocks.NewMockSubmitService(ctrl)

	h := handler.New(check, submit, slog.Default(), nil)
	router := chi.NewRouter()
	h.Register(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return check, submit, srv
}

func decodeJSON[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestCheckCPF(t *testing.T) {
	check, _, srv := newTestServer(t)

	summary := &models.PersonSummary{ID: "p1", Nome: "Maria Souza", Whatsapp: "11987654321"}
	check.EXPECT().Check(gomock.Any(), validCPF).
		Return(eligibility.Verdict{Exists: true, Person: summary, Participated: true}, nil)

	res, err := http.Get(srv.URL + "/check-cpf?cpf=" + validCPF)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeJSON[models.CheckResponse](t, res)
	assert.True(t, body.Exists)
	assert.True(t, body.Participated)
	require.NotNil(t, body.Person)
	assert.Equal(t, "Maria Souza", body.Person.Nome)
}

func TestCheckCPF_MalformedIs400(t *testing.T) {
	_, _, srv := newTestServer(t)

	for _, query := range []string{"", "cpf=123", "cpf=111444777351"} {
		res, err := http.Get(srv.URL + "/check-cpf?" + query)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, "query=%q", query)

		body := decodeJSON[models.ErrorResponse](t, res)
		assert.NotEmpty(t, body.Error)
	}
}

func TestCheckCPF_ServiceFailureIs503(t *testing.T) {
	check, _, srv := newTestServer(t)
	check.EXPECT().Check(gomock.Any(), validCPF).
		Return(eligibility.Verdict{}, dErrors.New(dErrors.CodeUnavailable, "lookup failed"))

	res, err := http.Get(srv.URL + "/check-cpf?cpf=" + validCPF)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func submissionBody(t *testing.T) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(models.SubmissionRequest{
		CPF:           validCPF,
		Termos:        models.Termos{Aceite: true},
		DadosPessoais: models.DadosPessoais{Nome: "Maria Souza", Whatsapp: "11987654321"},
		Financeiro:    models.Financeiro{ResponsavelProprio: true, Metodo: models.MethodPix},
	})
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestSubmitInscricao(t *testing.T) {
	_, submit, srv := newTestServer(t)

	enrollment := &models.Enrollment{ID: "e1", Status: models.StatusPending, Amount: models.AmountPix}
	submit.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(enrollment, nil)

	res, err := http.Post(srv.URL+"/submit-inscricao", "application/json", submissionBody(t))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	body := decodeJSON[models.SubmitResponse](t, res)
	assert.True(t, body.OK)
	require.NotNil(t, body.Data)
	assert.Equal(t, "e1", body.Data.ID)
}

func TestSubmitInscricao_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", dErrors.New(dErrors.CodeInvalidInput, "invalid field: Nome"), http.StatusBadRequest},
		{"duplicate", dErrors.New(dErrors.CodeConflict, "cpf already participated"), http.StatusConflict},
		{"storage down", dErrors.New(dErrors.CodeUnavailable, "lookup failed"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, submit, srv := newTestServer(t)
			submit.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			res, err := http.Post(srv.URL+"/submit-inscricao", "application/json", submissionBody(t))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.StatusCode)

			body := decodeJSON[models.ErrorResponse](t, res)
			assert.Equal(t, dErrors.Message(tt.err), body.Error)
		})
	}
}

func TestSubmitInscricao_MalformedBodyIs400(t *testing.T) {
	_, _, srv := newTestServer(t)

	res, err := http.Post(srv.URL+"/submit-inscricao", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCEPProxy(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockAddressLookup(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), "13015110").
		Return(address.Address{Street: "Rua Barão de Jaguara", City: "Campinas", UF: "SP"}, nil)

	h := handler.New(mocks.NewMockCheckService(ctrl), mocks.NewMockSubmitService(ctrl),
		slog.Default(), nil, handler.WithAddressLookup(lookup))
	router := chi.NewRouter()
	h.Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL + "/cep/13015110")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeJSON[address.Address](t, res)
	assert.Equal(t, "Campinas", body.City)
}

func TestCEPProxy_NotRegisteredWithoutLookup(t *testing.T) {
	_, _, srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/cep/13015110")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// The legacy route takes the original cpf/personal/finance/terms envelope,
// not the current submission shape, and maps it before the pipeline runs.
func TestEnroll_LegacyEnvelope(t *testing.T) {
	_, submit, srv := newTestServer(t)

	enrollment := &models.Enrollment{ID: "e1", Status: models.StatusPending}
	var got *models.SubmissionRequest
	submit.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.SubmissionRequest) (*models.Enrollment, error) {
			got = req
			return enrollment, nil
		})

	raw, err := json.Marshal(models.LegacyEnrollRequest{
		CPF: validCPF,
		Personal: models.LegacyPersonal{
			Nome:        "Maria Souza",
			Whatsapp:    "11987654321",
			Cidade:      "Campinas",
			Observacoes: "chegará no sábado",
		},
		Finance: models.LegacyFinance{
			Responsavel: &models.RespFinanceiro{Nome: "José Souza", Relacao: "pai"},
		},
		Terms: models.LegacyTerms{AceitaTermos: true},
	})
	require.NoError(t, err)

	res, err := http.Post(srv.URL+"/enroll", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	body := decodeJSON[models.EnrollResponse](t, res)
	assert.True(t, body.Success)
	require.NotNil(t, body.Enrollment)
	assert.Equal(t, "e1", body.Enrollment.ID)

	require.NotNil(t, got)
	assert.Equal(t, validCPF, got.CPF)
	assert.Equal(t, "Maria Souza", got.DadosPessoais.Nome)
	assert.Equal(t, "chegará no sábado", got.Observacoes)
	assert.True(t, got.Termos.Aceite)
	assert.Equal(t, models.MethodPix, got.Financeiro.Metodo, "absent metodo falls back to pix")
	require.NotNil(t, got.ResponsavelFinanceiro)
	assert.Equal(t, "José Souza", got.ResponsavelFinanceiro.Nome)
}
