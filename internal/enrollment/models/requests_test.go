package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyEnrollRequest_ToSubmission(t *testing.T) {
	legacy := LegacyEnrollRequest{
		CPF: "111.444.777-35",
		Personal: LegacyPersonal{
			Nome:               "Maria Souza",
			Whatsapp:           "(11) 98765-4321",
			Email:              "maria@example.com",
			Cidade:             "Campinas",
			Igreja:             "Matriz",
			Observacoes:        "chegará no sábado",
			Camiseta:           "M",
			RestricaoAlimentar: "sem lactose",
		},
		Finance: LegacyFinance{
			Responsavel: &RespFinanceiro{Nome: "José Souza", Relacao: "pai", Whatsapp: "11912345678"},
			Metodo:      MethodCartao,
		},
		Terms:    LegacyTerms{AceitaTermos: true},
		EventKey: "15-cursilho-2027",
	}

	req := legacy.ToSubmission()
	assert.Equal(t, "111.444.777-35", req.CPF)
	assert.Equal(t, "Maria Souza", req.DadosPessoais.Nome)
	assert.Equal(t, "(11) 98765-4321", req.DadosPessoais.Whatsapp)
	assert.Equal(t, "maria@example.com", req.Email)
	assert.Equal(t, "maria@example.com", req.DadosPessoais.Email)
	assert.Equal(t, "Campinas", req.DadosPessoais.Cidade)
	assert.Equal(t, "chegará no sábado", req.Observacoes)
	assert.Equal(t, "sem lactose", req.DadosPessoais.RestricaoAlimentar)
	assert.Equal(t, MethodCartao, req.Financeiro.Metodo)
	assert.True(t, req.Termos.Aceite)
	assert.Equal(t, "15-cursilho-2027", req.EventKey)
	require.NotNil(t, req.ResponsavelFinanceiro)
	assert.Equal(t, "José Souza", req.ResponsavelFinanceiro.Nome)

	// The mapped request passes the same validation as a native one.
	require.NoError(t, NewValidator().Struct(req))
}

func TestLegacyEnrollRequest_ToSubmission_Defaults(t *testing.T) {
	legacy := LegacyEnrollRequest{
		CPF: "11144477735",
		Personal: LegacyPersonal{
			Nome:     "Maria Souza",
			Whatsapp: "11987654321",
		},
		Finance: LegacyFinance{
			ResponsavelProprio: true,
			Responsavel:        &RespFinanceiro{Nome: "ignorado"},
		},
	}

	req := legacy.ToSubmission()
	assert.Equal(t, MethodPix, req.Financeiro.Metodo, "absent metodo defaults to pix")
	assert.True(t, req.Financeiro.ResponsavelProprio)
	// Self-payers never carry a responsavel block, even when the old client
	// sent one anyway.
	assert.Nil(t, req.ResponsavelFinanceiro)
	assert.Empty(t, req.EventKey)
}
