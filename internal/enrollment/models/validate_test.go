package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("Ana"))
	assert.True(t, ValidName("  João da Silva  "))
	assert.False(t, ValidName("Jo"))
	assert.False(t, ValidName("   "))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("(11) 98765-4321"))
	assert.True(t, ValidPhone("(11) 3456-7890"))
	assert.False(t, ValidPhone("98765-4321"))
	assert.False(t, ValidPhone("(11) 98765-43210"))
	assert.False(t, ValidPhone(""))
}

func TestValidBirthDate(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, ValidBirthDate("01/03/1980", now))
	assert.True(t, ValidBirthDate("29/02/2000", now)) // leap year
	assert.False(t, ValidBirthDate("29/02/2001", now))
	assert.False(t, ValidBirthDate("31/04/1990", now))
	assert.False(t, ValidBirthDate("01/13/1990", now))
	assert.False(t, ValidBirthDate("01/01/1899", now))
	assert.False(t, ValidBirthDate("01/01/2027", now)) // future year
	assert.False(t, ValidBirthDate("1/3/80", now))
}

func TestNewValidator_SubmissionRequest(t *testing.T) {
	v := NewValidator()

	req := SubmissionRequest{
		CPF: "111.444.777-35",
		DadosPessoais: DadosPessoais{
			Nome:     "João da Silva",
			Whatsapp: "(11) 98765-4321",
		},
		Financeiro: Financeiro{ResponsavelProprio: true, Metodo: MethodPix},
	}
	require.NoError(t, v.Struct(req))

	bad := req
	bad.CPF = "11144477736"
	assert.Error(t, v.Struct(bad))

	bad = req
	bad.DadosPessoais.Nome = "Jo"
	assert.Error(t, v.Struct(bad))

	bad = req
	bad.Financeiro.Metodo = "boleto"
	assert.Error(t, v.Struct(bad))

	bad = req
	bad.DadosPessoais.Nascimento = "31/02/1990"
	assert.Error(t, v.Struct(bad))
}

func TestAmountFor(t *testing.T) {
	assert.Equal(t, AmountPix, AmountFor(MethodPix))
	assert.Equal(t, AmountCartao, AmountFor(MethodCartao))
	// Unknown methods never reach storage; the default keeps the legacy
	// endpoint's pix fallback.
	assert.Equal(t, AmountPix, AmountFor(""))
}
