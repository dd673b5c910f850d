package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscricao/internal/enrollment/models"
	"inscricao/internal/enrollment/store"
	dErrors "inscricao/pkg/domain-errors"
)

const validCPF = "11144477735"

func seedPerson(t *testing.T, mem *store.Memory, status string) *models.Person {
	t.Helper()
	ctx := context.Background()

	person := &models.Person{
		ID:             "p1",
		Nome:           "Maria Souza",
		Documento:      "111.444.777-35",
		CPFNormalizado: validCPF,
		Whatsapp:       "11987654321",
		Email:          "maria@example.com",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, mem.CreatePerson(ctx, person))

	if status != "" {
		require.NoError(t, mem.CreateEnrollment(ctx, &models.Enrollment{
			ID:       "e1",
			PersonID: person.ID,
			EventKey: models.DefaultEventKey,
			Status:   status,
		}))
	}
	return person
}

func TestCheck_RejectsMalformedCPF(t *testing.T) {
	svc := NewService(store.NewMemory(), nil)

	for _, raw := range []string{"", "123", "111.444.777-3", "111444777351"} {
		_, err := svc.Check(context.Background(), raw)
		require.Error(t, err, "raw=%q", raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	}
}

func TestCheck_UnknownCPFIsFree(t *testing.T) {
	svc := NewService(store.NewMemory(), nil)

	verdict, err := svc.Check(context.Background(), validCPF)
	require.NoError(t, err)
	assert.False(t, verdict.Exists)
	assert.False(t, verdict.Participated)
	assert.Nil(t, verdict.Person)
}

func TestCheck_NormalizesFormatting(t *testing.T) {
	mem := store.NewMemory()
	seedPerson(t, mem, "")
	svc := NewService(mem, nil)

	verdict, err := svc.Check(context.Background(), "111.444.777-35")
	require.NoError(t, err)
	assert.True(t, verdict.Exists)
}

func TestCheck_ParticipationByStatus(t *testing.T) {
	tests := []struct {
		status       string
		participated bool
	}{
		{models.StatusPending, false},
		{models.StatusCancelled, false},
		{models.StatusConfirmed, true},
		{models.StatusAttended, true},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			mem := store.NewMemory()
			person := seedPerson(t, mem, tt.status)
			svc := NewService(mem, nil)

			verdict, err := svc.Check(context.Background(), validCPF)
			require.NoError(t, err)
			assert.True(t, verdict.Exists)
			assert.Equal(t, tt.participated, verdict.Participated)
			require.NotNil(t, verdict.Person)
			assert.Equal(t, person.ID, verdict.Person.ID)
			assert.Equal(t, person.Nome, verdict.Person.Nome)
		})
	}
}

// cancelAwareReader fails lookups whose context is already done, the way a
// real driver would.
type cancelAwareReader struct {
	inner Reader
}

func (r cancelAwareReader) FindPersonByCPF(ctx context.Context, cpfNormalizado string) (*models.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.inner.FindPersonByCPF(ctx, cpfNormalizado)
}

func (r cancelAwareReader) ListEnrollmentsByPerson(ctx context.Context, personID string) ([]models.Enrollment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.inner.ListEnrollmentsByPerson(ctx, personID)
}

// A lookup collapsed under singleflight serves every caller on the key, so
// the first caller hanging up must not fail the shared result.
func TestCheck_LookupSurvivesCallerCancel(t *testing.T) {
	mem := store.NewMemory()
	seedPerson(t, mem, models.StatusConfirmed)
	svc := NewService(cancelAwareReader{inner: mem}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	verdict, err := svc.Check(ctx, validCPF)
	require.NoError(t, err)
	assert.True(t, verdict.Exists)
	assert.True(t, verdict.Participated)
}

func TestCheck_IsIdempotent(t *testing.T) {
	mem := store.NewMemory()
	seedPerson(t, mem, models.StatusConfirmed)
	svc := NewService(mem, nil)

	first, err := svc.Check(context.Background(), validCPF)
	require.NoError(t, err)
	second, err := svc.Check(context.Background(), validCPF)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
