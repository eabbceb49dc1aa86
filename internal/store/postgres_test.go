package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moirius/La-Station-Prospection/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT lead FROM leads WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLead(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLeadByName_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT lead FROM leads WHERE name_key = \$1`).
		WithArgs("unknown shop").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetLeadByName(context.Background(), "Unknown Shop")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLeadByName_LowercasesKey(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	blob := []byte(`{"id":"abc","name":"Pizza Roma"}`)
	mock.ExpectQuery(`SELECT lead FROM leads WHERE name_key = \$1`).
		WithArgs("pizza roma").
		WillReturnRows(pgxmock.NewRows([]string{"lead"}).AddRow(blob))

	got, err := s.GetLeadByName(context.Background(), "  PIZZA ROMA ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pizza Roma", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(pgxmock.AnyArg(), "Spa Zen", "spa zen", "spa",
			"pending", "pending", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	lead := &model.Lead{Name: "Spa Zen", Category: "spa"}
	require.NoError(t, s.CreateLead(context.Background(), lead))
	assert.NotEmpty(t, lead.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE leads SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SaveLead(context.Background(), &model.Lead{ID: "missing", Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ExistingNames(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT name_key FROM leads`).
		WillReturnRows(pgxmock.NewRows([]string{"name_key"}).
			AddRow("spa zen").
			AddRow("pizza roma"))

	names, err := s.ExistingNames(context.Background())
	require.NoError(t, err)
	assert.Len(t, names, 2)
	assert.Contains(t, names, "spa zen")
	assert.NoError(t, mock.ExpectationsWereMet())
}
