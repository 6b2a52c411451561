package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/munitax/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func runRowColumns() []string {
	return []string{"id", "filer", "period", "digest", "status", "input", "breakdown", "error", "created_at"}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "Acme LLC", "2025", "digest-1", "complete",
			pgxmock.AnyArg(), pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run := testRun("Acme LLC", "2025", "digest-1")
	err := s.CreateRun(context.Background(), run)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	input := mustJSON(t, testRun("Acme LLC", "2025", "digest-1").Input)
	breakdown := mustJSON(t, testRun("Acme LLC", "2025", "digest-1").Breakdown)

	mock.ExpectQuery(`SELECT id, filer, period, digest, status, input, breakdown, error, created_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(runRowColumns()).
			AddRow("run-1", "Acme LLC", "2025", "digest-1", "complete", input, breakdown, "", time.Now().UTC()))

	got, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Input)
	assert.Equal(t, "500000", got.Input.Income.FederalTaxableIncome.String())
	require.NotNil(t, got.Breakdown)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, filer, period, digest, status, input, breakdown, error, created_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRunByDigest(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	input := mustJSON(t, testRun("Acme LLC", "2025", "digest-9").Input)

	mock.ExpectQuery(`SELECT id, filer, period, digest, status, input, breakdown, error, created_at FROM runs\s+WHERE digest = \$1 ORDER BY created_at DESC LIMIT 1`).
		WithArgs("digest-9").
		WillReturnRows(pgxmock.NewRows(runRowColumns()).
			AddRow("run-9", "Acme LLC", "2025", "digest-9", "failed", input, []byte(nil), "bad factor", time.Now().UTC()))

	got, err := s.GetRunByDigest(context.Background(), "digest-9")
	require.NoError(t, err)
	assert.Equal(t, "run-9", got.ID)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	// failed runs carry no breakdown
	assert.Nil(t, got.Breakdown)
	assert.Equal(t, "bad factor", got.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_Filtered(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	input := mustJSON(t, testRun("Acme LLC", "2025", "d1").Input)

	mock.ExpectQuery(`SELECT id, filer, period, digest, status, input, breakdown, error, created_at FROM runs WHERE true AND filer = \$1 AND period = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs("Acme LLC", "2025", 100).
		WillReturnRows(pgxmock.NewRows(runRowColumns()).
			AddRow("run-1", "Acme LLC", "2025", "d1", "complete", input, []byte(nil), "", time.Now().UTC()))

	runs, err := s.ListRuns(context.Background(), RunFilter{Filer: "Acme LLC", Period: "2025"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
