package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikinotes/internal/observability/metrics"
)

func newMockBreaker(t *testing.T) (*DBCircuitBreaker, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := DBConfig()
	cfg.Timeout = 50 * time.Millisecond
	return NewDBCircuitBreakerWithConfig(db, cfg), mock
}

func tripDB(t *testing.T, dcb *DBCircuitBreaker, mock sqlmock.Sqlmock) {
	t.Helper()
	down := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	for range 5 {
		mock.ExpectQuery("SELECT count").WillReturnError(down)
		_, err := dcb.QueryContext(context.Background(), "SELECT count(*) FROM notes")
		require.ErrorIs(t, err, down)
	}
	require.True(t, dcb.IsOpen())
}

func sampleCount(t *testing.T, operation string) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.DBQueryDuration.WithLabelValues(operation).(prometheus.Histogram).Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestDBCircuitBreaker_PassesThrough(t *testing.T) {
	dcb, mock := newMockBreaker(t)
	ctx := context.Background()
	queries, execs := sampleCount(t, "query"), sampleCount(t, "exec")

	mock.ExpectQuery("SELECT id, username FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "alice"))
	rows, err := dcb.QueryContext(ctx, "SELECT id, username FROM users")
	require.NoError(t, err)
	require.True(t, rows.Next())
	var (
		id       int
		username string
	)
	require.NoError(t, rows.Scan(&id, &username))
	require.NoError(t, rows.Close())
	assert.Equal(t, "alice", username)

	mock.ExpectExec("DELETE FROM notes").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	res, err := dcb.ExecContext(ctx, "DELETE FROM notes WHERE id = $1", int64(3))
	require.NoError(t, err)
	n, _ := res.RowsAffected()
	assert.Equal(t, int64(1), n)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, gobreaker.StateClosed, dcb.State())
	assert.Equal(t, queries+1, sampleCount(t, "query"))
	assert.Equal(t, execs+1, sampleCount(t, "exec"))
}

func TestDBCircuitBreaker_OpenFailsFast(t *testing.T) {
	dcb, mock := newMockBreaker(t)
	tripDB(t, dcb, mock)
	ctx := context.Background()

	_, err := dcb.QueryContext(ctx, "SELECT 1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	_, err = dcb.ExecContext(ctx, "UPDATE notes SET text = ''")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	_, err = dcb.BeginTx(ctx, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_RecoversAfterTimeout(t *testing.T) {
	dcb, mock := newMockBreaker(t)
	tripDB(t, dcb, mock)

	time.Sleep(80 * time.Millisecond)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	rows, err := dcb.QueryContext(context.Background(), "SELECT 1")
	require.NoError(t, err)
	_ = rows.Close()
	assert.False(t, dcb.IsOpen())
}

func TestDBCircuitBreaker_ConstraintViolationsDoNotTrip(t *testing.T) {
	dcb, mock := newMockBreaker(t)
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}

	for range 8 {
		mock.ExpectExec("INSERT INTO users").WillReturnError(dup)
		_, err := dcb.ExecContext(context.Background(), "INSERT INTO users (username) VALUES ($1)", "alice")
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
	}
	assert.Equal(t, gobreaker.StateClosed, dcb.State())
}

func TestDatabaseAnswered(t *testing.T) {
	assert.True(t, databaseAnswered(nil))
	assert.True(t, databaseAnswered(&pgconn.PgError{Code: "23503"}))
	assert.True(t, databaseAnswered(sql.ErrNoRows))
	assert.True(t, databaseAnswered(context.Canceled))
	assert.False(t, databaseAnswered(errors.New("dial tcp: connection refused")))
	assert.False(t, databaseAnswered(context.DeadlineExceeded))
}

func TestNewDBCircuitBreaker(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	assert.Same(t, db, dcb.DB())
	assert.Equal(t, "database", dcb.cb.Name())
	assert.Equal(t, 1.0, DBConfig().FailureThreshold)
}
