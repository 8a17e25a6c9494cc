// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/repository"
)

// DBTX is the subset of database/sql used by the repositories.
// *sql.DB, *sql.Tx and the circuit-breaker wrapper all satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// singleRow behaves like *sql.Row but is built on QueryContext, which lets the
// circuit breaker see the query.
type singleRow struct {
	rows *sql.Rows
	err  error
}

func queryRow(ctx context.Context, q DBTX, query string, args ...any) *singleRow {
	rows, err := q.QueryContext(ctx, query, args...)
	return &singleRow{rows: rows, err: err}
}

// Scan copies the first result row into dest and closes the rows.
// A result without rows yields sql.ErrNoRows.
func (r *singleRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	defer func() { _ = r.rows.Close() }()
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	if err := r.rows.Scan(dest...); err != nil {
		return err
	}
	return r.rows.Close()
}

// TxBeginner starts transactions. *sql.DB satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Conn is a connection that can both query and begin transactions.
type Conn interface {
	DBTX
	TxBeginner
}

// queries binds the repositories to one query handle.
type queries struct{ q DBTX }

func (r queries) Users() repository.UserRepository         { return NewUserRepo(r.q) }
func (r queries) Articles() repository.ArticleRepository   { return NewArticleRepo(r.q) }
func (r queries) Notes() repository.NoteRepository         { return NewNoteRepo(r.q) }
func (r queries) Favorites() repository.FavoriteRepository { return NewFavoriteRepo(r.q) }

// Store implements repository.Store on top of a PostgreSQL connection.
type Store struct {
	queries
	conn Conn
}

var _ repository.Store = (*Store)(nil)

// NewStore returns a Store that runs queries on conn. Pass a
// *circuitbreaker.DBCircuitBreaker to fail fast while the database is down.
func NewStore(conn Conn) *Store {
	return &Store{queries: queries{q: conn}, conn: conn}
}

// WithinTx begins a transaction, runs fn with repositories bound to it, and
// commits on success or rolls back on error or panic. Panics are rethrown.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("WithinTx: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = mapError("WithinTx: commit", cerr)
		}
	}()

	err = fn(ctx, queries{q: tx})
	return err
}

// SQLSTATE codes mapped to repository errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapError prefixes err with op and translates constraint violations into
// repository.ErrDuplicate / repository.ErrReferenceMissing.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w (%w)", op, repository.ErrDuplicate, err)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w (%w)", op, repository.ErrReferenceMissing, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectAffected returns entity.ErrNotFound when res reports no affected rows.
func expectAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: RowsAffected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return nil
}

func count(ctx context.Context, q DBTX, op, query string, args ...any) (int64, error) {
	var n int64
	if err := queryRow(ctx, q, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
