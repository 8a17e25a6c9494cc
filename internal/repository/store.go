// Package repository declares the persistence ports used by the use cases.
//
// Lookup methods return (nil, nil) when a record does not exist; mutating
// methods return entity.ErrNotFound when no row was affected.
package repository

import (
	"context"
	"errors"
)

// Repositories groups the per-record repositories that share one connection
// or transaction.
type Repositories interface {
	Users() UserRepository
	Articles() ArticleRepository
	Notes() NoteRepository
	Favorites() FavoriteRepository
}

// Transactor runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error or panics.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Store is the full persistence port.
type Store interface {
	Repositories
	Transactor
}

// Errors reported by adapters for constraint violations.
var (
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("duplicate key")

	// ErrReferenceMissing reports a foreign key violation.
	ErrReferenceMissing = errors.New("referenced record does not exist")
)
