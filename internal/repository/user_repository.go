package repository

import (
	"context"

	"wikinotes/internal/domain/entity"
)

type UserRepository interface {
	// Get returns (nil, nil) if the user does not exist.
	Get(ctx context.Context, id int64) (*entity.User, error)
	// GetByUsername matches the username exactly and returns (nil, nil) when absent.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Create inserts the user with its password hash and sets ID and CreatedAt.
	Create(ctx context.Context, user *entity.User) error
	// UpdateUsername persists a rename.
	UpdateUsername(ctx context.Context, user *entity.User) error
	// UpdatePassword persists the user's current password hash.
	UpdatePassword(ctx context.Context, user *entity.User) error
	// Delete removes the user; notes and favorites cascade.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
