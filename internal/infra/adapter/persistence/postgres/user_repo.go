package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/repository"
)

type UserRepo struct{ db DBTX }

func NewUserRepo(db DBTX) repository.UserRepository {
	return &UserRepo{db: db}
}

func (repo *UserRepo) get(ctx context.Context, op, query string, arg any) (*entity.User, error) {
	var user entity.User
	err := queryRow(ctx, repo.db, query, arg).
		Scan(&user.ID, &user.Username, user.PasswordColumn(), &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	const query = `
SELECT id, username, password_hash, created_at
FROM users
WHERE id = $1
LIMIT 1`
	return repo.get(ctx, "Get", query, id)
}

func (repo *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const query = `
SELECT id, username, password_hash, created_at
FROM users
WHERE username = $1
LIMIT 1`
	return repo.get(ctx, "GetByUsername", query, username)
}

func (repo *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := queryRow(ctx, repo.db, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByUsername: %w", err)
	}
	return exists, nil
}

func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	const query = `
INSERT INTO users (username, password_hash)
VALUES ($1, $2)
RETURNING id, created_at`
	err := queryRow(ctx, repo.db, query, user.Username, user.PasswordColumn()).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *UserRepo) UpdateUsername(ctx context.Context, user *entity.User) error {
	const query = `UPDATE users SET username = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, user.Username, user.ID)
	if err != nil {
		return mapError("UpdateUsername", err)
	}
	return expectAffected("UpdateUsername", res)
}

func (repo *UserRepo) UpdatePassword(ctx context.Context, user *entity.User) error {
	const query = `UPDATE users SET password_hash = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, user.PasswordColumn(), user.ID)
	if err != nil {
		return mapError("UpdatePassword", err)
	}
	return expectAffected("UpdatePassword", res)
}

func (repo *UserRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return expectAffected("Delete", res)
}

func (repo *UserRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, repo.db, "Count", `SELECT COUNT(*) FROM users`)
}
