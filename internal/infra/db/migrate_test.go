package db

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUp_Success(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if got != db {
			return errors.New("unexpected db")
		}
		if dir != "migrations" {
			return errors.New("unexpected dir " + dir)
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	assert.NoError(t, MigrateUp(context.Background(), db))
}

func TestMigrateUp_Error(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	orig := gooseUpContext
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err = MigrateUp(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMigrateDown_Error(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	orig := gooseDownContext
	gooseDownContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseDownContext = orig }()

	assert.ErrorContains(t, MigrateDown(context.Background(), db), "migrate down")
}

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	body, err := fs.ReadFile(migrations, "migrations/00001_init.sql")
	require.NoError(t, err)
	sql := string(body)

	assert.True(t, strings.HasPrefix(sql, "-- +goose Up"))
	assert.Contains(t, sql, "-- +goose Down")
	for _, table := range []string{"users", "articles", "notes", "favorites"} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, sql, "username      TEXT NOT NULL UNIQUE")
	assert.Contains(t, sql, "UNIQUE (user_id, article_id)")
	assert.Contains(t, sql, "'Human Activities'")
	assert.Equal(t, 4, strings.Count(sql, "ON DELETE CASCADE"))
}

func TestMigrations_UniqueArticleURL(t *testing.T) {
	body, err := fs.ReadFile(migrations, "migrations/00002_unique_article_url.sql")
	require.NoError(t, err)
	sql := string(body)

	up, down, ok := strings.Cut(sql, "-- +goose Down")
	require.True(t, ok)
	assert.Contains(t, up, "CREATE UNIQUE INDEX IF NOT EXISTS uq_articles_article_url")
	assert.Contains(t, up, "WHERE article_url <> ''")
	assert.Contains(t, down, "DROP INDEX IF EXISTS uq_articles_article_url")
}
