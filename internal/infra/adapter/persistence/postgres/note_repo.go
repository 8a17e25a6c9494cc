package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/repository"
)

const noteColumns = `id, user_id, article_id, title, text, created_at, updated_at`

type NoteRepo struct{ db DBTX }

func NewNoteRepo(db DBTX) repository.NoteRepository {
	return &NoteRepo{db: db}
}

func scanNote(row rowScanner) (*entity.Note, error) {
	var note entity.Note
	if err := row.Scan(&note.ID, &note.UserID, &note.ArticleID, &note.Title,
		&note.Text, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return nil, err
	}
	return &note, nil
}

func (repo *NoteRepo) Get(ctx context.Context, id int64) (*entity.Note, error) {
	query := `SELECT ` + noteColumns + `
FROM notes
WHERE id = $1
LIMIT 1`
	note, err := scanNote(queryRow(ctx, repo.db, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return note, nil
}

func (repo *NoteRepo) list(ctx context.Context, op, query string, arg any) ([]*entity.Note, error) {
	rows, err := repo.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	notes := make([]*entity.Note, 0, 16)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (repo *NoteRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.Note, error) {
	query := `SELECT ` + noteColumns + `
FROM notes
WHERE user_id = $1
ORDER BY id DESC`
	return repo.list(ctx, "ListByUser", query, userID)
}

func (repo *NoteRepo) ListByArticle(ctx context.Context, articleID int64) ([]*entity.Note, error) {
	query := `SELECT ` + noteColumns + `
FROM notes
WHERE article_id = $1
ORDER BY id ASC`
	return repo.list(ctx, "ListByArticle", query, articleID)
}

func (repo *NoteRepo) Create(ctx context.Context, note *entity.Note) error {
	const query = `
INSERT INTO notes (user_id, article_id, title, text)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`
	err := queryRow(ctx, repo.db, query, note.UserID, note.ArticleID, note.Title, note.Text).
		Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *NoteRepo) Update(ctx context.Context, note *entity.Note) error {
	const query = `
UPDATE notes SET
       title      = $1,
       text       = $2,
       updated_at = now()
WHERE id = $3
RETURNING updated_at`
	err := queryRow(ctx, repo.db, query, note.Title, note.Text, note.ID).Scan(&note.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	if err != nil {
		return mapError("Update", err)
	}
	return nil
}

func (repo *NoteRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM notes WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return expectAffected("Delete", res)
}

func (repo *NoteRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, repo.db, "Count", `SELECT COUNT(*) FROM notes`)
}
