package repository

import (
	"context"

	"wikinotes/internal/domain/entity"
)

type NoteRepository interface {
	// Get returns (nil, nil) if the note does not exist.
	Get(ctx context.Context, id int64) (*entity.Note, error)
	// ListByUser returns the user's notes, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*entity.Note, error)
	// ListByArticle returns every note on the article, oldest first.
	ListByArticle(ctx context.Context, articleID int64) ([]*entity.Note, error)
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
