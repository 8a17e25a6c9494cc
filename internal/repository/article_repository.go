package repository

import (
	"context"

	"wikinotes/internal/domain/entity"
)

// ArticleFilter narrows article listings. Zero values disable a filter.
type ArticleFilter struct {
	Category *entity.Category // Optional: exact category match
	Keywords []string         // Optional: AND of case-insensitive title matches
}

type ArticleRepository interface {
	// Get returns (nil, nil) if the article does not exist.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// List returns articles matching filter ordered by id, using LIMIT/OFFSET.
	List(ctx context.Context, filter ArticleFilter, offset, limit int) ([]*entity.Article, error)
	// Count returns the number of articles matching filter.
	Count(ctx context.Context, filter ArticleFilter) (int64, error)
	// Create inserts the article and sets its ID and CreatedAt.
	Create(ctx context.Context, article *entity.Article) error
	Update(ctx context.Context, article *entity.Article) error
	// Delete removes the article; notes and favorites cascade.
	// Returns entity.ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id int64) error
	ExistsByURL(ctx context.Context, url string) (bool, error)
}
