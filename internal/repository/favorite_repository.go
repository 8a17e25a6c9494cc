package repository

import (
	"context"

	"wikinotes/internal/domain/entity"
)

type FavoriteRepository interface {
	// Get returns (nil, nil) if the favorite does not exist.
	Get(ctx context.Context, id int64) (*entity.Favorite, error)
	// Exists reports whether the user already favorited the article.
	Exists(ctx context.Context, userID, articleID int64) (bool, error)
	// ListByUser returns the user's favorites with Article loaded, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*entity.Favorite, error)
	// ListByArticle returns the favorites on the article, oldest first.
	ListByArticle(ctx context.Context, articleID int64) ([]*entity.Favorite, error)
	Create(ctx context.Context, favorite *entity.Favorite) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
