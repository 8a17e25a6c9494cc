package favorite

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/observability/metrics"
	"wikinotes/internal/observability/tracing"
	"wikinotes/internal/repository"
	artUC "wikinotes/internal/usecase/article"
	userUC "wikinotes/internal/usecase/user"
)

// Service provides favorite management use cases.
type Service struct {
	Store repository.Store
}

// Add records that userID favorited articleID. The existence and duplicate
// checks run in the same transaction as the insert.
func (s *Service) Add(ctx context.Context, userID, articleID int64) (_ *entity.Favorite, err error) {
	ctx, span := tracing.StartSpan(ctx, "favorite.Add",
		attribute.Int64("user.id", userID),
		attribute.Int64("article.id", articleID),
	)
	defer func() { tracing.End(span, err) }()

	f := &entity.Favorite{UserID: userID, ArticleID: articleID}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	err = s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		u, err := repos.Users().Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return userUC.ErrUserNotFound
		}
		a, err := repos.Articles().Get(ctx, articleID)
		if err != nil {
			return fmt.Errorf("get article: %w", err)
		}
		if a == nil {
			return artUC.ErrArticleNotFound
		}

		exists, err := repos.Favorites().Exists(ctx, userID, articleID)
		if err != nil {
			return fmt.Errorf("check favorite: %w", err)
		}
		if exists {
			return ErrDuplicateFavorite
		}
		if err := repos.Favorites().Create(ctx, f); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return ErrDuplicateFavorite
			case errors.Is(err, repository.ErrReferenceMissing):
				return artUC.ErrArticleNotFound
			}
			return fmt.Errorf("create favorite: %w", err)
		}
		f.Article = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordFavoriteOperation("add")
	return f, nil
}

// Remove deletes a favorite owned by userID.
func (s *Service) Remove(ctx context.Context, userID, favoriteID int64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "favorite.Remove", attribute.Int64("favorite.id", favoriteID))
	defer func() { tracing.End(span, err) }()

	if favoriteID <= 0 {
		return ErrFavoriteNotFound
	}
	err = s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		f, err := repos.Favorites().Get(ctx, favoriteID)
		if err != nil {
			return fmt.Errorf("get favorite: %w", err)
		}
		if f == nil {
			return ErrFavoriteNotFound
		}
		if !f.OwnedBy(userID) {
			return ErrForbidden
		}
		if err := repos.Favorites().Delete(ctx, favoriteID); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return ErrFavoriteNotFound
			}
			return fmt.Errorf("delete favorite: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordFavoriteOperation("remove")
	return nil
}

// ListByUser returns the user's favorites with their articles, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*entity.Favorite, error) {
	favorites, err := s.Store.Favorites().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	if favorites == nil {
		favorites = []*entity.Favorite{}
	}
	return favorites, nil
}
