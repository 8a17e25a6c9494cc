package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/repository"
)

type FavoriteRepo struct{ db DBTX }

func NewFavoriteRepo(db DBTX) repository.FavoriteRepository {
	return &FavoriteRepo{db: db}
}

func (repo *FavoriteRepo) Get(ctx context.Context, id int64) (*entity.Favorite, error) {
	const query = `
SELECT id, user_id, article_id, created_at
FROM favorites
WHERE id = $1
LIMIT 1`
	var fav entity.Favorite
	err := queryRow(ctx, repo.db, query, id).
		Scan(&fav.ID, &fav.UserID, &fav.ArticleID, &fav.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &fav, nil
}

func (repo *FavoriteRepo) Exists(ctx context.Context, userID, articleID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND article_id = $2)`
	var exists bool
	if err := queryRow(ctx, repo.db, query, userID, articleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return exists, nil
}

// ListByUser joins the favorited articles so callers get them loaded.
func (repo *FavoriteRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.Favorite, error) {
	const query = `
SELECT f.id, f.user_id, f.article_id, f.created_at,
       a.id, a.category, a.title, a.image_url, a.key_facts, a.description, a.article_url, a.created_at
FROM favorites f
INNER JOIN articles a ON a.id = f.article_id
WHERE f.user_id = $1
ORDER BY f.id DESC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	favs := make([]*entity.Favorite, 0, 16)
	for rows.Next() {
		var fav entity.Favorite
		var article entity.Article
		var category string
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.ArticleID, &fav.CreatedAt,
			&article.ID, &category, &article.Title, &article.ImageURL, &article.KeyFacts,
			&article.Description, &article.ArticleURL, &article.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByUser: Scan: %w", err)
		}
		article.Category = entity.Category(category)
		fav.Article = &article
		favs = append(favs, &fav)
	}
	return favs, rows.Err()
}

func (repo *FavoriteRepo) ListByArticle(ctx context.Context, articleID int64) ([]*entity.Favorite, error) {
	const query = `
SELECT id, user_id, article_id, created_at
FROM favorites
WHERE article_id = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("ListByArticle: %w", err)
	}
	defer func() { _ = rows.Close() }()

	favs := make([]*entity.Favorite, 0, 16)
	for rows.Next() {
		var fav entity.Favorite
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.ArticleID, &fav.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByArticle: Scan: %w", err)
		}
		favs = append(favs, &fav)
	}
	return favs, rows.Err()
}

func (repo *FavoriteRepo) Create(ctx context.Context, favorite *entity.Favorite) error {
	const query = `
INSERT INTO favorites (user_id, article_id)
VALUES ($1, $2)
RETURNING id, created_at`
	err := queryRow(ctx, repo.db, query, favorite.UserID, favorite.ArticleID).
		Scan(&favorite.ID, &favorite.CreatedAt)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *FavoriteRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM favorites WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return expectAffected("Delete", res)
}

func (repo *FavoriteRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, repo.db, "Count", `SELECT COUNT(*) FROM favorites`)
}
