package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/repository"
)

const articleColumns = `id, category, title, image_url, key_facts, description, article_url, created_at`

type ArticleRepo struct {
	db           DBTX
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db DBTX) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var article entity.Article
	var category string
	if err := row.Scan(&article.ID, &category, &article.Title, &article.ImageURL,
		&article.KeyFacts, &article.Description, &article.ArticleURL, &article.CreatedAt); err != nil {
		return nil, err
	}
	article.Category = entity.Category(category)
	return &article, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := `SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
LIMIT 1`
	article, err := scanArticle(queryRow(ctx, repo.db, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

// List retrieves filtered articles ordered by id using LIMIT and OFFSET.
func (repo *ArticleRepo) List(ctx context.Context, filter repository.ArticleFilter, offset, limit int) ([]*entity.Article, error) {
	where, args := repo.queryBuilder.BuildWhereClause(filter, "")
	n := len(args)
	query := fmt.Sprintf(`SELECT %s
FROM articles
%s
ORDER BY id ASC
LIMIT $%d OFFSET $%d`, articleColumns, where, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) Count(ctx context.Context, filter repository.ArticleFilter) (int64, error) {
	where, args := repo.queryBuilder.BuildWhereClause(filter, "")
	return count(ctx, repo.db, "Count", `SELECT COUNT(*) FROM articles `+where, args...)
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (category, title, image_url, key_facts, description, article_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	err := queryRow(ctx, repo.db, query,
		string(article.Category), article.Title, article.ImageURL,
		article.KeyFacts, article.Description, article.ArticleURL,
	).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE articles SET
       category    = $1,
       title       = $2,
       image_url   = $3,
       key_facts   = $4,
       description = $5,
       article_url = $6
WHERE id = $7`
	res, err := repo.db.ExecContext(ctx, query,
		string(article.Category), article.Title, article.ImageURL,
		article.KeyFacts, article.Description, article.ArticleURL, article.ID,
	)
	if err != nil {
		return mapError("Update", err)
	}
	return expectAffected("Update", res)
}

func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM articles WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError("Delete", err)
	}
	return expectAffected("Delete", res)
}

func (repo *ArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM articles WHERE article_url = $1)`
	var existsFlag bool
	if err := queryRow(ctx, repo.db, query, url).Scan(&existsFlag); err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return existsFlag, nil
}
