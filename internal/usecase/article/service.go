package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"wikinotes/internal/common/pagination"
	"wikinotes/internal/domain/entity"
	"wikinotes/internal/observability/metrics"
	"wikinotes/internal/observability/tracing"
	"wikinotes/internal/repository"
)

// CreateInput represents the input parameters for creating a new article.
type CreateInput struct {
	Category    string
	Title       string
	ImageURL    string
	KeyFacts    string
	Description string
	ArticleURL  string
}

// UpdateInput represents the input parameters for updating an existing article.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID          int64
	Category    *string
	Title       *string
	ImageURL    *string
	KeyFacts    *string
	Description *string
	ArticleURL  *string
}

// ListInput selects a page of articles.
type ListInput struct {
	// Category, when non-empty, must be one of the allowed categories.
	Category string
	Keywords []string
	// Params defaults to the first page of pagination.DefaultConfig.
	Params pagination.Params
}

// ImportInput names the page to import and the category to file it under.
type ImportInput struct {
	URL      string
	Category string
}

// PaginatedResult represents the result of a paginated query.
type PaginatedResult struct {
	Data       []*entity.Article
	Pagination pagination.Metadata
}

// Service provides article management use cases.
type Service struct {
	Store repository.Store
	// Fetcher is optional; Import fails with ErrImportUnavailable without it.
	Fetcher PageFetcher
}

// Create validates and stores a new article.
// Returns a ValidationError if any input field is invalid and
// ErrDuplicateArticle if another article has the same URL.
func (s *Service) Create(ctx context.Context, in CreateInput) (_ *entity.Article, err error) {
	ctx, span := tracing.StartSpan(ctx, "article.Create")
	defer func() { tracing.End(span, err) }()

	art, err := entity.NewArticle(in.Category, in.Title)
	if err != nil {
		return nil, err
	}
	art.ImageURL = strings.TrimSpace(in.ImageURL)
	art.KeyFacts = in.KeyFacts
	art.Description = in.Description
	art.ArticleURL = strings.TrimSpace(in.ArticleURL)

	if err := s.insert(ctx, art); err != nil {
		return nil, err
	}
	return art, nil
}

func (s *Service) insert(ctx context.Context, art *entity.Article) error {
	if err := art.Validate(); err != nil {
		return err
	}
	return s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if art.ArticleURL != "" {
			exists, err := repos.Articles().ExistsByURL(ctx, art.ArticleURL)
			if err != nil {
				return fmt.Errorf("check article url: %w", err)
			}
			if exists {
				return ErrDuplicateArticle
			}
		}
		if err := repos.Articles().Create(ctx, art); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateArticle
			}
			return fmt.Errorf("create article: %w", err)
		}
		return nil
	})
}

// Get retrieves a single article by its ID.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	art, err := s.Store.Articles().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if art == nil {
		return nil, ErrArticleNotFound
	}
	return art, nil
}

// GetWithRelations retrieves an article with its notes and favorites loaded.
func (s *Service) GetWithRelations(ctx context.Context, id int64) (_ *entity.Article, err error) {
	ctx, span := tracing.StartSpan(ctx, "article.GetWithRelations", attribute.Int64("article.id", id))
	defer func() { tracing.End(span, err) }()

	art, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	notes, err := s.Store.Notes().ListByArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	favorites, err := s.Store.Favorites().ListByArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	if notes == nil {
		notes = []*entity.Note{}
	}
	if favorites == nil {
		favorites = []*entity.Favorite{}
	}
	art.Notes = notes
	art.Favorites = favorites
	return art, nil
}

// List returns one page of articles, optionally narrowed by category and
// title keywords, together with pagination metadata.
func (s *Service) List(ctx context.Context, in ListInput) (_ *PaginatedResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "article.List")
	defer func() { tracing.End(span, err) }()

	var filter repository.ArticleFilter
	if in.Category != "" {
		c, err := entity.ParseCategory(in.Category)
		if err != nil {
			return nil, err
		}
		filter.Category = &c
	}
	for _, kw := range in.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			filter.Keywords = append(filter.Keywords, kw)
		}
	}

	params := in.Params.WithDefaults(pagination.DefaultConfig())
	total, err := s.Store.Articles().Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	articles, err := s.Store.Articles().List(ctx, filter, params.Offset(), params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if articles == nil {
		articles = []*entity.Article{}
	}
	return &PaginatedResult{
		Data:       articles,
		Pagination: pagination.NewMetadata(params, total),
	}, nil
}

// Update modifies an existing article with the provided input.
// Only non-nil fields in the input will be updated, and the result is
// validated as a whole before it is stored.
func (s *Service) Update(ctx context.Context, in UpdateInput) (_ *entity.Article, err error) {
	ctx, span := tracing.StartSpan(ctx, "article.Update", attribute.Int64("article.id", in.ID))
	defer func() { tracing.End(span, err) }()

	if in.ID <= 0 {
		return nil, ErrInvalidArticleID
	}

	var art *entity.Article
	err = s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		art, err = repos.Articles().Get(ctx, in.ID)
		if err != nil {
			return fmt.Errorf("get article: %w", err)
		}
		if art == nil {
			return ErrArticleNotFound
		}
		previousURL := art.ArticleURL

		if in.Category != nil {
			if err := art.SetCategory(*in.Category); err != nil {
				return err
			}
		}
		if in.Title != nil {
			art.Title = strings.TrimSpace(*in.Title)
		}
		if in.ImageURL != nil {
			art.ImageURL = strings.TrimSpace(*in.ImageURL)
		}
		if in.KeyFacts != nil {
			art.KeyFacts = *in.KeyFacts
		}
		if in.Description != nil {
			art.Description = *in.Description
		}
		if in.ArticleURL != nil {
			art.ArticleURL = strings.TrimSpace(*in.ArticleURL)
		}
		if err := art.Validate(); err != nil {
			return err
		}

		if art.ArticleURL != "" && art.ArticleURL != previousURL {
			exists, err := repos.Articles().ExistsByURL(ctx, art.ArticleURL)
			if err != nil {
				return fmt.Errorf("check article url: %w", err)
			}
			if exists {
				return ErrDuplicateArticle
			}
		}

		if err := repos.Articles().Update(ctx, art); err != nil {
			switch {
			case errors.Is(err, entity.ErrNotFound):
				return ErrArticleNotFound
			case errors.Is(err, repository.ErrDuplicate):
				return ErrDuplicateArticle
			}
			return fmt.Errorf("update article: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return art, nil
}

// Delete removes an article by its ID together with its notes and favorites.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "article.Delete", attribute.Int64("article.id", id))
	defer func() { tracing.End(span, err) }()

	if id <= 0 {
		return ErrInvalidArticleID
	}
	if err := s.Store.Articles().Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// UserNotes returns the notes userID wrote on the article.
func (s *Service) UserNotes(ctx context.Context, articleID, userID int64) ([]*entity.Note, error) {
	art, err := s.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}
	notes, err := s.Store.Notes().ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	art.Notes = notes
	return art.NotesBy(userID), nil
}

// Import fetches the page at in.URL and stores it as an article in
// in.Category. The article URL is the page's final URL after redirects.
func (s *Service) Import(ctx context.Context, in ImportInput) (_ *entity.Article, err error) {
	ctx, span := tracing.StartSpan(ctx, "article.Import", attribute.String("article.url", in.URL))
	defer func() { tracing.End(span, err) }()

	if s.Fetcher == nil {
		return nil, ErrImportUnavailable
	}
	rawURL := strings.TrimSpace(in.URL)
	if err := entity.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	art, err := entity.NewArticle(in.Category, "")
	if err != nil {
		return nil, err
	}

	exists, err := s.Store.Articles().ExistsByURL(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("check article url: %w", err)
	}
	if exists {
		return nil, ErrDuplicateArticle
	}

	start := time.Now()
	page, err := s.Fetcher.FetchPage(ctx, rawURL)
	if err != nil {
		metrics.RecordArticleImportFailed(time.Since(start))
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	metrics.RecordArticleImportSuccess(time.Since(start), page.Size)

	art.Title = strings.TrimSpace(page.Title)
	art.Description = page.Description
	art.ImageURL = page.ImageURL
	art.KeyFacts = page.KeyFacts
	art.ArticleURL = rawURL
	if page.URL != "" {
		art.ArticleURL = page.URL
	}
	if art.ImageURL != "" && entity.ValidateURL(art.ImageURL) != nil {
		art.ImageURL = ""
	}

	if err := s.insert(ctx, art); err != nil {
		return nil, err
	}
	return art, nil
}
