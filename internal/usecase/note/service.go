package note

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

// CreateInput represents the input parameters for creating a note.
type CreateInput struct {
	UserID    int64
	ArticleID int64
	Title     string
	Text      string
}

// UpdateInput carries a partial note update on behalf of UserID.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID     int64
	UserID int64
	Title  *string
	Text   *string
}

// Service provides note management use cases.
type Service struct {
	Store repository.Store
}

// Create stores a note after checking that its user and article exist.
// Returns userUC.ErrUserNotFound or artUC.ErrArticleNotFound when a
// reference is missing.
func (s *Service) Create(ctx context.Context, in CreateInput) (_ *entity.Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "note.Create",
		attribute.Int64("user.id", in.UserID),
		attribute.Int64("article.id", in.ArticleID),
	)
	defer func() { tracing.End(span, err) }()

	n := &entity.Note{
		UserID:    in.UserID,
		ArticleID: in.ArticleID,
		Title:     in.Title,
		Text:      in.Text,
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	err = s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := checkReferences(ctx, repos, n.UserID, n.ArticleID); err != nil {
			return err
		}
		if err := repos.Notes().Create(ctx, n); err != nil {
			if errors.Is(err, repository.ErrReferenceMissing) {
				return artUC.ErrArticleNotFound
			}
			return fmt.Errorf("create note: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordNoteOperation("create")
	return n, nil
}

// checkReferences reports which reference of a note is missing.
func checkReferences(ctx context.Context, repos repository.Repositories, userID, articleID int64) error {
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
	return nil
}

// Get retrieves a single note by ID.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Note, error) {
	return get(ctx, s.Store, id)
}

func get(ctx context.Context, repos repository.Repositories, id int64) (*entity.Note, error) {
	if id <= 0 {
		return nil, ErrInvalidNoteID
	}
	n, err := repos.Notes().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	if n == nil {
		return nil, ErrNoteNotFound
	}
	return n, nil
}

// Update changes the title and/or text of a note owned by in.UserID.
func (s *Service) Update(ctx context.Context, in UpdateInput) (_ *entity.Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "note.Update", attribute.Int64("note.id", in.ID))
	defer func() { tracing.End(span, err) }()

	var n *entity.Note
	err = s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		n, err = get(ctx, repos, in.ID)
		if err != nil {
			return err
		}
		if !n.OwnedBy(in.UserID) {
			return ErrForbidden
		}
		if in.Title != nil {
			n.Title = *in.Title
		}
		if in.Text != nil {
			n.Text = *in.Text
		}
		if err := n.Validate(); err != nil {
			return err
		}
		if err := repos.Notes().Update(ctx, n); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return ErrNoteNotFound
			}
			return fmt.Errorf("update note: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordNoteOperation("update")
	return n, nil
}

// Delete removes a note owned by userID.
func (s *Service) Delete(ctx context.Context, id, userID int64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "note.Delete", attribute.Int64("note.id", id))
	defer func() { tracing.End(span, err) }()

	err = s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		n, err := get(ctx, repos, id)
		if err != nil {
			return err
		}
		if !n.OwnedBy(userID) {
			return ErrForbidden
		}
		if err := repos.Notes().Delete(ctx, id); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return ErrNoteNotFound
			}
			return fmt.Errorf("delete note: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordNoteOperation("delete")
	return nil
}

// ListByUser returns the user's notes, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*entity.Note, error) {
	notes, err := s.Store.Notes().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes by user: %w", err)
	}
	if notes == nil {
		notes = []*entity.Note{}
	}
	return notes, nil
}

// ListByArticle returns every note on an existing article, oldest first.
func (s *Service) ListByArticle(ctx context.Context, articleID int64) ([]*entity.Note, error) {
	if articleID <= 0 {
		return nil, artUC.ErrInvalidArticleID
	}
	a, err := s.Store.Articles().Get(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if a == nil {
		return nil, artUC.ErrArticleNotFound
	}
	notes, err := s.Store.Notes().ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list notes by article: %w", err)
	}
	if notes == nil {
		notes = []*entity.Note{}
	}
	return notes, nil
}
