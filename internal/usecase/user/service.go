package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/observability/metrics"
	"wikinotes/internal/observability/tracing"
	"wikinotes/internal/repository"
	"wikinotes/pkg/security/password"
)

// Service provides user management use cases.
type Service struct {
	Store  repository.Store
	Hasher password.Hasher
}

func errUsernameTaken() error {
	return &entity.ValidationError{Field: "username", Message: "already taken"}
}

// Register creates a user with the given credentials. The uniqueness check
// and the insert share one transaction; a duplicate username is reported as
// a ValidationError on the username field.
func (s *Service) Register(ctx context.Context, username, plaintext string) (_ *entity.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "user.Register")
	defer func() {
		metrics.RecordRegistration(err == nil)
		tracing.End(span, err)
	}()

	u, err := entity.NewUser(username, s.Hasher, plaintext)
	if err != nil {
		return nil, err
	}

	err = s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		taken, err := repos.Users().ExistsByUsername(ctx, u.Username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return errUsernameTaken()
		}
		if err := repos.Users().Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return errUsernameTaken()
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", u.ID))
	return u, nil
}

// Authenticate returns the user whose credentials match, or
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, plaintext string) (_ *entity.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "user.Authenticate")
	defer func() {
		metrics.RecordLogin(err == nil)
		tracing.End(span, err)
	}()

	u, err := s.Store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	if u == nil || !u.Authenticate(s.Hasher, plaintext) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get retrieves a single user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	return s.get(ctx, s.Store, id)
}

func (s *Service) get(ctx context.Context, repos repository.Repositories, id int64) (*entity.User, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}
	u, err := repos.Users().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetProfile retrieves a user with favorites (articles loaded) and notes.
func (s *Service) GetProfile(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "user.GetProfile", attribute.Int64("user.id", id))
	defer func() { tracing.End(span, err) }()

	u, err := s.get(ctx, s.Store, id)
	if err != nil {
		return nil, err
	}
	favorites, err := s.Store.Favorites().ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	notes, err := s.Store.Notes().ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if favorites == nil {
		favorites = []*entity.Favorite{}
	}
	if notes == nil {
		notes = []*entity.Note{}
	}
	u.Favorites = favorites
	u.Notes = notes
	return u, nil
}

// Rename changes the username, enforcing uniqueness in the same transaction
// as the update.
func (s *Service) Rename(ctx context.Context, id int64, username string) (_ *entity.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "user.Rename", attribute.Int64("user.id", id))
	defer func() { tracing.End(span, err) }()

	var u *entity.User
	err = s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		u, err = s.get(ctx, repos, id)
		if err != nil {
			return err
		}
		previous := u.Username
		if err := u.SetUsername(username); err != nil {
			return err
		}
		if u.Username == previous {
			return nil
		}
		taken, err := repos.Users().ExistsByUsername(ctx, u.Username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return errUsernameTaken()
		}
		if err := repos.Users().UpdateUsername(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return errUsernameTaken()
			}
			return fmt.Errorf("update username: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "user.ChangePassword", attribute.Int64("user.id", id))
	defer func() { tracing.End(span, err) }()

	u, err := s.get(ctx, s.Store, id)
	if err != nil {
		return err
	}
	if !u.Authenticate(s.Hasher, current) {
		return ErrInvalidCredentials
	}
	if err := u.SetPassword(s.Hasher, next); err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePassword(ctx, u); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete removes the user together with their notes and favorites.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "user.Delete", attribute.Int64("user.id", id))
	defer func() { tracing.End(span, err) }()

	if id <= 0 {
		return ErrInvalidUserID
	}
	if err := s.Store.Users().Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
