// Package repotest provides an in-memory repository.Store for use-case and
// handler tests, plus record builders with functional options.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/repository"
)

// Store is an in-memory repository.Store. It enforces the same unique and
// foreign key constraints as the database schema, including cascades.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data data
	errs map[string]error

	// Now stamps CreatedAt and UpdatedAt.
	Now func() time.Time
}

type data struct {
	nextID    int64
	users     map[int64]entity.User
	articles  map[int64]entity.Article
	notes     map[int64]entity.Note
	favorites map[int64]entity.Favorite
}

func (d data) clone() data {
	c := data{
		nextID:    d.nextID,
		users:     make(map[int64]entity.User, len(d.users)),
		articles:  make(map[int64]entity.Article, len(d.articles)),
		notes:     make(map[int64]entity.Note, len(d.notes)),
		favorites: make(map[int64]entity.Favorite, len(d.favorites)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.articles {
		c.articles[k] = v
	}
	for k, v := range d.notes {
		c.notes[k] = v
	}
	for k, v := range d.favorites {
		c.favorites[k] = v
	}
	return c
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		data: data{}.clone(),
		errs: make(map[string]error),
		Now:  func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

var _ repository.Store = (*Store)(nil)

// FailWith makes the named method (e.g. "Users.Create") return err until
// cleared with a nil err.
func (s *Store) FailWith(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, method)
		return
	}
	s.errs[method] = err
}

func (s *Store) fail(method string) error {
	return s.errs[method]
}

func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *Store) Users() repository.UserRepository         { return userRepo{s} }
func (s *Store) Articles() repository.ArticleRepository   { return articleRepo{s} }
func (s *Store) Notes() repository.NoteRepository         { return noteRepo{s} }
func (s *Store) Favorites() repository.FavoriteRepository { return favoriteRepo{s} }

// WithinTx runs fn against the store and restores the previous state when
// fn fails or panics. Transactions are serialized.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	if e := s.fail("WithinTx"); e != nil {
		s.mu.Unlock()
		return e
	}
	snapshot := s.data.clone()
	s.mu.Unlock()

	rollback := func() {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, s); err != nil {
		rollback()
		return err
	}
	return nil
}

// Counts returns the number of stored users, articles, notes and favorites.
func (s *Store) Counts() (users, articles, notes, favorites int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.users), len(s.data.articles), len(s.data.notes), len(s.data.favorites)
}

/* ─────────────────────────────── users ─────────────────────────────── */

type userRepo struct{ s *Store }

func (r userRepo) Get(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Users.Get"); err != nil {
		return nil, err
	}
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Users.GetByUsername"); err != nil {
		return nil, err
	}
	for _, u := range r.s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Users.ExistsByUsername"); err != nil {
		return false, err
	}
	return r.usernameTaken(username, 0), nil
}

func (r userRepo) usernameTaken(username string, except int64) bool {
	for id, u := range r.s.data.users {
		if id != except && u.Username == username {
			return true
		}
	}
	return false
}

func (r userRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Users.Create"); err != nil {
		return err
	}
	if r.usernameTaken(user.Username, 0) {
		return fmt.Errorf("Create: %w", repository.ErrDuplicate)
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.Now()
	stored := *user
	stored.Favorites, stored.Notes = nil, nil
	r.s.data.users[user.ID] = stored
	return nil
}

func (r userRepo) UpdateUsername(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Users.UpdateUsername"); err != nil {
		return err
	}
	stored, ok := r.s.data.users[user.ID]
	if !ok {
		return fmt.Errorf("UpdateUsername: %w", entity.ErrNotFound)
	}
	if r.usernameTaken(user.Username, user.ID) {
		return fmt.Errorf("UpdateUsername: %w", repository.ErrDuplicate)
	}
	stored.Username = user.Username
	r.s.data.users[user.ID] = stored
	return nil
}

func (r userRepo) UpdatePassword(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Users.UpdatePassword"); err != nil {
		return err
	}
	stored, ok := r.s.data.users[user.ID]
	if !ok {
		return fmt.Errorf("UpdatePassword: %w", entity.ErrNotFound)
	}
	*stored.PasswordColumn() = *user.PasswordColumn()
	r.s.data.users[user.ID] = stored
	return nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Users.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.users[id]; !ok {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	delete(r.s.data.users, id)
	for nid, n := range r.s.data.notes {
		if n.UserID == id {
			delete(r.s.data.notes, nid)
		}
	}
	for fid, f := range r.s.data.favorites {
		if f.UserID == id {
			delete(r.s.data.favorites, fid)
		}
	}
	return nil
}

func (r userRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Users.Count"); err != nil {
		return 0, err
	}
	return int64(len(r.s.data.users)), nil
}

/* ─────────────────────────────── articles ─────────────────────────────── */

type articleRepo struct{ s *Store }

func (r articleRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Articles.Get"); err != nil {
		return nil, err
	}
	a, ok := r.s.data.articles[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func matches(a entity.Article, filter repository.ArticleFilter) bool {
	if filter.Category != nil && a.Category != *filter.Category {
		return false
	}
	title := strings.ToLower(a.Title)
	for _, kw := range filter.Keywords {
		if !strings.Contains(title, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

func (r articleRepo) filtered(filter repository.ArticleFilter) []entity.Article {
	out := make([]entity.Article, 0, len(r.s.data.articles))
	for _, a := range r.s.data.articles {
		if matches(a, filter) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r articleRepo) List(_ context.Context, filter repository.ArticleFilter, offset, limit int) ([]*entity.Article, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Articles.List"); err != nil {
		return nil, err
	}
	all := r.filtered(filter)
	result := make([]*entity.Article, 0, limit)
	for i := offset; i < len(all) && len(result) < limit; i++ {
		a := all[i]
		result = append(result, &a)
	}
	return result, nil
}

func (r articleRepo) Count(_ context.Context, filter repository.ArticleFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Articles.Count"); err != nil {
		return 0, err
	}
	return int64(len(r.filtered(filter))), nil
}

func (r articleRepo) Create(_ context.Context, article *entity.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Articles.Create"); err != nil {
		return err
	}
	article.ID = r.s.id()
	article.CreatedAt = r.s.Now()
	stored := *article
	stored.Notes, stored.Favorites = nil, nil
	r.s.data.articles[article.ID] = stored
	return nil
}

func (r articleRepo) Update(_ context.Context, article *entity.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Articles.Update"); err != nil {
		return err
	}
	stored, ok := r.s.data.articles[article.ID]
	if !ok {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	updated := *article
	updated.CreatedAt = stored.CreatedAt
	updated.Notes, updated.Favorites = nil, nil
	r.s.data.articles[article.ID] = updated
	return nil
}

func (r articleRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Articles.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.articles[id]; !ok {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	delete(r.s.data.articles, id)
	for nid, n := range r.s.data.notes {
		if n.ArticleID == id {
			delete(r.s.data.notes, nid)
		}
	}
	for fid, f := range r.s.data.favorites {
		if f.ArticleID == id {
			delete(r.s.data.favorites, fid)
		}
	}
	return nil
}

func (r articleRepo) ExistsByURL(_ context.Context, url string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Articles.ExistsByURL"); err != nil {
		return false, err
	}
	for _, a := range r.s.data.articles {
		if a.ArticleURL == url {
			return true, nil
		}
	}
	return false, nil
}

/* ─────────────────────────────── notes ─────────────────────────────── */

type noteRepo struct{ s *Store }

func (r noteRepo) Get(_ context.Context, id int64) (*entity.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Notes.Get"); err != nil {
		return nil, err
	}
	n, ok := r.s.data.notes[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r noteRepo) list(keep func(entity.Note) bool, newestFirst bool) []*entity.Note {
	out := make([]*entity.Note, 0)
	for _, n := range r.s.data.notes {
		if keep(n) {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r noteRepo) ListByUser(_ context.Context, userID int64) ([]*entity.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Notes.ListByUser"); err != nil {
		return nil, err
	}
	return r.list(func(n entity.Note) bool { return n.UserID == userID }, true), nil
}

func (r noteRepo) ListByArticle(_ context.Context, articleID int64) ([]*entity.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Notes.ListByArticle"); err != nil {
		return nil, err
	}
	return r.list(func(n entity.Note) bool { return n.ArticleID == articleID }, false), nil
}

func (r noteRepo) Create(_ context.Context, note *entity.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Notes.Create"); err != nil {
		return err
	}
	if _, ok := r.s.data.users[note.UserID]; !ok {
		return fmt.Errorf("Create: %w", repository.ErrReferenceMissing)
	}
	if _, ok := r.s.data.articles[note.ArticleID]; !ok {
		return fmt.Errorf("Create: %w", repository.ErrReferenceMissing)
	}
	note.ID = r.s.id()
	note.CreatedAt = r.s.Now()
	note.UpdatedAt = note.CreatedAt
	stored := *note
	stored.User, stored.Article = nil, nil
	r.s.data.notes[note.ID] = stored
	return nil
}

func (r noteRepo) Update(_ context.Context, note *entity.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Notes.Update"); err != nil {
		return err
	}
	stored, ok := r.s.data.notes[note.ID]
	if !ok {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	stored.Title = note.Title
	stored.Text = note.Text
	stored.UpdatedAt = r.s.Now()
	note.UpdatedAt = stored.UpdatedAt
	r.s.data.notes[note.ID] = stored
	return nil
}

func (r noteRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Notes.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.notes[id]; !ok {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	delete(r.s.data.notes, id)
	return nil
}

func (r noteRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Notes.Count"); err != nil {
		return 0, err
	}
	return int64(len(r.s.data.notes)), nil
}

/* ─────────────────────────────── favorites ─────────────────────────────── */

type favoriteRepo struct{ s *Store }

func (r favoriteRepo) Get(_ context.Context, id int64) (*entity.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Favorites.Get"); err != nil {
		return nil, err
	}
	f, ok := r.s.data.favorites[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r favoriteRepo) Exists(_ context.Context, userID, articleID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Favorites.Exists"); err != nil {
		return false, err
	}
	return r.exists(userID, articleID), nil
}

func (r favoriteRepo) exists(userID, articleID int64) bool {
	for _, f := range r.s.data.favorites {
		if f.UserID == userID && f.ArticleID == articleID {
			return true
		}
	}
	return false
}

func (r favoriteRepo) ListByUser(_ context.Context, userID int64) ([]*entity.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Favorites.ListByUser"); err != nil {
		return nil, err
	}
	out := make([]*entity.Favorite, 0)
	for _, f := range r.s.data.favorites {
		if f.UserID != userID {
			continue
		}
		f := f
		if a, ok := r.s.data.articles[f.ArticleID]; ok {
			f.Article = &a
		}
		out = append(out, &f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r favoriteRepo) ListByArticle(_ context.Context, articleID int64) ([]*entity.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Favorites.ListByArticle"); err != nil {
		return nil, err
	}
	out := make([]*entity.Favorite, 0)
	for _, f := range r.s.data.favorites {
		if f.ArticleID == articleID {
			f := f
			out = append(out, &f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r favoriteRepo) Create(_ context.Context, favorite *entity.Favorite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Favorites.Create"); err != nil {
		return err
	}
	if _, ok := r.s.data.users[favorite.UserID]; !ok {
		return fmt.Errorf("Create: %w", repository.ErrReferenceMissing)
	}
	if _, ok := r.s.data.articles[favorite.ArticleID]; !ok {
		return fmt.Errorf("Create: %w", repository.ErrReferenceMissing)
	}
	if r.exists(favorite.UserID, favorite.ArticleID) {
		return fmt.Errorf("Create: %w", repository.ErrDuplicate)
	}
	favorite.ID = r.s.id()
	favorite.CreatedAt = r.s.Now()
	stored := *favorite
	stored.User, stored.Article = nil, nil
	r.s.data.favorites[favorite.ID] = stored
	return nil
}

func (r favoriteRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Favorites.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.favorites[id]; !ok {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	delete(r.s.data.favorites, id)
	return nil
}

func (r favoriteRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Favorites.Count"); err != nil {
		return 0, err
	}
	return int64(len(r.s.data.favorites)), nil
}
