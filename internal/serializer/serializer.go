// Package serializer converts record graphs into JSON-ready maps.
//
// Each record kind carries exclusion rules (see Rules) that keep
// bidirectional relationships from being expanded back into their parent.
// Relationship fields are emitted only when loaded: a nil slice or pointer
// means the relation was not fetched and the key is omitted.
package serializer

import (
	"errors"
	"fmt"

	"wikinotes/internal/domain/entity"
)

// DefaultMaxDepth bounds relationship nesting when no depth is configured.
const DefaultMaxDepth = 4

var (
	// ErrUnsupportedType is returned for values that are not records.
	ErrUnsupportedType = errors.New("serializer: unsupported type")

	// ErrInvalidRule is returned for malformed exclusion rules.
	ErrInvalidRule = errors.New("serializer: invalid rule")
)

// Serializer applies the per-kind exclusion rules.
type Serializer struct {
	maxDepth int
	rules    map[Kind]ruleSet
}

// New returns a Serializer. maxDepth <= 0 selects DefaultMaxDepth.
func New(maxDepth int) *Serializer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	rules := make(map[Kind]ruleSet, len(Rules))
	for k, r := range Rules {
		rules[k] = mustParseRules(r)
	}
	return &Serializer{maxDepth: maxDepth, rules: rules}
}

var defaultSerializer = New(DefaultMaxDepth)

// Serialize uses a Serializer with DefaultMaxDepth.
func Serialize(v any, extra ...string) (map[string]any, error) {
	return defaultSerializer.Serialize(v, extra...)
}

// SerializeList serializes every item of items with s.
func SerializeList[T any](s *Serializer, items []T, extra ...string) ([]map[string]any, error) {
	if s == nil {
		s = defaultSerializer
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, err := s.Serialize(item, extra...)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// RulesFor returns the effective exclusion rules of kind in "-path" form.
func (s *Serializer) RulesFor(kind Kind) []string {
	return s.rules[kind].paths()
}

// Serialize converts a *entity.User, *entity.Article, *entity.Note or
// *entity.Favorite into a map. extra adds call-time exclusions using the
// same "-path" syntax as Rules.
func (s *Serializer) Serialize(v any, extra ...string) (map[string]any, error) {
	rs, err := parseRules(extra)
	if err != nil {
		return nil, err
	}
	w := &walker{s: s, chain: make(map[string]bool)}
	m, ok := w.record(v, rs, 0)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return m, nil
}

// walker holds the state of one Serialize call.
type walker struct {
	s     *Serializer
	chain map[string]bool
}

// record dispatches on the record type. ok is false for unsupported or nil values.
func (w *walker) record(v any, rs ruleSet, depth int) (map[string]any, bool) {
	switch r := v.(type) {
	case *entity.User:
		if r == nil {
			return nil, false
		}
		return w.user(r, rs, depth), true
	case *entity.Article:
		if r == nil {
			return nil, false
		}
		return w.article(r, rs, depth), true
	case *entity.Note:
		if r == nil {
			return nil, false
		}
		return w.note(r, rs, depth), true
	case *entity.Favorite:
		if r == nil {
			return nil, false
		}
		return w.favorite(r, rs, depth), true
	default:
		return nil, false
	}
}

func identity(kind Kind, id int64, ptr any) string {
	if id > 0 {
		return fmt.Sprintf("%s:%d", kind, id)
	}
	return fmt.Sprintf("%s@%p", kind, ptr)
}

// enter marks a record as being on the ancestor chain.
func (w *walker) enter(key string) {
	w.chain[key] = true
}

func (w *walker) leave(key string) {
	delete(w.chain, key)
}

// canExpand reports whether relationship key may be emitted at depth.
func (w *walker) canExpand(rs ruleSet, key string, depth int) bool {
	return !rs.excludes(key) && depth < w.s.maxDepth
}

func put(out map[string]any, rs ruleSet, key string, value any) {
	if !rs.excludes(key) {
		out[key] = value
	}
}

func (w *walker) user(u *entity.User, rs ruleSet, depth int) map[string]any {
	rs = rs.merge(w.s.rules[KindUser])
	key := identity(KindUser, u.ID, u)
	w.enter(key)
	defer w.leave(key)

	out := make(map[string]any)
	put(out, rs, "id", u.ID)
	put(out, rs, "username", u.Username)
	put(out, rs, "created_at", u.CreatedAt)

	if u.Favorites != nil && w.canExpand(rs, "favorites", depth) {
		out["favorites"] = w.favorites(u.Favorites, rs.under("favorites"), depth+1)
	}
	if u.Notes != nil && w.canExpand(rs, "notes", depth) {
		out["notes"] = w.notes(u.Notes, rs.under("notes"), depth+1)
	}
	return out
}

func (w *walker) article(a *entity.Article, rs ruleSet, depth int) map[string]any {
	rs = rs.merge(w.s.rules[KindArticle])
	key := identity(KindArticle, a.ID, a)
	w.enter(key)
	defer w.leave(key)

	out := make(map[string]any)
	put(out, rs, "id", a.ID)
	put(out, rs, "category", string(a.Category))
	put(out, rs, "title", a.Title)
	put(out, rs, "image_url", a.ImageURL)
	put(out, rs, "key_facts", a.KeyFacts)
	put(out, rs, "description", a.Description)
	put(out, rs, "article_url", a.ArticleURL)
	put(out, rs, "created_at", a.CreatedAt)

	if a.Notes != nil && w.canExpand(rs, "notes", depth) {
		out["notes"] = w.notes(a.Notes, rs.under("notes"), depth+1)
	}
	if a.Favorites != nil && w.canExpand(rs, "favorites", depth) {
		out["favorites"] = w.favorites(a.Favorites, rs.under("favorites"), depth+1)
	}
	return out
}

func (w *walker) note(n *entity.Note, rs ruleSet, depth int) map[string]any {
	rs = rs.merge(w.s.rules[KindNote])
	key := identity(KindNote, n.ID, n)
	w.enter(key)
	defer w.leave(key)

	out := make(map[string]any)
	put(out, rs, "id", n.ID)
	put(out, rs, "title", n.Title)
	put(out, rs, "text", n.Text)
	put(out, rs, "user_id", n.UserID)
	put(out, rs, "article_id", n.ArticleID)
	put(out, rs, "created_at", n.CreatedAt)
	put(out, rs, "updated_at", n.UpdatedAt)

	if n.User != nil && w.canExpand(rs, "user", depth) {
		if m, ok := w.single(KindUser, n.User.ID, n.User, rs.under("user"), depth+1); ok {
			out["user"] = m
		}
	}
	if n.Article != nil && w.canExpand(rs, "article", depth) {
		if m, ok := w.single(KindArticle, n.Article.ID, n.Article, rs.under("article"), depth+1); ok {
			out["article"] = m
		}
	}
	return out
}

func (w *walker) favorite(f *entity.Favorite, rs ruleSet, depth int) map[string]any {
	rs = rs.merge(w.s.rules[KindFavorite])
	key := identity(KindFavorite, f.ID, f)
	w.enter(key)
	defer w.leave(key)

	out := make(map[string]any)
	put(out, rs, "id", f.ID)
	put(out, rs, "user_id", f.UserID)
	put(out, rs, "article_id", f.ArticleID)
	put(out, rs, "created_at", f.CreatedAt)

	if f.User != nil && w.canExpand(rs, "user", depth) {
		if m, ok := w.single(KindUser, f.User.ID, f.User, rs.under("user"), depth+1); ok {
			out["user"] = m
		}
	}
	if f.Article != nil && w.canExpand(rs, "article", depth) {
		if m, ok := w.single(KindArticle, f.Article.ID, f.Article, rs.under("article"), depth+1); ok {
			out["article"] = m
		}
	}
	return out
}

// single serializes a to-one relation unless it is already on the chain.
func (w *walker) single(kind Kind, id int64, v any, rs ruleSet, depth int) (map[string]any, bool) {
	if w.chain[identity(kind, id, v)] {
		return nil, false
	}
	return w.record(v, rs, depth)
}

func (w *walker) notes(notes []*entity.Note, rs ruleSet, depth int) []map[string]any {
	out := make([]map[string]any, 0, len(notes))
	for _, n := range notes {
		if n == nil || w.chain[identity(KindNote, n.ID, n)] {
			continue
		}
		out = append(out, w.note(n, rs, depth))
	}
	return out
}

func (w *walker) favorites(favs []*entity.Favorite, rs ruleSet, depth int) []map[string]any {
	out := make([]map[string]any, 0, len(favs))
	for _, f := range favs {
		if f == nil || w.chain[identity(KindFavorite, f.ID, f)] {
			continue
		}
		out = append(out, w.favorite(f, rs, depth))
	}
	return out
}
