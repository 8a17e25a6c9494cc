package repotest

import (
	"context"
	"fmt"
	"html"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"wikinotes/internal/domain/entity"
	"wikinotes/pkg/security/password"
)

// ArticleOption is a functional option for customizing test articles.
type ArticleOption func(*entity.Article)

// NewTestArticle creates a valid Article with sensible defaults.
//
// Example:
//
//	a := NewTestArticle()
//	a := NewTestArticle(WithCategory(entity.CategoryHistory), WithTitle("X"))
func NewTestArticle(opts ...ArticleOption) *entity.Article {
	a := &entity.Article{
		Category:    entity.CategoryTechnology,
		Title:       "Go (programming language)",
		ImageURL:    "https://upload.example.org/go.png",
		KeyFacts:    "Designed at Google; first released 2009",
		Description: "Go is a statically typed, compiled language.",
		ArticleURL:  "https://en.wikipedia.org/wiki/Go_(programming_language)",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithCategory sets the category of the article.
func WithCategory(c entity.Category) ArticleOption {
	return func(a *entity.Article) {
		a.Category = c
	}
}

// WithTitle sets the title of the article.
func WithTitle(title string) ArticleOption {
	return func(a *entity.Article) {
		a.Title = title
	}
}

// WithArticleURL sets the source URL of the article.
func WithArticleURL(url string) ArticleOption {
	return func(a *entity.Article) {
		a.ArticleURL = url
	}
}

// Hasher returns a bcrypt hasher at the minimum cost.
func Hasher(t testing.TB) *password.BcryptHasher {
	t.Helper()
	h, err := password.NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	return h
}

// SeedUser stores a user with the given credentials.
func (s *Store) SeedUser(t testing.TB, hasher password.Hasher, username, plaintext string) *entity.User {
	t.Helper()
	u, err := entity.NewUser(username, hasher, plaintext)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := s.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedArticle stores a test article built from opts.
func (s *Store) SeedArticle(t testing.TB, opts ...ArticleOption) *entity.Article {
	t.Helper()
	a := NewTestArticle(opts...)
	if err := s.Articles().Create(context.Background(), a); err != nil {
		t.Fatalf("seed article: %v", err)
	}
	return a
}

// SeedNote stores a note by userID on articleID.
func (s *Store) SeedNote(t testing.TB, userID, articleID int64, title, text string) *entity.Note {
	t.Helper()
	n := &entity.Note{UserID: userID, ArticleID: articleID, Title: title, Text: text}
	if err := s.Notes().Create(context.Background(), n); err != nil {
		t.Fatalf("seed note: %v", err)
	}
	return n
}

// SeedFavorite stores a favorite of userID on articleID.
func (s *Store) SeedFavorite(t testing.TB, userID, articleID int64) *entity.Favorite {
	t.Helper()
	f := &entity.Favorite{UserID: userID, ArticleID: articleID}
	if err := s.Favorites().Create(context.Background(), f); err != nil {
		t.Fatalf("seed favorite: %v", err)
	}
	return f
}

// PageOptions configures a generated encyclopedia-style HTML page.
type PageOptions struct {
	Title       string
	Description string
	ImageURL    string
	// Paragraphs is the number of body paragraphs (default 5).
	Paragraphs int
}

var pageSentences = []string{
	"The topic has been studied for centuries by scholars across many cultures.",
	"Early accounts describe its origins in considerable detail.",
	"Modern research has refined the understanding of its key principles.",
	"Several competing theories were proposed during the twentieth century.",
	"Its influence can be traced through art, science and public life.",
	"Today it remains an active field with a large international community.",
}

// ArticlePage returns an HTML document shaped like a reference article, with
// Open Graph metadata, an infobox and body paragraphs.
func ArticlePage(opts PageOptions) string {
	if opts.Paragraphs <= 0 {
		opts.Paragraphs = 5
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head>")
	fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(opts.Title))
	fmt.Fprintf(&b, `<meta property="og:title" content="%s">`, html.EscapeString(opts.Title))
	if opts.Description != "" {
		fmt.Fprintf(&b, `<meta name="description" content="%s">`, html.EscapeString(opts.Description))
	}
	if opts.ImageURL != "" {
		fmt.Fprintf(&b, `<meta property="og:image" content="%s">`, html.EscapeString(opts.ImageURL))
	}
	b.WriteString("</head><body><main><article>")
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(opts.Title))
	b.WriteString(`<table class="infobox"><tr><th>Founded</th><td>1901</td></tr><tr><th>Region</th><td>Worldwide</td></tr></table>`)
	for i := 0; i < opts.Paragraphs; i++ {
		b.WriteString("<p>")
		for j := 0; j < 4; j++ {
			if j > 0 {
				b.WriteString(" ")
			}
			b.WriteString(pageSentences[(i+j)%len(pageSentences)])
		}
		b.WriteString("</p>")
	}
	b.WriteString("</article></main></body></html>")
	return b.String()
}
