package entity

import (
	"strings"
	"time"
)

// Note is a user's annotation on an article.
type Note struct {
	ID        int64
	UserID    int64
	ArticleID int64
	Title     string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// User and Article are nil when the relation was not loaded.
	User    *User
	Article *Article
}

// Validate checks the note's references.
// Existence of the referenced records is checked by the store.
func (n *Note) Validate() error {
	if n.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "is required"}
	}
	if n.ArticleID <= 0 {
		return &ValidationError{Field: "article_id", Message: "is required"}
	}
	n.Title = strings.TrimSpace(n.Title)
	return nil
}

// OwnedBy reports whether userID wrote the note.
func (n *Note) OwnedBy(userID int64) bool {
	return n.UserID == userID
}
