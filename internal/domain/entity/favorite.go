package entity

import "time"

// Favorite marks an article as saved by a user.
type Favorite struct {
	ID        int64
	UserID    int64
	ArticleID int64
	CreatedAt time.Time

	// User and Article are nil when the relation was not loaded.
	User    *User
	Article *Article
}

// Validate checks the favorite's references.
func (f *Favorite) Validate() error {
	if f.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "is required"}
	}
	if f.ArticleID <= 0 {
		return &ValidationError{Field: "article_id", Message: "is required"}
	}
	return nil
}

// OwnedBy reports whether the favorite belongs to userID.
func (f *Favorite) OwnedBy(userID int64) bool {
	return f.UserID == userID
}
