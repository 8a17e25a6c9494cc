// Package favorite provides use cases for bookmarking articles.
package favorite

import "errors"

// Sentinel errors for favorite use case operations.
var (
	// ErrFavoriteNotFound indicates that the requested favorite was not found.
	ErrFavoriteNotFound = errors.New("favorite not found")

	// ErrDuplicateFavorite indicates that the user already favorited the article.
	ErrDuplicateFavorite = errors.New("article is already a favorite")

	// ErrForbidden indicates that the favorite belongs to another user.
	ErrForbidden = errors.New("favorite belongs to another user")
)
