// Package article provides use cases for managing articles: creating,
// updating, deleting and listing them, and importing them from web pages.
package article

import "errors"

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that the requested article was not found.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates that the provided article ID is invalid.
	// Article IDs must be positive integers.
	ErrInvalidArticleID = errors.New("invalid article ID")

	// ErrDuplicateArticle indicates that an article with the same URL already exists.
	ErrDuplicateArticle = errors.New("article with this URL already exists")

	// ErrImportUnavailable is returned by Import when no PageFetcher is configured.
	ErrImportUnavailable = errors.New("article import is not configured")
)
