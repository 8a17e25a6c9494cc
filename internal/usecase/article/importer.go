package article

import (
	"context"
	"errors"
)

// Page is the metadata extracted from an article web page.
type Page struct {
	Title       string
	Description string
	ImageURL    string
	KeyFacts    string
	// URL is the final URL after redirects.
	URL string
	// Size is the number of body bytes read.
	Size int
}

// PageFetcher downloads a web page and extracts article metadata from it.
//
// Implementations must refuse URLs that resolve to private addresses, bound
// the response size and the request duration, and validate every redirect
// target.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*Page, error)
}

// Errors reported by PageFetcher implementations.
var (
	// ErrInvalidURL indicates the URL is malformed or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a loopback, private or
	// link-local address.
	ErrPrivateIP = errors.New("private IP access denied")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrUnreachable indicates the page could not be downloaded at all.
	ErrUnreachable = errors.New("page unreachable")

	// ErrUpstreamStatus indicates the page answered with a non-200 status.
	ErrUpstreamStatus = errors.New("unexpected upstream status")

	// ErrExtractionFailed indicates no article could be extracted from the page.
	ErrExtractionFailed = errors.New("content extraction failed")
)
