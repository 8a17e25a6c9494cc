package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the dynamic routes, most specific first.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/articles/\d+$`), Template: "/articles/:id"},
	{Pattern: regexp.MustCompile(`^/articles/\d+/notes/mine$`), Template: "/articles/:id/notes/mine"},
	{Pattern: regexp.MustCompile(`^/articles/\d+/notes$`), Template: "/articles/:id/notes"},
	{Pattern: regexp.MustCompile(`^/notes/\d+$`), Template: "/notes/:id"},
	{Pattern: regexp.MustCompile(`^/favorites/\d+$`), Template: "/favorites/:id"},
}

// NormalizePath converts paths with IDs (e.g. /articles/123) to their
// template (/articles/:id) so metrics labels keep a bounded cardinality.
// Static paths are returned unchanged.
//
// Examples:
//
//	NormalizePath("/articles/123")          // "/articles/:id"
//	NormalizePath("/notes/9")               // "/notes/:id"
//	NormalizePath("/users/me")              // "/users/me" (unchanged)
//	NormalizePath("/articles/123?page=1")   // "/articles/:id"
//	NormalizePath("/articles/123/")         // "/articles/:id"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	return path
}
