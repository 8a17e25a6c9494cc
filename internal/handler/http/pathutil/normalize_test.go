package pathutil

import (
	"strconv"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/articles/123", want: "/articles/:id"},
		{path: "/articles/1/notes/mine", want: "/articles/:id/notes/mine"},
		{path: "/articles/1/notes", want: "/articles/:id/notes"},
		{path: "/notes/9", want: "/notes/:id"},
		{path: "/favorites/77", want: "/favorites/:id"},
		{path: "/articles", want: "/articles"},
		{path: "/articles/import", want: "/articles/import"},
		{path: "/users/me", want: "/users/me"},
		{path: "/health", want: "/health"},
		{path: "/", want: "/"},
		{path: "/articles/123?page=1", want: "/articles/:id"},
		{path: "/articles/123/", want: "/articles/:id"},
		{path: "/articles/abc", want: "/articles/abc"},
		{path: "/unknown/path/123", want: "/unknown/path/123"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizePath_Cardinality(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 1; i <= 1000; i++ {
		seen[NormalizePath("/articles/"+strconv.Itoa(i))] = struct{}{}
		seen[NormalizePath("/notes/"+strconv.Itoa(i))] = struct{}{}
	}
	if len(seen) != 2 {
		t.Errorf("expected 2 unique labels, got %d", len(seen))
	}
}

