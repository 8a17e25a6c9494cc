package serializer

import (
	"fmt"
	"sort"
	"strings"
)

// Kind names a serializable record type.
type Kind string

const (
	KindUser     Kind = "user"
	KindArticle  Kind = "article"
	KindNote     Kind = "note"
	KindFavorite Kind = "favorite"
)

// Rules maps each record kind to the relationship paths excluded whenever a
// record of that kind is serialized. Paths are relative to the record.
var Rules = map[Kind][]string{
	KindUser:     {"-favorites.user", "-notes.user"},
	KindArticle:  {"-notes.article", "-favorites.article"},
	KindNote:     {"-user.notes", "-article.notes"},
	KindFavorite: {"-user.favorites", "-article.favorites"},
}

// ruleSet is a set of excluded dotted paths.
type ruleSet map[string]struct{}

func parseRules(rules []string) (ruleSet, error) {
	rs := make(ruleSet, len(rules))
	for _, r := range rules {
		path := strings.TrimPrefix(strings.TrimSpace(r), "-")
		if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRule, r)
		}
		rs[path] = struct{}{}
	}
	return rs, nil
}

func mustParseRules(rules []string) ruleSet {
	rs, err := parseRules(rules)
	if err != nil {
		panic(err)
	}
	return rs
}

// excludes reports whether key is excluded at this level.
func (rs ruleSet) excludes(key string) bool {
	_, ok := rs[key]
	return ok
}

// under returns the rules that apply inside key, re-rooted at key.
func (rs ruleSet) under(key string) ruleSet {
	prefix := key + "."
	out := make(ruleSet)
	for p := range rs {
		if rest, ok := strings.CutPrefix(p, prefix); ok {
			out[rest] = struct{}{}
		}
	}
	return out
}

func (rs ruleSet) merge(other ruleSet) ruleSet {
	out := make(ruleSet, len(rs)+len(other))
	for p := range rs {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}

// paths returns the rules in sorted "-path" form.
func (rs ruleSet) paths() []string {
	out := make([]string, 0, len(rs))
	for p := range rs {
		out = append(out, "-"+p)
	}
	sort.Strings(out)
	return out
}
