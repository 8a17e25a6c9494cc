// Package markdown renders note text as HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// renderer is shared; goldmark keeps per-call state in the parse.
// Raw HTML in the source is omitted because the unsafe option is off.
var renderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.DefinitionList,
	),
)

// ToHTML converts markdown text to an HTML fragment. Empty input yields an
// empty fragment.
func ToHTML(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
