package html

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fablemap/fablemap/pkg/loader"

	"codeberg.org/readeck/go-readability/v2"
)

// HTMLLoader extracts readable text from an HTML document fetched
// through an underlying raw loader.
type HTMLLoader struct {
	raw loader.DocumentLoader
}

// NewHTMLLoader creates an HTML text loader on top of a raw byte loader.
func NewHTMLLoader(raw loader.DocumentLoader) *HTMLLoader {
	return &HTMLLoader{raw: raw}
}

// GetFileText fetches the raw HTML and extracts its readable text.
func (l *HTMLLoader) GetFileText(ctx context.Context, doc loader.Document) ([]byte, error) {
	content, err := l.raw.GetFileText(ctx, doc)
	if err != nil {
		return nil, err
	}
	text, err := ExtractText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %q: %w", doc.Name, err)
	}
	return []byte(text), nil
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// ExtractText pulls the readable text out of an HTML fragment. It
// prefers readability's article extraction and falls back to stripping
// tags when the fragment is too bare for readability to accept.
func ExtractText(content []byte) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(content), nil)
	if err == nil {
		var builder strings.Builder
		if err := article.RenderText(&builder); err == nil {
			text := strings.TrimSpace(builder.String())
			if text != "" {
				return text, nil
			}
		}
	}

	text := strings.TrimSpace(tagRe.ReplaceAllString(string(content), " "))
	if text == "" {
		return "", fmt.Errorf("no readable text found")
	}
	return text, nil
}
