package loader

import (
	"context"
	"fmt"
	"strings"
)

// Document is one uploaded source document to ingest. The actual
// content is retrieved through the attached DocumentLoader so the
// pipeline does not care whether the bytes live on disk, in S3, or
// inside an EPUB container.
type Document struct {
	ID          string // source record identifier
	Name        string // display name, usually the original filename
	ContentType string // content-type tag from upload
	Key         string // storage key or filesystem path
	Loader      DocumentLoader
}

// DocumentLoader retrieves the plain text of a document.
type DocumentLoader interface {
	GetFileText(ctx context.Context, doc Document) ([]byte, error)
}

// GetText loads the document's full plain text through its loader.
func (d Document) GetText(ctx context.Context) (string, error) {
	if d.Loader == nil {
		return "", fmt.Errorf("document %q has no loader", d.Name)
	}
	text, err := d.Loader.GetFileText(ctx, d)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// CacheKey returns the cache key for a document's raw content.
func CacheKey(doc Document) string {
	return doc.Key
}

// Ext returns the lowercased filename extension without the dot.
func Ext(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}
