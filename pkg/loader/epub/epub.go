package epub

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fablemap/fablemap/pkg/loader"
	"github.com/fablemap/fablemap/pkg/loader/html"
)

// sectionMax caps how much of a single content section is read, as a
// guard against zip bombs.
const sectionMax = 50 << 20

// EpubLoader extracts the full text of an EPUB book fetched through an
// underlying raw loader. EPUB is a zip container of XHTML sections;
// sections are concatenated in archive order.
type EpubLoader struct {
	raw loader.DocumentLoader
}

// NewEpubLoader creates an EPUB text loader on top of a raw byte loader.
func NewEpubLoader(raw loader.DocumentLoader) *EpubLoader {
	return &EpubLoader{raw: raw}
}

// GetFileText fetches the raw EPUB and extracts its readable text.
func (l *EpubLoader) GetFileText(ctx context.Context, doc loader.Document) ([]byte, error) {
	content, err := l.raw.GetFileText(ctx, doc)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open epub %q: %w", doc.Name, err)
	}

	var sections []string
	for _, f := range zr.File {
		if !isContentSection(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open epub section %q: %w", f.Name, err)
		}
		raw, err := io.ReadAll(io.LimitReader(rc, sectionMax))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read epub section %q: %w", f.Name, err)
		}

		text, err := html.ExtractText(raw)
		if err != nil {
			// Cover pages and navigation sections often carry no prose.
			continue
		}
		sections = append(sections, text)
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no readable sections in epub %q", doc.Name)
	}

	return []byte(strings.Join(sections, "\n\n")), nil
}

func isContentSection(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xhtml") ||
		strings.HasSuffix(lower, ".html") ||
		strings.HasSuffix(lower, ".htm")
}
