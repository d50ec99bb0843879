package doc

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/fablemap/fablemap/pkg/loader"
)

const docXMLMax = 50 << 20

// DocLoader extracts the text content of Word documents (.docx)
// fetched through an underlying raw loader.
type DocLoader struct {
	raw loader.DocumentLoader
}

// NewDocLoader creates a Word document text loader on top of a raw
// byte loader.
func NewDocLoader(raw loader.DocumentLoader) *DocLoader {
	return &DocLoader{raw: raw}
}

// GetFileText fetches the raw document and extracts its text from the
// document XML.
func (l *DocLoader) GetFileText(ctx context.Context, doc loader.Document) ([]byte, error) {
	content, err := l.raw.GetFileText(ctx, doc)
	if err != nil {
		return nil, err
	}
	text, err := parseDocx(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", doc.Name, err)
	}
	return text, nil
}

func parseDocx(content []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("document.xml not found in docx")
	}
	if docFile.UncompressedSize64 > docXMLMax {
		return nil, fmt.Errorf("document.xml too large: %d bytes", docFile.UncompressedSize64)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(io.LimitReader(rc, int64(docXMLMax)))

	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br", "cr":
				sb.WriteByte('\n')
			case "tab":
				sb.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
					sb.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return []byte(strings.TrimSpace(sb.String())), nil
}
