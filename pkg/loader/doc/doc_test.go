package doc

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fablemap/fablemap/pkg/loader"
)

type memLoader struct {
	content []byte
}

func (l memLoader) GetFileText(ctx context.Context, doc loader.Document) ([]byte, error) {
	return l.content, nil
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDocLoaderExtractsParagraphs(t *testing.T) {
	documentXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>The inn stood</w:t></w:r><w:r><w:t xml:space="preserve"> on a hill.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Chapter</w:t><w:tab/><w:t>One</w:t></w:r></w:p>
    <w:p><w:r><w:t>Before</w:t><w:br/><w:t>After</w:t></w:r></w:p>
  </w:body>
</w:document>`

	l := NewDocLoader(memLoader{content: buildDocx(t, documentXML)})
	text, err := l.GetFileText(context.Background(), loader.Document{Name: "book.docx"})
	if err != nil {
		t.Fatalf("GetFileText() error = %v", err)
	}

	got := string(text)
	want := "The inn stood on a hill.\nChapter\tOne\nBefore\nAfter"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestDocLoaderRejectsMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	w.Write([]byte("<styles/>"))
	zw.Close()

	l := NewDocLoader(memLoader{content: buf.Bytes()})
	_, err := l.GetFileText(context.Background(), loader.Document{Name: "book.docx"})
	if err == nil || !strings.Contains(err.Error(), "document.xml") {
		t.Errorf("error = %v, want missing document.xml", err)
	}
}

func TestDocLoaderRejectsNonZipContent(t *testing.T) {
	l := NewDocLoader(memLoader{content: []byte("plain text, not a docx")})
	if _, err := l.GetFileText(context.Background(), loader.Document{Name: "book.docx"}); err == nil {
		t.Error("GetFileText() error = nil, want zip open failure")
	}
}
