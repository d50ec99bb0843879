package io

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fablemap/fablemap/pkg/loader"
)

func TestFileLoaderReadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume1.txt")
	if err := os.WriteFile(path, []byte("the first volume"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewFileLoader()
	doc := loader.Document{Name: "volume1.txt", Key: path, Loader: l}

	got, err := l.GetFileText(context.Background(), doc)
	if err != nil {
		t.Fatalf("GetFileText() error = %v", err)
	}
	if string(got) != "the first volume" {
		t.Errorf("content = %q", got)
	}

	// Cached: deleting the file must not matter anymore.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	got, err = l.GetFileText(context.Background(), doc)
	if err != nil {
		t.Fatalf("GetFileText() after delete error = %v", err)
	}
	if string(got) != "the first volume" {
		t.Errorf("cached content = %q", got)
	}
}

func TestFileLoaderMissingFile(t *testing.T) {
	l := NewFileLoader()
	doc := loader.Document{Name: "missing.txt", Key: filepath.Join(t.TempDir(), "missing.txt")}
	if _, err := l.GetFileText(context.Background(), doc); err == nil {
		t.Error("GetFileText() error = nil, want read failure")
	}
}
