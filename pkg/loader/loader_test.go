package loader

import (
	"context"
	"testing"
)

func TestExt(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"book.epub", "epub"},
		{"Volume 1.TXT", "txt"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"trailing.", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Ext(tt.name); got != tt.want {
			t.Errorf("Ext(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestGetTextWithoutLoader(t *testing.T) {
	d := Document{Name: "orphan.txt"}
	if _, err := d.GetText(context.Background()); err == nil {
		t.Error("GetText() error = nil, want missing loader error")
	}
}
