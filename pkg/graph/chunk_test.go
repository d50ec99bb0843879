package graph

import (
	"strings"
	"testing"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{
			name: "empty text yields no units",
			text: "",
			size: 10,
			want: nil,
		},
		{
			name: "text shorter than size is one unit",
			text: "hello",
			size: 10,
			want: []string{"hello"},
		},
		{
			name: "text equal to size is one unit",
			text: "hello",
			size: 5,
			want: []string{"hello"},
		},
		{
			name: "exact multiple splits evenly",
			text: "aabbcc",
			size: 2,
			want: []string{"aa", "bb", "cc"},
		},
		{
			name: "remainder goes into a shorter last unit",
			text: "aabbc",
			size: 2,
			want: []string{"aa", "bb", "c"},
		},
		{
			name: "boundaries count runes not bytes",
			text: "äöüß",
			size: 2,
			want: []string{"äö", "üß"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d units, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("unit %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkCoversInput(t *testing.T) {
	text := strings.Repeat("abcdefg", 1000)
	units := Chunk(text, 123)

	wantUnits := (len(text) + 122) / 123
	if len(units) != wantUnits {
		t.Errorf("got %d units, want %d", len(units), wantUnits)
	}
	if joined := strings.Join(units, ""); joined != text {
		t.Error("concatenated units do not reproduce the input")
	}
	for i, u := range units {
		if len([]rune(u)) > 123 {
			t.Errorf("unit %d has %d runes, want at most 123", i, len([]rune(u)))
		}
	}
}
