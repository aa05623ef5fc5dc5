package secretnote

import (
	"strings"
	"testing"
)

func TestHexView(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		width int
		want  string
	}{
		{
			name:  "empty",
			data:  nil,
			width: 16,
			want:  "[length: 0 bytes (0 bits)]\n",
		},
		{
			name:  "full row",
			data:  []byte("abcd"),
			width: 4,
			want:  "[length: 4 bytes (32 bits)]\n61·62·63·64  abcd\n",
		},
		{
			name:  "partial row",
			data:  []byte("hello"),
			width: 4,
			want:  "[length: 5 bytes (40 bits)]\n68·65·6c·6c  hell\n6f           o",
		},
		{
			name:  "non-printable",
			data:  []byte{0x00, '0', ' ', 'Z'},
			width: 4,
			want:  "[length: 4 bytes (32 bits)]\n00·30·20·5a  .0.Z\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HexView(tt.data, tt.width); got != tt.want {
				t.Errorf("HexView() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestHexView_DefaultWidth(t *testing.T) {
	got := HexView(make([]byte, 32), 0)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), got)
	}
	if n := strings.Count(lines[1], "·"); n != 15 {
		t.Errorf("row has %d separators, want 15", n)
	}
}
