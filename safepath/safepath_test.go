package safepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	sb, err := New(root, 0)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"deck.pptx", filepath.Join(root, "deck.pptx"), false},
		{"sub/../deck.pptx", filepath.Join(root, "deck.pptx"), false},
		{filepath.Join(root, "a", "b.pptx"), filepath.Join(root, "a", "b.pptx"), false},
		{"../outside.pptx", "", true},
		{"a/../../outside.pptx", "", true},
		{"/etc/passwd", "", true},
		{"  ", "", true},
	}
	for _, tt := range tests {
		got, err := sb.Resolve(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%q) error=%v, wantErr=%v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
	if _, err := sb.Resolve("../x"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot, got %v", err)
	}
}

func TestResolve_NoRoot(t *testing.T) {
	sb, _ := New("", 0)
	got, err := sb.Resolve("rel/deck.pptx")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Resolve should return an absolute path, got %q", got)
	}
}

func TestReadFile_Limit(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "small.bin"), []byte("12345"), 0o644)

	sb, _ := New(root, 5)
	data, err := sb.ReadFile("small.bin")
	if err != nil || string(data) != "12345" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}

	sb.MaxBytes = 4
	if _, err := sb.ReadFile("small.bin"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := sb.ReadFile("missing.bin"); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLimitedReadAll(t *testing.T) {
	if _, err := LimitedReadAll(strings.NewReader("abcdef"), 3); err == nil {
		t.Fatal("expected error")
	}
	data, err := LimitedReadAll(strings.NewReader("abc"), 3)
	if err != nil || string(data) != "abc" {
		t.Fatalf("got %q, %v", data, err)
	}
}
