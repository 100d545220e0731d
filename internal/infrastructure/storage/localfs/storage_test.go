package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveOverwritesAndOpenReadsBack(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "out.docx", strings.NewReader("first version")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, "out.docx", strings.NewReader("second")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := s.Open(ctx, "out.docx")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(raw) != "second" {
		t.Fatalf("expected overwritten content, got %q", raw)
	}
}

func TestAbsoluteKeysBypassBasePath(t *testing.T) {
	base := t.TempDir()
	other := filepath.Join(t.TempDir(), "abs.txt")
	if err := os.WriteFile(other, []byte("abs"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	s, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rc, err := s.Open(context.Background(), other)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = rc.Close()
}

func TestOpenMissingFile(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.Open(context.Background(), "missing.pdf"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
