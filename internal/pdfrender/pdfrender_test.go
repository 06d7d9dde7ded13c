package pdfrender

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakePoppler writes a script that fabricates page files the way pdftoppm
// does: <prefix>-01.png, <prefix>-02.png, ...
func fakePoppler(t *testing.T, pages int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binary is a shell script")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "pdftoppm")
	body := "#!/bin/sh\nprefix=\"$5\"\n"
	for i := 1; i <= pages; i++ {
		body += "printf x > \"$prefix-0" + string(rune('0'+i)) + ".png\"\n"
	}
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return script
}

func TestRenderSortedPages(t *testing.T) {
	outDir := t.TempDir()
	p := &Poppler{Binary: fakePoppler(t, 3)}

	pages, err := p.Render(context.Background(), "doc.pdf", outDir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	for i := 1; i < len(pages); i++ {
		if pages[i-1] >= pages[i] {
			t.Errorf("pages out of order: %q >= %q", pages[i-1], pages[i])
		}
	}
}

func TestRenderNoPages(t *testing.T) {
	p := &Poppler{Binary: fakePoppler(t, 0)}
	if _, err := p.Render(context.Background(), "doc.pdf", t.TempDir(), 150); err == nil {
		t.Error("expected error when no pages are produced")
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "page-1.png")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	Cleanup([]string{f, filepath.Join(dir, "missing.png")})

	if _, err := os.Stat(f); !os.IsNotExist(err) {
		t.Error("page file not removed")
	}
}
