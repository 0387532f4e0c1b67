package imaging

import (
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestDirectorySource_Order(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame-002.png", "frame-001.png", "frame-003.jpg"} {
		if err := imaging.Save(solidImage(8, 6, color.White), filepath.Join(dir, name)); err != nil {
			t.Fatalf("failed to save %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirectorySource(dir)
	if err != nil {
		t.Fatalf("NewDirectorySource failed: %v", err)
	}
	if src.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", src.Len())
	}
	if src.Path() != "" {
		t.Errorf("Path before Next: got %q, want empty", src.Path())
	}

	want := []string{"frame-001.png", "frame-002.png", "frame-003.jpg"}
	for i, name := range want {
		img, err := src.Next()
		if err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
		if img.Bounds().Dx() != 8 {
			t.Errorf("frame %d width: got %d, want 8", i, img.Bounds().Dx())
		}
		if got := filepath.Base(src.Path()); got != name {
			t.Errorf("frame %d: got %s, want %s", i, got, name)
		}
	}

	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("after last frame: got %v, want io.EOF", err)
	}
}

func TestDirectorySource_CorruptFrame(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(solidImage(4, 4, color.Black), filepath.Join(dir, "b.png")); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirectorySource(dir)
	if err != nil {
		t.Fatalf("NewDirectorySource failed: %v", err)
	}

	if _, err := src.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("corrupt frame: got %v, want decode error", err)
	}
	if _, err := src.Next(); err != nil {
		t.Errorf("frame after corrupt one: got %v, want nil", err)
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("got %v, want io.EOF", err)
	}
}

func TestDirectorySource_MissingDir(t *testing.T) {
	if _, err := NewDirectorySource("/nonexistent/frames"); err == nil {
		t.Error("NewDirectorySource should fail for a missing directory")
	}
}

func TestStaticSource(t *testing.T) {
	frame := solidImage(2, 2, color.White)
	src := &StaticSource{Frame: frame, Count: 2}

	for i := 0; i < 2; i++ {
		img, err := src.Next()
		if err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
		if img != frame {
			t.Errorf("Next %d returned a different frame", i)
		}
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("got %v, want io.EOF", err)
	}
}
