package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"reflow/pkg/report"
)

// testPNGDataURI builds a small 2x2 red PNG as a data URI.
func testPNGDataURI() string {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	red := color.RGBA{255, 0, 0, 255}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, red)
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestIsDataURI(t *testing.T) {
	if !IsDataURI("data:image/png;base64,abc") {
		t.Error("expected true for data URI")
	}
	if IsDataURI("/path/to/file.png") {
		t.Error("expected false for file path")
	}
	if IsDataURI("") {
		t.Error("expected false for empty string")
	}
}

func TestLoadDataURI(t *testing.T) {
	c := NewCache(nil)
	img, err := c.Load(testPNGDataURI())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("expected 2x2 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestLoadCachesByPointer(t *testing.T) {
	c := NewCache(nil)
	uri := testPNGDataURI()
	a, err := c.Load(uri)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Load(uri)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("second load should return the cached image")
	}
}

func TestLoadFailureIsRememberedAndTyped(t *testing.T) {
	c := NewCache(nil)
	bad := "data:image/png;base64,aGVsbG8=" // valid base64, not an image

	_, err := c.Load(bad)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, report.ErrImageDecode) {
		t.Errorf("error kind = %v, want ImageDecodeFailed", err)
	}

	// Second load must fail from the negative cache, still typed.
	_, err = c.Load(bad)
	if !errors.Is(err, report.ErrImageDecode) {
		t.Errorf("cached failure kind = %v", err)
	}
}

func TestDecodeDataURIInvalid(t *testing.T) {
	tests := []string{
		"not-a-data-uri",
		"data:image/png;base64", // no comma
		"data:image/png;base64,!!!invalid!!!",
	}
	for _, uri := range tests {
		if _, err := DecodeDataURI(uri); err == nil {
			t.Errorf("expected error for %q", uri)
		}
	}
}

func TestDimensions(t *testing.T) {
	c := NewCache(nil)
	w, h, ok := c.Dimensions(testPNGDataURI())
	if !ok || w != 2 || h != 2 {
		t.Errorf("dimensions = %d x %d (ok=%v), want 2x2", w, h, ok)
	}
	if _, _, ok := c.Dimensions("missing-file.png"); ok {
		t.Error("missing file should not report dimensions")
	}
}
