package thumb

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGenerateShrinksLargeImage(t *testing.T) {
	out, err := Generate(testPNG(t, 1600, 900))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("thumbnail not decodable: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > maxEdge || b.Dy() > maxEdge {
		t.Fatalf("thumbnail %dx%d exceeds %d", b.Dx(), b.Dy(), maxEdge)
	}
}

func TestGenerateRejectsGarbage(t *testing.T) {
	if _, err := Generate([]byte("not an image")); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestSupported(t *testing.T) {
	if !Supported("image/png") || !Supported("image/jpeg") {
		t.Error("common image types reported unsupported")
	}
	if Supported("application/pdf") || Supported("text/plain") {
		t.Error("non-image types reported supported")
	}
}
