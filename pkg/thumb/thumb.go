// Package thumb renders small JPEG previews for uploaded image files so
// review screens do not fetch full-size receipts and documents.
package thumb

import (
	"bytes"
	"strings"

	"github.com/disintegration/imaging"
)

// maxEdge bounds the longer side of a generated thumbnail.
const maxEdge = 320

// Supported reports whether mimeType is an image format we can decode.
func Supported(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/png", "image/gif", "image/bmp", "image/tiff":
		return true
	}
	return false
}

// Generate decodes src, fits it into a maxEdge box preserving aspect ratio
// and returns it re-encoded as JPEG.
func Generate(src []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	small := imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	var out bytes.Buffer
	if err := imaging.Encode(&out, small, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
