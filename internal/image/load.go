// Package image provides source image loading and preprocessing into a
// darkness map for string-art generation.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrImageDecode is returned when a source image cannot be read or has no pixels.
var ErrImageDecode = errors.New("image decode error")

// Load reads and decodes the image at path into a BGR Mat.
func Load(path string) (gocv.Mat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: failed to read %s: %v", ErrImageDecode, filepath.Base(path), err)
	}
	return Decode(data)
}

// Decode decodes encoded image bytes into a BGR Mat. OpenCV is tried first;
// formats it cannot handle fall back to the Go decoders.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: empty input", ErrImageDecode)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	mat.Close()

	img, _, derr := image.Decode(bytes.NewReader(data))
	if derr != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrImageDecode, derr)
	}
	return FromImage(img)
}

// FromImage converts a decoded Go image into a BGR Mat.
func FromImage(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), fmt.Errorf("%w: nil image", ErrImageDecode)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return gocv.NewMat(), fmt.Errorf("%w: zero area (%dx%d)", ErrImageDecode, bounds.Dx(), bounds.Dy())
	}
	return imageToMat(img), nil
}

// SupportedFormats returns the list of file extensions Load understands.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
