// Package thumbnail derives scaled-down renditions of stored images on
// demand. Nothing is persisted; the rendition is computed from the stored
// bytes per request.
package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// Requested dimensions are clamped to these bounds.
const (
	DefaultSize = 256
	MaxSize     = 2048
)

// ErrNotAnImage is returned when the stored bytes do not decode as an
// image in a supported format.
var ErrNotAnImage = errors.New("stored file is not a decodable image")

// Fit scales the image down to fit within width x height, preserving the
// aspect ratio, and re-encodes it in its source format. Images already
// inside the bounds are returned at their original dimensions.
func Fit(data []byte, contentType string, width, height int) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	thumb := imaging.Fit(img, width, height, imaging.Lanczos)

	format, outType := encodingFor(contentType)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), outType, nil
}

// Clamp normalizes a requested dimension into the allowed range, mapping
// zero to the default.
func Clamp(n int) int {
	if n <= 0 {
		return DefaultSize
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}

func encodingFor(contentType string) (imaging.Format, string) {
	switch strings.ToLower(contentType) {
	case "image/png":
		return imaging.PNG, "image/png"
	case "image/gif":
		return imaging.GIF, "image/gif"
	default:
		return imaging.JPEG, "image/jpeg"
	}
}
