package thumbnail_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/namkata/imagestore/internal/thumbnail"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFitScalesDownWithinBounds(t *testing.T) {
	data, contentType, err := thumbnail.Fit(pngBytes(t, 64, 64), "image/png", 16, 16)
	require.NoError(t, err)
	require.Equal(t, "image/png", contentType)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dx())
	require.Equal(t, 16, img.Bounds().Dy())
}

func TestFitPreservesAspectRatio(t *testing.T) {
	data, _, err := thumbnail.Fit(pngBytes(t, 64, 32), "image/png", 16, 16)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dx())
	require.Equal(t, 8, img.Bounds().Dy())
}

func TestFitDoesNotUpscale(t *testing.T) {
	data, _, err := thumbnail.Fit(pngBytes(t, 8, 8), "image/png", 256, 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
}

func TestFitEncodesJPEGForJPEGSources(t *testing.T) {
	// The source format is detected from the bytes; the declared content
	// type picks the output encoding.
	data, contentType, err := thumbnail.Fit(pngBytes(t, 32, 32), "image/jpeg", 16, 16)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", contentType)

	_, err = jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestFitRejectsNonImageData(t *testing.T) {
	_, _, err := thumbnail.Fit([]byte("not an image at all"), "image/png", 16, 16)
	require.Error(t, err)
	require.ErrorIs(t, err, thumbnail.ErrNotAnImage)
}

func TestClamp(t *testing.T) {
	require.Equal(t, thumbnail.DefaultSize, thumbnail.Clamp(0))
	require.Equal(t, thumbnail.DefaultSize, thumbnail.Clamp(-5))
	require.Equal(t, 100, thumbnail.Clamp(100))
	require.Equal(t, thumbnail.MaxSize, thumbnail.Clamp(thumbnail.MaxSize+1))
}
