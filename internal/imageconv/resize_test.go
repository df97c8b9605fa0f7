package imageconv

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestDownscale(t *testing.T) {
	t.Run("WithinBoundsUnchanged", func(t *testing.T) {
		data := encodePNG(t, 10, 10)
		got, err := Downscale(data, 100)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("UndecodableUnchanged", func(t *testing.T) {
		data := []byte("not an image at all")
		got, err := Downscale(data, 100)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("ShrinksKeepingAspectRatio", func(t *testing.T) {
		got, err := Downscale(encodePNG(t, 300, 100), 150)
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 150, cfg.Width)
		assert.Equal(t, 50, cfg.Height)
	})

	t.Run("JPEGStaysJPEG", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 100, 400)), nil))

		got, err := Downscale(buf.Bytes(), 200)
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 50, cfg.Width)
		assert.Equal(t, 200, cfg.Height)
	})
}
