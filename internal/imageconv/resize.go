package imageconv

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension bounds the longest side of stored scans.
const DefaultMaxDimension = 2048

// DefaultJPEGQuality is used when re-encoding downscaled JPEGs.
const DefaultJPEGQuality = 85

// Downscale shrinks an image so that neither side exceeds maxDim, keeping the
// aspect ratio and the original encoding. Images already within bounds are
// returned unchanged. Bytes that do not decode as JPEG or PNG are also
// returned unchanged; they are handled by the normalizer instead.
func Downscale(data []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, nil
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return data, nil
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxDim
		newHeight = height * maxDim / width
	} else {
		newHeight = maxDim
		newWidth = width * maxDim / height
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: DefaultJPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode downscaled image: %w", err)
	}
	return buf.Bytes(), nil
}
