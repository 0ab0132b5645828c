package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxSize bounds the longer side of a written cover
	DefaultMaxSize = 1000
	jpegQuality    = 90
)

// ErrEmptyImage is returned for zero-length input
var ErrEmptyImage = errors.New("empty image data")

// CoverService turns embedded or downloaded artwork into a bounded JPEG
type CoverService struct {
	MaxSize int
}

// NewCoverService creates a cover service. maxSize <= 0 uses DefaultMaxSize.
func NewCoverService(maxSize int) *CoverService {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &CoverService{MaxSize: maxSize}
}

// NormalizeCover decodes JPEG, PNG, GIF or WebP data, scales it down so neither side
// exceeds MaxSize and re-encodes it as JPEG. Transparent areas become white.
func (s *CoverService) NormalizeCover(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), s.MaxSize)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit keeps the aspect ratio while bounding the longer side
func fit(width, height, max int) (int, int) {
	if max <= 0 || (width <= max && height <= max) {
		return width, height
	}
	if width >= height {
		h := height * max / width
		if h < 1 {
			h = 1
		}
		return max, h
	}
	w := width * max / height
	if w < 1 {
		w = 1
	}
	return w, max
}
