package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeCoverDownscales(t *testing.T) {
	out, err := NewCoverService(100).NormalizeCover(encodePNG(t, 400, 200))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestNormalizeCoverKeepsSmallImages(t *testing.T) {
	out, err := NewCoverService(0).NormalizeCover(encodePNG(t, 64, 64))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 64, cfg.Height)
}

func TestNormalizeCoverRejectsGarbage(t *testing.T) {
	_, err := NewCoverService(0).NormalizeCover([]byte("definitely not an image"))
	assert.Error(t, err)

	_, err = NewCoverService(0).NormalizeCover(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestFit(t *testing.T) {
	w, h := fit(3000, 1000, 1000)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 333, h)

	w, h = fit(500, 2000, 1000)
	assert.Equal(t, 250, w)
	assert.Equal(t, 1000, h)
}
