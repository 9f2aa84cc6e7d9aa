package helper

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 100, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDownscaleKeepsAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	out := Downscale(src, 100, 100)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())

	same := Downscale(src, 1000, 1000)
	assert.Equal(t, src.Bounds(), same.Bounds())
}

func TestToWebPAndThumbnail(t *testing.T) {
	raw := samplePNG(t, 64, 32)

	data, err := ToWebP(raw, "a.png", WebPOptions{MaxW: 32, MaxH: 32, Quality: 70})
	require.NoError(t, err)
	cfg, err := webp.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 16, cfg.Height)

	thumb, err := Thumbnail(raw, "a.png", 20, 20, 70)
	require.NoError(t, err)
	cfg, err = webp.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestDecodeImageRejectsText(t *testing.T) {
	_, err := DecodeImage([]byte("hello world"), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
