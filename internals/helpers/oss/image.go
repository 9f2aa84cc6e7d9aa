package helper

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"smartstudy_backend/internals/configs"
)

/* =======================================================================
   Konfigurasi WebP (ENV-Driven)
======================================================================= */

type WebPOptions struct {
	MaxW    int
	MaxH    int
	Quality float32
}

func WebPOptionsFromEnv() WebPOptions {
	return WebPOptions{
		MaxW:    configs.GetEnvInt("IMAGE_WEBP_MAX_W", 1600),
		MaxH:    configs.GetEnvInt("IMAGE_WEBP_MAX_H", 1600),
		Quality: float32(configs.GetEnvInt("IMAGE_WEBP_QUALITY", 80)),
	}
}

var ErrUnsupportedImage = fmt.Errorf("unsupported image format (use jpg/png/webp)")

// DecodeImage: sniff MIME dulu, fallback ke ekstensi.
func DecodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	kind := http.DetectContentType(head)
	if !strings.HasPrefix(kind, "image/") {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".jpg", ".jpeg":
			kind = "image/jpeg"
		case ".png":
			kind = "image/png"
		case ".webp":
			kind = "image/webp"
		}
	}

	r := bytes.NewReader(all)
	switch {
	case strings.Contains(kind, "jpeg"):
		return jpeg.Decode(r)
	case strings.Contains(kind, "png"):
		return png.Decode(r)
	case strings.Contains(kind, "webp"):
		return webp.Decode(r)
	}
	return nil, ErrUnsupportedImage
}

// Downscale menjaga aspect ratio, CatmullRom.
func Downscale(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (maxW <= 0 || w <= maxW) && (maxH <= 0 || h <= maxH) {
		return src
	}
	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func EncodeWebP(img image.Image, quality float32) ([]byte, error) {
	if quality <= 0 {
		quality = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToWebP: decode → downscale → encode webp.
func ToWebP(all []byte, filename string, opt WebPOptions) ([]byte, error) {
	img, err := DecodeImage(all, filename)
	if err != nil {
		return nil, err
	}
	return EncodeWebP(Downscale(img, opt.MaxW, opt.MaxH), opt.Quality)
}

// Thumbnail: crop tengah + resize tepat w×h (buat banner batch).
func Thumbnail(all []byte, filename string, w, h int, quality float32) ([]byte, error) {
	img, err := DecodeImage(all, filename)
	if err != nil {
		return nil, err
	}
	return EncodeWebP(imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos), quality)
}
