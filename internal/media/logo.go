// Package media normalises and stores business images.
package media

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
)

const (
	MaxLogoBytes = 2 << 20
	LogoSize     = 256
	logoQuality  = 85
)

// NormalizeLogo decodes a PNG, JPEG or WebP image, scales it to fit a
// LogoSize square keeping its aspect ratio and re-encodes it as WebP.
func NormalizeLogo(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxLogoBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxLogoBytes {
		return nil, httperr.ErrBusiness("logo_too_large")
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_image")
	}

	dst := image.NewRGBA(fit(src.Bounds(), LogoSize))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: logoQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit never upscales.
func fit(b image.Rectangle, size int) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return image.Rect(0, 0, w, h)
	}
	if w >= h {
		return image.Rect(0, 0, size, max(1, h*size/w))
	}
	return image.Rect(0, 0, max(1, w*size/h), size)
}
