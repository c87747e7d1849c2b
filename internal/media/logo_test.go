package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/chai2010/webp"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeLogo_ScalesDownToWebP(t *testing.T) {
	out, err := NormalizeLogo(bytes.NewReader(pngOf(t, 600, 300)))
	if err != nil {
		t.Fatalf("NormalizeLogo: %v", err)
	}

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not webp: %v", err)
	}
	if cfg.Width != LogoSize || cfg.Height != LogoSize/2 {
		t.Fatalf("expected %dx%d, got %dx%d", LogoSize, LogoSize/2, cfg.Width, cfg.Height)
	}
}

func TestNormalizeLogo_KeepsSmallImages(t *testing.T) {
	out, err := NormalizeLogo(bytes.NewReader(pngOf(t, 40, 80)))
	if err != nil {
		t.Fatalf("NormalizeLogo: %v", err)
	}
	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 80 {
		t.Fatalf("small image must not be upscaled, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestNormalizeLogo_Rejects(t *testing.T) {
	if _, err := NormalizeLogo(strings.NewReader("not an image")); !httperr.IsBusiness(err, "invalid_image") {
		t.Fatalf("expected invalid_image, got %v", err)
	}

	huge := bytes.Repeat([]byte{0}, MaxLogoBytes+10)
	if _, err := NormalizeLogo(bytes.NewReader(huge)); !httperr.IsBusiness(err, "logo_too_large") {
		t.Fatalf("expected logo_too_large, got %v", err)
	}
}

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, ww, wh int
	}{
		{1000, 1000, 256, 256},
		{512, 128, 256, 64},
		{100, 1000, 25, 256},
		{2000, 1, 256, 1},
	}
	for _, tc := range cases {
		got := fit(image.Rect(0, 0, tc.w, tc.h), 256)
		if got.Dx() != tc.ww || got.Dy() != tc.wh {
			t.Fatalf("fit(%dx%d) = %dx%d, want %dx%d", tc.w, tc.h, got.Dx(), got.Dy(), tc.ww, tc.wh)
		}
	}
}
