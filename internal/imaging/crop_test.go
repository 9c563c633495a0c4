package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func decodeEncoded(t *testing.T, e *EncodedImage) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(e.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func TestCrop(t *testing.T) {
	img := solidImage(100, 80, color.RGBA{255, 255, 255, 255})
	for y := 20; y < 40; y++ {
		for x := 30; x < 60; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}

	tests := []struct {
		name   string
		r      image.Rectangle
		margin int
		scale  float64
		wantW  int
		wantH  int
	}{
		{"exact", image.Rect(30, 20, 60, 40), 0, 1, 30, 20},
		{"margin", image.Rect(30, 20, 60, 40), 5, 0, 40, 30},
		{"margin clipped", image.Rect(0, 0, 10, 10), 5, 1, 15, 15},
		{"scaled up", image.Rect(30, 20, 60, 40), 0, 2, 60, 40},
		{"scaled down", image.Rect(0, 0, 100, 80), 0, 0.5, 50, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Crop(img, tt.r, tt.margin, tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if res.Width != tt.wantW || res.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", res.Width, res.Height, tt.wantW, tt.wantH)
			}
			if res.MimeType != "image/png" {
				t.Errorf("MimeType = %s", res.MimeType)
			}
		})
	}
}

func TestCrop_Content(t *testing.T) {
	img := solidImage(50, 50, color.RGBA{255, 255, 255, 255})
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}

	res, err := Crop(img, image.Rect(10, 10, 20, 20), 2, 1)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	out := decodeEncoded(t, res)

	if r, g, b, _ := out.At(0, 0).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("margin pixel = (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
	if r, g, b, _ := out.At(2, 2).RGBA(); r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Errorf("region pixel = (%d,%d,%d), want blue", r>>8, g>>8, b>>8)
	}
}

func TestCrop_Invalid(t *testing.T) {
	img := solidImage(50, 50, color.RGBA{0, 0, 0, 255})

	tests := []struct {
		name   string
		r      image.Rectangle
		margin int
		scale  float64
	}{
		{"empty region", image.Rect(10, 10, 10, 20), 0, 1},
		{"outside", image.Rect(100, 100, 120, 120), 0, 1},
		{"negative margin", image.Rect(0, 0, 10, 10), -1, 1},
		{"negative scale", image.Rect(0, 0, 10, 10), 0, -2},
		{"vanishing scale", image.Rect(0, 0, 10, 10), 0, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.r, tt.margin, tt.scale); err == nil {
				t.Error("expected error")
			}
		})
	}
}
