package optimizer

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func createTestImage(width, height int, fillColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}
	return img
}

func encodePNGBase64(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeJPEGBase64(t *testing.T, encoded string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Optimizer output is not valid base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Optimizer output is not a valid JPEG: %v", err)
	}
	return img
}

func TestOptimize_ReencodesAsJPEG(t *testing.T) {
	input := encodePNGBase64(t, createTestImage(10, 10, color.RGBA{R: 200, G: 100, B: 50, A: 255}))

	output, err := Optimize(input, 2048, 85)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	img := decodeJPEGBase64(t, output)
	bounds := img.Bounds()
	if bounds.Dx() != 10 || bounds.Dy() != 10 {
		t.Errorf("Expected 10x10 output, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestOptimize_DownscalesToMaxDimension(t *testing.T) {
	tests := []struct {
		name         string
		width        int
		height       int
		maxDimension int
		wantWidth    int
		wantHeight   int
	}{
		{
			name:         "Width dominant",
			width:        500,
			height:       200,
			maxDimension: 100,
			wantWidth:    100,
			wantHeight:   40,
		},
		{
			name:         "Height dominant",
			width:        150,
			height:       300,
			maxDimension: 100,
			wantWidth:    50,
			wantHeight:   100,
		},
		{
			name:         "Square",
			width:        400,
			height:       400,
			maxDimension: 64,
			wantWidth:    64,
			wantHeight:   64,
		},
		{
			name:         "Exactly at limit - untouched",
			width:        100,
			height:       60,
			maxDimension: 100,
			wantWidth:    100,
			wantHeight:   60,
		},
		{
			name:         "Below limit - never upscaled",
			width:        50,
			height:       40,
			maxDimension: 2048,
			wantWidth:    50,
			wantHeight:   40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := encodePNGBase64(t, createTestImage(tt.width, tt.height, color.RGBA{R: 120, G: 120, B: 120, A: 255}))

			output, err := Optimize(input, tt.maxDimension, 85)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}

			img := decodeJPEGBase64(t, output)
			bounds := img.Bounds()
			if bounds.Dx() != tt.wantWidth || bounds.Dy() != tt.wantHeight {
				t.Errorf("Expected %dx%d output, got %dx%d",
					tt.wantWidth, tt.wantHeight, bounds.Dx(), bounds.Dy())
			}
		})
	}
}

func TestOptimize_FlattensTransparencyToWhite(t *testing.T) {
	// Fully transparent source; JPEG output should be white, not black
	transparent := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	input := encodePNGBase64(t, transparent)

	output, err := Optimize(input, 2048, 95)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	img := decodeJPEGBase64(t, output)
	r, g, b, _ := img.At(10, 10).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("Expected transparent pixels flattened to white, got RGB(%d, %d, %d)",
			r>>8, g>>8, b>>8)
	}
}

func TestOptimize_ToleratesWhitespaceInBase64(t *testing.T) {
	input := encodePNGBase64(t, createTestImage(8, 8, color.RGBA{R: 10, G: 20, B: 30, A: 255}))

	// Insert line breaks the way MIME-wrapped payloads arrive
	var wrapped strings.Builder
	for i, ch := range input {
		if i > 0 && i%40 == 0 {
			wrapped.WriteString("\n")
		}
		wrapped.WriteRune(ch)
	}

	if _, err := Optimize(wrapped.String(), 2048, 85); err != nil {
		t.Errorf("Expected wrapped base64 to be accepted, got: %v", err)
	}
}

func TestOptimize_InvalidBase64(t *testing.T) {
	_, err := Optimize("!!! definitely not base64 !!!", 2048, 85)
	if err == nil {
		t.Fatal("Expected error for invalid base64 input")
	}
	if !strings.Contains(err.Error(), "invalid base64 image data") {
		t.Errorf("Expected base64 error, got: %v", err)
	}
}

func TestOptimize_UndecodableImage(t *testing.T) {
	input := base64.StdEncoding.EncodeToString([]byte("this is plain text, not an image"))

	_, err := Optimize(input, 2048, 85)
	if err == nil {
		t.Fatal("Expected error for undecodable image data")
	}
	if !strings.Contains(err.Error(), "failed to decode image") {
		t.Errorf("Expected decode error, got: %v", err)
	}
}

func TestOptimize_PreservesContentThroughReencode(t *testing.T) {
	// A solid-color image should survive scale and JPEG compression with
	// roughly the same color
	input := encodePNGBase64(t, createTestImage(300, 300, color.RGBA{R: 180, G: 60, B: 60, A: 255}))

	output, err := Optimize(input, 100, 85)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	img := decodeJPEGBase64(t, output)
	r, g, b, _ := img.At(50, 50).RGBA()
	if diff := int(r>>8) - 180; diff > 15 || diff < -15 {
		t.Errorf("Expected red channel near 180, got %d", r>>8)
	}
	if diff := int(g>>8) - 60; diff > 15 || diff < -15 {
		t.Errorf("Expected green channel near 60, got %d", g>>8)
	}
	if diff := int(b>>8) - 60; diff > 15 || diff < -15 {
		t.Errorf("Expected blue channel near 60, got %d", b>>8)
	}
}
