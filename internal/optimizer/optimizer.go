// Package optimizer normalizes images for provider submission: dimensions
// bounded, transparency flattened, re-encoded as JPEG.
package optimizer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"
	"unicode"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Optimize decodes a base64 image in any registered format, scales it so the
// longer side does not exceed maxDimension (aspect ratio preserved, never
// upscaled), flattens transparency onto a white background, and re-encodes
// as base64 JPEG at the given quality. Pure function: no network or
// filesystem access.
func Optimize(base64Image string, maxDimension, quality int) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stripWhitespace(base64Image))
	if err != nil {
		return "", fmt.Errorf("invalid base64 image data: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	img = scaleToFit(img, maxDimension)
	img = flatten(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// stripWhitespace drops line breaks and padding whitespace that some clients
// include in base64 payloads
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func scaleToFit(img image.Image, maxDimension int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxDimension {
		return img
	}

	ratio := float64(maxDimension) / float64(longest)
	newWidth := int(float64(width) * ratio)
	newHeight := int(float64(height) * ratio)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	// NRGBA keeps alpha intact through scaling; flattening happens after
	scaled := image.NewNRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)
	return scaled
}

// flatten composites transparent images onto an opaque white background.
// JPEG has no alpha channel, so encoding a transparent image directly would
// produce garbage in the transparent regions.
func flatten(img image.Image) image.Image {
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return img
	}
	bounds := img.Bounds()
	flattened := image.NewRGBA(bounds)
	draw.Draw(flattened, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flattened, bounds, img, bounds.Min, draw.Over)
	return flattened
}
