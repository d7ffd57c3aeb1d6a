// Package photo fetches member photos and normalises them into print-ready
// JPEG data URIs sized for the 35x48 mm card photo box.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Target pixel size: 35x48 mm at 300 dpi.
const (
	TargetWidth  = 413
	TargetHeight = 567
	JPEGQuality  = 90
)

// DefaultMaxPixels bounds the decoded size of a photo, about a 40 MP camera
// image.
const DefaultMaxPixels = 40_000_000

// ErrImageTooLarge is returned for images whose header declares more pixels
// than allowed.
var ErrImageTooLarge = errors.New("photo: image dimensions exceed limit")

// Normalize is NormalizeLimit with DefaultMaxPixels.
func Normalize(data []byte) ([]byte, error) {
	return NormalizeLimit(data, DefaultMaxPixels)
}

// NormalizeLimit decodes JPEG, PNG, GIF or WebP data, crops it to the photo
// box aspect ratio around its centre, downscales it to fit the target size
// and re-encodes it as JPEG on a white background. Images declaring more
// than maxPixels pixels are rejected before decoding.
func NormalizeLimit(data []byte, maxPixels int64) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("photo: decode: %w", err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); maxPixels > 0 && px > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("photo: decode: %w", err)
	}

	img = cropToAspect(img, TargetWidth, TargetHeight)
	img = resizeToFit(img, TargetWidth, TargetHeight)

	// JPEG has no alpha; flatten transparent PNG/WebP pixels onto white.
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("photo: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI renders JPEG bytes as a data: URI.
func DataURI(jpegData []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
}

// DecodeDataURI extracts the payload of a base64 data:image/ URI.
func DecodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	header = strings.ToLower(header)
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, fmt.Errorf("photo: not an image data URI")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("photo: data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("photo: data URI payload: %w", err)
	}
	return data, nil
}

// cropToAspect trims the longer dimension so src matches w:h.
func cropToAspect(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	bw, bh := b.Dx(), b.Dy()
	if bw == 0 || bh == 0 {
		return src
	}
	want := float64(w) / float64(h)
	have := float64(bw) / float64(bh)

	crop := b
	switch {
	case have > want:
		cw := int(math.Round(float64(bh) * want))
		x0 := b.Min.X + (bw-cw)/2
		crop = image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	case have < want:
		ch := int(math.Round(float64(bw) / want))
		y0 := b.Min.Y + (bh-ch)/2
		crop = image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
	default:
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(dst, dst.Bounds(), src, crop.Min, draw.Src)
	return dst
}

// resizeToFit scales src to fit within maxW x maxH keeping its aspect ratio.
// Smaller images are returned unchanged.
func resizeToFit(src image.Image, maxW, maxH int) image.Image {
	bw := src.Bounds().Dx()
	bh := src.Bounds().Dy()

	scale := math.Min(float64(maxW)/float64(bw), float64(maxH)/float64(bh))
	if scale >= 1.0 {
		return src
	}
	w := int(math.Max(1, math.Round(float64(bw)*scale)))
	h := int(math.Max(1, math.Round(float64(bh)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// CatmullRom keeps faces sharp when downscaling.
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
