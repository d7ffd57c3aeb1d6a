// Package qrimage renders a payload string as a QR code raster image.
package qrimage

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// Level is a QR error-correction level.
type Level string

const (
	LevelL Level = "L"
	LevelM Level = "M"
	LevelQ Level = "Q"
	LevelH Level = "H"
)

// DefaultSize is the rendered edge length in pixels used for card QR codes.
const DefaultSize = 320

// ParseLevel maps "L", "M", "Q" or "H" (any case) to a Level; anything else
// yields LevelM.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelL:
		return LevelL
	case LevelQ:
		return LevelQ
	case LevelH:
		return LevelH
	}
	return LevelM
}

func (l Level) ecc() qr.ErrorCorrectionLevel {
	switch l {
	case LevelL:
		return qr.L
	case LevelQ:
		return qr.Q
	case LevelH:
		return qr.H
	}
	return qr.M
}

// PNG encodes payload as a size x size PNG.
func PNG(payload string, size int, level Level) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("qrimage: empty payload")
	}
	if size <= 0 {
		size = DefaultSize
	}
	code, err := qr.Encode(payload, level.ecc(), qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qrimage: encoding: %w", err)
	}
	if size < code.Bounds().Dx() {
		size = code.Bounds().Dx()
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("qrimage: scaling to %dpx: %w", size, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qrimage: png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL encodes payload as a PNG data URI suitable for an <img> src.
func DataURL(payload string, size int, level Level) (string, error) {
	data, err := PNG(payload, size, level)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
