package service

import (
	"context"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QR code sizes in pixels.
const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 1024
)

// QROptions controls the rendered code.
type QROptions struct {
	Size    int
	FgColor string // Hex, e.g. "#000000"
	BgColor string // Hex, e.g. "#FFFFFF"
}

// QRCode renders a PNG QR code of the public URL of userID's profile.
func (s *ProfileService) QRCode(ctx context.Context, userID string, opts QROptions) ([]byte, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RenderQR(s.PublicURL(owner.Username), opts)
}

// RenderQR encodes content as a PNG QR code.
func RenderQR(content string, opts QROptions) ([]byte, error) {
	size := opts.Size
	if size == 0 {
		size = DefaultQRSize
	}
	if size < MinQRSize || size > MaxQRSize {
		return nil, invalid("size", fmt.Sprintf("must be between %d and %d", MinQRSize, MaxQRSize))
	}

	fg, err := parseHexColor(opts.FgColor, color.Black)
	if err != nil {
		return nil, invalid("fg", err.Error())
	}
	bg, err := parseHexColor(opts.BgColor, color.White)
	if err != nil {
		return nil, invalid("bg", err.Error())
	}

	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	qr.ForegroundColor = fg
	qr.BackgroundColor = bg

	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}

// parseHexColor parses "#RRGGBB" (the leading # is optional). Empty yields def.
func parseHexColor(s string, def color.Color) (color.Color, error) {
	if s == "" {
		return def, nil
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
