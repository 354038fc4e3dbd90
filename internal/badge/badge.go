// Package badge renders badge tokens as scannable QR images and decodes
// them back. Both directions are stateless; the decoded payload always
// round-trips exactly even though the PNG bytes themselves may differ
// between library versions.
package badge

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

// pngSize matches the roughly 300px badges the scanner page renders.
const pngSize = 256

// Encode renders the token payload as a QR PNG.
func Encode(token string) ([]byte, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	png, err := qrcode.Encode(token, qrcode.Medium, pngSize)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	return png, nil
}

// Decode extracts the payload from a QR image. Used by the capture side and
// by tests asserting the encode/decode round trip.
func Decode(imgBytes []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return "", fmt.Errorf("qr decode: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("qr decode: %w", err)
	}
	res, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("qr decode: %w", err)
	}
	return res.GetText(), nil
}
