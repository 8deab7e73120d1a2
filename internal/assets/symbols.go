package assets

import (
	"fmt"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	qrcode "github.com/skip2/go-qrcode"
)

// Barcode symbologies.
const (
	Code128 = "code128"
	EAN13   = "ean13"
)

// QRCode encodes content as a square QR code of size x size pixels
// (medium error correction, no quiet zone).
func QRCode(content string, size int) (*Image, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty QR code content", ErrSymbolEncode)
	}
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("%w: qrcode: %v", ErrSymbolEncode, err)
	}
	q.DisableBorder = true
	return &Image{
		Key:    fmt.Sprintf("qrcode:%d:%s", size, content),
		Pixels: q.Image(size),
	}, nil
}

// Barcode encodes content with the given symbology, scaled to at least
// width x height pixels. EAN-13 accepts 12 digits (check digit computed) or 13.
func Barcode(content, symbology string, width, height int) (*Image, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty barcode content", ErrSymbolEncode)
	}

	var (
		bc  barcode.Barcode
		err error
	)
	switch symbology {
	case "", Code128:
		symbology = Code128
		bc, err = code128.Encode(content)
	case EAN13:
		if n := len(content); n != 12 && n != 13 {
			return nil, fmt.Errorf("%w: ean13 needs 12 or 13 digits, got %q", ErrSymbolEncode, content)
		}
		bc, err = ean.Encode(content)
	default:
		return nil, fmt.Errorf("%w: unknown symbology %q", ErrSymbolEncode, symbology)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSymbolEncode, symbology, err)
	}

	b := bc.Bounds()
	scaled, err := barcode.Scale(bc, max(width, b.Dx()), max(height, 1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSymbolEncode, symbology, err)
	}
	return &Image{
		Key:    fmt.Sprintf("%s:%dx%d:%s", symbology, width, height, content),
		Pixels: scaled,
	}, nil
}
