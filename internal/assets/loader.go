package assets

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	// Extra decoders registered with image.Decode.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageLoader defines the contract for loading card images.
// Implementations may load from the filesystem, an archive, memory, etc.
type ImageLoader interface {
	// LoadImage loads and decodes the image at path.
	// Returns ErrImageNotFound if the image doesn't exist.
	// Returns ErrImageDecode if the content is not a supported image.
	LoadImage(path string) (*Image, error)
}

// Image is a decoded image with a stable identity used to embed it only once
// per document.
type Image struct {
	Key    string
	Pixels image.Image
}

// Size returns the pixel dimensions.
func (i *Image) Size() (width, height int) {
	b := i.Pixels.Bounds()
	return b.Dx(), b.Dy()
}

// Aspect returns width / height.
func (i *Image) Aspect() float64 {
	w, h := i.Size()
	if h == 0 {
		return 1
	}
	return float64(w) / float64(h)
}

// Cover crops the image around its center to the given aspect ratio
// (width / height) without resampling.
func (i *Image) Cover(aspect float64) *Image {
	w, h := i.Size()
	if aspect <= 0 || w == 0 || h == 0 {
		return i
	}
	cw, ch := w, h
	if i.Aspect() > aspect {
		cw = max(1, int(float64(h)*aspect+0.5))
	} else {
		ch = max(1, int(float64(w)/aspect+0.5))
	}
	if cw == w && ch == h {
		return i
	}
	return &Image{
		Key:    fmt.Sprintf("%s#cover-%dx%d", i.Key, cw, ch),
		Pixels: imaging.CropAnchor(i.Pixels, cw, ch, imaging.Center),
	}
}

// EncodePNG encodes the pixels losslessly for embedding in a PDF. Pixels are
// converted to 8-bit NRGBA first: PDF writers reject 16-bit PNGs, which is
// what Gray16 symbols and 16-bit sources would otherwise produce.
func (i *Image) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Clone(i.Pixels), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", i.Key, err)
	}
	return buf.Bytes(), nil
}

// Decode reads any registered image format and applies EXIF orientation.
func Decode(r io.Reader, key string) (*Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, key, err)
	}
	return &Image{Key: key, Pixels: img}, nil
}
