package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrImageNotFound indicates the image file does not exist.
	ErrImageNotFound = errors.New("image not found")

	// ErrImageDecode indicates the file exists but is not a supported image.
	ErrImageDecode = errors.New("cannot decode image")

	// ErrInvalidBasePath indicates the configured base path is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrSymbolEncode indicates a value cannot be encoded as a QR code or barcode.
	ErrSymbolEncode = errors.New("cannot encode symbol")
)
