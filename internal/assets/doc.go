// Package assets loads the images placed on cards and generates QR code and
// barcode symbols.
//
// # Loader Architecture
//
//	ImageLoader (interface)
//	    │
//	    ├── FilesystemLoader  - decodes images below a base directory, cached by path
//	    └── Resolver          - tries several loaders in order (data dir, then template dir)
//
// Decoding goes through imaging with EXIF auto-orientation. PNG, JPEG and GIF
// come from the standard library; WebP, BMP and TIFF from golang.org/x/image.
//
// Symbols are generated in memory: QR codes with go-qrcode, Code 128 and
// EAN-13 barcodes with boombuler/barcode.
package assets
