package cardsheet

import "errors"

// Sentinel errors for library operations.
var (
	// Input parsing errors.
	ErrTemplateParse = errors.New("invalid template")
	ErrDataParse     = errors.New("invalid data file")

	// File errors.
	ErrReadFile     = errors.New("failed to read file")
	ErrMissingAsset = errors.New("missing asset")
	ErrWriteOutput  = errors.New("failed to write output")

	// Rendering errors.
	ErrRender   = errors.New("PDF rendering failed")
	ErrInternal = errors.New("internal error")

	// Settings validation errors.
	ErrInvalidPageSize      = errors.New("invalid page size")
	ErrInvalidOrientation   = errors.New("invalid orientation")
	ErrInvalidMargin        = errors.New("invalid margin")
	ErrInvalidCardSize      = errors.New("invalid card size")
	ErrInvalidCardCount     = errors.New("invalid cards per page")
	ErrInvalidLayout        = errors.New("cards do not fit on the page")
	ErrInvalidMissingPolicy = errors.New("invalid missing asset policy")
	ErrInvalidMarker        = errors.New("invalid column marker")
)
