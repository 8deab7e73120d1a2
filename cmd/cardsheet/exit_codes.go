package main

import (
	"errors"
	"os"

	cardsheet "github.com/alnah/go-cardsheet"
	"github.com/alnah/go-cardsheet/internal/config"
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage error")

// Exit codes for the cardsheet CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // PDF written
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, template or data
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitAsset   = 4 // Image missing or undecodable
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Missing assets (exit 4), checked first: they wrap fs.ErrNotExist
	if errors.Is(err, cardsheet.ErrMissingAsset) {
		return ExitAsset
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, cardsheet.ErrReadFile) ||
		errors.Is(err, cardsheet.ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, cardsheet.ErrTemplateParse) ||
		errors.Is(err, cardsheet.ErrDataParse) ||
		errors.Is(err, cardsheet.ErrInvalidPageSize) ||
		errors.Is(err, cardsheet.ErrInvalidOrientation) ||
		errors.Is(err, cardsheet.ErrInvalidMargin) ||
		errors.Is(err, cardsheet.ErrInvalidCardSize) ||
		errors.Is(err, cardsheet.ErrInvalidCardCount) ||
		errors.Is(err, cardsheet.ErrInvalidLayout) ||
		errors.Is(err, cardsheet.ErrInvalidMissingPolicy) ||
		errors.Is(err, cardsheet.ErrInvalidMarker) {
		return ExitUsage
	}

	return ExitGeneral
}
