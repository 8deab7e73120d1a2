// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForMissingAsset explains where image paths are resolved from.
func ForMissingAsset(baseDir string) string {
	if baseDir == "" {
		baseDir = "the data file directory"
	}
	return formatHints([]string{
		"image paths are resolved against " + baseDir,
		"use --base-dir to change it or --on-missing skip to drop the card",
	})
}

// ForTemplateParse points at the fields every shape needs.
func ForTemplateParse() string {
	return format("every shape needs name, kind, x, y, width and height")
}

// ForInvalidLayout suggests ways to make cards fit on the page.
func ForInvalidLayout() string {
	return format("reduce --margin or --card-size, or use a larger --page-size")
}

// ForUnboundColumns lists shape names when no data column matched any shape.
func ForUnboundColumns(marker string, shapes []string) string {
	if len(shapes) == 0 {
		return ""
	}
	return format("prefix column headers with " + marker + " to bind them to shapes: " + strings.Join(shapes, ", "))
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/cardsheet/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/cardsheet") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output write errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
