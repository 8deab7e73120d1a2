// Package config loads cardsheet settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-cardsheet/internal/fileutil"
	"github.com/alnah/go-cardsheet/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppName names the directory searched under the user config dir.
const AppName = "cardsheet"

// Field length limits.
const (
	MaxPathLength        = 4096
	MaxPageSizeLength    = 10  // "letter", "a4", "legal"
	MaxOrientationLength = 10  // "portrait", "landscape"
	MaxMarkerLength      = 8   // "@", "$", "card:"
	MaxSheetLength       = 31  // Excel sheet name limit
	MaxTextLength        = 500 // footer text
	MaxDateFormatLength  = 50
	MaxCreatorLength     = 100
)

// Config holds all settings that can be set outside the command line.
type Config struct {
	Page   PageConfig   `yaml:"page"`
	Cards  CardsConfig  `yaml:"cards"`
	Data   DataConfig   `yaml:"data"`
	Assets AssetsConfig `yaml:"assets"`
	Footer FooterConfig `yaml:"footer"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// PageConfig defines the output sheet.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" (default: "letter")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      *float64 `yaml:"margin"`     // inches (default: 0.25); 0 is allowed
}

// CardsConfig defines the card grid.
type CardsConfig struct {
	PerPage  int     `yaml:"perPage"` // 8 or 9; 0 = one scaled component per page
	Width    float64 `yaml:"width"`   // inches (default: 2.5)
	Height   float64 `yaml:"height"`  // inches (default: 3.5)
	CutLines bool    `yaml:"cutLines"`
}

// DataConfig defines how data files are read.
type DataConfig struct {
	Sheet  string `yaml:"sheet"`  // XLSX sheet (default: first)
	Marker string `yaml:"marker"` // column prefix (default: "@")
}

// AssetsConfig defines image resolution.
type AssetsConfig struct {
	BaseDir   string `yaml:"baseDir"`   // empty = data file directory
	OnMissing string `yaml:"onMissing"` // "abort" (default) or "skip"
}

// FooterConfig defines the sheet footer.
type FooterConfig struct {
	Text       string `yaml:"text"`       // supports {page}, {pages}, {date}, {template}
	DateFormat string `yaml:"dateFormat"` // token format or preset for {date}
}

// OutputConfig defines document metadata.
type OutputConfig struct {
	Creator string `yaml:"creator"`
}

// LogConfig defines diagnostics verbosity.
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info" (default), "warn", "error"
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"data.sheet", c.Data.Sheet, MaxSheetLength},
		{"data.marker", c.Data.Marker, MaxMarkerLength},
		{"assets.baseDir", c.Assets.BaseDir, MaxPathLength},
		{"footer.text", c.Footer.Text, MaxTextLength},
		{"footer.dateFormat", c.Footer.DateFormat, MaxDateFormatLength},
		{"output.creator", c.Output.Creator, MaxCreatorLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	switch c.Cards.PerPage {
	case 0, 8, 9:
	default:
		return fmt.Errorf("%w: cards.perPage must be 8 or 9, got %d", ErrInvalidValue, c.Cards.PerPage)
	}
	if c.Cards.Width < 0 || c.Cards.Height < 0 {
		return fmt.Errorf("%w: cards.width and cards.height must be positive", ErrInvalidValue)
	}
	if c.Page.Margin != nil && *c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin must not be negative, got %.2f", ErrInvalidValue, *c.Page.Margin)
	}
	if err := oneOf("assets.onMissing", c.Assets.OnMissing, "abort", "skip"); err != nil {
		return err
	}
	if err := oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	if c.Data.Marker != "" && strings.TrimSpace(c.Data.Marker) != c.Data.Marker {
		return fmt.Errorf("%w: data.marker must not contain spaces", ErrInvalidValue)
	}
	return nil
}

// oneOf accepts empty (use the default) or one of allowed, case-insensitively.
func oneOf(field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: %q (must be %s)", ErrInvalidValue, field, value, strings.Join(allowed, " or "))
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns an empty configuration: every field falls back to
// the library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or names an existing file, it's
// treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) && !fileutil.FileExists(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.ReadFileStrict(configPath, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &cfg, nil
}

// SearchPaths lists the candidate files for a config name, in lookup order:
// current directory, then the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
