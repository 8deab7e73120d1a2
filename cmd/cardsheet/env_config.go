package main

import (
	"log/slog"
	"strings"

	"github.com/alnah/go-cardsheet/internal/config"
)

// envPrefix marks the variables read by cardsheet.
const envPrefix = "CARDSHEET_"

// knownEnvVars lists every recognized CARDSHEET_* variable.
var knownEnvVars = map[string]bool{
	"CARDSHEET_CONFIG":     true,
	"CARDSHEET_PAGE_SIZE":  true,
	"CARDSHEET_BASE_DIR":   true,
	"CARDSHEET_ON_MISSING": true,
	"CARDSHEET_MARKER":     true,
}

// envConfig holds values read from CARDSHEET_* variables.
type envConfig struct {
	ConfigPath string
	PageSize   string
	BaseDir    string
	OnMissing  string
	Marker     string
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		ConfigPath: getenv("CARDSHEET_CONFIG"),
		PageSize:   getenv("CARDSHEET_PAGE_SIZE"),
		BaseDir:    getenv("CARDSHEET_BASE_DIR"),
		OnMissing:  getenv("CARDSHEET_ON_MISSING"),
		Marker:     getenv("CARDSHEET_MARKER"),
	}
}

// warnUnknownEnvVars logs a warning for each unrecognized CARDSHEET_*
// variable, to catch typos like CARDSHEET_PAGESIZE.
func warnUnknownEnvVars(log *slog.Logger, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			log.Warn("unknown environment variable (typo?)", "name", name)
		}
	}
}

// applyEnvConfig overrides config values with the variables that are set.
// Flags are applied afterwards by mergeFlags, giving:
// defaults < config file < environment < flags.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.PageSize != "" {
		cfg.Page.Size = env.PageSize
	}
	if env.BaseDir != "" {
		cfg.Assets.BaseDir = env.BaseDir
	}
	if env.OnMissing != "" {
		cfg.Assets.OnMissing = env.OnMissing
	}
	if env.Marker != "" {
		cfg.Data.Marker = env.Marker
	}
}
