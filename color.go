package cardsheet

import (
	"fmt"
	"strconv"
	"strings"
)

// rgb is an 8-bit color.
type rgb struct {
	R, G, B int
}

// namedColors covers the names commonly used in card templates.
var namedColors = map[string]rgb{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"yellow": {255, 255, 0},
	"orange": {255, 165, 0},
	"purple": {128, 0, 128},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"brown":  {165, 42, 42},
}

// parseColor parses "#RGB", "#RRGGBB" or a color name.
// Empty returns nil: the caller keeps its default.
func parseColor(s string) (*rgb, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" || s == "transparent" {
		return nil, nil
	}
	if c, ok := namedColors[s]; ok {
		return &c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return nil, fmt.Errorf("unknown color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q (want #RGB or #RRGGBB)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q (want #RGB or #RRGGBB)", s)
	}
	return &rgb{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

// mustColor returns the parsed color or def. Colors are validated when the
// template is parsed, so errors cannot occur here.
func mustColor(s string, def *rgb) *rgb {
	c, err := parseColor(s)
	if err != nil || c == nil {
		return def
	}
	return c
}
