// Package theme derives full display palettes from user-chosen seed colors
// and validates or repairs their accessibility contrast. Only seed colors are
// ever persisted; full palettes are recomputed on demand.
package theme

import (
	"github.com/inkhorn/inkhorn/internal/colorspace"
)

// CustomColors holds the user-chosen seed colors in any supported color
// syntax. Empty string means absent. CodeBackground is independently
// optional and falls back to a derived value.
type CustomColors struct {
	Background     string `json:"background,omitempty"`
	Text           string `json:"text,omitempty"`
	Accent         string `json:"accent,omitempty"`
	CodeBackground string `json:"codeBackground,omitempty"`
}

// Complete reports whether the three required seed colors are present.
func (c CustomColors) Complete() bool {
	return c.Background != "" && c.Text != "" && c.Accent != ""
}

// Theme is the persisted theme shape: a preset identifier and, for the
// custom preset, the seed colors.
type Theme struct {
	Preset string        `json:"preset,omitempty"`
	Custom *CustomColors `json:"custom,omitempty"`
}

// Validation is the structured result of checking seed colors, detailed
// enough for a UI to explain which side failed and why.
type Validation struct {
	// TextContrast is the background/text contrast, nil when either color is
	// absent or unparsable.
	TextContrast *colorspace.ContrastResult `json:"textContrast"`
	// AccentContrast is the background/accent contrast, nil when either
	// color is absent or unparsable.
	AccentContrast *colorspace.ContrastResult `json:"accentContrast"`
	// IsValid is true when text meets 4.5:1 and accent meets 3:1.
	IsValid bool `json:"isValid"`
}

// ValidateCustomColors checks the seed colors against the WCAG thresholds:
// 4.5:1 for text, 3:1 for the accent. Missing or unparsable colors make the
// result invalid.
func ValidateCustomColors(c CustomColors) Validation {
	v := Validation{}

	if c.Background != "" && c.Text != "" {
		v.TextContrast = colorspace.CheckContrast(c.Background, c.Text)
	}
	if c.Background != "" && c.Accent != "" {
		v.AccentContrast = colorspace.CheckContrast(c.Background, c.Accent)
	}

	v.IsValid = v.TextContrast != nil && v.TextContrast.Passes &&
		v.AccentContrast != nil && v.AccentContrast.Ratio >= colorspace.MinUIContrast
	return v
}

// CorrectContrast repairs the text and accent seed colors against the
// background, independently: text to 4.5:1, accent to 3:1. CodeBackground is
// never touched. Without a background there is nothing to correct against
// and the input is returned unchanged.
func CorrectContrast(c CustomColors) CustomColors {
	if c.Background == "" {
		return c
	}

	out := c
	if c.Text != "" {
		out.Text = colorspace.AdjustForContrast(c.Text, c.Background, colorspace.MinTextContrast)
	}
	if c.Accent != "" {
		out.Accent = colorspace.AdjustForContrast(c.Accent, c.Background, colorspace.MinUIContrast)
	}
	return out
}
