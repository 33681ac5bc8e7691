package theme

import (
	"github.com/inkhorn/inkhorn/internal/colorspace"
)

// FullThemeColors is the derived 11-variable post palette. Every field is a
// #rrggbb hex string.
type FullThemeColors struct {
	Background       string `json:"background"`
	Text             string `json:"text"`
	TextSecondary    string `json:"textSecondary"`
	Accent           string `json:"accent"`
	Border           string `json:"border"`
	CodeBackground   string `json:"codeBackground"`
	CodeText         string `json:"codeText"`
	BlockquoteBorder string `json:"blockquoteBorder"`
	BlockquoteText   string `json:"blockquoteText"`
	Link             string `json:"link"`
	LinkHover        string `json:"linkHover"`
}

// FullSiteColors extends the post palette with site-chrome variables.
// Grid and vignette carry an alpha suffix (#rrggbbaa).
type FullSiteColors struct {
	FullThemeColors
	BgSecondary   string `json:"bgSecondary"`
	AccentHover   string `json:"accentHover"`
	SidebarBg     string `json:"sidebarBg"`
	GridColor     string `json:"gridColor"`
	VignetteColor string `json:"vignetteColor"`
}

// Alpha suffixes appended to hex colors for the translucent site variables.
const (
	gridAlpha          = "40" // ~25%
	vignetteDarkAlpha  = "99" // ~60%, dark themes deepen shadow
	vignetteLightAlpha = "0d" // ~5%, light themes tint with the accent
)

// textSecondaryBlend is how far secondary text sits from the text color
// toward the background, in OKLCH space. Keeps it strictly between the two
// in perceptual lightness.
const textSecondaryBlend = 0.4

// DeriveThemeColors computes the full post palette from complete seed
// colors. Returns nil when background, text, or accent is missing or fails
// to parse. Derivation is a pure function of the seeds.
func DeriveThemeColors(c CustomColors) *FullThemeColors {
	if !c.Complete() {
		return nil
	}

	bg, ok := colorspace.Parse(c.Background)
	if !ok {
		return nil
	}
	text, ok := colorspace.Parse(c.Text)
	if !ok {
		return nil
	}
	accent, ok := colorspace.Parse(c.Accent)
	if !ok {
		return nil
	}

	// Classified once per derivation; every directional shift below keys off
	// this single bit.
	isDark := colorspace.IsDark(bg)

	textSecondary := colorspace.Lerp(text, bg, textSecondaryBlend)

	borderShift := -0.1
	if isDark {
		borderShift = 0.1
	}
	border := colorspace.ShiftLightness(bg, borderShift)

	// Light surfaces need a larger downward nudge to stay visible; dark
	// surfaces only a small lift.
	codeBg := c.CodeBackground
	if codeBg == "" {
		codeShift := -0.03
		if isDark {
			codeShift = 0.05
		}
		codeBg = colorspace.ShiftLightness(bg, codeShift).Hex()
	} else {
		parsed, ok := colorspace.Parse(codeBg)
		if !ok {
			return nil
		}
		codeBg = parsed.Hex()
	}

	linkHover := colorspace.ShiftLightness(accent, borderShift)

	return &FullThemeColors{
		Background:       bg.Hex(),
		Text:             text.Hex(),
		TextSecondary:    textSecondary.Hex(),
		Accent:           accent.Hex(),
		Border:           border.Hex(),
		CodeBackground:   codeBg,
		CodeText:         text.Hex(),
		BlockquoteBorder: border.Hex(),
		BlockquoteText:   textSecondary.Hex(),
		Link:             accent.Hex(),
		LinkHover:        linkHover.Hex(),
	}
}

// DeriveSiteColors computes the extended site palette. Same nil semantics as
// DeriveThemeColors.
func DeriveSiteColors(c CustomColors) *FullSiteColors {
	base := DeriveThemeColors(c)
	if base == nil {
		return nil
	}

	bg, _ := colorspace.Parse(c.Background)
	accent, _ := colorspace.Parse(c.Accent)
	isDark := colorspace.IsDark(bg)

	bgShift := -0.02
	if isDark {
		bgShift = 0.03
	}
	bgSecondary := colorspace.ShiftLightness(bg, bgShift).Hex()

	accentShift := -0.1
	if isDark {
		accentShift = 0.1
	}
	accentHover := colorspace.ShiftLightness(accent, accentShift).Hex()

	// Dark UIs vignette by deepening shadow, light UIs by tinting with the
	// accent.
	vignette := accent.Hex() + vignetteLightAlpha
	if isDark {
		vignette = bg.Hex() + vignetteDarkAlpha
	}

	return &FullSiteColors{
		FullThemeColors: *base,
		BgSecondary:     bgSecondary,
		AccentHover:     accentHover,
		SidebarBg:       bgSecondary,
		GridColor:       base.Border + gridAlpha,
		VignetteColor:   vignette,
	}
}

// CSSVariables renders the site palette as CSS custom property assignments,
// the shape the presentation layer consumes.
func (f *FullSiteColors) CSSVariables() map[string]string {
	return map[string]string{
		"--background":        f.Background,
		"--text":              f.Text,
		"--text-secondary":    f.TextSecondary,
		"--accent":            f.Accent,
		"--border":            f.Border,
		"--code-background":   f.CodeBackground,
		"--code-text":         f.CodeText,
		"--blockquote-border": f.BlockquoteBorder,
		"--blockquote-text":   f.BlockquoteText,
		"--link":              f.Link,
		"--link-hover":        f.LinkHover,
		"--bg-secondary":      f.BgSecondary,
		"--accent-hover":      f.AccentHover,
		"--sidebar-bg":        f.SidebarBg,
		"--grid-color":        f.GridColor,
		"--vignette-color":    f.VignetteColor,
	}
}
