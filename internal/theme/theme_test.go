package theme

import (
	"testing"

	"github.com/inkhorn/inkhorn/internal/colorspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCustomColors(t *testing.T) {
	t.Run("valid dark theme", func(t *testing.T) {
		v := ValidateCustomColors(CustomColors{
			Background: "#1a1a1a",
			Text:       "#e6e6e6",
			Accent:     "#88c0d0",
		})
		require.NotNil(t, v.TextContrast)
		require.NotNil(t, v.AccentContrast)
		assert.True(t, v.TextContrast.Passes)
		assert.GreaterOrEqual(t, v.AccentContrast.Ratio, 3.0)
		assert.True(t, v.IsValid)
	})

	t.Run("text too faint", func(t *testing.T) {
		v := ValidateCustomColors(CustomColors{
			Background: "#ffffff",
			Text:       "#cccccc",
			Accent:     "#0066cc",
		})
		require.NotNil(t, v.TextContrast)
		assert.False(t, v.TextContrast.Passes)
		assert.False(t, v.IsValid)
	})

	t.Run("missing background", func(t *testing.T) {
		v := ValidateCustomColors(CustomColors{Text: "#000000", Accent: "#ff0000"})
		assert.Nil(t, v.TextContrast)
		assert.Nil(t, v.AccentContrast)
		assert.False(t, v.IsValid)
	})

	t.Run("missing accent", func(t *testing.T) {
		v := ValidateCustomColors(CustomColors{Background: "#ffffff", Text: "#000000"})
		require.NotNil(t, v.TextContrast)
		assert.Nil(t, v.AccentContrast)
		assert.False(t, v.IsValid)
	})

	t.Run("unparsable colors", func(t *testing.T) {
		v := ValidateCustomColors(CustomColors{
			Background: "#ffffff",
			Text:       "not-a-color",
			Accent:     "#0066cc",
		})
		assert.Nil(t, v.TextContrast)
		assert.False(t, v.IsValid)
	})
}

func TestCorrectContrast(t *testing.T) {
	t.Run("repairs text and accent independently", func(t *testing.T) {
		out := CorrectContrast(CustomColors{
			Background: "#ffffff",
			Text:       "#cccccc",
			Accent:     "#ffff00",
		})

		textRatio, ok := colorspace.GetContrastRatio("#ffffff", out.Text)
		require.True(t, ok)
		assert.GreaterOrEqual(t, textRatio, 4.5)

		accentRatio, ok := colorspace.GetContrastRatio("#ffffff", out.Accent)
		require.True(t, ok)
		assert.GreaterOrEqual(t, accentRatio, 3.0)
	})

	t.Run("no-op without background", func(t *testing.T) {
		in := CustomColors{Text: "#cccccc", Accent: "#ffff00"}
		assert.Equal(t, in, CorrectContrast(in))
	})

	t.Run("codeBackground untouched", func(t *testing.T) {
		out := CorrectContrast(CustomColors{
			Background:     "#ffffff",
			Text:           "#cccccc",
			Accent:         "#ffff00",
			CodeBackground: "#fafafa",
		})
		assert.Equal(t, "#fafafa", out.CodeBackground)
	})

	t.Run("already valid colors unchanged", func(t *testing.T) {
		in := CustomColors{Background: "#ffffff", Text: "#1a1a1a", Accent: "#0066cc"}
		assert.Equal(t, in, CorrectContrast(in))
	})
}

func TestDeriveThemeColors(t *testing.T) {
	t.Run("nil on incomplete seeds", func(t *testing.T) {
		assert.Nil(t, DeriveThemeColors(CustomColors{}))
		assert.Nil(t, DeriveThemeColors(CustomColors{Background: "#ffffff"}))
		assert.Nil(t, DeriveThemeColors(CustomColors{Background: "#ffffff", Text: "#000000"}))
	})

	t.Run("nil on unparsable seed", func(t *testing.T) {
		assert.Nil(t, DeriveThemeColors(CustomColors{
			Background: "#ffffff", Text: "#000000", Accent: "bogus",
		}))
	})

	t.Run("all fields are valid hex", func(t *testing.T) {
		f := DeriveThemeColors(CustomColors{
			Background: "#ffffff", Text: "#1a1a1a", Accent: "#0066cc",
		})
		require.NotNil(t, f)

		for name, val := range map[string]string{
			"background":       f.Background,
			"text":             f.Text,
			"textSecondary":    f.TextSecondary,
			"accent":           f.Accent,
			"border":           f.Border,
			"codeBackground":   f.CodeBackground,
			"codeText":         f.CodeText,
			"blockquoteBorder": f.BlockquoteBorder,
			"blockquoteText":   f.BlockquoteText,
			"link":             f.Link,
			"linkHover":        f.LinkHover,
		} {
			_, ok := colorspace.ParseHex(val)
			assert.True(t, ok, "%s = %q should be hex", name, val)
		}
	})

	t.Run("aliased fields", func(t *testing.T) {
		f := DeriveThemeColors(CustomColors{
			Background: "#282a36", Text: "#f8f8f2", Accent: "#bd93f9",
		})
		require.NotNil(t, f)
		assert.Equal(t, f.Accent, f.Link)
		assert.Equal(t, f.Text, f.CodeText)
		assert.Equal(t, f.Border, f.BlockquoteBorder)
		assert.Equal(t, f.TextSecondary, f.BlockquoteText)
	})

	t.Run("textSecondary sits between text and background", func(t *testing.T) {
		f := DeriveThemeColors(CustomColors{
			Background: "#ffffff", Text: "#1a1a1a", Accent: "#0066cc",
		})
		require.NotNil(t, f)

		bg, _ := colorspace.ParseHex(f.Background)
		text, _ := colorspace.ParseHex(f.Text)
		sec, _ := colorspace.ParseHex(f.TextSecondary)

		lBg := colorspace.Lightness(bg)
		lText := colorspace.Lightness(text)
		lSec := colorspace.Lightness(sec)
		assert.Greater(t, lSec, lText)
		assert.Less(t, lSec, lBg)
	})

	t.Run("border direction follows background darkness", func(t *testing.T) {
		light := DeriveThemeColors(CustomColors{
			Background: "#ffffff", Text: "#1a1a1a", Accent: "#0066cc",
		})
		require.NotNil(t, light)
		lightBg, _ := colorspace.ParseHex(light.Background)
		lightBorder, _ := colorspace.ParseHex(light.Border)
		assert.Less(t, colorspace.Lightness(lightBorder), colorspace.Lightness(lightBg))

		dark := DeriveThemeColors(CustomColors{
			Background: "#0d1117", Text: "#e6edf3", Accent: "#4493f8",
		})
		require.NotNil(t, dark)
		darkBg, _ := colorspace.ParseHex(dark.Background)
		darkBorder, _ := colorspace.ParseHex(dark.Border)
		assert.Greater(t, colorspace.Lightness(darkBorder), colorspace.Lightness(darkBg))
	})

	t.Run("explicit codeBackground wins", func(t *testing.T) {
		f := DeriveThemeColors(CustomColors{
			Background: "#ffffff", Text: "#1a1a1a", Accent: "#0066cc",
			CodeBackground: "#eeeeee",
		})
		require.NotNil(t, f)
		assert.Equal(t, "#eeeeee", f.CodeBackground)
	})

	t.Run("derivation is deterministic", func(t *testing.T) {
		seeds := CustomColors{Background: "#2e3440", Text: "#d8dee9", Accent: "#88c0d0"}
		a := DeriveThemeColors(seeds)
		b := DeriveThemeColors(seeds)
		require.NotNil(t, a)
		assert.Equal(t, a, b)
	})
}

func TestDeriveSiteColors(t *testing.T) {
	t.Run("nil propagates", func(t *testing.T) {
		assert.Nil(t, DeriveSiteColors(CustomColors{Background: "#ffffff"}))
	})

	t.Run("grid and vignette carry alpha", func(t *testing.T) {
		light := DeriveSiteColors(CustomColors{
			Background: "#ffffff", Text: "#1a1a1a", Accent: "#0066cc",
		})
		require.NotNil(t, light)
		assert.Len(t, light.GridColor, 9)
		assert.Equal(t, light.Border+"40", light.GridColor)
		// Light themes tint with the accent at low alpha.
		assert.Equal(t, light.Accent+"0d", light.VignetteColor)

		dark := DeriveSiteColors(CustomColors{
			Background: "#0d1117", Text: "#e6edf3", Accent: "#4493f8",
		})
		require.NotNil(t, dark)
		// Dark themes deepen shadow with the background.
		assert.Equal(t, dark.Background+"99", dark.VignetteColor)
	})

	t.Run("sidebar mirrors secondary background", func(t *testing.T) {
		f := DeriveSiteColors(CustomColors{
			Background: "#ffffff", Text: "#1a1a1a", Accent: "#0066cc",
		})
		require.NotNil(t, f)
		assert.Equal(t, f.BgSecondary, f.SidebarBg)
	})

	t.Run("css variables cover all sixteen fields", func(t *testing.T) {
		f := DeriveSiteColors(CustomColors{
			Background: "#ffffff", Text: "#1a1a1a", Accent: "#0066cc",
		})
		require.NotNil(t, f)
		vars := f.CSSVariables()
		assert.Len(t, vars, 16)
		assert.Equal(t, f.Background, vars["--background"])
		assert.Equal(t, f.VignetteColor, vars["--vignette-color"])
	})
}

func TestPresetCatalog(t *testing.T) {
	assert.Len(t, Presets, 9)

	t.Run("every non-custom non-default preset passes AA", func(t *testing.T) {
		for _, p := range Presets {
			if p.Name == PresetCustom || p.Name == PresetDefault {
				continue
			}
			res := colorspace.CheckContrast(p.Background, p.Text)
			require.NotNil(t, res, "preset %s", p.Name)
			assert.True(t, res.Passes, "preset %s: ratio %.2f", p.Name, res.Ratio)
		}
	})

	t.Run("every fixed preset derives a full palette", func(t *testing.T) {
		for _, p := range Presets {
			if p.Name == PresetCustom {
				continue
			}
			assert.NotNil(t, DeriveThemeColors(p.Seeds()), "preset %s", p.Name)
		}
	})

	t.Run("lookup", func(t *testing.T) {
		p, ok := PresetByName(PresetNord)
		require.True(t, ok)
		assert.Equal(t, "#2e3440", p.Background)

		_, ok = PresetByName("vaporwave")
		assert.False(t, ok)
	})
}

// Mirrors the end-to-end repair scenario: a user picks low-contrast seeds,
// validation explains the failure, correction repairs both sides while
// keeping each color's hue.
func TestContrastRepairScenario(t *testing.T) {
	seeds := CustomColors{
		Background: "#ffffff",
		Text:       "#cccccc",
		Accent:     "#ffff00",
	}

	v := ValidateCustomColors(seeds)
	require.NotNil(t, v.TextContrast)
	require.NotNil(t, v.AccentContrast)
	assert.False(t, v.IsValid)
	assert.False(t, v.TextContrast.Passes)
	assert.Less(t, v.AccentContrast.Ratio, 3.0)

	fixed := CorrectContrast(seeds)

	textRatio, ok := colorspace.GetContrastRatio(seeds.Background, fixed.Text)
	require.True(t, ok)
	assert.GreaterOrEqual(t, textRatio, 4.5)

	accentRatio, ok := colorspace.GetContrastRatio(seeds.Background, fixed.Accent)
	require.True(t, ok)
	assert.GreaterOrEqual(t, accentRatio, 3.0)

	// The accent keeps its yellow hue; only lightness moved. (The original
	// text is achromatic, so its hue carries no meaning to compare.)
	origAccent, _ := colorspace.Parse(seeds.Accent)
	fixedAccent, ok := colorspace.Parse(fixed.Accent)
	require.True(t, ok)
	hueDiff := colorspace.ToOKLCH(origAccent).H - colorspace.ToOKLCH(fixedAccent).H
	if hueDiff < 0 {
		hueDiff = -hueDiff
	}
	if hueDiff > 180 {
		hueDiff = 360 - hueDiff
	}
	assert.Less(t, hueDiff, 12.0)

	// Re-validation now succeeds.
	assert.True(t, ValidateCustomColors(fixed).IsValid)
}
