package colorspace

import "math"

// ContrastLevel classifies a contrast ratio against the WCAG thresholds.
type ContrastLevel string

const (
	// LevelFail means the ratio is below every WCAG threshold.
	LevelFail ContrastLevel = "fail"
	// LevelAALarge passes for large text only (ratio >= 3).
	LevelAALarge ContrastLevel = "AA-large"
	// LevelAA passes for normal text (ratio >= 4.5).
	LevelAA ContrastLevel = "AA"
	// LevelAAA passes the enhanced threshold (ratio >= 7).
	LevelAAA ContrastLevel = "AAA"
)

// WCAG thresholds. Text uses MinTextContrast; non-text UI elements such as
// accents use MinUIContrast.
const (
	MinTextContrast = 4.5
	MinUIContrast   = 3.0
	minAAAContrast  = 7.0
)

// ContrastResult describes the WCAG contrast between two colors.
type ContrastResult struct {
	// Ratio is the WCAG contrast ratio in [1,21].
	Ratio float64 `json:"ratio"`
	// Passes is true when the ratio meets the AA threshold for normal text.
	Passes bool `json:"passes"`
	// Level is the highest WCAG level the ratio satisfies.
	Level ContrastLevel `json:"level"`
}

// Luminance computes WCAG relative luminance for an sRGB color.
// The 0.03928 threshold is the one the WCAG 2.x formula specifies; it
// differs slightly from the sRGB standard's 0.04045 on purpose.
func Luminance(c RGB) float64 {
	lin := func(ch uint8) float64 {
		v := float64(ch) / 255.0
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// ContrastRatio computes the WCAG contrast ratio between two colors.
// Symmetric in its arguments, range [1,21].
func ContrastRatio(a, b RGB) float64 {
	la := Luminance(a)
	lb := Luminance(b)
	lighter := math.Max(la, lb)
	darker := math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05)
}

// GetContrastRatio parses both color strings and returns their contrast
// ratio. ok is false when either fails to parse.
func GetContrastRatio(s1, s2 string) (ratio float64, ok bool) {
	c1, ok1 := Parse(s1)
	c2, ok2 := Parse(s2)
	if !ok1 || !ok2 {
		return 0, false
	}
	return ContrastRatio(c1, c2), true
}

// CheckContrast parses both colors and classifies their contrast.
// Returns nil when either color fails to parse.
func CheckContrast(s1, s2 string) *ContrastResult {
	ratio, ok := GetContrastRatio(s1, s2)
	if !ok {
		return nil
	}

	level := LevelFail
	switch {
	case ratio >= minAAAContrast:
		level = LevelAAA
	case ratio >= MinTextContrast:
		level = LevelAA
	case ratio >= MinUIContrast:
		level = LevelAALarge
	}

	return &ContrastResult{
		Ratio:  ratio,
		Passes: ratio >= MinTextContrast,
		Level:  level,
	}
}
