// Package colorspace provides sRGB color parsing, perceptually uniform
// (OKLCH) color manipulation, and WCAG contrast computation. All functions
// are pure; colors round-trip through 8-bit sRGB channels.
package colorspace

import (
	"fmt"
	"math"
)

// RGB is an sRGB color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// Hex returns the lowercase #rrggbb representation.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// OKLCH is a color in the OKLCH cylindrical form of OKLab.
// L is perceptual lightness in [0,1], C is chroma, H is hue in degrees.
type OKLCH struct {
	L, C, H float64
}

// srgbToLinear converts a gamma-encoded channel in [0,1] to linear light.
func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// linearToSRGB converts a linear-light channel back to gamma-encoded sRGB.
func linearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}

// ToOKLCH converts an sRGB color to OKLCH.
func ToOKLCH(c RGB) OKLCH {
	r := srgbToLinear(float64(c.R) / 255.0)
	g := srgbToLinear(float64(c.G) / 255.0)
	b := srgbToLinear(float64(c.B) / 255.0)

	// Linear sRGB -> OKLab (Björn Ottosson's matrices).
	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	l = math.Cbrt(l)
	m = math.Cbrt(m)
	s = math.Cbrt(s)

	labL := 0.2104542553*l + 0.7936177850*m - 0.0040720468*s
	labA := 1.9779984951*l - 2.4285922050*m + 0.4505937099*s
	labB := 0.0259040371*l + 0.7827717662*m - 0.8086757660*s

	chroma := math.Hypot(labA, labB)
	hue := math.Atan2(labB, labA) * 180.0 / math.Pi
	if hue < 0 {
		hue += 360.0
	}

	return OKLCH{L: labL, C: chroma, H: hue}
}

// FromOKLCH converts an OKLCH color back to sRGB, clamping out-of-gamut
// channels to [0,255].
func FromOKLCH(c OKLCH) RGB {
	hRad := c.H * math.Pi / 180.0
	labA := c.C * math.Cos(hRad)
	labB := c.C * math.Sin(hRad)

	l := c.L + 0.3963377774*labA + 0.2158037573*labB
	m := c.L - 0.1055613458*labA - 0.0638541728*labB
	s := c.L - 0.0894841775*labA - 1.2914855480*labB

	l = l * l * l
	m = m * m * m
	s = s * s * s

	r := 4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	g := -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	b := -0.0041960863*l - 0.7034186147*m + 1.7076147010*s

	return RGB{
		R: clampChannel(linearToSRGB(r)),
		G: clampChannel(linearToSRGB(g)),
		B: clampChannel(linearToSRGB(b)),
	}
}

// clampChannel rounds a [0,1] channel to 8 bits, clamping out-of-range values.
func clampChannel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255.0))
}

// Lightness returns the OKLCH lightness of a color.
func Lightness(c RGB) float64 {
	return ToOKLCH(c).L
}

// IsDark reports whether a color reads as a dark surface. The threshold is
// the perceptual midpoint, not the WCAG luminance midpoint.
func IsDark(c RGB) bool {
	return Lightness(c) < 0.5
}

// Lerp interpolates between two colors in OKLCH space. t=0 returns a, t=1
// returns b. Hue interpolates along the shorter arc.
func Lerp(a, b RGB, t float64) RGB {
	ca := ToOKLCH(a)
	cb := ToOKLCH(b)

	dh := cb.H - ca.H
	if dh > 180 {
		dh -= 360
	} else if dh < -180 {
		dh += 360
	}

	return FromOKLCH(OKLCH{
		L: ca.L + (cb.L-ca.L)*t,
		C: ca.C + (cb.C-ca.C)*t,
		H: math.Mod(ca.H+dh*t+360, 360),
	})
}

// ShiftLightness returns the color with its OKLCH lightness moved by delta,
// clamped to [0,1], holding chroma and hue.
func ShiftLightness(c RGB, delta float64) RGB {
	lch := ToOKLCH(c)
	lch.L = math.Max(0, math.Min(1, lch.L+delta))
	return FromOKLCH(lch)
}
