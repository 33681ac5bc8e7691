package colorspace

// adjustIterations is the fixed binary-search budget. Twenty halvings of a
// unit lightness interval converge well below one 8-bit channel step.
const adjustIterations = 20

// searchMargin keeps the searched lightness band away from the background's
// own lightness so the result never collapses into the background.
const searchMargin = 0.1

// AdjustForContrast repairs the foreground color so it reaches at least
// minContrast against the background, holding OKLCH chroma and hue fixed so
// the color keeps its identity. The input string is returned unchanged when
// it already meets the target or when either color fails to parse.
//
// The search runs over OKLCH lightness only: against a dark background the
// foreground is pushed lighter inside [bgL+0.1, 1], against a light one it
// is pushed darker inside [0, bgL-0.1]. Among lightness values that meet the
// target, the one closest to the original foreground lightness wins.
func AdjustForContrast(fg, bg string, minContrast float64) string {
	fgRGB, ok := Parse(fg)
	if !ok {
		return fg
	}
	bgRGB, ok := Parse(bg)
	if !ok {
		return fg
	}

	if ContrastRatio(fgRGB, bgRGB) >= minContrast {
		return fg
	}

	fgLCH := ToOKLCH(fgRGB)
	bgL := Lightness(bgRGB)
	darkBg := bgL < 0.5

	var lo, hi float64
	if darkBg {
		lo, hi = bgL+searchMargin, 1.0
	} else {
		lo, hi = 0.0, bgL-searchMargin
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	candidate := func(l float64) RGB {
		return FromOKLCH(OKLCH{L: l, C: fgLCH.C, H: fgLCH.H})
	}

	// Fallback: the extreme of the band, the best this hue/chroma can do
	// when no probed lightness reaches the target.
	best := hi
	if !darkBg {
		best = lo
	}

	for i := 0; i < adjustIterations; i++ {
		mid := (lo + hi) / 2
		if ContrastRatio(candidate(mid), bgRGB) >= minContrast {
			best = mid
			// Meets the target: narrow toward the original lightness.
			if darkBg {
				hi = mid
			} else {
				lo = mid
			}
		} else {
			// Fails: narrow away from the original lightness.
			if darkBg {
				lo = mid
			} else {
				hi = mid
			}
		}
	}

	return candidate(best).Hex()
}
