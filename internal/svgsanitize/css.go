package svgsanitize

import (
	"regexp"
	"strings"
)

// Dangerous CSS constructs. A style value or stylesheet matching any of
// these is dropped wholesale; partial salvage is not worth the parsing
// ambiguity.
var cssDenySubstrings = []string{
	"expression(",
	"javascript:",
	"data:",
	"@import",
	"behavior:",
	"-moz-binding",
}

var cssURLPattern = regexp.MustCompile(`(?i)url\s*\(\s*['"]?\s*([^'")]*?)\s*['"]?\s*\)`)

// cssIsDangerous reports whether CSS text contains a denied construct or a
// url() that is not an internal fragment reference.
func cssIsDangerous(css string) bool {
	lower := strings.ToLower(css)
	for _, deny := range cssDenySubstrings {
		if strings.Contains(lower, deny) {
			return true
		}
	}
	for _, m := range cssURLPattern.FindAllStringSubmatch(css, -1) {
		if !strings.HasPrefix(m[1], "#") {
			return true
		}
	}
	return false
}

// rewriteCSSURLs namespaces every url(#id) whose id appears in the map.
func rewriteCSSURLs(css string, ids map[string]string) string {
	return cssURLPattern.ReplaceAllStringFunc(css, func(match string) string {
		sub := cssURLPattern.FindStringSubmatch(match)
		target := sub[1]
		if !strings.HasPrefix(target, "#") {
			return match
		}
		if renamed, ok := ids[target[1:]]; ok {
			return "url(#" + renamed + ")"
		}
		return match
	})
}

var cssClassSelectorPattern = regexp.MustCompile(`\.([A-Za-z_][A-Za-z0-9_-]*)`)

// rewriteCSSClassSelectors namespaces every .class selector whose name
// appears in the map.
func rewriteCSSClassSelectors(css string, classes map[string]string) string {
	return cssClassSelectorPattern.ReplaceAllStringFunc(css, func(match string) string {
		if renamed, ok := classes[match[1:]]; ok {
			return "." + renamed
		}
		return match
	})
}
