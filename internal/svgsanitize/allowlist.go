package svgsanitize

// Element and attribute allow-lists. Sanitization is fail-closed: anything
// not listed here is dropped, so unknown future elements are excluded by
// default. Notably absent: script, foreignObject, image, and anything that
// can load an external resource.

var allowedElements = map[string]bool{
	"svg":    true,
	"g":      true,
	"defs":   true,
	"symbol": true,
	"use":    true,
	"switch": true,

	"path":     true,
	"rect":     true,
	"circle":   true,
	"ellipse":  true,
	"line":     true,
	"polyline": true,
	"polygon":  true,

	"text":     true,
	"tspan":    true,
	"textPath": true,
	"title":    true,
	"desc":     true,

	"linearGradient": true,
	"radialGradient": true,
	"stop":           true,
	"pattern":        true,
	"clipPath":       true,
	"mask":           true,
	"marker":         true,
	"style":          true,

	"filter":         true,
	"feGaussianBlur": true,
	"feOffset":       true,
	"feBlend":        true,
	"feColorMatrix":  true,
	"feComposite":    true,
	"feFlood":        true,
	"feMerge":        true,
	"feMergeNode":    true,

	"animate":          true,
	"animateTransform": true,
	"animateMotion":    true,
	"set":              true,
	"mpath":            true,
}

// globalAttrs are presentation attributes valid on any retained element.
var globalAttrs = map[string]bool{
	"id":    true,
	"class": true,
	"style": true,

	"fill":              true,
	"fill-opacity":      true,
	"fill-rule":         true,
	"stroke":            true,
	"stroke-width":      true,
	"stroke-linecap":    true,
	"stroke-linejoin":   true,
	"stroke-dasharray":  true,
	"stroke-dashoffset": true,
	"stroke-opacity":    true,
	"stroke-miterlimit": true,
	"opacity":           true,
	"color":             true,
	"display":           true,
	"visibility":        true,
	"transform":         true,
	"vector-effect":     true,
	"paint-order":       true,

	"clip-path": true,
	"clip-rule": true,
	"mask":      true,
	"filter":    true,

	"marker-start": true,
	"marker-mid":   true,
	"marker-end":   true,

	"font-family":       true,
	"font-size":         true,
	"font-weight":       true,
	"font-style":        true,
	"text-anchor":       true,
	"dominant-baseline": true,
	"letter-spacing":    true,
}

// elementAttrs are additional attributes valid only on specific elements.
var elementAttrs = map[string]map[string]bool{
	"svg": {
		"viewBox": true, "width": true, "height": true,
		"preserveAspectRatio": true, "version": true, "xmlns": true,
	},
	"use": {
		"href": true, "xlink:href": true,
		"x": true, "y": true, "width": true, "height": true,
	},
	"path":     {"d": true, "pathLength": true},
	"rect":     {"x": true, "y": true, "width": true, "height": true, "rx": true, "ry": true},
	"circle":   {"cx": true, "cy": true, "r": true},
	"ellipse":  {"cx": true, "cy": true, "rx": true, "ry": true},
	"line":     {"x1": true, "y1": true, "x2": true, "y2": true},
	"polyline": {"points": true},
	"polygon":  {"points": true},
	"text":     {"x": true, "y": true, "dx": true, "dy": true, "rotate": true, "textLength": true},
	"tspan":    {"x": true, "y": true, "dx": true, "dy": true, "rotate": true},
	"textPath": {"href": true, "xlink:href": true, "startOffset": true, "method": true, "spacing": true},
	"linearGradient": {
		"x1": true, "y1": true, "x2": true, "y2": true,
		"gradientUnits": true, "gradientTransform": true, "spreadMethod": true,
		"href": true, "xlink:href": true,
	},
	"radialGradient": {
		"cx": true, "cy": true, "r": true, "fx": true, "fy": true, "fr": true,
		"gradientUnits": true, "gradientTransform": true, "spreadMethod": true,
		"href": true, "xlink:href": true,
	},
	"stop": {"offset": true, "stop-color": true, "stop-opacity": true},
	"pattern": {
		"x": true, "y": true, "width": true, "height": true,
		"patternUnits": true, "patternContentUnits": true, "patternTransform": true,
		"viewBox": true, "preserveAspectRatio": true,
		"href": true, "xlink:href": true,
	},
	"clipPath": {"clipPathUnits": true},
	"mask": {
		"x": true, "y": true, "width": true, "height": true,
		"maskUnits": true, "maskContentUnits": true,
	},
	"marker": {
		"markerWidth": true, "markerHeight": true, "refX": true, "refY": true,
		"orient": true, "markerUnits": true,
		"viewBox": true, "preserveAspectRatio": true,
	},
	"symbol": {"viewBox": true, "preserveAspectRatio": true},
	"filter": {
		"x": true, "y": true, "width": true, "height": true,
		"filterUnits": true, "primitiveUnits": true,
	},
	"feGaussianBlur": {"in": true, "result": true, "stdDeviation": true},
	"feOffset":       {"in": true, "result": true, "dx": true, "dy": true},
	"feBlend":        {"in": true, "in2": true, "result": true, "mode": true},
	"feColorMatrix":  {"in": true, "result": true, "type": true, "values": true},
	"feComposite": {
		"in": true, "in2": true, "result": true, "operator": true,
		"k1": true, "k2": true, "k3": true, "k4": true,
	},
	"feFlood":     {"result": true, "flood-color": true, "flood-opacity": true},
	"feMerge":     {"result": true},
	"feMergeNode": {"in": true},
	"animate": {
		"attributeName": true, "from": true, "to": true, "by": true,
		"dur": true, "begin": true, "end": true, "repeatCount": true,
		"values": true, "keyTimes": true, "calcMode": true,
	},
	"animateTransform": {
		"attributeName": true, "type": true, "from": true, "to": true, "by": true,
		"dur": true, "begin": true, "end": true, "repeatCount": true,
		"values": true, "keyTimes": true, "calcMode": true,
		"additive": true, "accumulate": true,
	},
	"animateMotion": {
		"path": true, "rotate": true, "keyPoints": true,
		"dur": true, "begin": true, "end": true, "repeatCount": true,
		"values": true, "keyTimes": true, "calcMode": true,
	},
	"set": {
		"attributeName": true, "to": true,
		"dur": true, "begin": true, "end": true, "repeatCount": true,
	},
	"mpath": {"href": true, "xlink:href": true},
}

// hrefAttrs carry references that must stay internal fragments.
var hrefAttrs = map[string]bool{
	"href":       true,
	"xlink:href": true,
}

// urlRefAttrs are presentation attributes whose values may carry url(#id)
// references that need namespacing.
var urlRefAttrs = map[string]bool{
	"fill":         true,
	"stroke":       true,
	"filter":       true,
	"clip-path":    true,
	"mask":         true,
	"marker-start": true,
	"marker-mid":   true,
	"marker-end":   true,
}

func attrAllowed(tag, name string) bool {
	if globalAttrs[name] {
		return true
	}
	if extra, ok := elementAttrs[tag]; ok && extra[name] {
		return true
	}
	return false
}
