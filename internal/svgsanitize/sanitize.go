// Package svgsanitize cleans untrusted inline SVG with allow-list
// filtering and namespaces its ids and classes so multiple fragments can
// share one document.
package svgsanitize

import (
	"log/slog"
	"strings"
)

// MaxInputSize is the hard cap on raw input; larger payloads are rejected
// outright.
const MaxInputSize = 100 * 1024

// Sanitizer filters untrusted SVG markup down to a safe subset. All
// rejections are silent drops of the offending node or attribute, so the
// caller always gets some renderable output unless the root itself is
// unacceptable.
type Sanitizer struct {
	ns     *Namespacer
	logger *slog.Logger
}

// NewSanitizer creates a sanitizer drawing prefixes from the given
// namespacer.
func NewSanitizer(ns *Namespacer) *Sanitizer {
	return &Sanitizer{ns: ns, logger: slog.Default()}
}

// WithLogger sets the logger for the sanitizer.
func (s *Sanitizer) WithLogger(logger *slog.Logger) *Sanitizer {
	s.logger = logger
	return s
}

// Sanitize cleans one SVG fragment and returns the namespaced markup.
// ok is false when the input is oversized, malformed, or not rooted at
// an svg element.
func (s *Sanitizer) Sanitize(raw string) (out string, ok bool) {
	if len(raw) > MaxInputSize {
		s.logger.Debug("rejecting oversized svg", slog.Int("bytes", len(raw)))
		return "", false
	}

	root, err := parseTree(raw)
	if err != nil {
		s.logger.Debug("rejecting malformed svg", slog.String("error", err.Error()))
		return "", false
	}
	if root.Tag != "svg" {
		s.logger.Debug("rejecting non-svg root", slog.String("tag", root.Tag))
		return "", false
	}

	clean := s.sanitizeElement(root)
	if clean == nil {
		return "", false
	}

	clean.SetAttr("xmlns", svgNamespace)
	if treeUsesXlink(clean) {
		clean.SetAttr("xmlns:xlink", xlinkNamespace)
	}

	applyNamespace(clean, s.ns.NextPrefix())
	return serializeTree(clean), true
}

// sanitizeElement returns a cleaned copy of the element, or nil when the
// element (and therefore its whole subtree) is disallowed.
func (s *Sanitizer) sanitizeElement(n *Node) *Node {
	if !allowedElements[n.Tag] {
		return nil
	}

	clean := &Node{Tag: n.Tag}
	for _, a := range n.Attrs {
		if value, keep := s.sanitizeAttr(n.Tag, a.Name, a.Value); keep {
			clean.Attrs = append(clean.Attrs, Attr{Name: a.Name, Value: value})
		}
	}

	for _, child := range n.Children {
		if child.Tag == "" {
			clean.Children = append(clean.Children, &Node{Text: child.Text})
			continue
		}
		if cleaned := s.sanitizeElement(child); cleaned != nil {
			clean.Children = append(clean.Children, cleaned)
		}
	}

	// A style element whose CSS matches the deny-list drops entirely.
	if clean.Tag == "style" && cssIsDangerous(textContent(clean)) {
		return nil
	}

	return clean
}

// sanitizeAttr decides whether one attribute survives, returning the value
// to keep. Event handlers are rejected before any list lookup.
func (s *Sanitizer) sanitizeAttr(tag, name, value string) (string, bool) {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "on") {
		return "", false
	}
	if !attrAllowed(tag, name) {
		return "", false
	}

	if hrefAttrs[name] {
		// Internal fragment references only. External URLs, data:, and
		// javascript: are the primary XSS surface here.
		if !strings.HasPrefix(value, "#") {
			return "", false
		}
		return value, true
	}

	if name == "style" && cssIsDangerous(value) {
		return "", false
	}

	return value, true
}

func textContent(n *Node) string {
	var b strings.Builder
	for _, child := range n.Children {
		if child.Tag == "" {
			b.WriteString(child.Text)
		}
	}
	return b.String()
}

func treeUsesXlink(n *Node) bool {
	for _, a := range n.Attrs {
		if strings.HasPrefix(a.Name, "xlink:") {
			return true
		}
	}
	for _, child := range n.Children {
		if child.Tag != "" && treeUsesXlink(child) {
			return true
		}
	}
	return false
}
