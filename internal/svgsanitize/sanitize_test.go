package svgsanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSanitizer() *Sanitizer {
	return NewSanitizer(NewNamespacer())
}

func TestSanitize_RejectsBadInput(t *testing.T) {
	s := newTestSanitizer()

	t.Run("oversized", func(t *testing.T) {
		raw := "<svg>" + strings.Repeat("a", MaxInputSize) + "</svg>"
		_, ok := s.Sanitize(raw)
		assert.False(t, ok)
	})

	t.Run("malformed", func(t *testing.T) {
		_, ok := s.Sanitize("<svg><rect</svg>")
		assert.False(t, ok)
	})

	t.Run("non-svg root", func(t *testing.T) {
		_, ok := s.Sanitize("<div><svg/></div>")
		assert.False(t, ok)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := s.Sanitize("")
		assert.False(t, ok)
	})
}

func TestSanitize_DropsScriptSubtree(t *testing.T) {
	s := newTestSanitizer()

	out, ok := s.Sanitize(`<svg><script>alert(1)</script><rect width="10" height="10"/></svg>`)
	require.True(t, ok)
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "alert")
	assert.Contains(t, out, "<rect")
}

func TestSanitize_DropsForeignObjectAndUnknown(t *testing.T) {
	s := newTestSanitizer()

	out, ok := s.Sanitize(`<svg><foreignObject><body>x</body></foreignObject><madeUpTag><circle r="1"/></madeUpTag></svg>`)
	require.True(t, ok)
	assert.NotContains(t, out, "foreignObject")
	// Dropping an element drops its whole subtree, even allowed children.
	assert.NotContains(t, out, "circle")
}

func TestSanitize_DropsEventHandlers(t *testing.T) {
	s := newTestSanitizer()

	out, ok := s.Sanitize(`<svg><rect width="5" height="5" onclick="steal()" onmouseover="x()"/></svg>`)
	require.True(t, ok)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "onmouseover")
	assert.NotContains(t, out, "steal")
	assert.Contains(t, out, `width="5"`)
}

func TestSanitize_HrefFragmentOnly(t *testing.T) {
	s := newTestSanitizer()

	tests := []struct {
		name string
		href string
	}{
		{"javascript", `javascript:alert(1)`},
		{"external http", `https://evil.example/x.svg#icon`},
		{"data url", `data:image/svg+xml;base64,AAAA`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := s.Sanitize(`<svg><use href="` + tt.href + `"/></svg>`)
			require.True(t, ok)
			assert.NotContains(t, out, "href")
		})
	}
}

func TestSanitize_NamespacesIdsAndRefs(t *testing.T) {
	s := newTestSanitizer()

	out, ok := s.Sanitize(`<svg><defs><circle id="shape1" r="4"/></defs><use href="#shape1"/></svg>`)
	require.True(t, ok)
	assert.Contains(t, out, `id="svg1_shape1"`)
	assert.Contains(t, out, `href="#svg1_shape1"`)
	assert.NotContains(t, out, `id="shape1"`)
}

func TestSanitize_ForwardReferencesResolve(t *testing.T) {
	s := newTestSanitizer()

	// The use comes before its target; collection must precede rewriting.
	out, ok := s.Sanitize(`<svg><use href="#late"/><defs><rect id="late" width="1" height="1"/></defs></svg>`)
	require.True(t, ok)
	assert.Contains(t, out, `href="#svg1_late"`)
	assert.Contains(t, out, `id="svg1_late"`)
}

func TestSanitize_SequentialPrefixesAreUnique(t *testing.T) {
	s := newTestSanitizer()

	first, ok := s.Sanitize(`<svg><rect id="a" width="1" height="1"/></svg>`)
	require.True(t, ok)
	second, ok := s.Sanitize(`<svg><rect id="a" width="1" height="1"/></svg>`)
	require.True(t, ok)

	assert.Contains(t, first, `id="svg1_a"`)
	assert.Contains(t, second, `id="svg2_a"`)
	assert.NotEqual(t, first, second)
}

func TestSanitize_ClassNamespacing(t *testing.T) {
	s := newTestSanitizer()

	out, ok := s.Sanitize(`<svg><style>.spin { fill: red; }</style><rect class="spin big" width="1" height="1"/></svg>`)
	require.True(t, ok)
	assert.Contains(t, out, `class="svg1_spin svg1_big"`)
	assert.Contains(t, out, `.svg1_spin`)
	assert.NotContains(t, out, `class="spin`)
}

func TestSanitize_URLReferencesInAttrs(t *testing.T) {
	s := newTestSanitizer()

	out, ok := s.Sanitize(`<svg><defs><linearGradient id="grad"><stop offset="0" stop-color="red"/></linearGradient></defs><rect fill="url(#grad)" width="1" height="1"/></svg>`)
	require.True(t, ok)
	assert.Contains(t, out, `fill="url(#svg1_grad)"`)
}

func TestSanitize_DangerousStyleAttr(t *testing.T) {
	s := newTestSanitizer()

	t.Run("external url dropped", func(t *testing.T) {
		out, ok := s.Sanitize(`<svg><rect style="fill: url(https://evil.example/x)" width="1" height="1"/></svg>`)
		require.True(t, ok)
		assert.NotContains(t, out, "style=")
	})

	t.Run("expression dropped", func(t *testing.T) {
		out, ok := s.Sanitize(`<svg><rect style="width: expression(alert(1))" width="1" height="1"/></svg>`)
		require.True(t, ok)
		assert.NotContains(t, out, "expression")
	})

	t.Run("fragment url kept and namespaced", func(t *testing.T) {
		out, ok := s.Sanitize(`<svg><defs><clipPath id="c"><rect width="1" height="1"/></clipPath></defs><rect style="clip-path: url(#c)" width="1" height="1"/></svg>`)
		require.True(t, ok)
		assert.Contains(t, out, `url(#svg1_c)`)
	})
}

func TestSanitize_DangerousStyleElement(t *testing.T) {
	s := newTestSanitizer()

	out, ok := s.Sanitize(`<svg><style>@import url(https://evil.example/x.css);</style><rect width="1" height="1"/></svg>`)
	require.True(t, ok)
	assert.NotContains(t, out, "style")
	assert.NotContains(t, out, "@import")
	assert.Contains(t, out, "<rect")
}

func TestSanitize_TextContentPreserved(t *testing.T) {
	s := newTestSanitizer()

	out, ok := s.Sanitize(`<svg><text x="0" y="10">hello &amp; goodbye</text></svg>`)
	require.True(t, ok)
	assert.Contains(t, out, "hello &amp; goodbye")
}

func TestSanitize_RootGetsSVGNamespace(t *testing.T) {
	s := newTestSanitizer()

	out, ok := s.Sanitize(`<svg viewBox="0 0 10 10"><rect width="1" height="1"/></svg>`)
	require.True(t, ok)
	assert.Contains(t, out, `xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, out, `viewBox="0 0 10 10"`)
}

func TestCSSIsDangerous(t *testing.T) {
	tests := []struct {
		name      string
		css       string
		dangerous bool
	}{
		{"plain", "fill: red; stroke-width: 2", false},
		{"fragment url", "fill: url(#grad)", false},
		{"external url", "fill: url(https://x.example/a)", true},
		{"quoted external url", `fill: url("https://x.example/a")`, true},
		{"javascript", "background: javascript:alert(1)", true},
		{"data url", "background: data:text/html;base64,x", true},
		{"import", "@import url(#x);", true},
		{"behavior", "behavior: url(#x)", true},
		{"moz binding", "-moz-binding: url(#x)", true},
		{"expression", "width: expression(1)", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.dangerous, cssIsDangerous(tt.css))
		})
	}
}
