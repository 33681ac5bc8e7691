package svgsanitize

import (
	"fmt"
	"strings"
	"sync"
)

// Namespacer hands out unique id/class prefixes so independently authored
// fragments can coexist in one document without reference collisions. The
// counter is monotonic for the life of the process; construct a fresh one
// only for test isolation.
type Namespacer struct {
	mu      sync.Mutex
	counter int
}

// NewNamespacer returns a namespacer starting at prefix svg1_.
func NewNamespacer() *Namespacer {
	return &Namespacer{}
}

// NextPrefix returns the next unique fragment prefix.
func (n *Namespacer) NextPrefix() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counter++
	return fmt.Sprintf("svg%d_", n.counter)
}

// applyNamespace rewrites every id, class token, fragment href, and
// url(#id) reference in the tree under a fresh prefix. Ids and classes are
// collected across the whole tree first, then references are rewritten, so
// forward references resolve regardless of document order.
func applyNamespace(root *Node, prefix string) {
	ids := map[string]string{}
	classes := map[string]string{}
	collectNames(root, prefix, ids, classes)
	rewriteNode(root, ids, classes)
}

func collectNames(n *Node, prefix string, ids, classes map[string]string) {
	if n.Tag == "" {
		return
	}
	if id, ok := n.Attr("id"); ok && id != "" {
		ids[id] = prefix + id
	}
	if class, ok := n.Attr("class"); ok {
		for _, token := range strings.Fields(class) {
			classes[token] = prefix + token
		}
	}
	for _, child := range n.Children {
		collectNames(child, prefix, ids, classes)
	}
}

func rewriteNode(n *Node, ids, classes map[string]string) {
	if n.Tag == "" {
		return
	}

	for i, a := range n.Attrs {
		switch {
		case a.Name == "id":
			if renamed, ok := ids[a.Value]; ok {
				n.Attrs[i].Value = renamed
			}

		case a.Name == "class":
			tokens := strings.Fields(a.Value)
			for j, token := range tokens {
				if renamed, ok := classes[token]; ok {
					tokens[j] = renamed
				}
			}
			n.Attrs[i].Value = strings.Join(tokens, " ")

		case hrefAttrs[a.Name]:
			if target := strings.TrimPrefix(a.Value, "#"); target != a.Value {
				if renamed, ok := ids[target]; ok {
					n.Attrs[i].Value = "#" + renamed
				}
			}

		case urlRefAttrs[a.Name], a.Name == "style":
			n.Attrs[i].Value = rewriteCSSURLs(a.Value, ids)
		}
	}

	// A style element's CSS text carries both selector and url references.
	if n.Tag == "style" {
		for _, child := range n.Children {
			if child.Tag == "" {
				child.Text = rewriteCSSClassSelectors(rewriteCSSURLs(child.Text, ids), classes)
			}
		}
	}

	for _, child := range n.Children {
		rewriteNode(child, ids, classes)
	}
}
