package ungroup

import (
	"strings"

	"github.com/hazyhaar/slidekit/deck"
)

// TextBearing reports whether g has a direct child leaf with a text frame
// holding non-blank text.
func TextBearing(g *deck.Shape) bool {
	if g.Kind != deck.Group {
		return false
	}
	for _, c := range g.Children {
		if c.Kind == deck.Leaf && c.HasTextFrame() && strings.TrimSpace(c.Text()) != "" {
			return true
		}
	}
	return false
}

func firstTextBearing(tree Tree) *deck.Shape {
	for _, sh := range tree.Shapes() {
		if TextBearing(sh) {
			return sh
		}
	}
	return nil
}
