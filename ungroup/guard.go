package ungroup

import "github.com/hazyhaar/slidekit/deck"

// Check rejects a slide whose top-level groups hold groups. It never
// mutates; a non-nil result means nothing on the slide may be touched.
func Check(tree Tree) error {
	for _, g := range tree.Shapes() {
		if g.Kind != deck.Group {
			continue
		}
		for _, c := range g.Children {
			if c.Kind == deck.Group {
				return &NestedGroupError{GroupID: g.ID(), ChildID: c.ID()}
			}
		}
	}
	return nil
}
