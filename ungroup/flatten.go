// Package ungroup flattens text-bearing groups on a slide into top-level
// shapes, keeping every extracted shape at its on-slide position.
package ungroup

import (
	"log/slog"

	"github.com/hazyhaar/slidekit/deck"
)

// Tree is the top-level shape sequence of one slide. *deck.Slide implements
// it.
type Tree interface {
	Shapes() []*deck.Shape
	Append(shapes ...*deck.Shape)
	Remove(sh *deck.Shape) bool
}

// Result counts what one Flatten call did.
type Result struct {
	GroupsFlattened int
	ShapesExtracted int
	// Approximated counts groups flattened with an absent offset or child
	// origin read as (0,0).
	Approximated int
}

// Engine runs the flattening loop.
type Engine struct {
	logger *slog.Logger
}

// New returns an Engine. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Flatten rewrites every text-bearing top-level group of tree into its
// children: each child's offset becomes group.offset + (child.offset -
// group.childOrigin), children are appended to the end of the sequence in
// their original order, and the group is removed. Sizes are not changed.
//
// A nested group anywhere on the slide fails the call before any mutation.
// A TransformError is detected before the offending group is touched, but
// groups flattened earlier in the same call stay flattened.
func (e *Engine) Flatten(tree Tree) (Result, error) {
	var res Result
	if err := Check(tree); err != nil {
		return res, err
	}
	for {
		g := firstTextBearing(tree)
		if g == nil {
			return res, nil
		}
		if err := validate(g); err != nil {
			return res, err
		}
		origin, hasOrigin := g.Transform.Origin()
		childOrigin, hasChildOrigin := g.Transform.ChildOrigin()
		if !hasOrigin || !hasChildOrigin {
			res.Approximated++
			e.logger.Warn("ungroup: incomplete group transform, using (0,0)",
				"group_id", g.ID(),
				"group_name", g.Name(),
				"has_offset", hasOrigin,
				"has_child_offset", hasChildOrigin)
		}

		children := g.Children
		for _, c := range children {
			local, ok := c.Transform.Origin()
			if !ok {
				continue
			}
			abs := origin.Add(local.Sub(childOrigin))
			c.Transform.Offset = &abs
		}
		g.Children = nil
		tree.Append(children...)
		tree.Remove(g)

		res.GroupsFlattened++
		res.ShapesExtracted += len(children)
		e.logger.Debug("ungroup: group flattened",
			"group_id", g.ID(),
			"children", len(children))
	}
}

func validate(g *deck.Shape) error {
	if g.Transform.Err != nil {
		return &TransformError{ShapeID: g.ID(), Err: g.Transform.Err}
	}
	for _, c := range g.Children {
		if c.Transform.Err != nil {
			return &TransformError{ShapeID: c.ID(), Err: c.Transform.Err}
		}
	}
	return nil
}
