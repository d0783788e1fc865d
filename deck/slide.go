package deck

import (
	"fmt"

	"github.com/beevik/etree"
)

// Slide is one slide: an ordered top-level shape sequence. Enumeration order
// is z-order and the order shape indices address.
type Slide struct {
	pres   *Presentation
	id     int
	part   string
	root   *etree.Element
	tree   *etree.Element
	rels   *Rels
	layout *Layout
	shapes []*Shape
}

// NewSlide returns a detached slide holding shapes. Detached slides support
// the shape tree and text operations; media and charts need a presentation.
func NewSlide(shapes ...*Shape) *Slide {
	root := newSlideRoot()
	s := &Slide{root: root, tree: child(child(root, "cSld"), "spTree")}
	s.Append(shapes...)
	return s
}

func newSlideRoot() *etree.Element {
	root := el("p:sld", "xmlns:a", nsA, "xmlns:r", nsR, "xmlns:p", nsP)
	tree := add(add(root, "p:cSld"), "p:spTree")
	nv := add(tree, "p:nvGrpSpPr")
	add(nv, "p:cNvPr", "id", "1", "name", "")
	add(nv, "p:cNvGrpSpPr")
	add(nv, "p:nvPr")
	gp := add(tree, "p:grpSpPr")
	x := add(gp, "a:xfrm")
	add(x, "a:off", "x", "0", "y", "0")
	add(x, "a:ext", "cx", "0", "cy", "0")
	add(x, "a:chOff", "x", "0", "y", "0")
	add(x, "a:chExt", "cx", "0", "cy", "0")
	add(add(root, "p:clrMapOvr"), "a:masterClrMapping")
	return root
}

func loadSlide(pres *Presentation, part string, id int) (*Slide, error) {
	doc, err := pres.pkg.XML(part)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	tree := child(child(root, "cSld"), "spTree")
	if tree == nil {
		return nil, fmt.Errorf("slide %s: missing shape tree", part)
	}
	ensureNamespaces(root)
	rels, err := pres.pkg.Rels(part)
	if err != nil {
		return nil, err
	}
	s := &Slide{pres: pres, id: id, part: part, root: root, tree: tree, rels: rels}
	if lr := rels.ByType(RelSlideLayout); len(lr) > 0 {
		s.layout = pres.layoutByPart[lr[0].Target]
	}
	for _, c := range tree.ChildElements() {
		if isShapeElement(c) {
			s.shapes = append(s.shapes, loadShape(c))
		}
	}
	return s, nil
}

// ID is the presentation-wide slide id (p:sldId/@id); 0 when detached.
func (s *Slide) ID() int { return s.id }

// Part is the package part name of the slide.
func (s *Slide) Part() string { return s.part }

// Layout returns the slide layout, or nil.
func (s *Slide) Layout() *Layout { return s.layout }

// Shapes returns the top-level shapes in order. The slice is owned by the
// slide; use Append and Remove to change it.
func (s *Slide) Shapes() []*Shape { return s.shapes }

// Len is the number of top-level shapes.
func (s *Slide) Len() int { return len(s.shapes) }

// Shape returns the top-level shape at index i.
func (s *Slide) Shape(i int) (*Shape, error) {
	if err := checkIndex("shape", i, len(s.shapes)); err != nil {
		return nil, err
	}
	return s.shapes[i], nil
}

// Append adds shapes at the end (top of z-order).
func (s *Slide) Append(shapes ...*Shape) {
	s.shapes = append(s.shapes, shapes...)
}

// Remove deletes sh from the top level and reports whether it was present.
func (s *Slide) Remove(sh *Shape) bool {
	i := s.IndexOf(sh)
	if i < 0 {
		return false
	}
	s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
	return true
}

// IndexOf returns the top-level index of sh, or -1.
func (s *Slide) IndexOf(sh *Shape) int {
	for i, c := range s.shapes {
		if c == sh {
			return i
		}
	}
	return -1
}

// FindByID returns the first shape, at any depth, with the given id.
func (s *Slide) FindByID(id int) *Shape {
	var found *Shape
	for _, sh := range s.shapes {
		sh.Walk(func(c *Shape) {
			if found == nil && c.ID() == id {
				found = c
			}
		})
	}
	return found
}

// NextShapeID returns one more than the largest id used on the slide.
func (s *Slide) NextShapeID() int {
	maxID := intAttr(child(child(s.tree, "nvGrpSpPr"), "cNvPr"), "id", 1)
	for _, sh := range s.shapes {
		sh.Walk(func(c *Shape) {
			if id := c.ID(); id > maxID {
				maxID = id
			}
		})
	}
	return maxID + 1
}

// Title returns the title placeholder, or nil.
func (s *Slide) Title() *Shape {
	for _, sh := range s.shapes {
		if sh.IsTitle() {
			return sh
		}
	}
	return nil
}

// EffectiveTransform is sh.Transform, or for a placeholder without its own
// offset, the geometry inherited from the layout and then the master.
func (s *Slide) EffectiveTransform(sh *Shape) Transform {
	if sh.Transform.Offset != nil || s.layout == nil {
		return sh.Transform
	}
	ph, ok := sh.Placeholder()
	if !ok {
		return sh.Transform
	}
	if t, ok := s.layout.inherited(ph); ok {
		return t
	}
	return sh.Transform
}

// Sync writes the model (order, parentage, transforms) into the slide XML.
func (s *Slide) Sync() {
	syncContainer(s.tree, s.shapes)
}

func syncContainer(container *etree.Element, shapes []*Shape) {
	for _, c := range container.ChildElements() {
		if isShapeElement(c) {
			container.RemoveChild(c)
		}
	}
	for _, sh := range shapes {
		detach(sh.el)
		writeTransform(sh)
		if sh.Kind == Group {
			syncContainer(sh.el, sh.Children)
		}
		insertBefore(container, sh.el, "extLst")
	}
}
