package deck

import (
	"fmt"

	"github.com/beevik/etree"
)

// Layout is a slide layout of the first slide master.
type Layout struct {
	Index int
	Name  string

	part   string
	root   *etree.Element
	shapes []*Shape
	master *Layout
}

func loadLayout(pkg *Package, part string) (*Layout, error) {
	doc, err := pkg.XML(part)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	cSld := child(root, "cSld")
	tree := child(cSld, "spTree")
	if tree == nil {
		return nil, fmt.Errorf("layout %s: missing shape tree", part)
	}
	l := &Layout{part: part, root: root, Name: cSld.SelectAttrValue("name", "")}
	for _, c := range tree.ChildElements() {
		if isShapeElement(c) {
			l.shapes = append(l.shapes, loadShape(c))
		}
	}
	return l, nil
}

// Part is the package part name.
func (l *Layout) Part() string { return l.part }

// Placeholders lists the layout's placeholder shapes with their geometry.
func (l *Layout) Placeholders() []Placeholder {
	var out []Placeholder
	for _, sh := range l.placeholderShapes() {
		ph, _ := sh.Placeholder()
		ph.Transform = sh.Transform
		out = append(out, ph)
	}
	return out
}

func (l *Layout) placeholderShapes() []*Shape {
	var out []*Shape
	for _, sh := range l.shapes {
		if _, ok := sh.Placeholder(); ok {
			out = append(out, sh)
		}
	}
	return out
}

// inherited resolves placeholder geometry: matching layout placeholder by
// idx, then by type, then the master placeholder of the same family.
func (l *Layout) inherited(ph Placeholder) (Transform, bool) {
	lp := l.match(ph)
	if lp != nil && lp.Transform.Offset != nil {
		return lp.Transform, true
	}
	if l.master == nil {
		return Transform{}, false
	}
	if lp != nil {
		ph, _ = lp.Placeholder()
	}
	for _, mp := range l.master.placeholderShapes() {
		mph, _ := mp.Placeholder()
		if masterType(mph.Type) == masterType(ph.Type) && mp.Transform.Offset != nil {
			return mp.Transform, true
		}
	}
	return Transform{}, false
}

func (l *Layout) match(ph Placeholder) *Shape {
	shapes := l.placeholderShapes()
	if ph.Idx > 0 {
		for _, sh := range shapes {
			if p, _ := sh.Placeholder(); p.Idx == ph.Idx {
				return sh
			}
		}
	}
	for _, sh := range shapes {
		if p, _ := sh.Placeholder(); masterType(p.Type) == masterType(ph.Type) {
			return sh
		}
	}
	return nil
}

func masterType(t string) string {
	switch t {
	case "title", "ctrTitle":
		return "title"
	case "dt", "ftr", "sldNum", "hdr":
		return t
	}
	return "body"
}
