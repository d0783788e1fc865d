package deck

import "github.com/beevik/etree"

// Kind separates leaves from groups.
type Kind int

const (
	Leaf Kind = iota
	Group
)

func (k Kind) String() string {
	if k == Group {
		return "group"
	}
	return "leaf"
}

// ShapeType is the coarse classification reported to callers.
type ShapeType string

const (
	TypeTextFrame   ShapeType = "TextFrame"
	TypeTable       ShapeType = "Table"
	TypeChart       ShapeType = "Chart"
	TypePicture     ShapeType = "Picture"
	TypePlaceholder ShapeType = "Placeholder"
	TypeGroup       ShapeType = "Group"
	TypeConnector   ShapeType = "Connector"
	TypeUnknown     ShapeType = "Unknown"
)

// Shape is a node of a slide's shape tree. The model owns parentage, order
// and Transform; everything else (text, table cells, fills) lives on the
// backing XML element and is edited in place.
type Shape struct {
	Kind      Kind
	Transform Transform
	// Children is only used by groups.
	Children []*Shape

	el *etree.Element
}

// Element returns the backing DrawingML element.
func (s *Shape) Element() *etree.Element { return s.el }

// IsGroup reports whether s is a group.
func (s *Shape) IsGroup() bool { return s.Kind == Group }

// Tag is the local element name: sp, pic, cxnSp, graphicFrame, grpSp, ...
func (s *Shape) Tag() string { return s.el.Tag }

func (s *Shape) cNvPr() *etree.Element {
	for _, c := range s.el.ChildElements() {
		if len(c.Tag) > 2 && c.Tag[:2] == "nv" {
			return child(c, "cNvPr")
		}
	}
	return nil
}

func (s *Shape) nvPr() *etree.Element {
	for _, c := range s.el.ChildElements() {
		if len(c.Tag) > 2 && c.Tag[:2] == "nv" {
			return child(c, "nvPr")
		}
	}
	return nil
}

// ID is the cNvPr id, or 0 for shapes without one.
func (s *Shape) ID() int {
	return intAttr(s.cNvPr(), "id", 0)
}

// Name is the cNvPr name.
func (s *Shape) Name() string {
	if c := s.cNvPr(); c != nil {
		return c.SelectAttrValue("name", "")
	}
	return ""
}

// SetName renames the shape.
func (s *Shape) SetName(name string) {
	if c := s.cNvPr(); c != nil {
		setAttr(c, "", "name", name)
	}
}

// Placeholder describes a p:ph reference.
type Placeholder struct {
	Type      string // "obj" when the attribute is absent
	Idx       int
	Transform Transform
}

// Placeholder returns the placeholder reference of s, if any.
func (s *Shape) Placeholder() (Placeholder, bool) {
	ph := child(s.nvPr(), "ph")
	if ph == nil {
		return Placeholder{}, false
	}
	return Placeholder{
		Type: ph.SelectAttrValue("type", "obj"),
		Idx:  intAttr(ph, "idx", 0),
	}, true
}

// IsTitle reports whether s is a title or centered-title placeholder.
func (s *Shape) IsTitle() bool {
	ph, ok := s.Placeholder()
	return ok && (ph.Type == "title" || ph.Type == "ctrTitle")
}

// HasTextFrame reports whether s can hold text. Every p:sp can, even before
// its txBody is created.
func (s *Shape) HasTextFrame() bool {
	return s.el.Tag == "sp"
}

// HasChart reports whether s is a chart graphic frame.
func (s *Shape) HasChart() bool {
	return s.graphicDataURI() == uriChart
}

// HasTable reports whether s is a table graphic frame.
func (s *Shape) HasTable() bool {
	return s.graphicDataURI() == uriTable
}

func (s *Shape) graphicData() *etree.Element {
	if s.el.Tag != "graphicFrame" {
		return nil
	}
	return child(child(s.el, "graphic"), "graphicData")
}

func (s *Shape) graphicDataURI() string {
	gd := s.graphicData()
	if gd == nil {
		return ""
	}
	if uri := gd.SelectAttrValue("uri", ""); uri != "" {
		return uri
	}
	// Some producers omit uri; fall back to the payload element.
	switch {
	case child(gd, "tbl") != nil:
		return uriTable
	case child(gd, "chart") != nil:
		return uriChart
	}
	return ""
}

// Type classifies s the way get_slide_shapes reports it.
func (s *Shape) Type() ShapeType {
	switch {
	case s.Kind == Group:
		return TypeGroup
	case s.HasTextFrame():
		return TypeTextFrame
	case s.HasTable():
		return TypeTable
	case s.HasChart():
		return TypeChart
	}
	if _, ok := s.Placeholder(); ok {
		return TypePlaceholder
	}
	switch s.el.Tag {
	case "pic":
		return TypePicture
	case "cxnSp":
		return TypeConnector
	}
	return TypeUnknown
}

// Walk calls fn for s and every descendant, depth first.
func (s *Shape) Walk(fn func(*Shape)) {
	fn(s)
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

var shapeTags = map[string]bool{
	"sp":               true,
	"grpSp":            true,
	"graphicFrame":     true,
	"cxnSp":            true,
	"pic":              true,
	"contentPart":      true,
	"AlternateContent": true,
}

func isShapeElement(e *etree.Element) bool {
	return shapeTags[e.Tag]
}

// loadShape builds the model for el, recursing into groups so nesting stays
// visible.
func loadShape(e *etree.Element) *Shape {
	s := &Shape{el: e, Transform: decodeXfrm(xfrmOf(e))}
	if e.Tag == "grpSp" {
		s.Kind = Group
		for _, c := range e.ChildElements() {
			if isShapeElement(c) {
				s.Children = append(s.Children, loadShape(c))
			}
		}
	}
	return s
}
