package deck

import (
	"strconv"

	"github.com/beevik/etree"
)

// NewTextBox builds a text box shape. The text box is not placed on any slide.
func NewTextBox(id int, name, text string, off Point, size Size) *Shape {
	sp := el("p:sp")
	nv := add(sp, "p:nvSpPr")
	add(nv, "p:cNvPr", "id", strconv.Itoa(id), "name", name)
	add(nv, "p:cNvSpPr", "txBox", "1")
	add(nv, "p:nvPr")
	pr := add(sp, "p:spPr")
	add(add(pr, "a:prstGeom", "prst", "rect"), "a:avLst")
	add(pr, "a:noFill")
	body := add(sp, "p:txBody")
	add(add(body, "a:bodyPr", "wrap", "none"), "a:spAutoFit")
	add(body, "a:lstStyle")
	add(body, "a:p")
	s := &Shape{el: sp, Transform: Transform{Offset: &off, Size: &size}}
	if text != "" {
		s.SetText(text)
	}
	return s
}

// NewRect builds a rectangle auto shape without a text body.
func NewRect(id int, name string, off Point, size Size) *Shape {
	sp := el("p:sp")
	nv := add(sp, "p:nvSpPr")
	add(nv, "p:cNvPr", "id", strconv.Itoa(id), "name", name)
	add(nv, "p:cNvSpPr")
	add(nv, "p:nvPr")
	pr := add(sp, "p:spPr")
	add(add(pr, "a:prstGeom", "prst", "rect"), "a:avLst")
	return &Shape{el: sp, Transform: Transform{Offset: &off, Size: &size}}
}

// NewGroup builds a group holding children. t carries the group offset and
// child-space origin; either may be nil.
func NewGroup(id int, name string, t Transform, children ...*Shape) *Shape {
	g := el("p:grpSp")
	nv := add(g, "p:nvGrpSpPr")
	add(nv, "p:cNvPr", "id", strconv.Itoa(id), "name", name)
	add(nv, "p:cNvGrpSpPr")
	add(nv, "p:nvPr")
	add(g, "p:grpSpPr")
	return &Shape{Kind: Group, el: g, Transform: t, Children: children}
}

func newPicture(id int, name, descr, rid string, off Point, size Size) *Shape {
	pic := el("p:pic")
	nv := add(pic, "p:nvPicPr")
	add(nv, "p:cNvPr", "id", strconv.Itoa(id), "name", name, "descr", descr)
	add(add(nv, "p:cNvPicPr"), "a:picLocks", "noChangeAspect", "1")
	add(nv, "p:nvPr")
	fill := add(pic, "p:blipFill")
	add(fill, "a:blip", "r:embed", rid)
	add(add(fill, "a:stretch"), "a:fillRect")
	pr := add(pic, "p:spPr")
	add(add(pr, "a:prstGeom", "prst", "rect"), "a:avLst")
	return &Shape{el: pic, Transform: Transform{Offset: &off, Size: &size}}
}

// newGraphicFrame builds a frame around a graphicData payload.
func newGraphicFrame(id int, name, uri string, off Point, size Size) (*Shape, *etree.Element) {
	gf := el("p:graphicFrame")
	nv := add(gf, "p:nvGraphicFramePr")
	add(nv, "p:cNvPr", "id", strconv.Itoa(id), "name", name)
	cnv := add(nv, "p:cNvGraphicFramePr")
	if uri == uriTable {
		add(cnv, "a:graphicFrameLocks", "noGrp", "1")
	}
	add(nv, "p:nvPr")
	gd := add(add(gf, "a:graphic"), "a:graphicData", "uri", uri)
	return &Shape{el: gf, Transform: Transform{Offset: &off, Size: &size}}, gd
}

// AddTextBox appends a text box named "TextBox N".
func (s *Slide) AddTextBox(text string, off Point, size Size) *Shape {
	id := s.NextShapeID()
	sh := NewTextBox(id, "TextBox "+strconv.Itoa(id-1), text, off, size)
	s.Append(sh)
	return sh
}
