package deck

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// xfrmOf returns the transform element of a shape element, or nil.
func xfrmOf(e *etree.Element) *etree.Element {
	switch e.Tag {
	case "grpSp":
		return child(child(e, "grpSpPr"), "xfrm")
	case "graphicFrame":
		return child(e, "xfrm")
	case "sp", "pic", "cxnSp":
		return child(child(e, "spPr"), "xfrm")
	}
	return nil
}

func decodeXfrm(x *etree.Element) Transform {
	var t Transform
	if x == nil {
		return t
	}
	var err error
	if t.Offset, err = decodePoint(x, "off", "x", "y"); err != nil {
		t.Err = err
	}
	if t.ChildOffset, err = decodePoint(x, "chOff", "x", "y"); err != nil && t.Err == nil {
		t.Err = err
	}
	var p *Point
	if p, err = decodePoint(x, "ext", "cx", "cy"); err != nil && t.Err == nil {
		t.Err = err
	} else if p != nil {
		t.Size = &Size{p.X, p.Y}
	}
	if p, err = decodePoint(x, "chExt", "cx", "cy"); err != nil && t.Err == nil {
		t.Err = err
	} else if p != nil {
		t.ChildSize = &Size{p.X, p.Y}
	}
	return t
}

// decodePoint reads a pair of coordinate attributes. Absent attributes read
// as 0; an absent element yields nil.
func decodePoint(x *etree.Element, tag, kx, ky string) (*Point, error) {
	e := child(x, tag)
	if e == nil {
		return nil, nil
	}
	var p Point
	for _, f := range []struct {
		key string
		dst *int64
	}{{kx, &p.X}, {ky, &p.Y}} {
		v, ok := attr(e, "", f.key)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s/@%s: invalid coordinate %q", tag, f.key, v)
		}
		*f.dst = n
	}
	return &p, nil
}

// ensureXfrm returns the transform element of e, creating it (and its
// property container) in schema order when missing.
func ensureXfrm(e *etree.Element) *etree.Element {
	if x := xfrmOf(e); x != nil {
		return x
	}
	switch e.Tag {
	case "graphicFrame":
		x := el("p:xfrm")
		insertAfter(e, x, "nvGraphicFramePr")
		return x
	case "grpSp":
		pr := child(e, "grpSpPr")
		if pr == nil {
			pr = el("p:grpSpPr")
			insertAfter(e, pr, "nvGrpSpPr")
		}
		x := el("a:xfrm")
		pr.InsertChildAt(0, x)
		return x
	case "sp", "pic", "cxnSp":
		pr := child(e, "spPr")
		if pr == nil {
			pr = el("p:spPr")
			insertAfter(e, pr, "nvSpPr", "nvPicPr", "nvCxnSpPr", "blipFill")
		}
		x := el("a:xfrm")
		pr.InsertChildAt(0, x)
		return x
	}
	return nil
}

// writeTransform stores s.Transform on the element. Absent model values leave
// existing XML untouched; a shape with no transform at all is skipped.
func writeTransform(s *Shape) {
	t := s.Transform
	if t.empty() {
		return
	}
	x := ensureXfrm(s.el)
	if x == nil {
		return
	}
	type slot struct {
		tag, kx, ky string
		v           *Point
	}
	slots := []slot{
		{"off", "x", "y", t.Offset},
		{"ext", "cx", "cy", sizePoint(t.Size)},
		{"chOff", "x", "y", t.ChildOffset},
		{"chExt", "cx", "cy", sizePoint(t.ChildSize)},
	}
	var ordered []*etree.Element
	for _, sl := range slots {
		e := child(x, sl.tag)
		if e != nil {
			x.RemoveChild(e)
		}
		if sl.v != nil {
			if e == nil {
				e = el("a:" + sl.tag)
			}
			setAttr(e, "", sl.kx, strconv.FormatInt(sl.v.X, 10))
			setAttr(e, "", sl.ky, strconv.FormatInt(sl.v.Y, 10))
		}
		if e != nil {
			ordered = append(ordered, e)
		}
	}
	for i, e := range ordered {
		x.InsertChildAt(i, e)
	}
}

func sizePoint(s *Size) *Point {
	if s == nil {
		return nil
	}
	return &Point{X: s.Width, Y: s.Height}
}
