package deck

import (
	"strconv"

	"github.com/beevik/etree"
)

// Namespaces used by the parts this package writes.
const (
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsC   = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT  = "http://schemas.openxmlformats.org/package/2006/content-types"

	uriChart = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	uriTable = "http://schemas.openxmlformats.org/drawingml/2006/table"
)

const xmlDecl = `version="1.0" encoding="UTF-8" standalone="yes"`

func newDocument(root *etree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlDecl)
	doc.SetRoot(root)
	return doc
}

// el builds a detached element; attrs are key/value pairs.
func el(tag string, attrs ...string) *etree.Element {
	e := etree.NewElement(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		e.CreateAttr(attrs[i], attrs[i+1])
	}
	return e
}

// add appends a new child element and returns it.
func add(parent *etree.Element, tag string, attrs ...string) *etree.Element {
	c := el(tag, attrs...)
	parent.AddChild(c)
	return c
}

// child returns the first child element with the given local name,
// regardless of prefix.
func child(e *etree.Element, local string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if c.Tag == local {
			return c
		}
	}
	return nil
}

func children(e *etree.Element, local string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Tag == local {
			out = append(out, c)
		}
	}
	return out
}

// attr matches prefix and key exactly; etree's SelectAttr lets an unprefixed
// key match "r:id".
func attr(e *etree.Element, space, key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attr {
		if a.Space == space && a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func setAttr(e *etree.Element, space, key, value string) {
	for i := range e.Attr {
		if e.Attr[i].Space == space && e.Attr[i].Key == key {
			e.Attr[i].Value = value
			return
		}
	}
	if space != "" {
		e.CreateAttr(space+":"+key, value)
		return
	}
	e.CreateAttr(key, value)
}

func intAttr(e *etree.Element, key string, def int) int {
	v, ok := attr(e, "", key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// insertAfter places c right after the last existing child whose local name
// is one of after, or first when none is present.
func insertAfter(parent, c *etree.Element, after ...string) {
	idx := 0
	for _, e := range parent.ChildElements() {
		for _, name := range after {
			if e.Tag == name {
				idx = e.Index() + 1
			}
		}
	}
	parent.InsertChildAt(idx, c)
}

// insertBefore places c before the first child whose local name is one of
// before, or last when none is present.
func insertBefore(parent, c *etree.Element, before ...string) {
	for _, e := range parent.ChildElements() {
		for _, name := range before {
			if e.Tag == name {
				parent.InsertChildAt(e.Index(), c)
				return
			}
		}
	}
	parent.AddChild(c)
}

func detach(e *etree.Element) {
	if p := e.Parent(); p != nil {
		p.RemoveChild(e)
	}
}

// ensureNamespaces declares the prefixes new elements are written with.
func ensureNamespaces(root *etree.Element) {
	for _, ns := range [][2]string{{"a", nsA}, {"r", nsR}, {"p", nsP}} {
		if _, ok := attr(root, "xmlns", ns[0]); !ok {
			root.CreateAttr("xmlns:"+ns[0], ns[1])
		}
	}
}
