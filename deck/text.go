package deck

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Text returns the text of s with paragraphs joined by "\n". Shapes without
// a text body read as "".
func (s *Shape) Text() string {
	if s.Kind == Group {
		return ""
	}
	return bodyText(child(s.el, "txBody"))
}

// SetText replaces the text of a text-capable shape, one paragraph per line.
// Run formatting is dropped.
func (s *Shape) SetText(text string) bool {
	body := s.ensureBody()
	if body == nil {
		return false
	}
	setBodyText(body, text, nil, nil)
	return true
}

func (s *Shape) ensureBody() *etree.Element {
	if !s.HasTextFrame() {
		return nil
	}
	if body := child(s.el, "txBody"); body != nil {
		return body
	}
	body := el("p:txBody")
	add(body, "a:bodyPr")
	add(body, "a:lstStyle")
	add(body, "a:p")
	insertBefore(s.el, body, "extLst")
	return body
}

func bodyText(body *etree.Element) string {
	if body == nil {
		return ""
	}
	var paras []string
	for _, p := range children(body, "p") {
		var b strings.Builder
		for _, r := range p.ChildElements() {
			switch r.Tag {
			case "r", "fld":
				if t := child(r, "t"); t != nil {
					b.WriteString(t.Text())
				}
			case "br":
				b.WriteString("\n")
			}
		}
		paras = append(paras, b.String())
	}
	return strings.Join(paras, "\n")
}

// setBodyText replaces every paragraph of body. pPr and rPr, when given, are
// copied onto each new paragraph and run.
func setBodyText(body *etree.Element, text string, pPr, rPr *etree.Element) {
	for _, p := range children(body, "p") {
		body.RemoveChild(p)
	}
	for _, line := range strings.Split(text, "\n") {
		p := el("a:p")
		if pPr != nil {
			p.AddChild(pPr.Copy())
		}
		if line != "" {
			r := add(p, "a:r")
			if rPr != nil {
				r.AddChild(rPr.Copy())
			}
			add(r, "a:t").SetText(line)
		}
		insertBefore(body, p, "extLst")
	}
}

// Font is a set of run property overrides; nil fields are left alone.
type Font struct {
	Name   *string
	Size   *float64 // points
	Bold   *bool
	Italic *bool
}

func (f Font) empty() bool {
	return f.Name == nil && f.Size == nil && f.Bold == nil && f.Italic == nil
}

// TextEdit describes a formatted text replacement.
type TextEdit struct {
	Text string
	Font Font
	// Preserve keeps the first run's character formatting and the first
	// paragraph's alignment.
	Preserve bool
}

// ReplaceText applies edit to a text-capable shape.
func (s *Shape) ReplaceText(edit TextEdit) bool {
	body := s.ensureBody()
	if body == nil {
		return false
	}
	var pPr, rPr *etree.Element
	if edit.Preserve {
		if p := child(body, "p"); p != nil {
			if src := child(p, "pPr"); src != nil {
				pPr = src.Copy()
			}
			for _, r := range children(p, "r") {
				if src := child(r, "rPr"); src != nil {
					rPr = src.Copy()
				}
				break
			}
		}
	}
	if !edit.Font.empty() {
		if rPr == nil {
			rPr = el("a:rPr", "lang", "en-US")
		}
		applyFont(rPr, edit.Font)
	}
	setBodyText(body, edit.Text, pPr, rPr)
	return true
}

// FirstRunFont reports the explicit formatting of the first run.
func (s *Shape) FirstRunFont() Font {
	var f Font
	p := child(child(s.el, "txBody"), "p")
	r := child(p, "r")
	rPr := child(r, "rPr")
	if rPr == nil {
		return f
	}
	if latin := child(rPr, "latin"); latin != nil {
		name := latin.SelectAttrValue("typeface", "")
		f.Name = &name
	}
	if v, ok := attr(rPr, "", "sz"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			pt := float64(n) / 100
			f.Size = &pt
		}
	}
	if v, ok := attr(rPr, "", "b"); ok {
		b := v == "1" || v == "true"
		f.Bold = &b
	}
	if v, ok := attr(rPr, "", "i"); ok {
		i := v == "1" || v == "true"
		f.Italic = &i
	}
	return f
}

func applyFont(rPr *etree.Element, f Font) {
	if f.Size != nil {
		setAttr(rPr, "", "sz", strconv.Itoa(centipoints(*f.Size)))
	}
	if f.Bold != nil {
		setAttr(rPr, "", "b", boolAttr(*f.Bold))
	}
	if f.Italic != nil {
		setAttr(rPr, "", "i", boolAttr(*f.Italic))
	}
	if f.Name != nil {
		latin := child(rPr, "latin")
		if latin == nil {
			latin = el("a:latin")
			insertBefore(rPr, latin, "ea", "cs", "sym", "hlinkClick", "hlinkMouseOver", "rtl", "extLst")
		}
		setAttr(latin, "", "typeface", *f.Name)
	}
}

func boolAttr(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
