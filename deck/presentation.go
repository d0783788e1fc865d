package deck

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/beevik/etree"
)

// Presentation is an open .pptx document.
type Presentation struct {
	pkg     *Package
	part    string
	root    *etree.Element
	rels    *Rels
	slides  []*Slide
	layouts []*Layout

	layoutByPart map[string]*Layout
}

// Open reads a presentation from disk.
func Open(path string) (*Presentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(data)
}

// Read parses a presentation from bytes.
func Read(data []byte) (*Presentation, error) {
	pkg, err := ReadPackage(data)
	if err != nil {
		return nil, err
	}
	rootRels, err := pkg.Rels("")
	if err != nil {
		return nil, err
	}
	docs := rootRels.ByType(RelOfficeDocument)
	if len(docs) == 0 {
		return nil, fmt.Errorf("open presentation: main document relationship %w", ErrNotFound)
	}
	p := &Presentation{pkg: pkg, part: docs[0].Target, layoutByPart: map[string]*Layout{}}
	doc, err := pkg.XML(p.part)
	if err != nil {
		return nil, err
	}
	p.root = doc.Root()
	ensureNamespaces(p.root)
	if p.rels, err = pkg.Rels(p.part); err != nil {
		return nil, err
	}
	if err := p.loadMasters(); err != nil {
		return nil, err
	}
	for _, sid := range children(child(p.root, "sldIdLst"), "sldId") {
		rid, _ := attr(sid, "r", "id")
		rel, ok := p.rels.Get(rid)
		if !ok {
			return nil, fmt.Errorf("slide %s: relationship %w", rid, ErrNotFound)
		}
		s, err := loadSlide(p, rel.Target, intAttr(sid, "id", 0))
		if err != nil {
			return nil, err
		}
		p.slides = append(p.slides, s)
	}
	return p, nil
}

func (p *Presentation) loadMasters() error {
	for mi, mr := range p.rels.ByType(RelSlideMaster) {
		master, err := loadLayout(p.pkg, mr.Target)
		if err != nil {
			return err
		}
		mrels, err := p.pkg.Rels(mr.Target)
		if err != nil {
			return err
		}
		var targets []string
		if lst := child(master.root, "sldLayoutIdLst"); lst != nil {
			for _, lid := range children(lst, "sldLayoutId") {
				rid, _ := attr(lid, "r", "id")
				if rel, ok := mrels.Get(rid); ok {
					targets = append(targets, rel.Target)
				}
			}
		} else {
			for _, rel := range mrels.ByType(RelSlideLayout) {
				targets = append(targets, rel.Target)
			}
		}
		for _, t := range targets {
			l, err := loadLayout(p.pkg, t)
			if err != nil {
				return err
			}
			l.master = master
			p.layoutByPart[t] = l
			if mi == 0 {
				l.Index = len(p.layouts)
				p.layouts = append(p.layouts, l)
			}
		}
	}
	return nil
}

// Package exposes the underlying OPC container.
func (p *Presentation) Package() *Package { return p.pkg }

// Slides returns the slides in presentation order.
func (p *Presentation) Slides() []*Slide { return p.slides }

// SlideCount is the number of slides.
func (p *Presentation) SlideCount() int { return len(p.slides) }

// Slide returns the slide at index i.
func (p *Presentation) Slide(i int) (*Slide, error) {
	if err := checkIndex("slide", i, len(p.slides)); err != nil {
		return nil, err
	}
	return p.slides[i], nil
}

// Layouts returns the layouts of the first slide master.
func (p *Presentation) Layouts() []*Layout { return p.layouts }

// SlideSize is p:sldSz, or 10x7.5 inches when absent.
func (p *Presentation) SlideSize() Size {
	sz := child(p.root, "sldSz")
	if sz == nil {
		return Size{Inches(10), Inches(7.5)}
	}
	return Size{int64(intAttr(sz, "cx", 0)), int64(intAttr(sz, "cy", 0))}
}

// AddSlide appends a slide based on layout, cloning its placeholders
// (date, footer and slide number excluded).
func (p *Presentation) AddSlide(layout *Layout) (*Slide, error) {
	if layout == nil {
		return nil, fmt.Errorf("add slide: layout %w", ErrNotFound)
	}
	part := p.pkg.NextName("ppt/slides/slide%d.xml")
	root := newSlideRoot()
	p.pkg.PutXML(part, newDocument(root))

	srels, err := p.pkg.Rels(part)
	if err != nil {
		return nil, err
	}
	srels.Add(RelSlideLayout, layout.part)
	ct, err := p.pkg.ContentTypes()
	if err != nil {
		return nil, err
	}
	ct.Override(part, TypeSlidePart)

	rid := p.rels.Add(RelSlide, part)
	lst := child(p.root, "sldIdLst")
	if lst == nil {
		lst = el("p:sldIdLst")
		insertAfter(p.root, lst, "sldMasterIdLst", "notesMasterIdLst", "handoutMasterIdLst")
	}
	id := 255
	for _, sid := range children(lst, "sldId") {
		if n := intAttr(sid, "id", 0); n > id {
			id = n
		}
	}
	id++
	add(lst, "p:sldId", "id", strconv.Itoa(id), "r:id", rid)

	s, err := loadSlide(p, part, id)
	if err != nil {
		return nil, err
	}
	next := 2
	for _, lp := range layout.placeholderShapes() {
		ph, _ := lp.Placeholder()
		switch ph.Type {
		case "dt", "ftr", "sldNum":
			continue
		}
		s.Append(clonePlaceholder(lp, next))
		next++
	}
	p.slides = append(p.slides, s)
	return s, nil
}

// clonePlaceholder builds an empty slide placeholder that inherits geometry
// and formatting from the layout shape lp.
func clonePlaceholder(lp *Shape, id int) *Shape {
	sp := el("p:sp")
	nv := add(sp, "p:nvSpPr")
	add(nv, "p:cNvPr", "id", strconv.Itoa(id), "name", lp.Name())
	add(add(nv, "p:cNvSpPr"), "a:spLocks", "noGrp", "1")
	nvPr := add(nv, "p:nvPr")
	ph := add(nvPr, "p:ph")
	for _, a := range child(lp.nvPr(), "ph").Attr {
		if a.Key != "hasCustomPrompt" {
			ph.CreateAttr(a.FullKey(), a.Value)
		}
	}
	add(sp, "p:spPr")
	if child(lp.el, "txBody") != nil {
		body := add(sp, "p:txBody")
		add(body, "a:bodyPr")
		add(body, "a:lstStyle")
		add(body, "a:p")
	}
	return &Shape{el: sp}
}

// DeleteSlide removes the slide at index i. Its parts are dropped on save.
func (p *Presentation) DeleteSlide(i int) error {
	if err := checkIndex("slide", i, len(p.slides)); err != nil {
		return err
	}
	s := p.slides[i]
	for _, sid := range children(child(p.root, "sldIdLst"), "sldId") {
		rid, _ := attr(sid, "r", "id")
		if rel, ok := p.rels.Get(rid); ok && rel.Target == s.part {
			sid.Parent().RemoveChild(sid)
			p.rels.Remove(rid)
			break
		}
	}
	p.slides = append(p.slides[:i], p.slides[i+1:]...)
	return nil
}

// Bytes syncs every slide and serializes the package.
func (p *Presentation) Bytes() ([]byte, error) {
	for _, s := range p.slides {
		s.Sync()
	}
	var buf bytes.Buffer
	if err := p.pkg.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the presentation to path through a temporary file in the same
// directory.
func (p *Presentation) Save(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".slidekit-*.pptx")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
