package deck

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Relationship types.
const (
	RelOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RelSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RelSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	RelImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelChart          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart"
	RelPackage        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/package"
)

// Content types.
const (
	TypeSlidePart = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	TypeChartPart = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	TypeWorkbook  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const contentTypesName = "[Content_Types].xml"

// Package is an OPC container. Parts are kept as raw bytes until an XML view
// is requested; parsed parts are re-serialized on write.
type Package struct {
	order []string
	raw   map[string][]byte
	docs  map[string]*etree.Document
	rels  map[string]*Rels
}

// ReadPackage parses a zip archive.
func ReadPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	p := &Package{
		raw:  make(map[string][]byte, len(zr.File)),
		docs: make(map[string]*etree.Document),
		rels: make(map[string]*Rels),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		name := strings.TrimPrefix(f.Name, "/")
		p.order = append(p.order, name)
		p.raw[name] = b
	}
	if !p.Has(contentTypesName) {
		return nil, fmt.Errorf("open package: %s %w", contentTypesName, ErrNotFound)
	}
	return p, nil
}

// Has reports whether the part exists.
func (p *Package) Has(name string) bool {
	if _, ok := p.docs[name]; ok {
		return true
	}
	_, ok := p.raw[name]
	return ok
}

// XML returns the parsed part, parsing it on first use.
func (p *Package) XML(name string) (*etree.Document, error) {
	if doc, ok := p.docs[name]; ok {
		return doc, nil
	}
	b, ok := p.raw[name]
	if !ok {
		return nil, fmt.Errorf("part %s: %w", name, ErrNotFound)
	}
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parse %s: empty document", name)
	}
	p.docs[name] = doc
	return doc, nil
}

// Raw returns the bytes of a part that has not been parsed as XML.
func (p *Package) Raw(name string) ([]byte, bool) {
	b, ok := p.raw[name]
	return b, ok
}

// PutXML adds or replaces an XML part.
func (p *Package) PutXML(name string, doc *etree.Document) {
	p.track(name)
	delete(p.raw, name)
	p.docs[name] = doc
}

// PutRaw adds or replaces a binary part.
func (p *Package) PutRaw(name string, data []byte) {
	p.track(name)
	delete(p.docs, name)
	p.raw[name] = data
}

func (p *Package) track(name string) {
	if !p.Has(name) {
		p.order = append(p.order, name)
	}
}

// NextName returns pattern formatted with the smallest positive integer
// that does not name an existing part, e.g. "ppt/slides/slide%d.xml".
func (p *Package) NextName(pattern string) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf(pattern, n)
		if !p.Has(name) {
			return name
		}
	}
}

func relsName(source string) string {
	if source == "" {
		return "_rels/.rels"
	}
	dir, file := path.Split(source)
	return dir + "_rels/" + file + ".rels"
}

// Rels returns the relationships of source ("" for the package root),
// creating an empty set when the part has none.
func (p *Package) Rels(source string) (*Rels, error) {
	if r, ok := p.rels[source]; ok {
		return r, nil
	}
	name := relsName(source)
	var doc *etree.Document
	if p.Has(name) {
		d, err := p.XML(name)
		if err != nil {
			return nil, err
		}
		doc = d
	} else {
		doc = newDocument(el("Relationships", "xmlns", nsRel))
		p.PutXML(name, doc)
	}
	r := &Rels{source: source, root: doc.Root()}
	p.rels[source] = r
	return r, nil
}

// Write serializes the package as a zip archive. Only parts reachable from
// the package relationships are written, so dropping the last relationship
// to a part removes it.
func (p *Package) Write(w io.Writer) error {
	keep, err := p.reachable()
	if err != nil {
		return err
	}
	ct, err := p.ContentTypes()
	if err != nil {
		return err
	}
	ct.prune(keep)

	zw := zip.NewWriter(w)
	names := append([]string{contentTypesName}, p.order...)
	written := make(map[string]bool, len(names))
	for _, name := range names {
		if written[name] || !keep[name] && name != contentTypesName {
			continue
		}
		written[name] = true
		b, err := p.bytes(name)
		if err != nil {
			return err
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		if _, err := fw.Write(b); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return zw.Close()
}

func (p *Package) bytes(name string) ([]byte, error) {
	if doc, ok := p.docs[name]; ok {
		b, err := doc.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", name, err)
		}
		return b, nil
	}
	return p.raw[name], nil
}

func (p *Package) reachable() (map[string]bool, error) {
	keep := map[string]bool{}
	queue := []string{""}
	seen := map[string]bool{"": true}
	for len(queue) > 0 {
		src := queue[0]
		queue = queue[1:]
		if !p.Has(relsName(src)) {
			continue
		}
		keep[relsName(src)] = true
		rels, err := p.Rels(src)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels.All() {
			if rel.External || seen[rel.Target] || !p.Has(rel.Target) {
				continue
			}
			seen[rel.Target] = true
			keep[rel.Target] = true
			queue = append(queue, rel.Target)
		}
	}
	return keep, nil
}

// Rel is a resolved relationship. Internal targets are absolute part names.
type Rel struct {
	ID       string
	Type     string
	Target   string
	External bool
}

// Rels is the relationship set of one source part.
type Rels struct {
	source string
	root   *etree.Element
}

// All returns every relationship in document order.
func (r *Rels) All() []Rel {
	var out []Rel
	for _, e := range children(r.root, "Relationship") {
		rel := Rel{
			ID:   e.SelectAttrValue("Id", ""),
			Type: e.SelectAttrValue("Type", ""),
		}
		target := e.SelectAttrValue("Target", "")
		if e.SelectAttrValue("TargetMode", "") == "External" {
			rel.External = true
			rel.Target = target
		} else {
			rel.Target = resolveTarget(r.source, target)
		}
		out = append(out, rel)
	}
	return out
}

// Get returns the relationship with the given id.
func (r *Rels) Get(id string) (Rel, bool) {
	for _, rel := range r.All() {
		if rel.ID == id {
			return rel, true
		}
	}
	return Rel{}, false
}

// ByType returns the relationships of type t in document order.
func (r *Rels) ByType(t string) []Rel {
	var out []Rel
	for _, rel := range r.All() {
		if rel.Type == t {
			out = append(out, rel)
		}
	}
	return out
}

// Add creates a relationship to the absolute part name target and returns
// its id.
func (r *Rels) Add(relType, target string) string {
	used := map[string]bool{}
	for _, rel := range r.All() {
		used[rel.ID] = true
	}
	id := ""
	for n := 1; ; n++ {
		id = "rId" + strconv.Itoa(n)
		if !used[id] {
			break
		}
	}
	add(r.root, "Relationship", "Id", id, "Type", relType, "Target", relativeTarget(r.source, target))
	return id
}

// Remove deletes the relationship with the given id.
func (r *Rels) Remove(id string) bool {
	for _, e := range children(r.root, "Relationship") {
		if e.SelectAttrValue("Id", "") == id {
			r.root.RemoveChild(e)
			return true
		}
	}
	return false
}

func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

func relativeTarget(source, target string) string {
	if source == "" {
		return target
	}
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(target, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var parts []string
	for range from[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[i:]...)
	return strings.Join(parts, "/")
}

// ContentTypes edits [Content_Types].xml.
type ContentTypes struct {
	root *etree.Element
}

// ContentTypes returns the package content type table.
func (p *Package) ContentTypes() (*ContentTypes, error) {
	doc, err := p.XML(contentTypesName)
	if err != nil {
		return nil, err
	}
	return &ContentTypes{root: doc.Root()}, nil
}

// Override registers the content type of a single part.
func (c *ContentTypes) Override(part, contentType string) {
	name := "/" + part
	for _, e := range children(c.root, "Override") {
		if e.SelectAttrValue("PartName", "") == name {
			setAttr(e, "", "ContentType", contentType)
			return
		}
	}
	add(c.root, "Override", "PartName", name, "ContentType", contentType)
}

// Default registers the content type for a file extension if none is set.
func (c *ContentTypes) Default(ext, contentType string) {
	ext = strings.ToLower(ext)
	for _, e := range children(c.root, "Default") {
		if strings.EqualFold(e.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	d := el("Default", "Extension", ext, "ContentType", contentType)
	insertAfter(c.root, d, "Default")
}

// Lookup returns the content type of part.
func (c *ContentTypes) Lookup(part string) (string, bool) {
	name := "/" + part
	for _, e := range children(c.root, "Override") {
		if e.SelectAttrValue("PartName", "") == name {
			return e.SelectAttrValue("ContentType", ""), true
		}
	}
	ext := strings.TrimPrefix(path.Ext(part), ".")
	for _, e := range children(c.root, "Default") {
		if strings.EqualFold(e.SelectAttrValue("Extension", ""), ext) {
			return e.SelectAttrValue("ContentType", ""), true
		}
	}
	return "", false
}

func (c *ContentTypes) prune(keep map[string]bool) {
	for _, e := range children(c.root, "Override") {
		if !keep[strings.TrimPrefix(e.SelectAttrValue("PartName", ""), "/")] {
			c.root.RemoveChild(e)
		}
	}
}

// Parts lists the part names, sorted.
func (p *Package) Parts() []string {
	names := make([]string, 0, len(p.order))
	for _, n := range p.order {
		if p.Has(n) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
