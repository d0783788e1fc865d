// Package decktest builds small .pptx fixtures for tests: one master, two
// layouts ("Title Slide", "Title and Content") and slides whose shape trees
// are given as XML fragments.
package decktest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const ns = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

const decl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const relsNS = `xmlns="http://schemas.openxmlformats.org/package/2006/relationships"`

const relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

// TextBox is a text box leaf with a transform.
func TextBox(id int, name, text string, x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`+
		`<p:txBody><a:bodyPr/><a:lstStyle/>%s</p:txBody></p:sp>`,
		id, name, x, y, cx, cy, paragraphs(text))
}

// Rect is a leaf without a text body.
func Rect(id int, name string, x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:sp>`,
		id, name, x, y, cx, cy)
}

// Picture is a picture leaf referencing a relationship that need not exist.
func Picture(id int, name string, x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="rId99"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		id, name, x, y, cx, cy)
}

// Title is a title placeholder without its own geometry.
func Title(id int, text string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Title %d"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>`+
		`<p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr><p:spPr/>`+
		`<p:txBody><a:bodyPr/><a:lstStyle/>%s</p:txBody></p:sp>`, id, id-1, paragraphs(text))
}

// Xfrm is a group transform with offset (x, y) and child origin (chx, chy).
// Extents are fixed at 1 inch.
func Xfrm(x, y, chx, chy int64) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="914400" cy="914400"/>`+
		`<a:chOff x="%d" y="%d"/><a:chExt cx="914400" cy="914400"/></a:xfrm>`, x, y, chx, chy)
}

// Group wraps children with the given xfrm fragment (may be "").
func Group(id int, name, xfrm string, children ...string) string {
	return fmt.Sprintf(`<p:grpSp><p:nvGrpSpPr><p:cNvPr id="%d" name="%s"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`+
		`<p:grpSpPr>%s</p:grpSpPr>%s</p:grpSp>`, id, name, xfrm, strings.Join(children, ""))
}

func paragraphs(text string) string {
	if text == "" {
		return "<a:p/>"
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, `<a:p><a:r><a:rPr lang="en-US" sz="1800" b="1"><a:latin typeface="Arial"/></a:rPr><a:t>%s</a:t></a:r></a:p>`, line)
	}
	return b.String()
}

// Slide is the shape tree of one slide and the layout it uses (1-based).
type Slide struct {
	Layout int
	Shapes []string
}

// On builds a slide using the "Title and Content" layout.
func On(shapes ...string) Slide {
	return Slide{Layout: 2, Shapes: shapes}
}

// Bytes returns the .pptx archive.
func Bytes(slides ...Slide) []byte {
	parts := map[string]string{}
	var order []string
	put := func(name, body string) {
		order = append(order, name)
		parts[name] = decl + body
	}

	var overrides, sldIDs, presRels strings.Builder
	overrides.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	overrides.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	overrides.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	overrides.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout2.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	overrides.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	presRels.WriteString(`<Relationship Id="rId1" Type="` + relBase + `slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	presRels.WriteString(`<Relationship Id="rId2" Type="` + relBase + `theme" Target="theme/theme1.xml"/>`)

	var slideParts [][2]string
	for i, s := range slides {
		n := i + 1
		layout := s.Layout
		if layout != 1 {
			layout = 2
		}
		fmt.Fprintf(&overrides, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, n)
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="%sslide" Target="slides/slide%d.xml"/>`, n+2, relBase, n)
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="rId%d"/>`, 255+n, n+2)
		slideParts = append(slideParts,
			[2]string{fmt.Sprintf("ppt/slides/slide%d.xml", n), `<p:sld ` + ns + `><p:cSld><p:spTree>` + treeHeader + strings.Join(s.Shapes, "") + `</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`},
			[2]string{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), `<Relationships ` + relsNS + `><Relationship Id="rId1" Type="` + relBase + `slideLayout" Target="../slideLayouts/slideLayout` + fmt.Sprint(layout) + `.xml"/></Relationships>`},
		)
	}

	put("[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+overrides.String()+`</Types>`)
	put("_rels/.rels", `<Relationships `+relsNS+`><Relationship Id="rId1" Type="`+relBase+`officeDocument" Target="ppt/presentation.xml"/></Relationships>`)
	put("ppt/presentation.xml", `<p:presentation `+ns+`><p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
		`<p:sldIdLst>`+sldIDs.String()+`</p:sldIdLst><p:sldSz cx="9144000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`)
	put("ppt/_rels/presentation.xml.rels", `<Relationships `+relsNS+`>`+presRels.String()+`</Relationships>`)
	put("ppt/slideMasters/slideMaster1.xml", master)
	put("ppt/slideMasters/_rels/slideMaster1.xml.rels", `<Relationships `+relsNS+`>`+
		`<Relationship Id="rId1" Type="`+relBase+`slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`+
		`<Relationship Id="rId2" Type="`+relBase+`slideLayout" Target="../slideLayouts/slideLayout2.xml"/>`+
		`<Relationship Id="rId3" Type="`+relBase+`theme" Target="../theme/theme1.xml"/></Relationships>`)
	put("ppt/slideLayouts/slideLayout1.xml", layoutTitle)
	put("ppt/slideLayouts/_rels/slideLayout1.xml.rels", layoutRels)
	put("ppt/slideLayouts/slideLayout2.xml", layoutContent)
	put("ppt/slideLayouts/_rels/slideLayout2.xml.rels", layoutRels)
	put("ppt/theme/theme1.xml", `<a:theme `+ns+` name="Office Theme"><a:themeElements/></a:theme>`)
	for _, sp := range slideParts {
		put(sp[0], sp[1])
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Write stores the archive in a temporary directory and returns its path.
func Write(t testing.TB, slides ...Slide) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.pptx")
	if err := os.WriteFile(path, Bytes(slides...), 0o644); err != nil {
		t.Fatalf("decktest: %v", err)
	}
	return path
}

// PNG encodes a blank w x h image.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

const treeHeader = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

const layoutRels = `<Relationships ` + relsNS + `><Relationship Id="rId1" Type="` + relBase + `slideMaster" Target="../slideMasters/slideMaster1.xml"/></Relationships>`

func placeholder(id int, name, ph, xfrm string) string {
	spPr := "<p:spPr/>"
	if xfrm != "" {
		spPr = "<p:spPr>" + xfrm + "</p:spPr>"
	}
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>%s</p:nvPr></p:nvSpPr>%s`+
		`<p:txBody><a:bodyPr/><a:lstStyle/><a:p/></p:txBody></p:sp>`, id, name, ph, spPr)
}

func xfrm(x, y, cx, cy int64) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, x, y, cx, cy)
}

// Master placeholder geometry, in EMUs.
var (
	MasterTitleOffset = [2]int64{457200, 274638}
	MasterBodyOffset  = [2]int64{457200, 1600200}
)

var master = `<p:sldMaster ` + ns + `><p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>` + treeHeader +
	placeholder(2, "Title Placeholder 1", `<p:ph type="title"/>`, xfrm(MasterTitleOffset[0], MasterTitleOffset[1], 8229600, 1143000)) +
	placeholder(3, "Text Placeholder 2", `<p:ph type="body" idx="1"/>`, xfrm(MasterBodyOffset[0], MasterBodyOffset[1], 8229600, 4525963)) +
	placeholder(4, "Date Placeholder 3", `<p:ph type="dt" sz="half" idx="2"/>`, xfrm(457200, 6356350, 2133600, 365125)) +
	`</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/><p:sldLayoutId id="2147483650" r:id="rId2"/></p:sldLayoutIdLst></p:sldMaster>`

// The title slide layout positions its own placeholders; the content layout
// inherits all geometry from the master.
var layoutTitle = `<p:sldLayout ` + ns + ` type="title" preserve="1"><p:cSld name="Title Slide"><p:spTree>` + treeHeader +
	placeholder(2, "Title 1", `<p:ph type="ctrTitle"/>`, xfrm(685800, 2130425, 7772400, 1470025)) +
	placeholder(3, "Subtitle 2", `<p:ph type="subTitle" idx="1"/>`, xfrm(1371600, 3886200, 6400800, 1752600)) +
	placeholder(4, "Date Placeholder 3", `<p:ph type="dt" sz="half" idx="10"/>`, "") +
	`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`

var layoutContent = `<p:sldLayout ` + ns + ` type="obj" preserve="1"><p:cSld name="Title and Content"><p:spTree>` + treeHeader +
	placeholder(2, "Title 1", `<p:ph type="title"/>`, "") +
	placeholder(3, "Content Placeholder 2", `<p:ph idx="1"/>`, "") +
	`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`
