package ungroup

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hazyhaar/slidekit/deck"
	"github.com/hazyhaar/slidekit/deck/decktest"
)

func quiet() *Engine {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func group(id int, off, chOff *deck.Point, children ...*deck.Shape) *deck.Shape {
	return deck.NewGroup(id, "Group", deck.Transform{Offset: off, ChildOffset: chOff}, children...)
}

func text(id int, s string, x, y int64) *deck.Shape {
	return deck.NewTextBox(id, "Text", s, deck.Point{X: x, Y: y}, deck.Size{Width: 10, Height: 5})
}

func rect(id int, x, y int64) *deck.Shape {
	return deck.NewRect(id, "Rect", deck.Point{X: x, Y: y}, deck.Size{Width: 10, Height: 5})
}

func offset(t *testing.T, s *deck.Shape) deck.Point {
	t.Helper()
	p, ok := s.Transform.Origin()
	if !ok {
		t.Fatalf("shape %d has no offset", s.ID())
	}
	return p
}

func TestFlatten_SingleGroup(t *testing.T) {
	l := text(3, "Hi", 10, 10)
	p := rect(4, 20, 20)
	g := group(2, deck.Pt(100, 50), deck.Pt(0, 0), l, p)
	s := deck.NewSlide(g)

	res, err := quiet().Flatten(s)
	if err != nil {
		t.Fatal(err)
	}
	if res.GroupsFlattened != 1 || res.ShapesExtracted != 2 {
		t.Fatalf("result = %+v", res)
	}
	if got := offset(t, l); got != (deck.Point{X: 110, Y: 60}) {
		t.Errorf("L = %+v", got)
	}
	if got := offset(t, p); got != (deck.Point{X: 120, Y: 70}) {
		t.Errorf("P = %+v", got)
	}
	if s.IndexOf(g) != -1 || s.Len() != 2 {
		t.Errorf("group still present, len %d", s.Len())
	}
}

func TestFlatten_NestedGroupLeavesSlideUntouched(t *testing.T) {
	inner := group(5, deck.Pt(1, 1), deck.Pt(0, 0), text(6, "deep", 3, 3))
	nested := group(4, deck.Pt(10, 10), deck.Pt(0, 0), inner)
	flat := group(2, deck.Pt(100, 100), deck.Pt(0, 0), text(3, "flat", 1, 1))
	s := deck.NewSlide(flat, nested)

	res, err := quiet().Flatten(s)
	if !errors.Is(err, ErrNestedGroup) {
		t.Fatalf("err = %v, want ErrNestedGroup", err)
	}
	var ne *NestedGroupError
	if !errors.As(err, &ne) || ne.GroupID != 4 || ne.ChildID != 5 {
		t.Errorf("error = %#v", ne)
	}
	if res != (Result{}) {
		t.Errorf("result = %+v", res)
	}
	if s.Len() != 2 || s.Shapes()[0] != flat || s.Shapes()[1] != nested {
		t.Fatal("top-level sequence changed")
	}
	if got := offset(t, flat.Children[0]); got != (deck.Point{X: 1, Y: 1}) {
		t.Errorf("compliant group child moved to %+v", got)
	}
	if len(flat.Children) != 1 {
		t.Error("compliant group lost children")
	}
}

func TestFlatten_Idempotent(t *testing.T) {
	s := deck.NewSlide(
		group(2, deck.Pt(5, 5), deck.Pt(0, 0), text(3, "a", 0, 0)),
		group(4, deck.Pt(5, 5), deck.Pt(0, 0), rect(5, 0, 0)),
	)
	e := quiet()
	if res, err := e.Flatten(s); err != nil || res.GroupsFlattened != 1 {
		t.Fatalf("first = %+v, %v", res, err)
	}
	res, err := e.Flatten(s)
	if err != nil || res.GroupsFlattened != 0 || res.ShapesExtracted != 0 {
		t.Fatalf("second = %+v, %v", res, err)
	}
}

func TestFlatten_PositionComposition(t *testing.T) {
	tests := []struct {
		g, o, c, want deck.Point
	}{
		{deck.Point{X: 0, Y: 0}, deck.Point{X: 0, Y: 0}, deck.Point{X: 7, Y: 9}, deck.Point{X: 7, Y: 9}},
		{deck.Point{X: 1000, Y: 2000}, deck.Point{X: 100, Y: 200}, deck.Point{X: 150, Y: 260}, deck.Point{X: 1050, Y: 2060}},
		{deck.Point{X: 914400, Y: 457200}, deck.Point{X: 914400, Y: 914400}, deck.Point{X: 0, Y: 0}, deck.Point{X: 0, Y: -457200}},
		{deck.Point{X: -50, Y: 30}, deck.Point{X: 10, Y: -10}, deck.Point{X: 10, Y: -10}, deck.Point{X: -50, Y: 30}},
	}
	for _, tt := range tests {
		leaf := text(3, "x", tt.c.X, tt.c.Y)
		g, o := tt.g, tt.o
		s := deck.NewSlide(group(2, &g, &o, leaf))
		if _, err := quiet().Flatten(s); err != nil {
			t.Fatal(err)
		}
		if got := offset(t, leaf); got != tt.want {
			t.Errorf("g=%+v o=%+v c=%+v: got %+v, want %+v", tt.g, tt.o, tt.c, got, tt.want)
		}
		if *leaf.Transform.Size != (deck.Size{Width: 10, Height: 5}) {
			t.Errorf("size changed to %+v", *leaf.Transform.Size)
		}
	}
}

func TestFlatten_SkipsGroupsWithoutText(t *testing.T) {
	r := rect(3, 4, 4)
	blank := text(5, "  \n ", 6, 6)
	plain := group(2, deck.Pt(100, 100), deck.Pt(0, 0), r)
	spaces := group(4, deck.Pt(100, 100), deck.Pt(0, 0), blank)
	s := deck.NewSlide(plain, spaces)

	res, err := quiet().Flatten(s)
	if err != nil {
		t.Fatal(err)
	}
	if res.GroupsFlattened != 0 {
		t.Fatalf("result = %+v", res)
	}
	if s.Len() != 2 || len(plain.Children) != 1 || len(spaces.Children) != 1 {
		t.Fatal("groups without text must stay grouped")
	}
	if got := offset(t, r); got != (deck.Point{X: 4, Y: 4}) {
		t.Errorf("child offset changed to %+v", got)
	}
}

func TestFlatten_CountsAndOrder(t *testing.T) {
	top := rect(2, 0, 0)
	a1, a2, a3 := text(4, "a", 0, 0), rect(5, 1, 1), rect(6, 2, 2)
	b1, b2 := rect(8, 0, 0), text(9, "b", 1, 1)
	ga := group(3, deck.Pt(10, 10), deck.Pt(0, 0), a1, a2, a3)
	gb := group(7, deck.Pt(20, 20), deck.Pt(0, 0), b1, b2)
	gc := group(10, deck.Pt(30, 30), deck.Pt(0, 0), rect(11, 0, 0))
	s := deck.NewSlide(ga, top, gb, gc)

	res, err := quiet().Flatten(s)
	if err != nil {
		t.Fatal(err)
	}
	if res.GroupsFlattened != 2 || res.ShapesExtracted != 5 {
		t.Fatalf("result = %+v", res)
	}
	want := []*deck.Shape{top, gc, a1, a2, a3, b1, b2}
	got := s.Shapes()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got id %d, want id %d", i, got[i].ID(), want[i].ID())
		}
	}
}

func TestFlatten_MissingTransformFallback(t *testing.T) {
	var logs bytes.Buffer
	e := New(slog.New(slog.NewJSONHandler(&logs, nil)))

	c1 := text(3, "x", 15, 25)
	c2 := text(5, "y", 7, 8)
	s := deck.NewSlide(
		group(2, nil, nil, c1),
		group(4, deck.Pt(100, 100), nil, c2),
	)
	res, err := e.Flatten(s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Approximated != 2 || res.GroupsFlattened != 2 {
		t.Fatalf("result = %+v", res)
	}
	if got := offset(t, c1); got != (deck.Point{X: 15, Y: 25}) {
		t.Errorf("c1 = %+v, want local offset", got)
	}
	if got := offset(t, c2); got != (deck.Point{X: 107, Y: 108}) {
		t.Errorf("c2 = %+v", got)
	}
	if !strings.Contains(logs.String(), `"level":"WARN"`) || !strings.Contains(logs.String(), `"group_id":2`) {
		t.Errorf("fallback not logged: %s", logs.String())
	}
}

func TestFlatten_ChildWithoutOffset(t *testing.T) {
	c := deck.NewTextBox(3, "T", "x", deck.Point{}, deck.Size{})
	c.Transform = deck.Transform{}
	s := deck.NewSlide(group(2, deck.Pt(5, 5), deck.Pt(0, 0), c))
	if _, err := quiet().Flatten(s); err != nil {
		t.Fatal(err)
	}
	if c.Transform.Offset != nil {
		t.Error("child without offset should keep none")
	}
	if s.IndexOf(c) != 0 {
		t.Error("child should still be extracted")
	}
}

func TestFlatten_MalformedTransform(t *testing.T) {
	bad := text(3, "x", 0, 0)
	bad.Transform.Err = errors.New(`off/@x: invalid coordinate "abc"`)
	g := group(2, deck.Pt(5, 5), deck.Pt(0, 0), bad)
	s := deck.NewSlide(g)

	_, err := quiet().Flatten(s)
	if !errors.Is(err, ErrTransform) {
		t.Fatalf("err = %v", err)
	}
	if s.IndexOf(g) != 0 || len(g.Children) != 1 {
		t.Error("group must not be touched")
	}
}

func TestTextBearing(t *testing.T) {
	if TextBearing(text(2, "x", 0, 0)) {
		t.Error("leaf is not a group")
	}
	if !TextBearing(group(2, nil, nil, rect(3, 0, 0), text(4, " hi ", 0, 0))) {
		t.Error("group with text child should be text-bearing")
	}
	if TextBearing(group(2, nil, nil)) {
		t.Error("empty group")
	}
}

func TestFlatten_Document(t *testing.T) {
	data := decktest.Bytes(decktest.On(
		decktest.Rect(2, "Background", 0, 0, 100, 100),
		decktest.Group(3, "Callout", decktest.Xfrm(1000, 2000, 100, 200),
			decktest.TextBox(4, "Label", "Revenue", 150, 260, 400, 100),
			decktest.Picture(5, "Icon", 100, 200, 50, 50),
		),
	))
	p, err := deck.Read(data)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := p.Slide(0)
	res, err := quiet().Flatten(s)
	if err != nil || res.GroupsFlattened != 1 || res.ShapesExtracted != 2 {
		t.Fatalf("flatten = %+v, %v", res, err)
	}

	out, err := p.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	p2, err := deck.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	s2, _ := p2.Slide(0)
	if s2.Len() != 3 {
		t.Fatalf("shapes = %d", s2.Len())
	}
	for _, sh := range s2.Shapes() {
		if sh.IsGroup() {
			t.Fatal("group survived save")
		}
	}
	label, icon := s2.Shapes()[1], s2.Shapes()[2]
	if label.Name() != "Label" || label.Text() != "Revenue" {
		t.Errorf("label = %q %q", label.Name(), label.Text())
	}
	if got := offset(t, label); got != (deck.Point{X: 1050, Y: 2060}) {
		t.Errorf("label offset = %+v", got)
	}
	if icon.Type() != deck.TypePicture {
		t.Errorf("icon type = %s", icon.Type())
	}
	if got := offset(t, icon); got != (deck.Point{X: 1000, Y: 2000}) {
		t.Errorf("icon offset = %+v", got)
	}
}
