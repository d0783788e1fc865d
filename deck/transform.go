package deck

// Point is an offset in EMUs.
type Point struct {
	X, Y int64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Size is an extent in EMUs.
type Size struct {
	Width, Height int64
}

// Transform is the positional data of a shape. Every field may be absent
// (nil) in legacy or hand-written documents. ChildOffset and ChildSize only
// exist on groups: ChildOffset is the origin of the space the children's
// offsets are expressed in.
//
// Err records a decode failure (non-numeric coordinates). The shape still
// loads; code that needs the geometry must check it.
type Transform struct {
	Offset      *Point
	Size        *Size
	ChildOffset *Point
	ChildSize   *Size
	Err         error
}

// Origin returns the offset, or (0,0) and false when it is absent.
func (t Transform) Origin() (Point, bool) {
	if t.Offset == nil {
		return Point{}, false
	}
	return *t.Offset, true
}

// ChildOrigin returns the child-space origin, or (0,0) and false when it is
// absent.
func (t Transform) ChildOrigin() (Point, bool) {
	if t.ChildOffset == nil {
		return Point{}, false
	}
	return *t.ChildOffset, true
}

func (t Transform) empty() bool {
	return t.Offset == nil && t.Size == nil && t.ChildOffset == nil && t.ChildSize == nil
}

// Pt is shorthand for &Point{x, y}.
func Pt(x, y int64) *Point { return &Point{X: x, Y: y} }

// Sz is shorthand for &Size{w, h}.
func Sz(w, h int64) *Size { return &Size{Width: w, Height: h} }
