package geom

import "testing"

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 50, Width: 100, Height: 100}

	got := a.Intersect(b)
	want := Rect{X: 50, Y: 50, Width: 50, Height: 50}
	if got != want {
		t.Errorf("intersect = %+v, want %+v", got, want)
	}

	c := Rect{X: 200, Y: 200, Width: 10, Height: 10}
	if !a.Intersect(c).IsEmpty() {
		t.Error("disjoint rects should produce an empty intersection")
	}
	if a.Intersects(c) {
		t.Error("disjoint rects should not intersect")
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 10, Y: 10, Width: 20, Height: 20}
	b := Rect{X: 40, Y: 0, Width: 10, Height: 15}
	got := a.Union(b)
	want := Rect{X: 10, Y: 0, Width: 40, Height: 30}
	if got != want {
		t.Errorf("union = %+v, want %+v", got, want)
	}
	if a.Union(Rect{}) != a {
		t.Error("union with empty rect should be identity")
	}
}

func TestValueResolve(t *testing.T) {
	tests := []struct {
		name  string
		v     Value
		basis float64
		em    float64
		want  float64
	}{
		{"px", Px(42), 800, 16, 42},
		{"em", Em(2), 800, 16, 32},
		{"percent", Percent(50), 800, 16, 400},
		{"pt", Pt(72), 800, 16, 96},
		{"auto", Auto(), 800, 16, 0},
	}
	for _, tt := range tests {
		if got := tt.v.Resolve(tt.basis, tt.em); got != tt.want {
			t.Errorf("%s: resolve = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEdgeValuesResolve(t *testing.T) {
	e := EdgeValues{Top: Px(10), Right: Percent(10), Bottom: Auto(), Left: Em(1)}
	got := e.Resolve(200, 16)
	want := Edges{Top: 10, Right: 20, Bottom: 0, Left: 16}
	if got != want {
		t.Errorf("resolve = %+v, want %+v", got, want)
	}
}

func TestShapeCircleContains(t *testing.T) {
	s := Shape{
		Kind:    ShapeCircle,
		CenterX: Percent(50),
		CenterY: Percent(50),
		RadiusX: Px(50),
	}
	ref := Rect{X: 0, Y: 0, Width: 200, Height: 200}
	rs := s.Resolve(ref, 16)

	if !rs.Contains(Point{X: 100, Y: 100}) {
		t.Error("center should be inside the circle")
	}
	if !rs.Contains(Point{X: 140, Y: 100}) {
		t.Error("point within radius should be inside")
	}
	if rs.Contains(Point{X: 160, Y: 100}) {
		t.Error("point beyond radius should be outside")
	}
}

func TestShapePolygonContains(t *testing.T) {
	// Right triangle covering the top-left half of a 100x100 box.
	s := Shape{
		Kind: ShapePolygon,
		Points: []Value{
			Px(0), Px(0),
			Px(100), Px(0),
			Px(0), Px(100),
		},
	}
	rs := s.Resolve(Rect{Width: 100, Height: 100}, 16)
	if !rs.Contains(Point{X: 10, Y: 10}) {
		t.Error("point in triangle should be inside")
	}
	if rs.Contains(Point{X: 90, Y: 90}) {
		t.Error("point outside triangle should be outside")
	}
}

func TestShapeInsetContains(t *testing.T) {
	s := Shape{
		Kind:   ShapeInset,
		Insets: UniformEdgeValues(Px(10)),
	}
	rs := s.Resolve(Rect{Width: 100, Height: 100}, 16)
	if rs.Contains(Point{X: 5, Y: 50}) {
		t.Error("point in the inset band should be outside")
	}
	if !rs.Contains(Point{X: 50, Y: 50}) {
		t.Error("center should be inside")
	}
}

func TestRoundedRectContains(t *testing.T) {
	rect := Rect{Width: 100, Height: 100}
	radii := UniformEdges(20)
	if RoundedRectContains(rect, radii, Point{X: 2, Y: 2}) {
		t.Error("corner point outside the radius arc should miss")
	}
	if !RoundedRectContains(rect, radii, Point{X: 50, Y: 2}) {
		t.Error("edge midpoint should hit")
	}
}
