package geometry

import "github.com/go-gl/mathgl/mgl64"

// Shape is a convex polygon in unit-local space. Shapes are never mutated;
// Place produces the world-space polygon for a pose.
type Shape struct {
	points []mgl64.Vec2
}

func NewShape(points ...mgl64.Vec2) Shape {
	copied := make([]mgl64.Vec2, len(points))
	copy(copied, points)
	return Shape{points: copied}
}

// Box is a square of side 2*half centred on the origin.
func Box(half float64) Shape {
	return NewShape(
		mgl64.Vec2{-half, -half},
		mgl64.Vec2{half, -half},
		mgl64.Vec2{half, half},
		mgl64.Vec2{-half, half},
	)
}

func Triangle(a, b, c mgl64.Vec2) Shape {
	return NewShape(a, b, c)
}

func (s Shape) Len() int {
	return len(s.points)
}

func (s Shape) Place(p Pose) Polygon {
	rotation := mgl64.Rotate2D(p.Rotation)
	origin := mgl64.Vec2{p.X, p.Y}
	placed := make(Polygon, len(s.points))
	for i, point := range s.points {
		placed[i] = rotation.Mul2x1(point).Add(origin)
	}
	return placed
}

// Placement is a shape attached to a pose. It is what other units are allowed
// to see of a unit during a tick.
type Placement struct {
	Pose  Pose
	Shape Shape
}

func (p Placement) Polygon() Polygon {
	return p.Shape.Place(p.Pose)
}

// Polygon is a convex polygon in world space.
type Polygon []mgl64.Vec2

// Intersects reports whether the interiors of two convex polygons overlap.
// Polygons that only touch along an edge or at a vertex do not intersect.
func (a Polygon) Intersects(b Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return !separated(a, b) && !separated(b, a)
}

// Contains reports whether (x, y) lies inside or on the boundary.
func (a Polygon) Contains(x, y float64) bool {
	if len(a) < 3 {
		return false
	}
	point := mgl64.Vec2{x, y}
	positive, negative := false, false
	for i := range a {
		edge := a[(i+1)%len(a)].Sub(a[i])
		cross := edge.X()*(point.Y()-a[i].Y()) - edge.Y()*(point.X()-a[i].X())
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

func separated(a, b Polygon) bool {
	for i := range a {
		edge := a[(i+1)%len(a)].Sub(a[i])
		axis := mgl64.Vec2{-edge.Y(), edge.X()}
		if axis.Len() == 0 {
			continue
		}
		amin, amax := project(a, axis)
		bmin, bmax := project(b, axis)
		if amax <= bmin || bmax <= amin {
			return true
		}
	}
	return false
}

func project(p Polygon, axis mgl64.Vec2) (float64, float64) {
	lo := p[0].Dot(axis)
	hi := lo
	for _, point := range p[1:] {
		d := point.Dot(axis)
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi
}
