package geometry

import "math"

const (
	halfPi = math.Pi / 2
	twoPi  = 2 * math.Pi
)

// Pose is a position plus heading. A heading of zero faces local -y, the
// direction of a shape's nose.
type Pose struct {
	X, Y     float64
	Rotation float64
}

func NewPose(x, y, rotation float64) Pose {
	return Pose{X: x, Y: y, Rotation: rotation}
}

// Normalize maps an angle into [0, 2π).
func Normalize(angle float64) float64 {
	a := math.Mod(angle, twoPi)
	if a < 0 {
		a += twoPi
	}
	// -ε + 2π can round up to 2π.
	if a >= twoPi {
		a = 0
	}
	return a
}

// Bearing is the heading, in [0, 2π), that points the nose at (x, y).
func (p Pose) Bearing(x, y float64) float64 {
	return Normalize(math.Atan2(y-p.Y, x-p.X) + halfPi)
}

// Forward is the unit vector the nose points along.
func (p Pose) Forward() (float64, float64) {
	return math.Sin(p.Rotation), -math.Cos(p.Rotation)
}

// Ahead returns the pose translated dist along the current heading.
func (p Pose) Ahead(dist float64) Pose {
	fx, fy := p.Forward()
	return Pose{X: p.X + fx*dist, Y: p.Y + fy*dist, Rotation: p.Rotation}
}

func (p Pose) At(x, y float64) bool {
	return p.X == x && p.Y == y
}

// MoveTowards steps towards (x, y). The step is split across both axes in
// proportion to the remaining distance on each so that both reach the target
// on the same tick; the dominant axis moves the full dist. Once both axes are
// within dist the pose snaps to the target.
func (p Pose) MoveTowards(x, y, dist float64) Pose {
	dx := x - p.X
	dy := y - p.Y
	xdist := math.Abs(dx)
	ydist := math.Abs(dy)
	if xdist <= dist && ydist <= dist {
		return Pose{X: x, Y: y, Rotation: p.Rotation}
	}

	longest := math.Max(xdist, ydist)
	return Pose{
		X:        p.X + dx/longest*dist,
		Y:        p.Y + dy/longest*dist,
		Rotation: p.Rotation,
	}
}

// RotateTowards turns the nose towards (x, y) along the shorter direction by
// at most maxDelta. The result is always within [0, 2π).
func (p Pose) RotateTowards(x, y, maxDelta float64) Pose {
	curr := Normalize(p.Rotation)
	if p.At(x, y) {
		return Pose{X: p.X, Y: p.Y, Rotation: curr}
	}

	dest := p.Bearing(x, y)
	delta := dest - curr
	if delta > math.Pi {
		delta -= twoPi
	} else if delta <= -math.Pi {
		delta += twoPi
	}

	rotation := dest
	if delta > maxDelta {
		rotation = Normalize(curr + maxDelta)
	} else if delta < -maxDelta {
		rotation = Normalize(curr - maxDelta)
	}
	return Pose{X: p.X, Y: p.Y, Rotation: rotation}
}

// AngularDistance is the shortest unsigned angle between two headings.
func AngularDistance(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	if d > math.Pi {
		d = twoPi - d
	}
	return d
}

func Distance(a, b Pose) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
