package unit

import (
	"log"

	"github.com/angelini/generals/geometry"
)

// TurnRate is how fast, in radians per second, a unit turns while looking
// for or tracking a target.
const TurnRate = 1.0

// View is what a unit may know about every live unit during a tick. It is
// captured once before any unit updates so all units act on the same view.
type View map[ID]geometry.Placement

type Unit struct {
	ID    ID
	Team  int
	Role  Role
	Pose  geometry.Pose
	Speed float64
	State State
	queue StateQueue
}

func New(role Role, id ID, x, y, rotation float64, team int) *Unit {
	return &Unit{
		ID:    id,
		Team:  team,
		Role:  role,
		Pose:  geometry.NewPose(x, y, rotation),
		Speed: role.Speed(),
		State: Idle{},
	}
}

func FromDelta(d NewUnit) *Unit {
	return New(d.Role, d.ID, d.X, d.Y, d.Rotation, d.Team)
}

func (u *Unit) Placement() geometry.Placement {
	return geometry.Placement{Pose: u.Pose, Shape: u.Role.Body()}
}

func (u *Unit) Body() geometry.Polygon {
	return u.Role.Body().Place(u.Pose)
}

func (u *Unit) FieldOfView() geometry.Polygon {
	return u.Role.FieldOfView().Place(u.Pose)
}

func (u *Unit) WeaponRange() geometry.Polygon {
	return u.Role.WeaponRange().Place(u.Pose)
}

func (u *Unit) Overlaps(other *Unit) bool {
	return u.Body().Intersects(other.Body())
}

func (u *Unit) CanSee(other *Unit) bool {
	return u.FieldOfView().Intersects(other.Body())
}

func (u *Unit) CanSeePoint(x, y float64) bool {
	return u.FieldOfView().Contains(x, y)
}

func (u *Unit) InRange(target geometry.Placement) bool {
	return u.WeaponRange().Intersects(target.Polygon())
}

func (u *Unit) Snapshot() Snapshot {
	return Snapshot{
		ID:    u.ID,
		X:     u.Pose.X,
		Y:     u.Pose.Y,
		Team:  u.Team,
		Role:  u.Role,
		State: u.State,
	}
}

// SetState replaces the current state. A dead unit stays dead. It reports
// whether the state changed.
func (u *Unit) SetState(s State) bool {
	if s == nil || IsDead(u.State) || u.State == s {
		return false
	}
	u.State = s
	return true
}

// Queue schedules states to run, in the given order, after the current one.
func (u *Unit) Queue(states ...State) {
	for i := len(states) - 1; i >= 0; i-- {
		u.queue.Push(states[i])
	}
}

func (u *Unit) Next() State {
	return u.queue.Peek()
}

func (u *Unit) Pending() int {
	return u.queue.Len()
}

type UpdateResult struct {
	Spawned *Unit
	Command *UpdateState
}

// Update advances the unit by dt seconds against the view captured at the
// start of the tick.
func (u *Unit) Update(dt float64, view View) UpdateResult {
	var result UpdateResult

	switch s := u.State.(type) {
	case Move:
		u.Pose = u.Pose.MoveTowards(s.X, s.Y, u.Speed*dt)
		if u.Pose.At(s.X, s.Y) {
			u.advance()
		}

	case Look:
		u.Pose = u.Pose.RotateTowards(s.X, s.Y, TurnRate*dt)
		if u.CanSeePoint(s.X, s.Y) {
			u.advance()
			break
		}
		u.Pose = u.Pose.MoveTowards(s.X, s.Y, u.Speed*dt)

	case Shoot:
		target, ok := view[s.Target]
		if !ok {
			// Target is gone; carry on as if the shot landed.
			u.advance()
			break
		}
		if u.InRange(target) {
			result.Spawned = u.fire(target.Pose)
			u.advance()
			break
		}
		u.track(target.Pose, dt)

	case Command:
		target, ok := view[s.Target]
		if !ok {
			u.advance()
			break
		}
		if u.InRange(target) {
			result.Command = &UpdateState{ID: s.Target, State: s.Order}
			u.advance()
			break
		}
		u.track(target.Pose, dt)
	}

	return result
}

func (u *Unit) track(target geometry.Pose, dt float64) {
	u.Pose = u.Pose.RotateTowards(target.X, target.Y, TurnRate*dt)
	u.Pose = u.Pose.MoveTowards(target.X, target.Y, u.Speed*dt)
}

// fire spawns a bullet one body width ahead of the unit, headed for target.
func (u *Unit) fire(target geometry.Pose) *Unit {
	muzzle := u.Pose.Ahead(u.Role.Width())
	bullet := New(Bullet, NewID(), muzzle.X, muzzle.Y, muzzle.Rotation, u.Team)
	bullet.State = Move{X: target.X, Y: target.Y}
	return bullet
}

func (u *Unit) advance() {
	previous := u.State
	u.State = u.queue.Pop()
	log.Printf("unit-state: %s %s -> %s (next %s)", u.Role, previous, u.State, u.queue.Peek())
}
