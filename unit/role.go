package unit

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/angelini/generals/geometry"
)

type Role int

const (
	Soldier Role = iota
	General
	Bullet
)

const RoleCount = 3

var (
	blue   = color.RGBA{0, 0, 255, 255}
	purple = color.RGBA{128, 128, 255, 255}
	red    = color.RGBA{255, 0, 0, 255}
	black  = color.RGBA{0, 0, 0, 255}
)

type roleSpec struct {
	name   string
	width  float64
	speed  float64
	body   geometry.Shape
	fov    geometry.Shape
	weapon geometry.Shape
}

func newRoleSpec(name string, width, speed float64) roleSpec {
	half := width * 0.5
	return roleSpec{
		name:   name,
		width:  width,
		speed:  speed,
		body:   geometry.Box(half),
		fov:    geometry.Triangle(mgl64.Vec2{0, half}, mgl64.Vec2{-150, -150}, mgl64.Vec2{150, -150}),
		weapon: geometry.Triangle(mgl64.Vec2{0, half}, mgl64.Vec2{-40, -120}, mgl64.Vec2{40, -120}),
	}
}

var roles = [RoleCount]roleSpec{
	Soldier: newRoleSpec("soldier", 25, 150),
	General: newRoleSpec("general", 50, 50),
	Bullet:  newRoleSpec("bullet", 5, 150),
}

func (r Role) Valid() bool {
	return r >= 0 && r < RoleCount
}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roles[r].name
}

func ParseRole(s string) (Role, error) {
	for r := Role(0); r < RoleCount; r++ {
		if roles[r].name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) Width() float64 { return roles[r].width }
func (r Role) Speed() float64 { return roles[r].speed }

func (r Role) Body() geometry.Shape        { return roles[r].body }
func (r Role) FieldOfView() geometry.Shape { return roles[r].fov }
func (r Role) WeaponRange() geometry.Shape { return roles[r].weapon }

func (r Role) Color(team int) color.RGBA {
	switch r {
	case Soldier:
		if team == 1 {
			return blue
		}
		return purple
	case General:
		return red
	}
	return black
}
