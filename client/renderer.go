package client

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/angelini/generals/geometry"
	"github.com/angelini/generals/unit"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)

	fovColor  = color.RGBA{128, 128, 128, 48}
	noseColor = color.RGBA{255, 255, 255, 255}
	nose      = geometry.Box(3)
)

func init() {
	whiteImage.Fill(color.White)
}

type Renderer struct {
	ShowFieldOfView bool
	ShowLabels      bool
}

func NewRenderer() *Renderer {
	return &Renderer{ShowFieldOfView: true}
}

func (r *Renderer) RenderUnit(screen *ebiten.Image, u *unit.Unit) {
	if u.Role != unit.Bullet && r.ShowFieldOfView {
		fillPolygon(screen, u.FieldOfView(), fovColor)
	}
	fillPolygon(screen, u.Body(), u.Role.Color(u.Team))
	if u.Role == unit.Bullet {
		return
	}
	fillPolygon(screen, nose.Place(u.Pose.Ahead(u.Role.Width()*0.5)), noseColor)

	if r.ShowLabels {
		half := int(u.Role.Width() * 0.5)
		ebitenutil.DebugPrintAt(screen, u.State.String(), int(u.Pose.X)-half, int(u.Pose.Y)+half)
	}
}

// fillPolygon draws a convex polygon as a triangle fan.
func fillPolygon(screen *ebiten.Image, poly geometry.Polygon, c color.RGBA) {
	if len(poly) < 3 {
		return
	}
	red := float32(c.R) / 0xff
	green := float32(c.G) / 0xff
	blue := float32(c.B) / 0xff
	alpha := float32(c.A) / 0xff

	vertices := make([]ebiten.Vertex, len(poly))
	for i, p := range poly {
		vertices[i] = ebiten.Vertex{
			DstX:   float32(p.X()),
			DstY:   float32(p.Y()),
			SrcX:   1,
			SrcY:   1,
			ColorR: red,
			ColorG: green,
			ColorB: blue,
			ColorA: alpha,
		}
	}
	indices := make([]uint16, 0, 3*(len(poly)-2))
	for i := 1; i+1 < len(poly); i++ {
		indices = append(indices, 0, uint16(i), uint16(i+1))
	}
	screen.DrawTriangles(vertices, indices, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
