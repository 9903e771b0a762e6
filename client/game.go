package client

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/angelini/generals/battle"
	"github.com/angelini/generals/unit"
)

var grass = color.RGBA{96, 140, 72, 255}

type Game struct {
	battle   *battle.Battle
	renderer *Renderer
	width    int
	height   int
	paused   bool
}

func NewGame(b *battle.Battle) *Game {
	resolution := b.Config.UI.Resolution
	return &Game{
		battle:   b,
		renderer: NewRenderer(),
		width:    resolution.X,
		height:   resolution.Y,
	}
}

func (g *Game) Update() error {
	g.handleKeysPressed()
	if g.paused {
		return nil
	}
	_, err := g.battle.World.Step(1 / float64(ebiten.TPS()))
	return err
}

func (g *Game) debugString() string {
	teams := map[int]int{}
	g.battle.World.ForEachUnit(func(u *unit.Unit) {
		if u.Role != unit.Bullet {
			teams[u.Team]++
		}
	})
	lines := []string{
		fmt.Sprintf("TPS: %0.02f, FPS: %0.02f, Tick: %d", ebiten.ActualTPS(), ebiten.ActualFPS(), g.battle.World.Tick()),
		fmt.Sprintf("Units: %d, Team 1: %d, Team 2: %d", g.battle.World.Len(), teams[1], teams[2]),
		fmt.Sprintf("Script workers: %d, faults: %d", g.battle.Actor.Alive(), g.battle.Actor.Faults()),
	}
	if g.paused {
		lines = append(lines, "PAUSED")
	}
	return strings.Join(lines, "\n")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(grass)
	g.battle.World.ForEachUnit(func(u *unit.Unit) {
		g.renderer.RenderUnit(screen, u)
	})
	ebitenutil.DebugPrint(screen, g.debugString())
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.width, g.height
}

func (g *Game) handleKeysPressed() {
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		switch key {
		case ebiten.KeySpace:
			g.paused = !g.paused
		case ebiten.KeyV:
			g.renderer.ShowFieldOfView = !g.renderer.ShowFieldOfView
		case ebiten.KeyL:
			g.renderer.ShowLabels = !g.renderer.ShowLabels
		}
	}
}
