package main

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/koteyur/shapefall/config"
	"github.com/koteyur/shapefall/render"
	"github.com/koteyur/shapefall/scene"
	"golang.org/x/image/colornames"
)

// viewer steps the scene live, one physics step per tick, and draws every
// body outline.
type viewer struct {
	scene   *scene.Scene
	cfg     config.Config
	rebuild func() (*scene.Scene, error)
	step    int
	running bool
}

func newViewer(s *scene.Scene, cfg config.Config, rebuild func() (*scene.Scene, error)) *viewer {
	return &viewer{scene: s, cfg: cfg, rebuild: rebuild, running: true}
}

func (v *viewer) Update() error {
	touches := inpututil.AppendJustPressedTouchIDs(nil)
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		len(touches) > 0 {
		v.running = !v.running
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		s, err := v.rebuild()
		if err != nil {
			return err
		}
		v.scene, v.step = s, 0
	}

	if !v.running || v.step >= v.cfg.Steps {
		return nil
	}
	if err := v.scene.World.Step(v.cfg.TimeStep); err != nil {
		return err
	}
	v.step++
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.White)

	for _, wall := range v.scene.Walls {
		v.drawLoop(screen, wall.WorldVertices(), colornames.Gray)
	}
	frame := v.scene.World.Frame(v.step)
	for i, loop := range frame.Loops {
		v.drawLoop(screen, loop, render.DefaultPalette[i%len(render.DefaultPalette)])
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("step %d/%d\n<space> pause, <r> restart", v.step, v.cfg.Steps))
}

func (v *viewer) drawLoop(screen *ebiten.Image, loop []mgl64.Vec2, clr color.Color) {
	for j := 0; j+1 < len(loop); j++ {
		a, b := v.toScreen(loop[j]), v.toScreen(loop[j+1])
		vector.StrokeLine(screen, a[0], a[1], b[0], b[1], 2, clr, true)
	}
}

// toScreen flips world y so the floor is at the bottom of the window.
func (v *viewer) toScreen(p mgl64.Vec2) [2]float32 {
	return [2]float32{float32(p[0]), float32(v.scene.Height - p[1])}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(v.scene.Width), int(v.scene.Height)
}
