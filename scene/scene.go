// Package scene turns extracted shapes into a walled physics world and steps
// it frame by frame.
package scene

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/koteyur/shapefall/config"
	"github.com/koteyur/shapefall/extract"
	"github.com/koteyur/shapefall/physac"
)

// Scene is a world populated with one dynamic body per shape and three static
// walls along the image bounds.
type Scene struct {
	World  *physac.World
	Width  float64
	Height float64
	Bodies []*physac.Body
	Walls  []*physac.Body
}

// Build creates the world for shapes extracted from a width×height image.
// Dynamic bodies are added first in shape order, then the floor, the left
// wall and the right wall. Walls are one-sided: anything behind them is
// pushed back inside.
func Build(shapes []extract.Shape, width, height int, cfg config.Config, logger *log.Logger) (*Scene, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene: build: invalid bounds %dx%d", width, height)
	}

	w := physac.NewWorld(mgl64.Vec2{0, -cfg.Gravity})
	w.Iterations = cfg.Iterations
	w.PenetrationAllowance = cfg.PenetrationAllowance
	w.PenetrationCorrection = cfg.PenetrationCorrection
	w.Logger = logger

	s := &Scene{
		World:  w,
		Width:  float64(width),
		Height: float64(height),
	}
	for _, shape := range shapes {
		b, err := physac.NewDynamicBody(shape.Local, shape.Centroid, cfg.Density())
		if err != nil {
			return nil, fmt.Errorf("scene: shape %d: %w", shape.Label, err)
		}
		b.SetFriction(cfg.StaticFriction, cfg.DynamicFriction)
		b.Restitution = cfg.Restitution
		s.Bodies = append(s.Bodies, w.AddBody(b))
	}

	// Walls run counter-clockwise around the box so each faces inwards.
	wall := func(a, b mgl64.Vec2) {
		body := physac.NewStaticBody(physac.NewWall(a, b, cfg.WallRadius), mgl64.Vec2{})
		body.SetFriction(cfg.WallFriction, cfg.WallFriction)
		s.Walls = append(s.Walls, w.AddBody(body))
	}
	wall(mgl64.Vec2{0, 0}, mgl64.Vec2{s.Width, 0})
	wall(mgl64.Vec2{0, s.Height}, mgl64.Vec2{0, 0})
	wall(mgl64.Vec2{s.Width, 0}, mgl64.Vec2{s.Width, s.Height})
	return s, nil
}
