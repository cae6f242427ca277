package scene

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/koteyur/shapefall/config"
	"github.com/koteyur/shapefall/extract"
	"github.com/koteyur/shapefall/physac"
)

var quiet = log.New(io.Discard, "", 0)

// squareShape is a size×size shape centred at c.
func squareShape(label int, c mgl64.Vec2, size float64) extract.Shape {
	h := size / 2
	local := []mgl64.Vec2{{-h, -h}, {h, -h}, {h, h}, {-h, h}}
	poly := make([]mgl64.Vec2, len(local))
	for i, v := range local {
		poly[i] = v.Add(c)
	}
	return extract.Shape{
		Label:    label,
		Polygon:  poly,
		Centroid: c,
		Local:    local,
		Area:     size * size,
	}
}

func mustBuild(t *testing.T, shapes []extract.Shape, w, h int, cfg config.Config) *Scene {
	t.Helper()
	s, err := Build(shapes, w, h, cfg, quiet)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestBuild(t *testing.T) {
	cfg := config.Default()
	shapes := []extract.Shape{
		squareShape(1, mgl64.Vec2{50, 100}, 10),
		squareShape(2, mgl64.Vec2{120, 60}, 20),
	}
	s := mustBuild(t, shapes, 200, 150, cfg)

	if got := len(s.World.Bodies()); got != 5 {
		t.Fatalf("bodies = %d, want 5", got)
	}
	if len(s.Bodies) != 2 || len(s.Walls) != 3 {
		t.Fatalf("dynamic = %d, walls = %d; want 2, 3", len(s.Bodies), len(s.Walls))
	}

	first := s.Bodies[0]
	if first.ID != 1 || first.Kind != physac.Dynamic {
		t.Fatalf("first body = id %d %v, want id 1 dynamic", first.ID, first.Kind)
	}
	if first.Position.Sub(mgl64.Vec2{50, 100}).Len() > 1e-9 {
		t.Fatalf("position = %v, want centroid", first.Position)
	}
	if math.Abs(first.Mass-2) > 1e-9 {
		t.Fatalf("mass = %v, want 100/50", first.Mass)
	}
	if first.StaticFriction != cfg.StaticFriction || first.DynamicFriction != cfg.DynamicFriction {
		t.Fatalf("friction = %v/%v", first.StaticFriction, first.DynamicFriction)
	}

	wantWalls := [][2]mgl64.Vec2{
		{{0, 0}, {200, 0}},
		{{0, 150}, {0, 0}},
		{{200, 0}, {200, 150}},
	}
	for i, wall := range s.Walls {
		if wall.Kind != physac.Static || wall.Shape.Type != physac.ShapeSegment || !wall.Shape.OneSided {
			t.Fatalf("wall %d = %v %v one-sided=%v", i, wall.Kind, wall.Shape.Type, wall.Shape.OneSided)
		}
		if wall.Shape.Radius != cfg.WallRadius || wall.StaticFriction != cfg.WallFriction {
			t.Fatalf("wall %d radius %v friction %v", i, wall.Shape.Radius, wall.StaticFriction)
		}
		v := wall.Shape.Vertices
		if v[0] != wantWalls[i][0] || v[1] != wantWalls[i][1] {
			t.Fatalf("wall %d spans %v-%v, want %v", i, v[0], v[1], wantWalls[i])
		}
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	cfg := config.Default()
	if _, err := Build(nil, 0, 10, cfg, quiet); err == nil {
		t.Fatal("expected error for zero width")
	}

	flat := extract.Shape{Label: 4, Local: []mgl64.Vec2{{0, 0}, {1, 0}, {2, 0}}}
	_, err := Build([]extract.Shape{flat}, 10, 10, cfg, quiet)
	var invalid *physac.InvalidBodyError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidBodyError, got %v", err)
	}
}

func TestFramesAreLazyAndOrdered(t *testing.T) {
	cfg := config.Default()
	s := mustBuild(t, []extract.Shape{squareShape(1, mgl64.Vec2{50, 100}, 10)}, 100, 150, cfg)
	sim := NewSimulation(s, cfg.TimeStep, 12)

	start := s.Bodies[0].Position
	frames := sim.Frames()
	if s.Bodies[0].Position != start {
		t.Fatal("world stepped before iteration")
	}

	var steps []int
	for f, err := range frames {
		if err != nil {
			t.Fatalf("frame: %v", err)
		}
		if len(f.Loops) != 1 {
			t.Fatalf("frame %d has %d loops, want 1", f.Step, len(f.Loops))
		}
		steps = append(steps, f.Step)
	}
	if len(steps) != 12 {
		t.Fatalf("got %d frames, want 12", len(steps))
	}
	for i, step := range steps {
		if step != i {
			t.Fatalf("frame %d has step %d", i, step)
		}
	}

	for _, err := range sim.Frames() {
		if !errors.Is(err, ErrConsumed) {
			t.Fatalf("second iteration: got %v, want ErrConsumed", err)
		}
	}
}

func TestFramesStopOnInvalidBody(t *testing.T) {
	cfg := config.Default()
	s := mustBuild(t, []extract.Shape{squareShape(1, mgl64.Vec2{50, 100}, 10)}, 100, 150, cfg)
	s.Bodies[0].SetMass(0, 0)

	n := 0
	var last error
	for _, err := range NewSimulation(s, cfg.TimeStep, 5).Frames() {
		n++
		last = err
	}
	var invalid *physac.InvalidBodyError
	if n != 1 || !errors.As(last, &invalid) {
		t.Fatalf("got %d yields ending in %v, want one InvalidBodyError", n, last)
	}
}

func TestRunRendersEveryFrameInOrder(t *testing.T) {
	cfg := config.Default()
	s := mustBuild(t, []extract.Shape{
		squareShape(1, mgl64.Vec2{30, 100}, 10),
		squareShape(2, mgl64.Vec2{70, 60}, 16),
	}, 100, 150, cfg)

	var got []int
	n, err := Run(context.Background(), NewSimulation(s, cfg.TimeStep, 40).Frames(),
		RenderFunc(func(f physac.Frame) error {
			got = append(got, f.Step)
			return nil
		}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 40 || len(got) != 40 {
		t.Fatalf("rendered %d (%d recorded), want 40", n, len(got))
	}
	for i, step := range got {
		if step != i {
			t.Fatalf("render %d got step %d", i, step)
		}
	}
}

func TestRunStopsOnRenderError(t *testing.T) {
	cfg := config.Default()
	s := mustBuild(t, []extract.Shape{squareShape(1, mgl64.Vec2{50, 100}, 10)}, 100, 150, cfg)

	boom := errors.New("disk full")
	n, err := Run(context.Background(), NewSimulation(s, cfg.TimeStep, 100).Frames(),
		RenderFunc(func(f physac.Frame) error {
			if f.Step == 3 {
				return boom
			}
			return nil
		}))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if n != 3 {
		t.Fatalf("rendered %d, want 3", n)
	}
}

func TestRunHonoursCancelledContext(t *testing.T) {
	cfg := config.Default()
	s := mustBuild(t, []extract.Shape{squareShape(1, mgl64.Vec2{50, 100}, 10)}, 100, 150, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := Run(ctx, NewSimulation(s, cfg.TimeStep, 100).Frames(),
		RenderFunc(func(physac.Frame) error { return nil }))
	if !errors.Is(err, context.Canceled) || n != 0 {
		t.Fatalf("got n=%d err=%v, want 0 and context.Canceled", n, err)
	}
}

func TestPipelineFromImage(t *testing.T) {
	const w, h = 120, 100
	img := image.NewGray(image.Rect(0, 0, w, h))
	fill := func(x0, y0, x1, y1 int) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}
	fill(10, 10, 30, 30)
	fill(60, 20, 90, 35)

	shapes, err := extract.Extract(extract.Label(img))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	cfg := config.Default()
	s := mustBuild(t, shapes, w, h, cfg)

	for _, err := range NewSimulation(s, cfg.TimeStep, cfg.Steps).Frames() {
		if err != nil {
			t.Fatalf("frame: %v", err)
		}
	}
	for _, b := range s.Bodies {
		for _, v := range b.WorldVertices() {
			if v[1] < 0 || v[0] < 0 || v[0] > w {
				t.Fatalf("body %d left the box at %v", b.ID, v)
			}
		}
		if b.Velocity.Len() > 5 {
			t.Fatalf("body %d still moving at %v", b.ID, b.Velocity)
		}
	}
}
