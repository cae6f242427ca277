package scene

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/koteyur/shapefall/physac"
	"golang.org/x/sync/errgroup"
)

// ErrConsumed is returned when a Simulation's frames are iterated twice.
var ErrConsumed = errors.New("scene: simulation already consumed")

// Simulation steps a world a fixed number of times.
type Simulation struct {
	world    *physac.World
	dt       float64
	steps    int
	consumed bool
}

// NewSimulation prepares steps fixed steps of dt over the scene's world.
func NewSimulation(s *Scene, dt float64, steps int) *Simulation {
	return &Simulation{world: s.World, dt: dt, steps: steps}
}

// Frames yields one snapshot after each step, indexed from 0. Stepping is
// lazy: nothing happens until the sequence is ranged over, and stopping early
// leaves the world where it was. The sequence can be iterated only once; a
// later iteration yields ErrConsumed.
func (sim *Simulation) Frames() iter.Seq2[physac.Frame, error] {
	return func(yield func(physac.Frame, error) bool) {
		if sim.consumed {
			yield(physac.Frame{}, ErrConsumed)
			return
		}
		sim.consumed = true

		for i := 0; i < sim.steps; i++ {
			if err := sim.world.Step(sim.dt); err != nil {
				yield(physac.Frame{Step: i}, fmt.Errorf("scene: step %d: %w", i, err))
				return
			}
			if !yield(sim.world.Frame(i), nil) {
				return
			}
		}
	}
}

// Renderer consumes frames in step order.
type Renderer interface {
	Render(f physac.Frame) error
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(f physac.Frame) error

func (fn RenderFunc) Render(f physac.Frame) error {
	return fn(f)
}

const frameBuffer = 4

// Run steps frames on one goroutine and renders them on another, in order and
// exactly once each. The first error from either side cancels the other. It
// returns the number of frames rendered.
func Run(ctx context.Context, frames iter.Seq2[physac.Frame, error], r Renderer) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	ch := make(chan physac.Frame, frameBuffer)

	g.Go(func() error {
		defer close(ch)
		for f, err := range frames {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case ch <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	rendered := 0
	g.Go(func() error {
		for f := range ch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.Render(f); err != nil {
				return fmt.Errorf("scene: render frame %d: %w", f.Step, err)
			}
			rendered++
		}
		return nil
	})

	err := g.Wait()
	return rendered, err
}
