package physac

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"
)

// Solver defaults.
const (
	DefaultIterations            = 20
	DefaultPenetrationAllowance  = 0.01
	DefaultPenetrationCorrection = 0.8
)

// World owns every body of a simulation and is the only writer of body
// state while stepping.
type World struct {
	Gravity mgl64.Vec2

	// Iterations is the number of impulse passes over all contacts per step.
	Iterations int
	// PenetrationAllowance is the overlap left uncorrected.
	PenetrationAllowance float64
	// PenetrationCorrection is the fraction of the remaining overlap removed
	// per step.
	PenetrationCorrection float64

	// Logger receives skipped-contact reports. Nil means log.Default().
	Logger *log.Logger

	bodies   []*Body
	contacts []Manifold
	nextID   uint
}

// NewWorld returns an empty world with the given gravity and default solver
// settings.
func NewWorld(gravity mgl64.Vec2) *World {
	return &World{
		Gravity:               gravity,
		Iterations:            DefaultIterations,
		PenetrationAllowance:  DefaultPenetrationAllowance,
		PenetrationCorrection: DefaultPenetrationCorrection,
	}
}

// AddBody registers b and assigns its ID in insertion order, starting at 1.
func (w *World) AddBody(b *Body) *Body {
	w.nextID++
	b.ID = w.nextID
	b.SetOrient(b.orient)
	w.bodies = append(w.bodies, b)
	return b
}

// Bodies returns the registered bodies in insertion order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Contacts returns the manifolds resolved by the last Step.
func (w *World) Contacts() []Manifold {
	return w.contacts
}

func (w *World) logger() *log.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return log.Default()
}

// Step advances the world by dt: semi-implicit Euler integration of dynamic
// bodies, then contact detection, then impulse and positional resolution.
// An invalid body aborts the step before any state changes.
func (w *World) Step(dt float64) error {
	for _, b := range w.bodies {
		if err := b.Validate(); err != nil {
			return err
		}
	}

	for _, b := range w.bodies {
		if b.Kind != Dynamic {
			continue
		}
		b.Velocity = b.Velocity.Add(w.Gravity.Mul(dt))
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		b.SetOrient(b.orient + b.AngularVelocity*dt)
	}

	w.detect()

	for i := range w.contacts {
		w.contacts[i].prepare(w.Gravity, dt)
	}
	for it := 0; it < w.Iterations; it++ {
		for i := range w.contacts {
			w.contacts[i].applyImpulse()
		}
	}
	for i := range w.contacts {
		w.contacts[i].correctPositions(w.PenetrationAllowance, w.PenetrationCorrection)
	}
	return nil
}

// detect rebuilds the contact list. Pairs are visited in insertion order so
// results are reproducible.
func (w *World) detect() {
	w.contacts = w.contacts[:0]

	bounds := make([]aabb, len(w.bodies))
	for i, b := range w.bodies {
		bounds[i] = b.bounds()
	}

	for i, a := range w.bodies {
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if a.Kind == Static && b.Kind == Static {
				continue
			}
			if !bounds[i].overlaps(bounds[j]) {
				continue
			}
			m, err := Collide(a, b)
			if err != nil {
				w.logger().Printf("physac: skipping contact: %v", err)
				continue
			}
			if m.ContactsCount > 0 {
				w.contacts = append(w.contacts, m)
			}
		}
	}
}

// Frame is a read-only snapshot of every dynamic body outline.
type Frame struct {
	Step  int
	Loops [][]mgl64.Vec2
}

// Frame captures the current world-space outline of each dynamic body.
func (w *World) Frame(step int) Frame {
	f := Frame{Step: step}
	for _, b := range w.bodies {
		if b.Kind != Dynamic {
			continue
		}
		f.Loops = append(f.Loops, b.WorldVertices())
	}
	return f
}
