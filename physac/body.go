package physac

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyKind tells the world whether a body takes part in integration.
type BodyKind int

const (
	Dynamic BodyKind = iota
	Static
)

func (k BodyKind) String() string {
	if k == Static {
		return "static"
	}
	return "dynamic"
}

// Default contact material, used when a body is built without one.
const (
	DefaultStaticFriction  = 0.4
	DefaultDynamicFriction = 0.2
)

// Body is a rigid body with a single convex collider.
type Body struct {
	ID              uint
	Kind            BodyKind
	Position        mgl64.Vec2
	Velocity        mgl64.Vec2
	AngularVelocity float64
	Mass            float64
	InverseMass     float64
	Inertia         float64
	InverseInertia  float64
	StaticFriction  float64
	DynamicFriction float64
	Restitution     float64
	Shape           Shape

	// orient is only written through SetOrient, which keeps transform in step.
	orient    float64
	transform mgl64.Mat2
}

// NewDynamicBody wraps a polygon as a dynamic body of the given density.
// The collider is re-centred on its centroid, so position ends up at the
// centroid of verts placed at position.
func NewDynamicBody(verts []mgl64.Vec2, position mgl64.Vec2, density float64) (*Body, error) {
	shape, err := NewPolygon(verts)
	if err != nil {
		return nil, err
	}
	md := ComputeMassData(shape.Vertices)
	for i := range shape.Vertices {
		shape.Vertices[i] = shape.Vertices[i].Sub(md.Centroid)
	}

	b := &Body{
		Kind:            Dynamic,
		Position:        position.Add(md.Centroid),
		StaticFriction:  DefaultStaticFriction,
		DynamicFriction: DefaultDynamicFriction,
		Shape:           shape,
	}
	b.SetMass(density*md.Area, density*md.Inertia)
	b.SetOrient(0)
	return b, nil
}

// NewStaticBody returns an immovable body with infinite mass and inertia.
func NewStaticBody(shape Shape, position mgl64.Vec2) *Body {
	b := &Body{
		Kind:            Static,
		Position:        position,
		Mass:            math.Inf(1),
		Inertia:         math.Inf(1),
		StaticFriction:  DefaultStaticFriction,
		DynamicFriction: DefaultDynamicFriction,
		Shape:           shape,
	}
	b.SetOrient(0)
	return b
}

// SetMass sets mass and inertia together with their inverses. Non-positive
// values yield zero inverses; Validate rejects them on dynamic bodies.
func (b *Body) SetMass(mass, inertia float64) {
	b.Mass = mass
	b.Inertia = inertia
	b.InverseMass = 0
	b.InverseInertia = 0
	if mass > 0 && !math.IsInf(mass, 1) {
		b.InverseMass = 1 / mass
	}
	if inertia > 0 && !math.IsInf(inertia, 1) {
		b.InverseInertia = 1 / inertia
	}
}

// SetFriction sets both friction coefficients.
func (b *Body) SetFriction(static, dynamic float64) {
	b.StaticFriction = static
	b.DynamicFriction = dynamic
}

// Orient returns the orientation in radians.
func (b *Body) Orient() float64 {
	return b.orient
}

// SetOrient sets the orientation in radians and refreshes the rotation matrix.
func (b *Body) SetOrient(radians float64) {
	b.orient = radians
	b.transform = mgl64.Rotate2D(radians)
}

// Validate reports whether the body can be simulated.
func (b *Body) Validate() error {
	if b.Kind == Static {
		return nil
	}
	switch {
	case !(b.Mass > 0) || math.IsInf(b.Mass, 1):
		return &InvalidBodyError{ID: b.ID, Reason: "mass must be positive and finite"}
	case !(b.Inertia > 0) || math.IsInf(b.Inertia, 1):
		return &InvalidBodyError{ID: b.ID, Reason: "inertia must be positive and finite"}
	}
	return nil
}

// LocalToWorld maps a body-local point into world space.
func (b *Body) LocalToWorld(p mgl64.Vec2) mgl64.Vec2 {
	return b.transform.Mul2x1(p).Add(b.Position)
}

// WorldToLocal maps a world point into body-local space.
func (b *Body) WorldToLocal(p mgl64.Vec2) mgl64.Vec2 {
	return b.transform.Transpose().Mul2x1(p.Sub(b.Position))
}

// WorldVertices returns the collider outline in world space, closed by
// repeating the first vertex.
func (b *Body) WorldVertices() []mgl64.Vec2 {
	verts := b.Shape.Vertices
	out := make([]mgl64.Vec2, 0, len(verts)+1)
	for _, v := range verts {
		out = append(out, b.LocalToWorld(v))
	}
	if len(out) > 0 {
		out = append(out, out[0])
	}
	return out
}

// aabb is an axis-aligned box in world space.
type aabb struct {
	min, max mgl64.Vec2
}

func (a aabb) overlaps(o aabb) bool {
	return a.min[0] <= o.max[0] && o.min[0] <= a.max[0] &&
		a.min[1] <= o.max[1] && o.min[1] <= a.max[1]
}

func (b *Body) bounds() aabb {
	lo := mgl64.Vec2{fltMax, fltMax}
	hi := mgl64.Vec2{-fltMax, -fltMax}
	for _, v := range b.Shape.Vertices {
		w := b.LocalToWorld(v)
		lo = mgl64.Vec2{math.Min(lo[0], w[0]), math.Min(lo[1], w[1])}
		hi = mgl64.Vec2{math.Max(hi[0], w[0]), math.Max(hi[1], w[1])}
	}
	r := b.Shape.Radius
	box := aabb{
		min: lo.Sub(mgl64.Vec2{r, r}),
		max: hi.Add(mgl64.Vec2{r, r}),
	}
	if b.Shape.OneSided {
		// The solid side is unbounded behind the wall.
		n := b.transform.Mul2x1(b.Shape.inward())
		for k := 0; k < 2; k++ {
			if n[k] > epsilon {
				box.min[k] = -fltMax
			} else if n[k] < -epsilon {
				box.max[k] = fltMax
			}
		}
	}
	return box
}
