package physac

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	epsilon = 1e-9
	fltMax  = math.MaxFloat64
)

// Cross returns the z component of the 3D cross product of v1 and v2.
func Cross(v1, v2 mgl64.Vec2) float64 {
	return v1[0]*v2[1] - v1[1]*v2[0]
}

// CrossScalar returns the cross product of a scalar (z axis) and a vector.
func CrossScalar(s float64, v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-s * v[1], s * v[0]}
}

func lenSqr(v mgl64.Vec2) float64 {
	return v.Dot(v)
}

// normalize returns v scaled to unit length and the original length.
// A zero vector is returned unchanged with length 0.
func normalize(v mgl64.Vec2) (mgl64.Vec2, float64) {
	l := math.Sqrt(lenSqr(v))
	if l == 0 {
		return v, 0
	}
	return mgl64.Vec2{v[0] / l, v[1] / l}, l
}

// faceNormal is the outward normal of the edge a->b of a counter-clockwise loop.
func faceNormal(a, b mgl64.Vec2) mgl64.Vec2 {
	face := b.Sub(a)
	n, _ := normalize(mgl64.Vec2{face[1], -face[0]})
	return n
}

// biasGreaterThan prefers the first axis unless the second is clearly better,
// which keeps the reference face stable between steps.
func biasGreaterThan(a, b float64) bool {
	return a >= b*0.95+a*0.01
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
