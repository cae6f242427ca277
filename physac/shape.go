package physac

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType selects the narrow-phase routine for a collider.
type ShapeType int

const (
	ShapePolygon ShapeType = iota
	ShapeSegment
)

func (t ShapeType) String() string {
	switch t {
	case ShapePolygon:
		return "polygon"
	case ShapeSegment:
		return "segment"
	default:
		return "unknown"
	}
}

// Shape is a convex collider in body-local coordinates. Vertices wind
// counter-clockwise and Normals[i] is the outward normal of the edge from
// Vertices[i] to Vertices[i+1].
//
// A segment is stored as a two-vertex loop whose two edges face opposite
// directions; Radius inflates it into a capsule. A OneSided segment is a
// boundary wall: only Normals[1], to the left of Vertices[0]->Vertices[1],
// faces free space and everything behind it counts as solid.
type Shape struct {
	Type     ShapeType
	Radius   float64
	OneSided bool
	Vertices []mgl64.Vec2
	Normals  []mgl64.Vec2
}

// NewPolygon builds a polygon collider from a convex vertex loop. Clockwise
// input is reversed.
func NewPolygon(verts []mgl64.Vec2) (Shape, error) {
	if len(verts) < 3 {
		return Shape{}, &InvalidBodyError{Reason: "polygon needs at least 3 vertices"}
	}
	area := SignedArea(verts)
	if math.Abs(area) <= epsilon || !finite(area) {
		return Shape{}, &InvalidBodyError{Reason: "polygon has zero area"}
	}
	v := make([]mgl64.Vec2, len(verts))
	copy(v, verts)
	if area < 0 {
		reverse(v)
	}
	return Shape{
		Type:     ShapePolygon,
		Vertices: v,
		Normals:  loopNormals(v),
	}, nil
}

// NewSegment builds a segment collider from a to b, inflated by radius.
func NewSegment(a, b mgl64.Vec2, radius float64) Shape {
	v := []mgl64.Vec2{a, b}
	return Shape{
		Type:     ShapeSegment,
		Radius:   radius,
		Vertices: v,
		Normals:  loopNormals(v),
	}
}

// NewWall builds a one-sided segment from a to b. Free space lies to the
// left of a->b, so a counter-clockwise box is walled by its own edges.
func NewWall(a, b mgl64.Vec2, radius float64) Shape {
	s := NewSegment(a, b, radius)
	s.OneSided = true
	return s
}

// inward is the free-side normal of a one-sided segment.
func (s Shape) inward() mgl64.Vec2 {
	return s.Normals[1]
}

func loopNormals(v []mgl64.Vec2) []mgl64.Vec2 {
	n := make([]mgl64.Vec2, len(v))
	for i := range v {
		n[i] = faceNormal(v[i], v[next(i, len(v))])
	}
	return n
}

func next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}

func reverse(v []mgl64.Vec2) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

// SignedArea is the shoelace area of a closed loop, positive when the loop
// winds counter-clockwise.
func SignedArea(verts []mgl64.Vec2) float64 {
	var area float64
	for i := range verts {
		area += Cross(verts[i], verts[next(i, len(verts))])
	}
	return area / 2
}

// MassData holds the area-weighted properties of a polygon of unit density.
// Inertia is taken about Centroid.
type MassData struct {
	Area     float64
	Centroid mgl64.Vec2
	Inertia  float64
}

// ComputeMassData integrates area, centroid and polar moment over the
// triangle fan of verts. The result is independent of winding.
func ComputeMassData(verts []mgl64.Vec2) MassData {
	var (
		area    float64
		center  mgl64.Vec2
		inertia float64
	)
	if len(verts) == 0 {
		return MassData{}
	}
	// Sums are taken relative to the first vertex so loops far from the
	// origin (pixel coordinates) stay well conditioned.
	ref := verts[0]
	for i := range verts {
		p1 := verts[i].Sub(ref)
		p2 := verts[next(i, len(verts))].Sub(ref)
		d := Cross(p1, p2)
		triangleArea := d / 2
		area += triangleArea
		center = center.Add(p1.Add(p2).Mul(triangleArea / 3))
		intx2 := p1[0]*p1[0] + p2[0]*p1[0] + p2[0]*p2[0]
		inty2 := p1[1]*p1[1] + p2[1]*p1[1] + p2[1]*p2[1]
		inertia += d / 12 * (intx2 + inty2)
	}
	if area == 0 {
		return MassData{}
	}
	center = center.Mul(1 / area)
	// Parallel axis theorem: move the moment from ref to the centroid.
	inertia -= area * lenSqr(center)
	if area < 0 {
		area, inertia = -area, -inertia
	}
	return MassData{
		Area:     area,
		Centroid: center.Add(ref),
		Inertia:  inertia,
	}
}
