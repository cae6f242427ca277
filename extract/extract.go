// Package extract turns a binary image into polygon shapes in a Y-up
// coordinate system.
package extract

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/koteyur/shapefall/physac"
)

// Shape is one labeled region as a convex polygon. Polygon and Centroid are
// in Y-up image coordinates; Local is Polygon relative to Centroid.
type Shape struct {
	Label    int
	Pixels   int
	Polygon  []mgl64.Vec2
	Centroid mgl64.Vec2
	Local    []mgl64.Vec2
	Area     float64
}

// Extract builds one Shape per label. Labels that cannot form a polygon are
// skipped and reported through the returned error, which joins one
// EmptyShapeError or DegenerateShapeError per skipped label.
func Extract(l Labels) ([]Shape, error) {
	points := make([][]cp.Vector, l.Count+1)
	for row := 0; row < l.Height; row++ {
		for col := 0; col < l.Width; col++ {
			label := l.At(col, row)
			if label <= 0 {
				continue
			}
			points[label] = append(points[label], cp.Vector{
				X: float64(col),
				Y: float64(l.Height - row),
			})
		}
	}

	var (
		shapes []Shape
		errs   []error
	)
	for label := 1; label <= l.Count; label++ {
		s, err := newShape(label, points[label])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes, errors.Join(errs...)
}

func newShape(label int, pts []cp.Vector) (Shape, error) {
	n := len(pts)
	if n < 3 {
		return Shape{}, &EmptyShapeError{Label: label, Points: n}
	}

	hull := make([]cp.Vector, n)
	copy(hull, pts)
	count := cp.ConvexHull(n, hull, nil, 0)
	if count < 3 {
		return Shape{}, &DegenerateShapeError{Label: label, Points: n}
	}

	poly := make([]mgl64.Vec2, count)
	for i := 0; i < count; i++ {
		poly[i] = mgl64.Vec2{hull[i].X, hull[i].Y}
	}
	if physac.SignedArea(poly) < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}

	md := physac.ComputeMassData(poly)
	if md.Area <= 0 || math.IsNaN(md.Area) {
		return Shape{}, &DegenerateShapeError{Label: label, Points: n}
	}

	local := make([]mgl64.Vec2, count)
	for i, v := range poly {
		local[i] = v.Sub(md.Centroid)
	}
	return Shape{
		Label:    label,
		Pixels:   n,
		Polygon:  poly,
		Centroid: md.Centroid,
		Local:    local,
		Area:     md.Area,
	}, nil
}
