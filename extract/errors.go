package extract

import "fmt"

// EmptyShapeError reports a label with too few pixels to form a polygon.
type EmptyShapeError struct {
	Label  int
	Points int
}

func (e *EmptyShapeError) Error() string {
	return fmt.Sprintf("extract: shape %d: %d points, need at least 3", e.Label, e.Points)
}

// DegenerateShapeError reports a label whose pixels are collinear.
type DegenerateShapeError struct {
	Label  int
	Points int
}

func (e *DegenerateShapeError) Error() string {
	return fmt.Sprintf("extract: shape %d: %d collinear points have zero area", e.Label, e.Points)
}
