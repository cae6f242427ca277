package extract

import "image"

// Labels is a label map: 0 is background and each positive value identifies
// one connected shape. Pix is row-major.
type Labels struct {
	Width, Height int
	Count         int
	Pix           []int
}

// At returns the label of the pixel at (col, row).
func (l Labels) At(col, row int) int {
	return l.Pix[row*l.Width+col]
}

// Label assigns labels to the 8-connected non-zero regions of mask. Labels
// are numbered from 1 in the raster order of each region's first pixel.
func Label(mask *image.Gray) Labels {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	l := Labels{Width: w, Height: h, Pix: make([]int, w*h)}

	foreground := func(col, row int) bool {
		return mask.GrayAt(b.Min.X+col, b.Min.Y+row).Y != 0
	}

	var stack []int
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			idx := row*w + col
			if l.Pix[idx] != 0 || !foreground(col, row) {
				continue
			}
			l.Count++
			l.Pix[idx] = l.Count
			stack = append(stack[:0], idx)
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := cur%w, cur/w
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := cx+dx, cy+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						nidx := ny*w + nx
						if l.Pix[nidx] != 0 || !foreground(nx, ny) {
							continue
						}
						l.Pix[nidx] = l.Count
						stack = append(stack, nidx)
					}
				}
			}
		}
	}
	return l
}
