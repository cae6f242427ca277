// Package render draws simulation frames as outline images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/koteyur/shapefall/physac"
	"golang.org/x/image/colornames"
	"golang.org/x/image/vector"
)

// DefaultPalette colors bodies in registration order, cycling.
var DefaultPalette = []color.Color{
	colornames.Steelblue,
	colornames.Crimson,
	colornames.Darkgreen,
	colornames.Darkorange,
	colornames.Purple,
	colornames.Teal,
}

// FrameName is the file name of the frame at step.
func FrameName(step int) string {
	return fmt.Sprintf("%04d.png", step)
}

// PNG writes each frame to Dir as a zero-padded, step-numbered PNG file.
type PNG struct {
	Dir        string
	Width      int
	Height     int
	LineWidth  float64
	Background color.Color
	Palette    []color.Color

	z *vector.Rasterizer
}

// NewPNG creates dir if needed and returns a renderer for a width×height
// world.
func NewPNG(dir string, width, height int) (*PNG, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid canvas %dx%d", width, height)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: create %s: %w", dir, err)
	}
	return &PNG{
		Dir:        dir,
		Width:      width,
		Height:     height,
		LineWidth:  2,
		Background: colornames.White,
		Palette:    DefaultPalette,
	}, nil
}

// Render draws f and saves it as Dir/NNNN.png.
func (p *PNG) Render(f physac.Frame) error {
	path := filepath.Join(p.Dir, FrameName(f.Step))
	if err := imgio.Save(path, p.Draw(f), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	return nil
}

// Draw rasterizes f onto a fresh canvas. World y grows upwards, image rows
// grow downwards. An empty Palette falls back to DefaultPalette.
func (p *PNG) Draw(f physac.Frame) *image.RGBA {
	bounds := image.Rect(0, 0, p.Width, p.Height)
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, image.NewUniform(p.Background), image.Point{}, draw.Src)

	if p.z == nil {
		p.z = vector.NewRasterizer(p.Width, p.Height)
	}
	palette := p.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	for i, loop := range f.Loops {
		p.z.Reset(p.Width, p.Height)
		p.z.DrawOp = draw.Over
		for j := 0; j+1 < len(loop); j++ {
			p.strokeEdge(loop[j], loop[j+1])
		}
		src := image.NewUniform(palette[i%len(palette)])
		p.z.Draw(img, bounds, src, image.Point{})
	}
	return img
}

// strokeEdge adds a quad of LineWidth around the edge a-b.
func (p *PNG) strokeEdge(a, b mgl64.Vec2) {
	a, b = p.toCanvas(a), p.toCanvas(b)
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return
	}
	n := mgl64.Vec2{-d[1], d[0]}.Mul(p.LineWidth / (2 * l))

	corners := [4]mgl64.Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}
	p.z.MoveTo(float32(corners[0][0]), float32(corners[0][1]))
	for _, c := range corners[1:] {
		p.z.LineTo(float32(c[0]), float32(c[1]))
	}
	p.z.ClosePath()
}

func (p *PNG) toCanvas(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{v[0], float64(p.Height) - v[1]}
}
