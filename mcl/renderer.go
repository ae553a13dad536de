package mcl

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// MapRenderer draws the floor raster, the walls and the filter state into
// an image at one pixel per map cell. Particle density shades from green
// (sparse) to yellow (dense), the robot is a red marker.
type MapRenderer struct {
	mapp *Map

	DrawFloor bool
	DrawWalls bool
	Label     string
}

// NewMapRenderer creates a raster renderer for the map.
func NewMapRenderer(m *Map) *MapRenderer {
	return &MapRenderer{mapp: m, DrawFloor: true, DrawWalls: true}
}

// Render draws the map and the given state. robot may be nil and particles
// empty; both are simply skipped.
func (r *MapRenderer) Render(robot *Pose, particles []Pose) *image.RGBA {
	m := r.mapp
	img := image.NewRGBA(image.Rect(0, 0, m.wpix, m.hpix))

	for y := 0; y < m.hpix; y++ {
		for x := 0; x < m.wpix; x++ {
			v := uint8(255)
			if r.DrawFloor {
				v = m.getPixel(x, y)
			}
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}

	if r.DrawWalls {
		for _, wall := range m.walls {
			x1, y1 := m.coorToPixel(wall.P1)
			x2, y2 := m.coorToPixel(wall.P2)
			drawLine(img, x1, y1, x2, y2, color.RGBA{0, 0, 0, 255})
		}
	}

	if len(particles) > 0 {
		r.drawParticles(img, particles)
	}

	if robot != nil {
		r.drawRobot(img, *robot)
	}

	if r.Label != "" {
		drawText(img, 4, 12, r.Label, color.RGBA{0, 0, 0, 255})
	}

	return img
}

// WritePNG renders and PNG-encodes in one call.
func (r *MapRenderer) WritePNG(w io.Writer, robot *Pose, particles []Pose) error {
	return png.Encode(w, r.Render(robot, particles))
}

// drawParticles shades each occupied pixel by its share of the densest
// pixel's count, blended over the floor.
func (r *MapRenderer) drawParticles(img *image.RGBA, particles []Pose) {
	m := r.mapp

	counts := make(map[image.Point]int)
	max := 0
	for _, p := range particles {
		x, y := m.coorToPixel(p.Coor)
		pt := image.Pt(x, y)
		counts[pt]++
		if counts[pt] > max {
			max = counts[pt]
		}
	}

	for pt, count := range counts {
		if pt.X < 0 || pt.X >= m.wpix || pt.Y < 0 || pt.Y >= m.hpix {
			continue
		}
		v := uint8(255 * count / max)
		overlay := color.RGBA{v, 255, 0, 255}
		img.SetRGBA(pt.X, pt.Y, blend(img.RGBAAt(pt.X, pt.Y), overlay))
	}
}

// drawRobot marks the robot as a red square spanning the pixels around its
// position.
func (r *MapRenderer) drawRobot(img *image.RGBA, robot Pose) {
	m := r.mapp
	x1 := int(math.Floor(robot.Coor.X / m.Resolution))
	y1 := m.hpix - int(math.Floor(robot.Coor.Y/m.Resolution)) - 1
	x2 := int(math.Ceil(robot.Coor.X / m.Resolution))
	y2 := m.hpix - int(math.Ceil(robot.Coor.Y/m.Resolution)) - 1

	red := color.RGBA{255, 0, 0, 255}
	for _, y := range []int{y1, y2} {
		for _, x := range []int{x1, x2} {
			if x >= 0 && x < m.wpix && y >= 0 && y < m.hpix {
				img.SetRGBA(x, y, red)
			}
		}
	}
}

// blend mixes an overlay color over a base at a fixed 60/40 ratio.
func blend(base, overlay color.RGBA) color.RGBA {
	mix := func(b, o uint8) uint8 {
		return uint8(0.4*float64(b) + 0.6*float64(o))
	}
	return color.RGBA{
		R: mix(base.R, overlay.R),
		G: mix(base.G, overlay.G),
		B: mix(base.B, overlay.B),
		A: 255,
	}
}

// drawLine draws a one-pixel line with the integer midpoint algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if x1 >= 0 && x1 < img.Bounds().Max.X && y1 >= 0 && y1 < img.Bounds().Max.Y {
			img.SetRGBA(x1, y1, c)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawText renders text onto an image at the specified position.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
