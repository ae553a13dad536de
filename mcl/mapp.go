package mcl

import (
	"fmt"
	"math"
)

// Floor color conventions. An uninitialised cell holds floorEmpty; floor
// generation paints every cell with a value in [MinFloorColor, MaxFloorColor].
const (
	floorEmpty    = 255
	MinFloorColor = 120
	MaxFloorColor = 200
)

// Map is a rasterized floor of discrete color values plus a list of wall
// segments. The raster is stored row-major in image orientation: pixel y
// grows downward while world y grows upward, so coordinate conversion flips
// the y axis.
//
// Once a map has been handed to a filter its walls must not change.
type Map struct {
	Width      float64 // meters
	Height     float64 // meters
	Resolution float64 // meters per pixel

	wpix  int
	hpix  int
	floor []uint8
	walls []Segment
}

// NewMap creates an empty map of the given size. The floor starts
// uninitialised and the wall list empty; call FillFloor and PlaceWalls (or
// LoadMap) before handing the map to a filter.
func NewMap(width, height, resolution float64) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("map size must be positive, got %gx%g", width, height)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("map resolution must be positive, got %g", resolution)
	}

	m := &Map{
		Width:      width,
		Height:     height,
		Resolution: resolution,
		wpix:       int(math.Ceil(width/resolution)) + 1,
		hpix:       int(math.Ceil(height/resolution)) + 1,
	}
	m.floor = make([]uint8, m.wpix*m.hpix)
	for i := range m.floor {
		m.floor[i] = floorEmpty
	}
	return m, nil
}

// PixelSize returns the raster dimensions in pixels.
func (m *Map) PixelSize() (int, int) {
	return m.wpix, m.hpix
}

// coorToPixel converts a coordinate in meters to a pixel coordinate,
// flipping the y axis into image orientation.
func (m *Map) coorToPixel(c Point) (int, int) {
	x := int(math.Round(c.X / m.Resolution))
	y := m.hpix - int(math.Round(c.Y/m.Resolution)) - 1
	return x, y
}

func (m *Map) getPixel(x, y int) uint8 {
	return m.floor[m.wpix*y+x]
}

func (m *Map) setPixel(x, y int, value uint8) {
	m.floor[m.wpix*y+x] = value
}

func (m *Map) isEmpty(x, y int) bool {
	return m.getPixel(x, y) == floorEmpty
}

// ColorAt returns the floor color at a coordinate in meters.
func (m *Map) ColorAt(c Point) uint8 {
	x, y := m.coorToPixel(c)
	return m.getPixel(x, y)
}

// ClosestWall returns the distance in meters from a coordinate to the
// nearest wall.
func (m *Map) ClosestWall(c Point) float64 {
	min := math.Inf(1)
	for _, wall := range m.walls {
		if d := DistPointSegment(c, wall); d < min {
			min = d
		}
	}
	return min
}

// IntersectsAnyWall reports whether the segment crosses or touches any wall.
func (m *Map) IntersectsAnyWall(s Segment) bool {
	for _, wall := range m.walls {
		if DistSegments(s, wall) == 0 {
			return true
		}
	}
	return false
}

// Walls returns a copy of the wall list. The first four walls are always
// the map boundary rectangle.
func (m *Map) Walls() []Segment {
	out := make([]Segment, len(m.walls))
	copy(out, m.walls)
	return out
}
