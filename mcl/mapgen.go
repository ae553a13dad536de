package mcl

import (
	"fmt"
	"math"
	"math/rand"
)

// wallClearance is the minimum distance in meters a generated wall keeps
// from every other wall.
const wallClearance = 1.0

// FillFloor paints the floor with numAreas randomly seeded patches using a
// palette of numColors values spread evenly over
// [MinFloorColor, MaxFloorColor]. Patches grow by a randomized flood fill
// until every cell is colored.
func (m *Map) FillFloor(numAreas, numColors int, rng *rand.Rand) error {
	if numAreas < 1 {
		return fmt.Errorf("at least one area is required, got %d", numAreas)
	}
	if numColors < 2 {
		return fmt.Errorf("at least two colors are required, got %d", numColors)
	}

	mult := float64(MaxFloorColor-MinFloorColor) / float64(numColors-1)

	type cell struct {
		x, y  int
		color uint8
	}

	// Seed the todo list with the patch origins. Every entry is a cell
	// that is allowed to be painted right now.
	todo := make([]cell, 0, numAreas)
	for i := 0; i < numAreas; i++ {
		color := uint8(float64(rng.Intn(numColors))*mult) + MinFloorColor
		todo = append(todo, cell{
			x:     rng.Intn(m.wpix),
			y:     rng.Intn(m.hpix),
			color: color,
		})
	}

	// Pop random cells until the whole floor is painted. Painting a cell
	// queues its empty neighbours with the same color, so patches grow
	// into each other at random rates.
	for len(todo) > 0 {
		i := rng.Intn(len(todo))
		c := todo[i]
		todo[i] = todo[len(todo)-1]
		todo = todo[:len(todo)-1]

		if !m.isEmpty(c.x, c.y) {
			continue
		}
		m.setPixel(c.x, c.y, c.color)

		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			x, y := c.x+d[0], c.y+d[1]
			if x >= 0 && x < m.wpix && y >= 0 && y < m.hpix && m.isEmpty(x, y) {
				todo = append(todo, cell{x: x, y: y, color: c.color})
			}
		}
	}
	return nil
}

// PlaceWalls adds the boundary rectangle (if not already present) and num
// random interior walls of the given average length. Interior walls start
// at a point with at least wallClearance to every other wall and grow in
// 0.1 m steps until they would violate the clearance, or until a random
// cutoff whose rate is tuned by avgLength.
func (m *Map) PlaceWalls(num int, avgLength float64, rng *rand.Rand) error {
	if num < 0 {
		return fmt.Errorf("wall count must not be negative, got %d", num)
	}
	if avgLength <= 0 {
		return fmt.Errorf("average wall length must be positive, got %g", avgLength)
	}
	if num > 0 && (m.Width < 3*wallClearance || m.Height < 3*wallClearance) {
		return fmt.Errorf("map %gx%g is too small for interior walls", m.Width, m.Height)
	}

	if len(m.walls) == 0 {
		m.walls = append(m.walls,
			Segment{Point{0, 0}, Point{m.Width, 0}},
			Segment{Point{m.Width, 0}, Point{m.Width, m.Height}},
			Segment{Point{m.Width, m.Height}, Point{0, m.Height}},
			Segment{Point{0, m.Height}, Point{0, 0}},
		)
	}

	for i := 0; i < num; i++ {
		// Find a start point and angle so the wall can be at least one
		// meter long while keeping its clearance.
		var start Point
		var ang float64
		for {
			start = Point{rng.Float64() * m.Width, rng.Float64() * m.Height}
			ang = rng.Float64() * 2 * math.Pi
			end := Point{start.X + math.Cos(ang), start.Y + math.Sin(ang)}
			if m.ClosestWall(start) >= wallClearance && m.ClosestWall(end) >= wallClearance {
				break
			}
		}

		// Grow the wall as long as possible without coming closer than
		// the clearance (plus one step of margin) to any other wall.
		step := 9
		var end Point
		for {
			step++
			end = Point{
				X: start.X + 0.1*float64(step)*math.Cos(ang),
				Y: start.Y + 0.1*float64(step)*math.Sin(ang),
			}
			if m.ClosestWall(end) < wallClearance+0.1 || rng.Float64() < 0.1/avgLength {
				break
			}
		}

		m.walls = append(m.walls, Segment{start, end})
	}
	return nil
}
