package mcl

import (
	"math"
	"math/rand"
	"testing"
)

// colorPatchMap builds a bounded 10x10 map: base color everywhere except a
// 1x1 patch of 200 at (5,5)-(6,6).
func colorPatchMap(t *testing.T) *Map {
	t.Helper()
	m := boundedMap(t, 10, 10)
	fillUniform(m, 120)
	paintRect(m, 5, 5, 6, 6, 200)
	return m
}

func TestColorMeasure(t *testing.T) {
	m := colorPatchMap(t)
	s := NewColorSensor(m, rand.New(rand.NewSource(1)))

	if got := s.Measure(Pose{Coor: Point{5.5, 5.5}}); got != ColorReading(200) {
		t.Errorf("Measure on patch = %v, want 200", got)
	}
	if got := s.Measure(Pose{Coor: Point{2, 2}}); got != ColorReading(120) {
		t.Errorf("Measure off patch = %v, want 120", got)
	}
}

func TestColorLikelihood(t *testing.T) {
	m := colorPatchMap(t)
	s := NewColorSensor(m, rand.New(rand.NewSource(1)))

	if got := s.Likelihood(ColorReading(200), Pose{Coor: Point{5.5, 5.5}}); got != 1.0 {
		t.Errorf("matching likelihood = %f, want 1", got)
	}

	// A mismatch is exactly the floor weight, never zero.
	got := s.Likelihood(ColorReading(150), Pose{Coor: Point{2, 2}})
	if got != 0.05 {
		t.Errorf("mismatch likelihood = %v, want exactly 0.05", got)
	}
}

func TestColorAverageWeight(t *testing.T) {
	m := colorPatchMap(t)
	s := NewColorSensor(m, rand.New(rand.NewSource(1)))

	avg := s.AverageWeight([]float64{1, 0.05, 0.05, 0.05}, ColorReading(120))
	want := (1 + 3*0.05) / 4
	if math.Abs(avg-want) > 1e-15 {
		t.Errorf("arithmetic mean = %f, want %f", avg, want)
	}
}

func TestSensorDividers(t *testing.T) {
	m := colorPatchMap(t)
	rng := rand.New(rand.NewSource(1))

	if d := NewColorSensor(m, rng).Divider(); d != 1.0 {
		t.Errorf("color divider = %f, want 1.0", d)
	}
	if d := NewRangeScanner(m, rng).Divider(); d != 1.5 {
		t.Errorf("range divider = %f, want 1.5", d)
	}
}
