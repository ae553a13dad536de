package mcl

import "math/rand"

// Color sensor tuning.
const (
	colorDivider = 1.0

	// colorMissWeight is the non-zero weight a mismatching particle
	// keeps, so one bad reading cannot collapse the whole cloud.
	colorMissWeight = 0.05
)

// ColorSensor reads the floor color directly under a pose. The reading is
// exact; all discrimination comes from the floor patch layout.
type ColorSensor struct {
	mapp *Map
	rng  *rand.Rand
}

// NewColorSensor creates a color sensor over the map. The rand source is
// shared with the owning filter.
func NewColorSensor(mapp *Map, rng *rand.Rand) *ColorSensor {
	return &ColorSensor{mapp: mapp, rng: rng}
}

// Measure returns the floor color under the pose.
func (s *ColorSensor) Measure(pose Pose) Measurement {
	return ColorReading(s.mapp.ColorAt(pose.Coor))
}

// Likelihood is 1 when the floor under the pose matches the reading and
// colorMissWeight otherwise.
func (s *ColorSensor) Likelihood(m Measurement, pose Pose) float64 {
	if ColorReading(s.mapp.ColorAt(pose.Coor)) == m.(ColorReading) {
		return 1
	}
	return colorMissWeight
}

// AverageWeight reduces the weights to their arithmetic mean.
func (s *ColorSensor) AverageWeight(weights []float64, _ Measurement) float64 {
	if len(weights) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	return sum / float64(len(weights))
}

// Divider tunes the random-injection fraction for this sensor.
func (s *ColorSensor) Divider() float64 {
	return colorDivider
}

// SampleRandomPose draws a pose uniformly over the map rectangle.
func (s *ColorSensor) SampleRandomPose() Pose {
	return uniformRandomPose(s.mapp, s.rng)
}
