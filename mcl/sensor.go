package mcl

import (
	"math"
	"math/rand"
)

// Sensor is the capability contract the particle filter holds. The filter
// never branches on the concrete sensor; everything sensor-specific — how a
// measurement is taken, how a pose is scored against it, how per-particle
// weights reduce to the average that drives the injection EMAs, and how
// aggressively random particles are injected — lives behind this interface.
type Sensor interface {
	// Measure takes a reading at the pose, with sensor-appropriate noise.
	Measure(pose Pose) Measurement

	// Likelihood scores the pose against a reading, up to a constant
	// factor. It is non-negative and never returns NaN.
	Likelihood(m Measurement, pose Pose) float64

	// AverageWeight reduces the per-particle weights of one step to the
	// average fed into the wSlow/wFast injection EMAs.
	AverageWeight(weights []float64, m Measurement) float64

	// Divider tunes the random-injection fraction
	// 1 - wFast/(wSlow*Divider).
	Divider() float64

	// SampleRandomPose draws a fresh hypothesis for random injection.
	SampleRandomPose() Pose
}

// uniformRandomPose draws a pose uniformly over the map rectangle with a
// uniform orientation in [0, 2π).
func uniformRandomPose(m *Map, rng *rand.Rand) Pose {
	return Pose{
		Ang: rng.Float64() * 2 * math.Pi,
		Coor: Point{
			X: rng.Float64() * m.Width,
			Y: rng.Float64() * m.Height,
		},
	}
}
