package mcl

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Range scanner tuning.
const (
	defaultHalfMeasures = 25
	defaultMaxRange     = 10.0
	defaultMinRange     = 0.5
	defaultHitSigma     = 0.2
	rangeDivider        = 1.5

	// rangeLikelihoodFloor keeps a single bad reading from zeroing a
	// particle's weight.
	rangeLikelihoodFloor = 0.01
)

// RangeScanner emits bearing/range pairs by casting rays against the map
// walls. Poses are scored with a likelihood field: a reading is judged by
// how close its implied endpoint lies to any wall, not by re-casting the
// ray, which is both cheaper and smoother.
type RangeScanner struct {
	mapp *Map
	rng  *rand.Rand

	HalfMeasures int
	MaxRange     float64
	MinRange     float64
	DistSigma    float64
	AngSigma     float64

	hit distuv.Normal
}

// NewRangeScanner creates a scanner over the map with the default
// parameters. The rand source is shared with the owning filter.
func NewRangeScanner(mapp *Map, rng *rand.Rand) *RangeScanner {
	return &RangeScanner{
		mapp:         mapp,
		rng:          rng,
		HalfMeasures: defaultHalfMeasures,
		MaxRange:     defaultMaxRange,
		MinRange:     defaultMinRange,
		DistSigma:    DefaultDistSigma,
		AngSigma:     DefaultAngSigma,
		hit:          distuv.Normal{Mu: 0, Sigma: defaultHitSigma},
	}
}

// Measure casts HalfMeasures rays with bearings spread over [0, π). Each
// ray is intersected with every wall in both directions, so one bearing can
// yield up to two readings: the forward hit at the bearing itself and the
// backward hit at bearing-π (wrapped into (-π, π]). Hits outside (MinRange, MaxRange) are dropped.
func (s *RangeScanner) Measure(pose Pose) Measurement {
	scan := make(RangeScan, 0, 2*s.HalfMeasures)

	for i := 0; i < s.HalfMeasures; i++ {
		bearing := math.Pi * float64(i) / float64(s.HalfMeasures)
		rayAng := pose.Ang + bearing + s.rng.NormFloat64()*s.AngSigma

		beam := Segment{
			P1: pose.Coor,
			P2: Point{
				X: pose.Coor.X + math.Cos(rayAng),
				Y: pose.Coor.Y + math.Sin(rayAng),
			},
		}

		// The beam has unit length, so the line parameter t1 is the hit
		// distance in meters. Track the nearest hit ahead of the robot
		// and the nearest hit behind it.
		forward := math.Inf(1)
		backward := math.Inf(-1)
		for _, wall := range s.mapp.walls {
			t1, t2 := IntersectLines(beam, wall)
			if t2 < 0 || t2 > 1 {
				continue
			}
			if t1 > 0 && t1 < forward {
				forward = t1
			}
			if t1 < 0 && t1 > backward {
				backward = t1
			}
		}

		if !math.IsInf(forward, 1) {
			d := forward + s.rng.NormFloat64()*s.DistSigma*forward
			if d > s.MinRange && d < s.MaxRange {
				scan = append(scan, RangeMeasurement{Bearing: bearing, Range: d})
			}
		}
		if !math.IsInf(backward, -1) {
			d := -backward + s.rng.NormFloat64()*s.DistSigma*(-backward)
			if d > s.MinRange && d < s.MaxRange {
				// Keep the bearing in (-π, π]: the backward ray of
				// bearing 0 points at π, not -π.
				back := bearing - math.Pi
				if back <= -math.Pi {
					back += 2 * math.Pi
				}
				scan = append(scan, RangeMeasurement{Bearing: back, Range: d})
			}
		}
	}

	return scan
}

// Likelihood scores the pose against a scan as the product over readings of
// the hit density at the distance between the reading's implied endpoint
// and the nearest wall, floored so a few bad readings degrade the weight
// instead of erasing it.
func (s *RangeScanner) Likelihood(m Measurement, pose Pose) float64 {
	scan := m.(RangeScan)
	p := 1.0
	for _, r := range scan {
		end := Point{
			X: pose.Coor.X + r.Range*math.Cos(pose.Ang+r.Bearing),
			Y: pose.Coor.Y + r.Range*math.Sin(pose.Ang+r.Bearing),
		}
		p *= s.hit.Prob(s.mapp.ClosestWall(end)) + rangeLikelihoodFloor
	}
	return p
}

// AverageWeight reduces the weights to their geometric mean with exponent
// 1/(N*|scan|), computed in log space: the raw product of N*|scan| small
// factors underflows long before the mean does.
func (s *RangeScanner) AverageWeight(weights []float64, m Measurement) float64 {
	scan := m.(RangeScan)
	if len(weights) == 0 {
		return 0
	}

	measures := len(scan)
	if measures == 0 {
		return 1
	}

	logSum := 0.0
	for _, w := range weights {
		logSum += math.Log(w)
	}
	return math.Exp(logSum / float64(len(weights)*measures))
}

// Divider tunes the random-injection fraction for this sensor.
func (s *RangeScanner) Divider() float64 {
	return rangeDivider
}

// SampleRandomPose draws a pose uniformly over the map rectangle.
func (s *RangeScanner) SampleRandomPose() Pose {
	return uniformRandomPose(s.mapp, s.rng)
}
