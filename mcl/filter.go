package mcl

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Filter tuning.
const (
	alphaSlow = 0.1 // slow injection EMA rate
	alphaFast = 0.8 // fast injection EMA rate
	alphaDist = 0.5 // convergence EMA rate

	// convergedDist is the convergence threshold in meters on the EMA of
	// the mean error of the best fifth of the surviving particles.
	convergedDist = 0.5

	// autonomousRetries bounds the redraws AutonomousStep spends looking
	// for a control whose straight path stays clear of walls.
	autonomousRetries = 32
)

// ParticleFilter is an augmented Monte-Carlo localizer. It owns a cloud of
// pose hypotheses, advances them through the motion model, re-weights them
// against the sensor reading taken at the simulated true pose, and
// resamples with adaptive random-particle injection driven by the
// wSlow/wFast weight averages, which recovers from kidnapping.
type ParticleFilter struct {
	mapp   *Map
	sensor Sensor
	motion *MotionModel
	rng    *rand.Rand

	particles []Pose
	pose      Pose
	lastMeas  Measurement

	wSlow float64
	wFast float64
	wDist float64
}

// NewFilter constructs a filter with n particles drawn uniformly over the
// map rectangle. Every random draw the filter ever makes — initial cloud,
// motion noise, sensing noise, resampling, injection — flows from the
// single source seeded here, so two filters built with identical
// (map, n, seed, kind) and fed identical controls evolve identically.
func NewFilter(mapp *Map, n int, seed int64, kind SensorKind) (*ParticleFilter, error) {
	if mapp == nil {
		return nil, fmt.Errorf("filter requires a map")
	}
	if n <= 0 {
		return nil, fmt.Errorf("particle count must be positive, got %d", n)
	}
	if len(mapp.walls) == 0 {
		return nil, fmt.Errorf("map has no walls; call PlaceWalls or LoadMap first")
	}

	rng := rand.New(rand.NewSource(seed))

	var sensor Sensor
	switch kind {
	case SensorRange:
		sensor = NewRangeScanner(mapp, rng)
	case SensorColor:
		sensor = NewColorSensor(mapp, rng)
	default:
		return nil, fmt.Errorf("unknown sensor kind %q", kind)
	}

	f := &ParticleFilter{
		mapp:   mapp,
		sensor: sensor,
		motion: NewMotionModel(mapp, rng),
		rng:    rng,
		wSlow:  1.0,
		wFast:  1.0,
		wDist:  10.0,
	}
	f.particles = make([]Pose, n)
	for i := range f.particles {
		f.particles[i] = uniformRandomPose(mapp, rng)
	}
	return f, nil
}

// Put places the simulated robot at a pose. The particle cloud is left
// untouched: the filter still has to find the robot.
func (f *ParticleFilter) Put(ang float64, coor Point) {
	f.pose = Pose{Ang: ang, Coor: coor}
}

// Pose returns the simulated true pose.
func (f *ParticleFilter) Pose() Pose {
	return f.pose
}

// Particles returns a snapshot of the particle cloud.
func (f *ParticleFilter) Particles() []Pose {
	out := make([]Pose, len(f.particles))
	copy(out, f.particles)
	return out
}

// LastMeasurement returns the reading taken at the true pose during the
// most recent step, or nil before the first step.
func (f *ParticleFilter) LastMeasurement() Measurement {
	return f.lastMeas
}

// Weights returns the slow and fast injection EMAs.
func (f *ParticleFilter) Weights() (wSlow, wFast float64) {
	return f.wSlow, f.wFast
}

// ConvergenceError returns the EMA of the mean error of the best fifth of
// the surviving particles, in meters.
func (f *ParticleFilter) ConvergenceError() float64 {
	return f.wDist
}

// InjectionFraction returns the probability that a resampling draw emits a
// fresh random particle instead of a survivor.
func (f *ParticleFilter) InjectionFraction() float64 {
	return injectionFraction(f.wSlow, f.wFast, f.sensor.Divider())
}

// injectionFraction clips wFast/(wSlow*divider) at 1 from above so the
// fraction never goes negative.
func injectionFraction(wSlow, wFast, divider float64) float64 {
	if wSlow <= 0 {
		return 1
	}
	frac := 1 - wFast/(wSlow*divider)
	if frac < 0 {
		return 0
	}
	return frac
}

// Step advances the simulation by one control and reports convergence.
//
// The true pose moves through the motion model (exactly when exact is set),
// a measurement is taken there, and every particle moves through the same
// motion model — always noisily — and is weighted by the sensor's
// likelihood of the measurement at its new pose. The cloud is then
// resampled from the cumulative weight prefix, substituting fresh random
// poses at the injection fraction; injected particles are placed after the
// survivors. A step never changes the cloud size.
func (f *ParticleFilter) Step(u Control, exact bool) bool {
	// Advance the truth and observe there.
	_, pose := f.motion.Advance(f.pose, u, exact)
	f.pose = pose
	m := f.sensor.Measure(f.pose)
	f.lastMeas = m

	// Advance and weight the particles. Collisions truncate a particle's
	// motion rather than rejecting it; the weight is taken at the
	// truncated pose.
	n := len(f.particles)
	moved := make([]Pose, n)
	weights := make([]float64, n)
	for i, p := range f.particles {
		_, np := f.motion.Advance(p, u, false)
		moved[i] = np
		weights[i] = f.sensor.Likelihood(m, np)
	}

	// Cumulative weight prefix with a zero sentinel: cum[k] is the total
	// weight of particles 0..k-1.
	cum := make([]float64, n+1)
	floats.CumSum(cum[1:], weights)
	total := cum[n]

	wAvg := f.sensor.AverageWeight(weights, m)
	f.wSlow += alphaSlow * (wAvg - f.wSlow)
	f.wFast += alphaFast * (wAvg - f.wFast)

	// Resample. A degenerate all-zero weight step falls back to full
	// random injection.
	pInject := injectionFraction(f.wSlow, f.wFast, f.sensor.Divider())
	cloud := make([]Pose, 0, n)
	injected := 0
	for i := 0; i < n; i++ {
		if total == 0 || f.rng.Float64() < pInject {
			injected++
			continue
		}
		sel := f.rng.Float64() * total
		k := sort.SearchFloat64s(cum[1:], sel)
		cloud = append(cloud, moved[k])
	}
	survivors := len(cloud)
	for i := 0; i < injected; i++ {
		cloud = append(cloud, f.sensor.SampleRandomPose())
	}
	f.particles = cloud

	// Convergence EMA over the best fifth of the survivors. Freshly
	// injected particles are excluded: they would keep the error high
	// long after the cloud has actually found the robot. A step with no
	// survivors leaves the EMA alone.
	if survivors > 0 {
		dists := make([]float64, survivors)
		for i, p := range cloud[:survivors] {
			dists[i] = DistPoints(f.pose.Coor, p.Coor)
		}
		sort.Float64s(dists)

		best := n / 5
		if best < 1 {
			best = 1
		}
		if best > survivors {
			best = survivors
		}
		sum := 0.0
		for _, d := range dists[:best] {
			sum += d
		}
		err := sum / float64(best)
		f.wDist += alphaDist * (err - f.wDist)
	}

	return f.wDist < convergedDist
}

// AutonomousStep issues a Step with a random exploratory control: a
// rotation drawn from N(0, π/3) and one meter of translation. Controls
// whose straight path would cross a wall are redrawn, up to
// autonomousRetries times; the last candidate is issued regardless, since
// the motion model stops short of walls on its own.
func (f *ParticleFilter) AutonomousStep() bool {
	var u Control
	for i := 0; i < autonomousRetries; i++ {
		u = Control{Ang: f.rng.NormFloat64() * math.Pi / 3, Dist: 1.0}
		dest := Point{
			X: f.pose.Coor.X + u.Dist*math.Cos(f.pose.Ang+u.Ang),
			Y: f.pose.Coor.Y + u.Dist*math.Sin(f.pose.Ang+u.Ang),
		}
		if !f.mapp.IntersectsAnyWall(Segment{P1: f.pose.Coor, P2: dest}) {
			break
		}
	}
	return f.Step(u, false)
}
