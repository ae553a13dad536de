package mcl

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

// zeroSensor drives the filter into the degenerate all-zero weight path.
type zeroSensor struct {
	m   *Map
	rng *rand.Rand
}

func (s zeroSensor) Measure(Pose) Measurement { return ColorReading(0) }

func (s zeroSensor) Likelihood(Measurement, Pose) float64 { return 0 }

func (s zeroSensor) AverageWeight([]float64, Measurement) float64 { return 0 }

func (s zeroSensor) Divider() float64 { return 1 }

func (s zeroSensor) SampleRandomPose() Pose { return uniformRandomPose(s.m, s.rng) }

func TestNewFilterValidation(t *testing.T) {
	m := colorPatchMap(t)

	if _, err := NewFilter(nil, 10, 1, SensorColor); err == nil {
		t.Error("expected error for nil map")
	}
	if _, err := NewFilter(m, 0, 1, SensorColor); err == nil {
		t.Error("expected error for zero particles")
	}
	if _, err := NewFilter(m, 10, 1, SensorKind("sonar")); err == nil {
		t.Error("expected error for unknown sensor kind")
	}

	bare, err := NewMap(10, 10, 0.1)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if _, err := NewFilter(bare, 10, 1, SensorColor); err == nil {
		t.Error("expected error for a map without walls")
	}
}

func TestInitialCloud(t *testing.T) {
	m := colorPatchMap(t)
	f, err := NewFilter(m, 250, 9, SensorColor)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}

	particles := f.Particles()
	if len(particles) != 250 {
		t.Fatalf("cloud size = %d, want 250", len(particles))
	}
	for _, p := range particles {
		if p.Coor.X < 0 || p.Coor.X > m.Width || p.Coor.Y < 0 || p.Coor.Y > m.Height {
			t.Fatalf("initial particle %v outside the map", p)
		}
	}
}

func TestPutIdempotent(t *testing.T) {
	m := colorPatchMap(t)
	f, err := NewFilter(m, 50, 2, SensorColor)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}

	f.Put(1.2, Point{3, 4})
	pose1 := f.Pose()
	cloud1 := f.Particles()

	f.Put(1.2, Point{3, 4})
	if f.Pose() != pose1 {
		t.Error("second Put changed the pose")
	}
	if !reflect.DeepEqual(f.Particles(), cloud1) {
		t.Error("Put must leave the particle cloud untouched")
	}
}

func TestStepKeepsCloudSize(t *testing.T) {
	m := colorPatchMap(t)

	for _, kind := range []SensorKind{SensorColor, SensorRange} {
		f, err := NewFilter(m, 80, 13, kind)
		if err != nil {
			t.Fatalf("NewFilter(%s): %v", kind, err)
		}
		f.Put(0, Point{5, 5})

		for i := 0; i < 5; i++ {
			f.Step(Control{Ang: 0.4, Dist: 0.5}, false)
			if got := len(f.Particles()); got != 80 {
				t.Fatalf("%s: cloud size = %d after step %d, want 80", kind, got, i+1)
			}
		}
	}
}

func TestStepAllZeroWeights(t *testing.T) {
	m := colorPatchMap(t)
	f, err := NewFilter(m, 60, 4, SensorColor)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	f.Put(0, Point{5, 5})
	f.sensor = zeroSensor{m: f.mapp, rng: f.rng}

	f.Step(Control{Ang: 0, Dist: 0.3}, false)

	if got := len(f.Particles()); got != 60 {
		t.Fatalf("cloud size = %d after degenerate step, want 60", got)
	}
	wSlow, wFast := f.Weights()
	if math.IsNaN(wSlow) || math.IsNaN(wFast) {
		t.Error("EMAs must stay finite on an all-zero step")
	}
}

func TestSeededDeterminism(t *testing.T) {
	m := colorPatchMap(t)

	f1, err := NewFilter(m, 100, 42, SensorRange)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	f2, err := NewFilter(m, 100, 42, SensorRange)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	f1.Put(0.7, Point{3, 3})
	f2.Put(0.7, Point{3, 3})

	controls := rand.New(rand.NewSource(1000))
	for i := 0; i < 25; i++ {
		u := Control{Ang: controls.NormFloat64(), Dist: 0.5}

		c1 := f1.Step(u, false)
		c2 := f2.Step(u, false)
		if c1 != c2 {
			t.Fatalf("step %d: convergence flags diverge", i)
		}
		if f1.Pose() != f2.Pose() {
			t.Fatalf("step %d: true poses diverge", i)
		}
		if !reflect.DeepEqual(f1.Particles(), f2.Particles()) {
			t.Fatalf("step %d: particle clouds diverge", i)
		}
	}
}

func TestConvergenceOnColorPatch(t *testing.T) {
	m := colorPatchMap(t)
	f, err := NewFilter(m, 200, 42, SensorColor)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}

	// Orbit inside the unique patch: the repeated 200-readings are the
	// only place matching particles can live.
	f.Put(0, Point{5.5, 5.5})

	converged := false
	steps := 0
	for steps = 1; steps <= 50; steps++ {
		if f.Step(Control{Ang: math.Pi / 2, Dist: 0.3}, false) {
			converged = true
			break
		}
	}
	if !converged {
		t.Fatalf("no convergence within 50 steps (w_dist=%.3f)", f.ConvergenceError())
	}

	near := 0
	pose := f.Pose()
	for _, p := range f.Particles() {
		if DistPoints(pose.Coor, p.Coor) < 1.0 {
			near++
		}
	}
	if frac := float64(near) / 200; frac < 0.7 {
		t.Errorf("only %.0f%% of particles within 1 m of the robot after convergence",
			frac*100)
	}
}

func TestKidnapRaisesInjection(t *testing.T) {
	m := colorPatchMap(t)
	f, err := NewFilter(m, 200, 7, SensorColor)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}

	f.Put(0, Point{5.5, 5.5})
	for i := 0; i < 20; i++ {
		f.Step(Control{Ang: math.Pi / 2, Dist: 0.3}, false)
	}

	// Teleport without telling the filter. The cloud still sits on the
	// patch, the readings turn into the base color, and the fast EMA
	// collapses ahead of the slow one.
	f.Put(0, Point{1.5, 1.5})

	raised := false
	for i := 0; i < 3; i++ {
		f.Step(Control{Ang: math.Pi / 2, Dist: 0.3}, false)
		wSlow, wFast := f.Weights()
		if 1-wFast/wSlow > 0.2 {
			raised = true
			break
		}
	}
	if !raised {
		wSlow, wFast := f.Weights()
		t.Errorf("injection fraction stayed at %.3f after kidnapping",
			1-wFast/wSlow)
	}
}

func TestWeightFloorSurvivesDisagreement(t *testing.T) {
	m := colorPatchMap(t)
	f, err := NewFilter(m, 100, 5, SensorColor)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}

	// Robot sits on the patch; the whole cloud starts on the base color,
	// so every initial weight is the 0.05 floor.
	f.Put(0, Point{5.5, 5.5})
	for i := range f.particles {
		f.particles[i] = Pose{Ang: 0, Coor: Point{2, 2}}
	}

	for i := 0; i < 20; i++ {
		f.Step(Control{Ang: 0, Dist: 0}, false)

		wSlow, wFast := f.Weights()
		for _, v := range []float64{wSlow, wFast, f.ConvergenceError()} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("EMA became %f at step %d", v, i+1)
			}
		}
		if got := len(f.Particles()); got != 100 {
			t.Fatalf("cloud size = %d at step %d, want 100", got, i+1)
		}
	}
}

func TestAutonomousStep(t *testing.T) {
	m := colorPatchMap(t)
	f, err := NewFilter(m, 50, 3, SensorColor)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	f.Put(0, Point{5, 5})

	for i := 0; i < 10; i++ {
		f.AutonomousStep()
		pose := f.Pose()
		if pose.Coor.X < 0 || pose.Coor.X > m.Width ||
			pose.Coor.Y < 0 || pose.Coor.Y > m.Height {
			t.Fatalf("robot left the map at %v", pose.Coor)
		}
		if got := len(f.Particles()); got != 50 {
			t.Fatalf("cloud size = %d, want 50", got)
		}
	}
}
