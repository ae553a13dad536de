package mcl

import (
	"math"
	"math/rand"
)

// motionStep is the collision-walk sub-step length in meters. It keeps the
// distance a translation can tunnel past a wall below the robot radius.
const motionStep = 0.1

// MotionModel advances poses by rotate-then-translate controls with
// optional Gaussian noise and wall collision handling.
type MotionModel struct {
	mapp *Map
	rng  *rand.Rand

	DistSigma float64 // relative noise on the translation distance
	AngSigma  float64 // absolute noise on the rotation, radians
	Size      float64 // robot radius in meters
}

// NewMotionModel creates a motion model over the map with the default noise
// parameters. The rand source is shared with the caller so that a seeded
// filter stays reproducible.
func NewMotionModel(mapp *Map, rng *rand.Rand) *MotionModel {
	return &MotionModel{
		mapp:      mapp,
		rng:       rng,
		DistSigma: DefaultDistSigma,
		AngSigma:  DefaultAngSigma,
		Size:      DefaultRobotSize,
	}
}

// Advance applies the control u to a pose and returns the resulting pose
// along with whether the translation was cut short by a wall.
//
// With exact the control is applied verbatim; otherwise the rotation and
// distance are drawn from Gaussians centered on the control. The
// translation walks in sub-steps of at most motionStep; the first sub-step
// that brings the pose within Size of a wall backs off one sub-step and
// stops. Negative noisy distances collapse to a rotation-only move.
func (mm *MotionModel) Advance(pose Pose, u Control, exact bool) (bool, Pose) {
	ang := pose.Ang + u.Ang
	dist := u.Dist
	if !exact {
		ang = pose.Ang + u.Ang + mm.rng.NormFloat64()*mm.AngSigma
		dist = u.Dist + mm.rng.NormFloat64()*mm.DistSigma*u.Dist
	}
	if dist < 0 {
		dist = 0
	}

	steps := int(math.Ceil(dist / motionStep))
	if steps == 0 {
		return false, Pose{Ang: ang, Coor: pose.Coor}
	}

	xStep := dist / float64(steps) * math.Cos(ang)
	yStep := dist / float64(steps) * math.Sin(ang)

	step := 0
	collided := false
walk:
	for step < steps {
		step++
		pos := Point{
			X: pose.Coor.X + float64(step)*xStep,
			Y: pose.Coor.Y + float64(step)*yStep,
		}
		for _, wall := range mm.mapp.walls {
			if DistPointSegment(pos, wall) < mm.Size {
				step--
				collided = true
				break walk
			}
		}
	}

	return collided, Pose{
		Ang: ang,
		Coor: Point{
			X: pose.Coor.X + float64(step)*xStep,
			Y: pose.Coor.Y + float64(step)*yStep,
		},
	}
}
