package mcl

// Point represents a 2D coordinate in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pose is an orientation in radians plus a planar position.
type Pose struct {
	Ang  float64 `json:"ang"`
	Coor Point   `json:"coor"`
}

// Control is a commanded relative rotation followed by a translation
// distance in meters.
type Control struct {
	Ang  float64
	Dist float64
}

// Segment is a line segment between two points, used for walls and beams.
type Segment struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// RangeMeasurement is a single scanner reading: a bearing relative to the
// robot's heading in (-π, π] and a positive range in meters.
type RangeMeasurement struct {
	Bearing float64 `json:"bearing"`
	Range   float64 `json:"range"`
}

// RangeScan is the set of readings one Measure call emits.
type RangeScan []RangeMeasurement

// ColorReading is the floor color under a pose.
type ColorReading uint8

// Measurement is a sensor reading taken at the true pose. The concrete type
// depends on the sensor: RangeScan for the range scanner, ColorReading for
// the color sensor.
type Measurement interface{}

// SensorKind selects which sensor model a filter is built with.
type SensorKind string

const (
	SensorRange SensorKind = "range"
	SensorColor SensorKind = "color"
)

// Default noise and robot geometry parameters shared by the motion model
// and the sensors.
const (
	DefaultDistSigma = 0.05 // relative noise on translated distances
	DefaultAngSigma  = 0.05 // absolute noise on rotations, radians
	DefaultRobotSize = 0.2  // robot radius in meters
)
