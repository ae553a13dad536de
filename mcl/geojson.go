package mcl

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// GeoJSON geometry types emitted by the exporters.
const (
	GeometryPoint           = "Point"
	GeometryLineString      = "LineString"
	GeometryMultiPoint      = "MultiPoint"
	GeometryMultiLineString = "MultiLineString"
)

// Geometry is a GeoJSON geometry object. Coordinates stay raw so the
// containers serialize without per-type marshalers.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature is a GeoJSON feature with geometry and properties.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates an empty FeatureCollection.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0),
	}
}

// AddFeature appends a feature to the collection.
func (fc *FeatureCollection) AddFeature(f *Feature) {
	fc.Features = append(fc.Features, f)
}

func newFeature(geom *Geometry, props map[string]interface{}) *Feature {
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Feature{Type: "Feature", Geometry: geom, Properties: props}
}

func orbPoint(p Point) orb.Point {
	return orb.Point{p.X, p.Y}
}

func lineStringToGeometry(ls orb.LineString) *Geometry {
	coords := make([][2]float64, len(ls))
	for i, p := range ls {
		coords[i] = [2]float64{p[0], p[1]}
	}
	raw, _ := json.Marshal(coords)
	return &Geometry{Type: GeometryLineString, Coordinates: raw}
}

// WallsFeature exports the wall list as a MultiLineString, one two-point
// line per wall.
func WallsFeature(m *Map) *Feature {
	lines := make([][][2]float64, 0, len(m.walls))
	for _, w := range m.walls {
		lines = append(lines, [][2]float64{
			{w.P1.X, w.P1.Y},
			{w.P2.X, w.P2.Y},
		})
	}
	raw, _ := json.Marshal(lines)
	geom := &Geometry{Type: GeometryMultiLineString, Coordinates: raw}
	return newFeature(geom, map[string]interface{}{"kind": "walls"})
}

// CloudFeature exports the particle positions as a MultiPoint, annotated
// with the cloud centroid and spread.
func CloudFeature(particles []Pose) *Feature {
	coords := make([][2]float64, len(particles))
	for i, p := range particles {
		coords[i] = [2]float64{p.Coor.X, p.Coor.Y}
	}
	raw, _ := json.Marshal(coords)
	geom := &Geometry{Type: GeometryMultiPoint, Coordinates: raw}

	centroid, spread := CloudCentroid(particles)
	return newFeature(geom, map[string]interface{}{
		"kind":     "particles",
		"count":    len(particles),
		"centroid": [2]float64{centroid.X, centroid.Y},
		"spread":   spread,
	})
}

// RobotFeature exports the true pose as a Point with its heading attached.
func RobotFeature(pose Pose) *Feature {
	raw, _ := json.Marshal([2]float64{pose.Coor.X, pose.Coor.Y})
	geom := &Geometry{Type: GeometryPoint, Coordinates: raw}
	return newFeature(geom, map[string]interface{}{
		"kind": "robot",
		"ang":  pose.Ang,
	})
}

// TrajectoryFeature exports a driven path as a LineString, simplified with
// Douglas-Peucker when tolerance is positive.
func TrajectoryFeature(trajectory []Point, tolerance float64) *Feature {
	simplified := SimplifyTrajectory(trajectory, tolerance)
	ls := make(orb.LineString, len(simplified))
	for i, p := range simplified {
		ls[i] = orbPoint(p)
	}
	return newFeature(lineStringToGeometry(ls), map[string]interface{}{
		"kind":   "trajectory",
		"points": len(ls),
	})
}

// SimplifyTrajectory reduces a path with Douglas-Peucker at the given
// tolerance in meters. Non-positive tolerances return the path unchanged.
func SimplifyTrajectory(trajectory []Point, tolerance float64) []Point {
	if tolerance <= 0 || len(trajectory) < 3 {
		return trajectory
	}

	ls := make(orb.LineString, len(trajectory))
	for i, p := range trajectory {
		ls[i] = orbPoint(p)
	}
	s := simplify.DouglasPeucker(tolerance).Simplify(ls.Clone())
	result, ok := s.(orb.LineString)
	if !ok || len(result) < 2 {
		return trajectory
	}

	out := make([]Point, len(result))
	for i, p := range result {
		out[i] = Point{X: p[0], Y: p[1]}
	}
	return out
}

// CloudCentroid returns the mean particle position and the mean distance
// of the particles from it.
func CloudCentroid(particles []Pose) (Point, float64) {
	if len(particles) == 0 {
		return Point{}, 0
	}

	var cx, cy float64
	for _, p := range particles {
		cx += p.Coor.X
		cy += p.Coor.Y
	}
	centroid := Point{X: cx / float64(len(particles)), Y: cy / float64(len(particles))}

	spread := 0.0
	oc := orbPoint(centroid)
	for _, p := range particles {
		spread += planar.Distance(oc, orbPoint(p.Coor))
	}
	return centroid, spread / float64(len(particles))
}

// SnapshotGeoJSON bundles the current filter state — walls, cloud, robot
// and the trajectory driven so far — into one FeatureCollection for
// external plotting.
func SnapshotGeoJSON(f *ParticleFilter, trajectory []Point, tolerance float64) *FeatureCollection {
	fc := NewFeatureCollection()
	fc.AddFeature(WallsFeature(f.mapp))
	fc.AddFeature(CloudFeature(f.particles))
	fc.AddFeature(RobotFeature(f.pose))
	if len(trajectory) > 1 {
		fc.AddFeature(TrajectoryFeature(trajectory, tolerance))
	}
	return fc
}
