package mcl

import (
	"encoding/json"
	"math"
	"testing"
)

func TestWallsFeature(t *testing.T) {
	m := colorPatchMap(t)
	f := WallsFeature(m)

	if f.Geometry.Type != GeometryMultiLineString {
		t.Fatalf("geometry type = %s, want MultiLineString", f.Geometry.Type)
	}

	var lines [][][2]float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &lines); err != nil {
		t.Fatalf("unmarshaling coordinates: %v", err)
	}
	if len(lines) != 4 {
		t.Errorf("line count = %d, want 4 boundary walls", len(lines))
	}
	for _, line := range lines {
		if len(line) != 2 {
			t.Errorf("wall line has %d points, want 2", len(line))
		}
	}
}

func TestCloudFeature(t *testing.T) {
	particles := []Pose{
		{Coor: Point{1, 1}},
		{Coor: Point{3, 1}},
		{Coor: Point{2, 4}},
	}
	f := CloudFeature(particles)

	if f.Geometry.Type != GeometryMultiPoint {
		t.Fatalf("geometry type = %s, want MultiPoint", f.Geometry.Type)
	}
	if f.Properties["count"] != 3 {
		t.Errorf("count property = %v, want 3", f.Properties["count"])
	}

	var coords [][2]float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
		t.Fatalf("unmarshaling coordinates: %v", err)
	}
	if len(coords) != 3 {
		t.Errorf("coordinate count = %d, want 3", len(coords))
	}
}

func TestCloudCentroid(t *testing.T) {
	particles := []Pose{
		{Coor: Point{0, 0}},
		{Coor: Point{2, 0}},
		{Coor: Point{2, 2}},
		{Coor: Point{0, 2}},
	}

	centroid, spread := CloudCentroid(particles)
	if centroid != (Point{1, 1}) {
		t.Errorf("centroid = %v, want (1,1)", centroid)
	}
	if math.Abs(spread-math.Sqrt2) > 1e-12 {
		t.Errorf("spread = %f, want √2", spread)
	}

	if c, s := CloudCentroid(nil); c != (Point{}) || s != 0 {
		t.Errorf("empty cloud centroid = %v/%f, want zero values", c, s)
	}
}

func TestSimplifyTrajectory(t *testing.T) {
	// Collinear interior points vanish at any positive tolerance.
	traj := []Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	simplified := SimplifyTrajectory(traj, 0.01)
	if len(simplified) != 2 {
		t.Errorf("simplified length = %d, want 2", len(simplified))
	}
	if simplified[0] != traj[0] || simplified[len(simplified)-1] != traj[3] {
		t.Error("simplification must keep the endpoints")
	}

	// A sharp detour survives.
	detour := []Point{{0, 0}, {1, 0}, {1, 5}, {2, 0}}
	if got := SimplifyTrajectory(detour, 0.01); len(got) != 4 {
		t.Errorf("detour simplified to %d points, want 4", len(got))
	}

	// Zero tolerance is a no-op.
	if got := SimplifyTrajectory(traj, 0); len(got) != len(traj) {
		t.Error("zero tolerance must not simplify")
	}
}

func TestSnapshotGeoJSON(t *testing.T) {
	m := colorPatchMap(t)
	f, err := NewFilter(m, 20, 6, SensorColor)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	f.Put(0, Point{5, 5})

	fc := SnapshotGeoJSON(f, []Point{{5, 5}, {5.5, 5}, {6, 5}}, 0.01)
	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %s, want FeatureCollection", fc.Type)
	}
	if len(fc.Features) != 4 {
		t.Fatalf("feature count = %d, want walls+cloud+robot+trajectory", len(fc.Features))
	}

	if _, err := json.Marshal(fc); err != nil {
		t.Errorf("marshaling snapshot: %v", err)
	}
}
