package mcl

import (
	"encoding/json"
	"fmt"
	"os"
)

// mapDocument is the on-disk map layout: the floor byte vector and the wall
// list, plus the dimensions needed to rebuild the raster. The floor bytes
// serialize as base64.
type mapDocument struct {
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Resolution float64   `json:"resolution"`
	Floor      []byte    `json:"floor"`
	Walls      []Segment `json:"walls"`
}

// SaveMap writes the map to path as JSON.
func SaveMap(path string, m *Map) error {
	doc := mapDocument{
		Width:      m.Width,
		Height:     m.Height,
		Resolution: m.Resolution,
		Floor:      m.floor,
		Walls:      m.walls,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling map: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing map file: %w", err)
	}
	return nil
}

// LoadMap reads a map previously written by SaveMap and re-validates it.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("map file not found: %s", path)
		}
		return nil, fmt.Errorf("reading map file: %w", err)
	}

	var doc mapDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing map file %s: %w", path, err)
	}

	m, err := NewMap(doc.Width, doc.Height, doc.Resolution)
	if err != nil {
		return nil, fmt.Errorf("map file %s: %w", path, err)
	}
	if len(doc.Floor) != len(m.floor) {
		return nil, fmt.Errorf("map file %s: floor has %d cells, want %d",
			path, len(doc.Floor), len(m.floor))
	}
	copy(m.floor, doc.Floor)
	m.walls = append(m.walls, doc.Walls...)
	return m, nil
}
