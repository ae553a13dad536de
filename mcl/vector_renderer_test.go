package mcl

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/tdewolff/canvas"
)

func TestRenderToSVG(t *testing.T) {
	m := colorPatchMap(t)
	r := NewVectorRenderer(m)

	robot := Pose{Coor: Point{5, 5}}
	particles := []Pose{{Coor: Point{2, 2}}, {Coor: Point{3, 3}}}
	trajectory := []Point{{1, 1}, {2, 1}, {3, 1}}

	var buf bytes.Buffer
	if err := r.RenderToSVG(&buf, &robot, particles, trajectory); err != nil {
		t.Fatalf("RenderToSVG: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Error("output does not look like SVG")
	}
	if len(out) < 200 {
		t.Errorf("suspiciously small SVG (%d bytes)", len(out))
	}
}

func TestRenderToPNG(t *testing.T) {
	m := colorPatchMap(t)
	r := NewVectorRenderer(m)
	r.Resolution = canvas.DPMM(1.0) // keep the test raster small

	var buf bytes.Buffer
	if err := r.RenderToPNG(&buf, nil, nil, nil); err != nil {
		t.Fatalf("RenderToPNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding PNG: %v", err)
	}
	if img.Bounds().Dx() < 10 || img.Bounds().Dy() < 10 {
		t.Errorf("unexpectedly small raster: %v", img.Bounds())
	}
}
