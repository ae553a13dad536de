package mcl

import (
	"image/color"
	"image/png"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// VectorRenderer renders the map and filter state as vector graphics:
// walls and the boundary as stroked paths, the particle cloud as dots, the
// robot as a filled circle and the driven trajectory as a dashed line.
type VectorRenderer struct {
	Mapp *Map

	Scale      float64 // canvas units per meter
	Padding    float64 // padding in meters
	Resolution canvas.Resolution

	// TrajectoryTolerance is the Douglas-Peucker tolerance in meters
	// applied to the trajectory before drawing.
	TrajectoryTolerance float64
}

// NewVectorRenderer creates a vector renderer with default settings.
func NewVectorRenderer(m *Map) *VectorRenderer {
	return &VectorRenderer{
		Mapp:                m,
		Scale:               10.0,
		Padding:             0.5,
		Resolution:          canvas.DPI(300),
		TrajectoryTolerance: 0.05,
	}
}

// canvasRenderer is the part of the canvas backends both svg and rasterizer
// renderers implement.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

func (r *VectorRenderer) size() (float64, float64) {
	return (r.Mapp.Width + 2*r.Padding) * r.Scale, (r.Mapp.Height + 2*r.Padding) * r.Scale
}

func (r *VectorRenderer) toCanvas(p Point) (float64, float64) {
	return (p.X + r.Padding) * r.Scale, (p.Y + r.Padding) * r.Scale
}

// RenderToSVG writes the state as an SVG to the provided writer.
func (r *VectorRenderer) RenderToSVG(w io.Writer, robot *Pose, particles []Pose, trajectory []Point) error {
	width, height := r.size()
	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, robot, particles, trajectory)
	return svgRenderer.Close()
}

// RenderToPNG rasterizes the state and writes it as a PNG.
func (r *VectorRenderer) RenderToPNG(w io.Writer, robot *Pose, particles []Pose, trajectory []Point) error {
	width, height := r.size()
	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, robot, particles, trajectory)
	return png.Encode(w, rast)
}

func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, robot *Pose, particles []Pose, trajectory []Point) {
	width, height := r.size()

	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	// Walls, boundary included.
	wallStyle := canvas.DefaultStyle
	wallStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	wallStyle.Stroke = canvas.Paint{Color: canvas.Black}
	wallStyle.StrokeWidth = 0.05 * r.Scale
	wallStyle.StrokeCapper = canvas.RoundCapper{}
	wallStyle.StrokeJoiner = canvas.RoundJoiner{}

	for _, wall := range r.Mapp.walls {
		wp := &canvas.Path{}
		x1, y1 := r.toCanvas(wall.P1)
		x2, y2 := r.toCanvas(wall.P2)
		wp.MoveTo(x1, y1)
		wp.LineTo(x2, y2)
		renderer.RenderPath(wp, wallStyle, canvas.Identity)
	}

	// Trajectory as a dashed line under the cloud.
	if len(trajectory) > 1 {
		trajStyle := canvas.DefaultStyle
		trajStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		trajStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		trajStyle.StrokeWidth = 0.02 * r.Scale
		trajStyle.Dashes = []float64{0.1 * r.Scale, 0.1 * r.Scale}

		tp := &canvas.Path{}
		for i, p := range SimplifyTrajectory(trajectory, r.TrajectoryTolerance) {
			cx, cy := r.toCanvas(p)
			if i == 0 {
				tp.MoveTo(cx, cy)
			} else {
				tp.LineTo(cx, cy)
			}
		}
		renderer.RenderPath(tp, trajStyle, canvas.Identity)
	}

	// Particle cloud.
	if len(particles) > 0 {
		dotStyle := canvas.DefaultStyle
		dotStyle.Fill = canvas.Paint{Color: color.RGBA{0, 170, 0, 255}}
		dotStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

		for _, p := range particles {
			cx, cy := r.toCanvas(p.Coor)
			dot := canvas.Circle(0.03 * r.Scale).Translate(cx, cy)
			renderer.RenderPath(dot, dotStyle, canvas.Identity)
		}
	}

	// Robot marker on top, drawn at its physical radius.
	if robot != nil {
		robotStyle := canvas.DefaultStyle
		robotStyle.Fill = canvas.Paint{Color: color.RGBA{255, 0, 0, 255}}
		robotStyle.Stroke = canvas.Paint{Color: canvas.Black}
		robotStyle.StrokeWidth = 0.02 * r.Scale

		cx, cy := r.toCanvas(robot.Coor)
		marker := canvas.Circle(DefaultRobotSize * r.Scale).Translate(cx, cy)
		renderer.RenderPath(marker, robotStyle, canvas.Identity)
	}
}
