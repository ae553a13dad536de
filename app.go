package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/kwv/mcl/mcl"
)

// App encapsulates the simulator state and dependencies.
type App struct {
	Config    *mcl.Config
	Publisher *mcl.Publisher

	// CLI flags (effectively dependencies)
	ConfigFile   string
	MapFile      string
	Generate     bool
	OutputFile   string
	RenderFormat string
	FramesDir    string
	CSVFile      string
	GeoJSONFile  string
	MqttMode     bool
}

// AppOptions carries the parsed CLI flags into the App.
type AppOptions struct {
	ConfigFile   string
	MapFile      string
	Generate     bool
	OutputFile   string
	RenderFormat string
	FramesDir    string
	CSVFile      string
	GeoJSONFile  string
	MqttMode     bool
}

// NewApp creates a new App instance with the default configuration.
func NewApp() *App {
	return &App{Config: mcl.DefaultConfig()}
}

// ApplyOptions applies CLI options to the App instance.
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.MapFile = opts.MapFile
	a.Generate = opts.Generate
	a.OutputFile = opts.OutputFile
	a.RenderFormat = opts.RenderFormat
	a.FramesDir = opts.FramesDir
	a.CSVFile = opts.CSVFile
	a.GeoJSONFile = opts.GeoJSONFile
	a.MqttMode = opts.MqttMode
}

// LoadConfig loads the configuration file when one was given.
func (a *App) LoadConfig() error {
	if a.ConfigFile == "" {
		return nil
	}
	config, err := mcl.LoadConfig(a.ConfigFile)
	if err != nil {
		return err
	}
	a.Config = config
	return nil
}

// LoadOrGenerateMap returns the simulation map. An existing map file wins
// unless -generate forces a fresh one; generated maps are written back to
// the map file when one is configured.
func (a *App) LoadOrGenerateMap() (*mcl.Map, error) {
	if a.MapFile != "" && !a.Generate {
		if _, err := os.Stat(a.MapFile); err == nil {
			log.Printf("Loading map from %s", a.MapFile)
			return mcl.LoadMap(a.MapFile)
		}
	}

	cfg := a.Config.Map
	m, err := mcl.NewMap(cfg.Width, cfg.Height, cfg.Resolution)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(a.Config.Filter.Seed))
	if err := m.FillFloor(cfg.Areas, cfg.Colors, rng); err != nil {
		return nil, err
	}
	if err := m.PlaceWalls(cfg.Walls, cfg.WallLength, rng); err != nil {
		return nil, err
	}
	log.Printf("Generated %gx%g m map with %d walls", cfg.Width, cfg.Height, cfg.Walls+4)

	if a.MapFile != "" {
		if err := mcl.SaveMap(a.MapFile, m); err != nil {
			return nil, err
		}
		log.Printf("Saved map to %s", a.MapFile)
	}
	return m, nil
}

// placeRobot draws a starting pose with enough wall clearance for the
// robot's radius.
func placeRobot(m *mcl.Map, f *mcl.ParticleFilter, rng *rand.Rand) mcl.Pose {
	var coor mcl.Point
	for {
		coor = mcl.Point{X: rng.Float64() * m.Width, Y: rng.Float64() * m.Height}
		if m.ClosestWall(coor) >= mcl.DefaultRobotSize {
			break
		}
	}
	ang := rng.Float64() * 2 * math.Pi
	f.Put(ang, coor)
	return mcl.Pose{Ang: ang, Coor: coor}
}

// RunSimulation executes one localization run: autonomous steps until the
// filter converges or the step budget runs out, with optional per-step
// frames, CSV, GeoJSON and MQTT output.
func (a *App) RunSimulation() error {
	m, err := a.LoadOrGenerateMap()
	if err != nil {
		return err
	}

	fc := a.Config.Filter
	filter, err := mcl.NewFilter(m, fc.Particles, fc.Seed, fc.Sensor)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(fc.Seed + 1))
	start := placeRobot(m, filter, rng)
	log.Printf("Robot starts at (%.2f, %.2f) ang=%.2f with %d particles (%s sensor)",
		start.Coor.X, start.Coor.Y, start.Ang, fc.Particles, fc.Sensor)

	if a.MqttMode {
		client, err := mcl.ConnectMQTT(a.Config.MQTT)
		if err != nil {
			return err
		}
		if client != nil {
			a.Publisher = mcl.NewPublisher(client)
			defer client.Disconnect(250)
		}
	}

	recorder := mcl.NewRunRecorder()
	trajectory := []mcl.Point{start.Coor}
	renderer := mcl.NewMapRenderer(m)

	for step := 1; step <= a.Config.MaxSteps; step++ {
		converged := filter.AutonomousStep()
		pose := filter.Pose()
		trajectory = append(trajectory, pose.Coor)
		recorder.Record(step, filter, converged)

		if a.Publisher != nil {
			if err := a.Publisher.PublishStep(step, filter, converged); err != nil {
				log.Printf("Telemetry error at step %d: %v", step, err)
			}
		}

		if a.FramesDir != "" {
			if err := a.writeFrame(renderer, filter, step); err != nil {
				return err
			}
		}

		if converged {
			log.Printf("Converged after %d steps (w_dist=%.3f)", step, filter.ConvergenceError())
			break
		}
	}
	if recorder.ConvergedAt == 0 {
		log.Printf("No convergence within %d steps (w_dist=%.3f)",
			a.Config.MaxSteps, filter.ConvergenceError())
	}

	if a.CSVFile != "" {
		if err := writeFileWith(a.CSVFile, recorder.WriteCSV); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
	}

	if a.GeoJSONFile != "" {
		snapshot := mcl.SnapshotGeoJSON(filter, trajectory, 0.05)
		err := writeFileWith(a.GeoJSONFile, func(w io.Writer) error {
			return json.NewEncoder(w).Encode(snapshot)
		})
		if err != nil {
			return fmt.Errorf("writing GeoJSON: %w", err)
		}
	}

	if a.OutputFile != "" {
		pose := filter.Pose()
		if err := a.renderState(m, &pose, filter.Particles(), trajectory); err != nil {
			return err
		}
	}
	return nil
}

// RunExperiment repeats the localization run with both sensors on freshly
// generated maps and emits the convergence times as CSV.
func (a *App) RunExperiment() error {
	experiment := mcl.NewExperiment("color", "range")

	for run := 0; run < a.Config.Runs; run++ {
		seed := a.Config.Filter.Seed + int64(run)

		cfg := a.Config.Map
		m, err := mcl.NewMap(cfg.Width, cfg.Height, cfg.Resolution)
		if err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(seed))
		if err := m.FillFloor(cfg.Areas, cfg.Colors, rng); err != nil {
			return err
		}
		if err := m.PlaceWalls(cfg.Walls, cfg.WallLength, rng); err != nil {
			return err
		}

		times := make([]int, 0, 2)
		for _, kind := range []mcl.SensorKind{mcl.SensorColor, mcl.SensorRange} {
			filter, err := mcl.NewFilter(m, a.Config.Filter.Particles, seed, kind)
			if err != nil {
				return err
			}
			placeRobot(m, filter, rand.New(rand.NewSource(seed+1)))

			convergedAt := 0
			for step := 1; step <= a.Config.MaxSteps; step++ {
				if filter.AutonomousStep() {
					convergedAt = step
					break
				}
			}
			times = append(times, convergedAt)
		}

		if err := experiment.AddRow(times...); err != nil {
			return err
		}
		log.Printf("Run %d/%d: color=%d range=%d steps",
			run+1, a.Config.Runs, times[0], times[1])
	}

	if a.CSVFile == "" {
		return experiment.WriteCSV(os.Stdout)
	}
	return writeFileWith(a.CSVFile, experiment.WriteCSV)
}

// RenderMap renders the map (without filter state) to the output file.
func (a *App) RenderMap() error {
	m, err := a.LoadOrGenerateMap()
	if err != nil {
		return err
	}
	return a.renderState(m, nil, nil, nil)
}

func (a *App) renderState(m *mcl.Map, robot *mcl.Pose, particles []mcl.Pose, trajectory []mcl.Point) error {
	return writeFileWith(a.OutputFile, func(w io.Writer) error {
		switch a.RenderFormat {
		case "raster":
			return mcl.NewMapRenderer(m).WritePNG(w, robot, particles)
		case "vector":
			return mcl.NewVectorRenderer(m).RenderToPNG(w, robot, particles, trajectory)
		case "svg":
			return mcl.NewVectorRenderer(m).RenderToSVG(w, robot, particles, trajectory)
		default:
			return fmt.Errorf("unknown render format %q (want raster, vector or svg)", a.RenderFormat)
		}
	})
}

func (a *App) writeFrame(renderer *mcl.MapRenderer, filter *mcl.ParticleFilter, step int) error {
	if err := os.MkdirAll(a.FramesDir, 0755); err != nil {
		return err
	}
	pose := filter.Pose()
	path := filepath.Join(a.FramesDir, fmt.Sprintf("step%04d.png", step))
	return writeFileWith(path, func(w io.Writer) error {
		return renderer.WritePNG(w, &pose, filter.Particles())
	})
}

// writeFileWith creates path and hands the open file to write.
func writeFileWith(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()
	return write(out)
}
