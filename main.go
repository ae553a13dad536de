package main

import (
	"flag"
	"fmt"
	"log"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile   = flag.String("config", "", "Path to YAML configuration file")
	mapFile      = flag.String("map", "", "Path to the map file (loaded if present, created otherwise)")
	generate     = flag.Bool("generate", false, "Force generating a fresh map even if -map exists")
	experiment   = flag.Bool("experiment", false, "Run repeated color-vs-range convergence experiments")
	renderOnly   = flag.Bool("render", false, "Render the map and exit")
	outputFile   = flag.String("output", "", "Output image for -render or the final simulation state")
	renderFormat = flag.String("format", "raster", "Render format: raster, vector or svg")
	framesDir    = flag.String("frames", "", "Directory for per-step PNG frames")
	csvFile      = flag.String("csv", "", "CSV output path (per-step stats, or experiment times)")
	geojsonFile  = flag.String("geojson", "", "GeoJSON output path for the final state")
	mqttMode     = flag.Bool("mqtt", false, "Publish per-step telemetry over MQTT")
)

func main() {
	flag.Parse()
	fmt.Printf("mcl version: %s\n", Version)

	app := NewApp()
	app.ApplyOptions(AppOptions{
		ConfigFile:   *configFile,
		MapFile:      *mapFile,
		Generate:     *generate,
		OutputFile:   *outputFile,
		RenderFormat: *renderFormat,
		FramesDir:    *framesDir,
		CSVFile:      *csvFile,
		GeoJSONFile:  *geojsonFile,
		MqttMode:     *mqttMode,
	})

	if err := app.LoadConfig(); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	switch {
	case *renderOnly:
		if app.OutputFile == "" {
			app.OutputFile = "map.png"
		}
		if err := app.RenderMap(); err != nil {
			log.Fatalf("Error rendering map: %v", err)
		}
	case *experiment:
		if err := app.RunExperiment(); err != nil {
			log.Fatalf("Error running experiment: %v", err)
		}
	default:
		if err := app.RunSimulation(); err != nil {
			log.Fatalf("Error running simulation: %v", err)
		}
	}
}
