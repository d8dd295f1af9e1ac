// Command gridplot renders an electrode layout file to an image without
// going through the main CLI. Useful in scripts and build pipelines.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/openphosphene/prosthesim/internal/config"
	"github.com/openphosphene/prosthesim/internal/layoutfile"
	"github.com/openphosphene/prosthesim/internal/render"
	"github.com/openphosphene/prosthesim/internal/stimulus"
)

func main() {
	var layoutPath string
	var stimPath string
	var outPath string
	var configPath string
	var title string
	var annotate bool

	flag.StringVar(&layoutPath, "layout", "", "layout YAML file to render")
	flag.StringVar(&stimPath, "stim", "", "optional stimulus YAML used to color electrodes")
	flag.StringVar(&outPath, "out", "layout.png", "output image (png, svg or pdf by extension)")
	flag.StringVar(&configPath, "config", "", "optional toolkit config file (JSON)")
	flag.StringVar(&title, "title", "", "figure title (defaults to the layout name)")
	flag.BoolVar(&annotate, "annotate", false, "draw electrode names")
	flag.Parse()

	if layoutPath == "" {
		log.Fatalf("a -layout file must be provided")
	}

	lay, err := layoutfile.Load(layoutPath)
	if err != nil {
		log.Fatalf("load layout: %v", err)
	}
	g, err := lay.Build()
	if err != nil {
		log.Fatalf("build grid: %v", err)
	}

	var stim *stimulus.Stimulus
	if stimPath != "" {
		if stim, err = layoutfile.LoadStimulus(stimPath); err != nil {
			log.Fatalf("load stimulus: %v", err)
		}
	}

	cfg := config.EmptyToolkitConfig()
	if configPath != "" {
		if cfg, err = config.LoadToolkitConfig(configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	o := render.FromConfig(cfg)
	o.Title = title
	if o.Title == "" {
		o.Title = lay.Name
	}
	if annotate {
		o.Annotate = true
	}

	if err := render.SaveFigure(g.Array(), stim, outPath, o); err != nil {
		log.Fatalf("render: %v", err)
	}
	fmt.Printf("wrote %s\n", outPath)
}
