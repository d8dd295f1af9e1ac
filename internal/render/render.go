// Package render draws electrode arrays as static figures (PNG/SVG via
// gonum/plot) and as interactive HTML scatter charts (go-echarts). When a
// stimulus is supplied, electrode fill colors encode the peak amplitude on
// each channel; deactivated electrodes are always drawn in their muted
// style regardless of stimulus.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/openphosphene/prosthesim/internal/config"
	"github.com/openphosphene/prosthesim/internal/implant"
	"github.com/openphosphene/prosthesim/internal/stimulus"
	"github.com/openphosphene/prosthesim/internal/units"
	"gonum.org/v1/plot/palette/brewer"
)

// Options controls figure geometry and color mapping.
type Options struct {
	// Title is drawn above the figure. Empty means no title.
	Title string

	// Canvas size in pixels.
	WidthPx  int
	HeightPx int

	// Colormap names a ColorBrewer sequential palette (e.g. "OrRd").
	Colormap string

	// ColormapFloor lifts the bottom of the normalized amplitude range so
	// small nonzero amplitudes stay visible. Must be in [0, 1].
	ColormapFloor float64

	// GlyphScale multiplies marker sizes for point electrodes.
	GlyphScale float64

	// Annotate draws each electrode's name at its position.
	Annotate bool

	// Units selects the display units for coordinates (positions are
	// stored in microns).
	Units string
}

// DefaultOptions returns the built-in rendering defaults.
func DefaultOptions() Options {
	return Options{
		WidthPx:       800,
		HeightPx:      800,
		Colormap:      "OrRd",
		ColormapFloor: 0,
		GlyphScale:    1.0,
		Annotate:      false,
		Units:         units.UM,
	}
}

// FromConfig builds Options from a toolkit configuration.
func FromConfig(cfg *config.ToolkitConfig) Options {
	return Options{
		WidthPx:       cfg.GetFigureWidthPx(),
		HeightPx:      cfg.GetFigureHeightPx(),
		Colormap:      cfg.GetColormap(),
		ColormapFloor: cfg.GetColormapFloor(),
		GlyphScale:    cfg.GetGlyphScale(),
		Annotate:      cfg.GetAnnotate(),
		Units:         cfg.GetDisplayUnits(),
	}
}

// withDefaults fills zero-valued fields so partially populated Options are
// safe to use.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.WidthPx <= 0 {
		o.WidthPx = def.WidthPx
	}
	if o.HeightPx <= 0 {
		o.HeightPx = def.HeightPx
	}
	if o.Colormap == "" {
		o.Colormap = def.Colormap
	}
	if o.GlyphScale <= 0 {
		o.GlyphScale = def.GlyphScale
	}
	if o.Units == "" {
		o.Units = def.Units
	}
	return o
}

// ampPalette resolves the configured ColorBrewer palette.
func ampPalette(name string) ([]color.Color, error) {
	pal, err := brewer.GetPalette(brewer.TypeSequential, name, 9)
	if err != nil {
		return nil, fmt.Errorf("colormap %q: %w", name, err)
	}
	return pal.Colors(), nil
}

// ampColor maps an amplitude onto the palette. The amplitude is normalized
// against maxAmp and compressed into [floor, 1] before indexing.
func ampColor(colors []color.Color, amp, maxAmp, floor float64) color.Color {
	if len(colors) == 0 {
		return color.Black
	}
	t := 0.0
	if maxAmp > 0 {
		t = amp / maxAmp
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	t = floor + (1-floor)*t
	idx := int(t*float64(len(colors)-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(colors) {
		idx = len(colors) - 1
	}
	return colors[idx]
}

// withAlpha returns c with the given alpha applied.
func withAlpha(c color.Color, a uint8) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = a
	return n
}

// glyphExtent is the half-width an electrode occupies in data units. Point
// electrodes draw as fixed-size canvas markers and contribute no extent.
func glyphExtent(e implant.Electrode) float64 {
	ext := 0.0
	for _, prim := range e.Shape() {
		switch prim.Kind {
		case implant.CircleShape:
			if prim.Size > ext {
				ext = prim.Size
			}
		case implant.SquareShape:
			if prim.Size/2 > ext {
				ext = prim.Size / 2
			}
		}
	}
	return ext
}

// arrayExtent computes the symmetric plot bound covering all electrodes
// plus a small padding so edge electrodes stay visible.
func arrayExtent(earray *implant.ElectrodeArray, scale float64) float64 {
	maxAbs := 0.0
	for _, e := range earray.Electrodes() {
		ext := glyphExtent(e) * scale
		if v := math.Abs(e.X()*scale) + ext; v > maxAbs {
			maxAbs = v
		}
		if v := math.Abs(e.Y()*scale) + ext; v > maxAbs {
			maxAbs = v
		}
	}
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	return pad
}

// unitScale returns the multiplier from microns to the display units.
func unitScale(unit string) float64 {
	return units.ConvertLength(1, unit)
}

// peakFor returns the peak stimulus amplitude for an electrode, or 0 when
// no stimulus is set or the electrode has no channel.
func peakFor(stim *stimulus.Stimulus, name string) float64 {
	if stim == nil {
		return 0
	}
	return stim.Peak(name)
}
