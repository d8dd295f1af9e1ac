package render

import (
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/openphosphene/prosthesim/internal/implant"
	"github.com/openphosphene/prosthesim/internal/stimulus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// circleSegments controls how finely disk outlines are tessellated.
const circleSegments = 60

// fillAlpha is the opacity applied to amplitude-colored fills.
const fillAlpha = 204

// Figure builds a static plot of the array. Disk and square electrodes are
// drawn true to size as filled polygons in data units; point electrodes
// become fixed-size canvas markers. Axis bounds are symmetric so the
// layout keeps its aspect ratio.
func Figure(earray *implant.ElectrodeArray, stim *stimulus.Stimulus, o Options) (*plot.Plot, error) {
	o = o.withDefaults()

	colors, err := ampPalette(o.Colormap)
	if err != nil {
		return nil, err
	}

	scale := unitScale(o.Units)
	maxAmp := 0.0
	if stim != nil {
		maxAmp = stim.MaxAmplitude()
	}

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = fmt.Sprintf("x (%s)", o.Units)
	p.Y.Label.Text = fmt.Sprintf("y (%s)", o.Units)

	pad := arrayExtent(earray, scale)
	p.X.Min, p.X.Max = -pad, pad
	p.Y.Min, p.Y.Max = -pad, pad

	// Point electrodes accumulate into a single scatter with per-glyph
	// styles so large arrays stay light.
	var markerPts plotter.XYs
	var markerStyles []draw.GlyphStyle

	var labelPts plotter.XYs
	var labelNames []string

	for _, e := range earray.Electrodes() {
		prims := e.Shape()
		if !e.Activated() {
			prims = e.DeactivatedShape()
		}
		x := e.X() * scale
		y := e.Y() * scale
		amp := peakFor(stim, e.Name())

		for _, prim := range prims {
			fill := prim.Style.Fill
			if e.Activated() && amp != 0 {
				fill = withAlpha(ampColor(colors, amp, maxAmp, o.ColormapFloor), fillAlpha)
			}

			switch prim.Kind {
			case implant.CircleShape:
				poly, err := plotter.NewPolygon(circleXYs(x, y, prim.Size*scale))
				if err != nil {
					return nil, err
				}
				poly.Color = fill
				poly.LineStyle.Color = prim.Style.Edge
				poly.LineStyle.Width = vg.Points(0.5)
				p.Add(poly)
			case implant.SquareShape:
				poly, err := plotter.NewPolygon(squareXYs(x, y, prim.Size*scale))
				if err != nil {
					return nil, err
				}
				poly.Color = fill
				poly.LineStyle.Color = prim.Style.Edge
				poly.LineStyle.Width = vg.Points(0.5)
				p.Add(poly)
			default:
				glyphColor := fill
				if !e.Activated() {
					// White fill is invisible for bare markers, use the
					// muted edge color instead.
					glyphColor = prim.Style.Edge
				}
				markerPts = append(markerPts, plotter.XY{X: x, Y: y})
				markerStyles = append(markerStyles, draw.GlyphStyle{
					Color:  glyphColor,
					Radius: vg.Points(3 * o.GlyphScale),
					Shape:  draw.CircleGlyph{},
				})
			}
		}

		if o.Annotate {
			labelPts = append(labelPts, plotter.XY{X: x, Y: y})
			labelNames = append(labelNames, e.Name())
		}
	}

	if len(markerPts) > 0 {
		scatter, err := plotter.NewScatter(markerPts)
		if err != nil {
			return nil, err
		}
		styles := markerStyles
		scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return styles[i]
		}
		p.Add(scatter)
	}

	if o.Annotate && len(labelPts) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelPts, Labels: labelNames})
		if err != nil {
			return nil, err
		}
		p.Add(labels)
	}

	return p, nil
}

// SaveFigure renders the array and writes it to path. The output format is
// chosen by extension (.png, .svg or .pdf).
func SaveFigure(earray *implant.ElectrodeArray, stim *stimulus.Stimulus, path string, o Options) error {
	o = o.withDefaults()

	switch ext := filepath.Ext(path); ext {
	case ".png", ".svg", ".pdf":
	default:
		return fmt.Errorf("unsupported figure extension %q (use .png, .svg or .pdf)", ext)
	}

	p, err := Figure(earray, stim, o)
	if err != nil {
		return err
	}

	w := vg.Points(float64(o.WidthPx))
	h := vg.Points(float64(o.HeightPx))
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save figure: %w", err)
	}
	return nil
}

// WriteFigure renders the array and writes the encoded image to w in the
// given format ("png", "svg" or "pdf").
func WriteFigure(w io.Writer, earray *implant.ElectrodeArray, stim *stimulus.Stimulus, format string, o Options) error {
	o = o.withDefaults()

	switch format {
	case "png", "svg", "pdf":
	default:
		return fmt.Errorf("unsupported figure format %q (use png, svg or pdf)", format)
	}

	p, err := Figure(earray, stim, o)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(vg.Points(float64(o.WidthPx)), vg.Points(float64(o.HeightPx)), format)
	if err != nil {
		return fmt.Errorf("render figure: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write figure: %w", err)
	}
	return nil
}

// circleXYs tessellates a circle of radius r centered on (x, y).
func circleXYs(x, y, r float64) plotter.XYs {
	pts := make(plotter.XYs, circleSegments)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = plotter.XY{X: x + r*math.Cos(theta), Y: y + r*math.Sin(theta)}
	}
	return pts
}

// squareXYs returns the corners of an axis-aligned square with the given
// side length centered on (x, y).
func squareXYs(x, y, side float64) plotter.XYs {
	h := side / 2
	return plotter.XYs{
		{X: x - h, Y: y - h},
		{X: x + h, Y: y - h},
		{X: x + h, Y: y + h},
		{X: x - h, Y: y + h},
	}
}
