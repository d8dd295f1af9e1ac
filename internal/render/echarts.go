package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/openphosphene/prosthesim/internal/implant"
	"github.com/openphosphene/prosthesim/internal/stimulus"
)

// echartsAssetsPrefix is the assets host for the echarts runtime that
// rendered pages load their scripts from.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// viridisColors is the gradient used by the amplitude visual map.
var viridisColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WriteHTML renders the array as an interactive scatter chart. Active
// electrodes carry peak stimulus amplitude in the third dimension so the
// visual map colors them; deactivated electrodes are drawn as a separate
// gray series. The page is self-contained HTML.
func WriteHTML(w io.Writer, earray *implant.ElectrodeArray, stim *stimulus.Stimulus, o Options) error {
	o = o.withDefaults()

	scale := unitScale(o.Units)
	maxAmp := 0.0
	if stim != nil {
		maxAmp = stim.MaxAmplitude()
	}

	activePts := make([]opts.ScatterData, 0, earray.NElectrodes())
	inactivePts := make([]opts.ScatterData, 0)
	for _, e := range earray.Electrodes() {
		x := e.X() * scale
		y := e.Y() * scale
		if !e.Activated() {
			inactivePts = append(inactivePts, opts.ScatterData{Name: e.Name(), Value: []interface{}{x, y}})
			continue
		}
		amp := peakFor(stim, e.Name())
		activePts = append(activePts, opts.ScatterData{Name: e.Name(), Value: []interface{}{x, y, amp}})
	}

	// Force a square plot by using equal width/height and symmetric axis ranges
	pad := arrayExtent(earray, scale)

	title := o.Title
	if title == "" {
		title = "Electrode Array"
	}
	subtitle := fmt.Sprintf("electrodes=%d active=%d", earray.NElectrodes(), len(activePts))

	symbolSize := int(8 * o.GlyphScale)
	if symbolSize < 1 {
		symbolSize = 1
	}

	scatter := charts.NewScatter()
	globalOpts := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  title,
			Theme:      "dark",
			Width:      fmt.Sprintf("%dpx", o.WidthPx),
			Height:     fmt.Sprintf("%dpx", o.HeightPx),
			AssetsHost: echartsAssetsPrefix,
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: fmt.Sprintf("x (%s)", o.Units), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: fmt.Sprintf("y (%s)", o.Units), NameLocation: "middle", NameGap: 30}),
	}
	if maxAmp > 0 {
		globalOpts = append(globalOpts, charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxAmp),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}))
	}
	scatter.SetGlobalOptions(globalOpts...)

	scatter.AddSeries("electrodes", activePts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: symbolSize}))
	if len(inactivePts) > 0 {
		scatter.AddSeries("deactivated", inactivePts,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: symbolSize}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9e9e9e"}),
		)
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
