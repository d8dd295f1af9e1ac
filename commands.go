package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openphosphene/prosthesim/internal/api"
	"github.com/openphosphene/prosthesim/internal/catalog"
	"github.com/openphosphene/prosthesim/internal/config"
	"github.com/openphosphene/prosthesim/internal/implant"
	"github.com/openphosphene/prosthesim/internal/layoutfile"
	"github.com/openphosphene/prosthesim/internal/render"
	"github.com/openphosphene/prosthesim/internal/stimulus"
	"github.com/openphosphene/prosthesim/internal/tui"
	"github.com/openphosphene/prosthesim/internal/units"
)

func runGrid(cmd *cobra.Command, args []string) error {
	var (
		name string
		p    implant.GridParams
	)
	if layoutFile != "" {
		lay, err := layoutfile.Load(layoutFile)
		if err != nil {
			return err
		}
		p, err = lay.Params()
		if err != nil {
			return err
		}
		name = lay.Name
	} else {
		p = gridParamsFromFlags()
	}
	if layoutName != "" {
		name = layoutName
	}

	g, err := implant.NewElectrodeGrid(p)
	if err != nil {
		return err
	}
	printGridSummary(os.Stdout, name, g)

	if outFile != "" {
		if err := layoutfile.Save(outFile, layoutfile.FromParams(name, p)); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
	}
	if saveLayout {
		if name == "" {
			return fmt.Errorf("saving to the catalog needs --name")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer cat.Close()

		rec := catalog.RecordFromParams(name, p)
		if err := cat.InsertLayout(rec, catalog.SnapshotElectrodes(g)); err != nil {
			return err
		}
		fmt.Printf("stored layout %s (%s)\n", rec.Name, rec.LayoutID)
	}
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSHAPE\tELECTRODES\tDESCRIPTION")
		for _, name := range implant.ListPresets() {
			p, _ := implant.GetPreset(name)
			g, err := p.Build()
			if err != nil {
				return fmt.Errorf("preset %s: %w", name, err)
			}
			r, c := g.Shape()
			fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\n", p.Name, r, c, g.NElectrodes(), p.Description)
		}
		return w.Flush()
	}

	p, ok := implant.GetPreset(args[0])
	if !ok {
		return fmt.Errorf("unknown preset %q (available: %s)",
			args[0], strings.Join(implant.ListPresets(), ", "))
	}
	g, err := p.Build()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n\n", p.Name, p.Description)
	printGridSummary(os.Stdout, "", g)
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		name string
		g    *implant.ElectrodeGrid
	)
	switch {
	case layoutFile != "":
		lay, err := layoutfile.Load(layoutFile)
		if err != nil {
			return err
		}
		if g, err = lay.Build(); err != nil {
			return err
		}
		name = lay.Name
	case len(args) == 1:
		cat, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer cat.Close()
		rec, err := findLayout(cat, args[0])
		if err != nil {
			return err
		}
		if g, err = loadStoredGrid(cat, rec); err != nil {
			return err
		}
		name = rec.Name
	default:
		return fmt.Errorf("render needs a stored layout id/name or --layout file")
	}

	var stim *stimulus.Stimulus
	if stimPath != "" {
		if stim, err = layoutfile.LoadStimulus(stimPath); err != nil {
			return err
		}
	}

	o := render.FromConfig(cfg)
	o.Title = name
	if cmd.Flags().Changed("colormap") {
		o.Colormap = colormap
	}
	if cmd.Flags().Changed("units") {
		if !units.IsValid(displayUnits) {
			return fmt.Errorf("invalid units %q (valid: %s)", displayUnits, units.GetValidUnitsString())
		}
		o.Units = displayUnits
	}
	if cmd.Flags().Changed("annotate") {
		o.Annotate = annotate
	}

	if filepath.Ext(renderOut) == ".html" {
		f, err := os.Create(renderOut)
		if err != nil {
			return err
		}
		if err := render.WriteHTML(f, g.Array(), stim, o); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	} else if err := render.SaveFigure(g.Array(), stim, renderOut, o); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", renderOut)
	return nil
}

func runCatalogSave(cmd *cobra.Command, args []string) error {
	lay, err := layoutfile.Load(args[0])
	if err != nil {
		return err
	}
	if lay.Name == "" {
		return fmt.Errorf("layout file %s has no name field", args[0])
	}
	p, err := lay.Params()
	if err != nil {
		return err
	}
	g, err := implant.NewElectrodeGrid(p)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	rec := catalog.RecordFromParams(lay.Name, p)
	if err := cat.InsertLayout(rec, catalog.SnapshotElectrodes(g)); err != nil {
		return err
	}
	fmt.Printf("stored layout %s (%s)\n", rec.Name, rec.LayoutID)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	recs, err := cat.ListLayouts()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSHAPE\tTILING\tKIND\tCREATED")
	for _, rec := range recs {
		created := time.Unix(0, rec.CreatedAtNs).Format("2006-01-02 15:04:05")
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%s\t%s\n",
			rec.LayoutID, rec.Name, rec.Rows, rec.Cols, rec.Tiling, rec.Kind, created)
	}
	return w.Flush()
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	rec, err := findLayout(cat, args[0])
	if err != nil {
		return err
	}
	g, err := loadStoredGrid(cat, rec)
	if err != nil {
		return err
	}

	fmt.Printf("id: %s\n", rec.LayoutID)
	fmt.Printf("created: %s\n", time.Unix(0, rec.CreatedAtNs).Format(time.RFC3339))
	if rec.Description != "" {
		fmt.Printf("description: %s\n", rec.Description)
	}
	printGridSummary(os.Stdout, rec.Name, g)

	if !showElectrodes {
		return nil
	}
	electrodes, err := cat.ListElectrodes(rec.LayoutID)
	if err != nil {
		return err
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDX\tNAME\tX\tY\tZ\tKIND\tACTIVE")
	for _, e := range electrodes {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%.1f\t%s\t%v\n",
			e.Idx, e.Name, e.X, e.Y, e.Z, e.Kind, e.Activated)
	}
	return w.Flush()
}

func runCatalogDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	rec, err := findLayout(cat, args[0])
	if err != nil {
		return err
	}
	if err := cat.DeleteLayout(rec.LayoutID); err != nil {
		return err
	}
	fmt.Printf("deleted layout %s (%s)\n", rec.Name, rec.LayoutID)
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	rec, err := findLayout(cat, args[0])
	if err != nil {
		return err
	}
	electrodes, err := cat.ListElectrodes(rec.LayoutID)
	if err != nil {
		return err
	}
	lay := layoutfile.FromParams(rec.Name, rec.ParamsWith(electrodes))
	if outFile != "" {
		if err := layoutfile.Save(outFile, lay); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}
	data, err := lay.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runStimPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := layoutfile.LoadStimulus(args[0])
	if err != nil {
		return err
	}

	keys := s.Keys()
	if channelName != "" {
		if !s.Has(channelName) {
			return fmt.Errorf("no channel %q (have: %s)", channelName, strings.Join(s.Keys(), ", "))
		}
		keys = []string{channelName}
	}

	fmt.Printf("dt %g ms, %d samples, %g ms total\n", s.Dt()*1000, s.NSamples(), s.Duration()*1000)
	for _, key := range keys {
		graph, err := s.Preview(key, cfg.GetPreviewWidth(), cfg.GetPreviewHeight())
		if err != nil {
			return err
		}
		fmt.Printf("\n%s (peak %g)\n%s\n", key, s.Peak(key), graph)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	if layoutFile != "" {
		lay, err := layoutfile.Load(layoutFile)
		if err != nil {
			return err
		}
		g, err := lay.Build()
		if err != nil {
			return err
		}
		return tui.RunInspector(lay.Name, g, nil, "")
	}
	if len(args) == 0 {
		return fmt.Errorf("inspect needs a stored layout id/name or --layout file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	rec, err := findLayout(cat, args[0])
	if err != nil {
		return err
	}
	g, err := loadStoredGrid(cat, rec)
	if err != nil {
		return err
	}
	return tui.RunInspector(rec.Name, g, cat, rec.LayoutID)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	addr := listenAddr
	if addr == "" {
		addr = cfg.GetListenAddr()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := api.NewServer(cat, cfg).ServeMux()
	cat.AttachAdminRoutes(mux)

	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: cfg.GetRequestTimeout(),
	}

	go func() {
		log.Printf("serving layout catalog %s on %s", cat.Path(), addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadConfig honors --config and otherwise starts from an empty config,
// whose getters fall back to the built-in defaults.
func loadConfig() (*config.ToolkitConfig, error) {
	if configFile != "" {
		return config.LoadToolkitConfig(configFile)
	}
	return config.EmptyToolkitConfig(), nil
}

// openCatalog opens the layout catalog named by --db or the config and
// brings its schema up to date.
func openCatalog(cfg *config.ToolkitConfig) (*catalog.Catalog, error) {
	path := catalogPath
	if path == "" {
		path = cfg.GetCatalogPath()
	}
	cat, err := catalog.Open(path)
	if err != nil {
		return nil, err
	}
	if err := cat.MigrateUp(); err != nil {
		cat.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return cat, nil
}

// findLayout resolves a stored layout by id first, then by name.
func findLayout(cat *catalog.Catalog, key string) (*catalog.LayoutRecord, error) {
	rec, err := cat.GetLayout(key)
	if errors.Is(err, catalog.ErrNotFound) {
		rec, err = cat.GetLayoutByName(key)
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("no stored layout with id or name %q", key)
	}
	return rec, err
}

// loadStoredGrid rebuilds a stored layout's grid with its saved
// per-electrode overrides and activation states applied.
func loadStoredGrid(cat *catalog.Catalog, rec *catalog.LayoutRecord) (*implant.ElectrodeGrid, error) {
	electrodes, err := cat.ListElectrodes(rec.LayoutID)
	if err != nil {
		return nil, err
	}
	return rec.BuildWith(electrodes)
}

func gridParamsFromFlags() implant.GridParams {
	sp := implant.UniformSpacing(spacing)
	if spacingX != 0 || spacingY != 0 {
		x, y := spacingX, spacingY
		if x == 0 {
			x = spacing
		}
		if y == 0 {
			y = spacing
		}
		sp = implant.AxisSpacing(x, y)
	}
	p := implant.GridParams{
		Rows:        rows,
		Cols:        cols,
		Spacing:     sp,
		X:           originX,
		Y:           originY,
		Z:           zHeight,
		Rot:         rotation,
		Names:       implant.NameSpec{Row: rowNames, Col: colNames},
		Tiling:      implant.Tiling(tiling),
		Orientation: implant.Orientation(orientation),
		Kind:        kindName,
		R:           radius,
	}
	if side > 0 {
		p.Extra = implant.Params{"a": side}
	}
	return p
}

func printGridSummary(w io.Writer, name string, g *implant.ElectrodeGrid) {
	r, c := g.Shape()
	if name != "" {
		fmt.Fprintf(w, "layout: %s\n", name)
	}
	fmt.Fprintf(w, "shape: %dx%d (%s, %s)\n", r, c, g.Tiling(), g.Orientation())
	sp := g.Spacing()
	if sp.Uniform {
		fmt.Fprintf(w, "pitch: %g um\n", sp.X)
	} else {
		fmt.Fprintf(w, "pitch: %g x %g um\n", sp.X, sp.Y)
	}
	if g.Rotation() != 0 {
		fmt.Fprintf(w, "rotation: %g deg\n", g.Rotation())
	}
	active := 0
	for _, e := range g.Electrodes() {
		if e.Activated() {
			active++
		}
	}
	fmt.Fprintf(w, "electrodes: %d (%d active)\n", g.NElectrodes(), active)
	printGridMap(w, g)
}

func printGridMap(w io.Writer, g *implant.ElectrodeGrid) {
	r, c := g.Shape()
	for row := 0; row < r; row++ {
		// Even rows of a horizontal hex grid sit half a pitch to the right.
		if g.Tiling() == implant.HexTiling && g.Orientation() == implant.Horizontal && row%2 == 0 {
			fmt.Fprint(w, " ")
		}
		for col := 0; col < c; col++ {
			e := g.Get(implant.Cell{Row: row, Col: col})
			switch {
			case e == nil:
				fmt.Fprint(w, "  ")
			case e.Activated():
				fmt.Fprint(w, " ●")
			default:
				fmt.Fprint(w, " ○")
			}
		}
		fmt.Fprintln(w)
	}
}
