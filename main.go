// Command prosthesim builds, stores, renders and serves electrode array
// layouts for visual prosthesis design work.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openphosphene/prosthesim/internal/version"
)

var (
	configFile  string
	catalogPath string

	rows        int
	cols        int
	spacing     float64
	spacingX    float64
	spacingY    float64
	tiling      string
	orientation string
	rotation    float64
	originX     float64
	originY     float64
	zHeight     float64
	kindName    string
	radius      float64
	side        float64
	rowNames    string
	colNames    string

	layoutFile string
	layoutName string
	saveLayout bool

	outFile      string
	renderOut    string
	stimPath     string
	channelName  string
	colormap     string
	displayUnits string
	annotate     bool

	showElectrodes bool
	listenAddr     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "prosthesim",
		Short: "Electrode layout toolkit for visual prostheses",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "toolkit config file (JSON)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "db", "", "layout catalog database path")

	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "Build an electrode grid and print its geometry",
		RunE:  runGrid,
	}
	gridCmd.Flags().IntVar(&rows, "rows", 4, "number of grid rows")
	gridCmd.Flags().IntVar(&cols, "cols", 4, "number of grid columns")
	gridCmd.Flags().Float64Var(&spacing, "spacing", 400, "electrode pitch in microns")
	gridCmd.Flags().Float64Var(&spacingX, "spacing-x", 0, "horizontal pitch in microns (overrides --spacing)")
	gridCmd.Flags().Float64Var(&spacingY, "spacing-y", 0, "vertical pitch in microns (overrides --spacing)")
	gridCmd.Flags().StringVar(&tiling, "tiling", "rect", "grid tiling (rect or hex)")
	gridCmd.Flags().StringVar(&orientation, "orientation", "horizontal", "stagger orientation for hex grids")
	gridCmd.Flags().Float64Var(&rotation, "rot", 0, "rotation in degrees counter-clockwise")
	gridCmd.Flags().Float64Var(&originX, "x", 0, "grid center x in microns")
	gridCmd.Flags().Float64Var(&originY, "y", 0, "grid center y in microns")
	gridCmd.Flags().Float64Var(&zHeight, "z", 0, "electrode height in microns")
	gridCmd.Flags().StringVar(&kindName, "kind", "point", "electrode kind (point, disk or square)")
	gridCmd.Flags().Float64Var(&radius, "r", 0, "disk electrode radius in microns")
	gridCmd.Flags().Float64Var(&side, "a", 0, "square electrode side in microns")
	gridCmd.Flags().StringVar(&rowNames, "name-rows", "A", "row naming seed (a leading - reverses order)")
	gridCmd.Flags().StringVar(&colNames, "name-cols", "1", "column naming seed (a leading - reverses order)")
	gridCmd.Flags().StringVar(&layoutFile, "layout", "", "build from a layout file instead of flags")
	gridCmd.Flags().StringVar(&layoutName, "name", "", "layout name used when saving")
	gridCmd.Flags().BoolVar(&saveLayout, "save", false, "store the grid in the layout catalog")
	gridCmd.Flags().StringVar(&outFile, "out", "", "also write the layout to a YAML file")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "List bundled implant presets or show one in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPresets,
	}

	renderCmd := &cobra.Command{
		Use:   "render [id|name]",
		Short: "Render a layout to a PNG, SVG, PDF or HTML figure",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().StringVar(&layoutFile, "layout", "", "render from a layout file instead of the catalog")
	renderCmd.Flags().StringVar(&renderOut, "out", "layout.png", "output image path (extension picks the format)")
	renderCmd.Flags().StringVar(&stimPath, "stim", "", "stimulus file used to color electrodes")
	renderCmd.Flags().StringVar(&colormap, "colormap", "", "brewer colormap name")
	renderCmd.Flags().StringVar(&displayUnits, "units", "", "axis units (um, mm or dva)")
	renderCmd.Flags().BoolVar(&annotate, "annotate", false, "draw electrode names next to glyphs")

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage stored layouts",
	}
	catalogSaveCmd := &cobra.Command{
		Use:   "save <layout.yaml>",
		Short: "Store a layout file in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogSave,
	}
	catalogListCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored layouts",
		RunE:  runCatalogList,
	}
	catalogShowCmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show a stored layout",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogShow,
	}
	catalogShowCmd.Flags().BoolVar(&showElectrodes, "electrodes", false, "print the per-electrode table")
	catalogDeleteCmd := &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a stored layout",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogDelete,
	}
	catalogExportCmd := &cobra.Command{
		Use:   "export <id|name>",
		Short: "Export a stored layout as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogExport,
	}
	catalogExportCmd.Flags().StringVar(&outFile, "out", "", "write to a file instead of stdout")
	catalogCmd.AddCommand(catalogSaveCmd, catalogListCmd, catalogShowCmd, catalogDeleteCmd, catalogExportCmd)

	stimCmd := &cobra.Command{
		Use:   "stim",
		Short: "Work with stimulus files",
	}
	stimPreviewCmd := &cobra.Command{
		Use:   "preview <stim.yaml>",
		Short: "Plot stimulus channels in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runStimPreview,
	}
	stimPreviewCmd.Flags().StringVar(&channelName, "channel", "", "preview a single channel")
	stimCmd.AddCommand(stimPreviewCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect [id|name]",
		Short: "Browse and edit a layout interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().StringVar(&layoutFile, "layout", "", "inspect a layout file instead of the catalog")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout catalog over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (host:port)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("prosthesim %s\n", version.String())
		},
	}

	rootCmd.AddCommand(gridCmd, presetsCmd, renderCmd, catalogCmd, stimCmd, inspectCmd, serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
