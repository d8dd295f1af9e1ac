package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openphosphene/prosthesim/internal/units"
)

// DefaultConfigPath is the path to the canonical toolkit defaults file.
// This is the single source of truth for all default toolkit settings.
const DefaultConfigPath = "config/toolkit.defaults.json"

// ToolkitConfig represents the root configuration for the toolkit.
// All fields are optional pointers so a partial JSON file only
// overrides the settings it names.
type ToolkitConfig struct {
	// Figure params
	FigureWidthPx  *int     `json:"figure_width_px,omitempty"`
	FigureHeightPx *int     `json:"figure_height_px,omitempty"`
	Colormap       *string  `json:"colormap,omitempty"`
	ColormapFloor  *float64 `json:"colormap_floor,omitempty"`
	GlyphScale     *float64 `json:"glyph_scale,omitempty"`
	Annotate       *bool    `json:"annotate,omitempty"`
	DisplayUnits   *string  `json:"display_units,omitempty"`

	// Terminal preview params
	PreviewWidth  *int `json:"preview_width,omitempty"`
	PreviewHeight *int `json:"preview_height,omitempty"`

	// Catalog params
	CatalogPath *string `json:"catalog_path,omitempty"`

	// Server params
	ListenAddr     *string `json:"listen_addr,omitempty"`
	RequestTimeout *string `json:"request_timeout,omitempty"` // duration string like "15s"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyToolkitConfig returns a ToolkitConfig with all fields set to nil.
// Use LoadToolkitConfig to load actual values from the defaults file.
func EmptyToolkitConfig() *ToolkitConfig {
	return &ToolkitConfig{}
}

// LoadToolkitConfig loads a ToolkitConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file fall back to their built-in
// defaults through the Get* methods, so partial configs are safe.
func LoadToolkitConfig(path string) (*ToolkitConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyToolkitConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical toolkit defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ToolkitConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/catalog/migrations/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadToolkitConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ToolkitConfig) Validate() error {
	// Validate FigureWidthPx if set
	if c.FigureWidthPx != nil {
		if *c.FigureWidthPx <= 0 {
			return fmt.Errorf("figure_width_px must be positive, got %d", *c.FigureWidthPx)
		}
	}

	// Validate FigureHeightPx if set
	if c.FigureHeightPx != nil {
		if *c.FigureHeightPx <= 0 {
			return fmt.Errorf("figure_height_px must be positive, got %d", *c.FigureHeightPx)
		}
	}

	// Validate ColormapFloor if set
	if c.ColormapFloor != nil {
		if *c.ColormapFloor < 0 || *c.ColormapFloor > 1 {
			return fmt.Errorf("colormap_floor must be between 0 and 1, got %f", *c.ColormapFloor)
		}
	}

	// Validate GlyphScale if set
	if c.GlyphScale != nil {
		if *c.GlyphScale <= 0 {
			return fmt.Errorf("glyph_scale must be positive, got %f", *c.GlyphScale)
		}
	}

	// Validate DisplayUnits against the known unit set if set
	if c.DisplayUnits != nil && *c.DisplayUnits != "" {
		if !units.IsValid(*c.DisplayUnits) {
			return fmt.Errorf("invalid display_units '%s': valid units are %s", *c.DisplayUnits, units.GetValidUnitsString())
		}
	}

	// Validate PreviewWidth if set
	if c.PreviewWidth != nil {
		if *c.PreviewWidth <= 0 {
			return fmt.Errorf("preview_width must be positive, got %d", *c.PreviewWidth)
		}
	}

	// Validate PreviewHeight if set
	if c.PreviewHeight != nil {
		if *c.PreviewHeight <= 0 {
			return fmt.Errorf("preview_height must be positive, got %d", *c.PreviewHeight)
		}
	}

	// Validate RequestTimeout can be parsed if set
	if c.RequestTimeout != nil && *c.RequestTimeout != "" {
		if _, err := time.ParseDuration(*c.RequestTimeout); err != nil {
			return fmt.Errorf("invalid request_timeout '%s': %w", *c.RequestTimeout, err)
		}
	}

	return nil
}

// GetFigureWidthPx returns the figure_width_px value or the default.
func (c *ToolkitConfig) GetFigureWidthPx() int {
	if c.FigureWidthPx == nil {
		return 800 // default
	}
	return *c.FigureWidthPx
}

// GetFigureHeightPx returns the figure_height_px value or the default.
func (c *ToolkitConfig) GetFigureHeightPx() int {
	if c.FigureHeightPx == nil {
		return 800 // default
	}
	return *c.FigureHeightPx
}

// GetColormap returns the colormap value or the default.
func (c *ToolkitConfig) GetColormap() string {
	if c.Colormap == nil || *c.Colormap == "" {
		return "OrRd" // default
	}
	return *c.Colormap
}

// GetColormapFloor returns the colormap_floor value or the default.
func (c *ToolkitConfig) GetColormapFloor() float64 {
	if c.ColormapFloor == nil {
		return 0 // default: full colormap range
	}
	return *c.ColormapFloor
}

// GetGlyphScale returns the glyph_scale value or the default.
func (c *ToolkitConfig) GetGlyphScale() float64 {
	if c.GlyphScale == nil {
		return 1.0
	}
	return *c.GlyphScale
}

// GetAnnotate returns the annotate value or the default.
func (c *ToolkitConfig) GetAnnotate() bool {
	if c.Annotate == nil {
		return false // default: no electrode labels
	}
	return *c.Annotate
}

// GetDisplayUnits returns the display_units value or the default.
func (c *ToolkitConfig) GetDisplayUnits() string {
	if c.DisplayUnits == nil || *c.DisplayUnits == "" {
		return units.UM // default
	}
	return *c.DisplayUnits
}

// GetPreviewWidth returns the preview_width value or the default.
func (c *ToolkitConfig) GetPreviewWidth() int {
	if c.PreviewWidth == nil {
		return 64
	}
	return *c.PreviewWidth
}

// GetPreviewHeight returns the preview_height value or the default.
func (c *ToolkitConfig) GetPreviewHeight() int {
	if c.PreviewHeight == nil {
		return 10
	}
	return *c.PreviewHeight
}

// GetCatalogPath returns the catalog_path value or the default.
func (c *ToolkitConfig) GetCatalogPath() string {
	if c.CatalogPath == nil || *c.CatalogPath == "" {
		return "prosthesim.db" // default
	}
	return *c.CatalogPath
}

// GetListenAddr returns the listen_addr value or the default.
func (c *ToolkitConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8090" // default
	}
	return *c.ListenAddr
}

// GetRequestTimeout parses and returns the RequestTimeout as a time.Duration.
func (c *ToolkitConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout == nil || *c.RequestTimeout == "" {
		return 15 * time.Second // default
	}
	d, err := time.ParseDuration(*c.RequestTimeout)
	if err != nil {
		return 15 * time.Second // default on parse error
	}
	return d
}
