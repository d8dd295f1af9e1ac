package implant

import "sort"

// Preset is a published implant geometry buildable by name. Dimensions come
// from the device literature; electrode coordinates are derived, not traced
// from device schematics.
type Preset struct {
	Name        string
	Description string
	Build       func() (*ElectrodeGrid, error)
}

// Registry of known implant presets
var presets = make(map[string]Preset)

// RegisterPreset adds an implant preset to the registry.
func RegisterPreset(p Preset) {
	presets[p.Name] = p
}

// GetPreset returns a preset by name and whether it is registered.
func GetPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// ListPresets returns all registered preset names, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Orion builds the Orion cortical implant: 60 disk electrodes of 1 mm
// radius in a staggered 6x10 layout on a 4.2 mm pitch.
func Orion() (*ElectrodeGrid, error) {
	return NewElectrodeGrid(GridParams{
		Rows:        6,
		Cols:        10,
		Spacing:     UniformSpacing(4200),
		Tiling:      HexTiling,
		Orientation: Vertical,
		Kind:        KindDisk,
		R:           1000,
	})
}

// Cortivis builds the CORTIVIS penetrating array: a 10x10 rectangular grid
// on a 400 um pitch with 80 um diameter tips.
func Cortivis() (*ElectrodeGrid, error) {
	return NewElectrodeGrid(GridParams{
		Rows:    10,
		Cols:    10,
		Spacing: UniformSpacing(400),
		Kind:    KindDisk,
		R:       40,
	})
}

// ICVP builds one intracortical visual prosthesis module: 16 shank
// electrodes in a staggered 4x4 layout on a 400 um pitch, tips 650 um deep.
func ICVP() (*ElectrodeGrid, error) {
	return NewElectrodeGrid(GridParams{
		Rows:    4,
		Cols:    4,
		Spacing: UniformSpacing(400),
		Tiling:  HexTiling,
		Z:       650,
	})
}

func init() {
	// Register built-in implant presets
	RegisterPreset(Preset{
		Name:        "orion",
		Description: "Orion cortical surface array, 6x10 disks, 4.2 mm pitch",
		Build:       Orion,
	})
	RegisterPreset(Preset{
		Name:        "cortivis",
		Description: "CORTIVIS penetrating array, 10x10 disks, 400 um pitch",
		Build:       Cortivis,
	})
	RegisterPreset(Preset{
		Name:        "icvp",
		Description: "ICVP module, 4x4 shanks, 400 um pitch",
		Build:       ICVP,
	})
}
