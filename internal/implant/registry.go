package implant

import "sort"

// Params carries kind-specific construction parameters for grid electrodes,
// keyed by parameter name: "r" for disk radius, "a" for square side.
type Params map[string]float64

// Kind describes one electrode kind in the registry. Grid construction asks
// the registry for capabilities (RequiresRadius) and materializes electrodes
// through New instead of switching on concrete types.
type Kind struct {
	Name           string
	DisplayName    string
	RequiresRadius bool
	New            func(x, y, z float64, name string, p Params) (Electrode, error)
}

// Names of the built-in electrode kinds.
const (
	KindPoint  = "point"
	KindDisk   = "disk"
	KindSquare = "square"
)

// Registry of known electrode kinds
var kinds = make(map[string]Kind)

// RegisterKind adds an electrode kind to the registry. Built-in kinds are
// registered at package init; later registrations under the same name
// replace earlier ones.
func RegisterKind(k Kind) {
	kinds[k.Name] = k
}

// GetKind returns the named kind and whether it is registered.
func GetKind(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

// ListKinds returns all registered kind names, sorted.
func ListKinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	// Register built-in electrode kinds
	RegisterKind(Kind{
		Name:        KindPoint,
		DisplayName: "Point electrode",
		New: func(x, y, z float64, name string, _ Params) (Electrode, error) {
			e := NewPointElectrode(x, y, z)
			e.name = name
			return e, nil
		},
	})
	RegisterKind(Kind{
		Name:           KindDisk,
		DisplayName:    "Disk electrode",
		RequiresRadius: true,
		New: func(x, y, z float64, name string, p Params) (Electrode, error) {
			e, err := NewDiskElectrode(x, y, z, p["r"])
			if err != nil {
				return nil, err
			}
			e.name = name
			return e, nil
		},
	})
	RegisterKind(Kind{
		Name:        KindSquare,
		DisplayName: "Square electrode",
		New: func(x, y, z float64, name string, p Params) (Electrode, error) {
			e, err := NewSquareElectrode(x, y, z, p["a"])
			if err != nil {
				return nil, err
			}
			e.name = name
			return e, nil
		},
	})
}
