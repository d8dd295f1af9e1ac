// Package implant models electrode arrays for visual prostheses: electrode
// kinds with 3D positions in microns, ordered uniquely-keyed collections,
// and 2D grid layouts with rectangular or hexagonal tilings.
package implant

import (
	"fmt"
	"image/color"
)

// ShapeKind selects how a drawing primitive is rendered.
type ShapeKind int

const (
	// MarkerShape draws a fixed-size glyph independent of data scale.
	MarkerShape ShapeKind = iota
	// CircleShape draws a circle whose radius is Size microns.
	CircleShape
	// SquareShape draws an axis-aligned square whose side is Size microns.
	SquareShape
)

// Style is the fill and edge color of a drawing primitive.
type Style struct {
	Fill color.Color
	Edge color.Color
}

// Primitive is one drawable element of an electrode shape. Most kinds draw a
// single primitive; composite electrodes return several, all centered on the
// electrode position.
type Primitive struct {
	Kind  ShapeKind
	Size  float64 // radius or side length in microns; ignored for markers
	Style Style
}

// Default styles for the built-in kinds. Deactivated electrodes render
// hollow with a muted edge so they read as present but off.
var (
	diskStyle        = Style{Fill: color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}, Edge: color.NRGBA{A: 0xFF}}
	markerStyle      = Style{Fill: color.NRGBA{A: 0xFF}, Edge: color.NRGBA{A: 0xFF}}
	deactivatedStyle = Style{Fill: color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, Edge: color.NRGBA{R: 0xB4, G: 0xB4, B: 0xB4, A: 0xFF}}
)

// Electrode is the capability shared by every electrode kind: a position in
// microns, an activation flag, and drawable shapes for plotting. Kinds are
// fixed-field structs; grid construction goes through the kind registry
// rather than inspecting concrete types.
type Electrode interface {
	X() float64
	Y() float64
	Z() float64
	Name() string
	Activated() bool
	SetActivated(on bool)
	Shape() []Primitive
	DeactivatedShape() []Primitive
}

// BaseElectrode implements the position, name, and activation parts of the
// Electrode capability. Concrete kinds embed it and contribute their shapes.
type BaseElectrode struct {
	x, y, z   float64
	name      string
	activated bool
}

func (e *BaseElectrode) X() float64 { return e.x }

func (e *BaseElectrode) Y() float64 { return e.y }

func (e *BaseElectrode) Z() float64 { return e.z }

func (e *BaseElectrode) Name() string { return e.name }

func (e *BaseElectrode) Activated() bool { return e.activated }

func (e *BaseElectrode) SetActivated(on bool) { e.activated = on }

// PointElectrode is an idealized electrode with no physical extent, drawn as
// a fixed-size marker.
type PointElectrode struct {
	BaseElectrode
}

// NewPointElectrode places a point electrode at (x, y, z) microns. New
// electrodes start activated.
func NewPointElectrode(x, y, z float64) *PointElectrode {
	return &PointElectrode{BaseElectrode{x: x, y: y, z: z, activated: true}}
}

func (e *PointElectrode) Shape() []Primitive {
	return []Primitive{{Kind: MarkerShape, Style: markerStyle}}
}

func (e *PointElectrode) DeactivatedShape() []Primitive {
	return []Primitive{{Kind: MarkerShape, Style: deactivatedStyle}}
}

// DiskElectrode is a circular electrode with radius r microns.
type DiskElectrode struct {
	BaseElectrode
	r float64
}

// NewDiskElectrode places a disk electrode of radius r at (x, y, z) microns.
// The radius must be positive.
func NewDiskElectrode(x, y, z, r float64) (*DiskElectrode, error) {
	if r <= 0 {
		return nil, fmt.Errorf("disk electrode radius must be positive, got %g", r)
	}
	return &DiskElectrode{BaseElectrode{x: x, y: y, z: z, activated: true}, r}, nil
}

// Radius returns the disk radius in microns.
func (e *DiskElectrode) Radius() float64 { return e.r }

func (e *DiskElectrode) Shape() []Primitive {
	return []Primitive{{Kind: CircleShape, Size: e.r, Style: diskStyle}}
}

func (e *DiskElectrode) DeactivatedShape() []Primitive {
	return []Primitive{{Kind: CircleShape, Size: e.r, Style: deactivatedStyle}}
}

// SquareElectrode is a square electrode with side length a microns.
type SquareElectrode struct {
	BaseElectrode
	a float64
}

// NewSquareElectrode places a square electrode of side a at (x, y, z)
// microns. The side length must be positive.
func NewSquareElectrode(x, y, z, a float64) (*SquareElectrode, error) {
	if a <= 0 {
		return nil, fmt.Errorf("square electrode side must be positive, got %g", a)
	}
	return &SquareElectrode{BaseElectrode{x: x, y: y, z: z, activated: true}, a}, nil
}

// Side returns the square side length in microns.
func (e *SquareElectrode) Side() float64 { return e.a }

func (e *SquareElectrode) Shape() []Primitive {
	return []Primitive{{Kind: SquareShape, Size: e.a, Style: diskStyle}}
}

func (e *SquareElectrode) DeactivatedShape() []Primitive {
	return []Primitive{{Kind: SquareShape, Size: e.a, Style: deactivatedStyle}}
}
