package implant

import "testing"

func TestNewDiskElectrode(t *testing.T) {
	e, err := NewDiskElectrode(10, -20, 30, 100)
	if err != nil {
		t.Fatalf("NewDiskElectrode: %v", err)
	}
	if e.X() != 10 || e.Y() != -20 || e.Z() != 30 {
		t.Errorf("position = (%g, %g, %g), want (10, -20, 30)", e.X(), e.Y(), e.Z())
	}
	if e.Radius() != 100 {
		t.Errorf("Radius() = %g, want 100", e.Radius())
	}
	if !e.Activated() {
		t.Error("new electrodes should start activated")
	}

	for _, r := range []float64{0, -1} {
		if _, err := NewDiskElectrode(0, 0, 0, r); err == nil {
			t.Errorf("NewDiskElectrode with r=%g should fail", r)
		}
	}
}

func TestNewSquareElectrode(t *testing.T) {
	e, err := NewSquareElectrode(1, 2, 3, 50)
	if err != nil {
		t.Fatalf("NewSquareElectrode: %v", err)
	}
	if e.Side() != 50 {
		t.Errorf("Side() = %g, want 50", e.Side())
	}
	if _, err := NewSquareElectrode(0, 0, 0, 0); err == nil {
		t.Error("NewSquareElectrode with a=0 should fail")
	}
}

func TestSetActivated(t *testing.T) {
	e := NewPointElectrode(0, 0, 0)
	e.SetActivated(false)
	if e.Activated() {
		t.Error("SetActivated(false) did not stick")
	}
	e.SetActivated(true)
	if !e.Activated() {
		t.Error("SetActivated(true) did not stick")
	}
}

func TestElectrodeShapes(t *testing.T) {
	point := NewPointElectrode(0, 0, 0)
	disk, _ := NewDiskElectrode(0, 0, 0, 25)
	square, _ := NewSquareElectrode(0, 0, 0, 40)

	tests := []struct {
		name string
		e    Electrode
		kind ShapeKind
		size float64
	}{
		{"point marker", point, MarkerShape, 0},
		{"disk circle", disk, CircleShape, 25},
		{"square square", square, SquareShape, 40},
	}

	for _, tt := range tests {
		shape := tt.e.Shape()
		if len(shape) != 1 {
			t.Errorf("%s: got %d primitives, want 1", tt.name, len(shape))
			continue
		}
		if shape[0].Kind != tt.kind || shape[0].Size != tt.size {
			t.Errorf("%s: primitive = {%v %g}, want {%v %g}",
				tt.name, shape[0].Kind, shape[0].Size, tt.kind, tt.size)
		}
		off := tt.e.DeactivatedShape()
		if len(off) != 1 || off[0].Kind != tt.kind {
			t.Errorf("%s: deactivated shape should keep geometry", tt.name)
		}
		if off[0].Style == shape[0].Style {
			t.Errorf("%s: deactivated style should differ from active style", tt.name)
		}
	}
}
