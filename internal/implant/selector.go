package implant

// Selector addresses electrodes in an array or grid. It is a sealed sum
// type: exactly one of Name, Index, Cell, or Batch. Resolution precedence
// and miss behavior are documented on ElectrodeArray.Get and
// ElectrodeGrid.Get.
type Selector interface {
	isSelector()
}

// Name addresses an electrode by its string key.
type Name string

// Index addresses an electrode by integer key when one exists, otherwise by
// flat position in insertion order.
type Index int

// Cell addresses a grid electrode by (row, col), raveled row-major against
// the grid shape. The base array has no shape and resolves a Cell to nil.
type Cell struct {
	Row, Col int
}

// Batch addresses several electrodes at once. Resolution is element-wise
// through GetAll; batches do not nest.
type Batch []Selector

func (Name) isSelector() {}

func (Index) isSelector() {}

func (Cell) isSelector() {}

func (Batch) isSelector() {}

// BatchOfKeys builds a Batch selector addressing existing keys.
func BatchOfKeys(keys ...Key) Batch {
	b := make(Batch, len(keys))
	for i, k := range keys {
		if k.IsNum() {
			b[i] = Index(k.Num())
		} else {
			b[i] = Name(k.String())
		}
	}
	return b
}
