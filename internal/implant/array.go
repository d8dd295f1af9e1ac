package implant

import (
	"fmt"
	"sort"
	"strconv"
)

// Key identifies one electrode in an array: either a string name or an
// integer. Integer keys are genuine keys, assigned 0..n-1 when electrodes
// arrive unnamed; after removals they stay distinguishable from flat
// positions, so Index lookup tries key equality before falling back to
// position.
type Key struct {
	name string
	idx  int
	num  bool
}

// KeyName makes a string key.
func KeyName(s string) Key { return Key{name: s} }

// KeyNum makes an integer key.
func KeyNum(i int) Key { return Key{idx: i, num: true} }

// IsNum reports whether the key is an integer key.
func (k Key) IsNum() bool { return k.num }

// Num returns the value of an integer key. It is zero for string keys.
func (k Key) Num() int { return k.idx }

// String renders the key for display and storage.
func (k Key) String() string {
	if k.num {
		return strconv.Itoa(k.idx)
	}
	return k.name
}

// keyLess orders integer keys first (ascending), then string keys
// (lexicographic). Used to make map-seeded construction deterministic.
func keyLess(a, b Key) bool {
	if a.num != b.num {
		return a.num
	}
	if a.num {
		return a.idx < b.idx
	}
	return a.name < b.name
}

// ElectrodeArray is an ordered collection of uniquely-keyed electrodes.
// Insertion order is canonical: iteration, flat positional lookup, and
// rendering all follow it. The zero value is not usable; construct with
// NewElectrodeArray or NewElectrodeArrayFromMap.
type ElectrodeArray struct {
	order []Key
	byKey map[Key]Electrode
}

// NewElectrodeArray builds an array holding the given electrodes under
// integer keys 0..n-1 in argument order. Call with no arguments for an
// empty array. Nil electrodes are rejected.
func NewElectrodeArray(electrodes ...Electrode) (*ElectrodeArray, error) {
	a := &ElectrodeArray{byKey: make(map[Key]Electrode, len(electrodes))}
	for _, e := range electrodes {
		if err := a.AddElectrode(KeyNum(a.NElectrodes()), e); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// NewElectrodeArrayFromMap builds an array from caller-chosen keys. Keys are
// processed in sorted order (integer keys first, then names) so construction
// is deterministic; that processing order becomes the insertion order.
func NewElectrodeArrayFromMap(electrodes map[Key]Electrode) (*ElectrodeArray, error) {
	keys := make([]Key, 0, len(electrodes))
	for k := range electrodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	a := &ElectrodeArray{byKey: make(map[Key]Electrode, len(electrodes))}
	for _, k := range keys {
		if err := a.AddElectrode(k, electrodes[k]); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// AddElectrode appends an electrode at the end of the order under key. The
// key must be unused and the electrode non-nil.
func (a *ElectrodeArray) AddElectrode(key Key, e Electrode) error {
	if e == nil {
		return fmt.Errorf("add electrode %q: %w", key.String(), ErrNotElectrode)
	}
	if _, exists := a.byKey[key]; exists {
		return fmt.Errorf("add electrode: key %q: %w", key.String(), ErrKeyConflict)
	}
	a.order = append(a.order, key)
	a.byKey[key] = e
	return nil
}

// RemoveElectrode deletes the electrode under key, closing the gap in the
// order.
func (a *ElectrodeArray) RemoveElectrode(key Key) error {
	if _, exists := a.byKey[key]; !exists {
		return fmt.Errorf("remove electrode: key %q: %w", key.String(), ErrKeyAbsent)
	}
	delete(a.byKey, key)
	for i, k := range a.order {
		if k == key {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return nil
}

// NElectrodes returns the number of electrodes in the array.
func (a *ElectrodeArray) NElectrodes() int { return len(a.order) }

// Keys returns the electrode keys in insertion order.
func (a *ElectrodeArray) Keys() []Key {
	out := make([]Key, len(a.order))
	copy(out, a.order)
	return out
}

// Electrodes returns the electrode objects in insertion order.
func (a *ElectrodeArray) Electrodes() []Electrode {
	out := make([]Electrode, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, a.byKey[k])
	}
	return out
}

// Get resolves a selector to a single electrode. A Name is looked up as a
// string key. An Index is first tried as an integer key; when no such key
// exists it indexes the insertion order, with out-of-range (including
// negative) positions resolving to nil. A Cell or Batch resolves to nil
// here; cells need a grid shape, batches go through GetAll. Misses are
// never errors.
func (a *ElectrodeArray) Get(sel Selector) Electrode {
	switch s := sel.(type) {
	case Name:
		return a.byKey[KeyName(string(s))]
	case Index:
		if e, ok := a.byKey[KeyNum(int(s))]; ok {
			return e
		}
		return a.at(int(s))
	}
	return nil
}

// GetAll resolves each element of a batch, one result per element in order.
// Misses yield nil entries; a nested Batch yields nil.
func (a *ElectrodeArray) GetAll(b Batch) []Electrode {
	out := make([]Electrode, len(b))
	for i, sel := range b {
		out[i] = a.Get(sel)
	}
	return out
}

// at returns the electrode at flat position i in insertion order, or nil
// when i is out of range.
func (a *ElectrodeArray) at(i int) Electrode {
	if i < 0 || i >= len(a.order) {
		return nil
	}
	return a.byKey[a.order[i]]
}

// Activate turns on the electrodes addressed by sel. Name("all") targets
// every key in the array. Addressing an electrode that does not resolve
// fails with ErrKeyAbsent; electrodes already on keep their state.
func (a *ElectrodeArray) Activate(sel Selector) error {
	return a.setActivatedVia(a.Get, sel, true)
}

// Deactivate turns off the electrodes addressed by sel, with the same
// addressing rules as Activate.
func (a *ElectrodeArray) Deactivate(sel Selector) error {
	return a.setActivatedVia(a.Get, sel, false)
}

// setActivatedVia applies the activation flag through the given resolver so
// grids can route cell selectors through their own lookup.
func (a *ElectrodeArray) setActivatedVia(get func(Selector) Electrode, sel Selector, on bool) error {
	if name, ok := sel.(Name); ok && name == "all" {
		for _, k := range a.order {
			a.byKey[k].SetActivated(on)
		}
		return nil
	}
	targets := Batch{sel}
	if b, ok := sel.(Batch); ok {
		targets = b
	}
	for _, s := range targets {
		e := get(s)
		if e == nil {
			return fmt.Errorf("set activation for %v: %w", s, ErrKeyAbsent)
		}
		e.SetActivated(on)
	}
	return nil
}
