package implant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDisk(t *testing.T, x, y, z, r float64) *DiskElectrode {
	t.Helper()
	e, err := NewDiskElectrode(x, y, z, r)
	require.NoError(t, err)
	return e
}

// TestNewElectrodeArray covers seeding from zero, one, or several electrodes.
func TestNewElectrodeArray(t *testing.T) {
	t.Parallel()

	t.Run("empty array", func(t *testing.T) {
		t.Parallel()
		a, err := NewElectrodeArray()
		require.NoError(t, err)
		assert.Equal(t, 0, a.NElectrodes())
		assert.Empty(t, a.Keys())
	})

	t.Run("single disk electrode gets key 0", func(t *testing.T) {
		t.Parallel()
		a, err := NewElectrodeArray(mustDisk(t, 0, 0, 0, 100))
		require.NoError(t, err)
		assert.Equal(t, 1, a.NElectrodes())
		require.Len(t, a.Keys(), 1)
		assert.Equal(t, KeyNum(0), a.Keys()[0])
	})

	t.Run("slice keys are sequential from 0", func(t *testing.T) {
		t.Parallel()
		a, err := NewElectrodeArray(
			NewPointElectrode(0, 0, 0),
			NewPointElectrode(1, 0, 0),
			NewPointElectrode(2, 0, 0),
		)
		require.NoError(t, err)
		assert.Equal(t, []Key{KeyNum(0), KeyNum(1), KeyNum(2)}, a.Keys())
	})

	t.Run("nil electrode rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewElectrodeArray(NewPointElectrode(0, 0, 0), nil)
		assert.ErrorIs(t, err, ErrNotElectrode)
	})
}

func TestNewElectrodeArrayFromMap(t *testing.T) {
	t.Parallel()

	a, err := NewElectrodeArrayFromMap(map[Key]Electrode{
		KeyName("B"): NewPointElectrode(3, 0, 0),
		KeyNum(2):    NewPointElectrode(1, 0, 0),
		KeyName("A"): NewPointElectrode(2, 0, 0),
		KeyNum(0):    NewPointElectrode(0, 0, 0),
	})
	require.NoError(t, err)

	// Integer keys sort before names, so construction is deterministic.
	assert.Equal(t, []Key{KeyNum(0), KeyNum(2), KeyName("A"), KeyName("B")}, a.Keys())
	assert.Equal(t, 3.0, a.Get(Name("B")).X())
}

func TestAddRemoveElectrode(t *testing.T) {
	t.Parallel()

	t.Run("duplicate key rejected", func(t *testing.T) {
		t.Parallel()
		a, err := NewElectrodeArray(NewPointElectrode(0, 0, 0))
		require.NoError(t, err)
		err = a.AddElectrode(KeyNum(0), NewPointElectrode(1, 0, 0))
		assert.ErrorIs(t, err, ErrKeyConflict)
		assert.Equal(t, 1, a.NElectrodes())
	})

	t.Run("add appends at end of order", func(t *testing.T) {
		t.Parallel()
		a, err := NewElectrodeArray(NewPointElectrode(0, 0, 0))
		require.NoError(t, err)
		require.NoError(t, a.AddElectrode(KeyName("X1"), NewPointElectrode(5, 0, 0)))
		assert.Equal(t, []Key{KeyNum(0), KeyName("X1")}, a.Keys())
	})

	t.Run("remove absent key rejected", func(t *testing.T) {
		t.Parallel()
		a, err := NewElectrodeArray(NewPointElectrode(0, 0, 0))
		require.NoError(t, err)
		err = a.RemoveElectrode(KeyName("missing"))
		assert.ErrorIs(t, err, ErrKeyAbsent)
	})

	t.Run("remove closes the order gap", func(t *testing.T) {
		t.Parallel()
		a, err := NewElectrodeArray(
			NewPointElectrode(0, 0, 0),
			NewPointElectrode(1, 0, 0),
			NewPointElectrode(2, 0, 0),
		)
		require.NoError(t, err)
		require.NoError(t, a.RemoveElectrode(KeyNum(1)))
		assert.Equal(t, []Key{KeyNum(0), KeyNum(2)}, a.Keys())
		assert.Equal(t, 2, a.NElectrodes())
	})
}

// TestGetPrecedence pins down selector resolution: key equality before flat
// position, and nil for every kind of miss.
func TestGetPrecedence(t *testing.T) {
	t.Parallel()

	a, err := NewElectrodeArray(
		NewPointElectrode(0, 0, 0),
		NewPointElectrode(1, 0, 0),
		NewPointElectrode(2, 0, 0),
	)
	require.NoError(t, err)
	require.NoError(t, a.RemoveElectrode(KeyNum(1)))

	// Key 2 still exists: Index(2) hits it directly.
	direct := a.Get(Index(2))
	require.NotNil(t, direct)
	assert.Equal(t, 2.0, direct.X())

	// No key 1 anymore: Index(1) falls back to position 1, which is the
	// electrode under key 2. Both selectors land on the same object.
	positional := a.Get(Index(1))
	require.NotNil(t, positional)
	assert.Same(t, direct, positional)

	t.Run("misses resolve to nil", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, a.Get(Name("nope")))
		assert.Nil(t, a.Get(Index(7)))
		assert.Nil(t, a.Get(Index(-1)))
		assert.Nil(t, a.Get(Cell{0, 0}))
		assert.Nil(t, a.Get(Batch{Index(0)}))
	})
}

func TestGetAll(t *testing.T) {
	t.Parallel()

	a, err := NewElectrodeArrayFromMap(map[Key]Electrode{
		KeyName("A1"): NewPointElectrode(0, 0, 0),
		KeyName("A2"): NewPointElectrode(1, 0, 0),
	})
	require.NoError(t, err)

	got := a.GetAll(Batch{Name("A1"), Name("missing"), Index(1)})
	require.Len(t, got, 3)
	assert.Equal(t, 0.0, got[0].X())
	assert.Nil(t, got[1])
	assert.Equal(t, 1.0, got[2].X())
}

func TestActivateDeactivate(t *testing.T) {
	t.Parallel()

	newArray := func(t *testing.T) *ElectrodeArray {
		a, err := NewElectrodeArray(
			NewPointElectrode(0, 0, 0),
			NewPointElectrode(1, 0, 0),
			NewPointElectrode(2, 0, 0),
		)
		require.NoError(t, err)
		return a
	}

	t.Run("all token toggles every electrode", func(t *testing.T) {
		t.Parallel()
		a := newArray(t)
		require.NoError(t, a.Deactivate(Name("all")))
		for _, e := range a.Electrodes() {
			assert.False(t, e.Activated())
		}
		require.NoError(t, a.Activate(Name("all")))
		for _, e := range a.Electrodes() {
			assert.True(t, e.Activated())
		}
	})

	t.Run("single and batch selectors", func(t *testing.T) {
		t.Parallel()
		a := newArray(t)
		require.NoError(t, a.Deactivate(Index(0)))
		assert.False(t, a.Get(Index(0)).Activated())
		assert.True(t, a.Get(Index(1)).Activated())

		require.NoError(t, a.Deactivate(Batch{Index(1), Index(2)}))
		assert.False(t, a.Get(Index(1)).Activated())
		assert.False(t, a.Get(Index(2)).Activated())
	})

	t.Run("missing target fails", func(t *testing.T) {
		t.Parallel()
		a := newArray(t)
		err := a.Activate(Name("Z9"))
		assert.ErrorIs(t, err, ErrKeyAbsent)
	})
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A1", KeyName("A1").String())
	assert.Equal(t, "7", KeyNum(7).String())
	assert.True(t, KeyNum(7).IsNum())
	assert.False(t, KeyName("7").IsNum())
	// A name that spells a number is still a distinct key.
	assert.NotEqual(t, KeyName("7"), KeyNum(7))
}

func TestBatchOfKeys(t *testing.T) {
	t.Parallel()

	b := BatchOfKeys(KeyNum(0), KeyName("A1"))
	require.Len(t, b, 2)
	assert.Equal(t, Index(0), b[0])
	assert.Equal(t, Name("A1"), b[1])
}
