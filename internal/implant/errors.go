package implant

import "errors"

// Domain errors for array and grid operations. Most are returned wrapped
// with key or parameter context; test with errors.Is.
var (
	// ErrNotElectrode indicates a value that does not satisfy the Electrode
	// capability where one was required.
	ErrNotElectrode = errors.New("implant: not an electrode")

	// ErrKeyConflict indicates an insertion under a key that is already taken.
	ErrKeyConflict = errors.New("implant: electrode key already exists")

	// ErrKeyAbsent indicates removal or activation of a key that does not exist.
	ErrKeyAbsent = errors.New("implant: electrode key does not exist")

	// ErrBadShape indicates a grid shape without positive rows and columns.
	ErrBadShape = errors.New("implant: grid shape must have positive rows and columns")

	// ErrBadNames indicates a naming spec that is neither a valid scheme pair
	// nor an explicit list of length rows*cols.
	ErrBadNames = errors.New("implant: invalid electrode naming")

	// ErrBadTiling indicates a tiling other than rect or hex.
	ErrBadTiling = errors.New("implant: tiling must be rect or hex")

	// ErrBadOrientation indicates an orientation other than horizontal or vertical.
	ErrBadOrientation = errors.New("implant: orientation must be horizontal or vertical")

	// ErrUnknownKind indicates an electrode kind that is not in the registry.
	ErrUnknownKind = errors.New("implant: unknown electrode kind")

	// ErrMissingRadius indicates a grid of radius-bearing electrodes
	// constructed without a radius.
	ErrMissingRadius = errors.New("implant: disk electrodes need a radius")

	// ErrLengthMismatch indicates a per-electrode override slice whose length
	// does not match the number of grid electrodes.
	ErrLengthMismatch = errors.New("implant: override length does not match grid size")
)
