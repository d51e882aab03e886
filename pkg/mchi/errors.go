package mchi

import "errors"

// Sentinel errors returned by mchi operations.
//
// Callers should use [errors.Is] to classify errors:
//
//	if errors.Is(err, mchi.ErrOutOfSpace) {
//	    // grow DataRegionSize and rebuild
//	}
var (
	// ErrOpenFailed indicates the underlying file could not be created,
	// extended, or mapped. Fatal for the attempted [Open] call.
	ErrOpenFailed = errors.New("mchi: open failed")

	// ErrCorrupt indicates an existing file does not fit the geometry it was
	// opened with: its size differs from the expected file size, or its
	// persisted highwater mark lies outside the data region. Recovery:
	// rebuild the index from the source of truth.
	ErrCorrupt = errors.New("mchi: corrupt")

	// ErrOutOfSpace indicates the data region has no room for another node.
	// Returned only from [Index.Insert]; any nodes already allocated and
	// linked earlier in the same call remain reachable.
	ErrOutOfSpace = errors.New("mchi: out of space")

	// ErrClosed indicates the [Index] has already been closed.
	ErrClosed = errors.New("mchi: closed")

	// ErrInvalidInput indicates invalid arguments were supplied, such as an
	// empty Path or a negative MaxItems (zero tunables fall back to their
	// defaults), or a write to a read-only [Index].
	ErrInvalidInput = errors.New("mchi: invalid input")
)
