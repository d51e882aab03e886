package mchi

import "fmt"

// Hasher maps a key to a bucket index in [0, tableSize). Implementations
// must be deterministic and pure: the same key and table size always
// produce the same bucket.
type Hasher interface {
	Hash(key []byte, tableSize uint64) uint64
}

// Options configures [Open]. The zero value is not usable; callers must at
// minimum set Path. Every other field falls back to its Default constant.
type Options struct {
	// Path is the filesystem path of the backing file. Required.
	Path string

	// TableSize is the number of buckets in the slot table. Defaults to
	// [DefaultTableSize]. Like the other tunables it is used on every
	// [Open], not only at creation: an existing file is mapped with the
	// geometry these fields describe, and must have been created with it.
	TableSize uint64

	// KeySize is the fixed width in bytes reserved for a key. Defaults to
	// [DefaultKeySize].
	KeySize int

	// MaxItems is the number of identifiers held per node before insertion
	// spills onto an overflow node. Defaults to [DefaultMaxItems].
	MaxItems int

	// DataRegionSize is the size in bytes of the node arena. Defaults to
	// [DefaultDataRegionSize].
	DataRegionSize int64

	// Hasher selects the bucket-assignment function. The zero value uses
	// [SumHasher], the weak byte-sum hash of the reference format; this is
	// what makes a file written by one implementation readable by another.
	// Supplying a different Hasher (for example [XXHasher]) produces a
	// faster, better-distributed table at the cost of that portability:
	// the same Hasher must be supplied on every subsequent [Open] of the
	// same file, and mchi has no way to detect a mismatch since the hash
	// choice is a property of the opener, not the file.
	Hasher Hasher

	// ReadOnly maps the file without write access. [Index.Insert] and
	// [Index.Remove] return [ErrInvalidInput] on a read-only Index.
	ReadOnly bool
}

// withDefaults returns a copy of o with every zero-valued tunable field
// replaced by its default, and validates the result.
func (o Options) withDefaults() (Options, error) {
	if o.Path == "" {
		return Options{}, fmt.Errorf("%w: path is required", ErrInvalidInput)
	}
	if o.TableSize == 0 {
		o.TableSize = DefaultTableSize
	}
	if o.KeySize == 0 {
		o.KeySize = DefaultKeySize
	}
	if o.MaxItems == 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.DataRegionSize == 0 {
		o.DataRegionSize = DefaultDataRegionSize
	}
	if o.Hasher == nil {
		o.Hasher = SumHasher{}
	}

	switch {
	case o.TableSize > maxTableSize:
		return Options{}, fmt.Errorf("%w: table size %d exceeds limit", ErrInvalidInput, o.TableSize)
	case o.KeySize <= 0 || o.KeySize > maxKeySize:
		return Options{}, fmt.Errorf("%w: key size %d out of range", ErrInvalidInput, o.KeySize)
	case o.MaxItems <= 0 || o.MaxItems > maxItemsCeiling:
		return Options{}, fmt.Errorf("%w: max items %d out of range", ErrInvalidInput, o.MaxItems)
	case o.DataRegionSize < minDataRegionBytes || o.DataRegionSize > maxDataRegionSize:
		return Options{}, fmt.Errorf("%w: data region size %d out of range", ErrInvalidInput, o.DataRegionSize)
	}

	return o, nil
}
