package mchi

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Open creates or opens the file named by opts.Path and maps it into the
// process. A file that does not yet exist (or is empty) is created with
// the geometry implied by opts and initialized with an empty slot table,
// a nulled free list, and a high-water mark at the start of the data
// region. A file that already exists is mapped as-is; opts must describe
// the same geometry it was created with; a mismatched file size is
// reported as [ErrCorrupt] since there is no independent record in the
// file of which tunables produced it.
func Open(opts Options) (*Index, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	geom := newGeometry(opts.TableSize, opts.KeySize, opts.MaxItems, opts.DataRegionSize)

	flag := os.O_RDWR | os.O_CREATE
	if opts.ReadOnly {
		flag = os.O_RDONLY
	}

	f, err := os.OpenFile(opts.Path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	isNew := info.Size() == 0

	switch {
	case isNew && opts.ReadOnly:
		f.Close()
		return nil, fmt.Errorf("%w: cannot create a new index read-only", ErrInvalidInput)
	case isNew:
		if err := f.Truncate(geom.fileSize); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
		}
	case info.Size() != geom.fileSize:
		f.Close()
		return nil, fmt.Errorf("%w: file is %d bytes, expected %d for the given geometry",
			ErrCorrupt, info.Size(), geom.fileSize)
	}

	prot := unix.PROT_READ | unix.PROT_WRITE
	if opts.ReadOnly {
		prot = unix.PROT_READ
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(geom.fileSize), prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: mmap: %v", ErrOpenFailed, err)
	}

	idx := &Index{
		geom:     geom,
		file:     f,
		data:     data,
		hasher:   opts.Hasher,
		readOnly: opts.ReadOnly,
	}

	if isNew {
		idx.setHighWater(uint64(geom.dataStart))
	} else if hw := idx.highWater(); hw < uint64(geom.dataStart) || hw > uint64(geom.dataStart+geom.dataRegionSize) {
		unix.Munmap(data)
		f.Close()
		return nil, fmt.Errorf("%w: high-water mark %d outside data region", ErrCorrupt, hw)
	}

	return idx, nil
}
