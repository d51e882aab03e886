package mchi

import (
	"fmt"
	"os"
)

// Index is a single open handle onto an mmap-backed chained hash table.
// It performs no internal synchronization: see the package doc for the
// concurrency model.
type Index struct {
	geom geometry

	file   *os.File
	data   []byte // the full mmap, slot table + reserved header + data region
	hasher Hasher

	readOnly bool
	closed   bool
}

// Stats summarizes the current allocation state of an [Index]. It is a
// point-in-time snapshot, not a live view.
type Stats struct {
	TableSize       uint64
	KeySize         int
	MaxItems        int
	DataRegionSize  int64
	NodeSize        int64
	FileSize        int64
	HighWaterOffset int64
	FreeNodes       int64
	AllocatedNodes  int64
}

func (idx *Index) checkOpen() error {
	if idx.closed {
		return ErrClosed
	}
	return nil
}

func (idx *Index) checkWritable() error {
	if err := idx.checkOpen(); err != nil {
		return err
	}
	if idx.readOnly {
		return fmt.Errorf("%w: index was opened read-only", ErrInvalidInput)
	}
	return nil
}

func (idx *Index) bucketFor(normalizedKey []byte) uint64 {
	return idx.hasher.Hash(normalizedKey, idx.geom.tableSize)
}

func (idx *Index) freeListHead() uint64 {
	return readU64(idx.data, idx.geom.freeListOff)
}

func (idx *Index) setFreeListHead(off uint64) {
	writeU64(idx.data, idx.geom.freeListOff, off)
}

func (idx *Index) highWater() uint64 {
	return readU64(idx.data, idx.geom.highwaterOff)
}

func (idx *Index) setHighWater(off uint64) {
	writeU64(idx.data, idx.geom.highwaterOff, off)
}
