package mchi

import "encoding/binary"

// geometry captures the fixed dimensions of an open file: how big the slot
// table is, how wide a key and a node are, and where each zone begins.
// Every field is decided once from [Options] when a file is created or
// opened; nothing here changes for the lifetime of an [Index].
type geometry struct {
	tableSize      uint64
	keySize        int
	maxItems       int
	dataRegionSize int64

	nodeSize     int64
	slotBytes    int64
	freeListOff  int64 // offset of the 8-byte free-list head
	highwaterOff int64 // offset of the 8-byte persisted bump pointer
	dataStart    int64 // offset of the first byte of the data region
	fileSize     int64
}

func newGeometry(tableSize uint64, keySize, maxItems int, dataRegionSize int64) geometry {
	slotBytes := slotTableBytes(tableSize)
	return geometry{
		tableSize:      tableSize,
		keySize:        keySize,
		maxItems:       maxItems,
		dataRegionSize: dataRegionSize,
		nodeSize:       nodeSize(keySize, maxItems),
		slotBytes:      slotBytes,
		freeListOff:    slotBytes,
		highwaterOff:   slotBytes + 8,
		dataStart:      slotBytes + reservedBytes,
		fileSize:       fileSize(tableSize, keySize, maxItems, dataRegionSize),
	}
}

// slotOffset returns the byte offset of the bucket-head slot for bucket b.
func (g geometry) slotOffset(b uint64) int64 {
	return int64(b) * SlotSize
}

// Field offsets within a node, relative to the node's own start.
//
//	key(keySize) | count(4) | next_same(8) | next_other(8) | items(maxItems*4)
func (g geometry) countOff() int64     { return int64(g.keySize) }
func (g geometry) nextSameOff() int64  { return int64(g.keySize) + 4 }
func (g geometry) nextOtherOff() int64 { return int64(g.keySize) + 4 + 8 }
func (g geometry) itemsOff() int64     { return int64(g.keySize) + 4 + 8 + 8 }

// normalizeKey returns a keySize-wide byte slice: key truncated if it is
// too long, zero-padded on the right if it is too short. Truncation is
// silent, matching the reference format, which never rejects a key — two
// keys that share a KeySize-byte prefix collide onto the same stored key.
func normalizeKey(key string, keySize int) []byte {
	out := make([]byte, keySize)
	copy(out, key)
	return out
}

// --- raw little-endian accessors over the mapped file ---

func readU32(data []byte, off int64) uint32 {
	return binary.LittleEndian.Uint32(data[off : off+4])
}

func writeU32(data []byte, off int64, v uint32) {
	binary.LittleEndian.PutUint32(data[off:off+4], v)
}

func readU64(data []byte, off int64) uint64 {
	return binary.LittleEndian.Uint64(data[off : off+8])
}

func writeU64(data []byte, off int64, v uint64) {
	binary.LittleEndian.PutUint64(data[off:off+8], v)
}

// --- node field accessors, addressed by absolute node offset ---

func (g geometry) nodeKey(data []byte, nodeOff int64) []byte {
	return data[nodeOff : nodeOff+int64(g.keySize)]
}

func (g geometry) setNodeKey(data []byte, nodeOff int64, key []byte) {
	copy(data[nodeOff:nodeOff+int64(g.keySize)], key)
}

func (g geometry) nodeCount(data []byte, nodeOff int64) uint32 {
	return readU32(data, nodeOff+g.countOff())
}

func (g geometry) setNodeCount(data []byte, nodeOff int64, count uint32) {
	writeU32(data, nodeOff+g.countOff(), count)
}

func (g geometry) nodeNextSame(data []byte, nodeOff int64) uint64 {
	return readU64(data, nodeOff+g.nextSameOff())
}

func (g geometry) setNodeNextSame(data []byte, nodeOff int64, v uint64) {
	writeU64(data, nodeOff+g.nextSameOff(), v)
}

func (g geometry) nodeNextOther(data []byte, nodeOff int64) uint64 {
	return readU64(data, nodeOff+g.nextOtherOff())
}

func (g geometry) setNodeNextOther(data []byte, nodeOff int64, v uint64) {
	writeU64(data, nodeOff+g.nextOtherOff(), v)
}

func (g geometry) nodeItem(data []byte, nodeOff int64, slot int) uint32 {
	return readU32(data, nodeOff+g.itemsOff()+int64(slot)*4)
}

func (g geometry) setNodeItem(data []byte, nodeOff int64, slot int, id uint32) {
	writeU32(data, nodeOff+g.itemsOff()+int64(slot)*4, id)
}

// clearNode zeroes a node's key, count and both chain pointers, but leaves
// the item array untouched: every read of an item is gated by count, so
// stale item bytes beyond count are never observed.
func (g geometry) clearNode(data []byte, nodeOff int64) {
	for i := range data[nodeOff : nodeOff+int64(g.keySize)] {
		data[nodeOff+int64(i)] = 0
	}
	g.setNodeCount(data, nodeOff, 0)
	g.setNodeNextSame(data, nodeOff, nullOffset)
	g.setNodeNextOther(data, nodeOff, nullOffset)
}
