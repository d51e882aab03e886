package mchi

// Default tunables. The reference format defined by the original
// MMapChainedHashTable fixes these as compile-time constants; mchi keeps
// the same defaults but allows [Options] to override them per instance so
// tests and small deployments are not forced to pay for a 500 MiB file.
// Overriding any of them produces a file that is only compatible with other
// instances using the identical values — nothing here is negotiated at
// runtime or recorded anywhere but the reserved header's own bookkeeping
// fields (see [Open] and §9 of the design notes on the bump-pointer).
const (
	// DefaultTableSize is the number of buckets in the slot table.
	DefaultTableSize = 100_000

	// SlotSize is the width in bytes of one slot-table entry. Fixed: the
	// on-disk format stores every offset as an 8-byte little-endian value.
	SlotSize = 8

	// DefaultKeySize is the number of bytes reserved for a key. Longer keys
	// are truncated; shorter keys are right-padded with zero bytes.
	DefaultKeySize = 32

	// DefaultMaxItems is the number of identifiers that fit in one node
	// before insertion spills into an overflow node on the same-key chain.
	DefaultMaxItems = 64

	// DefaultDataRegionSize is the size in bytes of the bump/recycle arena
	// holding nodes.
	DefaultDataRegionSize = 500 * 1024 * 1024

	// nullOffset is the sentinel used by every chain pointer and by the
	// free-list head to mean "nothing here". Safe to use as a sentinel
	// because offset 0 always falls inside the slot table and no node can
	// ever be allocated there.
	nullOffset uint64 = 0
)

// Hardcoded implementation guardrails. These exist to keep the header and
// allocator arithmetic in uint64/int64 without ever approaching overflow,
// not to express a supported-configuration ceiling.
const (
	maxTableSize       = uint64(1) << 32
	maxKeySize         = 1 << 16
	maxItemsCeiling    = 1 << 20
	maxDataRegionSize  = int64(1) << 40 // 1 TiB
	minDataRegionBytes = int64(1)
)

// nodeSize returns the fixed byte width of one node: key + count + two
// chain pointers + the item array.
//
//	key(KeySize) + count(4) + next_same(8) + next_other(8) + items(MaxItems*4)
func nodeSize(keySize, maxItems int) int64 {
	return int64(keySize) + 4 + 8 + 8 + int64(maxItems)*4
}

// slotTableBytes returns the byte width of the slot table zone.
func slotTableBytes(tableSize uint64) int64 {
	return int64(tableSize) * SlotSize
}

// reservedBytes is the width of the zone between the slot table and the
// data region: the free-list head plus the persisted bump-allocation
// highwater mark. The reference format only reserves 8 bytes here (the
// free-list head) and resets the highwater to the start of the data region
// on every open, which leaks any node that isn't on the free list across a
// restart (design notes §9, open question 3). mchi persists the highwater
// explicitly in the second 8 bytes instead, as the design notes recommend.
const reservedBytes = 16

// fileSize returns the total size in bytes of a file created with the
// given tunables.
func fileSize(tableSize uint64, keySize, maxItems int, dataRegionSize int64) int64 {
	return slotTableBytes(tableSize) + reservedBytes + dataRegionSize
}
