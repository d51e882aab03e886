package mchi

import "github.com/cespare/xxhash/v2"

// SumHasher is the reference hash: the sum of a key's UTF-8 bytes modulo
// the table size. It is deliberately weak, clustering heavily on short
// alphabetic keys, and is kept only because it is the hash the original
// format commits to on disk. A file can only be read correctly by an
// opener that hashes keys the same way the writer did, since buckets are
// never re-derived from the stored key; changing the hash for an existing
// file silently scrambles every lookup without touching a single byte on
// disk.
type SumHasher struct{}

// Hash implements [Hasher].
func (SumHasher) Hash(key []byte, tableSize uint64) uint64 {
	var sum uint64
	for _, b := range key {
		sum += uint64(b)
	}
	if tableSize == 0 {
		return 0
	}
	return sum % tableSize
}

// XXHasher hashes keys with xxHash64. It distributes far more evenly than
// [SumHasher] and is the recommended choice for a new file that does not
// need to interoperate with other MMapChainedHashTable-format readers.
type XXHasher struct{}

// Hash implements [Hasher].
func (XXHasher) Hash(key []byte, tableSize uint64) uint64 {
	if tableSize == 0 {
		return 0
	}
	return xxhash.Sum64(key) % tableSize
}
