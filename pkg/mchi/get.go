package mchi

// Get returns the identifiers associated with key, concatenated node by
// node along its same-chain, or nil if key is not present. The order is
// insertion order until a removal swaps the last item of a node into the
// removed item's slot; after that it is not insertion order. A closed [Index] also
// returns nil rather than panicking on the unmapped file.
func (idx *Index) Get(key string) []uint32 {
	if idx.closed {
		return nil
	}

	normKey := normalizeKey(key, idx.geom.keySize)
	bucket := idx.bucketFor(normKey)

	headOff, _, found := idx.findHeadNode(bucket, normKey)
	if !found {
		return nil
	}

	return idx.collectSameChain(headOff, nil)
}
