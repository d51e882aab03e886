package mchi

// Insert associates ids with key. Ids already associated with key (found
// anywhere in its same-chain, not just the node being filled) are skipped;
// duplicates within ids itself are likewise collapsed to one occurrence.
//
// Insertion is not transactional: if the data region runs out of room
// partway through for a key that already exists, [ErrOutOfSpace] is
// returned but every id already written earlier in the same call stays
// linked and visible. For a key not yet present, the new chain is freed
// again and none of the call's ids is stored.
func (idx *Index) Insert(key string, ids []uint32) error {
	if err := idx.checkWritable(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	normKey := normalizeKey(key, idx.geom.keySize)
	bucket := idx.bucketFor(normKey)

	headOff, prevOff, found := idx.findHeadNode(bucket, normKey)
	if !found {
		newHead, err := idx.buildChain(normKey, ids)
		if err != nil {
			return err
		}

		// New keys are appended at the tail of the bucket's other-chain;
		// newHead.next_other stays 0.
		idx.setOtherLink(bucket, prevOff, newHead)

		return nil
	}

	for _, id := range ids {
		if idx.sameChainContains(headOff, id) {
			continue
		}
		if err := idx.appendToChain(headOff, normKey, id); err != nil {
			return err
		}
	}

	return nil
}

// buildChain allocates a fresh same-chain for key holding the distinct
// values of ids, chunked across as many nodes as needed, and returns the
// offset of the chain's head. The chain is not linked into any bucket;
// the caller does that once buildChain succeeds.
//
// If allocation fails partway through, every node allocated for this
// chain is returned to the free list before the error is reported: the
// chain was never exposed to a reader, so there is nothing to preserve.
func (idx *Index) buildChain(key []byte, ids []uint32) (uint64, error) {
	uniq := dedupIDs(ids)

	var head, tail uint64 = nullOffset, nullOffset
	var allocated []uint64

	rollback := func() {
		for _, off := range allocated {
			idx.freeNode(off)
		}
	}

	for i := 0; i < len(uniq); i += idx.geom.maxItems {
		end := i + idx.geom.maxItems
		if end > len(uniq) {
			end = len(uniq)
		}
		chunk := uniq[i:end]

		off, err := idx.allocNode()
		if err != nil {
			rollback()
			return 0, err
		}
		allocated = append(allocated, off)

		idx.geom.setNodeKey(idx.data, int64(off), key)
		for j, id := range chunk {
			idx.geom.setNodeItem(idx.data, int64(off), j, id)
		}
		idx.geom.setNodeCount(idx.data, int64(off), uint32(len(chunk)))

		if head == nullOffset {
			head = off
		} else {
			idx.geom.setNodeNextSame(idx.data, int64(tail), off)
		}
		tail = off
	}

	return head, nil
}

// appendToChain writes id into the first node of the same-chain starting
// at headOff that has spare capacity, allocating and linking a new
// overflow node onto the tail if every existing node is full.
func (idx *Index) appendToChain(headOff uint64, key []byte, id uint32) error {
	last := headOff
	for off := headOff; off != nullOffset; off = idx.geom.nodeNextSame(idx.data, int64(off)) {
		count := idx.geom.nodeCount(idx.data, int64(off))
		if int(count) < idx.geom.maxItems {
			idx.geom.setNodeItem(idx.data, int64(off), int(count), id)
			idx.geom.setNodeCount(idx.data, int64(off), count+1)
			return nil
		}
		last = off
	}

	newOff, err := idx.allocNode()
	if err != nil {
		return err
	}

	idx.geom.setNodeKey(idx.data, int64(newOff), key)
	idx.geom.setNodeItem(idx.data, int64(newOff), 0, id)
	idx.geom.setNodeCount(idx.data, int64(newOff), 1)
	idx.geom.setNodeNextSame(idx.data, int64(last), newOff)

	return nil
}

// dedupIDs returns the distinct values of ids in first-seen order.
func dedupIDs(ids []uint32) []uint32 {
	seen := make(map[uint32]struct{}, len(ids))
	uniq := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	return uniq
}
