package mchi

// Remove deletes the association between key and id. It is a no-op, not
// an error, when key is absent or id was never associated with it.
//
// Removal uses swap-with-last within the node holding id, matching the
// reference algorithm. When that leaves the node empty it is unlinked and
// returned to the free list. Emptying the head of a key's same-chain is
// the one case that needs care: the head is also the node threaded into
// the bucket's other-chain, so its successor in the same-chain (if any)
// must be promoted into the other-chain in its place, inheriting
// next_other, rather than the key's remaining overflow nodes being
// silently dropped.
func (idx *Index) Remove(key string, id uint32) error {
	if err := idx.checkWritable(); err != nil {
		return err
	}

	normKey := normalizeKey(key, idx.geom.keySize)
	bucket := idx.bucketFor(normKey)

	headOff, prevOther, found := idx.findHeadNode(bucket, normKey)
	if !found {
		return nil
	}

	nodeOff, slot, prevSame, found := idx.findItemInSameChain(headOff, id)
	if !found {
		return nil
	}

	count := idx.geom.nodeCount(idx.data, int64(nodeOff))
	last := idx.geom.nodeItem(idx.data, int64(nodeOff), int(count-1))
	idx.geom.setNodeItem(idx.data, int64(nodeOff), slot, last)
	idx.geom.setNodeCount(idx.data, int64(nodeOff), count-1)

	if count-1 > 0 {
		return nil
	}

	nextSame := idx.geom.nodeNextSame(idx.data, int64(nodeOff))

	if nodeOff == headOff {
		nextOther := idx.geom.nodeNextOther(idx.data, int64(headOff))
		if nextSame != nullOffset {
			idx.geom.setNodeNextOther(idx.data, int64(nextSame), nextOther)
			idx.setOtherLink(bucket, prevOther, nextSame)
		} else {
			idx.setOtherLink(bucket, prevOther, nextOther)
		}
	} else {
		idx.geom.setNodeNextSame(idx.data, int64(prevSame), nextSame)
	}

	idx.freeNode(nodeOff)

	return nil
}
