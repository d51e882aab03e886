package mchi

import "bytes"

// findHeadNode walks the other-chain of bucket looking for a node whose
// stored key equals key. It returns the offset of that node (the head of
// its same-chain) and the offset of the predecessor link that points to
// it: either another node's next_other field, or, when prevOff is
// nullOffset, the bucket slot itself. Callers rewrite that link through
// [Index.setOtherLink] without needing to know which case they're in.
// When key is not found, prevOff is the last node of the other-chain
// (nullOffset for an empty bucket), the link a new key is appended through.
func (idx *Index) findHeadNode(bucket uint64, key []byte) (headOff, prevOff uint64, found bool) {
	cur := readU64(idx.data, idx.geom.slotOffset(bucket))
	prev := uint64(nullOffset)

	for cur != nullOffset {
		if bytes.Equal(idx.geom.nodeKey(idx.data, int64(cur)), key) {
			return cur, prev, true
		}
		prev = cur
		cur = idx.geom.nodeNextOther(idx.data, int64(cur))
	}

	return 0, prev, false
}

// setOtherLink rewrites the predecessor link discovered by
// [Index.findHeadNode] (or an equivalent walk) to point at newVal instead.
func (idx *Index) setOtherLink(bucket uint64, prevOff, newVal uint64) {
	if prevOff == nullOffset {
		writeU64(idx.data, idx.geom.slotOffset(bucket), newVal)
	} else {
		idx.geom.setNodeNextOther(idx.data, int64(prevOff), newVal)
	}
}

// collectSameChain appends every item stored across the same-chain
// starting at headOff, in chain order, to dst.
func (idx *Index) collectSameChain(headOff uint64, dst []uint32) []uint32 {
	for off := headOff; off != nullOffset; off = idx.geom.nodeNextSame(idx.data, int64(off)) {
		count := idx.geom.nodeCount(idx.data, int64(off))
		for i := uint32(0); i < count; i++ {
			dst = append(dst, idx.geom.nodeItem(idx.data, int64(off), int(i)))
		}
	}
	return dst
}

// sameChainContains reports whether id appears anywhere in the same-chain
// starting at headOff. Insert must check the whole chain, not just the
// node it happens to be filling, or the same id can end up duplicated
// across two nodes of one key's chain.
func (idx *Index) sameChainContains(headOff uint64, id uint32) bool {
	for off := headOff; off != nullOffset; off = idx.geom.nodeNextSame(idx.data, int64(off)) {
		count := idx.geom.nodeCount(idx.data, int64(off))
		for i := uint32(0); i < count; i++ {
			if idx.geom.nodeItem(idx.data, int64(off), int(i)) == id {
				return true
			}
		}
	}
	return false
}

// findItemInSameChain locates id within the same-chain starting at
// headOff. It returns the offset of the node holding it, the item's slot
// index within that node, the offset of the preceding node in the
// same-chain (nullOffset if nodeOff is headOff itself), and whether id was
// found at all.
func (idx *Index) findItemInSameChain(headOff uint64, id uint32) (nodeOff uint64, slot int, prevSame uint64, found bool) {
	prev := uint64(nullOffset)
	for off := headOff; off != nullOffset; off = idx.geom.nodeNextSame(idx.data, int64(off)) {
		count := idx.geom.nodeCount(idx.data, int64(off))
		for i := uint32(0); i < count; i++ {
			if idx.geom.nodeItem(idx.data, int64(off), int(i)) == id {
				return off, int(i), prev, true
			}
		}
		prev = off
	}
	return 0, 0, 0, false
}
