package mchi

// allocNode returns the offset of a fresh node with its key, count and
// chain pointers zeroed (see [geometry.clearNode]): the head of the
// free list if one is available, otherwise the next unused slot from the
// bump-allocated high-water mark. It returns [ErrOutOfSpace] when neither
// source has room left.
//
// The free list is a singly linked LIFO stack threaded through freed
// nodes' own next_same field; no separate bookkeeping structure exists for
// it, matching the reference allocator.
func (idx *Index) allocNode() (uint64, error) {
	if head := idx.freeListHead(); head != nullOffset {
		next := idx.geom.nodeNextSame(idx.data, int64(head))
		idx.setFreeListHead(next)
		idx.geom.clearNode(idx.data, int64(head))
		return head, nil
	}

	hw := idx.highWater()
	dataEnd := uint64(idx.geom.dataStart + idx.geom.dataRegionSize)
	if hw == 0 {
		hw = uint64(idx.geom.dataStart)
	}
	if hw+uint64(idx.geom.nodeSize) > dataEnd {
		return 0, ErrOutOfSpace
	}

	idx.geom.clearNode(idx.data, int64(hw))
	idx.setHighWater(hw + uint64(idx.geom.nodeSize))

	return hw, nil
}

// freeNode returns a node to the free list, making it the new head.
func (idx *Index) freeNode(off uint64) {
	prevHead := idx.freeListHead()
	idx.geom.clearNode(idx.data, int64(off))
	idx.geom.setNodeNextSame(idx.data, int64(off), prevHead)
	idx.setFreeListHead(off)
}

// freeListLen walks the free list and counts its entries. Used only by
// [Index.Stats]; never on a hot path.
func (idx *Index) freeListLen() int64 {
	var n int64
	for off := idx.freeListHead(); off != nullOffset; off = idx.geom.nodeNextSame(idx.data, int64(off)) {
		n++
	}
	return n
}
