package mchi

// Stats returns a snapshot of the index's current allocation state. It
// walks the free list to report FreeNodes, so its cost is proportional to
// the number of freed-and-recycled nodes, not to the number of live keys.
func (idx *Index) Stats() Stats {
	free := idx.freeListLen()
	hw := int64(idx.highWater())
	allocated := (hw - idx.geom.dataStart) / idx.geom.nodeSize

	return Stats{
		TableSize:       idx.geom.tableSize,
		KeySize:         idx.geom.keySize,
		MaxItems:        idx.geom.maxItems,
		DataRegionSize:  idx.geom.dataRegionSize,
		NodeSize:        idx.geom.nodeSize,
		FileSize:        idx.geom.fileSize,
		HighWaterOffset: hw,
		FreeNodes:       free,
		AllocatedNodes:  allocated,
	}
}
