// Package mchi implements a persistent, memory-mapped inverted index.
//
// The index is a chained hash table whose buckets, nodes, and free list all
// live inside a single fixed-size file projected into the process address
// space. Each key maps to a chain of fixed-capacity nodes holding document
// identifiers; collisions within a bucket are threaded through a second,
// orthogonal chain so that overflow for one key never interleaves with the
// nodes of another key sharing the same bucket.
//
// mchi is not a database. It has no query language, no transactions, and no
// crash-consistency guarantee beyond what mmap writes plus an explicit Close
// provide. Tokenization, stop-word filtering, and scoring are the caller's
// responsibility; mchi only stores and retrieves the identifiers a caller
// associates with a key.
//
// # Basic usage
//
//	idx, err := mchi.Open(mchi.Options{Path: "/var/lib/search/postings.idx"})
//	if err != nil {
//	    // handle mchi.ErrOpenFailed
//	}
//	defer idx.Close()
//
//	if err := idx.Insert("ai", []uint32{1, 3}); err != nil {
//	    // handle mchi.ErrOutOfSpace
//	}
//
//	ids := idx.Get("ai") // []uint32{1, 3}
//
//	if err := idx.Remove("ai", 1); err != nil {
//	    // handle mchi.ErrClosed
//	}
//
// # Concurrency
//
// An [Index] is single-writer, single-reader: it performs no internal
// locking. Callers that share one Index across goroutines or processes must
// serialize their own access, for example behind a single owning task or an
// external lock. Concurrent calls into one Index from multiple goroutines
// without such serialization are a data race.
//
// # Error handling
//
// [Open] fails with [ErrOpenFailed] or [ErrCorrupt] when the file cannot be
// created, sized, or mapped, or when an existing file's size does not match
// the given geometry or its persisted high-water mark is out of range. [Insert] fails with [ErrOutOfSpace] when the data region has no
// room left for another node; nodes allocated and linked earlier in the same
// call remain linked (insertion is not transactional). [Get] and [Remove]
// never fail on a missing key or identifier: an absent key returns no
// results from Get and is a no-op for Remove, which keeps probing many
// candidate tokens cheap for the caller.
package mchi
