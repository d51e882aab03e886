package mchi

import (
	"errors"
	"path/filepath"
	"testing"
)

// testOptions returns small-footprint Options suitable for exercising
// allocator and overflow behavior without provisioning hundreds of
// megabytes per test.
func testOptions(t *testing.T) Options {
	t.Helper()

	return Options{
		Path:           filepath.Join(t.TempDir(), "index.mchi"),
		TableSize:      16,
		KeySize:        16,
		MaxItems:       2,
		DataRegionSize: 64 * nodeSize(16, 2),
	}
}

func openTestIndex(t *testing.T, opts Options) *Index {
	t.Helper()

	idx, err := Open(opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = idx.Close()
	})

	return idx
}

func Test_Insert_Then_Get_Returns_Inserted_Ids(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	if err := idx.Insert("ai", []uint32{1, 3}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got := idx.Get("ai")
	assertIDs(t, got, []uint32{1, 3})
}

func Test_Get_Returns_Nil_For_Missing_Key(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	if got := idx.Get("does-not-exist"); got != nil {
		t.Fatalf("Get=%v, want nil", got)
	}
}

func Test_Insert_Overflows_Into_A_New_Node_When_First_Node_Is_Full(t *testing.T) {
	t.Parallel()

	opts := testOptions(t) // MaxItems: 2
	idx := openTestIndex(t, opts)

	if err := idx.Insert("ai", []uint32{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	assertIDs(t, idx.Get("ai"), []uint32{1, 2, 3, 4, 5})

	stats := idx.Stats()
	if stats.AllocatedNodes < 3 {
		t.Fatalf("allocated nodes=%d, want at least 3 for 5 items at 2/node", stats.AllocatedNodes)
	}
}

func Test_Insert_Deduplicates_Ids_Within_One_Call(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	if err := idx.Insert("ai", []uint32{1, 1, 2, 1}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	assertIDs(t, idx.Get("ai"), []uint32{1, 2})
}

func Test_Insert_Deduplicates_Across_Separate_Calls_And_Across_Overflow_Nodes(t *testing.T) {
	t.Parallel()

	opts := testOptions(t) // MaxItems: 2, forces id 1 and id 3 onto different nodes
	idx := openTestIndex(t, opts)

	if err := idx.Insert("ai", []uint32{1, 2, 3}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	before := idx.Stats().AllocatedNodes

	// id 1 lives in the head node; re-inserting it must be detected even
	// though the call is filling the tail (overflow) node.
	if err := idx.Insert("ai", []uint32{1, 4}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	assertIDs(t, idx.Get("ai"), []uint32{1, 2, 3, 4})

	after := idx.Stats().AllocatedNodes
	if after != before {
		t.Fatalf("allocated nodes grew from %d to %d; id 1 should not have been re-stored", before, after)
	}
}

func Test_Insert_Keeps_Distinct_Keys_In_The_Same_Bucket_Independent(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	// "ab" and "ba" hash identically under SumHasher (same byte multiset).
	if err := idx.Insert("ab", []uint32{1}); err != nil {
		t.Fatalf("Insert ab: %v", err)
	}
	if err := idx.Insert("ba", []uint32{2}); err != nil {
		t.Fatalf("Insert ba: %v", err)
	}

	assertIDs(t, idx.Get("ab"), []uint32{1})
	assertIDs(t, idx.Get("ba"), []uint32{2})
}

func Test_Remove_Missing_Key_Is_A_Noop(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	if err := idx.Remove("does-not-exist", 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func Test_Remove_Missing_Id_On_Existing_Key_Is_A_Noop(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	if err := idx.Insert("ai", []uint32{1, 2}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := idx.Remove("ai", 999); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	assertIDs(t, idx.Get("ai"), []uint32{1, 2})
}

func Test_Remove_Last_Id_Empties_The_Key_And_Frees_Its_Node(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	if err := idx.Insert("ai", []uint32{1}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	before := idx.Stats().FreeNodes

	if err := idx.Remove("ai", 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if got := idx.Get("ai"); got != nil {
		t.Fatalf("Get after removing last id=%v, want nil", got)
	}

	after := idx.Stats().FreeNodes
	if after != before+1 {
		t.Fatalf("free nodes=%d, want %d", after, before+1)
	}
}

func Test_Remove_Promotes_Overflow_Node_When_Head_Of_Same_Chain_Empties(t *testing.T) {
	t.Parallel()

	opts := testOptions(t) // MaxItems: 2
	idx := openTestIndex(t, opts)

	// Head node holds {1, 2}; overflow node holds {3}.
	if err := idx.Insert("ai", []uint32{1, 2, 3}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := idx.Remove("ai", 1); err != nil {
		t.Fatalf("Remove 1: %v", err)
	}
	if err := idx.Remove("ai", 2); err != nil {
		t.Fatalf("Remove 2: %v", err)
	}

	// The head node is now empty; its overflow sibling must be promoted,
	// not dropped, so id 3 has to remain reachable through Get.
	assertIDs(t, idx.Get("ai"), []uint32{3})
}

func Test_Remove_Promoted_Node_Still_Reaches_Other_Keys_In_The_Bucket(t *testing.T) {
	t.Parallel()

	opts := testOptions(t)
	idx := openTestIndex(t, opts)

	if err := idx.Insert("ai", []uint32{1, 2, 3}); err != nil {
		t.Fatalf("Insert ai: %v", err)
	}
	// "ia" hashes to the same bucket as "ai" under SumHasher (same byte
	// multiset) and sits after it in the bucket's other-chain.
	if err := idx.Insert("ia", []uint32{9}); err != nil {
		t.Fatalf("Insert ia: %v", err)
	}

	if err := idx.Remove("ai", 1); err != nil {
		t.Fatalf("Remove 1: %v", err)
	}
	if err := idx.Remove("ai", 2); err != nil {
		t.Fatalf("Remove 2: %v", err)
	}

	assertIDs(t, idx.Get("ai"), []uint32{3})
	assertIDs(t, idx.Get("ia"), []uint32{9})
}

func Test_Remove_All_Ids_For_The_Only_Key_In_A_Bucket_Empties_It(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	if err := idx.Insert("solo", []uint32{1, 2}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := idx.Remove("solo", 1); err != nil {
		t.Fatalf("Remove 1: %v", err)
	}
	if err := idx.Remove("solo", 2); err != nil {
		t.Fatalf("Remove 2: %v", err)
	}

	if got := idx.Get("solo"); got != nil {
		t.Fatalf("Get=%v, want nil", got)
	}
}

func Test_Insert_Returns_ErrOutOfSpace_When_Data_Region_Is_Exhausted(t *testing.T) {
	t.Parallel()

	opts := testOptions(t)
	opts.DataRegionSize = nodeSize(opts.KeySize, opts.MaxItems) // room for exactly one node
	idx := openTestIndex(t, opts)

	if err := idx.Insert("a", []uint32{1, 2}); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err := idx.Insert("b", []uint32{1})
	if err == nil {
		t.Fatal("expected ErrOutOfSpace, got nil")
	}
	if !errors.Is(err, ErrOutOfSpace) {
		t.Fatalf("err=%v, want ErrOutOfSpace", err)
	}
}

func Test_Stats_AllocatedNodes_Matches_HighWater_Advance(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	if err := idx.Insert("ai", []uint32{1, 2, 3, 4}); err != nil { // 2 nodes at MaxItems=2
		t.Fatalf("Insert: %v", err)
	}

	if got := idx.Stats().AllocatedNodes; got != 2 {
		t.Fatalf("allocated nodes=%d, want 2", got)
	}
}

func Test_Allocator_Reuses_Freed_Node_Before_Advancing_HighWater(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))

	if err := idx.Insert("a", []uint32{1}); err != nil {
		t.Fatalf("Insert a: %v", err)
	}
	hwBefore := idx.Stats().AllocatedNodes

	if err := idx.Remove("a", 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := idx.Stats().FreeNodes; got != 1 {
		t.Fatalf("free nodes=%d, want 1", got)
	}

	if err := idx.Insert("b", []uint32{2}); err != nil {
		t.Fatalf("Insert b: %v", err)
	}

	hwAfter := idx.Stats().AllocatedNodes
	if hwAfter != hwBefore {
		t.Fatalf("high-water advanced from %d to %d nodes; expected the freed node to be reused", hwBefore, hwAfter)
	}
	if got := idx.Stats().FreeNodes; got != 0 {
		t.Fatalf("free nodes after reuse=%d, want 0", got)
	}
}

func Test_Index_Persists_Entries_Across_Close_And_Reopen(t *testing.T) {
	t.Parallel()

	opts := testOptions(t)

	idx := openTestIndex(t, opts)
	if err := idx.Insert("ai", []uint32{1, 2, 3}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	assertIDs(t, reopened.Get("ai"), []uint32{1, 2, 3})
}

func Test_Allocator_State_Survives_Reopen_And_Keeps_Reusing_Freed_Nodes(t *testing.T) {
	t.Parallel()

	opts := testOptions(t)

	idx := openTestIndex(t, opts)
	if err := idx.Insert("a", []uint32{1}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := idx.Remove("a", 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	allocatedBeforeClose := idx.Stats().AllocatedNodes
	freeBeforeClose := idx.Stats().FreeNodes
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if got := reopened.Stats().FreeNodes; got != freeBeforeClose {
		t.Fatalf("free nodes after reopen=%d, want %d", got, freeBeforeClose)
	}

	if err := reopened.Insert("b", []uint32{2}); err != nil {
		t.Fatalf("Insert after reopen: %v", err)
	}

	if got := reopened.Stats().AllocatedNodes; got != allocatedBeforeClose {
		t.Fatalf("allocated nodes after reuse=%d, want %d (no highwater growth)", got, allocatedBeforeClose)
	}
}

func Test_Insert_Get_Remove_On_A_Closed_Index(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, testOptions(t))
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := idx.Insert("a", []uint32{1}); err == nil {
		t.Fatal("Insert on closed index: expected error")
	}
	if err := idx.Remove("a", 1); err == nil {
		t.Fatal("Remove on closed index: expected error")
	}
	if got := idx.Get("a"); got != nil {
		t.Fatalf("Get on closed index=%v, want nil", got)
	}

	// Close is idempotent.
	if err := idx.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func assertIDs(t *testing.T, got, want []uint32) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("ids=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids=%v, want %v", got, want)
		}
	}
}
